package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"abcretail/internal/model"
	"abcretail/prometheus"
)

// QueueMessageRow is the durable queue table. A message is visible when
// VisibleAt has passed; dequeuing pushes VisibleAt forward by the lease
// so other workers skip it until the lease expires.
type QueueMessageRow struct {
	ID           int64  `gorm:"primarykey"`
	Queue        string `gorm:"type:varchar(100);not null;index:idx_queue_visible"`
	Body         string `gorm:"type:text;not null"`
	DequeueCount int    `gorm:"not null;default:0"`
	VisibleAt    time.Time `gorm:"not null;index:idx_queue_visible"`
	EnqueuedAt   time.Time `gorm:"not null"`
}

func (QueueMessageRow) TableName() string { return "queue_messages" }

// GormStore implements Store on a relational database.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

var _ Store = (*GormStore)(nil)

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}

// replace performs the versioned full-record update shared by all
// entity types. The caller passes the record with the version it read;
// on success the stored row carries version+1.
func (s *GormStore) replace(ctx context.Context, current any, readVersion int64, id string) error {
	defer prometheus.TrackDBOperation("update")(time.Now())
	res := s.db.WithContext(ctx).
		Model(current).
		Where("id = ? AND version = ?", id, readVersion).
		Select("*").
		Updates(current)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := s.db.WithContext(ctx).Model(current).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrConflict
	}
	return nil
}

// Customers

func (s *GormStore) GetCustomer(ctx context.Context, id string) (*model.Customer, error) {
	defer prometheus.TrackDBOperation("select")(time.Now())
	var c model.Customer
	if err := s.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (s *GormStore) ListCustomers(ctx context.Context, activeOnly bool) ([]model.Customer, error) {
	defer prometheus.TrackDBOperation("select")(time.Now())
	var out []model.Customer
	q := s.db.WithContext(ctx)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Order("date_registered").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *GormStore) InsertCustomer(ctx context.Context, c *model.Customer) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())
	return translate(s.db.WithContext(ctx).Create(c).Error)
}

func (s *GormStore) ReplaceCustomer(ctx context.Context, c *model.Customer) error {
	read := c.Version
	c.Version++
	if err := s.replace(ctx, c, read, c.ID); err != nil {
		c.Version = read
		return err
	}
	return nil
}

// Products

func (s *GormStore) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	defer prometheus.TrackDBOperation("select")(time.Now())
	var p model.Product
	if err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *GormStore) ListProducts(ctx context.Context, activeOnly bool) ([]model.Product, error) {
	defer prometheus.TrackDBOperation("select")(time.Now())
	var out []model.Product
	q := s.db.WithContext(ctx)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Order("date_added").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *GormStore) InsertProduct(ctx context.Context, p *model.Product) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())
	return translate(s.db.WithContext(ctx).Create(p).Error)
}

func (s *GormStore) ReplaceProduct(ctx context.Context, p *model.Product) error {
	read := p.Version
	p.Version++
	if err := s.replace(ctx, p, read, p.ID); err != nil {
		p.Version = read
		return err
	}
	return nil
}

// Orders

func (s *GormStore) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	defer prometheus.TrackDBOperation("select")(time.Now())
	var o model.Order
	if err := s.db.WithContext(ctx).First(&o, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &o, nil
}

func (s *GormStore) ListOrders(ctx context.Context) ([]model.Order, error) {
	defer prometheus.TrackDBOperation("select")(time.Now())
	var out []model.Order
	if err := s.db.WithContext(ctx).Order("order_date DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *GormStore) InsertOrder(ctx context.Context, o *model.Order) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())
	return translate(s.db.WithContext(ctx).Create(o).Error)
}

func (s *GormStore) ReplaceOrder(ctx context.Context, o *model.Order) error {
	read := o.Version
	o.Version++
	if err := s.replace(ctx, o, read, o.ID); err != nil {
		o.Version = read
		return err
	}
	return nil
}

func (s *GormStore) DeleteOrder(ctx context.Context, id string) error {
	defer prometheus.TrackDBOperation("delete")(time.Now())
	res := s.db.WithContext(ctx).Delete(&model.Order{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Queue

func (s *GormStore) Enqueue(ctx context.Context, queue, body string) error {
	defer prometheus.TrackDBOperation("enqueue")(time.Now())
	now := time.Now().UTC()
	row := QueueMessageRow{
		Queue:      queue,
		Body:       body,
		VisibleAt:  now,
		EnqueuedAt: now,
	}
	return s.db.WithContext(ctx).Create(&row).Error
}

func (s *GormStore) Dequeue(ctx context.Context, queue string, lease time.Duration) (*Message, error) {
	defer prometheus.TrackDBOperation("dequeue")(time.Now())
	var msg *Message
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row QueueMessageRow
		err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("queue = ? AND visible_at <= ?", queue, time.Now().UTC()).
			Order("id").
			First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		row.DequeueCount++
		row.VisibleAt = time.Now().UTC().Add(lease)
		if err := tx.Save(&row).Error; err != nil {
			return err
		}
		msg = &Message{
			ID:           row.ID,
			Queue:        row.Queue,
			Body:         row.Body,
			DequeueCount: row.DequeueCount,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *GormStore) Ack(ctx context.Context, id int64) error {
	defer prometheus.TrackDBOperation("delete")(time.Now())
	return s.db.WithContext(ctx).Delete(&QueueMessageRow{}, id).Error
}

func (s *GormStore) Requeue(ctx context.Context, id int64, delay time.Duration) error {
	defer prometheus.TrackDBOperation("update")(time.Now())
	return s.db.WithContext(ctx).
		Model(&QueueMessageRow{}).
		Where("id = ?", id).
		Update("visible_at", time.Now().UTC().Add(delay)).Error
}

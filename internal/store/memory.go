package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"abcretail/internal/model"
)

// MemoryStore is an in-memory Store used by tests and local
// development. Maps hold copies; callers never see shared pointers.
type MemoryStore struct {
	mu        sync.RWMutex
	customers map[string]model.Customer
	products  map[string]model.Product
	orders    map[string]model.Order

	nextMsgID int64
	messages  map[int64]*memMessage
}

type memMessage struct {
	id           int64
	queue        string
	body         string
	dequeueCount int
	visibleAt    time.Time
	enqueuedAt   time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		customers: make(map[string]model.Customer),
		products:  make(map[string]model.Product),
		orders:    make(map[string]model.Order),
		nextMsgID: 1,
		messages:  make(map[int64]*memMessage),
	}
}

var _ Store = (*MemoryStore)(nil)

// Customers

func (m *MemoryStore) GetCustomer(_ context.Context, id string) (*model.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.customers[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := c
	return &cp, nil
}

func (m *MemoryStore) ListCustomers(_ context.Context, activeOnly bool) ([]model.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Customer, 0, len(m.customers))
	for _, c := range m.customers {
		if activeOnly && !c.IsActive {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DateRegistered.Before(out[j].DateRegistered) })
	return out, nil
}

func (m *MemoryStore) InsertCustomer(_ context.Context, c *model.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.customers[c.ID]; ok {
		return ErrDuplicate
	}
	m.customers[c.ID] = *c
	return nil
}

func (m *MemoryStore) ReplaceCustomer(_ context.Context, c *model.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.customers[c.ID]
	if !ok {
		return ErrNotFound
	}
	if cur.Version != c.Version {
		return ErrConflict
	}
	c.Version++
	m.customers[c.ID] = *c
	return nil
}

// Products

func (m *MemoryStore) GetProduct(_ context.Context, id string) (*model.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := p
	return &cp, nil
}

func (m *MemoryStore) ListProducts(_ context.Context, activeOnly bool) ([]model.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Product, 0, len(m.products))
	for _, p := range m.products {
		if activeOnly && !p.IsActive {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DateAdded.Before(out[j].DateAdded) })
	return out, nil
}

func (m *MemoryStore) InsertProduct(_ context.Context, p *model.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[p.ID]; ok {
		return ErrDuplicate
	}
	m.products[p.ID] = *p
	return nil
}

func (m *MemoryStore) ReplaceProduct(_ context.Context, p *model.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.products[p.ID]
	if !ok {
		return ErrNotFound
	}
	if cur.Version != p.Version {
		return ErrConflict
	}
	p.Version++
	m.products[p.ID] = *p
	return nil
}

// Orders

func (m *MemoryStore) GetOrder(_ context.Context, id string) (*model.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := o
	return &cp, nil
}

func (m *MemoryStore) ListOrders(_ context.Context) ([]model.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Order, 0, len(m.orders))
	for _, o := range m.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderDate.After(out[j].OrderDate) })
	return out, nil
}

func (m *MemoryStore) InsertOrder(_ context.Context, o *model.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[o.ID]; ok {
		return ErrDuplicate
	}
	m.orders[o.ID] = *o
	return nil
}

func (m *MemoryStore) ReplaceOrder(_ context.Context, o *model.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.orders[o.ID]
	if !ok {
		return ErrNotFound
	}
	if cur.Version != o.Version {
		return ErrConflict
	}
	o.Version++
	m.orders[o.ID] = *o
	return nil
}

func (m *MemoryStore) DeleteOrder(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[id]; !ok {
		return ErrNotFound
	}
	delete(m.orders, id)
	return nil
}

// Queue

func (m *MemoryStore) Enqueue(_ context.Context, queue, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	id := m.nextMsgID
	m.nextMsgID++
	m.messages[id] = &memMessage{
		id:         id,
		queue:      queue,
		body:       body,
		visibleAt:  now,
		enqueuedAt: now,
	}
	return nil
}

func (m *MemoryStore) Dequeue(_ context.Context, queue string, lease time.Duration) (*Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	var oldest *memMessage
	for _, msg := range m.messages {
		if msg.queue != queue || msg.visibleAt.After(now) {
			continue
		}
		if oldest == nil || msg.id < oldest.id {
			oldest = msg
		}
	}
	if oldest == nil {
		return nil, nil
	}
	oldest.dequeueCount++
	oldest.visibleAt = now.Add(lease)
	return &Message{
		ID:           oldest.id,
		Queue:        oldest.queue,
		Body:         oldest.body,
		DequeueCount: oldest.dequeueCount,
	}, nil
}

func (m *MemoryStore) Ack(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.messages, id)
	return nil
}

func (m *MemoryStore) Requeue(_ context.Context, id int64, delay time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if msg, ok := m.messages[id]; ok {
		msg.visibleAt = time.Now().UTC().Add(delay)
	}
	return nil
}

// QueueLength reports visible plus leased messages on a queue. Test
// helper only.
func (m *MemoryStore) QueueLength(queue string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, msg := range m.messages {
		if msg.queue == queue {
			n++
		}
	}
	return n
}

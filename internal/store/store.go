package store

import (
	"context"
	"errors"
	"time"

	"abcretail/internal/model"
)

var (
	// ErrNotFound is returned when no record exists for the given ID.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned by Insert on an ID collision.
	ErrDuplicate = errors.New("record already exists")
	// ErrConflict is returned by Replace when the stored version does
	// not match the version the caller read.
	ErrConflict = errors.New("concurrent modification detected")
)

// CustomerStore persists customers keyed by ID.
type CustomerStore interface {
	GetCustomer(ctx context.Context, id string) (*model.Customer, error)
	ListCustomers(ctx context.Context, activeOnly bool) ([]model.Customer, error)
	InsertCustomer(ctx context.Context, c *model.Customer) error
	ReplaceCustomer(ctx context.Context, c *model.Customer) error
}

// ProductStore persists products keyed by ID.
type ProductStore interface {
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	ListProducts(ctx context.Context, activeOnly bool) ([]model.Product, error)
	InsertProduct(ctx context.Context, p *model.Product) error
	ReplaceProduct(ctx context.Context, p *model.Product) error
}

// OrderStore persists orders keyed by ID. DeleteOrder exists only for
// the workflow's compensating action after a failed stock decrement;
// orders are otherwise never removed.
type OrderStore interface {
	GetOrder(ctx context.Context, id string) (*model.Order, error)
	ListOrders(ctx context.Context) ([]model.Order, error)
	InsertOrder(ctx context.Context, o *model.Order) error
	ReplaceOrder(ctx context.Context, o *model.Order) error
	DeleteOrder(ctx context.Context, id string) error
}

// Message is a dequeued queue entry. DequeueCount includes the dequeue
// that produced this message.
type Message struct {
	ID           int64
	Queue        string
	Body         string
	DequeueCount int
}

// QueueStore is an at-least-once message queue. Dequeue leases a
// message for the given duration; an unacked message becomes visible
// again when the lease expires.
type QueueStore interface {
	Enqueue(ctx context.Context, queue, body string) error
	Dequeue(ctx context.Context, queue string, lease time.Duration) (*Message, error)
	Ack(ctx context.Context, id int64) error
	Requeue(ctx context.Context, id int64, delay time.Duration) error
}

// Store is the full storage surface the application wires together.
type Store interface {
	CustomerStore
	ProductStore
	OrderStore
	QueueStore
}

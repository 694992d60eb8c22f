package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"abcretail/internal/model"
)

func TestProductInsertAndGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	p := &model.Product{ID: "p1", Name: "Widget", PriceCents: 1999, Stock: 5, IsActive: true, Version: 1}
	require.NoError(t, s.InsertProduct(ctx, p))

	got, err := s.GetProduct(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Widget", got.Name)
	assert.Equal(t, int64(1999), got.PriceCents)

	_, err = s.GetProduct(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProductInsertDuplicate(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	p := &model.Product{ID: "p1", Name: "Widget", Version: 1}
	require.NoError(t, s.InsertProduct(ctx, p))
	err := s.InsertProduct(ctx, &model.Product{ID: "p1", Name: "Other", Version: 1})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestProductReplaceVersionCheck(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.InsertProduct(ctx, &model.Product{ID: "p1", Name: "Widget", Stock: 5, Version: 1}))

	first, err := s.GetProduct(ctx, "p1")
	require.NoError(t, err)
	second, err := s.GetProduct(ctx, "p1")
	require.NoError(t, err)

	first.Stock = 4
	require.NoError(t, s.ReplaceProduct(ctx, first))
	assert.Equal(t, int64(2), first.Version)

	// The second reader still holds version 1 and must not win.
	second.Stock = 3
	err = s.ReplaceProduct(ctx, second)
	assert.ErrorIs(t, err, ErrConflict)

	got, err := s.GetProduct(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 4, got.Stock)
}

func TestReplaceMissingRecord(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	err := s.ReplaceProduct(ctx, &model.Product{ID: "ghost", Version: 1})
	assert.ErrorIs(t, err, ErrNotFound)
	err = s.ReplaceCustomer(ctx, &model.Customer{ID: "ghost", Version: 1})
	assert.ErrorIs(t, err, ErrNotFound)
	err = s.ReplaceOrder(ctx, &model.Order{ID: "ghost", Version: 1})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListActiveFiltering(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.InsertCustomer(ctx, &model.Customer{ID: "c1", Username: "alice", IsActive: true, Version: 1}))
	require.NoError(t, s.InsertCustomer(ctx, &model.Customer{ID: "c2", Username: "bob", IsActive: false, Version: 1}))

	all, err := s.ListCustomers(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := s.ListCustomers(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "c1", active[0].ID)

	// Deactivated record stays retrievable by ID.
	got, err := s.GetCustomer(ctx, "c2")
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestQueueLeaseAndAck(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Enqueue(ctx, "orders", `{"a":1}`))
	require.NoError(t, s.Enqueue(ctx, "orders", `{"a":2}`))

	msg, err := s.Dequeue(ctx, "orders", time.Minute)
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, `{"a":1}`, msg.Body)
	assert.Equal(t, 1, msg.DequeueCount)

	// Leased message is invisible; the next dequeue sees the second one.
	next, err := s.Dequeue(ctx, "orders", time.Minute)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, `{"a":2}`, next.Body)

	empty, err := s.Dequeue(ctx, "orders", time.Minute)
	require.NoError(t, err)
	assert.Nil(t, empty)

	require.NoError(t, s.Ack(ctx, msg.ID))
	require.NoError(t, s.Ack(ctx, next.ID))
	assert.Equal(t, 0, s.QueueLength("orders"))
}

func TestQueueRequeueIncrementsDequeueCount(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Enqueue(ctx, "stock", "bad payload"))

	msg, err := s.Dequeue(ctx, "stock", time.Minute)
	require.NoError(t, err)
	require.NotNil(t, msg)
	require.NoError(t, s.Requeue(ctx, msg.ID, 0))

	again, err := s.Dequeue(ctx, "stock", time.Minute)
	require.NoError(t, err)
	require.NotNil(t, again)
	assert.Equal(t, msg.ID, again.ID)
	assert.Equal(t, 2, again.DequeueCount)
}

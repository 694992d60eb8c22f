package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"abcretail/internal/model"
	"abcretail/internal/store"
)

func TestPublishOrderEventRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	n := New(st, zap.NewNop())

	sent := model.OrderNotification{
		OrderID:      "o1",
		CustomerID:   "c1",
		CustomerName: "Jane Doe",
		ProductName:  "Widget",
		Quantity:     3,
		TotalPrice:   3750,
		OrderDate:    time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC),
		Status:       model.OrderStatusSubmitted,
	}
	n.TryPublishOrderEvent(ctx, sent)

	msg, err := st.Dequeue(ctx, model.OrderNotificationsQueue, time.Minute)
	require.NoError(t, err)
	require.NotNil(t, msg)

	var got model.OrderNotification
	require.NoError(t, json.Unmarshal([]byte(msg.Body), &got))
	assert.Equal(t, sent, got)
}

func TestPublishStockEventRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	n := New(st, zap.NewNop())

	sent := model.StockUpdate{
		ProductID:     "p1",
		ProductName:   "Widget",
		PreviousStock: 10,
		NewStock:      7,
		UpdatedBy:     "Order System",
		UpdateDate:    time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC),
	}
	n.TryPublishStockEvent(ctx, sent)

	msg, err := st.Dequeue(ctx, model.StockUpdatesQueue, time.Minute)
	require.NoError(t, err)
	require.NotNil(t, msg)

	var got model.StockUpdate
	require.NoError(t, json.Unmarshal([]byte(msg.Body), &got))
	assert.Equal(t, sent, got)
}

func TestPublishRaw(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	n := New(st, zap.NewNop())

	require.NoError(t, n.PublishRaw(ctx, "custom-queue", "hello"))

	msg, err := st.Dequeue(ctx, "custom-queue", time.Minute)
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, "hello", msg.Body)
}

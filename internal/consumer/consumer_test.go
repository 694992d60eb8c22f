package consumer

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"abcretail/internal/model"
	"abcretail/internal/store"
)

func testOpts() Options {
	return Options{
		PollInterval:    time.Millisecond,
		Lease:           time.Minute,
		MaxDequeueCount: 3,
		RequeueDelay:    0,
	}
}

func drain(t *testing.T, d *Dispatcher) int {
	t.Helper()
	processed := 0
	for {
		ok, err := d.ProcessOne(context.Background())
		require.NoError(t, err)
		if !ok {
			return processed
		}
		processed++
	}
}

func TestOrderNotificationProcessed(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()

	body, err := json.Marshal(model.OrderNotification{
		OrderID:      "o1",
		CustomerName: "Jane Doe",
		ProductName:  "Widget",
		Quantity:     2,
		Status:       model.OrderStatusSubmitted,
	})
	require.NoError(t, err)
	require.NoError(t, st.Enqueue(ctx, model.OrderNotificationsQueue, string(body)))

	d := NewDispatcher(model.OrderNotificationsQueue, st,
		OrderNotificationHandler(zap.NewNop()), testOpts(), zap.NewNop())

	assert.Equal(t, 1, drain(t, d))
	assert.Equal(t, 0, st.QueueLength(model.OrderNotificationsQueue))
}

func TestStatusNotificationVariantProcessed(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()

	body, err := json.Marshal(model.StatusNotification{
		OrderID:        "o1",
		CustomerName:   "janedoe",
		PreviousStatus: model.OrderStatusSubmitted,
		NewStatus:      model.OrderStatusShipped,
		UpdatedBy:      "System",
	})
	require.NoError(t, err)
	require.NoError(t, st.Enqueue(ctx, model.OrderNotificationsQueue, string(body)))

	d := NewDispatcher(model.OrderNotificationsQueue, st,
		OrderNotificationHandler(zap.NewNop()), testOpts(), zap.NewNop())

	assert.Equal(t, 1, drain(t, d))
	assert.Equal(t, 0, st.QueueLength(model.OrderNotificationsQueue))
}

func TestStockUpdateLowStockAlert(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()

	body, err := json.Marshal(model.StockUpdate{
		ProductID:     "p1",
		ProductName:   "Widget",
		PreviousStock: 12,
		NewStock:      4,
		UpdatedBy:     "Order System",
	})
	require.NoError(t, err)
	require.NoError(t, st.Enqueue(ctx, model.StockUpdatesQueue, string(body)))

	core, observed := observer.New(zap.WarnLevel)
	log := zap.New(core)

	d := NewDispatcher(model.StockUpdatesQueue, st,
		StockUpdateHandler(log), testOpts(), zap.NewNop())

	assert.Equal(t, 1, drain(t, d))
	require.Equal(t, 1, observed.Len())
	assert.Contains(t, observed.All()[0].Message, "LOW STOCK")
}

func TestMalformedMessageMovesToPoisonQueue(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	opts := testOpts()

	require.NoError(t, st.Enqueue(ctx, model.StockUpdatesQueue, "{not json"))

	d := NewDispatcher(model.StockUpdatesQueue, st,
		StockUpdateHandler(zap.NewNop()), opts, zap.NewNop())

	// Each attempt requeues until MaxDequeueCount, then poison routing.
	for i := 0; i < opts.MaxDequeueCount; i++ {
		ok, err := d.ProcessOne(ctx)
		require.NoError(t, err)
		require.True(t, ok)
	}

	assert.Equal(t, 0, st.QueueLength(model.StockUpdatesQueue))
	assert.Equal(t, 1, st.QueueLength(model.StockUpdatesQueue+model.PoisonQueueSuffix))
}

func TestReprocessingIsIdempotent(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()

	body, err := json.Marshal(model.StockUpdate{ProductID: "p1", NewStock: 20})
	require.NoError(t, err)

	// At-least-once delivery: the same payload arriving twice must be
	// handled cleanly both times.
	require.NoError(t, st.Enqueue(ctx, model.StockUpdatesQueue, string(body)))
	require.NoError(t, st.Enqueue(ctx, model.StockUpdatesQueue, string(body)))

	d := NewDispatcher(model.StockUpdatesQueue, st,
		StockUpdateHandler(zap.NewNop()), testOpts(), zap.NewNop())

	assert.Equal(t, 2, drain(t, d))
	assert.Equal(t, 0, st.QueueLength(model.StockUpdatesQueue))
}

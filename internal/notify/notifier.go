package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"abcretail/internal/model"
	"abcretail/internal/store"
	"abcretail/prometheus"
)

// Notifier publishes order and stock events to the notification
// queues. Delivery is at-least-once and asynchronous relative to the
// caller; see the TryPublish helpers for the fire-and-forget path used
// by the order workflow.
type Notifier struct {
	queue store.QueueStore
	log   *zap.Logger
}

func New(queue store.QueueStore, log *zap.Logger) *Notifier {
	return &Notifier{queue: queue, log: log}
}

// Publish serializes payload and enqueues it on the named queue.
func (n *Notifier) Publish(ctx context.Context, queue string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", queue, err)
	}
	if err := n.queue.Enqueue(ctx, queue, string(body)); err != nil {
		return fmt.Errorf("enqueue to %s: %w", queue, err)
	}
	prometheus.RecordQueuePublish(queue)
	return nil
}

// PublishRaw enqueues an already-serialized body. Used by the queue
// passthrough endpoint.
func (n *Notifier) PublishRaw(ctx context.Context, queue, body string) error {
	if err := n.queue.Enqueue(ctx, queue, body); err != nil {
		return fmt.Errorf("enqueue to %s: %w", queue, err)
	}
	prometheus.RecordQueuePublish(queue)
	return nil
}

// TryPublishOrderEvent publishes an order-created notification.
// Failures are logged and swallowed; the store mutation that triggered
// the event stands regardless.
func (n *Notifier) TryPublishOrderEvent(ctx context.Context, msg model.OrderNotification) {
	if err := n.Publish(ctx, model.OrderNotificationsQueue, msg); err != nil {
		n.log.Error("Failed to publish order notification",
			zap.String("order_id", msg.OrderID),
			zap.Error(err))
	}
}

// TryPublishStatusEvent publishes a status-change notification.
func (n *Notifier) TryPublishStatusEvent(ctx context.Context, msg model.StatusNotification) {
	if err := n.Publish(ctx, model.OrderNotificationsQueue, msg); err != nil {
		n.log.Error("Failed to publish status notification",
			zap.String("order_id", msg.OrderID),
			zap.String("new_status", string(msg.NewStatus)),
			zap.Error(err))
	}
}

// TryPublishStockEvent publishes a stock-changed notification.
func (n *Notifier) TryPublishStockEvent(ctx context.Context, msg model.StockUpdate) {
	if err := n.Publish(ctx, model.StockUpdatesQueue, msg); err != nil {
		n.log.Error("Failed to publish stock update",
			zap.String("product_id", msg.ProductID),
			zap.Int("new_stock", msg.NewStock),
			zap.Error(err))
	}
}

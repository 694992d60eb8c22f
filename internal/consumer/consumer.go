package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"abcretail/internal/model"
	"abcretail/internal/store"
	"abcretail/prometheus"
)

// lowStockThreshold triggers the low-stock alert on stock updates.
const lowStockThreshold = 10

// Handler processes one decoded queue message body. A returned error
// requeues the message for redelivery until MaxDequeueCount is
// reached, after which it moves to the queue's poison queue. Handlers
// must stay idempotent: delivery is at-least-once.
type Handler func(ctx context.Context, body string) error

// Options tunes the dispatcher's polling.
type Options struct {
	PollInterval    time.Duration
	Lease           time.Duration
	MaxDequeueCount int
	RequeueDelay    time.Duration
}

func (o *Options) withDefaults() Options {
	out := *o
	if out.PollInterval <= 0 {
		out.PollInterval = 2 * time.Second
	}
	if out.Lease <= 0 {
		out.Lease = 30 * time.Second
	}
	if out.MaxDequeueCount <= 0 {
		out.MaxDequeueCount = 5
	}
	if out.RequeueDelay < 0 {
		out.RequeueDelay = 0
	}
	return out
}

// Dispatcher polls one queue and feeds messages to its handler.
type Dispatcher struct {
	queue   string
	store   store.QueueStore
	handler Handler
	opts    Options
	log     *zap.Logger
}

func NewDispatcher(queue string, qs store.QueueStore, handler Handler, opts Options, log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		queue:   queue,
		store:   qs,
		handler: handler,
		opts:    opts.withDefaults(),
		log:     log.With(zap.String("queue", queue)),
	}
}

// Run polls until ctx is cancelled. Empty polls sleep for the poll
// interval; a drained message is followed immediately by another poll.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.log.Info("Consumer started",
		zap.Duration("poll_interval", d.opts.PollInterval),
		zap.Int("max_dequeue_count", d.opts.MaxDequeueCount))

	ticker := time.NewTicker(d.opts.PollInterval)
	defer ticker.Stop()

	for {
		processed, err := d.ProcessOne(ctx)
		if err != nil {
			d.log.Error("Queue poll failed", zap.Error(err))
		}
		if processed {
			continue
		}
		select {
		case <-ctx.Done():
			d.log.Info("Consumer stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// ProcessOne dequeues and handles a single message. It reports whether
// a message was available. Exposed separately so tests can drain a
// queue synchronously.
func (d *Dispatcher) ProcessOne(ctx context.Context) (bool, error) {
	msg, err := d.store.Dequeue(ctx, d.queue, d.opts.Lease)
	if err != nil {
		return false, fmt.Errorf("dequeue from %s: %w", d.queue, err)
	}
	if msg == nil {
		return false, nil
	}

	if err := d.handler(ctx, msg.Body); err != nil {
		if msg.DequeueCount >= d.opts.MaxDequeueCount {
			return true, d.poison(ctx, msg, err)
		}
		d.log.Warn("Message handling failed, requeueing",
			zap.Int64("message_id", msg.ID),
			zap.Int("dequeue_count", msg.DequeueCount),
			zap.Error(err))
		prometheus.RecordQueueConsume(d.queue, "retry")
		return true, d.store.Requeue(ctx, msg.ID, d.opts.RequeueDelay)
	}

	prometheus.RecordQueueConsume(d.queue, "success")
	return true, d.store.Ack(ctx, msg.ID)
}

// poison moves an exhausted message to the dead-letter queue.
func (d *Dispatcher) poison(ctx context.Context, msg *store.Message, cause error) error {
	d.log.Error("Message exhausted redelivery attempts, moving to poison queue",
		zap.Int64("message_id", msg.ID),
		zap.Int("dequeue_count", msg.DequeueCount),
		zap.Error(cause))
	prometheus.RecordQueueConsume(d.queue, "poison")
	prometheus.RecordQueuePoison(d.queue)

	if err := d.store.Enqueue(ctx, d.queue+model.PoisonQueueSuffix, msg.Body); err != nil {
		// Leave the message leased; it will reappear when the lease
		// expires and poison routing will be attempted again.
		return fmt.Errorf("move message %d to poison queue: %w", msg.ID, err)
	}
	return d.store.Ack(ctx, msg.ID)
}

// OrderNotificationHandler logs processed order and status events. The
// two payload variants share the queue; the presence of new_status
// distinguishes them.
func OrderNotificationHandler(log *zap.Logger) Handler {
	return func(_ context.Context, body string) error {
		var probe struct {
			NewStatus model.OrderStatus `json:"new_status"`
		}
		if err := json.Unmarshal([]byte(body), &probe); err != nil {
			return fmt.Errorf("decode order notification: %w", err)
		}

		if probe.NewStatus != "" {
			var msg model.StatusNotification
			if err := json.Unmarshal([]byte(body), &msg); err != nil {
				return fmt.Errorf("decode status notification: %w", err)
			}
			if msg.OrderID == "" {
				return fmt.Errorf("status notification missing order_id")
			}
			log.Info("Order status notification processed",
				zap.String("order_id", msg.OrderID),
				zap.String("customer", msg.CustomerName),
				zap.String("previous_status", string(msg.PreviousStatus)),
				zap.String("new_status", string(msg.NewStatus)))
			return nil
		}

		var msg model.OrderNotification
		if err := json.Unmarshal([]byte(body), &msg); err != nil {
			return fmt.Errorf("decode order notification: %w", err)
		}
		if msg.OrderID == "" {
			return fmt.Errorf("order notification missing order_id")
		}
		log.Info("Order notification processed",
			zap.String("order_id", msg.OrderID),
			zap.String("customer", msg.CustomerName),
			zap.String("product", msg.ProductName),
			zap.Int("quantity", msg.Quantity),
			zap.String("status", string(msg.Status)))
		return nil
	}
}

// StockUpdateHandler logs stock changes and raises a low-stock alert
// below the threshold. Observational only; no reorder is triggered.
func StockUpdateHandler(log *zap.Logger) Handler {
	return func(_ context.Context, body string) error {
		var msg model.StockUpdate
		if err := json.Unmarshal([]byte(body), &msg); err != nil {
			return fmt.Errorf("decode stock update: %w", err)
		}
		if msg.ProductID == "" {
			return fmt.Errorf("stock update missing product_id")
		}

		log.Info("Stock update processed",
			zap.String("product_id", msg.ProductID),
			zap.String("product", msg.ProductName),
			zap.Int("previous_stock", msg.PreviousStock),
			zap.Int("new_stock", msg.NewStock))

		if msg.NewStock < lowStockThreshold {
			log.Warn("LOW STOCK ALERT",
				zap.String("product_id", msg.ProductID),
				zap.String("product", msg.ProductName),
				zap.Int("remaining", msg.NewStock))
		}
		return nil
	}
}

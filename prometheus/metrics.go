package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"abcretail/pkg/config"
)

var (
	// HTTP request metrics
	HttpRequestsTotal   *prometheus.CounterVec
	HttpRequestDuration *prometheus.HistogramVec

	// Order workflow metrics
	OrderOperationsCounter *prometheus.CounterVec
	OrderConflictRetries   prometheus.Counter

	// Inventory metrics
	ProductStockGauge *prometheus.GaugeVec

	// Queue metrics
	QueuePublishCounter *prometheus.CounterVec
	QueueConsumeCounter *prometheus.CounterVec
	QueuePoisonCounter  *prometheus.CounterVec

	// Upload metrics
	UploadCounter *prometheus.CounterVec

	// Database operation metrics
	DbOperationDuration *prometheus.HistogramVec
)

// InitMetrics initializes Prometheus metrics with configuration
func InitMetrics(config *config.Config) {
	prefix := config.Metrics.Prefix

	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	OrderOperationsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_order_operations_total",
			Help: "Total number of order workflow operations",
		},
		[]string{"operation", "result"},
	)

	OrderConflictRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_order_conflict_retries_total",
			Help: "Total number of optimistic-concurrency retries in the order workflow",
		},
	)

	ProductStockGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: prefix + "_product_stock",
			Help: "Current stock level for products",
		},
		[]string{"product_id", "product_name"},
	)

	QueuePublishCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_queue_publish_total",
			Help: "Total number of messages published per queue",
		},
		[]string{"queue"},
	)

	QueueConsumeCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_queue_consume_total",
			Help: "Total number of messages consumed per queue",
		},
		[]string{"queue", "result"},
	)

	QueuePoisonCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_queue_poison_total",
			Help: "Total number of messages routed to a poison queue",
		},
		[]string{"queue"},
	)

	UploadCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_uploads_total",
			Help: "Total number of file uploads",
		},
		[]string{"kind", "result"},
	)

	DbOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation_type"},
	)
}

// TrackDBOperation returns a function that records the duration of a database operation
func TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		if DbOperationDuration == nil {
			return
		}
		duration := time.Since(startTime).Seconds()
		DbOperationDuration.WithLabelValues(operationType).Observe(duration)
	}
}

// RecordOrderOperation increments the counter for order workflow operations
func RecordOrderOperation(operation, result string) {
	if OrderOperationsCounter == nil {
		return
	}
	OrderOperationsCounter.WithLabelValues(operation, result).Inc()
}

// RecordOrderConflictRetry increments the optimistic-concurrency retry counter
func RecordOrderConflictRetry() {
	if OrderConflictRetries == nil {
		return
	}
	OrderConflictRetries.Inc()
}

// UpdateProductStock updates the gauge for product stock
func UpdateProductStock(productID, productName string, stock float64) {
	if ProductStockGauge == nil {
		return
	}
	ProductStockGauge.WithLabelValues(productID, productName).Set(stock)
}

// RecordQueuePublish increments the publish counter for a queue
func RecordQueuePublish(queue string) {
	if QueuePublishCounter == nil {
		return
	}
	QueuePublishCounter.WithLabelValues(queue).Inc()
}

// RecordQueueConsume increments the consume counter for a queue
func RecordQueueConsume(queue, result string) {
	if QueueConsumeCounter == nil {
		return
	}
	QueueConsumeCounter.WithLabelValues(queue, result).Inc()
}

// RecordQueuePoison increments the poison-routing counter for a queue
func RecordQueuePoison(queue string) {
	if QueuePoisonCounter == nil {
		return
	}
	QueuePoisonCounter.WithLabelValues(queue).Inc()
}

// RecordUpload increments the upload counter
func RecordUpload(kind, result string) {
	if UploadCounter == nil {
		return
	}
	UploadCounter.WithLabelValues(kind, result).Inc()
}

package model

import "time"

// Storage names shared by the web app and the worker.
const (
	OrderNotificationsQueue = "order-notifications"
	StockUpdatesQueue       = "stock-updates"
	PoisonQueueSuffix       = "-poison"

	ProductImagesContainer = "product-images"
	PaymentProofsContainer = "payment-proofs"

	ContractsShare    = "contracts"
	PaymentsDirectory = "payments"
)

// OrderNotification is published to order-notifications when an order
// is created.
type OrderNotification struct {
	OrderID      string      `json:"order_id"`
	CustomerID   string      `json:"customer_id"`
	CustomerName string      `json:"customer_name"`
	ProductName  string      `json:"product_name"`
	Quantity     int         `json:"quantity"`
	TotalPrice   int64       `json:"total_price"`
	OrderDate    time.Time   `json:"order_date"`
	Status       OrderStatus `json:"status"`
}

// StatusNotification is the order-notifications variant published on a
// status change.
type StatusNotification struct {
	OrderID        string      `json:"order_id"`
	CustomerID     string      `json:"customer_id"`
	CustomerName   string      `json:"customer_name"`
	ProductName    string      `json:"product_name"`
	PreviousStatus OrderStatus `json:"previous_status"`
	NewStatus      OrderStatus `json:"new_status"`
	UpdatedBy      string      `json:"updated_by"`
	UpdatedDate    time.Time   `json:"updated_date"`
}

// StockUpdate is published to stock-updates whenever product stock
// changes through the order workflow.
type StockUpdate struct {
	ProductID     string    `json:"product_id"`
	ProductName   string    `json:"product_name"`
	PreviousStock int       `json:"previous_stock"`
	NewStock      int       `json:"new_stock"`
	UpdatedBy     string    `json:"updated_by"`
	UpdateDate    time.Time `json:"update_date"`
}

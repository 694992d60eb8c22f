package model

import "time"

// OrderStatus is the order lifecycle state.
type OrderStatus string

const (
	OrderStatusSubmitted       OrderStatus = "Submitted"
	OrderStatusPaymentReceived OrderStatus = "PaymentReceived"
	OrderStatusProcessing      OrderStatus = "Processing"
	OrderStatusShipped         OrderStatus = "Shipped"
	OrderStatusDelivered       OrderStatus = "Delivered"
	OrderStatusCompleted       OrderStatus = "Completed"
	OrderStatusCancelled       OrderStatus = "Cancelled"
)

var orderStatuses = map[OrderStatus]struct{}{
	OrderStatusSubmitted:       {},
	OrderStatusPaymentReceived: {},
	OrderStatusProcessing:      {},
	OrderStatusShipped:         {},
	OrderStatusDelivered:       {},
	OrderStatusCompleted:       {},
	OrderStatusCancelled:       {},
}

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	_, ok := orderStatuses[s]
	return ok
}

// Terminal statuses accept no further transitions.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// Order captures a purchase. Username, ProductName and the price fields
// are snapshots taken at creation time and are never re-derived from
// the referenced Customer or Product.
type Order struct {
	ID               string      `json:"id" gorm:"type:varchar(36);primarykey"`
	CustomerID       string      `json:"customer_id" gorm:"type:varchar(36);not null;index"`
	Username         string      `json:"username" gorm:"type:varchar(30)"`
	ProductID        string      `json:"product_id" gorm:"type:varchar(36);not null;index"`
	ProductName      string      `json:"product_name" gorm:"type:varchar(100)"`
	OrderDate        time.Time   `json:"order_date"`
	Quantity         int         `json:"quantity" gorm:"not null"`
	UnitPriceCents   int64       `json:"unit_price_cents" gorm:"not null"`
	TotalPriceCents  int64       `json:"total_price_cents" gorm:"not null"`
	Status           OrderStatus `json:"status" gorm:"type:varchar(20);not null"`
	PaymentProofFile string      `json:"payment_proof_file,omitempty" gorm:"type:varchar(255)"`
	TrackingNumber   string      `json:"tracking_number,omitempty" gorm:"type:varchar(100)"`
	ShippedDate      *time.Time  `json:"shipped_date,omitempty"`
	DeliveredDate    *time.Time  `json:"delivered_date,omitempty"`
	Version          int64       `json:"-" gorm:"not null;default:1"`
}

package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"abcretail/internal/model"
	"abcretail/internal/notify"
	"abcretail/internal/store"
	"abcretail/prometheus"
)

// maxConflictRetries bounds the re-read/re-validate loop around
// versioned stock updates. Two concurrent orders racing on the same
// product serialize through Replace conflicts; the loser re-checks
// stock and either succeeds on remaining stock or fails validation.
const maxConflictRetries = 3

const (
	stockUpdatedBy  = "Order System"
	statusUpdatedBy = "System"
)

// OrderService orchestrates order creation, status transitions and
// cancellation against the entity store, and emits queue notifications
// after successful mutations.
type OrderService struct {
	customers store.CustomerStore
	products  store.ProductStore
	orders    store.OrderStore
	notifier  *notify.Notifier
	log       *zap.Logger
}

func NewOrderService(customers store.CustomerStore, products store.ProductStore, orders store.OrderStore, notifier *notify.Notifier, log *zap.Logger) *OrderService {
	return &OrderService{
		customers: customers,
		products:  products,
		orders:    orders,
		notifier:  notifier,
		log:       log,
	}
}

// Create validates the customer, product and quantity, persists the
// order snapshot and decrements product stock. The order insert and
// the stock decrement stand or fall together: a failed decrement
// deletes the just-inserted order row before the error is returned.
func (s *OrderService) Create(ctx context.Context, customerID, productID string, quantity int) (*model.Order, error) {
	if quantity < 1 {
		prometheus.RecordOrderOperation("create", "rejected")
		return nil, validation("quantity", "quantity must be at least 1")
	}

	customer, err := s.customers.GetCustomer(ctx, customerID)
	if errors.Is(err, store.ErrNotFound) {
		prometheus.RecordOrderOperation("create", "rejected")
		return nil, validation("customer_id", "unknown customer")
	}
	if err != nil {
		return nil, err
	}
	if !customer.IsActive {
		prometheus.RecordOrderOperation("create", "rejected")
		return nil, validation("customer_id", "customer is inactive")
	}

	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		product, err := s.products.GetProduct(ctx, productID)
		if errors.Is(err, store.ErrNotFound) {
			prometheus.RecordOrderOperation("create", "rejected")
			return nil, validation("product_id", "unknown product")
		}
		if err != nil {
			return nil, err
		}
		if !product.IsActive {
			prometheus.RecordOrderOperation("create", "rejected")
			return nil, validation("product_id", "product is inactive")
		}
		if product.Stock < quantity {
			prometheus.RecordOrderOperation("create", "rejected")
			return nil, validation("quantity", "insufficient stock, available: %d", product.Stock)
		}

		order := &model.Order{
			ID:              uuid.New().String(),
			CustomerID:      customer.ID,
			Username:        customer.Username,
			ProductID:       product.ID,
			ProductName:     product.Name,
			OrderDate:       time.Now().UTC(),
			Quantity:        quantity,
			UnitPriceCents:  product.PriceCents,
			TotalPriceCents: product.PriceCents * int64(quantity),
			Status:          model.OrderStatusSubmitted,
			Version:         1,
		}
		if err := s.orders.InsertOrder(ctx, order); err != nil {
			return nil, err
		}

		previousStock := product.Stock
		product.Stock -= quantity
		err = s.products.ReplaceProduct(ctx, product)
		if err == nil {
			prometheus.RecordOrderOperation("create", "success")
			prometheus.UpdateProductStock(product.ID, product.Name, float64(product.Stock))
			s.log.Info("Order created",
				zap.String("order_id", order.ID),
				zap.String("customer_id", customer.ID),
				zap.String("product_id", product.ID),
				zap.Int("quantity", quantity),
				zap.Int64("total_price_cents", order.TotalPriceCents))

			s.notifier.TryPublishOrderEvent(ctx, model.OrderNotification{
				OrderID:      order.ID,
				CustomerID:   order.CustomerID,
				CustomerName: customer.FullName(),
				ProductName:  order.ProductName,
				Quantity:     order.Quantity,
				TotalPrice:   order.TotalPriceCents,
				OrderDate:    order.OrderDate,
				Status:       order.Status,
			})
			s.notifier.TryPublishStockEvent(ctx, model.StockUpdate{
				ProductID:     product.ID,
				ProductName:   product.Name,
				PreviousStock: previousStock,
				NewStock:      product.Stock,
				UpdatedBy:     stockUpdatedBy,
				UpdateDate:    time.Now().UTC(),
			})
			return order, nil
		}

		// Compensating action: the stock decrement did not happen, so
		// the order record must not survive either.
		if delErr := s.orders.DeleteOrder(ctx, order.ID); delErr != nil {
			s.log.Error("Failed to remove order after stock update failure",
				zap.String("order_id", order.ID),
				zap.Error(delErr))
		}

		if errors.Is(err, store.ErrConflict) {
			prometheus.RecordOrderConflictRetry()
			s.log.Warn("Stock update conflict, retrying",
				zap.String("product_id", productID),
				zap.Int("attempt", attempt+1))
			continue
		}
		prometheus.RecordOrderOperation("create", "error")
		return nil, err
	}

	prometheus.RecordOrderOperation("create", "rejected")
	return nil, validation("quantity", "insufficient stock")
}

// TransitionStatus moves an order to a new status. Terminal orders
// reject all transitions; cancellation goes through Cancel, never
// through this path, because it has stock side effects.
func (s *OrderService) TransitionStatus(ctx context.Context, orderID string, newStatus model.OrderStatus) (*model.Order, error) {
	return s.updateStatus(ctx, orderID, newStatus, nil)
}

// Edit updates the tracking number along with the status. Quantity and
// price fields are immutable after creation and are never touched here.
func (s *OrderService) Edit(ctx context.Context, orderID string, trackingNumber string, newStatus model.OrderStatus) (*model.Order, error) {
	return s.updateStatus(ctx, orderID, newStatus, &trackingNumber)
}

func (s *OrderService) updateStatus(ctx context.Context, orderID string, newStatus model.OrderStatus, trackingNumber *string) (*model.Order, error) {
	if !newStatus.Valid() {
		return nil, validation("status", "unknown status %q", string(newStatus))
	}
	if newStatus == model.OrderStatusCancelled {
		// Cancellation restores stock and must go through Cancel.
		return nil, ErrInvalidTransition
	}

	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		order, err := s.orders.GetOrder(ctx, orderID)
		if err != nil {
			return nil, err
		}
		if order.Status.Terminal() {
			return nil, ErrInvalidTransition
		}

		previousStatus := order.Status
		order.Status = newStatus
		if trackingNumber != nil {
			order.TrackingNumber = *trackingNumber
		}
		now := time.Now().UTC()
		// Shipped/delivered timestamps are stamped on the first entry
		// into the status and never overwritten.
		if newStatus == model.OrderStatusShipped && order.ShippedDate == nil {
			order.ShippedDate = &now
		}
		if newStatus == model.OrderStatusDelivered && order.DeliveredDate == nil {
			order.DeliveredDate = &now
		}

		err = s.orders.ReplaceOrder(ctx, order)
		if errors.Is(err, store.ErrConflict) {
			prometheus.RecordOrderConflictRetry()
			continue
		}
		if err != nil {
			prometheus.RecordOrderOperation("transition", "error")
			return nil, err
		}

		prometheus.RecordOrderOperation("transition", "success")
		s.log.Info("Order status updated",
			zap.String("order_id", order.ID),
			zap.String("previous_status", string(previousStatus)),
			zap.String("new_status", string(newStatus)))

		s.notifier.TryPublishStatusEvent(ctx, model.StatusNotification{
			OrderID:        order.ID,
			CustomerID:     order.CustomerID,
			CustomerName:   order.Username,
			ProductName:    order.ProductName,
			PreviousStatus: previousStatus,
			NewStatus:      newStatus,
			UpdatedBy:      statusUpdatedBy,
			UpdatedDate:    now,
		})
		return order, nil
	}
	return nil, store.ErrConflict
}

// Cancel moves an order to Cancelled and restores its quantity to the
// product's stock. Completed and already-cancelled orders reject the
// call. The order update happens first so that concurrent cancels
// serialize on its version; the stock restore is then retried on
// conflict, and reverted order state compensates a restore that cannot
// be applied.
func (s *OrderService) Cancel(ctx context.Context, orderID string) (*model.Order, error) {
	var order *model.Order
	var previousStatus model.OrderStatus

	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		var err error
		order, err = s.orders.GetOrder(ctx, orderID)
		if err != nil {
			return nil, err
		}
		if order.Status.Terminal() {
			prometheus.RecordOrderOperation("cancel", "rejected")
			return nil, ErrInvalidTransition
		}

		previousStatus = order.Status
		order.Status = model.OrderStatusCancelled
		err = s.orders.ReplaceOrder(ctx, order)
		if err == nil {
			break
		}
		if errors.Is(err, store.ErrConflict) {
			prometheus.RecordOrderConflictRetry()
			if attempt == maxConflictRetries-1 {
				return nil, err
			}
			continue
		}
		prometheus.RecordOrderOperation("cancel", "error")
		return nil, err
	}

	restored, err := s.restoreStock(ctx, order.ProductID, order.Quantity)
	if err != nil {
		// Compensating action: revert the cancellation so stock and
		// order state stay consistent.
		order.Status = previousStatus
		if revErr := s.orders.ReplaceOrder(ctx, order); revErr != nil {
			s.log.Error("Failed to revert cancellation after stock restore failure",
				zap.String("order_id", order.ID),
				zap.Error(revErr))
		}
		prometheus.RecordOrderOperation("cancel", "error")
		return nil, err
	}

	prometheus.RecordOrderOperation("cancel", "success")
	s.log.Info("Order cancelled",
		zap.String("order_id", order.ID),
		zap.String("product_id", order.ProductID),
		zap.Int("restored_quantity", order.Quantity))

	if restored != nil {
		prometheus.UpdateProductStock(restored.ID, restored.Name, float64(restored.Stock))
		s.notifier.TryPublishStockEvent(ctx, model.StockUpdate{
			ProductID:     restored.ID,
			ProductName:   restored.Name,
			PreviousStock: restored.Stock - order.Quantity,
			NewStock:      restored.Stock,
			UpdatedBy:     stockUpdatedBy,
			UpdateDate:    time.Now().UTC(),
		})
	}
	return order, nil
}

// restoreStock adds quantity back to the product under the versioned
// replace. A missing product is tolerated: the order still cancels,
// matching the original system's behavior when a product was removed
// after the order was placed.
func (s *OrderService) restoreStock(ctx context.Context, productID string, quantity int) (*model.Product, error) {
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		product, err := s.products.GetProduct(ctx, productID)
		if errors.Is(err, store.ErrNotFound) {
			s.log.Warn("Product missing during cancellation, stock not restored",
				zap.String("product_id", productID))
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		product.Stock += quantity
		err = s.products.ReplaceProduct(ctx, product)
		if err == nil {
			return product, nil
		}
		if errors.Is(err, store.ErrConflict) {
			prometheus.RecordOrderConflictRetry()
			continue
		}
		return nil, err
	}
	return nil, store.ErrConflict
}

// AttachPaymentProof records the stored proof-of-payment file name on
// the order.
func (s *OrderService) AttachPaymentProof(ctx context.Context, orderID, fileName string) error {
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		order, err := s.orders.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		order.PaymentProofFile = fileName
		err = s.orders.ReplaceOrder(ctx, order)
		if errors.Is(err, store.ErrConflict) {
			prometheus.RecordOrderConflictRetry()
			continue
		}
		if err != nil {
			return err
		}
		s.log.Info("Payment proof attached",
			zap.String("order_id", orderID),
			zap.String("file_name", fileName))
		return nil
	}
	return store.ErrConflict
}

// Get returns an order by ID.
func (s *OrderService) Get(ctx context.Context, id string) (*model.Order, error) {
	return s.orders.GetOrder(ctx, id)
}

// List returns all orders, newest first.
func (s *OrderService) List(ctx context.Context) ([]model.Order, error) {
	return s.orders.ListOrders(ctx)
}

// ProductQuote is the price/stock snapshot served to the order form.
type ProductQuote struct {
	ProductID  string
	Name       string
	PriceCents int64
	Stock      int
}

// Quote returns the current price, stock and name for a product.
func (s *OrderService) Quote(ctx context.Context, productID string) (*ProductQuote, error) {
	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return &ProductQuote{
		ProductID:  product.ID,
		Name:       product.Name,
		PriceCents: product.PriceCents,
		Stock:      product.Stock,
	}, nil
}

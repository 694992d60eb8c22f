package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"abcretail/internal/model"
	"abcretail/internal/service"
	"abcretail/pkg/logger"
)

// OrderCreateRequest selects the customer, product and quantity. The
// username, product name and prices are snapshotted server-side.
type OrderCreateRequest struct {
	CustomerID string `json:"customer_id"`
	ProductID  string `json:"product_id"`
	Quantity   int    `json:"quantity"`
}

// OrderStatusRequest carries a bare status transition.
type OrderStatusRequest struct {
	Status model.OrderStatus `json:"status"`
}

// OrderEditRequest carries the only fields editable after creation.
// Quantity and price fields on the payload are intentionally absent:
// they are immutable once the order exists.
type OrderEditRequest struct {
	Status         model.OrderStatus `json:"status"`
	TrackingNumber string            `json:"tracking_number"`
}

type OrderHandler struct {
	orders *service.OrderService
}

func NewOrderHandler(orders *service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// List handles retrieving all orders, newest first
func (h *OrderHandler) List(c echo.Context) error {
	log := logger.FromEcho(c)

	orders, err := h.orders.List(c.Request().Context())
	if err != nil {
		return respondError(c, log, err)
	}

	log.Info("Orders retrieved", zap.Int("count", len(orders)))
	return c.JSON(http.StatusOK, viewOrders(orders))
}

// Get handles retrieving a single order by ID
func (h *OrderHandler) Get(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	order, err := h.orders.Get(c.Request().Context(), id)
	if err != nil {
		log.Warn("Order not found", zap.String("order_id", id))
		return respondError(c, log, err)
	}
	return c.JSON(http.StatusOK, viewOrder(*order))
}

// Create handles placing a new order
func (h *OrderHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)

	var req OrderCreateRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	order, err := h.orders.Create(c.Request().Context(), req.CustomerID, req.ProductID, req.Quantity)
	if err != nil {
		log.Warn("Order creation rejected",
			zap.String("customer_id", req.CustomerID),
			zap.String("product_id", req.ProductID),
			zap.Int("quantity", req.Quantity),
			zap.Error(err))
		return respondError(c, log, err)
	}

	log.Info("Order created",
		zap.String("order_id", order.ID),
		zap.String("customer_id", order.CustomerID))
	return c.JSON(http.StatusCreated, viewOrder(*order))
}

// Update handles editing an order's status and tracking number
func (h *OrderHandler) Update(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	var req OrderEditRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.String("order_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	order, err := h.orders.Edit(c.Request().Context(), id, req.TrackingNumber, req.Status)
	if err != nil {
		return respondError(c, log, err)
	}

	log.Info("Order updated",
		zap.String("order_id", id),
		zap.String("status", string(order.Status)))
	return c.JSON(http.StatusOK, viewOrder(*order))
}

// UpdateStatus handles a status-only transition
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	var req OrderStatusRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.String("order_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	order, err := h.orders.TransitionStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return respondError(c, log, err)
	}

	log.Info("Order status updated",
		zap.String("order_id", id),
		zap.String("new_status", string(order.Status)))
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Order status updated to " + string(order.Status),
		"order":   viewOrder(*order),
	})
}

// Cancel handles cancelling an order and restoring its stock
func (h *OrderHandler) Cancel(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	order, err := h.orders.Cancel(c.Request().Context(), id)
	if err != nil {
		return respondError(c, log, err)
	}

	log.Info("Order cancelled", zap.String("order_id", id))
	return c.JSON(http.StatusOK, viewOrder(*order))
}

// ProductPrice returns current price, stock and name for the order form
func (h *OrderHandler) ProductPrice(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	quote, err := h.orders.Quote(c.Request().Context(), id)
	if err != nil {
		return respondError(c, log, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"product_id":   quote.ProductID,
		"product_name": quote.Name,
		"price":        model.CentsToDecimal(quote.PriceCents),
		"price_cents":  quote.PriceCents,
		"stock":        quote.Stock,
	})
}

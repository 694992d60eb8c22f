package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"abcretail/internal/service"
	"abcretail/pkg/logger"
)

// CustomerRequest defines the structure for customer creation/update requests
type CustomerRequest struct {
	Name            string `json:"name"`
	Surname         string `json:"surname"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	ShippingAddress string `json:"shipping_address"`
	PhoneNumber     string `json:"phone_number"`
}

func (r *CustomerRequest) input() service.CustomerInput {
	return service.CustomerInput{
		Name:            r.Name,
		Surname:         r.Surname,
		Username:        r.Username,
		Email:           r.Email,
		ShippingAddress: r.ShippingAddress,
		PhoneNumber:     r.PhoneNumber,
	}
}

type CustomerHandler struct {
	customers *service.CustomerService
}

func NewCustomerHandler(customers *service.CustomerService) *CustomerHandler {
	return &CustomerHandler{customers: customers}
}

// List handles retrieving all customers, optionally filtered to active ones
func (h *CustomerHandler) List(c echo.Context) error {
	log := logger.FromEcho(c)

	activeOnly := false
	if raw := c.QueryParam("active"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			log.Warn("Invalid active parameter", zap.String("value", raw))
		} else {
			activeOnly = parsed
		}
	}

	customers, err := h.customers.List(c.Request().Context(), activeOnly)
	if err != nil {
		return respondError(c, log, err)
	}

	log.Info("Customers retrieved", zap.Int("count", len(customers)))
	return c.JSON(http.StatusOK, customers)
}

// Get handles retrieving a single customer by ID
func (h *CustomerHandler) Get(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	customer, err := h.customers.Get(c.Request().Context(), id)
	if err != nil {
		log.Warn("Customer not found", zap.String("customer_id", id))
		return respondError(c, log, err)
	}
	return c.JSON(http.StatusOK, customer)
}

// Create handles registering a new customer
func (h *CustomerHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)

	var req CustomerRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	customer, err := h.customers.Create(c.Request().Context(), req.input())
	if err != nil {
		return respondError(c, log, err)
	}

	log.Info("Customer created",
		zap.String("customer_id", customer.ID),
		zap.String("username", customer.Username))
	return c.JSON(http.StatusCreated, customer)
}

// Update handles replacing the mutable fields of a customer
func (h *CustomerHandler) Update(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	var req CustomerRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.String("customer_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	customer, err := h.customers.Update(c.Request().Context(), id, req.input())
	if err != nil {
		return respondError(c, log, err)
	}

	log.Info("Customer updated", zap.String("customer_id", id))
	return c.JSON(http.StatusOK, customer)
}

// Delete handles deactivating a customer (soft delete)
func (h *CustomerHandler) Delete(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	if err := h.customers.Deactivate(c.Request().Context(), id); err != nil {
		return respondError(c, log, err)
	}

	log.Info("Customer deactivated", zap.String("customer_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "Customer deactivated successfully"})
}

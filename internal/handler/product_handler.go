package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"abcretail/internal/model"
	"abcretail/internal/service"
	"abcretail/pkg/logger"
)

// ProductRequest defines the structure for product creation/update
// requests. Price is a decimal major-unit amount; it is converted to
// cents at this boundary and stored as an integer.
type ProductRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	ImageURL    string          `json:"image_url"`
	Category    string          `json:"category"`
}

func (r *ProductRequest) input() service.ProductInput {
	return service.ProductInput{
		Name:        r.Name,
		Description: r.Description,
		PriceCents:  model.DecimalToCents(r.Price),
		Stock:       r.Stock,
		ImageURL:    r.ImageURL,
		Category:    r.Category,
	}
}

type ProductHandler struct {
	products *service.ProductService
}

func NewProductHandler(products *service.ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

// List handles retrieving all products, optionally filtered to active ones
func (h *ProductHandler) List(c echo.Context) error {
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

	products, err := h.products.List(c.Request().Context(), activeOnly)
	if err != nil {
		return respondError(c, log, err)
	}

	log.Info("Products retrieved", zap.Int("count", len(products)))
	return c.JSON(http.StatusOK, viewProducts(products))
}

// Get handles retrieving a single product by ID
func (h *ProductHandler) Get(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	product, err := h.products.Get(c.Request().Context(), id)
	if err != nil {
		log.Warn("Product not found", zap.String("product_id", id))
		return respondError(c, log, err)
	}
	return c.JSON(http.StatusOK, viewProduct(*product))
}

// Create handles adding a new product
func (h *ProductHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	product, err := h.products.Create(c.Request().Context(), req.input())
	if err != nil {
		return respondError(c, log, err)
	}

	log.Info("Product created",
		zap.String("product_id", product.ID),
		zap.String("name", product.Name))
	return c.JSON(http.StatusCreated, viewProduct(*product))
}

// Update handles replacing the mutable fields of a product
func (h *ProductHandler) Update(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.String("product_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	product, err := h.products.Update(c.Request().Context(), id, req.input())
	if err != nil {
		return respondError(c, log, err)
	}

	log.Info("Product updated", zap.String("product_id", id))
	return c.JSON(http.StatusOK, viewProduct(*product))
}

// Delete handles deactivating a product (soft delete)
func (h *ProductHandler) Delete(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	if err := h.products.Deactivate(c.Request().Context(), id); err != nil {
		return respondError(c, log, err)
	}

	log.Info("Product deactivated", zap.String("product_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "Product deactivated successfully"})
}

package handler

import (
	"errors"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"abcretail/internal/fileintake"
	"abcretail/internal/model"
	"abcretail/internal/service"
	"abcretail/internal/store"
)

// respondError maps domain errors to HTTP statuses. Storage failures
// are reported generically; the details stay in the logs.
func respondError(c echo.Context, log *zap.Logger, err error) error {
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": ve.Message,
			"field": ve.Field,
		})
	}
	var ee *fileintake.ErrDisallowedExtension
	if errors.As(err, &ee) {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": ee.Error(),
			"field": "file",
		})
	}
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, os.ErrNotExist):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Not found"})
	case errors.Is(err, service.ErrInvalidTransition):
		return c.JSON(http.StatusConflict, echo.Map{"error": "Invalid order status transition"})
	case errors.Is(err, store.ErrDuplicate):
		return c.JSON(http.StatusConflict, echo.Map{"error": "Record already exists"})
	case errors.Is(err, store.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "Concurrent modification, please retry"})
	default:
		log.Error("Request failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal error"})
	}
}

// productView adds the decimal price to the stored cents
// representation for API consumers.
type productView struct {
	model.Product
	Price decimal.Decimal `json:"price"`
}

func viewProduct(p model.Product) productView {
	return productView{Product: p, Price: model.CentsToDecimal(p.PriceCents)}
}

func viewProducts(ps []model.Product) []productView {
	out := make([]productView, 0, len(ps))
	for _, p := range ps {
		out = append(out, viewProduct(p))
	}
	return out
}

// orderView mirrors productView for the order price fields.
type orderView struct {
	model.Order
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

func viewOrder(o model.Order) orderView {
	return orderView{
		Order:      o,
		UnitPrice:  model.CentsToDecimal(o.UnitPriceCents),
		TotalPrice: model.CentsToDecimal(o.TotalPriceCents),
	}
}

func viewOrders(os []model.Order) []orderView {
	out := make([]orderView, 0, len(os))
	for _, o := range os {
		out = append(out, viewOrder(o))
	}
	return out
}

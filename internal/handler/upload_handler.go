package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"abcretail/internal/fileintake"
	"abcretail/internal/service"
	"abcretail/pkg/logger"
	"abcretail/prometheus"
)

type UploadHandler struct {
	intake   *fileintake.Intake
	products *service.ProductService
	orders   *service.OrderService
}

func NewUploadHandler(intake *fileintake.Intake, products *service.ProductService, orders *service.OrderService) *UploadHandler {
	return &UploadHandler{intake: intake, products: products, orders: orders}
}

// ProductImage handles a multipart product image upload. When a
// product_id form field is present the stored reference is recorded on
// the product.
func (h *UploadHandler) ProductImage(c echo.Context) error {
	log := logger.FromEcho(c)

	fh, err := c.FormFile("ProductImage")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ProductImage file is required"})
	}
	src, err := fh.Open()
	if err != nil {
		log.Error("Failed to open uploaded file", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Unreadable upload"})
	}
	defer src.Close()

	name, err := h.intake.StoreProductImage(src, fh.Filename)
	if err != nil {
		prometheus.RecordUpload("product_image", "error")
		return respondError(c, log, err)
	}
	prometheus.RecordUpload("product_image", "success")

	if productID := c.FormValue("product_id"); productID != "" {
		if err := h.products.SetImage(c.Request().Context(), productID, name); err != nil {
			log.Warn("Failed to record image on product",
				zap.String("product_id", productID),
				zap.Error(err))
		}
	}

	log.Info("Product image uploaded", zap.String("file_name", name))
	return c.JSON(http.StatusCreated, echo.Map{"file_name": name})
}

// PaymentProof handles a multipart proof-of-payment upload: extension
// allow-list, blob write, contracts-share copy and sidecar metadata.
func (h *UploadHandler) PaymentProof(c echo.Context) error {
	log := logger.FromEcho(c)

	fh, err := c.FormFile("ProofOfPayment")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ProofOfPayment file is required"})
	}
	src, err := fh.Open()
	if err != nil {
		log.Error("Failed to open uploaded file", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Unreadable upload"})
	}
	defer src.Close()

	orderID := c.FormValue("order_id")
	customerName := c.FormValue("customer_name")

	name, err := h.intake.StorePaymentProof(src, fh.Filename, orderID, customerName)
	if err != nil {
		prometheus.RecordUpload("payment_proof", "rejected")
		log.Warn("Payment proof rejected",
			zap.String("original_name", fh.Filename),
			zap.Error(err))
		return respondError(c, log, err)
	}
	prometheus.RecordUpload("payment_proof", "success")

	if orderID != "" {
		if err := h.orders.AttachPaymentProof(c.Request().Context(), orderID, name); err != nil {
			log.Warn("Failed to record payment proof on order",
				zap.String("order_id", orderID),
				zap.Error(err))
		}
	}

	log.Info("Payment proof uploaded",
		zap.String("file_name", name),
		zap.String("order_id", orderID))
	return c.JSON(http.StatusCreated, echo.Map{"file_name": name})
}

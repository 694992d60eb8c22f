package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"abcretail/internal/fileintake"
	"abcretail/internal/model"
	"abcretail/internal/notify"
	"abcretail/internal/service"
	"abcretail/internal/store"
)

type env struct {
	e     *echo.Echo
	store *store.MemoryStore
}

func newEnv(t *testing.T) *env {
	t.Helper()
	log := zap.NewNop()
	st := store.NewMemoryStore()
	notifier := notify.New(st, log)
	root := t.TempDir()
	intake := fileintake.New(filepath.Join(root, "blobs"), filepath.Join(root, "shares"), log)

	customerSvc := service.NewCustomerService(st, log)
	productSvc := service.NewProductService(st, log)
	orderSvc := service.NewOrderService(st, st, st, notifier, log)

	customerHandler := NewCustomerHandler(customerSvc)
	productHandler := NewProductHandler(productSvc)
	orderHandler := NewOrderHandler(orderSvc)
	uploadHandler := NewUploadHandler(intake, productSvc, orderSvc)
	fileHandler := NewFileHandler(intake)
	queueHandler := NewQueueHandler(notifier)

	e := echo.New()
	e.GET("/health", Health)
	e.POST("/api/customers", customerHandler.Create)
	e.GET("/api/customers", customerHandler.List)
	e.GET("/api/customers/:id", customerHandler.Get)
	e.PUT("/api/customers/:id", customerHandler.Update)
	e.DELETE("/api/customers/:id", customerHandler.Delete)
	e.POST("/api/products", productHandler.Create)
	e.GET("/api/products/:id", productHandler.Get)
	e.GET("/api/products/:id/price", orderHandler.ProductPrice)
	e.POST("/api/orders", orderHandler.Create)
	e.GET("/api/orders/:id", orderHandler.Get)
	e.PUT("/api/orders/:id", orderHandler.Update)
	e.POST("/api/orders/:id/status", orderHandler.UpdateStatus)
	e.POST("/api/orders/:id/cancel", orderHandler.Cancel)
	e.POST("/api/uploads/images", uploadHandler.ProductImage)
	e.POST("/api/uploads/payment-proof", uploadHandler.PaymentProof)
	e.GET("/api/files/contracts", fileHandler.ListContracts)
	e.GET("/api/files/contracts/:name", fileHandler.DownloadContract)
	e.POST("/api/queue/:name", queueHandler.Enqueue)

	return &env{e: e, store: st}
}

func (v *env) request(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	v.e.ServeHTTP(rec, req)
	return rec
}

func (v *env) createCustomer(t *testing.T) string {
	t.Helper()
	rec := v.request(t, http.MethodPost, "/api/customers", echo.Map{
		"name":             "Jane",
		"surname":          "Doe",
		"username":         "janedoe",
		"email":            "jane@example.com",
		"shipping_address": "42 Main Road",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created model.Customer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	return created.ID
}

func (v *env) createProduct(t *testing.T, price string, stock int) string {
	t.Helper()
	rec := v.request(t, http.MethodPost, "/api/products", echo.Map{
		"name":  "Widget",
		"price": price,
		"stock": stock,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	return created.ID
}

func TestHealth(t *testing.T) {
	v := newEnv(t)
	rec := v.request(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateCustomerEndpoint(t *testing.T) {
	v := newEnv(t)
	id := v.createCustomer(t)

	rec := v.request(t, http.MethodGet, "/api/customers/"+id, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = v.request(t, http.MethodGet, "/api/customers/unknown", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateCustomerValidationError(t *testing.T) {
	v := newEnv(t)
	rec := v.request(t, http.MethodPost, "/api/customers", echo.Map{
		"name": "Jane",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body["error"])
}

func TestProductPriceEndpoint(t *testing.T) {
	v := newEnv(t)
	id := v.createProduct(t, "19.99", 7)

	rec := v.request(t, http.MethodGet, "/api/products/"+id+"/price", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Widget", body["product_name"])
	assert.Equal(t, "19.99", body["price"])
	assert.Equal(t, float64(7), body["stock"])
}

func TestOrderLifecycleEndpoints(t *testing.T) {
	v := newEnv(t)
	customerID := v.createCustomer(t)
	productID := v.createProduct(t, "10.00", 5)

	rec := v.request(t, http.MethodPost, "/api/orders", echo.Map{
		"customer_id": customerID,
		"product_id":  productID,
		"quantity":    2,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var order struct {
		ID         string `json:"id"`
		TotalPrice string `json:"total_price"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	assert.Equal(t, "20", order.TotalPrice)

	rec = v.request(t, http.MethodPost, "/api/orders/"+order.ID+"/status", echo.Map{
		"status": "Shipped",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = v.request(t, http.MethodPut, "/api/orders/"+order.ID, echo.Map{
		"status":          "Delivered",
		"tracking_number": "TRACK-9",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated struct {
		TrackingNumber string `json:"tracking_number"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "TRACK-9", updated.TrackingNumber)

	rec = v.request(t, http.MethodPost, "/api/orders/"+order.ID+"/cancel", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Second cancel conflicts.
	rec = v.request(t, http.MethodPost, "/api/orders/"+order.ID+"/cancel", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreateOrderInsufficientStockEndpoint(t *testing.T) {
	v := newEnv(t)
	customerID := v.createCustomer(t)
	productID := v.createProduct(t, "10.00", 1)

	rec := v.request(t, http.MethodPost, "/api/orders", echo.Map{
		"customer_id": customerID,
		"product_id":  productID,
		"quantity":    5,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQueuePassthroughEndpoint(t *testing.T) {
	v := newEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/queue/test-queue", strings.NewReader(`{"hello":"world"}`))
	rec := httptest.NewRecorder()
	v.e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, v.store.QueueLength("test-queue"))

	// Empty body rejected.
	req = httptest.NewRequest(http.MethodPost, "/api/queue/test-queue", nil)
	rec = httptest.NewRecorder()
	v.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func multipartBody(t *testing.T, field, filename, content string, extra map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	fw, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	for k, val := range extra {
		require.NoError(t, w.WriteField(k, val))
	}
	require.NoError(t, w.Close())
	return buf, w.FormDataContentType()
}

func TestPaymentProofUploadEndpoint(t *testing.T) {
	v := newEnv(t)
	customerID := v.createCustomer(t)
	productID := v.createProduct(t, "10.00", 3)

	rec := v.request(t, http.MethodPost, "/api/orders", echo.Map{
		"customer_id": customerID,
		"product_id":  productID,
		"quantity":    1,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var order struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))

	body, contentType := multipartBody(t, "ProofOfPayment", "receipt.pdf", "proof bytes", map[string]string{
		"order_id":      order.ID,
		"customer_name": "Jane Doe",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/uploads/payment-proof", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec = httptest.NewRecorder()
	v.e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		FileName string `json:"file_name"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.FileName)

	// Reference recorded on the order.
	stored, err := v.store.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, resp.FileName, stored.PaymentProofFile)

	// Stored file is listed and downloadable.
	rec = v.request(t, http.MethodGet, "/api/files/contracts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), resp.FileName)

	rec = v.request(t, http.MethodGet, "/api/files/contracts/"+resp.FileName, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "proof bytes", rec.Body.String())
}

func TestPaymentProofUploadRejectsDisallowedExtension(t *testing.T) {
	v := newEnv(t)

	body, contentType := multipartBody(t, "ProofOfPayment", "malware.exe", "mz", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/uploads/payment-proof", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	v.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProductImageUploadEndpoint(t *testing.T) {
	v := newEnv(t)
	productID := v.createProduct(t, "5.00", 1)

	body, contentType := multipartBody(t, "ProductImage", "widget.png", "png bytes", map[string]string{
		"product_id": productID,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/uploads/images", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	v.e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		FileName string `json:"file_name"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	// Reference recorded on the product.
	var product model.Product
	got, err := v.store.GetProduct(context.Background(), productID)
	require.NoError(t, err)
	product = *got
	assert.Equal(t, resp.FileName, product.ImageURL)
}

func TestDeleteCustomerEndpoint(t *testing.T) {
	v := newEnv(t)
	id := v.createCustomer(t)

	rec := v.request(t, http.MethodDelete, "/api/customers/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Soft deleted: still retrievable, excluded from active list.
	rec = v.request(t, http.MethodGet, "/api/customers/"+id, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = v.request(t, http.MethodGet, "/api/customers?active=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}

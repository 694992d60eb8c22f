package main

import (
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"abcretail/internal/fileintake"
	"abcretail/internal/handler"
	mid "abcretail/internal/middleware"
	"abcretail/internal/notify"
	"abcretail/internal/service"
	"abcretail/internal/store"
	"abcretail/pkg/config"
	"abcretail/pkg/database"
	"abcretail/pkg/logger"
	"abcretail/prometheus"
)

func main() {
	// Load .env file; env vars win when it is absent
	_ = godotenv.Load()

	// Load configuration
	appConfig, err := config.Load("abcretail")
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	logger.InitLogger(appConfig)
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting abcretail server",
		zap.String("environment", appConfig.Server.Env),
		zap.String("port", appConfig.Server.Port))

	// Initialize Prometheus metrics
	prometheus.InitMetrics(appConfig)
	log.Info("Prometheus metrics initialized",
		zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	// Initialize database
	if err := database.InitDB(appConfig); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Wire storage, services and handlers
	st := store.NewGormStore(database.GetDB())
	notifier := notify.New(st, log)
	intake := fileintake.New(appConfig.Storage.BlobRoot, appConfig.Storage.ShareRoot, log)

	customerSvc := service.NewCustomerService(st, log)
	productSvc := service.NewProductService(st, log)
	orderSvc := service.NewOrderService(st, st, st, notifier, log)

	customerHandler := handler.NewCustomerHandler(customerSvc)
	productHandler := handler.NewProductHandler(productSvc)
	orderHandler := handler.NewOrderHandler(orderSvc)
	uploadHandler := handler.NewUploadHandler(intake, productSvc, orderSvc)
	fileHandler := handler.NewFileHandler(intake)
	queueHandler := handler.NewQueueHandler(notifier)

	// Initialize Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Recover())
	e.Use(mid.RequestIDMiddleware)
	e.Use(mid.MetricsMiddleware)

	// Metrics endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Health check endpoint
	e.GET("/health", handler.Health)

	// Customer API routes
	customerAPI := e.Group("/api/customers")
	customerAPI.GET("", customerHandler.List)
	customerAPI.GET("/:id", customerHandler.Get)
	customerAPI.POST("", customerHandler.Create)
	customerAPI.PUT("/:id", customerHandler.Update)
	customerAPI.DELETE("/:id", customerHandler.Delete)

	// Product API routes
	productAPI := e.Group("/api/products")
	productAPI.GET("", productHandler.List)
	productAPI.GET("/:id", productHandler.Get)
	productAPI.POST("", productHandler.Create)
	productAPI.PUT("/:id", productHandler.Update)
	productAPI.DELETE("/:id", productHandler.Delete)
	productAPI.GET("/:id/price", orderHandler.ProductPrice)

	// Order API routes
	orderAPI := e.Group("/api/orders")
	orderAPI.GET("", orderHandler.List)
	orderAPI.GET("/:id", orderHandler.Get)
	orderAPI.POST("", orderHandler.Create)
	orderAPI.PUT("/:id", orderHandler.Update)
	orderAPI.POST("/:id/status", orderHandler.UpdateStatus)
	orderAPI.POST("/:id/cancel", orderHandler.Cancel)

	// Upload and file routes
	e.POST("/api/uploads/images", uploadHandler.ProductImage)
	e.POST("/api/uploads/payment-proof", uploadHandler.PaymentProof)
	e.GET("/api/files/contracts", fileHandler.ListContracts)
	e.GET("/api/files/contracts/:name", fileHandler.DownloadContract)

	// Raw queue passthrough
	e.POST("/api/queue/:name", queueHandler.Enqueue)

	// Start server
	port := appConfig.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Server error", zap.Error(err))
	}
}

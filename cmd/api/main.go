package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/b2b-platform/procurement-service/internal/api/dto"
	"github.com/b2b-platform/procurement-service/internal/application"
	"github.com/b2b-platform/procurement-service/internal/config"
	"github.com/b2b-platform/procurement-service/internal/dispatch"
	"github.com/b2b-platform/procurement-service/internal/domain"
	"github.com/b2b-platform/procurement-service/internal/infrastructure/kafkaqueue"
	mongoRepo "github.com/b2b-platform/procurement-service/internal/infrastructure/mongodb"
	"github.com/b2b-platform/procurement-service/internal/listeners"
	"github.com/b2b-platform/procurement-service/pkg/contracts/eventschema"
	appErrors "github.com/b2b-platform/procurement-service/pkg/errors"
	"github.com/b2b-platform/procurement-service/pkg/kafka"
	"github.com/b2b-platform/procurement-service/pkg/logging"
	"github.com/b2b-platform/procurement-service/pkg/metrics"
	"github.com/b2b-platform/procurement-service/pkg/middleware"
	"github.com/b2b-platform/procurement-service/pkg/mongodb"
	"github.com/b2b-platform/procurement-service/pkg/resilience"
	"github.com/b2b-platform/procurement-service/pkg/tracing"
)

const serviceName = "procurement-service"

func main() {
	logConfig := logging.DefaultConfig(serviceName)
	logConfig.Level = logging.LogLevel(getEnv("LOG_LEVEL", "info"))
	logger := logging.New(logConfig)
	logger.SetDefault()

	logger.Info("Starting procurement-service API")

	cfg := config.Load(serviceName)
	ctx := context.Background()

	// Tracing
	tracingConfig := tracing.DefaultConfig(serviceName)
	tracingConfig.OTLPEndpoint = cfg.OTLPEndpoint
	tracingConfig.Environment = cfg.Environment
	tracingConfig.Enabled = cfg.TracingEnabled

	tracerProvider, err := tracing.Initialize(ctx, tracingConfig)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize tracing")
		// Continue without tracing
	} else if tracerProvider != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
				logger.WithError(err).Error("Failed to shutdown tracer")
			}
		}()
		logger.Info("Tracing initialized", "endpoint", tracingConfig.OTLPEndpoint)
	}

	// Metrics
	m := metrics.New(metrics.DefaultConfig(serviceName))
	logger.Info("Metrics initialized")

	// MongoDB
	mongoClient, err := mongodb.NewClient(ctx, cfg.MongoDB)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to MongoDB")
		os.Exit(1)
	}
	defer mongoClient.Close(ctx)
	logger.Info("Connected to MongoDB", "database", cfg.MongoDB.Database)

	// Kafka producer behind a circuit breaker
	producer := kafka.NewProducer(cfg.Kafka)
	defer producer.Close()
	logger.Info("Kafka producer initialized", "brokers", cfg.Kafka.Brokers)

	breaker := resilience.NewCircuitBreaker(
		resilience.DefaultCircuitBreakerConfig("kafka-producer"),
		logger.Logger,
		func(name string, state int) {
			m.CircuitBreakerState.WithLabelValues(name).Set(float64(state))
		},
	)

	// Event contract validator
	schemaValidator, err := eventschema.NewValidator()
	if err != nil {
		logger.WithError(err).Error("Failed to compile event contract")
		os.Exit(1)
	}

	// Event dispatcher with the Kafka queue for async events
	queue := kafkaqueue.NewQueue(producer, breaker, schemaValidator, logger, m)
	dispatcher := dispatch.New(queue, logger, m, &dispatch.Config{MaxHistory: cfg.DispatchMaxHistory})

	// Listener registration. Audit first on every event, notification on
	// customer-facing ones, follow-up on flagged inquiries, metrics last.
	notificationSender := kafkaqueue.NewNotificationSender(producer)
	followUpStore := mongoRepo.NewFollowUpStore(mongoClient.Database())

	dispatcher.Listen(dispatch.Wildcard, listeners.NewAuditListener(logger))
	dispatcher.Listen(dispatch.Wildcard, listeners.NewMetricsListener(m))
	dispatcher.Listen(domain.EventOrderCreated, listeners.NewNotificationListener(notificationSender, logger))
	dispatcher.Listen(domain.EventOrderStatusChanged, listeners.NewNotificationListener(notificationSender, logger))
	dispatcher.Listen(domain.EventInquiryQuoted, listeners.NewNotificationListener(notificationSender, logger))
	dispatcher.Listen(domain.EventInquiryCreated, listeners.NewFollowUpListener(followUpStore, logger))
	dispatcher.Listen(domain.EventInquiryExpired, listeners.NewFollowUpListener(followUpStore, logger))

	// Repositories and application services
	orderRepo := mongoRepo.NewOrderRepository(mongoClient.Database(), logger, m)
	inquiryRepo := mongoRepo.NewInquiryRepository(mongoClient.Database(), logger, m)

	orderService := application.NewOrderService(orderRepo, dispatcher, logger)
	inquiryService := application.NewInquiryService(inquiryRepo, dispatcher, logger)

	// Background expiry of stale quotes
	expiryCtx, stopExpiry := context.WithCancel(ctx)
	defer stopExpiry()
	go runQuoteExpiry(expiryCtx, inquiryService, logger)

	// Router
	router := gin.New()

	middlewareConfig := middleware.DefaultConfig(serviceName, logger.Logger)
	middleware.Setup(router, middlewareConfig)
	router.Use(middleware.MetricsMiddleware(m))

	router.NoRoute(middleware.NoRoute())
	router.NoMethod(middleware.NoMethod())

	router.GET("/health", middleware.HealthCheck(serviceName))
	router.GET("/ready", middleware.ReadinessCheck(serviceName, func() error {
		return mongoClient.HealthCheck(ctx)
	}))
	router.GET("/metrics", middleware.MetricsEndpoint(m))

	v1 := router.Group("/api/v1")
	{
		orders := v1.Group("/orders")
		{
			orders.POST("", createOrderHandler(orderService))
			orders.GET("", listOrdersHandler(orderService))
			orders.GET("/:orderId", getOrderHandler(orderService))
			orders.GET("/status/:status", listOrdersByStatusHandler(orderService))
			orders.GET("/customer/:customerId", listOrdersByCustomerHandler(orderService))

			orders.PUT("/:orderId/status", changeOrderStatusHandler(orderService))
			orders.PUT("/:orderId/confirm", confirmOrderHandler(orderService))
			orders.PUT("/:orderId/process", startProcessingHandler(orderService))
			orders.PUT("/:orderId/ship", shipOrderHandler(orderService))
			orders.PUT("/:orderId/deliver", deliverOrderHandler(orderService))
			orders.PUT("/:orderId/cancel", cancelOrderHandler(orderService))
			orders.PUT("/:orderId/refund", refundOrderHandler(orderService))
			orders.PUT("/:orderId/hold", holdOrderHandler(orderService))
			orders.PUT("/:orderId/resume", resumeOrderHandler(orderService))

			orders.POST("/:orderId/items", addOrderItemHandler(orderService))
			orders.DELETE("/:orderId/items/:productId", removeOrderItemHandler(orderService))
			orders.PUT("/:orderId/items/:productId", updateItemQuantityHandler(orderService))
		}

		inquiries := v1.Group("/inquiries")
		{
			inquiries.POST("", createInquiryHandler(inquiryService))
			inquiries.GET("", listInquiriesHandler(inquiryService))
			inquiries.GET("/:inquiryId", getInquiryHandler(inquiryService))
			inquiries.GET("/status/:status", listInquiriesByStatusHandler(inquiryService))

			inquiries.PUT("/:inquiryId/quote", quoteInquiryHandler(inquiryService))
			inquiries.PUT("/:inquiryId/accept", acceptInquiryHandler(inquiryService))
			inquiries.PUT("/:inquiryId/reject", rejectInquiryHandler(inquiryService))
			inquiries.PUT("/:inquiryId/withdraw", withdrawInquiryHandler(inquiryService))
		}
	}

	srv := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("Server error")
		}
	}()
	logger.Info("Server started", "addr", cfg.ServerAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server stopped")
}

// runQuoteExpiry periodically expires quotes past their validity window
func runQuoteExpiry(ctx context.Context, service *application.InquiryService, logger *logging.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := service.ExpireStaleQuotes(ctx); err != nil {
				logger.WithError(err).Error("Quote expiry sweep failed")
			}
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Order handlers

func createOrderHandler(service *application.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.CreateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}

		result, err := service.CreateOrder(c.Request.Context(), req.ToCommand())
		if err != nil {
			_ = c.Error(err)
			return
		}

		c.JSON(http.StatusCreated, result)
	}
}

func getOrderHandler(service *application.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := service.GetOrder(c.Request.Context(), c.Param("orderId"))
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func listOrdersHandler(service *application.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		results, err := service.ListOrders(c.Request.Context(), paginationQuery(c))
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": results, "count": len(results)})
	}
}

func listOrdersByStatusHandler(service *application.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		results, err := service.ListOrdersByStatus(c.Request.Context(), c.Param("status"))
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": results, "count": len(results)})
	}
}

func listOrdersByCustomerHandler(service *application.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		results, err := service.ListOrdersByCustomer(c.Request.Context(), c.Param("customerId"))
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": results, "count": len(results)})
	}
}

func changeOrderStatusHandler(service *application.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.ChangeOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}

		result, err := service.ChangeOrderStatus(c.Request.Context(), application.ChangeOrderStatusCommand{
			OrderID: c.Param("orderId"),
			Status:  req.Status,
			Reason:  req.Reason,
			Actor:   req.Actor,
		})
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func confirmOrderHandler(service *application.OrderService) gin.HandlerFunc {
	return actorAction(func(ctx context.Context, service *application.OrderService, orderID, _, actor string) (*application.OrderDTO, error) {
		return service.ConfirmOrder(ctx, orderID, actor)
	}, service)
}

func startProcessingHandler(service *application.OrderService) gin.HandlerFunc {
	return actorAction(func(ctx context.Context, service *application.OrderService, orderID, _, actor string) (*application.OrderDTO, error) {
		return service.StartProcessing(ctx, orderID, actor)
	}, service)
}

func deliverOrderHandler(service *application.OrderService) gin.HandlerFunc {
	return actorAction(func(ctx context.Context, service *application.OrderService, orderID, _, actor string) (*application.OrderDTO, error) {
		return service.DeliverOrder(ctx, orderID, actor)
	}, service)
}

func refundOrderHandler(service *application.OrderService) gin.HandlerFunc {
	return actorAction(func(ctx context.Context, service *application.OrderService, orderID, reason, actor string) (*application.OrderDTO, error) {
		return service.RefundOrder(ctx, orderID, reason, actor)
	}, service)
}

func holdOrderHandler(service *application.OrderService) gin.HandlerFunc {
	return actorAction(func(ctx context.Context, service *application.OrderService, orderID, reason, actor string) (*application.OrderDTO, error) {
		return service.HoldOrder(ctx, orderID, reason, actor)
	}, service)
}

func resumeOrderHandler(service *application.OrderService) gin.HandlerFunc {
	return actorAction(func(ctx context.Context, service *application.OrderService, orderID, _, actor string) (*application.OrderDTO, error) {
		return service.ResumeOrder(ctx, orderID, actor)
	}, service)
}

// actorAction handles the family of status endpoints whose body is an
// optional reason/actor pair.
func actorAction(
	fn func(ctx context.Context, service *application.OrderService, orderID, reason, actor string) (*application.OrderDTO, error),
	service *application.OrderService,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.ChangeOrderStatusRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				bindError(c, err)
				return
			}
		}

		result, err := fn(c.Request.Context(), service, c.Param("orderId"), req.Reason, req.Actor)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func shipOrderHandler(service *application.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.ShipOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}

		result, err := service.ShipOrder(c.Request.Context(), application.ShipOrderCommand{
			OrderID:        c.Param("orderId"),
			TrackingNumber: req.TrackingNumber,
			Actor:          req.Actor,
		})
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func cancelOrderHandler(service *application.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.CancelOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}

		result, err := service.CancelOrder(c.Request.Context(), application.CancelOrderCommand{
			OrderID: c.Param("orderId"),
			Reason:  req.Reason,
			Actor:   req.Actor,
		})
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func addOrderItemHandler(service *application.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.OrderItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}

		result, err := service.AddOrderItem(c.Request.Context(), application.AddOrderItemCommand{
			OrderID: c.Param("orderId"),
			Item:    req.ToItemInput(),
		})
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func removeOrderItemHandler(service *application.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := service.RemoveOrderItem(c.Request.Context(), application.RemoveOrderItemCommand{
			OrderID:   c.Param("orderId"),
			ProductID: c.Param("productId"),
		})
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func updateItemQuantityHandler(service *application.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.UpdateItemQuantityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}

		result, err := service.UpdateItemQuantity(c.Request.Context(), application.UpdateItemQuantityCommand{
			OrderID:   c.Param("orderId"),
			ProductID: c.Param("productId"),
			Quantity:  req.Quantity,
		})
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// Inquiry handlers

func createInquiryHandler(service *application.InquiryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.CreateInquiryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}

		result, err := service.CreateInquiry(c.Request.Context(), req.ToCommand())
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusCreated, result)
	}
}

func getInquiryHandler(service *application.InquiryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := service.GetInquiry(c.Request.Context(), c.Param("inquiryId"))
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func listInquiriesHandler(service *application.InquiryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		results, err := service.ListInquiries(c.Request.Context(), paginationQuery(c))
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": results, "count": len(results)})
	}
}

func listInquiriesByStatusHandler(service *application.InquiryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		results, err := service.ListInquiriesByStatus(c.Request.Context(), c.Param("status"))
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": results, "count": len(results)})
	}
}

func quoteInquiryHandler(service *application.InquiryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.QuoteInquiryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}

		result, err := service.QuoteInquiry(c.Request.Context(), req.ToCommand(c.Param("inquiryId")))
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func acceptInquiryHandler(service *application.InquiryService) gin.HandlerFunc {
	return resolveInquiry(service.AcceptInquiry)
}

func rejectInquiryHandler(service *application.InquiryService) gin.HandlerFunc {
	return resolveInquiry(service.RejectInquiry)
}

func withdrawInquiryHandler(service *application.InquiryService) gin.HandlerFunc {
	return resolveInquiry(service.WithdrawInquiry)
}

func resolveInquiry(
	fn func(ctx context.Context, cmd application.ResolveInquiryCommand) (*application.InquiryDTO, error),
) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.ResolveInquiryRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				bindError(c, err)
				return
			}
		}

		result, err := fn(c.Request.Context(), req.ToCommand(c.Param("inquiryId")))
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// Helpers

func paginationQuery(c *gin.Context) application.ListQuery {
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)
	offset, _ := strconv.ParseInt(c.DefaultQuery("offset", "0"), 10, 64)
	return application.ListQuery{Limit: limit, Offset: offset}
}

func bindError(c *gin.Context, err error) {
	appErr := appErrors.ErrValidation("request validation failed")
	appErr.Details = middleware.ValidationErrorDetails(err)
	if len(appErr.Details) == 0 {
		appErr.Details = map[string]string{"body": err.Error()}
	}
	middleware.AbortWithAppError(c, appErr)
}

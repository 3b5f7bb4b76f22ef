package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"threadmarket/app/echo-server/router"
	"threadmarket/business/category"
	"threadmarket/business/exchange"
	"threadmarket/business/orders"
	"threadmarket/business/product"
	"threadmarket/business/report"
	userService "threadmarket/business/user"
	"threadmarket/internal/middleware"
	"threadmarket/internal/repository/notification"
	psqlRepo "threadmarket/internal/repository/postgres"
	redisRepo "threadmarket/internal/repository/redis"
	"threadmarket/internal/rest"
	"threadmarket/pkg/config"
	"threadmarket/pkg/database"
	redisClient "threadmarket/pkg/database/redis"
	"threadmarket/pkg/logger"
	"threadmarket/pkg/metrics"
	"threadmarket/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting Threadmarket", "version", cfg.App.Version)

	utils.InitJWT(cfg.JWT.SecretKey)
	metrics.Init()

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	logger.Info("Database connected successfully")

	rdb, err := redisClient.NewRedisClient(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", "error", err)
	}

	logger.Info("Redis connected successfully")

	// Init notification from mailjet
	mailjetEmail := notification.NewMailjetRepository(
		notification.MailjetConfig{
			MailjetBaseURL:           cfg.Mailjet.MailjetBaseUrl,
			MailjetBasicAuthUsername: cfg.Mailjet.MailjetBasicAuthUsername,
			MailjetBasicAuthPassword: cfg.Mailjet.MailjetBasicAuthPassword,
			MailjetSenderEmail:       cfg.Mailjet.MailjetSenderEmail,
			MailjetSenderName:        cfg.Mailjet.MailjetSenderName,
		},
	)

	// Init validate
	validate := validator.New()

	// Init repo
	userRepo := psqlRepo.NewUserRepository(db)
	ordersRepo := psqlRepo.NewOrdersRepository(db)
	productRepo := psqlRepo.NewProductRepository(db)
	categoryRepo := psqlRepo.NewCategoryRepository(db)
	reportRepo := psqlRepo.NewReportRepository(db)
	tokenRepo := redisRepo.NewTokenRepository(rdb)

	// Init service
	userSvc := userService.NewUserService(userRepo, validate, mailjetEmail, tokenRepo, cfg.App.AppEmailVerificationKey, cfg.App.AppDeploymentUrl)
	ordersSvc := orders.NewOrdersService(ordersRepo)
	productSvc := product.NewProductService(productRepo, categoryRepo)
	categorySvc := category.NewCategoryService(categoryRepo, productRepo)
	reportSvc := report.NewReportService(reportRepo)
	exchangeSvc := exchange.NewExchangeService(productRepo, ordersRepo, categoryRepo)

	// Init handler
	userHandler := rest.NewUserHandler(userSvc)
	ordersHandler := rest.NewOrdersHandler(ordersSvc)
	productHandler := rest.NewProductHandler(productSvc)
	categoryHandler := rest.NewCategoryHandler(categorySvc)
	reportHandler := rest.NewReportHandler(reportSvc)
	exchangeHandler := rest.NewExchangeHandler(exchangeSvc)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Auth middleware, revocation-aware
	authRequired := middleware.AuthMiddlewareWithRedis(tokenRepo)

	// Setup routes
	api := e.Group("/api/v1")
	router.SetupUserRoutes(api, userHandler, authRequired)
	router.SetupProductRoutes(api, productHandler, exchangeHandler, authRequired)
	router.SetupCategoryRoutes(api, categoryHandler, authRequired)
	router.SetOrdersRoutes(api, ordersHandler, authRequired)
	router.SetReportRoutes(api, reportHandler, exchangeHandler, authRequired)

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal("Failed to shutdown server", "error", err)
	}

	logger.Info("Server stopped")
}

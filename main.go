package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	netmail "net/mail"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/exam-service/internal/cache"
	"github.com/SAP-F-2025/exam-service/internal/config"
	"github.com/SAP-F-2025/exam-service/internal/events"
	"github.com/SAP-F-2025/exam-service/internal/handlers"
	"github.com/SAP-F-2025/exam-service/internal/mail"
	"github.com/SAP-F-2025/exam-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/exam-service/internal/services"
	"github.com/SAP-F-2025/exam-service/internal/utils"
	"github.com/SAP-F-2025/exam-service/internal/validator"
	"github.com/SAP-F-2025/exam-service/pkg"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	slogLogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	logger := utils.NewSlogLogger(slogLogger)

	// Initialize database
	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Redis backs the session store, so it is required
	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize Redis: %v", err)
	}

	// Initialize repositories
	repoManager := postgres.NewRepositoryManager(postgres.RepositoryConfig{
		DB:          db,
		RedisClient: redisClient,
	})
	if err := repoManager.Initialize(); err != nil {
		log.Fatalf("Failed to initialize repositories: %v", err)
	}

	// Event bus: Kafka when brokers are configured, in-process otherwise
	bus, err := events.NewBus(cfg.Kafka, slogLogger)
	if err != nil {
		log.Fatalf("Failed to initialize event bus: %v", err)
	}
	publisher := events.NewWatermillPublisher(bus.Publisher, slogLogger)

	sender := mail.NewSender(cfg.Mail.SendGridAPIKey, netmail.Address{
		Name:    cfg.Mail.FromName,
		Address: cfg.Mail.FromAddress,
	}, slogLogger)
	eventRouter, err := events.NewRouter(bus.Subscriber, events.NewMailConsumer(sender, slogLogger), slogLogger)
	if err != nil {
		log.Fatalf("Failed to initialize event router: %v", err)
	}

	routerCtx, stopRouter := context.WithCancel(context.Background())
	defer stopRouter()
	go events.RunRouter(routerCtx, eventRouter, slogLogger)

	// Initialize validator
	validator := validator.New()

	// Initialize services
	serviceManager := services.NewServiceManager(repoManager.GetRepository(), publisher, slogLogger, validator, services.ServiceManagerConfigFrom(cfg))
	if err := serviceManager.Initialize(context.Background()); err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	sessions := cache.NewSessionStore(redisClient, cfg.SessionTTL)
	authMiddleware := handlers.NewSessionAuthMiddleware(sessions, serviceManager.Account(), !cfg.IsDevelopment(), logger)

	// Initialize handlers
	handlerManager := handlers.NewHandlerManager(serviceManager, authMiddleware, logger)

	// Setup Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Setup middleware
	handlers.SetupMiddleware(router, logger, cfg.IsDevelopment(), cfg.CORSAllowedOrigins)

	// Setup routes
	handlerManager.SetupRoutes(router)

	// Create HTTP server
	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment, "event_bus", bus.Kind)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	// Shutdown services, which closes the publisher
	if err := serviceManager.Shutdown(ctx); err != nil {
		log.Printf("Failed to shutdown services: %v", err)
	}

	stopRouter()
	if err := eventRouter.Close(); err != nil {
		log.Printf("Failed to close event router: %v", err)
	}
	if err := bus.Close(); err != nil {
		log.Printf("Failed to close event bus: %v", err)
	}

	// Closes both the database and Redis
	if err := repoManager.Shutdown(ctx); err != nil {
		log.Printf("Failed to close repositories: %v", err)
	}

	logger.Info("Server exited")
}

package main

import (
	"context"
	"database/sql"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"trike/internal/app"
	"trike/internal/config"
	"trike/internal/handler"
	"trike/internal/logging"
	internalRedis "trike/internal/redis"
	"trike/internal/repository/postgres"
	"trike/internal/service"
)

func main() {
	// Load .env if present, then configuration.
	_ = godotenv.Load()
	cfg := config.Load()

	logger := logging.NewLogger(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s (with DB instrumentation)", cfg.NewRelic.AppName)
		}
	}

	// Initialize database with New Relic instrumentation.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	// Wire dependencies.
	server, scheduler := wireServer(db, redisClient, nrApp, cfg, logger)
	defer scheduler.Stop()

	// Start server in goroutine.
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server plus the
// timeout scheduler so the caller can drain pending timers on shutdown.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config, logger *slog.Logger) (*http.Server, *service.TimerScheduler) {
	// Initialize Redis stores.
	queueLock := internalRedis.NewQueueLock(redisClient)
	publisher := internalRedis.NewStreamPublisher(redisClient)
	subscriber := internalRedis.NewStreamSubscriber(redisClient)
	summaryCache := internalRedis.NewSummaryCache(redisClient)

	// Initialize repositories.
	bookingRepo := postgres.NewBookingRepository(db)
	queueRepo := postgres.NewQueueRepository(db)
	driverRepo := postgres.NewDriverRepository(db)
	contributionRepo := postgres.NewContributionRepository(db)
	fareConfigRepo := postgres.NewFareConfigRepository(db)
	auditRepo := postgres.NewAuditRepository(db)

	// Initialize services.
	auditService := service.NewAuditService(auditRepo, logger)
	fareService := service.NewFareService(fareConfigRepo, auditService)
	driverService := service.NewDriverService(driverRepo, auditService)
	contributionService := service.NewContributionService(contributionRepo, summaryCache, logger)
	notifier := service.NewLogNotificationService(logger)
	ratings := service.NewLogRatingSink(logger)
	scheduler := service.NewTimerScheduler()
	lifecycleService := service.NewLifecycleService(
		bookingRepo, fareService, scheduler, publisher, notifier, ratings,
		logger, cfg.Matching.PendingTimeout,
	)
	matchingService := service.NewMatchingService(
		queueRepo, bookingRepo, lifecycleService, queueLock, publisher, logger,
	)
	matchingService.SetLockTTL(cfg.Matching.QueueLockTTL)
	queueService := service.NewQueueService(
		queueRepo, driverRepo, contributionService, queueLock, publisher, logger,
	)
	queueService.SetLockTTL(cfg.Matching.QueueLockTTL)
	queueService.SetMatcher(matchingService)

	// Initialize handlers.
	bookingHandler := handler.NewBookingHandler(lifecycleService, matchingService)
	queueHandler := handler.NewQueueHandler(queueService)
	driverHandler := handler.NewDriverHandler(driverService)
	contributionHandler := handler.NewContributionHandler(contributionService)
	fareHandler := handler.NewFareHandler(fareService)
	auditHandler := handler.NewAuditHandler(auditService)
	streamHandler := handler.NewStreamHandler(subscriber)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		BookingHandler:      bookingHandler,
		QueueHandler:        queueHandler,
		DriverHandler:       driverHandler,
		ContributionHandler: contributionHandler,
		FareHandler:         fareHandler,
		AuditHandler:        auditHandler,
		StreamHandler:       streamHandler,
		RedisClient:         redisClient,
		NewRelicApp:         nrApp,
	})

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, scheduler
}

package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"trike/internal/handler"
	"trike/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	BookingHandler      *handler.BookingHandler
	QueueHandler        *handler.QueueHandler
	DriverHandler       *handler.DriverHandler
	ContributionHandler *handler.ContributionHandler
	FareHandler         *handler.FareHandler
	AuditHandler        *handler.AuditHandler
	StreamHandler       *handler.StreamHandler
	RedisClient         *redis.Client
	NewRelicApp         *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Prometheus metrics.
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Booking routes.
		bookings := v1.Group("/bookings")
		{
			bookings.POST("", deps.BookingHandler.CreateBooking)
			bookings.GET("", deps.BookingHandler.GetAll)
			bookings.GET("/:id", deps.BookingHandler.GetBooking)
			bookings.POST("/:id/cancel", deps.BookingHandler.CancelBooking)
			bookings.POST("/:id/arrived", deps.BookingHandler.MarkArrived)
			bookings.POST("/:id/start", deps.BookingHandler.StartTrip)
			bookings.POST("/:id/complete", deps.BookingHandler.CompleteTrip)
			bookings.POST("/:id/no-show", deps.BookingHandler.ReportNoShow)
			bookings.POST("/:id/match", deps.BookingHandler.Rematch)
		}

		// Driver routes.
		drivers := v1.Group("/drivers")
		{
			drivers.POST("/register", deps.DriverHandler.Register)
			drivers.GET("", deps.DriverHandler.GetAll)
			drivers.GET("/:id", deps.DriverHandler.GetDriver)
			drivers.POST("/:id/approve", deps.DriverHandler.Approve)
			drivers.POST("/:id/reject", deps.DriverHandler.Reject)
			drivers.POST("/:id/vehicle", deps.DriverHandler.ReassignVehicle)
		}

		// Queue routes.
		queue := v1.Group("/queue")
		{
			queue.GET("", deps.QueueHandler.Snapshot)
			queue.POST("/join", deps.QueueHandler.Join)
			queue.POST("/leave", deps.QueueHandler.Leave)
		}

		// Contribution routes.
		contributions := v1.Group("/contributions")
		{
			contributions.POST("", deps.ContributionHandler.Record)
			contributions.GET("/:driverId/summary", deps.ContributionHandler.Summary)
		}

		// Fare routes.
		fares := v1.Group("/fares")
		{
			fares.GET("", deps.FareHandler.GetTariffs)
			fares.POST("/quote", deps.FareHandler.Quote)
			fares.POST("/:tier", deps.FareHandler.UpdateTariff)
			fares.GET("/:tier/history", deps.FareHandler.History)
		}

		// Audit routes.
		v1.GET("/audit", deps.AuditHandler.List)

		// Live change streams (SSE).
		streams := v1.Group("/streams")
		{
			streams.GET("/bookings", deps.StreamHandler.Bookings)
			streams.GET("/queue", deps.StreamHandler.Queue)
		}
	}

	return router
}

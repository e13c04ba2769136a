package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rsalgueiro/truck-booking/internal/auth"
	"github.com/rsalgueiro/truck-booking/internal/booking"
	"github.com/rsalgueiro/truck-booking/internal/client"
	"github.com/rsalgueiro/truck-booking/internal/documents"
	"github.com/rsalgueiro/truck-booking/internal/export"
	"github.com/rsalgueiro/truck-booking/internal/location"
	"github.com/rsalgueiro/truck-booking/internal/notifications"
	"github.com/rsalgueiro/truck-booking/internal/scheduler"
	"github.com/rsalgueiro/truck-booking/internal/vehicle"
	"github.com/rsalgueiro/truck-booking/pkg/cache"
	"github.com/rsalgueiro/truck-booking/pkg/common"
	"github.com/rsalgueiro/truck-booking/pkg/config"
	"github.com/rsalgueiro/truck-booking/pkg/database"
	"github.com/rsalgueiro/truck-booking/pkg/errors"
	"github.com/rsalgueiro/truck-booking/pkg/eventbus"
	"github.com/rsalgueiro/truck-booking/pkg/httpclient"
	"github.com/rsalgueiro/truck-booking/pkg/logger"
	"github.com/rsalgueiro/truck-booking/pkg/middleware"
	"github.com/rsalgueiro/truck-booking/pkg/models"
	redisclient "github.com/rsalgueiro/truck-booking/pkg/redis"
	"github.com/rsalgueiro/truck-booking/pkg/tracing"
	"github.com/rsalgueiro/truck-booking/pkg/websocket"
	"go.uber.org/zap"
)

const (
	serviceName = "booking-service"
	version     = "1.0.0"
)

func main() {
	cfg, err := config.Load(serviceName)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	rootCtx, cancelRoot := context.WithCancel(context.Background())
	defer cancelRoot()

	if err := logger.Init(cfg.Server.Environment); err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	logger.Info("Starting booking service",
		zap.String("service", serviceName),
		zap.String("version", version),
		zap.String("environment", cfg.Server.Environment),
	)

	// Initialize Sentry for error tracking
	if err := errors.InitSentry(&cfg.Sentry, cfg.Server.Environment, serviceName); err != nil {
		logger.Warn("Failed to initialize Sentry, continuing without error tracking", zap.Error(err))
	} else if cfg.Sentry.Enabled {
		defer errors.Flush(2 * time.Second)
		logger.Info("Sentry error tracking initialized")
	}

	// Initialize OpenTelemetry tracer
	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(tracing.Config{
			ServiceName:    serviceName,
			ServiceVersion: version,
			Environment:    cfg.Server.Environment,
			OTLPEndpoint:   cfg.Tracing.Endpoint,
			Enabled:        true,
		}, logger.Get())
		if err != nil {
			logger.Warn("Failed to initialize tracer, continuing without tracing", zap.Error(err))
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := tp.Shutdown(shutdownCtx); err != nil {
					logger.Warn("Failed to shutdown tracer", zap.Error(err))
				}
			}()
			logger.Info("OpenTelemetry tracing initialized")
		}
	}

	db, err := database.NewPostgresPool(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)
	logger.Info("Connected to database")

	if err := database.RunMigrations(&cfg.Database); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	logger.Info("Database migrations applied")

	var cacheManager *cache.Manager
	redisClient, err := redisclient.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Warn("Failed to connect to Redis, continuing without cache", zap.Error(err))
	} else {
		cacheManager = cache.NewManager(redisClient)
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("Failed to close redis client", zap.Error(err))
			}
		}()
		logger.Info("Connected to Redis")
	}

	var bus *eventbus.Bus
	if cfg.NATS.Enabled {
		busCfg := eventbus.DefaultConfig()
		busCfg.URL = cfg.NATS.URL
		bus, err = eventbus.New(busCfg)
		if err != nil {
			logger.Fatal("Failed to connect to NATS", zap.Error(err))
		}
		defer bus.Close()
		logger.Info("Connected to NATS", zap.String("url", cfg.NATS.URL))
	}

	hub := websocket.NewHub()
	go hub.Run()

	// Repositories
	authRepo := auth.NewRepository(db)
	vehicleRepo := vehicle.NewRepository(db)
	bookingRepo := booking.NewRepository(db)
	clientRepo := client.NewRepository(db)
	locationRepo := location.NewRepository(db)
	notificationRepo := notifications.NewRepository(db)

	// Outbound delivery channels. Disabled channels stay nil and the
	// notifications service skips them.
	var emailSender notifications.EmailSender
	if cfg.SMTP.Enabled {
		emailSender = notifications.NewResilientEmailClient(notifications.NewEmailClient(cfg.SMTP), nil)
		logger.Info("SMTP email delivery enabled", zap.String("host", cfg.SMTP.Host))
	}
	var smsSender notifications.SMSSender
	if cfg.Twilio.Enabled {
		smsSender = notifications.NewResilientTwilioClient(notifications.NewTwilioClient(cfg.Twilio), nil)
		logger.Info("Twilio SMS delivery enabled")
	}

	// Services
	notificationService := notifications.NewService(notificationRepo, authRepo, vehicleRepo, clientRepo, emailSender, smsSender)
	authService := auth.NewService(authRepo, notificationService, cfg.JWT.Secret, cfg.JWT.Expiration)
	vehicleService := vehicle.NewService(vehicleRepo, bookingRepo, cacheManager, bus, cfg.Booking.BufferDays)
	bookingService := booking.NewService(bookingRepo, vehicleRepo, cacheManager, bus, hub, cfg.Booking.BufferDays)
	clientService := client.NewService(clientRepo)
	locationService := location.NewService(locationRepo)
	documentService := documents.NewService(cfg.Media, bookingService, vehicleRepo, clientRepo)

	// Event subscribers
	if bus != nil {
		if err := notifications.NewEventHandler(notificationService).RegisterSubscriptions(rootCtx, bus); err != nil {
			logger.Fatal("Failed to register notification subscriptions", zap.Error(err))
		}

		if cfg.Webhook.Enabled {
			webhookClient := httpclient.NewClient(cfg.Webhook.URL, time.Duration(cfg.Webhook.TimeoutSeconds)*time.Second)
			exportService := export.NewService(webhookClient, vehicleRepo, clientRepo, cfg.Webhook.Secret, nil)
			if err := export.NewEventHandler(exportService).RegisterSubscriptions(rootCtx, bus); err != nil {
				logger.Fatal("Failed to register export subscriptions", zap.Error(err))
			}
			logger.Info("Booking export webhook enabled", zap.String("url", cfg.Webhook.URL))
		}
	}

	// Background worker for daily sweeps
	if cfg.Scheduler.Enabled {
		worker := scheduler.NewWorker(bookingService, vehicleService, notificationService, cfg.Scheduler)
		go worker.Start(rootCtx)
		defer worker.Stop()
	}

	// Handlers
	authHandler := auth.NewHandler(authService)
	vehicleHandler := vehicle.NewHandler(vehicleService)
	bookingHandler := booking.NewHandler(bookingService)
	clientHandler := client.NewHandler(clientService)
	locationHandler := location.NewHandler(locationService)
	notificationHandler := notifications.NewHandler(notificationService)
	documentHandler := documents.NewHandler(documentService)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RecoveryWithSentry())
	router.Use(middleware.SentryMiddleware())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestLogger(serviceName))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.Metrics())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = strings.Split(cfg.Server.CORSOrigins, ",")
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization", "X-Correlation-ID")
	router.Use(cors.New(corsCfg))

	router.Use(middleware.ErrorHandler())

	// Health and metrics endpoints
	router.GET("/healthz", common.HealthCheck(serviceName, version))
	router.GET("/health/live", common.LivenessProbe(serviceName, version))

	healthChecks := map[string]func() error{
		"database": func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return db.Ping(ctx)
		},
	}
	if redisClient != nil {
		healthChecks["redis"] = func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return redisClient.Client.Ping(ctx).Err()
		}
	}
	if bus != nil {
		healthChecks["nats"] = func() error {
			if !bus.Connected() {
				return fmt.Errorf("nats connection lost")
			}
			return nil
		}
	}
	router.GET("/health/ready", common.ReadinessProbe(serviceName, version, healthChecks))

	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"service": serviceName, "version": version})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// WebSocket endpoint for live availability updates
	router.GET("/ws", func(c *gin.Context) {
		websocket.HandleWebSocket(c, hub, cfg.JWT.Secret)
	})

	registerRoutes(router, cfg,
		authHandler, vehicleHandler, bookingHandler,
		clientHandler, locationHandler, notificationHandler, documentHandler)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("Server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	cancelRoot()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server stopped")
}

func registerRoutes(
	router *gin.Engine,
	cfg *config.Config,
	authHandler *auth.Handler,
	vehicleHandler *vehicle.Handler,
	bookingHandler *booking.Handler,
	clientHandler *client.Handler,
	locationHandler *location.Handler,
	notificationHandler *notifications.Handler,
	documentHandler *documents.Handler,
) {
	v1 := router.Group("/api/v1")

	v1.POST("/auth/login", authHandler.Login)

	authed := v1.Group("")
	authed.Use(middleware.AuthMiddleware(cfg.JWT.Secret))

	managers := authed.Group("")
	managers.Use(middleware.RequireRole(models.RoleManager, models.RoleAdmin))

	admins := authed.Group("")
	admins.Use(middleware.RequireRole(models.RoleAdmin))

	authed.GET("/auth/profile", authHandler.GetProfile)
	authed.POST("/auth/change-password", authHandler.ChangePassword)

	// User administration
	admins.POST("/users", authHandler.CreateUser)
	admins.GET("/users", authHandler.ListUsers)
	admins.GET("/users/:id", authHandler.GetUser)
	admins.PUT("/users/:id", authHandler.UpdateUser)
	admins.POST("/users/:id/reset-password", authHandler.ResetPassword)
	admins.DELETE("/users/:id", authHandler.DeactivateUser)
	admins.POST("/users/import", authHandler.ImportUsers)

	// Vehicles
	authed.GET("/vehicles", vehicleHandler.ListVehicles)
	authed.GET("/vehicles/:id", vehicleHandler.GetVehicle)
	authed.GET("/vehicles/:id/availability", vehicleHandler.GetAvailability)
	managers.POST("/vehicles", vehicleHandler.CreateVehicle)
	managers.PUT("/vehicles/:id", vehicleHandler.UpdateVehicle)
	managers.POST("/vehicles/:id/relocate", vehicleHandler.RelocateVehicle)
	managers.DELETE("/vehicles/:id", vehicleHandler.DeactivateVehicle)
	managers.POST("/vehicles/:id/documents/:kind", documentHandler.UploadVehicleDocument)

	// Clients
	authed.GET("/clients", clientHandler.List)
	authed.GET("/clients/:id", clientHandler.Get)
	managers.POST("/clients", clientHandler.Create)
	managers.PUT("/clients/:id", clientHandler.Update)
	managers.DELETE("/clients/:id", clientHandler.Deactivate)

	// Locations
	authed.GET("/locations", locationHandler.List)
	authed.GET("/locations/:id", locationHandler.Get)
	admins.POST("/locations", locationHandler.Create)
	admins.PUT("/locations/:id", locationHandler.Update)
	admins.DELETE("/locations/:id", locationHandler.Deactivate)

	// Bookings
	authed.POST("/bookings", bookingHandler.CreateBooking)
	authed.GET("/bookings", bookingHandler.ListBookings)
	authed.GET("/bookings/:id", bookingHandler.GetBooking)
	authed.PUT("/bookings/:id", bookingHandler.UpdateBooking)
	authed.POST("/bookings/:id/cancel", bookingHandler.CancelBooking)
	authed.POST("/bookings/:id/final-km", bookingHandler.RecordFinalKM)
	authed.POST("/bookings/:id/contract", documentHandler.UploadContract)
	managers.POST("/bookings/:id/approve", bookingHandler.ApproveBooking)

	authed.GET("/calendar", bookingHandler.GetCalendar)

	// Automation settings
	admins.GET("/settings/automation", bookingHandler.GetAutomationSettings)
	admins.PUT("/settings/automation", bookingHandler.UpdateAutomationSettings)

	// Notification administration
	admins.POST("/notifications/templates", notificationHandler.CreateTemplate)
	admins.GET("/notifications/templates", notificationHandler.ListTemplates)
	admins.GET("/notifications/templates/:id", notificationHandler.GetTemplate)
	admins.PUT("/notifications/templates/:id", notificationHandler.UpdateTemplate)
	admins.DELETE("/notifications/templates/:id", notificationHandler.DeleteTemplate)
	admins.POST("/notifications/distribution-lists", notificationHandler.CreateDistributionList)
	admins.GET("/notifications/distribution-lists", notificationHandler.ListDistributionLists)
	admins.GET("/notifications/distribution-lists/:id", notificationHandler.GetDistributionList)
	admins.PUT("/notifications/distribution-lists/:id", notificationHandler.UpdateDistributionList)
	admins.DELETE("/notifications/distribution-lists/:id", notificationHandler.DeleteDistributionList)
	admins.GET("/notifications/logs", notificationHandler.ListEmailLogs)

	// Stored contracts and vehicle documents
	authed.GET("/media/*path", documentHandler.Download)
}

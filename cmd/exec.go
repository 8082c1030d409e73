package cmd

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	pubnub "github.com/pubnub/go/v7"
	"github.com/redis/go-redis/v9"

	"github.com/Joaquin123L/eventhub/config"
	"github.com/Joaquin123L/eventhub/internal/handlers"
	"github.com/Joaquin123L/eventhub/internal/services"
	"github.com/Joaquin123L/eventhub/internal/store"
	_ "github.com/Joaquin123L/eventhub/migrations"
	"github.com/Joaquin123L/eventhub/monitoring"
	"github.com/Joaquin123L/eventhub/security"
	"github.com/Joaquin123L/eventhub/utils"
)

func Start() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))

	app := pocketbase.New()

	redisClient, err := utils.NewRedisClient(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return err
	}

	var monitor *monitoring.Monitor
	if cfg.EnableMetrics {
		monitor = monitoring.NewMonitor(prometheus.DefaultRegisterer)
	}

	// Realtime pushes are skipped without a publish key; notifications are
	// still stored and show up in the inbox.
	var publisher services.Publisher
	if cfg.PubNubPublishKey != "" {
		pnConfig := pubnub.NewConfigWithUserId(pubnub.UserId(cfg.PubNubUserID))
		pnConfig.PublishKey = cfg.PubNubPublishKey
		pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
		pnConfig.SecretKey = cfg.PubNubSecretKey
		publisher = services.NewPubNubPublisher(pubnub.NewPubNub(pnConfig))
	} else {
		slog.Warn("PUBNUB_PUBLISH_KEY not set, realtime notifications disabled")
	}

	// Initialize services
	st := store.New(app)
	lifecycle := services.NewLifecycle(monitor)
	notificationService := services.NewNotificationService(st, publisher, monitor)
	feedbackService := services.NewFeedbackService(st)
	locker := services.NewRedisLocker(redisClient, monitor, cfg.PurchaseLockTTL, cfg.PurchaseLockWait)
	gateway := services.NewBreakerGateway(services.NewSimulatedGateway(), monitor, cfg.PaymentTimeout, cfg.PaymentBreakerTimeout)

	// Initialize handlers
	h := handlers.New(handlers.Services{
		Events:        services.NewEventService(st, lifecycle, notificationService, monitor),
		Tickets:       services.NewTicketService(st, locker, gateway, lifecycle, monitor),
		Refunds:       services.NewRefundService(st, monitor),
		Notifications: notificationService,
		Feedback:      feedbackService,
		Venues:        services.NewVenueService(st),
	})
	limiter := security.NewRateLimiter(redisClient, cfg.RateLimit, cfg.RateLimitWindow)

	// Enable migrations
	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		TemplateLang: migratecmd.TemplateLangGo,
		Automigrate:  cfg.IsDevelopment(),
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		v1 := se.Router.Group("/api/v1")
		v1.Bind(limiter.Middleware())
		h.Register(v1)

		se.Router.GET("/health", healthHandler(redisClient))
		if cfg.EnableMetrics {
			se.Router.GET("/metrics", apis.WrapStdHandler(promhttp.Handler()))
		}

		slog.Info("server routes registered", "environment", cfg.Environment)
		return se.Next()
	})

	setupEventHooks(app, publisher)

	app.OnTerminate().BindFunc(func(e *core.TerminateEvent) error {
		slog.Info("shutdown signal received, cleaning up")
		if err := redisClient.Close(); err != nil {
			slog.Error("close redis", "error", err)
		}
		return e.Next()
	})

	if err := app.Start(); err != nil {
		return fmt.Errorf("start app: %w", err)
	}
	return nil
}

func healthHandler(client redis.Cmdable) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := utils.RedisHealthCheck(e.Request.Context(), client); err != nil {
			return e.JSON(http.StatusServiceUnavailable, map[string]string{
				"status": "unhealthy",
				"error":  err.Error(),
			})
		}
		if _, err := e.App.DB().NewQuery("SELECT 1").WithContext(e.Request.Context()).Execute(); err != nil {
			return e.JSON(http.StatusServiceUnavailable, map[string]string{
				"status": "unhealthy",
				"error":  err.Error(),
			})
		}
		return e.JSON(http.StatusOK, map[string]string{"status": "healthy"})
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/venuebook/venuebook/internal/di"
	"github.com/venuebook/venuebook/internal/middleware"
	"github.com/venuebook/venuebook/internal/repository"
	"github.com/venuebook/venuebook/internal/service"
	"github.com/venuebook/venuebook/pkg/config"
	"github.com/venuebook/venuebook/pkg/database"
	"github.com/venuebook/venuebook/pkg/logger"
	"github.com/venuebook/venuebook/pkg/redis"
	"github.com/venuebook/venuebook/pkg/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.App.Environment); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("starting venuebook",
		zap.String("environment", cfg.App.Environment),
		zap.String("version", cfg.App.Version),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := telemetry.Init(ctx, telemetry.Config{
		Enabled:       cfg.OTel.Enabled,
		ServiceName:   cfg.OTel.ServiceName,
		CollectorAddr: cfg.OTel.CollectorAddr,
		SampleRatio:   cfg.OTel.SampleRatio,
		Environment:   cfg.App.Environment,
	}); err != nil {
		log.Fatal("failed to init telemetry", zap.Error(err))
	}
	defer func() {
		if err := telemetry.Shutdown(context.Background()); err != nil {
			log.Warn("telemetry shutdown failed", zap.Error(err))
		}
	}()

	pool, err := database.Connect(ctx, &cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := repository.Migrate(ctx, pool); err != nil {
		log.Fatal("failed to migrate database", zap.Error(err))
	}

	redisClient, err := redis.Connect(ctx, &cfg.Redis)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()

	var publisher service.EventPublisher
	if cfg.Kafka.Enabled() {
		publisher, err = service.NewKafkaEventPublisher(cfg.Kafka.Brokers, cfg.Kafka.ClientID, cfg.Kafka.Topic)
		if err != nil {
			log.Warn("kafka unavailable, booking events disabled", zap.Error(err))
			publisher = service.NewNoOpEventPublisher()
		}
	} else {
		publisher = service.NewNoOpEventPublisher()
	}
	defer publisher.Close()

	container := di.NewContainer(di.ContainerConfig{
		Config:    cfg,
		Pool:      pool,
		Redis:     redisClient,
		Publisher: publisher,
	})

	router := setupRouter(cfg, container, redisClient)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
	log.Info("stopped")
}

func setupRouter(cfg *config.Config, c *di.Container, redisClient middleware.IdempotencyStore) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(telemetry.TracingMiddleware())

	router.GET("/health", c.HealthHandler.Health)
	router.GET("/ready", c.HealthHandler.Ready)

	auth := router.Group("/auth")
	{
		auth.POST("/signup", c.AuthHandler.Signup)
		auth.POST("/login", c.AuthHandler.Login)
		auth.POST("/google", c.AuthHandler.GoogleLogin)
		auth.POST("/forgot-password", c.AuthHandler.ForgotPassword)
		auth.POST("/reset-password", c.AuthHandler.ResetPassword)
		auth.GET("/me", middleware.RequireAuth(c.AuthService), c.AuthHandler.Me)
	}

	venues := router.Group("/venues")
	{
		venues.GET("/search", c.VenueHandler.Search)
		venues.GET("/:id/availability", c.VenueHandler.Availability)

		owner := venues.Group("", middleware.RequireAuth(c.AuthService), middleware.RequireOwner())
		owner.POST("/register", c.VenueHandler.Register)
		owner.PATCH("/:id", c.VenueHandler.Update)
	}

	idempotent := middleware.Idempotency(redisClient, cfg.Booking.IdempotencyTTL)

	bookings := router.Group("/bookings", middleware.RequireAuth(c.AuthService))
	{
		bookings.POST("", idempotent, c.BookingHandler.Create)
		bookings.GET("", c.BookingHandler.List)
		bookings.GET("/my-requests", c.BookingHandler.MyRequests)
		bookings.PATCH("/:id", c.BookingHandler.UpdateStatus)
		bookings.DELETE("/:id", c.BookingHandler.Withdraw)

		bookings.GET("/for-my-venues", middleware.RequireOwner(), c.BookingHandler.ForMyVenues)
	}

	uploads := router.Group("/uploads", middleware.RequireAuth(c.AuthService), middleware.RequireOwner())
	{
		uploads.POST("/sign-cloudinary", c.UploadHandler.SignCloudinary)
	}

	return router
}

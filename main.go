package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"arogya-app-server/internal/config"
	"arogya-app-server/internal/genai"
	"arogya-app-server/internal/logger"
	"arogya-app-server/internal/metrics"
	"arogya-app-server/internal/middleware"
	"arogya-app-server/internal/models"
	"arogya-app-server/internal/routes"
	"arogya-app-server/internal/store"
	"arogya-app-server/internal/vitals"
)

func main() {
	// Load environment variables; a missing .env file is fine
	envErr := godotenv.Load()

	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	appLog := logger.New(cfg.LogLevel)
	if envErr != nil {
		appLog.WithComponent("main").Debug("No .env file found, using process environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := openBackend(cfg)
	if err != nil {
		appLog.WithComponent("main").WithError(err).Fatal("Error opening local store")
	}
	st := store.New(backend, store.WithKeyPrefix(cfg.Store.KeyPrefix), store.WithLogger(appLog))

	collaborator, err := genai.NewGeminiClient(ctx, cfg.AI, appLog)
	if err != nil {
		appLog.WithComponent("main").WithError(err).Fatal("Error creating text generation client")
	}

	collector := metrics.New()

	var samplerOpts []vitals.Option
	if cfg.MQTT.Broker != "" {
		client, err := vitals.ConnectMQTT(cfg.MQTT, appLog)
		if err != nil {
			appLog.WithComponent("main").WithError(err).Warn("MQTT unavailable, vitals will not be published")
		} else {
			defer client.Disconnect(250)
			samplerOpts = append(samplerOpts, vitals.WithObserver(
				vitals.NewMQTTPublisher(client, cfg.MQTT.Topic, byte(cfg.MQTT.QoS), appLog)))
		}
	}

	deps := routes.NewDependencies(ctx, cfg, st, collaborator, collector, appLog, samplerOpts...)
	if err := deps.Router.Mount(ctx); err != nil {
		appLog.WithComponent("main").WithError(err).Warn("Could not check for a stored session")
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(appLog, collector))

	// Configure CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Origin}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	routes.SetupRoutes(router, deps, cfg)

	// Start server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}
	go func() {
		appLog.WithComponent("main").WithField("port", cfg.Port).Info("Server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.WithComponent("main").WithError(err).Fatal("Failed to start server")
		}
	}()

	<-ctx.Done()
	appLog.WithComponent("main").Info("Shutting down")

	deps.Dashboard.Unmounted()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.WithComponent("main").WithError(err).Error("Server shutdown failed")
	}
}

func openBackend(cfg *config.Config) (store.Backend, error) {
	if cfg.Store.Driver == "memory" {
		return store.NewMemoryBackend(), nil
	}

	// Initialize database connection
	db, err := models.InitDB(models.DatabaseConfig{
		Driver: cfg.Store.Driver,
		DSN:    cfg.Store.Database.DSN,
	})
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	return store.NewGormBackend(db), nil
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"slack-chess/internal/audit"
	"slack-chess/internal/config"
	"slack-chess/internal/db"
	"slack-chess/internal/eventbus"
	"slack-chess/internal/handlers"
	"slack-chess/internal/logging"
	"slack-chess/internal/middleware"
	"slack-chess/internal/services"
	"slack-chess/internal/share"
	"slack-chess/internal/store"

	"github.com/rs/cors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	env := config.GetEnv()
	logger, err := logging.New(env)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load(env)
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	logger.Info("starting slack chess server", zap.String("environment", cfg.Environment))

	// Storage: MongoDB when configured, otherwise games live in memory
	var (
		gameStore    store.Store
		eventsColl   *mongo.Collection
		importLogCol *mongo.Collection
		locksColl    *mongo.Collection
	)
	if cfg.UseMongo() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		mongodb, err := db.NewMongoDB(ctx, cfg.MongoDB.URI, cfg.MongoDB.Database, logger)
		cancel()
		if err != nil {
			logger.Fatal("failed to connect to MongoDB", zap.Error(err))
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			mongodb.Close(ctx)
		}()

		gameStore = store.NewMongoStore(mongodb.Games(), logger)
		eventsColl = mongodb.GameEvents()
		importLogCol = mongodb.ImportLog()
		locksColl = mongodb.CleanupLocks()
	} else {
		logger.Warn("no MongoDB URI configured, games are kept in memory")
		gameStore = store.NewMemoryStore()
	}

	if cfg.Cleanup.IdleDays > 0 {
		cleanup := services.NewIdleGameCleanupService(gameStore, locksColl, cfg.IdleAfter(), logger)
		cleanup.Start()
		defer cleanup.Stop()
	}

	// Websocket fan-out, local and across instances
	hub := handlers.NewHub(logger)
	go hub.Run()
	defer hub.Stop()

	bus := eventbus.New(eventsColl, hub.BroadcastToSession, logger)
	bus.Start()
	defer bus.Stop()

	imports := audit.NewImportLog(importLogCol, logger)
	defer imports.Wait()

	poster := share.NewPoster(cfg.Slack.WebhookURL, cfg.Slack.Channel, cfg.Slack.Username, logger)
	if !poster.Enabled() {
		logger.Info("slack webhook not configured, sharing disabled")
	}

	rateLimiter := middleware.NewRateLimiter()
	defer rateLimiter.Stop()

	// Create handlers
	wsHandler := handlers.NewWebSocketHandler(gameStore, hub, bus, logger)
	gameHandler := handlers.NewGameHandler(gameStore, wsHandler, handlers.GameHandlerConfig{
		DetectCheck: cfg.Rules.DetectCheck,
		Poster:      poster,
		Imports:     imports,
		Logger:      logger,
	})

	router := handlers.NewRouter(gameHandler, wsHandler, rateLimiter, handlers.Limits{
		GamesPerMinute:   cfg.RateLimit.GamesPerMinute,
		ImportsPerMinute: cfg.RateLimit.ImportsPerMinute,
	})

	// CORS middleware
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{cfg.Frontend.URL},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	})

	handler := middleware.RequestLogger(logger)(middleware.SecurityHeaders(corsHandler.Handler(router)))

	// Create server
	addr := cfg.Addr()
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}

	logger.Info("server stopped")
}

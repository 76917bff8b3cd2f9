package main

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"slack-chess/internal/config"
	"slack-chess/internal/db"
	"slack-chess/internal/logging"
)

func main() {
	env := config.GetEnv()
	logger, err := logging.New(env)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	// Load config
	cfg, err := config.Load(env)
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}
	if !cfg.UseMongo() {
		logger.Fatal("no MongoDB URI configured, nothing to clear")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Connect to MongoDB
	mongodb, err := db.NewMongoDB(ctx, cfg.MongoDB.URI, cfg.MongoDB.Database, logger)
	if err != nil {
		logger.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer mongodb.Close(context.Background())

	for _, name := range mongodb.Collections() {
		result, err := mongodb.Database.Collection(name).DeleteMany(ctx, bson.M{})
		if err != nil {
			logger.Fatal("failed to clear collection", zap.String("collection", name), zap.Error(err))
		}
		logger.Info("cleared collection", zap.String("collection", name), zap.Int64("deleted", result.DeletedCount))
	}

	logger.Info("database cleared", zap.String("database", cfg.MongoDB.Database))
}

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"slack-chess/internal/models"
)

const maxUpdateAttempts = 5

// MongoStore persists games in the games collection. Concurrent updates are
// detected with the version field and retried.
type MongoStore struct {
	games  *mongo.Collection
	logger *zap.Logger
}

func NewMongoStore(games *mongo.Collection, logger *zap.Logger) *MongoStore {
	return &MongoStore{games: games, logger: logger}
}

func (s *MongoStore) Create(ctx context.Context, g *models.Game) error {
	g.Version = 1
	res, err := s.games.InsertOne(ctx, g)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrExists
		}
		return fmt.Errorf("failed to insert game: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		g.ID = oid
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, sessionID string) (*models.Game, error) {
	var g models.Game
	err := s.games.FindOne(ctx, bson.M{"sessionId": sessionID}).Decode(&g)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load game: %w", err)
	}
	return &g, nil
}

func (s *MongoStore) Exists(ctx context.Context, sessionID string) (bool, error) {
	n, err := s.games.CountDocuments(ctx, bson.M{"sessionId": sessionID}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check game: %w", err)
	}
	return n > 0, nil
}

func (s *MongoStore) Update(ctx context.Context, sessionID string, fn UpdateFunc) (*models.Game, error) {
	for attempt := 1; attempt <= maxUpdateAttempts; attempt++ {
		g, err := s.Get(ctx, sessionID)
		if err != nil {
			return nil, err
		}

		version := g.Version
		if err := fn(g); err != nil {
			return nil, err
		}
		g.SessionID = sessionID
		g.Version = version + 1

		res, err := s.games.ReplaceOne(ctx, bson.M{"sessionId": sessionID, "version": version}, g)
		if err != nil {
			return nil, fmt.Errorf("failed to save game: %w", err)
		}
		if res.MatchedCount == 1 {
			return g, nil
		}

		s.logger.Debug("game update conflict, retrying",
			zap.String("sessionId", sessionID),
			zap.Int64("version", version),
			zap.Int("attempt", attempt))
	}

	return nil, ErrConflict
}

func (s *MongoStore) Delete(ctx context.Context, sessionID string) error {
	res, err := s.games.DeleteOne(ctx, bson.M{"sessionId": sessionID})
	if err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) DeleteIdle(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.games.DeleteMany(ctx, bson.M{"updatedAt": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete idle games: %w", err)
	}
	return res.DeletedCount, nil
}

package services

import (
	"context"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"slack-chess/internal/store"
)

const cleanupLockID = "idle_game_cleanup"

// IdleGameCleanupService periodically deletes games nobody has touched for a
// while. With several instances sharing a database, a lock document makes
// sure only one of them runs each pass.
type IdleGameCleanupService struct {
	store     store.Store
	locks     *mongo.Collection
	logger    *zap.Logger
	stopCh    chan struct{}
	done      chan struct{}
	interval  time.Duration
	idleAfter time.Duration
	now       func() time.Time
}

// NewIdleGameCleanupService creates the service. locks may be nil when the
// store is not shared with other instances.
func NewIdleGameCleanupService(st store.Store, locks *mongo.Collection, idleAfter time.Duration, logger *zap.Logger) *IdleGameCleanupService {
	return &IdleGameCleanupService{
		store:     st,
		locks:     locks,
		logger:    logger,
		stopCh:    make(chan struct{}),
		done:      make(chan struct{}),
		interval:  1 * time.Hour,
		idleAfter: idleAfter,
		now:       time.Now,
	}
}

// Start begins the periodic cleanup loop in a background goroutine.
func (s *IdleGameCleanupService) Start() {
	go s.runCleanupLoop()
	s.logger.Info("idle game cleanup started",
		zap.Duration("interval", s.interval),
		zap.Duration("idleAfter", s.idleAfter))
}

// Stop signals the cleanup loop to exit and waits for it.
func (s *IdleGameCleanupService) Stop() {
	close(s.stopCh)
	<-s.done
}

func (s *IdleGameCleanupService) runCleanupLoop() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.RunCleanupPass(context.Background())
		}
	}
}

// RunCleanupPass deletes idle games once and returns how many were removed
func (s *IdleGameCleanupService) RunCleanupPass(ctx context.Context) int64 {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	if !s.tryAcquireLock(ctx) {
		return 0 // Another server is handling cleanup
	}
	defer s.releaseLock(ctx)

	cutoff := s.now().Add(-s.idleAfter)
	n, err := s.store.DeleteIdle(ctx, cutoff)
	if err != nil {
		s.logger.Error("idle game cleanup failed", zap.Error(err))
		return 0
	}
	if n > 0 {
		s.logger.Info("idle games deleted", zap.Int64("count", n), zap.Time("cutoff", cutoff))
	}
	return n
}

func (s *IdleGameCleanupService) tryAcquireLock(ctx context.Context) bool {
	if s.locks == nil {
		return true
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	now := s.now()
	filter := bson.M{
		"_id": cleanupLockID,
		"$or": []bson.M{
			{"lockedUntil": bson.M{"$exists": false}},
			{"lockedUntil": bson.M{"$lt": now}},
		},
	}
	update := bson.M{
		"$set": bson.M{
			"lockedUntil": now.Add(5 * time.Minute),
			"lockedBy":    hostname,
			"lockedAt":    now,
		},
	}

	opts := options.FindOneAndUpdate().SetUpsert(true)
	if err := s.locks.FindOneAndUpdate(ctx, filter, update, opts).Err(); err != nil && err != mongo.ErrNoDocuments {
		// Duplicate key: the lock exists and is still held
		return false
	}
	return true
}

func (s *IdleGameCleanupService) releaseLock(ctx context.Context) {
	if s.locks == nil {
		return
	}
	_, err := s.locks.UpdateOne(ctx,
		bson.M{"_id": cleanupLockID},
		bson.M{"$set": bson.M{"lockedUntil": s.now()}},
	)
	if err != nil {
		s.logger.Warn("failed to release cleanup lock", zap.Error(err))
	}
}

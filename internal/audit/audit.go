package audit

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"slack-chess/internal/game"
	"slack-chess/internal/middleware"
	"slack-chess/internal/models"
)

// ImportLog records every attempt to load pasted text into a game. Without a
// collection it only logs.
type ImportLog struct {
	collection *mongo.Collection
	logger     *zap.Logger
	wg         sync.WaitGroup
}

func NewImportLog(collection *mongo.Collection, logger *zap.Logger) *ImportLog {
	return &ImportLog{collection: collection, logger: logger}
}

// Accepted records a successful import of state
func (l *ImportLog) Accepted(r *http.Request, sessionID string, size int, state game.GameState) {
	l.write(r, models.ImportRecord{
		SessionID: sessionID,
		Accepted:  true,
		Turn:      state.Turn,
		Pieces:    state.Board.Count(),
		Size:      size,
	})
}

// Rejected records a failed import and the parser's reason
func (l *ImportLog) Rejected(r *http.Request, sessionID string, size int, reason error) {
	l.write(r, models.ImportRecord{
		SessionID: sessionID,
		Reason:    reason.Error(),
		Size:      size,
	})
}

// write stores the record in the background (fire-and-forget).
func (l *ImportLog) write(r *http.Request, rec models.ImportRecord) {
	rec.IP = middleware.GetClientIP(r)
	rec.UserAgent = r.UserAgent()
	rec.CreatedAt = time.Now()

	l.logger.Info("game import",
		zap.String("sessionId", rec.SessionID),
		zap.Bool("accepted", rec.Accepted),
		zap.String("reason", rec.Reason),
		zap.Int("size", rec.Size))

	if l.collection == nil {
		return
	}

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := l.collection.InsertOne(ctx, rec); err != nil {
			l.logger.Warn("import log write failed", zap.Error(err))
		}
	}()
}

// Wait blocks until pending writes finish. Called on shutdown.
func (l *ImportLog) Wait() {
	l.wg.Wait()
}

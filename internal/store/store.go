package store

import (
	"context"
	"errors"
	"time"

	"slack-chess/internal/models"
)

var (
	ErrNotFound = errors.New("game not found")
	ErrExists   = errors.New("game already exists")
	ErrConflict = errors.New("game was modified concurrently")
)

// UpdateFunc mutates g in place. Returning an error aborts the update and
// leaves the stored game untouched.
type UpdateFunc func(g *models.Game) error

// Store owns the persisted games. Update is the only way to change a stored
// game and runs read-compute-write as one step per session.
type Store interface {
	Create(ctx context.Context, g *models.Game) error
	Get(ctx context.Context, sessionID string) (*models.Game, error)
	Exists(ctx context.Context, sessionID string) (bool, error)
	Update(ctx context.Context, sessionID string, fn UpdateFunc) (*models.Game, error)
	Delete(ctx context.Context, sessionID string) error
	// DeleteIdle removes every game last updated before cutoff and returns
	// how many were removed
	DeleteIdle(ctx context.Context, cutoff time.Time) (int64, error)
}

func cloneGame(g *models.Game) *models.Game {
	c := *g
	c.State = g.State.Clone()
	c.Origin = g.Origin.Clone()
	if g.ImportedAt != nil {
		t := *g.ImportedAt
		c.ImportedAt = &t
	}
	return &c
}

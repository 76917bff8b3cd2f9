package store

import (
	"context"
	"sync"
	"time"

	"slack-chess/internal/models"
)

// MemoryStore keeps games in process memory. Used when no MongoDB URI is
// configured, and by tests.
type MemoryStore struct {
	mu    sync.Mutex
	games map[string]*models.Game
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{games: make(map[string]*models.Game)}
}

func (s *MemoryStore) Create(ctx context.Context, g *models.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.games[g.SessionID]; ok {
		return ErrExists
	}
	g.Version = 1
	s.games[g.SessionID] = cloneGame(g)
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, sessionID string) (*models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.games[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneGame(g), nil
}

func (s *MemoryStore) Exists(ctx context.Context, sessionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.games[sessionID]
	return ok, nil
}

func (s *MemoryStore) Update(ctx context.Context, sessionID string, fn UpdateFunc) (*models.Game, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.games[sessionID]
	if !ok {
		return nil, ErrNotFound
	}

	next := cloneGame(current)
	if err := fn(next); err != nil {
		return nil, err
	}
	next.SessionID = sessionID
	next.Version = current.Version + 1
	s.games[sessionID] = next

	return cloneGame(next), nil
}

func (s *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.games[sessionID]; !ok {
		return ErrNotFound
	}
	delete(s.games, sessionID)
	return nil
}

func (s *MemoryStore) DeleteIdle(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, g := range s.games {
		if g.UpdatedAt.Before(cutoff) {
			delete(s.games, id)
			n++
		}
	}
	return n, nil
}

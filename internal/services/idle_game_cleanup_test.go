package services

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"slack-chess/internal/models"
	"slack-chess/internal/store"
)

func TestRunCleanupPass(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	st := store.NewMemoryStore()
	for id, age := range map[string]time.Duration{
		"stale-old-owl-1":  40 * 24 * time.Hour,
		"stale-old-owl-2":  31 * 24 * time.Hour,
		"fresh-new-lark-3": 29 * 24 * time.Hour,
		"fresh-new-lark-4": time.Minute,
	} {
		if err := st.Create(ctx, models.NewGame(id, now.Add(-age))); err != nil {
			t.Fatal(err)
		}
	}

	svc := NewIdleGameCleanupService(st, nil, 30*24*time.Hour, zap.NewNop())
	svc.now = func() time.Time { return now }

	if n := svc.RunCleanupPass(ctx); n != 2 {
		t.Fatalf("deleted %d games, want 2", n)
	}
	for _, id := range []string{"fresh-new-lark-3", "fresh-new-lark-4"} {
		if ok, _ := st.Exists(ctx, id); !ok {
			t.Fatalf("%s was deleted", id)
		}
	}
	if ok, _ := st.Exists(ctx, "stale-old-owl-1"); ok {
		t.Fatal("stale game survived")
	}

	if n := svc.RunCleanupPass(ctx); n != 0 {
		t.Fatalf("second pass deleted %d", n)
	}
}

func TestStartStop(t *testing.T) {
	svc := NewIdleGameCleanupService(store.NewMemoryStore(), nil, time.Hour, zap.NewNop())
	svc.interval = time.Millisecond
	svc.Start()
	time.Sleep(10 * time.Millisecond)
	svc.Stop()
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"slack-chess/internal/game"
)

type GameSource string

const (
	GameSourceNew    GameSource = "new"    // Started from the standard position
	GameSourceImport GameSource = "import" // Loaded from pasted text
)

// Game is one persisted session. Origin is the position replay starts from:
// the standard position, or the board as it was when text was imported.
type Game struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	SessionID  string             `json:"sessionId" bson:"sessionId"`
	State      game.GameState     `json:"state" bson:"state"`
	Origin     game.GameState     `json:"-" bson:"origin"`
	Source     GameSource         `json:"source" bson:"source"`
	Version    int64              `json:"version" bson:"version"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt" bson:"updatedAt"`
	ImportedAt *time.Time         `json:"importedAt,omitempty" bson:"importedAt,omitempty"`
}

// NewGame returns a session at the standard starting position
func NewGame(sessionID string, now time.Time) *Game {
	start := game.NewGame()
	return &Game{
		SessionID: sessionID,
		State:     start,
		Origin:    start.Clone(),
		Source:    GameSourceNew,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Reset puts the session back at the standard position and forgets any import
func (g *Game) Reset(now time.Time) {
	start := game.NewGame()
	g.State = start
	g.Origin = start.Clone()
	g.Source = GameSourceNew
	g.ImportedAt = nil
	g.UpdatedAt = now
}

// Import replaces the session with a parsed position, which becomes the new
// replay origin
func (g *Game) Import(state game.GameState, now time.Time) {
	g.State = state
	g.Origin = state.Clone()
	g.Source = GameSourceImport
	g.ImportedAt = &now
	g.UpdatedAt = now
}

// Envelope is the shareable text for the current position
func (g *Game) Envelope() string {
	return game.FormatGameState(g.State)
}

// Replay rebuilds the game after k plies of the current history
func (g *Game) Replay(k int) (game.Snapshot, error) {
	return game.Replay(g.Origin, g.State.MoveHistory, k)
}

// ImportRecord is one entry of the import log
type ImportRecord struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	SessionID string             `json:"sessionId" bson:"sessionId"`
	Accepted  bool               `json:"accepted" bson:"accepted"`
	Reason    string             `json:"reason,omitempty" bson:"reason,omitempty"`
	Turn      game.Color         `json:"turn,omitempty" bson:"turn,omitempty"`
	Pieces    int                `json:"pieces,omitempty" bson:"pieces,omitempty"`
	Size      int                `json:"size" bson:"size"`
	IP        string             `json:"ip" bson:"ip"`
	UserAgent string             `json:"userAgent" bson:"userAgent"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

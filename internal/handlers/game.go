package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"slack-chess/internal/audit"
	"slack-chess/internal/game"
	"slack-chess/internal/models"
	"slack-chess/internal/pgn"
	"slack-chess/internal/share"
	"slack-chess/internal/store"
	"slack-chess/internal/utils"
)

// Envelopes are about 700 bytes; leave room for chat text around them
const maxImportBytes = 16 << 10

type GameHandler struct {
	store       store.Store
	ws          *WebSocketHandler
	poster      *share.Poster
	imports     *audit.ImportLog
	logger      *zap.Logger
	detectCheck bool
	now         func() time.Time
}

type GameHandlerConfig struct {
	// DetectCheck computes check, checkmate and stalemate after every move
	DetectCheck bool
	Poster      *share.Poster
	Imports     *audit.ImportLog
	Logger      *zap.Logger
}

func NewGameHandler(st store.Store, ws *WebSocketHandler, cfg GameHandlerConfig) *GameHandler {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Imports == nil {
		cfg.Imports = audit.NewImportLog(nil, cfg.Logger)
	}
	return &GameHandler{
		store:       st,
		ws:          ws,
		poster:      cfg.Poster,
		imports:     cfg.Imports,
		logger:      cfg.Logger,
		detectCheck: cfg.DetectCheck,
		now:         time.Now,
	}
}

type GameResponse struct {
	SessionID string            `json:"sessionId"`
	Game      game.GameState    `json:"game"`
	Envelope  string            `json:"envelope"`
	Status    string            `json:"status"`
	MoveCount int               `json:"moveCount"`
	Source    models.GameSource `json:"source"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

type MakeMoveRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type MakeMoveResponse struct {
	Success bool   `json:"success"`
	Move    string `json:"move"`
	GameResponse
}

type TargetsResponse struct {
	From    string   `json:"from"`
	Targets []string `json:"targets"`
}

type MovesResponse struct {
	Moves     []game.MoveRow `json:"moves"`
	MoveCount int            `json:"moveCount"`
}

type ReplayResponse struct {
	Index    int            `json:"index"`
	Total    int            `json:"total"`
	Live     bool           `json:"live"`
	Game     game.GameState `json:"game"`
	Envelope string         `json:"envelope"`
}

func newGameResponse(g *models.Game) GameResponse {
	return GameResponse{
		SessionID: g.SessionID,
		Game:      g.State,
		Envelope:  g.Envelope(),
		Status:    game.StatusLine(g.State),
		MoveCount: g.State.MoveCount(),
		Source:    g.Source,
		UpdatedAt: g.UpdatedAt,
	}
}

func (h *GameHandler) CreateGame(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	sessionID, err := utils.GenerateUniqueSessionID(ctx, h.store.Exists)
	if err != nil {
		h.logger.Error("failed to generate session id", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to create game")
		return
	}

	g := models.NewGame(sessionID, h.now())
	if err := h.store.Create(ctx, g); err != nil {
		h.respondWithStoreError(w, sessionID, err)
		return
	}

	h.logger.Info("game created", zap.String("sessionId", sessionID))
	respondWithJSON(w, http.StatusCreated, newGameResponse(g))
}

func (h *GameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	g, ok := h.load(ctx, w, r)
	if !ok {
		return
	}
	respondWithJSON(w, http.StatusOK, newGameResponse(g))
}

func (h *GameHandler) MakeMove(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	sessionID := mux.Vars(r)["sessionId"]

	var req MakeMoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	from, err := game.ParseSquare(req.From)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	to, err := game.ParseSquare(req.To)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	g, err := h.store.Update(ctx, sessionID, func(g *models.Game) error {
		if err := game.ValidateMove(g.State, from, to); err != nil {
			return err
		}
		next := game.MakeMove(g.State, from, to)
		if h.detectCheck {
			next = game.Evaluate(next)
		}
		g.State = next
		g.UpdatedAt = h.now()
		return nil
	})
	if err != nil {
		if isRuleError(err) {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.respondWithStoreError(w, sessionID, err)
		return
	}

	move := game.Move{From: from, To: to}
	h.logger.Debug("move played", zap.String("sessionId", sessionID), zap.Stringer("move", move))
	h.ws.BroadcastGameUpdate(ctx, g)

	respondWithJSON(w, http.StatusOK, MakeMoveResponse{
		Success:      true,
		Move:         move.String(),
		GameResponse: newGameResponse(g),
	})
}

func (h *GameHandler) GetTargets(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	from, err := game.ParseSquare(r.URL.Query().Get("from"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	g, ok := h.load(ctx, w, r)
	if !ok {
		return
	}

	targets := game.Targets(g.State, from)
	resp := TargetsResponse{From: from.String(), Targets: make([]string, 0, len(targets))}
	for _, pos := range targets {
		resp.Targets = append(resp.Targets, pos.String())
	}
	respondWithJSON(w, http.StatusOK, resp)
}

func (h *GameHandler) GetEnvelope(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	g, ok := h.load(ctx, w, r)
	if !ok {
		return
	}
	respondWithText(w, http.StatusOK, "text/plain; charset=utf-8", g.Envelope())
}

// ImportGame replaces the session's game with pasted envelope text. The
// imported position has no history; it becomes the new replay origin.
func (h *GameHandler) ImportGame(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	sessionID := mux.Vars(r)["sessionId"]

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		respondWithError(w, http.StatusRequestEntityTooLarge, "Pasted text is too large")
		return
	}

	state, err := game.ParseGameState(string(body))
	if err != nil {
		h.imports.Rejected(r, sessionID, len(body), err)
		respondWithError(w, http.StatusBadRequest, game.ImportErrorMessage)
		return
	}

	g, err := h.store.Update(ctx, sessionID, func(g *models.Game) error {
		g.Import(state, h.now())
		return nil
	})
	if err != nil {
		h.respondWithStoreError(w, sessionID, err)
		return
	}

	h.imports.Accepted(r, sessionID, len(body), state)
	h.ws.BroadcastGameUpdate(ctx, g)
	respondWithJSON(w, http.StatusOK, newGameResponse(g))
}

func (h *GameHandler) ResetGame(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	sessionID := mux.Vars(r)["sessionId"]
	g, err := h.store.Update(ctx, sessionID, func(g *models.Game) error {
		g.Reset(h.now())
		return nil
	})
	if err != nil {
		h.respondWithStoreError(w, sessionID, err)
		return
	}

	h.logger.Info("game reset", zap.String("sessionId", sessionID))
	h.ws.BroadcastGameUpdate(ctx, g)
	respondWithJSON(w, http.StatusOK, newGameResponse(g))
}

func (h *GameHandler) GetMoves(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	g, ok := h.load(ctx, w, r)
	if !ok {
		return
	}
	respondWithJSON(w, http.StatusOK, MovesResponse{
		Moves:     game.PairMoves(g.State.MoveHistory),
		MoveCount: g.State.MoveCount(),
	})
}

// GetReplay returns the board after the first index plies. Out of range
// indexes are clamped.
func (h *GameHandler) GetReplay(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Index must be a number")
		return
	}

	g, ok := h.load(ctx, w, r)
	if !ok {
		return
	}

	snap, err := g.Replay(index)
	if err != nil {
		h.logger.Error("replay failed", zap.String("sessionId", g.SessionID), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to replay game")
		return
	}

	respondWithJSON(w, http.StatusOK, ReplayResponse{
		Index:    snap.Index,
		Total:    g.State.MoveCount(),
		Live:     snap.Live,
		Game:     snap.State,
		Envelope: game.FormatGameState(snap.State),
	})
}

func (h *GameHandler) ExportPGN(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	g, ok := h.load(ctx, w, r)
	if !ok {
		return
	}

	text, err := pgn.Export(g.Origin, g.State.MoveHistory, pgn.Tags{Date: g.CreatedAt})
	if err != nil {
		if errors.Is(err, pgn.ErrNotStandard) {
			respondWithError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		h.logger.Error("pgn export failed", zap.String("sessionId", g.SessionID), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to export game")
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="`+g.SessionID+`.pgn"`)
	respondWithText(w, http.StatusOK, "application/x-chess-pgn", text)
}

func (h *GameHandler) ShareGame(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	if !h.poster.Enabled() {
		respondWithError(w, http.StatusServiceUnavailable, "Slack sharing is not configured")
		return
	}

	g, ok := h.load(ctx, w, r)
	if !ok {
		return
	}

	if err := h.poster.Share(ctx, g.SessionID, game.StatusLine(g.State), g.Envelope()); err != nil {
		h.logger.Warn("slack share failed", zap.String("sessionId", g.SessionID), zap.Error(err))
		respondWithError(w, http.StatusBadGateway, "Failed to post to Slack")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]bool{"shared": true})
}

// load fetches the game named in the route and writes the error response if
// there is none
func (h *GameHandler) load(ctx context.Context, w http.ResponseWriter, r *http.Request) (*models.Game, bool) {
	sessionID := mux.Vars(r)["sessionId"]
	g, err := h.store.Get(ctx, sessionID)
	if err != nil {
		h.respondWithStoreError(w, sessionID, err)
		return nil, false
	}
	return g, true
}

func (h *GameHandler) respondWithStoreError(w http.ResponseWriter, sessionID string, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "Game not found")
	case errors.Is(err, store.ErrConflict):
		respondWithError(w, http.StatusConflict, "Game was changed by another request, try again")
	case errors.Is(err, store.ErrExists):
		respondWithError(w, http.StatusConflict, "Game already exists")
	default:
		h.logger.Error("store error", zap.String("sessionId", sessionID), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func isRuleError(err error) bool {
	for _, target := range []error{game.ErrOutOfBounds, game.ErrNoPiece, game.ErrNotYourTurn, game.ErrOwnPiece, game.ErrIllegalMove} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

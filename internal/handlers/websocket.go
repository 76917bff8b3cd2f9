package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"slack-chess/internal/game"
	"slack-chess/internal/models"
	"slack-chess/internal/store"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS is enforced on the HTTP API
	},
}

// Publisher forwards game updates to other server instances
type Publisher interface {
	Publish(ctx context.Context, sessionID string, message []byte)
}

type WebSocketHandler struct {
	store  store.Store
	hub    *Hub
	bus    Publisher
	logger *zap.Logger
}

func NewWebSocketHandler(st store.Store, hub *Hub, bus Publisher, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{store: st, hub: hub, bus: bus, logger: logger}
}

// Hub maintains active connections and broadcasts messages
type Hub struct {
	// Map of sessionId -> map of clientId -> connection
	sessions map[string]map[string]*Client
	mu       sync.Mutex
	logger   *zap.Logger

	register   chan *Client
	unregister chan *Client
	broadcast  chan *BroadcastMessage
	done       chan struct{}
}

type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	sessionID string
	clientID  string
	send      chan []byte
}

type BroadcastMessage struct {
	SessionID string
	Message   []byte
}

// WSMessage is pushed to every client watching a session after each change
type WSMessage struct {
	Type      string         `json:"type"`
	SessionID string         `json:"sessionId"`
	Game      game.GameState `json:"game"`
	Envelope  string         `json:"envelope"`
	Status    string         `json:"status"`
	MoveCount int            `json:"moveCount"`
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		sessions:   make(map[string]map[string]*Client),
		logger:     logger,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *BroadcastMessage, 64),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.sessions[client.sessionID] == nil {
				h.sessions[client.sessionID] = make(map[string]*Client)
			}
			h.sessions[client.sessionID][client.clientID] = client
			h.mu.Unlock()
			h.logger.Debug("client registered", zap.String("sessionId", client.sessionID), zap.String("clientId", client.clientID))

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()
			h.logger.Debug("client unregistered", zap.String("sessionId", client.sessionID), zap.String("clientId", client.clientID))

		case msg := <-h.broadcast:
			h.mu.Lock()
			for _, client := range h.sessions[msg.SessionID] {
				select {
				case client.send <- msg.Message:
				default:
					// Slow consumer
					h.remove(client)
				}
			}
			h.mu.Unlock()

		case <-h.done:
			return
		}
	}
}

// remove drops client and closes its send channel. Caller holds h.mu.
func (h *Hub) remove(client *Client) {
	session, ok := h.sessions[client.sessionID]
	if !ok {
		return
	}
	if _, ok := session[client.clientID]; !ok {
		return
	}
	delete(session, client.clientID)
	close(client.send)
	if len(session) == 0 {
		delete(h.sessions, client.sessionID)
	}
}

// Stop ends Run
func (h *Hub) Stop() {
	close(h.done)
}

// BroadcastToSession queues message for every local client of a session.
// Its signature matches eventbus.DeliverFunc.
func (h *Hub) BroadcastToSession(sessionID string, message []byte) {
	select {
	case h.broadcast <- &BroadcastMessage{SessionID: sessionID, Message: message}:
	case <-h.done:
	}
}

// ClientCount returns the number of local clients watching a session
func (h *Hub) ClientCount(sessionID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions[sessionID])
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	// Clients only listen; anything they send is discarded
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug("websocket read error", zap.String("clientId", c.clientID), zap.Error(err))
			}
			break
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// HandleWebSocket subscribes the connection to one session. The current game
// is sent right away, then every update after it.
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	g, err := h.store.Get(r.Context(), sessionID)
	if errors.Is(err, store.ErrNotFound) {
		respondWithError(w, http.StatusNotFound, "Game not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to load game for websocket", zap.String("sessionId", sessionID), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to load game")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		hub:       h.hub,
		conn:      conn,
		sessionID: sessionID,
		clientID:  uuid.New().String(),
		send:      make(chan []byte, 256),
	}

	// Queue the snapshot before registering so it is the first frame
	if data, err := json.Marshal(newWSMessage(g)); err == nil {
		client.send <- data
	}
	select {
	case h.hub.register <- client:
	case <-h.hub.done:
		// Shutting down
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func newWSMessage(g *models.Game) WSMessage {
	return WSMessage{
		Type:      "game_update",
		SessionID: g.SessionID,
		Game:      g.State,
		Envelope:  g.Envelope(),
		Status:    game.StatusLine(g.State),
		MoveCount: g.State.MoveCount(),
	}
}

// BroadcastGameUpdate pushes g to local clients and, through the event bus, to
// clients connected to other instances.
func (h *WebSocketHandler) BroadcastGameUpdate(ctx context.Context, g *models.Game) {
	data, err := json.Marshal(newWSMessage(g))
	if err != nil {
		h.logger.Error("failed to marshal game update", zap.Error(err))
		return
	}
	h.hub.BroadcastToSession(g.SessionID, data)
	if h.bus != nil {
		h.bus.Publish(ctx, g.SessionID, data)
	}
}

// Package ws pushes change notifications to connected clients. It
// implements a hub-and-spoke pattern: every authenticated client joins
// the shared pool plus a room for its role, and services broadcast
// events fire-and-forget.
package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	gorillawebsocket "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/recordspro/api/internal/platform/auth"
)

// Message is the envelope delivered to clients.
type Message struct {
	Event     string      `json:"event"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// RoleTopic names the room shared by all clients with the given role.
func RoleTopic(role string) string {
	return "role:" + role
}

// Conn abstracts a WebSocket connection for testability.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client represents a single connected user.
type Client struct {
	ID     string
	UserID string
	Role   string
	Send   chan []byte
	conn   Conn
}

// Hub is the central connection manager. All operations are
// thread-safe via sync.RWMutex.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[*Client]struct{} // topic -> set of clients
	all    map[*Client]struct{}
	logger zerolog.Logger
}

// NewHub creates a Hub ready to manage clients.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		topics: make(map[string]map[*Client]struct{}),
		all:    make(map[*Client]struct{}),
		logger: logger,
	}
}

// Register adds a client to the shared pool and its role room.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.all[client] = struct{}{}

	topic := RoleTopic(client.Role)
	if h.topics[topic] == nil {
		h.topics[topic] = make(map[*Client]struct{})
	}
	h.topics[topic][client] = struct{}{}
}

// Unregister removes a client and closes its Send channel.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.all[client]; !ok {
		return
	}

	topic := RoleTopic(client.Role)
	if members, ok := h.topics[topic]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.topics, topic)
		}
	}

	delete(h.all, client)
	close(client.Send)
}

// Notify broadcasts an event to every connected client. Slow clients
// are skipped rather than blocked on.
func (h *Hub) Notify(event string, payload interface{}) {
	data, err := json.Marshal(Message{Event: event, Payload: payload, Timestamp: time.Now()})
	if err != nil {
		h.logger.Error().Err(err).Str("event", event).Msg("failed to marshal ws message")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.all {
		select {
		case client.Send <- data:
		default:
			// Client buffer full; skip to avoid blocking.
		}
	}
}

// NotifyRole broadcasts an event to all clients with the given role.
func (h *Hub) NotifyRole(role, event string, payload interface{}) {
	data, err := json.Marshal(Message{Event: event, Payload: payload, Timestamp: time.Now()})
	if err != nil {
		h.logger.Error().Err(err).Str("event", event).Msg("failed to marshal ws message")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.topics[RoleTopic(role)] {
		select {
		case client.Send <- data:
		default:
		}
	}
}

// ClientCount returns the total number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.all)
}

// TopicCount returns the number of clients in a topic.
func (h *Hub) TopicCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

// ---------------------------------------------------------------------------
// Handler — HTTP upgrade endpoint
// ---------------------------------------------------------------------------

var upgrader = gorillawebsocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins; tighten in production.
	},
}

// Handler upgrades HTTP connections and registers clients with the hub.
// The endpoint authenticates itself via a token query parameter since
// browsers cannot set headers on WebSocket dials.
type Handler struct {
	hub    *Hub
	tokens *auth.TokenManager
}

// NewHandler creates a Handler bound to the given hub and token manager.
func NewHandler(hub *Hub, tokens *auth.TokenManager) *Handler {
	return &Handler{hub: hub, tokens: tokens}
}

// RegisterRoutes registers the WebSocket endpoint.
func (wsh *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws", wsh.HandleConnect)
}

// HandleConnect validates the token, upgrades the connection, registers
// the client, and starts the read/write pumps.
func (wsh *Handler) HandleConnect(c echo.Context) error {
	claims, err := wsh.tokens.Parse(c.QueryParam("token"))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := &Client{
		ID:     uuid.New().String(),
		UserID: claims.Subject,
		Role:   claims.Role,
		Send:   make(chan []byte, 256),
		conn:   &gorillaConnAdapter{ws},
	}

	wsh.hub.Register(client)

	go wsh.writePump(client)
	go wsh.readPump(client)

	return nil
}

// readPump drains inbound messages until the connection drops.
func (wsh *Handler) readPump(client *Client) {
	defer func() {
		wsh.hub.Unregister(client)
		client.conn.Close()
	}()

	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			break
		}
	}
}

// writePump writes messages from the Send channel to the connection.
func (wsh *Handler) writePump(client *Client) {
	defer client.conn.Close()

	for message := range client.Send {
		if err := client.conn.WriteMessage(gorillawebsocket.TextMessage, message); err != nil {
			break
		}
	}
}

// gorillaConnAdapter wraps a gorilla/websocket.Conn to satisfy Conn.
type gorillaConnAdapter struct {
	conn *gorillawebsocket.Conn
}

func (a *gorillaConnAdapter) ReadMessage() (int, []byte, error) {
	return a.conn.ReadMessage()
}

func (a *gorillaConnAdapter) WriteMessage(messageType int, data []byte) error {
	return a.conn.WriteMessage(messageType, data)
}

func (a *gorillaConnAdapter) Close() error {
	return a.conn.Close()
}

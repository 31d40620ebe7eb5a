package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"nova-arena/internal/game"

	"github.com/gorilla/websocket"
)

const (
	// MaxWSConnectionsTotal caps websocket connections across all IPs.
	MaxWSConnectionsTotal = 500

	// MaxWSConnectionsPerIP caps websocket connections per IP.
	MaxWSConnectionsPerIP = 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if IsAllowedOrigin(origin) {
			return true
		}
		log.Printf("websocket rejected from origin %q", origin)
		RecordConnectionRejected("origin")
		return false
	},
}

type wsClient struct {
	conn *websocket.Conn
	ip   string
}

// inputMessage is what clients send over the websocket: key intents,
// mouse deltas and pointer capture changes. The session consumes them
// through its input aggregator on the next tick.
type inputMessage struct {
	Type     string  `json:"type"` // action | mouse | pointer | clear
	Action   string  `json:"action,omitempty"`
	Down     bool    `json:"down,omitempty"`
	DX       float64 `json:"dx,omitempty"`
	DY       float64 `json:"dy,omitempty"`
	AbsX     float64 `json:"absX,omitempty"`
	AbsY     float64 `json:"absY,omitempty"`
	Captured bool    `json:"captured,omitempty"`
}

var actionNames = map[string]game.Action{
	"forward":  game.ActionForward,
	"backward": game.ActionBackward,
	"left":     game.ActionLeft,
	"right":    game.ActionRight,
	"jump":     game.ActionJump,
	"sprint":   game.ActionSprint,
	"shoot":    game.ActionShoot,
	"reload":   game.ActionReload,
	"interact": game.ActionInteract,
}

// WebSocketHub fans simulation snapshots out to connected clients and
// feeds their input messages into the session.
type WebSocketHub struct {
	session SessionInterface

	clients    map[*websocket.Conn]*wsClient
	broadcast  chan []byte
	register   chan *wsClient
	unregister chan *websocket.Conn
	mu         sync.RWMutex

	wsLimiter *WebSocketRateLimiter
}

// NewWebSocketHub creates a hub bound to the session.
func NewWebSocketHub(session SessionInterface) *WebSocketHub {
	return &WebSocketHub{
		session:    session,
		clients:    make(map[*websocket.Conn]*wsClient),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *wsClient),
		unregister: make(chan *websocket.Conn),
		wsLimiter:  NewWebSocketRateLimiter(MaxWSConnectionsPerIP),
	}
}

// Run processes hub events. Call in its own goroutine.
func (h *WebSocketHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.conn] = client
			count := len(h.clients)
			h.mu.Unlock()

			log.Printf("websocket client connected from %s (%d total)", client.ip, count)
			UpdateWSConnections(count)

		case conn := <-h.unregister:
			h.mu.Lock()
			if client, ok := h.clients[conn]; ok {
				h.wsLimiter.Release(client.ip)
				delete(h.clients, conn)
				conn.Close()
			}
			count := len(h.clients)
			h.mu.Unlock()

			log.Printf("websocket client disconnected (%d remaining)", count)
			UpdateWSConnections(count)

		case message := <-h.broadcast:
			h.mu.RLock()
			var dead []*websocket.Conn
			for conn := range h.clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					dead = append(dead, conn)
				}
			}
			h.mu.RUnlock()

			for _, conn := range dead {
				h.mu.Lock()
				if client, ok := h.clients[conn]; ok {
					h.wsLimiter.Release(client.ip)
					delete(h.clients, conn)
					conn.Close()
				}
				h.mu.Unlock()
			}
			IncrementWSMessages()
		}
	}
}

// Broadcast queues an event for all clients. Drops the message when the
// queue is full rather than blocking the caller.
func (h *WebSocketHub) Broadcast(event string, data interface{}) {
	msg := map[string]interface{}{
		"event": event,
		"data":  data,
	}
	jsonBytes, err := json.Marshal(msg)
	if err != nil {
		return
	}

	select {
	case h.broadcast <- jsonBytes:
	default:
	}
}

// BroadcastSnapshot sends a tick snapshot when anyone is listening.
// Wired as the session's render hook.
func (h *WebSocketHub) BroadcastSnapshot(snap *game.SessionSnapshot) {
	if h.ClientCount() == 0 {
		return
	}
	h.Broadcast("state", snap)
}

// ClientCount returns the number of connected clients.
func (h *WebSocketHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleWebSocket upgrades the connection, enforcing the total and
// per-IP connection caps.
func (h *WebSocketHub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ip := GetClientIP(r)

	if h.ClientCount() >= MaxWSConnectionsTotal {
		RecordConnectionRejected("ws_total_limit")
		http.Error(w, "Too many connections", http.StatusServiceUnavailable)
		return
	}
	if !h.wsLimiter.Allow(ip) {
		RecordConnectionRejected("ws_ip_limit")
		http.Error(w, "Too many connections from your IP", http.StatusTooManyRequests)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		h.wsLimiter.Release(ip)
		return
	}

	h.register <- &wsClient{conn: conn, ip: ip}

	go h.readLoop(conn)
}

// readLoop consumes input messages from one client until it hangs up.
func (h *WebSocketHub) readLoop(conn *websocket.Conn) {
	defer func() {
		h.unregister <- conn
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg inputMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}
		h.dispatchInput(msg)
	}
}

// dispatchInput translates one client message into aggregator calls.
func (h *WebSocketHub) dispatchInput(msg inputMessage) {
	in := h.session.Input()

	switch msg.Type {
	case "action":
		if action, ok := actionNames[msg.Action]; ok {
			in.SetAction(action, msg.Down)
		}
	case "mouse":
		in.HandleMouseMove(msg.DX, msg.DY, msg.AbsX, msg.AbsY)
	case "pointer":
		in.SetPointerCapture(msg.Captured)
	case "clear":
		in.Reset()
	}
}

package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"tetris/internal/command"
	"tetris/internal/game"
	"tetris/internal/metrics"

	"github.com/gorilla/websocket"
)

const (
	// MaxWSConnectionsTotal is the maximum number of WebSocket connections allowed
	MaxWSConnectionsTotal = 500

	// MaxWSConnectionsPerIP is the maximum WebSocket connections per IP
	MaxWSConnectionsPerIP = 10

	// StateBroadcastInterval is how often changed state is pushed to clients
	StateBroadcastInterval = 100 * time.Millisecond

	wsWriteWait    = 2 * time.Second
	wsMaxMessage   = 512
	wsDirectBuffer = 64
)

// Outbound event names
const (
	EventState = "game:state"
	EventGame  = "game:event"
	EventError = "error"
	EventAck   = "ack"
)

// wsClient tracks a WebSocket connection with its source IP
type wsClient struct {
	conn *websocket.Conn
	ip   string
	id   string
}

type directMessage struct {
	conn *websocket.Conn
	data []byte
}

// WebSocketHub manages all WebSocket connections with DoS protection.
// Only the Run goroutine writes to connections.
type WebSocketHub struct {
	clients    map[*websocket.Conn]*wsClient
	broadcast  chan []byte
	direct     chan directMessage
	register   chan *wsClient
	unregister chan *websocket.Conn
	mu         sync.RWMutex

	// Connection limiting per IP
	wsLimiter *WebSocketRateLimiter
	// Command limiting per connection
	cmdLimiter *command.RateLimiter
	origins    *OriginChecker
	upgrader   websocket.Upgrader

	game   GameInterface
	nextID atomic.Uint64

	stopChan chan struct{}
	stopOnce sync.Once
}

// NewWebSocketHub creates a new hub with connection limiting. g may be nil,
// in which case inbound commands are rejected.
func NewWebSocketHub(g GameInterface, origins []string, cmdLimit command.RateLimitConfig) *WebSocketHub {
	h := &WebSocketHub{
		clients:    make(map[*websocket.Conn]*wsClient),
		broadcast:  make(chan []byte, 256),
		direct:     make(chan directMessage, wsDirectBuffer),
		register:   make(chan *wsClient),
		unregister: make(chan *websocket.Conn),
		wsLimiter:  NewWebSocketRateLimiter(MaxWSConnectionsPerIP),
		cmdLimiter: command.NewRateLimiter(cmdLimit),
		origins:    NewOriginChecker(origins),
		game:       g,
		stopChan:   make(chan struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if h.origins.Allowed(origin) {
				return true
			}
			log.Printf("⚠️ WebSocket connection rejected from origin: %s", origin)
			metrics.RecordConnectionRejected("origin")
			return false
		},
	}
	return h
}

// Run starts the hub. It returns after Stop.
func (h *WebSocketHub) Run() {
	for {
		select {
		case <-h.stopChan:
			h.mu.Lock()
			for conn, client := range h.clients {
				h.wsLimiter.Release(client.ip)
				conn.Close()
				delete(h.clients, conn)
			}
			h.mu.Unlock()
			metrics.UpdateWSConnections(0)
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.conn] = client
			count := len(h.clients)
			h.mu.Unlock()

			log.Printf("📱 Client %s connected from %s (%d total)", client.id, client.ip, count)
			metrics.UpdateWSConnections(count)

		case conn := <-h.unregister:
			h.remove(conn)

		case msg := <-h.direct:
			h.mu.RLock()
			_, ok := h.clients[msg.conn]
			h.mu.RUnlock()
			if ok && h.write(msg.conn, msg.data) != nil {
				h.remove(msg.conn)
			}

		case message := <-h.broadcast:
			var failed []*websocket.Conn
			h.mu.RLock()
			for conn := range h.clients {
				if err := h.write(conn, message); err != nil {
					failed = append(failed, conn)
				}
			}
			h.mu.RUnlock()
			for _, conn := range failed {
				h.remove(conn)
			}
			metrics.IncrementWSMessages()
		}
	}
}

// Stop disconnects every client and ends Run and the broadcast loop
func (h *WebSocketHub) Stop() {
	h.stopOnce.Do(func() {
		close(h.stopChan)
		h.cmdLimiter.Stop()
	})
}

func (h *WebSocketHub) write(conn *websocket.Conn, data []byte) error {
	conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return conn.WriteMessage(websocket.TextMessage, data)
}

func (h *WebSocketHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	client, ok := h.clients[conn]
	if ok {
		h.wsLimiter.Release(client.ip)
		h.cmdLimiter.Forget(client.id)
		delete(h.clients, conn)
	}
	count := len(h.clients)
	h.mu.Unlock()

	conn.Close()
	if ok {
		log.Printf("📱 Client %s disconnected (%d remaining)", client.id, count)
		metrics.UpdateWSConnections(count)
	}
}

func encodeMessage(event string, data interface{}) ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"event": event,
		"data":  data,
	})
}

// Broadcast sends a message to all connected clients
func (h *WebSocketHub) Broadcast(event string, data interface{}) {
	jsonBytes, err := encodeMessage(event, data)
	if err != nil {
		return
	}

	select {
	case h.broadcast <- jsonBytes:
	default:
		// Channel full, skip (backpressure)
	}
}

// send queues a message for one client
func (h *WebSocketHub) send(conn *websocket.Conn, event string, data interface{}) {
	jsonBytes, err := encodeMessage(event, data)
	if err != nil {
		return
	}
	select {
	case h.direct <- directMessage{conn: conn, data: jsonBytes}:
	default:
	}
}

// OnEvent implements game.Listener, forwarding engine events to clients.
// It never blocks the game loop.
func (h *WebSocketHub) OnEvent(ev game.Event) {
	if h.ClientCount() == 0 {
		return
	}
	h.Broadcast(EventGame, ev)
}

// ClientCount returns the number of connected clients
func (h *WebSocketHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// StartBroadcastLoop pushes the game state whenever its sequence changes
func (h *WebSocketHub) StartBroadcastLoop(g GameInterface) {
	ticker := time.NewTicker(StateBroadcastInterval)

	go func() {
		defer ticker.Stop()
		var lastSeq uint64
		for {
			select {
			case <-h.stopChan:
				return
			case <-ticker.C:
			}

			if h.ClientCount() == 0 {
				continue
			}
			snap := g.Snapshot()
			if snap.Sequence == lastSeq {
				continue
			}
			lastSeq = snap.Sequence
			h.Broadcast(EventState, snap)
		}
	}()
}

// HandleWebSocket handles incoming WebSocket connections with DoS protection
func (h *WebSocketHub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ip := GetClientIP(r)

	if h.ClientCount() >= MaxWSConnectionsTotal {
		log.Printf("⚠️ WebSocket connection rejected: total limit reached")
		metrics.RecordConnectionRejected("ws_total_limit")
		http.Error(w, "Too many connections", http.StatusServiceUnavailable)
		return
	}

	if !h.wsLimiter.Allow(ip) {
		log.Printf("⚠️ WebSocket connection rejected from %s: per-IP limit reached", ip)
		metrics.RecordConnectionRejected("ws_ip_limit")
		http.Error(w, "Too many connections from your IP", http.StatusTooManyRequests)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		h.wsLimiter.Release(ip)
		return
	}
	conn.SetReadLimit(wsMaxMessage)

	client := &wsClient{
		conn: conn,
		ip:   ip,
		id:   fmt.Sprintf("ws-%d", h.nextID.Add(1)),
	}
	select {
	case h.register <- client:
	case <-h.stopChan:
		conn.Close()
		h.wsLimiter.Release(ip)
		return
	}

	if h.game != nil {
		h.send(conn, EventState, h.game.Snapshot())
	}

	go h.readLoop(client)
}

// readLoop parses inbound frames as commands until the connection closes
func (h *WebSocketHub) readLoop(client *wsClient) {
	defer func() {
		select {
		case h.unregister <- client.conn:
		case <-h.stopChan:
		}
	}()

	for {
		msgType, message, err := client.conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		h.handleCommand(client, message)
	}
}

// handleCommand accepts plain text ("left", "rotate; drop") or
// {"command": "..."} JSON.
func (h *WebSocketHub) handleCommand(client *wsClient, message []byte) {
	text := strings.TrimSpace(string(message))
	if strings.HasPrefix(text, "{") {
		var msg struct {
			Command string `json:"command"`
		}
		if err := json.Unmarshal(message, &msg); err != nil {
			h.send(client.conn, EventError, "invalid JSON")
			return
		}
		text = msg.Command
	}

	if h.game == nil {
		h.send(client.conn, EventError, "no game hosted")
		return
	}
	if !h.cmdLimiter.Allow(client.id) {
		metrics.RecordCommand("ws", "rate_limited")
		h.send(client.conn, EventError, "rate limited")
		return
	}

	cmds, err := command.ParseAll(text)
	if err != nil {
		h.send(client.conn, EventError, err.Error())
		return
	}
	for _, cmd := range cmds {
		if !h.game.Submit(cmd) {
			h.send(client.conn, EventError, "game is busy")
			return
		}
	}
	h.send(client.conn, EventAck, len(cmds))
}

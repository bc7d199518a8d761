package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// MaxWSConnections caps concurrent render surfaces.
	MaxWSConnections = 200

	writeTimeout = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The spectator feed carries no credentials and no mutating power
	// beyond cell-select intents, so any origin may subscribe.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsIntent is the only inbound message shape: a cell-select intent from a
// render surface.
type wsIntent struct {
	Type string `json:"type"`
	Row  int    `json:"row"`
	Col  int    `json:"col"`
}

// Hub fans view-state pushes out to every connected render surface and
// funnels their select intents into the view engine.
type Hub struct {
	view ViewInterface

	mu      sync.RWMutex
	clients map[*websocket.Conn]struct{}

	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	stopChan   chan struct{}
	stopOnce   sync.Once
}

// NewHub creates a hub. Call Run to start it.
func NewHub(view ViewInterface) *Hub {
	return &Hub{
		view:       view,
		clients:    make(map[*websocket.Conn]struct{}),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		stopChan:   make(chan struct{}),
	}
}

// Run owns the client set. Blocks until Stop.
func (h *Hub) Run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			h.clients[conn] = struct{}{}
			count := len(h.clients)
			h.mu.Unlock()
			log.Printf("📱 render surface connected (%d total)", count)
			UpdateWSConnections(count)

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
			count := len(h.clients)
			h.mu.Unlock()
			UpdateWSConnections(count)

		case msg := <-h.broadcast:
			h.mu.RLock()
			for conn := range h.clients {
				conn.SetWriteDeadline(time.Now().Add(writeTimeout))
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					// Reader goroutine will unregister it.
					continue
				}
				RecordWSMessage()
			}
			h.mu.RUnlock()

		case <-h.stopChan:
			h.mu.Lock()
			for conn := range h.clients {
				conn.Close()
			}
			h.clients = make(map[*websocket.Conn]struct{})
			h.mu.Unlock()
			UpdateWSConnections(0)
			return
		}
	}
}

// Stop shuts the hub down and closes every connection. Safe to call twice.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.stopChan)
	})
}

// Push broadcasts a pre-encoded state message, dropping it when the hub is
// backed up; the next push supersedes it anyway.
func (h *Hub) Push(msg []byte) {
	select {
	case h.broadcast <- msg:
	default:
	}
}

// PushState encodes and broadcasts the current view state. Called by the
// turn loop after every Apply so surfaces track ticks, not wall time.
func (h *Hub) PushState() {
	st := h.view.State()
	UpdatePoolGauges(st)

	msg, err := json.Marshal(st)
	if err != nil {
		return
	}
	h.Push(msg)
}

// HandleWS upgrades the request and serves the connection.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	count := len(h.clients)
	h.mu.RUnlock()
	if count >= MaxWSConnections {
		RecordRejected("ws_capacity")
		http.Error(w, "too many connections", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	// Send the current state immediately so a new surface does not wait
	// for the next turn. This write must happen before registration: once
	// the conn is registered, Run's broadcast case is the only writer.
	if st, err := json.Marshal(h.view.State()); err == nil {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		conn.WriteMessage(websocket.TextMessage, st)
	}

	h.register <- conn
	go h.readPump(conn)
}

// readPump consumes inbound messages until the connection dies. The only
// accepted message is a select intent.
func (h *Hub) readPump(conn *websocket.Conn) {
	defer func() {
		select {
		case h.unregister <- conn:
		case <-h.stopChan:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var intent wsIntent
		if err := json.Unmarshal(data, &intent); err != nil {
			continue
		}
		if intent.Type == "select" {
			h.view.SelectCell(intent.Row, intent.Col)
		}
	}
}

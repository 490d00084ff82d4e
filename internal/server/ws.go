package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/movetrack/internal/track"
)

// writeTimeout bounds how long a slow client may hold up a broadcast.
const writeTimeout = time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// PositionMessage is the JSON payload sent for every tracked frame.
type PositionMessage struct {
	Seq       int     `json:"seq"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Detected  bool    `json:"detected"`
	Timestamp int64   `json:"timestamp"`
}

// sendBuffer is the number of messages queued per client before the
// client is considered too slow and dropped.
const sendBuffer = 64

// client is a connected WebSocket with its own outgoing queue.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// writePump delivers queued messages until the queue is closed or a write
// fails.
func (c *client) writePump() {
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			c.conn.Close()
			return
		}
	}
}

// PositionHub broadcasts smoothed positions to WebSocket clients.
// Publish never waits on the network: each client is written by its own
// goroutine.
type PositionHub struct {
	clients map[*client]bool
	mu      sync.Mutex
}

// NewPositionHub creates an empty hub.
func NewPositionHub() *PositionHub {
	return &PositionHub{
		clients: make(map[*client]bool),
	}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *PositionHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.add(c)
	go c.writePump()

	defer h.remove(c)

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (h *PositionHub) add(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = true
}

func (h *PositionHub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.drop(c)
}

// drop unregisters c and stops its writer. The caller holds h.mu.
func (h *PositionHub) drop(c *client) {
	if !h.clients[c] {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

// Clients returns the number of connected clients.
func (h *PositionHub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Publish queues a tracked point for every connected client. Clients whose
// queue is full are disconnected.
func (h *PositionHub) Publish(seq int, p track.Point) {
	msg, err := json.Marshal(PositionMessage{
		Seq:       seq,
		X:         p.X,
		Y:         p.Y,
		Detected:  p.Detected,
		Timestamp: time.Now().UnixMilli(),
	})
	if err != nil {
		log.Printf("Failed to encode position: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			log.Printf("Dropping slow websocket client %s", c.conn.RemoteAddr())
			h.drop(c)
			c.conn.Close()
		}
	}
}

// Close disconnects all clients.
func (h *PositionHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		h.drop(c)
		c.conn.Close()
	}
}

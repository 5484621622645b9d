package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"smartkitchen/internal/dashboard"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// WebSocket upgrader configuration
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS is enforced on the REST routes
	},
}

// Hub tracks live dashboard connections
type Hub struct {
	mu    sync.RWMutex
	conns map[*WSConnection]bool
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{conns: make(map[*WSConnection]bool)}
}

func (h *Hub) register(c *WSConnection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[c] = true
}

func (h *Hub) unregister(c *WSConnection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conns[c] {
		delete(h.conns, c)
		close(c.send)
	}
}

// Count returns the number of live connections
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// BroadcastSummary sends a snapshot summary to every connection
func (h *Hub) BroadcastSummary(summary dashboard.Summary) {
	data, err := json.Marshal(summary)
	if err != nil {
		log.Printf("Error marshaling summary: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.conns {
		c.enqueue(data)
	}
}

// WSConnection maintains the WebSocket connection with the client
type WSConnection struct {
	conn *websocket.Conn
	send chan []byte
	api  *DashboardAPI
}

// clientMessage is a request sent by the dashboard over the socket
type clientMessage struct {
	Action string `json:"action"`
}

// handleWebSocket handles WebSocket connections
func (d *DashboardAPI) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}

	wsConn := &WSConnection{
		conn: conn,
		send: make(chan []byte, 256),
		api:  d,
	}
	d.Hub.register(wsConn)
	wsConn.sendJSON(d.Service.Summary())

	// Start the read and write pumps
	go wsConn.writePump()
	go wsConn.readPump()
}

// readPump pumps messages from the WebSocket connection to the handler
func (c *WSConnection) readPump() {
	defer func() {
		c.api.Hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4 * 1024)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

// writePump pumps messages from the server to the WebSocket connection
func (c *WSConnection) writePump() {
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
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
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

// handleMessage processes incoming messages
func (c *WSConnection) handleMessage(message []byte) {
	var req clientMessage
	if err := json.Unmarshal(message, &req); err != nil {
		c.sendError("Invalid message")
		return
	}

	switch req.Action {
	case "summary":
		c.sendJSON(c.api.Service.Summary())
	case "refresh":
		// the resulting summary reaches every client through the hub
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := c.api.Service.Refresh(ctx); err != nil {
				log.Printf("WebSocket refresh failed: %v", err)
			}
		}()
	default:
		c.sendError("Unknown action: " + req.Action)
	}
}

func (c *WSConnection) sendJSON(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		return
	}
	c.api.Hub.mu.RLock()
	defer c.api.Hub.mu.RUnlock()
	if c.api.Hub.conns[c] {
		c.enqueue(data)
	}
}

// sendError sends an error message to the client
func (c *WSConnection) sendError(message string) {
	c.sendJSON(map[string]string{"error": message})
}

func (c *WSConnection) enqueue(data []byte) {
	select {
	case c.send <- data:
	default:
		log.Println("WebSocket buffer full, dropping message")
	}
}

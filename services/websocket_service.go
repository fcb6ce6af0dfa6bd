package services

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/gorilla/websocket"

	"visibility-wizard/models"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// ProgressHub manages WebSocket connections and broadcasts wizard progress
type ProgressHub struct {
	clients    map[*progressClient]bool
	broadcast  chan models.ProgressMessage
	register   chan *progressClient
	unregister chan *progressClient
	mutex      sync.RWMutex
}

// progressClient represents one WebSocket client connection
type progressClient struct {
	hub       *ProgressHub
	conn      *websocket.Conn
	send      chan []byte
	sessionID string
}

// NewProgressHub creates a new progress hub
func NewProgressHub() *ProgressHub {
	return &ProgressHub{
		clients:    make(map[*progressClient]bool),
		broadcast:  make(chan models.ProgressMessage, 16),
		register:   make(chan *progressClient),
		unregister: make(chan *progressClient),
	}
}

// Start runs the hub loop. Call in a goroutine.
func (h *ProgressHub) Start() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			log.Infof("Progress client registered for session %s", client.sessionID)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mutex.Unlock()

		case message := <-h.broadcast:
			payload, err := json.Marshal(message)
			if err != nil {
				log.Errorf("Failed to serialize progress message: %v", err)
				continue
			}
			h.mutex.RLock()
			for client := range h.clients {
				// A client subscribed to one session only sees that session
				if client.sessionID != "" && client.sessionID != message.SessionID {
					continue
				}
				select {
				case client.send <- payload:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mutex.RUnlock()
		}
	}
}

// Stop disconnects all clients
func (h *ProgressHub) Stop() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
}

// RegisterClient attaches a new WebSocket connection to the hub.
// An empty sessionID subscribes to every session.
func (h *ProgressHub) RegisterClient(conn *websocket.Conn, sessionID string) {
	client := &progressClient{
		hub:       h,
		conn:      conn,
		send:      make(chan []byte, 256),
		sessionID: sessionID,
	}

	h.register <- client

	go client.writePump()
	go client.readPump()
}

// BroadcastProgress broadcasts a progress message to connected clients
func (h *ProgressHub) BroadcastProgress(message models.ProgressMessage) {
	select {
	case h.broadcast <- message:
	default:
		log.Warn("Progress broadcast channel full, dropping message")
	}
}

// ConnectedClients returns the number of connected clients
func (h *ProgressHub) ConnectedClients() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

func (c *progressClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *progressClient) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

package handlers

import (
	"net/http"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"visibility-wizard/models"
	"visibility-wizard/services"
)

// WebSocketHandler handles WebSocket connections for wizard progress
type WebSocketHandler struct {
	hub *services.ProgressHub
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(hub *services.ProgressHub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// ListenProgress handles GET /ws/progress. An optional ?session= query
// limits the stream to one wizard session.
func (h *WebSocketHandler) ListenProgress(c *gin.Context) {
	sessionID := c.Query("session")

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Errorf("Error upgrading connection to WebSocket: %v", err)
		return
	}

	h.hub.RegisterClient(conn, sessionID)
}

// HealthCheck handles GET /ws/health
func (h *WebSocketHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:           "healthy",
		Service:          "visibility-wizard-websocket",
		ConnectedClients: h.hub.ConnectedClients(),
	})
}

package handler

import (
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/bookstore_api/internal/sse"
	"github.com/GTDGit/bookstore_api/internal/utils"
)

// SSEHandler streams quote log events to admin dashboards.
type SSEHandler struct {
	hub          *sse.Hub
	jwtSecret    string
	pingInterval time.Duration
}

// NewSSEHandler creates a new SSEHandler.
func NewSSEHandler(hub *sse.Hub, jwtSecret string) *SSEHandler {
	return &SSEHandler{hub: hub, jwtSecret: jwtSecret, pingInterval: 30 * time.Second}
}

// Stream handles GET /v1/admin/quotes/stream?token=<jwt>
// EventSource cannot set headers, so the JWT comes in the query string.
func (h *SSEHandler) Stream(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		utils.Error(c, 401, "UNAUTHORIZED", "Missing token query parameter")
		return
	}

	claims, err := utils.ValidateJWT(h.jwtSecret, token)
	if err != nil {
		utils.Error(c, 401, "INVALID_TOKEN", "Invalid or expired token")
		return
	}

	clientID := fmt.Sprintf("admin-%d-%d", claims.UserID, time.Now().UnixNano())

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	client := h.hub.Register(clientID)
	defer h.hub.Unregister(client)

	c.SSEvent("connected", gin.H{
		"clientId":  clientID,
		"timestamp": utils.NowISO(),
	})
	c.Writer.Flush()

	log.Info().Str("client_id", clientID).Int("user_id", claims.UserID).Msg("Admin quote stream started")

	c.Stream(func(w io.Writer) bool {
		select {
		case data, ok := <-client.Events:
			if !ok {
				return false
			}
			c.SSEvent("quote", string(data))
			return true
		case <-time.After(h.pingInterval):
			c.SSEvent("ping", gin.H{"timestamp": utils.NowISO()})
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

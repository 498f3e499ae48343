package websocket

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Handler upgrades admin requests to the live audit feed
type Handler struct {
	hub      *Hub
	audit    AuditReader
	upgrader websocket.Upgrader
}

// NewHandler creates a new WebSocket handler. An empty allowedOrigins list
// accepts any origin.
func NewHandler(hub *Hub, audit AuditReader, allowedOrigins []string) *Handler {
	return &Handler{
		hub:   hub,
		audit: audit,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if len(allowedOrigins) == 0 {
					return true
				}
				origin := r.Header.Get("Origin")
				if origin == "" {
					return false
				}
				for _, pattern := range allowedOrigins {
					if matchOrigin(pattern, origin) {
						return true
					}
				}
				return false
			},
		},
	}
}

// HandleWebSocket must be mounted behind the auth and admin middleware
func (h *Handler) HandleWebSocket(c *gin.Context) {
	uid, _ := c.Get("user_id")
	userID, ok := uid.(uuid.UUID)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	// Upgrade connection
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn("Failed to upgrade connection", "error", err)
		return
	}

	client := NewClient(h.hub, conn, userID, h.audit)
	if !h.hub.Register(client) {
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}

// Status reports how many admin connections are attached to the feed
func (h *Handler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"connected": h.hub.ClientCount()})
}

// matchOrigin supports exact matches or wildcard patterns like *.example.com
func matchOrigin(pattern, origin string) bool {
	if pattern == "*" || pattern == origin {
		return true
	}
	if strings.HasPrefix(pattern, "*.") {
		// compare hosts, e.g. https://sub.example.com -> sub.example.com
		originHost := origin
		if u, err := url.Parse(origin); err == nil {
			originHost = u.Hostname()
		}
		patHost := strings.TrimPrefix(pattern, "*.")
		return originHost == patHost || strings.HasSuffix(originHost, "."+patHost)
	}
	return false
}

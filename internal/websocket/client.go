package websocket

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/vibecoder/backend/internal/models"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 1024

	requestTimeout = 5 * time.Second
)

// AuditReader serves snapshot requests from feed clients
type AuditReader interface {
	Recent(ctx context.Context, limit int) ([]models.AdminActionLog, error)
}

// Client is one admin connection to the live feed
type Client struct {
	hub         *Hub
	conn        *websocket.Conn
	send        chan []byte
	userID      uuid.UUID
	connectedAt time.Time
	audit       AuditReader

	// simple token-bucket rate limiter for inbound requests
	tokens       int
	maxTokens    int
	refillPeriod time.Duration
	lastRefill   time.Time
}

// NewClient creates a new WebSocket client
func NewClient(hub *Hub, conn *websocket.Conn, userID uuid.UUID, audit AuditReader) *Client {
	return &Client{
		hub:          hub,
		conn:         conn,
		send:         make(chan []byte, 256),
		userID:       userID,
		connectedAt:  time.Now(),
		audit:        audit,
		tokens:       5,
		maxTokens:    5,
		refillPeriod: time.Second,
		lastRefill:   time.Now(),
	}
}

// ReadPump pumps requests from the WebSocket connection
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn("WebSocket error", "user_id", c.userID, "error", err)
			}
			break
		}

		if !c.takeToken(time.Now()) {
			c.sendError("rate_limited")
			continue
		}

		c.handleMessage(message)
	}
}

func (c *Client) takeToken(now time.Time) bool {
	if elapsed := now.Sub(c.lastRefill); elapsed >= c.refillPeriod {
		c.tokens += int(elapsed / c.refillPeriod)
		if c.tokens > c.maxTokens {
			c.tokens = c.maxTokens
		}
		c.lastRefill = now
	}
	if c.tokens <= 0 {
		return false
	}
	c.tokens--
	return true
}

// WritePump pumps frames from the hub to the WebSocket connection
func (c *Client) WritePump() {
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
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// One frame per JSON document
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

// handleMessage handles incoming WebSocket requests
func (c *Client) handleMessage(data []byte) {
	var wsMsg models.WSMessage
	if err := json.Unmarshal(data, &wsMsg); err != nil {
		c.sendError("Invalid message format")
		return
	}

	switch wsMsg.Event {
	case models.EventLogsRecent:
		c.handleLogsRecent(wsMsg.Payload)

	default:
		c.sendError("Unknown event type")
	}
}

// handleLogsRecent replies with the newest audit entries
func (c *Client) handleLogsRecent(payload interface{}) {
	var req models.WSLogsRecentPayload
	if payload != nil {
		data, _ := json.Marshal(payload)
		if err := json.Unmarshal(data, &req); err != nil {
			c.sendError("Invalid logs payload")
			return
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	logs, err := c.audit.Recent(ctx, req.Limit)
	if err != nil {
		log.Error("Failed to load admin logs for feed", "error", err)
		c.sendError("Failed to load logs")
		return
	}

	c.sendJSON(models.WSMessage{Event: models.EventLogsSnapshot, Payload: logs})
}

func (c *Client) sendJSON(msg models.WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// sendError sends an error message to the client
func (c *Client) sendError(message string) {
	c.sendJSON(models.WSMessage{
		Event:   models.EventError,
		Payload: models.WSErrorPayload{Message: message},
	})
}

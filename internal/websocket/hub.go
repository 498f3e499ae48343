package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/vibecoder/backend/internal/cache"
	"github.com/vibecoder/backend/internal/models"
)

// Hub maintains the set of connected admin clients and fans audit entries out to them
type Hub struct {
	// Registered clients; one admin may hold several connections
	clients map[*Client]bool

	// Outbound frames for every client
	broadcast chan []byte

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Closed once Run returns
	done chan struct{}

	// Redis client for pub/sub, nil when running single-instance
	redis *cache.RedisClient

	// Mutex for thread-safe operations
	mu sync.RWMutex
}

// NewHub creates a new Hub. redis may be nil.
func NewHub(redis *cache.RedisClient) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		redis:      redis,
	}
}

// Run starts the hub and blocks until ctx is done
func (h *Hub) Run(ctx context.Context) {
	if h.redis != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			close(h.done)
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			log.Info("Admin feed client registered", "user_id", client.userID)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			log.Info("Admin feed client unregistered", "user_id", client.userID)

		case message := <-h.broadcast:
			h.fanOut(message)
		}
	}
}

func (h *Hub) fanOut(message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		select {
		case client.send <- message:
		default:
			// slow consumer
			close(client.send)
			delete(h.clients, client)
		}
	}
}

// subscribeToRedis relays entries published by any server instance
func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.redis.SubscribeToAdminActions(ctx)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.enqueueEntry(ctx, json.RawMessage(msg.Payload))
		}
	}
}

// PublishAdminAction broadcasts entry to local clients. Used as the audit
// publisher when Redis is unavailable.
func (h *Hub) PublishAdminAction(ctx context.Context, entry models.AdminActionLog) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	h.enqueueEntry(ctx, data)
	return nil
}

func (h *Hub) enqueueEntry(ctx context.Context, entry json.RawMessage) {
	frame, err := json.Marshal(models.WSMessage{Event: models.EventAdminAction, Payload: entry})
	if err != nil {
		log.Warn("Failed to encode admin action frame", "error", err)
		return
	}
	select {
	case h.broadcast <- frame:
	case <-ctx.Done():
	default:
		log.Warn("Admin feed backlog full, dropping entry")
	}
}

// Register attaches client to the feed. Reports false once the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister detaches client. It is a no-op once the hub has stopped.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// ClientCount returns the number of connected feed clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

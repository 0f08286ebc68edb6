package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Client struct {
	ID     string
	UserID uuid.UUID
	Send   chan []byte
}

func NewClient(userID uuid.UUID) *Client {
	return &Client{
		ID:     uuid.New().String(),
		UserID: userID,
		Send:   make(chan []byte, 256),
	}
}

// Hub tracks the live sockets of this process, keyed by client id.
type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	stopped    chan struct{}
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stopped:    make(chan struct{}),
	}
}

// RegisterClient reports false when the hub has already stopped.
func (h *Hub) RegisterClient(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.stopped:
		return false
	}
}

func (h *Hub) UnregisterClient(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.stopped:
	}
}

// SendToUser marshals data once and queues it on every socket of userID.
func (h *Hub) SendToUser(userID uuid.UUID, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	h.SendRaw(userID, payload)
	return nil
}

// SendRaw queues an already encoded payload. Full buffers drop the message
// rather than block the sender.
func (h *Hub) SendRaw(userID uuid.UUID, payload []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for _, client := range h.clients {
		if client.UserID != userID {
			continue
		}
		select {
		case client.Send <- payload:
			delivered++
		default:
			log.Warn().Str("client", client.ID).Msg("realtime: send buffer full, dropping message")
		}
	}
	return delivered
}

func (h *Hub) Connected(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, client := range h.clients {
		if client.UserID == userID {
			n++
		}
	}
	return n
}

// Run serves register and unregister until ctx is done, then closes every
// remaining client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()
			log.Debug().Str("client", client.ID).Str("user_id", client.UserID.String()).Msg("realtime: client registered")

		case client := <-h.unregister:
			h.mu.Lock()
			if old, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(old.Send)
			}
			h.mu.Unlock()
			log.Debug().Str("client", client.ID).Msg("realtime: client unregistered")

		case <-ctx.Done():
			close(h.stopped)
			h.mu.Lock()
			for id, client := range h.clients {
				close(client.Send)
				delete(h.clients, id)
			}
			h.mu.Unlock()
			return
		}
	}
}

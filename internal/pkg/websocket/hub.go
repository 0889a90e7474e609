package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Feed topics
const (
	TopicSMOS  = "smos"
	TopicETour = "etour"
)

// Event is a message pushed to staff feed subscribers
type Event struct {
	// Kind of event, e.g. "absence.recorded"
	Kind string `json:"kind"`

	// Topic the event is broadcast on
	Topic string `json:"topic"`

	// Short human readable summary
	Title string `json:"title"`

	// Event specific data
	Payload any `json:"payload,omitempty"`

	// Timestamp when the event was produced
	Timestamp time.Time `json:"timestamp"`
}

// Hub maintains the set of active clients and broadcasts events to them
type Hub struct {
	// Registered clients organized by topic
	clients map[string]map[*Client]bool

	// Channel for outbound events
	broadcast chan *Event

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Closed when Run returns
	done chan struct{}

	// Mutex for concurrent access to clients map
	mu sync.RWMutex

	logger zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		broadcast:  make(chan *Event, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[string]map[*Client]bool),
		logger:     logger,
	}
}

// Run handles registrations and broadcasts until ctx is cancelled
func (h *Hub) Run(ctx context.Context) error {
	defer func() {
		close(h.done)
		h.closeAll()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case event := <-h.broadcast:
			h.broadcastEvent(event)
		}
	}
}

// registerClient subscribes a client to each of its topics
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, topic := range client.topics {
		if _, ok := h.clients[topic]; !ok {
			h.clients[topic] = make(map[*Client]bool)
		}
		h.clients[topic][client] = true
	}

	h.logger.Info().
		Strs("topics", client.topics).
		Int64("userID", client.userID).
		Msg("Client registered")
}

// unregisterClient unregisters a client from the hub
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

func (h *Hub) removeLocked(client *Client) {
	removed := false
	for _, topic := range client.topics {
		subscribers, ok := h.clients[topic]
		if !ok {
			continue
		}
		if _, ok := subscribers[client]; ok {
			delete(subscribers, client)
			removed = true
		}
		if len(subscribers) == 0 {
			delete(h.clients, topic)
		}
	}

	if removed {
		close(client.send)
		h.logger.Info().
			Strs("topics", client.topics).
			Int64("userID", client.userID).
			Msg("Client unregistered")
	}
}

// broadcastEvent sends an event to all clients subscribed to its topic
func (h *Hub) broadcastEvent(event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("topic", event.Topic).
			Msg("Failed to marshal event for broadcast")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[event.Topic]
	if !ok {
		h.logger.Debug().
			Str("topic", event.Topic).
			Msg("No clients subscribed to topic")
		return
	}

	for client := range clients {
		select {
		case client.send <- data:
		default:
			// slow consumer, drop the connection
			h.removeLocked(client)
		}
	}

	h.logger.Debug().
		Str("topic", event.Topic).
		Str("kind", event.Kind).
		Int("clientCount", len(h.clients[event.Topic])).
		Msg("Event broadcasted")
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	seen := make(map[*Client]bool)
	for _, subscribers := range h.clients {
		for client := range subscribers {
			seen[client] = true
		}
	}
	for client := range seen {
		h.removeLocked(client)
	}
}

// Broadcast queues an event for delivery. It returns false when the hub is stopped.
func (h *Hub) Broadcast(event *Event) bool {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	select {
	case <-h.done:
		return false
	default:
	}
	select {
	case h.broadcast <- event:
		return true
	case <-h.done:
		return false
	}
}

// Subscribe registers a client, returning false when the hub is stopped
func (h *Hub) Subscribe(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unsubscribe removes a client
func (h *Hub) Unsubscribe(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// GetClientsCount returns the number of connected clients for a topic
func (h *Hub) GetClientsCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if clients, ok := h.clients[topic]; ok {
		return len(clients)
	}
	return 0
}

package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/monchobi/artschool/internal/pkg/events"
)

// ChannelCatalog receives every catalog event.
const ChannelCatalog = "catalog"

// ClassChannel is the channel carrying events of a single class.
func ClassChannel(classID string) string {
	return "class:" + classID
}

// Hub maintains the set of active clients and broadcasts events to them
type Hub struct {
	// Registered clients organized by channel
	clients map[string]map[*Client]bool

	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client
	quit       chan struct{}
	stopOnce   sync.Once

	// Mutex for concurrent access to clients map
	mu sync.RWMutex

	listenersMu      sync.RWMutex
	messageListeners []chan *Message

	logger zerolog.Logger
}

// Message is what subscribers receive over the socket.
type Message struct {
	Channel   string          `json:"channel"`
	Event     events.Envelope `json:"event"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		broadcast:        make(chan *Message, 256),
		register:         make(chan *Client),
		unregister:       make(chan *Client),
		quit:             make(chan struct{}),
		clients:          make(map[string]map[*Client]bool),
		messageListeners: []chan *Message{},
		logger:           logger,
	}
}

// Run handles client registrations and broadcasts until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)

		case <-h.quit:
			h.closeAll()
			return
		}
	}
}

// Stop disconnects every client and ends Run. Later publishes are dropped
// once the broadcast queue fills.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.quit) })
}

// Publish implements events.Publisher: every event goes to the catalog
// channel and to the channel of the class it concerns.
func (h *Hub) Publish(_ context.Context, env events.Envelope) {
	h.enqueue(&Message{Channel: ChannelCatalog, Event: env, Timestamp: time.Now()})
	if env.CorrelationID != "" {
		h.enqueue(&Message{Channel: ClassChannel(env.CorrelationID), Event: env, Timestamp: time.Now()})
	}
}

func (h *Hub) enqueue(m *Message) {
	select {
	case h.broadcast <- m:
	default:
		h.logger.Warn().Str("channel", m.Channel).Str("eventType", m.Event.EventType).Msg("Broadcast queue full, dropping event")
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.channel]; !ok {
		h.clients[client.channel] = make(map[*Client]bool)
	}
	h.clients[client.channel][client] = true

	h.logger.Info().
		Str("channel", client.channel).
		Str("email", client.email).
		Msg("Client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.clients[client.channel]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.clients, client.channel)
	}

	h.logger.Info().
		Str("channel", client.channel).
		Str("email", client.email).
		Msg("Client unregistered")
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, clients := range h.clients {
		for client := range clients {
			h.removeLocked(client)
		}
	}
}

// broadcastMessage sends a message to every client of its channel. Clients
// whose buffers are full are dropped.
func (h *Hub) broadcastMessage(message *Message) {
	h.notifyMessageListeners(message)

	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[message.Channel]
	if !ok {
		return
	}

	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error().Err(err).Str("channel", message.Channel).Msg("Failed to marshal message for broadcast")
		return
	}

	for client := range clients {
		select {
		case client.send <- data:
		default:
			h.removeLocked(client)
		}
	}

	h.logger.Debug().
		Str("channel", message.Channel).
		Int("clientCount", len(clients)).
		Msg("Event broadcasted")
}

func (h *Hub) notifyMessageListeners(message *Message) {
	h.listenersMu.RLock()
	defer h.listenersMu.RUnlock()

	for _, listener := range h.messageListeners {
		select {
		case listener <- message:
		default:
			h.logger.Warn().Msg("Skipped slow message listener")
		}
	}
}

// GetClientsCount returns the number of connected clients of a channel
func (h *Hub) GetClientsCount(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[channel])
}

// AddMessageListener registers a channel to receive every broadcast message
func (h *Hub) AddMessageListener(listener chan *Message) {
	h.listenersMu.Lock()
	defer h.listenersMu.Unlock()
	h.messageListeners = append(h.messageListeners, listener)
}

// RemoveMessageListener removes a listener from the hub
func (h *Hub) RemoveMessageListener(listener chan *Message) {
	h.listenersMu.Lock()
	defer h.listenersMu.Unlock()

	for i, l := range h.messageListeners {
		if l == listener {
			h.messageListeners[i] = h.messageListeners[len(h.messageListeners)-1]
			h.messageListeners = h.messageListeners[:len(h.messageListeners)-1]
			break
		}
	}
}

// internal/websocket/hub.go
package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Event is a review-queue notification pushed to partner dashboards.
type Event struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

type broadcastMessage struct {
	partnerCode string
	data        []byte
}

// Hub fans review-queue events out to the partners watching them. Clients
// are grouped by social secretary code; one partner may have several open
// dashboard tabs.
type Hub struct {
	clients map[string]map[*Client]bool
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client
	broadcast  chan *broadcastMessage

	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *broadcastMessage, 256),
		logger:     logger,
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

// NotifyPartner queues an event for every connection of one partner. It
// never blocks the caller; if the hub is saturated the event is dropped
// and logged.
func (h *Hub) NotifyPartner(partnerCode, event string, payload interface{}) {
	data, err := json.Marshal(Event{Type: event, Payload: payload, Timestamp: time.Now()})
	if err != nil {
		h.logger.Error("failed to marshal event", zap.String("event", event), zap.Error(err))
		return
	}

	select {
	case h.broadcast <- &broadcastMessage{partnerCode: partnerCode, data: data}:
	default:
		h.logger.Warn("event dropped, hub saturated",
			zap.String("partner_code", partnerCode), zap.String("event", event))
	}
}

func (h *Hub) registerClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[c.partnerCode] == nil {
		h.clients[c.partnerCode] = make(map[*Client]bool)
	}
	h.clients[c.partnerCode][c] = true

	h.logger.Info("partner connected",
		zap.String("partner_code", c.partnerCode),
		zap.Int("connections", len(h.clients[c.partnerCode])))
}

func (h *Hub) unregisterClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.clients[c.partnerCode]
	if !ok || !conns[c] {
		return
	}
	delete(conns, c)
	close(c.send)
	if len(conns) == 0 {
		delete(h.clients, c.partnerCode)
	}

	h.logger.Info("partner disconnected", zap.String("partner_code", c.partnerCode))
}

func (h *Hub) deliver(msg *broadcastMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients[msg.partnerCode] {
		select {
		case c.send <- msg.data:
		default:
			// Slow consumer; drop rather than stall the hub.
			h.logger.Warn("dropping message for slow client", zap.String("partner_code", msg.partnerCode))
		}
	}
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for code, conns := range h.clients {
		for c := range conns {
			close(c.send)
			c.conn.Close()
		}
		delete(h.clients, code)
	}
}

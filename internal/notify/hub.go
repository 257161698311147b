// Package notify pushes station mutation events to connected clients over
// WebSocket. Delivery is fire-and-forget: a full or gone client is dropped,
// never waited on, so emitting from a request path cannot block.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
)

// Event is a broadcast mutation notification.
type Event struct {
	Type      string      `json:"type"`
	StationID string      `json:"stationId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Hub maintains the set of connected clients and fans events out to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Event
	register   chan *Client
	unregister chan *Client
	logger     *logrus.Logger
}

func NewHub(logger *logrus.Logger) *Hub {
	if logger == nil {
		logger = logrus.New()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Event, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger,
	}
}

// Run processes registrations and broadcasts until ctx is canceled, then
// closes every connected client's send queue. Start it once from main.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			return

		case client := <-h.register:
			h.clients[client] = true
			h.logger.WithField("client", client.id).Debug("ws client connected")

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.logger.WithField("client", client.id).Debug("ws client disconnected")
			}

		case event := <-h.broadcast:
			payload, err := json.Marshal(event)
			if err != nil {
				h.logger.Warnf("marshal event: %v", err)
				continue
			}
			for client := range h.clients {
				select {
				case client.send <- payload:
				default:
					// Slow client, drop it rather than stall the hub.
					delete(h.clients, client)
					close(client.send)
				}
			}
		}
	}
}

// Emit queues an event for broadcast. It never blocks; when the hub's queue
// is full the event is dropped.
func (h *Hub) Emit(eventType, stationID string, data interface{}) {
	event := Event{
		Type:      eventType,
		StationID: stationID,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
	select {
	case h.broadcast <- event:
	default:
		h.logger.WithField("type", eventType).Warn("notify queue full, event dropped")
	}
}

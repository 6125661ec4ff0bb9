package ws

import (
	"encoding/json"
	"sync"
)

// Event represents a WebSocket message to be broadcast
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// scopeEvent is an internal struct for routing events to a balance scope
type scopeEvent struct {
	Scope string
	Event Event
}

// Hub maintains the set of active clients and broadcasts messages to them.
// Clients subscribe to a balance scope ("main" or "petty") and receive an
// event whenever a posting changes that balance.
type Hub struct {
	// Registered clients by balance scope
	rooms map[string]map[*Client]bool

	// Inbound messages from clients (register/unregister)
	register   chan *Client
	unregister chan *Client

	// Outbound messages to broadcast
	broadcast chan *scopeEvent

	// Mutex for thread-safe room access
	mu sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *scopeEvent, 256),
	}
}

// Run starts the hub's main loop
// This should be called as a goroutine: go hub.Run()
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.rooms[client.scope] == nil {
				h.rooms[client.scope] = make(map[*Client]bool)
			}
			h.rooms[client.scope][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.scope]; ok {
				if _, exists := clients[client]; exists {
					delete(clients, client)
					close(client.send)
					// Clean up empty rooms
					if len(clients) == 0 {
						delete(h.rooms, client.scope)
					}
				}
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			h.mu.Lock()
			clients := h.rooms[event.Scope]

			// Marshal event to JSON once
			message, err := json.Marshal(event.Event)
			if err != nil {
				h.mu.Unlock()
				continue
			}

			// Send to all clients in this scope's room
			for client := range clients {
				select {
				case client.send <- message:
				default:
					// Client's send buffer is full, close and unregister
					close(client.send)
					delete(h.rooms[event.Scope], client)
					if len(h.rooms[event.Scope]) == 0 {
						delete(h.rooms, event.Scope)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastToScope sends an event to all clients subscribed to a balance scope
func (h *Hub) BroadcastToScope(scope string, event Event) {
	h.broadcast <- &scopeEvent{
		Scope: scope,
		Event: event,
	}
}

type balanceUpdatedPayload struct {
	Scope   string `json:"scope"`
	Balance string `json:"balance"`
}

// BalanceChanged implements the handlers' BalanceNotifier: it pushes a
// balance.updated event to every client watching the scope.
func (h *Hub) BalanceChanged(scope, balance string) {
	payload, err := json.Marshal(balanceUpdatedPayload{Scope: scope, Balance: balance})
	if err != nil {
		return
	}
	h.BroadcastToScope(scope, Event{
		Type:    "balance.updated",
		Payload: payload,
	})
}

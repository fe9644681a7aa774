package models

import "time"

// Event types
const (
	EventTypeCartUpdated = "CART_UPDATED"
	EventTypeCartCleared = "CART_CLEARED"
	EventTypeOrderPlaced = "ORDER_PLACED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// CartUpdatedEvent published after any successful cart mutation; carries
// the summary the badge/counter UI renders.
type CartUpdatedEvent struct {
	BaseEvent
	ScopeKey  string `json:"scope_key"`
	ItemCount int    `json:"item_count"`
	CartTotal int64  `json:"cart_total"`
}

// CartClearedEvent published when a cart is emptied.
type CartClearedEvent struct {
	BaseEvent
	ScopeKey string `json:"scope_key"`
}

// OrderPlacedEvent published when an order is created.
type OrderPlacedEvent struct {
	BaseEvent
	ScopeKey    string `json:"scope_key"`
	OrderID     string `json:"order_id"`
	OrderNumber string `json:"order_number"`
	Total       int64  `json:"total"`
}

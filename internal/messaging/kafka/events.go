package kafka

import "time"

// EventType определяет тип события
type EventType string

const (
	// Cart события
	EventTypeCartItemAdded       EventType = "cart.item_added"
	EventTypeCartQuantityChanged EventType = "cart.item_quantity_changed"
	EventTypeCartItemRemoved     EventType = "cart.item_removed"
	EventTypeCartCleared         EventType = "cart.cleared"
)

// Topics для Kafka
const (
	TopicCartEvents      = "cart.events"
	TopicDeadLetterQueue = "cart.dlq" // Dead Letter Queue для failed messages
)

// Kafka headers для retry логики
const (
	HeaderRetryCount    = "x-retry-count"
	HeaderOriginalTopic = "x-original-topic"
	HeaderErrorMessage  = "x-error-message"
	HeaderFailedAt      = "x-failed-at"
)

// CartEvent представляет событие изменения корзины
type CartEvent struct {
	EventType  EventType              `json:"event_type"`
	OwnerID    string                 `json:"owner_id"`
	CartID     string                 `json:"cart_id"`
	ProductID  string                 `json:"product_id,omitempty"`
	Quantity   int32                  `json:"quantity,omitempty"`
	TotalMinor int64                  `json:"total_minor"`
	Timestamp  time.Time              `json:"timestamp"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// NewCartEvent создает новое событие корзины
func NewCartEvent(eventType EventType, ownerID, cartID string, metadata map[string]interface{}) *CartEvent {
	return &CartEvent{
		EventType: eventType,
		OwnerID:   ownerID,
		CartID:    cartID,
		Timestamp: time.Now(),
		Metadata:  metadata,
	}
}

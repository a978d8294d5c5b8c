package models

import "time"

// Event types
const (
	EventTypeAuditRecorded = "AUDIT_RECORDED"
	EventTypeOrderFlagged  = "ORDER_FLAGGED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// AuditRecordedEvent mirrors every persisted audit row onto the event bus.
type AuditRecordedEvent struct {
	BaseEvent
	ActorID   int64  `json:"actor_id"`
	Action    string `json:"action"`
	IPAddress string `json:"ip_address"`
}

// OrderFlaggedEvent is published when an order is routed to manual review.
// Publishing is a reserved extension point, disabled by default.
type OrderFlaggedEvent struct {
	BaseEvent
	OrderID          int64   `json:"order_id"`
	BuyerID          int64   `json:"buyer_id"`
	TotalAmount      int64   `json:"total_amount"`
	FraudProbability float64 `json:"fraud_probability"`
	Reason           string  `json:"reason"`
}

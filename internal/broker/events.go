package broker

import (
	"context"
	"fmt"

	"trustflow-service/internal/models"
)

// AuditPublisher mirrors persisted audit rows onto the audit topic.
type AuditPublisher struct {
	producer *Producer
}

// NewAuditPublisher creates a new audit event publisher
func NewAuditPublisher(producer *Producer) *AuditPublisher {
	return &AuditPublisher{producer: producer}
}

// PublishAuditRecorded publishes an AuditRecorded event keyed by actor
func (ap *AuditPublisher) PublishAuditRecorded(ctx context.Context, event *models.AuditRecordedEvent) error {
	key := fmt.Sprintf("actor-%d", event.ActorID)
	return ap.producer.PublishEvent(ctx, key, event)
}

// FraudPublisher publishes manual-review routing decisions to the fraud
// topic. This is a reserved extension point: when disabled (the default)
// every publish is a no-op.
type FraudPublisher struct {
	producer *Producer
	enabled  bool
}

// NewFraudPublisher creates a fraud event publisher
func NewFraudPublisher(producer *Producer, enabled bool) *FraudPublisher {
	return &FraudPublisher{producer: producer, enabled: enabled}
}

// PublishOrderFlagged publishes an OrderFlagged event keyed by order
func (fp *FraudPublisher) PublishOrderFlagged(ctx context.Context, event *models.OrderFlaggedEvent) error {
	if !fp.enabled {
		return nil
	}
	key := fmt.Sprintf("order-%d", event.OrderID)
	return fp.producer.PublishEvent(ctx, key, event)
}

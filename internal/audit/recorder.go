// Package audit records sensitive transitions after they commit. Recording
// is attempted synchronously but never fails the triggering operation.
package audit

import (
	"context"
	"time"

	"trustflow-service/internal/broker"
	"trustflow-service/internal/models"
	"trustflow-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type auditStore interface {
	CreateAuditLog(ctx context.Context, entry *models.AuditLog) error
}

// Recorder writes audit rows and mirrors them onto the event bus.
type Recorder struct {
	store     auditStore
	publisher *broker.AuditPublisher
	logger    *zap.Logger
}

// NewRecorder creates a new audit recorder. The publisher may be nil when
// no broker is configured.
func NewRecorder(store auditStore, publisher *broker.AuditPublisher, logger *zap.Logger) *Recorder {
	return &Recorder{
		store:     store,
		publisher: publisher,
		logger:    logger,
	}
}

// Record logs a sensitive action by an actor. Both sink failures are
// logged and counted, never propagated.
func (r *Recorder) Record(ctx context.Context, actorID int64, action, origin string) {
	now := time.Now().UTC()

	entry := &models.AuditLog{
		UserID:    actorID,
		Action:    action,
		IPAddress: origin,
		Timestamp: now,
	}
	if err := r.store.CreateAuditLog(ctx, entry); err != nil {
		util.AuditFailuresTotal.WithLabelValues("db").Inc()
		r.logger.Error("Failed to persist audit log",
			zap.Int64("actor_id", actorID),
			zap.String("action", action),
			zap.Error(err))
	}

	if r.publisher == nil {
		return
	}

	event := &models.AuditRecordedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeAuditRecorded,
			Timestamp: now,
		},
		ActorID:   actorID,
		Action:    action,
		IPAddress: origin,
	}
	if err := r.publisher.PublishAuditRecorded(ctx, event); err != nil {
		util.AuditFailuresTotal.WithLabelValues("broker").Inc()
		r.logger.Error("Failed to publish audit event",
			zap.Int64("actor_id", actorID),
			zap.String("action", action),
			zap.Error(err))
	}
}

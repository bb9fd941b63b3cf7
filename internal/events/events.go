package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/akkm9120/sctp02-crud-mongo/internal/metrics"
)

type Type string

const (
	StudentCreated  Type = "student.created"
	StudentReplaced Type = "student.replaced"
	StudentDeleted  Type = "student.deleted"
	SubjectCreated  Type = "subject.created"
	SubjectDeleted  Type = "subject.deleted"
	UserSignedUp    Type = "user.signed_up"
)

// Event announces a completed write. It never carries credentials.
type Event struct {
	Type       Type      `json:"type"`
	Resource   string    `json:"resource"`
	ResourceID string    `json:"resourceId"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Publisher delivers events to a broker (NATS/Kafka)
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Emitter publishes events on behalf of services. Delivery is best effort:
// failures are logged and counted, never returned. A nil Emitter or one
// without a publisher does nothing.
type Emitter struct {
	publisher Publisher
	logger    *slog.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewEmitter(publisher Publisher, logger *slog.Logger, m *metrics.Metrics) *Emitter {
	return &Emitter{
		publisher: publisher,
		logger:    logger,
		metrics:   m,
		now:       time.Now,
	}
}

func (e *Emitter) Emit(ctx context.Context, eventType Type, resource, resourceID string) {
	if e == nil || e.publisher == nil {
		return
	}

	event := Event{
		Type:       eventType,
		Resource:   resource,
		ResourceID: resourceID,
		OccurredAt: e.now().UTC(),
	}

	err := e.publisher.Publish(ctx, event)
	e.metrics.RecordEventPublished(ctx, string(eventType), err)
	if err != nil {
		e.logger.WarnContext(ctx, "failed to publish event", "type", eventType, "resource_id", resourceID, "error", err)
	}
}

func (e *Emitter) Close() error {
	if e == nil || e.publisher == nil {
		return nil
	}
	return e.publisher.Close()
}

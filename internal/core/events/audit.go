package events

import (
	"context"
	"log/slog"
)

// SubscribeAuditLog writes one structured log line per assignment change.
func SubscribeAuditLog(bus *EventBus, logger *slog.Logger) {
	audit := func(ctx context.Context, event Event) error {
		logger.InfoContext(ctx, "audit",
			"event_type", event.EventType(),
			"event_id", event.EventID(),
			"occurred_at", event.OccurredAt(),
			"payload", event.Payload())
		return nil
	}
	for _, t := range []string{AssignmentCreated, AssignmentUpdated, AssignmentDeleted} {
		bus.Subscribe(t, audit)
	}
}

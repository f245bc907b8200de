package service

import (
	"context"

	"github.com/diagnosis/wedding-portal/pkg/events"
	"github.com/diagnosis/wedding-portal/pkg/logger"
)

// publish emits a domain event. Delivery is best effort: the write it
// describes has already committed.
func publish(ctx context.Context, bus events.Publisher, subject string, payload interface{}) {
	if bus == nil {
		return
	}
	if err := bus.Publish(ctx, subject, payload); err != nil {
		logger.ErrorContext(ctx, "Failed to publish event", "error", err, "subject", subject)
	}
}

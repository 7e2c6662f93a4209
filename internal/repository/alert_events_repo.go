package repository

import (
	"context"

	"github.com/Emmanjr/health-monitoring/internal/domain"
)

// AlertEventsRepository stores fired alerts. One event per reading.
type AlertEventsRepository interface {
	// CreateAlertEvent returns ErrDuplicate if the reading already has an event.
	CreateAlertEvent(ctx context.Context, event *domain.AlertEvent) error
	// ListAlertEvents returns the newest events first, at most limit.
	ListAlertEvents(ctx context.Context, userID string, limit int) ([]*domain.AlertEvent, error)
}

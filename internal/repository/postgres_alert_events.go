package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Emmanjr/health-monitoring/internal/domain"

	"go.uber.org/zap"
)

// PostgresAlertEventsRepository implements AlertEventsRepository.
type PostgresAlertEventsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresAlertEventsRepository creates an alert events repository.
func NewPostgresAlertEventsRepository(db *sql.DB, logger *zap.Logger) *PostgresAlertEventsRepository {
	return &PostgresAlertEventsRepository{db: db, logger: logger}
}

var _ AlertEventsRepository = (*PostgresAlertEventsRepository)(nil)

func (r *PostgresAlertEventsRepository) CreateAlertEvent(ctx context.Context, event *domain.AlertEvent) error {
	triggerData := event.TriggerData
	if triggerData == "" {
		triggerData = "{}"
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO alert_events (event_id, user_id, reading_id, severity, message, should_alert_physically, trigger_data, triggered_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8)`,
		event.EventID, event.UserID, event.ReadingID, event.Severity, event.Message,
		event.ShouldAlertPhysically, triggerData, event.TriggeredAt,
	)
	if err != nil {
		err = mapError(err)
		r.logger.Error("Failed to insert alert event",
			zap.String("event_id", event.EventID),
			zap.String("reading_id", event.ReadingID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (r *PostgresAlertEventsRepository) ListAlertEvents(ctx context.Context, userID string, limit int) ([]*domain.AlertEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT event_id::text, user_id::text, reading_id::text, severity, message,
			should_alert_physically, trigger_data::text, triggered_at
		FROM alert_events
		WHERE user_id = $1
		ORDER BY triggered_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list alert events: %w", err)
	}
	defer rows.Close()

	out := []*domain.AlertEvent{}
	for rows.Next() {
		var e domain.AlertEvent
		if err := rows.Scan(&e.EventID, &e.UserID, &e.ReadingID, &e.Severity, &e.Message,
			&e.ShouldAlertPhysically, &e.TriggerData, &e.TriggeredAt); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

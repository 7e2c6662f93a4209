package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Emmanjr/health-monitoring/internal/domain"

	"github.com/google/uuid"
)

// PostgresReadingsRepository stores readings in health_records.
type PostgresReadingsRepository struct {
	db *sql.DB
}

// NewPostgresReadingsRepository creates a readings repository.
func NewPostgresReadingsRepository(db *sql.DB) *PostgresReadingsRepository {
	return &PostgresReadingsRepository{db: db}
}

var _ ReadingsRepository = (*PostgresReadingsRepository)(nil)

func scanReading(row rowScanner) (*domain.Reading, error) {
	var rd domain.Reading
	var temp sql.NullFloat64
	if err := row.Scan(&rd.ReadingID, &rd.UserID, &rd.BloodPressure, &rd.HeartRate, &temp, &rd.TakenAt); err != nil {
		return nil, err
	}
	if temp.Valid {
		v := temp.Float64
		rd.Temperature = &v
	}
	return &rd, nil
}

// CreateReading inserts reading, assigning an id when empty.
func (r *PostgresReadingsRepository) CreateReading(ctx context.Context, reading *domain.Reading) (string, error) {
	if reading.ReadingID == "" {
		reading.ReadingID = uuid.New().String()
	}
	var temp sql.NullFloat64
	if reading.Temperature != nil {
		temp = sql.NullFloat64{Float64: *reading.Temperature, Valid: true}
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO health_records (reading_id, user_id, blood_pressure, heart_rate, temperature, taken_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		reading.ReadingID, reading.UserID, reading.BloodPressure, reading.HeartRate, temp, reading.TakenAt,
	)
	if err != nil {
		return "", mapError(err)
	}
	return reading.ReadingID, nil
}

// ListReadings returns every reading of userID, oldest first.
func (r *PostgresReadingsRepository) ListReadings(ctx context.Context, userID string) ([]*domain.Reading, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT reading_id::text, user_id::text, blood_pressure, heart_rate, temperature, taken_at
		FROM health_records
		WHERE user_id = $1
		ORDER BY taken_at ASC, reading_id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list readings: %w", err)
	}
	defer rows.Close()

	out := []*domain.Reading{}
	for rows.Next() {
		rd, err := scanReading(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rd)
	}
	return out, rows.Err()
}

// LatestReading returns ErrNotFound when the user has no readings.
func (r *PostgresReadingsRepository) LatestReading(ctx context.Context, userID string) (*domain.Reading, error) {
	rd, err := scanReading(r.db.QueryRowContext(ctx, `
		SELECT reading_id::text, user_id::text, blood_pressure, heart_rate, temperature, taken_at
		FROM health_records
		WHERE user_id = $1
		ORDER BY taken_at DESC
		LIMIT 1`, userID))
	if err != nil {
		return nil, mapError(err)
	}
	return rd, nil
}

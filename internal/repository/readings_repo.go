package repository

import (
	"context"

	"github.com/Emmanjr/health-monitoring/internal/domain"
)

// ReadingsRepository is append-only: there is no update or delete.
type ReadingsRepository interface {
	CreateReading(ctx context.Context, reading *domain.Reading) (string, error)
	// ListReadings returns the user's readings ordered by taken_at ascending.
	ListReadings(ctx context.Context, userID string) ([]*domain.Reading, error)
	LatestReading(ctx context.Context, userID string) (*domain.Reading, error)
}

package service

import (
	"context"

	commonredis "github.com/Emmanjr/health-monitoring/common/redis"
	"github.com/Emmanjr/health-monitoring/internal/domain"
)

// ReadingPublisher hands stored readings to the alarm worker.
type ReadingPublisher interface {
	PublishReading(ctx context.Context, event domain.ReadingEvent) error
}

// StreamPublisher appends reading events to a Redis stream.
type StreamPublisher struct {
	client *commonredis.Client
	stream string
}

func NewStreamPublisher(client *commonredis.Client, stream string) *StreamPublisher {
	return &StreamPublisher{client: client, stream: stream}
}

func (p *StreamPublisher) PublishReading(ctx context.Context, event domain.ReadingEvent) error {
	_, err := commonredis.PublishJSONToStream(ctx, p.client, p.stream, event)
	return err
}

package alarm

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Emmanjr/health-monitoring/common/database"
	"github.com/Emmanjr/health-monitoring/common/mqtt"
	commonredis "github.com/Emmanjr/health-monitoring/common/redis"
	"github.com/Emmanjr/health-monitoring/internal/config"
	"github.com/Emmanjr/health-monitoring/internal/metrics"
	"github.com/Emmanjr/health-monitoring/internal/notify"
	"github.com/Emmanjr/health-monitoring/internal/repository"
	"github.com/Emmanjr/health-monitoring/internal/store"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Service is the health-alarm worker: it owns its connections and runs
// the reading consumer.
type Service struct {
	db       *sql.DB
	redis    *redis.Client
	mqtt     *mqtt.Client
	consumer *ReadingConsumer
	logger   *zap.Logger
}

// NewService connects to Postgres, Redis and (when enabled) the MQTT broker.
func NewService(ctx context.Context, cfg *config.Config, m *metrics.Metrics, logger *zap.Logger) (*Service, error) {
	s := &Service{logger: logger}

	s.redis = commonredis.NewRedisClient(&cfg.Redis)
	if err := commonredis.Ping(ctx, s.redis); err != nil {
		s.Stop()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	var alerts repository.AlertEventsRepository
	if cfg.DBEnabled {
		db, err := database.NewPostgresDB(ctx, &cfg.Database)
		if err != nil {
			s.Stop()
			return nil, fmt.Errorf("connect database: %w", err)
		}
		s.db = db
		if err := repository.EnsureSchema(ctx, db); err != nil {
			s.Stop()
			return nil, err
		}
		alerts = repository.NewPostgresAlertEventsRepository(db, logger)
	} else {
		logger.Warn("Database disabled, alert events are kept in memory")
		alerts = repository.NewMemoryAlertEventsRepo()
	}

	var devices *DevicePublisher
	if cfg.MQTT.Enabled {
		client, err := mqtt.NewClient(&cfg.MQTT.MQTTConfig, logger)
		if err != nil {
			s.Stop()
			return nil, fmt.Errorf("connect mqtt: %w", err)
		}
		s.mqtt = client
		devices = NewDevicePublisher(client, cfg.MQTT.TopicPrefix)
	}

	var notifier notify.Notifier = notify.Nop{}
	if cfg.Notify.WebhookURL != "" {
		notifier = notify.NewWebhookClient(cfg.Notify.WebhookURL, cfg.Notify.Timeout, logger)
	}

	cache := NewCacheManager(
		store.NewRedisKV(s.redis),
		cfg.Alarm.Cache.AlertKeyPrefix,
		cfg.Alarm.Cache.AlertSuffix,
		time.Duration(cfg.Alarm.Cache.AlertTTL)*time.Second,
		logger,
	)
	evaluator := NewEvaluator(alerts, cache, devices, notifier, logger)
	s.consumer = NewReadingConsumer(ConsumerConfig{
		Stream:    cfg.Streams.Readings,
		Group:     cfg.Streams.ConsumerGroup,
		Consumer:  cfg.Streams.Consumer,
		BatchSize: int64(cfg.Streams.BatchSize),
		Block:     cfg.Streams.Block,
	}, s.redis, evaluator, m, logger)

	return s, nil
}

// Start runs the consumer until ctx is cancelled.
func (s *Service) Start(ctx context.Context) error {
	s.logger.Info("Starting alarm service")
	return s.consumer.Start(ctx)
}

// Stop releases connections. Safe to call on a partly built Service.
func (s *Service) Stop() {
	if s.mqtt != nil {
		s.mqtt.Disconnect()
	}
	if s.db != nil {
		if err := database.Close(s.db); err != nil {
			s.logger.Warn("Failed to close database", zap.Error(err))
		}
	}
	if s.redis != nil {
		if err := commonredis.Close(s.redis); err != nil {
			s.logger.Warn("Failed to close redis", zap.Error(err))
		}
	}
	s.logger.Info("Alarm service stopped")
}

// Ready reports whether the worker's dependencies respond.
func (s *Service) Ready(ctx context.Context) error {
	if err := commonredis.Ping(ctx, s.redis); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	if s.db != nil {
		if err := s.db.PingContext(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}
	if s.mqtt != nil && !s.mqtt.IsConnected() {
		return fmt.Errorf("mqtt: not connected")
	}
	return nil
}

package alarm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Emmanjr/health-monitoring/internal/advisor"
	"github.com/Emmanjr/health-monitoring/internal/domain"
	"github.com/Emmanjr/health-monitoring/internal/notify"
	"github.com/Emmanjr/health-monitoring/internal/repository"

	"go.uber.org/zap"
)

// Outcome of evaluating one reading event.
type Outcome string

const (
	OutcomeQuiet     Outcome = "quiet"
	OutcomeAlerted   Outcome = "alerted"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeInvalid   Outcome = "invalid"
)

// Evaluator re-runs the vitals advisor on stored readings and fans out
// any alert to storage, the alert cache, devices and the webhook.
type Evaluator struct {
	alerts   repository.AlertEventsRepository
	cache    *CacheManager
	devices  *DevicePublisher // nil when MQTT is disabled
	notifier notify.Notifier
	logger   *zap.Logger
	now      func() time.Time
}

func NewEvaluator(
	alerts repository.AlertEventsRepository,
	cache *CacheManager,
	devices *DevicePublisher,
	notifier notify.Notifier,
	logger *zap.Logger,
) *Evaluator {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Evaluator{
		alerts:   alerts,
		cache:    cache,
		devices:  devices,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Evaluate handles one reading event. Only storage failures are returned;
// those leave the message pending so it is retried.
func (e *Evaluator) Evaluate(ctx context.Context, evt domain.ReadingEvent) (Outcome, error) {
	alert, err := advisor.AnalyzeVitals(evt.BloodPressure, float64(evt.HeartRate), evt.Temperature)
	if err != nil {
		e.logger.Warn("Skipping reading with invalid vitals",
			zap.String("reading_id", evt.ReadingID),
			zap.String("user_id", evt.UserID),
		)
		return OutcomeInvalid, nil
	}
	if !alert.Fired() {
		return OutcomeQuiet, nil
	}

	event, err := BuildAlertEvent(evt, alert, e.now())
	if err != nil {
		return "", err
	}
	if err := e.alerts.CreateAlertEvent(ctx, event); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			e.logger.Debug("Alert already recorded for reading", zap.String("reading_id", evt.ReadingID))
			return OutcomeDuplicate, nil
		}
		return "", fmt.Errorf("store alert event: %w", err)
	}

	e.logger.Info("Alert raised",
		zap.String("event_id", event.EventID),
		zap.String("user_id", event.UserID),
		zap.String("severity", event.Severity),
		zap.Bool("physical", event.ShouldAlertPhysically),
	)

	if e.cache != nil {
		if err := e.cache.AddAlert(ctx, event); err != nil {
			e.logger.Error("Failed to update alert cache", zap.String("event_id", event.EventID), zap.Error(err))
		}
	}
	if event.ShouldAlertPhysically && e.devices != nil {
		if err := e.devices.PublishAlert(event); err != nil {
			e.logger.Error("Failed to publish device alert",
				zap.String("event_id", event.EventID),
				zap.String("topic", e.devices.Topic(event.UserID)),
				zap.Error(err),
			)
		}
	}
	if err := e.notifier.NotifyAlert(ctx, event); err != nil {
		e.logger.Error("Failed to send alert notification", zap.String("event_id", event.EventID), zap.Error(err))
	}
	return OutcomeAlerted, nil
}

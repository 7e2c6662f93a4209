package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Emmanjr/health-monitoring/internal/advisor"
	"github.com/Emmanjr/health-monitoring/internal/alarm"
	"github.com/Emmanjr/health-monitoring/internal/domain"
	"github.com/Emmanjr/health-monitoring/internal/metrics"
	"github.com/Emmanjr/health-monitoring/internal/repository"
	"github.com/Emmanjr/health-monitoring/internal/subscription"

	"go.uber.org/zap"
)

const recentAlertsLimit = 20

// VitalsService evaluates and records vitals readings.
type VitalsService interface {
	// Analyze evaluates a reading without storing it.
	Analyze(ctx context.Context, actor Actor, req ReadingRequest) (*AnalyzeResponse, error)
	SubmitReading(ctx context.Context, actor Actor, req ReadingRequest) (*SubmitReadingResponse, error)
	ListReadings(ctx context.Context, actor Actor, userID string) ([]*domain.Reading, error)
	RecentAlerts(ctx context.Context, actor Actor, userID string) ([]*domain.AlertEvent, error)
}

// AlertCache is the per-user active alert list maintained by the alarm worker.
type AlertCache interface {
	GetActiveAlerts(ctx context.Context, userID string) ([]*domain.AlertEvent, error)
	ClearAlerts(ctx context.Context, userID string) error
}

// ReadingRequest is the vitals form. Temperature is optional.
type ReadingRequest struct {
	BloodPressure string   `json:"blood_pressure"`
	HeartRate     float64  `json:"heart_rate"`
	Temperature   *float64 `json:"temperature"`
}

type AnalyzeResponse struct {
	Alert      advisor.VitalsAlert    `json:"alert"`
	Assessment advisor.RiskAssessment `json:"assessment"`
}

type SubmitReadingResponse struct {
	Reading         *domain.Reading     `json:"reading"`
	Alert           advisor.VitalsAlert `json:"alert"`
	Recommendations []string            `json:"recommendations"`
}

type vitalsService struct {
	readings  repository.ReadingsRepository
	users     repository.UsersRepository
	alerts    repository.AlertEventsRepository
	cache     AlertCache
	publisher ReadingPublisher
	notifier  subscription.Notifier
	now       func() time.Time
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewVitalsService creates a VitalsService. cache and publisher may be nil.
func NewVitalsService(
	readings repository.ReadingsRepository,
	users repository.UsersRepository,
	alerts repository.AlertEventsRepository,
	cache AlertCache,
	publisher ReadingPublisher,
	notifier subscription.Notifier,
	m *metrics.Metrics,
	logger *zap.Logger,
) VitalsService {
	return &vitalsService{
		readings:  readings,
		users:     users,
		alerts:    alerts,
		cache:     cache,
		publisher: publisher,
		notifier:  notifier,
		now:       time.Now,
		metrics:   m,
		logger:    logger,
	}
}

func (s *vitalsService) Analyze(ctx context.Context, actor Actor, req ReadingRequest) (*AnalyzeResponse, error) {
	bp := strings.TrimSpace(req.BloodPressure)
	hr := roundHeartRate(req.HeartRate)
	alert, err := advisor.AnalyzeVitals(bp, hr, req.Temperature)
	if err != nil {
		return nil, invalid(advisor.InvalidInputMessage)
	}
	profile := s.profile(ctx, actor.UserID)
	return &AnalyzeResponse{
		Alert: alert,
		Assessment: advisor.Assess(advisor.Vitals{
			BloodPressure: bp,
			HeartRate:     hr,
			Temperature:   req.Temperature,
		}, profile),
	}, nil
}

func (s *vitalsService) SubmitReading(ctx context.Context, actor Actor, req ReadingRequest) (*SubmitReadingResponse, error) {
	if actor.Role != domain.RolePatient {
		return nil, ErrForbidden
	}
	bp := strings.TrimSpace(req.BloodPressure)
	hr := roundHeartRate(req.HeartRate)
	alert, err := advisor.AnalyzeVitals(bp, hr, req.Temperature)
	if err != nil {
		s.countReading("invalid")
		return nil, invalid(advisor.InvalidInputMessage)
	}

	reading := &domain.Reading{
		UserID:        actor.UserID,
		BloodPressure: bp,
		HeartRate:     int(hr),
		Temperature:   req.Temperature,
		TakenAt:       s.now().UTC(),
	}
	id, err := s.readings.CreateReading(ctx, reading)
	if err != nil {
		s.countReading("error")
		return nil, fmt.Errorf("create reading: %w", err)
	}
	reading.ReadingID = id
	s.countReading("stored")

	if s.metrics != nil && alert.Fired() {
		s.metrics.AlertsRaised.WithLabelValues(string(alert.Severity), fmt.Sprint(alert.ShouldAlertPhysically)).Inc()
	}

	recs := advisor.GenerateRecommendations(bp, hr, s.profile(ctx, actor.UserID))

	if s.publisher != nil {
		if err := s.publisher.PublishReading(ctx, reading.Event()); err != nil {
			s.logger.Error("Failed to publish reading event",
				zap.String("reading_id", id),
				zap.String("user_id", actor.UserID),
				zap.Error(err),
			)
		}
	} else if alert.Fired() {
		// No alarm worker downstream: keep the alert history here.
		s.recordAlert(ctx, reading, alert)
	}
	notify(ctx, s.notifier, s.logger, subscription.ReadingsTopic(actor.UserID))

	s.logger.Info("Reading stored",
		zap.String("reading_id", id),
		zap.String("user_id", actor.UserID),
		zap.String("severity", string(alert.Severity)),
		zap.Bool("should_alert_physically", alert.ShouldAlertPhysically),
	)
	return &SubmitReadingResponse{Reading: reading, Alert: alert, Recommendations: recs}, nil
}

func (s *vitalsService) ListReadings(ctx context.Context, actor Actor, userID string) ([]*domain.Reading, error) {
	if userID == "" {
		userID = actor.UserID
	}
	if !actor.canSeePatient(userID) {
		return nil, ErrForbidden
	}
	out, err := s.readings.ListReadings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list readings: %w", err)
	}
	return out, nil
}

// RecentAlerts prefers the alarm worker's cache and falls back to the stored events.
func (s *vitalsService) RecentAlerts(ctx context.Context, actor Actor, userID string) ([]*domain.AlertEvent, error) {
	if userID == "" {
		userID = actor.UserID
	}
	if !actor.canSeePatient(userID) {
		return nil, ErrForbidden
	}
	if s.cache != nil {
		cached, err := s.cache.GetActiveAlerts(ctx, userID)
		if err == nil && len(cached) > 0 {
			return cached, nil
		}
		if err != nil {
			s.logger.Debug("Alert cache unavailable", zap.String("user_id", userID), zap.Error(err))
		}
	}
	if s.alerts == nil {
		return []*domain.AlertEvent{}, nil
	}
	out, err := s.alerts.ListAlertEvents(ctx, userID, recentAlertsLimit)
	if err != nil {
		return nil, fmt.Errorf("list alert events: %w", err)
	}
	return out, nil
}

// profile returns the user's lifestyle profile, or nil if it cannot be read.
func (s *vitalsService) profile(ctx context.Context, userID string) *advisor.LifestyleProfile {
	if userID == "" {
		return nil
	}
	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("Failed to load profile", zap.String("user_id", userID), zap.Error(err))
		}
		return nil
	}
	p := u.Lifestyle()
	return &p
}

func (s *vitalsService) countReading(outcome string) {
	if s.metrics != nil {
		s.metrics.ReadingsSubmitted.WithLabelValues(outcome).Inc()
	}
}

// roundHeartRate brings a submitted rate to whole beats per minute, the
// form it is stored and published in. Non-finite values pass through so
// AnalyzeVitals rejects them.
func roundHeartRate(hr float64) float64 {
	if math.IsNaN(hr) || math.IsInf(hr, 0) {
		return hr
	}
	return math.Round(hr)
}

func (s *vitalsService) recordAlert(ctx context.Context, reading *domain.Reading, alert advisor.VitalsAlert) {
	if s.alerts == nil {
		return
	}
	event, err := alarm.BuildAlertEvent(reading.Event(), alert, s.now())
	if err == nil {
		err = s.alerts.CreateAlertEvent(ctx, event)
	}
	if err != nil && !errors.Is(err, repository.ErrDuplicate) {
		s.logger.Error("Failed to record alert event",
			zap.String("reading_id", reading.ReadingID),
			zap.Error(err),
		)
	}
}

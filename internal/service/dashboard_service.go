package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Emmanjr/health-monitoring/internal/advisor"
	"github.com/Emmanjr/health-monitoring/internal/domain"
	"github.com/Emmanjr/health-monitoring/internal/export"
	"github.com/Emmanjr/health-monitoring/internal/repository"

	"go.uber.org/zap"
)

// DashboardService assembles the patient detail view for doctors and admins.
type DashboardService interface {
	PatientDetail(ctx context.Context, actor Actor, patientID string) (*PatientDetail, error)
	ExportPatientRecords(ctx context.Context, actor Actor, patientID string) (*ExportFile, error)
}

// PatientDetail is everything the patient detail page shows. StatusColors
// maps each metric of the latest reading to its chip color.
type PatientDetail struct {
	Patient      *domain.User            `json:"patient"`
	Readings     []*domain.Reading       `json:"readings"`
	Latest       *domain.Reading         `json:"latest,omitempty"`
	Assessment   *advisor.RiskAssessment `json:"assessment,omitempty"`
	StatusColors map[string]string       `json:"status_colors,omitempty"`
	RiskTier     advisor.Tier            `json:"risk_tier"`
	RiskScore    int                     `json:"risk_score"`
	RiskFactors  []advisor.RiskFactor    `json:"risk_factors"`
	Charts       ChartSeries             `json:"charts"`
}

// ChartSeries holds one point per reading, oldest first. Readings with an
// unparseable blood pressure are left out of the pressure series only.
type ChartSeries struct {
	BloodPressure []BloodPressurePoint `json:"blood_pressure"`
	HeartRate     []ValuePoint         `json:"heart_rate"`
	Temperature   []ValuePoint         `json:"temperature"`
}

type BloodPressurePoint struct {
	TakenAt   time.Time `json:"taken_at"`
	Systolic  int       `json:"systolic"`
	Diastolic int       `json:"diastolic"`
}

type ValuePoint struct {
	TakenAt time.Time `json:"taken_at"`
	Value   float64   `json:"value"`
}

type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type dashboardService struct {
	users    repository.UsersRepository
	readings repository.ReadingsRepository
	now      func() time.Time
	logger   *zap.Logger
}

// NewDashboardService creates a DashboardService.
func NewDashboardService(users repository.UsersRepository, readings repository.ReadingsRepository, logger *zap.Logger) DashboardService {
	return &dashboardService{
		users:    users,
		readings: readings,
		now:      time.Now,
		logger:   logger,
	}
}

func (s *dashboardService) PatientDetail(ctx context.Context, actor Actor, patientID string) (*PatientDetail, error) {
	patient, readings, err := s.load(ctx, actor, patientID)
	if err != nil {
		return nil, err
	}

	profile := patient.Lifestyle()
	tier, score := advisor.ComputeOverallRiskTier(profile)
	factors := advisor.RiskFactors(profile)
	if factors == nil {
		factors = []advisor.RiskFactor{}
	}
	d := &PatientDetail{
		Patient:     patient,
		Readings:    readings,
		RiskTier:    tier,
		RiskScore:   score,
		RiskFactors: factors,
		Charts:      buildCharts(readings),
	}
	if n := len(readings); n > 0 {
		d.Latest = readings[n-1]
		ra := advisor.Assess(d.Latest.Vitals(), &profile)
		d.Assessment = &ra
		d.StatusColors = make(map[string]string, len(ra.MetricStatuses))
		for metric, st := range ra.MetricStatuses {
			d.StatusColors[metric] = advisor.StatusColor(st)
		}
	}
	return d, nil
}

func (s *dashboardService) ExportPatientRecords(ctx context.Context, actor Actor, patientID string) (*ExportFile, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	patient, readings, err := s.load(ctx, actor, patientID)
	if err != nil {
		return nil, err
	}
	data, err := export.GenerateHealthRecordsExport(patient, readings)
	if err != nil {
		return nil, fmt.Errorf("generate export: %w", err)
	}
	s.logger.Info("Health records exported",
		zap.String("patient_id", patientID),
		zap.Int("readings", len(readings)),
		zap.String("exported_by", actor.UserID),
	)
	return &ExportFile{
		Filename:    exportFilename(patient, s.now()),
		ContentType: xlsxContentType,
		Data:        data,
	}, nil
}

func (s *dashboardService) load(ctx context.Context, actor Actor, patientID string) (*domain.User, []*domain.Reading, error) {
	if !actor.canSeePatient(patientID) {
		return nil, nil, ErrForbidden
	}
	patient, err := s.users.GetUser(ctx, patientID)
	if err != nil {
		return nil, nil, fmt.Errorf("get patient: %w", err)
	}
	if patient.Role != domain.RolePatient {
		return nil, nil, fmt.Errorf("user %s is a %s: %w", patientID, patient.Role, ErrNotFound)
	}
	readings, err := s.readings.ListReadings(ctx, patientID)
	if err != nil {
		return nil, nil, fmt.Errorf("list readings: %w", err)
	}
	return patient, readings, nil
}

func buildCharts(readings []*domain.Reading) ChartSeries {
	c := ChartSeries{
		BloodPressure: []BloodPressurePoint{},
		HeartRate:     []ValuePoint{},
		Temperature:   []ValuePoint{},
	}
	for _, r := range readings {
		if sys, dia, ok := advisor.ParseBloodPressure(r.BloodPressure); ok {
			c.BloodPressure = append(c.BloodPressure, BloodPressurePoint{TakenAt: r.TakenAt, Systolic: sys, Diastolic: dia})
		}
		c.HeartRate = append(c.HeartRate, ValuePoint{TakenAt: r.TakenAt, Value: float64(r.HeartRate)})
		if r.Temperature != nil {
			c.Temperature = append(c.Temperature, ValuePoint{TakenAt: r.TakenAt, Value: *r.Temperature})
		}
	}
	return c
}

func exportFilename(p *domain.User, now time.Time) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == ' ' || r == '-' || r == '_':
			return '_'
		}
		return -1
	}, p.Name)
	if name == "" {
		name = p.UserID
	}
	return fmt.Sprintf("health_records_%s_%s.xlsx", name, now.UTC().Format("20060102"))
}

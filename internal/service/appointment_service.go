package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Emmanjr/health-monitoring/internal/domain"
	"github.com/Emmanjr/health-monitoring/internal/metrics"
	"github.com/Emmanjr/health-monitoring/internal/repository"
	"github.com/Emmanjr/health-monitoring/internal/subscription"

	"go.uber.org/zap"
)

// Doctor dashboard views.
const (
	ViewAll      = "all"
	ViewToday    = "today"
	ViewUpcoming = "upcoming"
)

// AppointmentService books and reviews appointments.
type AppointmentService interface {
	Book(ctx context.Context, actor Actor, req BookRequest) (*domain.Appointment, error)
	// List returns what actor may see: own bookings for a patient, bookings
	// addressed to a doctor, everything for an admin.
	List(ctx context.Context, actor Actor, req ListAppointmentsRequest) ([]*domain.Appointment, error)
	UpdateStatus(ctx context.Context, actor Actor, appointmentID string, status string) (*domain.Appointment, error)
	Delete(ctx context.Context, actor Actor, appointmentID string) error
	Summary(ctx context.Context, actor Actor) (*AppointmentSummary, error)
	// Topic is the subscription topic matching List for actor.
	Topic(actor Actor) string
}

type BookRequest struct {
	DoctorName      string     `json:"doctor_name"`
	AppointmentDate *time.Time `json:"appointment_date"`
}

type ListAppointmentsRequest struct {
	View   string // doctors only: all, today or upcoming
	Status string
}

// AppointmentSummary backs the doctor dashboard counters.
type AppointmentSummary struct {
	Total    int `json:"total"`
	Today    int `json:"today"`
	Upcoming int `json:"upcoming"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Declined int `json:"declined"`
}

type appointmentService struct {
	appointments repository.AppointmentsRepository
	users        repository.UsersRepository
	notifier     subscription.Notifier
	now          func() time.Time
	metrics      *metrics.Metrics
	logger       *zap.Logger
}

// NewAppointmentService creates an AppointmentService.
func NewAppointmentService(appointments repository.AppointmentsRepository, users repository.UsersRepository, notifier subscription.Notifier, m *metrics.Metrics, logger *zap.Logger) AppointmentService {
	return &appointmentService{
		appointments: appointments,
		users:        users,
		notifier:     notifier,
		now:          time.Now,
		metrics:      m,
		logger:       logger,
	}
}

func (s *appointmentService) Book(ctx context.Context, actor Actor, req BookRequest) (*domain.Appointment, error) {
	if actor.Role != domain.RolePatient {
		return nil, ErrForbidden
	}
	doctorName := strings.TrimSpace(req.DoctorName)
	if doctorName == "" {
		return nil, invalid(MsgSelectDoctor)
	}
	if req.AppointmentDate == nil || req.AppointmentDate.IsZero() {
		return nil, invalid(MsgSelectDate)
	}
	if req.AppointmentDate.Before(s.now()) {
		return nil, invalid(MsgPastAppointment)
	}

	if _, err := s.users.GetUserByName(ctx, doctorName, domain.RoleDoctor); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, invalid(MsgUnknownDoctor)
		}
		return nil, fmt.Errorf("get doctor: %w", err)
	}
	patient, err := s.users.GetUser(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("get patient: %w", err)
	}

	a := &domain.Appointment{
		PatientID:       patient.UserID,
		PatientName:     patient.Name,
		DoctorName:      doctorName,
		AppointmentDate: req.AppointmentDate.UTC(),
		Status:          domain.AppointmentPending,
	}
	id, err := s.appointments.CreateAppointment(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}
	a.AppointmentID = id

	s.logger.Info("Appointment booked",
		zap.String("appointment_id", id),
		zap.String("patient_id", a.PatientID),
		zap.String("doctor_name", doctorName),
		zap.Time("appointment_date", a.AppointmentDate),
	)
	s.count("book")
	notify(ctx, s.notifier, s.logger, subscription.AppointmentTopics(a.PatientID, a.DoctorName)...)
	return a, nil
}

func (s *appointmentService) List(ctx context.Context, actor Actor, req ListAppointmentsRequest) ([]*domain.Appointment, error) {
	filters := repository.AppointmentFilters{}
	if st := strings.TrimSpace(req.Status); st != "" {
		status, ok := domain.ParseAppointmentStatus(st)
		if !ok {
			return nil, invalid(fmt.Sprintf("Unknown appointment status %q.", st))
		}
		filters.Status = status
	}

	view := strings.ToLower(strings.TrimSpace(req.View))
	if view == "" {
		view = ViewAll
	}
	if view != ViewAll && view != ViewToday && view != ViewUpcoming {
		return nil, invalid(MsgInvalidView)
	}

	switch actor.Role {
	case domain.RolePatient:
		filters.PatientID = actor.UserID
	case domain.RoleDoctor:
		filters.DoctorName = actor.Name
	case domain.RoleAdmin:
	default:
		return nil, ErrForbidden
	}

	items, err := s.appointments.ListAppointments(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	if view == ViewAll {
		return items, nil
	}

	now := s.now()
	out := make([]*domain.Appointment, 0, len(items))
	for _, a := range items {
		if (view == ViewToday && a.IsToday(now)) || (view == ViewUpcoming && a.IsUpcoming(now)) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *appointmentService) UpdateStatus(ctx context.Context, actor Actor, appointmentID string, status string) (*domain.Appointment, error) {
	if !actor.Role.CanManageAppointments() {
		return nil, ErrForbidden
	}
	to, ok := domain.ParseAppointmentStatus(strings.TrimSpace(status))
	if !ok || to == domain.AppointmentPending {
		return nil, invalid(MsgInvalidStatus)
	}

	a, err := s.appointments.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	if actor.Role == domain.RoleDoctor && a.DoctorName != actor.Name {
		return nil, ErrForbidden
	}
	if !domain.CanTransition(a.Status, to) {
		return nil, domain.ErrInvalidTransition
	}

	if err := s.appointments.UpdateStatus(ctx, appointmentID, a.Status, to); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, domain.ErrInvalidTransition
		}
		return nil, fmt.Errorf("update appointment status: %w", err)
	}
	from := a.Status
	a.Status = to
	a.UpdatedAt = s.now().UTC()

	s.logger.Info("Appointment status changed",
		zap.String("appointment_id", appointmentID),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.String("changed_by", actor.UserID),
	)
	s.count(strings.ToLower(string(to)))
	notify(ctx, s.notifier, s.logger, subscription.AppointmentTopics(a.PatientID, a.DoctorName)...)
	return a, nil
}

func (s *appointmentService) Delete(ctx context.Context, actor Actor, appointmentID string) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	a, err := s.appointments.GetAppointment(ctx, appointmentID)
	if err != nil {
		return fmt.Errorf("get appointment: %w", err)
	}
	if err := s.appointments.DeleteAppointment(ctx, appointmentID); err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	s.logger.Info("Appointment deleted",
		zap.String("appointment_id", appointmentID),
		zap.String("deleted_by", actor.UserID),
	)
	s.count("delete")
	notify(ctx, s.notifier, s.logger, subscription.AppointmentTopics(a.PatientID, a.DoctorName)...)
	return nil
}

func (s *appointmentService) Summary(ctx context.Context, actor Actor) (*AppointmentSummary, error) {
	items, err := s.List(ctx, actor, ListAppointmentsRequest{})
	if err != nil {
		return nil, err
	}
	now := s.now()
	sum := &AppointmentSummary{Total: len(items)}
	for _, a := range items {
		if a.IsToday(now) {
			sum.Today++
		}
		if a.IsUpcoming(now) {
			sum.Upcoming++
		}
		switch a.Status {
		case domain.AppointmentPending:
			sum.Pending++
		case domain.AppointmentApproved:
			sum.Approved++
		case domain.AppointmentDeclined:
			sum.Declined++
		}
	}
	return sum, nil
}

func (s *appointmentService) Topic(actor Actor) string {
	switch actor.Role {
	case domain.RolePatient:
		return subscription.PatientAppointmentsTopic(actor.UserID)
	case domain.RoleDoctor:
		return subscription.DoctorAppointmentsTopic(actor.Name)
	}
	return subscription.TopicAllAppointments
}

func (s *appointmentService) count(action string) {
	if s.metrics != nil {
		s.metrics.AppointmentChanges.WithLabelValues(action).Inc()
	}
}

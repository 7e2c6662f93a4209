package repository

import (
	"context"

	"github.com/Emmanjr/health-monitoring/internal/domain"
)

// AppointmentsRepository stores appointments.
type AppointmentsRepository interface {
	CreateAppointment(ctx context.Context, a *domain.Appointment) (string, error)
	GetAppointment(ctx context.Context, appointmentID string) (*domain.Appointment, error)
	// ListAppointments orders by appointment_date descending.
	ListAppointments(ctx context.Context, filters AppointmentFilters) ([]*domain.Appointment, error)
	// UpdateStatus changes the status only if it is still from; otherwise ErrConflict.
	UpdateStatus(ctx context.Context, appointmentID string, from, to domain.AppointmentStatus) error
	DeleteAppointment(ctx context.Context, appointmentID string) error
}

// AppointmentFilters narrows ListAppointments. Empty fields match everything.
type AppointmentFilters struct {
	PatientID  string
	DoctorName string
	Status     domain.AppointmentStatus
}

package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Emmanjr/health-monitoring/internal/domain"

	"github.com/google/uuid"
)

// MemoryReadingsRepo keeps readings in process.
type MemoryReadingsRepo struct {
	mu       sync.RWMutex
	readings []domain.Reading
}

func NewMemoryReadingsRepo() *MemoryReadingsRepo {
	return &MemoryReadingsRepo{}
}

var _ ReadingsRepository = (*MemoryReadingsRepo)(nil)

func (r *MemoryReadingsRepo) CreateReading(_ context.Context, reading *domain.Reading) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if reading.ReadingID == "" {
		reading.ReadingID = uuid.NewString()
	}
	r.readings = append(r.readings, *reading)
	return reading.ReadingID, nil
}

func (r *MemoryReadingsRepo) ListReadings(_ context.Context, userID string) ([]*domain.Reading, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*domain.Reading{}
	for _, rd := range r.readings {
		if rd.UserID == userID {
			rd := rd
			out = append(out, &rd)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TakenAt.Before(out[j].TakenAt)
	})
	return out, nil
}

func (r *MemoryReadingsRepo) LatestReading(ctx context.Context, userID string) (*domain.Reading, error) {
	all, _ := r.ListReadings(ctx, userID)
	if len(all) == 0 {
		return nil, ErrNotFound
	}
	return all[len(all)-1], nil
}

// MemoryAppointmentsRepo keeps appointments in process.
type MemoryAppointmentsRepo struct {
	mu    sync.RWMutex
	items map[string]domain.Appointment
}

func NewMemoryAppointmentsRepo() *MemoryAppointmentsRepo {
	return &MemoryAppointmentsRepo{items: map[string]domain.Appointment{}}
}

var _ AppointmentsRepository = (*MemoryAppointmentsRepo)(nil)

func (r *MemoryAppointmentsRepo) CreateAppointment(_ context.Context, a *domain.Appointment) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.AppointmentID == "" {
		a.AppointmentID = uuid.NewString()
	}
	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now
	r.items[a.AppointmentID] = *a
	return a.AppointmentID, nil
}

func (r *MemoryAppointmentsRepo) GetAppointment(_ context.Context, appointmentID string) (*domain.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.items[appointmentID]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (r *MemoryAppointmentsRepo) ListAppointments(_ context.Context, f AppointmentFilters) ([]*domain.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*domain.Appointment{}
	for _, a := range r.items {
		if f.PatientID != "" && a.PatientID != f.PatientID {
			continue
		}
		if f.DoctorName != "" && a.DoctorName != f.DoctorName {
			continue
		}
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		a := a
		out = append(out, &a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].AppointmentDate.Equal(out[j].AppointmentDate) {
			return out[i].AppointmentDate.After(out[j].AppointmentDate)
		}
		return out[i].AppointmentID < out[j].AppointmentID
	})
	return out, nil
}

func (r *MemoryAppointmentsRepo) UpdateStatus(_ context.Context, appointmentID string, from, to domain.AppointmentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[appointmentID]
	if !ok {
		return ErrNotFound
	}
	if a.Status != from {
		return ErrConflict
	}
	a.Status = to
	a.UpdatedAt = time.Now().UTC()
	r.items[appointmentID] = a
	return nil
}

func (r *MemoryAppointmentsRepo) DeleteAppointment(_ context.Context, appointmentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[appointmentID]; !ok {
		return ErrNotFound
	}
	delete(r.items, appointmentID)
	return nil
}

// MemoryAlertEventsRepo keeps alert events in process.
type MemoryAlertEventsRepo struct {
	mu     sync.RWMutex
	events []domain.AlertEvent
}

func NewMemoryAlertEventsRepo() *MemoryAlertEventsRepo {
	return &MemoryAlertEventsRepo{}
}

var _ AlertEventsRepository = (*MemoryAlertEventsRepo)(nil)

func (r *MemoryAlertEventsRepo) CreateAlertEvent(_ context.Context, event *domain.AlertEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.ReadingID == event.ReadingID {
			return ErrDuplicate
		}
	}
	r.events = append(r.events, *event)
	return nil
}

func (r *MemoryAlertEventsRepo) ListAlertEvents(_ context.Context, userID string, limit int) ([]*domain.AlertEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if limit <= 0 {
		limit = 50
	}
	out := []*domain.AlertEvent{}
	for i := len(r.events) - 1; i >= 0 && len(out) < limit; i-- {
		if r.events[i].UserID == userID {
			e := r.events[i]
			out = append(out, &e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TriggeredAt.After(out[j].TriggeredAt)
	})
	return out, nil
}

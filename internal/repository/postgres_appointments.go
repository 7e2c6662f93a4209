package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Emmanjr/health-monitoring/internal/domain"

	"github.com/google/uuid"
)

// PostgresAppointmentsRepository implements AppointmentsRepository.
type PostgresAppointmentsRepository struct {
	db *sql.DB
}

// NewPostgresAppointmentsRepository creates an appointments repository.
func NewPostgresAppointmentsRepository(db *sql.DB) *PostgresAppointmentsRepository {
	return &PostgresAppointmentsRepository{db: db}
}

var _ AppointmentsRepository = (*PostgresAppointmentsRepository)(nil)

const appointmentColumns = `
	appointment_id::text,
	patient_id::text,
	patient_name,
	doctor_name,
	appointment_date,
	status,
	created_at,
	updated_at`

func scanAppointment(row rowScanner) (*domain.Appointment, error) {
	var a domain.Appointment
	err := row.Scan(
		&a.AppointmentID,
		&a.PatientID,
		&a.PatientName,
		&a.DoctorName,
		&a.AppointmentDate,
		&a.Status,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *PostgresAppointmentsRepository) CreateAppointment(ctx context.Context, a *domain.Appointment) (string, error) {
	if a.AppointmentID == "" {
		a.AppointmentID = uuid.New().String()
	}
	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO appointments (appointment_id, patient_id, patient_name, doctor_name, appointment_date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.AppointmentID, a.PatientID, a.PatientName, a.DoctorName, a.AppointmentDate, string(a.Status), now, now,
	)
	if err != nil {
		return "", mapError(err)
	}
	return a.AppointmentID, nil
}

func (r *PostgresAppointmentsRepository) GetAppointment(ctx context.Context, appointmentID string) (*domain.Appointment, error) {
	if appointmentID == "" {
		return nil, ErrNotFound
	}
	a, err := scanAppointment(r.db.QueryRowContext(ctx,
		`SELECT`+appointmentColumns+` FROM appointments WHERE appointment_id = $1`, appointmentID))
	if err != nil {
		return nil, mapError(err)
	}
	return a, nil
}

func (r *PostgresAppointmentsRepository) ListAppointments(ctx context.Context, filters AppointmentFilters) ([]*domain.Appointment, error) {
	where := []string{"1=1"}
	args := []any{}
	argIdx := 1

	if filters.PatientID != "" {
		where = append(where, fmt.Sprintf("patient_id = $%d", argIdx))
		args = append(args, filters.PatientID)
		argIdx++
	}
	if filters.DoctorName != "" {
		where = append(where, fmt.Sprintf("doctor_name = $%d", argIdx))
		args = append(args, filters.DoctorName)
		argIdx++
	}
	if filters.Status != "" {
		where = append(where, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, string(filters.Status))
	}

	rows, err := r.db.QueryContext(ctx, `SELECT`+appointmentColumns+`
		FROM appointments
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY appointment_date DESC, appointment_id ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	out := []*domain.Appointment{}
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// UpdateStatus is a compare-and-set on status so concurrent reviewers cannot both win.
func (r *PostgresAppointmentsRepository) UpdateStatus(ctx context.Context, appointmentID string, from, to domain.AppointmentStatus) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE appointments SET status = $3, updated_at = $4
		WHERE appointment_id = $1 AND status = $2`,
		appointmentID, string(from), string(to), time.Now().UTC(),
	)
	if err != nil {
		return mapError(err)
	}
	if err := requireAffected(res); err != nil {
		if !errors.Is(err, ErrNotFound) {
			return err
		}
		if _, getErr := r.GetAppointment(ctx, appointmentID); getErr != nil {
			return getErr
		}
		return ErrConflict
	}
	return nil
}

func (r *PostgresAppointmentsRepository) DeleteAppointment(ctx context.Context, appointmentID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM appointments WHERE appointment_id = $1`, appointmentID)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(res)
}

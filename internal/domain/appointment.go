package domain

import (
	"errors"
	"time"
)

// AppointmentStatus is the review state of an appointment.
type AppointmentStatus string

const (
	AppointmentPending  AppointmentStatus = "Pending"
	AppointmentApproved AppointmentStatus = "Approved"
	AppointmentDeclined AppointmentStatus = "Declined"
)

// ErrInvalidTransition is returned for any status change other than Pending to Approved or Declined.
var ErrInvalidTransition = errors.New("invalid appointment status transition")

// ParseAppointmentStatus accepts the exact status names.
func ParseAppointmentStatus(s string) (AppointmentStatus, bool) {
	switch AppointmentStatus(s) {
	case AppointmentPending, AppointmentApproved, AppointmentDeclined:
		return AppointmentStatus(s), true
	}
	return "", false
}

// CanTransition reports whether from may move to to. Approved and Declined are final.
func CanTransition(from, to AppointmentStatus) bool {
	return from == AppointmentPending && (to == AppointmentApproved || to == AppointmentDeclined)
}

// Appointment is a booking request from a patient to a doctor.
type Appointment struct {
	AppointmentID   string            `db:"appointment_id" json:"appointment_id"`
	PatientID       string            `db:"patient_id" json:"patient_id"`
	PatientName     string            `db:"patient_name" json:"patient_name"`
	DoctorName      string            `db:"doctor_name" json:"doctor_name"`
	AppointmentDate time.Time         `db:"appointment_date" json:"appointment_date"`
	Status          AppointmentStatus `db:"status" json:"status"`
	CreatedAt       time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time         `db:"updated_at" json:"updated_at"`
}

// IsToday reports whether the appointment falls on the same calendar day as now, in now's location.
func (a *Appointment) IsToday(now time.Time) bool {
	d := a.AppointmentDate.In(now.Location())
	y1, m1, d1 := d.Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// IsUpcoming reports whether the appointment is after now.
func (a *Appointment) IsUpcoming(now time.Time) bool {
	return a.AppointmentDate.After(now)
}

package service

import "github.com/Emmanjr/health-monitoring/internal/domain"

// Actor is the authenticated caller. Every service method that depends on
// who is asking takes it explicitly.
type Actor struct {
	UserID string
	Role   domain.Role
	Name   string
}

func (a Actor) IsAdmin() bool { return a.Role == domain.RoleAdmin }

// canSeePatient reports whether a may read patientID's records.
func (a Actor) canSeePatient(patientID string) bool {
	return a.UserID == patientID || a.Role == domain.RoleDoctor || a.Role == domain.RoleAdmin
}

package domain

import (
	"strings"
	"time"

	"github.com/Emmanjr/health-monitoring/internal/advisor"
)

// Role of an account.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleAdmin   Role = "admin"
)

// ParseRole accepts any casing. An empty string is not a role.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RolePatient:
		return RolePatient, true
	case RoleDoctor:
		return RoleDoctor, true
	case RoleAdmin:
		return RoleAdmin, true
	}
	return "", false
}

// CanManageAppointments reports whether the role may approve or decline appointments.
func (r Role) CanManageAppointments() bool {
	return r == RoleDoctor || r == RoleAdmin
}

// User is a row of the users table. Lifestyle fields are filled during onboarding.
type User struct {
	UserID       string `db:"user_id" json:"user_id"`
	Name         string `db:"name" json:"name"`
	Email        string `db:"email" json:"email"`
	Role         Role   `db:"role" json:"role"`
	PasswordHash []byte `db:"password_hash" json:"-"`

	Age       *int     `db:"age" json:"age,omitempty"`
	Gender    string   `db:"gender" json:"gender,omitempty"`
	Ethnicity string   `db:"ethnicity" json:"ethnicity,omitempty"`
	BMI       *float64 `db:"bmi" json:"bmi,omitempty"`

	SmokingHabits    string `db:"smoking_habits" json:"smoking_habits,omitempty"`
	AlcoholUse       string `db:"alcohol_use" json:"alcohol_use,omitempty"`
	StressLevels     string `db:"stress_levels" json:"stress_levels,omitempty"`
	Diet             string `db:"diet" json:"diet,omitempty"`
	PhysicalActivity string `db:"physical_activity" json:"physical_activity,omitempty"`

	OnboardedAt *time.Time `db:"onboarded_at" json:"onboarded_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// Lifestyle returns the advisor view of the user's profile.
func (u *User) Lifestyle() advisor.LifestyleProfile {
	return advisor.LifestyleProfile{
		BMI:              u.BMI,
		SmokingHabits:    u.SmokingHabits,
		AlcoholUse:       u.AlcoholUse,
		StressLevels:     u.StressLevels,
		Diet:             u.Diet,
		PhysicalActivity: u.PhysicalActivity,
	}
}

// Onboarded reports whether the patient has completed onboarding.
func (u *User) Onboarded() bool {
	return u.OnboardedAt != nil
}

// UserStats is the admin dashboard headcount.
type UserStats struct {
	Total    int `json:"total"`
	Patients int `json:"patients"`
	Doctors  int `json:"doctors"`
	Admins   int `json:"admins"`
}

package service

import (
	"errors"

	"github.com/Emmanjr/health-monitoring/internal/repository"
)

var (
	// ErrNotFound aliases the repository error so handlers need one import.
	ErrNotFound = repository.ErrNotFound

	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
)

// ValidationError carries a message meant for the end user.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(msg string) error { return &ValidationError{Message: msg} }

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// User facing messages.
const (
	MsgRequiredFields   = "Please fill in all required fields."
	MsgSelectDoctor     = "Please select a doctor."
	MsgSelectDate       = "Please select a date and time."
	MsgPastAppointment  = "Cannot book appointments in the past."
	MsgUnknownDoctor    = "Selected doctor does not exist."
	MsgInvalidEmail     = "Please enter a valid email address."
	MsgShortPassword    = "Password should be at least 6 characters."
	MsgInvalidRole      = "Role must be patient, doctor or admin."
	MsgInvalidBMI       = "BMI must be a positive number."
	MsgInvalidAge       = "Age must be between 0 and 150."
	MsgInvalidStatus    = "Status must be Approved or Declined."
	MsgInvalidView      = "View must be all, today or upcoming."
	MsgCannotDeleteSelf = "Admins cannot delete their own account."
	MsgDoctorRename     = "Doctors cannot change their name. Please contact an administrator."
)

package service

import (
	"context"
	"testing"
	"time"

	"github.com/Emmanjr/health-monitoring/internal/domain"
	"github.com/Emmanjr/health-monitoring/internal/repository"
	"github.com/Emmanjr/health-monitoring/internal/subscription"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type appointmentFixture struct {
	svc      *appointmentService
	repo     *repository.MemoryAppointmentsRepo
	users    *repository.MemoryUsersRepo
	notifier *recordingNotifier
	now      time.Time

	patient Actor
	doctor  Actor
	admin   Actor
}

func newAppointmentFixture(t *testing.T) *appointmentFixture {
	t.Helper()
	f := &appointmentFixture{
		repo:     repository.NewMemoryAppointmentsRepo(),
		users:    repository.NewMemoryUsersRepo(),
		notifier: &recordingNotifier{},
		now:      time.Date(2026, 5, 20, 9, 0, 0, 0, time.UTC),
	}
	f.svc = NewAppointmentService(f.repo, f.users, f.notifier, nil, getTestLogger()).(*appointmentService)
	f.svc.now = fixedClock(f.now)
	f.patient = createTestUser(t, f.users, "Pat Lee", "pat@example.com", domain.RolePatient)
	f.doctor = createTestUser(t, f.users, "Dr Grey", "grey@example.com", domain.RoleDoctor)
	f.admin = createTestUser(t, f.users, "Root", "root@example.com", domain.RoleAdmin)
	return f
}

func (f *appointmentFixture) book(t *testing.T, at time.Time) *domain.Appointment {
	t.Helper()
	a, err := f.svc.Book(context.Background(), f.patient, BookRequest{DoctorName: f.doctor.Name, AppointmentDate: &at})
	require.NoError(t, err)
	return a
}

func TestAppointmentService_Book(t *testing.T) {
	f := newAppointmentFixture(t)
	a := f.book(t, f.now.Add(48*time.Hour))

	assert.Equal(t, domain.AppointmentPending, a.Status)
	assert.Equal(t, "Pat Lee", a.PatientName)
	assert.Equal(t, f.patient.UserID, a.PatientID)
	assert.Equal(t, subscription.AppointmentTopics(f.patient.UserID, "Dr Grey"), f.notifier.seen())
}

func TestAppointmentService_BookValidation(t *testing.T) {
	f := newAppointmentFixture(t)
	ctx := context.Background()
	future := f.now.Add(time.Hour)
	past := f.now.Add(-time.Minute)

	tests := []struct {
		name string
		req  BookRequest
		msg  string
	}{
		{"no doctor", BookRequest{AppointmentDate: &future}, MsgSelectDoctor},
		{"no date", BookRequest{DoctorName: "Dr Grey"}, MsgSelectDate},
		{"zero date", BookRequest{DoctorName: "Dr Grey", AppointmentDate: &time.Time{}}, MsgSelectDate},
		{"past", BookRequest{DoctorName: "Dr Grey", AppointmentDate: &past}, MsgPastAppointment},
		{"unknown doctor", BookRequest{DoctorName: "Dr Nobody", AppointmentDate: &future}, MsgUnknownDoctor},
		{"admin is not a doctor", BookRequest{DoctorName: "Root", AppointmentDate: &future}, MsgUnknownDoctor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Book(ctx, f.patient, tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.msg, err.Error())
		})
	}

	_, err := f.svc.Book(ctx, f.doctor, BookRequest{DoctorName: "Dr Grey", AppointmentDate: &future})
	assert.ErrorIs(t, err, ErrForbidden)

	all, err := f.repo.ListAppointments(ctx, repository.AppointmentFilters{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestAppointmentService_ListByRoleAndView(t *testing.T) {
	f := newAppointmentFixture(t)
	ctx := context.Background()
	today := f.book(t, f.now.Add(3*time.Hour))
	later := f.book(t, f.now.Add(72*time.Hour))

	other := createTestUser(t, f.users, "Dr Adams", "adams@example.com", domain.RoleDoctor)
	elsewhere := f.now.Add(5 * time.Hour)
	_, err := f.svc.Book(ctx, f.patient, BookRequest{DoctorName: other.Name, AppointmentDate: &elsewhere})
	require.NoError(t, err)

	mine, err := f.svc.List(ctx, f.patient, ListAppointmentsRequest{})
	require.NoError(t, err)
	assert.Len(t, mine, 3)

	docAll, err := f.svc.List(ctx, f.doctor, ListAppointmentsRequest{View: ViewAll})
	require.NoError(t, err)
	require.Len(t, docAll, 2)
	assert.Equal(t, later.AppointmentID, docAll[0].AppointmentID, "newest date first")

	docToday, err := f.svc.List(ctx, f.doctor, ListAppointmentsRequest{View: "Today"})
	require.NoError(t, err)
	require.Len(t, docToday, 1)
	assert.Equal(t, today.AppointmentID, docToday[0].AppointmentID)

	adminAll, err := f.svc.List(ctx, f.admin, ListAppointmentsRequest{})
	require.NoError(t, err)
	assert.Len(t, adminAll, 3)

	_, err = f.svc.List(ctx, f.doctor, ListAppointmentsRequest{View: "yesterday"})
	assert.True(t, IsValidation(err))
	_, err = f.svc.List(ctx, f.doctor, ListAppointmentsRequest{Status: "approved"})
	assert.True(t, IsValidation(err))
}

func TestAppointmentService_UpdateStatus(t *testing.T) {
	f := newAppointmentFixture(t)
	ctx := context.Background()
	a := f.book(t, f.now.Add(24*time.Hour))

	_, err := f.svc.UpdateStatus(ctx, f.patient, a.AppointmentID, "Approved")
	assert.ErrorIs(t, err, ErrForbidden)

	other := createTestUser(t, f.users, "Dr Adams", "adams@example.com", domain.RoleDoctor)
	_, err = f.svc.UpdateStatus(ctx, other, a.AppointmentID, "Approved")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.UpdateStatus(ctx, f.doctor, a.AppointmentID, "Pending")
	assert.True(t, IsValidation(err))

	updated, err := f.svc.UpdateStatus(ctx, f.doctor, a.AppointmentID, "Approved")
	require.NoError(t, err)
	assert.Equal(t, domain.AppointmentApproved, updated.Status)

	// Approved is final.
	_, err = f.svc.UpdateStatus(ctx, f.admin, a.AppointmentID, "Declined")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	stored, err := f.repo.GetAppointment(ctx, a.AppointmentID)
	require.NoError(t, err)
	assert.Equal(t, domain.AppointmentApproved, stored.Status)

	_, err = f.svc.UpdateStatus(ctx, f.admin, "missing", "Approved")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAppointmentService_DeleteAndSummary(t *testing.T) {
	f := newAppointmentFixture(t)
	ctx := context.Background()
	a := f.book(t, f.now.Add(2*time.Hour))
	b := f.book(t, f.now.Add(50*time.Hour))
	_, err := f.svc.UpdateStatus(ctx, f.doctor, b.AppointmentID, "Declined")
	require.NoError(t, err)

	sum, err := f.svc.Summary(ctx, f.doctor)
	require.NoError(t, err)
	assert.Equal(t, AppointmentSummary{Total: 2, Today: 1, Upcoming: 2, Pending: 1, Declined: 1}, *sum)

	assert.ErrorIs(t, f.svc.Delete(ctx, f.doctor, a.AppointmentID), ErrForbidden)
	require.NoError(t, f.svc.Delete(ctx, f.admin, a.AppointmentID))
	assert.ErrorIs(t, f.svc.Delete(ctx, f.admin, a.AppointmentID), ErrNotFound)

	sum, err = f.svc.Summary(ctx, f.doctor)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Total)
}

func TestAppointmentService_Topic(t *testing.T) {
	f := newAppointmentFixture(t)
	assert.Equal(t, subscription.PatientAppointmentsTopic(f.patient.UserID), f.svc.Topic(f.patient))
	assert.Equal(t, subscription.DoctorAppointmentsTopic("Dr Grey"), f.svc.Topic(f.doctor))
	assert.Equal(t, subscription.TopicAllAppointments, f.svc.Topic(f.admin))
}

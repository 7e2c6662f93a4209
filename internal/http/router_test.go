package httpapi

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Emmanjr/health-monitoring/internal/metrics"
	"github.com/Emmanjr/health-monitoring/internal/repository"
	"github.com/Emmanjr/health-monitoring/internal/service"
	"github.com/Emmanjr/health-monitoring/internal/subscription"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEnv struct {
	handler *Handler
	engine  *gin.Engine
	users   *repository.MemoryUsersRepo
}

func newTestEnv(t *testing.T, checks ...ReadinessCheck) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	m := metrics.New("test")
	hub := subscription.NewHub(logger)

	users := repository.NewMemoryUsersRepo()
	readings := repository.NewMemoryReadingsRepo()
	appointments := repository.NewMemoryAppointmentsRepo()
	alerts := repository.NewMemoryAlertEventsRepo()

	h := NewHandler(Deps{
		Auth:         service.NewAuthService(users, hub, "test-secret", time.Hour, m, logger),
		Users:        service.NewUserService(users, nil, hub, logger),
		Vitals:       service.NewVitalsService(readings, users, alerts, nil, nil, hub, m, logger),
		Appointments: service.NewAppointmentService(appointments, users, hub, m, logger),
		Dashboard:    service.NewDashboardService(users, readings, logger),
		Hub:          hub,
		Checks:       checks,
		Metrics:      m,
		Logger:       logger,
	})
	return &testEnv{handler: h, engine: h.Router(), users: users}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.engine.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) Result[T] {
	t.Helper()
	var out Result[T]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (e *testEnv) signup(t *testing.T, name, email, role string) (string, string) {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"name": name, "email": email, "password": "secret1", "role": role,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	res := decode[service.AuthResponse](t, rec)
	return res.Result.AccessToken, res.Result.User.UserID
}

func TestAuthRoutes(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{"email": "a@b.co"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, service.MsgRequiredFields, decode[any](t, rec).Message)

	token, _ := e.signup(t, "Pat", "pat@example.com", "")

	rec = e.do(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"name": "Pat", "email": "pat@example.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "pat@example.com", "password": "nope12"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "pat@example.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ResultSuccess, decode[service.AuthResponse](t, rec).Code)

	rec = e.do(t, http.MethodGet, "/api/v1/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = e.do(t, http.MethodGet, "/api/v1/me", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/v1/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pat@example.com", decode[map[string]any](t, rec).Result["email"])
}

func TestOnboardingAndVitalsRoutes(t *testing.T) {
	e := newTestEnv(t)
	token, _ := e.signup(t, "Pat", "pat@example.com", "patient")

	rec := e.do(t, http.MethodPut, "/api/v1/me/onboarding", token, map[string]any{
		"age": 40, "bmi": "31", "smoking_habits": "Current smoker", "stress_levels": "High",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = e.do(t, http.MethodPost, "/api/v1/vitals/readings", token, map[string]any{
		"blood_pressure": "120", "heart_rate": 70,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid input. Please enter valid numerical values.", decode[any](t, rec).Message)

	rec = e.do(t, http.MethodPost, "/api/v1/vitals/readings", token, map[string]any{
		"blood_pressure": "150/95", "heart_rate": 72, "temperature": 36.8,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	sub := decode[service.SubmitReadingResponse](t, rec).Result
	assert.Equal(t, "warning", string(sub.Alert.Severity))
	assert.True(t, sub.Alert.ShouldAlertPhysically)
	assert.Contains(t, sub.Recommendations, "Since you are a current smoker, quitting smoking can help lower your blood pressure.")

	rec = e.do(t, http.MethodGet, "/api/v1/vitals/readings", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec).Result, 1)

	rec = e.do(t, http.MethodPost, "/api/v1/vitals/analyze", token, map[string]any{"blood_pressure": "120/80", "heart_rate": 70})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = e.do(t, http.MethodGet, "/api/v1/vitals/readings", token, nil)
	assert.Len(t, decode[[]map[string]any](t, rec).Result, 1, "analyze does not store")
}

func TestAppointmentRoutes(t *testing.T) {
	e := newTestEnv(t)
	patient, _ := e.signup(t, "Pat", "pat@example.com", "patient")
	doctor, _ := e.signup(t, "Dr Grey", "grey@example.com", "doctor")
	admin, _ := e.signup(t, "Root", "root@example.com", "admin")

	rec := e.do(t, http.MethodGet, "/api/v1/doctors", patient, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]service.DoctorOption](t, rec).Result, 1)

	when := time.Now().Add(48 * time.Hour).UTC().Format("2006-01-02T15:04")
	rec = e.do(t, http.MethodPost, "/api/v1/appointments", patient, map[string]string{"doctor_name": "", "appointment_date": when})
	assert.Equal(t, "Please select a doctor.", decode[any](t, rec).Message)

	rec = e.do(t, http.MethodPost, "/api/v1/appointments", patient, map[string]string{"doctor_name": "Dr Grey", "appointment_date": "2001-01-01T10:00"})
	assert.Equal(t, "Cannot book appointments in the past.", decode[any](t, rec).Message)

	rec = e.do(t, http.MethodPost, "/api/v1/appointments", doctor, map[string]string{"doctor_name": "Dr Grey", "appointment_date": when})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/v1/appointments", patient, map[string]string{"doctor_name": "Dr Grey", "appointment_date": when})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := decode[map[string]any](t, rec).Result["appointment_id"].(string)

	rec = e.do(t, http.MethodPut, "/api/v1/appointments/"+id+"/status", patient, map[string]string{"status": "Approved"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = e.do(t, http.MethodPut, "/api/v1/appointments/"+id+"/status", doctor, map[string]string{"status": "Approved"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodPut, "/api/v1/appointments/"+id+"/status", doctor, map[string]string{"status": "Declined"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/v1/appointments?view=upcoming", doctor, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec).Result, 1)

	rec = e.do(t, http.MethodDelete, "/api/v1/admin/appointments/"+id, doctor, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = e.do(t, http.MethodDelete, "/api/v1/admin/appointments/"+id, admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = e.do(t, http.MethodDelete, "/api/v1/admin/appointments/"+id, admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminRoutes(t *testing.T) {
	e := newTestEnv(t)
	patient, patientID := e.signup(t, "Pat Lee", "pat@example.com", "patient")
	doctor, _ := e.signup(t, "Dr Grey", "grey@example.com", "doctor")
	admin, _ := e.signup(t, "Root", "root@example.com", "admin")

	rec := e.do(t, http.MethodPost, "/api/v1/vitals/readings", patient, map[string]any{"blood_pressure": "118/76", "heart_rate": 66})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/v1/admin/users/stats", doctor, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/v1/admin/users/stats", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, int(decode[map[string]any](t, rec).Result["total"].(float64)))

	rec = e.do(t, http.MethodGet, "/api/v1/admin/users?search=grey", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, int(decode[map[string]any](t, rec).Result["total"].(float64)))

	rec = e.do(t, http.MethodGet, "/api/v1/patients/"+patientID, doctor, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decode[map[string]any](t, rec).Result
	assert.Len(t, detail["readings"], 1)

	rec = e.do(t, http.MethodGet, "/api/v1/patients/"+patientID, patient, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/v1/admin/patients/"+patientID+"/export", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "health_records_Pat_Lee_")
	assert.NotEmpty(t, rec.Body.Bytes())

	rec = e.do(t, http.MethodDelete, "/api/v1/admin/users/"+patientID, admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = e.do(t, http.MethodGet, "/api/v1/admin/patients", admin, nil)
	assert.Empty(t, decode[[]map[string]any](t, rec).Result)
}

func TestHealthAndReady(t *testing.T) {
	e := newTestEnv(t,
		ReadinessCheck{Name: "postgres", Check: func(context.Context) error { return nil }},
		ReadinessCheck{Name: "redis", Check: func(context.Context) error { return errors.New("connection refused") }},
	)

	rec := e.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var resp probeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Checks["postgres"])
	assert.Equal(t, "connection refused", resp.Checks["redis"])

	rec = e.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

// readEvent returns the data of the next SSE event with the given name.
func readEvent(t *testing.T, r *bufio.Reader, name string) string {
	t.Helper()
	current := ""
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(line, "event:"):
			current = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:") && current == name:
			return strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		}
	}
}

func TestReadingsStream(t *testing.T) {
	e := newTestEnv(t)
	srv := httptest.NewServer(e.engine)
	defer srv.Close()

	token, _ := e.signup(t, "Pat", "pat@example.com", "patient")
	rec := e.do(t, http.MethodPost, "/api/v1/vitals/readings", token, map[string]any{"blood_pressure": "120/80", "heart_rate": 70})
	require.Equal(t, http.StatusCreated, rec.Code)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/vitals/readings/stream?access_token="+token, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	r := bufio.NewReader(resp.Body)
	var snap struct {
		Topic string           `json:"topic"`
		Data  []map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(readEvent(t, r, "snapshot")), &snap))
	assert.Len(t, snap.Data, 1, "first event is the full current set")

	rec = e.do(t, http.MethodPost, "/api/v1/vitals/readings", token, map[string]any{"blood_pressure": "130/85", "heart_rate": 75})
	require.Equal(t, http.StatusCreated, rec.Code)

	require.NoError(t, json.Unmarshal([]byte(readEvent(t, r, "snapshot")), &snap))
	assert.Len(t, snap.Data, 2, "each change replaces the whole set")
}

func TestStreamDeniedForOtherPatient(t *testing.T) {
	e := newTestEnv(t)
	_, ownerID := e.signup(t, "A", "a@example.com", "patient")
	other, _ := e.signup(t, "B", "b@example.com", "patient")

	rec := e.do(t, http.MethodGet, "/api/v1/vitals/readings/stream?user_id="+ownerID, other, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, 0, e.handler.hub.Subscribers(subscription.ReadingsTopic(ownerID)))
}

func TestQueryTokenOnlyOnStreams(t *testing.T) {
	e := newTestEnv(t)
	token, _ := e.signup(t, "Pat", "pat@example.com", "patient")

	for _, path := range []string{"/api/v1/me", "/api/v1/vitals/readings", "/api/v1/appointments"} {
		rec := e.do(t, http.MethodGet, path+"?access_token="+token, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	rec := e.do(t, http.MethodGet, "/api/v1/me", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

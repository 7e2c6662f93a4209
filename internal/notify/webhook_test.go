package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Emmanjr/health-monitoring/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func sampleEvent() *domain.AlertEvent {
	return &domain.AlertEvent{
		EventID:               "e-1",
		UserID:                "u-1",
		ReadingID:             "r-1",
		Severity:              "error",
		Message:               "Bradycardia detected. Consult a doctor if you feel dizzy.",
		ShouldAlertPhysically: true,
		TriggeredAt:           time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC),
	}
}

func TestWebhookClient_NotifyAlert(t *testing.T) {
	var got AlertPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":0,"msg":"ok"}`))
	}))
	defer srv.Close()

	c := NewWebhookClient(srv.URL, time.Second, zap.NewNop())
	require.NoError(t, c.NotifyAlert(context.Background(), sampleEvent()))

	assert.Equal(t, "Health Alert", got.Title)
	assert.Equal(t, "e-1", got.EventID)
	assert.Equal(t, "error", got.Severity)
	assert.True(t, got.ShouldAlertPhysically)
}

func TestWebhookClient_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewWebhookClient(srv.URL, time.Second, zap.NewNop())
	assert.Error(t, c.NotifyAlert(context.Background(), sampleEvent()))
}

func TestWebhookClient_BodyStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":7,"msg":"unknown user"}`))
	}))
	defer srv.Close()

	c := NewWebhookClient(srv.URL, time.Second, zap.NewNop())
	err := c.NotifyAlert(context.Background(), sampleEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown user")
}

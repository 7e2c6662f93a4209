package alarm

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Emmanjr/health-monitoring/internal/advisor"
	"github.com/Emmanjr/health-monitoring/internal/domain"

	"github.com/google/uuid"
)

// TriggerData is the vitals snapshot stored with an alert.
type TriggerData struct {
	BloodPressure     string         `json:"blood_pressure"`
	HeartRate         int            `json:"heart_rate"`
	Temperature       *float64       `json:"temperature,omitempty"`
	BloodPressureStat advisor.Status `json:"blood_pressure_status"`
	HeartRateStat     advisor.Status `json:"heart_rate_status"`
	TemperatureStat   advisor.Status `json:"temperature_status,omitempty"`
	TakenAt           time.Time      `json:"taken_at"`
}

// BuildAlertEvent turns a fired alert for evt into a storable event.
func BuildAlertEvent(evt domain.ReadingEvent, alert advisor.VitalsAlert, now time.Time) (*domain.AlertEvent, error) {
	trigger := TriggerData{
		BloodPressure:     evt.BloodPressure,
		HeartRate:         evt.HeartRate,
		Temperature:       evt.Temperature,
		BloodPressureStat: advisor.ClassifyBloodPressure(evt.BloodPressure),
		HeartRateStat:     advisor.ClassifyHeartRate(float64(evt.HeartRate)),
		TakenAt:           evt.TakenAt,
	}
	if evt.Temperature != nil {
		trigger.TemperatureStat = advisor.ClassifyTemperature(evt.Temperature)
	}
	b, err := json.Marshal(trigger)
	if err != nil {
		return nil, fmt.Errorf("marshal trigger data: %w", err)
	}

	return &domain.AlertEvent{
		EventID:               uuid.NewString(),
		UserID:                evt.UserID,
		ReadingID:             evt.ReadingID,
		Severity:              string(alert.Severity),
		Message:               alert.Message,
		ShouldAlertPhysically: alert.ShouldAlertPhysically,
		TriggerData:           string(b),
		TriggeredAt:           now.UTC(),
	}, nil
}

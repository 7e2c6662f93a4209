package domain

import (
	"time"

	"github.com/Emmanjr/health-monitoring/internal/advisor"
)

// Reading is an append-only vitals record.
type Reading struct {
	ReadingID     string    `db:"reading_id" json:"reading_id"`
	UserID        string    `db:"user_id" json:"user_id"`
	BloodPressure string    `db:"blood_pressure" json:"blood_pressure"`
	HeartRate     int       `db:"heart_rate" json:"heart_rate"`
	Temperature   *float64  `db:"temperature" json:"temperature,omitempty"`
	TakenAt       time.Time `db:"taken_at" json:"taken_at"`
}

// Vitals returns the advisor input for r.
func (r *Reading) Vitals() advisor.Vitals {
	return advisor.Vitals{
		BloodPressure: r.BloodPressure,
		HeartRate:     float64(r.HeartRate),
		Temperature:   r.Temperature,
	}
}

// ReadingEvent is published to the readings stream after a reading is stored.
type ReadingEvent struct {
	ReadingID     string    `json:"reading_id"`
	UserID        string    `json:"user_id"`
	BloodPressure string    `json:"blood_pressure"`
	HeartRate     int       `json:"heart_rate"`
	Temperature   *float64  `json:"temperature,omitempty"`
	TakenAt       time.Time `json:"taken_at"`
}

// Event converts r into its stream form.
func (r *Reading) Event() ReadingEvent {
	return ReadingEvent{
		ReadingID:     r.ReadingID,
		UserID:        r.UserID,
		BloodPressure: r.BloodPressure,
		HeartRate:     r.HeartRate,
		Temperature:   r.Temperature,
		TakenAt:       r.TakenAt,
	}
}

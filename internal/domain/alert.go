package domain

import "time"

// AlertEvent records one fired vitals alert.
type AlertEvent struct {
	EventID               string    `db:"event_id" json:"event_id"`
	UserID                string    `db:"user_id" json:"user_id"`
	ReadingID             string    `db:"reading_id" json:"reading_id"`
	Severity              string    `db:"severity" json:"severity"`
	Message               string    `db:"message" json:"message"`
	ShouldAlertPhysically bool      `db:"should_alert_physically" json:"should_alert_physically"`
	TriggerData           string    `db:"trigger_data" json:"trigger_data"` // JSON snapshot of the vitals
	TriggeredAt           time.Time `db:"triggered_at" json:"triggered_at"`
}

package advisor

import (
	"errors"
	"math"
	"strings"
)

// Severity of a vitals alert. Ordered info < warning < error.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// ErrInvalidInput is returned when vitals cannot be evaluated. Callers must not persist the reading.
var ErrInvalidInput = errors.New("invalid vitals input")

// InvalidInputMessage is the user-facing text for ErrInvalidInput.
const InvalidInputMessage = "Invalid input. Please enter valid numerical values."

const (
	bradycardiaBelow = 50

	msgLowBP       = "Low blood pressure detected. Stay hydrated. "
	msgHighBP      = "High blood pressure detected. Reduce salt intake. "
	msgBradycardia = "Bradycardia detected. Consult a doctor if you feel dizzy. "
	msgTachycardia = "Tachycardia detected. Rest and monitor your heart rate. "
	msgHypothermia = "Low body temperature detected. Warm up and seek medical attention. "
	msgFever       = "Fever detected. Rest and stay hydrated. "
)

func (s Severity) rank() int {
	switch s {
	case SeverityError:
		return 2
	case SeverityWarning:
		return 1
	default:
		return 0
	}
}

// escalate returns the more severe of cur and next.
func escalate(cur, next Severity) Severity {
	if next.rank() > cur.rank() {
		return next
	}
	return cur
}

// VitalsAlert is the combined result of AnalyzeVitals.
type VitalsAlert struct {
	Severity              Severity `json:"severity"`
	Message               string   `json:"message"`
	ShouldAlertPhysically bool     `json:"should_alert_physically"`
}

// Fired reports whether any condition produced a message.
func (a VitalsAlert) Fired() bool {
	return a.Message != ""
}

// AnalyzeVitals evaluates blood pressure, then heart rate, then temperature
// (when present) and joins the alert fragments in that order.
func AnalyzeVitals(bp string, heartRate float64, temperature *float64) (VitalsAlert, error) {
	s, d, ok := ParseBloodPressure(bp)
	if !ok || s <= 0 || d <= 0 {
		return VitalsAlert{}, ErrInvalidInput
	}
	if math.IsNaN(heartRate) || math.IsInf(heartRate, 0) || heartRate <= 0 {
		return VitalsAlert{}, ErrInvalidInput
	}
	if temperature != nil && (math.IsNaN(*temperature) || math.IsInf(*temperature, 0) || *temperature <= 0) {
		return VitalsAlert{}, ErrInvalidInput
	}

	var msg strings.Builder
	alert := VitalsAlert{Severity: SeverityInfo}

	switch ClassifyBloodPressure(bp) {
	case StatusLow:
		msg.WriteString(msgLowBP)
		alert.Severity = escalate(alert.Severity, SeverityWarning)
	case StatusHigh:
		msg.WriteString(msgHighBP)
		alert.Severity = escalate(alert.Severity, SeverityWarning)
		alert.ShouldAlertPhysically = true
	}

	switch {
	case heartRate < bradycardiaBelow:
		msg.WriteString(msgBradycardia)
		alert.Severity = escalate(alert.Severity, SeverityError)
		alert.ShouldAlertPhysically = true
	case heartRate > HeartRateHigh:
		msg.WriteString(msgTachycardia)
		alert.Severity = escalate(alert.Severity, SeverityWarning)
	}

	switch ClassifyTemperature(temperature) {
	case StatusLow:
		msg.WriteString(msgHypothermia)
		alert.Severity = escalate(alert.Severity, SeverityError)
		alert.ShouldAlertPhysically = true
	case StatusHigh:
		msg.WriteString(msgFever)
		alert.Severity = escalate(alert.Severity, SeverityWarning)
	}

	alert.Message = strings.TrimSpace(msg.String())
	return alert, nil
}

package advisor

import (
	"math"
	"strconv"
	"strings"
)

// Status is the band a single metric falls into.
type Status string

const (
	StatusLow     Status = "Low"
	StatusNormal  Status = "Normal"
	StatusHigh    Status = "High"
	StatusInvalid Status = "N/A"
)

// Blood pressure, heart rate and temperature thresholds. All comparisons are strict.
const (
	SystolicHigh   = 140
	DiastolicHigh  = 90
	SystolicLow    = 90
	DiastolicLow   = 60
	HeartRateHigh  = 100
	HeartRateLow   = 60
	TemperatureLow = 35.5
	FeverAbove     = 38.0
)

// ParseBloodPressure splits "systolic/diastolic" into two integers.
func ParseBloodPressure(bp string) (systolic, diastolic int, ok bool) {
	parts := strings.Split(strings.TrimSpace(bp), "/")
	if len(parts) != 2 {
		return 0, 0, false
	}
	s, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, false
	}
	d, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, false
	}
	return s, d, true
}

// ClassifyBloodPressure never fails; malformed input yields StatusInvalid.
// High wins over Low when both sides disagree (e.g. 150/55).
func ClassifyBloodPressure(bp string) Status {
	s, d, ok := ParseBloodPressure(bp)
	if !ok {
		return StatusInvalid
	}
	switch {
	case s > SystolicHigh || d > DiastolicHigh:
		return StatusHigh
	case s < SystolicLow || d < DiastolicLow:
		return StatusLow
	default:
		return StatusNormal
	}
}

// ClassifyHeartRate bands a beats-per-minute value.
func ClassifyHeartRate(hr float64) Status {
	switch {
	case math.IsNaN(hr) || math.IsInf(hr, 0):
		return StatusInvalid
	case hr > HeartRateHigh:
		return StatusHigh
	case hr < HeartRateLow:
		return StatusLow
	default:
		return StatusNormal
	}
}

// ClassifyTemperature bands a body temperature in °C. A missing value is StatusInvalid.
func ClassifyTemperature(t *float64) Status {
	if t == nil || math.IsNaN(*t) || math.IsInf(*t, 0) {
		return StatusInvalid
	}
	switch {
	case *t > FeverAbove:
		return StatusHigh
	case *t < TemperatureLow:
		return StatusLow
	default:
		return StatusNormal
	}
}

// StatusColor maps a status to the dashboard chip color.
func StatusColor(s Status) string {
	switch s {
	case StatusHigh:
		return "error"
	case StatusLow:
		return "warning"
	case StatusNormal:
		return "success"
	default:
		return "default"
	}
}

package advisor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssess(t *testing.T) {
	profile := &LifestyleProfile{BMI: floatPtr(32), SmokingHabits: "Current smoker"}
	ra := Assess(Vitals{BloodPressure: "150/95", HeartRate: 72, Temperature: floatPtr(36.6)}, profile)

	assert.Equal(t, StatusHigh, ra.MetricStatuses[MetricBloodPressure])
	assert.Equal(t, StatusNormal, ra.MetricStatuses[MetricHeartRate])
	assert.Equal(t, StatusNormal, ra.MetricStatuses[MetricTemperature])
	assert.Equal(t, SeverityWarning, ra.AlertSeverity)
	assert.True(t, ra.ShouldAlert)
	assert.Equal(t, TierModerate, ra.OverallRiskTier)
	assert.Equal(t, 6, ra.RiskScore)
	assert.Equal(t, []string{RecBPHigh, RecHRNormal, RecQuitSmoking, RecWeightWithBP, RecBMIHigh}, ra.Recommendations)
}

func TestAssess_InvalidVitals(t *testing.T) {
	ra := Assess(Vitals{BloodPressure: "abc", HeartRate: 72}, nil)
	assert.Equal(t, StatusInvalid, ra.MetricStatuses[MetricBloodPressure])
	assert.Equal(t, StatusInvalid, ra.MetricStatuses[MetricTemperature])
	assert.Equal(t, SeverityInfo, ra.AlertSeverity)
	assert.Empty(t, ra.AlertMessage)
	assert.Equal(t, TierLow, ra.OverallRiskTier)
	assert.Equal(t, 0, ra.RiskScore)
}

package advisor

// Metric names used as keys of RiskAssessment.MetricStatuses.
const (
	MetricBloodPressure = "blood_pressure"
	MetricHeartRate     = "heart_rate"
	MetricTemperature   = "temperature"
)

// Vitals is one reading as seen by the advisor.
type Vitals struct {
	BloodPressure string
	HeartRate     float64
	Temperature   *float64
}

// RiskAssessment is derived on every call and never stored.
type RiskAssessment struct {
	MetricStatuses  map[string]Status `json:"metric_statuses"`
	AlertSeverity   Severity          `json:"alert_severity"`
	AlertMessage    string            `json:"alert_message,omitempty"`
	ShouldAlert     bool              `json:"should_alert"`
	Recommendations []string          `json:"recommendations"`
	OverallRiskTier Tier              `json:"overall_risk_tier"`
	RiskScore       int               `json:"risk_score"`
}

// Assess runs every advisor rule over v and profile. Invalid vitals are
// reported through MetricStatuses and leave the alert at info.
func Assess(v Vitals, profile *LifestyleProfile) RiskAssessment {
	ra := RiskAssessment{
		MetricStatuses: map[string]Status{
			MetricBloodPressure: ClassifyBloodPressure(v.BloodPressure),
			MetricHeartRate:     ClassifyHeartRate(v.HeartRate),
			MetricTemperature:   ClassifyTemperature(v.Temperature),
		},
		AlertSeverity:   SeverityInfo,
		Recommendations: GenerateRecommendations(v.BloodPressure, v.HeartRate, profile),
		OverallRiskTier: TierLow,
	}

	if alert, err := AnalyzeVitals(v.BloodPressure, v.HeartRate, v.Temperature); err == nil {
		ra.AlertSeverity = alert.Severity
		ra.AlertMessage = alert.Message
		ra.ShouldAlert = alert.ShouldAlertPhysically
	}

	if profile != nil {
		ra.OverallRiskTier, ra.RiskScore = ComputeOverallRiskTier(*profile)
	}
	return ra
}

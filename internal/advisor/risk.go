package advisor

import "fmt"

// Tier buckets a lifestyle risk score.
type Tier string

const (
	TierLow      Tier = "Low"
	TierModerate Tier = "Moderate"
	TierHigh     Tier = "High"
)

const (
	tierHighFrom     = 8
	tierModerateFrom = 5
)

// ComputeOverallRiskTier adds per-factor points. Unset or unknown fields add nothing.
func ComputeOverallRiskTier(p LifestyleProfile) (Tier, int) {
	score := 0

	if p.BMI != nil {
		switch {
		case *p.BMI > bmiObese:
			score += 3
		case *p.BMI > bmiOverweight:
			score += 2
		}
	}

	switch {
	case is(p.SmokingHabits, SmokingCurrent):
		score += 3
	case is(p.SmokingHabits, SmokingFormer):
		score++
	}

	switch {
	case is(p.AlcoholUse, AlcoholRegular):
		score += 3
	case is(p.AlcoholUse, AlcoholOccasional):
		score++
	}

	switch {
	case is(p.StressLevels, StressHigh):
		score += 2
	case is(p.StressLevels, StressModerate):
		score++
	}

	switch {
	case is(p.Diet, DietPoor):
		score += 2
	case is(p.Diet, DietAverage):
		score++
	}

	switch {
	case is(p.PhysicalActivity, ActivitySedentary):
		score += 2
	case is(p.PhysicalActivity, ActivityLight):
		score++
	}

	return TierFor(score), score
}

// TierFor maps a score onto a tier.
func TierFor(score int) Tier {
	switch {
	case score >= tierHighFrom:
		return TierHigh
	case score >= tierModerateFrom:
		return TierModerate
	default:
		return TierLow
	}
}

// RiskFactor is one entry of the admin risk-factor panel.
type RiskFactor struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// RiskFactors lists the high-risk lifestyle factors present in p.
func RiskFactors(p LifestyleProfile) []RiskFactor {
	var out []RiskFactor
	if is(p.SmokingHabits, SmokingCurrent) {
		out = append(out, RiskFactor{
			Title:       "Smoking - High Risk",
			Description: "Current smoker status increases risk for cardiovascular and respiratory issues",
		})
	}
	if is(p.Diet, DietPoor) {
		out = append(out, RiskFactor{
			Title:       "Dietary Habits - High Risk",
			Description: "Poor diet may lead to nutritional deficiencies and increased risk of chronic diseases",
		})
	}
	if is(p.PhysicalActivity, ActivitySedentary) {
		out = append(out, RiskFactor{
			Title:       "Physical Activity - High Risk",
			Description: "Sedentary lifestyle increases risk for cardiovascular disease and metabolic disorders",
		})
	}
	if p.BMI != nil && *p.BMI > bmiObese {
		out = append(out, RiskFactor{
			Title:       "BMI - High Risk",
			Description: fmt.Sprintf("BMI of %g indicates obesity, increasing risk for multiple conditions", *p.BMI),
		})
	}
	return out
}

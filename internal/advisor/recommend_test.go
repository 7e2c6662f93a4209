package advisor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateRecommendations_HighBPWithProfile(t *testing.T) {
	profile := &LifestyleProfile{
		SmokingHabits: "Current smoker",
		BMI:           floatPtr(32),
		StressLevels:  "High",
		AlcoholUse:    "Regular",
	}

	got := GenerateRecommendations("145/95", 70, profile)
	assert.Equal(t, []string{
		RecBPHigh,
		RecHRNormal,
		RecQuitSmoking,
		RecReduceAlcohol,
		RecWeightWithBP,
		RecStressWithBP,
		RecBMIHigh,
	}, got)
}

func TestGenerateRecommendations_NoProfile(t *testing.T) {
	assert.Equal(t, []string{RecBPLow, RecHRHigh}, GenerateRecommendations("85/55", 120, nil))
	assert.Equal(t, []string{RecBPNormal, RecHRLow}, GenerateRecommendations("120/80", 55, nil))
	assert.Equal(t, []string{RecBPHigh, RecHRNormal}, GenerateRecommendations("150/80", 80, nil))
}

func TestGenerateRecommendations_LifestyleWithoutHighBP(t *testing.T) {
	profile := &LifestyleProfile{
		SmokingHabits:    "Current smoker",
		BMI:              floatPtr(17),
		PhysicalActivity: "Sedentary",
		Diet:             "Poor",
	}

	got := GenerateRecommendations("120/80", 72, profile)
	assert.Equal(t, []string{RecBPNormal, RecHRNormal, RecBMILow, RecMoreActivity, RecImproveDiet}, got)
}

func TestGenerateRecommendations_AliasSpellings(t *testing.T) {
	profile := &LifestyleProfile{AlcoholUse: "Heavy drinker", StressLevels: "high"}
	got := GenerateRecommendations("150/95", 72, profile)
	assert.Equal(t, []string{RecBPHigh, RecHRNormal, RecReduceAlcohol, RecStressWithBP}, got)
}

func TestGenerateRecommendations_Deterministic(t *testing.T) {
	profile := &LifestyleProfile{BMI: floatPtr(27), Diet: "Poor"}
	first := GenerateRecommendations("145/85", 105, profile)
	second := GenerateRecommendations("145/85", 105, profile)
	assert.Equal(t, first, second)
}

package advisor

import (
	"strconv"
	"strings"
)

// LifestyleProfile is the self-reported part of a patient profile. Every field is optional.
type LifestyleProfile struct {
	BMI              *float64 `json:"bmi,omitempty"`
	SmokingHabits    string   `json:"smoking_habits,omitempty"`
	AlcoholUse       string   `json:"alcohol_use,omitempty"`
	StressLevels     string   `json:"stress_levels,omitempty"`
	Diet             string   `json:"diet,omitempty"`
	PhysicalActivity string   `json:"physical_activity,omitempty"`
}

// ParseBMI turns a free-form BMI entry into a value. Blank or non-numeric input is unset.
func ParseBMI(raw string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || v <= 0 {
		return nil
	}
	return &v
}

// Canonical option values as stored by onboarding.
const (
	SmokingNon     = "Non-smoker"
	SmokingFormer  = "Former smoker"
	SmokingCurrent = "Current smoker"

	AlcoholNone       = "None"
	AlcoholOccasional = "Occasional"
	AlcoholRegular    = "Regular"

	StressLow      = "Low"
	StressModerate = "Medium"
	StressHigh     = "High"

	DietPoor    = "Poor"
	DietAverage = "Average"
	DietGood    = "Good"

	ActivitySedentary = "Sedentary"
	ActivityLight     = "Lightly Active"
	ActivityModerate  = "Moderately Active"
	ActivityActive    = "Very Active"
)

// synonyms maps each accepted spelling to its canonical option.
var synonyms = map[string]string{
	"non-smoker":     SmokingNon,
	"never smoked":   SmokingNon,
	"former smoker":  SmokingFormer,
	"current smoker": SmokingCurrent,

	"none":            AlcoholNone,
	"non-drinker":     AlcoholNone,
	"occasional":      AlcoholOccasional,
	"social drinker":  AlcoholOccasional,
	"regular":         AlcoholRegular,
	"heavy drinker":   AlcoholRegular,
	"regular drinker": AlcoholRegular,

	"low":      StressLow,
	"medium":   StressModerate,
	"moderate": StressModerate,
	"high":     StressHigh,

	"poor":    DietPoor,
	"average": DietAverage,
	"good":    DietGood,

	"sedentary":         ActivitySedentary,
	"lightly active":    ActivityLight,
	"lightly":           ActivityLight,
	"light activity":    ActivityLight,
	"moderately active": ActivityModerate,
	"very active":       ActivityActive,
	"active":            ActivityActive,
}

// Normalize returns the canonical spelling of an option, or "" when unknown.
func Normalize(v string) string {
	return synonyms[strings.ToLower(strings.TrimSpace(v))]
}

// "moderate" is shared by stress and diet, so comparisons are per field.
func is(v, canonical string) bool {
	n := Normalize(v)
	if n == "" {
		return false
	}
	if canonical == DietAverage && n == StressModerate {
		return true
	}
	return n == canonical
}

// Normalized returns a copy with every set field in canonical form.
// Unknown values are kept verbatim.
func (p LifestyleProfile) Normalized() LifestyleProfile {
	canon := func(v string) string {
		if n := Normalize(v); n != "" {
			return n
		}
		return v
	}
	out := p
	out.SmokingHabits = canon(p.SmokingHabits)
	out.AlcoholUse = canon(p.AlcoholUse)
	out.StressLevels = canon(p.StressLevels)
	out.Diet = canon(p.Diet)
	if is(p.Diet, DietAverage) {
		out.Diet = DietAverage
	}
	out.PhysicalActivity = canon(p.PhysicalActivity)
	return out
}

package advisor

// Recommendation sentences, in the order they can appear.
const (
	RecBPHigh   = "Your blood pressure is high."
	RecBPLow    = "Your blood pressure is low. Ensure you are staying well-hydrated."
	RecBPNormal = "Your blood pressure is within a normal range."

	RecHRHigh   = "Your heart rate is elevated. Please consider resting and monitoring your heart rate."
	RecHRLow    = "Your heart rate is slightly low. If you experience dizziness, consult a doctor."
	RecHRNormal = "Your heart rate is normal. Great job!"

	RecQuitSmoking   = "Since you are a current smoker, quitting smoking can help lower your blood pressure."
	RecReduceAlcohol = "Regular alcohol consumption might be contributing to your high blood pressure. Consider reducing your intake."
	RecWeightWithBP  = "A high BMI coupled with high blood pressure increases your cardiovascular risk. Consider weight management strategies."
	RecStressWithBP  = "High stress levels may be affecting your blood pressure. Consider stress-reduction techniques like mindfulness or therapy."
	RecBMIHigh       = "Your BMI is high. Consider adopting a healthier diet and increasing your physical activity."
	RecBMILow        = "Your BMI is low. Consider consulting a nutritionist to ensure you're getting enough nutrients."
	RecMoreActivity  = "Increasing your physical activity could greatly benefit your overall health."
	RecImproveDiet   = "Improving your diet by incorporating more fruits and vegetables can improve your health."
)

const (
	bmiObese       = 30
	bmiOverweight  = 25
	bmiUnderweight = 18.5
)

// GenerateRecommendations returns one blood pressure sentence, one heart rate
// sentence, then lifestyle advice. An invalid blood pressure string gets the
// normal-range sentence; an invalid heart rate gets the normal sentence.
func GenerateRecommendations(bp string, heartRate float64, profile *LifestyleProfile) []string {
	recs := make([]string, 0, 8)

	bpStatus := ClassifyBloodPressure(bp)
	switch bpStatus {
	case StatusHigh:
		recs = append(recs, RecBPHigh)
	case StatusLow:
		recs = append(recs, RecBPLow)
	default:
		recs = append(recs, RecBPNormal)
	}

	switch ClassifyHeartRate(heartRate) {
	case StatusHigh:
		recs = append(recs, RecHRHigh)
	case StatusLow:
		recs = append(recs, RecHRLow)
	default:
		recs = append(recs, RecHRNormal)
	}

	if profile == nil {
		return recs
	}

	if bpStatus == StatusHigh {
		if is(profile.SmokingHabits, SmokingCurrent) {
			recs = append(recs, RecQuitSmoking)
		}
		if is(profile.AlcoholUse, AlcoholRegular) {
			recs = append(recs, RecReduceAlcohol)
		}
		if profile.BMI != nil && *profile.BMI > bmiObese {
			recs = append(recs, RecWeightWithBP)
		}
		if is(profile.StressLevels, StressHigh) {
			recs = append(recs, RecStressWithBP)
		}
	}

	// Independent of the BP-linked BMI check; both may fire for the same value.
	if profile.BMI != nil {
		switch {
		case *profile.BMI > bmiOverweight:
			recs = append(recs, RecBMIHigh)
		case *profile.BMI < bmiUnderweight:
			recs = append(recs, RecBMILow)
		}
	}
	if is(profile.PhysicalActivity, ActivitySedentary) {
		recs = append(recs, RecMoreActivity)
	}
	if is(profile.Diet, DietPoor) {
		recs = append(recs, RecImproveDiet)
	}

	return recs
}

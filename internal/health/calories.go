package health

import (
	"fmt"
	"math"
	"strings"
)

// Gender selects the Mifflin-St Jeor constant.
type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
)

// ActivityLevel selects the TDEE multiplier.
type ActivityLevel string

const (
	Sedentary  ActivityLevel = "sedentary"
	Light      ActivityLevel = "light"
	Moderate   ActivityLevel = "moderate"
	VeryActive ActivityLevel = "very"
)

// calorieMargin is the half-width of the recommended intake range.
const calorieMargin = 200

// Activity describes one selectable activity level.
type Activity struct {
	Level       ActivityLevel `json:"level"`
	Label       string        `json:"label"`
	Description string        `json:"description"`
	Multiplier  float64       `json:"multiplier"`
}

var activities = []Activity{
	{Level: Sedentary, Label: "Sedentary", Description: "Little to no exercise", Multiplier: 1.2},
	{Level: Light, Label: "Light", Description: "Light exercise 1-3 days/week", Multiplier: 1.375},
	{Level: Moderate, Label: "Moderate", Description: "Moderate exercise 3-5 days/week", Multiplier: 1.55},
	{Level: VeryActive, Label: "Very Active", Description: "Hard exercise 6-7 days/week", Multiplier: 1.725},
}

// ActivityLevels returns the selectable activity levels, least active first.
func ActivityLevels() []Activity {
	out := make([]Activity, len(activities))
	copy(out, activities)
	return out
}

// Info returns the table entry for a. Unknown levels report ok=false.
func (a ActivityLevel) Info() (Activity, bool) {
	for _, act := range activities {
		if act.Level == a {
			return act, true
		}
	}
	return Activity{}, false
}

// Multiplier returns the TDEE multiplier for a, or false for unknown levels.
func (a ActivityLevel) Multiplier() (float64, bool) {
	act, ok := a.Info()
	return act.Multiplier, ok
}

// ParseGender resolves "male"/"female" and their one-letter forms.
func ParseGender(s string) (Gender, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m":
		return Male, nil
	case "female", "f":
		return Female, nil
	}
	return "", fmt.Errorf("unsupported gender %q", s)
}

// ParseActivityLevel resolves an activity key or label.
func ParseActivityLevel(s string) (ActivityLevel, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	switch key {
	case "very", "very-active", "very_active", "very active", "active":
		return VeryActive, nil
	}
	for _, act := range activities {
		if key == string(act.Level) {
			return act.Level, nil
		}
	}
	return "", fmt.Errorf("unsupported activity level %q", s)
}

// CalorieResult holds the basal rate and the recommended daily intake range.
type CalorieResult struct {
	BMR int `json:"bmr"`
	Min int `json:"min"`
	Max int `json:"max"`
}

// BasalMetabolicRate estimates resting energy expenditure with the
// Mifflin-St Jeor equation. The result is not rounded.
func BasalMetabolicRate(weightKg, heightCm float64, age int, gender Gender) float64 {
	bmr := 10*weightKg + 6.25*heightCm - 5*float64(age)
	if gender == Male {
		return bmr + 5
	}
	return bmr - 161
}

// ComputeCalories estimates BMR and a daily intake range of TDEE ± 200 kcal.
// TDEE is derived from the unrounded BMR; rounding only happens on output.
// The activity level must be one of the four known levels.
func ComputeCalories(weightKg, heightCm float64, age int, gender Gender, activity ActivityLevel) CalorieResult {
	bmr := BasalMetabolicRate(weightKg, heightCm, age, gender)
	multiplier, _ := activity.Multiplier()
	tdee := bmr * multiplier

	return CalorieResult{
		BMR: int(math.Round(bmr)),
		Min: int(math.Round(tdee - calorieMargin)),
		Max: int(math.Round(tdee + calorieMargin)),
	}
}

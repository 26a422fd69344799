package health

import "math"

// Category is a BMI weight-status tier.
type Category string

const (
	Underweight Category = "underweight"
	Normal      Category = "normal"
	Overweight  Category = "overweight"
	Obese       Category = "obese"
)

// CategoryInfo holds the display attributes attached to a BMI tier.
type CategoryInfo struct {
	Category Category `json:"category"`
	Label    string   `json:"label"`
	Color    string   `json:"color"`
	Message  string   `json:"message"`
	// Range is the human-readable BMI span, e.g. "18.5 - 24.9".
	Range string `json:"range"`
}

// BMIResult is the outcome of ComputeBMI.
type BMIResult struct {
	Value    float64  `json:"value"`
	Category Category `json:"category"`
	Label    string   `json:"label"`
	Color    string   `json:"color"`
	Message  string   `json:"message"`
}

var categories = []CategoryInfo{
	{
		Category: Underweight,
		Label:    "Underweight",
		Color:    "#3B82F6",
		Message:  "Consider consulting a healthcare provider about healthy weight gain strategies.",
		Range:    "Below 18.5",
	},
	{
		Category: Normal,
		Label:    "Normal Weight",
		Color:    "#10B981",
		Message:  "You're in a healthy weight range! Keep up the good work.",
		Range:    "18.5 - 24.9",
	},
	{
		Category: Overweight,
		Label:    "Overweight",
		Color:    "#F59E0B",
		Message:  "Consider adopting healthier eating habits and increasing physical activity.",
		Range:    "25 - 29.9",
	},
	{
		Category: Obese,
		Label:    "Obese",
		Color:    "#EF4444",
		Message:  "Consult with a healthcare provider for personalized weight management advice.",
		Range:    "30 and above",
	},
}

// Categories returns the BMI tiers in ascending order.
func Categories() []CategoryInfo {
	out := make([]CategoryInfo, len(categories))
	copy(out, categories)
	return out
}

// Info returns the display attributes for c. Unknown categories report ok=false.
func (c Category) Info() (CategoryInfo, bool) {
	for _, info := range categories {
		if info.Category == c {
			return info, true
		}
	}
	return CategoryInfo{}, false
}

// Classify maps a BMI value onto its tier.
func Classify(bmi float64) Category {
	switch {
	case bmi < 18.5:
		return Underweight
	case bmi < 25:
		return Normal
	case bmi < 30:
		return Overweight
	default:
		return Obese
	}
}

// ComputeBMI expects weight in kilograms and height in centimeters. Callers
// must pass positive values; a zero height divides by zero.
func ComputeBMI(weightKg, heightCm float64) BMIResult {
	heightM := heightCm / 100
	bmi := weightKg / (heightM * heightM)

	info, _ := Classify(bmi).Info()
	return BMIResult{
		Value:    roundTo(bmi, 1),
		Category: info.Category,
		Label:    info.Label,
		Color:    info.Color,
		Message:  info.Message,
	}
}

// roundTo rounds half away from zero after scaling by 10^places.
func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

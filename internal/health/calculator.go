// Package health holds the calculation core: unit conversion, BMI,
// Mifflin-St Jeor calorie estimates and the canned health tips. Every
// function is pure; results are built fresh on each call.
package health

// Result bundles everything one "Calculate" action produces.
type Result struct {
	Input    Measurement   `json:"input"`
	BMI      BMIResult     `json:"bmi"`
	Calories CalorieResult `json:"calories"`
	Tips     []Tip         `json:"tips"`
}

// Calculate runs the input gate and, only when it passes, the full
// conversion, BMI, calorie and tip pipeline. A rejected input returns an
// error wrapping ErrInvalidInput and computes nothing.
func Calculate(raw RawInput) (*Result, error) {
	m, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	return CalculateMeasurement(m), nil
}

// CalculateMeasurement runs the pipeline on already validated values.
func CalculateMeasurement(m Measurement) *Result {
	bmi := ComputeBMI(m.WeightKg, m.HeightCm)
	return &Result{
		Input:    m,
		BMI:      bmi,
		Calories: ComputeCalories(m.WeightKg, m.HeightCm, m.Age, m.Gender, m.Activity),
		Tips:     SelectHealthTips(bmi.Category),
	}
}

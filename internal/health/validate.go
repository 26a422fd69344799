package health

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	MinAge = 1
	MaxAge = 120
)

// maxCalories bounds |TDEE| so every calorie figure converts to int exactly.
const maxCalories = 1 << 53

// ErrInvalidInput is returned when the input gate rejects a form.
var ErrInvalidInput = errors.New("invalid input")

// RawInput is what a form collects before validation. Numeric fields hold
// the text as typed. Gender and Activity accept anything ParseGender and
// ParseActivityLevel accept ("very-active" included); Parse returns the
// canonical keys.
type RawInput struct {
	Weight       string        `json:"weight"`
	WeightUnit   WeightUnit    `json:"weight_unit"`
	Height       string        `json:"height"`
	HeightFeet   string        `json:"height_feet"`
	HeightInches string        `json:"height_inches"`
	HeightUnit   HeightUnit    `json:"height_unit"`
	Age          string        `json:"age"`
	Gender       Gender        `json:"gender"`
	Activity     ActivityLevel `json:"activity"`
}

// Measurement is a validated input in metric units.
type Measurement struct {
	WeightKg float64       `json:"weight_kg"`
	HeightCm float64       `json:"height_cm"`
	Age      int           `json:"age"`
	Gender   Gender        `json:"gender"`
	Activity ActivityLevel `json:"activity"`
}

var numericPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ParseNumber reads the leading decimal number of s the way a numeric text
// field does: surrounding whitespace is ignored and trailing text after the
// number is dropped ("70kg" is 70). ok is false when no finite number leads s.
func ParseNumber(s string) (float64, bool) {
	m := numericPrefix.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || !finite(v) {
		return 0, false
	}
	return v, true
}

// ValidateInputs reports whether raw may be handed to the calculator.
func ValidateInputs(raw RawInput) bool {
	_, err := check(raw)
	return err == nil
}

// Parse validates raw and converts it to metric units. Failures wrap
// ErrInvalidInput.
func Parse(raw RawInput) (Measurement, error) {
	return check(raw)
}

// ValidAge reports whether s holds a whole number of years in
// [MinAge, MaxAge].
func ValidAge(s string) bool {
	a, ok := ParseNumber(s)
	return ok && a >= MinAge && a <= MaxAge && a == math.Trunc(a)
}

func check(raw RawInput) (Measurement, error) {
	var m Measurement

	switch raw.WeightUnit {
	case Kilograms, Pounds:
	default:
		return m, invalid("weight unit %q", raw.WeightUnit)
	}
	weight, ok := ParseNumber(raw.Weight)
	if !ok || weight <= 0 {
		return m, invalid("weight must be a positive number")
	}

	switch raw.HeightUnit {
	case Centimeters:
		h, ok := ParseNumber(raw.Height)
		if !ok || h <= 0 {
			return m, invalid("height must be a positive number")
		}
		m.HeightCm = ConvertHeight(h, 0, Centimeters)
	case Feet:
		feet, ok := ParseNumber(raw.HeightFeet)
		if !ok || feet <= 0 {
			return m, invalid("feet must be a positive number")
		}
		inches := optionalNumber(raw.HeightInches)
		if inches < 0 {
			return m, invalid("inches must not be negative")
		}
		m.HeightCm = ConvertHeight(inches, feet, Feet)
	default:
		return m, invalid("height unit %q", raw.HeightUnit)
	}

	if !ValidAge(raw.Age) {
		return m, invalid("age must be a whole number between %d and %d", MinAge, MaxAge)
	}
	age, _ := ParseNumber(raw.Age)

	gender, err := ParseGender(string(raw.Gender))
	if err != nil {
		return m, invalid("gender %q", raw.Gender)
	}
	activity, err := ParseActivityLevel(string(raw.Activity))
	if err != nil {
		return m, invalid("activity level %q", raw.Activity)
	}

	m.WeightKg = ConvertWeight(weight, raw.WeightUnit)
	m.Age = int(age)
	m.Gender = gender
	m.Activity = activity
	if err := checkRange(m); err != nil {
		return Measurement{}, err
	}
	return m, nil
}

// checkRange rejects values that parse fine but overflow the formulas.
func checkRange(m Measurement) error {
	if !finite(m.WeightKg) || !finite(m.HeightCm) {
		return invalid("weight and height must be finite")
	}
	heightM := m.HeightCm / 100
	if bmi := m.WeightKg / (heightM * heightM); !finite(bmi) {
		return invalid("height is too small")
	}
	multiplier, _ := m.Activity.Multiplier()
	tdee := BasalMetabolicRate(m.WeightKg, m.HeightCm, m.Age, m.Gender) * multiplier
	if !finite(tdee) || math.Abs(tdee)+calorieMargin > maxCalories {
		return invalid("weight or height is out of range")
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// optionalNumber treats a blank or unparsable field as zero.
func optionalNumber(s string) float64 {
	v, ok := ParseNumber(s)
	if !ok {
		return 0
	}
	return v
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

package health

import (
	"fmt"
	"strings"
)

// WeightUnit is the unit a weight value was entered in.
type WeightUnit string

// HeightUnit is the unit a height value was entered in.
type HeightUnit string

const (
	Kilograms WeightUnit = "kg"
	Pounds    WeightUnit = "lbs"

	Centimeters HeightUnit = "cm"
	Feet        HeightUnit = "ft"
)

const (
	kgPerPound    = 0.453592
	cmPerInch     = 2.54
	inchesPerFoot = 12
)

// ConvertWeight returns the weight in kilograms.
func ConvertWeight(value float64, unit WeightUnit) float64 {
	if unit == Pounds {
		return value * kgPerPound
	}
	return value
}

// ConvertHeight returns the height in centimeters. For Centimeters, primary is
// the height and feet is ignored. For Feet, primary holds the inches part.
func ConvertHeight(primary, feet float64, unit HeightUnit) float64 {
	if unit == Feet {
		return (feet*inchesPerFoot + primary) * cmPerInch
	}
	return primary
}

// ParseWeightUnit resolves a unit tag such as "kg", "lb" or "LBS".
func ParseWeightUnit(s string) (WeightUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "kg", "kgs", "kilograms":
		return Kilograms, nil
	case "lb", "lbs", "pounds":
		return Pounds, nil
	}
	return "", fmt.Errorf("unsupported weight unit %q", s)
}

// ParseHeightUnit resolves a unit tag such as "cm" or "ft".
func ParseHeightUnit(s string) (HeightUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cm", "centimeters":
		return Centimeters, nil
	case "ft", "feet":
		return Feet, nil
	}
	return "", fmt.Errorf("unsupported height unit %q", s)
}

// Toggle returns the other weight unit.
func (u WeightUnit) Toggle() WeightUnit {
	if u == Pounds {
		return Kilograms
	}
	return Pounds
}

// Toggle returns the other height unit.
func (u HeightUnit) Toggle() HeightUnit {
	if u == Feet {
		return Centimeters
	}
	return Feet
}

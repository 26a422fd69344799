// Package form models the guided two-screen flow around the calculator:
// collect inputs, show results, go back and recalculate.
package form

import (
	"bmi-quickcalc/internal/health"
)

// Screen is the presentation state of a form.
type Screen string

const (
	ScreenCollecting Screen = "collecting"
	ScreenResults    Screen = "results"
)

// Field names an input the guided flow can ask for.
type Field string

const (
	FieldWeight       Field = "weight"
	FieldHeight       Field = "height"
	FieldHeightFeet   Field = "height_feet"
	FieldHeightInches Field = "height_inches"
	FieldAge          Field = "age"
	FieldNone         Field = ""
)

// Form is the transient state of one user's calculator screen.
type Form struct {
	Input  health.RawInput `json:"input"`
	Screen Screen          `json:"screen"`
	Result *health.Result  `json:"result,omitempty"`
}

// New returns an empty form with the app defaults: kg, cm, male, moderate.
func New() *Form {
	return &Form{
		Input: health.RawInput{
			WeightUnit: health.Kilograms,
			HeightUnit: health.Centimeters,
			Gender:     health.Male,
			Activity:   health.Moderate,
		},
		Screen: ScreenCollecting,
	}
}

// Reset clears every input and returns to the empty form.
func (f *Form) Reset() {
	*f = *New()
}

// SetField stores the text typed into a numeric field.
func (f *Form) SetField(field Field, value string) bool {
	switch field {
	case FieldWeight:
		f.Input.Weight = value
	case FieldHeight:
		f.Input.Height = value
	case FieldHeightFeet:
		f.Input.HeightFeet = value
	case FieldHeightInches:
		f.Input.HeightInches = value
	case FieldAge:
		f.Input.Age = value
	default:
		return false
	}
	f.edited()
	return true
}

// SetWeightUnit switches the weight unit toggle.
func (f *Form) SetWeightUnit(u health.WeightUnit) {
	f.Input.WeightUnit = u
	f.edited()
}

// SetHeightUnit switches the height unit toggle.
func (f *Form) SetHeightUnit(u health.HeightUnit) {
	f.Input.HeightUnit = u
	f.edited()
}

// SetGender selects the gender option.
func (f *Form) SetGender(g health.Gender) {
	f.Input.Gender = g
	f.edited()
}

// SetActivity selects the activity level option.
func (f *Form) SetActivity(a health.ActivityLevel) {
	f.Input.Activity = a
	f.edited()
}

// CanCalculate reports whether the Calculate action should be enabled.
func (f *Form) CanCalculate() bool {
	return health.ValidateInputs(f.Input)
}

// Calculate runs the calculator and switches to the results screen. When the
// input gate fails the form is left untouched and the error wraps
// health.ErrInvalidInput.
func (f *Form) Calculate() (*health.Result, error) {
	res, err := health.Calculate(f.Input)
	if err != nil {
		return nil, err
	}
	f.Result = res
	f.Screen = ScreenResults
	return res, nil
}

// Back returns to the input screen keeping what was typed.
func (f *Form) Back() {
	f.Screen = ScreenCollecting
}

// NextField names the first numeric field that still blocks the input gate,
// or FieldNone once every numeric field is acceptable.
func (f *Form) NextField() Field {
	in := f.Input
	if v, ok := health.ParseNumber(in.Weight); !ok || v <= 0 {
		return FieldWeight
	}
	if in.HeightUnit == health.Feet {
		if v, ok := health.ParseNumber(in.HeightFeet); !ok || v <= 0 {
			return FieldHeightFeet
		}
		if v, ok := health.ParseNumber(in.HeightInches); ok && v < 0 {
			return FieldHeightInches
		}
	} else if v, ok := health.ParseNumber(in.Height); !ok || v <= 0 {
		return FieldHeight
	}
	if !health.ValidAge(in.Age) {
		return FieldAge
	}
	return FieldNone
}

// edited drops a stale result: any change to the inputs invalidates it.
func (f *Form) edited() {
	f.Result = nil
	f.Screen = ScreenCollecting
}

package form

import (
	"encoding/json"
	"errors"
	"testing"

	"bmi-quickcalc/internal/health"
)

func filledForm() *Form {
	f := New()
	f.SetField(FieldWeight, "70")
	f.SetField(FieldHeight, "175")
	f.SetField(FieldAge, "30")
	return f
}

func TestNewDefaults(t *testing.T) {
	f := New()
	if f.Input.WeightUnit != health.Kilograms || f.Input.HeightUnit != health.Centimeters {
		t.Errorf("Expected kg/cm defaults, got %s/%s", f.Input.WeightUnit, f.Input.HeightUnit)
	}
	if f.Input.Gender != health.Male || f.Input.Activity != health.Moderate {
		t.Errorf("Expected male/moderate defaults, got %s/%s", f.Input.Gender, f.Input.Activity)
	}
	if f.Screen != ScreenCollecting {
		t.Errorf("Expected collecting screen, got %s", f.Screen)
	}
	if f.CanCalculate() {
		t.Error("Expected empty form to be blocked")
	}
}

func TestCalculateFlow(t *testing.T) {
	f := filledForm()
	if !f.CanCalculate() {
		t.Fatal("Expected filled form to pass the gate")
	}

	res, err := f.Calculate()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if f.Screen != ScreenResults || f.Result != res {
		t.Errorf("Expected results screen holding the result, got %s", f.Screen)
	}

	t.Run("BackKeepsInputs", func(t *testing.T) {
		f.Back()
		if f.Screen != ScreenCollecting {
			t.Errorf("Expected collecting screen, got %s", f.Screen)
		}
		if f.Input.Weight != "70" {
			t.Errorf("Expected weight to be kept, got %q", f.Input.Weight)
		}
	})

	t.Run("EditDiscardsResult", func(t *testing.T) {
		if _, err := f.Calculate(); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		f.SetWeightUnit(health.Pounds)
		if f.Result != nil || f.Screen != ScreenCollecting {
			t.Error("Expected editing to discard the result")
		}
	})
}

func TestCalculateRefusesInvalid(t *testing.T) {
	f := filledForm()
	f.SetField(FieldAge, "121")

	res, err := f.Calculate()
	if !errors.Is(err, health.ErrInvalidInput) {
		t.Fatalf("Expected ErrInvalidInput, got %v", err)
	}
	if res != nil || f.Result != nil || f.Screen != ScreenCollecting {
		t.Error("Expected the form to stay on the input screen without a result")
	}
}

func TestNextField(t *testing.T) {
	f := New()
	steps := []struct {
		field Field
		value string
		next  Field
	}{
		{FieldWeight, "70", FieldHeight},
		{FieldHeight, "175", FieldAge},
		{FieldAge, "abc", FieldAge},
		{FieldAge, "30.5", FieldAge},
		{FieldAge, "30", FieldNone},
	}
	if got := f.NextField(); got != FieldWeight {
		t.Fatalf("Expected weight first, got %q", got)
	}
	for _, s := range steps {
		f.SetField(s.field, s.value)
		if got := f.NextField(); got != s.next {
			t.Errorf("After %s=%q expected next %q, got %q", s.field, s.value, s.next, got)
		}
	}

	f.SetHeightUnit(health.Feet)
	if got := f.NextField(); got != FieldHeightFeet {
		t.Errorf("Expected feet after switching units, got %q", got)
	}
	f.SetField(FieldHeightFeet, "5")
	if got := f.NextField(); got != FieldNone {
		t.Errorf("Expected inches to be optional, got %q", got)
	}
	if !f.CanCalculate() {
		t.Error("Expected feet-only height to pass the gate")
	}
}

func TestSetFieldUnknown(t *testing.T) {
	f := New()
	if f.SetField("colour", "blue") {
		t.Error("Expected unknown field to be rejected")
	}
}

func TestResetAndJSON(t *testing.T) {
	f := filledForm()
	f.SetGender(health.Female)
	f.SetActivity(health.Light)
	if _, err := f.Calculate(); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	data, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("Failed to marshal form: %v", err)
	}
	var restored Form
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("Failed to unmarshal form: %v", err)
	}
	if restored.Screen != ScreenResults || restored.Result == nil || restored.Result.BMI.Value != f.Result.BMI.Value {
		t.Errorf("Expected restored results screen, got %+v", restored)
	}

	f.Reset()
	if f.Input.Weight != "" || f.Input.Gender != health.Male || f.Result != nil {
		t.Errorf("Expected a fresh form after reset, got %+v", f)
	}
}

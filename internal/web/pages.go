package web

import (
	"errors"
	"net/http"
	"time"

	"bmi-quickcalc/internal/form"
	"bmi-quickcalc/internal/health"
	"bmi-quickcalc/internal/logger"
	"bmi-quickcalc/internal/metrics"
	"bmi-quickcalc/internal/session"

	"go.uber.org/zap"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	key := s.sessionKey(w, r)
	f, err := session.Load(r.Context(), s.sessions, key)
	if err != nil {
		logger.Error("failed to load session", zap.Error(err))
		f = form.New()
	}

	if f.Screen == form.ScreenResults && f.Result != nil {
		s.render(w, http.StatusOK, "results", pageData{Title: "Your Health Results", Form: f})
		return
	}
	s.render(w, http.StatusOK, "form", pageData{Title: "Calculator", Form: f})
}

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key := s.sessionKey(w, r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	f, err := session.Load(ctx, s.sessions, key)
	if err != nil {
		logger.Error("failed to load session", zap.Error(err))
		f = form.New()
	}
	applyFormValues(f, r)

	start := time.Now()
	_, err = f.Calculate()
	if err != nil {
		if !errors.Is(err, health.ErrInvalidInput) {
			s.recorder.Failed(ctx, metrics.SurfaceWeb, "calculate")
			http.Error(w, "Calculation failed", http.StatusInternalServerError)
			return
		}
		s.recorder.Rejected(ctx, metrics.SurfaceWeb)
		s.save(r, key, f)
		s.render(w, http.StatusUnprocessableEntity, "form", pageData{
			Title: "Calculator",
			Form:  f,
			Error: missingFieldMessage(f.NextField()),
		})
		return
	}
	s.recorder.Calculated(ctx, metrics.SurfaceWeb, string(f.Result.BMI.Category), time.Since(start))

	s.save(r, key, f)
	s.render(w, http.StatusOK, "results", pageData{Title: "Your Health Results", Form: f})
}

func (s *Server) handleBack(w http.ResponseWriter, r *http.Request) {
	key := s.sessionKey(w, r)
	f, err := session.Load(r.Context(), s.sessions, key)
	if err != nil {
		logger.Error("failed to load session", zap.Error(err))
		f = form.New()
	}
	f.Back()
	s.save(r, key, f)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	key := s.sessionKey(w, r)
	if err := s.sessions.Delete(r.Context(), key); err != nil {
		logger.Warn("failed to delete session", zap.Error(err))
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleAbout(w http.ResponseWriter, _ *http.Request) {
	s.render(w, http.StatusOK, "about", pageData{Title: "About"})
}

func (s *Server) save(r *http.Request, key string, f *form.Form) {
	if err := s.sessions.Put(r.Context(), key, f); err != nil {
		logger.Warn("failed to save session", zap.Error(err))
	}
}

// applyFormValues copies submitted fields onto f. Toggles that fail to parse
// keep their previous value.
func applyFormValues(f *form.Form, r *http.Request) {
	for _, field := range []form.Field{form.FieldWeight, form.FieldHeight, form.FieldHeightFeet, form.FieldHeightInches, form.FieldAge} {
		if vals, ok := r.PostForm[string(field)]; ok && len(vals) > 0 {
			f.SetField(field, vals[0])
		}
	}
	if u, err := health.ParseWeightUnit(r.PostFormValue("weight_unit")); err == nil {
		f.SetWeightUnit(u)
	}
	if u, err := health.ParseHeightUnit(r.PostFormValue("height_unit")); err == nil {
		f.SetHeightUnit(u)
	}
	if g, err := health.ParseGender(r.PostFormValue("gender")); err == nil {
		f.SetGender(g)
	}
	if a, err := health.ParseActivityLevel(r.PostFormValue("activity")); err == nil {
		f.SetActivity(a)
	}
}

func missingFieldMessage(field form.Field) string {
	switch field {
	case form.FieldWeight:
		return "Please enter a weight greater than zero."
	case form.FieldHeight:
		return "Please enter a height in centimeters greater than zero."
	case form.FieldHeightFeet:
		return "Please enter your height in feet (inches are optional)."
	case form.FieldHeightInches:
		return "Inches cannot be negative."
	case form.FieldAge:
		return "Please enter your age in whole years, between 1 and 120."
	}
	return "Please check your inputs."
}

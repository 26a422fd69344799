package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"bmi-quickcalc/internal/form"
	"bmi-quickcalc/internal/health"
	"bmi-quickcalc/internal/logger"
	"bmi-quickcalc/internal/metrics"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// numberText accepts either a JSON number or a JSON string and keeps the text.
type numberText string

func (n *numberText) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*n = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = numberText(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return err
	}
	*n = numberText(num.String())
	return nil
}

type calculateRequest struct {
	Weight       numberText `json:"weight"`
	WeightUnit   string     `json:"weight_unit"`
	Height       numberText `json:"height"`
	HeightFeet   numberText `json:"height_feet"`
	HeightInches numberText `json:"height_inches"`
	HeightUnit   string     `json:"height_unit"`
	Age          numberText `json:"age"`
	Gender       string     `json:"gender"`
	Activity     string     `json:"activity"`
}

// toRawInput fills omitted selections with the form defaults. Unknown
// selections are passed through so the input gate rejects them.
func (req calculateRequest) toRawInput() health.RawInput {
	raw := form.New().Input
	raw.Weight = string(req.Weight)
	raw.Height = string(req.Height)
	raw.HeightFeet = string(req.HeightFeet)
	raw.HeightInches = string(req.HeightInches)
	raw.Age = string(req.Age)

	if req.WeightUnit != "" {
		raw.WeightUnit = health.WeightUnit(req.WeightUnit)
		if u, err := health.ParseWeightUnit(req.WeightUnit); err == nil {
			raw.WeightUnit = u
		}
	}
	if req.HeightUnit != "" {
		raw.HeightUnit = health.HeightUnit(req.HeightUnit)
		if u, err := health.ParseHeightUnit(req.HeightUnit); err == nil {
			raw.HeightUnit = u
		}
	}
	if req.Gender != "" {
		raw.Gender = health.Gender(req.Gender)
		if g, err := health.ParseGender(req.Gender); err == nil {
			raw.Gender = g
		}
	}
	if req.Activity != "" {
		raw.Activity = health.ActivityLevel(req.Activity)
		if a, err := health.ParseActivityLevel(req.Activity); err == nil {
			raw.Activity = a
		}
	}
	return raw
}

func (s *Server) handleAPICalculate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req calculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	start := time.Now()
	res, err := health.Calculate(req.toRawInput())
	if err != nil {
		if errors.Is(err, health.ErrInvalidInput) {
			s.recorder.Rejected(ctx, metrics.SurfaceAPI)
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
			return
		}
		logger.Error("calculation failed", zap.Error(err))
		s.recorder.Failed(ctx, metrics.SurfaceAPI, "calculate")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Calculation failed"})
		return
	}
	s.recorder.Calculated(ctx, metrics.SurfaceAPI, string(res.BMI.Category), time.Since(start))

	writeJSON(w, http.StatusOK, res)
}

type tipsResponse struct {
	Category health.Category `json:"category"`
	Fallback bool            `json:"fallback"`
	Tips     []health.Tip    `json:"tips"`
}

func (s *Server) handleAPITips(w http.ResponseWriter, r *http.Request) {
	category := health.Category(strings.ToLower(chi.URLParam(r, "category")))
	_, known := category.Info()
	if !known {
		category = health.Normal
	}
	writeJSON(w, http.StatusOK, tipsResponse{
		Category: category,
		Fallback: !known,
		Tips:     health.SelectHealthTips(category),
	})
}

type referenceResponse struct {
	Categories []health.CategoryInfo `json:"categories"`
	Activities []health.Activity     `json:"activities"`
}

func (s *Server) handleAPIReference(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, referenceResponse{
		Categories: health.Categories(),
		Activities: health.ActivityLevels(),
	})
}

type activityResponse struct {
	Days   []metrics.DailyActivity `json:"days"`
	System metrics.SysHealth       `json:"system"`
}

func (s *Server) handleAdminActivity(w http.ResponseWriter, r *http.Request) {
	resp := activityResponse{
		Days:   []metrics.DailyActivity{},
		System: metrics.GetSysHealth(s.cfg.DataDir),
	}
	if s.activity != nil {
		days, err := s.activity.GetDailyActivity(r.Context(), 7)
		if err != nil {
			logger.Error("failed to fetch activity", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to fetch activity"})
			return
		}
		if days != nil {
			resp.Days = days
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// writeJSON encodes v before touching the response, so an unencodable value
// becomes a 500 instead of an empty 200.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		logger.Error("failed to encode response", zap.Error(err))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Failed to encode response"}` + "\n"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(body, '\n'))
}

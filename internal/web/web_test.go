package web

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"bmi-quickcalc/internal/auth"
	"bmi-quickcalc/internal/config"
	"bmi-quickcalc/internal/database"
	"bmi-quickcalc/internal/health"
	"bmi-quickcalc/internal/metrics"
	"bmi-quickcalc/internal/session"

	"github.com/PuerkitoBio/goquery"
)

const testSecret = "test-admin-secret"

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	dir := t.TempDir()
	db, err := database.NewDB(filepath.Join(dir, "web.db"))
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{
		DataDir:          dir,
		SessionTTL:       30 * time.Minute,
		AdminTokenSecret: testSecret,
	}
	store := metrics.NewStore(db.SQL)
	srv, err := NewServer(cfg, session.NewSQLiteStore(db.SQL, cfg.SessionTTL), metrics.NewRecorder(store), store)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}
	return srv.Router()
}

func postForm(t *testing.T, h http.Handler, path string, values url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func get(t *testing.T, h http.Handler, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func parseDoc(t *testing.T, rec *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	if err != nil {
		t.Fatalf("Failed to parse HTML: %v", err)
	}
	return doc
}

func sessionCookieFrom(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookie {
			return c
		}
	}
	t.Fatal("Expected a session cookie to be issued")
	return nil
}

func validForm() url.Values {
	return url.Values{
		"weight":      {"70"},
		"weight_unit": {"kg"},
		"height":      {"175"},
		"height_unit": {"cm"},
		"age":         {"30"},
		"gender":      {"male"},
		"activity":    {"moderate"},
	}
}

func TestFormScreen(t *testing.T) {
	h := newTestServer(t)

	rec := get(t, h, "/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	sessionCookieFrom(t, rec)

	doc := parseDoc(t, rec)
	if doc.Find("form#calculator").Length() != 1 {
		t.Error("Expected the calculator form to be rendered")
	}
	if _, ok := doc.Find("#calculate").Attr("data-incomplete"); !ok {
		t.Error("Expected Calculate to be marked incomplete on an empty form")
	}
	if v, _ := doc.Find(`input[name="weight_unit"][checked]`).Attr("value"); v != "kg" {
		t.Errorf("Expected kg to be the default weight unit, got %q", v)
	}
	if v, _ := doc.Find(`input[name="activity"][checked]`).Attr("value"); v != "moderate" {
		t.Errorf("Expected moderate to be the default activity, got %q", v)
	}
	if n := doc.Find("label.activity").Length(); n != 4 {
		t.Errorf("Expected 4 activity options, got %d", n)
	}
}

func TestCalculateFlow(t *testing.T) {
	h := newTestServer(t)
	cookie := sessionCookieFrom(t, get(t, h, "/", nil))

	t.Run("Results", func(t *testing.T) {
		rec := postForm(t, h, "/calculate", validForm(), cookie)
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", rec.Code)
		}
		doc := parseDoc(t, rec)
		if got := strings.TrimSpace(doc.Find(".bmi-value").Text()); got != "22.9" {
			t.Errorf("Expected BMI 22.9, got %q", got)
		}
		if got := strings.TrimSpace(doc.Find(".bmi-category").Text()); got != "Normal Weight" {
			t.Errorf("Expected category Normal Weight, got %q", got)
		}
		if got := strings.TrimSpace(doc.Find(".calorie-range").Text()); got != "2,356 - 2,756" {
			t.Errorf("Expected calorie range 2,356 - 2,756, got %q", got)
		}
		if got := doc.Find(".calorie-bmr").Text(); !strings.Contains(got, "1,649") {
			t.Errorf("Expected BMR 1,649 in %q", got)
		}
		if n := doc.Find(".tip").Length(); n != 3 {
			t.Errorf("Expected 3 tips, got %d", n)
		}
		if doc.Find("#recalculate").Length() != 1 {
			t.Error("Expected a Recalculate button")
		}
	})

	t.Run("ResultsPersistForSession", func(t *testing.T) {
		doc := parseDoc(t, get(t, h, "/", cookie))
		if doc.Find("#bmi").Length() != 1 {
			t.Error("Expected the results screen for a calculated session")
		}
	})

	t.Run("BackKeepsInputs", func(t *testing.T) {
		rec := postForm(t, h, "/back", url.Values{}, cookie)
		if rec.Code != http.StatusSeeOther {
			t.Fatalf("Expected status 303, got %d", rec.Code)
		}
		doc := parseDoc(t, get(t, h, "/", cookie))
		if v, _ := doc.Find("#weight").Attr("value"); v != "70" {
			t.Errorf("Expected weight 70 to be kept, got %q", v)
		}
		if _, ok := doc.Find("#calculate").Attr("data-incomplete"); ok {
			t.Error("Expected Calculate to be enabled for a complete form")
		}
	})

	t.Run("ResetClearsInputs", func(t *testing.T) {
		rec := postForm(t, h, "/reset", url.Values{}, cookie)
		if rec.Code != http.StatusSeeOther {
			t.Fatalf("Expected status 303, got %d", rec.Code)
		}
		doc := parseDoc(t, get(t, h, "/", cookie))
		if v, _ := doc.Find("#weight").Attr("value"); v != "" {
			t.Errorf("Expected an empty weight after reset, got %q", v)
		}
	})
}

func TestCalculateRefusesIncompleteForm(t *testing.T) {
	h := newTestServer(t)

	values := validForm()
	values.Set("age", "0")
	rec := postForm(t, h, "/calculate", values, nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Expected status 422, got %d", rec.Code)
	}
	doc := parseDoc(t, rec)
	if doc.Find("#bmi").Length() != 0 {
		t.Error("Expected no results to be rendered")
	}
	if got := doc.Find("#form-error").Text(); !strings.Contains(got, "age") {
		t.Errorf("Expected an age error, got %q", got)
	}
	if v, _ := doc.Find("#weight").Attr("value"); v != "70" {
		t.Errorf("Expected the weight to be kept, got %q", v)
	}
}

func TestCalculateImperial(t *testing.T) {
	h := newTestServer(t)

	values := url.Values{
		"weight":        {"154"},
		"weight_unit":   {"lbs"},
		"height_unit":   {"ft"},
		"height_feet":   {"5"},
		"height_inches": {"9"},
		"age":           {"30"},
		"gender":        {"male"},
		"activity":      {"sedentary"},
	}
	rec := postForm(t, h, "/calculate", values, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	doc := parseDoc(t, rec)
	if got := strings.TrimSpace(doc.Find(".bmi-value").Text()); got != "22.7" {
		t.Errorf("Expected BMI 22.7, got %q", got)
	}
	if got := strings.TrimSpace(doc.Find(".calorie-range").Text()); got != "1,779 - 2,179" {
		t.Errorf("Expected calorie range 1,779 - 2,179, got %q", got)
	}
}

func TestAboutScreen(t *testing.T) {
	h := newTestServer(t)

	doc := parseDoc(t, get(t, h, "/about", nil))
	if n := doc.Find(".category").Length(); n != 4 {
		t.Errorf("Expected 4 categories, got %d", n)
	}
	if n := doc.Find(".activity").Length(); n != 4 {
		t.Errorf("Expected 4 activity levels, got %d", n)
	}
}

func postJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAPICalculate(t *testing.T) {
	h := newTestServer(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantBMI    float64
		wantMin    int
	}{
		{
			name:       "numbers with defaults",
			body:       `{"weight": 70, "height": 175, "age": 30}`,
			wantStatus: http.StatusOK,
			wantBMI:    22.9,
			wantMin:    2356,
		},
		{
			name:       "strings",
			body:       `{"weight": "60", "height": "165", "age": "25", "gender": "female", "activity": "sedentary"}`,
			wantStatus: http.StatusOK,
			wantBMI:    22.0,
			wantMin:    1414,
		},
		{
			name:       "missing weight",
			body:       `{"height": 175, "age": 30}`,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "unknown activity",
			body:       `{"weight": 70, "height": 175, "age": 30, "activity": "extreme"}`,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "height too small",
			body:       `{"weight": 70, "height": "1e-170", "age": 30}`,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "weight too large",
			body:       `{"weight": "1e308", "height": 175, "age": 30}`,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "fractional age",
			body:       `{"weight": 70, "height": 175, "age": 30.5}`,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "malformed body",
			body:       `{"weight":`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, h, "/api/v1/calculate", tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				var resp map[string]string
				if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil || resp["error"] == "" {
					t.Errorf("Expected an error body, got %q", rec.Body.String())
				}
				return
			}
			var res health.Result
			if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
				t.Fatalf("Failed to decode result: %v", err)
			}
			if res.BMI.Value != tt.wantBMI {
				t.Errorf("Expected BMI %v, got %v", tt.wantBMI, res.BMI.Value)
			}
			if res.Calories.Min != tt.wantMin {
				t.Errorf("Expected min calories %d, got %d", tt.wantMin, res.Calories.Min)
			}
			if len(res.Tips) != 3 {
				t.Errorf("Expected 3 tips, got %d", len(res.Tips))
			}
		})
	}
}

func TestAPITips(t *testing.T) {
	h := newTestServer(t)

	t.Run("KnownCategory", func(t *testing.T) {
		var resp tipsResponse
		if err := json.NewDecoder(get(t, h, "/api/v1/tips/obese", nil).Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if resp.Fallback || resp.Category != health.Obese {
			t.Errorf("Expected obese without fallback, got %+v", resp)
		}
		if len(resp.Tips) != 3 {
			t.Errorf("Expected 3 tips, got %d", len(resp.Tips))
		}
	})

	t.Run("UnknownCategoryFallsBack", func(t *testing.T) {
		var resp tipsResponse
		if err := json.NewDecoder(get(t, h, "/api/v1/tips/athletic", nil).Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if !resp.Fallback || resp.Category != health.Normal {
			t.Errorf("Expected normal with fallback, got %+v", resp)
		}
		want := health.SelectHealthTips(health.Normal)
		if len(resp.Tips) != len(want) || resp.Tips[0] != want[0] {
			t.Errorf("Expected normal tips, got %+v", resp.Tips)
		}
	})
}

func TestAPIReference(t *testing.T) {
	h := newTestServer(t)

	var resp referenceResponse
	if err := json.NewDecoder(get(t, h, "/api/v1/reference", nil).Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(resp.Categories) != 4 || len(resp.Activities) != 4 {
		t.Errorf("Expected 4 categories and 4 activities, got %d and %d", len(resp.Categories), len(resp.Activities))
	}
	if resp.Activities[3].Multiplier != 1.725 {
		t.Errorf("Expected very active multiplier 1.725, got %v", resp.Activities[3].Multiplier)
	}
}

func TestAdminActivity(t *testing.T) {
	h := newTestServer(t)
	postJSON(t, h, "/api/v1/calculate", `{"weight": 70, "height": 175, "age": 30}`)
	postJSON(t, h, "/api/v1/calculate", `{"weight": 70}`)

	t.Run("Unauthorized", func(t *testing.T) {
		rec := get(t, h, "/admin/activity", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("Expected status 401, got %d", rec.Code)
		}
	})

	t.Run("Authorized", func(t *testing.T) {
		token, err := auth.IssueAdminToken(testSecret, time.Hour)
		if err != nil {
			t.Fatalf("Failed to issue token: %v", err)
		}
		req := httptest.NewRequest(http.MethodGet, "/admin/activity", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", rec.Code)
		}

		var resp activityResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if len(resp.Days) != 1 {
			t.Fatalf("Expected 1 day of activity, got %d", len(resp.Days))
		}
		if resp.Days[0].Calculations != 1 || resp.Days[0].Rejected != 1 {
			t.Errorf("Expected 1 calculation and 1 rejection, got %+v", resp.Days[0])
		}
	})
}

func TestWriteJSONUnencodable(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusOK, map[string]float64{"bmi": math.Inf(1)})

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", rec.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil || resp["error"] == "" {
		t.Errorf("Expected an error body, got %q", rec.Body.String())
	}
}

func TestHealthEndpoint(t *testing.T) {
	h := newTestServer(t)
	rec := get(t, h, "/health", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Errorf("Expected 200 OK, got %d %q", rec.Code, rec.Body.String())
	}
}

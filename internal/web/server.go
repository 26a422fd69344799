// Package web serves the calculator as HTML screens and a small JSON API.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"bmi-quickcalc/internal/auth"
	"bmi-quickcalc/internal/config"
	"bmi-quickcalc/internal/form"
	"bmi-quickcalc/internal/health"
	"bmi-quickcalc/internal/logger"
	"bmi-quickcalc/internal/metrics"
	"bmi-quickcalc/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed templates/*.html
var templatesFS embed.FS

const sessionCookie = "quickcalc_session"

// Server wires the HTTP surfaces to the calculator.
type Server struct {
	cfg      *config.Config
	sessions session.Store
	recorder *metrics.Recorder
	activity *metrics.Store
	tmpl     *template.Template
}

// NewServer parses the embedded templates and returns a ready Server.
// activity may be nil, in which case /admin/activity reports no history.
func NewServer(cfg *config.Config, sessions session.Store, recorder *metrics.Recorder, activity *metrics.Store) (*Server, error) {
	printer := message.NewPrinter(language.English)
	tmpl, err := template.New("web").Funcs(template.FuncMap{
		"thousands": func(n int) string { return printer.Sprintf("%d", n) },
	}).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return &Server{
		cfg:      cfg,
		sessions: sessions,
		recorder: recorder,
		activity: activity,
		tmpl:     tmpl,
	}, nil
}

// Router builds the chi router with every route mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Post("/calculate", s.handleCalculate)
	r.Post("/back", s.handleBack)
	r.Post("/reset", s.handleReset)
	r.Get("/about", s.handleAbout)

	r.Route("/api/v1", func(r chi.Router) {
		if len(s.cfg.CORSAllowedOrigins) > 0 {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins: s.cfg.CORSAllowedOrigins,
				AllowedMethods: []string{"GET", "POST", "OPTIONS"},
				AllowedHeaders: []string{"Accept", "Content-Type"},
				MaxAge:         300,
			}))
		}
		r.Post("/calculate", s.handleAPICalculate)
		r.Get("/tips/{category}", s.handleAPITips)
		r.Get("/reference", s.handleAPIReference)
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAdmin(s.cfg.AdminTokenSecret))
		r.Get("/admin/activity", s.handleAdminActivity)
	})

	return r
}

type pageData struct {
	Title        string
	Form         *form.Form
	CanCalculate bool
	Error        string
	WeightUnits  []health.WeightUnit
	HeightUnits  []health.HeightUnit
	Activities   []health.Activity
	Categories   []health.CategoryInfo
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data pageData) {
	data.WeightUnits = []health.WeightUnit{health.Kilograms, health.Pounds}
	data.HeightUnits = []health.HeightUnit{health.Centimeters, health.Feet}
	data.Activities = health.ActivityLevels()
	data.Categories = health.Categories()
	if data.Form != nil {
		data.CanCalculate = data.Form.CanCalculate()
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		logger.Error("failed to render template", zap.String("template", name), zap.Error(err))
	}
}

// sessionKey returns the caller's session key, issuing a cookie when missing.
func (s *Server) sessionKey(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value
		}
	}
	key := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    key,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.cfg.SessionTTL / time.Second),
	})
	return key
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logger.Debug("http request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

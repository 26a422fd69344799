package metrics

import (
	"context"
	"time"

	"bmi-quickcalc/internal/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

const namespace = "quickcalc"

// Surfaces that drive the calculator.
const (
	SurfaceCLI      = "cli"
	SurfaceWeb      = "web"
	SurfaceAPI      = "api"
	SurfaceTelegram = "telegram"
)

var (
	calculationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "calculations_total",
		Help:      "Completed calculations by surface and BMI category.",
	}, []string{"surface", "category"})

	rejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rejected_total",
		Help:      "Calculate actions refused by the input gate.",
	}, []string{"surface"})

	calculationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "calculation_duration_seconds",
		Help:      "Time spent handling a calculate action.",
		Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
	}, []string{"surface"})
)

// Recorder feeds both the Prometheus collectors and, when present, the
// SQLite activity store.
type Recorder struct {
	store *Store
}

// NewRecorder creates a Recorder. A nil store only updates Prometheus.
func NewRecorder(store *Store) *Recorder {
	return &Recorder{store: store}
}

// Calculated records a successful calculation.
func (r *Recorder) Calculated(ctx context.Context, surface, category string, latency time.Duration) {
	calculationsTotal.WithLabelValues(surface, category).Inc()
	calculationDuration.WithLabelValues(surface).Observe(latency.Seconds())
	r.persist(ctx, ExecutionMetric{Surface: surface, Action: "calculate", Outcome: OutcomeOK, Latency: latency})
}

// Rejected records a calculate action refused by the input gate.
func (r *Recorder) Rejected(ctx context.Context, surface string) {
	rejectedTotal.WithLabelValues(surface).Inc()
	r.persist(ctx, ExecutionMetric{Surface: surface, Action: "calculate", Outcome: OutcomeRejected})
}

// Failed records an action that broke for reasons other than user input.
func (r *Recorder) Failed(ctx context.Context, surface, action string) {
	r.persist(ctx, ExecutionMetric{Surface: surface, Action: action, Outcome: OutcomeError})
}

func (r *Recorder) persist(ctx context.Context, m ExecutionMetric) {
	if r == nil || r.store == nil {
		return
	}
	if err := r.store.Record(ctx, m); err != nil {
		logger.Warn("failed to record metric", zap.String("surface", m.Surface), zap.Error(err))
	}
}

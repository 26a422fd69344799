package metrics

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"bmi-quickcalc/internal/database"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "metrics.db"))
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewStore(db.SQL)
}

func TestStore(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	now := time.Now().UTC()
	records := []ExecutionMetric{
		{Surface: SurfaceWeb, Action: "calculate", Outcome: OutcomeOK, Latency: 2 * time.Millisecond, Timestamp: now},
		{Surface: SurfaceAPI, Action: "calculate", Outcome: OutcomeOK, Latency: 4 * time.Millisecond, Timestamp: now},
		{Surface: SurfaceWeb, Action: "calculate", Outcome: OutcomeRejected, Timestamp: now},
		{Surface: SurfaceTelegram, Action: "webhook", Outcome: OutcomeError, Timestamp: now},
		{Surface: SurfaceCLI, Action: "calculate", Outcome: OutcomeOK, Timestamp: now.AddDate(0, 0, -40)},
	}
	for _, m := range records {
		if err := store.Record(ctx, m); err != nil {
			t.Fatalf("Failed to record metric: %v", err)
		}
	}

	t.Run("GetDailyActivity", func(t *testing.T) {
		days, err := store.GetDailyActivity(ctx, 7)
		if err != nil {
			t.Fatalf("Failed to get daily activity: %v", err)
		}
		if len(days) != 1 {
			t.Fatalf("Expected 1 day of activity, got %d", len(days))
		}
		d := days[0]
		if d.Date != now.Format("2006-01-02") {
			t.Errorf("Expected date %s, got %s", now.Format("2006-01-02"), d.Date)
		}
		if d.Calculations != 2 || d.Rejected != 1 || d.Errors != 1 {
			t.Errorf("Expected 2/1/1 calculations/rejected/errors, got %d/%d/%d", d.Calculations, d.Rejected, d.Errors)
		}
		if d.AvgLatencyMS != 1.5 {
			t.Errorf("Expected average latency 1.5ms, got %v", d.AvgLatencyMS)
		}
	})

	t.Run("Cleanup", func(t *testing.T) {
		removed, err := store.Cleanup(ctx, 30)
		if err != nil {
			t.Fatalf("Cleanup failed: %v", err)
		}
		if removed != 1 {
			t.Errorf("Expected 1 old record removed, got %d", removed)
		}
	})
}

func TestRecorder(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	rec := NewRecorder(store)

	before := testutil.ToFloat64(calculationsTotal.WithLabelValues(SurfaceCLI, "normal"))
	rec.Calculated(ctx, SurfaceCLI, "normal", time.Millisecond)
	if got := testutil.ToFloat64(calculationsTotal.WithLabelValues(SurfaceCLI, "normal")); got != before+1 {
		t.Errorf("Expected calculations counter to grow by 1, got %v -> %v", before, got)
	}

	rejectedBefore := testutil.ToFloat64(rejectedTotal.WithLabelValues(SurfaceCLI))
	rec.Rejected(ctx, SurfaceCLI)
	if got := testutil.ToFloat64(rejectedTotal.WithLabelValues(SurfaceCLI)); got != rejectedBefore+1 {
		t.Errorf("Expected rejected counter to grow by 1, got %v -> %v", rejectedBefore, got)
	}

	days, err := store.GetDailyActivity(ctx, 1)
	if err != nil {
		t.Fatalf("Failed to get daily activity: %v", err)
	}
	if len(days) != 1 || days[0].Calculations != 1 || days[0].Rejected != 1 {
		t.Errorf("Expected recorder to persist one of each, got %+v", days)
	}

	t.Run("NilStore", func(t *testing.T) {
		NewRecorder(nil).Calculated(ctx, SurfaceCLI, "obese", time.Millisecond)
		var nilRec *Recorder
		nilRec.Rejected(ctx, SurfaceCLI)
	})
}

func TestGetSysHealth(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "blob"), make([]byte, 2048), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	h := GetSysHealth(dir)
	if h.DataDiskSize != "2.0 KB" {
		t.Errorf("Expected 2.0 KB, got %s", h.DataDiskSize)
	}
	if h.Goroutines < 1 {
		t.Errorf("Expected at least one goroutine, got %d", h.Goroutines)
	}
}

func TestFormatBytes(t *testing.T) {
	cases := map[int64]string{
		0:               "0 B",
		1023:            "1023 B",
		1536:            "1.5 KB",
		5 * 1024 * 1024: "5.0 MB",
	}
	for in, want := range cases {
		if got := formatBytes(in); got != want {
			t.Errorf("formatBytes(%d): expected %s, got %s", in, want, got)
		}
	}
}

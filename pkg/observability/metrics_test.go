package observability

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/picogrid/uav-deconfliction/pkg/deconfliction"
	"github.com/picogrid/uav-deconfliction/pkg/logger"
	"github.com/picogrid/uav-deconfliction/pkg/models"
)

var t0 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func mission(t *testing.T, id string, x float64) *models.Mission {
	t.Helper()
	m, err := models.NewMission(id, []models.Waypoint{
		models.NewWaypoint(x, 0, 50, t0),
	}, t0, t0.Add(10*time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func newEngine(t *testing.T, rec deconfliction.Recorder) *deconfliction.Engine {
	t.Helper()
	cfg := deconfliction.DefaultConfig()
	cfg.Logger = logger.Discard()
	cfg.Recorder = rec
	e, err := deconfliction.NewEngine(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func TestCollectorRecordsEngineActivity(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}

	e := newEngine(t, collector)
	for _, m := range []*models.Mission{mission(t, "a", 0), mission(t, "b", 3), mission(t, "c", 500)} {
		if err := e.Register(m); err != nil {
			t.Fatal(err)
		}
	}

	primary := mission(t, "primary", 1)
	e.Validate(primary)
	e.Validate(primary)
	e.Validate(mission(t, "far", 2000))

	if got := testutil.ToFloat64(collector.Registered); got != 3 {
		t.Fatalf("registered_missions = %v, want 3", got)
	}
	if got := testutil.ToFloat64(collector.Validations.WithLabelValues("conflict")); got != 2 {
		t.Fatalf("validations_total{status=conflict} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(collector.Validations.WithLabelValues("clear")); got != 1 {
		t.Fatalf("validations_total{status=clear} = %v, want 1", got)
	}
	// three candidates per validation; the repeated primary is answered from cache
	if got := testutil.ToFloat64(collector.TemporalChecks); got != 9 {
		t.Fatalf("temporal_checks_total = %v, want 9", got)
	}
	if got := testutil.ToFloat64(collector.CacheHits); got != 6 {
		t.Fatalf("cache_hits_total = %v, want 6", got)
	}
	if got := testutil.ToFloat64(collector.ConflictingPeers); got != 4 {
		t.Fatalf("conflicting_missions_total = %v, want 4", got)
	}

	snap, err := collector.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.ValidationCount != 3 || snap.Validations["conflict"] != 2 || snap.SpatialChecks != 9 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if snap.ConflictLocations != 4 || snap.Registered != 3 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestNewCollectorReusesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewCollector(reg)
	if err != nil {
		t.Fatal(err)
	}
	second, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("second NewCollector: %v", err)
	}

	first.ObserveRegistration(7)
	if got := testutil.ToFloat64(second.Registered); got != 7 {
		t.Fatalf("expected collectors to share the gauge, got %v", got)
	}
}

func TestNilCollectorIsSafe(t *testing.T) {
	var c *Collector
	c.ObserveRegistration(1)
	c.ObserveValidation(models.ValidationResult{})
}

func TestWriteTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewCollector(reg)
	if err != nil {
		t.Fatal(err)
	}
	collector.ObserveValidation(models.ValidationResult{Status: models.StatusClear})

	path := filepath.Join(t.TempDir(), "deconfliction.prom")
	if err := collector.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `deconfliction_validations_total{status="clear"} 1`) {
		t.Fatalf("expected validation counter in textfile, got:\n%s", data)
	}
}

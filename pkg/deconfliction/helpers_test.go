package deconfliction

import (
	"testing"
	"time"

	"github.com/picogrid/uav-deconfliction/pkg/logger"
	"github.com/picogrid/uav-deconfliction/pkg/models"
)

var t0 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func at(offset time.Duration) time.Time { return t0.Add(offset) }

// mission builds a mission over [start, end] with one waypoint per point,
// timestamped at the window start
func mission(t *testing.T, id string, start, end time.Duration, points ...models.Point) *models.Mission {
	t.Helper()
	wps := make([]models.Waypoint, len(points))
	for i, p := range points {
		wps[i] = models.NewWaypoint(p.X, p.Y, p.Z, at(start))
	}
	m, err := models.NewMission(id, wps, at(start), at(end))
	if err != nil {
		t.Fatalf("Failed to build mission %s: %v", id, err)
	}
	return m
}

func pt(x, y, z float64) models.Point { return models.Point{X: x, Y: y, Z: z} }

func newTestEngine(t *testing.T, mutate func(*Config)) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Logger = logger.Discard()
	if mutate != nil {
		mutate(&cfg)
	}
	e, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	return e
}

func mustRegister(t *testing.T, e *Engine, missions ...*models.Mission) {
	t.Helper()
	for _, m := range missions {
		if err := e.Register(m); err != nil {
			t.Fatalf("Failed to register %s: %v", m.ID(), err)
		}
	}
}

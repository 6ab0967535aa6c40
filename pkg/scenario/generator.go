package scenario

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/picogrid/uav-deconfliction/pkg/models"
)

// GeneratorConfig bounds randomly generated missions
type GeneratorConfig struct {
	MinWaypoints int
	MaxWaypoints int
	// Extent bounds x and y to [-Extent, Extent]
	Extent float64
	// Horizon bounds mission start offsets from the epoch
	Horizon time.Duration
	// Leg is the time between consecutive waypoints
	Leg time.Duration
}

// DefaultGeneratorConfig returns the bounds used by the bench command
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		MinWaypoints: 3,
		MaxWaypoints: 10,
		Extent:       1000,
		Horizon:      2 * time.Hour,
		Leg:          5 * time.Minute,
	}
}

// Generator produces random in-bounds missions. It is not safe for
// concurrent use.
type Generator struct {
	cfg   GeneratorConfig
	rng   *rand.Rand
	epoch time.Time
}

// NewGenerator creates a generator seeded for reproducible output
func NewGenerator(cfg GeneratorConfig, seed int64, epoch time.Time) *Generator {
	if cfg.MinWaypoints < 1 {
		cfg.MinWaypoints = 1
	}
	if cfg.MaxWaypoints < cfg.MinWaypoints {
		cfg.MaxWaypoints = cfg.MinWaypoints
	}
	if cfg.Extent <= 0 || cfg.Extent > models.MaxHorizontalExtent {
		cfg.Extent = models.MaxHorizontalExtent
	}
	if cfg.Leg <= 0 {
		cfg.Leg = 5 * time.Minute
	}
	return &Generator{
		cfg:   cfg,
		rng:   rand.New(rand.NewSource(seed)),
		epoch: epoch,
	}
}

// Mission generates one mission. Waypoints are one leg apart and the window
// spans the first to the last waypoint; an empty id gets a random uuid.
func (g *Generator) Mission(id string) (*models.Mission, error) {
	if id == "" {
		id = uuid.NewString()
	}

	n := g.cfg.MinWaypoints + g.rng.Intn(g.cfg.MaxWaypoints-g.cfg.MinWaypoints+1)
	start := g.epoch
	if g.cfg.Horizon > 0 {
		start = start.Add(time.Duration(g.rng.Int63n(int64(g.cfg.Horizon))))
	}

	wps := make([]models.Waypoint, n)
	for i := range wps {
		wps[i] = models.NewWaypoint(
			g.uniform(-g.cfg.Extent, g.cfg.Extent),
			g.uniform(-g.cfg.Extent, g.cfg.Extent),
			g.uniform(0, models.MaxAltitude),
			start.Add(time.Duration(i)*g.cfg.Leg),
		)
	}

	legs := n - 1
	if legs < 1 {
		legs = 1
	}
	return models.NewMission(id, wps, start, start.Add(time.Duration(legs)*g.cfg.Leg))
}

// Missions generates n missions with ids "<prefix>-<index>"
func (g *Generator) Missions(prefix string, n int) ([]*models.Mission, error) {
	out := make([]*models.Mission, n)
	for i := range out {
		m, err := g.Mission(fmt.Sprintf("%s-%04d", prefix, i))
		if err != nil {
			return nil, err
		}
		out[i] = m
	}
	return out, nil
}

func (g *Generator) uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

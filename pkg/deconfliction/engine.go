// Package deconfliction decides whether a primary mission can fly safely
// alongside the missions already registered with an Engine.
//
// Registered missions are indexed by the boundaries of their time windows.
// Validating a primary gathers candidates from that index, keeps the ones
// whose windows overlap the primary's, and compares every waypoint pair of
// each survivor against the safety buffer. Pairwise results are memoized for
// the lifetime of the engine.
package deconfliction

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/picogrid/uav-deconfliction/pkg/logger"
	"github.com/picogrid/uav-deconfliction/pkg/models"
)

const (
	DefaultSafetyBuffer = 10.0
	DefaultMaxMissions  = 1000
)

// Recorder receives instrumentation from the engine
type Recorder interface {
	ObserveRegistration(total int)
	ObserveValidation(result models.ValidationResult)
}

// Config controls engine behavior
type Config struct {
	// SafetyBuffer is the minimum permitted separation in meters
	SafetyBuffer float64
	// MaxMissions caps the registry; zero means DefaultMaxMissions
	MaxMissions int
	// PruneMode selects candidate gathering; empty means PruneInterval
	PruneMode PruneMode
	// GradedSeverity assigns Low/Medium/High by separation instead of
	// always High
	GradedSeverity bool
	// BatchConcurrency bounds ValidateBatch; zero means GOMAXPROCS
	BatchConcurrency int

	Logger   logger.Logger
	Recorder Recorder
}

// DefaultConfig returns the engine defaults
func DefaultConfig() Config {
	return Config{
		SafetyBuffer: DefaultSafetyBuffer,
		MaxMissions:  DefaultMaxMissions,
		PruneMode:    PruneInterval,
	}
}

// Engine registers simulated missions and validates primary missions
// against them. It is safe for concurrent use.
type Engine struct {
	cfg Config
	log logger.Logger

	mu       sync.RWMutex
	missions map[string]*models.Mission
	index    *TemporalIndex

	cache *ConflictCache
}

// NewEngine creates an engine with an empty registry
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.SafetyBuffer < 0 {
		return nil, fmt.Errorf("safety buffer must not be negative, got %g", cfg.SafetyBuffer)
	}
	if cfg.MaxMissions <= 0 {
		cfg.MaxMissions = DefaultMaxMissions
	}
	mode, err := ParsePruneMode(string(cfg.PruneMode))
	if err != nil {
		return nil, err
	}
	cfg.PruneMode = mode
	if cfg.BatchConcurrency <= 0 {
		cfg.BatchConcurrency = runtime.GOMAXPROCS(0)
	}

	log := cfg.Logger
	if log == nil {
		log = logger.WithPrefix("deconfliction")
	}

	log.Debugf("Initialized engine with safety buffer %.2fm, capacity %d, %s prune",
		cfg.SafetyBuffer, cfg.MaxMissions, cfg.PruneMode)

	return &Engine{
		cfg:      cfg,
		log:      log,
		missions: make(map[string]*models.Mission),
		index:    NewTemporalIndex(),
		cache:    NewConflictCache(),
	}, nil
}

// SafetyBuffer returns the configured separation minimum
func (e *Engine) SafetyBuffer() float64 { return e.cfg.SafetyBuffer }

// Capacity returns the maximum number of registered missions
func (e *Engine) Capacity() int { return e.cfg.MaxMissions }

// Register adds a simulated mission to the registry and the temporal index
func (e *Engine) Register(m *models.Mission) error {
	if m == nil {
		return ErrNilMission
	}

	e.mu.Lock()
	if len(e.missions) >= e.cfg.MaxMissions {
		e.mu.Unlock()
		e.log.Errorf("Maximum number of missions (%d) exceeded", e.cfg.MaxMissions)
		return fmt.Errorf("%w: limit is %d", ErrCapacityExceeded, e.cfg.MaxMissions)
	}
	if _, exists := e.missions[m.ID()]; exists {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrDuplicateID, m.ID())
	}

	e.missions[m.ID()] = m
	e.index.Add(m)
	total := len(e.missions)
	e.mu.Unlock()

	e.log.WithField("mission", m.ID()).Debugf("Registered mission with %d waypoints", m.WaypointCount())
	if e.cfg.Recorder != nil {
		e.cfg.Recorder.ObserveRegistration(total)
	}
	return nil
}

// RegisterAll registers missions in order and stops at the first failure.
// It returns how many were registered.
func (e *Engine) RegisterAll(missions []*models.Mission) (int, error) {
	for i, m := range missions {
		if err := e.Register(m); err != nil {
			return i, err
		}
	}
	return len(missions), nil
}

// Count returns the number of registered missions
func (e *Engine) Count() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.missions)
}

// MissionByID returns a registered mission
func (e *Engine) MissionByID(id string) (*models.Mission, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	m, ok := e.missions[id]
	return m, ok
}

// Missions returns all registered missions ordered by id
func (e *Engine) Missions() []*models.Mission {
	e.mu.RLock()
	out := make([]*models.Mission, 0, len(e.missions))
	for _, m := range e.missions {
		out = append(out, m)
	}
	e.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// CacheStats returns the conflict cache statistics
func (e *Engine) CacheStats() CacheStats {
	return e.cache.Stats()
}

// Validate checks primary against every registered mission. A registered
// mission sharing the primary's id is not compared with it. Finding no
// conflicts is the normal Clear outcome, not an error. Validate panics with
// ErrNilMission when primary is nil; use ValidateBatch to get an error instead.
func (e *Engine) Validate(primary *models.Mission) models.ValidationResult {
	if primary == nil {
		panic(ErrNilMission)
	}
	began := time.Now()
	log := e.log.WithField("mission", primary.ID())
	log.Debug("Validating mission")

	result := models.ValidationResult{
		PrimaryID: primary.ID(),
		Status:    models.StatusClear,
		Conflicts: []models.ConflictEntry{},
		CheckedAt: began,
	}

	e.mu.RLock()
	result.Metrics.TotalRegistered = len(e.missions)
	start, end := primary.TimeRange()
	ids := e.index.Candidates(start, end, e.cfg.PruneMode)

	candidates := make([]*models.Mission, 0, len(ids))
	for _, id := range ids {
		if id == primary.ID() {
			continue
		}
		if m, ok := e.missions[id]; ok {
			candidates = append(candidates, m)
		}
	}
	e.mu.RUnlock()

	result.Metrics.Candidates = len(candidates)
	log.Debugf("Found %d potentially conflicting missions", len(candidates))

	for _, peer := range candidates {
		result.Metrics.TemporalChecks++
		overlap, hit := e.cache.Temporal(primary, peer)
		if hit {
			result.Metrics.CacheHits++
		} else {
			overlap = TemporalOverlap(primary, peer)
			e.cache.PutTemporal(primary, peer, overlap)
		}
		if !overlap {
			continue
		}

		result.Metrics.SpatialChecks++
		records, hit := e.cache.Spatial(primary, peer)
		if hit {
			result.Metrics.CacheHits++
		} else {
			records = SpatialConflicts(primary, peer, e.cfg.SafetyBuffer, e.cfg.GradedSeverity)
			e.cache.PutSpatial(primary, peer, records)
		}
		if len(records) == 0 {
			continue
		}

		entry := models.ConflictEntry{
			PeerID:      peer.ID(),
			Locations:   make([]models.Point, len(records)),
			Records:     make([]models.ConflictRecord, len(records)),
			TimeOverlap: OverlapWindow(primary, peer),
		}
		copy(entry.Records, records)
		for i, r := range records {
			entry.Locations[i] = r.Location
		}
		result.Conflicts = append(result.Conflicts, entry)
	}

	if len(result.Conflicts) > 0 {
		result.Status = models.StatusConflict
	}
	result.Metrics.Elapsed = time.Since(began)

	log.Infof("Validation %s: %d conflicting missions, %d temporal / %d spatial checks, %d cache hits in %s",
		result.Status, len(result.Conflicts), result.Metrics.TemporalChecks,
		result.Metrics.SpatialChecks, result.Metrics.CacheHits, result.Metrics.Elapsed)

	if e.cfg.Recorder != nil {
		e.cfg.Recorder.ObserveValidation(result)
	}
	return result
}

// ValidateBatch validates several primaries concurrently against the current
// registry. Results are returned in input order. Cancelling ctx stops
// missions that have not started yet.
func (e *Engine) ValidateBatch(ctx context.Context, primaries []*models.Mission) ([]models.ValidationResult, error) {
	for i, m := range primaries {
		if m == nil {
			return nil, fmt.Errorf("mission %d: %w", i, ErrNilMission)
		}
	}

	results := make([]models.ValidationResult, len(primaries))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.BatchConcurrency)

	for i, m := range primaries {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = e.Validate(m)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Explain renders a validation result as human-readable text
func (e *Engine) Explain(result models.ValidationResult) string {
	return Explain(result)
}

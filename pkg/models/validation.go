package models

import (
	"fmt"
	"strings"
	"time"
)

// ValidationStatus is the two-valued outcome of validating a mission
type ValidationStatus string

const (
	StatusClear    ValidationStatus = "clear"
	StatusConflict ValidationStatus = "conflict"
)

// ParseValidationStatus parses "clear" or "conflict"
func ParseValidationStatus(s string) (ValidationStatus, error) {
	switch ValidationStatus(strings.ToLower(s)) {
	case StatusClear:
		return StatusClear, nil
	case StatusConflict:
		return StatusConflict, nil
	default:
		return "", fmt.Errorf("unknown validation status %q", s)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *ValidationStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseValidationStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ConflictEntry groups every conflict point found against one peer mission
type ConflictEntry struct {
	PeerID      string           `json:"conflicting_drone" yaml:"conflicting_drone"`
	Locations   []Point          `json:"conflict_locations" yaml:"conflict_locations"`
	Records     []ConflictRecord `json:"records,omitempty" yaml:"records,omitempty"`
	TimeOverlap TimeWindow       `json:"time_overlap" yaml:"time_overlap"`
}

// ValidationMetrics counts the work done by one validation call
type ValidationMetrics struct {
	SpatialChecks   int           `json:"spatial_checks" yaml:"spatial_checks"`
	TemporalChecks  int           `json:"temporal_checks" yaml:"temporal_checks"`
	CacheHits       int           `json:"cache_hits" yaml:"cache_hits"`
	TotalRegistered int           `json:"total_drones" yaml:"total_drones"`
	Candidates      int           `json:"candidates" yaml:"candidates"`
	Elapsed         time.Duration `json:"validation_time" yaml:"validation_time"`
}

// ValidationResult is built fresh for each validation call
type ValidationResult struct {
	PrimaryID string            `json:"primary_id" yaml:"primary_id"`
	Status    ValidationStatus  `json:"status" yaml:"status"`
	Conflicts []ConflictEntry   `json:"conflicts" yaml:"conflicts"`
	Metrics   ValidationMetrics `json:"performance" yaml:"performance"`
	CheckedAt time.Time         `json:"checked_at" yaml:"checked_at"`
}

// HasConflicts reports whether any conflict entry was recorded
func (r ValidationResult) HasConflicts() bool {
	return len(r.Conflicts) > 0
}

// ConflictLocations flattens all conflict locations across entries
func (r ValidationResult) ConflictLocations() []Point {
	var points []Point
	for _, c := range r.Conflicts {
		points = append(points, c.Locations...)
	}
	return points
}

// PeerIDs returns the peer mission ids in entry order
func (r ValidationResult) PeerIDs() []string {
	ids := make([]string, len(r.Conflicts))
	for i, c := range r.Conflicts {
		ids[i] = c.PeerID
	}
	return ids
}

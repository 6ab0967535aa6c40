package models

import (
	"fmt"
	"strings"
	"time"
)

// ConflictKind identifies which test produced a conflict or cache entry
type ConflictKind int

const (
	ConflictSpatial ConflictKind = iota
	ConflictTemporal
)

func (k ConflictKind) String() string {
	switch k {
	case ConflictSpatial:
		return "spatial"
	case ConflictTemporal:
		return "temporal"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler
func (k ConflictKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (k *ConflictKind) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "spatial":
		*k = ConflictSpatial
	case "temporal":
		*k = ConflictTemporal
	default:
		return fmt.Errorf("unknown conflict kind %q", text)
	}
	return nil
}

// Severity grades a conflict point
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
)

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *Severity) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "low":
		*s = SeverityLow
	case "medium":
		*s = SeverityMedium
	case "high":
		*s = SeverityHigh
	default:
		return fmt.Errorf("unknown severity %q", text)
	}
	return nil
}

// ConflictRecord describes one detected conflict point between two missions
type ConflictRecord struct {
	PeerMissionID string       `json:"peer_mission_id" yaml:"peer_mission_id"`
	Location      Point        `json:"location" yaml:"location"`
	Kind          ConflictKind `json:"kind" yaml:"kind"`
	Severity      Severity     `json:"severity" yaml:"severity"`
	// Distance between the two waypoints that produced the record
	Distance float64 `json:"distance" yaml:"distance"`
}

func (c ConflictRecord) String() string {
	return fmt.Sprintf("Conflict with drone %s at %s (%s conflict, severity: %s)",
		c.PeerMissionID, c.Location, c.Kind, c.Severity)
}

// TimeWindow is a closed interval of time
type TimeWindow struct {
	Start time.Time `json:"start" yaml:"start"`
	End   time.Time `json:"end" yaml:"end"`
}

// Duration returns the window length
func (w TimeWindow) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

func (w TimeWindow) String() string {
	return fmt.Sprintf("%s to %s", w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339))
}

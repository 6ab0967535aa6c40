// Package scenario loads deconfliction scenarios: one primary mission plus
// the simulated traffic it is checked against.
//
// Scenario files are YAML. Times are offsets from an epoch so a file stays
// valid regardless of when it is run:
//
//	name: head-on
//	epoch: 2024-01-01T12:00:00Z
//	primary:
//	  id: primary
//	  start: 0s
//	  end: 15m
//	  waypoints:
//	    - {x: 0, y: 0, z: 50, at: 0s}
//	simulated:
//	  - id: sim1
//	    start: 2m
//	    end: 12m
//	    waypoints:
//	      - {x: 5, y: 0, z: 50, at: 2m}
package scenario

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/picogrid/uav-deconfliction/pkg/models"
)

// ErrInvalidScenario indicates a scenario that cannot be turned into missions
var ErrInvalidScenario = errors.New("invalid scenario")

// Scenario describes a primary mission and the simulated traffic around it
type Scenario struct {
	Name         string        `yaml:"name"`
	Description  string        `yaml:"description,omitempty"`
	SafetyBuffer *float64      `yaml:"safety_buffer,omitempty"`
	Epoch        time.Time     `yaml:"epoch,omitempty"`
	Primary      MissionSpec   `yaml:"primary"`
	Simulated    []MissionSpec `yaml:"simulated"`

	// Source is the file the scenario was loaded from; empty for built-ins
	Source string `yaml:"-"`
}

// MissionSpec is a mission with times relative to the scenario epoch
type MissionSpec struct {
	ID        string         `yaml:"id,omitempty"`
	Start     time.Duration  `yaml:"start"`
	End       time.Duration  `yaml:"end"`
	Waypoints []WaypointSpec `yaml:"waypoints"`
}

// WaypointSpec is a waypoint with a timestamp relative to the scenario epoch
type WaypointSpec struct {
	X  float64       `yaml:"x"`
	Y  float64       `yaml:"y"`
	Z  float64       `yaml:"z"`
	At time.Duration `yaml:"at"`
}

// Missions are the concrete missions built from a scenario
type Missions struct {
	Primary   *models.Mission
	Simulated []*models.Mission
	Epoch     time.Time
}

// All returns the primary followed by the simulated missions
func (m Missions) All() []*models.Mission {
	return append([]*models.Mission{m.Primary}, m.Simulated...)
}

// Load reads and parses a scenario file
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.Source = path
	return s, nil
}

// Parse decodes a scenario from YAML
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	if s.Name == "" {
		return nil, fmt.Errorf("%w: missing name", ErrInvalidScenario)
	}
	if len(s.Primary.Waypoints) == 0 {
		return nil, fmt.Errorf("%w: %s has no primary waypoints", ErrInvalidScenario, s.Name)
	}
	if s.SafetyBuffer != nil && *s.SafetyBuffer < 0 {
		return nil, fmt.Errorf("%w: %s has a negative safety buffer", ErrInvalidScenario, s.Name)
	}
	return &s, nil
}

// Marshal encodes the scenario as YAML
func (s *Scenario) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}

// Build resolves the scenario into missions. Offsets are applied to the
// scenario epoch, or to now when the scenario has none. A primary without an
// id is called "primary"; simulated missions without ids get random ones.
func (s *Scenario) Build(now time.Time) (Missions, error) {
	epoch := s.Epoch
	if epoch.IsZero() {
		epoch = now
	}

	primarySpec := s.Primary
	if primarySpec.ID == "" {
		primarySpec.ID = "primary"
	}
	primary, err := primarySpec.Build(epoch)
	if err != nil {
		return Missions{}, fmt.Errorf("%w: %s primary: %w", ErrInvalidScenario, s.Name, err)
	}

	out := Missions{Primary: primary, Epoch: epoch}
	seen := map[string]bool{}
	for i, spec := range s.Simulated {
		if spec.ID == "" {
			spec.ID = uuid.NewString()
		}
		if seen[spec.ID] {
			return Missions{}, fmt.Errorf("%w: %s repeats simulated id %s", ErrInvalidScenario, s.Name, spec.ID)
		}
		seen[spec.ID] = true

		m, err := spec.Build(epoch)
		if err != nil {
			return Missions{}, fmt.Errorf("%w: %s simulated[%d]: %w", ErrInvalidScenario, s.Name, i, err)
		}
		out.Simulated = append(out.Simulated, m)
	}
	return out, nil
}

// Buffer returns the scenario's safety buffer, or fallback when unset
func (s *Scenario) Buffer(fallback float64) float64 {
	if s.SafetyBuffer != nil {
		return *s.SafetyBuffer
	}
	return fallback
}

// Build resolves the spec against an epoch
func (ms MissionSpec) Build(epoch time.Time) (*models.Mission, error) {
	wps := make([]models.Waypoint, len(ms.Waypoints))
	for i, w := range ms.Waypoints {
		wps[i] = models.NewWaypoint(w.X, w.Y, w.Z, epoch.Add(w.At))
	}
	return models.NewMission(ms.ID, wps, epoch.Add(ms.Start), epoch.Add(ms.End))
}

// SpecFromMission converts a mission back into a spec relative to epoch
func SpecFromMission(m *models.Mission, epoch time.Time) MissionSpec {
	start, end := m.TimeRange()
	spec := MissionSpec{
		ID:    m.ID(),
		Start: start.Sub(epoch),
		End:   end.Sub(epoch),
	}
	for _, w := range m.Waypoints() {
		spec.Waypoints = append(spec.Waypoints, WaypointSpec{
			X: w.X, Y: w.Y, Z: w.Z,
			At: w.Timestamp.Sub(epoch),
		})
	}
	return spec
}

package models

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/cespare/xxhash/v2"
)

// ErrInvalidMission is returned when a mission cannot be constructed from the
// supplied arguments
var ErrInvalidMission = errors.New("invalid mission")

// Mission is a vehicle's planned waypoint sequence plus its active time window.
// A Mission is immutable once constructed; accessors return copies.
type Mission struct {
	id          string
	waypoints   []Waypoint
	startTime   time.Time
	endTime     time.Time
	fingerprint uint64
}

// NewMission validates its arguments and returns an immutable mission.
// It fails with ErrInvalidMission when the id is empty, there are no
// waypoints, the window is empty or inverted, or a waypoint is out of bounds.
func NewMission(id string, waypoints []Waypoint, start, end time.Time) (*Mission, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: mission id is required", ErrInvalidMission)
	}
	if len(waypoints) == 0 {
		return nil, fmt.Errorf("%w: mission %s must have at least one waypoint", ErrInvalidMission, id)
	}
	if !end.After(start) {
		return nil, fmt.Errorf("%w: mission %s end time must be after start time", ErrInvalidMission, id)
	}
	for i, wp := range waypoints {
		if !wp.Point().InBounds() {
			return nil, fmt.Errorf("%w: mission %s waypoint %d has invalid coordinates (%g, %g, %g)",
				ErrInvalidMission, id, i, wp.X, wp.Y, wp.Z)
		}
	}

	m := &Mission{
		id:        id,
		waypoints: slices.Clone(waypoints),
		startTime: start,
		endTime:   end,
	}
	m.fingerprint = m.computeFingerprint()
	return m, nil
}

// MustNewMission is like NewMission but panics on error. Intended for
// fixtures and built-in scenarios.
func MustNewMission(id string, waypoints []Waypoint, start, end time.Time) *Mission {
	m, err := NewMission(id, waypoints, start, end)
	if err != nil {
		panic(err)
	}
	return m
}

// ID returns the mission identifier
func (m *Mission) ID() string { return m.id }

// StartTime returns the beginning of the mission window
func (m *Mission) StartTime() time.Time { return m.startTime }

// EndTime returns the end of the mission window
func (m *Mission) EndTime() time.Time { return m.endTime }

// TimeRange returns the mission window
func (m *Mission) TimeRange() (time.Time, time.Time) {
	return m.startTime, m.endTime
}

// Window returns the mission window as a TimeWindow
func (m *Mission) Window() TimeWindow {
	return TimeWindow{Start: m.startTime, End: m.endTime}
}

// Duration returns the length of the mission window
func (m *Mission) Duration() time.Duration {
	return m.endTime.Sub(m.startTime)
}

// Waypoints returns a copy of the mission's waypoints
func (m *Mission) Waypoints() []Waypoint {
	return slices.Clone(m.waypoints)
}

// WaypointCount returns the number of waypoints without copying them
func (m *Mission) WaypointCount() int {
	return len(m.waypoints)
}

// Trajectory returns the ordered coordinates of the mission's waypoints
func (m *Mission) Trajectory() []Point {
	points := make([]Point, len(m.waypoints))
	for i, wp := range m.waypoints {
		points[i] = wp.Point()
	}
	return points
}

// PathLength returns the summed distance between consecutive waypoints
func (m *Mission) PathLength() float64 {
	var total float64
	for i := 0; i+1 < len(m.waypoints); i++ {
		total += m.waypoints[i].DistanceTo(m.waypoints[i+1])
	}
	return total
}

// AverageSpeed returns the path length divided by the window length in
// meters per second, or 0 when the window has no positive duration
func (m *Mission) AverageSpeed() float64 {
	seconds := m.Duration().Seconds()
	if seconds <= 0 {
		return 0
	}
	return m.PathLength() / seconds
}

// IsChronological reports whether waypoint timestamps never decrease
func (m *Mission) IsChronological() bool {
	for i := 0; i+1 < len(m.waypoints); i++ {
		if m.waypoints[i].Timestamp.After(m.waypoints[i+1].Timestamp) {
			return false
		}
	}
	return true
}

// Fingerprint is a content hash of the mission. Two missions with the same
// id, window and waypoints share a fingerprint.
func (m *Mission) Fingerprint() uint64 {
	return m.fingerprint
}

func (m *Mission) computeFingerprint() uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(m.id)

	var buf [8]byte
	putInt := func(v int64) {
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		_, _ = d.Write(buf[:])
	}
	putFloat := func(v float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		_, _ = d.Write(buf[:])
	}

	putInt(m.startTime.UnixNano())
	putInt(m.endTime.UnixNano())
	for _, wp := range m.waypoints {
		putFloat(wp.X)
		putFloat(wp.Y)
		putFloat(wp.Z)
		putInt(wp.Timestamp.UnixNano())
	}
	return d.Sum64()
}

func (m *Mission) String() string {
	return fmt.Sprintf("Mission(%s, %d waypoints, %s to %s)",
		m.id, len(m.waypoints),
		m.startTime.Format(time.RFC3339), m.endTime.Format(time.RFC3339))
}

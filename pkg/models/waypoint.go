package models

import (
	"fmt"
	"math"
	"time"
)

// Coordinate bounds enforced when a mission is constructed
const (
	MaxHorizontalExtent = 10000.0 // meters, applies to |x| and |y|
	MaxAltitude         = 500.0   // meters, applies to |z|
)

// Point is a position in the local 3D frame, in meters
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// DistanceTo returns the Euclidean distance to another point
func (p Point) DistanceTo(o Point) float64 {
	dx := p.X - o.X
	dy := p.Y - o.Y
	dz := p.Z - o.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// InBounds reports whether the point lies inside the operating volume
func (p Point) InBounds() bool {
	return math.Abs(p.X) <= MaxHorizontalExtent &&
		math.Abs(p.Y) <= MaxHorizontalExtent &&
		math.Abs(p.Z) <= MaxAltitude
}

func (p Point) String() string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f)", p.X, p.Y, p.Z)
}

// Waypoint is a point the vehicle is planned to reach at a given instant
type Waypoint struct {
	X         float64   `json:"x" yaml:"x"`
	Y         float64   `json:"y" yaml:"y"`
	Z         float64   `json:"z" yaml:"z"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// NewWaypoint creates a waypoint at the given coordinates and time
func NewWaypoint(x, y, z float64, at time.Time) Waypoint {
	return Waypoint{X: x, Y: y, Z: z, Timestamp: at}
}

// Point returns the waypoint's coordinates
func (w Waypoint) Point() Point {
	return Point{X: w.X, Y: w.Y, Z: w.Z}
}

// DistanceTo returns the Euclidean distance to another waypoint
func (w Waypoint) DistanceTo(o Waypoint) float64 {
	return w.Point().DistanceTo(o.Point())
}

func (w Waypoint) String() string {
	return fmt.Sprintf("Waypoint(x=%.2f, y=%.2f, z=%.2f, time=%s)",
		w.X, w.Y, w.Z, w.Timestamp.Format(time.RFC3339))
}

package scenario

import "time"

func wp(x, y, z float64, at time.Duration) WaypointSpec {
	return WaypointSpec{X: x, Y: y, Z: z, At: at}
}

const minute = time.Minute

// standardPrimary is the three-leg survey flight shared by the first four
// demonstrations
func standardPrimary() MissionSpec {
	return MissionSpec{
		ID:    "primary",
		Start: 0,
		End:   15 * minute,
		Waypoints: []WaypointSpec{
			wp(0, 0, 0, 0),
			wp(100, 100, 50, 5*minute),
			wp(200, 0, 100, 10*minute),
		},
	}
}

func diagonalTraffic(id string) MissionSpec {
	return MissionSpec{
		ID:    id,
		Start: 2 * minute,
		End:   12 * minute,
		Waypoints: []WaypointSpec{
			wp(50, 50, 25, 2*minute),
			wp(150, 150, 75, 7*minute),
		},
	}
}

func trailingTraffic(id string) MissionSpec {
	return MissionSpec{
		ID:    id,
		Start: 3 * minute,
		End:   18 * minute,
		Waypoints: []WaypointSpec{
			wp(0, 0, 0, 3*minute),
			wp(100, 100, 50, 8*minute),
		},
	}
}

func highTraffic(id string) MissionSpec {
	return MissionSpec{
		ID:    id,
		Start: 1 * minute,
		End:   11 * minute,
		Waypoints: []WaypointSpec{
			wp(250, 250, 150, 1*minute),
			wp(350, 350, 200, 6*minute),
		},
	}
}

// Builtin returns the demonstration scenarios
func Builtin() []*Scenario {
	return []*Scenario{
		{
			Name:        "conflict-free",
			Description: "Traffic stays well above and away from the primary route",
			Primary:     standardPrimary(),
			Simulated:   []MissionSpec{highTraffic("sim1")},
		},
		{
			Name:        "spatial-near-miss",
			Description: "Diagonal traffic crosses the route but every waypoint pair is 75m apart",
			Primary:     standardPrimary(),
			Simulated:   []MissionSpec{diagonalTraffic("sim1")},
		},
		{
			Name:        "temporal-conflict",
			Description: "Traffic repeats the primary's first two waypoints three minutes later",
			Primary:     standardPrimary(),
			Simulated:   []MissionSpec{trailingTraffic("sim1")},
		},
		{
			Name:        "full-conflict",
			Description: "Near-miss traffic plus trailing traffic sharing the primary's waypoints",
			Primary:     standardPrimary(),
			Simulated:   []MissionSpec{diagonalTraffic("sim1"), trailingTraffic("sim2")},
		},
		{
			Name:        "mixed-traffic",
			Description: "Three simulated drones, one of which shares the primary's waypoints",
			Primary:     standardPrimary(),
			Simulated: []MissionSpec{
				diagonalTraffic("drone1"),
				trailingTraffic("drone2"),
				highTraffic("drone3"),
			},
		},
		{
			Name:        "emergency-landing",
			Description: "Primary descends to the ground while traffic passes overhead",
			Primary: MissionSpec{
				ID:  "primary",
				End: 5 * minute,
				Waypoints: []WaypointSpec{
					wp(0, 0, 100, 0),
					wp(50, 50, 50, 2*minute),
					wp(100, 100, 0, 3*minute),
				},
			},
			Simulated: []MissionSpec{{
				ID:    "sim1",
				Start: 1 * minute,
				End:   6 * minute,
				Waypoints: []WaypointSpec{
					wp(150, 150, 150, 1*minute),
					wp(200, 200, 100, 4*minute),
				},
			}},
		},
		{
			Name:        "circular-flight",
			Description: "Two offset square patrol loops at the same altitude",
			Primary: MissionSpec{
				ID:  "primary",
				End: 5 * minute,
				Waypoints: []WaypointSpec{
					wp(0, 0, 50, 0),
					wp(100, 0, 50, 1*minute),
					wp(100, 100, 50, 2*minute),
					wp(0, 100, 50, 3*minute),
					wp(0, 0, 50, 4*minute),
				},
			},
			Simulated: []MissionSpec{{
				ID:    "sim1",
				Start: 30 * time.Second,
				End:   6 * minute,
				Waypoints: []WaypointSpec{
					wp(-50, -50, 50, 30*time.Second),
					wp(50, -50, 50, 90*time.Second),
					wp(50, 50, 50, 150*time.Second),
					wp(-50, 50, 50, 210*time.Second),
					wp(-50, -50, 50, 270*time.Second),
				},
			}},
		},
		{
			Name:        "vertical-stacking",
			Description: "Vertical climbs separated horizontally by 100m",
			Primary: MissionSpec{
				ID:  "primary",
				End: 5 * minute,
				Waypoints: []WaypointSpec{
					wp(0, 0, 0, 0),
					wp(0, 0, 100, 2*minute),
					wp(0, 0, 200, 4*minute),
				},
			},
			Simulated: []MissionSpec{
				{
					ID:    "sim1",
					Start: 1 * minute,
					End:   4 * minute,
					Waypoints: []WaypointSpec{
						wp(100, 0, 50, 1*minute),
						wp(100, 0, 150, 3*minute),
					},
				},
				{
					ID:    "sim2",
					Start: 90 * time.Second,
					End:   270 * time.Second,
					Waypoints: []WaypointSpec{
						wp(0, 100, 100, 90*time.Second),
						wp(0, 100, 200, 210*time.Second),
					},
				},
			},
		},
		{
			Name:        "complex-3d-maneuvers",
			Description: "Climbing and descending loops offset by 50m on each axis",
			Primary: MissionSpec{
				ID:  "primary",
				End: 5 * minute,
				Waypoints: []WaypointSpec{
					wp(0, 0, 0, 0),
					wp(100, 0, 50, 1*minute),
					wp(100, 100, 100, 2*minute),
					wp(0, 100, 50, 3*minute),
					wp(0, 0, 150, 4*minute),
				},
			},
			Simulated: []MissionSpec{{
				ID:    "sim1",
				Start: 30 * time.Second,
				End:   6 * minute,
				Waypoints: []WaypointSpec{
					wp(50, 50, 25, 30*time.Second),
					wp(150, 50, 75, 90*time.Second),
					wp(150, 150, 125, 150*time.Second),
					wp(50, 150, 75, 210*time.Second),
					wp(50, 50, 125, 270*time.Second),
				},
			}},
		},
	}
}

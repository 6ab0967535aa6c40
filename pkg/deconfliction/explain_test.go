package deconfliction

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/picogrid/uav-deconfliction/pkg/models"
)

func TestExplainClear(t *testing.T) {
	result := models.ValidationResult{Status: models.StatusClear}
	if got := Explain(result); got != NoConflictsMessage {
		t.Errorf("Explain() = %q, want %q", got, NoConflictsMessage)
	}
}

func TestExplainConflict(t *testing.T) {
	e := newTestEngine(t, nil)
	mustRegister(t, e, mission(t, "sim1", 0, 10*time.Minute, pt(0, 0, 0)))

	result := e.Validate(mission(t, "primary", 5*time.Minute, 15*time.Minute, pt(1.5, 2.25, 3)))
	got := e.Explain(result)

	want := "\nConflict with drone sim1:\n" +
		"Time overlap: 2024-01-01T12:05:00Z to 2024-01-01T12:10:00Z\n" +
		"Number of conflict locations: 1\n" +
		"Locations:\n" +
		"  - X: 1.50, Y: 2.25, Z: 3.00"
	if got != want {
		t.Errorf("Explain() =\n%q\nwant\n%q", got, want)
	}
}

func TestExplainTruncatesLocations(t *testing.T) {
	locs := make([]models.Point, 8)
	for i := range locs {
		locs[i] = pt(float64(i), 0, 0)
	}
	result := models.ValidationResult{
		Status: models.StatusConflict,
		Conflicts: []models.ConflictEntry{
			{PeerID: "a", Locations: locs, TimeOverlap: models.TimeWindow{Start: t0, End: at(time.Minute)}},
			{PeerID: "b", Locations: locs[:1], TimeOverlap: models.TimeWindow{Start: t0, End: at(time.Minute)}},
		},
	}

	got := Explain(result)
	if n := strings.Count(got, "  - X:"); n != 6 {
		t.Errorf("Expected 6 listed locations, got %d", n)
	}
	if !strings.Contains(got, "  ... and 3 more locations\n\nConflict with drone b:") {
		t.Errorf("Expected truncation note followed by a blank line, got:\n%s", got)
	}
	if !strings.Contains(got, fmt.Sprintf("Number of conflict locations: %d", len(locs))) {
		t.Errorf("Expected full location count in output")
	}
}

package deconfliction

import (
	"fmt"
	"strings"
	"time"

	"github.com/picogrid/uav-deconfliction/pkg/models"
)

const (
	// NoConflictsMessage is the explanation of a Clear result
	NoConflictsMessage = "No conflicts detected in the mission."

	maxExplainedLocations = 5
)

// Explain renders a validation result as human-readable text. For each
// conflicting peer it lists the overlap window, the number of conflict
// locations and the first few of them.
func Explain(result models.ValidationResult) string {
	if result.Status != models.StatusConflict || len(result.Conflicts) == 0 {
		return NoConflictsMessage
	}

	var b strings.Builder
	for i, c := range result.Conflicts {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "\nConflict with drone %s:\n", c.PeerID)
		fmt.Fprintf(&b, "Time overlap: %s to %s\n",
			c.TimeOverlap.Start.Format(time.RFC3339), c.TimeOverlap.End.Format(time.RFC3339))
		fmt.Fprintf(&b, "Number of conflict locations: %d\n", len(c.Locations))
		b.WriteString("Locations:")

		shown := c.Locations
		if len(shown) > maxExplainedLocations {
			shown = shown[:maxExplainedLocations]
		}
		for _, loc := range shown {
			fmt.Fprintf(&b, "\n  - X: %.2f, Y: %.2f, Z: %.2f", loc.X, loc.Y, loc.Z)
		}
		if extra := len(c.Locations) - len(shown); extra > 0 {
			fmt.Fprintf(&b, "\n  ... and %d more locations", extra)
		}
	}
	return b.String()
}

package deconfliction

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/picogrid/uav-deconfliction/pkg/models"
)

// PruneMode selects how candidates are gathered from the temporal index
type PruneMode string

const (
	// PruneInterval selects missions whose window intersects the primary's
	// window, endpoints included.
	PruneInterval PruneMode = "interval"

	// PruneBoundary selects missions with a start or end instant inside the
	// primary's window. It misses peers whose window strictly contains the
	// primary's window.
	PruneBoundary PruneMode = "boundary"
)

// ParsePruneMode parses a prune mode name
func ParsePruneMode(s string) (PruneMode, error) {
	switch PruneMode(strings.ToLower(s)) {
	case PruneInterval, "":
		return PruneInterval, nil
	case PruneBoundary:
		return PruneBoundary, nil
	default:
		return "", fmt.Errorf("unknown prune mode %q (valid: interval, boundary)", s)
	}
}

type window struct {
	id    string
	start int64
	end   int64
}

// TemporalIndex maps mission window boundaries to the missions that own them.
// It is not safe for concurrent use; the engine guards it.
type TemporalIndex struct {
	// boundary instant (unix nanos) -> mission ids, in registration order
	buckets map[int64][]string
	// sorted boundary keys, kept in step with buckets
	keys []int64
	// windows sorted by start
	windows []window
}

// NewTemporalIndex creates an empty index
func NewTemporalIndex() *TemporalIndex {
	return &TemporalIndex{
		buckets: make(map[int64][]string),
	}
}

// Add records both boundaries of a mission's window. A boundary already
// owned by other missions gains one more id.
func (ti *TemporalIndex) Add(m *models.Mission) {
	start := m.StartTime().UnixNano()
	end := m.EndTime().UnixNano()

	ti.addBoundary(start, m.ID())
	ti.addBoundary(end, m.ID())

	w := window{id: m.ID(), start: start, end: end}
	i := sort.Search(len(ti.windows), func(i int) bool {
		return ti.windows[i].start > start
	})
	ti.windows = slices.Insert(ti.windows, i, w)
}

func (ti *TemporalIndex) addBoundary(at int64, id string) {
	if _, ok := ti.buckets[at]; !ok {
		i, _ := slices.BinarySearch(ti.keys, at)
		ti.keys = slices.Insert(ti.keys, i, at)
	}
	ti.buckets[at] = append(ti.buckets[at], id)
}

// MissionsAt returns the ids bucketed under a boundary instant
func (ti *TemporalIndex) MissionsAt(at time.Time) []string {
	return slices.Clone(ti.buckets[at.UnixNano()])
}

// BoundaryCount returns the number of distinct boundary instants
func (ti *TemporalIndex) BoundaryCount() int {
	return len(ti.keys)
}

// Candidates returns the deduplicated, sorted ids of missions that may
// overlap [start, end] under the given prune mode.
func (ti *TemporalIndex) Candidates(start, end time.Time, mode PruneMode) []string {
	switch mode {
	case PruneBoundary:
		return ti.boundaryCandidates(start.UnixNano(), end.UnixNano())
	default:
		return ti.intervalCandidates(start.UnixNano(), end.UnixNano())
	}
}

func (ti *TemporalIndex) boundaryCandidates(start, end int64) []string {
	lo, _ := slices.BinarySearch(ti.keys, start)
	seen := make(map[string]struct{})
	for _, k := range ti.keys[lo:] {
		if k > end {
			break
		}
		for _, id := range ti.buckets[k] {
			seen[id] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

func (ti *TemporalIndex) intervalCandidates(start, end int64) []string {
	// windows starting after end cannot intersect
	hi := sort.Search(len(ti.windows), func(i int) bool {
		return ti.windows[i].start > end
	})
	seen := make(map[string]struct{})
	for _, w := range ti.windows[:hi] {
		if w.end >= start {
			seen[w.id] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

func sortedKeys(set map[string]struct{}) []string {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

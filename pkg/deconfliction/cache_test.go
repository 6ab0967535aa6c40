package deconfliction

import (
	"testing"
	"time"

	"github.com/picogrid/uav-deconfliction/pkg/models"
)

func TestConflictCacheHitAndMiss(t *testing.T) {
	c := NewConflictCache()
	a := mission(t, "a", 0, time.Minute, pt(0, 0, 0))
	b := mission(t, "b", 0, time.Minute, pt(1, 0, 0))

	if _, ok := c.Temporal(a, b); ok {
		t.Fatalf("Expected miss on empty cache")
	}
	c.PutTemporal(a, b, true)

	overlap, ok := c.Temporal(a, b)
	if !ok || !overlap {
		t.Errorf("Expected cached overlap, got %v, %v", overlap, ok)
	}
	if _, ok := c.Temporal(b, a); ok {
		t.Errorf("Expected the reversed pair to miss")
	}
	if _, ok := c.Spatial(a, b); ok {
		t.Errorf("Expected spatial lookup to be keyed separately")
	}

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 3 || stats.Entries != 1 {
		t.Errorf("Unexpected stats %+v", stats)
	}
}

func TestConflictCacheEmptySpatialResultIsCached(t *testing.T) {
	c := NewConflictCache()
	a := mission(t, "a", 0, time.Minute, pt(0, 0, 0))
	b := mission(t, "b", 0, time.Minute, pt(900, 0, 0))

	c.PutSpatial(a, b, nil)
	records, ok := c.Spatial(a, b)
	if !ok || len(records) != 0 {
		t.Errorf("Expected cached empty result, got %v, %v", records, ok)
	}
}

func TestConflictCacheStaleFingerprint(t *testing.T) {
	c := NewConflictCache()
	peer := mission(t, "peer", 0, time.Minute, pt(0, 0, 0))
	before := mission(t, "primary", 0, time.Minute, pt(1, 0, 0))
	after := mission(t, "primary", 0, time.Minute, pt(2, 0, 0))

	c.PutSpatial(before, peer, []models.ConflictRecord{{PeerMissionID: "peer"}})
	if _, ok := c.Spatial(after, peer); ok {
		t.Fatalf("Expected a changed mission with the same id to miss")
	}
	if c.Stats().Stale != 1 {
		t.Errorf("Expected one stale lookup, got %d", c.Stats().Stale)
	}

	c.PutSpatial(after, peer, nil)
	if c.Len() != 1 {
		t.Errorf("Expected stale entry to be replaced, got %d entries", c.Len())
	}
}

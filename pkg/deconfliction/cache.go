package deconfliction

import (
	"sync"

	"github.com/picogrid/uav-deconfliction/pkg/models"
)

// cacheKey orders the pair: results for (a, b) are not reused for (b, a)
type cacheKey struct {
	primary string
	peer    string
	kind    models.ConflictKind
}

type cacheEntry struct {
	primaryPrint uint64
	peerPrint    uint64
	overlap      bool
	records      []models.ConflictRecord
}

// CacheStats summarizes cache effectiveness over the engine's lifetime
type CacheStats struct {
	Entries int
	Hits    int64
	Misses  int64
	Stale   int64
}

// ConflictCache memoizes pairwise check results. Entries never expire; an
// entry whose recorded mission fingerprints no longer match is treated as a
// miss and replaced.
type ConflictCache struct {
	mu      sync.RWMutex
	entries map[cacheKey]cacheEntry
	hits    int64
	misses  int64
	stale   int64
}

// NewConflictCache creates an empty cache
func NewConflictCache() *ConflictCache {
	return &ConflictCache{
		entries: make(map[cacheKey]cacheEntry),
	}
}

func (c *ConflictCache) lookup(primary, peer *models.Mission, kind models.ConflictKind) (cacheEntry, bool) {
	key := cacheKey{primary: primary.ID(), peer: peer.ID(), kind: kind}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	switch {
	case !ok:
		c.misses++
		return cacheEntry{}, false
	case entry.primaryPrint != primary.Fingerprint() || entry.peerPrint != peer.Fingerprint():
		c.stale++
		c.misses++
		return cacheEntry{}, false
	default:
		c.hits++
		return entry, true
	}
}

func (c *ConflictCache) store(primary, peer *models.Mission, kind models.ConflictKind, entry cacheEntry) {
	entry.primaryPrint = primary.Fingerprint()
	entry.peerPrint = peer.Fingerprint()

	c.mu.Lock()
	c.entries[cacheKey{primary: primary.ID(), peer: peer.ID(), kind: kind}] = entry
	c.mu.Unlock()
}

// Temporal returns the cached temporal-overlap result for the ordered pair
func (c *ConflictCache) Temporal(primary, peer *models.Mission) (bool, bool) {
	entry, ok := c.lookup(primary, peer, models.ConflictTemporal)
	return entry.overlap, ok
}

// PutTemporal caches a temporal-overlap result
func (c *ConflictCache) PutTemporal(primary, peer *models.Mission, overlap bool) {
	c.store(primary, peer, models.ConflictTemporal, cacheEntry{overlap: overlap})
}

// Spatial returns the cached spatial conflict records for the ordered pair
func (c *ConflictCache) Spatial(primary, peer *models.Mission) ([]models.ConflictRecord, bool) {
	entry, ok := c.lookup(primary, peer, models.ConflictSpatial)
	return entry.records, ok
}

// PutSpatial caches spatial conflict records. The slice must not be modified
// afterwards.
func (c *ConflictCache) PutSpatial(primary, peer *models.Mission, records []models.ConflictRecord) {
	c.store(primary, peer, models.ConflictSpatial, cacheEntry{records: records})
}

// Len returns the number of cached entries
func (c *ConflictCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns lifetime cache statistics
func (c *ConflictCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return CacheStats{
		Entries: len(c.entries),
		Hits:    c.hits,
		Misses:  c.misses,
		Stale:   c.stale,
	}
}

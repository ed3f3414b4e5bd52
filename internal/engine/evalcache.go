package engine

// EvalEntry stores the cached positional score of one position.
type EvalEntry struct {
	Key   uint64
	Score int32
}

// EvalCache is a fixed-size hash table of positional scores keyed by
// Zobrist hash. Colliding positions overwrite each other.
type EvalCache struct {
	entries []EvalEntry
	mask    uint64

	hits, probes uint64
}

// NewEvalCache creates a cache of roughly sizeMB megabytes.
func NewEvalCache(sizeMB int) *EvalCache {
	// Each entry is 16 bytes with padding; round down to a power of 2.
	entrySize := 16
	numEntries := (sizeMB * 1024 * 1024) / entrySize

	size := 1
	for size*2 <= numEntries {
		size *= 2
	}

	return &EvalCache{
		entries: make([]EvalEntry, size),
		mask:    uint64(size - 1),
	}
}

// Probe looks up a positional score.
func (ec *EvalCache) Probe(key uint64) (int, bool) {
	ec.probes++
	entry := &ec.entries[key&ec.mask]
	if entry.Key == key && key != 0 {
		ec.hits++
		return int(entry.Score), true
	}
	return 0, false
}

// Store saves a positional score.
func (ec *EvalCache) Store(key uint64, score int) {
	entry := &ec.entries[key&ec.mask]
	entry.Key = key
	entry.Score = int32(score)
}

// HitRate returns the permille of probes that hit.
func (ec *EvalCache) HitRate() int {
	if ec.probes == 0 {
		return 0
	}
	return int(ec.hits * 1000 / ec.probes)
}

// Clear empties the cache.
func (ec *EvalCache) Clear() {
	for i := range ec.entries {
		ec.entries[i] = EvalEntry{}
	}
	ec.hits, ec.probes = 0, 0
}

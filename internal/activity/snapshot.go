package activity

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

// Snapshot is one fetched view of the store: the flat entries plus the index
// built from them.
type Snapshot struct {
	Generation uint64
	Entries    []Entry
	Index      *Index
}

// SnapshotTracker serializes snapshot rebuilds. Every fetch takes a
// generation number up front; a fetch completing after a newer one has been
// applied is stale and gets discarded, regardless of arrival order.
type SnapshotTracker struct {
	mu      sync.Mutex
	nextGen uint64
	current *Snapshot
}

func NewSnapshotTracker() *SnapshotTracker {
	return &SnapshotTracker{}
}

// Begin reserves a generation number for a fetch about to start. Mutations
// also call Begin (without ever applying) to invalidate in-flight fetches
// that started before them.
func (t *SnapshotTracker) Begin() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextGen++
	return t.nextGen
}

// Apply installs the fetched entries under the given generation. It reports
// whether the snapshot was accepted; stale results are dropped silently since
// a newer fetch either landed already or is about to.
func (t *SnapshotTracker) Apply(generation uint64, entries []Entry) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current != nil && generation <= t.current.Generation {
		log.Tracef("discarding stale activity snapshot, generation %d <= %d",
			generation, t.current.Generation)
		return false
	}

	t.current = &Snapshot{
		Generation: generation,
		Entries:    entries,
		Index:      NewIndex(entries),
	}
	return true
}

// Current returns the latest applied snapshot, nil before the first fetch.
func (t *SnapshotTracker) Current() *Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

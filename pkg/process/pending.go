package process

import "github.com/aleph-committee/aleph-poset/pkg/gomel"

// pidHeight identifies a unit by its creator and height, the only way an Arbiter can name a
// parent it hasn't seen yet: gomel.Crown carries heights and a single combined hash, never the
// individual parent hashes a missing-parent error would need to point at.
type pidHeight struct {
	pid    uint16
	height int
}

// pendingEntry is a preunit waiting on one or more parents it doesn't yet have, together with
// the (pid, height) pairs it's still missing.
type pendingEntry struct {
	source  uint16
	pu      gomel.Preunit
	waiting []pidHeight
}

// pendingBuffer holds preunits an Arbiter could not add because some parent, named by the
// preunit's crown heights, was not yet in the dag. It is indexed both by the entry itself and
// by each (pid, height) it is waiting on, so that whenever a new unit lands at some height the
// buffer can cheaply find everything that might now be addable.
//
// It is bounded: once capacity preunits are pending, the oldest is dropped to make room. A
// never-resolved wait (a parent that never arrives, e.g. because its creator is silently
// excluded) would otherwise grow this without bound.
type pendingBuffer struct {
	capacity  int
	order     []*pendingEntry
	waitingOn map[pidHeight][]*pendingEntry
}

func newPendingBuffer(capacity int) *pendingBuffer {
	return &pendingBuffer{
		capacity:  capacity,
		waitingOn: make(map[pidHeight][]*pendingEntry),
	}
}

// add files pu away to wait on the given missing parents.
func (b *pendingBuffer) add(source uint16, pu gomel.Preunit, missing []pidHeight) {
	if len(b.order) >= b.capacity {
		b.evictOldest()
	}
	entry := &pendingEntry{source: source, pu: pu, waiting: missing}
	b.order = append(b.order, entry)
	for _, ph := range missing {
		b.waitingOn[ph] = append(b.waitingOn[ph], entry)
	}
}

func (b *pendingBuffer) evictOldest() {
	if len(b.order) == 0 {
		return
	}
	oldest := b.order[0]
	b.order = b.order[1:]
	for _, ph := range oldest.waiting {
		b.removeFromIndex(ph, oldest)
	}
}

func (b *pendingBuffer) removeFromIndex(ph pidHeight, entry *pendingEntry) {
	entries := b.waitingOn[ph]
	for i, e := range entries {
		if e == entry {
			entries[i] = entries[len(entries)-1]
			b.waitingOn[ph] = entries[:len(entries)-1]
			break
		}
	}
	if len(b.waitingOn[ph]) == 0 {
		delete(b.waitingOn, ph)
	}
}

// satisfy marks ph as now present in the dag and returns every pending entry that was only
// waiting on that one parent and is therefore ready to be retried. Entries still waiting on
// other parents stay buffered, with ph removed from their wait list.
func (b *pendingBuffer) satisfy(ph pidHeight) []*pendingEntry {
	entries := b.waitingOn[ph]
	delete(b.waitingOn, ph)
	var ready []*pendingEntry
	for _, e := range entries {
		e.waiting = removePidHeight(e.waiting, ph)
		if len(e.waiting) == 0 {
			ready = append(ready, e)
			b.remove(e)
		}
	}
	return ready
}

func (b *pendingBuffer) remove(entry *pendingEntry) {
	for i, e := range b.order {
		if e == entry {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
}

func removePidHeight(s []pidHeight, ph pidHeight) []pidHeight {
	for i, x := range s {
		if x == ph {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}

// CloudCart Analytics - Order Event Analytics and Product Recommendations
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cloudcart/analytics

package eventprocessor

import (
	"sync"
)

// dedupSet is a bounded set of recently seen event IDs. When full, the
// oldest entry is evicted. All methods are safe for concurrent use.
type dedupSet struct {
	mu       sync.Mutex
	seen     map[string]struct{}
	order    []string
	head     int
	capacity int
}

// newDedupSet creates a set holding at most capacity entries.
// A zero or negative capacity disables tracking entirely.
func newDedupSet(capacity int) *dedupSet {
	if capacity <= 0 {
		return &dedupSet{}
	}
	return &dedupSet{
		seen:     make(map[string]struct{}, capacity),
		order:    make([]string, 0, capacity),
		capacity: capacity,
	}
}

// Contains reports whether the ID has been recorded.
func (d *dedupSet) Contains(id string) bool {
	if d.capacity == 0 {
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	_, ok := d.seen[id]
	return ok
}

// Record adds the ID, evicting the oldest entry when full. Recording is
// deferred until an event is stored so a failed insert stays retryable.
func (d *dedupSet) Record(id string) {
	if d.capacity == 0 {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return
	}

	if len(d.order) < d.capacity {
		d.order = append(d.order, id)
	} else {
		// Ring is full, evict the oldest entry.
		delete(d.seen, d.order[d.head])
		d.order[d.head] = id
		d.head = (d.head + 1) % d.capacity
	}
	d.seen[id] = struct{}{}
}

// Len returns the number of tracked IDs.
func (d *dedupSet) Len() int {
	if d.capacity == 0 {
		return 0
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}

// Package track records interception events.
//
// Each activation (freeze scope, mocker binding, spy) owns its own Tracker.
// Trackers are append-only: records accumulate until an explicit Reset. Read
// accessors take a consistent snapshot under the tracker lock and compute
// everything else outside it, so readers never block writers for longer than
// a copy.
package track

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Record is one logged interception event.
//
// Synthetic is true when the value came from an installed generator and
// false when the real constructor produced it (spy mode, ignored caller).
// Namespace and Name are populated only for namespace-based channels.
type Record struct {
	Seq       int64
	Value     uuid.UUID
	Synthetic bool
	Version   int

	Module   string
	File     string
	Line     int
	Function string

	Namespace uuid.UUID
	Name      string
}

// Tracker is a thread-safe append-only log of Records.
//
// The zero value is not usable; construct with New. The lock is
// per-instance, so independent activations track concurrently without
// contending with each other.
type Tracker struct {
	mu      sync.Mutex
	records []Record
}

// New creates an empty tracker.
func New() *Tracker {
	return &Tracker{}
}

// Append records one event. The Record is built by the caller outside any
// lock; only the append itself runs in the critical section.
func (t *Tracker) Append(rec Record) {
	t.mu.Lock()
	t.records = append(t.records, rec)
	t.mu.Unlock()
}

// Reset clears the log for this tracker only.
func (t *Tracker) Reset() {
	t.mu.Lock()
	t.records = nil
	t.mu.Unlock()
}

// Count returns the number of recorded events.
func (t *Tracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.records)
}

// All returns a snapshot copy of every record in append order.
func (t *Tracker) All() []Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Record, len(t.records))
	copy(out, t.records)
	return out
}

// Last returns the most recent record, or false if nothing was recorded.
func (t *Tracker) Last() (Record, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.records) == 0 {
		return Record{}, false
	}
	return t.records[len(t.records)-1], true
}

// Values returns a snapshot of every recorded UUID in append order.
func (t *Tracker) Values() []uuid.UUID {
	recs := t.All()
	out := make([]uuid.UUID, len(recs))
	for i, r := range recs {
		out[i] = r.Value
	}
	return out
}

// SyntheticCount returns the number of records produced by a generator.
func (t *Tracker) SyntheticCount() int {
	return t.countWhere(func(r Record) bool { return r.Synthetic })
}

// RealCount returns the number of records produced by the real constructor.
func (t *Tracker) RealCount() int {
	return t.countWhere(func(r Record) bool { return !r.Synthetic })
}

// Synthetic returns a snapshot of generator-produced records.
func (t *Tracker) Synthetic() []Record {
	return t.filter(func(r Record) bool { return r.Synthetic })
}

// Real returns a snapshot of real-constructor records.
func (t *Tracker) Real() []Record {
	return t.filter(func(r Record) bool { return !r.Synthetic })
}

// FromModule returns records whose calling package path starts with prefix.
func (t *Tracker) FromModule(prefix string) []Record {
	return t.filter(func(r Record) bool {
		return r.Module != "" && strings.HasPrefix(r.Module, prefix)
	})
}

// ByNamespace returns records whose namespace argument equals ns.
// Meaningful on trackers owned by namespace-channel spies, where every
// record carries the namespace/name pair supplied by the caller.
func (t *Tracker) ByNamespace(ns uuid.UUID) []Record {
	return t.filter(func(r Record) bool { return r.Namespace == ns })
}

// filter snapshots under the lock, then selects outside it.
func (t *Tracker) filter(keep func(Record) bool) []Record {
	recs := t.All()
	out := make([]Record, 0, len(recs))
	for _, r := range recs {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func (t *Tracker) countWhere(keep func(Record) bool) int {
	recs := t.All()
	n := 0
	for _, r := range recs {
		if keep(r) {
			n++
		}
	}
	return n
}

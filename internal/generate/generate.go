// Package generate provides the value-production strategies installed on
// interception channels.
//
// Strategy types:
//
//	Static      — always returns the same UUID.
//	Sequence    — returns preset UUIDs in order; exhaustion behavior is
//	              controlled by Policy.
//	Seeded      — reproducible stream derived from an integer seed, with
//	              structurally valid version/variant bits for the channel's
//	              UUID version.
//
// Spy bindings install no strategy at all: the interception layer treats a
// nil generator as observe-only and keeps calling the real constructor.
//
// All strategies are safe for concurrent use. Stateful strategies guard
// their cursor or PRNG with an internal mutex; the interception layer
// deliberately invokes Next outside its own channel lock.
package generate

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Policy controls behavior when a Sequence runs out of preset values.
type Policy string

const (
	// PolicyCycle loops back to the first value and repeats indefinitely.
	// This is the default.
	PolicyCycle Policy = "cycle"

	// PolicyRandom falls back to the channel's real constructor once the
	// preset values are consumed.
	PolicyRandom Policy = "random"

	// PolicyRaise returns ExhaustedError for every call past the last
	// preset value. Use to enforce an exact call count in a test.
	PolicyRaise Policy = "raise"
)

// ParsePolicy converts a configuration string into a Policy.
// Unknown names are a configuration error, reported at the call site.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyCycle, PolicyRandom, PolicyRaise:
		return Policy(s), nil
	default:
		return "", fmt.Errorf("unknown exhaustion policy %q: must be cycle, random, or raise", s)
	}
}

// Valid reports whether p is a known policy.
func (p Policy) Valid() bool {
	switch p {
	case PolicyCycle, PolicyRandom, PolicyRaise:
		return true
	}
	return false
}

// ExhaustedError is returned when a Sequence under PolicyRaise is asked to
// produce past its last element. It surfaces from the intercepted
// constructor call itself, never swallowed.
type ExhaustedError struct {
	// Count is the number of preset values the sequence held.
	Count int
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf(
		"uuid sequence exhausted after %d values: set the cycle or random exhaustion policy to continue generating",
		e.Count,
	)
}

// Generator produces the next value for a channel.
//
// Next takes no input; namespace-based channels never install generators
// (they observe only). Reset restores the initial state: a Sequence rewinds
// to its first value, a Seeded generator restarts its stream.
type Generator interface {
	Next() (uuid.UUID, error)
	Reset()
}

// Static always returns the same UUID.
type Static struct {
	value uuid.UUID
}

// NewStatic creates a generator that returns value on every call.
func NewStatic(value uuid.UUID) *Static {
	return &Static{value: value}
}

// Next returns the fixed value.
func (s *Static) Next() (uuid.UUID, error) { return s.value, nil }

// Reset is a no-op; Static holds no cursor state.
func (s *Static) Reset() {}

// Sequence returns preset UUIDs in order, applying its Policy once the list
// is consumed. A single-element sequence under PolicyCycle behaves exactly
// like Static.
//
// Thread-safety: the cursor is mutex-guarded; concurrent callers each
// receive a distinct position in the sequence.
type Sequence struct {
	mu        sync.Mutex
	values    []uuid.UUID
	policy    Policy
	fallback  func() (uuid.UUID, error)
	cursor    int
	exhausted bool
}

// NewSequence creates a sequence generator.
//
// values must be non-empty: an empty preset list is a configuration error
// at construction time, not at first use. fallback is the channel's real
// constructor, required when policy is PolicyRandom.
func NewSequence(values []uuid.UUID, policy Policy, fallback func() (uuid.UUID, error)) (*Sequence, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("sequence generator requires at least one value")
	}
	if !policy.Valid() {
		return nil, fmt.Errorf("unknown exhaustion policy %q: must be cycle, random, or raise", policy)
	}
	if policy == PolicyRandom && fallback == nil {
		return nil, fmt.Errorf("random exhaustion policy requires a real-constructor fallback")
	}
	vals := make([]uuid.UUID, len(values))
	copy(vals, values)
	return &Sequence{values: vals, policy: policy, fallback: fallback}, nil
}

// Next returns the value at the cursor and advances it. Past the end it
// applies the exhaustion policy.
func (s *Sequence) Next() (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cursor < len(s.values) {
		v := s.values[s.cursor]
		s.cursor++
		return v, nil
	}

	s.exhausted = true
	switch s.policy {
	case PolicyCycle:
		// Restart: return the first value and leave the cursor past it.
		s.cursor = 1
		return s.values[0], nil
	case PolicyRandom:
		return s.fallback()
	default:
		return uuid.Nil, &ExhaustedError{Count: len(s.values)}
	}
}

// Reset rewinds to the first preset value.
func (s *Sequence) Reset() {
	s.mu.Lock()
	s.cursor = 0
	s.exhausted = false
	s.mu.Unlock()
}

// Exhausted reports whether the preset list has been fully consumed at
// least once since the last Reset.
func (s *Sequence) Exhausted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exhausted
}

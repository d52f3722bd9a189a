package uuidfreeze

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/uuidfreeze/uuidfreeze/internal/generate"
	"github.com/uuidfreeze/uuidfreeze/internal/ignore"
	"github.com/uuidfreeze/uuidfreeze/internal/registry"
	"github.com/uuidfreeze/uuidfreeze/internal/track"
)

// Mocker controls one substitutable channel. It starts unbound; the first
// Set* call or Spy pushes a binding onto the channel's stack, and later
// Set* calls swap the generator in place without growing the stack.
// Release pops the binding and must respect nesting order.
//
// A Mocker is safe for concurrent use, though tests usually drive it from
// one goroutine.
type Mocker struct {
	ctl *Control
	ch  Channel

	mu      sync.Mutex
	act     *registry.Activation
	gen     generate.Generator
	ov      ignore.Overrides
	policy  generate.Policy
	seed    int64
	hasSeed bool
}

// Channel returns the channel this Mocker controls.
func (m *Mocker) Channel() Channel {
	return m.ch
}

// Bound reports whether the Mocker currently holds a binding.
func (m *Mocker) Bound() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.act != nil
}

// bind installs or swaps the generator. Caller holds m.mu.
func (m *Mocker) bind(gen generate.Generator) error {
	if m.act == nil {
		act, err := m.ctl.reg.Enter(m.ch, gen, m.ov)
		if err != nil {
			return err
		}
		m.act = act
	} else if err := m.ctl.reg.Swap(m.act, gen); err != nil {
		return err
	}
	m.gen = gen
	return nil
}

// SetDefault substitutes every call with a single fixed value.
func (m *Mocker) SetDefault(v uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hasSeed = false
	return m.bind(generate.NewStatic(v))
}

// Set substitutes calls with the given values in order. What happens after
// the last value is governed by the exhaustion policy: cycle restarts the
// list, random hands further calls to the channel's real constructor, raise
// surfaces an ExhaustedError from the constructor call.
func (m *Mocker) Set(values ...uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var fallback func() (uuid.UUID, error)
	if m.policy == generate.PolicyRandom {
		fallback = registry.RealConstructor(m.ch)
	}
	seq, err := generate.NewSequence(values, m.policy, fallback)
	if err != nil {
		return err
	}
	m.hasSeed = false
	return m.bind(seq)
}

// SetSeed substitutes calls with a reproducible stream derived from an
// integer seed. The same seed always yields the same stream, across
// processes and platforms.
func (m *Mocker) SetSeed(seed int64, opts ...SeedOption) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	gen, err := generate.NewSeeded(m.ch.Version(), seed, opts...)
	if err != nil {
		return err
	}
	if err := m.bind(gen); err != nil {
		return err
	}
	m.seed = seed
	m.hasSeed = true
	return nil
}

// SetRand substitutes calls with a stream drawn from a caller-owned random
// source. Reproducibility is then the caller's business; Seed reports
// nothing and Reset cannot rewind the stream.
func (m *Mocker) SetRand(rng *rand.Rand, opts ...SeedOption) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	gen, err := generate.NewSeededFrom(m.ch.Version(), rng, opts...)
	if err != nil {
		return err
	}
	if err := m.bind(gen); err != nil {
		return err
	}
	m.hasSeed = false
	return nil
}

// SetSeedFromIdentifier seeds the stream from an arbitrary string, NFC
// normalized so equivalent spellings agree.
func (m *Mocker) SetSeedFromIdentifier(id string, opts ...SeedOption) error {
	return m.SetSeed(generate.IdentifierSeed(id), opts...)
}

// SetSeedFromTest seeds the stream from the test's name and releases the
// binding when the test finishes. Each test gets a distinct, stable stream
// with no bookkeeping at the call site.
func (m *Mocker) SetSeedFromTest(tb testing.TB, opts ...SeedOption) error {
	tb.Helper()
	if err := m.SetSeedFromIdentifier(tb.Name(), opts...); err != nil {
		return err
	}
	tb.Cleanup(func() {
		if m.Bound() {
			if err := m.Release(); err != nil {
				tb.Errorf("releasing %s binding: %v", m.ch, err)
			}
		}
	})
	return nil
}

// SetExhaustionPolicy sets the policy applied by subsequent Set calls. It
// does not rewrite a sequence that is already bound.
func (m *Mocker) SetExhaustionPolicy(p Policy) error {
	if !p.Valid() {
		return fmt.Errorf("unknown exhaustion policy %q", p)
	}
	m.mu.Lock()
	m.policy = p
	m.mu.Unlock()
	return nil
}

// SetIgnore adds caller package prefixes that keep receiving real values
// while this binding is active. Applies to the current binding immediately
// and to any binding made later.
func (m *Mocker) SetIgnore(prefixes ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ov.Prefixes = append(m.ov.Prefixes, prefixes...)
	return m.applyOverrides()
}

// DisableDefaultIgnore excludes the session ignore prefixes for this
// binding, leaving only prefixes given to SetIgnore.
func (m *Mocker) DisableDefaultIgnore() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ov.DisableDefaults = true
	return m.applyOverrides()
}

func (m *Mocker) applyOverrides() error {
	if m.act == nil {
		return nil
	}
	return m.ctl.reg.SetOverrides(m.act, m.ov)
}

// Spy binds without substituting: calls keep their real values and get
// recorded.
func (m *Mocker) Spy() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bind(nil)
}

// Reset rewinds the bound generator to the start of its stream and clears
// the call log. The binding stays installed.
func (m *Mocker) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.act == nil {
		return fmt.Errorf("channel %s: no binding to reset", m.ch)
	}
	if m.gen != nil {
		m.gen.Reset()
	}
	m.act.Tracker().Reset()
	return nil
}

// Release pops this Mocker's binding, restoring whatever was active
// beneath it. Bindings nest per channel and must be released innermost
// first; releasing out of order fails with OrderingViolationError and
// leaves the stack untouched.
func (m *Mocker) Release() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.act == nil {
		return fmt.Errorf("channel %s: no binding to release", m.ch)
	}
	if err := m.ctl.reg.Exit(m.act); err != nil {
		return err
	}
	m.act = nil
	m.gen = nil
	return nil
}

// Seed returns the integer seed behind the current stream, or false when
// the binding is not seeded.
func (m *Mocker) Seed() (int64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seed, m.hasSeed
}

// CallCount returns the number of recorded calls for this binding.
func (m *Mocker) CallCount() int {
	if t := m.tracker(); t != nil {
		return t.Count()
	}
	return 0
}

// Calls returns all recorded calls in order.
func (m *Mocker) Calls() []Call {
	if t := m.tracker(); t != nil {
		return t.All()
	}
	return nil
}

// Values returns just the UUIDs handed out, in call order.
func (m *Mocker) Values() []uuid.UUID {
	if t := m.tracker(); t != nil {
		return t.Values()
	}
	return nil
}

// LastValue returns the most recently handed-out UUID.
func (m *Mocker) LastValue() (uuid.UUID, bool) {
	if t := m.tracker(); t != nil {
		if rec, ok := t.Last(); ok {
			return rec.Value, true
		}
	}
	return uuid.Nil, false
}

// SyntheticCount returns how many calls received substituted values.
func (m *Mocker) SyntheticCount() int {
	if t := m.tracker(); t != nil {
		return t.SyntheticCount()
	}
	return 0
}

// RealCount returns how many calls received real values (spy or ignored
// callers).
func (m *Mocker) RealCount() int {
	if t := m.tracker(); t != nil {
		return t.RealCount()
	}
	return 0
}

// Synthetic returns the calls that received substituted values.
func (m *Mocker) Synthetic() []Call {
	if t := m.tracker(); t != nil {
		return t.Synthetic()
	}
	return nil
}

// Real returns the calls that received real values.
func (m *Mocker) Real() []Call {
	if t := m.tracker(); t != nil {
		return t.Real()
	}
	return nil
}

// CallsFrom returns the calls whose caller package path starts with prefix.
func (m *Mocker) CallsFrom(prefix string) []Call {
	if t := m.tracker(); t != nil {
		return t.FromModule(prefix)
	}
	return nil
}

func (m *Mocker) tracker() *track.Tracker {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.act == nil {
		return nil
	}
	return m.act.Tracker()
}

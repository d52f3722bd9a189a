package uuidfreeze

import (
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/uuidfreeze/uuidfreeze/internal/generate"
)

type freezeOptions struct {
	values   []uuid.UUID
	seed     int64
	hasSeed  bool
	rng      *rand.Rand
	seedOpts []SeedOption
	policy   Policy
	ignore   []string
	noDflt   bool
	spy      bool
}

// FreezeOption configures a Freeze binding.
type FreezeOption func(*freezeOptions)

// FreezeValue substitutes every call with one fixed value.
func FreezeValue(v uuid.UUID) FreezeOption {
	return func(o *freezeOptions) { o.values = []uuid.UUID{v} }
}

// FreezeValues substitutes calls with the given values in order, subject to
// the exhaustion policy.
func FreezeValues(values ...uuid.UUID) FreezeOption {
	return func(o *freezeOptions) { o.values = values }
}

// FreezeSeed substitutes calls with the reproducible stream for seed.
func FreezeSeed(seed int64, opts ...SeedOption) FreezeOption {
	return func(o *freezeOptions) {
		o.seed = seed
		o.hasSeed = true
		o.seedOpts = opts
	}
}

// FreezeSeedFromIdentifier seeds the stream from an identifier string.
func FreezeSeedFromIdentifier(id string, opts ...SeedOption) FreezeOption {
	return FreezeSeed(SeedFromIdentifier(id), opts...)
}

// FreezeRand draws the stream from a caller-owned random source.
func FreezeRand(rng *rand.Rand, opts ...SeedOption) FreezeOption {
	return func(o *freezeOptions) {
		o.rng = rng
		o.seedOpts = opts
	}
}

// FreezePolicy sets the exhaustion policy for FreezeValues.
func FreezePolicy(p Policy) FreezeOption {
	return func(o *freezeOptions) { o.policy = p }
}

// FreezeIgnore adds caller package prefixes that keep receiving real values
// under this binding.
func FreezeIgnore(prefixes ...string) FreezeOption {
	return func(o *freezeOptions) { o.ignore = append(o.ignore, prefixes...) }
}

// FreezeDisableDefaultIgnore drops the session ignore prefixes for this
// binding.
func FreezeDisableDefaultIgnore() FreezeOption {
	return func(o *freezeOptions) { o.noDflt = true }
}

// FreezeSpy binds as an observer: real values, recorded calls.
func FreezeSpy() FreezeOption {
	return func(o *freezeOptions) { o.spy = true }
}

// Freeze binds a channel in one call and returns the Mocker holding the
// binding. The handle's Release restores whatever was bound beneath it;
// nested freezes on the same channel release innermost first.
//
// Exactly one value source must be given: FreezeValue or FreezeValues,
// FreezeSeed, FreezeSeedFromIdentifier, FreezeRand, or FreezeSpy.
func (c *Control) Freeze(ch Channel, opts ...FreezeOption) (*Mocker, error) {
	o := freezeOptions{policy: c.policy}
	for _, opt := range opts {
		opt(&o)
	}

	sources := 0
	if len(o.values) > 0 {
		sources++
	}
	if o.hasSeed {
		sources++
	}
	if o.rng != nil {
		sources++
	}
	if o.spy {
		sources++
	}
	if sources != 1 {
		return nil, fmt.Errorf("channel %s: freeze needs exactly one value source, got %d", ch, sources)
	}

	m, err := c.Mock(ch)
	if err != nil {
		return nil, err
	}
	m.ov.Prefixes = o.ignore
	m.ov.DisableDefaults = o.noDflt
	if err := m.SetExhaustionPolicy(o.policy); err != nil {
		return nil, err
	}

	switch {
	case o.spy:
		err = m.Spy()
	case o.rng != nil:
		err = m.SetRand(o.rng, o.seedOpts...)
	case o.hasSeed:
		err = m.SetSeed(o.seed, o.seedOpts...)
	case len(o.values) == 1 && o.policy == generate.PolicyCycle:
		err = m.SetDefault(o.values[0])
	default:
		err = m.Set(o.values...)
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

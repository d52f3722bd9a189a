// Package registry implements the channel registry: the interception proxy
// and the scope/session controller behind it.
//
// A Registry is installed once per test session and never reinstalled. It
// is created by an explicit constructor call, never by import-time side
// effects, and callers inject it rather than reaching for ambient global
// state; the public package wraps exactly one Registry per Control.
//
// Per channel the registry keeps a stack of activations (generator plus
// ignore overrides plus tracker). Interception resolves the top activation
// atomically with respect to concurrent scope enter/exit, then invokes the
// generator outside the channel lock so callers are not serialized on
// generator-internal work. Call records for one channel are appended in the
// order calls complete their critical section, which under true concurrency
// may differ from wall-clock invocation order; the shared sequence clock
// makes that ordering explicit.
package registry

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/uuidfreeze/uuidfreeze/internal/generate"
	"github.com/uuidfreeze/uuidfreeze/internal/ignore"
	"github.com/uuidfreeze/uuidfreeze/internal/origin"
	"github.com/uuidfreeze/uuidfreeze/internal/track"
)

// Recorder receives a copy of every call record, in addition to the
// per-activation tracker. Used to mirror records into the session journal.
// Record is called outside the channel lock and must be safe for concurrent
// use.
type Recorder interface {
	Record(channel string, rec track.Record)
}

// Registry owns the per-channel interception state.
type Registry struct {
	channels map[Channel]*channelState
	clock    *track.Clock
	capture  origin.CaptureFunc
	logger   *slog.Logger
	recorder Recorder
	tokens   atomic.Uint64

	defaultsMu     sync.Mutex
	ignoreDefaults []string
}

// channelState is one channel's binding stack. The mutex guards the stack
// and every activation's generator/override fields, so "which generator is
// active" is always resolved atomically with respect to enter/exit/swap.
type channelState struct {
	mu    sync.Mutex
	stack []*Activation
}

// Activation is one frame on a channel's binding stack: a generator (nil
// for observe-only spies), the scope's ignore overrides, and the tracker
// that records every call resolved through this frame.
type Activation struct {
	channel   Channel
	token     uint64
	spy       bool
	gen       generate.Generator
	overrides ignore.Overrides
	tracker   *track.Tracker
}

// Channel returns the channel this activation is bound to.
func (a *Activation) Channel() Channel { return a.channel }

// Tracker returns the activation's call log.
func (a *Activation) Tracker() *track.Tracker { return a.tracker }

// Option adjusts Registry construction.
type Option func(*Registry)

// WithCapture replaces the origin-chain capture function. The default uses
// runtime stack introspection; tests substitute fabricated chains.
func WithCapture(fn origin.CaptureFunc) Option {
	return func(r *Registry) { r.capture = fn }
}

// WithLogger sets the structured logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) { r.logger = logger }
}

// WithIgnoreDefaults sets the session-default ignore prefixes.
func WithIgnoreDefaults(prefixes ...string) Option {
	return func(r *Registry) { r.ignoreDefaults = append([]string(nil), prefixes...) }
}

// WithRecorder mirrors every call record into rec.
func WithRecorder(rec Recorder) Option {
	return func(r *Registry) { r.recorder = rec }
}

// New creates a registry with empty stacks on every channel.
func New(opts ...Option) *Registry {
	r := &Registry{
		channels: make(map[Channel]*channelState, len(Channels())),
		clock:    track.NewClock(),
		capture:  origin.Capture,
		logger:   slog.Default(),
	}
	for _, ch := range Channels() {
		r.channels[ch] = &channelState{}
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// IgnoreDefaults returns a copy of the session-default ignore prefixes.
func (r *Registry) IgnoreDefaults() []string {
	r.defaultsMu.Lock()
	defer r.defaultsMu.Unlock()
	return append([]string(nil), r.ignoreDefaults...)
}

// SetIgnoreDefaults replaces the session-default ignore prefixes.
func (r *Registry) SetIgnoreDefaults(prefixes []string) {
	r.defaultsMu.Lock()
	r.ignoreDefaults = append([]string(nil), prefixes...)
	r.defaultsMu.Unlock()
}

// Intercept is the proxy for non-namespace channels. skip is the number of
// caller frames between Intercept and the code whose call is being
// intercepted (the public wrapper passes 1; direct callers pass 0).
//
// Resolution order per call: no active binding delegates to the real
// constructor without recording; an ignore-list match delegates to the real
// constructor and records a real outcome; otherwise the active generator
// produces the value and a synthetic outcome is recorded. Generator errors
// (sequence exhaustion under the raise policy) propagate to the caller
// unrecorded.
func (r *Registry) Intercept(ch Channel, skip int) (uuid.UUID, error) {
	if !ch.Valid() {
		return uuid.Nil, fmt.Errorf("unknown channel %q", ch)
	}
	if ch.Namespace() {
		return uuid.Nil, fmt.Errorf("channel %s takes namespace arguments: use InterceptNamespace", ch)
	}

	// +1 drops Intercept itself from the chain.
	chain := r.capture(skip + 1)

	st := r.channels[ch]
	st.mu.Lock()
	act := st.top()
	var gen generate.Generator
	var ov ignore.Overrides
	var spy bool
	if act != nil {
		gen = act.gen
		ov = act.overrides
		spy = act.spy
	}
	st.mu.Unlock()

	real := RealConstructor(ch)

	if act == nil {
		return real()
	}

	if ignore.Match(chain, ignore.Effective(r.IgnoreDefaults(), ov)) {
		v, err := real()
		if err != nil {
			return uuid.Nil, err
		}
		r.record(ch, act, v, false, chain, uuid.Nil, "")
		return v, nil
	}

	if spy {
		v, err := real()
		if err != nil {
			return uuid.Nil, err
		}
		r.record(ch, act, v, false, chain, uuid.Nil, "")
		return v, nil
	}

	// Generator runs outside the channel lock: identity was resolved
	// atomically above, the produce step must not serialize callers.
	v, err := gen.Next()
	if err != nil {
		return uuid.Nil, err
	}
	r.record(ch, act, v, true, chain, uuid.Nil, "")
	return v, nil
}

// InterceptNamespace is the proxy for the deterministic namespace channels
// (uuid3, uuid5). Output is never substituted: when a spy is active the
// call is recorded with its namespace and name arguments, and the real
// constructor's value is returned either way.
func (r *Registry) InterceptNamespace(ch Channel, ns uuid.UUID, name string, skip int) (uuid.UUID, error) {
	if !ch.Namespace() {
		return uuid.Nil, fmt.Errorf("channel %s does not take namespace arguments: use Intercept", ch)
	}

	chain := r.capture(skip + 1)

	st := r.channels[ch]
	st.mu.Lock()
	act := st.top()
	st.mu.Unlock()

	v := realNamespace(ch)(ns, name)
	if act != nil {
		r.record(ch, act, v, false, chain, ns, name)
	}
	return v, nil
}

// record builds the call record outside any channel lock and appends it to
// the activation's tracker, then mirrors it to the recorder if one is set.
func (r *Registry) record(ch Channel, act *Activation, v uuid.UUID, synthetic bool, chain []origin.Frame, ns uuid.UUID, name string) {
	rec := track.Record{
		Seq:       r.clock.Next(),
		Value:     v,
		Synthetic: synthetic,
		Version:   ch.Version(),
		Namespace: ns,
		Name:      name,
	}
	if len(chain) > 0 {
		caller := chain[0]
		rec.Module = caller.Module
		rec.File = caller.File
		rec.Line = caller.Line
		rec.Function = caller.Function
	}
	act.tracker.Append(rec)
	if r.recorder != nil {
		r.recorder.Record(string(ch), rec)
	}
}

// top returns the innermost activation, or nil. Caller holds st.mu.
func (st *channelState) top() *Activation {
	if len(st.stack) == 0 {
		return nil
	}
	return st.stack[len(st.stack)-1]
}

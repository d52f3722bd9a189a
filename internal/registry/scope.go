package registry

import (
	"fmt"

	"github.com/uuidfreeze/uuidfreeze/internal/generate"
	"github.com/uuidfreeze/uuidfreeze/internal/ignore"
	"github.com/uuidfreeze/uuidfreeze/internal/track"
)

// Enter pushes a new activation onto a channel's stack and returns it.
//
// A nil generator creates an observe-only spy activation: calls are still
// recorded (which distinguishes a spy from no binding at all) but the real
// constructor produces every value. Namespace channels accept only spy
// activations, since their output is never substituted.
//
// The caller is responsible for releasing the activation with Exit on every
// path out of its scope, including error paths. Once Exit runs, the prior
// binding (possibly none) is restored exactly.
func (r *Registry) Enter(ch Channel, gen generate.Generator, ov ignore.Overrides) (*Activation, error) {
	if !ch.Valid() {
		return nil, fmt.Errorf("unknown channel %q", ch)
	}
	if ch.Namespace() && gen != nil {
		return nil, fmt.Errorf("channel %s is observe-only: namespace UUIDs are deterministic and cannot be substituted", ch)
	}

	act := &Activation{
		channel:   ch,
		token:     r.tokens.Add(1),
		spy:       gen == nil,
		gen:       gen,
		overrides: ov,
		tracker:   track.New(),
	}

	st := r.channels[ch]
	st.mu.Lock()
	st.stack = append(st.stack, act)
	depth := len(st.stack)
	st.mu.Unlock()

	r.logger.Debug("scope entered",
		"channel", string(ch),
		"token", act.token,
		"spy", act.spy,
		"depth", depth,
	)
	return act, nil
}

// Exit pops an activation, restoring the previous binding exactly.
//
// The activation must be the top of its channel's stack. Anything else
// means scopes were released out of last-in-first-out order, which is
// reported as an OrderingViolationError instead of silently popping the
// wrong frame.
func (r *Registry) Exit(act *Activation) error {
	if act == nil {
		return fmt.Errorf("exit of nil activation")
	}

	st := r.channels[act.channel]
	st.mu.Lock()
	defer st.mu.Unlock()

	if len(st.stack) == 0 {
		r.logger.Warn("scope exit on empty stack", "channel", string(act.channel), "token", act.token)
		return &OrderingViolationError{
			Channel: act.channel,
			Message: "exit called with no active scope",
		}
	}
	top := st.stack[len(st.stack)-1]
	if top != act {
		r.logger.Warn("scope exit out of order",
			"channel", string(act.channel),
			"token", act.token,
			"top_token", top.token,
		)
		return &OrderingViolationError{
			Channel: act.channel,
			Message: fmt.Sprintf("scope %d released while scope %d is still open: scopes must close in reverse order of opening", act.token, top.token),
		}
	}
	st.stack = st.stack[:len(st.stack)-1]

	r.logger.Debug("scope exited",
		"channel", string(act.channel),
		"token", act.token,
		"depth", len(st.stack),
	)
	return nil
}

// Current returns the innermost activation for a channel, or nil when the
// channel has no active binding.
func (r *Registry) Current(ch Channel) *Activation {
	st, ok := r.channels[ch]
	if !ok {
		return nil
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.top()
}

// Depth returns the number of activations on a channel's stack.
func (r *Registry) Depth(ch Channel) int {
	st, ok := r.channels[ch]
	if !ok {
		return 0
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.stack)
}

// Swap replaces the generator of an activation that is still on its
// channel's stack. Used by mocker accessors that reconfigure their binding
// in place (set, then set_seed, and so on) without re-entering a scope.
func (r *Registry) Swap(act *Activation, gen generate.Generator) error {
	if act == nil {
		return fmt.Errorf("swap on nil activation")
	}
	if act.channel.Namespace() && gen != nil {
		return fmt.Errorf("channel %s is observe-only: namespace UUIDs are deterministic and cannot be substituted", act.channel)
	}

	st := r.channels[act.channel]
	st.mu.Lock()
	defer st.mu.Unlock()

	if !st.contains(act) {
		return fmt.Errorf("swap on released scope (channel %s, token %d)", act.channel, act.token)
	}
	act.gen = gen
	act.spy = gen == nil
	return nil
}

// SetOverrides replaces the ignore overrides of an activation still on its
// channel's stack.
func (r *Registry) SetOverrides(act *Activation, ov ignore.Overrides) error {
	if act == nil {
		return fmt.Errorf("set overrides on nil activation")
	}

	st := r.channels[act.channel]
	st.mu.Lock()
	defer st.mu.Unlock()

	if !st.contains(act) {
		return fmt.Errorf("set overrides on released scope (channel %s, token %d)", act.channel, act.token)
	}
	act.overrides = ov
	return nil
}

// Reset clears a channel: every activation is popped, its generator state
// rewound and its call log cleared. Subsequent calls on the channel see no
// binding and delegate to the real constructor.
func (r *Registry) Reset(ch Channel) error {
	if !ch.Valid() {
		return fmt.Errorf("unknown channel %q", ch)
	}

	st := r.channels[ch]
	st.mu.Lock()
	popped := st.stack
	st.stack = nil
	st.mu.Unlock()

	for _, act := range popped {
		if act.gen != nil {
			act.gen.Reset()
		}
		act.tracker.Reset()
	}
	if len(popped) > 0 {
		r.logger.Debug("channel reset", "channel", string(ch), "scopes_dropped", len(popped))
	}
	return nil
}

// ResetAll clears every channel.
func (r *Registry) ResetAll() {
	for _, ch := range Channels() {
		_ = r.Reset(ch)
	}
}

// contains reports whether act is anywhere on the stack. Caller holds st.mu.
func (st *channelState) contains(act *Activation) bool {
	for _, a := range st.stack {
		if a == act {
			return true
		}
	}
	return false
}

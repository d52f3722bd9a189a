package uuidfreeze

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/uuidfreeze/uuidfreeze/internal/ignore"
	"github.com/uuidfreeze/uuidfreeze/internal/registry"
)

// NamespaceSpy observes a namespace channel (uuid3 or uuid5). The channel's
// output is deterministic and never substituted; the spy records each call
// with its namespace, name and caller.
type NamespaceSpy struct {
	ctl *Control
	ch  Channel

	mu  sync.Mutex
	act *registry.Activation
}

// NamespaceSpy returns a spy for one of the namespace channels.
func (c *Control) NamespaceSpy(ch Channel) (*NamespaceSpy, error) {
	if !ch.Valid() {
		return nil, fmt.Errorf("unknown channel %q", ch)
	}
	if !ch.Namespace() {
		return nil, fmt.Errorf("channel %s is not a namespace channel: use Mock", ch)
	}
	return &NamespaceSpy{ctl: c, ch: ch}, nil
}

// Enable starts recording calls on the channel.
func (s *NamespaceSpy) Enable() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.act != nil {
		return fmt.Errorf("channel %s: spy already enabled", s.ch)
	}
	act, err := s.ctl.reg.Enter(s.ch, nil, ignore.Overrides{})
	if err != nil {
		return err
	}
	s.act = act
	return nil
}

// Disable stops recording. Spies nest like any other binding and must be
// disabled innermost first.
func (s *NamespaceSpy) Disable() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.act == nil {
		return fmt.Errorf("channel %s: spy not enabled", s.ch)
	}
	if err := s.ctl.reg.Exit(s.act); err != nil {
		return err
	}
	s.act = nil
	return nil
}

// Enabled reports whether the spy is recording.
func (s *NamespaceSpy) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.act != nil
}

// Reset clears the recorded calls, keeping the spy enabled.
func (s *NamespaceSpy) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.act == nil {
		return fmt.Errorf("channel %s: spy not enabled", s.ch)
	}
	s.act.Tracker().Reset()
	return nil
}

// CallCount returns the number of recorded calls.
func (s *NamespaceSpy) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.act == nil {
		return 0
	}
	return s.act.Tracker().Count()
}

// Calls returns all recorded calls in order.
func (s *NamespaceSpy) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.act == nil {
		return nil
	}
	return s.act.Tracker().All()
}

// ByNamespace returns the recorded calls made with the given namespace.
func (s *NamespaceSpy) ByNamespace(ns uuid.UUID) []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.act == nil {
		return nil
	}
	return s.act.Tracker().ByNamespace(ns)
}

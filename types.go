package uuidfreeze

import (
	"github.com/uuidfreeze/uuidfreeze/internal/generate"
	"github.com/uuidfreeze/uuidfreeze/internal/registry"
	"github.com/uuidfreeze/uuidfreeze/internal/track"
)

// Channel names one interceptable UUID constructor family.
type Channel = registry.Channel

// The seven channels. UUID3 and UUID5 are namespace channels: deterministic
// by construction, observed but never substituted.
const (
	UUID1Channel = registry.ChannelUUID1
	UUID3Channel = registry.ChannelUUID3
	UUID4Channel = registry.ChannelUUID4
	UUID5Channel = registry.ChannelUUID5
	UUID6Channel = registry.ChannelUUID6
	UUID7Channel = registry.ChannelUUID7
	UUID8Channel = registry.ChannelUUID8
)

// Channels returns all channel names in version order.
func Channels() []Channel {
	return registry.Channels()
}

// Call is one recorded constructor call: the value handed out, whether it
// was substituted, and where it came from.
type Call = track.Record

// Policy controls what a value sequence does when it runs out.
type Policy = generate.Policy

const (
	PolicyCycle  = generate.PolicyCycle
	PolicyRandom = generate.PolicyRandom
	PolicyRaise  = generate.PolicyRaise
)

// ParsePolicy converts a policy name ("cycle", "random", "raise").
func ParsePolicy(s string) (Policy, error) {
	return generate.ParsePolicy(s)
}

// ExhaustedError reports a drained value sequence under PolicyRaise.
type ExhaustedError = generate.ExhaustedError

// OrderingViolationError reports a scope released out of LIFO order.
type OrderingViolationError = registry.OrderingViolationError

// IsOrderingViolation reports whether err is an OrderingViolationError.
func IsOrderingViolation(err error) bool {
	return registry.IsOrderingViolation(err)
}

// SeedOption adjusts seeded generation for versions 1 and 6.
type SeedOption = generate.SeededOption

// WithNode pins the 48-bit node field for seeded v1/v6 streams.
func WithNode(node uint64) SeedOption {
	return generate.WithNode(node)
}

// WithClockSeq pins the 14-bit clock sequence for seeded v1/v6 streams.
func WithClockSeq(clockSeq uint16) SeedOption {
	return generate.WithClockSeq(clockSeq)
}

// SeedFromIdentifier derives a stable 32-bit seed from an arbitrary
// identifier such as a test name. The identifier is NFC-normalized first so
// equivalent Unicode spellings agree on a seed.
func SeedFromIdentifier(id string) int64 {
	return generate.IdentifierSeed(id)
}

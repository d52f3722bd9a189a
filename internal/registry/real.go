package registry

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/google/uuid"
)

// RealConstructor returns the native constructor for a non-namespace
// channel. This is the delegate used when no binding is active, when the
// caller is on the ignore list, and as the fallback for the random
// exhaustion policy.
func RealConstructor(ch Channel) func() (uuid.UUID, error) {
	switch ch {
	case ChannelUUID1:
		return uuid.NewUUID
	case ChannelUUID4:
		return uuid.NewRandom
	case ChannelUUID6:
		return uuid.NewV6
	case ChannelUUID7:
		return uuid.NewV7
	case ChannelUUID8:
		return newV8
	}
	return nil
}

// realNamespace returns the native constructor for a namespace channel.
func realNamespace(ch Channel) func(ns uuid.UUID, name string) uuid.UUID {
	switch ch {
	case ChannelUUID3:
		return func(ns uuid.UUID, name string) uuid.UUID {
			return uuid.NewMD5(ns, []byte(name))
		}
	case ChannelUUID5:
		return func(ns uuid.UUID, name string) uuid.UUID {
			return uuid.NewSHA1(ns, []byte(name))
		}
	}
	return nil
}

// newV8 builds a random custom-format UUID. The uuid package has no v8
// constructor, so the 122 free bits come from crypto/rand with version and
// variant forced afterwards.
func newV8() (uuid.UUID, error) {
	var b [16]byte
	if _, err := io.ReadFull(rand.Reader, b[:]); err != nil {
		return uuid.Nil, fmt.Errorf("read random bytes: %w", err)
	}
	b[6] = (b[6] & 0x0F) | 0x80
	b[8] = (b[8] & 0x3F) | 0x80
	return uuid.UUID(b), nil
}

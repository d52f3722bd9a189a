package registry

import "fmt"

// Channel identifies one independently controllable UUID-generation
// primitive. Each channel owns its own binding stack and ignore overrides;
// activity on one channel never affects another.
type Channel string

const (
	// ChannelUUID1 intercepts time-based (Gregorian timestamp + node) UUIDs.
	ChannelUUID1 Channel = "uuid1"

	// ChannelUUID3 observes MD5 namespace UUIDs. Namespace channels are
	// deterministic given their inputs and are spy-only: output is never
	// substituted.
	ChannelUUID3 Channel = "uuid3"

	// ChannelUUID4 intercepts random UUIDs.
	ChannelUUID4 Channel = "uuid4"

	// ChannelUUID5 observes SHA-1 namespace UUIDs. Spy-only, like uuid3.
	ChannelUUID5 Channel = "uuid5"

	// ChannelUUID6 intercepts reordered time-based UUIDs.
	ChannelUUID6 Channel = "uuid6"

	// ChannelUUID7 intercepts Unix-timestamp-based UUIDs.
	ChannelUUID7 Channel = "uuid7"

	// ChannelUUID8 intercepts custom-format UUIDs.
	ChannelUUID8 Channel = "uuid8"
)

// Channels returns all supported channels in version order.
func Channels() []Channel {
	return []Channel{
		ChannelUUID1,
		ChannelUUID3,
		ChannelUUID4,
		ChannelUUID5,
		ChannelUUID6,
		ChannelUUID7,
		ChannelUUID8,
	}
}

// ParseChannel converts a configuration string into a Channel.
func ParseChannel(s string) (Channel, error) {
	ch := Channel(s)
	if !ch.Valid() {
		return "", fmt.Errorf("unknown channel %q: must be one of uuid1, uuid3, uuid4, uuid5, uuid6, uuid7, uuid8", s)
	}
	return ch, nil
}

// Valid reports whether c names a supported channel.
func (c Channel) Valid() bool {
	switch c {
	case ChannelUUID1, ChannelUUID3, ChannelUUID4, ChannelUUID5,
		ChannelUUID6, ChannelUUID7, ChannelUUID8:
		return true
	}
	return false
}

// Version returns the UUID version this channel produces.
func (c Channel) Version() int {
	switch c {
	case ChannelUUID1:
		return 1
	case ChannelUUID3:
		return 3
	case ChannelUUID4:
		return 4
	case ChannelUUID5:
		return 5
	case ChannelUUID6:
		return 6
	case ChannelUUID7:
		return 7
	case ChannelUUID8:
		return 8
	}
	return 0
}

// Namespace reports whether this channel takes namespace/name arguments.
// Namespace channels are spy-only.
func (c Channel) Namespace() bool {
	return c == ChannelUUID3 || c == ChannelUUID5
}

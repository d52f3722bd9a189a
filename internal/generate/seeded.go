package generate

import (
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/google/uuid"
)

// Seeded produces a reproducible stream of structurally valid UUIDs for one
// UUID version.
//
// Determinism is a correctness property: two independently constructed
// Seeded generators with the same integer seed emit identical streams. The
// PRNG is a PCG with a fixed derivation from the seed, and every draw order
// is fixed per version, so the property holds across processes and
// platforms. Version and variant bits are forced after the random bits are
// drawn rather than relying on the randomness to produce them.
//
// Supported versions: 1, 4, 6, 7, 8. Versions 1 and 6 accept optional fixed
// node and clock-sequence values; other versions draw every field from the
// PRNG.
type Seeded struct {
	version int
	seed    int64
	hasSeed bool

	mu  sync.Mutex
	rng *rand.Rand

	node        uint64
	hasNode     bool
	clockSeq    uint16
	hasClockSeq bool
}

// SeededOption adjusts Seeded construction.
type SeededOption func(*Seeded)

// WithNode pins the 48-bit node (hardware address) field for versions 1
// and 6. Ignored for other versions.
func WithNode(node uint64) SeededOption {
	return func(s *Seeded) {
		s.node = node & 0xFFFFFFFFFFFF
		s.hasNode = true
	}
}

// WithClockSeq pins the 14-bit clock sequence for versions 1 and 6.
// Ignored for other versions.
func WithClockSeq(clockSeq uint16) SeededOption {
	return func(s *Seeded) {
		s.clockSeq = clockSeq & 0x3FFF
		s.hasClockSeq = true
	}
}

// NewSeeded creates a seeded generator for the given UUID version.
// Unsupported versions (3 and 5 are deterministic by construction and never
// take generators) are a configuration error.
func NewSeeded(version int, seed int64, opts ...SeededOption) (*Seeded, error) {
	if !seedableVersion(version) {
		return nil, fmt.Errorf("seeded generation not supported for uuid version %d: supported versions are 1, 4, 6, 7, 8", version)
	}
	s := &Seeded{
		version: version,
		seed:    seed,
		hasSeed: true,
		rng:     newSeededRand(seed),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// NewSeededFrom creates a seeded generator around a caller-supplied PRNG.
// The caller owns the random state, so Reset is a no-op and Seed reports
// no seed.
func NewSeededFrom(version int, rng *rand.Rand, opts ...SeededOption) (*Seeded, error) {
	if !seedableVersion(version) {
		return nil, fmt.Errorf("seeded generation not supported for uuid version %d: supported versions are 1, 4, 6, 7, 8", version)
	}
	if rng == nil {
		return nil, fmt.Errorf("seeded generator requires a non-nil random source")
	}
	s := &Seeded{version: version, rng: rng}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func seedableVersion(version int) bool {
	switch version {
	case 1, 4, 6, 7, 8:
		return true
	}
	return false
}

// newSeededRand derives the PRNG from an integer seed. The derivation is
// fixed: changing it would silently change every seeded stream.
func newSeededRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9E3779B97F4A7C15))
}

// Next produces the next UUID in the stream.
func (s *Seeded) Next() (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.version {
	case 1:
		return s.nextV1(), nil
	case 4:
		return s.nextV4(), nil
	case 6:
		return s.nextV6(), nil
	case 7:
		return s.nextV7(), nil
	default:
		return s.nextV8(), nil
	}
}

// Reset restarts the stream from the seed. When constructed around a
// caller-supplied PRNG there is nothing to restart.
func (s *Seeded) Reset() {
	s.mu.Lock()
	if s.hasSeed {
		s.rng = newSeededRand(s.seed)
	}
	s.mu.Unlock()
}

// Seed returns the integer seed, or false when the generator was built
// around a caller-supplied random source.
func (s *Seeded) Seed() (int64, bool) {
	return s.seed, s.hasSeed
}

// Version returns the UUID version this generator produces.
func (s *Seeded) Version() int {
	return s.version
}

// bits draws n random bits (n <= 64) as the low bits of the result.
// Exactly one PRNG draw per call keeps the stream layout fixed.
func (s *Seeded) bits(n int) uint64 {
	v := s.rng.Uint64()
	if n >= 64 {
		return v
	}
	return v & ((1 << n) - 1)
}

// nextV4 fills all 128 bits from the PRNG, then forces version 4 and the
// RFC 4122 variant.
func (s *Seeded) nextV4() uuid.UUID {
	var b [16]byte
	binary.BigEndian.PutUint64(b[0:8], s.rng.Uint64())
	binary.BigEndian.PutUint64(b[8:16], s.rng.Uint64())
	b[6] = (b[6] & 0x0F) | 0x40
	b[8] = (b[8] & 0x3F) | 0x80
	return uuid.UUID(b)
}

// nextV1 draws the 60-bit timestamp, 14-bit clock sequence, and 48-bit node
// from the PRNG (unless pinned) and assembles the classic v1 field order.
// The timestamp is random rather than wall time: reproducibility is the
// point.
func (s *Seeded) nextV1() uuid.UUID {
	timeLow := uint32(s.bits(32))
	timeMid := uint16(s.bits(16))
	timeHi := uint16(s.bits(12))
	clockSeq := s.drawClockSeq()
	node := s.drawNode()

	var b [16]byte
	binary.BigEndian.PutUint32(b[0:4], timeLow)
	binary.BigEndian.PutUint16(b[4:6], timeMid)
	binary.BigEndian.PutUint16(b[6:8], 1<<12|timeHi)
	b[8] = 0x80 | byte(clockSeq>>8)&0x3F
	b[9] = byte(clockSeq)
	putNode(&b, node)
	return uuid.UUID(b)
}

// nextV6 is the v1 layout reordered so the most significant time bits come
// first, as v6 specifies.
func (s *Seeded) nextV6() uuid.UUID {
	timeHigh := uint32(s.bits(32))
	timeMid := uint16(s.bits(16))
	timeLow := uint16(s.bits(12))
	clockSeq := s.drawClockSeq()
	node := s.drawNode()

	var b [16]byte
	binary.BigEndian.PutUint32(b[0:4], timeHigh)
	binary.BigEndian.PutUint16(b[4:6], timeMid)
	binary.BigEndian.PutUint16(b[6:8], 6<<12|timeLow)
	b[8] = 0x80 | byte(clockSeq>>8)&0x3F
	b[9] = byte(clockSeq)
	putNode(&b, node)
	return uuid.UUID(b)
}

// nextV7 draws the 48-bit millisecond timestamp and both random fields from
// the PRNG. Layout: ts(48) | ver(4) | randA(12) | var(2) | randB(62).
func (s *Seeded) nextV7() uuid.UUID {
	ts := s.bits(48)
	randA := uint16(s.bits(12))
	randB := s.bits(62)

	var b [16]byte
	b[0] = byte(ts >> 40)
	b[1] = byte(ts >> 32)
	b[2] = byte(ts >> 24)
	b[3] = byte(ts >> 16)
	b[4] = byte(ts >> 8)
	b[5] = byte(ts)
	binary.BigEndian.PutUint16(b[6:8], 7<<12|randA)
	putTail62(&b, randB)
	return uuid.UUID(b)
}

// nextV8 fills every custom field from the PRNG.
// Layout: customA(48) | ver(4) | customB(12) | var(2) | customC(62).
func (s *Seeded) nextV8() uuid.UUID {
	customA := s.bits(48)
	customB := uint16(s.bits(12))
	customC := s.bits(62)

	var b [16]byte
	b[0] = byte(customA >> 40)
	b[1] = byte(customA >> 32)
	b[2] = byte(customA >> 24)
	b[3] = byte(customA >> 16)
	b[4] = byte(customA >> 8)
	b[5] = byte(customA)
	binary.BigEndian.PutUint16(b[6:8], 8<<12|customB)
	putTail62(&b, customC)
	return uuid.UUID(b)
}

func (s *Seeded) drawClockSeq() uint16 {
	if s.hasClockSeq {
		return s.clockSeq
	}
	return uint16(s.bits(14))
}

func (s *Seeded) drawNode() uint64 {
	if s.hasNode {
		return s.node
	}
	return s.bits(48)
}

// putNode writes a 48-bit node into bytes 10..15.
func putNode(b *[16]byte, node uint64) {
	b[10] = byte(node >> 40)
	b[11] = byte(node >> 32)
	b[12] = byte(node >> 24)
	b[13] = byte(node >> 16)
	b[14] = byte(node >> 8)
	b[15] = byte(node)
}

// putTail62 writes the RFC 4122 variant followed by 62 random bits into
// bytes 8..15.
func putTail62(b *[16]byte, tail uint64) {
	b[8] = 0x80 | byte(tail>>56)&0x3F
	b[9] = byte(tail >> 48)
	b[10] = byte(tail >> 40)
	b[11] = byte(tail >> 32)
	b[12] = byte(tail >> 24)
	b[13] = byte(tail >> 16)
	b[14] = byte(tail >> 8)
	b[15] = byte(tail)
}

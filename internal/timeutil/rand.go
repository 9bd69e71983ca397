package timeutil

import "math/rand/v2"

// Rand is the bounded-integer PRNG oracle consumed by CSMA backoff jitter
// and discovery frame-ID generation (spec §4.9). Determinism and
// cryptographic quality are both explicitly not required.
type Rand interface {
	// GenUint8 returns a value in the half-open range [lo, hi).
	GenUint8(lo, hi uint8) uint8
	// GenUint16 returns a full-range random 16-bit value.
	GenUint16() uint16
}

// DefaultRand is a math/rand/v2-backed Rand with no determinism guarantees,
// suitable for production use (backoff jitter, frame IDs).
type DefaultRand struct{}

// GenUint8 implements Rand.
func (DefaultRand) GenUint8(lo, hi uint8) uint8 {
	if hi <= lo {
		return lo
	}
	return lo + uint8(rand.IntN(int(hi-lo)))
}

// GenUint16 implements Rand.
func (DefaultRand) GenUint16() uint16 {
	return uint16(rand.IntN(1 << 16))
}

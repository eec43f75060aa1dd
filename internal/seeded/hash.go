// Package seeded provides the deterministic tiebreak hash used throughout
// the palette clusterer so that ordering never depends on Go's randomized
// map iteration order.
package seeded

import "hash/fnv"

// Hash64 mixes seed with fnv(token) to produce a 64-bit value used to break
// ties in clustering comparisons. Same seed and token always produce the
// same value, on any run, on any machine.
func Hash64(seed uint64, token string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(token))
	v := h.Sum64()
	return mix64(seed ^ v)
}

// mix64 is a SplitMix64-style finalizer, used to spread the XOR of seed and
// fnv hash across all bits before callers compare it ordinally.
func mix64(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

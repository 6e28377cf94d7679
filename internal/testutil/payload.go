package testutil

import "math/rand"

// PayloadGenerator produces a reproducible stream of payload bytes for
// randomized scenarios.
//
// The same seed always yields the same byte sequence, so randomized tests
// stay deterministic and failures replay exactly.
type PayloadGenerator struct {
	rng *rand.Rand
}

// NewPayloadGenerator creates a generator seeded with seed.
func NewPayloadGenerator(seed int64) *PayloadGenerator {
	return &PayloadGenerator{rng: rand.New(rand.NewSource(seed))}
}

// Next returns the next payload byte.
func (g *PayloadGenerator) Next() byte {
	return byte(g.rng.Intn(256))
}

// Bytes returns the next n payload bytes.
func (g *PayloadGenerator) Bytes(n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = g.Next()
	}
	return out
}

// Ramp returns n bytes counting up from start, wrapping at 256.
// Useful for prefill patterns where each slot must be distinguishable.
func Ramp(start byte, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = start + byte(i)
	}
	return out
}

package arix

import "math/rand/v2"

// RandomSource supplies uniform samples in [0, 1). Pose generation and the
// point fields draw all of their randomness through it so tests can inject a
// deterministic stream.
type RandomSource interface {
	Float64() float64
}

// NewRandomSource returns a RandomSource seeded from seed. Two sources built
// from the same seed produce the same stream.
func NewRandomSource(seed uint64) RandomSource {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// globalSource wraps the process-wide math/rand/v2 generator.
type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }

// DefaultRandomSource draws from the process-wide generator. Used when a
// caller passes a nil RandomSource.
var DefaultRandomSource RandomSource = globalSource{}

func sourceOrDefault(rng RandomSource) RandomSource {
	if rng == nil {
		return DefaultRandomSource
	}
	return rng
}

// Uniform returns a sample in [min, max) drawn from rng.
func Uniform(rng RandomSource, min, max float64) float64 {
	return min + rng.Float64()*(max-min)
}

// RandomFrom returns a value in [Min, Max) drawn from rng.
func (r Range) RandomFrom(rng RandomSource) float64 {
	return Uniform(sourceOrDefault(rng), r.Min, r.Max)
}

// Random returns a value in [Min, Max) drawn from the default source.
func (r Range) Random() float64 {
	return r.RandomFrom(nil)
}

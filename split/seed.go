// Package split derives deterministic random partitions: the repeated
// train/test splits and the inner cross-validation folds. All randomness flows
// through explicit seeds derived from (master seed, configuration ID,
// repetition index); there is no global RNG state anywhere in the search.
package split

import "math/rand/v2"

// splitmix64 finalizer constants.
const (
	mixGamma = 0x9e3779b97f4a7c15
	mixM1    = 0xbf58476d1ce4e5b9
	mixM2    = 0x94d049bb133111eb
)

func mix64(z uint64) uint64 {
	z = (z ^ (z >> 30)) * mixM1
	z = (z ^ (z >> 27)) * mixM2
	return z ^ (z >> 31)
}

// DeriveSeed maps (masterSeed, configID, repetition) to an RNG seed. The same
// inputs always produce the same seed, so every stochastic step of a
// repetition is exactly reproducible, and distinct (config, repetition) pairs
// get statistically independent streams.
func DeriveSeed(masterSeed uint64, configID, repetition int) uint64 {
	s := masterSeed
	s = mix64(s + mixGamma + uint64(configID))
	s = mix64(s + mixGamma + uint64(repetition))
	return s
}

// SubSeed derives an independent stream from an already-derived seed, used
// for per-fold and final-model RNGs within one repetition.
func SubSeed(seed uint64, stream int) uint64 {
	return mix64(seed + mixGamma + uint64(stream))
}

// NewRand returns a PCG source seeded from a derived seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, mix64(seed+mixGamma)))
}

// Package rng provides deterministic seeded random streams. Every stream is
// derived from a stable hash of its name and the base seed, so two processes
// given the same configuration produce bit-identical shuffles.
package rng

import (
	"context"
	"hash/fnv"
	"math/rand"

	"gobiome/ports"
)

// Adapter implements ports.RNGPort
type Adapter struct{}

var _ ports.RNGPort = (*Adapter)(nil)

// New creates a new RNG adapter
func New() *Adapter {
	return &Adapter{}
}

// Stream creates a deterministic generator scoped to a stage and key
func (a *Adapter) Stream(ctx context.Context, stageName, key string, baseSeed int64) (*rand.Rand, error) {
	return rand.New(rand.NewSource(deriveSeed(stageName+"/"+key, baseSeed))), nil
}

// deriveSeed folds the stream name into the base seed so distinct streams
// with the same seed do not correlate
func deriveSeed(name string, seed int64) int64 {
	h := fnv.New64a()
	h.Write([]byte(name))
	return int64(h.Sum64()) ^ seed
}

package ports

import (
	"context"
	"math/rand"
)

// RNGPort provides seeded random number generation for deterministic operations
type RNGPort interface {
	// Stream creates a deterministic RNG stream scoped to a stage and key.
	// Rarefaction and permutation stages use this so identical inputs and
	// seeds reproduce identical results regardless of scheduling.
	Stream(ctx context.Context, stageName, key string, baseSeed int64) (*rand.Rand, error)
}

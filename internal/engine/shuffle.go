package engine

import (
	"math/rand/v2"
	"slices"
	"sync"
)

// Source yields uniformly distributed integers in [0, n).
// *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	IntN(n int) int
}

// DefaultSource returns a Source backed by the math/rand/v2 top-level
// generator, which is randomly seeded and safe for concurrent use.
func DefaultSource() Source { return globalSource{} }

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// NewSeededSource returns a reproducible Source. Draws from the same seed
// repeat exactly, which is what tests and replayable dev setups want.
func NewSeededSource(seed uint64) Source {
	return &lockedSource{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// lockedSource serialises access to a *rand.Rand, which is not safe for
// concurrent use on its own.
type lockedSource struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (s *lockedSource) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.IntN(n)
}

// Shuffle returns a uniformly random permutation of items using the
// Fisher–Yates procedure: for i from the last index down to 1, swap element i
// with the element at a uniform index in [0, i]. items is left untouched.
func Shuffle[T any](src Source, items []T) []T {
	out := slices.Clone(items)
	for i := len(out) - 1; i > 0; i-- {
		j := src.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

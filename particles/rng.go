package particles

import "math/rand"

// RandomSource draws uniform integers from the closed range [low, high].
// Generators scale the result by a fixed factor, so swapping the source
// for a scripted one makes spawns fully deterministic.
type RandomSource interface {
	IntRange(low, high int) int
}

// Rand is the default RandomSource, backed by math/rand.
type Rand struct {
	r *rand.Rand
}

// NewRand creates a seeded RandomSource.
func NewRand(seed int64) *Rand {
	return &Rand{r: rand.New(rand.NewSource(seed))}
}

// IntRange returns a value in [low, high]. An empty or inverted range yields low.
func (r *Rand) IntRange(low, high int) int {
	if high <= low {
		return low
	}
	return low + r.r.Intn(high-low+1)
}

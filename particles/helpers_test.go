package particles

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
)

// scriptedSource replays values in order, clamped to the requested range.
type scriptedSource struct {
	values []int
	next   int
}

func (s *scriptedSource) IntRange(low, high int) int {
	if len(s.values) == 0 {
		return low
	}
	v := s.values[s.next%len(s.values)]
	s.next++
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}

func newTestPool(t *testing.T, capacity int) *Pool {
	t.Helper()
	p, err := NewPool(capacity)
	require.NoError(t, err)
	return p
}

// place acquires a slot, fills it and inserts it into list l.
func place(t *testing.T, p *Pool, l List, pt Particle) Index {
	t.Helper()
	idx, ok := p.Acquire()
	require.True(t, ok, "pool exhausted")
	*p.At(idx) = pt
	p.InsertSorted(idx, l)
	return idx
}

func zOrder(p *Pool, l List) []float32 {
	var zs []float32
	p.Each(l, func(_ Index, pt *Particle) { zs = append(zs, pt.Position.Z()) })
	return zs
}

func requireNonIncreasingZ(t *testing.T, p *Pool, l List) {
	t.Helper()
	zs := zOrder(p, l)
	for i := 1; i < len(zs); i++ {
		require.LessOrEqualf(t, zs[i], zs[i-1], "%s list out of order at %d: %v", l, i, zs)
	}
}

func listLens(p *Pool) [4]int {
	return [4]int{p.Len(ListFree), p.Len(ListGeneral), p.Len(ListRain), p.Len(ListFire)}
}

func at(x, y, z float32) mgl32.Vec3 { return mgl32.Vec3{x, y, z} }

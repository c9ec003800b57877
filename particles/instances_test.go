package particles

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildBlockLayout(t *testing.T) {
	p := newTestPool(t, 8)
	rainColor := mgl32.Vec3{0.5, 0.5, 1}
	fireColor := mgl32.Vec3{2, 0.8, 0.1}

	place(t, p, ListRain, Particle{Position: at(1, 10, 20), Color: rainColor})
	place(t, p, ListRain, Particle{Position: at(2, 11, 19), Color: rainColor})
	place(t, p, ListFire, Particle{Position: at(3, 0, 28), Color: fireColor})
	place(t, p, ListGeneral, Particle{Position: at(4, 0.1, 5), Color: rainColor})

	b := NewBuilder(p.Capacity(), 2)
	c := b.Build(p)

	assert.Equal(t, Counts{Rain: 2, Fire: 1, General: 1, Active: 4}, c)

	inst := b.Instances()
	require.Len(t, inst, 8)
	assert.Equal(t, at(1, 10, 20), inst[0].Position)
	assert.Equal(t, at(2, 11, 19), inst[1].Position)
	assert.Equal(t, at(3, 0, 28), inst[2].Position)
	assert.Equal(t, mgl32.Vec4{2, 0.8, 0.1, 1}, inst[2].Color)
	assert.Equal(t, at(4, 0.1, 5), inst[3].Position)
	for i := 4; i < len(inst); i++ {
		assert.Equal(t, Instance{}, inst[i], "slot %d must be zero", i)
	}
}

func TestBuildLeavesGapForShortRain(t *testing.T) {
	p := newTestPool(t, 6)
	place(t, p, ListRain, Particle{Position: at(1, 1, 1)})
	place(t, p, ListFire, Particle{Position: at(2, 2, 2)})

	b := NewBuilder(p.Capacity(), 3)
	c := b.Build(p)

	assert.Equal(t, 1, c.Rain)
	assert.Equal(t, 4, c.Active, "active count is the final write index")
	inst := b.Instances()
	assert.Equal(t, Instance{}, inst[1])
	assert.Equal(t, Instance{}, inst[2])
	assert.Equal(t, at(2, 2, 2), inst[3].Position)
}

func TestBuildClearsPreviousFrame(t *testing.T) {
	p := newTestPool(t, 4)
	idx := place(t, p, ListGeneral, Particle{Position: at(1, 2, 3), Life: -1})

	b := NewBuilder(p.Capacity(), 0)
	b.Build(p)
	require.Equal(t, at(1, 2, 3), b.Instances()[0].Position)

	p.Sweep(ListGeneral, func(Index, *Particle) bool { return false })
	require.Equal(t, ListFree, p.Owner(idx))

	c := b.Build(p)
	assert.Zero(t, c.Active)
	assert.Equal(t, Instance{}, b.Instances()[0])
}

func TestBuildDropsOverflow(t *testing.T) {
	p := newTestPool(t, 4)
	for i := 0; i < 3; i++ {
		place(t, p, ListFire, Particle{Position: at(0, 0, float32(i))})
	}
	// Rain block of 2 leaves room for only two fire instances.
	b := NewBuilder(p.Capacity(), 2)
	c := b.Build(p)

	assert.Equal(t, 2, c.Fire)
	assert.Equal(t, 1, c.Dropped)
	assert.Equal(t, 4, c.Active)
}

func TestNewBuilderClampsRainBlock(t *testing.T) {
	assert.Equal(t, 4, NewBuilder(4, 10).RainBlock())
	assert.Equal(t, 0, NewBuilder(4, -1).RainBlock())
}

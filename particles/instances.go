package particles

import "github.com/go-gl/mathgl/mgl32"

// Instance is the per-instance record uploaded to the GPU each frame.
type Instance struct {
	Position mgl32.Vec3
	Color    mgl32.Vec4
}

// Counts describes the layout of the last flattened frame.
type Counts struct {
	Rain    int // rain particles written, starting at slot 0
	Fire    int // fire particles written, starting at the rain block end
	General int // general particles written after the fire block
	Active  int // final write index (rain block + fire + general)
	Dropped int // particles that did not fit in the instance array
}

// Builder flattens the active lists into one contiguous instance array laid
// out as [rain block][fire block][general block], zero filled after the
// last written slot. The rain block has a fixed size so rain slots stay
// stable between frames.
type Builder struct {
	instances []Instance
	rainBlock int
}

// NewBuilder allocates an instance array of capacity records with a rain
// block of rainBlock slots.
func NewBuilder(capacity, rainBlock int) *Builder {
	if rainBlock > capacity {
		rainBlock = capacity
	}
	if rainBlock < 0 {
		rainBlock = 0
	}
	return &Builder{
		instances: make([]Instance, capacity),
		rainBlock: rainBlock,
	}
}

// Instances returns the array written by the last Build. The slice is
// reused and overwritten by the next Build.
func (b *Builder) Instances() []Instance { return b.instances }

// Capacity returns the instance array length.
func (b *Builder) Capacity() int { return len(b.instances) }

// RainBlock returns the number of slots reserved for rain.
func (b *Builder) RainBlock() int { return b.rainBlock }

// Build rewrites the instance array from the pool's active lists.
func (b *Builder) Build(p *Pool) Counts {
	clear(b.instances)
	var c Counts

	index := 0
	p.Each(ListRain, func(_ Index, pt *Particle) {
		if index >= b.rainBlock {
			c.Dropped++
			return
		}
		b.put(index, pt)
		index++
		c.Rain++
	})

	index = b.rainBlock
	p.Each(ListFire, func(_ Index, pt *Particle) {
		if index >= len(b.instances) {
			c.Dropped++
			return
		}
		b.put(index, pt)
		index++
		c.Fire++
	})

	index = b.rainBlock + c.Fire
	p.Each(ListGeneral, func(_ Index, pt *Particle) {
		if index >= len(b.instances) {
			c.Dropped++
			return
		}
		b.put(index, pt)
		index++
		c.General++
	})

	c.Active = index
	return c
}

func (b *Builder) put(i int, pt *Particle) {
	b.instances[i] = Instance{
		Position: pt.Position,
		Color:    pt.Color.Vec4(1),
	}
}

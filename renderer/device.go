// Package renderer draws the particle scene with raylib.
package renderer

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/drizzle/camera"
	"github.com/pthm-cable/drizzle/particles"
)

// instanceBuffer is a host-side instance stream.
type instanceBuffer struct {
	data   []particles.Instance
	counts particles.Counts
}

// Device implements particles.Device on top of raylib immediate-mode
// billboards. Buffers live on the host; Draw walks the bound instance
// buffer block by block and sizes each billboard from the bound geometry.
type Device struct {
	next particles.BufferHandle

	vertices  map[particles.BufferHandle][]particles.Vertex
	indices   map[particles.BufferHandle][]uint32
	instances map[particles.BufferHandle]*instanceBuffer

	boundVertices  particles.BufferHandle
	boundInstances particles.BufferHandle
	boundIndices   particles.BufferHandle

	// Per-variant billboard size, taken from the bound vertex buffer
	sizes [3]rl.Vector2
}

var _ particles.Device = (*Device)(nil)

// NewDevice creates an empty device. Requires an open raylib window only for Draw.
func NewDevice() *Device {
	return &Device{
		vertices:  make(map[particles.BufferHandle][]particles.Vertex),
		indices:   make(map[particles.BufferHandle][]uint32),
		instances: make(map[particles.BufferHandle]*instanceBuffer),
	}
}

func (d *Device) alloc() particles.BufferHandle {
	d.next++
	return d.next
}

// CreateVertexBuffer stores a copy of the billboard geometry.
func (d *Device) CreateVertexBuffer(vertices []particles.Vertex) (particles.BufferHandle, error) {
	if len(vertices) == 0 {
		return 0, fmt.Errorf("empty vertex buffer")
	}
	h := d.alloc()
	d.vertices[h] = append([]particles.Vertex(nil), vertices...)
	return h, nil
}

// CreateIndexBuffer stores a copy of the index list.
func (d *Device) CreateIndexBuffer(indices []uint32) (particles.BufferHandle, error) {
	if len(indices) == 0 {
		return 0, fmt.Errorf("empty index buffer")
	}
	h := d.alloc()
	d.indices[h] = append([]uint32(nil), indices...)
	return h, nil
}

// CreateInstanceBuffer allocates room for capacity instances.
func (d *Device) CreateInstanceBuffer(capacity int) (particles.BufferHandle, error) {
	if capacity <= 0 {
		return 0, fmt.Errorf("instance buffer capacity must be positive, got %d", capacity)
	}
	h := d.alloc()
	d.instances[h] = &instanceBuffer{data: make([]particles.Instance, capacity)}
	return h, nil
}

// UpdateInstances overwrites the instance buffer.
func (d *Device) UpdateInstances(buf particles.BufferHandle, instances []particles.Instance, counts particles.Counts) error {
	ib, ok := d.instances[buf]
	if !ok {
		return fmt.Errorf("%w: unknown instance buffer %d", particles.ErrUploadFailed, buf)
	}
	if len(instances) > len(ib.data) {
		return fmt.Errorf("%w: %d instances exceed capacity %d", particles.ErrUploadFailed, len(instances), len(ib.data))
	}
	n := copy(ib.data, instances)
	clear(ib.data[n:])
	ib.counts = counts
	return nil
}

// BindInstanced records the streams Draw will use.
func (d *Device) BindInstanced(vertices, instances, indices particles.BufferHandle) error {
	vb, ok := d.vertices[vertices]
	if !ok {
		return fmt.Errorf("bind: unknown vertex buffer %d", vertices)
	}
	if _, ok := d.instances[instances]; !ok {
		return fmt.Errorf("bind: unknown instance buffer %d", instances)
	}
	if _, ok := d.indices[indices]; !ok {
		return fmt.Errorf("bind: unknown index buffer %d", indices)
	}
	d.boundVertices, d.boundInstances, d.boundIndices = vertices, instances, indices
	for _, v := range []particles.Variant{particles.VariantGeneral, particles.VariantRain, particles.VariantFire} {
		d.sizes[v] = quadSize(vb, v)
	}
	return nil
}

// ReleaseBuffer frees a buffer.
func (d *Device) ReleaseBuffer(buf particles.BufferHandle) {
	delete(d.vertices, buf)
	delete(d.indices, buf)
	delete(d.instances, buf)
	if buf == d.boundVertices || buf == d.boundInstances || buf == d.boundIndices {
		d.boundVertices, d.boundInstances, d.boundIndices = 0, 0, 0
	}
}

// Textures selects the texture for each block.
type Textures struct {
	Default, Rain, Fire rl.Texture2D
}

// Draw renders the bound instances as camera-facing billboards in the
// order rain, fire, general. Must be called inside BeginMode3D with the
// same camera.
func (d *Device) Draw(rc rl.Camera3D, tex Textures) {
	ib, ok := d.instances[d.boundInstances]
	if !ok {
		return
	}
	c := ib.counts
	rainEnd := c.Active - c.Fire - c.General

	d.drawRange(rc, tex.Rain, ib.data[:c.Rain], particles.VariantRain)

	rl.BeginBlendMode(rl.BlendAdditive)
	d.drawRange(rc, tex.Fire, ib.data[rainEnd:rainEnd+c.Fire], particles.VariantFire)
	rl.EndBlendMode()

	d.drawRange(rc, tex.Default, ib.data[rainEnd+c.Fire:c.Active], particles.VariantGeneral)
}

func (d *Device) drawRange(rc rl.Camera3D, tex rl.Texture2D, instances []particles.Instance, v particles.Variant) {
	size := d.sizes[v]
	src := rl.NewRectangle(0, 0, float32(tex.Width), float32(tex.Height))
	origin := rl.NewVector2(size.X/2, size.Y/2)
	up := rl.NewVector3(0, 1, 0)
	for i := range instances {
		in := &instances[i]
		pos := rl.NewVector3(in.Position.X(), in.Position.Y(), in.Position.Z())
		rl.DrawBillboardPro(rc, tex, src, pos, up, size, origin, 0, toColor(in.Color.X(), in.Color.Y(), in.Color.Z(), in.Color.W()))
	}
}

// quadSize returns the extent of one variant's quad.
func quadSize(vb []particles.Vertex, v particles.Variant) rl.Vector2 {
	first, count := particles.QuadRange(v)
	if first+count > len(vb) {
		return rl.Vector2{}
	}
	q := vb[first : first+count]
	minX, maxX := q[0].Position.X(), q[0].Position.X()
	minY, maxY := q[0].Position.Y(), q[0].Position.Y()
	for _, vert := range q[1:] {
		minX = min(minX, vert.Position.X())
		maxX = max(maxX, vert.Position.X())
		minY = min(minY, vert.Position.Y())
		maxY = max(maxY, vert.Position.Y())
	}
	return rl.NewVector2(maxX-minX, maxY-minY)
}

// ToRaylib converts the orbit camera to a raylib camera.
func ToRaylib(cam *camera.Camera) rl.Camera3D {
	eye := cam.Eye()
	return rl.NewCamera3D(
		rl.NewVector3(eye.X(), eye.Y(), eye.Z()),
		rl.NewVector3(cam.Target.X(), cam.Target.Y(), cam.Target.Z()),
		rl.NewVector3(0, 1, 0),
		cam.FovY,
		rl.CameraPerspective,
	)
}

// toColor converts an HDR colour to 8-bit, saturating at 1.
func toColor(r, g, b, a float32) rl.Color {
	return rl.NewColor(channel(r), channel(g), channel(b), channel(a))
}

func channel(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

package particles

import (
	"fmt"
	"slices"
)

// HeadlessDevice is an in-memory Device and TextureProvider. It backs the
// headless run mode and tests: uploads are copied into host memory and
// can be forced to fail.
type HeadlessDevice struct {
	// FailUploads makes every UpdateInstances call fail.
	FailUploads bool
	// FailTextures lists texture keys that fail to load.
	FailTextures map[string]bool
	// FailInstanceBuffer makes CreateInstanceBuffer fail.
	FailInstanceBuffer bool

	nextBuffer  BufferHandle
	nextTexture TextureHandle
	buffers     map[BufferHandle][]byte
	textures    map[TextureHandle]string

	vertices  []Vertex
	indices   []uint32
	instances []Instance
	counts    Counts
	uploads   int
	binds     int
}

// NewHeadlessDevice creates an empty device.
func NewHeadlessDevice() *HeadlessDevice {
	return &HeadlessDevice{
		buffers:  make(map[BufferHandle][]byte),
		textures: make(map[TextureHandle]string),
	}
}

func (d *HeadlessDevice) alloc(kind string) BufferHandle {
	d.nextBuffer++
	d.buffers[d.nextBuffer] = []byte(kind)
	return d.nextBuffer
}

// CreateVertexBuffer stores a copy of the geometry.
func (d *HeadlessDevice) CreateVertexBuffer(vertices []Vertex) (BufferHandle, error) {
	d.vertices = slices.Clone(vertices)
	return d.alloc("vertex"), nil
}

// CreateIndexBuffer stores a copy of the indices.
func (d *HeadlessDevice) CreateIndexBuffer(indices []uint32) (BufferHandle, error) {
	d.indices = slices.Clone(indices)
	return d.alloc("index"), nil
}

// CreateInstanceBuffer reserves host memory for capacity instances.
func (d *HeadlessDevice) CreateInstanceBuffer(capacity int) (BufferHandle, error) {
	if d.FailInstanceBuffer {
		return 0, fmt.Errorf("headless: instance buffer of %d refused", capacity)
	}
	d.instances = make([]Instance, capacity)
	return d.alloc("instance"), nil
}

// UpdateInstances copies the frame into host memory.
func (d *HeadlessDevice) UpdateInstances(buf BufferHandle, instances []Instance, counts Counts) error {
	if _, ok := d.buffers[buf]; !ok {
		return fmt.Errorf("%w: unknown buffer %d", ErrUploadFailed, buf)
	}
	if d.FailUploads {
		return fmt.Errorf("%w: device lost", ErrUploadFailed)
	}
	copy(d.instances, instances)
	d.counts = counts
	d.uploads++
	return nil
}

// BindInstanced records a draw setup.
func (d *HeadlessDevice) BindInstanced(vertices, instances, indices BufferHandle) error {
	for _, h := range []BufferHandle{vertices, instances, indices} {
		if _, ok := d.buffers[h]; !ok {
			return fmt.Errorf("headless: bind of unknown buffer %d", h)
		}
	}
	d.binds++
	return nil
}

// ReleaseBuffer forgets a buffer.
func (d *HeadlessDevice) ReleaseBuffer(buf BufferHandle) {
	delete(d.buffers, buf)
}

// LoadTexture hands out a fresh handle for key.
func (d *HeadlessDevice) LoadTexture(key string) (TextureHandle, error) {
	if d.FailTextures[key] {
		return 0, fmt.Errorf("headless: texture %q not found", key)
	}
	d.nextTexture++
	d.textures[d.nextTexture] = key
	return d.nextTexture, nil
}

// ReleaseTexture forgets a texture.
func (d *HeadlessDevice) ReleaseTexture(tex TextureHandle) {
	delete(d.textures, tex)
}

// Uploaded returns the last uploaded instance array and its counts.
func (d *HeadlessDevice) Uploaded() ([]Instance, Counts) { return d.instances, d.counts }

// Geometry returns the vertex and index data handed to the device.
func (d *HeadlessDevice) Geometry() ([]Vertex, []uint32) { return d.vertices, d.indices }

// Uploads returns the number of successful instance uploads.
func (d *HeadlessDevice) Uploads() int { return d.uploads }

// Binds returns the number of draw setups.
func (d *HeadlessDevice) Binds() int { return d.binds }

// LiveBuffers returns the number of buffers not yet released.
func (d *HeadlessDevice) LiveBuffers() int { return len(d.buffers) }

// LiveTextures returns the number of textures not yet released.
func (d *HeadlessDevice) LiveTextures() int { return len(d.textures) }

// TextureKey returns the key a handle was loaded from.
func (d *HeadlessDevice) TextureKey(tex TextureHandle) string { return d.textures[tex] }

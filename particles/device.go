package particles

// BufferHandle identifies a buffer created by a Device.
type BufferHandle uint32

// TextureHandle identifies a texture loaded by a TextureProvider.
type TextureHandle uint32

// Device is the graphics collaborator: it owns GPU buffers and the draw
// setup. The core never touches the rendering API directly.
type Device interface {
	// CreateVertexBuffer creates the static billboard geometry buffer.
	CreateVertexBuffer(vertices []Vertex) (BufferHandle, error)
	// CreateIndexBuffer creates the static index buffer.
	CreateIndexBuffer(indices []uint32) (BufferHandle, error)
	// CreateInstanceBuffer creates a dynamic buffer for capacity instances.
	CreateInstanceBuffer(capacity int) (BufferHandle, error)
	// UpdateInstances overwrites the whole instance buffer (map, copy, unmap).
	UpdateInstances(buf BufferHandle, instances []Instance, counts Counts) error
	// BindInstanced binds the vertex and instance streams plus the index
	// buffer with a triangle-list topology.
	BindInstanced(vertices, instances, indices BufferHandle) error
	// ReleaseBuffer frees a buffer. Releasing an unknown handle is a no-op.
	ReleaseBuffer(buf BufferHandle)
}

// TextureProvider resolves texture keys (usually file paths) to handles.
type TextureProvider interface {
	LoadTexture(key string) (TextureHandle, error)
	ReleaseTexture(tex TextureHandle)
}

// PhaseTimer receives phase boundaries during Frame. telemetry.PerfCollector
// implements it.
type PhaseTimer interface {
	StartPhase(phase string)
}

// Frame phase names reported to a PhaseTimer.
const (
	PhaseKill      = "kill"
	PhaseSpawn     = "spawn"
	PhaseIntegrate = "integrate"
	PhaseFlatten   = "flatten"
	PhaseUpload    = "upload"
)

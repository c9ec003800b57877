package particles

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// TextureKeys names the three textures a Manager loads.
type TextureKeys struct {
	Default string
	Rain    string
	Fire    string
}

// Manager owns the pool, the simulation and the GPU-side resources, and
// runs the per-frame pipeline: kill, spawn, integrate, flatten, upload.
type Manager struct {
	settings Settings
	rng      RandomSource

	device   Device
	textures TextureProvider
	timer    PhaseTimer

	pool    *Pool
	sim     *Simulation
	builder *Builder

	vertexBuf   BufferHandle
	indexBuf    BufferHandle
	instanceBuf BufferHandle
	buffers     []BufferHandle

	defaultTex TextureHandle
	rainTex    TextureHandle
	fireTex    TextureHandle
	loaded     []TextureHandle

	counts Counts
	events Events
	ready  bool
}

// NewManager creates an uninitialized manager.
func NewManager(settings Settings, rng RandomSource) *Manager {
	return &Manager{settings: settings, rng: rng}
}

// SetPhaseTimer installs a receiver for frame phase boundaries. Nil disables.
func (m *Manager) SetPhaseTimer(t PhaseTimer) { m.timer = t }

// Initialize loads textures, allocates the pool, creates the GPU buffers and
// seeds the rain. Any failure releases what was created and is fatal: Frame
// and Render must not be called afterwards.
func (m *Manager) Initialize(device Device, textures TextureProvider, keys TextureKeys) error {
	if m.ready {
		m.Shutdown()
	}
	if err := m.settings.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	m.device = device
	m.textures = textures

	if err := m.loadTextures(keys); err != nil {
		m.release()
		return err
	}

	pool, err := NewPool(m.settings.MaxParticles)
	if err != nil {
		m.release()
		return fmt.Errorf("allocating pool: %w", err)
	}
	m.pool = pool
	m.sim = NewSimulation(pool, m.settings, m.rng)
	m.builder = NewBuilder(m.settings.MaxParticles, m.settings.Rain.Count)

	if err := m.createBuffers(); err != nil {
		m.release()
		return err
	}

	m.sim.SeedRain()
	m.events = m.sim.TakeEvents()
	m.counts = m.builder.Build(m.pool)
	m.ready = true
	return nil
}

func (m *Manager) loadTextures(keys TextureKeys) error {
	load := func(key, name string, dst *TextureHandle) error {
		tex, err := m.textures.LoadTexture(key)
		if err != nil {
			return fmt.Errorf("loading %s texture %q: %w", name, key, err)
		}
		*dst = tex
		m.loaded = append(m.loaded, tex)
		return nil
	}
	if err := load(keys.Fire, "fire", &m.fireTex); err != nil {
		return err
	}
	if err := load(keys.Default, "default", &m.defaultTex); err != nil {
		return err
	}
	return load(keys.Rain, "rain", &m.rainTex)
}

func (m *Manager) createBuffers() error {
	vertices, indices := BuildGeometry(m.settings.Geometry)

	var err error
	if m.vertexBuf, err = m.device.CreateVertexBuffer(vertices); err != nil {
		return fmt.Errorf("creating vertex buffer: %w", err)
	}
	m.buffers = append(m.buffers, m.vertexBuf)

	if m.indexBuf, err = m.device.CreateIndexBuffer(indices); err != nil {
		return fmt.Errorf("creating index buffer: %w", err)
	}
	m.buffers = append(m.buffers, m.indexBuf)

	if m.instanceBuf, err = m.device.CreateInstanceBuffer(m.builder.Capacity()); err != nil {
		return fmt.Errorf("creating instance buffer: %w", err)
	}
	m.buffers = append(m.buffers, m.instanceBuf)
	return nil
}

// Shutdown releases buffers, the pool and textures. Safe to call twice.
func (m *Manager) Shutdown() {
	m.release()
}

func (m *Manager) release() {
	if m.device != nil {
		for _, b := range m.buffers {
			m.device.ReleaseBuffer(b)
		}
	}
	m.buffers = nil
	m.vertexBuf, m.indexBuf, m.instanceBuf = 0, 0, 0

	m.pool = nil
	m.sim = nil
	m.builder = nil

	if m.textures != nil {
		for _, t := range m.loaded {
			m.textures.ReleaseTexture(t)
		}
	}
	m.loaded = nil
	m.defaultTex, m.rainTex, m.fireTex = 0, 0, 0

	m.counts = Counts{}
	m.ready = false
}

// Frame advances the simulation by dt seconds and uploads the new instance
// array. Simulation changes are kept even when the upload fails; the next
// frame continues from the new state.
func (m *Manager) Frame(dt float32) error {
	if !m.ready {
		return ErrNotInitialized
	}

	m.phase(PhaseKill)
	m.sim.Kill()

	m.phase(PhaseSpawn)
	m.sim.EmitFire(m.sim.Settings().Fire.Anchor, dt)

	m.phase(PhaseIntegrate)
	m.sim.Integrate(dt)

	m.phase(PhaseFlatten)
	m.counts = m.builder.Build(m.pool)
	m.events = m.sim.TakeEvents()

	m.phase(PhaseUpload)
	if err := m.device.UpdateInstances(m.instanceBuf, m.builder.Instances(), m.counts); err != nil {
		return fmt.Errorf("frame upload: %w", err)
	}
	return nil
}

func (m *Manager) phase(name string) {
	if m.timer != nil {
		m.timer.StartPhase(name)
	}
}

// Render binds the geometry, instance and index buffers for drawing.
func (m *Manager) Render() error {
	if !m.ready {
		return ErrNotInitialized
	}
	return m.device.BindInstanced(m.vertexBuf, m.instanceBuf, m.indexBuf)
}

// EmitRing spawns an extra ring burst outside the per-frame pipeline, e.g.
// from user input. Returns the number of particles spawned.
func (m *Manager) EmitRing(center mgl32.Vec3, count int) int {
	if !m.ready {
		return 0
	}
	return m.sim.EmitRing(center, count)
}

// SetFireRate changes the fire emission rate.
func (m *Manager) SetFireRate(perSecond float32) {
	if m.sim != nil {
		m.sim.SetFireRate(perSecond)
	}
}

// SetGravity changes the gravity constant.
func (m *Manager) SetGravity(g float32) {
	if m.sim != nil {
		m.sim.SetGravity(g)
	}
}

// Settings returns the live settings, including runtime tuning.
func (m *Manager) Settings() Settings {
	if m.sim != nil {
		return m.sim.Settings()
	}
	return m.settings
}

// Ready reports whether Initialize succeeded.
func (m *Manager) Ready() bool { return m.ready }

// Pool exposes the arena for inspection. Nil before Initialize.
func (m *Manager) Pool() *Pool { return m.pool }

// Instances returns the instance array built by the last Frame.
func (m *Manager) Instances() []Instance {
	if m.builder == nil {
		return nil
	}
	return m.builder.Instances()
}

// Counts returns the layout of the last built frame.
func (m *Manager) Counts() Counts { return m.counts }

// LastEvents returns what happened during the last Frame (or Initialize).
func (m *Manager) LastEvents() Events { return m.events }

// DefaultTexture returns the texture for general particles.
func (m *Manager) DefaultTexture() TextureHandle { return m.defaultTex }

// RainTexture returns the texture for rain.
func (m *Manager) RainTexture() TextureHandle { return m.rainTex }

// FireTexture returns the texture for fire and smoke.
func (m *Manager) FireTexture() TextureHandle { return m.fireTex }

// IndexCount returns the index buffer length.
func (m *Manager) IndexCount() int { return IndexCount }

// VertexCount returns the vertex buffer length.
func (m *Manager) VertexCount() int { return VertexCount }

// RainInstanceCount returns the size of the rain block.
func (m *Manager) RainInstanceCount() int { return m.settings.Rain.Count }

// FireInstanceCount returns the number of live fire particles in the last frame.
func (m *Manager) FireInstanceCount() int { return m.counts.Fire }

// TotalInstanceCount returns the instance buffer capacity.
func (m *Manager) TotalInstanceCount() int { return m.settings.MaxParticles }

// ActiveInstanceCount returns the final write index of the last frame.
func (m *Manager) ActiveInstanceCount() int { return m.counts.Active }

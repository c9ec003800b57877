package particles

import "github.com/go-gl/mathgl/mgl32"

// Events counts what happened to the pool since the last TakeEvents call.
type Events struct {
	RainSeeded       int
	RainSplashes     int // rain drops that hit the ground and were recycled
	RingSpawned      int
	FireSpawned      int
	GeneralExpired   int
	FireExpired      int
	SmokeTransitions int
	SpawnShortfall   int // spawns skipped because the free list was empty
}

// Add accumulates o into e.
func (e *Events) Add(o Events) {
	e.RainSeeded += o.RainSeeded
	e.RainSplashes += o.RainSplashes
	e.RingSpawned += o.RingSpawned
	e.FireSpawned += o.FireSpawned
	e.GeneralExpired += o.GeneralExpired
	e.FireExpired += o.FireExpired
	e.SmokeTransitions += o.SmokeTransitions
	e.SpawnShortfall += o.SpawnShortfall
}

// Simulation runs the lifecycle engine and the effect generators over a
// pool. It is single-threaded: one caller drives it once per frame.
type Simulation struct {
	pool     *Pool
	settings Settings
	rng      RandomSource
	events   Events
}

// NewSimulation binds a pool, its settings and a random source.
func NewSimulation(pool *Pool, settings Settings, rng RandomSource) *Simulation {
	return &Simulation{pool: pool, settings: settings, rng: rng}
}

// Pool returns the arena the simulation mutates.
func (s *Simulation) Pool() *Pool { return s.pool }

// Settings returns the active settings.
func (s *Simulation) Settings() Settings { return s.settings }

// SetFireRate changes the fire emission rate in particles per second.
func (s *Simulation) SetFireRate(perSecond float32) {
	if perSecond < 0 {
		perSecond = 0
	}
	s.settings.Fire.ParticlesPerSecond = perSecond
}

// SetGravity changes the gravity constant applied to general and rain lists.
func (s *Simulation) SetGravity(g float32) { s.settings.Gravity = g }

// TakeEvents returns the accumulated events and clears them.
func (s *Simulation) TakeEvents() Events {
	e := s.events
	s.events = Events{}
	return e
}

// Step advances one frame in the canonical order: kill and recycle, emit
// fire at the configured anchor, then integrate.
func (s *Simulation) Step(dt float32) {
	s.Kill()
	s.EmitFire(s.settings.Fire.Anchor, dt)
	s.Integrate(dt)
}

// Integrate applies gravity, moves every active particle and ages the
// general and fire lists. Lists are processed general, rain, fire.
func (s *Simulation) Integrate(dt float32) {
	g := s.settings.Gravity * dt
	b := s.settings.Bounce

	s.pool.Each(ListGeneral, func(_ Index, pt *Particle) {
		if pt.Position.Y() > 0 {
			pt.Velocity[1] += g
		}
		move(pt, dt)
		pt.Life -= dt

		if pt.Position.Y() < 0 {
			pt.Position[1] = b.RestHeight
			pt.Velocity[1] *= b.Restitution
			pt.Velocity[0] *= b.Friction
			pt.Velocity[2] *= b.Friction
		}
	})

	// Rain never ages; it recycles on height in Kill.
	s.pool.Each(ListRain, func(_ Index, pt *Particle) {
		pt.Velocity[1] += g
		move(pt, dt)
	})

	// Fire ignores gravity.
	s.pool.Each(ListFire, func(_ Index, pt *Particle) {
		move(pt, dt)
		pt.Life -= dt
	})
}

func move(pt *Particle, dt float32) {
	pt.Position = pt.Position.Add(pt.Velocity.Mul(dt))
}

// Kill releases expired general and fire particles, recycles rain that has
// passed below the ground and turns aging fire into smoke.
func (s *Simulation) Kill() {
	s.events.GeneralExpired += s.pool.Sweep(ListGeneral, func(_ Index, pt *Particle) bool {
		return pt.Life >= 0
	})

	rain := s.settings.Rain
	s.pool.Each(ListRain, func(_ Index, pt *Particle) {
		if pt.Position.Y() >= 0 {
			return
		}
		s.EmitRing(mgl32.Vec3{pt.Position.X(), 0, pt.Position.Z()}, rain.SplashParticles)
		pt.Position[1] = rain.SpawnHeight
		pt.Velocity[1] = rain.SpawnVelocityY
		s.events.RainSplashes++
	})

	fire := s.settings.Fire
	s.events.FireExpired += s.pool.Sweep(ListFire, func(_ Index, pt *Particle) bool {
		if pt.Life < 0 {
			return false
		}
		if pt.Life < fire.SmokeLifetime && pt.Color != fire.SmokeColor {
			pt.Color = fire.SmokeColor
			s.events.SmokeTransitions++
		}
		return true
	})
}

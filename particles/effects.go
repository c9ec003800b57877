package particles

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// SeedRain spawns the configured number of rain drops at random points in
// the rain box, each falling at the spawn velocity. It stops early without
// error when the pool runs out. Returns the number spawned.
func (s *Simulation) SeedRain() int {
	r := s.settings.Rain
	xSteps := gridSteps(r.XMax-r.XMin, r.PositionScale)
	ySteps := gridSteps(r.SpawnHeight, r.PositionScale)
	zSteps := gridSteps(r.ZFar-r.ZNear, r.PositionScale)

	spawned := 0
	for i := 0; i < r.Count; i++ {
		pos := mgl32.Vec3{
			r.XMin + r.PositionScale*float32(s.rng.IntRange(0, xSteps)),
			r.SpawnHeight - r.PositionScale*float32(s.rng.IntRange(0, ySteps)),
			r.ZNear + r.PositionScale*float32(s.rng.IntRange(0, zSteps)),
		}

		idx, ok := s.pool.Acquire()
		if !ok {
			s.events.SpawnShortfall += r.Count - i
			break
		}
		*s.pool.At(idx) = Particle{
			Position: pos,
			Color:    r.Color,
			Alpha:    1,
			Velocity: mgl32.Vec3{0, r.SpawnVelocityY, 0},
			Life:     0,
		}
		s.pool.InsertSorted(idx, ListRain)
		spawned++
	}
	s.events.RainSeeded += spawned
	return spawned
}

// EmitFire spawns floor(rate*dt) fire particles jittered around anchor.
// Returns the number spawned.
func (s *Simulation) EmitFire(anchor mgl32.Vec3, dt float32) int {
	f := s.settings.Fire
	count := int(f.ParticlesPerSecond * dt)

	spawned := 0
	for i := 0; i < count; i++ {
		// Draw order matters for seeded reproducibility: x, z, vx, life.
		pos := mgl32.Vec3{
			anchor.X() + f.XJitterScale*float32(s.rng.IntRange(0, f.XJitterMax)),
			anchor.Y(),
			anchor.Z() - f.ZJitterScale*float32(s.rng.IntRange(0, f.ZJitterMax)),
		}
		vx := f.VXJitterScale * float32(s.rng.IntRange(-f.VXJitterRange, f.VXJitterRange))
		life := f.BaseLifetime + f.LifetimeScale*float32(s.rng.IntRange(0, f.LifetimeJitterMax))

		idx, ok := s.pool.Acquire()
		if !ok {
			s.events.SpawnShortfall += count - i
			break
		}
		*s.pool.At(idx) = Particle{
			Position: pos,
			Color:    f.Color,
			Alpha:    1,
			Velocity: mgl32.Vec3{vx, f.VelocityY, 0},
			Life:     life,
		}
		s.pool.InsertSorted(idx, ListFire)
		spawned++
	}
	s.events.FireSpawned += spawned
	return spawned
}

// EmitRing spawns count particles on a circle around center, each moving
// radially outward in the XZ plane. Returns the number spawned.
func (s *Simulation) EmitRing(center mgl32.Vec3, count int) int {
	r := s.settings.Ring

	spawned := 0
	for i := 0; i < count; i++ {
		angle := mgl32.DegToRad(360 * float32(i) / float32(count))
		sin, cos := math.Sincos(float64(angle))

		idx, ok := s.pool.Acquire()
		if !ok {
			s.events.SpawnShortfall += count - i
			break
		}
		*s.pool.At(idx) = Particle{
			Position: center,
			Color:    r.Color,
			Alpha:    1,
			Velocity: mgl32.Vec3{r.Speed * float32(cos), 0, r.Speed * float32(sin)},
			Life:     r.Lifetime,
		}
		s.pool.InsertSorted(idx, ListGeneral)
		spawned++
	}
	s.events.RingSpawned += spawned
	return spawned
}

// gridSteps converts a span into the inclusive upper bound of an integer
// draw that is scaled back by step.
func gridSteps(span, step float32) int {
	if span <= 0 || step <= 0 {
		return 0
	}
	return int(math.Round(float64(span / step)))
}

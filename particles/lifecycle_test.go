package particles

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSim(t *testing.T, capacity int, rng RandomSource) *Simulation {
	t.Helper()
	s := DefaultSettings()
	s.MaxParticles = capacity
	if s.Rain.Count > capacity {
		s.Rain.Count = capacity
	}
	return NewSimulation(newTestPool(t, capacity), s, rng)
}

func TestSeedRainFillsSmallPool(t *testing.T) {
	sim := newTestSim(t, 3, NewRand(7))
	p := sim.Pool()

	assert.Equal(t, 3, sim.SeedRain())
	assert.Equal(t, [4]int{0, 0, 3, 0}, listLens(p))

	// A fourth spawn finds no free slot and changes nothing.
	assert.Zero(t, sim.EmitRing(at(0, 0, 0), 1))
	assert.Equal(t, [4]int{0, 0, 3, 0}, listLens(p))

	ev := sim.TakeEvents()
	assert.Equal(t, 3, ev.RainSeeded)
	assert.Equal(t, 1, ev.SpawnShortfall)
	require.NoError(t, p.Validate())
}

func TestSeedRainStopsOnExhaustion(t *testing.T) {
	sim := newTestSim(t, 4, NewRand(1))
	sim.settings.Rain.Count = 10

	assert.Equal(t, 4, sim.SeedRain())
	assert.Equal(t, 6, sim.TakeEvents().SpawnShortfall)
	require.NoError(t, sim.Pool().Validate())
}

func TestSeedRainStaysInsideBox(t *testing.T) {
	sim := newTestSim(t, 500, NewRand(99))
	r := sim.Settings().Rain
	require.Equal(t, 500, sim.SeedRain())

	sim.Pool().Each(ListRain, func(_ Index, pt *Particle) {
		assert.GreaterOrEqual(t, pt.Position.X(), r.XMin)
		assert.LessOrEqual(t, pt.Position.X(), r.XMax+1e-4)
		assert.GreaterOrEqual(t, pt.Position.Y(), float32(-1e-4))
		assert.LessOrEqual(t, pt.Position.Y(), r.SpawnHeight)
		assert.GreaterOrEqual(t, pt.Position.Z(), r.ZNear)
		assert.LessOrEqual(t, pt.Position.Z(), r.ZFar+1e-4)
		assert.Equal(t, r.SpawnVelocityY, pt.Velocity.Y())
		assert.Zero(t, pt.Life)
	})
	requireNonIncreasingZ(t, sim.Pool(), ListRain)
}

func TestSeedRainScriptedPositions(t *testing.T) {
	// x, y, z draws for a single drop.
	sim := newTestSim(t, 1, &scriptedSource{values: []int{150, 50, 100}})
	sim.settings.Rain.Count = 1
	require.Equal(t, 1, sim.SeedRain())

	pt := sim.Pool().At(sim.Pool().Head(ListRain))
	assert.InDelta(t, 5.0, pt.Position.X(), 1e-5)  // -10 + 0.1*150
	assert.InDelta(t, 15.0, pt.Position.Y(), 1e-5) // 20 - 0.1*50
	assert.InDelta(t, 25.0, pt.Position.Z(), 1e-5) // 15 + 0.1*100
}

func TestEmitFireCountAndJitter(t *testing.T) {
	// x, z, vx, life draws, repeated for every particle.
	sim := newTestSim(t, 200, &scriptedSource{values: []int{10, 40, -10, 15}})
	sim.settings.Fire.ParticlesPerSecond = 150

	n := sim.EmitFire(at(3, 0, 28), 0.5)
	assert.Equal(t, 75, n)
	assert.Equal(t, 75, sim.Pool().Len(ListFire))

	pt := sim.Pool().At(sim.Pool().Head(ListFire))
	assert.InDelta(t, 3.4, pt.Position.X(), 1e-5)  // 3 + 0.04*10
	assert.InDelta(t, 0.0, pt.Position.Y(), 1e-5)  // anchor height
	assert.InDelta(t, 27.5, pt.Position.Z(), 1e-5) // 28 - 0.0125*40
	assert.InDelta(t, -0.15, pt.Velocity.X(), 1e-5)
	assert.InDelta(t, 1.5, pt.Velocity.Y(), 1e-5)
	assert.InDelta(t, 7.5, pt.Life, 1e-5) // 6 + 0.1*15
	assert.Equal(t, sim.Settings().Fire.Color, pt.Color)

	assert.Equal(t, 75, sim.TakeEvents().FireSpawned)
}

func TestEmitFireFloorsFractionalCount(t *testing.T) {
	sim := newTestSim(t, 50, NewRand(3))
	sim.settings.Fire.ParticlesPerSecond = 150

	assert.Equal(t, 2, sim.EmitFire(at(0, 0, 0), 1.0/60.0))
	assert.Zero(t, sim.EmitFire(at(0, 0, 0), 0.001))
}

func TestEmitFireStopsOnExhaustion(t *testing.T) {
	sim := newTestSim(t, 5, NewRand(3))
	sim.settings.Fire.ParticlesPerSecond = 100

	assert.Equal(t, 5, sim.EmitFire(at(0, 0, 0), 0.1))
	assert.Equal(t, 5, sim.TakeEvents().SpawnShortfall)
	require.NoError(t, sim.Pool().Validate())
}

func TestEmitRingIsEvenlySpaced(t *testing.T) {
	sim := newTestSim(t, 8, NewRand(1))
	ring := sim.Settings().Ring

	require.Equal(t, 4, sim.EmitRing(at(1, 0, 2), 4))

	var vels [][2]float32
	sim.Pool().Each(ListGeneral, func(_ Index, pt *Particle) {
		assert.Equal(t, at(1, 0, 2), pt.Position)
		assert.Equal(t, ring.Lifetime, pt.Life)
		assert.Equal(t, ring.Color, pt.Color)
		assert.Zero(t, pt.Velocity.Y())
		speed := math.Hypot(float64(pt.Velocity.X()), float64(pt.Velocity.Z()))
		assert.InDelta(t, ring.Speed, speed, 1e-5)
		vels = append(vels, [2]float32{pt.Velocity.X(), pt.Velocity.Z()})
	})

	// Equal Z, so list order is spawn order: 0, 90, 180, 270 degrees.
	want := [][2]float32{{0.35, 0}, {0, 0.35}, {-0.35, 0}, {0, -0.35}}
	require.Len(t, vels, len(want))
	for i := range want {
		assert.InDelta(t, want[i][0], vels[i][0], 1e-5, "vx %d", i)
		assert.InDelta(t, want[i][1], vels[i][1], 1e-5, "vz %d", i)
	}
}

func TestGeneralParticleBouncesOffGround(t *testing.T) {
	sim := newTestSim(t, 2, NewRand(1))
	sim.SetGravity(-3.5)
	idx := place(t, sim.Pool(), ListGeneral, Particle{
		Position: at(0, 0.05, 0),
		Velocity: at(1, -2.0, 1),
		Life:     5,
	})

	sim.Integrate(0.1)

	pt := sim.Pool().At(idx)
	assert.InDelta(t, 0.1, pt.Position.Y(), 1e-6, "clamped to rest height")
	assert.InDelta(t, 0.94, pt.Velocity.Y(), 1e-5, "(-2 - 0.35) * -0.4")
	assert.InDelta(t, 0.6, pt.Velocity.X(), 1e-6)
	assert.InDelta(t, 0.6, pt.Velocity.Z(), 1e-6)
	assert.InDelta(t, 4.9, pt.Life, 1e-5)
}

func TestGeneralParticleOnGroundSkipsGravity(t *testing.T) {
	sim := newTestSim(t, 2, NewRand(1))
	idx := place(t, sim.Pool(), ListGeneral, Particle{
		Position: at(0, 0, 0),
		Velocity: at(0.35, 0, 0),
		Life:     0.5,
	})

	sim.Integrate(0.1)

	pt := sim.Pool().At(idx)
	assert.Zero(t, pt.Velocity.Y())
	assert.InDelta(t, 0.035, pt.Position.X(), 1e-6)
}

func TestGeneralExpiryReturnsSlot(t *testing.T) {
	sim := newTestSim(t, 3, NewRand(1))
	p := sim.Pool()
	keep := place(t, p, ListGeneral, Particle{Position: at(0, 1, 2), Life: 5})
	doomed := place(t, p, ListGeneral, Particle{Position: at(0, 1, 1), Life: 0.05})

	sim.Integrate(0.1)
	sim.Kill()

	assert.Equal(t, 1, p.Len(ListGeneral))
	assert.Equal(t, keep, p.Head(ListGeneral))
	assert.Equal(t, 1, sim.TakeEvents().GeneralExpired)

	got, ok := p.Acquire()
	require.True(t, ok)
	assert.Equal(t, doomed, got, "expired slot is the next one handed out")
}

func TestRainRecyclesInPlaceAndSplashes(t *testing.T) {
	sim := newTestSim(t, 20, NewRand(1))
	p := sim.Pool()
	rain := sim.Settings().Rain
	idx := place(t, p, ListRain, Particle{
		Position: at(2, 0.01, 30),
		Velocity: at(0, rain.SpawnVelocityY, 0),
	})

	sim.Integrate(0.1)
	require.Less(t, p.At(idx).Position.Y(), float32(0))
	sim.Kill()

	pt := p.At(idx)
	assert.Equal(t, ListRain, p.Owner(idx), "rain is never released")
	assert.Equal(t, 1, p.Len(ListRain))
	assert.Equal(t, rain.SpawnHeight, pt.Position.Y())
	assert.Equal(t, rain.SpawnVelocityY, pt.Velocity.Y())
	assert.InDelta(t, 2.0, pt.Position.X(), 1e-6)
	assert.InDelta(t, 30.0, pt.Position.Z(), 1e-6)

	assert.Equal(t, rain.SplashParticles, p.Len(ListGeneral))
	p.Each(ListGeneral, func(_ Index, ring *Particle) {
		assert.Equal(t, at(2, 0, 30), ring.Position)
	})

	ev := sim.TakeEvents()
	assert.Equal(t, 1, ev.RainSplashes)
	assert.Equal(t, rain.SplashParticles, ev.RingSpawned)
	require.NoError(t, p.Validate())
}

func TestRainDoesNotAge(t *testing.T) {
	sim := newTestSim(t, 2, NewRand(1))
	idx := place(t, sim.Pool(), ListRain, Particle{Position: at(0, 10, 0)})

	for i := 0; i < 10; i++ {
		sim.Integrate(0.1)
		sim.Kill()
	}
	assert.Zero(t, sim.Pool().At(idx).Life)
	assert.Equal(t, 1, sim.Pool().Len(ListRain))
}

func TestFireTurnsToSmokeThenExpires(t *testing.T) {
	sim := newTestSim(t, 4, NewRand(1))
	p := sim.Pool()
	fire := sim.Settings().Fire
	require.Equal(t, float32(3.0), fire.SmokeLifetime)

	idx := place(t, p, ListFire, Particle{
		Position: at(0, 0, 0),
		Velocity: at(0, 1.5, 0),
		Color:    fire.Color,
		Life:     6.0,
	})

	const dt = 0.5
	elapsed := float32(0)
	smokeAt := float32(-1)
	for step := 0; step < 20 && p.Owner(idx) == ListFire; step++ {
		sim.Integrate(dt)
		elapsed += dt
		sim.Kill()

		if p.Owner(idx) != ListFire {
			break
		}
		pt := p.At(idx)
		if pt.Life < fire.SmokeLifetime {
			assert.Equal(t, fire.SmokeColor, pt.Color, "life %.2f", pt.Life)
			if smokeAt < 0 {
				smokeAt = elapsed
			}
		} else {
			assert.Equal(t, fire.Color, pt.Color, "life %.2f", pt.Life)
		}
		assert.Zero(t, pt.Velocity.X(), "fire ignores gravity and keeps its velocity")
		assert.Equal(t, float32(1.5), pt.Velocity.Y())
	}

	assert.InDelta(t, 3.5, smokeAt, 1e-6, "smoke starts when life first drops below 3")
	assert.InDelta(t, 6.5, elapsed, 1e-6, "removed once life drops below 0")
	assert.Equal(t, ListFree, p.Owner(idx))
	assert.Zero(t, p.Len(ListFire))

	ev := sim.TakeEvents()
	assert.Equal(t, 1, ev.SmokeTransitions)
	assert.Equal(t, 1, ev.FireExpired)

	got, ok := p.Acquire()
	require.True(t, ok)
	assert.Equal(t, idx, got)
}

func TestStepPreservesPartitionAndOrder(t *testing.T) {
	s := DefaultSettings()
	s.MaxParticles = 600
	s.Rain.Count = 150
	s.Rain.SpawnHeight = 2
	sim := NewSimulation(newTestPool(t, s.MaxParticles), s, NewRand(42))
	sim.SeedRain()

	for frame := 0; frame < 900; frame++ {
		sim.Step(1.0 / 60.0)

		require.NoError(t, sim.Pool().Validate(), "frame %d", frame)
		lens := listLens(sim.Pool())
		require.Equal(t, s.MaxParticles, lens[0]+lens[1]+lens[2]+lens[3])
		require.Equal(t, 150, lens[2], "rain count is constant")

		// Rain and fire never move in Z, so spawn order stays valid.
		requireNonIncreasingZ(t, sim.Pool(), ListRain)
		requireNonIncreasingZ(t, sim.Pool(), ListFire)
	}

	ev := sim.TakeEvents()
	assert.Positive(t, ev.RainSplashes)
	assert.Positive(t, ev.FireSpawned)
	assert.Positive(t, ev.SpawnShortfall, "600 slots cannot hold 150 rain, splashes and 10s of fire")
}

func TestSetFireRateClampsNegative(t *testing.T) {
	sim := newTestSim(t, 2, NewRand(1))
	sim.SetFireRate(-4)
	assert.Zero(t, sim.Settings().Fire.ParticlesPerSecond)
}

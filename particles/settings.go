package particles

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Settings holds every tunable of the particle core. The config package fills
// it from YAML; DefaultSettings mirrors the embedded defaults.
type Settings struct {
	MaxParticles int
	Gravity      float32

	Bounce   BounceSettings
	Rain     RainSettings
	Fire     FireSettings
	Ring     RingSettings
	Geometry GeometrySettings
}

// BounceSettings controls ground contact of general-list particles.
type BounceSettings struct {
	RestHeight  float32 // Y a particle is clamped to after passing below the ground
	Restitution float32 // multiplies velocity Y on impact (negative flips direction)
	Friction    float32 // multiplies velocity X and Z on impact
}

// RainSettings controls the rain initializer and rain recycling.
type RainSettings struct {
	Count          int
	SpawnHeight    float32
	SpawnVelocityY float32
	XMin, XMax     float32
	ZNear, ZFar    float32
	PositionScale  float32 // spacing of the integer grid rain positions are drawn from
	Color          mgl32.Vec3

	SplashParticles int // ring burst size on ground contact
}

// FireSettings controls the fire emitter and the fire-to-smoke transition.
type FireSettings struct {
	ParticlesPerSecond float32
	Anchor             mgl32.Vec3
	VelocityY          float32

	BaseLifetime      float32
	LifetimeScale     float32
	LifetimeJitterMax int

	XJitterScale  float32
	XJitterMax    int
	ZJitterScale  float32
	ZJitterMax    int
	VXJitterScale float32
	VXJitterRange int // velocity X draw is [-VXJitterRange, VXJitterRange]

	Color         mgl32.Vec3
	SmokeColor    mgl32.Vec3
	SmokeLifetime float32
}

// RingSettings controls ring bursts.
type RingSettings struct {
	Speed    float32
	Lifetime float32
	Color    mgl32.Vec3
}

// GeometrySettings holds the half extents of the three billboard quads.
type GeometrySettings struct {
	GeneralHalfSize float32
	RainHalfWidth   float32
	RainStretch     float32
	FireHalfSize    float32
}

// DefaultSettings returns the stock scene: 10000 slots, 1000 rain drops,
// a 150/s campfire and 8-particle splashes.
func DefaultSettings() Settings {
	return Settings{
		MaxParticles: 10000,
		Gravity:      -3.5,
		Bounce: BounceSettings{
			RestHeight:  0.1,
			Restitution: -0.4,
			Friction:    0.6,
		},
		Rain: RainSettings{
			Count:           1000,
			SpawnHeight:     20,
			SpawnVelocityY:  -3,
			XMin:            -10,
			XMax:            20,
			ZNear:           15,
			ZFar:            50,
			PositionScale:   0.1,
			Color:           mgl32.Vec3{0.5, 0.5, 1.0},
			SplashParticles: 8,
		},
		Fire: FireSettings{
			ParticlesPerSecond: 150,
			Anchor:             mgl32.Vec3{3, 0, 28},
			VelocityY:          1.5,
			BaseLifetime:       6.0,
			LifetimeScale:      0.1,
			LifetimeJitterMax:  15,
			XJitterScale:       0.04,
			XJitterMax:         20,
			ZJitterScale:       0.0125,
			ZJitterMax:         80,
			VXJitterScale:      0.015,
			VXJitterRange:      10,
			Color:              mgl32.Vec3{2.0, 0.8, 0.1},
			SmokeColor:         mgl32.Vec3{0.1, 0.1, 0.1},
			SmokeLifetime:      3.0,
		},
		Ring: RingSettings{
			Speed:    0.35,
			Lifetime: 0.5,
			Color:    mgl32.Vec3{0.5, 0.5, 1.0},
		},
		Geometry: GeometrySettings{
			GeneralHalfSize: 0.015,
			RainHalfWidth:   0.010,
			RainStretch:     16,
			FireHalfSize:    0.20,
		},
	}
}

// Validate reports settings the core cannot run with.
func (s Settings) Validate() error {
	if s.MaxParticles <= 0 {
		return fmt.Errorf("%w: max particles %d", ErrInvalidCapacity, s.MaxParticles)
	}
	if s.Rain.Count < 0 {
		return fmt.Errorf("rain count must not be negative, got %d", s.Rain.Count)
	}
	if s.Rain.Count > s.MaxParticles {
		return fmt.Errorf("rain count %d exceeds max particles %d", s.Rain.Count, s.MaxParticles)
	}
	if s.Rain.PositionScale <= 0 {
		return fmt.Errorf("rain position scale must be positive, got %v", s.Rain.PositionScale)
	}
	if s.Rain.XMax < s.Rain.XMin || s.Rain.ZFar < s.Rain.ZNear {
		return fmt.Errorf("rain box is inverted: x [%v, %v] z [%v, %v]",
			s.Rain.XMin, s.Rain.XMax, s.Rain.ZNear, s.Rain.ZFar)
	}
	if s.Rain.SplashParticles < 0 {
		return fmt.Errorf("splash particle count must not be negative, got %d", s.Rain.SplashParticles)
	}
	if s.Fire.ParticlesPerSecond < 0 {
		return fmt.Errorf("fire rate must not be negative, got %v", s.Fire.ParticlesPerSecond)
	}
	if s.Fire.LifetimeJitterMax < 0 || s.Fire.XJitterMax < 0 || s.Fire.ZJitterMax < 0 || s.Fire.VXJitterRange < 0 {
		return fmt.Errorf("fire jitter bounds must not be negative")
	}
	return nil
}

// SteadyCount is the live fire population the emitter settles into:
// rate times mean lifetime.
func (f FireSettings) SteadyCount() float32 {
	avgLife := f.BaseLifetime + f.LifetimeScale*float32(f.LifetimeJitterMax)/2
	return f.ParticlesPerSecond * avgLife
}

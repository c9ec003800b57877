// Package config provides configuration loading and access for the particle scene.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/drizzle/audio"
	"github.com/pthm-cable/drizzle/particles"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all scene configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Pool      PoolConfig      `yaml:"pool"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Bounce    BounceConfig    `yaml:"bounce"`
	Rain      RainConfig      `yaml:"rain"`
	Fire      FireConfig      `yaml:"fire"`
	Ring      RingConfig      `yaml:"ring"`
	Geometry  GeometryConfig  `yaml:"geometry"`
	Textures  TexturesConfig  `yaml:"textures"`
	Camera    CameraConfig    `yaml:"camera"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Audio     AudioConfig     `yaml:"audio"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// PoolConfig sizes the particle arena and the instance buffer.
type PoolConfig struct {
	MaxParticles int `yaml:"max_particles"`
}

// PhysicsConfig holds simulation physics parameters.
type PhysicsConfig struct {
	DT      float64 `yaml:"dt"`      // Fixed step for headless runs (windowed mode uses frame time)
	Gravity float64 `yaml:"gravity"` // Acceleration on Y for general and rain particles
}

// BounceConfig holds ground contact parameters for splash particles.
type BounceConfig struct {
	RestHeight  float64 `yaml:"rest_height"`
	Restitution float64 `yaml:"restitution"` // Multiplies velocity Y on impact
	Friction    float64 `yaml:"friction"`    // Multiplies velocity X/Z on impact
}

// RainConfig holds rain box and recycling parameters.
type RainConfig struct {
	Count           int        `yaml:"count"`
	SpawnHeight     float64    `yaml:"spawn_height"`
	SpawnVelocityY  float64    `yaml:"spawn_velocity_y"`
	XMin            float64    `yaml:"x_min"`
	XMax            float64    `yaml:"x_max"`
	ZNear           float64    `yaml:"z_near"`
	ZFar            float64    `yaml:"z_far"`
	PositionScale   float64    `yaml:"position_scale"` // Grid spacing of random rain positions
	Color           [3]float64 `yaml:"color"`
	SplashParticles int        `yaml:"splash_particles"`
}

// FireConfig holds fire emitter parameters. Each *_scale multiplies an
// integer draw bounded by the matching *_max or *_range.
type FireConfig struct {
	ParticlesPerSecond float64    `yaml:"particles_per_second"`
	Anchor             [3]float64 `yaml:"anchor"`
	VelocityY          float64    `yaml:"velocity_y"`
	BaseLifetime       float64    `yaml:"base_lifetime"`
	LifetimeScale      float64    `yaml:"lifetime_scale"`
	LifetimeJitterMax  int        `yaml:"lifetime_jitter_max"`
	XJitterScale       float64    `yaml:"x_jitter_scale"`
	XJitterMax         int        `yaml:"x_jitter_max"`
	ZJitterScale       float64    `yaml:"z_jitter_scale"`
	ZJitterMax         int        `yaml:"z_jitter_max"`
	VXJitterScale      float64    `yaml:"vx_jitter_scale"`
	VXJitterRange      int        `yaml:"vx_jitter_range"`
	Color              [3]float64 `yaml:"color"`
	SmokeColor         [3]float64 `yaml:"smoke_color"`
	SmokeLifetime      float64    `yaml:"smoke_lifetime"` // Remaining life below which fire turns to smoke
}

// RingConfig holds splash ring parameters.
type RingConfig struct {
	Speed          float64    `yaml:"speed"`
	Lifetime       float64    `yaml:"lifetime"`
	Color          [3]float64 `yaml:"color"`
	BurstParticles int        `yaml:"burst_particles"` // Size of user-triggered bursts
}

// GeometryConfig holds billboard half extents.
type GeometryConfig struct {
	GeneralHalfSize float64 `yaml:"general_half_size"`
	RainHalfWidth   float64 `yaml:"rain_half_width"`
	RainStretch     float64 `yaml:"rain_stretch"`
	FireHalfSize    float64 `yaml:"fire_half_size"`
}

// TexturesConfig holds texture file paths. Empty paths use a generated
// white texture.
type TexturesConfig struct {
	Default string `yaml:"default"`
	Rain    string `yaml:"rain"`
	Fire    string `yaml:"fire"`
}

// CameraConfig holds the orbit camera used by the viewers.
type CameraConfig struct {
	Target     [3]float64 `yaml:"target"`
	Distance   float64    `yaml:"distance"`
	Yaw        float64    `yaml:"yaw"`   // Degrees around Y
	Pitch      float64    `yaml:"pitch"` // Degrees above the horizon
	FovY       float64    `yaml:"fovy"`
	OrbitSpeed float64    `yaml:"orbit_speed"` // Degrees per second of automatic yaw
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
	ValidateEvery       int     `yaml:"validate_every"` // Check pool invariants every N frames (0 = off)
}

// AudioConfig holds the ambient soundscape levels. Levels are linear gains
// applied at full rain or a steady fire.
type AudioConfig struct {
	Enabled    bool    `yaml:"enabled"`
	SampleRate int     `yaml:"sample_rate"`
	Volume     float64 `yaml:"volume"`
	RainLevel  float64 `yaml:"rain_level"`
	FireLevel  float64 `yaml:"fire_level"`
	Thunder    float64 `yaml:"thunder"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32         float32 // Physics.DT as float32
	RainBoxWidth float32 // Rain.XMax - Rain.XMin
	RainBoxDepth float32 // Rain.ZFar - Rain.ZNear
	FramesPerWin int     // Telemetry.StatsWindow in fixed steps
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()

	if err := cfg.Particles().Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Physics.DT)
	c.Derived.RainBoxWidth = float32(c.Rain.XMax - c.Rain.XMin)
	c.Derived.RainBoxDepth = float32(c.Rain.ZFar - c.Rain.ZNear)

	c.Derived.FramesPerWin = 1
	if c.Physics.DT > 0 && c.Telemetry.StatsWindow > 0 {
		if n := int(c.Telemetry.StatsWindow / c.Physics.DT); n > 1 {
			c.Derived.FramesPerWin = n
		}
	}
}

// Particles converts the loaded config into core settings.
func (c *Config) Particles() particles.Settings {
	return particles.Settings{
		MaxParticles: c.Pool.MaxParticles,
		Gravity:      float32(c.Physics.Gravity),
		Bounce: particles.BounceSettings{
			RestHeight:  float32(c.Bounce.RestHeight),
			Restitution: float32(c.Bounce.Restitution),
			Friction:    float32(c.Bounce.Friction),
		},
		Rain: particles.RainSettings{
			Count:           c.Rain.Count,
			SpawnHeight:     float32(c.Rain.SpawnHeight),
			SpawnVelocityY:  float32(c.Rain.SpawnVelocityY),
			XMin:            float32(c.Rain.XMin),
			XMax:            float32(c.Rain.XMax),
			ZNear:           float32(c.Rain.ZNear),
			ZFar:            float32(c.Rain.ZFar),
			PositionScale:   float32(c.Rain.PositionScale),
			Color:           vec3(c.Rain.Color),
			SplashParticles: c.Rain.SplashParticles,
		},
		Fire: particles.FireSettings{
			ParticlesPerSecond: float32(c.Fire.ParticlesPerSecond),
			Anchor:             vec3(c.Fire.Anchor),
			VelocityY:          float32(c.Fire.VelocityY),
			BaseLifetime:       float32(c.Fire.BaseLifetime),
			LifetimeScale:      float32(c.Fire.LifetimeScale),
			LifetimeJitterMax:  c.Fire.LifetimeJitterMax,
			XJitterScale:       float32(c.Fire.XJitterScale),
			XJitterMax:         c.Fire.XJitterMax,
			ZJitterScale:       float32(c.Fire.ZJitterScale),
			ZJitterMax:         c.Fire.ZJitterMax,
			VXJitterScale:      float32(c.Fire.VXJitterScale),
			VXJitterRange:      c.Fire.VXJitterRange,
			Color:              vec3(c.Fire.Color),
			SmokeColor:         vec3(c.Fire.SmokeColor),
			SmokeLifetime:      float32(c.Fire.SmokeLifetime),
		},
		Ring: particles.RingSettings{
			Speed:    float32(c.Ring.Speed),
			Lifetime: float32(c.Ring.Lifetime),
			Color:    vec3(c.Ring.Color),
		},
		Geometry: particles.GeometrySettings{
			GeneralHalfSize: float32(c.Geometry.GeneralHalfSize),
			RainHalfWidth:   float32(c.Geometry.RainHalfWidth),
			RainStretch:     float32(c.Geometry.RainStretch),
			FireHalfSize:    float32(c.Geometry.FireHalfSize),
		},
	}
}

// TextureKeys returns the texture paths in the form the particle manager loads them.
func (c *Config) TextureKeys() particles.TextureKeys {
	return particles.TextureKeys{
		Default: c.Textures.Default,
		Rain:    c.Textures.Rain,
		Fire:    c.Textures.Fire,
	}
}

// AudioSettings converts the audio section into mixer settings.
func (c *Config) AudioSettings() audio.Settings {
	return audio.Settings{
		SampleRate: c.Audio.SampleRate,
		Volume:     c.Audio.Volume,
		RainLevel:  c.Audio.RainLevel,
		FireLevel:  c.Audio.FireLevel,
		Thunder:    c.Audio.Thunder,
	}
}

func vec3(v [3]float64) mgl32.Vec3 {
	return mgl32.Vec3{float32(v[0]), float32(v[1]), float32(v[2])}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

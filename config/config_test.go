package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/drizzle/audio"
	"github.com/pthm-cable/drizzle/particles"
)

func TestDefaultsMatchCoreDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	got := cfg.Particles()
	want := particles.DefaultSettings()

	assert.Equal(t, want.MaxParticles, got.MaxParticles)
	assert.Equal(t, want.Gravity, got.Gravity)
	assert.Equal(t, want.Bounce, got.Bounce)
	assert.Equal(t, want.Rain, got.Rain)
	assert.Equal(t, want.Fire, got.Fire)
	assert.Equal(t, want.Ring, got.Ring)
	assert.Equal(t, want.Geometry, got.Geometry)
}

func TestAudioDefaultsMatchMixer(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.False(t, cfg.Audio.Enabled)
	assert.Equal(t, audio.DefaultSettings(), cfg.AudioSettings())
}

func TestDerived(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, float32(30), cfg.Derived.RainBoxWidth)
	assert.Equal(t, float32(35), cfg.Derived.RainBoxDepth)
	assert.InDelta(t, 1.0/60.0, cfg.Derived.DT32, 1e-6)
	assert.InDelta(t, 300, cfg.Derived.FramesPerWin, 1)
}

func TestLoadMergesUserFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pool:\n  max_particles: 2000\nfire:\n  particles_per_second: 60\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2000, cfg.Pool.MaxParticles)
	assert.Equal(t, 60.0, cfg.Fire.ParticlesPerSecond)
	assert.Equal(t, 1000, cfg.Rain.Count, "untouched fields keep defaults")
}

func TestLoadRejectsInvalidScene(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"zero pool", "pool:\n  max_particles: 0\n"},
		{"rain larger than pool", "pool:\n  max_particles: 10\n"},
		{"inverted rain box", "rain:\n  x_min: 30\n"},
		{"bad yaml", "pool: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	cfg.Fire.ParticlesPerSecond = 42

	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, cfg.WriteYAML(path))

	back, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 42.0, back.Fire.ParticlesPerSecond)
}

func TestCfgPanicsBeforeInit(t *testing.T) {
	saved := global
	global = nil
	t.Cleanup(func() { global = saved })

	assert.Panics(t, func() { Cfg() })
	require.NoError(t, Init(""))
	assert.NotNil(t, Cfg())
}

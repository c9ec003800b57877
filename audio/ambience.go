// Package audio synthesizes the scene's soundscape: rain hiss that
// follows the live drop count, fire crackle that follows the flames and
// thunder rolls on demand. Ambience is a beep.Streamer and can be played
// through the speaker or rendered to a WAV file.
package audio

import (
	"fmt"
	"math"
	"os"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/wav"

	"github.com/pthm-cable/drizzle/particles"
)

// Settings holds the mix levels. Levels are linear gains reached at full
// rain or a steady fire.
type Settings struct {
	SampleRate int
	Volume     float64
	RainLevel  float64
	FireLevel  float64
	Thunder    float64
}

// DefaultSettings returns the stock mix.
func DefaultSettings() Settings {
	return Settings{
		SampleRate: 44100,
		Volume:     0.6,
		RainLevel:  0.25,
		FireLevel:  0.4,
		Thunder:    0.8,
	}
}

// Levels reports the current generator targets.
type Levels struct {
	Rain  float64
	Fire  float64
	Ticks float64 // splash ticks per second
}

// Ambience mixes the rain, fire and thunder generators. All methods are
// safe to call while the speaker goroutine streams it.
type Ambience struct {
	mu       sync.Mutex
	settings Settings
	rate     beep.SampleRate
	seed     int64
	thunders int64

	rain   *RainNoise
	fire   *Crackle
	mixer  *beep.Mixer
	master beep.Streamer
	levels Levels
}

// New creates a silent ambience. Call Update every frame to follow the scene.
func New(s Settings, seed int64) *Ambience {
	if s.SampleRate <= 0 {
		s.SampleRate = DefaultSettings().SampleRate
	}
	rate := beep.SampleRate(s.SampleRate)

	a := &Ambience{
		settings: s,
		rate:     rate,
		seed:     seed,
		rain:     NewRainNoise(rate, seed),
		fire:     NewCrackle(rate, seed+1, 40),
		mixer:    &beep.Mixer{},
	}
	a.mixer.Add(newVolume(a.rain, s.RainLevel), newVolume(a.fire, s.FireLevel))
	a.master = newVolume(a.mixer, s.Volume)
	return a
}

// newVolume wraps s in a linear gain. effects.Volume works in powers of
// Base, so zero maps to silent.
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}

// SampleRate returns the output rate.
func (a *Ambience) SampleRate() beep.SampleRate { return a.rate }

// Update retargets the generators from one frame of the scene. rainTotal
// is the configured drop count and steadyFire the expected live fire
// population; dt is the frame length used to turn splash counts into a rate.
func (a *Ambience) Update(counts particles.Counts, events particles.Events, rainTotal int, steadyFire, dt float32) {
	if a == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	var lv Levels
	if rainTotal > 0 {
		lv.Rain = float64(counts.Rain) / float64(rainTotal)
	}
	if steadyFire > 0 {
		lv.Fire = float64(counts.Fire) / float64(steadyFire)
	}
	if dt > 0 {
		lv.Ticks = float64(events.RainSplashes) / float64(dt)
	}
	lv.Rain = clamp01(lv.Rain)
	lv.Fire = clamp01(lv.Fire)

	a.rain.SetLevel(lv.Rain, lv.Ticks, a.rate)
	a.fire.SetLevel(lv.Fire)
	a.levels = lv
}

// Levels returns the targets set by the last Update.
func (a *Ambience) Levels() Levels {
	if a == nil {
		return Levels{}
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.levels
}

// Thunder starts a roll of the given duration on top of the ambience.
func (a *Ambience) Thunder(d time.Duration) {
	if a == nil || a.settings.Thunder <= 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	a.thunders++
	n := a.rate.N(d)
	roll := NewRumble(a.seed+100+a.thunders, n, 1)
	a.mixer.Add(newVolume(beep.Take(n, roll), a.settings.Thunder))
}

// Stream mixes the next block of samples and soft-clips it to [-1, 1].
func (a *Ambience) Stream(samples [][2]float64) (n int, ok bool) {
	a.mu.Lock()
	n, ok = a.master.Stream(samples)
	a.mu.Unlock()

	for i := 0; i < n; i++ {
		samples[i][0] = math.Tanh(samples[i][0])
		samples[i][1] = math.Tanh(samples[i][1])
	}
	return n, ok
}

func (a *Ambience) Err() error { return nil }

// WriteWAV renders d of the current ambience to a 16-bit stereo WAV file.
func (a *Ambience) WriteWAV(path string, d time.Duration) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating wav file: %w", err)
	}
	defer f.Close()

	format := beep.Format{SampleRate: a.rate, NumChannels: 2, Precision: 2}
	if err := wav.Encode(f, beep.Take(a.rate.N(d), a), format); err != nil {
		return fmt.Errorf("encoding wav: %w", err)
	}
	return nil
}

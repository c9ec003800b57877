package audio

import (
	"math"
	"math/rand"

	"github.com/gopxl/beep"
)

// levelSmoothing is the time constant, in seconds, over which generator
// levels chase their targets.
const levelSmoothing = 0.25

// smoothingCoeff returns the per-sample step for a one-pole follower.
func smoothingCoeff(sr beep.SampleRate, seconds float64) float64 {
	return 1 - math.Exp(-1/(seconds*float64(sr)))
}

// RainNoise generates low-passed white noise whose loudness follows a
// target level. Drops hitting the ground add short bright ticks.
type RainNoise struct {
	rng    *rand.Rand
	follow float64
	lp     float64
	level  float64
	target float64
	ticks  float64 // expected ticks per sample
	tick   float64
}

// NewRainNoise creates a silent rain generator.
func NewRainNoise(sr beep.SampleRate, seed int64) *RainNoise {
	return &RainNoise{
		rng:    rand.New(rand.NewSource(seed)),
		follow: smoothingCoeff(sr, levelSmoothing),
	}
}

// SetLevel sets the target loudness in [0, 1] and the splash tick rate
// in ticks per second.
func (g *RainNoise) SetLevel(level, splashesPerSec float64, sr beep.SampleRate) {
	g.target = clamp01(level)
	g.ticks = math.Max(splashesPerSec, 0) / float64(sr)
}

func (g *RainNoise) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		g.level += (g.target - g.level) * g.follow
		g.lp += 0.15 * (g.rng.Float64()*2 - 1 - g.lp)

		if g.ticks > 0 && g.rng.Float64() < g.ticks {
			g.tick = 1
		}
		tick := g.tick * (g.rng.Float64()*2 - 1) * 0.3
		g.tick *= 0.95

		s := g.level * (2*g.lp + tick)
		samples[i][0] = s
		samples[i][1] = s
	}
	return len(samples), true
}

func (g *RainNoise) Err() error { return nil }

// Crackle generates the pops of a wood fire. Pops arrive at random with a
// density proportional to the fire level and decay over a few ms.
type Crackle struct {
	rng     *rand.Rand
	follow  float64
	decay   float64
	level   float64
	target  float64
	density float64 // pops per sample at full level
	env     float64
	hum     float64
}

// NewCrackle creates a silent crackle generator firing up to popsPerSec.
func NewCrackle(sr beep.SampleRate, seed int64, popsPerSec float64) *Crackle {
	return &Crackle{
		rng:     rand.New(rand.NewSource(seed)),
		follow:  smoothingCoeff(sr, levelSmoothing),
		decay:   math.Exp(-1 / (0.004 * float64(sr))),
		density: popsPerSec / float64(sr),
	}
}

// SetLevel sets the target fire loudness in [0, 1].
func (g *Crackle) SetLevel(level float64) {
	g.target = clamp01(level)
}

func (g *Crackle) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		g.level += (g.target - g.level) * g.follow
		if g.level > 1e-4 && g.rng.Float64() < g.density*g.level {
			g.env = 0.5 + 0.5*g.rng.Float64()
		}
		g.env *= g.decay

		// Low rumble under the pops.
		g.hum += 0.02 * (g.rng.Float64()*2 - 1 - g.hum)

		s := g.env*(g.rng.Float64()*2-1) + g.level*g.hum*1.5
		samples[i][0] = s
		samples[i][1] = s
	}
	return len(samples), true
}

func (g *Crackle) Err() error { return nil }

// Rumble is a decaying brown-noise roll used for thunder. It ends after
// its duration.
type Rumble struct {
	rng    *rand.Rand
	pos    int
	length int
	brown  float64
	gain   float64
}

// NewRumble creates a thunder roll lasting length samples.
func NewRumble(seed int64, length int, gain float64) *Rumble {
	return &Rumble{
		rng:    rand.New(rand.NewSource(seed)),
		length: length,
		gain:   gain,
	}
}

func (g *Rumble) Stream(samples [][2]float64) (n int, ok bool) {
	if g.pos >= g.length {
		return 0, false
	}
	for i := range samples {
		if g.pos >= g.length {
			return i, true
		}
		t := float64(g.pos) / float64(g.length)
		g.brown = 0.995*g.brown + 0.05*(g.rng.Float64()*2-1)

		// Sharp attack then a long tail.
		env := math.Min(t*40, 1) * math.Pow(1-t, 2)
		s := g.gain * env * g.brown * 3
		samples[i][0] = s
		samples[i][1] = s
		g.pos++
	}
	return len(samples), true
}

func (g *Rumble) Err() error { return nil }

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

package telemetry

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/drizzle/particles"
)

// Collector accumulates per-frame events and counts within windows and
// produces WindowStats.
type Collector struct {
	windowFrames int64
	dt           float32

	windowStart int64

	events  particles.Events
	dropped int
	active  []float64
}

// NewCollector creates a new stats collector.
// windowDurationSec: simulated seconds per window
// dt: seconds per frame (used for frame-to-time conversion)
func NewCollector(windowDurationSec float64, dt float32) *Collector {
	frames := int64(1)
	if dt > 0 {
		if n := int64(windowDurationSec / float64(dt)); n > 1 {
			frames = n
		}
	}
	return &Collector{
		windowFrames: frames,
		dt:           dt,
		active:       make([]float64, 0, frames),
	}
}

// Record adds one frame's events and layout to the current window.
func (c *Collector) Record(ev particles.Events, counts particles.Counts) {
	c.events.Add(ev)
	c.dropped += counts.Dropped
	c.active = append(c.active, float64(counts.Active))
}

// ShouldFlush returns true if enough frames have passed to flush the window.
func (c *Collector) ShouldFlush(frame int64) bool {
	return frame-c.windowStart >= c.windowFrames
}

// Flush produces a WindowStats from the window's frames and the pool as it
// is now, then resets for the next window.
func (c *Collector) Flush(frame int64, pool *particles.Pool, smokeColor mgl32.Vec3) WindowStats {
	active := Summarize(c.active)

	stats := WindowStats{
		WindowStartFrame: c.windowStart,
		WindowEndFrame:   frame,
		SimTimeSec:       float64(frame) * float64(c.dt),

		RainSplashes:     c.events.RainSplashes,
		RingSpawned:      c.events.RingSpawned,
		FireSpawned:      c.events.FireSpawned,
		GeneralExpired:   c.events.GeneralExpired,
		FireExpired:      c.events.FireExpired,
		SmokeTransitions: c.events.SmokeTransitions,
		SpawnShortfall:   c.events.SpawnShortfall,
		Dropped:          c.dropped,

		ActiveMean: active.Mean,
		ActiveStd:  active.Std,
		ActiveP10:  active.P10,
		ActiveP50:  active.P50,
		ActiveP90:  active.P90,
	}
	if n := len(c.active); n > 0 {
		stats.Active = int(c.active[n-1])
	}

	if pool != nil {
		stats.Rain = pool.Len(particles.ListRain)
		stats.Fire = pool.Len(particles.ListFire)
		stats.General = pool.Len(particles.ListGeneral)
		stats.Free = pool.Len(particles.ListFree)

		heights := make([]float64, 0, stats.Fire)
		smoke := 0
		pool.Each(particles.ListFire, func(_ particles.Index, pt *particles.Particle) {
			heights = append(heights, float64(pt.Position.Y()))
			if pt.Color == smokeColor {
				smoke++
			}
		})
		h := Summarize(heights)
		stats.FireHeightMean = h.Mean
		stats.FireHeightP90 = h.P90
		if len(heights) > 0 {
			stats.SmokeFraction = float64(smoke) / float64(len(heights))
		}
	}

	c.windowStart = frame
	c.events = particles.Events{}
	c.dropped = 0
	c.active = c.active[:0]

	return stats
}

// WindowDurationFrames returns the number of frames per window.
func (c *Collector) WindowDurationFrames() int64 {
	return c.windowFrames
}

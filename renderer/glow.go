package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/drizzle/particles"
)

// GlowRenderer draws a flickering screen-space glow over the campfire.
// Its strength follows the live fire population relative to the steady
// state the emitter settles into.
type GlowRenderer struct {
	steadyState float32
	elapsed     float32
	noise       opensimplex.Noise
}

// NewGlowRenderer sizes the steady state from the fire settings.
func NewGlowRenderer(fire particles.FireSettings, seed int64) *GlowRenderer {
	return &GlowRenderer{
		steadyState: fire.SteadyCount(),
		noise:       opensimplex.NewNormalized(seed),
	}
}

// SetRate updates the steady state after a fire rate change.
func (g *GlowRenderer) SetRate(fire particles.FireSettings) {
	g.steadyState = fire.SteadyCount()
}

// flicker samples two octaves of noise along time; result is in [0.7, 1].
func (g *GlowRenderer) flicker() float32 {
	t := float64(g.elapsed)
	n := 0.7*g.noise.Eval2(t*6, 0) + 0.3*g.noise.Eval2(t*17, 5.3)
	return 0.7 + 0.3*float32(n)
}

// Draw renders the glow centred at screen point (x, y). scale converts
// world size to pixels at the anchor's depth.
func (g *GlowRenderer) Draw(x, y float32, fireCount int, scale, dt float32) {
	g.elapsed += dt
	if g.steadyState <= 0 || fireCount == 0 {
		return
	}
	intensity := float32(fireCount) / g.steadyState
	if intensity > 1 {
		intensity = 1
	}
	intensity *= g.flicker()

	g.drawRadialLight(x, y, 6*scale, intensity)
	g.drawCore(x, y, scale, intensity)
}

// drawRadialLight draws a warm radial gradient around the fire.
func (g *GlowRenderer) drawRadialLight(x, y, maxRadius, intensity float32) {
	steps := 12
	for i := steps; i >= 0; i-- {
		t := float32(i) / float32(steps)
		radius := maxRadius * t

		// Fast falloff - light concentrated near source
		falloff := float32(math.Pow(float64(1-t), 3.0))
		alpha := falloff * 0.05 * intensity * 255
		if alpha < 1 {
			continue
		}
		rl.DrawCircle(int32(x), int32(y), radius, rl.Color{R: 255, G: 150, B: 60, A: uint8(alpha)})
	}
}

// drawCore draws the bright layers at the base of the flames.
func (g *GlowRenderer) drawCore(x, y, scale, intensity float32) {
	glowLayers := []struct {
		radius float32
		alpha  float32
	}{
		{1.5, 10},
		{0.9, 18},
		{0.5, 30},
	}
	for _, layer := range glowLayers {
		alpha := layer.alpha * intensity
		rl.DrawCircle(int32(x), int32(y), layer.radius*scale, rl.Color{R: 255, G: 190, B: 110, A: uint8(alpha)})
	}
}

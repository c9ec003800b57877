// Package viewer is the raylib window front end. It draws the scene and
// its panels and turns mouse and keyboard input into scene actions.
package viewer

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/drizzle/camera"
	"github.com/pthm-cable/drizzle/config"
	"github.com/pthm-cable/drizzle/game"
	"github.com/pthm-cable/drizzle/renderer"
	"github.com/pthm-cable/drizzle/ui"
)

// Panel layout.
const (
	panelMargin = 10
	poolsWidth  = 240
	tuningWidth = 260
	tuningH     = 230
	perfWidth   = 240
)

// Viewer owns everything a window needs beyond the game itself.
type Viewer struct {
	game   *game.Game
	device *renderer.Device
	store  *renderer.TextureStore
	camera *camera.Camera

	// Renderers
	background *renderer.BackgroundRenderer
	ground     *renderer.GroundRenderer
	glow       *renderer.GlowRenderer

	// UI
	hud         *ui.HUD
	perfPanel   *ui.PerfPanel
	tuningPanel *ui.TuningPanel
	overlays    *ui.OverlayRegistry
	tuning      ui.Tuning

	screenWidth  float32
	screenHeight float32
	frameTime    float32
	orbitSpeed   float32 // degrees per second
	dragging     bool
	renderErrLog bool
}

// New creates a viewer for a game that was built on device and store.
// Requires an open raylib window.
func New(g *game.Game, device *renderer.Device, store *renderer.TextureStore, width, height int32) *Viewer {
	cfg := config.Cfg()
	settings := g.Manager().Settings()

	v := &Viewer{
		game:         g,
		device:       device,
		store:        store,
		camera:       game.NewCamera(float32(width), float32(height)),
		background:   renderer.NewBackgroundRenderer(width, height),
		ground:       renderer.NewGroundRenderer(settings.Rain, settings.Fire),
		glow:         renderer.NewGlowRenderer(settings.Fire, g.Seed()),
		hud:          ui.NewHUD(),
		perfPanel:    ui.NewPerfPanel(0, 0),
		tuningPanel:  ui.NewTuningPanel(0, 0, tuningWidth),
		overlays:     ui.NewOverlayRegistry(),
		screenWidth:  float32(width),
		screenHeight: float32(height),
		orbitSpeed:   float32(cfg.Camera.OrbitSpeed),
	}
	v.tuning = ui.Tuning{
		FireRate:   settings.Fire.ParticlesPerSecond,
		Gravity:    settings.Gravity,
		SplashSize: float32(cfg.Ring.BurstParticles),
	}
	v.layout()
	return v
}

// Camera returns the orbit camera.
func (v *Viewer) Camera() *camera.Camera { return v.camera }

// Update handles input and advances the game by the measured frame time.
func (v *Viewer) Update() error {
	v.frameTime = rl.GetFrameTime()
	v.handleInput()

	if v.orbitSpeed != 0 && !v.dragging {
		v.camera.Orbit(v.orbitSpeed*v.frameTime, 0)
	}
	return v.game.UpdateFrame(v.frameTime)
}

// layout positions panels for the current screen size.
func (v *Viewer) layout() {
	right := int32(v.screenWidth)
	v.perfPanel.SetPosition(right-perfWidth-panelMargin, panelMargin)
	v.tuningPanel.SetPosition(right-tuningWidth-panelMargin, int32(v.screenHeight)-tuningH-40)
}

// textures resolves the manager's texture handles.
func (v *Viewer) textures() renderer.Textures {
	m := v.game.Manager()
	return renderer.Textures{
		Default: v.store.Texture(m.DefaultTexture()),
		Rain:    v.store.Texture(m.RainTexture()),
		Fire:    v.store.Texture(m.FireTexture()),
	}
}

// lightning flashes the sky and rolls thunder.
func (v *Viewer) lightning() {
	v.background.Flash()
	v.game.Lightning()
}

// applyTuning forwards tuning panel actions to the game.
func (v *Viewer) applyTuning(act ui.TuningActions) {
	if act.FireRateChanged {
		v.game.SetFireRate(v.tuning.FireRate)
		v.glow.SetRate(v.game.Manager().Settings().Fire)
	}
	if act.GravityChanged {
		v.game.SetGravity(v.tuning.Gravity)
	}
	if act.PauseToggled && v.tuning.Paused != v.game.Paused() {
		v.game.TogglePause()
	}
	if act.Burst {
		v.burst(v.game.Manager().Settings().Fire.Anchor)
	}
	if act.Lightning {
		v.lightning()
	}
	if act.Reset {
		v.game.ResetTuning()
		s := v.game.Manager().Settings()
		v.tuning.FireRate = s.Fire.ParticlesPerSecond
		v.tuning.Gravity = s.Gravity
		v.tuning.SplashSize = float32(config.Cfg().Ring.BurstParticles)
		v.glow.SetRate(s.Fire)
		slog.Info("tuning reset")
	}
}

package viewer

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/drizzle/game"
	"github.com/pthm-cable/drizzle/ui"
)

// Mouse sensitivity.
const (
	orbitPerPixel = 0.3 // degrees
	wheelZoomStep = 0.1
)

// handleInput processes keyboard and mouse input.
func (v *Viewer) handleInput() {
	// Window resize propagation
	v.handleResize()

	// Fullscreen toggle
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		v.tuning.Paused = v.game.TogglePause()
	}
	if rl.IsKeyPressed(rl.KeyL) {
		v.game.LogSummary()
	}
	if rl.IsKeyPressed(rl.KeyG) {
		v.lightning()
	}
	if rl.IsKeyPressed(rl.KeyP) {
		if _, err := v.game.SaveSnapshot("manual"); err != nil {
			slog.Warn("snapshot failed", "error", err)
		}
	}

	// Overlay toggles
	for key := rl.GetKeyPressed(); key != 0; key = rl.GetKeyPressed() {
		if id, on, ok := v.overlays.HandleKeyPress(key); ok && id == ui.OverlayRainBox {
			v.ground.ShowBox(on)
		}
	}

	v.handleCameraInput()
	v.handleClick()
}

// handleResize checks for window resize and propagates new dimensions.
func (v *Viewer) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == v.screenWidth && h == v.screenHeight {
		return
	}
	v.screenWidth = w
	v.screenHeight = h

	v.camera.Resize(w, h)
	v.background.Resize(int32(w), int32(h))
	v.layout()
}

// handleCameraInput orbits with right-drag or arrow keys and zooms with the
// wheel or +/- keys.
func (v *Viewer) handleCameraInput() {
	v.dragging = rl.IsMouseButtonDown(rl.MouseButtonRight)
	if v.dragging {
		d := rl.GetMouseDelta()
		v.camera.Orbit(d.X*orbitPerPixel, d.Y*orbitPerPixel)
	}

	step := 60 * v.frameTime
	if rl.IsKeyDown(rl.KeyRight) {
		v.camera.Orbit(step, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		v.camera.Orbit(-step, 0)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		v.camera.Orbit(0, step)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		v.camera.Orbit(0, -step)
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		v.camera.ZoomBy(1 + wheel*wheelZoomStep)
	}
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		v.camera.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		v.camera.ZoomBy(0.8)
	}

	if rl.IsKeyPressed(rl.KeyR) || rl.IsKeyPressed(rl.KeyHome) {
		v.camera.Reset()
	}
}

// handleClick spawns a splash where a left click meets the ground.
func (v *Viewer) handleClick() {
	if !rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		return
	}
	pos := rl.GetMousePosition()
	if v.overPanel(pos) {
		return
	}
	origin, dir := v.camera.ScreenRay(pos.X, pos.Y)
	if hit, ok := game.GroundHit(origin, dir); ok {
		v.burst(hit)
	}
}

// overPanel reports whether a screen point lies on an interactive panel.
func (v *Viewer) overPanel(p rl.Vector2) bool {
	if !v.overlays.IsEnabled(ui.OverlayTuning) {
		return false
	}
	x := v.screenWidth - tuningWidth - panelMargin
	y := v.screenHeight - tuningH - 40
	return rl.CheckCollisionPointRec(p, rl.NewRectangle(x, y, tuningWidth, tuningH))
}

// burst fires a ring of the tuned size at center.
func (v *Viewer) burst(center mgl32.Vec3) {
	v.game.Burst(center, int(v.tuning.SplashSize))
}

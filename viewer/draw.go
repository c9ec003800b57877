package viewer

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/drizzle/particles"
	"github.com/pthm-cable/drizzle/renderer"
	"github.com/pthm-cable/drizzle/ui"
)

// Draw renders one window frame.
func (v *Viewer) Draw() {
	v.game.BeginDraw()

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)
	v.DrawScene()
	v.drawOverlays()
	rl.EndDrawing()

	v.game.EndDraw()
}

// DrawScene renders the sky, the ground and the particles into the current
// target. It does not begin or end drawing.
func (v *Viewer) DrawScene() {
	v.background.Draw(v.frameTime)

	rc := renderer.ToRaylib(v.camera)
	rl.BeginMode3D(rc)
	v.ground.Draw()
	if err := v.game.Manager().Render(); err != nil {
		if !v.renderErrLog {
			slog.Warn("particle render skipped", "error", err)
			v.renderErrLog = true
		}
	} else {
		v.device.Draw(rc, v.textures())
	}
	rl.EndMode3D()

	v.drawGlow()
}

// drawGlow lights the screen around the fire anchor.
func (v *Viewer) drawGlow() {
	m := v.game.Manager()
	anchor := m.Settings().Fire.Anchor
	sx, sy, _, ok := v.camera.WorldToScreen(anchor)
	if !ok {
		return
	}
	// Pixels per world unit at the anchor's depth
	_, sy1, _, ok1 := v.camera.WorldToScreen(anchor.Add(mgl32.Vec3{0, 1, 0}))
	scale := float32(40)
	if ok1 {
		scale = max(sy-sy1, 1)
	}

	rl.BeginBlendMode(rl.BlendAdditive)
	v.glow.Draw(sx, sy, m.FireInstanceCount(), scale, v.frameTime)
	rl.EndBlendMode()
}

// drawOverlays renders the enabled panels.
func (v *Viewer) drawOverlays() {
	m := v.game.Manager()
	data := ui.HUDData{
		Title:    "drizzle",
		Frame:    v.game.Frame(),
		SimTime:  v.game.SimTime(),
		FPS:      rl.GetFPS(),
		Paused:   v.game.Paused(),
		Counts:   m.Counts(),
		Capacity: m.TotalInstanceCount(),
		Events:   m.LastEvents(),
	}
	if pool := m.Pool(); pool != nil {
		data.Free = pool.Len(particles.ListFree)
	}

	if v.overlays.IsEnabled(ui.OverlayHUD) {
		v.hud.Draw(data)
		v.hud.DrawControls(int32(v.screenHeight), v.overlays)
	}
	if v.overlays.IsEnabled(ui.OverlayPools) {
		v.hud.DrawPools(panelMargin, 100, poolsWidth, data)
	}
	if v.overlays.IsEnabled(ui.OverlayPerf) {
		stats := v.game.PerfStats()
		v.perfPanel.Draw(stats.PhaseAvg, stats.AvgFrame)
	}
	if v.overlays.IsEnabled(ui.OverlayTuning) {
		v.tuning.Paused = v.game.Paused()
		v.applyTuning(v.tuningPanel.Draw(&v.tuning))
	}
}

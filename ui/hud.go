package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/drizzle/particles"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title    string
	Frame    int64
	SimTime  float64
	FPS      int32
	Paused   bool
	Counts   particles.Counts
	Free     int
	Capacity int
	Events   particles.Events
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{renderer: NewRenderer()}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	c := data.Counts
	rl.DrawText(
		fmt.Sprintf("Rain: %d | Fire: %d | Splash: %d | Free: %d", c.Rain, c.Fire, c.General, data.Free),
		10, 35, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("Frame: %d | Time: %.1fs | FPS: %d | Active: %d", data.Frame, data.SimTime, data.FPS, c.Active),
		10, 55, 16, rl.LightGray,
	)

	status := "Running"
	color := rl.Yellow
	if data.Paused {
		status = "PAUSED"
	}
	if data.Events.SpawnShortfall > 0 || c.Dropped > 0 {
		status += fmt.Sprintf(" | pool exhausted (%d spawns skipped)", data.Events.SpawnShortfall)
		color = rl.Orange
	}
	rl.DrawText(status, 10, 75, 16, color)
}

// DrawControls renders the key legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, overlays *OverlayRegistry) {
	parts := []string{"Space: pause", "Click: splash", "Drag: orbit", "Wheel: zoom", "R: reset camera", "G: lightning", "P: snapshot"}
	for _, d := range overlays.All() {
		parts = append(parts, fmt.Sprintf("%s: %s", d.KeyLabel, d.Name))
	}
	rl.DrawText(strings.Join(parts, " | "), 10, screenHeight-25, 14, rl.Gray)
}

// DrawPools renders list occupancy bars.
func (h *HUD) DrawPools(x, y, width int32, data HUDData) {
	r := h.renderer
	th := r.Theme
	height := th.LineHeight*6 + th.Padding*2 + 8
	r.DrawPanel(x, y, width, height)

	x += th.Padding
	y = r.DrawSectionHeader(x, y+th.Padding, "Pool")
	inner := width - th.Padding*2
	y = r.DrawOccupancy(x, y, "rain", data.Counts.Rain, data.Capacity, inner, th.Rain)
	y = r.DrawOccupancy(x, y, "fire", data.Counts.Fire, data.Capacity, inner, th.Fire)
	y = r.DrawOccupancy(x, y, "splash", data.Counts.General, data.Capacity, inner, th.Splash)

	freeColor := th.Free
	if data.Capacity > 0 && float32(data.Free) < lowFree*float32(data.Capacity) {
		freeColor = th.Warn
	}
	y = r.DrawOccupancy(x, y, "free", data.Free, data.Capacity, inner, freeColor)
	r.DrawLabelValue(x, y, "skipped", fmt.Sprintf("%d spawns, %d instances", data.Events.SpawnShortfall, data.Counts.Dropped))
}

// PerfPanel renders the frame phase breakdown.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{renderer: NewRenderer(), x: x, y: y}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the phase timings, slowest first.
func (p *PerfPanel) Draw(phaseAvg map[string]time.Duration, total time.Duration) {
	x, y := p.x, p.y

	rl.DrawText("Frame Phases", x, y, 16, rl.White)
	y += 20
	rl.DrawText(fmt.Sprintf("Total: %s", total.Round(time.Microsecond)), x, y, 14, rl.Yellow)
	y += 16

	names := make([]string, 0, len(phaseAvg))
	for name := range phaseAvg {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return phaseAvg[names[i]] > phaseAvg[names[j]] })

	for _, name := range names {
		avg := phaseAvg[name]
		pct := float64(0)
		if total > 0 {
			pct = float64(avg) / float64(total) * 100
		}

		color := rl.LightGray
		if pct > 40 {
			color = rl.Red
		} else if pct > 20 {
			color = rl.Orange
		}
		rl.DrawText(fmt.Sprintf("%-10s %8s %5.1f%%", name, avg.Round(time.Microsecond), pct), x, y, 12, color)
		y += 14
	}
}

package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Tuning is the live-tunable state edited by the tuning panel.
type Tuning struct {
	FireRate   float32 // particles per second
	Gravity    float32
	SplashSize float32 // particles per ring burst
	Paused     bool
}

// TuningActions reports what changed during one Draw.
type TuningActions struct {
	FireRateChanged bool
	GravityChanged  bool
	PauseToggled    bool
	Burst           bool // spawn a ring burst at the fire anchor
	Lightning       bool
	Reset           bool // restore the configured values
}

// Slider ranges.
const (
	MaxFireRate   = 600
	MinGravity    = -12
	MaxSplashSize = 64
)

// TuningPanel renders raygui sliders and buttons for live tuning.
type TuningPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewTuningPanel creates a new tuning panel.
func NewTuningPanel(x, y, width int32) *TuningPanel {
	return &TuningPanel{renderer: NewRenderer(), x: x, y: y, width: width}
}

// SetPosition updates the panel position.
func (c *TuningPanel) SetPosition(x, y int32) {
	c.x = x
	c.y = y
}

// Draw renders the panel, applies slider edits to t and reports actions.
func (c *TuningPanel) Draw(t *Tuning) TuningActions {
	var act TuningActions

	r := c.renderer
	padding := float32(r.Theme.Padding)
	r.DrawPanel(c.x, c.y, c.width, 230)

	x := float32(c.x) + padding
	y := float32(c.y) + padding
	sliderW := float32(c.width) - padding*2 - 60

	rl.DrawText("Tuning", int32(x), int32(y), 16, rl.White)
	y += 26

	rl.DrawText("Fire rate (particles/s)", int32(x), int32(y), 12, rl.LightGray)
	y += 16
	rate := gui.SliderBar(rl.Rectangle{X: x, Y: y, Width: sliderW, Height: 18}, "", fmt.Sprintf("%.0f", t.FireRate), t.FireRate, 0, MaxFireRate)
	if rate != t.FireRate {
		t.FireRate = rate
		act.FireRateChanged = true
	}
	y += 28

	rl.DrawText("Gravity", int32(x), int32(y), 12, rl.LightGray)
	y += 16
	g := gui.SliderBar(rl.Rectangle{X: x, Y: y, Width: sliderW, Height: 18}, "", fmt.Sprintf("%.2f", t.Gravity), t.Gravity, MinGravity, 0)
	if g != t.Gravity {
		t.Gravity = g
		act.GravityChanged = true
	}
	y += 28

	rl.DrawText("Splash size", int32(x), int32(y), 12, rl.LightGray)
	y += 16
	t.SplashSize = gui.SliderBar(rl.Rectangle{X: x, Y: y, Width: sliderW, Height: 18}, "", fmt.Sprintf("%.0f", t.SplashSize), t.SplashSize, 1, MaxSplashSize)
	y += 30

	half := (float32(c.width) - padding*3) / 2
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: half, Height: 26}, toggleText(t.Paused, "Resume", "Pause")) {
		t.Paused = !t.Paused
		act.PauseToggled = true
	}
	if gui.Button(rl.Rectangle{X: x + half + padding, Y: y, Width: half, Height: 26}, "Burst") {
		act.Burst = true
	}
	y += 32
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: half, Height: 26}, "Lightning") {
		act.Lightning = true
	}
	if gui.Button(rl.Rectangle{X: x + half + padding, Y: y, Width: half, Height: 26}, "Reset") {
		act.Reset = true
	}
	return act
}

func toggleText(on bool, onText, offText string) string {
	if on {
		return onText
	}
	return offText
}

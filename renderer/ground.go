package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/drizzle/particles"
)

// GroundRenderer draws the ground plane under the rain box, a faint grid,
// the outline of the rain volume and a marker at the fire anchor.
type GroundRenderer struct {
	center   rl.Vector3
	size     rl.Vector2
	boxPos   rl.Vector3
	boxSize  rl.Vector3
	anchor   rl.Vector3
	showBox  bool
	plane    rl.Color
	boxColor rl.Color
}

// NewGroundRenderer sizes the ground from the rain settings.
func NewGroundRenderer(rain particles.RainSettings, fire particles.FireSettings) *GroundRenderer {
	w := rain.XMax - rain.XMin
	d := rain.ZFar - rain.ZNear
	cx := (rain.XMin + rain.XMax) / 2
	cz := (rain.ZNear + rain.ZFar) / 2
	return &GroundRenderer{
		center:   rl.NewVector3(cx, 0, cz),
		size:     rl.NewVector2(w*1.5, d*1.5),
		boxPos:   rl.NewVector3(cx, rain.SpawnHeight/2, cz),
		boxSize:  rl.NewVector3(w, rain.SpawnHeight, d),
		anchor:   rl.NewVector3(fire.Anchor.X(), fire.Anchor.Y(), fire.Anchor.Z()),
		plane:    rl.NewColor(24, 26, 30, 255),
		boxColor: rl.NewColor(80, 90, 140, 90),
	}
}

// ShowBox shows or hides the rain volume outline.
func (g *GroundRenderer) ShowBox(on bool) { g.showBox = on }

// Draw renders the ground. Must be called inside BeginMode3D.
func (g *GroundRenderer) Draw() {
	rl.DrawPlane(g.center, g.size, g.plane)
	if g.showBox {
		rl.DrawCubeWiresV(g.boxPos, g.boxSize, g.boxColor)
	}
	// Embers under the fire
	rl.DrawCylinder(g.anchor, 0.5, 0.7, 0.08, 10, rl.NewColor(60, 30, 20, 255))
}

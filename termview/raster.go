package termview

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/drizzle/particles"
)

// Glyphs per instance block.
const (
	RainGlyph    = '|'
	FireGlyph    = '^'
	SmokeGlyph   = '~'
	GeneralGlyph = '.'
)

// smokeLuma is the brightness below which a fire instance draws as smoke.
const smokeLuma = 0.3

// Cell is one rasterized terminal cell.
type Cell struct {
	Rune    rune
	R, G, B uint8
	Depth   float32
	Set     bool
}

// Raster is a depth-tested character grid.
type Raster struct {
	W, H  int
	Cells []Cell
}

// NewRaster creates a w by h grid.
func NewRaster(w, h int) *Raster {
	r := &Raster{}
	r.Resize(w, h)
	return r
}

// Resize changes the grid size and clears it.
func (r *Raster) Resize(w, h int) {
	w, h = max(w, 0), max(h, 0)
	if cap(r.Cells) >= w*h {
		r.Cells = r.Cells[:w*h]
	} else {
		r.Cells = make([]Cell, w*h)
	}
	r.W, r.H = w, h
	r.Clear()
}

// Clear empties every cell.
func (r *Raster) Clear() {
	clear(r.Cells)
}

// At returns the cell at (x, y).
func (r *Raster) At(x, y int) Cell {
	return r.Cells[y*r.W+x]
}

// Plot writes ch at (x, y) unless a nearer glyph is already there.
// Out-of-range coordinates are ignored.
func (r *Raster) Plot(x, y int, depth float32, ch rune, color mgl32.Vec4) bool {
	if x < 0 || y < 0 || x >= r.W || y >= r.H {
		return false
	}
	c := &r.Cells[y*r.W+x]
	if c.Set && c.Depth <= depth {
		return false
	}
	*c = Cell{
		Rune:  ch,
		R:     channel(color.X()),
		G:     channel(color.Y()),
		B:     channel(color.Z()),
		Depth: depth,
		Set:   true,
	}
	return true
}

// Projector maps a world position to raster coordinates and depth.
type Projector func(p mgl32.Vec3) (x, y, depth float32, ok bool)

// Rasterize plots every active instance of a flattened frame. The
// projector's Y is in half cells, matching the 2:1 shape of a terminal
// cell. Returns the number of instances that landed on the grid.
func (r *Raster) Rasterize(instances []particles.Instance, counts particles.Counts, project Projector) int {
	rainEnd := counts.Active - counts.Fire - counts.General
	blocks := []struct {
		from, to int
		glyph    rune
	}{
		{0, counts.Rain, RainGlyph},
		{rainEnd, rainEnd + counts.Fire, FireGlyph},
		{rainEnd + counts.Fire, counts.Active, GeneralGlyph},
	}

	plotted := 0
	for _, b := range blocks {
		if b.from < 0 || b.to > len(instances) {
			continue
		}
		for i := b.from; i < b.to; i++ {
			in := &instances[i]
			sx, sy, depth, ok := project(in.Position)
			if !ok {
				continue
			}
			glyph := b.glyph
			if glyph == FireGlyph && luma(in.Color) < smokeLuma {
				glyph = SmokeGlyph
			}
			if r.Plot(int(sx), int(sy/2), depth, glyph, in.Color) {
				plotted++
			}
		}
	}
	return plotted
}

func luma(c mgl32.Vec4) float32 {
	return 0.2126*c.X() + 0.7152*c.Y() + 0.0722*c.Z()
}

// channel converts an HDR colour channel to 8-bit, saturating at 1.
func channel(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

// Package termview renders the particle instance buffer into a terminal
// with tcell.
package termview

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/drizzle/camera"
	"github.com/pthm-cable/drizzle/particles"
)

// View is a particles.Device that keeps uploads in host memory and draws
// them as coloured glyphs on a tcell screen.
type View struct {
	*particles.HeadlessDevice

	raster *Raster
	status string
}

// NewView creates a view with an empty raster.
func NewView() *View {
	return &View{
		HeadlessDevice: particles.NewHeadlessDevice(),
		raster:         NewRaster(0, 0),
	}
}

// SetStatus sets the text drawn on the top row.
func (v *View) SetStatus(format string, args ...any) {
	v.status = fmt.Sprintf(format, args...)
}

// Raster returns the grid built by the last Draw.
func (v *View) Raster() *Raster { return v.raster }

// Draw rasterizes the last upload through cam and writes it to screen.
// The camera viewport is resized to the screen, in half-cell rows.
func (v *View) Draw(screen tcell.Screen, cam *camera.Camera) {
	w, h := screen.Size()
	if v.raster.W != w || v.raster.H != h {
		v.raster.Resize(w, h)
	} else {
		v.raster.Clear()
	}
	cam.Resize(float32(w), float32(h*2))

	instances, counts := v.Uploaded()
	v.raster.Rasterize(instances, counts, Projector(cam.Projector()))

	screen.Clear()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := v.raster.At(x, y)
			if !c.Set {
				continue
			}
			style := tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B)))
			screen.SetContent(x, y, c.Rune, nil, style)
		}
	}

	statusStyle := tcell.StyleDefault.Foreground(tcell.ColorWhite).Reverse(true)
	for i, r := range []rune(v.status) {
		if i >= w {
			break
		}
		screen.SetContent(i, 0, r, nil, statusStyle)
	}
	screen.Show()
}

package game

import (
	"context"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/drizzle/camera"
	"github.com/pthm-cable/drizzle/particles"
	"github.com/pthm-cable/drizzle/termview"
)

// Terminal camera steps.
const (
	termOrbitStep = 5.0  // degrees per arrow key
	termZoomStep  = 1.15 // distance factor per +/- key
)

// RunTerminal drives the scene on a tcell screen at the fixed step until
// the user quits, ctx is cancelled, or the frame limit is reached. view
// must be the device the game was created with.
func (g *Game) RunTerminal(ctx context.Context, screen tcell.Screen, view *termview.View) error {
	w, h := screen.Size()
	cam := NewCamera(float32(w), float32(h*2))

	interval := time.Duration(float64(g.dt) * float64(time.Second))
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	done := make(chan struct{})
	defer close(done)

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case eventChan <- ev:
			case <-done:
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-eventChan:
			if !g.handleTerminalEvent(ev, screen, cam) {
				return nil
			}

		case <-ticker.C:
			if err := g.UpdateHeadless(); err != nil {
				return err
			}
			g.BeginDraw()
			g.updateTerminalStatus(view)
			view.Draw(screen, cam)
			g.EndDraw()

			if g.Done() {
				return nil
			}
		}
	}
}

// handleTerminalEvent applies one input event. It returns false to quit.
func (g *Game) handleTerminalEvent(ev tcell.Event, screen tcell.Screen, cam *camera.Camera) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyLeft:
			cam.Orbit(-termOrbitStep, 0)
		case tcell.KeyRight:
			cam.Orbit(termOrbitStep, 0)
		case tcell.KeyUp:
			cam.Orbit(0, termOrbitStep)
		case tcell.KeyDown:
			cam.Orbit(0, -termOrbitStep)
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case ' ':
				g.TogglePause()
			case 'b':
				g.BurstAtAnchor()
			case 'g':
				g.Lightning()
			case '+', '=':
				cam.ZoomBy(1 / termZoomStep)
			case '-':
				cam.ZoomBy(termZoomStep)
			case 'r':
				cam.Reset()
			case 's':
				if _, err := g.SaveSnapshot("manual"); err != nil {
					slog.Warn("snapshot failed", "error", err)
				}
			}
		}

	case *tcell.EventResize:
		screen.Sync()
	}
	return true
}

// updateTerminalStatus writes the top status row.
func (g *Game) updateTerminalStatus(view *termview.View) {
	counts := g.manager.Counts()
	state := ""
	if g.paused {
		state = " | PAUSED"
	}
	view.SetStatus(" drizzle | frame %d | rain %d fire %d general %d | free %d%s ",
		g.frame, counts.Rain, counts.Fire, counts.General,
		g.manager.Pool().Len(particles.ListFree), state)
}

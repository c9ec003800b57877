package game

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/pthm-cable/drizzle/particles"
)

// logWriter is the destination for log output.
var logWriter io.Writer

// SetLogWriter sets the log output destination.
func SetLogWriter(w io.Writer) {
	logWriter = w
}

// Logf writes a formatted log message.
func Logf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if logWriter != nil {
		fmt.Fprintln(logWriter, msg)
	} else {
		fmt.Println(msg)
	}
}

// LogSummary prints the scene state and frame timings.
func (g *Game) LogSummary() {
	g.logWorldState()
	g.logPerfStats()
}

// logPerfStats logs performance statistics.
func (g *Game) logPerfStats() {
	stats := g.perfCollector.Stats()
	Logf("=== Perf @ Frame %d | FPS: %.0f ===", g.frame, stats.FPS)
	Logf("Avg frame time: %s (min %s, max %s)",
		stats.AvgFrame.Round(time.Microsecond),
		stats.MinFrame.Round(time.Microsecond),
		stats.MaxFrame.Round(time.Microsecond),
	)

	names := make([]string, 0, len(stats.PhaseAvg))
	for name := range stats.PhaseAvg {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		return cmp.Compare(stats.PhaseAvg[b], stats.PhaseAvg[a])
	})
	for _, name := range names {
		Logf("  %-12s %10s  %5.1f%%", name, stats.PhaseAvg[name].Round(time.Microsecond), stats.PhasePct[name])
	}
	Logf("")
}

// logWorldState logs list occupancy and the last frame's events.
func (g *Game) logWorldState() {
	pool := g.manager.Pool()
	counts := g.manager.Counts()
	ev := g.manager.LastEvents()

	Logf("=== Frame %d | t=%.1fs ===", g.frame, g.simTime)
	Logf("Pool: %d slots | rain %d | fire %d | general %d | free %d",
		pool.Capacity(),
		pool.Len(particles.ListRain),
		pool.Len(particles.ListFire),
		pool.Len(particles.ListGeneral),
		pool.Len(particles.ListFree),
	)
	Logf("Instances: active %d (rain %d, fire %d, general %d) dropped %d",
		counts.Active, counts.Rain, counts.Fire, counts.General, counts.Dropped)
	Logf("Last frame: splashes %d, ring %d, fire %d, smoke %d, expired %d/%d, shortfall %d",
		ev.RainSplashes, ev.RingSpawned, ev.FireSpawned, ev.SmokeTransitions,
		ev.GeneralExpired, ev.FireExpired, ev.SpawnShortfall)
	if g.uploadFailures > 0 {
		Logf("Upload failures: %d", g.uploadFailures)
	}
	if g.paused {
		Logf("PAUSED")
	}
	Logf("")
}

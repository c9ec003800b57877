package telemetry

import (
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/stat"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkPoolExhausted BookmarkType = "pool_exhausted"
	BookmarkPoolRecovered BookmarkType = "pool_recovered"
	BookmarkFireSteady    BookmarkType = "fire_steady"
	BookmarkSplashSurge   BookmarkType = "splash_surge"
	BookmarkSmokeDominant BookmarkType = "smoke_dominant"
)

// Detection thresholds.
const (
	steadyWindows    = 4    // windows compared for fire steady state
	steadyMaxCV      = 0.05 // coefficient of variation of the fire count
	surgeFactor      = 2.0  // ring spawns over the rolling average
	smokeDominantMin = 0.5  // smoke fraction of the fire list
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	RunID       string       `csv:"run_id"`
	Type        BookmarkType `csv:"type"`
	Frame       int64        `csv:"frame"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"frame", b.Frame,
		"description", b.Description,
	)
}

// BookmarkDetector detects notable windows: pool exhaustion and recovery,
// the fire reaching steady state, splash surges and smoke taking over.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// Edge-triggered state
	exhausted  bool
	fireSteady bool
	smokeHeavy bool
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < steadyWindows {
		historySize = steadyWindows
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark
	add := func(b *Bookmark) {
		if b != nil {
			b.Frame = stats.WindowEndFrame
			bookmarks = append(bookmarks, *b)
		}
	}

	add(bd.checkPool(stats))
	add(bd.checkSplashSurge(stats))
	add(bd.checkSmoke(stats))

	bd.addToHistory(stats)

	// Steady state includes the current window
	add(bd.checkFireSteady())

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// getHistory returns past windows oldest first.
func (bd *BookmarkDetector) getHistory() []WindowStats {
	if !bd.historyFull {
		return bd.history[:bd.historyIdx]
	}
	out := make([]WindowStats, 0, bd.historySize)
	out = append(out, bd.history[bd.historyIdx:]...)
	return append(out, bd.history[:bd.historyIdx]...)
}

func (bd *BookmarkDetector) checkPool(stats WindowStats) *Bookmark {
	short := stats.SpawnShortfall > 0 || stats.Dropped > 0
	switch {
	case short && !bd.exhausted:
		bd.exhausted = true
		return &Bookmark{
			Type:        BookmarkPoolExhausted,
			Description: fmt.Sprintf("%d spawns skipped, %d instances dropped", stats.SpawnShortfall, stats.Dropped),
		}
	case !short && bd.exhausted:
		bd.exhausted = false
		return &Bookmark{
			Type:        BookmarkPoolRecovered,
			Description: fmt.Sprintf("%d slots free", stats.Free),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkSplashSurge(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}
	var sum float64
	for _, h := range history {
		sum += float64(h.RingSpawned)
	}
	avg := sum / float64(len(history))
	if avg <= 0 || float64(stats.RingSpawned) <= surgeFactor*avg {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkSplashSurge,
		Description: fmt.Sprintf("%d ring particles vs %.0f average", stats.RingSpawned, avg),
	}
}

func (bd *BookmarkDetector) checkSmoke(stats WindowStats) *Bookmark {
	heavy := stats.Fire > 0 && stats.SmokeFraction >= smokeDominantMin
	if heavy == bd.smokeHeavy {
		return nil
	}
	bd.smokeHeavy = heavy
	if !heavy {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkSmokeDominant,
		Description: fmt.Sprintf("%.0f%% of the fire list is smoke", stats.SmokeFraction*100),
	}
}

// checkFireSteady fires once when the fire count over the last windows
// settles, and re-arms when it moves again.
func (bd *BookmarkDetector) checkFireSteady() *Bookmark {
	history := bd.getHistory()
	if len(history) < steadyWindows {
		return nil
	}
	recent := history[len(history)-steadyWindows:]

	fire := make([]float64, len(recent))
	for i, h := range recent {
		fire[i] = float64(h.Fire)
	}
	mean, variance := stat.PopMeanVariance(fire, nil)

	steady := mean > 0 && math.Sqrt(variance)/mean < steadyMaxCV
	if steady == bd.fireSteady {
		return nil
	}
	bd.fireSteady = steady
	if !steady {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkFireSteady,
		Description: fmt.Sprintf("fire holding at %.0f particles", mean),
	}
}

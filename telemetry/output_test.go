package telemetry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/drizzle/config"
)

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	require.NoError(t, err)
	require.Nil(t, om)

	// Nil receiver is a no-op
	assert.NoError(t, om.WriteWindow(WindowStats{}))
	assert.NoError(t, om.WritePerf(PerfStats{}, 0))
	assert.NoError(t, om.WriteBookmark(Bookmark{}))
	assert.NoError(t, om.WriteRunInfo(RunInfo{}))
	assert.NoError(t, om.Close())
	assert.Empty(t, om.Dir())
	assert.Empty(t, om.RunID())
}

func TestOutputManagerWritesRows(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	require.NoError(t, err)

	_, err = uuid.Parse(om.RunID())
	require.NoError(t, err)

	require.NoError(t, om.WriteWindow(WindowStats{WindowEndFrame: 300, Fire: 12}))
	require.NoError(t, om.WriteWindow(WindowStats{WindowEndFrame: 600, Fire: 40}))
	require.NoError(t, om.WritePerf(PerfStats{PhasePct: map[string]float64{}}, 300))
	require.NoError(t, om.Close())

	f, err := os.Open(filepath.Join(dir, "frames.csv"))
	require.NoError(t, err)
	defer f.Close()

	var rows []WindowStats
	require.NoError(t, gocsv.UnmarshalFile(f, &rows))
	require.Len(t, rows, 2, "header is written once")
	assert.Equal(t, int64(600), rows[1].WindowEndFrame)
	assert.Equal(t, 40, rows[1].Fire)
	assert.Equal(t, om.RunID(), rows[0].RunID)

	perf, err := os.ReadFile(filepath.Join(dir, "perf.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(perf), "run_id,window_end")
}

func TestOutputManagerWritesBookmarks(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	require.NoError(t, err)

	require.NoError(t, om.WriteBookmark(Bookmark{Type: BookmarkPoolExhausted, Frame: 600, Description: "12 spawns skipped"}))
	require.NoError(t, om.WriteBookmark(Bookmark{Type: BookmarkPoolRecovered, Frame: 900}))
	require.NoError(t, om.Close())

	f, err := os.Open(filepath.Join(dir, "bookmarks.csv"))
	require.NoError(t, err)
	defer f.Close()

	var rows []Bookmark
	require.NoError(t, gocsv.UnmarshalFile(f, &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, BookmarkPoolExhausted, rows[0].Type)
	assert.Equal(t, "12 spawns skipped", rows[0].Description)
	assert.Equal(t, int64(900), rows[1].Frame)
	assert.Equal(t, om.RunID(), rows[1].RunID)
}

func TestOutputManagerRunInfoAndConfig(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	require.NoError(t, err)
	t.Cleanup(func() { om.Close() })

	require.NoError(t, om.WriteRunInfo(RunInfo{Seed: 42, Mode: "headless", Frames: 10}))

	data, err := os.ReadFile(filepath.Join(dir, "run.yaml"))
	require.NoError(t, err)
	var info RunInfo
	require.NoError(t, yaml.Unmarshal(data, &info))
	assert.Equal(t, om.RunID(), info.RunID)
	assert.Equal(t, int64(42), info.Seed)

	cfg, err := config.Load("")
	require.NoError(t, err)
	require.NoError(t, om.WriteConfig(cfg))
	_, err = config.Load(filepath.Join(dir, "config.yaml"))
	assert.NoError(t, err)
}

package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a window of frames.
type WindowStats struct {
	RunID            string  `csv:"run_id"`
	WindowStartFrame int64   `csv:"-"`
	WindowEndFrame   int64   `csv:"window_end"`
	SimTimeSec       float64 `csv:"sim_time"`

	// List lengths at window end
	Rain    int `csv:"rain"`
	Fire    int `csv:"fire"`
	General int `csv:"general"`
	Free    int `csv:"free"`
	Active  int `csv:"active"`

	// Events during window
	RainSplashes     int `csv:"rain_splashes"`
	RingSpawned      int `csv:"ring_spawned"`
	FireSpawned      int `csv:"fire_spawned"`
	GeneralExpired   int `csv:"general_expired"`
	FireExpired      int `csv:"fire_expired"`
	SmokeTransitions int `csv:"smoke_transitions"`
	SpawnShortfall   int `csv:"spawn_shortfall"`
	Dropped          int `csv:"dropped"`

	// Active instance count over the window's frames
	ActiveMean float64 `csv:"active_mean"`
	ActiveStd  float64 `csv:"active_std"`
	ActiveP10  float64 `csv:"active_p10"`
	ActiveP50  float64 `csv:"active_p50"`
	ActiveP90  float64 `csv:"active_p90"`

	// Fire particle heights sampled at window end
	FireHeightMean float64 `csv:"fire_height_mean"`
	FireHeightP90  float64 `csv:"fire_height_p90"`
	SmokeFraction  float64 `csv:"smoke_fraction"`
}

// Summary is the mean, standard deviation and percentiles of a sample.
type Summary struct {
	Mean, Std     float64
	P10, P50, P90 float64
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation between closest ranks
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}
	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Summarize computes a Summary of values. The sample standard deviation is
// zero for fewer than two values.
func Summarize(values []float64) Summary {
	n := len(values)
	if n == 0 {
		return Summary{}
	}

	var s Summary
	if n == 1 {
		s.Mean = values[0]
	} else {
		s.Mean, s.Std = stat.MeanStdDev(values, nil)
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	s.P10 = Percentile(sorted, 0.10)
	s.P50 = Percentile(sorted, 0.50)
	s.P90 = Percentile(sorted, 0.90)
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartFrame),
		slog.Int64("window_end", s.WindowEndFrame),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("rain", s.Rain),
		slog.Int("fire", s.Fire),
		slog.Int("general", s.General),
		slog.Int("free", s.Free),
		slog.Int("active", s.Active),
		slog.Int("rain_splashes", s.RainSplashes),
		slog.Int("ring_spawned", s.RingSpawned),
		slog.Int("fire_spawned", s.FireSpawned),
		slog.Int("general_expired", s.GeneralExpired),
		slog.Int("fire_expired", s.FireExpired),
		slog.Int("smoke_transitions", s.SmokeTransitions),
		slog.Int("spawn_shortfall", s.SpawnShortfall),
		slog.Int("dropped", s.Dropped),
		slog.Float64("active_mean", s.ActiveMean),
		slog.Float64("active_std", s.ActiveStd),
		slog.Float64("active_p10", s.ActiveP10),
		slog.Float64("active_p50", s.ActiveP50),
		slog.Float64("active_p90", s.ActiveP90),
		slog.Float64("fire_height_mean", s.FireHeightMean),
		slog.Float64("fire_height_p90", s.FireHeightP90),
		slog.Float64("smoke_fraction", s.SmokeFraction),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndFrame,
		"sim_time", s.SimTimeSec,
		"rain", s.Rain,
		"fire", s.Fire,
		"general", s.General,
		"free", s.Free,
		"active", s.Active,
		"rain_splashes", s.RainSplashes,
		"ring_spawned", s.RingSpawned,
		"fire_spawned", s.FireSpawned,
		"general_expired", s.GeneralExpired,
		"fire_expired", s.FireExpired,
		"smoke_transitions", s.SmokeTransitions,
		"spawn_shortfall", s.SpawnShortfall,
		"dropped", s.Dropped,
		"active_mean", s.ActiveMean,
		"active_std", s.ActiveStd,
		"active_p50", s.ActiveP50,
		"fire_height_mean", s.FireHeightMean,
		"fire_height_p90", s.FireHeightP90,
		"smoke_fraction", s.SmokeFraction,
	)
}

// Package telemetry accumulates per-window simulation counters and
// writes them to CSV and structured logs.
package telemetry

import "log/slog"

// WindowStats holds aggregated counters for one tick window.
type WindowStats struct {
	WindowStartTick int64 `csv:"-"`
	WindowEndTick   int64 `csv:"window_end"`

	// Events during the window
	Drops      int `csv:"drops"`
	Avalanches int `csv:"avalanches"`
	Topples    int `csv:"topples"`
	MaxSize    int `csv:"max_size"`

	MeanSize float64 `csv:"mean_size"`

	// Engine state sampled at window end (for conservation checks)
	GridMass      int    `csv:"grid_mass"`
	BoundaryLoss  uint64 `csv:"boundary_loss"`
	TotalDrops    uint64 `csv:"total_drops"`
	TotalRecorded int    `csv:"total_recorded"`
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartTick),
		slog.Int64("window_end", s.WindowEndTick),
		slog.Int("drops", s.Drops),
		slog.Int("avalanches", s.Avalanches),
		slog.Int("topples", s.Topples),
		slog.Int("max_size", s.MaxSize),
		slog.Float64("mean_size", s.MeanSize),
		slog.Int("grid_mass", s.GridMass),
		slog.Uint64("boundary_loss", s.BoundaryLoss),
		slog.Uint64("total_drops", s.TotalDrops),
		slog.Int("total_recorded", s.TotalRecorded),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"drops", s.Drops,
		"avalanches", s.Avalanches,
		"topples", s.Topples,
		"max_size", s.MaxSize,
		"mean_size", s.MeanSize,
		"grid_mass", s.GridMass,
		"boundary_loss", s.BoundaryLoss,
		"total_drops", s.TotalDrops,
		"total_recorded", s.TotalRecorded,
	)
}

// Package game runs the driver loop: drop grains, resolve the
// triggered cascades, record avalanche sizes, and hand the grid and
// the statistics series to their collaborators.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"

	"sandpile/config"
	"sandpile/renderer"
	"sandpile/report"
	"sandpile/sim"
	"sandpile/stats"
	"sandpile/telemetry"
)

// Options holds driver settings taken from flags.
type Options struct {
	Seed             int64
	Headless         bool
	LogStats         bool
	StatsWindowTicks int64 // 0 = use config
	OutputDir        string
	ReportDir        string
	SnapshotDir      string
	ResumePath       string
	StepsPerUpdate   int
}

// Game holds the complete simulation state: the engine, its
// collaborators, and the driver bookkeeping.
type Game struct {
	engine *sim.Engine
	target sim.DropTarget
	rng    *rand.Rand

	collector *telemetry.Collector
	output    *telemetry.OutputManager
	perf      *telemetry.PerfCollector

	gridRenderer *renderer.GridRenderer
	panel        controlPanel

	tick         int64
	paused       bool
	dropsPerTick int
	opts         Options
}

// NewGameWithOptions creates a game from the loaded config and opts.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := config.Cfg()

	if opts.StepsPerUpdate < 1 {
		opts.StepsPerUpdate = 1
	}

	g := &Game{
		rng:          rand.New(rand.NewSource(opts.Seed)),
		dropsPerTick: cfg.Drops.PerTick,
		opts:         opts,
	}

	if opts.ResumePath != "" {
		snap, err := sim.LoadSnapshot(opts.ResumePath)
		if err != nil {
			return nil, fmt.Errorf("resume: %w", err)
		}
		g.engine, err = sim.Restore(snap)
		if err != nil {
			return nil, fmt.Errorf("resume: %w", err)
		}
		g.tick = snap.Tick
		slog.Info("resumed from snapshot",
			"path", opts.ResumePath,
			"tick", snap.Tick,
			"drops", snap.Drops,
		)
	} else {
		g.engine = sim.NewEngine(cfg.Grid.Width, cfg.Grid.Height, cfg.Grid.Threshold)
	}

	grid := g.engine.Grid()
	target, err := sim.NewDropTarget(cfg.Drops.Policy, grid.W, grid.H, cfg.Drops.Col, cfg.Drops.Row, g.rng)
	if err != nil {
		return nil, err
	}
	g.target = target

	windowTicks := cfg.Telemetry.WindowTicks
	if opts.StatsWindowTicks > 0 {
		windowTicks = opts.StatsWindowTicks
	}
	g.collector = telemetry.NewCollector(windowTicks)
	g.perf = telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow)

	g.output, err = telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := g.output.WriteConfig(cfg); err != nil {
		return nil, err
	}

	if !opts.Headless {
		g.gridRenderer = renderer.NewGridRenderer(cfg.Derived.CellSize)
	}

	return g, nil
}

// simulationStep runs one driver tick: dropsPerTick full drop+relax
// cycles, then telemetry. Returns the stabilizer's error on an
// invariant breach, after dumping a diagnostic snapshot.
func (g *Game) simulationStep() error {
	cfg := config.Cfg()

	g.perf.StartTick()
	g.perf.StartPhase(telemetry.PhaseSimulate)

	for i := 0; i < g.dropsPerTick; i++ {
		col, row := g.target.Next()
		size, err := g.engine.DropAndStabilize(col, row)
		if err != nil {
			return g.reportInvariantBreach(err)
		}
		g.collector.RecordDrop()
		g.collector.RecordAvalanche(size)
	}
	g.tick++

	g.perf.StartPhase(telemetry.PhaseTelemetry)

	if g.collector.ShouldFlush(g.tick) {
		ws := g.collector.Flush(
			g.tick,
			g.engine.Grid().Total(),
			g.engine.BoundaryLoss(),
			g.engine.Drops(),
			g.engine.AvalancheCount(),
		)
		if err := g.output.WriteTelemetry(ws); err != nil {
			slog.Error("telemetry write failed", "error", err)
		}
		if g.opts.LogStats {
			ws.LogStats()
		}
	}

	if every := cfg.Telemetry.ProgressEvery; every > 0 && g.tick%every == 0 {
		slog.Info("progress",
			"tick", g.tick,
			"drops", g.engine.Drops(),
			"avalanches", g.engine.AvalancheCount(),
			"grid_mass", g.engine.Grid().Total(),
		)
		if g.opts.LogStats {
			g.perf.LogPerf(g.tick)
		}
	}

	g.perf.EndTick()
	return nil
}

// reportInvariantBreach saves whatever diagnostic state it can before
// handing the fatal error back to the caller.
func (g *Game) reportInvariantBreach(err error) error {
	slog.Error("stabilization invariant breach", "tick", g.tick, "error", err)
	dir := g.opts.SnapshotDir
	if dir == "" {
		dir = g.output.Dir()
	}
	if dir != "" {
		if path, saveErr := sim.SaveSnapshot(g.engine.Snapshot(g.tick), dir); saveErr != nil {
			slog.Error("diagnostic snapshot failed", "error", saveErr)
		} else {
			slog.Info("diagnostic snapshot written", "path", path)
		}
	}
	return err
}

// UpdateHeadless advances the simulation without graphics.
func (g *Game) UpdateHeadless() error {
	for i := 0; i < g.opts.StepsPerUpdate; i++ {
		if err := g.simulationStep(); err != nil {
			return err
		}
	}
	return nil
}

// WriteReport runs the statistics pipeline over the current series and
// renders the charts when a report directory is configured. The fit is
// recomputed from scratch on every call.
func (g *Game) WriteReport() (stats.Result, error) {
	cfg := config.Cfg()
	sizes := g.engine.AvalancheSizes()
	res := stats.FitPowerLaw(sizes, g.engine.Drops(), cfg.Stats.Bins)

	switch res.Status {
	case stats.StatusOK:
		slog.Info("power-law fit",
			"slope", res.Slope,
			"intercept", res.Intercept,
			"r2", res.R2,
			"tau", res.Tau,
			"avalanches", res.Avalanches,
			"drops", res.Drops,
		)
	default:
		slog.Warn("statistics incomplete",
			"status", res.Status.String(),
			"avalanches", res.Avalanches,
			"drops", res.Drops,
		)
	}

	if g.opts.ReportDir != "" && res.Status != stats.StatusNoData {
		paths, err := report.WriteAll(g.opts.ReportDir, res, sizes)
		if err != nil {
			return res, err
		}
		slog.Info("report written", "files", paths)
	}
	return res, nil
}

// SaveState snapshots the full engine state to the snapshot directory.
func (g *Game) SaveState() (string, error) {
	dir := g.opts.SnapshotDir
	if dir == "" {
		dir = "snapshots"
	}
	return sim.SaveSnapshot(g.engine.Snapshot(g.tick), dir)
}

// Close writes the final avalanche series and closes output files.
func (g *Game) Close() error {
	if err := g.output.WriteAvalanches(g.engine.AvalancheSizes()); err != nil {
		slog.Error("avalanche series write failed", "error", err)
	}
	return g.output.Close()
}

// Tick returns the current driver tick.
func (g *Game) Tick() int64 { return g.tick }

// Engine exposes the engine for collaborators and tests.
func (g *Game) Engine() *sim.Engine { return g.engine }

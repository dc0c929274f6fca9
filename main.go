package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"sandpile/config"
	"sandpile/game"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output window stats via slog")
	statsWindow := flag.Int64("stats-window", 0, "Stats window size in ticks (0 = use config)")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for state snapshot files")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	reportDir := flag.String("report-dir", "", "Directory for PNG charts (empty = no charts)")
	resume := flag.String("resume", "", "Path to a state snapshot to resume from")
	seed := flag.Int64("seed", 0, "RNG seed for the random drop policy (0 = time-based)")
	maxTicks := flag.Int64("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Simulation ticks per update call (higher = faster headless runs)")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	opts := game.Options{
		Seed:             rngSeed,
		Headless:         *headless,
		LogStats:         *logStats,
		StatsWindowTicks: *statsWindow,
		OutputDir:        *outputDir,
		ReportDir:        *reportDir,
		SnapshotDir:      *snapshotDir,
		ResumePath:       *resume,
		StepsPerUpdate:   *stepsPerUpdate,
	}

	if *headless {
		runHeadless(opts, *maxTicks)
		return
	}

	// Graphical mode
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Sandpile Criticality")
	defer rl.CloseWindow()

	if cfg.Screen.TargetFPS > 0 {
		rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))
	}

	g, err := game.NewGameWithOptions(opts)
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer g.Close()

	for !rl.WindowShouldClose() {
		if err := g.Update(); err != nil {
			slog.Error("simulation aborted", "error", err)
			break
		}
		g.Draw()

		if *maxTicks > 0 && g.Tick() >= *maxTicks {
			break
		}
	}

	// Final analysis, matching the on-demand P key
	if _, err := g.WriteReport(); err != nil {
		slog.Error("final report failed", "error", err)
	}
}

func runHeadless(opts game.Options, maxTicks int64) {
	g, err := game.NewGameWithOptions(opts)
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer g.Close()

	slog.Info("starting headless simulation",
		"seed", opts.Seed,
		"max_ticks", maxTicks,
		"steps_per_update", opts.StepsPerUpdate,
	)

	for {
		if err := g.UpdateHeadless(); err != nil {
			slog.Error("simulation aborted", "error", err)
			os.Exit(1)
		}

		if maxTicks > 0 && g.Tick() >= maxTicks {
			slog.Info("max ticks reached", "tick", g.Tick())
			break
		}
	}

	if _, err := g.WriteReport(); err != nil {
		slog.Error("final report failed", "error", err)
		os.Exit(1)
	}
}

package game

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Update handles input and advances the simulation in windowed mode.
func (g *Game) Update() error {
	g.handleInput()

	if g.paused {
		return nil
	}

	for i := 0; i < g.opts.StepsPerUpdate; i++ {
		if err := g.simulationStep(); err != nil {
			return err
		}
	}
	return nil
}

// handleInput processes keyboard input. All actions land between
// drop+stabilize cycles, never inside one, so the grid stays stable.
func (g *Game) handleInput() {
	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
		if g.paused {
			slog.Info("paused", "tick", g.tick)
		} else {
			slog.Info("resumed", "tick", g.tick)
		}
	}

	// On-demand analysis of whatever has been recorded so far
	if rl.IsKeyPressed(rl.KeyP) {
		if _, err := g.WriteReport(); err != nil {
			slog.Error("report failed", "error", err)
		}
	}

	if rl.IsKeyPressed(rl.KeyS) {
		if path, err := g.SaveState(); err != nil {
			slog.Error("snapshot failed", "error", err)
		} else {
			slog.Info("snapshot written", "path", path)
		}
	}

	if rl.IsKeyPressed(rl.KeyTab) {
		g.panel.Toggle()
	}

	// Drop rate control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && g.dropsPerTick > 1 {
		g.dropsPerTick--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && g.dropsPerTick < maxDropsPerTick {
		g.dropsPerTick++
	}
}

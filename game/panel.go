package game

import (
	"fmt"
	"log/slog"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

const maxDropsPerTick = 50

// controlPanel is a small raygui overlay for run controls. Hidden by
// default; Tab toggles it.
type controlPanel struct {
	visible bool
}

// Toggle switches panel visibility.
func (p *controlPanel) Toggle() {
	p.visible = !p.visible
}

// Draw renders the panel and applies any control changes to the game.
func (p *controlPanel) Draw(g *Game) {
	if !p.visible {
		return
	}

	const panelX, panelW = float32(10), float32(260)
	y := float32(120)

	rl.DrawRectangle(int32(panelX)-5, int32(y)-10, int32(panelW)+10, 150, rl.Color{R: 0, G: 0, B: 0, A: 180})

	newDrops := gui.SliderBar(
		rl.Rectangle{X: panelX + 90, Y: y, Width: panelW - 130, Height: 20},
		"drops/tick",
		fmt.Sprintf("%d", g.dropsPerTick),
		float32(g.dropsPerTick), 1, maxDropsPerTick,
	)
	g.dropsPerTick = int(newDrops)
	y += 35

	pauseLabel := "Pause"
	if g.paused {
		pauseLabel = "Resume"
	}
	if gui.Button(rl.Rectangle{X: panelX, Y: y, Width: 120, Height: 30}, pauseLabel) {
		g.paused = !g.paused
	}
	if gui.Button(rl.Rectangle{X: panelX + 130, Y: y, Width: 120, Height: 30}, "Report") {
		if _, err := g.WriteReport(); err != nil {
			slog.Error("report failed", "error", err)
		}
	}
	y += 40

	if gui.Button(rl.Rectangle{X: panelX, Y: y, Width: 120, Height: 30}, "Snapshot") {
		if path, err := g.SaveState(); err != nil {
			slog.Error("snapshot failed", "error", err)
		} else {
			slog.Info("snapshot written", "path", path)
		}
	}
}

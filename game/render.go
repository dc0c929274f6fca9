package game

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"sandpile/renderer"
)

// Draw renders the grid and HUD. The renderer only reads the grid, and
// only between drop+stabilize cycles, so it always sees a stable state.
func (g *Game) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(renderer.Background)

	g.gridRenderer.Draw(g.engine.Grid())

	rl.DrawText(fmt.Sprintf("Tick: %d  Drops: %d", g.tick, g.engine.Drops()), 10, 10, 20, rl.White)
	rl.DrawText(fmt.Sprintf("Avalanches: %d  Mass: %d", g.engine.AvalancheCount(), g.engine.Grid().Total()), 10, 35, 20, rl.White)
	rl.DrawText(fmt.Sprintf("Drops/tick: %d  [</>]", g.dropsPerTick), 10, 60, 20, rl.White)
	if g.paused {
		rl.DrawText("PAUSED", 10, 85, 20, rl.Yellow)
	}

	g.panel.Draw(g)

	rl.EndDrawing()
}

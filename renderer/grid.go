// Package renderer draws the sandpile grid. It is a pull-only
// consumer: it reads cell values and never mutates them.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"sandpile/sim"
)

// Background matches palette level 0 so empty cells blend in.
var Background = rl.Color{R: 15, G: 15, B: 25, A: 255}

// palette maps clamped cell values to colors: empty, 1, 2, 3, and a
// high-contrast entry for anything at or above the threshold.
var palette = []rl.Color{
	{R: 15, G: 15, B: 25, A: 255},
	{R: 30, G: 60, B: 100, A: 255},
	{R: 80, G: 40, B: 120, A: 255},
	{R: 180, G: 70, B: 100, A: 255},
	{R: 240, G: 240, B: 50, A: 255},
}

// GridRenderer renders grid cells as filled squares.
type GridRenderer struct {
	cellSize int32
}

// NewGridRenderer creates a renderer drawing each cell at the given
// pixel size.
func NewGridRenderer(cellSize int) *GridRenderer {
	if cellSize < 1 {
		cellSize = 1
	}
	return &GridRenderer{cellSize: int32(cellSize)}
}

// Draw renders every occupied cell, clamping values into the palette.
func (r *GridRenderer) Draw(g *sim.Grid) {
	cells := g.Cells()
	cs := r.cellSize
	for row := 0; row < g.H; row++ {
		base := row * g.W
		for col := 0; col < g.W; col++ {
			v := cells[base+col]
			if v == 0 {
				continue
			}
			if v >= len(palette) {
				v = len(palette) - 1
			}
			// cs-1 leaves a hairline gap between cells
			rl.DrawRectangle(int32(col)*cs, int32(row)*cs, cs-1, cs-1, palette[v])
		}
	}
}

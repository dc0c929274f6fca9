// Package sim implements the sandpile engine: a bounded integer lattice
// that accumulates grains and relaxes unstable cells through synchronous
// toppling passes, recording the size of every resulting avalanche.
package sim

import (
	"errors"
	"fmt"
)

// ErrOutOfBounds is returned for any cell access outside the grid.
var ErrOutOfBounds = errors.New("cell out of bounds")

// Grid stores grain counts on a fixed W×H lattice in row-major order.
// Cell values are non-negative; they may exceed the toppling threshold
// only transiently between relaxation passes.
type Grid struct {
	W, H  int
	cells []int
}

// NewGrid allocates a zeroed grid with the given dimensions.
func NewGrid(w, h int) *Grid {
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	return &Grid{W: w, H: h, cells: make([]int, w*h)}
}

// Index returns the linear slice index for (row, col).
func (g *Grid) Index(row, col int) int { return row*g.W + col }

// InBounds reports whether (row, col) addresses a valid cell.
func (g *Grid) InBounds(row, col int) bool {
	return row >= 0 && row < g.H && col >= 0 && col < g.W
}

func (g *Grid) check(row, col int) error {
	if !g.InBounds(row, col) {
		return fmt.Errorf("%w: (%d,%d) on %dx%d grid", ErrOutOfBounds, row, col, g.W, g.H)
	}
	return nil
}

// At returns the value of cell (row, col).
func (g *Grid) At(row, col int) (int, error) {
	if err := g.check(row, col); err != nil {
		return 0, err
	}
	return g.cells[g.Index(row, col)], nil
}

// Set writes v to cell (row, col). Negative values are rejected.
func (g *Grid) Set(row, col, v int) error {
	if err := g.check(row, col); err != nil {
		return err
	}
	if v < 0 {
		return fmt.Errorf("negative cell value %d at (%d,%d)", v, row, col)
	}
	g.cells[g.Index(row, col)] = v
	return nil
}

// Increment adds delta to cell (row, col). The result must stay non-negative.
func (g *Grid) Increment(row, col, delta int) error {
	if err := g.check(row, col); err != nil {
		return err
	}
	idx := g.Index(row, col)
	if g.cells[idx]+delta < 0 {
		return fmt.Errorf("increment by %d would make cell (%d,%d) negative", delta, row, col)
	}
	g.cells[idx] += delta
	return nil
}

// Cells exposes the backing slice for read-only consumers (renderers).
// Mutation is reserved for the engine that owns the grid.
func (g *Grid) Cells() []int { return g.cells }

// Total returns the total grain mass on the grid.
func (g *Grid) Total() int {
	sum := 0
	for _, v := range g.cells {
		sum += v
	}
	return sum
}

// MaxCell returns the largest cell value on the grid.
func (g *Grid) MaxCell() int {
	max := 0
	for _, v := range g.cells {
		if v > max {
			max = v
		}
	}
	return max
}

// Clone returns an independent copy of the grid.
func (g *Grid) Clone() *Grid {
	c := &Grid{W: g.W, H: g.H, cells: make([]int, len(g.cells))}
	copy(c.cells, g.cells)
	return c
}

// Clear resets every cell to zero.
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = 0
	}
}

package sim

import "fmt"

// neighborCount is the von Neumann neighborhood size.
const neighborCount = 4

// DefaultThreshold is the toppling threshold for the 4-neighbor von
// Neumann topology (one grain per neighbor).
const DefaultThreshold = neighborCount

// InvariantError reports an internal inconsistency in the relaxation
// loop: the grid claimed to hold an unstable cell but none was found.
// This signals a programming defect, never a recoverable condition.
type InvariantError struct {
	Passes int   // relaxation passes completed before the breach
	Grid   *Grid // snapshot of the grid at the point of failure
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("stabilize: unstable scan found no cells after %d passes on %dx%d grid (total mass %d)",
		e.Passes, e.Grid.W, e.Grid.H, e.Grid.Total())
}

// Engine owns the grid and the two running accumulators of the
// simulation: the drop counter and the avalanche size series. All
// methods assume a single writer; the grid is always stable between
// public calls.
type Engine struct {
	grid      *Grid
	threshold int

	drops        uint64
	boundaryLoss uint64
	avalanches   []int

	// scratch holds per-pass neighbor additions so every topple in a
	// pass reads pre-pass values. Reused across calls.
	scratch  []int
	unstable []int
}

// NewEngine creates an engine over a zeroed w×h grid. The threshold
// must be a positive multiple of the neighbor count so each topple
// sheds an even per-neighbor share; any other value selects
// DefaultThreshold. ValidThreshold reports which values pass through.
func NewEngine(w, h, threshold int) *Engine {
	if !ValidThreshold(threshold) {
		threshold = DefaultThreshold
	}
	g := NewGrid(w, h)
	return &Engine{
		grid:      g,
		threshold: threshold,
		scratch:   make([]int, len(g.cells)),
	}
}

// ValidThreshold reports whether threshold divides evenly over the
// 4-neighbor topology. Anything else would create or destroy grains on
// interior topples.
func ValidThreshold(threshold int) bool {
	return threshold >= neighborCount && threshold%neighborCount == 0
}

// Grid returns the engine's grid. Callers other than the engine must
// treat it as read-only.
func (e *Engine) Grid() *Grid { return e.grid }

// Threshold returns the toppling threshold.
func (e *Engine) Threshold() int { return e.threshold }

// Drops returns the number of successful grain drops so far.
func (e *Engine) Drops() uint64 { return e.drops }

// BoundaryLoss returns the total number of grains lost off the open
// boundary during toppling.
func (e *Engine) BoundaryLoss() uint64 { return e.boundaryLoss }

// AvalancheCount returns the number of recorded (non-zero) avalanches.
func (e *Engine) AvalancheCount() int { return len(e.avalanches) }

// AvalancheSizes returns a copy of the avalanche size series in drop
// order.
func (e *Engine) AvalancheSizes() []int {
	out := make([]int, len(e.avalanches))
	copy(out, e.avalanches)
	return out
}

// AddGrain drops one grain on (col, row). Out-of-range drops are a
// no-op and do not advance the drop counter, so conservation
// accounting stays intact. Reports whether the grain landed.
func (e *Engine) AddGrain(col, row int) bool {
	if !e.grid.InBounds(row, col) {
		return false
	}
	e.grid.cells[e.grid.Index(row, col)]++
	e.drops++
	return true
}

// Stabilize relaxes the grid until every cell is below the threshold
// and returns the avalanche size: the total number of toppling events
// across all passes. A cell that topples in several passes counts once
// per pass. Stabilizing an already-stable grid returns 0 and leaves
// the grid untouched.
func (e *Engine) Stabilize() (int, error) {
	g := e.grid
	avalanche := 0
	passes := 0

	for e.anyUnstable() {
		e.unstable = e.unstable[:0]
		for i, v := range g.cells {
			if v >= e.threshold {
				e.unstable = append(e.unstable, i)
			}
		}
		if len(e.unstable) == 0 {
			return avalanche, &InvariantError{Passes: passes, Grid: g.Clone()}
		}

		passes++
		avalanche += len(e.unstable)

		for i := range e.scratch {
			e.scratch[i] = 0
		}

		// Topple every unstable cell against its pre-pass value.
		// Additions land in the scratch buffer and become visible
		// only in the next pass, so enumeration order cannot affect
		// the outcome. Each in-bounds neighbor receives an equal
		// share of the shed grains.
		share := e.threshold / neighborCount
		for _, idx := range e.unstable {
			row := idx / g.W
			col := idx % g.W
			g.cells[idx] -= e.threshold

			delivered := 0
			if col > 0 {
				e.scratch[idx-1] += share
				delivered += share
			}
			if col < g.W-1 {
				e.scratch[idx+1] += share
				delivered += share
			}
			if row > 0 {
				e.scratch[idx-g.W] += share
				delivered += share
			}
			if row < g.H-1 {
				e.scratch[idx+g.W] += share
				delivered += share
			}
			// Grains aimed off-grid are gone: open boundary.
			e.boundaryLoss += uint64(e.threshold - delivered)
		}

		for i, add := range e.scratch {
			if add != 0 {
				g.cells[i] += add
			}
		}
	}

	return avalanche, nil
}

func (e *Engine) anyUnstable() bool {
	for _, v := range e.grid.cells {
		if v >= e.threshold {
			return true
		}
	}
	return false
}

// DropAndStabilize runs one full drop+relax cycle: the grain lands,
// the triggered cascade resolves completely, and a non-zero avalanche
// is appended to the series. This is the only unit of work the driver
// schedules; pausing and cancellation happen between cycles, never
// inside one.
func (e *Engine) DropAndStabilize(col, row int) (int, error) {
	if !e.AddGrain(col, row) {
		return 0, nil
	}
	size, err := e.Stabilize()
	if err != nil {
		return size, err
	}
	e.recordAvalanche(size)
	return size, nil
}

// recordAvalanche appends size to the series iff it is positive.
// Drops that destabilize nothing leave no trace in the series.
func (e *Engine) recordAvalanche(size int) {
	if size > 0 {
		e.avalanches = append(e.avalanches, size)
	}
}

package sim

import (
	"fmt"
	"math/rand"
)

// Drop target policy names accepted by NewDropTarget.
const (
	PolicyCenter = "center"
	PolicyRandom = "random"
	PolicyFixed  = "fixed"
)

// DropTarget selects the cell each grain lands on. Where grains land
// is configuration, not a property of the model.
type DropTarget interface {
	Next() (col, row int)
}

// CenterTarget always drops on the grid centre.
type CenterTarget struct {
	col, row int
}

// NewCenterTarget returns a target fixed on the centre of a w×h grid.
func NewCenterTarget(w, h int) *CenterTarget {
	return &CenterTarget{col: w / 2, row: h / 2}
}

// Next returns the centre cell.
func (t *CenterTarget) Next() (int, int) { return t.col, t.row }

// FixedTarget always drops on one configured cell.
type FixedTarget struct {
	Col, Row int
}

// Next returns the configured cell.
func (t *FixedTarget) Next() (int, int) { return t.Col, t.Row }

// RandomTarget drops on a uniformly random cell.
type RandomTarget struct {
	w, h int
	rng  *rand.Rand
}

// NewRandomTarget returns a uniform random target over a w×h grid.
func NewRandomTarget(w, h int, rng *rand.Rand) *RandomTarget {
	return &RandomTarget{w: w, h: h, rng: rng}
}

// Next returns a fresh random cell.
func (t *RandomTarget) Next() (int, int) {
	return t.rng.Intn(t.w), t.rng.Intn(t.h)
}

// NewDropTarget builds a target for the named policy. The fixed policy
// uses (col, row); the random policy uses rng.
func NewDropTarget(policy string, w, h, col, row int, rng *rand.Rand) (DropTarget, error) {
	switch policy {
	case PolicyCenter, "":
		return NewCenterTarget(w, h), nil
	case PolicyRandom:
		return NewRandomTarget(w, h, rng), nil
	case PolicyFixed:
		if col < 0 || col >= w || row < 0 || row >= h {
			return nil, fmt.Errorf("fixed drop target (%d,%d) outside %dx%d grid", col, row, w, h)
		}
		return &FixedTarget{Col: col, Row: row}, nil
	default:
		return nil, fmt.Errorf("unknown drop policy %q", policy)
	}
}

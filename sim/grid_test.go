package sim

import (
	"errors"
	"testing"
)

func TestGridBounds(t *testing.T) {
	g := NewGrid(4, 3)

	tests := []struct {
		name     string
		row, col int
		ok       bool
	}{
		{"origin", 0, 0, true},
		{"last cell", 2, 3, true},
		{"row too big", 3, 0, false},
		{"col too big", 0, 4, false},
		{"negative row", -1, 0, false},
		{"negative col", 0, -1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.At(tt.row, tt.col)
			if tt.ok && err != nil {
				t.Fatalf("At(%d,%d) unexpected error: %v", tt.row, tt.col, err)
			}
			if !tt.ok && !errors.Is(err, ErrOutOfBounds) {
				t.Fatalf("At(%d,%d) error = %v, want ErrOutOfBounds", tt.row, tt.col, err)
			}
		})
	}
}

func TestGridRejectedWritesDoNotMutate(t *testing.T) {
	g := NewGrid(3, 3)

	if err := g.Set(5, 5, 1); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("Set out of bounds error = %v, want ErrOutOfBounds", err)
	}
	if err := g.Increment(-1, 0, 1); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("Increment out of bounds error = %v, want ErrOutOfBounds", err)
	}
	if err := g.Set(1, 1, -3); err == nil {
		t.Fatal("Set with negative value should fail")
	}
	if err := g.Increment(1, 1, -1); err == nil {
		t.Fatal("Increment below zero should fail")
	}

	if g.Total() != 0 {
		t.Fatalf("rejected writes changed the grid, total = %d", g.Total())
	}
}

func TestGridAccessors(t *testing.T) {
	g := NewGrid(3, 2)

	if err := g.Set(1, 2, 7); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := g.Increment(0, 0, 2); err != nil {
		t.Fatalf("Increment: %v", err)
	}

	if v, _ := g.At(1, 2); v != 7 {
		t.Errorf("At(1,2) = %d, want 7", v)
	}
	if g.Total() != 9 {
		t.Errorf("Total = %d, want 9", g.Total())
	}
	if g.MaxCell() != 7 {
		t.Errorf("MaxCell = %d, want 7", g.MaxCell())
	}

	c := g.Clone()
	if err := c.Set(1, 2, 0); err != nil {
		t.Fatalf("Set on clone: %v", err)
	}
	if v, _ := g.At(1, 2); v != 7 {
		t.Error("mutating a clone leaked into the original")
	}

	g.Clear()
	if g.Total() != 0 {
		t.Errorf("Total after Clear = %d, want 0", g.Total())
	}
}

func TestNewGridClampsDimensions(t *testing.T) {
	g := NewGrid(0, -2)
	if g.W != 1 || g.H != 1 {
		t.Fatalf("NewGrid(0,-2) = %dx%d, want 1x1", g.W, g.H)
	}
}

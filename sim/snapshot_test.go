package sim

import (
	"testing"
)

func TestSnapshotRoundTrip(t *testing.T) {
	e := NewEngine(6, 6, DefaultThreshold)
	for i := 0; i < 200; i++ {
		if _, err := e.DropAndStabilize(3, 3); err != nil {
			t.Fatalf("drop %d: %v", i+1, err)
		}
	}

	snap := e.Snapshot(50)
	path, err := SaveSnapshot(snap, t.TempDir())
	if err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if loaded.Tick != 50 {
		t.Errorf("tick = %d, want 50", loaded.Tick)
	}

	restored, err := Restore(loaded)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}

	if restored.Drops() != e.Drops() {
		t.Errorf("drops = %d, want %d", restored.Drops(), e.Drops())
	}
	if restored.BoundaryLoss() != e.BoundaryLoss() {
		t.Errorf("boundary loss = %d, want %d", restored.BoundaryLoss(), e.BoundaryLoss())
	}
	for i, v := range e.Grid().Cells() {
		if restored.Grid().Cells()[i] != v {
			t.Fatalf("cell %d = %d, want %d", i, restored.Grid().Cells()[i], v)
		}
	}

	orig := e.AvalancheSizes()
	got := restored.AvalancheSizes()
	if len(got) != len(orig) {
		t.Fatalf("series length = %d, want %d", len(got), len(orig))
	}
	for i := range orig {
		if got[i] != orig[i] {
			t.Fatalf("series[%d] = %d, want %d", i, got[i], orig[i])
		}
	}

	// A restored engine keeps simulating.
	if _, err := restored.DropAndStabilize(3, 3); err != nil {
		t.Fatalf("drop on restored engine: %v", err)
	}
}

func TestRestoreRejectsBadSnapshots(t *testing.T) {
	tests := []struct {
		name string
		snap Snapshot
	}{
		{"wrong version", Snapshot{Version: 99, Width: 2, Height: 2, Threshold: 4, Cells: make([]int, 4)}},
		{"bad dimensions", Snapshot{Version: SnapshotVersion, Width: 0, Height: 2, Threshold: 4}},
		{"uneven threshold", Snapshot{Version: SnapshotVersion, Width: 2, Height: 2, Threshold: 2, Cells: make([]int, 4)}},
		{"cell count mismatch", Snapshot{Version: SnapshotVersion, Width: 2, Height: 2, Threshold: 4, Cells: make([]int, 3)}},
		{"negative cell", Snapshot{Version: SnapshotVersion, Width: 2, Height: 2, Threshold: 4, Cells: []int{0, -1, 0, 0}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Restore(&tt.snap); err == nil {
				t.Fatal("Restore accepted an invalid snapshot")
			}
		})
	}
}

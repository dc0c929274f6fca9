package sim

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the complete engine state so a run can be resumed or
// a failure inspected offline.
type Snapshot struct {
	Version   int `json:"version"`
	Width     int `json:"width"`
	Height    int `json:"height"`
	Threshold int `json:"threshold"`

	Tick         int64  `json:"tick"`
	Drops        uint64 `json:"drops"`
	BoundaryLoss uint64 `json:"boundary_loss"`

	Cells          []int `json:"cells"`
	AvalancheSizes []int `json:"avalanche_sizes"`
}

// Snapshot captures the engine state at the given driver tick.
func (e *Engine) Snapshot(tick int64) *Snapshot {
	cells := make([]int, len(e.grid.cells))
	copy(cells, e.grid.cells)
	return &Snapshot{
		Version:        SnapshotVersion,
		Width:          e.grid.W,
		Height:         e.grid.H,
		Threshold:      e.threshold,
		Tick:           tick,
		Drops:          e.drops,
		BoundaryLoss:   e.boundaryLoss,
		Cells:          cells,
		AvalancheSizes: e.AvalancheSizes(),
	}
}

// Restore rebuilds an engine from a snapshot.
func Restore(s *Snapshot) (*Engine, error) {
	if s.Version != SnapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", s.Version)
	}
	if s.Width <= 0 || s.Height <= 0 {
		return nil, fmt.Errorf("invalid snapshot dimensions %dx%d", s.Width, s.Height)
	}
	if !ValidThreshold(s.Threshold) {
		return nil, fmt.Errorf("invalid snapshot threshold %d", s.Threshold)
	}
	if len(s.Cells) != s.Width*s.Height {
		return nil, fmt.Errorf("snapshot has %d cells, want %d", len(s.Cells), s.Width*s.Height)
	}
	e := NewEngine(s.Width, s.Height, s.Threshold)
	for i, v := range s.Cells {
		if v < 0 {
			return nil, fmt.Errorf("snapshot cell %d is negative (%d)", i, v)
		}
		e.grid.cells[i] = v
	}
	e.drops = s.Drops
	e.boundaryLoss = s.BoundaryLoss
	e.avalanches = append(e.avalanches, s.AvalancheSizes...)
	return e, nil
}

// SaveSnapshot writes a snapshot to dir and returns the file path.
func SaveSnapshot(s *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("snapshot_%d.json", s.Tick))

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &s, nil
}

package sim

import (
	"math/rand"
	"testing"
)

// Four drops on an interior cell of a 5x5 grid: the fourth reaches the
// threshold and triggers exactly one pass that leaves a cross of ones.
func TestInteriorToppleScenario(t *testing.T) {
	e := NewEngine(5, 5, DefaultThreshold)

	for i := 0; i < 3; i++ {
		size, err := e.DropAndStabilize(2, 2)
		if err != nil {
			t.Fatalf("drop %d: %v", i+1, err)
		}
		if size != 0 {
			t.Fatalf("drop %d avalanche size = %d, want 0", i+1, size)
		}
	}
	if n := e.AvalancheCount(); n != 0 {
		t.Fatalf("zero-size avalanches were recorded: %d entries", n)
	}

	size, err := e.DropAndStabilize(2, 2)
	if err != nil {
		t.Fatalf("fourth drop: %v", err)
	}
	if size != 1 {
		t.Fatalf("fourth drop avalanche size = %d, want 1", size)
	}

	want := map[[2]int]int{
		{2, 2}: 0,
		{1, 2}: 1,
		{3, 2}: 1,
		{2, 1}: 1,
		{2, 3}: 1,
	}
	for row := 0; row < 5; row++ {
		for col := 0; col < 5; col++ {
			v, _ := e.Grid().At(row, col)
			if v != want[[2]int{row, col}] {
				t.Errorf("cell (%d,%d) = %d, want %d", row, col, v, want[[2]int{row, col}])
			}
		}
	}

	if e.Drops() != 4 {
		t.Errorf("drop counter = %d, want 4", e.Drops())
	}
	if total := e.Grid().Total(); total != 4 {
		t.Errorf("grid mass = %d, want 4 (interior topple conserves)", total)
	}
	if e.BoundaryLoss() != 0 {
		t.Errorf("boundary loss = %d, want 0", e.BoundaryLoss())
	}
	if sizes := e.AvalancheSizes(); len(sizes) != 1 || sizes[0] != 1 {
		t.Errorf("series = %v, want [1]", sizes)
	}
}

// A corner cell has only two in-bounds neighbors, so its topple loses
// exactly two grains off the open boundary.
func TestCornerBoundaryLoss(t *testing.T) {
	e := NewEngine(5, 5, DefaultThreshold)

	for i := 0; i < 4; i++ {
		if _, err := e.DropAndStabilize(0, 0); err != nil {
			t.Fatalf("drop %d: %v", i+1, err)
		}
	}

	if v, _ := e.Grid().At(0, 0); v != 0 {
		t.Errorf("corner = %d, want 0", v)
	}
	if v, _ := e.Grid().At(0, 1); v != 1 {
		t.Errorf("east neighbor = %d, want 1", v)
	}
	if v, _ := e.Grid().At(1, 0); v != 1 {
		t.Errorf("south neighbor = %d, want 1", v)
	}
	if total := e.Grid().Total(); total != 2 {
		t.Errorf("grid mass = %d, want 2 (two grains lost off-grid)", total)
	}
	if e.BoundaryLoss() != 2 {
		t.Errorf("boundary loss = %d, want 2", e.BoundaryLoss())
	}
}

func TestOutOfBoundsDropIsNoOp(t *testing.T) {
	e := NewEngine(5, 5, DefaultThreshold)

	targets := [][2]int{{-1, 0}, {0, -1}, {5, 0}, {0, 5}}
	for _, tc := range targets {
		if e.AddGrain(tc[0], tc[1]) {
			t.Errorf("AddGrain(%d,%d) landed, want rejection", tc[0], tc[1])
		}
	}

	if e.Drops() != 0 {
		t.Errorf("drop counter = %d after rejected drops, want 0", e.Drops())
	}
	if e.Grid().Total() != 0 {
		t.Errorf("grid mass = %d after rejected drops, want 0", e.Grid().Total())
	}
}

func TestStabilizeIdempotentOnStableGrid(t *testing.T) {
	e := NewEngine(4, 4, DefaultThreshold)
	if err := e.Grid().Set(1, 1, 3); err != nil {
		t.Fatal(err)
	}
	if err := e.Grid().Set(2, 3, 2); err != nil {
		t.Fatal(err)
	}

	before := e.Grid().Clone()
	size, err := e.Stabilize()
	if err != nil {
		t.Fatalf("Stabilize: %v", err)
	}
	if size != 0 {
		t.Errorf("avalanche size = %d on stable grid, want 0", size)
	}
	for i, v := range e.Grid().Cells() {
		if v != before.Cells()[i] {
			t.Fatalf("cell %d changed from %d to %d", i, before.Cells()[i], v)
		}
	}
}

// Conservation: whatever lands on the grid either stays there or falls
// off the open boundary.
func TestConservationUnderRandomDrops(t *testing.T) {
	e := NewEngine(8, 8, DefaultThreshold)
	rng := rand.New(rand.NewSource(7))

	const drops = 5000
	for i := 0; i < drops; i++ {
		col, row := rng.Intn(8), rng.Intn(8)
		if _, err := e.DropAndStabilize(col, row); err != nil {
			t.Fatalf("drop %d: %v", i+1, err)
		}
		if m := e.Grid().MaxCell(); m >= DefaultThreshold {
			t.Fatalf("cell at %d after stabilize (drop %d), threshold %d", m, i+1, DefaultThreshold)
		}
	}

	if e.Drops() != drops {
		t.Fatalf("drop counter = %d, want %d", e.Drops(), drops)
	}
	got := uint64(e.Grid().Total()) + e.BoundaryLoss()
	if got != drops {
		t.Errorf("mass + boundary loss = %d, want %d", got, drops)
	}
}

// Pass-synchronous toppling makes the outcome independent of how the
// unstable set was produced: two engines loaded with the same heavily
// unstable configuration must agree exactly.
func TestStabilizeDeterministic(t *testing.T) {
	load := func() *Engine {
		e := NewEngine(10, 10, DefaultThreshold)
		rng := rand.New(rand.NewSource(42))
		for i := 0; i < 40; i++ {
			row, col := rng.Intn(10), rng.Intn(10)
			if err := e.Grid().Set(row, col, 4+rng.Intn(8)); err != nil {
				t.Fatal(err)
			}
		}
		return e
	}

	a, b := load(), load()
	sizeA, errA := a.Stabilize()
	sizeB, errB := b.Stabilize()
	if errA != nil || errB != nil {
		t.Fatalf("Stabilize errors: %v, %v", errA, errB)
	}
	if sizeA != sizeB {
		t.Fatalf("avalanche sizes differ: %d vs %d", sizeA, sizeB)
	}
	for i, v := range a.Grid().Cells() {
		if v != b.Grid().Cells()[i] {
			t.Fatalf("cell %d differs: %d vs %d", i, v, b.Grid().Cells()[i])
		}
	}
	if a.Grid().MaxCell() >= DefaultThreshold {
		t.Fatal("grid still unstable after Stabilize")
	}
}

// A drop that cascades: center cell already at 3, neighbors at 3, so
// one more grain topples the center and then all four neighbors.
func TestCascadeAcrossPasses(t *testing.T) {
	e := NewEngine(5, 5, DefaultThreshold)
	cells := [][2]int{{2, 2}, {1, 2}, {3, 2}, {2, 1}, {2, 3}}
	for _, c := range cells {
		if err := e.Grid().Set(c[0], c[1], 3); err != nil {
			t.Fatal(err)
		}
	}

	size, err := e.DropAndStabilize(2, 2)
	if err != nil {
		t.Fatalf("DropAndStabilize: %v", err)
	}
	// Pass 1: center. Pass 2: the four neighbors, now at 4. Pass 3:
	// the center again, refilled by its toppling neighbors. A cell
	// counts once per pass it topples in.
	if size != 6 {
		t.Errorf("avalanche size = %d, want 6", size)
	}
	if e.Grid().MaxCell() >= DefaultThreshold {
		t.Error("grid still unstable after cascade")
	}
	// 16 grains on the board, all topples interior: mass conserved.
	if total := e.Grid().Total(); total != 16 {
		t.Errorf("grid mass = %d, want 16", total)
	}
}

// Thresholds that do not divide evenly over the 4 neighbors would
// create or destroy grains on every interior topple, so the engine
// falls back to the default instead of honoring them.
func TestNewEngineRejectsUnevenThresholds(t *testing.T) {
	for _, th := range []int{-1, 0, 1, 2, 3, 5, 6, 7, 9} {
		e := NewEngine(3, 3, th)
		if e.Threshold() != DefaultThreshold {
			t.Errorf("NewEngine threshold %d accepted as %d, want %d", th, e.Threshold(), DefaultThreshold)
		}
	}
	if e := NewEngine(3, 3, 8); e.Threshold() != 8 {
		t.Errorf("NewEngine threshold 8 = %d, want 8", e.Threshold())
	}

	if ValidThreshold(2) || ValidThreshold(6) || !ValidThreshold(4) || !ValidThreshold(12) {
		t.Error("ValidThreshold accepts uneven values or rejects multiples of 4")
	}
}

// A request for threshold 2 lands on the default engine: drops must
// neither create mass nor wrap the boundary-loss counter.
func TestLowThresholdRequestConserves(t *testing.T) {
	e := NewEngine(9, 9, 2)

	for i := 0; i < 2; i++ {
		if _, err := e.DropAndStabilize(4, 4); err != nil {
			t.Fatalf("drop %d: %v", i+1, err)
		}
	}

	if e.Grid().Total() != 2 {
		t.Errorf("grid mass = %d, want 2", e.Grid().Total())
	}
	if e.BoundaryLoss() != 0 {
		t.Errorf("boundary loss = %d, want 0", e.BoundaryLoss())
	}
}

// With threshold 8 each topple sheds two grains per neighbor;
// conservation and the boundary accounting must hold exactly.
func TestThresholdEightShedsEvenShares(t *testing.T) {
	e := NewEngine(5, 5, 8)
	for i := 0; i < 8; i++ {
		if _, err := e.DropAndStabilize(2, 2); err != nil {
			t.Fatalf("center drop %d: %v", i+1, err)
		}
	}
	if v, _ := e.Grid().At(2, 2); v != 0 {
		t.Errorf("center = %d, want 0", v)
	}
	for _, c := range [][2]int{{1, 2}, {3, 2}, {2, 1}, {2, 3}} {
		if v, _ := e.Grid().At(c[0], c[1]); v != 2 {
			t.Errorf("neighbor (%d,%d) = %d, want 2", c[0], c[1], v)
		}
	}
	if e.Grid().Total() != 8 || e.BoundaryLoss() != 0 {
		t.Errorf("mass = %d, loss = %d, want 8 and 0", e.Grid().Total(), e.BoundaryLoss())
	}

	// Corner topple: two in-bounds neighbors take 2 each, 4 fall off.
	corner := NewEngine(5, 5, 8)
	for i := 0; i < 8; i++ {
		if _, err := corner.DropAndStabilize(0, 0); err != nil {
			t.Fatalf("corner drop %d: %v", i+1, err)
		}
	}
	if corner.Grid().Total() != 4 {
		t.Errorf("corner mass = %d, want 4", corner.Grid().Total())
	}
	if corner.BoundaryLoss() != 4 {
		t.Errorf("corner loss = %d, want 4", corner.BoundaryLoss())
	}
}

func TestDropTargets(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	center, err := NewDropTarget(PolicyCenter, 9, 7, 0, 0, rng)
	if err != nil {
		t.Fatal(err)
	}
	if col, row := center.Next(); col != 4 || row != 3 {
		t.Errorf("center target = (%d,%d), want (4,3)", col, row)
	}

	fixed, err := NewDropTarget(PolicyFixed, 9, 7, 2, 5, rng)
	if err != nil {
		t.Fatal(err)
	}
	if col, row := fixed.Next(); col != 2 || row != 5 {
		t.Errorf("fixed target = (%d,%d), want (2,5)", col, row)
	}

	if _, err := NewDropTarget(PolicyFixed, 9, 7, 9, 0, rng); err == nil {
		t.Error("fixed target outside grid should fail")
	}
	if _, err := NewDropTarget("spiral", 9, 7, 0, 0, rng); err == nil {
		t.Error("unknown policy should fail")
	}

	random, err := NewDropTarget(PolicyRandom, 9, 7, 0, 0, rng)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 100; i++ {
		col, row := random.Next()
		if col < 0 || col >= 9 || row < 0 || row >= 7 {
			t.Fatalf("random target (%d,%d) outside 9x7 grid", col, row)
		}
	}
}

package telemetry

// Collector accumulates drop and avalanche events within tick windows
// and produces WindowStats.
type Collector struct {
	windowTicks int64

	windowStartTick int64

	// Event counters for the current window
	drops      int
	avalanches int
	topples    int
	maxSize    int
}

// NewCollector creates a collector that flushes every windowTicks
// driver ticks.
func NewCollector(windowTicks int64) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{windowTicks: windowTicks}
}

// RecordDrop records one successful grain drop.
func (c *Collector) RecordDrop() {
	c.drops++
}

// RecordAvalanche records the outcome of one drop+stabilize cycle.
// Zero sizes still count as a cycle but not as an avalanche.
func (c *Collector) RecordAvalanche(size int) {
	if size <= 0 {
		return
	}
	c.avalanches++
	c.topples += size
	if size > c.maxSize {
		c.maxSize = size
	}
}

// ShouldFlush reports whether the current window is complete.
func (c *Collector) ShouldFlush(currentTick int64) bool {
	return currentTick-c.windowStartTick >= c.windowTicks
}

// Flush produces a WindowStats and resets the counters for the next
// window. The caller supplies engine state sampled at window end.
func (c *Collector) Flush(currentTick int64, gridMass int, boundaryLoss, totalDrops uint64, totalRecorded int) WindowStats {
	var mean float64
	if c.avalanches > 0 {
		mean = float64(c.topples) / float64(c.avalanches)
	}

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,

		Drops:      c.drops,
		Avalanches: c.avalanches,
		Topples:    c.topples,
		MaxSize:    c.maxSize,
		MeanSize:   mean,

		GridMass:      gridMass,
		BoundaryLoss:  boundaryLoss,
		TotalDrops:    totalDrops,
		TotalRecorded: totalRecorded,
	}

	c.windowStartTick = currentTick
	c.drops = 0
	c.avalanches = 0
	c.topples = 0
	c.maxSize = 0

	return stats
}

// WindowTicks returns the window length in ticks.
func (c *Collector) WindowTicks() int64 {
	return c.windowTicks
}

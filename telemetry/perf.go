package telemetry

import (
	"log/slog"
	"sort"
	"time"
)

// Phase names for the driver tick.
const (
	PhaseSimulate  = "simulate"
	PhaseTelemetry = "telemetry"
)

// PerfSample holds timing data for a single tick.
type PerfSample struct {
	TickDuration time.Duration
	Phases       map[string]time.Duration
}

// PerfCollector tracks tick timings over a rolling window.
type PerfCollector struct {
	windowSize  int
	samples     []PerfSample
	writeIndex  int
	sampleCount int

	currentPhases map[string]time.Duration
	tickStart     time.Time
	phaseStart    time.Time
	lastPhase     string
}

// NewPerfCollector creates a collector averaging over windowSize ticks.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		windowSize:    windowSize,
		samples:       make([]PerfSample, windowSize),
		currentPhases: make(map[string]time.Duration),
	}
}

// StartTick begins timing a new driver tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = time.Now()
	p.currentPhases = make(map[string]time.Duration)
	p.lastPhase = ""
}

// StartPhase begins timing a phase, closing the previous one.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// EndTick closes the current phase and records the sample.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.samples[p.writeIndex] = PerfSample{
		TickDuration: now.Sub(p.tickStart),
		Phases:       p.currentPhases,
	}
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
}

// Total returns the average tick duration over the window.
func (p *PerfCollector) Total() time.Duration {
	if p.sampleCount == 0 {
		return 0
	}
	var sum time.Duration
	for i := 0; i < p.sampleCount; i++ {
		sum += p.samples[i].TickDuration
	}
	return sum / time.Duration(p.sampleCount)
}

// Avg returns the average duration of one phase over the window.
func (p *PerfCollector) Avg(phase string) time.Duration {
	if p.sampleCount == 0 {
		return 0
	}
	var sum time.Duration
	for i := 0; i < p.sampleCount; i++ {
		sum += p.samples[i].Phases[phase]
	}
	return sum / time.Duration(p.sampleCount)
}

// SortedNames returns all phase names seen in the window, sorted.
func (p *PerfCollector) SortedNames() []string {
	seen := make(map[string]bool)
	for i := 0; i < p.sampleCount; i++ {
		for name := range p.samples[i].Phases {
			seen[name] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LogPerf emits the rolling averages via slog.
func (p *PerfCollector) LogPerf(tick int64) {
	attrs := []any{"tick", tick, "tick_avg", p.Total().Round(time.Microsecond)}
	for _, name := range p.SortedNames() {
		attrs = append(attrs, name, p.Avg(name).Round(time.Microsecond))
	}
	slog.Info("perf", attrs...)
}

package telemetry

import (
	"log/slog"
	"time"

	"github.com/pthm-cable/pasture/systems"
)

// Phase names for the simulation step. The first two come from the grid's
// tick hooks; telemetry covers census and window bookkeeping.
const (
	PhaseEnergy    = systems.PhaseEnergy
	PhaseMovement  = systems.PhaseMovement
	PhaseTelemetry = "telemetry"
)

// Phases returns the registry of every timed phase in a game step, in order.
func Phases() *systems.PhaseRegistry {
	reg := systems.NewPhaseRegistry()
	reg.Register(systems.PhaseInfo{ID: PhaseTelemetry, Name: "Telemetry", Description: "Window stats, CSV rows, bookmarks"})
	return reg
}

// PerfSample holds timing data for a single tick.
// Phases is indexed by registration order in the collector's registry.
type PerfSample struct {
	TickDuration time.Duration
	Phases       []time.Duration
}

// PerfCollector times ticks and their phases over a ring of recent samples.
// Phases not in the registry are registered the first time they start.
type PerfCollector struct {
	registry *systems.PhaseRegistry
	slot     map[string]int

	ring   []PerfSample
	next   int
	filled int

	current    []time.Duration
	tickStart  time.Time
	phaseStart time.Time
	running    int // slot of the running phase, -1 when none

	// Frame timing (for graphics mode)
	lastFrameTime time.Time
	frameDuration time.Duration
}

// NewPerfCollector creates a collector averaging over the last windowSize ticks.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	p := &PerfCollector{
		registry: Phases(),
		slot:     make(map[string]int),
		ring:     make([]PerfSample, windowSize),
		running:  -1,
	}
	for i, id := range p.registry.IDs() {
		p.slot[id] = i
	}
	p.current = make([]time.Duration, len(p.slot))
	return p
}

// phaseSlot returns the sample index for a phase, registering unknown ones.
func (p *PerfCollector) phaseSlot(id string) int {
	if i, ok := p.slot[id]; ok {
		return i
	}
	p.registry.Register(systems.PhaseInfo{ID: id, Name: id})
	i := len(p.current)
	p.slot[id] = i
	p.current = append(p.current, 0)
	return i
}

// stopRunning charges the running phase up to now.
func (p *PerfCollector) stopRunning(now time.Time) {
	if p.running >= 0 {
		p.current[p.running] += now.Sub(p.phaseStart)
		p.running = -1
	}
}

// StartTick begins timing a new simulation tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = time.Now()
	clear(p.current)
	p.running = -1
}

// StartPhase begins timing a phase, ending the previous one.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	p.stopRunning(now)
	p.running = p.phaseSlot(phase)
	p.phaseStart = now
}

// EndPhase ends the running phase without starting another.
func (p *PerfCollector) EndPhase(string) {
	p.stopRunning(time.Now())
}

// Hooks returns tick hooks that time the grid's phases.
func (p *PerfCollector) Hooks() systems.TickHooks {
	return systems.TickHooks{PhaseStart: p.StartPhase, PhaseEnd: p.EndPhase}
}

// EndTick finishes timing the current tick and records the sample.
// Ring slots reuse their phase slices, so steady-state ticks do not allocate.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	p.stopRunning(now)

	s := &p.ring[p.next]
	s.TickDuration = now.Sub(p.tickStart)
	s.Phases = append(s.Phases[:0], p.current...)

	p.next = (p.next + 1) % len(p.ring)
	p.filled = min(p.filled+1, len(p.ring))
}

// RecordFrame records frame timing for graphics mode.
func (p *PerfCollector) RecordFrame() {
	now := time.Now()
	if !p.lastFrameTime.IsZero() {
		p.frameDuration = now.Sub(p.lastFrameTime)
	}
	p.lastFrameTime = now
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration

	// Per-phase averages and shares of the average tick, keyed by phase ID.
	// PhaseOrder lists the IDs in registry order.
	PhaseOrder []string
	PhaseAvg   map[string]time.Duration
	PhasePct   map[string]float64

	TicksPerSecond float64

	// Frame timing (graphics mode)
	FrameDuration time.Duration
	FPS           float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	ids := p.registry.IDs()
	s := PerfStats{
		PhaseOrder:    ids,
		PhaseAvg:      make(map[string]time.Duration, len(ids)),
		PhasePct:      make(map[string]float64, len(ids)),
		FrameDuration: p.frameDuration,
	}
	if p.frameDuration > 0 {
		s.FPS = float64(time.Second) / float64(p.frameDuration)
	}
	if p.filled == 0 {
		return s
	}

	var total time.Duration
	sums := make([]time.Duration, len(ids))
	for i, sample := range p.ring[:p.filled] {
		total += sample.TickDuration
		if i == 0 || sample.TickDuration < s.MinTickDuration {
			s.MinTickDuration = sample.TickDuration
		}
		s.MaxTickDuration = max(s.MaxTickDuration, sample.TickDuration)
		for j, d := range sample.Phases {
			sums[j] += d
		}
	}

	n := time.Duration(p.filled)
	s.AvgTickDuration = total / n
	if s.AvgTickDuration > 0 {
		s.TicksPerSecond = float64(time.Second) / float64(s.AvgTickDuration)
	}
	for j, id := range ids {
		avg := sums[j] / n
		s.PhaseAvg[id] = avg
		if s.AvgTickDuration > 0 {
			s.PhasePct[id] = float64(avg) / float64(s.AvgTickDuration) * 100
		}
	}
	return s
}

// phaseOrder falls back to the standard phases for hand-built stats.
func (s PerfStats) phaseOrder() []string {
	if s.PhaseOrder != nil {
		return s.PhaseOrder
	}
	return Phases().IDs()
}

// LogStats logs performance statistics.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_tick_us", s.AvgTickDuration.Microseconds(),
		"min_tick_us", s.MinTickDuration.Microseconds(),
		"max_tick_us", s.MaxTickDuration.Microseconds(),
		"ticks_per_sec", int(s.TicksPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, "fps", int(s.FPS))
	}
	for _, id := range s.phaseOrder() {
		if pct := s.PhasePct[id]; pct > 0.1 {
			attrs = append(attrs, id+"_pct", int(pct*10)/10.0)
		}
	}
	slog.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}
	for _, id := range s.phaseOrder() {
		attrs = append(attrs, slog.Float64(id+"_pct", s.PhasePct[id]))
	}
	return slog.GroupValue(attrs...)
}

// PerfRowCSV is one perf.csv row. Each window writes a "tick" row carrying
// the whole-tick timings, then one row per phase.
type PerfRowCSV struct {
	WindowEnd int64   `csv:"window_end"`
	Phase     string  `csv:"phase"`
	AvgUS     int64   `csv:"avg_us"`
	MinUS     int64   `csv:"min_us"`
	MaxUS     int64   `csv:"max_us"`
	Pct       float64 `csv:"pct"`
	FPS       float64 `csv:"fps"`
}

// ToCSV flattens the stats into perf.csv rows.
func (s PerfStats) ToCSV(windowEnd int64) []PerfRowCSV {
	order := s.phaseOrder()
	rows := make([]PerfRowCSV, 0, len(order)+1)
	rows = append(rows, PerfRowCSV{
		WindowEnd: windowEnd,
		Phase:     "tick",
		AvgUS:     s.AvgTickDuration.Microseconds(),
		MinUS:     s.MinTickDuration.Microseconds(),
		MaxUS:     s.MaxTickDuration.Microseconds(),
		Pct:       100,
		FPS:       s.FPS,
	})
	for _, id := range order {
		rows = append(rows, PerfRowCSV{
			WindowEnd: windowEnd,
			Phase:     id,
			AvgUS:     s.PhaseAvg[id].Microseconds(),
			Pct:       s.PhasePct[id],
		})
	}
	return rows
}

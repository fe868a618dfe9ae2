package game

import (
	"fmt"
	"io"
	"time"

	"github.com/pthm-cable/pasture/components"
	"github.com/pthm-cable/pasture/telemetry"
)

// logWriter is the destination for log output.
var logWriter io.Writer

// SetLogWriter sets the log output destination.
func SetLogWriter(w io.Writer) {
	logWriter = w
}

// Logf writes a formatted log message.
func Logf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if logWriter != nil {
		fmt.Fprintln(logWriter, msg)
	} else {
		fmt.Println(msg)
	}
}

// LogWorldState writes a human readable summary of the grid.
func (g *Game) LogWorldState() {
	c := g.grid.Census()

	Logf("=== Tick %d ===", c.Tick)
	Logf("Grass: %d (%.1f cal)", c.Count[components.Grass], c.Calories[components.Grass])
	Logf("Sheep: %d alive (%.1f cal)", c.Alive[components.Sheep], c.Calories[components.Sheep])
	Logf("Wolves: %d alive (%.1f cal)", c.Alive[components.Wolf], c.Calories[components.Wolf])
	Logf("Empty: %d, Contained: %d", c.Count[components.Empty], c.Contained)

	r := g.lastReport
	Logf("Last tick: %d moves, %d blocked, %d captures, %d deaths",
		r.Moves, r.Blocked, r.Captures, r.Deaths)
}

// LogPerfStats writes the per-phase timing breakdown.
func (g *Game) LogPerfStats() {
	s := g.perfCollector.Stats()
	Logf("=== Perf @ Tick %d (speed %dx) ===", g.grid.TickCount(), g.stepsPerUpdate)
	Logf("Avg tick: %s (%.0f ticks/s)", s.AvgTickDuration.Round(time.Microsecond), s.TicksPerSecond)
	for _, phase := range telemetry.Phases().All() {
		Logf("  %-12s %10s  %5.1f%%", phase.Name, s.PhaseAvg[phase.ID].Round(time.Microsecond), s.PhasePct[phase.ID])
	}
}

// PrintGrid writes the grid as one glyph per cell.
func (g *Game) PrintGrid() {
	Logf("%s", g.grid.RenderText())
}

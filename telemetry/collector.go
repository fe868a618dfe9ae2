// Package telemetry provides population statistics, bookmarks, timing and snapshots.
package telemetry

import (
	"github.com/pthm-cable/pasture/components"
	"github.com/pthm-cable/pasture/systems"
)

// Collector accumulates tick reports within windows and produces WindowStats.
type Collector struct {
	windowDurationTicks int64

	// Current window tracking
	windowStartTick int64

	// Totals for the current window
	acc systems.TickReport
}

// NewCollector creates a new stats collector.
// windowTicks: how many ticks each stats window spans.
func NewCollector(windowTicks int) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{windowDurationTicks: int64(windowTicks)}
}

// Record adds one tick's report to the current window.
func (c *Collector) Record(r systems.TickReport) {
	c.acc.Digested += r.Digested
	c.acc.Cleared += r.Cleared
	c.acc.Refills += r.Refills
	c.acc.Heals += r.Heals
	c.acc.HealedHP += r.HealedHP
	c.acc.HealCost += r.HealCost
	c.acc.Starved += r.Starved
	c.acc.Deaths += r.Deaths
	c.acc.Moves += r.Moves
	c.acc.Captures += r.Captures
	c.acc.Releases += r.Releases
	c.acc.Blocked += r.Blocked
	c.acc.Stands += r.Stands
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int64) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next window.
// The caller provides the census at currentTick and the calories of every
// living sheep and wolf for the distribution columns.
func (c *Collector) Flush(
	currentTick int64,
	census systems.Census,
	sheepCalories, wolfCalories []float64,
) WindowStats {
	var moveRate, blockRate float64
	if attempted := c.acc.Moves + c.acc.Blocked; attempted > 0 {
		moveRate = float64(c.acc.Moves) / float64(attempted)
		blockRate = float64(c.acc.Blocked) / float64(attempted)
	}

	sheep := ComputeCalorieStats(sheepCalories)
	wolves := ComputeCalorieStats(wolfCalories)

	var total float64
	for _, cal := range census.Calories {
		total += cal
	}

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,

		Empty:     census.Count[components.Empty],
		Grass:     census.Count[components.Grass],
		Sheep:     census.Alive[components.Sheep],
		Wolves:    census.Alive[components.Wolf],
		Contained: census.Contained,

		Deaths:    c.acc.Deaths,
		Starved:   c.acc.Starved,
		Heals:     c.acc.Heals,
		HealCost:  c.acc.HealCost,
		Digested:  c.acc.Digested,
		Cleared:   c.acc.Cleared,
		Moves:     c.acc.Moves,
		Captures:  c.acc.Captures,
		Releases:  c.acc.Releases,
		Blocked:   c.acc.Blocked,
		MoveRate:  moveRate,
		BlockRate: blockRate,

		SheepCalMean: sheep.Mean,
		SheepCalStd:  sheep.Std,
		SheepCalP10:  sheep.P10,
		SheepCalP50:  sheep.P50,
		SheepCalP90:  sheep.P90,

		WolfCalMean: wolves.Mean,
		WolfCalStd:  wolves.Std,
		WolfCalP10:  wolves.P10,
		WolfCalP50:  wolves.P50,
		WolfCalP90:  wolves.P90,

		GrassCalories: census.Calories[components.Grass],
		TotalCalories: total,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.acc = systems.TickReport{}

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int64 {
	return c.windowDurationTicks
}

package game

import (
	"log/slog"

	"github.com/pthm-cable/pasture/components"
	"github.com/pthm-cable/pasture/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (g *Game) flushTelemetry() {
	tick := g.grid.TickCount()
	if !g.collector.ShouldFlush(tick) {
		return
	}

	sheepCal, wolfCal := g.sampleCalories()
	stats := g.collector.Flush(tick, g.grid.Census(), sheepCal, wolfCal)
	perfStats := g.perfCollector.Stats()
	g.lastStats = stats

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := g.outputManager.WriteTelemetry(stats); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}
	if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
		slog.Error("failed to write perf", "error", err)
	}

	for _, bm := range g.bookmarkDetector.Check(stats) {
		if g.logStats {
			bm.LogBookmark()
		}
		if err := g.outputManager.WriteBookmark(bm); err != nil {
			slog.Error("failed to write bookmark", "error", err)
		}
		if g.snapshotDir != "" {
			g.saveSnapshot(&bm)
		}
	}
}

// sampleCalories collects the calories of living sheep and wolves.
func (g *Game) sampleCalories() (sheepCal, wolfCal []float64) {
	g.grid.Each(func(pos components.Position, kind components.Creature, status components.Life) {
		if status != components.Alive || (kind != components.Sheep && kind != components.Wolf) {
			return
		}
		c, err := g.grid.Cell(pos)
		if err != nil {
			return
		}
		if kind == components.Sheep {
			sheepCal = append(sheepCal, c.Calories)
		} else {
			wolfCal = append(wolfCal, c.Calories)
		}
	})
	return sheepCal, wolfCal
}

// SaveSnapshot writes the current grid to the snapshot directory.
// Returns the path written.
func (g *Game) SaveSnapshot() (string, error) {
	dir := g.snapshotDir
	if dir == "" {
		dir = "."
	}
	return telemetry.SaveSnapshot(telemetry.NewSnapshot(g.grid, g.rngSeed, nil), dir)
}

// saveSnapshot creates and saves a bookmark snapshot to disk.
func (g *Game) saveSnapshot(bookmark *telemetry.Bookmark) {
	path, err := telemetry.SaveSnapshot(telemetry.NewSnapshot(g.grid, g.rngSeed, bookmark), g.snapshotDir)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}

	slog.Info("snapshot saved", "path", path, "tick", g.grid.TickCount())
}

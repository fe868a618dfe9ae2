// Package game drives a pasture simulation: it builds the grid from config,
// places the starting population and feeds every tick into telemetry.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/pthm-cable/pasture/components"
	"github.com/pthm-cable/pasture/config"
	"github.com/pthm-cable/pasture/systems"
	"github.com/pthm-cable/pasture/telemetry"
)

// maxPlacementTries bounds the search for a free cell per random spawn.
const maxPlacementTries = 64

// Options configures game creation.
type Options struct {
	Seed           int64  // RNG seed (0 = time-based)
	Headless       bool   // Run without graphics
	LogStats       bool   // Output stats via slog
	SnapshotDir    string // Directory for snapshots on bookmarks (empty = disabled)
	OutputDir      string // Directory for CSV output (empty = disabled)
	StepsPerUpdate int    // Ticks per Update call (0 or 1 = one tick)

	Config        *config.Config              // nil = config.Cfg()
	StatsCallback func(telemetry.WindowStats) // Called after each stats window
}

// Game owns one grid and the telemetry attached to it.
type Game struct {
	cfg  *config.Config
	grid *systems.Grid

	rng     *rand.Rand
	rngSeed int64

	// Telemetry
	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	bookmarkDetector *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager
	statsCallback    func(telemetry.WindowStats)
	lastStats        telemetry.WindowStats
	logStats         bool
	snapshotDir      string

	// State
	headless       bool
	paused         bool
	stepsPerUpdate int
	lastReport     systems.TickReport
}

// NewGameWithOptions creates a game with a freshly seeded grid.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	policy, err := systems.PolicyFromConfig(cfg.Movement, seed)
	if err != nil {
		return nil, fmt.Errorf("movement policy: %w", err)
	}
	grid, err := systems.NewGrid(cfg.World.Height, cfg.World.Width, systems.ParamsFromConfig(cfg), policy)
	if err != nil {
		return nil, fmt.Errorf("creating grid: %w", err)
	}

	steps := opts.StepsPerUpdate
	if steps < 1 {
		steps = 1
	}

	g := &Game{
		cfg:              cfg,
		grid:             grid,
		rng:              rand.New(rand.NewSource(seed)),
		rngSeed:          seed,
		collector:        telemetry.NewCollector(cfg.Telemetry.StatsWindow),
		perfCollector:    telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		bookmarkDetector: telemetry.NewBookmarkDetector(10),
		statsCallback:    opts.StatsCallback,
		logStats:         opts.LogStats,
		snapshotDir:      opts.SnapshotDir,
		headless:         opts.Headless,
		stepsPerUpdate:   steps,
	}

	if err := g.spawnInitialPopulation(); err != nil {
		return nil, err
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	g.outputManager = om
	if err := om.WriteConfig(cfg); err != nil {
		om.Close()
		return nil, fmt.Errorf("writing config: %w", err)
	}

	census := grid.Census()
	slog.Info("game created",
		"seed", seed,
		"headless", g.headless,
		"height", grid.Height(),
		"width", grid.Width(),
		"grass", census.Count[components.Grass],
		"sheep", census.Alive[components.Sheep],
		"wolves", census.Alive[components.Wolf],
	)

	return g, nil
}

// spawnInitialPopulation places the explicit spawns, then the random flock.
func (g *Game) spawnInitialPopulation() error {
	pop := g.cfg.Population

	for _, s := range pop.Spawns {
		kind, err := components.ParseCreature(s.Kind)
		if err != nil {
			return fmt.Errorf("population spawn: %w", err)
		}
		c, err := g.grid.Spawn(components.SpawnRequest{
			Kind:     kind,
			Pos:      components.Position{Row: s.Row, Col: s.Col},
			Stamina:  s.Stamina,
			Status:   components.Alive,
			Calories: s.Calories,
			Health:   s.Health,
		})
		if err != nil {
			return fmt.Errorf("population spawn %s at (%d,%d): %w", s.Kind, s.Row, s.Col, err)
		}
		slog.Debug("spawned", "id", c.ID, "kind", c.Kind.String(), "pos", c.Pos.String())
	}

	g.spawnRandom(components.Sheep, pop.RandomSheep, pop.SheepStamina, pop.SheepCalories)
	g.spawnRandom(components.Wolf, pop.RandomWolves, pop.WolfStamina, pop.WolfCalories)
	return nil
}

// spawnRandom places n organisms on cells not already holding a living one.
// Gives up on an organism after maxPlacementTries misses.
func (g *Game) spawnRandom(kind components.Creature, n, stamina int, calories float64) {
	placed := 0
	for range n {
		for try := 0; try < maxPlacementTries; try++ {
			i := g.rng.Intn(g.grid.Len())
			cell, err := g.grid.At(i)
			if err != nil || cell.IsAlive() {
				continue
			}
			if _, err := g.grid.Spawn(components.SpawnRequest{
				Kind:     kind,
				Pos:      cell.Pos,
				Stamina:  stamina,
				Status:   components.Alive,
				Calories: calories,
				Health:   g.cfg.Population.InitialHealth,
			}); err != nil {
				slog.Error("random spawn failed", "kind", kind.String(), "error", err)
				break
			}
			placed++
			break
		}
	}
	if placed < n {
		slog.Warn("grid too crowded for random spawns", "kind", kind.String(), "wanted", n, "placed", placed)
	}
}

// Step runs one tick and feeds its report into telemetry.
// On error the grid is unchanged and nothing is recorded.
func (g *Game) Step() error {
	g.perfCollector.StartTick()

	report, err := g.grid.TickWithHooks(g.perfCollector.Hooks())
	if err != nil {
		g.perfCollector.EndTick()
		return fmt.Errorf("tick %d: %w", g.grid.TickCount()+1, err)
	}
	g.lastReport = report

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.collector.Record(report)
	if err := g.outputManager.WriteTick(report); err != nil {
		slog.Error("failed to write tick", "error", err)
	}
	g.flushTelemetry()
	g.perfCollector.EndTick()

	return nil
}

// Run executes n ticks, stopping at the first error.
func (g *Game) Run(n int) error {
	for range n {
		if err := g.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Update runs StepsPerUpdate ticks unless paused.
func (g *Game) Update() error {
	if g.paused {
		return nil
	}
	return g.Run(g.stepsPerUpdate)
}

// Tick returns the number of committed ticks.
func (g *Game) Tick() int64 {
	return g.grid.TickCount()
}

// Grid returns the simulated grid.
func (g *Game) Grid() *systems.Grid {
	return g.grid
}

// Census counts the current grid.
func (g *Game) Census() systems.Census {
	return g.grid.Census()
}

// LastReport returns the report of the most recent committed tick.
func (g *Game) LastReport() systems.TickReport {
	return g.lastReport
}

// LastStats returns the most recently flushed stats window.
func (g *Game) LastStats() telemetry.WindowStats {
	return g.lastStats
}

// PerfStats returns timing over the recent ticks.
func (g *Game) PerfStats() telemetry.PerfStats {
	return g.perfCollector.Stats()
}

// RecordFrame marks a rendered frame for FPS reporting.
func (g *Game) RecordFrame() {
	g.perfCollector.RecordFrame()
}

// SheepCount returns the number of living sheep.
func (g *Game) SheepCount() int {
	return g.grid.Census().Alive[components.Sheep]
}

// WolfCount returns the number of living wolves.
func (g *Game) WolfCount() int {
	return g.grid.Census().Alive[components.Wolf]
}

// Seed returns the RNG seed the game was created with.
func (g *Game) Seed() int64 {
	return g.rngSeed
}

// Paused reports whether Update calls are currently ignored.
func (g *Game) Paused() bool {
	return g.paused
}

// SetPaused pauses or resumes the simulation.
func (g *Game) SetPaused(p bool) {
	g.paused = p
}

// StepsPerUpdate returns the ticks run per Update call.
func (g *Game) StepsPerUpdate() int {
	return g.stepsPerUpdate
}

// SetStepsPerUpdate sets the ticks run per Update call (minimum 1).
func (g *Game) SetStepsPerUpdate(n int) {
	g.stepsPerUpdate = max(n, 1)
}

// Close flushes and closes run output.
func (g *Game) Close() error {
	slog.Info("game closed", "tick", g.grid.TickCount())
	return g.outputManager.Close()
}

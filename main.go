package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/pthm-cable/pasture/config"
	"github.com/pthm-cable/pasture/game"
	"github.com/pthm-cable/pasture/viewer"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Int("stats-window", 0, "Stats window size in ticks (0 = use config)")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for snapshot files")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int64("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Simulation ticks per update call (higher = faster headless runs)")
	printGrid := flag.Bool("print", false, "Print the grid as text when a headless run ends")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// Use config stats window if not overridden by CLI
	if *statsWindow > 0 {
		cfg.Telemetry.StatsWindow = *statsWindow
	}

	// Set up seed
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	opts := game.Options{
		Seed:           rngSeed,
		LogStats:       *logStats,
		SnapshotDir:    *snapshotDir,
		OutputDir:      *outputDir,
		Headless:       *headless,
		StepsPerUpdate: *stepsPerUpdate,
	}

	g, err := game.NewGameWithOptions(opts)
	if err != nil {
		slog.Error("failed to create game", "error", err)
		os.Exit(1)
	}
	defer g.Close()

	if !*headless {
		if err := viewer.New(g, cfg).Run(*maxTicks); err != nil {
			slog.Error("simulation stopped", "tick", g.Tick(), "error", err)
			g.Close()
			os.Exit(1)
		}
		return
	}

	slog.Info("starting headless simulation",
		"seed", rngSeed,
		"stats_window", cfg.Telemetry.StatsWindow,
		"max_ticks", *maxTicks,
		"steps_per_update", *stepsPerUpdate,
	)

	for {
		if err := g.Update(); err != nil {
			slog.Error("simulation stopped", "tick", g.Tick(), "error", err)
			g.Close()
			os.Exit(1)
		}

		if *maxTicks > 0 && g.Tick() >= *maxTicks {
			slog.Info("max ticks reached", "tick", g.Tick())
			break
		}
		if g.SheepCount() == 0 && g.WolfCount() == 0 {
			slog.Info("no animals left", "tick", g.Tick())
			break
		}
	}

	if *printGrid {
		g.LogWorldState()
		g.LogPerfStats()
		g.PrintGrid()
	}
}

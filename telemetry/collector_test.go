package telemetry

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/pasture/components"
	"github.com/pthm-cable/pasture/config"
	"github.com/pthm-cable/pasture/systems"
)

func TestCollector_FlushAggregatesWindow(t *testing.T) {
	c := NewCollector(3)

	c.Record(systems.TickReport{Tick: 1, Moves: 4, Blocked: 1, Digested: 1.5, Deaths: 1})
	c.Record(systems.TickReport{Tick: 2, Moves: 2, Captures: 1, Heals: 2, HealCost: 1.0})
	if c.ShouldFlush(2) {
		t.Error("window of 3 should not flush at tick 2")
	}
	c.Record(systems.TickReport{Tick: 3, Moves: 2, Blocked: 1, Starved: 3})
	if !c.ShouldFlush(3) {
		t.Fatal("window of 3 should flush at tick 3")
	}

	var census systems.Census
	census.Count[components.Grass] = 10
	census.Count[components.Empty] = 6
	census.Alive[components.Sheep] = 3
	census.Alive[components.Wolf] = 1
	census.Calories[components.Grass] = 20
	census.Calories[components.Sheep] = 9
	census.Calories[components.Wolf] = 4

	stats := c.Flush(3, census, []float64{2, 3, 4}, []float64{4})

	if stats.WindowStartTick != 0 || stats.WindowEndTick != 3 {
		t.Errorf("window = [%d, %d], want [0, 3]", stats.WindowStartTick, stats.WindowEndTick)
	}
	if stats.Moves != 8 || stats.Blocked != 2 || stats.Captures != 1 || stats.Deaths != 1 || stats.Starved != 3 || stats.Heals != 2 {
		t.Errorf("event totals wrong: %+v", stats)
	}
	if math.Abs(stats.MoveRate-0.8) > 1e-9 || math.Abs(stats.BlockRate-0.2) > 1e-9 {
		t.Errorf("move rate %v block rate %v, want 0.8 0.2", stats.MoveRate, stats.BlockRate)
	}
	if stats.Grass != 10 || stats.Sheep != 3 || stats.Wolves != 1 || stats.Empty != 6 {
		t.Errorf("population wrong: %+v", stats)
	}
	if stats.SheepCalMean != 3 || stats.WolfCalMean != 4 {
		t.Errorf("calorie means %v %v, want 3 4", stats.SheepCalMean, stats.WolfCalMean)
	}
	if stats.GrassCalories != 20 || stats.TotalCalories != 33 {
		t.Errorf("calorie pools %v %v, want 20 33", stats.GrassCalories, stats.TotalCalories)
	}

	// Counters reset and the next window starts at the flush tick.
	next := c.Flush(6, systems.Census{}, nil, nil)
	if next.WindowStartTick != 3 || next.Moves != 0 || next.Digested != 0 {
		t.Errorf("collector not reset: %+v", next)
	}
}

func TestCollector_MinimumWindow(t *testing.T) {
	c := NewCollector(0)
	if c.WindowDurationTicks() != 1 {
		t.Errorf("window = %d, want 1", c.WindowDurationTicks())
	}
}

func TestOutputManager_WritesCSVWithSingleHeader(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	for i := 1; i <= 3; i++ {
		if err := om.WriteTelemetry(WindowStats{WindowEndTick: int64(i * 10), Sheep: i}); err != nil {
			t.Fatal(err)
		}
		if err := om.WriteTick(systems.TickReport{Tick: int64(i), Moves: i}); err != nil {
			t.Fatal(err)
		}
	}
	if err := om.WriteBookmark(Bookmark{Type: BookmarkSheepExtinct, Tick: 30, Description: "Last sheep gone"}); err != nil {
		t.Fatal(err)
	}
	if err := om.WritePerf(PerfStats{PhasePct: map[string]float64{PhaseEnergy: 40}}, 30); err != nil {
		t.Fatal(err)
	}
	if err := om.WriteConfig(config.Cfg()); err != nil {
		t.Fatal(err)
	}
	if err := om.Close(); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		file   string
		lines  int
		header string
	}{
		{"telemetry.csv", 4, "window_end,"},
		{"ticks.csv", 4, "tick,"},
		{"bookmarks.csv", 2, "type,tick,description"},
		{"perf.csv", 5, "window_end,phase,"}, // tick row plus three phases
	}
	for _, tt := range tests {
		data, err := os.ReadFile(filepath.Join(dir, tt.file))
		if err != nil {
			t.Fatal(err)
		}
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		if len(lines) != tt.lines {
			t.Errorf("%s: %d lines, want %d", tt.file, len(lines), tt.lines)
		}
		if !strings.HasPrefix(lines[0], tt.header) {
			t.Errorf("%s: header %q, want prefix %q", tt.file, lines[0], tt.header)
		}
	}

	if _, err := config.Load(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("written config does not load back: %v", err)
	}
}

func TestOutputManager_NilIsDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("expected nil manager, got %v, %v", om, err)
	}
	if err := om.WriteTelemetry(WindowStats{}); err != nil {
		t.Error(err)
	}
	if err := om.WriteTick(systems.TickReport{}); err != nil {
		t.Error(err)
	}
	if om.Dir() != "" || om.Close() != nil {
		t.Error("nil manager should be inert")
	}
}

package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a window of ticks.
type WindowStats struct {
	WindowStartTick int64 `csv:"-"`
	WindowEndTick   int64 `csv:"window_end"`

	// Population at window end
	Empty     int `csv:"empty"`
	Grass     int `csv:"grass"`
	Sheep     int `csv:"sheep"`
	Wolves    int `csv:"wolves"`
	Contained int `csv:"contained"`

	// Events during window
	Deaths    int     `csv:"deaths"`
	Starved   int     `csv:"starved"`
	Heals     int     `csv:"heals"`
	HealCost  float64 `csv:"heal_cost"`
	Digested  float64 `csv:"digested"`
	Cleared   int     `csv:"prey_cleared"`
	Moves     int     `csv:"moves"`
	Captures  int     `csv:"captures"`
	Releases  int     `csv:"releases"`
	Blocked   int     `csv:"blocked"`
	MoveRate  float64 `csv:"move_rate"`  // moves per attempted move
	BlockRate float64 `csv:"block_rate"` // blocked per attempted move

	// Calorie distribution (sampled at window end)
	SheepCalMean float64 `csv:"sheep_cal_mean"`
	SheepCalStd  float64 `csv:"sheep_cal_std"`
	SheepCalP10  float64 `csv:"sheep_cal_p10"`
	SheepCalP50  float64 `csv:"sheep_cal_p50"`
	SheepCalP90  float64 `csv:"sheep_cal_p90"`

	WolfCalMean float64 `csv:"wolf_cal_mean"`
	WolfCalStd  float64 `csv:"wolf_cal_std"`
	WolfCalP10  float64 `csv:"wolf_cal_p10"`
	WolfCalP50  float64 `csv:"wolf_cal_p50"`
	WolfCalP90  float64 `csv:"wolf_cal_p90"`

	// Calorie pools
	GrassCalories float64 `csv:"grass_calories"` // free grass, living or dormant
	TotalCalories float64 `csv:"total_calories"` // every occupant, contained excluded
}

// CalorieStats summarizes a calorie sample.
type CalorieStats struct {
	Mean, Std     float64
	P10, P50, P90 float64
}

// ComputeCalorieStats calculates mean, standard deviation and empirical
// percentiles. Returns zeros for an empty sample; std is 0 below two values.
func ComputeCalorieStats(values []float64) CalorieStats {
	n := len(values)
	if n == 0 {
		return CalorieStats{}
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	var s CalorieStats
	if n > 1 {
		s.Mean, s.Std = stat.MeanStdDev(sorted, nil)
	} else {
		s.Mean = sorted[0]
	}
	s.P10 = stat.Quantile(0.10, stat.Empirical, sorted, nil)
	s.P50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	s.P90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartTick),
		slog.Int64("window_end", s.WindowEndTick),
		slog.Int("grass", s.Grass),
		slog.Int("sheep", s.Sheep),
		slog.Int("wolves", s.Wolves),
		slog.Int("contained", s.Contained),
		slog.Int("deaths", s.Deaths),
		slog.Int("starved", s.Starved),
		slog.Int("heals", s.Heals),
		slog.Float64("digested", s.Digested),
		slog.Int("moves", s.Moves),
		slog.Int("captures", s.Captures),
		slog.Float64("block_rate", s.BlockRate),
		slog.Float64("sheep_cal_mean", s.SheepCalMean),
		slog.Float64("sheep_cal_p50", s.SheepCalP50),
		slog.Float64("wolf_cal_mean", s.WolfCalMean),
		slog.Float64("wolf_cal_p50", s.WolfCalP50),
		slog.Float64("total_calories", s.TotalCalories),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"grass", s.Grass,
		"sheep", s.Sheep,
		"wolves", s.Wolves,
		"contained", s.Contained,
		"deaths", s.Deaths,
		"starved", s.Starved,
		"heals", s.Heals,
		"heal_cost", s.HealCost,
		"digested", s.Digested,
		"prey_cleared", s.Cleared,
		"moves", s.Moves,
		"captures", s.Captures,
		"releases", s.Releases,
		"blocked", s.Blocked,
		"move_rate", s.MoveRate,
		"block_rate", s.BlockRate,
		"sheep_cal_mean", s.SheepCalMean,
		"sheep_cal_p50", s.SheepCalP50,
		"wolf_cal_mean", s.WolfCalMean,
		"wolf_cal_p50", s.WolfCalP50,
		"grass_calories", s.GrassCalories,
		"total_calories", s.TotalCalories,
	)
}

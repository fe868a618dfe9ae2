package main

import (
	"log/slog"
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/pasture/config"
	"github.com/pthm-cable/pasture/game"
	"github.com/pthm-cable/pasture/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	maxTicks    int64
	seeds       []int64
	baseConfig  *config.Config
	statsWindow int

	// Best run tracking
	mu           sync.Mutex
	bestFitness  float64
	bestSnapshot *telemetry.Snapshot
	lastQuality  float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int64, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		statsWindow: 50,
		bestFitness: math.Inf(1),
	}
}

// BestSnapshot returns the final grid of the best evaluation.
func (fe *FitnessEvaluator) BestSnapshot() *telemetry.Snapshot {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestSnapshot
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// runResult holds the results from a single simulation run.
type runResult struct {
	survivalTicks int64                   // ticks before sheep or wolves died out (or maxTicks)
	windowStats   []telemetry.WindowStats // collected via StatsCallback each window
	snapshot      *telemetry.Snapshot
	err           error
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness  float64
	quality  float64
	snapshot *telemetry.Snapshot
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is negative survival ticks: longer coexistence = lower fitness.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			result := fe.runSimulation(x, s)
			if result.err != nil {
				slog.Error("evaluation run failed", "seed", s, "error", result.err)
			}
			quality := computeQuality(result.windowStats)
			results[idx] = seedResult{
				fitness:  computeFitness(result.survivalTicks, quality),
				quality:  quality,
				snapshot: result.snapshot,
			}
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalQuality float64
	bestSeedFitness := math.Inf(1)
	var bestSeedSnapshot *telemetry.Snapshot

	for _, r := range results {
		totalFitness += r.fitness
		totalQuality += r.quality
		if r.fitness < bestSeedFitness {
			bestSeedFitness = r.fitness
			bestSeedSnapshot = r.snapshot
		}
	}

	n := float64(len(fe.seeds))
	avgFitness := totalFitness / n

	fe.mu.Lock()
	if avgFitness < fe.bestFitness {
		fe.bestFitness = avgFitness
		fe.bestSnapshot = bestSeedSnapshot
	}
	fe.lastQuality = totalQuality / n
	fe.mu.Unlock()

	return avgFitness
}

// runSimulation executes a single headless simulation run.
// Runs until sheep or wolves die out or maxTicks, whichever comes first.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) *runResult {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)
	cfg.Telemetry.StatsWindow = fe.statsWindow

	result := &runResult{}

	g, err := game.NewGameWithOptions(game.Options{
		Seed:     seed,
		Headless: true,
		Config:   cfg,
		StatsCallback: func(stats telemetry.WindowStats) {
			result.windowStats = append(result.windowStats, stats)
		},
	})
	if err != nil {
		result.err = err
		return result
	}
	defer g.Close()

	for g.Tick() < fe.maxTicks {
		if g.SheepCount() == 0 || g.WolfCount() == 0 {
			break
		}
		if err := g.Step(); err != nil {
			result.err = err
			break
		}
	}

	result.survivalTicks = g.Tick()
	result.snapshot = telemetry.NewSnapshot(g.Grid(), seed, nil)
	return result
}

// computeFitness calculates the scalar fitness (lower = better).
// Formula: -(survivalTicks × (1.0 + 0.2 × quality))
// Survival dominates; quality adds up to 20% to separate runs that last
// about as long.
func computeFitness(survivalTicks int64, quality float64) float64 {
	return -(float64(survivalTicks) * (1.0 + 0.2*quality))
}

// Quality component weights.
const (
	qualityWeightRatio     = 0.35
	qualityWeightStability = 0.25
	qualityWeightCalories  = 0.20
	qualityWeightHunting   = 0.20

	qualityWarmupWindows = 1 // skip first N windows (warmup)
	qualityMinPop        = 1 // exclude windows where either kind < this
	targetSheepPerWolf   = 5.0
)

// computeQuality computes pasture quality in [0, 1] from window stats.
func computeQuality(windows []telemetry.WindowStats) float64 {
	if len(windows) <= qualityWarmupWindows {
		return 0
	}

	valid := windows[qualityWarmupWindows:]

	var ratioSum, calSum, huntSum float64
	var ratioCount, huntCount int
	sheepCounts := make([]float64, 0, len(valid))
	wolfCounts := make([]float64, 0, len(valid))

	for _, w := range valid {
		if w.Sheep < qualityMinPop || w.Wolves < qualityMinPop {
			continue
		}

		sheepCounts = append(sheepCounts, float64(w.Sheep))
		wolfCounts = append(wolfCounts, float64(w.Wolves))

		// 1. Population ratio score
		logErr := math.Log(float64(w.Sheep) / float64(w.Wolves) / targetSheepPerWolf)
		ratioSum += math.Exp(-logErr * logErr)
		ratioCount++

		// 3. Calorie health: median reserves should stay well above zero
		calSum += (1 - math.Exp(-w.SheepCalP50/10)) / 2
		calSum += (1 - math.Exp(-w.WolfCalP50/10)) / 2

		// 4. Hunting activity: some captures per wolf, not a massacre
		if w.Captures > 0 {
			perWolf := float64(w.Captures) / float64(w.Wolves)
			huntSum += 1 - math.Exp(-perWolf)
			huntCount++
		}
	}

	if ratioCount == 0 {
		return 0
	}

	ratioScore := ratioSum / float64(ratioCount)

	// 2. Population stability (CV across all valid windows)
	stabilityScore := 0.0
	if len(sheepCounts) >= 2 {
		cvSheep := cv(sheepCounts)
		cvWolf := cv(wolfCounts)
		stabilityScore = math.Exp(-(cvSheep*cvSheep + cvWolf*cvWolf))
	}

	calScore := calSum / float64(ratioCount)

	huntScore := 0.0
	if huntCount > 0 {
		huntScore = huntSum / float64(huntCount)
	}

	quality := qualityWeightRatio*ratioScore +
		qualityWeightStability*stabilityScore +
		qualityWeightCalories*calScore +
		qualityWeightHunting*huntScore

	return clamp01(quality)
}

// cv computes the coefficient of variation (population std/mean).
func cv(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean, std := stat.PopMeanStdDev(values, nil)
	if mean == 0 {
		return 0
	}
	return std / mean
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

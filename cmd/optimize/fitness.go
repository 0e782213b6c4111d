package main

import (
	"log/slog"
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/antfarm/config"
	"github.com/pthm-cable/antfarm/game"
	"github.com/pthm-cable/antfarm/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	maxTicks   int32
	seeds      []int64
	baseConfig *config.Config

	// Best run tracking
	mu          sync.Mutex
	bestFitness float64
	bestWindows []telemetry.WindowStats
	lastReport  ColonyReport // seed-averaged outcome of the most recent Evaluate call
}

// ColonyReport summarizes how the colony fared in one evaluation, averaged over seeds.
type ColonyReport struct {
	SurvivalSec float64 // simulated seconds until extinction or the tick cap
	Survivors   float64 // ants alive when the run stopped
	Meals       float64 // meals started over the whole run
	Deaths      float64
	KnownFood   float64 // known food in the last window
	Quality     float64
}

// add accumulates other into r.
func (r *ColonyReport) add(other ColonyReport) {
	r.SurvivalSec += other.SurvivalSec
	r.Survivors += other.Survivors
	r.Meals += other.Meals
	r.Deaths += other.Deaths
	r.KnownFood += other.KnownFood
	r.Quality += other.Quality
}

// scale divides every field by n.
func (r *ColonyReport) scale(n float64) {
	r.SurvivalSec /= n
	r.Survivors /= n
	r.Meals /= n
	r.Deaths /= n
	r.KnownFood /= n
	r.Quality /= n
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		bestFitness: math.Inf(1),
	}
}

// BestWindows returns the window stats of the best seed of the best evaluation.
func (fe *FitnessEvaluator) BestWindows() []telemetry.WindowStats {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestWindows
}

// LastReport returns the colony outcome of the most recent evaluation.
func (fe *FitnessEvaluator) LastReport() ColonyReport {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastReport
}

// runResult holds the results from a single simulation run.
type runResult struct {
	survivalSec float64                 // simulated time until the last ant died, or the cap
	initialAnts int                     // colony size at tick 0
	finalAnts   int                     // colony size when the run stopped
	windowStats []telemetry.WindowStats // collected via StatsCallback each window
}

// report condenses a run into its colony outcome.
func (r *runResult) report() ColonyReport {
	rep := ColonyReport{
		SurvivalSec: r.survivalSec,
		Survivors:   float64(r.finalAnts),
		Quality:     computeQuality(r),
	}
	for _, w := range r.windowStats {
		rep.Meals += float64(w.MealsStarted)
		rep.Deaths += float64(w.Deaths)
	}
	if n := len(r.windowStats); n > 0 {
		rep.KnownFood = float64(r.windowStats[n-1].KnownFood)
	}
	return rep
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness float64
	report  ColonyReport
	windows []telemetry.WindowStats
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is negative survival time: a colony that lasts longer scores lower.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			result, err := fe.runSimulation(x, s)
			if err != nil {
				slog.Error("evaluation run failed", "seed", s, "error", err)
				results[idx] = seedResult{fitness: 0}
				return
			}
			results[idx] = seedResult{
				fitness: computeFitness(result),
				report:  result.report(),
				windows: result.windowStats,
			}
		}(i, seed)
	}
	wg.Wait()

	var totalFitness float64
	var avg ColonyReport
	bestSeedFitness := math.Inf(1)
	var bestSeedWindows []telemetry.WindowStats

	for _, r := range results {
		totalFitness += r.fitness
		avg.add(r.report)
		if r.fitness < bestSeedFitness {
			bestSeedFitness = r.fitness
			bestSeedWindows = r.windows
		}
	}

	n := float64(len(fe.seeds))
	avgFitness := totalFitness / n
	avg.scale(n)

	fe.mu.Lock()
	if avgFitness < fe.bestFitness {
		fe.bestFitness = avgFitness
		fe.bestWindows = bestSeedWindows
	}
	fe.lastReport = avg
	fe.mu.Unlock()

	return avgFitness
}

// runSimulation executes a single headless simulation run.
// Runs until the colony dies out or maxTicks, whichever comes first.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) (*runResult, error) {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)

	result := &runResult{}
	sim, err := game.NewSimulation(game.Options{
		Config: cfg,
		Seed:   seed,
		StatsCallback: func(stats telemetry.WindowStats) {
			result.windowStats = append(result.windowStats, stats)
		},
	})
	if err != nil {
		return nil, err
	}
	defer sim.Close()

	result.initialAnts = sim.AntCount()
	for sim.CurrentTick() < fe.maxTicks && sim.AntCount() > 0 {
		sim.Tick()
	}

	result.survivalSec = sim.SimTime()
	result.finalAnts = sim.AntCount()
	return result, nil
}

// computeFitness calculates the scalar fitness (lower = better).
// Formula: -(survivalSec × (1.0 + 0.2 × quality))
// Survival dominates; quality separates configs with similar survival.
func computeFitness(r *runResult) float64 {
	return -(r.survivalSec * (1.0 + 0.2*computeQuality(r)))
}

// Quality component weights.
const (
	qualityWeightSurvivors = 0.35
	qualityWeightStability = 0.20
	qualityWeightHunger    = 0.25
	qualityWeightForaging  = 0.20

	qualityWarmupWindows = 2 // skip first N windows (warmup)
)

// computeQuality scores colony health in [0, 1] from window stats.
func computeQuality(r *runResult) float64 {
	if len(r.windowStats) <= qualityWarmupWindows || r.initialAnts == 0 {
		return 0
	}
	valid := r.windowStats[qualityWarmupWindows:]

	var survivorSum, hungerSum, forageSum float64
	counts := make([]float64, 0, len(valid))

	for _, w := range valid {
		counts = append(counts, float64(w.Ants))
		survivorSum += float64(w.Ants) / float64(r.initialAnts)

		// Median satiation near one half: fed but not idling at the food
		hungerSum += math.Exp(-math.Pow((w.HungerP50-0.5)/0.25, 2))

		if w.Ants > 0 {
			mealsPerAnt := float64(w.MealsStarted) / float64(w.Ants)
			forageSum += 1.0 - math.Exp(-mealsPerAnt*4)
		}
	}

	n := float64(len(valid))
	stabilityScore := 0.0
	if len(counts) >= 2 {
		mean, std := stat.MeanStdDev(counts, nil)
		if mean > 0 {
			c := std / mean
			stabilityScore = math.Exp(-c * c)
		}
	}

	quality := qualityWeightSurvivors*survivorSum/n +
		qualityWeightStability*stabilityScore +
		qualityWeightHunger*hungerSum/n +
		qualityWeightForaging*forageSum/n

	return min(max(quality, 0), 1)
}

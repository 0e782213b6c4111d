// Package main searches foraging and vitals parameters with CMA-ES for the
// settings that keep the ant colony alive longest.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/antfarm/config"
	"github.com/pthm-cable/antfarm/telemetry"
)

// options holds the optimizer's command-line settings.
type options struct {
	configPath string
	maxTicks   int
	seeds      int
	maxEvals   int
	population int
	outputDir  string
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Base config YAML file (empty = use defaults)")
	flag.IntVar(&opts.maxTicks, "max-ticks", 180000, "Tick cap per colony run")
	flag.IntVar(&opts.seeds, "seeds", 3, "Colonies (seeds) per evaluation")
	flag.IntVar(&opts.maxEvals, "max-evals", 200, "Maximum number of evaluations")
	flag.IntVar(&opts.population, "population", 0, "CMA-ES population size (0 = auto)")
	flag.StringVar(&opts.outputDir, "output", "", "Output directory for results")
	flag.Parse()

	// Simulation logs stay at warn; progress goes through its own logger.
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))
	progress := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := run(opts, progress); err != nil {
		slog.Error("optimization failed", "error", err)
		os.Exit(1)
	}
}

// run drives the search and writes the best config and the best colony's windows.
func run(opts options, progress *slog.Logger) error {
	if opts.outputDir == "" {
		return errors.New("--output is required")
	}
	if err := os.MkdirAll(opts.outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := config.Init(opts.configPath); err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	baseCfg := config.Cfg()
	params := NewParamVector()

	evalSeeds := make([]int64, opts.seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}
	evaluator := NewFitnessEvaluator(params, int32(opts.maxTicks), evalSeeds, baseCfg)

	plog, err := newProgressLog(filepath.Join(opts.outputDir, "optimize_log.csv"))
	if err != nil {
		return err
	}
	defer plog.Close()

	popSize := opts.population
	if popSize == 0 {
		popSize = 4 + int(3.0*math.Log(float64(params.Dim())))
	}

	var (
		evalCount  int
		best       ColonyReport
		bestFit    = math.Inf(1)
		bestParams []float64
		start      = time.Now()
	)
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			raw := params.Clamp(params.Denormalize(x))
			fitness := evaluator.Evaluate(raw)
			rep := evaluator.LastReport()
			evalCount++

			cfg := baseCfg.Clone()
			params.ApplyToConfig(cfg, raw)
			if err := plog.Write(newEvalRow(evalCount, fitness, rep, cfg)); err != nil {
				slog.Warn("progress log write failed", "error", err)
			}

			if fitness < bestFit {
				bestFit, best, bestParams = fitness, rep, raw
			}

			elapsed := time.Since(start)
			eta := time.Duration(opts.maxEvals-evalCount) * (elapsed / time.Duration(evalCount))
			progress.Info("eval",
				"n", evalCount,
				"of", opts.maxEvals,
				"survival_sec", math.Round(rep.SurvivalSec),
				"survivors", rep.Survivors,
				"meals", humanize.Comma(int64(rep.Meals)),
				"known_food", rep.KnownFood,
				"quality", rep.Quality,
				"best_survival_sec", math.Round(best.SurvivalSec),
				"elapsed", elapsed.Round(time.Second).String(),
				"eta", eta.Round(time.Second).String(),
			)
			return fitness
		},
	}

	progress.Info("starting",
		"params", params.Dim(),
		"population", popSize,
		"max_evals", opts.maxEvals,
		"seeds", opts.seeds,
		"tick_cap", humanize.Comma(int64(opts.maxTicks)),
	)

	result, err := optimize.Minimize(problem,
		params.Normalize(params.DefaultVector()),
		&optimize.Settings{FuncEvaluations: opts.maxEvals},
		&optimize.CmaEsChol{InitStepSize: 0.3, Population: popSize},
	)
	if err != nil {
		slog.Warn("optimization ended", "error", err)
	}
	if bestParams == nil && result != nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}
	if bestParams == nil {
		return errors.New("no evaluation completed")
	}

	bestCfg := baseCfg.Clone()
	params.ApplyToConfig(bestCfg, bestParams)

	attrs := []any{
		"evals", evalCount,
		"took", time.Since(start).Round(time.Second).String(),
		"survival_sec", best.SurvivalSec,
		"survivors", best.Survivors,
		"meals", best.Meals,
	}
	for i, spec := range params.Specs {
		attrs = append(attrs, spec.Path, bestParams[i])
	}
	progress.Info("best", attrs...)

	return saveBestRun(filepath.Join(opts.outputDir, "best_run"), bestCfg, evaluator.BestWindows())
}

// saveBestRun writes the best config and the best colony's window history in the same layout as a headless run.
func saveBestRun(dir string, cfg *config.Config, windows []telemetry.WindowStats) error {
	out, err := telemetry.NewOutputManager(dir)
	if err != nil {
		return err
	}
	defer out.Close()

	if err := out.WriteConfig(cfg); err != nil {
		return fmt.Errorf("writing best config: %w", err)
	}
	for _, w := range windows {
		if err := out.WriteTelemetry(w); err != nil {
			return err
		}
	}
	return nil
}

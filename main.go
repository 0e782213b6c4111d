package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/pthm-cable/antfarm/config"
	"github.com/pthm-cable/antfarm/game"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	dt := flag.Float64("dt", 0, "Seconds per tick (0 = use config)")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for snapshot files written on bookmarks")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	dbPath := flag.String("db", "", "SQLite run store path (empty = disabled)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = until the colony dies)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// CLI overrides
	if *statsWindow > 0 {
		cfg.Telemetry.StatsWindow = *statsWindow
	}
	if *dt > 0 {
		cfg.Physics.DT = *dt
	}
	cfg.ComputeDerived()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	sim, err := game.NewSimulation(game.Options{
		Config:      cfg,
		Seed:        rngSeed,
		LogStats:    *logStats,
		OutputDir:   *outputDir,
		DBPath:      *dbPath,
		SnapshotDir: *snapshotDir,
	})
	if err != nil {
		slog.Error("failed to create simulation", "error", err)
		os.Exit(1)
	}

	slog.Info("starting headless simulation",
		"seed", rngSeed,
		"dt", cfg.Physics.DT,
		"max_ticks", *maxTicks,
	)

	start := time.Now()
	for sim.AntCount() > 0 {
		sim.Tick()
		if *maxTicks > 0 && int(sim.CurrentTick()) >= *maxTicks {
			slog.Info("max ticks reached", "tick", sim.CurrentTick())
			break
		}
	}
	if sim.AntCount() == 0 {
		slog.Info("colony died out", "tick", sim.CurrentTick(), "sim_time", sim.SimTime())
	}

	elapsed := time.Since(start)
	slog.Info("run finished",
		"run_id", sim.RunID(),
		"ticks", humanize.Comma(int64(sim.CurrentTick())),
		"sim_time", humanize.FormatFloat("#,###.#", sim.SimTime()),
		"survivors", sim.AntCount(),
		"queens", sim.QueenCount(),
		"food_left", sim.FoodCount(),
		"wall_time", elapsed.Round(time.Millisecond).String(),
	)

	if err := sim.Close(); err != nil {
		slog.Error("failed to close telemetry", "error", err)
		os.Exit(1)
	}
}

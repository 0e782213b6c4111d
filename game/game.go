// Package game runs the ant colony: the ECS world, the arena and food store,
// and the ordered per-tick phase pipeline.
package game

import (
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/antfarm/components"
	"github.com/pthm-cable/antfarm/config"
	"github.com/pthm-cable/antfarm/systems"
	"github.com/pthm-cable/antfarm/telemetry"
)

// Options configures simulation initialization.
type Options struct {
	Config    *config.Config // nil uses config.Cfg()
	Seed      int64
	RunID     string // Empty generates one
	LogStats  bool   // Log window stats via slog
	OutputDir string // Directory for CSV logs and config snapshot (empty = disabled)
	DBPath    string // SQLite run store (empty = disabled)

	// SnapshotDir receives a JSON colony snapshot on every bookmark (empty = disabled).
	SnapshotDir string

	// StatsCallback is invoked with each flushed window, e.g. by the optimizer.
	StatsCallback func(telemetry.WindowStats)
}

// Simulation holds the complete colony state.
type Simulation struct {
	cfg   *config.Config
	world *ecs.World
	rng   *rand.Rand
	src   *rand.PCG
	seed  int64

	// Ant archetype
	antMap *ecs.Map7[
		components.Position,
		components.Size,
		components.Health,
		components.Hunger,
		components.VisibleRange,
		components.Ant,
		components.AI,
	]
	antFilter *ecs.Filter7[
		components.Position,
		components.Size,
		components.Health,
		components.Hunger,
		components.VisibleRange,
		components.Ant,
		components.AI,
	]

	// Component mappers for lookups and marker changes
	posMap    *ecs.Map[components.Position]
	infoMap   *ecs.Map[components.Ant]
	hungerMap *ecs.Map[components.Hunger]
	aiMap     *ecs.Map[components.AI]
	queenMap  *ecs.Map[components.Queen]
	seekMap   *ecs.Map[components.Seeking]
	eatMap    *ecs.Map[components.Eating]

	metric systems.Metric
	arena  *Arena
	fog    *FogOfWar
	food   *FoodStore
	known  *systems.KnownFood

	// Deferred effects, applied in Cleanup
	deaths   []ecs.Entity
	requests []foodRequest

	// Per-tick scratch buffers
	bodies   []systems.Body
	unseen   []systems.GridEntry
	sighted  []systems.FoodSighting
	eaters   []eater
	seekers  []seeker
	hungry   []seeker
	reveal   []systems.Body

	// State
	tick    int32
	simTime float64
	nextID  uint32
	ants    int
	queens  int

	// Telemetry
	runID         string
	logStats      bool
	collector     *telemetry.Collector
	perf          *telemetry.PerfCollector
	bookmarks     *telemetry.BookmarkDetector
	lifetimes     *telemetry.LifetimeTracker
	output        *telemetry.OutputManager
	store         *telemetry.Store
	snapshotDir   string
	statsCallback func(telemetry.WindowStats)
}

// NewSimulation builds the world, spawns the arena, colony and food, and opens telemetry sinks.
func NewSimulation(opts Options) (*Simulation, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}

	runID := opts.RunID
	if runID == "" {
		runID = telemetry.NewRunID()
	}

	world := ecs.NewWorld()
	src := rand.NewPCG(uint64(opts.Seed), uint64(opts.Seed)^0x9e3779b97f4a7c15)

	s := &Simulation{
		cfg:   cfg,
		world: world,
		rng:   rand.New(src),
		src:   src,
		seed:  opts.Seed,
		antMap: ecs.NewMap7[
			components.Position,
			components.Size,
			components.Health,
			components.Hunger,
			components.VisibleRange,
			components.Ant,
			components.AI,
		](world),
		antFilter: ecs.NewFilter7[
			components.Position,
			components.Size,
			components.Health,
			components.Hunger,
			components.VisibleRange,
			components.Ant,
			components.AI,
		](world),
		posMap:    ecs.NewMap[components.Position](world),
		infoMap:   ecs.NewMap[components.Ant](world),
		hungerMap: ecs.NewMap[components.Hunger](world),
		aiMap:     ecs.NewMap[components.AI](world),
		queenMap:  ecs.NewMap[components.Queen](world),
		seekMap:   ecs.NewMap[components.Seeking](world),
		eatMap:    ecs.NewMap[components.Eating](world),
		metric:    systems.Metric{TileSide: cfg.Derived.TileSide32},
		known:     systems.NewKnownFood(),

		runID:         runID,
		logStats:      opts.LogStats,
		collector:     telemetry.NewCollector(runID, cfg.Telemetry.StatsWindow),
		perf:          telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		bookmarks:     telemetry.NewBookmarkDetector(10),
		lifetimes:     telemetry.NewLifetimeTracker(),
		snapshotDir:   opts.SnapshotDir,
		statsCallback: opts.StatsCallback,
	}

	s.arena = newArena(world, cfg, s.metric)
	if cfg.Arena.Fog {
		s.fog = newFogOfWar(world, cfg, s.metric)
	}
	s.food = newFoodStore(world, s.known, components.Size{Factor: float32(cfg.Food.Size)})
	s.spawnColony()
	s.food.SpawnInitial(cfg, s.rng, opts.Seed)

	if err := s.openSinks(opts, cfg); err != nil {
		return nil, err
	}

	slog.Info("simulation created",
		"run_id", runID,
		"seed", opts.Seed,
		"ants", s.ants,
		"queens", s.queens,
		"food", s.food.Count(),
		"walls", s.arena.Walls(),
		"width", cfg.Derived.ArenaWidth,
		"height", cfg.Derived.ArenaHeight,
	)

	return s, nil
}

// openSinks sets up CSV output and the run store.
func (s *Simulation) openSinks(opts Options, cfg *config.Config) error {
	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return fmt.Errorf("output: %w", err)
	}
	if err := output.WriteConfig(cfg); err != nil {
		output.Close()
		return fmt.Errorf("output: %w", err)
	}
	s.output = output

	if opts.DBPath == "" {
		return nil
	}
	store, err := telemetry.OpenStore(opts.DBPath)
	if err != nil {
		output.Close()
		return fmt.Errorf("run store: %w", err)
	}
	if err := store.BeginRun(s.runID, opts.Seed, cfg.YAML()); err != nil {
		store.Close()
		output.Close()
		return fmt.Errorf("run store: %w", err)
	}
	s.store = store
	return nil
}

// Close finishes the run record and closes all telemetry sinks.
func (s *Simulation) Close() error {
	var firstErr error
	if err := s.store.FinishRun(s.runID, int64(s.tick), s.ants); err != nil {
		firstErr = err
	}
	if err := s.store.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := s.output.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// Tick advances the simulation by the configured dt.
func (s *Simulation) Tick() {
	s.Step(s.cfg.Derived.DT32)
}

// Step advances the simulation by dt seconds through the ordered phases.
// Each phase completes before the next one starts.
func (s *Simulation) Step(dt float32) {
	s.perf.StartTick()

	s.perf.StartPhase(telemetry.PhaseDecide)
	s.decide()

	s.perf.StartPhase(telemetry.PhaseMove)
	s.move(dt)

	s.perf.StartPhase(telemetry.PhaseAct)
	s.act(dt)

	s.perf.StartPhase(telemetry.PhaseAmbient)
	s.ambient(dt)

	s.perf.StartPhase(telemetry.PhaseCleanup)
	s.cleanup()

	s.tick++
	s.simTime += float64(dt)

	s.perf.StartPhase(telemetry.PhaseTelemetry)
	s.flushTelemetry()

	s.perf.EndTick()
}

// CurrentTick returns the number of completed ticks.
func (s *Simulation) CurrentTick() int32 {
	return s.tick
}

// SimTime returns the simulated seconds elapsed.
func (s *Simulation) SimTime() float64 {
	return s.simTime
}

// AntCount returns the number of living ants, queens included.
func (s *Simulation) AntCount() int {
	return s.ants
}

// QueenCount returns the number of living queens.
func (s *Simulation) QueenCount() int {
	return s.queens
}

// FoodCount returns the number of food resources in the world.
func (s *Simulation) FoodCount() int {
	return s.food.Count()
}

// KnownFoodCount returns the size of the colony's food registry.
func (s *Simulation) KnownFoodCount() int {
	return s.known.Len()
}

// RunID returns the identifier of this run.
func (s *Simulation) RunID() string {
	return s.runID
}

// Config returns the configuration the simulation was built with.
func (s *Simulation) Config() *config.Config {
	return s.cfg
}

// Perf returns the current performance stats.
func (s *Simulation) Perf() telemetry.PerfStats {
	return s.perf.Stats()
}

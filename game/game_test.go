package game

import (
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/antfarm/components"
	"github.com/pthm-cable/antfarm/config"
	"github.com/pthm-cable/antfarm/systems"
	"github.com/pthm-cable/antfarm/telemetry"
)

// newTestSim builds a simulation from the defaults with a single worker, no queen, no food and no fog.
// mutate runs before derived values are recomputed.
func newTestSim(t *testing.T, mutate func(*config.Config)) *Simulation {
	t.Helper()

	cfg := config.Default()
	cfg.Colony.Workers = 1
	cfg.Colony.Queens = 0
	cfg.Food.Count = 0
	cfg.Arena.Fog = false
	if mutate != nil {
		mutate(cfg)
	}
	cfg.ComputeDerived()

	sim, err := NewSimulation(Options{Config: cfg, Seed: 7})
	if err != nil {
		t.Fatalf("NewSimulation: %v", err)
	}
	t.Cleanup(func() { sim.Close() })
	return sim
}

// antEntities returns every ant in query order.
func antEntities(s *Simulation) []ecs.Entity {
	var out []ecs.Entity
	query := s.antFilter.Query()
	for query.Next() {
		out = append(out, query.Entity())
	}
	return out
}

// checkInvariants fails the test if the tick left the colony in an impossible state.
func checkInvariants(t *testing.T, s *Simulation) {
	t.Helper()

	for _, e := range s.known.Entities() {
		if !s.food.Exists(e) {
			t.Fatalf("tick %d: registry holds destroyed food %v", s.tick, e)
		}
	}

	query := s.antFilter.Query()
	for query.Next() {
		e := query.Entity()
		pos, _, _, hunger, _, _, _ := query.Get()
		if hunger.Pct < 0 || hunger.Pct > 1 {
			t.Errorf("tick %d: hunger %f outside [0, 1]", s.tick, hunger.Pct)
		}
		if !s.arena.Bounds.Contains(*pos) {
			t.Errorf("tick %d: ant at (%.2f, %.2f) left the arena", s.tick, pos.X, pos.Y)
		}
		if s.seekMap.Has(e) && s.eatMap.Has(e) {
			t.Errorf("tick %d: ant is seeking and eating at once", s.tick)
		}
	}
}

func TestNewSimulationDefaults(t *testing.T) {
	cfg := config.Default()
	sim, err := NewSimulation(Options{Config: cfg, Seed: 1})
	if err != nil {
		t.Fatalf("NewSimulation: %v", err)
	}
	defer sim.Close()

	if sim.AntCount() != 31 || sim.QueenCount() != 1 {
		t.Errorf("population = %d ants, %d queens; want 31, 1", sim.AntCount(), sim.QueenCount())
	}
	if sim.FoodCount() != 40 {
		t.Errorf("food = %d, want 40", sim.FoodCount())
	}
	if want := 2*200 + 2*98; sim.arena.Walls() != want {
		t.Errorf("walls = %d, want %d", sim.arena.Walls(), want)
	}
	if sim.KnownFoodCount() != 0 {
		t.Errorf("registry should start empty, has %d", sim.KnownFoodCount())
	}
	if sim.RunID() == "" {
		t.Error("run ID should be generated")
	}
	if got := sim.fog.RevealedFraction(); got != 0 {
		t.Errorf("fog revealed before first tick = %f", got)
	}
}

func TestForagingCycle(t *testing.T) {
	sim := newTestSim(t, nil)

	ant := antEntities(sim)[0]
	sim.hungerMap.Get(ant).Pct = 0.1
	food := sim.food.Create(components.Position{X: 220, Y: 200}, 0.3)

	sim.Tick()
	checkInvariants(t, sim)
	if sim.KnownFoodCount() != 1 {
		t.Fatalf("food within view should be discovered on the first tick, registry = %d", sim.KnownFoodCount())
	}
	if !sim.seekMap.Has(ant) {
		t.Fatal("hungry idle ant should seek the known food")
	}
	if goal := sim.aiMap.Get(ant).Goal; goal != components.GoalDestination {
		t.Errorf("seeking ant goal = %s, want destination", goal)
	}

	sawEating := false
	for i := 0; i < 600 && sim.food.Exists(food); i++ {
		sim.Tick()
		checkInvariants(t, sim)
		if sim.eatMap.Has(ant) {
			sawEating = true
			if goal := sim.aiMap.Get(ant).Goal; goal != components.GoalWait {
				t.Fatalf("eating ant goal = %s, want wait", goal)
			}
		}
	}

	if sim.food.Exists(food) {
		t.Fatal("food should be eaten up within 600 ticks")
	}
	if !sawEating {
		t.Error("ant never started eating")
	}
	if sim.KnownFoodCount() != 0 || sim.FoodCount() != 0 {
		t.Errorf("after depletion: known = %d, food = %d; want 0, 0", sim.KnownFoodCount(), sim.FoodCount())
	}
	if sim.seekMap.Has(ant) || sim.eatMap.Has(ant) {
		t.Error("ant should be idle once the food is gone")
	}
	if goal := sim.aiMap.Get(ant).Goal; goal != components.GoalWalk {
		t.Errorf("ant goal after meal = %s, want walk", goal)
	}
	if h := sim.hungerMap.Get(ant).Pct; h < 0.3 {
		t.Errorf("hunger after meal = %f, want the food's worth added", h)
	}

	lt := sim.lifetimes.Get(sim.infoMap.Get(ant).ID)
	if lt == nil || lt.Seeks != 1 || lt.Meals != 1 {
		t.Fatalf("lifetime = %+v, want one seek and one meal", lt)
	}
	if lt.Eaten < 0.29 {
		t.Errorf("lifetime eaten = %f, want about 0.3", lt.Eaten)
	}
}

func TestSeekerDropsVanishedFood(t *testing.T) {
	sim := newTestSim(t, nil)

	ant := antEntities(sim)[0]
	sim.hungerMap.Get(ant).Pct = 0.1
	food := sim.food.Create(components.Position{X: 225, Y: 200}, 3)

	sim.Tick()
	if !sim.seekMap.Has(ant) {
		t.Fatal("ant should be seeking")
	}

	sim.food.Destroy(food)
	sim.Tick()
	checkInvariants(t, sim)

	if sim.seekMap.Has(ant) {
		t.Error("seeker should give up when its food is gone")
	}
	if goal := sim.aiMap.Get(ant).Goal; goal != components.GoalWalk {
		t.Errorf("goal after losing target = %s, want walk", goal)
	}
}

func TestStarvationLeavesCorpse(t *testing.T) {
	sim := newTestSim(t, nil)

	ant := antEntities(sim)[0]
	pos := *sim.posMap.Get(ant)
	sim.hungerMap.Get(ant).Pct = 0
	*sim.aiMap.Get(ant) = systems.WaitGoal()
	query := sim.antFilter.Query()
	for query.Next() {
		_, _, health, _, _, _, _ := query.Get()
		health.Pct = 0.01
	}

	sim.Step(0.5)

	if sim.world.Alive(ant) || sim.AntCount() != 0 {
		t.Fatalf("starved ant should be removed, ants = %d", sim.AntCount())
	}
	obs := sim.Observe()
	if len(obs.Food) != 1 {
		t.Fatalf("want one corpse food, got %d", len(obs.Food))
	}
	corpse := obs.Food[0]
	if corpse.Pos != pos {
		t.Errorf("corpse at %+v, want ant position %+v", corpse.Pos, pos)
	}
	if corpse.Quantity != 1 || corpse.Known {
		t.Errorf("corpse = %+v, want quantity 1 and unknown", corpse)
	}

	if sim.lifetimes.Count() != 0 {
		t.Errorf("dead ant still tracked, count = %d", sim.lifetimes.Count())
	}

	// A stale death signal is ignored
	if sim.removeDead(ant) {
		t.Error("removing a dead ant twice should be a no-op")
	}
}

func TestStarvationTakesTime(t *testing.T) {
	sim := newTestSim(t, nil)

	ant := antEntities(sim)[0]
	sim.hungerMap.Get(ant).Pct = 0

	ticks := 0
	for sim.world.Alive(ant) && ticks < 100 {
		sim.Step(0.5)
		ticks++
	}
	if sim.world.Alive(ant) {
		t.Fatal("ant with zero hunger should starve")
	}
	// Health 1 at 0.1/s crosses zero after 10s of simulated time
	if ticks < 20 || ticks > 22 {
		t.Errorf("starved after %d ticks of 0.5s, want about 21", ticks)
	}
}

func TestSharedFoodOverdraw(t *testing.T) {
	sim := newTestSim(t, func(cfg *config.Config) {
		cfg.Colony.Workers = 2
	})

	food := sim.food.Create(components.Position{X: 200, Y: 200}, 0.005)
	sim.known.Add(food)
	ants := antEntities(sim)
	for _, e := range ants {
		sim.eatMap.Add(e, &components.Eating{Food: food})
		*sim.aiMap.Get(e) = systems.WaitGoal()
		sim.hungerMap.Get(e).Pct = 0.5
	}

	sim.Tick()
	checkInvariants(t, sim)

	if sim.food.Exists(food) {
		t.Fatal("two bites should deplete the food in one tick")
	}
	for i, e := range ants {
		if sim.eatMap.Has(e) {
			t.Errorf("ant %d still eating destroyed food", i)
		}
		// Both bites land before the depletion check
		if h := sim.hungerMap.Get(e).Pct; h <= 0.5 {
			t.Errorf("ant %d hunger = %f, want its bite applied", i, h)
		}
	}
}

func TestEatingExactDepletion(t *testing.T) {
	sim := newTestSim(t, nil)

	ant := antEntities(sim)[0]
	food := sim.food.Create(*sim.posMap.Get(ant), 0.4)
	sim.known.Add(food)
	sim.eatMap.Add(ant, &components.Eating{Food: food})
	*sim.aiMap.Get(ant) = systems.WaitGoal()
	sim.hungerMap.Get(ant).Pct = 0.2

	// 1.6s at 0.25/s is exactly the food's quantity
	sim.Step(1.6)

	if sim.food.Exists(food) {
		t.Error("food at exactly zero quantity should be destroyed")
	}
	if sim.known.Contains(food) {
		t.Error("destroyed food should be forgotten")
	}
	if sim.eatMap.Has(ant) {
		t.Error("ant should stop eating")
	}
}

func TestFullAntStopsEating(t *testing.T) {
	sim := newTestSim(t, nil)

	ant := antEntities(sim)[0]
	food := sim.food.Create(*sim.posMap.Get(ant), 3)
	sim.eatMap.Add(ant, &components.Eating{Food: food})
	*sim.aiMap.Get(ant) = systems.WaitGoal()
	sim.hungerMap.Get(ant).Pct = 0.99

	sim.Step(0.1)

	if sim.eatMap.Has(ant) {
		t.Error("full ant should stop eating")
	}
	if !sim.food.Exists(food) {
		t.Error("food with quantity left should survive")
	}
	if goal := sim.aiMap.Get(ant).Goal; goal != components.GoalWalk {
		t.Errorf("goal after meal = %s, want walk", goal)
	}
}

func TestFogReveal(t *testing.T) {
	sim := newTestSim(t, func(cfg *config.Config) {
		cfg.Arena.Fog = true
		cfg.Arena.WidthTiles = 20
		cfg.Arena.HeightTiles = 10
		cfg.Colony.SpawnX = 80
		cfg.Colony.SpawnY = 40
	})

	if sim.fog.Remaining() != 200 {
		t.Fatalf("fog tiles = %d, want 200", sim.fog.Remaining())
	}

	sim.Tick()
	first := sim.fog.RevealedFraction()
	if first <= 0 || first >= 1 {
		t.Fatalf("revealed fraction after one tick = %f", first)
	}

	prev := first
	for i := 0; i < 120; i++ {
		sim.Tick()
		got := sim.fog.RevealedFraction()
		if got < prev {
			t.Fatalf("revealed fraction went back from %f to %f", prev, got)
		}
		prev = got
	}
}

func TestSpawnInitialLayouts(t *testing.T) {
	for _, layout := range []string{"uniform", "clustered"} {
		t.Run(layout, func(t *testing.T) {
			sim := newTestSim(t, func(cfg *config.Config) {
				cfg.Food.Count = 40
				cfg.Food.Layout = layout
			})

			if sim.FoodCount() != 40 {
				t.Fatalf("food = %d, want 40", sim.FoodCount())
			}

			cfg := sim.Config()
			margin := float32(cfg.Food.MarginTiles) * cfg.Derived.TileSide32
			for _, f := range sim.Observe().Food {
				if f.Pos.X < margin || f.Pos.X > cfg.Derived.ArenaWidth-margin ||
					f.Pos.Y < margin || f.Pos.Y > cfg.Derived.ArenaHeight-margin {
					t.Errorf("food at (%.1f, %.1f) inside the edge margin", f.Pos.X, f.Pos.Y)
				}
				if f.Quantity != 3 {
					t.Errorf("food quantity = %f, want 3", f.Quantity)
				}
			}
		})
	}
}

func TestDeterministicRuns(t *testing.T) {
	run := func() Observation {
		cfg := config.Default()
		sim, err := NewSimulation(Options{Config: cfg, Seed: 99})
		if err != nil {
			t.Fatalf("NewSimulation: %v", err)
		}
		defer sim.Close()
		for i := 0; i < 300; i++ {
			sim.Tick()
		}
		return sim.Observe()
	}

	a, b := run(), run()
	if !reflect.DeepEqual(a, b) {
		t.Error("same seed should give identical runs")
	}
}

func TestObserveStates(t *testing.T) {
	sim := newTestSim(t, func(cfg *config.Config) {
		cfg.Colony.Workers = 2
		cfg.Colony.Queens = 1
	})

	ants := antEntities(sim)
	food := sim.food.Create(components.Position{X: 300, Y: 300}, 3)
	sim.seekMap.Add(ants[0], &components.Seeking{Food: food})
	sim.eatMap.Add(ants[1], &components.Eating{Food: food})

	obs := sim.Observe()
	if len(obs.Ants) != 3 {
		t.Fatalf("observed %d ants, want 3", len(obs.Ants))
	}

	states := map[AntState]int{}
	queens := 0
	for _, a := range obs.Ants {
		states[a.State]++
		if a.Queen {
			queens++
		}
		if a.Distress != 0 {
			t.Errorf("healthy ant distress = %f", a.Distress)
		}
	}
	if states[AntSeeking] != 1 || states[AntEating] != 1 || states[AntIdle] != 1 {
		t.Errorf("states = %v", states)
	}
	if queens != 1 {
		t.Errorf("queens = %d, want 1", queens)
	}
	if obs.FogRevealed != 1 {
		t.Errorf("disabled fog should report fully revealed, got %f", obs.FogRevealed)
	}
}

// workerAndQueen returns the single worker and single queen of a colony built with one of each.
func workerAndQueen(t *testing.T, sim *Simulation) (worker, queen ecs.Entity) {
	t.Helper()
	for _, e := range antEntities(sim) {
		if sim.queenMap.Has(e) {
			queen = e
		} else {
			worker = e
		}
	}
	if worker.IsZero() || queen.IsZero() {
		t.Fatal("colony needs one worker and one queen")
	}
	return worker, queen
}

func TestQueenMovesSlower(t *testing.T) {
	sim := newTestSim(t, func(cfg *config.Config) {
		cfg.Colony.Queens = 1
	})
	worker, queen := workerAndQueen(t, sim)

	start := components.Position{X: 400, Y: 400}
	for _, e := range []ecs.Entity{worker, queen} {
		*sim.posMap.Get(e) = start
		*sim.aiMap.Get(e) = systems.SeekGoal(components.Position{X: 1200, Y: 400}, 1e9)
	}

	const dt = 0.1
	sim.Step(dt)

	cfg := sim.Config()
	tests := []struct {
		name string
		e    ecs.Entity
		want float64
	}{
		{"worker", worker, cfg.Colony.WorkerSpeed * dt},
		{"queen", queen, cfg.Colony.QueenSpeed * dt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos := sim.posMap.Get(tt.e)
			got := float64(pos.X - start.X)
			if math.Abs(got-tt.want) > 1e-3 || pos.Y != start.Y {
				t.Errorf("stepped to (%.3f, %.3f), want %.3f east of start", pos.X, pos.Y, tt.want)
			}
		})
	}
}

func TestQueenRadiusBlocksNearWalls(t *testing.T) {
	sim := newTestSim(t, func(cfg *config.Config) {
		cfg.Colony.Queens = 1
	})
	worker, queen := workerAndQueen(t, sim)

	wSize := components.Size{Factor: float32(sim.Config().Colony.WorkerSize)}
	qSize := components.Size{Factor: float32(sim.Config().Colony.QueenSize)}
	if sim.metric.Radius(qSize) <= sim.metric.Radius(wSize) {
		t.Fatalf("queen radius %.2f should exceed worker radius %.2f", sim.metric.Radius(qSize), sim.metric.Radius(wSize))
	}

	// Both head west toward the border column. One step lands the worker at x=10,
	// clear of the wall, and the queen at x=16, where its larger circle overlaps it.
	start := components.Position{X: 20, Y: 400}
	for _, e := range []ecs.Entity{worker, queen} {
		*sim.posMap.Get(e) = start
		*sim.aiMap.Get(e) = systems.SeekGoal(components.Position{X: 1, Y: 400}, 1e9)
	}
	sim.Step(0.2)

	wPos := *sim.posMap.Get(worker)
	if math.Abs(float64(wPos.X-10)) > 1e-3 || wPos.Y != 400 {
		t.Errorf("worker at (%.2f, %.2f), want the direct step to (10, 400)", wPos.X, wPos.Y)
	}

	qPos := *sim.posMap.Get(queen)
	if qPos.X < 17 {
		t.Errorf("queen at (%.2f, %.2f) took a step its radius forbids", qPos.X, qPos.Y)
	}
	for _, o := range sim.arena.Obstacles([]systems.Body{{Pos: qPos, Size: qSize}}, 0) {
		if sim.metric.Collides(qPos, qSize, o.Pos, o.Size) {
			t.Errorf("queen at (%.2f, %.2f) overlaps wall at (%.0f, %.0f)", qPos.X, qPos.Y, o.Pos.X, o.Pos.Y)
		}
	}
	if goal := sim.aiMap.Get(queen).Goal; goal != components.GoalDestination {
		t.Errorf("blocked queen goal = %v, want destination kept", goal)
	}
}

func TestStatsWindowsFollowSimTime(t *testing.T) {
	cfg := config.Default()
	cfg.Colony.Workers = 1
	cfg.Colony.Queens = 0
	cfg.Food.Count = 0
	cfg.Arena.Fog = false
	cfg.Telemetry.StatsWindow = 1.0
	cfg.ComputeDerived()

	var windows []telemetry.WindowStats
	sim, err := NewSimulation(Options{
		Config:        cfg,
		Seed:          3,
		StatsCallback: func(w telemetry.WindowStats) { windows = append(windows, w) },
	})
	if err != nil {
		t.Fatalf("NewSimulation: %v", err)
	}
	defer sim.Close()

	// Coarse then fine ticks, neither matching the configured dt
	for _, dt := range []float32{0.5, 0.5, 0.25, 0.25, 0.25, 0.25, 0.125, 0.125, 0.25, 0.5} {
		sim.Step(dt)
	}

	want := []struct {
		end     int32
		simTime float64
	}{{2, 1}, {6, 2}, {10, 3}}
	if len(windows) != len(want) {
		t.Fatalf("got %d windows, want %d", len(windows), len(want))
	}
	for i, w := range want {
		if windows[i].WindowEndTick != w.end || math.Abs(windows[i].SimTimeSec-w.simTime) > 1e-9 {
			t.Errorf("window %d ended at tick %d, %.3fs; want tick %d, %.0fs",
				i, windows[i].WindowEndTick, windows[i].SimTimeSec, w.end, w.simTime)
		}
	}
}

func TestTelemetrySinks(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "runs.db")
	outDir := filepath.Join(dir, "out")

	cfg := config.Default()
	cfg.Telemetry.StatsWindow = 1.0

	var windows []telemetry.WindowStats
	sim, err := NewSimulation(Options{
		Config:        cfg,
		Seed:          3,
		OutputDir:     outDir,
		DBPath:        dbPath,
		SnapshotDir:   filepath.Join(dir, "snapshots"),
		StatsCallback: func(w telemetry.WindowStats) { windows = append(windows, w) },
	})
	if err != nil {
		t.Fatalf("NewSimulation: %v", err)
	}
	runID := sim.RunID()

	for i := 0; i < 200; i++ {
		sim.Tick()
	}
	if err := sim.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if len(windows) < 3 {
		t.Fatalf("got %d windows, want at least 3", len(windows))
	}
	last := windows[len(windows)-1]
	if last.RunID != runID || last.Ants != sim.AntCount() {
		t.Errorf("last window = %s/%d ants, want %s/%d", last.RunID, last.Ants, runID, sim.AntCount())
	}

	for _, name := range []string{"telemetry.csv", "perf.csv", "bookmarks.csv", "config.yaml"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	store, err := telemetry.OpenStore(dbPath)
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	defer store.Close()

	run, err := store.GetRun(runID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run.Ticks != 200 || run.FinishedAt == nil || run.Seed != 3 {
		t.Errorf("run = %+v, want 200 finished ticks with seed 3", run)
	}
	saved, err := store.Windows(runID)
	if err != nil {
		t.Fatalf("Windows: %v", err)
	}
	if len(saved) != len(windows) {
		t.Errorf("store has %d windows, callback saw %d", len(saved), len(windows))
	}
}

func TestSnapshotMatchesObservation(t *testing.T) {
	sim := newTestSim(t, nil)
	sim.food.Create(components.Position{X: 400, Y: 400}, 2)

	snap := sim.Snapshot(nil)
	if snap.Version != telemetry.SnapshotVersion || snap.RNGSeed != 7 {
		t.Errorf("snapshot header = %+v", snap)
	}
	if len(snap.Ants) != 1 || len(snap.Food) != 1 {
		t.Fatalf("snapshot has %d ants and %d food, want 1 and 1", len(snap.Ants), len(snap.Food))
	}
	if snap.Ants[0].State != "idle" || snap.Ants[0].Goal != "none" {
		t.Errorf("fresh ant = %+v, want idle with no goal", snap.Ants[0])
	}
	if snap.Food[0].Quantity != 2 {
		t.Errorf("food quantity = %f, want 2", snap.Food[0].Quantity)
	}
}

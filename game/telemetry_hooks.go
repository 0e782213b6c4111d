package game

import (
	"log/slog"

	"github.com/pthm-cable/antfarm/telemetry"
)

// flushTelemetry closes the stats window when it is due and fans it out to every sink.
func (s *Simulation) flushTelemetry() {
	if !s.collector.ShouldFlush(s.simTime) {
		return
	}

	stats := s.collector.Flush(s.tick, s.simTime, s.sampleColony())
	perfStats := s.perf.Stats()

	if s.statsCallback != nil {
		s.statsCallback(stats)
	}

	if s.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := s.output.WriteTelemetry(stats); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}
	if err := s.output.WritePerf(perfStats, stats.WindowEndTick); err != nil {
		slog.Error("failed to write perf", "error", err)
	}
	if err := s.store.SaveWindows([]telemetry.WindowStats{stats}); err != nil {
		slog.Error("failed to save window", "error", err)
	}

	for _, bm := range s.bookmarks.Check(stats) {
		if s.logStats {
			bm.LogBookmark()
		}
		if err := s.output.WriteBookmark(bm); err != nil {
			slog.Error("failed to write bookmark", "error", err)
		}
		if s.snapshotDir != "" {
			s.saveSnapshot(&bm)
		}
	}
}

// saveSnapshot writes the current colony state to the snapshot directory.
func (s *Simulation) saveSnapshot(bookmark *telemetry.Bookmark) {
	path, err := telemetry.SaveSnapshot(s.Snapshot(bookmark), s.snapshotDir)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}
	slog.Info("snapshot saved", "path", path, "tick", s.tick)
}

// Snapshot converts the current observation into its on-disk form.
func (s *Simulation) Snapshot(bookmark *telemetry.Bookmark) *telemetry.Snapshot {
	obs := s.Observe()
	snapshot := &telemetry.Snapshot{
		Version:     telemetry.SnapshotVersion,
		RunID:       s.runID,
		RNGSeed:     s.seed,
		ArenaWidth:  s.cfg.Derived.ArenaWidth,
		ArenaHeight: s.cfg.Derived.ArenaHeight,
		Tick:        obs.Tick,
		SimTimeSec:  obs.SimTime,
		FogRevealed: obs.FogRevealed,
		Ants:        make([]telemetry.AntState, 0, len(obs.Ants)),
		Food:        make([]telemetry.FoodState, 0, len(obs.Food)),
		Bookmark:    bookmark,
	}

	for _, a := range obs.Ants {
		snapshot.Ants = append(snapshot.Ants, telemetry.AntState{
			ID:     a.ID,
			X:      a.Pos.X,
			Y:      a.Pos.Y,
			Health: a.Health,
			Hunger: a.Hunger,
			Queen:  a.Queen,
			State:  a.State.String(),
			Goal:   a.Goal.String(),

			Lifetime: s.lifetimes.Get(a.ID).ToJSON(),
		})
	}
	for _, f := range obs.Food {
		snapshot.Food = append(snapshot.Food, telemetry.FoodState{
			X:        f.Pos.X,
			Y:        f.Pos.Y,
			Quantity: f.Quantity,
			Known:    f.Known,
		})
	}

	return snapshot
}

// sampleColony collects the window-end colony state.
func (s *Simulation) sampleColony() telemetry.ColonySample {
	sample := telemetry.ColonySample{
		Ants:         s.ants,
		Queens:       s.queens,
		FoodCount:    s.food.Count(),
		FoodQuantity: s.food.TotalQuantity(),
		KnownFood:    s.known.Len(),
		Hunger:       make([]float64, 0, s.ants),
		Health:       make([]float64, 0, s.ants),
		FogRevealed:  s.fog.RevealedFraction(),
	}

	query := s.antFilter.Query()
	for query.Next() {
		e := query.Entity()
		_, _, health, hunger, _, ant, _ := query.Get()
		s.lifetimes.UpdateHunger(ant.ID, hunger.Pct)
		s.lifetimes.UpdateSurvivalTime(ant.ID, s.simTime)
		sample.Hunger = append(sample.Hunger, float64(hunger.Pct))
		sample.Health = append(sample.Health, float64(health.Pct))
		if s.seekMap.Has(e) {
			sample.Seeking++
		}
		if s.eatMap.Has(e) {
			sample.Eating++
		}
	}
	return sample
}

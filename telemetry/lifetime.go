package telemetry

import "log/slog"

// LifetimeStats tracks per-ant statistics over its lifetime.
type LifetimeStats struct {
	BirthTick       int32
	BirthTime       float64 // simulated seconds at spawn
	SurvivalTimeSec float32
	Queen           bool

	// Foraging
	Seeks        int     // destination goals toward known food
	Meals        int     // arrivals that started eating
	Eaten        float32 // cumulative hunger gained from food
	Stuck        int     // walk steps with no legal move
	LowestHunger float32 // lowest hunger seen at a window sample
}

// LifetimeStatsJSON is the JSON-serializable form of LifetimeStats.
type LifetimeStatsJSON struct {
	BirthTick       int32   `json:"birth_tick"`
	SurvivalTimeSec float32 `json:"survival_time_sec"`
	Seeks           int     `json:"seeks"`
	Meals           int     `json:"meals"`
	Eaten           float32 `json:"eaten"`
	Stuck           int     `json:"stuck"`
	LowestHunger    float32 `json:"lowest_hunger"`
}

// ToJSON converts LifetimeStats to its JSON form.
func (ls *LifetimeStats) ToJSON() *LifetimeStatsJSON {
	if ls == nil {
		return nil
	}
	return &LifetimeStatsJSON{
		BirthTick:       ls.BirthTick,
		SurvivalTimeSec: ls.SurvivalTimeSec,
		Seeks:           ls.Seeks,
		Meals:           ls.Meals,
		Eaten:           ls.Eaten,
		Stuck:           ls.Stuck,
		LowestHunger:    ls.LowestHunger,
	}
}

// LogValue renders the stats as a slog group.
func (ls *LifetimeStats) LogValue() slog.Value {
	if ls == nil {
		return slog.Value{}
	}
	return slog.GroupValue(
		slog.Float64("survival_sec", float64(ls.SurvivalTimeSec)),
		slog.Int("seeks", ls.Seeks),
		slog.Int("meals", ls.Meals),
		slog.Float64("eaten", float64(ls.Eaten)),
		slog.Int("stuck", ls.Stuck),
	)
}

// LifetimeTracker manages per-ant lifetime statistics keyed by ant ID.
type LifetimeTracker struct {
	stats map[uint32]*LifetimeStats
}

// NewLifetimeTracker creates a new lifetime tracker.
func NewLifetimeTracker() *LifetimeTracker {
	return &LifetimeTracker{
		stats: make(map[uint32]*LifetimeStats),
	}
}

// Register creates lifetime stats for a new ant.
func (lt *LifetimeTracker) Register(antID uint32, birthTick int32, birthTime float64, queen bool) {
	lt.stats[antID] = &LifetimeStats{
		BirthTick:    birthTick,
		BirthTime:    birthTime,
		Queen:        queen,
		LowestHunger: 1,
	}
}

// Get returns the lifetime stats for an ant, or nil if not found.
func (lt *LifetimeTracker) Get(antID uint32) *LifetimeStats {
	return lt.stats[antID]
}

// Remove removes an ant's stats and returns them (for logging).
func (lt *LifetimeTracker) Remove(antID uint32) *LifetimeStats {
	stats := lt.stats[antID]
	delete(lt.stats, antID)
	return stats
}

// RecordSeek increments the seek count.
func (lt *LifetimeTracker) RecordSeek(antID uint32) {
	if s := lt.stats[antID]; s != nil {
		s.Seeks++
	}
}

// RecordMeal increments the meal count.
func (lt *LifetimeTracker) RecordMeal(antID uint32) {
	if s := lt.stats[antID]; s != nil {
		s.Meals++
	}
}

// RecordEaten adds a bite to the cumulative total.
func (lt *LifetimeTracker) RecordEaten(antID uint32, amount float32) {
	if s := lt.stats[antID]; s != nil {
		s.Eaten += amount
	}
}

// RecordStuck increments the stuck step count.
func (lt *LifetimeTracker) RecordStuck(antID uint32) {
	if s := lt.stats[antID]; s != nil {
		s.Stuck++
	}
}

// UpdateHunger tracks the lowest hunger.
func (lt *LifetimeTracker) UpdateHunger(antID uint32, hunger float32) {
	if s := lt.stats[antID]; s != nil && hunger < s.LowestHunger {
		s.LowestHunger = hunger
	}
}

// UpdateSurvivalTime sets the survival time from the current simulated time.
func (lt *LifetimeTracker) UpdateSurvivalTime(antID uint32, simTime float64) {
	if s := lt.stats[antID]; s != nil {
		s.SurvivalTimeSec = float32(simTime - s.BirthTime)
	}
}

// Count returns the number of tracked ants.
func (lt *LifetimeTracker) Count() int {
	return len(lt.stats)
}

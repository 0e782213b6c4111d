package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated colony statistics for a time window.
type WindowStats struct {
	RunID           string  `csv:"run_id" db:"run_id"`
	WindowStartTick int32   `csv:"-" db:"window_start"`
	WindowEndTick   int32   `csv:"window_end" db:"window_end"`
	SimTimeSec      float64 `csv:"sim_time" db:"sim_time"`

	// Population at window end
	Ants    int `csv:"ants" db:"ants"`
	Queens  int `csv:"queens" db:"queens"`
	Seeking int `csv:"seeking" db:"seeking"`
	Eating  int `csv:"eating" db:"eating"`

	// Food at window end
	FoodCount    int     `csv:"food" db:"food"`
	FoodQuantity float64 `csv:"food_quantity" db:"food_quantity"`
	KnownFood    int     `csv:"known_food" db:"known_food"`

	// Events during window
	Deaths         int     `csv:"deaths" db:"deaths"`
	FoodDiscovered int     `csv:"food_discovered" db:"food_discovered"`
	FoodDepleted   int     `csv:"food_depleted" db:"food_depleted"`
	FoodCreated    int     `csv:"food_created" db:"food_created"`
	SeeksStarted   int     `csv:"seeks_started" db:"seeks_started"`
	MealsStarted   int     `csv:"meals_started" db:"meals_started"`
	Eaten          float64 `csv:"eaten" db:"eaten"`
	StuckSteps     int     `csv:"stuck_steps" db:"stuck_steps"`
	GoalRolls      int     `csv:"goal_rolls" db:"goal_rolls"`

	// Vitals distribution (sampled at window end)
	HungerMean float64 `csv:"hunger_mean" db:"hunger_mean"`
	HungerP10  float64 `csv:"hunger_p10" db:"hunger_p10"`
	HungerP50  float64 `csv:"hunger_p50" db:"hunger_p50"`
	HungerP90  float64 `csv:"hunger_p90" db:"hunger_p90"`
	HealthMean float64 `csv:"health_mean" db:"health_mean"`
	HealthP10  float64 `csv:"health_p10" db:"health_p10"`
	HealthP50  float64 `csv:"health_p50" db:"health_p50"`

	// Exploration
	FogRevealed float64 `csv:"fog_revealed" db:"fog_revealed"`
}

// Summarize returns the mean and the 10th, 50th and 90th percentiles of values.
// Returns zeros for an empty slice. values is not modified.
func Summarize(values []float64) (mean, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mean = stat.Mean(sorted, nil)
	p10 = stat.Quantile(0.10, stat.Empirical, sorted, nil)
	p50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	p90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)
	return mean, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("run_id", s.RunID),
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("ants", s.Ants),
		slog.Int("queens", s.Queens),
		slog.Int("seeking", s.Seeking),
		slog.Int("eating", s.Eating),
		slog.Int("food", s.FoodCount),
		slog.Float64("food_quantity", s.FoodQuantity),
		slog.Int("known_food", s.KnownFood),
		slog.Int("deaths", s.Deaths),
		slog.Int("food_discovered", s.FoodDiscovered),
		slog.Int("food_depleted", s.FoodDepleted),
		slog.Int("food_created", s.FoodCreated),
		slog.Int("seeks_started", s.SeeksStarted),
		slog.Int("meals_started", s.MealsStarted),
		slog.Float64("eaten", s.Eaten),
		slog.Int("stuck_steps", s.StuckSteps),
		slog.Int("goal_rolls", s.GoalRolls),
		slog.Float64("hunger_mean", s.HungerMean),
		slog.Float64("hunger_p10", s.HungerP10),
		slog.Float64("hunger_p50", s.HungerP50),
		slog.Float64("hunger_p90", s.HungerP90),
		slog.Float64("health_mean", s.HealthMean),
		slog.Float64("health_p10", s.HealthP10),
		slog.Float64("health_p50", s.HealthP50),
		slog.Float64("fog_revealed", s.FogRevealed),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}

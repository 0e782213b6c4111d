package telemetry

// Collector accumulates colony events within time windows and produces WindowStats.
type Collector struct {
	runID          string
	windowDuration float64 // simulated seconds per window

	windowStartTick int32
	windowStartTime float64

	// Event counters for current window
	deaths         int
	foodDiscovered int
	foodDepleted   int
	foodCreated    int
	seeksStarted   int
	mealsStarted   int
	eaten          float64
	stuckSteps     int
	goalRolls      int
}

// windowSlack absorbs float drift when summing many small tick durations.
const windowSlack = 1e-6

// NewCollector creates a new stats collector.
// windowDurationSec is the simulated time per window, independent of tick size.
func NewCollector(runID string, windowDurationSec float64) *Collector {
	return &Collector{
		runID:          runID,
		windowDuration: max(windowDurationSec, 0),
	}
}

// RecordDeath records an ant removed by starvation.
func (c *Collector) RecordDeath() { c.deaths++ }

// RecordFoodDiscovered records a food added to the colony registry.
func (c *Collector) RecordFoodDiscovered() { c.foodDiscovered++ }

// RecordFoodDepleted records a food destroyed after being eaten.
func (c *Collector) RecordFoodDepleted() { c.foodDepleted++ }

// RecordFoodCreated records a food spawned during the run.
func (c *Collector) RecordFoodCreated() { c.foodCreated++ }

// RecordSeek records an idle ant heading for known food.
func (c *Collector) RecordSeek() { c.seeksStarted++ }

// RecordMeal records a seeking ant that arrived and started eating.
func (c *Collector) RecordMeal() { c.mealsStarted++ }

// RecordEaten adds a bite to the window's consumption total.
func (c *Collector) RecordEaten(amount float32) { c.eaten += float64(amount) }

// RecordStuck records a walk step with no legal candidate.
func (c *Collector) RecordStuck() { c.stuckSteps++ }

// RecordGoalRoll records a fresh walking goal.
func (c *Collector) RecordGoalRoll() { c.goalRolls++ }

// ShouldFlush returns true once the window's simulated time has elapsed.
func (c *Collector) ShouldFlush(simTime float64) bool {
	return simTime-c.windowStartTime >= c.windowDuration-windowSlack
}

// ColonySample is the state of the colony at window end.
type ColonySample struct {
	Ants, Queens    int
	Seeking, Eating int
	FoodCount       int
	FoodQuantity    float64
	KnownFood       int
	Hunger          []float64
	Health          []float64
	FogRevealed     float64
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, simTime float64, sample ColonySample) WindowStats {
	hungerMean, hungerP10, hungerP50, hungerP90 := Summarize(sample.Hunger)
	healthMean, healthP10, healthP50, _ := Summarize(sample.Health)

	stats := WindowStats{
		RunID:           c.runID,
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      simTime,

		Ants:    sample.Ants,
		Queens:  sample.Queens,
		Seeking: sample.Seeking,
		Eating:  sample.Eating,

		FoodCount:    sample.FoodCount,
		FoodQuantity: sample.FoodQuantity,
		KnownFood:    sample.KnownFood,

		Deaths:         c.deaths,
		FoodDiscovered: c.foodDiscovered,
		FoodDepleted:   c.foodDepleted,
		FoodCreated:    c.foodCreated,
		SeeksStarted:   c.seeksStarted,
		MealsStarted:   c.mealsStarted,
		Eaten:          c.eaten,
		StuckSteps:     c.stuckSteps,
		GoalRolls:      c.goalRolls,

		HungerMean: hungerMean,
		HungerP10:  hungerP10,
		HungerP50:  hungerP50,
		HungerP90:  hungerP90,
		HealthMean: healthMean,
		HealthP10:  healthP10,
		HealthP50:  healthP50,

		FogRevealed: sample.FogRevealed,
	}

	c.windowStartTick = currentTick
	c.windowStartTime = simTime
	c.deaths = 0
	c.foodDiscovered = 0
	c.foodDepleted = 0
	c.foodCreated = 0
	c.seeksStarted = 0
	c.mealsStarted = 0
	c.eaten = 0
	c.stuckSteps = 0
	c.goalRolls = 0

	return stats
}

// WindowDuration returns the simulated seconds per window.
func (c *Collector) WindowDuration() float64 {
	return c.windowDuration
}

// RunID returns the run identifier stamped on every window.
func (c *Collector) RunID() string {
	return c.runID
}

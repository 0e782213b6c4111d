package components

// Goal is the movement intent of an ant.
type Goal uint8

const (
	GoalNone        Goal = iota // Uninitialized, waiting for the Act phase to roll one
	GoalWait                    // Hold position until an external transition clears it
	GoalWalk                    // Weighted random walk, see Bias
	GoalDestination             // Travel straight toward AI.Target
)

// String returns a short lowercase name for logs and telemetry.
func (g Goal) String() string {
	switch g {
	case GoalNone:
		return "none"
	case GoalWait:
		return "wait"
	case GoalWalk:
		return "walk"
	case GoalDestination:
		return "destination"
	default:
		return "unknown"
	}
}

// Bias is the heading a walking ant favours.
// Only GoalWalk carries a meaningful bias, which keeps weighting total over this type.
type Bias uint8

const (
	BiasUniform Bias = iota
	BiasNorth
	BiasEast
	BiasSouth
	BiasWest
	BiasNorthEast
	BiasSouthEast
	BiasSouthWest
	BiasNorthWest

	NumBiases = int(BiasNorthWest) + 1
)

// String returns a short name for logs.
func (b Bias) String() string {
	switch b {
	case BiasNorth:
		return "N"
	case BiasEast:
		return "E"
	case BiasSouth:
		return "S"
	case BiasWest:
		return "W"
	case BiasNorthEast:
		return "NE"
	case BiasSouthEast:
		return "SE"
	case BiasSouthWest:
		return "SW"
	case BiasNorthWest:
		return "NW"
	default:
		return "random"
	}
}

// AI is the per-ant goal state.
// Countdown only runs for GoalWalk; Wait and Destination are sticky.
type AI struct {
	Goal      Goal
	Bias      Bias
	Target    Position
	Countdown float32
}

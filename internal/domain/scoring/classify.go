package scoring

const (
	ExactScorePoints    = 10
	CorrectResultPoints = 3
)

// Outcome is the win/draw/loss category of a scoreline.
type Outcome int

const (
	OutcomeDraw Outcome = iota
	OutcomeHome
	OutcomeAway
)

func (o Outcome) String() string {
	switch o {
	case OutcomeHome:
		return "home"
	case OutcomeAway:
		return "away"
	default:
		return "draw"
	}
}

// Result is the scoring outcome of a single prediction.
type Result struct {
	Points          int
	IsExactScore    bool
	IsCorrectResult bool
}

func OutcomeOf(home, away int) Outcome {
	switch {
	case home > away:
		return OutcomeHome
	case home < away:
		return OutcomeAway
	default:
		return OutcomeDraw
	}
}

// Classify scores a predicted scoreline against the final one.
func Classify(predictedHome, predictedAway, actualHome, actualAway int) Result {
	if predictedHome == actualHome && predictedAway == actualAway {
		return Result{
			Points:          ExactScorePoints,
			IsExactScore:    true,
			IsCorrectResult: true,
		}
	}
	if OutcomeOf(predictedHome, predictedAway) == OutcomeOf(actualHome, actualAway) {
		return Result{
			Points:          CorrectResultPoints,
			IsCorrectResult: true,
		}
	}
	return Result{}
}

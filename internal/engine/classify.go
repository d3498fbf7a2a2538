package engine

// Classification labels, mildest to worst.
const (
	ClassBest       = "best"
	ClassGreat      = "great"
	ClassGood       = "good"
	ClassInaccuracy = "inaccuracy"
	ClassMistake    = "mistake"
	ClassBlunder    = "blunder"
)

// Classify maps a centipawn loss to a classification label. Only an exact
// zero loss counts as the best move; the upper bounds are inclusive.
func Classify(cpLoss int) (string, bool) {
	loss := cpLoss
	if loss < 0 {
		loss = -loss
	}

	switch {
	case loss == 0:
		return ClassBest, true
	case loss <= 30:
		return ClassGreat, false
	case loss <= 80:
		return ClassGood, false
	case loss <= 150:
		return ClassInaccuracy, false
	case loss <= 300:
		return ClassMistake, false
	default:
		return ClassBlunder, false
	}
}

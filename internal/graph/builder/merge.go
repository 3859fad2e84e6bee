package builder

// MasteryState is the quiz-driven per-node proficiency record preserved
// across rebuilds of the same topology.
type MasteryState struct {
	Mastered           bool
	MasteryScore       float64
	ConsecutiveCorrect int
}

// MaxMasteryScore is the upper clamp for mastery_score. There is no lower
// clamp; repeated incorrect answers drive the score negative.
const MaxMasteryScore = 10

// Merge copies prior mastery state onto a freshly built node verbatim. A nil
// prior leaves the node's defaults in place.
func Merge(n *Node, prior *MasteryState) {
	if n == nil || prior == nil {
		return
	}
	n.Mastered = prior.Mastered
	n.MasteryScore = prior.MasteryScore
	n.ConsecutiveCorrect = prior.ConsecutiveCorrect
}

// ApplyAnswer mutates a node's mastery fields for one quiz answer. A correct
// answer extends the streak and raises the score (clamped at
// MaxMasteryScore); an incorrect answer resets the streak and subtracts 0.5
// unclamped. The node becomes mastered once the streak reaches threshold.
func ApplyAnswer(n *Node, correct bool, threshold int) {
	if n == nil {
		return
	}
	if correct {
		n.ConsecutiveCorrect++
		n.MasteryScore++
		if n.MasteryScore > MaxMasteryScore {
			n.MasteryScore = MaxMasteryScore
		}
	} else {
		n.ConsecutiveCorrect = 0
		n.MasteryScore -= 0.5
	}
	if threshold > 0 && n.ConsecutiveCorrect >= threshold {
		n.Mastered = true
	}
}

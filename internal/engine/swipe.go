package engine

import "time"

// Direction is the classified intent of a swipe gesture.
type Direction string

const (
	DirectionPass      Direction = "pass"
	DirectionLike      Direction = "like"
	DirectionSuperLike Direction = "super_like"
)

// Gesture thresholds, in UI points. A horizontal displacement past
// LikeThreshold decides like (right) or pass (left); dragging up past
// SuperLikeThreshold decides super-like and takes precedence when both
// thresholds are crossed.
const (
	LikeThreshold      = 100.0
	SuperLikeThreshold = -180.0
)

// Gesture is the displacement vector of a completed drag. The UI's event
// plumbing is an external concern; the engine only classifies the vector.
type Gesture struct {
	DX float64
	DY float64
}

// Classify maps a displacement to a direction. ok is false when no
// threshold was crossed and the candidate should stay presented.
func (g Gesture) Classify() (dir Direction, ok bool) {
	if g.DY <= SuperLikeThreshold {
		return DirectionSuperLike, true
	}
	if g.DX >= LikeThreshold {
		return DirectionLike, true
	}
	if g.DX <= -LikeThreshold {
		return DirectionPass, true
	}
	return "", false
}

// DecisionState tracks a candidate-in-view through commit.
type DecisionState int

const (
	StatePresenting DecisionState = iota
	StateCommitting
	StateResolved
	StateRejected
)

func (s DecisionState) String() string {
	switch s {
	case StatePresenting:
		return "presenting"
	case StateCommitting:
		return "committing"
	case StateResolved:
		return "resolved"
	case StateRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Decision is the ephemeral value object produced by classification. It is
// consumed immediately by the commit path and never persisted beyond the
// undo stack's positional record.
type Decision struct {
	CandidateID uint64
	Direction   Direction
	At          time.Time
}

package kalah

import "fmt"

// Outcome is the result of a finished game, or the game-theoretic value of a
// position under perfect play when attached to a non-terminal position.
// InProgress doubles as "undetermined" for budget-limited searches.
type Outcome uint8

const (
	InProgress Outcome = iota
	Draw
	Win0
	Win1
)

// Win returns the outcome in which p wins.
func Win(p Player) Outcome {
	if p == Player0 {
		return Win0
	}
	return Win1
}

// Winner returns the winning player, if any.
func (o Outcome) Winner() (Player, bool) {
	switch o {
	case Win0:
		return Player0, true
	case Win1:
		return Player1, true
	}
	return 0, false
}

// Decided reports whether the outcome is a Win or a Draw.
func (o Outcome) Decided() bool {
	return o != InProgress
}

func (o Outcome) String() string {
	switch o {
	case InProgress:
		return "in-progress"
	case Draw:
		return "draw"
	case Win0:
		return "win(0)"
	case Win1:
		return "win(1)"
	}
	return fmt.Sprintf("outcome(%d)", uint8(o))
}

package kalah

import "fmt"

// Apply sows the seeds of the given pit for the side to move and returns the
// resulting position. It returns false if the pit is empty.
//
// Seeds travel through the mover's pits, the mover's store and the opponent's
// pits, skipping the opponent's store. A last seed in the mover's store keeps
// the turn. A last seed in one of the mover's previously empty pits captures
// it together with the opposite opponent pit.
//
// Apply panics if pit is outside [0, Pits).
func (p Position) Apply(pit int) (Position, bool) {
	if pit < 0 || pit >= Pits {
		panic(fmt.Sprintf("kalah: pit index %d out of range", pit))
	}
	mover := p.Turn
	seeds := p.Rows[mover][pit]
	if seeds == 0 {
		return Position{}, false
	}

	n := p
	n.Rows[mover][pit] = 0
	side, pos := mover, pit+1
	for {
		n.Rows[side][pos]++
		seeds--
		if seeds == 0 {
			break
		}
		// The only store reachable is the mover's own; after the opponent's
		// last pit we wrap straight back to the mover's first pit.
		if pos == Store || (pos == Pits-1 && side != mover) {
			side = side.Other()
			pos = 0
		} else {
			pos++
		}
	}

	if pos == Store {
		return n, true
	}

	if side == mover && n.Rows[mover][pos] == 1 {
		opp := Pits - 1 - pos
		n.Rows[mover][Store] += n.Rows[mover.Other()][opp] + 1
		n.Rows[mover.Other()][opp] = 0
		n.Rows[mover][pos] = 0
	}
	n.Turn = mover.Other()
	return n, true
}

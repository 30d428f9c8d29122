// Package kalah models a two-player Kalah board (6 pits + 1 store per side)
// and applies the sowing, capture and extra-turn rules.
package kalah

import (
	"fmt"
	"strings"
)

const (
	Pits       = 6    // sowing cells per side
	Store      = Pits // index of the scoring cell in a Row
	RowSize    = Pits + 1
	StartSeeds = 4
	TotalSeeds = 2 * Pits * StartSeeds
	NumPlayers = 2
)

// Player identifies a side of the board. Player 0 moves first.
type Player uint8

const (
	Player0 Player = 0
	Player1 Player = 1
)

// Other returns the opponent.
func (p Player) Other() Player {
	return 1 - p
}

// Row holds one side: pits 0-5 followed by the store.
type Row [RowSize]uint8

// PitSeeds returns the number of seeds in the pits, excluding the store.
func (r Row) PitSeeds() int {
	n := 0
	for i := 0; i < Pits; i++ {
		n += int(r[i])
	}
	return n
}

// Total returns pits plus store.
func (r Row) Total() int {
	return r.PitSeeds() + int(r[Store])
}

// Position is a board plus the side to move. It is comparable and safe to
// copy by value.
type Position struct {
	Rows [NumPlayers]Row
	Turn Player
}

// Initial returns the classical start: 4 seeds per pit, empty stores,
// player 0 to move.
func Initial() Position {
	var p Position
	for side := range p.Rows {
		for i := 0; i < Pits; i++ {
			p.Rows[side][i] = StartSeeds
		}
	}
	return p
}

// Seeds returns the sum of all 14 cells. It is constant over a game.
func (p Position) Seeds() int {
	return p.Rows[0].Total() + p.Rows[1].Total()
}

// Terminal reports whether either side has run out of seeds in its pits.
func (p Position) Terminal() bool {
	return p.Rows[0].PitSeeds() == 0 || p.Rows[1].PitSeeds() == 0
}

// Outcome classifies the position. Non-terminal positions are InProgress.
// At game end each side keeps the seeds left in its own pits.
func (p Position) Outcome() Outcome {
	if !p.Terminal() {
		return InProgress
	}
	t0, t1 := p.Rows[0].Total(), p.Rows[1].Total()
	switch {
	case t0 > t1:
		return Win(Player0)
	case t1 > t0:
		return Win(Player1)
	default:
		return Draw
	}
}

// Legal returns the pit indices the side to move may sow from.
func (p Position) Legal() []int {
	row := &p.Rows[p.Turn]
	moves := make([]int, 0, Pits)
	for i := 0; i < Pits; i++ {
		if row[i] > 0 {
			moves = append(moves, i)
		}
	}
	return moves
}

// String renders a compact single line for logs, e.g.
// "4 4 4 4 4 4 |0| 4 4 4 4 4 4 |0| p0".
func (p Position) String() string {
	var b strings.Builder
	for side := range p.Rows {
		for i := 0; i < Pits; i++ {
			fmt.Fprintf(&b, "%d ", p.Rows[side][i])
		}
		fmt.Fprintf(&b, "|%d| ", p.Rows[side][Store])
	}
	fmt.Fprintf(&b, "p%d", p.Turn)
	return b.String()
}

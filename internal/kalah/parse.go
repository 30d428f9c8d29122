package kalah

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrBadPosition is returned by Parse for text that is not a full board.
var ErrBadPosition = errors.New("bad position")

// Parse reads the notation produced by Position.String. Stores may be
// written with or without the surrounding bars, and the trailing turn
// field ("p0" or "p1") may be omitted for player 0. The board must hold
// exactly TotalSeeds seeds.
func Parse(s string) (Position, error) {
	var p Position
	fields := strings.Fields(s)
	if n := len(fields); n == NumPlayers*RowSize+1 {
		switch fields[n-1] {
		case "p0":
			p.Turn = Player0
		case "p1":
			p.Turn = Player1
		default:
			return Position{}, fmt.Errorf("%w: turn %q", ErrBadPosition, fields[n-1])
		}
		fields = fields[:n-1]
	}
	if len(fields) != NumPlayers*RowSize {
		return Position{}, fmt.Errorf("%w: want %d cells, got %d", ErrBadPosition, NumPlayers*RowSize, len(fields))
	}

	for i, f := range fields {
		v, err := strconv.ParseUint(strings.Trim(f, "|"), 10, 8)
		if err != nil {
			return Position{}, fmt.Errorf("%w: cell %d: %v", ErrBadPosition, i, err)
		}
		p.Rows[i/RowSize][i%RowSize] = uint8(v)
	}
	if n := p.Seeds(); n != TotalSeeds {
		return Position{}, fmt.Errorf("%w: %d seeds on the board", ErrBadPosition, n)
	}
	return p, nil
}

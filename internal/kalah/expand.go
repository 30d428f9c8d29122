package kalah

import "fmt"

// maxChain bounds a run of extra turns. Every extra turn drops at least one
// seed into the mover's store, so a chain can never exceed the seed count.
const maxChain = TotalSeeds + 1

type expandFrame struct {
	pos  Position
	next int
}

// Successors returns every position reachable after one full turn of the side
// to move. Moves that keep the turn on a non-terminal board are continued
// until the turn passes or the game ends; only those end states are returned.
//
// The order is deterministic (depth first, pits ascending) and duplicates are
// kept when different move sequences meet.
func (p Position) Successors() []Position {
	var out []Position
	stack := make([]expandFrame, 1, 8)
	stack[0] = expandFrame{pos: p}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next == Pits {
			stack = stack[:len(stack)-1]
			continue
		}
		parent := top.pos
		pit := top.next
		top.next++

		child, ok := parent.Apply(pit)
		if !ok {
			continue
		}
		if child.Turn == parent.Turn && !child.Terminal() {
			if len(stack) >= maxChain {
				panic(fmt.Sprintf("kalah: extra-turn chain deeper than %d from %v", maxChain, p))
			}
			stack = append(stack, expandFrame{pos: child})
			continue
		}
		out = append(out, child)
	}
	return out
}

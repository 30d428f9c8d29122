package learn

import (
	"github.com/freeeve/kalah/internal/kalah"
	"github.com/freeeve/kalah/internal/solver"
	"github.com/freeeve/kalah/internal/store"
)

// Playout plays uniformly random full turns from start until the game ends
// and returns every position visited, start and terminal included.
// intn(n) must return a value in [0, n).
func Playout(start kalah.Position, intn func(int) int) []kalah.Position {
	path := []kalah.Position{start}
	p := start
	for !p.Terminal() {
		succ := p.Successors()
		p = succ[intn(len(succ))]
		path = append(path, p)
	}
	return path
}

// Resolution is the outcome of walking a playout backwards.
type Resolution struct {
	Fact      store.Fact
	Resolved  bool // Fact holds a decided position
	Depth     int  // full turns between Fact and the end of the playout
	Exhausted bool // the walk stopped on an exhausted node budget
}

// Resolve solves the positions of path from the terminal end towards the
// start, each with its own budget, and stops at the first undecided one.
// The earliest decided position becomes the fact. Terminal positions are
// skipped: search decides them directly, so storing them adds nothing.
func Resolve(s *solver.Solver, path []kalah.Position, budget uint64) Resolution {
	var res Resolution
	for i := len(path) - 1; i >= 0; i-- {
		p := path[i]
		if p.Terminal() {
			continue
		}
		out := s.Solve(p, budget)
		if out == kalah.InProgress {
			res.Exhausted = true
			break
		}
		res.Fact = store.Fact{Position: p, Outcome: out}
		res.Resolved = true
		res.Depth = len(path) - 1 - i
	}
	return res
}

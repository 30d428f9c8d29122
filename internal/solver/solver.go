// Package solver derives game-theoretic outcomes of kalah positions with a
// node-bounded, memoized negamax search.
package solver

import (
	"fmt"
	"math"

	"github.com/freeeve/kalah/internal/codec"
	"github.com/freeeve/kalah/internal/kalah"
)

// Unlimited is a node budget that is never exhausted in practice.
const Unlimited uint64 = math.MaxUint64

// Knowledge answers whether a position is already known to be a forced win
// for the side to move, or a forced draw.
type Knowledge interface {
	IsWin(k codec.Key) bool
	IsDraw(k codec.Key) bool
}

type noKnowledge struct{}

func (noKnowledge) IsWin(codec.Key) bool  { return false }
func (noKnowledge) IsDraw(codec.Key) bool { return false }

// NoKnowledge is an empty knowledge base.
var NoKnowledge Knowledge = noKnowledge{}

// Solver searches positions for a single owner. It is not safe for
// concurrent use; its cache lives as long as the Solver.
type Solver struct {
	known     Knowledge
	cache     map[codec.Key]kalah.Outcome
	remaining uint64

	nodes uint64
	hits  uint64
}

// New returns a Solver that consults known before expanding a position.
func New(known Knowledge) *Solver {
	if known == nil {
		known = NoKnowledge
	}
	return &Solver{
		known: known,
		cache: make(map[codec.Key]kalah.Outcome),
	}
}

// Solve returns the outcome of p under perfect play, or kalah.InProgress if
// more than budget positions would have to be expanded to decide it.
// Decided results are cached and reused by later calls on the same Solver.
func (s *Solver) Solve(p kalah.Position, budget uint64) kalah.Outcome {
	s.remaining = budget
	return s.solve(p)
}

func (s *Solver) solve(p kalah.Position) kalah.Outcome {
	if out := p.Outcome(); out != kalah.InProgress {
		return out
	}
	key := codec.Encode(p)
	if out, ok := s.cache[key]; ok {
		return out
	}
	if s.known.IsWin(key) {
		s.hits++
		return kalah.Win(p.Turn)
	}
	if s.known.IsDraw(key) {
		s.hits++
		return kalah.Draw
	}
	if s.remaining == 0 {
		return kalah.InProgress
	}
	s.remaining--
	s.nodes++

	mover := p.Turn
	win := kalah.Win(mover)
	best := kalah.Win(mover.Other())
	moved := false
	for pit := 0; pit < kalah.Pits; pit++ {
		child, ok := p.Apply(pit)
		if !ok {
			continue
		}
		moved = true
		out := s.solve(child)
		if out == kalah.InProgress {
			return kalah.InProgress
		}
		if out == win {
			best = win
			break
		}
		if out == kalah.Draw {
			best = kalah.Draw
		}
	}
	if !moved {
		panic(fmt.Sprintf("solver: no legal move in non-terminal position %v", p))
	}

	s.cache[key] = best
	return best
}

// Hits returns how many lookups were answered by the knowledge base.
func (s *Solver) Hits() uint64 { return s.hits }

// Nodes returns how many positions have been expanded.
func (s *Solver) Nodes() uint64 { return s.nodes }

// CacheLen returns the number of decided positions in the cache.
func (s *Solver) CacheLen() int { return len(s.cache) }

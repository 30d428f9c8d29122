package store

import (
	"github.com/samber/lo"

	"github.com/freeeve/kalah/internal/codec"
	"github.com/freeeve/kalah/internal/kalah"
)

// Fact is a position whose outcome under perfect play has been established.
type Fact struct {
	Position kalah.Position
	Outcome  kalah.Outcome
}

// MergeResult counts what a Merge changed.
type MergeResult struct {
	Wins       int // keys added to wins
	Draws      int // keys added to draws
	Duplicates int // keys that were already known
	Conflicts  int // keys already known with the opposite classification
	Skipped    int // facts or successors that cannot be stored
}

// Merge adds the facts of one learning round under the write lock.
//
// A draw is stored as a draw and a win for the side to move as a win. A win
// for the other side is stored as its full-turn successors: each of them has
// the winner to move, so wins only ever describe the side about to move.
func (s *Store) Merge(facts []Fact) MergeResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res MergeResult
	var accepted uint64
	for _, f := range facts {
		p := f.Position
		if p.Terminal() || !f.Outcome.Decided() {
			s.log.Warn().Stringer("position", p).Stringer("outcome", f.Outcome).Msg("fact cannot be stored")
			res.Skipped++
			continue
		}
		accepted++
		before := res.Wins + res.Draws
		s.mergeFact(f, &res)
		if res.Wins+res.Draws > before {
			s.log.Info().
				Stringer("position", p).
				Stringer("outcome", f.Outcome).
				Int("keys", res.Wins+res.Draws-before).
				Msg("new fact")
		}
	}

	s.meta.Rounds++
	s.meta.Facts += accepted
	s.meta.Duplicates += uint64(res.Duplicates)
	s.meta.Conflicts += uint64(res.Conflicts)
	return res
}

// mergeFact applies one decided, non-terminal fact. Caller holds the write
// lock.
func (s *Store) mergeFact(f Fact, res *MergeResult) {
	p := f.Position
	if f.Outcome == kalah.Draw {
		s.mergeKey(s.draws, s.wins, codec.Encode(p), res, &res.Draws)
		return
	}

	winner, _ := f.Outcome.Winner()
	if winner == p.Turn {
		s.mergeKey(s.wins, s.draws, codec.Encode(p), res, &res.Wins)
		return
	}

	succ := p.Successors()
	stored := lo.Filter(succ, func(q kalah.Position, _ int) bool {
		return !q.Terminal() && q.Turn == winner
	})
	res.Skipped += len(succ) - len(stored)
	keys := lo.Uniq(lo.Map(stored, func(q kalah.Position, _ int) codec.Key {
		return codec.Encode(q)
	}))
	for _, k := range keys {
		s.mergeKey(s.wins, s.draws, k, res, &res.Wins)
	}
}

type insertResult uint8

const (
	inserted insertResult = iota
	duplicate
	conflict
)

// insert adds k to set unless it is already there or in the other set.
// Caller holds the write lock.
func insert(set, other map[codec.Key]struct{}, k codec.Key, res *MergeResult, added *int) insertResult {
	if _, ok := set[k]; ok {
		res.Duplicates++
		return duplicate
	}
	if _, ok := other[k]; ok {
		res.Conflicts++
		return conflict
	}
	set[k] = struct{}{}
	*added++
	return inserted
}

func (s *Store) mergeKey(set, other map[codec.Key]struct{}, k codec.Key, res *MergeResult, added *int) {
	switch insert(set, other, k, res, added) {
	case duplicate:
		s.log.Warn().Stringer("key", k).Msg("duplicate derivation")
	case conflict:
		s.log.Error().Stringer("key", k).Msg("fact contradicts knowledge base")
	}
}

// Kind selects one of the two key sets.
type Kind uint8

const (
	KindWins Kind = iota
	KindDraws
)

func (k Kind) String() string {
	if k == KindDraws {
		return "draws"
	}
	return "wins"
}

// storable reports whether k decodes to a full, non-terminal board, the only
// positions the key sets describe.
func storable(k codec.Key) bool {
	p, err := codec.Decode(k)
	if err != nil {
		return false
	}
	return !p.Terminal() && p.Seeds() == kalah.TotalSeeds
}

// Import adds raw keys, e.g. from another store's archive, to one set.
// Keys that are not storable positions are skipped.
func (s *Store) Import(kind Kind, keys []codec.Key) MergeResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, other := s.wins, s.draws
	var res MergeResult
	added := &res.Wins
	if kind == KindDraws {
		set, other = s.draws, s.wins
		added = &res.Draws
	}
	for _, k := range keys {
		if !storable(k) {
			res.Skipped++
			continue
		}
		insert(set, other, k, &res, added)
	}
	s.meta.Duplicates += uint64(res.Duplicates)
	s.meta.Conflicts += uint64(res.Conflicts)
	return res
}

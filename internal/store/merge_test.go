package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freeeve/kalah/internal/codec"
	"github.com/freeeve/kalah/internal/kalah"
	"github.com/freeeve/kalah/internal/solver"
)

func pos(r0, r1 kalah.Row, turn kalah.Player) kalah.Position {
	return kalah.Position{Rows: [kalah.NumPlayers]kalah.Row{r0, r1}, Turn: turn}
}

var (
	drawnEndgame  = pos(kalah.Row{0, 0, 0, 1, 2, 1, 20}, kalah.Row{0, 0, 2, 1, 1, 0, 20}, kalah.Player0)
	winningForOne = pos(kalah.Row{0, 0, 0, 0, 3, 1, 20}, kalah.Row{0, 0, 2, 1, 1, 0, 20}, kalah.Player1)
	lostForZero   = pos(kalah.Row{0, 0, 0, 1, 0, 2, 21}, kalah.Row{0, 0, 2, 1, 1, 0, 20}, kalah.Player0)
)

func TestMergeDrawAndWin(t *testing.T) {
	s := openTest(t, t.TempDir())
	res := s.Merge([]Fact{
		{Position: drawnEndgame, Outcome: kalah.Draw},
		{Position: winningForOne, Outcome: kalah.Win1},
	})
	assert.Equal(t, MergeResult{Wins: 1, Draws: 1}, res)
	assert.Equal(t, []codec.Key{codec.Encode(winningForOne)}, s.Wins())
	assert.Equal(t, []codec.Key{codec.Encode(drawnEndgame)}, s.Draws())
}

func TestMergeLossStoresSuccessors(t *testing.T) {
	s := openTest(t, t.TempDir())
	res := s.Merge([]Fact{{Position: lostForZero, Outcome: kalah.Win1}})
	assert.Equal(t, 2, res.Wins)

	want := []codec.Key{
		codec.Encode(pos(kalah.Row{0, 0, 0, 0, 0, 2, 22}, kalah.Row{0, 0, 2, 1, 1, 0, 20}, kalah.Player1)),
		codec.Encode(pos(kalah.Row{0, 0, 0, 1, 0, 0, 22}, kalah.Row{1, 0, 2, 1, 1, 0, 20}, kalah.Player1)),
	}
	assert.ElementsMatch(t, want, s.Wins())

	v := s.View()
	defer v.Release()
	assert.False(t, v.IsWin(codec.Encode(lostForZero)), "the losing position itself is never stored")
}

func TestMergeDuplicatesAndConflicts(t *testing.T) {
	s := openTest(t, t.TempDir())
	s.Merge([]Fact{{Position: drawnEndgame, Outcome: kalah.Draw}})

	res := s.Merge([]Fact{
		{Position: drawnEndgame, Outcome: kalah.Draw},
		{Position: drawnEndgame, Outcome: kalah.Win0},
	})
	assert.Equal(t, MergeResult{Duplicates: 1, Conflicts: 1}, res)
	assert.Empty(t, s.Wins())

	st := s.Stats()
	assert.Equal(t, uint64(2), st.Rounds)
	assert.Equal(t, uint64(1), st.Duplicates)
	assert.Equal(t, uint64(1), st.Conflicts)
}

func TestMergeSkipsUnstorableFacts(t *testing.T) {
	s := openTest(t, t.TempDir())
	terminal := pos(kalah.Row{0, 0, 0, 0, 0, 0, 30}, kalah.Row{1, 0, 0, 0, 0, 0, 17}, kalah.Player1)
	res := s.Merge([]Fact{
		{Position: terminal, Outcome: kalah.Win0},
		{Position: drawnEndgame, Outcome: kalah.InProgress},
	})
	assert.Equal(t, MergeResult{Skipped: 2}, res)
	assert.Zero(t, s.Stats().Facts)
}

func TestMergedKnowledgeIsSound(t *testing.T) {
	s := openTest(t, t.TempDir())
	facts := make([]Fact, 0, 3)
	for _, p := range []kalah.Position{drawnEndgame, winningForOne, lostForZero} {
		facts = append(facts, Fact{Position: p, Outcome: solver.New(nil).Solve(p, solver.Unlimited)})
	}
	s.Merge(facts)

	for _, k := range s.Wins() {
		p := codec.MustDecode(k)
		assert.Equal(t, kalah.Win(p.Turn), solver.New(nil).Solve(p, solver.Unlimited), "win %v", p)
	}
	for _, k := range s.Draws() {
		p := codec.MustDecode(k)
		assert.Equal(t, kalah.Draw, solver.New(nil).Solve(p, solver.Unlimited), "draw %v", p)
	}
	require.Len(t, s.Wins(), 3)
}

func TestImport(t *testing.T) {
	s := openTest(t, t.TempDir())
	s.Merge([]Fact{{Position: drawnEndgame, Outcome: kalah.Draw}})

	res := s.Import(KindWins, []codec.Key{
		codec.Encode(winningForOne),
		codec.Encode(winningForOne),
		codec.Encode(drawnEndgame),
		^codec.Key(0),
	})
	assert.Equal(t, MergeResult{Wins: 1, Duplicates: 1, Conflicts: 1, Skipped: 1}, res)

	res = s.Import(KindDraws, []codec.Key{codec.Encode(lostForZero)})
	assert.Equal(t, 1, res.Draws)
	assert.Len(t, s.Draws(), 2)
	assert.Equal(t, "draws", KindDraws.String())
}

func TestImportSkipsUnstorableKeys(t *testing.T) {
	s := openTest(t, t.TempDir())
	terminal := pos(kalah.Row{0, 0, 0, 0, 0, 0, 25}, kalah.Row{0, 0, 0, 0, 0, 1, 22}, kalah.Player1)
	short := pos(kalah.Row{1, 1, 1, 1, 1, 1, 0}, kalah.Row{1, 1, 1, 1, 1, 1, 0}, kalah.Player0)

	res := s.Import(KindWins, []codec.Key{
		codec.Encode(terminal),
		codec.Encode(short),
		codec.Encode(winningForOne),
	})
	assert.Equal(t, MergeResult{Wins: 1, Skipped: 2}, res)
	assert.Equal(t, []codec.Key{codec.Encode(winningForOne)}, s.Wins())
}

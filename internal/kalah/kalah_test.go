package kalah

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/frand"
)

func pos(r0, r1 Row, turn Player) Position {
	return Position{Rows: [NumPlayers]Row{r0, r1}, Turn: turn}
}

func TestInitial(t *testing.T) {
	p := Initial()
	assert.Equal(t, TotalSeeds, p.Seeds())
	assert.Equal(t, 48, p.Seeds())
	assert.Equal(t, Player0, p.Turn)
	assert.False(t, p.Terminal())
	assert.Equal(t, InProgress, p.Outcome())
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, p.Legal())
}

func TestApplyExtraTurnFromInitial(t *testing.T) {
	next, ok := Initial().Apply(2)
	require.True(t, ok)
	assert.Equal(t, Player0, next.Turn, "last seed in own store keeps the turn")
	assert.Equal(t, Row{4, 4, 0, 5, 5, 5, 1}, next.Rows[0])
	assert.Equal(t, Row{4, 4, 4, 4, 4, 4, 0}, next.Rows[1])
}

func TestApply(t *testing.T) {
	tests := []struct {
		name string
		in   Position
		pit  int
		want Position
	}{
		{
			name: "turn passes",
			in:   Initial(),
			pit:  0,
			want: pos(Row{0, 5, 5, 5, 5, 4, 0}, Row{4, 4, 4, 4, 4, 4, 0}, Player1),
		},
		{
			name: "capture into empty own pit",
			in:   pos(Row{1, 0, 0, 0, 0, 0, 0}, Row{4, 4, 4, 4, 3, 4, 0}, Player0),
			pit:  0,
			want: pos(Row{0, 0, 0, 0, 0, 0, 4}, Row{4, 4, 4, 4, 0, 4, 0}, Player1),
		},
		{
			name: "capture with empty opposite pit still banks the landing seed",
			in:   pos(Row{1, 0, 0, 0, 0, 0, 0}, Row{4, 4, 4, 4, 0, 4, 0}, Player0),
			pit:  0,
			want: pos(Row{0, 0, 0, 0, 0, 0, 1}, Row{4, 4, 4, 4, 0, 4, 0}, Player1),
		},
		{
			name: "no capture on occupied pit",
			in:   pos(Row{1, 2, 0, 0, 0, 0, 0}, Row{4, 4, 4, 4, 3, 4, 0}, Player0),
			pit:  0,
			want: pos(Row{0, 3, 0, 0, 0, 0, 0}, Row{4, 4, 4, 4, 3, 4, 0}, Player1),
		},
		{
			name: "no capture on opponent side",
			in:   pos(Row{0, 0, 0, 0, 0, 2, 0}, Row{0, 4, 4, 4, 3, 4, 0}, Player0),
			pit:  5,
			want: pos(Row{0, 0, 0, 0, 0, 0, 1}, Row{1, 4, 4, 4, 3, 4, 0}, Player1),
		},
		{
			name: "skips opponent store",
			in:   pos(Row{2, 0, 0, 0, 0, 8, 0}, Row{1, 1, 1, 1, 1, 1, 5}, Player0),
			pit:  5,
			want: pos(Row{3, 0, 0, 0, 0, 0, 1}, Row{2, 2, 2, 2, 2, 2, 5}, Player1),
		},
		{
			name: "full lap captures in the emptied origin pit",
			in:   pos(Row{13, 0, 0, 0, 0, 0, 0}, Row{1, 1, 1, 1, 1, 2, 0}, Player0),
			pit:  0,
			want: pos(Row{0, 1, 1, 1, 1, 1, 5}, Row{2, 2, 2, 2, 2, 0, 0}, Player1),
		},
		{
			name: "player one sows into its own store",
			in:   pos(Row{4, 4, 4, 4, 4, 4, 0}, Row{4, 4, 4, 4, 4, 4, 0}, Player1),
			pit:  2,
			want: pos(Row{4, 4, 4, 4, 4, 4, 0}, Row{4, 4, 0, 5, 5, 5, 1}, Player1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.in.Apply(tt.pit)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in.Seeds(), got.Seeds())
		})
	}
}

func TestApplyEmptyPit(t *testing.T) {
	p := pos(Row{0, 1, 0, 0, 0, 0, 0}, Row{1, 0, 0, 0, 0, 0, 0}, Player0)
	_, ok := p.Apply(0)
	assert.False(t, ok)
}

func TestApplyOutOfRangePanics(t *testing.T) {
	p := Initial()
	assert.Panics(t, func() { p.Apply(-1) })
	assert.Panics(t, func() { p.Apply(Pits) })
	assert.Panics(t, func() { p.Apply(Store) })
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		name string
		p    Position
		want Outcome
	}{
		{"both sides have seeds", Initial(), InProgress},
		{"player one out of seeds and ahead", pos(Row{0, 0, 3, 0, 0, 0, 20}, Row{0, 0, 0, 0, 0, 0, 25}, Player0), Win1},
		{"remaining pits count for their owner", pos(Row{0, 0, 10, 0, 0, 0, 15}, Row{0, 0, 0, 0, 0, 0, 23}, Player1), Win0},
		{"equal totals draw", pos(Row{0, 0, 0, 0, 0, 0, 24}, Row{1, 0, 0, 0, 0, 0, 23}, Player1), Draw},
		{"one pit each still in progress", pos(Row{0, 0, 0, 0, 0, 1, 23}, Row{1, 0, 0, 0, 0, 0, 23}, Player0), InProgress},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.p.Outcome())
			assert.Equal(t, tt.want != InProgress, tt.p.Terminal())
		})
	}
}

func TestOutcomeWinner(t *testing.T) {
	w, ok := Win(Player1).Winner()
	require.True(t, ok)
	assert.Equal(t, Player1, w)

	_, ok = Draw.Winner()
	assert.False(t, ok)
	_, ok = InProgress.Winner()
	assert.False(t, ok)
	assert.False(t, InProgress.Decided())
	assert.True(t, Draw.Decided())
}

func TestSuccessorsInitial(t *testing.T) {
	succ := Initial().Successors()
	// Five direct moves plus five continuations after the extra turn from pit 2.
	require.Len(t, succ, 10)
	for _, s := range succ {
		assert.Equal(t, Player1, s.Turn)
		assert.Equal(t, TotalSeeds, s.Seeds())
	}
	assert.Equal(t, succ, Initial().Successors(), "expansion must be deterministic")
}

func TestSuccessorsChainEndingTheGame(t *testing.T) {
	p := pos(Row{0, 0, 0, 0, 0, 1, 20}, Row{2, 2, 2, 2, 2, 2, 15}, Player0)
	succ := p.Successors()
	require.Len(t, succ, 1)
	assert.True(t, succ[0].Terminal())
	assert.Equal(t, Player0, succ[0].Turn)
	assert.Equal(t, Win1, succ[0].Outcome())
}

func TestSuccessorsFollowChains(t *testing.T) {
	// pit 5 reaches the store, then pit 4 does, then only pit 3 is left.
	p := pos(Row{0, 0, 0, 3, 2, 1, 0}, Row{4, 4, 4, 4, 4, 4, 16}, Player0)
	for _, s := range p.Successors() {
		if !s.Terminal() {
			assert.Equal(t, Player1, s.Turn, "non-terminal successors pass the turn: %v", s)
		}
		assert.Equal(t, p.Seeds(), s.Seeds())
	}
}

func TestConservationOverRandomGames(t *testing.T) {
	rng := frand.NewCustom(make([]byte, 32), 1024, 12)
	for game := 0; game < 200; game++ {
		p := Initial()
		for !p.Terminal() {
			legal := p.Legal()
			require.NotEmpty(t, legal)
			next, ok := p.Apply(legal[rng.Intn(len(legal))])
			require.True(t, ok)
			require.Equal(t, TotalSeeds, next.Seeds(), "from %v", p)
			p = next
		}
		assert.NotEqual(t, InProgress, p.Outcome())
	}
}

func TestPositionString(t *testing.T) {
	assert.Equal(t, "4 4 4 4 4 4 |0| 4 4 4 4 4 4 |0| p0", Initial().String())
}

func TestParseRoundTrip(t *testing.T) {
	p := Initial()
	p.Turn = Player1
	got, err := Parse(p.String())
	require.NoError(t, err)
	assert.Equal(t, p, got)

	got, err = Parse("0 0 0 1 2 1 20 0 0 2 1 1 0 20")
	require.NoError(t, err)
	assert.Equal(t, Row{0, 0, 0, 1, 2, 1, 20}, got.Rows[0])
	assert.Equal(t, Row{0, 0, 2, 1, 1, 0, 20}, got.Rows[1])
	assert.Equal(t, Player0, got.Turn)
}

func TestParseRejects(t *testing.T) {
	for _, s := range []string{
		"",
		"4 4 4 4 4 4 |0| 4 4 4 4 4 4 |0| p2",
		"4 4 4 4 4 4 |0| 4 4 4 4 4 4",
		"4 4 4 4 4 4 |0| 4 4 4 4 4 x |0|",
		"4 4 4 4 4 4 |1| 4 4 4 4 4 4 |0|",
		"4 4 4 4 4 4 |0| 4 4 4 4 4 300 |0|",
	} {
		_, err := Parse(s)
		assert.ErrorIs(t, err, ErrBadPosition, "input %q", s)
	}
}

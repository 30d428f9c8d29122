package httpapi

import (
	"github.com/freeeve/kalah/internal/codec"
	"github.com/freeeve/kalah/internal/kalah"
)

// Where an answer came from.
const (
	SourceTerminal  = "terminal"  // game over, decided by counting seeds
	SourceKnowledge = "knowledge" // stored win or draw
	SourceSearch    = "search"    // solved within the query budget
	SourceUndecided = "undecided" // the budget ran out
)

// PositionResponse is the JSON answer to a position query.
type PositionResponse struct {
	Key      string `json:"key"`   // hex encoded position key
	Board    string `json:"board"` // kalah.Position.String notation
	Turn     int    `json:"turn"`
	Stores   [2]int `json:"stores"`
	Terminal bool   `json:"terminal"`
	Outcome  string `json:"outcome"`
	Winner   *int   `json:"winner,omitempty"`
	Source   string `json:"source"`
	Nodes    uint64 `json:"nodes,omitempty"` // positions searched for this answer
	Queued   bool   `json:"queued,omitempty"` // handed to background learning
}

func newPositionResponse(p kalah.Position, out kalah.Outcome, source string, nodes uint64) PositionResponse {
	resp := PositionResponse{
		Key:      codec.Encode(p).String(),
		Board:    p.String(),
		Turn:     int(p.Turn),
		Stores:   [2]int{int(p.Rows[0][kalah.Store]), int(p.Rows[1][kalah.Store])},
		Terminal: p.Terminal(),
		Outcome:  out.String(),
		Source:   source,
		Nodes:    nodes,
	}
	if winner, ok := out.Winner(); ok {
		w := int(winner)
		resp.Winner = &w
	}
	return resp
}

// StatsResponse mirrors store.Stats.
type StatsResponse struct {
	Wins       int    `json:"wins"`
	Draws      int    `json:"draws"`
	Rounds     uint64 `json:"rounds"`
	Facts      uint64 `json:"facts"`
	Duplicates uint64 `json:"duplicates"`
	Conflicts  uint64 `json:"conflicts"`
}

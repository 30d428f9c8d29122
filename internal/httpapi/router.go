// Package httpapi serves outcome queries against the knowledge store.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/pprof"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/freeeve/kalah/internal/codec"
	"github.com/freeeve/kalah/internal/kalah"
	"github.com/freeeve/kalah/internal/solver"
	"github.com/freeeve/kalah/internal/store"
)

// Config configures the router.
type Config struct {
	Logger zerolog.Logger
	Store  *store.Store
	Budget uint64 // node budget per query, default DefaultBudget

	// Pending, when set, receives positions the budget could not decide.
	Pending Enqueuer
}

// Enqueuer accepts positions for later learning.
type Enqueuer interface {
	Enqueue(k codec.Key) bool
}

// DefaultBudget bounds a query's search. Queries hold the store's read lock,
// so an unbounded search would stall merges.
const DefaultBudget uint64 = 100000

// Handler answers queries from the knowledge store, falling back to a
// bounded search.
type Handler struct {
	st      *store.Store
	budget  uint64
	pending Enqueuer
	log     zerolog.Logger
}

// NewRouter creates the HTTP router.
func NewRouter(cfg Config) http.Handler {
	h := &Handler{
		st:      cfg.Store,
		budget:  cfg.Budget,
		pending: cfg.Pending,
		log:     cfg.Logger,
	}
	if h.budget == 0 {
		h.budget = DefaultBudget
	}

	mux := http.NewServeMux()
	mux.Handle("/healthz", http.HandlerFunc(h.health))
	mux.Handle("/readyz", http.HandlerFunc(h.health))
	mux.Handle("/v1/position", http.HandlerFunc(h.position))
	mux.Handle("/v1/position/", http.HandlerFunc(h.position))
	mux.Handle("/v1/stats", http.HandlerFunc(h.stats))

	// pprof endpoints
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	return RequestID(AccessLog(cfg.Logger, mux))
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	s := h.st.Stats()
	writeJSON(w, StatsResponse{
		Wins:       s.Wins,
		Draws:      s.Draws,
		Rounds:     s.Rounds,
		Facts:      s.Facts,
		Duplicates: s.Duplicates,
		Conflicts:  s.Conflicts,
	})
}

// position answers /v1/position/<hex key> and /v1/position?board=<notation>.
func (h *Handler) position(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var (
		p   kalah.Position
		err error
	)
	parts := splitPath(r.URL.Path)
	switch {
	case len(parts) == 3:
		p, err = parseKey(parts[2])
	case r.URL.Query().Has("board"):
		p, err = kalah.Parse(r.URL.Query().Get("board"))
	default:
		http.Error(w, "missing position key or board parameter", http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, "invalid position: "+err.Error(), http.StatusBadRequest)
		return
	}

	resp := h.classify(p)
	if resp.Source == SourceUndecided && h.pending != nil {
		resp.Queued = h.pending.Enqueue(codec.Encode(p))
	}
	h.log.Debug().
		Str("rid", GetRequestID(r.Context())).
		Str("key", resp.Key).
		Str("outcome", resp.Outcome).
		Str("source", resp.Source).
		Uint64("nodes", resp.Nodes).
		Msg("classified")
	writeJSON(w, resp)
}

// classify holds a store view for the whole lookup so a concurrent merge
// cannot change the answer halfway through a search.
func (h *Handler) classify(p kalah.Position) PositionResponse {
	if p.Terminal() {
		return newPositionResponse(p, p.Outcome(), SourceTerminal, 0)
	}

	view := h.st.View()
	defer view.Release()

	k := codec.Encode(p)
	if view.IsWin(k) {
		return newPositionResponse(p, kalah.Win(p.Turn), SourceKnowledge, 0)
	}
	if view.IsDraw(k) {
		return newPositionResponse(p, kalah.Draw, SourceKnowledge, 0)
	}

	s := solver.New(view)
	out := s.Solve(p, h.budget)
	source := SourceSearch
	if out == kalah.InProgress {
		source = SourceUndecided
	}
	return newPositionResponse(p, out, source, s.Nodes())
}

var errKeySyntax = errors.New("position key must be 16 hex digits")

func parseKey(s string) (kalah.Position, error) {
	if len(s) != 16 {
		return kalah.Position{}, errKeySyntax
	}
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return kalah.Position{}, errKeySyntax
	}
	p, err := codec.Decode(codec.Key(v))
	if err != nil {
		return kalah.Position{}, err
	}
	if p.Seeds() != kalah.TotalSeeds {
		return kalah.Position{}, codec.ErrMalformedKey
	}
	return p, nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// splitPath splits a URL path into parts
func splitPath(path string) []string {
	parts := strings.Split(path, "/")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

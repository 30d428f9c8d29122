// Package verify re-solves stored knowledge from scratch to check that every
// recorded win and draw is correct.
package verify

import (
	"context"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/freeeve/kalah/internal/codec"
	"github.com/freeeve/kalah/internal/kalah"
	"github.com/freeeve/kalah/internal/solver"
	"github.com/freeeve/kalah/internal/store"
)

// Config configures a verification pass.
type Config struct {
	Logger  zerolog.Logger
	Workers int    // default runtime.NumCPU()
	Budget  uint64 // node budget per key, 0 = unlimited
}

// Mismatch is a stored key whose recorded outcome search does not confirm.
type Mismatch struct {
	Key  codec.Key
	Kind store.Kind
	Got  kalah.Outcome
}

// Report summarizes a verification pass.
type Report struct {
	Checked    int
	Exhausted  int // keys the budget could not decide
	Malformed  int
	Mismatches []Mismatch
	Elapsed    time.Duration
}

// OK reports whether no stored fact was contradicted.
func (r Report) OK() bool {
	return len(r.Mismatches) == 0 && r.Malformed == 0
}

type job struct {
	key  codec.Key
	kind store.Kind
}

type partial struct {
	checked, exhausted, malformed int
	mismatches                    []Mismatch
}

// Run checks every key in st without consulting the knowledge base. Each
// worker keeps its own solver, so subtrees shared between keys are searched
// once per worker. It stops early only when ctx is done.
func Run(ctx context.Context, cfg Config, st *store.Store) (Report, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Budget == 0 {
		cfg.Budget = solver.Unlimited
	}
	start := time.Now()

	var jobs []job
	for _, k := range st.Wins() {
		jobs = append(jobs, job{k, store.KindWins})
	}
	for _, k := range st.Draws() {
		jobs = append(jobs, job{k, store.KindDraws})
	}
	cfg.Logger.Info().Int("keys", len(jobs)).Int("workers", cfg.Workers).Msg("verifying knowledge")

	parts := make([]partial, cfg.Workers)
	g, ctx := errgroup.WithContext(ctx)
	for w := range parts {
		g.Go(func() error {
			s := solver.New(solver.NoKnowledge)
			part := &parts[w]
			for i := w; i < len(jobs); i += cfg.Workers {
				if err := ctx.Err(); err != nil {
					return err
				}
				check(cfg.Logger, s, jobs[i], cfg.Budget, part)
			}
			return nil
		})
	}
	err := g.Wait()

	var r Report
	for _, p := range parts {
		r.Checked += p.checked
		r.Exhausted += p.exhausted
		r.Malformed += p.malformed
		r.Mismatches = append(r.Mismatches, p.mismatches...)
	}
	r.Elapsed = time.Since(start)
	return r, err
}

func check(log zerolog.Logger, s *solver.Solver, j job, budget uint64, part *partial) {
	p, err := codec.Decode(j.key)
	if err != nil {
		log.Error().Err(err).Stringer("key", j.key).Stringer("kind", j.kind).Msg("stored key does not decode")
		part.malformed++
		return
	}
	part.checked++

	want := kalah.Draw
	if j.kind == store.KindWins {
		want = kalah.Win(p.Turn)
	}
	got := s.Solve(p, budget)
	switch got {
	case want:
	case kalah.InProgress:
		part.exhausted++
		log.Debug().Stringer("key", j.key).Stringer("position", p).Msg("budget exhausted")
	default:
		part.mismatches = append(part.mismatches, Mismatch{Key: j.key, Kind: j.kind, Got: got})
		log.Error().
			Stringer("key", j.key).
			Stringer("position", p).
			Stringer("kind", j.kind).
			Stringer("got", got).
			Msg("stored fact is wrong")
	}
}

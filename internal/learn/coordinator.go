// Package learn grows the knowledge base with rounds of random self-play
// followed by backward search.
package learn

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"lukechampine.com/frand"

	"github.com/freeeve/kalah/internal/codec"
	"github.com/freeeve/kalah/internal/kalah"
	"github.com/freeeve/kalah/internal/solver"
	"github.com/freeeve/kalah/internal/store"
)

// Config configures the Coordinator.
type Config struct {
	Logger     zerolog.Logger
	Workers    int    // playouts per round, default runtime.NumCPU()
	Rounds     int    // rounds per Run, 0 = until the context is done
	NodeBudget uint64 // node budget per Solve call, default 100000
	SaveEvery  int    // snapshot every N rounds, 0 = only at the end of Run

	// Intn picks a successor during playouts, default frand.Intn.
	// It must be safe for concurrent use.
	Intn func(n int) int

	// Starts, when set, supplies playout starts ahead of the initial
	// position, one per worker per round.
	Starts *StartQueue
}

// Coordinator runs learning rounds against a shared store.
type Coordinator struct {
	cfg   Config
	log   zerolog.Logger
	store *store.Store
	start kalah.Position
}

// New creates a Coordinator that plays from the initial position.
func New(cfg Config, st *store.Store) *Coordinator {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.NodeBudget == 0 {
		cfg.NodeBudget = 100000
	}
	if cfg.Intn == nil {
		cfg.Intn = frand.Intn
	}
	return &Coordinator{
		cfg:   cfg,
		log:   cfg.Logger,
		store: st,
		start: kalah.Initial(),
	}
}

// WorkerResult is what a single playout contributes to a round.
type WorkerResult struct {
	Resolution
	Plies int    // full turns in the playout
	Hits  uint64 // knowledge base lookups that answered a search
	Nodes uint64 // positions expanded by the search
}

// RoundResult summarizes one round.
type RoundResult struct {
	Facts     []store.Fact
	Merge     store.MergeResult
	Hits      uint64
	Nodes     uint64
	Exhausted int // workers that ran out of budget before reaching the start
	Elapsed   time.Duration
}

// work runs one playout from start and its backward resolution against the
// round's view.
func (c *Coordinator) work(view *store.View, start kalah.Position) WorkerResult {
	path := Playout(start, c.cfg.Intn)
	s := solver.New(view)
	res := Resolve(s, path, c.cfg.NodeBudget)
	return WorkerResult{
		Resolution: res,
		Plies:      len(path) - 1,
		Hits:       s.Hits(),
		Nodes:      s.Nodes(),
	}
}

// Round runs Workers playouts in parallel, waits for all of them and merges
// their facts. All workers search one store view, taken before the first of
// them starts and released after the last one ends, so writers wait for the
// whole round. A failed worker fails the round and nothing is merged.
func (c *Coordinator) Round(ctx context.Context) (RoundResult, error) {
	start := time.Now()
	results := make([]WorkerResult, c.cfg.Workers)
	starts := c.starts()

	view := c.store.View()
	g, _ := errgroup.WithContext(ctx)
	for i := range results {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("worker %d panicked: %v\n%s", i, r, debug.Stack())
				}
			}()
			results[i] = c.work(view, starts[i])
			return nil
		})
	}
	err := g.Wait()
	view.Release()
	if err != nil {
		return RoundResult{}, err
	}

	var rr RoundResult
	for i, res := range results {
		rr.Hits += res.Hits
		rr.Nodes += res.Nodes
		if res.Exhausted {
			rr.Exhausted++
			c.log.Debug().Int("worker", i).Int("depth", res.Depth).Int("plies", res.Plies).Msg("budget exhausted")
		}
		if res.Resolved {
			rr.Facts = append(rr.Facts, res.Fact)
			c.log.Debug().
				Int("worker", i).
				Stringer("key", codec.Encode(res.Fact.Position)).
				Stringer("outcome", res.Fact.Outcome).
				Int("depth", res.Depth).
				Msg("candidate fact")
		}
	}

	rr.Merge = c.store.Merge(rr.Facts)
	rr.Elapsed = time.Since(start)
	return rr, nil
}

// starts picks one playout start per worker, queued positions first.
func (c *Coordinator) starts() []kalah.Position {
	starts := make([]kalah.Position, c.cfg.Workers)
	for i := range starts {
		starts[i] = c.start
		if c.cfg.Starts == nil {
			continue
		}
		for {
			k, ok := c.cfg.Starts.Dequeue()
			if !ok {
				break
			}
			p, err := codec.Decode(k)
			if err != nil || p.Terminal() {
				c.log.Warn().Stringer("key", k).Msg("dropping unusable start position")
				continue
			}
			starts[i] = p
			c.log.Debug().Int("worker", i).Stringer("position", p).Msg("playout from queued start")
			break
		}
	}
	return starts
}

// Run executes rounds until Rounds is reached or ctx is done, saving every
// SaveEvery rounds and once more at the end. A round in progress is always
// completed. Save failures end the run.
func (c *Coordinator) Run(ctx context.Context) error {
	c.log.Info().
		Int("workers", c.cfg.Workers).
		Int("rounds", c.cfg.Rounds).
		Uint64("node_budget", c.cfg.NodeBudget).
		Int("save_every", c.cfg.SaveEvery).
		Msg("learning started")

	completed := 0
	for c.cfg.Rounds == 0 || completed < c.cfg.Rounds {
		if ctx.Err() != nil {
			c.log.Info().Int("completed", completed).Msg("interrupted, finishing")
			break
		}
		rr, err := c.Round(ctx)
		if err != nil {
			return fmt.Errorf("round %d: %w", completed+1, err)
		}
		completed++
		c.report(completed, rr)

		if c.cfg.SaveEvery > 0 && completed%c.cfg.SaveEvery == 0 {
			if err := c.store.Save(); err != nil {
				return fmt.Errorf("save after round %d: %w", completed, err)
			}
		}
	}

	if err := c.store.Save(); err != nil {
		return fmt.Errorf("final save: %w", err)
	}
	c.log.Info().Int("rounds", completed).Msg("learning finished")
	return nil
}

func (c *Coordinator) report(round int, rr RoundResult) {
	st := c.store.Stats()
	c.log.Info().
		Int("round", round).
		Int("facts", len(rr.Facts)).
		Int("added_wins", rr.Merge.Wins).
		Int("added_draws", rr.Merge.Draws).
		Int("duplicates", rr.Merge.Duplicates).
		Int("exhausted", rr.Exhausted).
		Uint64("hits", rr.Hits).
		Uint64("nodes", rr.Nodes).
		Int("known_wins", st.Wins).
		Int("known_draws", st.Draws).
		Dur("elapsed", rr.Elapsed).
		Msg("round complete")
}

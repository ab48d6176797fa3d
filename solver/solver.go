// Package solver computes exact verdicts for connect-four positions with a
// pool of workers that share a transposition store. A conductor goroutine
// owns all changes to the store, hands positions to workers and tracks
// which positions wait on which, until the root position is decided.
package solver

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/dropfour/board"
	"github.com/domino14/dropfour/dump"
	"github.com/domino14/dropfour/heuristic"
	"github.com/domino14/dropfour/poskey"
	"github.com/domino14/dropfour/stats"
	"github.com/domino14/dropfour/store"
)

var (
	ErrGameOver  = errors.New("game is already over")
	ErrBadMover  = errors.New("mover must be black or white")
	ErrSolveBusy = errors.New("a solve is already running")
)

const inboxPerWorker = 256

type Solver struct {
	cfg       Config
	evaluator *heuristic.Evaluator
	busy      atomic.Bool

	bestMove board.Column
	summary  stats.Summary
}

func New(cfg Config) *Solver {
	cfg = cfg.withDefaults()
	return &Solver{
		cfg:       cfg,
		evaluator: heuristic.NewEvaluator(cfg.Coefficients),
		bestMove:  board.NoColumn,
	}
}

func (s *Solver) Config() Config {
	return s.cfg
}

// Solve blocks until the verdict of b with mover to act is known. The
// store it builds is thrown away before returning.
func (s *Solver) Solve(ctx context.Context, b *board.Board, mover board.Player) (board.Verdict, error) {
	if mover != board.Black && mover != board.White {
		return board.Verdict{}, fmt.Errorf("%w: got %s", ErrBadMover, mover)
	}
	if b.Over() {
		return board.Verdict{}, ErrGameOver
	}
	if !s.busy.CompareAndSwap(false, true) {
		return board.Verdict{}, ErrSolveBusy
	}
	defer s.busy.Store(false)

	root := poskey.Encode(b, mover)
	log.Info().Int("workers", s.cfg.Workers).
		Int("lookahead", s.cfg.Lookahead).
		Str("root", root.String()).
		Str("mover", mover.String()).
		Msg("solve-starting")
	tstart := time.Now()

	st := store.New()
	inbox := make(chan message, inboxPerWorker*s.cfg.Workers)
	workers := make([]*worker, s.cfg.Workers)
	for i := range workers {
		workers[i] = newWorker(i, s.cfg, st, s.evaluator, inbox)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	for _, w := range workers {
		g.Go(func() error {
			return w.run(gctx)
		})
	}

	c := newConductor(st, workers, inbox, s.cfg.ProgressInterval)
	verdict, best, err := c.run(gctx, root, mover)

	// Tell every worker to stop and wait for them.
	cancel()
	for _, w := range workers {
		w.mailbox.close()
	}
	if werr := g.Wait(); werr != nil && err == nil {
		err = werr
	}
	st.SetSingleThreadedMode()
	elapsed := time.Since(tstart)

	if err != nil {
		log.Err(err).Dur("elapsed", elapsed).Msg("solve-aborted")
		st.Reset()
		return board.Verdict{}, err
	}

	s.bestMove = best
	s.summary = summarize(c, st, verdict, best, elapsed)
	if s.cfg.DumpPath != "" {
		report := dump.Build(b, mover, verdict, best, s.summary.Counters, st)
		if derr := dump.Write(s.cfg.DumpPath, report); derr != nil {
			log.Err(derr).Str("path", s.cfg.DumpPath).Msg("dump-failed")
		}
	}
	log.Info().
		Str("verdict", verdict.String()).
		Int("best-move", int(best)).
		Int("store-entries", s.summary.Counters.Entries).
		Uint64("store-decided", s.summary.Counters.Decided).
		Uint64("store-recalls", s.summary.Counters.Recalls).
		Float64("time-elapsed-sec", elapsed.Seconds()).
		Msg("solve-returning")
	st.Reset()
	return verdict, nil
}

// BestMove is the move that achieves the verdict of the last solve.
func (s *Solver) BestMove() board.Column {
	return s.bestMove
}

func (s *Solver) Stats() stats.Summary {
	return s.summary
}

func summarize(c *conductor, st *store.Store, v board.Verdict, best board.Column,
	elapsed time.Duration) stats.Summary {

	sum := stats.Summary{
		Verdict:  v.String(),
		BestMove: int(best),
		Elapsed:  elapsed,
		Jobs:     lo.Map(c.roster, func(r *rosterEntry, _ int) int { return r.jobs }),
		Counters: st.Counters(),
	}
	for _, r := range c.roster {
		sum.JobSeconds.Merge(r.durations)
	}
	st.Range(func(_ poskey.Key, e store.Entry) bool {
		if e.State == store.Decided {
			sum.Distances = append(sum.Distances, float64(e.Verdict.Distance))
		}
		return true
	})
	return sum
}

package solver

import (
	"context"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/domino14/dropfour/board"
	"github.com/domino14/dropfour/heuristic"
	"github.com/domino14/dropfour/minimax"
	"github.com/domino14/dropfour/poskey"
	"github.com/domino14/dropfour/store"
)

// noBound marks an own move that can no longer become a win.
const noBound = math.MaxInt

type worker struct {
	id        int
	lookahead int
	store     *store.Store
	evaluator *heuristic.Evaluator
	mailbox   *mailbox
	out       chan<- message
	logger    zerolog.Logger
}

func newWorker(id int, cfg Config, st *store.Store, ev *heuristic.Evaluator, out chan<- message) *worker {
	return &worker{
		id:        id,
		lookahead: cfg.Lookahead,
		store:     st,
		evaluator: ev,
		mailbox:   newMailbox(),
		out:       out,
		logger:    log.With().Int("worker", id).Logger(),
	}
}

func (w *worker) run(ctx context.Context) error {
	w.logger.Debug().Msg("worker-starting")
	for {
		j, ok := w.mailbox.pop()
		if !ok {
			w.logger.Debug().Msg("worker-exiting")
			return nil
		}
		start := time.Now()
		r := w.resolve(j)
		for _, child := range r.interests {
			if !w.send(ctx, interest{worker: w.id, child: child, mover: j.mover, parent: j.key}) {
				return nil
			}
		}
		if !w.send(ctx, completion{worker: w.id, key: j.key, verdict: r.verdict,
			move: r.move, elapsed: time.Since(start)}) {
			return nil
		}
	}
}

// send reports to the conductor. It returns false if the conductor has
// gone away, which means the solve is over.
func (w *worker) send(ctx context.Context, m message) bool {
	select {
	case w.out <- m:
		return true
	case <-ctx.Done():
		w.logger.Debug().Msg("conductor-gone")
		return false
	}
}

type resolution struct {
	verdict   board.Verdict
	move      board.Column
	interests []poskey.Key
}

func (w *worker) resolve(j job) resolution {
	b, err := poskey.Decode(j.key, j.mover)
	if err != nil {
		panic(fmt.Sprintf("worker %d cannot decode job %s: %v", w.id, j.key, err))
	}
	if e, ok := w.store.Lookup(j.key); ok && e.State == store.Decided {
		panic(fmt.Sprintf("worker %d got a job for decided key %s", w.id, j.key))
	}
	if !j.recall && w.lookahead > 0 {
		col, v, ok := minimax.FindBestMove(b, j.mover, w.lookahead, false, nil)
		if ok && v.Decided() {
			return resolution{verdict: v, move: col}
		}
	}
	return w.twoPly(b, j.mover)
}

// ownMove is what the mover knows about one of its moves after looking
// two plies ahead.
type ownMove struct {
	col     board.Column
	verdict board.Verdict
	pending []poskey.Key
	// bound is the shortest win this move could still turn into.
	bound int
	score float32
}

func (o ownMove) open() bool {
	return len(o.pending) > 0
}

// twoPly looks at every move of mover and every reply, and asks the store
// about the positions after the reply.
func (w *worker) twoPly(b *board.Board, mover board.Player) resolution {
	moves := b.PossibleMoves()
	for _, c := range moves {
		v := mustMove(b, mover, c)
		mustWithdraw(b, c)
		if v.Kind == board.Won {
			return resolution{verdict: v, move: c}
		}
	}

	own := make([]ownMove, 0, len(moves))
	for _, c := range moves {
		v := mustMove(b, mover, c)
		if v.Kind == board.Draw {
			own = append(own, ownMove{col: c, verdict: v})
		} else {
			own = append(own, w.replies(b, mover, c))
		}
		mustWithdraw(b, c)
	}

	open := lo.Filter(own, func(o ownMove, _ int) bool { return o.open() })
	closed := lo.Filter(own, func(o ownMove, _ int) bool { return !o.open() })

	wins := lo.Filter(closed, func(o ownMove, _ int) bool { return o.verdict.Kind == board.Won })
	if len(wins) > 0 {
		best := lo.MinBy(wins, func(a, b ownMove) bool { return a.verdict.Distance < b.verdict.Distance })
		if lo.EveryBy(open, func(o ownMove) bool { return best.verdict.Distance <= o.bound }) {
			return resolution{verdict: best.verdict, move: best.col}
		}
	}

	if len(open) > 0 {
		for i := range open {
			s, err := w.evaluator.EvaluateMove(b, mover, open[i].col)
			if err != nil {
				panic(fmt.Sprintf("cannot evaluate legal move %d: %v", open[i].col, err))
			}
			open[i].score = s
		}
		slices.SortStableFunc(open, func(a, b ownMove) int {
			switch {
			case a.score > b.score:
				return -1
			case a.score < b.score:
				return 1
			}
			return 0
		})
		var interests []poskey.Key
		for _, o := range open {
			interests = append(interests, o.pending...)
		}
		return resolution{
			verdict:   board.UndecidedWith(open[0].score),
			move:      open[0].col,
			interests: lo.Uniq(interests),
		}
	}

	if draws := lo.Filter(closed, func(o ownMove, _ int) bool { return o.verdict.Kind == board.Draw }); len(draws) > 0 {
		best := lo.MinBy(draws, func(a, b ownMove) bool { return a.verdict.Distance < b.verdict.Distance })
		return resolution{verdict: best.verdict, move: best.col}
	}
	if len(closed) > 0 {
		best := lo.MaxBy(closed, func(a, b ownMove) bool { return a.verdict.Distance > b.verdict.Distance })
		return resolution{verdict: best.verdict, move: best.col}
	}
	return resolution{verdict: board.DrawIn(0), move: board.NoColumn}
}

// replies evaluates the opponent's answers to mover playing col, which is
// already on the board. The result is from the mover's point of view.
func (w *worker) replies(b *board.Board, mover board.Player, col board.Column) ownMove {
	opp := mover.Opponent()
	var (
		wins, draws, losses []board.Verdict
		pending             []poskey.Key
	)
	for _, r := range b.PossibleMoves() {
		v := mustMove(b, opp, r)
		switch v.Kind {
		case board.Won:
			mustWithdraw(b, r)
			return ownMove{col: col, verdict: v.Flip()}
		case board.Draw:
			draws = append(draws, v)
		default:
			k := poskey.Encode(b, mover)
			if e, ok := w.store.Lookup(k); ok && e.State == store.Decided {
				theirs := e.Verdict.Flip()
				switch theirs.Kind {
				case board.Won:
					wins = append(wins, theirs)
				case board.Draw:
					draws = append(draws, theirs)
				default:
					losses = append(losses, theirs)
				}
			} else {
				pending = append(pending, k)
			}
		}
		mustWithdraw(b, r)
	}

	// A pending reply is at best a win in two for the opponent, so a
	// shorter one settles it.
	if len(wins) > 0 {
		best := lo.MinBy(wins, func(a, b board.Verdict) bool { return a.Distance < b.Distance })
		if len(pending) == 0 || best.Distance <= 2 {
			return ownMove{col: col, verdict: best.Flip()}
		}
	}
	if len(pending) > 0 {
		bound := noBound
		if len(wins) == 0 && len(draws) == 0 {
			longest := 1
			for _, l := range losses {
				longest = max(longest, l.Distance)
			}
			bound = longest + 1
		}
		return ownMove{col: col, pending: pending, bound: bound}
	}
	if len(draws) > 0 {
		best := lo.MinBy(draws, func(a, b board.Verdict) bool { return a.Distance < b.Distance })
		return ownMove{col: col, verdict: best.Flip()}
	}
	best := lo.MaxBy(losses, func(a, b board.Verdict) bool { return a.Distance > b.Distance })
	return ownMove{col: col, verdict: best.Flip()}
}

func mustMove(b *board.Board, p board.Player, c board.Column) board.Verdict {
	v, err := b.MakeMove(p, c)
	if err != nil {
		panic(fmt.Sprintf("legal move %d rejected for %s: %v", c, p, err))
	}
	return v
}

func mustWithdraw(b *board.Board, c board.Column) {
	if err := b.WithdrawMove(c); err != nil {
		panic(fmt.Sprintf("withdraw of %d rejected: %v", c, err))
	}
}

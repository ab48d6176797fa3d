// Package minimax is the bounded-depth exhaustive search that workers run
// before they turn to the shared store.
package minimax

import (
	"fmt"
	"math"

	"github.com/rs/zerolog/log"

	"github.com/domino14/dropfour/board"
)

// Evaluator scores a move that the search could not decide.
type Evaluator interface {
	EvaluateMove(b *board.Board, p board.Player, col board.Column) (float32, error)
}

type option struct {
	col     board.Column
	verdict board.Verdict
}

// FindBestMove searches depth plies beyond the moves of p. Undecided moves
// are ranked by ev when useHeuristic is set, otherwise by the heuristic of
// the verdict found for them. ok is false if p has no legal move. The board
// is restored before returning.
func FindBestMove(b *board.Board, p board.Player, depth int, useHeuristic bool,
	ev Evaluator) (col board.Column, v board.Verdict, ok bool) {

	scratch := b.Copy()
	return search(scratch, p, depth, useHeuristic, ev)
}

func search(b *board.Board, p board.Player, depth int, useHeuristic bool,
	ev Evaluator) (board.Column, board.Verdict, bool) {

	var draws, losses, undecided []option
	for _, c := range b.PossibleMoves() {
		v := mustMove(b, p, c)
		mustWithdraw(b, c)
		switch v.Kind {
		case board.Won:
			return c, v, true
		case board.Draw:
			draws = append(draws, option{c, v})
		case board.Lost:
			losses = append(losses, option{c, v})
		default:
			undecided = append(undecided, option{c, v})
		}
	}

	open := undecided
	if depth > 0 {
		open = nil
		for _, u := range undecided {
			mustMove(b, p, u.col)
			_, reply, ok := search(b, p.Opponent(), depth-1, false, ev)
			mustWithdraw(b, u.col)
			if !ok {
				panic(fmt.Sprintf("no reply after undecided move %d", u.col))
			}
			mine := reply.Flip()
			switch mine.Kind {
			case board.Won:
				return u.col, mine, true
			case board.Draw:
				draws = append(draws, option{u.col, mine})
			case board.Lost:
				losses = append(losses, option{u.col, mine})
			default:
				open = append(open, option{u.col, mine})
			}
		}
	}

	best := option{col: board.NoColumn}
	bestScore := float32(math.Inf(-1))
	for _, o := range open {
		score := o.verdict.Heuristic
		if useHeuristic {
			s, err := ev.EvaluateMove(b, p, o.col)
			if err != nil {
				log.Err(err).Int("column", int(o.col)).Msg("cannot-evaluate-move")
				continue
			}
			score = s
		}
		if score > bestScore {
			best = option{o.col, board.UndecidedWith(score)}
			bestScore = score
		}
	}

	if best.col != board.NoColumn {
		if len(draws) > 0 && bestScore < 0.5 {
			d := nearest(draws)
			return d.col, d.verdict, true
		}
		return best.col, best.verdict, true
	}
	if len(draws) > 0 {
		d := nearest(draws)
		return d.col, d.verdict, true
	}
	if len(losses) > 0 {
		l := latest(losses)
		return l.col, l.verdict, true
	}
	return board.NoColumn, board.Verdict{}, false
}

// nearest picks the draw reached soonest, leftmost on ties.
func nearest(opts []option) option {
	best := opts[0]
	for _, o := range opts[1:] {
		if o.verdict.Distance < best.verdict.Distance {
			best = o
		}
	}
	return best
}

// latest picks the loss that takes longest to arrive, leftmost on ties.
func latest(opts []option) option {
	best := opts[0]
	for _, o := range opts[1:] {
		if o.verdict.Distance > best.verdict.Distance {
			best = o
		}
	}
	return best
}

func mustMove(b *board.Board, p board.Player, c board.Column) board.Verdict {
	v, err := b.MakeMove(p, c)
	if err != nil {
		panic(fmt.Sprintf("legal move %d rejected: %v", c, err))
	}
	return v
}

func mustWithdraw(b *board.Board, c board.Column) {
	if err := b.WithdrawMove(c); err != nil {
		panic(fmt.Sprintf("withdraw of %d rejected: %v", c, err))
	}
}

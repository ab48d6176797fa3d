package heuristic

import (
	"fmt"

	"github.com/domino14/dropfour/board"
)

// tabuDiffScore compares the tabus on the board before and after p drops
// into col. The same drop by the opponent is counted against the move,
// weighed by TabuDefense.
func (e *Evaluator) tabuDiffScore(b *board.Board, p board.Player, col board.Column) float32 {
	ground := e.tabuScore(b, p)

	mustMove(b, p, col)
	offense := e.tabuScore(b, p) - ground
	mustWithdraw(b, col)

	mustMove(b, p.Opponent(), col)
	defense := e.tabuScore(b, p) - ground
	mustWithdraw(b, col)

	return offense - defense*e.coeffs.TabuDefense
}

// tabuScore fills every column with alternating stones, once starting
// with p and once with the opponent. A column where the second player to
// drop wins is a tabu for the first; the nearer the win, the heavier it
// counts.
func (e *Evaluator) tabuScore(b *board.Board, p board.Player) float32 {
	var total float32
	for c := range board.Width {
		col := board.Column(c)
		var s float32
		if d := secondPlayerWinsAt(b, p, col); d > 0 {
			s += e.coeffs.MyTabu / float32(d)
		}
		if d := secondPlayerWinsAt(b, p.Opponent(), col); d > 0 {
			s += e.coeffs.TheirTabu / float32(d)
		}
		total += s
	}
	return total
}

// secondPlayerWinsAt drops alternating stones into col, first for p. It
// returns the number of stones dropped before the winning one if the first
// win belongs to p's opponent, and 0 otherwise. The board is restored.
func secondPlayerWinsAt(b *board.Board, p board.Player, col board.Column) int {
	cp := p
	dropped, at := 0, 0
	for {
		v, err := b.MakeMove(cp, col)
		if err != nil {
			break
		}
		cp = cp.Opponent()
		dropped++
		if v.Kind == board.Won {
			if dropped%2 == 0 {
				at = dropped - 1
			}
			break
		}
	}
	for range dropped {
		mustWithdraw(b, col)
	}
	return at
}

func mustMove(b *board.Board, p board.Player, c board.Column) {
	if _, err := b.MakeMove(p, c); err != nil {
		panic(fmt.Sprintf("move %d rejected on a scratch board: %v", c, err))
	}
}

func mustWithdraw(b *board.Board, c board.Column) {
	if err := b.WithdrawMove(c); err != nil {
		panic(fmt.Sprintf("withdraw of %d rejected on a scratch board: %v", c, err))
	}
}

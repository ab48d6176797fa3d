// Package heuristic scores a candidate move by its positional potential
// and by the forced replies ("tabus") it creates or removes.
package heuristic

import (
	"fmt"

	"github.com/domino14/dropfour/board"
)

// Coefficients weigh the parts of a move's score.
type Coefficients struct {
	Mine        float32 `yaml:"mine"`
	Theirs      float32 `yaml:"theirs"`
	Neutral     float32 `yaml:"neutral"`
	MyTabu      float32 `yaml:"my_tabu"`
	TheirTabu   float32 `yaml:"their_tabu"`
	TabuDefense float32 `yaml:"tabu_defense"`
}

func DefaultCoefficients() Coefficients {
	return Coefficients{
		Mine:        1.0,
		Theirs:      0.8,
		Neutral:     0.5,
		MyTabu:      -10.0,
		TheirTabu:   10.0,
		TabuDefense: 0.25,
	}
}

type Evaluator struct {
	coeffs Coefficients
}

func NewEvaluator(c Coefficients) *Evaluator {
	return &Evaluator{coeffs: c}
}

func (e *Evaluator) Coefficients() Coefficients {
	return e.coeffs
}

// EvaluateMove scores a drop by p into col without playing it. The board is
// left untouched.
func (e *Evaluator) EvaluateMove(b *board.Board, p board.Player, col board.Column) (float32, error) {
	if !col.Valid() {
		return 0, fmt.Errorf("%w: %d", board.ErrBadColumn, col)
	}
	row := b.Height(col)
	if row >= board.Height {
		return 0, board.ErrColumnFull
	}
	scratch := b.Copy()
	g := newGrid(scratch, p)
	g.markDead(scratch)
	return e.positionalScore(&g, int(col), row) + e.tabuDiffScore(scratch, p, col), nil
}

package heuristic

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/domino14/dropfour/board"
)

const tolerance = 1e-4

func TestEmptyBoard(t *testing.T) {
	e := NewEvaluator(DefaultCoefficients())
	b := board.New()

	centre, err := e.EvaluateMove(b, board.White, 3)
	assert.NoError(t, err)
	assert.InDelta(t, 13.5, centre, tolerance)

	two, err := e.EvaluateMove(b, board.White, 2)
	assert.NoError(t, err)
	assert.InDelta(t, 9.9, two, tolerance)

	for c := range board.Width {
		s, err := e.EvaluateMove(b, board.White, board.Column(c))
		assert.NoError(t, err)
		assert.LessOrEqual(t, s, centre)
	}
}

func TestHorizontalBlocker(t *testing.T) {
	e := NewEvaluator(DefaultCoefficients())
	b := board.New()
	b.MakeMove(board.Black, 1)
	c := DefaultCoefficients()
	expected := 10*c.Mine*c.Neutral + 10*c.Theirs*c.Neutral + 1*c.Theirs

	s, err := e.EvaluateMove(b, board.White, 4)
	assert.NoError(t, err)
	assert.InDelta(t, expected, s, tolerance)
}

func TestVerticalOpponentStones(t *testing.T) {
	e := NewEvaluator(DefaultCoefficients())
	b := board.New()
	b.MakeMove(board.Black, 0)
	b.MakeMove(board.White, 0)
	b.MakeMove(board.White, 0)
	c := DefaultCoefficients()
	// the two white stones above the black one count for the opponent
	expected := 6*c.Mine*c.Neutral + 8*c.Theirs*c.Neutral + 2*c.Theirs

	s, err := e.EvaluateMove(b, board.Black, 0)
	assert.NoError(t, err)
	assert.InDelta(t, expected, s, tolerance)
}

func TestTabus(t *testing.T) {
	e := NewEvaluator(DefaultCoefficients())
	// black threatens (3,1); grey stones keep row 0 from connecting
	b, err := board.Parse("------\nnx\nnx\nnx\n\n\n\n\n------")
	assert.NoError(t, err)
	assert.Equal(t, float32(-10), e.tabuScore(b, board.White))
	assert.Equal(t, float32(10), e.tabuScore(b, board.Black))

	// either stone in column 3 removes the threat
	assert.InDelta(t, 7.5, e.tabuDiffScore(b.Copy(), board.White, 3), tolerance)
	assert.Equal(t, float32(-10), e.tabuScore(b, board.White))
}

func TestBoardUntouched(t *testing.T) {
	e := NewEvaluator(DefaultCoefficients())
	for range 20 {
		b, p := board.RandomPosition(18)
		before := *b
		for _, c := range b.PossibleMoves() {
			_, err := e.EvaluateMove(b, p, c)
			assert.NoError(t, err)
		}
		assert.Equal(t, before, *b)
	}
}

func TestFullColumn(t *testing.T) {
	e := NewEvaluator(DefaultCoefficients())
	b := board.New()
	for i := range board.Height {
		b.MakeMove(board.Player(1+i%2), 5)
	}
	_, err := e.EvaluateMove(b, board.White, 5)
	assert.ErrorIs(t, err, board.ErrColumnFull)
	_, err = e.EvaluateMove(b, board.White, 9)
	assert.ErrorIs(t, err, board.ErrBadColumn)
}

func TestRejectedScratchWithdrawPanics(t *testing.T) {
	assert.Panics(t, func() { mustWithdraw(board.New(), 0) })
}

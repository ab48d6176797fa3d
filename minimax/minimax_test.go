package minimax

import (
	"os"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/domino14/dropfour/board"
	"github.com/domino14/dropfour/heuristic"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

var ev = heuristic.NewEvaluator(heuristic.DefaultCoefficients())

func TestRecognizeWinner(t *testing.T) {
	is := is.New(t)
	b := board.New()
	for range 3 {
		v, err := b.MakeMove(board.White, 5)
		is.NoErr(err)
		is.Equal(v, board.UndecidedWith(0.5))
	}
	col, v, ok := FindBestMove(b, board.White, 0, false, nil)
	is.True(ok)
	is.Equal(v, board.WonIn(0))
	is.Equal(col, board.Column(5))
}

func TestDangerAwareness(t *testing.T) {
	is := is.New(t)
	b := board.New()
	for range 3 {
		b.MakeMove(board.Black, 5)
	}
	col, v, ok := FindBestMove(b, board.White, 1, false, nil)
	is.True(ok)
	is.Equal(v, board.UndecidedWith(0.5))
	is.Equal(col, board.Column(5))
}

func TestLostWhenEverythingLoses(t *testing.T) {
	is := is.New(t)
	// black threatens in columns 2 and 5 at row 0; white can block one
	b, err := board.Parse("------\n\n\n\nx\nx\n\n\n------")
	is.NoErr(err)
	b.MakeMove(board.Black, 2)
	col, v, ok := FindBestMove(b, board.White, 1, false, nil)
	is.True(ok)
	is.Equal(v, board.LostIn(1))
	is.Equal(col, board.Column(0))
}

func TestFirstMove(t *testing.T) {
	is := is.New(t)
	col, v, ok := FindBestMove(board.New(), board.White, 2, true, ev)
	is.True(ok)
	is.Equal(col, board.Column(3))
	is.Equal(v.Kind, board.Undecided)
	assert.InDelta(t, 13.5, v.Heuristic, 1e-4)
}

func TestLastStoneDraws(t *testing.T) {
	is := is.New(t)
	b, err := board.Parse(`
------
xxooxx
ooxxoo
xxooxx
ooxxoo
xxooxx
ooxxoo
ooxxo
------`)
	is.NoErr(err)
	col, v, ok := FindBestMove(b, board.Black, 3, false, nil)
	is.True(ok)
	is.Equal(col, board.Column(6))
	is.Equal(v, board.DrawIn(0))

	b.MakeMove(board.Black, 6)
	_, _, ok = FindBestMove(b, board.White, 3, false, nil)
	is.True(!ok)
}

type favourite board.Column

func (f favourite) EvaluateMove(b *board.Board, p board.Player, col board.Column) (float32, error) {
	if col == board.Column(f) {
		return 3, nil
	}
	return 1, nil
}

func TestHeuristicRanking(t *testing.T) {
	is := is.New(t)
	col, v, ok := FindBestMove(board.New(), board.Black, 0, true, favourite(6))
	is.True(ok)
	is.Equal(col, board.Column(6))
	is.Equal(v, board.UndecidedWith(3))
}

func TestBoardRestored(t *testing.T) {
	is := is.New(t)
	b, p := board.RandomPosition(20)
	before := *b
	FindBestMove(b, p, 3, true, ev)
	is.Equal(*b, before)
}

func TestRejectedWithdrawPanics(t *testing.T) {
	assert.Panics(t, func() { mustWithdraw(board.New(), 2) })
	assert.Panics(t, func() { mustMove(board.New(), board.White, 7) })
}

package board

import (
	"errors"
	"testing"

	"github.com/matryer/is"
)

func TestStackedDrops(t *testing.T) {
	is := is.New(t)
	b := New()
	for i := range 6 {
		v, err := b.MakeMove(White, 3)
		is.NoErr(err)
		if i < 3 {
			is.Equal(v.Kind, Undecided)
			is.Equal(v.Heuristic, float32(0.5))
		} else {
			is.Equal(v, WonIn(0))
		}
	}
	_, err := b.MakeMove(White, 3)
	is.True(errors.Is(err, ErrColumnFull))
	is.Equal(len(b.PossibleMoves()), Width-1)
	is.Equal(b.PossibleMoves()[3], Column(4))
}

func TestHorizontalWin(t *testing.T) {
	is := is.New(t)
	b := New()
	for _, c := range []Column{3, 1, 4} {
		v, err := b.MakeMove(White, c)
		is.NoErr(err)
		is.Equal(v.Kind, Undecided)
	}
	v, err := b.MakeMove(White, 2)
	is.NoErr(err)
	is.Equal(v, WonIn(0))
	is.True(b.Connected(White))
	is.True(!b.Connected(Black))
}

func TestDiagonalWins(t *testing.T) {
	is := is.New(t)

	// rising diagonal from (0,0) to (3,3)
	b, err := Parse("------\no\nxo\nxxo\nxxx\n\n\n\n------")
	is.NoErr(err)
	v, err := b.MakeMove(White, 3)
	is.NoErr(err)
	is.Equal(v, WonIn(0))

	// falling diagonal from (0,3) to (3,0), completed in the middle
	b, err = Parse("------\nxxxo\nxxo\nx\no\n\n\n\n------")
	is.NoErr(err)
	v, err = b.MakeMove(Black, 2)
	is.NoErr(err)
	is.Equal(v.Kind, Undecided)
	is.NoErr(b.WithdrawMove(2))
	v, err = b.MakeMove(White, 2)
	is.NoErr(err)
	is.Equal(v, WonIn(0))
}

func TestGreyBlocks(t *testing.T) {
	is := is.New(t)
	b, err := Parse("------\no\no\nn\no\n\n\n\n------")
	is.NoErr(err)
	v, err := b.MakeMove(White, 4)
	is.NoErr(err)
	is.Equal(v.Kind, Undecided)
	is.Equal(b.Cell(2, 0), Grey)
}

func TestWithdrawRestores(t *testing.T) {
	is := is.New(t)
	b, _ := RandomPosition(15)
	before := *b
	for _, c := range b.PossibleMoves() {
		_, err := b.MakeMove(Black, c)
		is.NoErr(err)
		is.NoErr(b.WithdrawMove(c))
		is.Equal(*b, before)
	}
	is.True(errors.Is(New().WithdrawMove(0), ErrColumnEmpty))
}

func TestDrawOnLastStone(t *testing.T) {
	is := is.New(t)
	// columns alternate in pairs so nothing ever lines up
	b, err := Parse(`
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
	is.True(!b.Over())
	v, err := b.MakeMove(Black, 6)
	is.NoErr(err)
	is.Equal(v, DrawIn(0))
	is.True(b.Full())
	is.Equal(len(b.PossibleMoves()), 0)
}

func TestLayoutRoundTrip(t *testing.T) {
	is := is.New(t)
	for range 50 {
		b, _ := RandomPosition(20)
		c, err := Parse(b.Display())
		is.NoErr(err)
		is.Equal(*c, *b)
	}
}

func TestParseErrors(t *testing.T) {
	is := is.New(t)
	_, err := Parse("------\nxxxxxxx\n\n\n\n\n\n\n------")
	is.True(errors.Is(err, ErrBadLayout))
	_, err = Parse("------\nxq\n\n\n\n\n\n\n------")
	is.True(errors.Is(err, ErrBadLayout))
	_, err = Parse("------\n\n\n------")
	is.True(errors.Is(err, ErrBadLayout))
}

func TestFlip(t *testing.T) {
	is := is.New(t)
	is.Equal(WonIn(0).Flip(), LostIn(1))
	is.Equal(LostIn(3).Flip(), WonIn(4))
	is.Equal(DrawIn(2).Flip(), DrawIn(3))
	is.Equal(UndecidedWith(0.25).Flip(), UndecidedWith(0.75))
	is.Equal(WonIn(2).String(), "Won(2)")
	is.Equal(UndecidedWith(0.5).String(), "Undecided(0.50)")
}

func TestRandomPosition(t *testing.T) {
	is := is.New(t)
	for range 20 {
		b, p := RandomPosition(12)
		is.True(!b.Over())
		if b.Stones()%2 == 0 {
			is.Equal(p, White)
		} else {
			is.Equal(p, Black)
		}
	}
}

package board

import (
	"errors"
	"fmt"
)

const (
	Width  = 7
	Height = 6
	Cells  = Width * Height
)

var (
	ErrColumnFull    = errors.New("column is full")
	ErrColumnEmpty   = errors.New("column is empty")
	ErrBadColumn     = errors.New("no such column")
	ErrBadLayout     = errors.New("malformed layout")
	ErrUnknownPlayer = errors.New("unknown player")
)

// Board is a 7x6 connect-four board. Columns are stacks filled from row 0
// upwards. The zero value is an empty board, and a Board may be copied by
// value.
type Board struct {
	cells   [Width][Height]Player
	heights [Width]int8
	stones  int
}

func New() *Board {
	return &Board{}
}

func (b *Board) Copy() *Board {
	c := *b
	return &c
}

// Cell returns the stone at the given column and row, or NoPlayer.
func (b *Board) Cell(col Column, row int) Player {
	if !col.Valid() || row < 0 || row >= Height {
		return NoPlayer
	}
	return b.cells[col][row]
}

func (b *Board) Height(col Column) int {
	if !col.Valid() {
		return 0
	}
	return int(b.heights[col])
}

func (b *Board) Stones() int {
	return b.stones
}

func (b *Board) Full() bool {
	return b.stones == Cells
}

// PossibleMoves lists the columns that still take a stone, left to right.
func (b *Board) PossibleMoves() []Column {
	moves := make([]Column, 0, Width)
	for c := range Width {
		if b.heights[c] < Height {
			moves = append(moves, Column(c))
		}
	}
	return moves
}

// MakeMove drops a stone for p into col. The verdict is from p's point of
// view: Won(0) if the stone completes four in a row, Draw(0) if it fills
// the board, Undecided otherwise.
func (b *Board) MakeMove(p Player, col Column) (Verdict, error) {
	if !col.Valid() {
		return Verdict{}, fmt.Errorf("%w: %d", ErrBadColumn, col)
	}
	row := int(b.heights[col])
	if row == Height {
		return Verdict{}, ErrColumnFull
	}
	b.cells[col][row] = p
	b.heights[col]++
	b.stones++

	if b.connects(p, int(col), row) {
		return WonIn(0), nil
	}
	if b.Full() {
		return DrawIn(0), nil
	}
	return UndecidedWith(0.5), nil
}

// WithdrawMove removes the top stone of col, whoever it belongs to.
func (b *Board) WithdrawMove(col Column) error {
	if !col.Valid() {
		return fmt.Errorf("%w: %d", ErrBadColumn, col)
	}
	if b.heights[col] == 0 {
		return ErrColumnEmpty
	}
	b.heights[col]--
	b.cells[col][b.heights[col]] = NoPlayer
	b.stones--
	return nil
}

var directions = [4][2]int{{1, 0}, {0, 1}, {1, 1}, {1, -1}}

// connects reports whether the stone of p at (col, row) is part of four or
// more in a row.
func (b *Board) connects(p Player, col, row int) bool {
	for _, d := range directions {
		n := 1 + b.run(p, col, row, d[0], d[1]) + b.run(p, col, row, -d[0], -d[1])
		if n >= 4 {
			return true
		}
	}
	return false
}

func (b *Board) run(p Player, col, row, dc, dr int) int {
	n := 0
	for {
		col += dc
		row += dr
		if col < 0 || col >= Width || row < 0 || row >= int(b.heights[col]) {
			return n
		}
		if b.cells[col][row] != p {
			return n
		}
		n++
	}
}

// Connected reports whether p already has four in a row anywhere.
func (b *Board) Connected(p Player) bool {
	for c := range Width {
		for r := range int(b.heights[c]) {
			if b.cells[c][r] == p && b.connects(p, c, r) {
				return true
			}
		}
	}
	return false
}

// Over reports whether no further move can be played, either because the
// board is full or because one side has already connected four.
func (b *Board) Over() bool {
	return b.Full() || b.Connected(Black) || b.Connected(White)
}

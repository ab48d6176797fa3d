// Package poskey turns a board and the player to move into a canonical
// position key, and back.
//
// Every cell takes two bits, digit 0 for an empty cell, 1 for a stone of
// the player to move, 2 for an opponent stone and 3 for a grey stone. Cell
// (col, row) is digit col*6+row. Since the digits are relative to the
// mover, a position and its colour-swapped twin share one key.
package poskey

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"

	"github.com/cespare/xxhash"

	"github.com/domino14/dropfour/board"
)

const (
	digitEmpty uint64 = iota
	digitMover
	digitOpponent
	digitGrey
)

// 42 cells of two bits each do not fit into a uint64.
const hiBits = 2*board.Cells - 64

var ErrBadKey = errors.New("bad position key")

// Key is an 84-bit position key.
type Key struct {
	Hi uint64
	Lo uint64
}

func (k Key) digit(i int) uint64 {
	if i < 32 {
		return (k.Lo >> (2 * i)) & 3
	}
	return (k.Hi >> (2 * (i - 32))) & 3
}

func (k *Key) setDigit(i int, d uint64) {
	if i < 32 {
		k.Lo |= d << (2 * i)
		return
	}
	k.Hi |= d << (2 * (i - 32))
}

// Encode computes the key of b with mover to act.
func Encode(b *board.Board, mover board.Player) Key {
	var k Key
	for c := range board.Width {
		col := board.Column(c)
		for r := range b.Height(col) {
			var d uint64
			switch b.Cell(col, r) {
			case mover:
				d = digitMover
			case board.Grey:
				d = digitGrey
			default:
				d = digitOpponent
			}
			k.setDigit(c*board.Height+r, d)
		}
	}
	return k
}

// Decode rebuilds the board encoded by k, with mover as the player to act.
// Each column ends at its first empty digit.
func Decode(k Key, mover board.Player) (*board.Board, error) {
	if mover != board.Black && mover != board.White {
		return nil, fmt.Errorf("%w: mover must be black or white, got %s", ErrBadKey, mover)
	}
	if k.Hi>>hiBits != 0 {
		return nil, fmt.Errorf("%w: %s has bits beyond the board", ErrBadKey, k)
	}
	b := board.New()
	for c := range board.Width {
		for r := range board.Height {
			var p board.Player
			switch k.digit(c*board.Height + r) {
			case digitEmpty:
				p = board.NoPlayer
			case digitMover:
				p = mover
			case digitOpponent:
				p = mover.Opponent()
			case digitGrey:
				p = board.Grey
			}
			if p == board.NoPlayer {
				break
			}
			if _, err := b.MakeMove(p, board.Column(c)); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrBadKey, err)
			}
		}
	}
	return b, nil
}

func (k Key) String() string {
	return fmt.Sprintf("%05x%016x", k.Hi, k.Lo)
}

// ParseKey reads a key in the form written by String.
func ParseKey(s string) (Key, error) {
	if len(s) != 21 {
		return Key{}, fmt.Errorf("%w: %q should have 21 hex digits", ErrBadKey, s)
	}
	hi, err := strconv.ParseUint(s[:5], 16, 64)
	if err != nil {
		return Key{}, fmt.Errorf("%w: %w", ErrBadKey, err)
	}
	lo, err := strconv.ParseUint(s[5:], 16, 64)
	if err != nil {
		return Key{}, fmt.Errorf("%w: %w", ErrBadKey, err)
	}
	return Key{Hi: hi, Lo: lo}, nil
}

// Fingerprint is a 64-bit digest of the key, short enough for log lines.
func (k Key) Fingerprint() uint64 {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], k.Lo)
	binary.LittleEndian.PutUint64(buf[8:], k.Hi)
	return xxhash.Sum64(buf[:])
}

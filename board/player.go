package board

import "fmt"

// Player is the owner of a stone. NoPlayer marks an empty cell.
type Player uint8

const (
	NoPlayer Player = iota
	Black
	White
	// Grey stones belong to nobody. They block connections for both sides.
	Grey
)

// Opponent returns the other side. Grey and NoPlayer have no opponent and
// are returned unchanged.
func (p Player) Opponent() Player {
	switch p {
	case Black:
		return White
	case White:
		return Black
	}
	return p
}

// Rune returns the layout character for the player.
func (p Player) Rune() rune {
	switch p {
	case Black:
		return 'x'
	case White:
		return 'o'
	case Grey:
		return 'n'
	}
	return '.'
}

func (p Player) String() string {
	switch p {
	case Black:
		return "Black"
	case White:
		return "White"
	case Grey:
		return "Grey"
	}
	return "None"
}

// PlayerFromString parses a player name or its layout character.
func PlayerFromString(s string) (Player, error) {
	switch s {
	case "x", "X", "black", "Black", "BLACK":
		return Black, nil
	case "o", "O", "white", "White", "WHITE":
		return White, nil
	case "n", "N", "grey", "Grey", "gray", "Gray":
		return Grey, nil
	}
	return NoPlayer, fmt.Errorf("%w: %q", ErrUnknownPlayer, s)
}

// Column is the index of a column, counted from the left starting at 0.
type Column int8

const NoColumn Column = -1

func (c Column) Valid() bool {
	return c >= 0 && int(c) < Width
}

func (c Column) String() string {
	if !c.Valid() {
		return "-"
	}
	return fmt.Sprintf("%d", int(c))
}

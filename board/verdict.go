package board

import "fmt"

// Kind is the class of a Verdict.
type Kind uint8

const (
	Undecided Kind = iota
	Won
	Lost
	Draw
)

func (k Kind) String() string {
	switch k {
	case Won:
		return "Won"
	case Lost:
		return "Lost"
	case Draw:
		return "Draw"
	}
	return "Undecided"
}

// A Verdict is the value of a position from the point of view of the player
// to move. Decided verdicts carry the number of plies to the forced outcome;
// undecided ones carry a heuristic score.
type Verdict struct {
	Kind      Kind
	Distance  int
	Heuristic float32
}

func WonIn(n int) Verdict  { return Verdict{Kind: Won, Distance: n} }
func LostIn(n int) Verdict { return Verdict{Kind: Lost, Distance: n} }
func DrawIn(n int) Verdict { return Verdict{Kind: Draw, Distance: n} }

func UndecidedWith(h float32) Verdict {
	return Verdict{Kind: Undecided, Heuristic: h}
}

func (v Verdict) Decided() bool {
	return v.Kind != Undecided
}

// Flip moves a verdict one ply up the tree, to the player who made the move
// leading here.
func (v Verdict) Flip() Verdict {
	switch v.Kind {
	case Won:
		return LostIn(v.Distance + 1)
	case Lost:
		return WonIn(v.Distance + 1)
	case Draw:
		return DrawIn(v.Distance + 1)
	}
	return UndecidedWith(1 - v.Heuristic)
}

func (v Verdict) String() string {
	if v.Kind == Undecided {
		return fmt.Sprintf("Undecided(%.2f)", v.Heuristic)
	}
	return fmt.Sprintf("%s(%d)", v.Kind, v.Distance)
}

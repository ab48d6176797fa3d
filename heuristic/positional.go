package heuristic

import "github.com/domino14/dropfour/board"

type mark uint8

const (
	markEmpty mark = iota
	markMine
	markTheirs
	// a dead cell will never be filled, the game ends first
	markDead
)

type grid [board.Width][board.Height]mark

func newGrid(b *board.Board, p board.Player) grid {
	var g grid
	for c := range board.Width {
		col := board.Column(c)
		for r := range b.Height(col) {
			switch b.Cell(col, r) {
			case p:
				g[c][r] = markMine
			case board.Grey:
				g[c][r] = markDead
			default:
				g[c][r] = markTheirs
			}
		}
	}
	return g
}

// markDead fills each column with stones of alternating colour. The turn
// is carried over from one column to the next. Once a cell would win for
// both sides, every cell above it is dead.
func (g *grid) markDead(b *board.Board) {
	cp := board.White
	for c := range board.Width {
		col := board.Column(c)
		dropped := 0
		for {
			v, err := b.MakeMove(cp, col)
			if err != nil {
				break
			}
			dropped++
			if v.Kind == board.Won {
				mustWithdraw(b, col)
				cp = cp.Opponent()
				v, _ = b.MakeMove(cp, col)
				if v.Kind == board.Won {
					for r := b.Height(col); r < board.Height; r++ {
						g[c][r] = markDead
					}
					break
				}
			}
			cp = cp.Opponent()
		}
		for range dropped {
			cp = cp.Opponent()
			mustWithdraw(b, col)
		}
	}
}

// line is what one side sees along a ray away from the evaluated cell:
// free cells before the first blocking stone, and the own stones and empty
// cells among them.
type line struct {
	free  int
	own   int
	empty int
}

func (g *grid) count(cols, rows []int) (mine, theirs line) {
	firstTheirs, firstMine := -1, -1
	n := 0
	for i := 0; i < len(cols) && i < len(rows); i++ {
		m := g[cols[i]][rows[i]]
		if m == markDead {
			break
		}
		switch m {
		case markMine:
			if firstMine < 0 {
				firstMine = n
			}
			if firstTheirs < 0 {
				mine.own++
			}
		case markTheirs:
			if firstTheirs < 0 {
				firstTheirs = n
			}
			if firstMine < 0 {
				theirs.own++
			}
		case markEmpty:
			if firstMine < 0 {
				theirs.empty++
			}
			if firstTheirs < 0 {
				mine.empty++
			}
		}
		n++
	}
	if firstMine < 0 {
		firstMine = n
	}
	if firstTheirs < 0 {
		firstTheirs = n
	}
	mine.free = firstTheirs
	theirs.free = firstMine
	return mine, theirs
}

func (e *Evaluator) combine(leftMine, leftTheirs, rightMine, rightTheirs line) float32 {
	var s float32
	if leftMine.free+rightMine.free >= 3 {
		s += e.coeffs.Mine * float32(leftMine.own+rightMine.own)
		s += e.coeffs.Mine * e.coeffs.Neutral * float32(leftMine.empty+rightMine.empty)
	}
	if leftTheirs.free+rightTheirs.free >= 3 {
		s += e.coeffs.Theirs * float32(leftTheirs.own+rightTheirs.own)
		s += e.coeffs.Theirs * e.coeffs.Neutral * float32(leftTheirs.empty+rightTheirs.empty)
	}
	return s
}

// positionalScore adds up both sides' potential for four in a row through
// the cell (col, row), in all four directions.
func (e *Evaluator) positionalScore(g *grid, col, row int) float32 {
	left := down(max(col-3, 0), col)
	right := up(min(board.Width, col+1), min(board.Width, col+4))
	below := down(max(row-3, 0), row)
	above := up(min(board.Height, row+1), min(board.Height, row+4))
	same := []int{row, row, row}
	here := []int{col, col, col}

	var total float32
	for _, ray := range [4][4][]int{
		{left, same, right, same},
		{left, below, right, above},
		{left, above, right, below},
		{here, below, here, above},
	} {
		lm, lt := g.count(ray[0], ray[1])
		rm, rt := g.count(ray[2], ray[3])
		total += e.combine(lm, lt, rm, rt)
	}
	return total
}

// up lists lo..hi-1, down lists hi-1..lo.
func up(lo, hi int) []int {
	s := make([]int, 0, 3)
	for i := lo; i < hi; i++ {
		s = append(s, i)
	}
	return s
}

func down(lo, hi int) []int {
	s := make([]int, 0, 3)
	for i := hi - 1; i >= lo; i-- {
		s = append(s, i)
	}
	return s
}

package board

import (
	"fmt"
	"strings"
)

const layoutRule = "------"

// Display renders the board in layout form: a rule line, one line per
// column listing its stones bottom to top, and a closing rule line.
func (b *Board) Display() string {
	var sb strings.Builder
	sb.WriteString(layoutRule)
	sb.WriteByte('\n')
	for c := range Width {
		for r := range int(b.heights[c]) {
			sb.WriteRune(b.cells[c][r].Rune())
		}
		sb.WriteByte('\n')
	}
	sb.WriteString(layoutRule)
	return sb.String()
}

// Parse reads a board in the form written by Display. Blank lines before
// and after the layout are ignored.
func Parse(layout string) (*Board, error) {
	lines := strings.Split(strings.ReplaceAll(layout, "\r\n", "\n"), "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) != Width+2 {
		return nil, fmt.Errorf("%w: expected %d lines, got %d", ErrBadLayout, Width+2, len(lines))
	}
	if strings.TrimSpace(lines[0]) != layoutRule || strings.TrimSpace(lines[Width+1]) != layoutRule {
		return nil, fmt.Errorf("%w: missing %s rule", ErrBadLayout, layoutRule)
	}
	b := New()
	for c, line := range lines[1 : Width+1] {
		for _, ch := range strings.TrimSpace(line) {
			p, err := PlayerFromString(string(ch))
			if err != nil {
				return nil, fmt.Errorf("%w: column %d: %w", ErrBadLayout, c, err)
			}
			if _, err := b.MakeMove(p, Column(c)); err != nil {
				return nil, fmt.Errorf("%w: column %d: %w", ErrBadLayout, c, err)
			}
		}
	}
	return b, nil
}

// String draws the board as a grid with the top row first.
func (b *Board) String() string {
	var sb strings.Builder
	sb.WriteString(" ")
	for c := range Width {
		fmt.Fprintf(&sb, " %d", c)
	}
	sb.WriteByte('\n')
	for r := Height - 1; r >= 0; r-- {
		sb.WriteString(" |")
		for c := range Width {
			sb.WriteRune(b.cells[c][r].Rune())
			sb.WriteByte('|')
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

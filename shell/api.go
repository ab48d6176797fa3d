package shell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/domino14/dropfour/board"
	"github.com/domino14/dropfour/config"
	"github.com/domino14/dropfour/minimax"
	"github.com/domino14/dropfour/poskey"
	"github.com/domino14/dropfour/solver"
)

const defaultRandomPlies = 12

func parseColumn(s string) (board.Column, error) {
	c, err := strconv.Atoi(s)
	if err != nil {
		return board.NoColumn, fmt.Errorf("%w: %q", board.ErrBadColumn, s)
	}
	col := board.Column(c)
	if c < 0 || c >= board.Width {
		return board.NoColumn, fmt.Errorf("%w: %d", board.ErrBadColumn, c)
	}
	return col, nil
}

func intOption(cmd *shellcmd, key string, def int) (int, error) {
	v, ok := cmd.options[key]
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("option -%s: %w", key, err)
	}
	return n, nil
}

func (sc *ShellController) position() string {
	var sb strings.Builder
	sb.WriteString(sc.board.String())
	fmt.Fprintf(&sb, "%d stones, %s (%c) to move", sc.board.Stones(), sc.mover, sc.mover.Rune())
	if sc.board.Connected(board.Black) {
		sb.WriteString("; Black has four in a row")
	}
	if sc.board.Connected(board.White) {
		sb.WriteString("; White has four in a row")
	}
	return sb.String()
}

func (sc *ShellController) newBoard(cmd *shellcmd) (*Response, error) {
	sc.setBoard(board.New(), board.White)
	return msg(sc.position()), nil
}

// inferMover picks the side to move from the stone counts. White starts.
func inferMover(b *board.Board) board.Player {
	var blacks, whites int
	for c := range board.Width {
		for r := range b.Height(board.Column(c)) {
			switch b.Cell(board.Column(c), r) {
			case board.Black:
				blacks++
			case board.White:
				whites++
			}
		}
	}
	if whites > blacks {
		return board.Black
	}
	return board.White
}

func (sc *ShellController) load(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: load <file> [-mover x|o]")
	}
	data, err := os.ReadFile(cmd.args[0])
	if err != nil {
		return nil, err
	}
	b, err := board.Parse(string(data))
	if err != nil {
		return nil, err
	}
	mover := inferMover(b)
	if m, ok := cmd.options["mover"]; ok {
		if mover, err = parseMover(m); err != nil {
			return nil, err
		}
	}
	sc.setBoard(b, mover)
	return msg(sc.position()), nil
}

func parseMover(s string) (board.Player, error) {
	p, err := board.PlayerFromString(s)
	if err != nil {
		return board.NoPlayer, err
	}
	if p != board.Black && p != board.White {
		return board.NoPlayer, solver.ErrBadMover
	}
	return p, nil
}

func (sc *ShellController) drop(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: drop <column>")
	}
	if sc.board.Over() {
		return nil, solver.ErrGameOver
	}
	col, err := parseColumn(cmd.args[0])
	if err != nil {
		return nil, err
	}
	v, err := sc.board.MakeMove(sc.mover, col)
	if err != nil {
		return nil, err
	}
	played := sc.mover
	sc.mover = sc.mover.Opponent()
	out := sc.position()
	switch v.Kind {
	case board.Won:
		out += fmt.Sprintf("\n%s wins", played)
	case board.Draw:
		out += "\nthe board is full: draw"
	}
	return msg(out), nil
}

// undrop takes back the top stone of a column. Its owner moves next.
func (sc *ShellController) undrop(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: undrop <column>")
	}
	col, err := parseColumn(cmd.args[0])
	if err != nil {
		return nil, err
	}
	h := sc.board.Height(col)
	if h == 0 {
		return nil, board.ErrColumnEmpty
	}
	owner := sc.board.Cell(col, h-1)
	if err := sc.board.WithdrawMove(col); err != nil {
		return nil, err
	}
	if owner == board.Black || owner == board.White {
		sc.mover = owner
	}
	return msg(sc.position()), nil
}

func (sc *ShellController) show(cmd *shellcmd) (*Response, error) {
	if _, ok := cmd.options["layout"]; ok || lo.Contains(cmd.args, "layout") {
		return msg(sc.board.Display()), nil
	}
	return msg(sc.position()), nil
}

func (sc *ShellController) eval(cmd *shellcmd) (*Response, error) {
	ev := sc.evaluator()
	cols := sc.board.PossibleMoves()
	if len(cmd.args) > 0 {
		col, err := parseColumn(cmd.args[0])
		if err != nil {
			return nil, err
		}
		cols = []board.Column{col}
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-8s%s\n", "column", "score")
	for _, c := range cols {
		s, err := ev.EvaluateMove(sc.board, sc.mover, c)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&sb, "%-8d%.2f\n", c, s)
	}
	return msg(strings.TrimRight(sb.String(), "\n")), nil
}

// best searches to a fixed depth when one is given. Otherwise it uses the
// adaptive depth: one ply deeper after a quick search, one ply shallower
// after a slow one.
func (sc *ShellController) best(cmd *shellcmd) (*Response, error) {
	depth, adaptive := sc.bestDepth, true
	if len(cmd.args) > 0 {
		d, err := strconv.Atoi(cmd.args[0])
		if err != nil {
			return nil, err
		}
		depth, adaptive = d, false
	}
	if sc.board.Over() {
		return nil, solver.ErrGameOver
	}
	start := sc.now()
	col, v, ok := minimax.FindBestMove(sc.board, sc.mover, depth, true, sc.evaluator())
	if !ok {
		return nil, errors.New("no legal move")
	}
	elapsed := sc.now().Sub(start)
	if adaptive {
		sc.bestDepth = nextDepth(depth, elapsed,
			sc.config.GetDuration(config.ConfigBestRespite),
			sc.config.GetDuration(config.ConfigBestTolerable))
		log.Debug().Int("depth", depth).Dur("elapsed", elapsed).
			Int("next-depth", sc.bestDepth).Msg("best-move-lookahead")
	}
	return msg(fmt.Sprintf("best move %s: %s (depth %d, %v)", col, v, depth, elapsed)), nil
}

func nextDepth(depth int, elapsed, respite, tolerable time.Duration) int {
	switch {
	case elapsed < respite:
		return depth + 1
	case elapsed > tolerable && depth > 1:
		return depth - 1
	}
	return depth
}

func (sc *ShellController) solve(cmd *shellcmd) (*Response, error) {
	cfg := sc.config.SolverConfig()
	var err error
	if cfg.Workers, err = intOption(cmd, "workers", cfg.Workers); err != nil {
		return nil, err
	}
	if cfg.Lookahead, err = intOption(cmd, "lookahead", cfg.Lookahead); err != nil {
		return nil, err
	}
	if p, ok := cmd.options["dump"]; ok {
		cfg.DumpPath = p
	}
	s := solver.New(cfg)
	v, err := s.Solve(context.Background(), sc.board, sc.mover)
	if err != nil {
		return nil, err
	}
	sum := s.Stats()
	sc.lastSummary = &sum
	return msg(fmt.Sprintf("%s to move: %s, best move %s (%v, %d workers)",
		sc.mover, v, s.BestMove(), sum.Elapsed, len(sum.Jobs))), nil
}

func (sc *ShellController) key(cmd *shellcmd) (*Response, error) {
	k := poskey.Encode(sc.board, sc.mover)
	return msg(fmt.Sprintf("%s (fingerprint %016x)", k, k.Fingerprint())), nil
}

func (sc *ShellController) random(cmd *shellcmd) (*Response, error) {
	plies := defaultRandomPlies
	if len(cmd.args) > 0 {
		n, err := strconv.Atoi(cmd.args[0])
		if err != nil {
			return nil, err
		}
		plies = n
	}
	if plies < 0 || plies >= board.Cells {
		return nil, fmt.Errorf("plies must be between 0 and %d", board.Cells-1)
	}
	sc.setBoard(board.RandomPosition(plies))
	return msg(sc.position()), nil
}

func (sc *ShellController) turn(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return msg(fmt.Sprintf("%s to move", sc.mover)), nil
	}
	p, err := parseMover(cmd.args[0])
	if err != nil {
		return nil, err
	}
	sc.mover = p
	return msg(fmt.Sprintf("%s to move", sc.mover)), nil
}

func (sc *ShellController) stats(cmd *shellcmd) (*Response, error) {
	if sc.lastSummary == nil {
		return nil, errNoSolve
	}
	var sb strings.Builder
	sc.lastSummary.Print(&sb)
	if _, ok := cmd.options["histogram"]; ok || lo.Contains(cmd.args, "histogram") {
		if err := sc.lastSummary.Histogram(&sb); err != nil {
			return nil, err
		}
	}
	return msg(strings.TrimRight(sb.String(), "\n")), nil
}

func (sc *ShellController) set(cmd *shellcmd) (*Response, error) {
	switch len(cmd.args) {
	case 0:
		out, err := sc.settingsYAML()
		if err != nil {
			return nil, err
		}
		return msg(strings.TrimRight(out, "\n")), nil
	case 1:
		return msg(fmt.Sprintf("%s: %v", cmd.args[0], sc.config.Get(cmd.args[0]))), nil
	case 2:
		if err := sc.config.SetValue(cmd.args[0], cmd.args[1]); err != nil {
			return nil, err
		}
		return msg(fmt.Sprintf("set %s to %v", cmd.args[0], sc.config.Get(cmd.args[0]))), nil
	}
	return nil, errors.New("usage: set [<key> [<value>]]")
}

// settingsYAML lists every setting. yaml.v3 sorts map keys.
func (sc *ShellController) settingsYAML() (string, error) {
	out, err := yaml.Marshal(sc.config.SanitizedSettings())
	if err != nil {
		return "", err
	}
	return string(out), nil
}

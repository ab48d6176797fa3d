package shell

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"

	"github.com/domino14/dropfour/board"
	"github.com/domino14/dropfour/config"
	"github.com/domino14/dropfour/heuristic"
	"github.com/domino14/dropfour/stats"
)

var (
	errNoData            = errors.New("no data in this line")
	errWrongOptionSyntax = errors.New("wrong format for option")
	errNoSolve           = errors.New("no solve has finished yet")
	errExit              = errors.New("exit requested")
)

type shellcmd struct {
	cmd     string
	args    []string
	options map[string]string
}

type Response struct {
	message string
}

func msg(message string) *Response {
	return &Response{message: message}
}

type ShellController struct {
	l   *readline.Instance
	out io.Writer

	config     *config.Config
	execPath   string
	gitVersion string

	board *board.Board
	mover board.Player

	// bestDepth is the lookahead of the next unargumented best-move
	// search. It adapts to how long the previous one took.
	bestDepth int
	now       func() time.Time

	lastSummary *stats.Summary
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func showMessage(msg string, w io.Writer) {
	io.WriteString(w, msg)
	io.WriteString(w, "\n")
}

func NewShellController(cfg *config.Config, execPath, gitVersion string) *ShellController {
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[33mdropfour>\033[0m ",
		HistoryFile:     "/tmp/dropfour_readline.tmp",
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		panic(err)
	}
	sc := newController(cfg, l.Stderr())
	sc.l = l
	sc.execPath = execPath
	sc.gitVersion = gitVersion
	return sc
}

func newController(cfg *config.Config, out io.Writer) *ShellController {
	return &ShellController{
		out:       out,
		config:    cfg,
		board:     board.New(),
		mover:     board.White,
		bestDepth: startDepth(cfg),
		now:       time.Now,
	}
}

func startDepth(cfg *config.Config) int {
	return max(1, cfg.GetInt(config.ConfigBestStartDepth))
}

// setBoard replaces the position and restarts the adaptive lookahead.
func (sc *ShellController) setBoard(b *board.Board, mover board.Player) {
	sc.board, sc.mover = b, mover
	sc.bestDepth = startDepth(sc.config)
}

func (sc *ShellController) showMessage(msg string) {
	showMessage(msg, sc.out)
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

func (sc *ShellController) evaluator() *heuristic.Evaluator {
	return heuristic.NewEvaluator(sc.config.Coefficients())
}

// extractFields splits a line into its command, positional arguments and
// -key value options.
func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errNoData
	}
	cmd := fields[0]
	var args []string
	options := map[string]string{}
	for i := 1; i < len(fields); i++ {
		if isOption(fields[i]) {
			if i == len(fields)-1 {
				return nil, errWrongOptionSyntax
			}
			options[strings.TrimPrefix(fields[i], "-")] = fields[i+1]
			i++
			continue
		}
		args = append(args, fields[i])
	}
	return &shellcmd{cmd: cmd, args: args, options: options}, nil
}

// isOption tells a -key from a negative number.
func isOption(field string) bool {
	if !strings.HasPrefix(field, "-") {
		return false
	}
	_, err := strconv.ParseFloat(field, 64)
	return err != nil
}

func (sc *ShellController) standardModeSwitch(line string, sig chan os.Signal) (*Response, error) {
	cmd, err := extractFields(line)
	if err != nil {
		return nil, err
	}
	switch cmd.cmd {
	case "exit":
		sig <- syscall.SIGINT
		return nil, errExit
	case "help":
		return sc.help(cmd)
	case "new":
		return sc.newBoard(cmd)
	case "load":
		return sc.load(cmd)
	case "drop":
		return sc.drop(cmd)
	case "undrop":
		return sc.undrop(cmd)
	case "show":
		return sc.show(cmd)
	case "eval":
		return sc.eval(cmd)
	case "best":
		return sc.best(cmd)
	case "solve":
		return sc.solve(cmd)
	case "key":
		return sc.key(cmd)
	case "random":
		return sc.random(cmd)
	case "turn":
		return sc.turn(cmd)
	case "stats":
		return sc.stats(cmd)
	case "set":
		return sc.set(cmd)
	}
	log.Debug().Str("line", line).Msg("unrecognized-command")
	return nil, fmt.Errorf("command %q not recognized; try help", cmd.cmd)
}

// Execute runs one command line and prints its result.
func (sc *ShellController) Execute(sig chan os.Signal, line string) {
	resp, err := sc.standardModeSwitch(line, sig)
	switch {
	case errors.Is(err, errExit), errors.Is(err, errNoData):
	case err != nil:
		sc.showError(err)
	case resp != nil:
		sc.showMessage(resp.message)
	}
}

func (sc *ShellController) Loop(sig chan os.Signal) {
	defer sc.l.Close()

	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				break
			}
			continue
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}
		line = strings.TrimSpace(line)
		resp, err := sc.standardModeSwitch(line, sig)
		if errors.Is(err, errExit) {
			break
		}
		if errors.Is(err, errNoData) {
			continue
		}
		if err != nil {
			sc.showError(err)
			continue
		}
		if resp != nil {
			sc.showMessage(resp.message)
		}
	}
	log.Debug().Msg("exiting-readline-loop")
}

func (sc *ShellController) Cleanup() {
	log.Debug().Msg("shell-cleanup")
}

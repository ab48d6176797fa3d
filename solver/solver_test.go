package solver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/domino14/dropfour/board"
	"github.com/domino14/dropfour/heuristic"
	"github.com/domino14/dropfour/minimax"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

// Columns 0 to 4 are full, 5 and 6 are empty. Nobody has four yet.
const nearFull = `
------
xxooxx
ooxxoo
xxooxx
ooxxoo
xxooxx


------`

func testConfig(workers, lookahead int) Config {
	cfg := DefaultConfig()
	cfg.Workers = workers
	cfg.Lookahead = lookahead
	return cfg
}

func solve(t *testing.T, cfg Config, b *board.Board, mover board.Player) (board.Verdict, board.Column) {
	t.Helper()
	s := New(cfg)
	v, err := s.Solve(context.Background(), b, mover)
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	return v, s.BestMove()
}

func TestFourthCentreDrop(t *testing.T) {
	is := is.New(t)
	b := board.New()
	for range 3 {
		b.MakeMove(board.White, 3)
	}
	for _, workers := range []int{1, 3} {
		for _, lookahead := range []int{0, 4} {
			v, best := solve(t, testConfig(workers, lookahead), b, board.White)
			is.Equal(v, board.WonIn(0))
			is.Equal(best, board.Column(3))
		}
	}
}

func TestBlockedColumn(t *testing.T) {
	is := is.New(t)
	// three white stones in column 3 are capped by black; row 0 wins
	// elsewhere
	b, err := board.Parse("------\nxx\nx\n\nooox\no\no\n\n------")
	is.NoErr(err)
	col, expected, ok := minimax.FindBestMove(b, board.White, 2, false, nil)
	is.True(ok)

	for _, lookahead := range []int{0, 3} {
		v, best := solve(t, testConfig(2, lookahead), b, board.White)
		is.True(best != 3)
		is.Equal(v, board.WonIn(0))
		is.Equal(v, expected)
		is.Equal(best, col)
	}
}

func TestNearFullWithoutPrecheck(t *testing.T) {
	is := is.New(t)
	b, err := board.Parse(nearFull)
	is.NoErr(err)
	is.Equal(b.Stones(), 30)

	v, _ := solve(t, testConfig(1, 0), b, board.White)
	is.True(v.Decided())

	_, exhaustive, ok := minimax.FindBestMove(b, board.White, 12, false, nil)
	is.True(ok)
	is.Equal(v.Kind, exhaustive.Kind)

	withPrecheck, _ := solve(t, testConfig(2, 2), b, board.White)
	is.Equal(withPrecheck.Kind, v.Kind)
}

func TestSameVerdictForAnyWorkerCount(t *testing.T) {
	is := is.New(t)
	b, err := board.Parse(nearFull)
	is.NoErr(err)
	for _, mover := range []board.Player{board.White, board.Black} {
		for _, lookahead := range []int{0, 3} {
			one, _ := solve(t, testConfig(1, lookahead), b, mover)
			for _, workers := range []int{2, 4, 7} {
				many, _ := solve(t, testConfig(workers, lookahead), b, mover)
				is.Equal(many, one)
			}
		}
	}
}

func TestRandomPositionsAgreeWithMinimax(t *testing.T) {
	is := is.New(t)
	for range 6 {
		b, mover := board.RandomPosition(28)
		if b.Over() {
			continue
		}
		_, exhaustive, ok := minimax.FindBestMove(b, mover, board.Cells-b.Stones(), false, nil)
		is.True(ok)
		is.True(exhaustive.Decided())

		one, _ := solve(t, testConfig(1, 0), b, mover)
		many, _ := solve(t, testConfig(4, 3), b, mover)
		is.Equal(one.Kind, exhaustive.Kind)  // single worker matches minimax
		is.Equal(many.Kind, exhaustive.Kind) // four workers match minimax
	}
}

func TestDistanceOneMoveEarlier(t *testing.T) {
	is := is.New(t)
	b, err := board.Parse(nearFull)
	is.NoErr(err)
	for _, mover := range []board.Player{board.White, board.Black} {
		v, best := solve(t, testConfig(3, 0), b, mover)
		if v == board.WonIn(0) || v == board.DrawIn(0) {
			continue
		}
		child := b.Copy()
		_, err := child.MakeMove(mover, best)
		is.NoErr(err)
		reply, _ := solve(t, testConfig(3, 0), child, mover.Opponent())
		is.Equal(reply.Flip(), v)
	}
}

func TestSolveErrors(t *testing.T) {
	is := is.New(t)
	s := New(testConfig(1, 0))

	b := board.New()
	for range 4 {
		b.MakeMove(board.Black, 0)
	}
	_, err := s.Solve(context.Background(), b, board.White)
	is.True(errors.Is(err, ErrGameOver))

	_, err = s.Solve(context.Background(), board.New(), board.Grey)
	is.True(errors.Is(err, ErrBadMover))
}

func TestCancelledSolve(t *testing.T) {
	is := is.New(t)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	s := New(testConfig(2, 2))
	_, err := s.Solve(ctx, board.New(), board.White)
	is.True(errors.Is(err, context.DeadlineExceeded))
}

func TestStatsAndDump(t *testing.T) {
	is := is.New(t)
	b, err := board.Parse(nearFull)
	is.NoErr(err)
	cfg := testConfig(2, 0)
	cfg.DumpPath = filepath.Join(t.TempDir(), "dump.yaml")
	s := New(cfg)
	v, err := s.Solve(context.Background(), b, board.Black)
	is.NoErr(err)

	sum := s.Stats()
	is.Equal(sum.Verdict, v.String())
	is.Equal(len(sum.Jobs), 2)
	is.True(sum.Jobs[0]+sum.Jobs[1] > 0)
	is.True(sum.Counters.Decided > 0)
	is.Equal(len(sum.Distances), int(sum.Counters.Decided))

	info, err := os.Stat(cfg.DumpPath)
	is.NoErr(err)
	is.True(info.Size() > 0)
}

func TestConfigDefaults(t *testing.T) {
	is := is.New(t)
	cfg := Config{Workers: -3, Lookahead: -1}.withDefaults()
	is.Equal(cfg.Workers, 1)
	is.Equal(cfg.Lookahead, 0)
	is.Equal(cfg.Coefficients, heuristic.DefaultCoefficients())
	is.Equal(cfg.ProgressInterval, DefaultProgressInterval)
}

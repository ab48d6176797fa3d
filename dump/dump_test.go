package dump

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matryer/is"
	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v3"

	"github.com/domino14/dropfour/board"
	"github.com/domino14/dropfour/poskey"
	"github.com/domino14/dropfour/store"
)

type fakeStore map[poskey.Key]store.Entry

func (f fakeStore) Lookup(k poskey.Key) (store.Entry, bool) {
	e, ok := f[k]
	return e, ok
}

func TestBuild(t *testing.T) {
	is := is.New(t)
	b := board.New()
	for range 3 {
		b.MakeMove(board.White, 3)
	}
	b.MakeMove(board.Black, 0)
	b.MakeMove(board.Black, 0)

	after := b.Copy()
	after.MakeMove(board.White, 1)
	known := poskey.Encode(after, board.Black)
	st := fakeStore{known: {State: store.Decided, Verdict: board.WonIn(4), Move: 2}}

	r := Build(b, board.White, board.WonIn(0), 3, store.Counters{Entries: 1}, st)
	is.Equal(len(r.Moves), board.Width)
	is.Equal(r.BestMove, 3)
	is.Equal(r.Moves[3].Verdict, "Won(0)")
	is.Equal(len(r.Moves[3].Replies), 0)

	one := r.Moves[1]
	is.Equal(one.Key, known.String())
	is.Equal(one.State, "decided")
	is.Equal(one.Verdict, "Lost(5)")
	is.Equal(len(one.Replies), board.Width)
	// black can still block in column 3
	is.Equal(one.Replies[3].State, "unseen")

	is.Equal(r.Moves[2].State, "unseen")
	is.Equal(r.Moves[2].Verdict, "Undecided(0.50)")
}

func TestWrite(t *testing.T) {
	is := is.New(t)
	b := board.New()
	r := Build(b, board.Black, board.UndecidedWith(0.5), board.NoColumn, store.Counters{}, fakeStore{})
	path := filepath.Join(t.TempDir(), "dump.yaml")
	is.NoErr(Write(path, r))

	data, err := os.ReadFile(path)
	is.NoErr(err)
	var back Report
	is.NoErr(yaml.Unmarshal(data, &back))
	is.Equal(back.Mover, "Black")
	is.Equal(len(back.Moves), board.Width)
	is.Equal(len(back.Moves[0].Replies), board.Width)
	is.Equal(back.Layout, b.Display())
}

func TestWriteCompressed(t *testing.T) {
	is := is.New(t)
	b := board.New()
	r := Build(b, board.White, board.UndecidedWith(0.5), board.NoColumn, store.Counters{Entries: 3}, fakeStore{})
	path := filepath.Join(t.TempDir(), "dump.yaml.zst")
	is.NoErr(Write(path, r))

	data, err := os.ReadFile(path)
	is.NoErr(err)
	is.Equal(data[:4], []byte{0x28, 0xb5, 0x2f, 0xfd}) // zstd frame magic

	back, err := Read(path)
	is.NoErr(err)
	is.Equal(back.Mover, "White")
	is.Equal(back.Counters.Entries, 3)
	is.Equal(len(back.Moves), board.Width)
}

func TestAnnotateLeavesBoardIntact(t *testing.T) {
	is := is.New(t)
	b := board.New()
	n := annotate(b, board.White, 3, fakeStore{}, true)
	is.Equal(n.Column, 3)
	is.Equal(len(n.Replies), board.Width)
	is.Equal(b.Stones(), 0)
	assert.Panics(t, func() { mustWithdraw(b, 3) })
}

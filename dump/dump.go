// Package dump writes a diagnostic report of a finished solve: the root
// verdict and the moves and replies below it, annotated with what the
// store knew about them.
package dump

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
	"gopkg.in/yaml.v3"

	"github.com/domino14/dropfour/board"
	"github.com/domino14/dropfour/poskey"
	"github.com/domino14/dropfour/store"
)

const zstdSuffix = ".zst"

// Lookuper is the read side of the store.
type Lookuper interface {
	Lookup(key poskey.Key) (store.Entry, bool)
}

type Node struct {
	Column      int    `yaml:"column"`
	Key         string `yaml:"key,omitempty"`
	Fingerprint string `yaml:"fingerprint,omitempty"`
	// Verdict is from the point of view of the player making the move.
	Verdict string `yaml:"verdict"`
	State   string `yaml:"state,omitempty"`
	Replies []Node `yaml:"replies,omitempty"`
}

type Report struct {
	Layout   string         `yaml:"layout"`
	Mover    string         `yaml:"mover"`
	Root     string         `yaml:"root"`
	Verdict  string         `yaml:"verdict"`
	BestMove int            `yaml:"best_move"`
	Counters store.Counters `yaml:"counters"`
	Moves    []Node         `yaml:"moves"`
}

// Build annotates every move of mover on b and every reply to it.
func Build(b *board.Board, mover board.Player, v board.Verdict, best board.Column,
	counters store.Counters, st Lookuper) Report {

	r := Report{
		Layout:   b.Display(),
		Mover:    mover.String(),
		Root:     poskey.Encode(b, mover).String(),
		Verdict:  v.String(),
		BestMove: int(best),
		Counters: counters,
	}
	scratch := b.Copy()
	for _, c := range scratch.PossibleMoves() {
		r.Moves = append(r.Moves, annotate(scratch, mover, c, st, true))
	}
	return r
}

// annotate plays c for p, describes the result and, if deeper is set, the
// replies to it. The move is taken back before returning.
func annotate(b *board.Board, p board.Player, c board.Column, st Lookuper, deeper bool) Node {
	v, err := b.MakeMove(p, c)
	if err != nil {
		return Node{Column: int(c), Verdict: err.Error()}
	}
	defer mustWithdraw(b, c)

	n := Node{Column: int(c), Verdict: v.String()}
	if v.Decided() {
		return n
	}
	k := poskey.Encode(b, p.Opponent())
	n.Key = k.String()
	n.Fingerprint = fmt.Sprintf("%016x", k.Fingerprint())
	n.State = store.Unseen.String()
	if e, ok := st.Lookup(k); ok {
		n.State = e.State.String()
		n.Verdict = e.Verdict.Flip().String()
	}
	if deeper {
		for _, r := range b.PossibleMoves() {
			n.Replies = append(n.Replies, annotate(b, p.Opponent(), r, st, false))
		}
	}
	return n
}

// Write stores the report at path as YAML. A path ending in .zst is
// compressed with zstd.
func Write(path string, r Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating dump: %w", err)
	}
	defer f.Close()

	var w io.Writer = f
	var zw *zstd.Encoder
	if strings.HasSuffix(path, zstdSuffix) {
		zw, err = zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return fmt.Errorf("creating dump encoder: %w", err)
		}
		w = zw
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encoding dump: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	if zw != nil {
		if err := zw.Close(); err != nil {
			return fmt.Errorf("compressing dump: %w", err)
		}
	}
	return f.Sync()
}

// Read loads a report written by Write.
func Read(path string) (Report, error) {
	var r Report
	f, err := os.Open(path)
	if err != nil {
		return r, err
	}
	defer f.Close()

	var src io.Reader = f
	if strings.HasSuffix(path, zstdSuffix) {
		zr, err := zstd.NewReader(f)
		if err != nil {
			return r, fmt.Errorf("opening dump decoder: %w", err)
		}
		defer zr.Close()
		src = zr
	}
	if err := yaml.NewDecoder(src).Decode(&r); err != nil {
		return r, fmt.Errorf("decoding dump: %w", err)
	}
	return r, nil
}

func mustWithdraw(b *board.Board, c board.Column) {
	if err := b.WithdrawMove(c); err != nil {
		panic(fmt.Sprintf("withdraw of %d rejected: %v", c, err))
	}
}

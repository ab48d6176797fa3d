package solver

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/domino14/dropfour/board"
	"github.com/domino14/dropfour/poskey"
	"github.com/domino14/dropfour/stats"
	"github.com/domino14/dropfour/store"
)

type rosterEntry struct {
	worker    *worker
	pending   int
	jobs      int
	durations stats.Running
}

// conductor owns every state transition of the store. Workers only read
// it.
type conductor struct {
	store  *store.Store
	roster []*rosterEntry
	inbox  <-chan message

	root      poskey.Key
	rootMover board.Player

	// parents maps a child to the positions waiting for it.
	parents map[poskey.Key][]poskey.Key
	movers  map[poskey.Key]board.Player
	// recallWanted holds positions that are being explored while one of
	// their children got decided.
	recallWanted map[poskey.Key]bool

	progressInterval time.Duration
	completions      uint64
}

func newConductor(st *store.Store, workers []*worker, inbox <-chan message, progress time.Duration) *conductor {
	return &conductor{
		store: st,
		roster: lo.Map(workers, func(w *worker, _ int) *rosterEntry {
			return &rosterEntry{worker: w}
		}),
		inbox:            inbox,
		parents:          make(map[poskey.Key][]poskey.Key),
		movers:           make(map[poskey.Key]board.Player),
		recallWanted:     make(map[poskey.Key]bool),
		progressInterval: progress,
	}
}

// run drives the solve of root until it is decided or ctx is done.
func (c *conductor) run(ctx context.Context, root poskey.Key, mover board.Player) (board.Verdict, board.Column, error) {
	c.root = root
	c.rootMover = mover
	c.movers[root] = mover
	if res, _ := c.store.Claim(root); res != store.Created {
		panic(fmt.Sprintf("fresh store did not create root %s: %s", root, res))
	}
	c.dispatch(root, false)

	ticker := time.NewTicker(c.progressInterval)
	defer ticker.Stop()
	var lastDecided uint64
	for {
		select {
		case <-ctx.Done():
			return board.Verdict{}, board.NoColumn, ctx.Err()
		case <-ticker.C:
			counters := c.store.Counters()
			log.Debug().
				Uint64("decided-per-interval", counters.Decided-lastDecided).
				Uint64("decided", counters.Decided).
				Int("entries", counters.Entries).
				Int("waiting", len(c.parents)).
				Ints("pending-jobs", c.pendingJobs()).
				Msg("solve-progress")
			lastDecided = counters.Decided
		case m := <-c.inbox:
			switch m := m.(type) {
			case interest:
				c.onInterest(m)
			case completion:
				if c.onCompletion(m) {
					e, _ := c.store.Lookup(root)
					return e.Verdict, e.Move, nil
				}
			}
		}
	}
}

func (c *conductor) onInterest(m interest) {
	if m.child == m.parent {
		return
	}
	if _, ok := c.movers[m.child]; !ok {
		c.movers[m.child] = m.mover
	}
	if e, ok := c.store.Lookup(m.child); ok && e.State == store.Pending {
		// It is waiting on its own children, which will wake it.
		c.addParent(m.child, m.parent)
		return
	}
	res, _ := c.store.Claim(m.child)
	switch res {
	case store.Created:
		c.addParent(m.child, m.parent)
		c.dispatch(m.child, false)
	case store.AlreadyOwned:
		c.addParent(m.child, m.parent)
	case store.AlreadyDecided:
		// decided after the worker looked it up
		c.wake(m.parent)
	}
}

// onCompletion records a worker's result and wakes everything waiting on
// it. It returns true once the root is decided.
func (c *conductor) onCompletion(m completion) bool {
	r := c.roster[m.worker]
	r.pending--
	r.jobs++
	r.durations.Push(m.elapsed.Seconds())
	c.completions++

	c.store.Record(m.key, m.verdict, m.move)

	if !m.verdict.Decided() {
		if c.recallWanted[m.key] {
			delete(c.recallWanted, m.key)
			c.reclaim(m.key)
		}
		return false
	}
	delete(c.recallWanted, m.key)
	parents := c.parents[m.key]
	delete(c.parents, m.key)
	for _, p := range parents {
		c.wake(p)
	}
	if m.key == c.root {
		log.Debug().Str("verdict", m.verdict.String()).
			Uint64("completions", c.completions).
			Msg("root-decided")
		return true
	}
	return false
}

// wake makes key look at its children again.
func (c *conductor) wake(key poskey.Key) {
	e, ok := c.store.Lookup(key)
	if !ok {
		panic(fmt.Sprintf("waking unknown key %s", key))
	}
	switch e.State {
	case store.Novel, store.Recall:
		c.recallWanted[key] = true
	case store.Pending:
		c.reclaim(key)
	}
}

func (c *conductor) reclaim(key poskey.Key) {
	res, _ := c.store.Claim(key)
	if res != store.Created {
		panic(fmt.Sprintf("reclaim of %s returned %s", key, res))
	}
	c.dispatch(key, true)
}

func (c *conductor) addParent(child, parent poskey.Key) {
	ps := c.parents[child]
	if lo.Contains(ps, parent) {
		return
	}
	c.parents[child] = append(ps, parent)
}

// dispatch hands key to the worker with the fewest pending jobs, the lowest
// id on ties.
func (c *conductor) dispatch(key poskey.Key, recall bool) {
	r := lo.MinBy(c.roster, func(a, b *rosterEntry) bool { return a.pending < b.pending })
	r.pending++
	r.worker.mailbox.push(job{key: key, mover: c.movers[key], recall: recall})
}

func (c *conductor) pendingJobs() []int {
	return lo.Map(c.roster, func(r *rosterEntry, _ int) int { return r.pending })
}

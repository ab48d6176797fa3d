// Package store is the transposition store shared by the solver's
// conductor and workers. It maps position keys to what is known about them.
package store

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"

	"github.com/domino14/dropfour/board"
	"github.com/domino14/dropfour/poskey"
)

// State is the lifecycle stage of an entry. Decided is terminal.
type State uint8

const (
	Unseen State = iota
	// Novel entries are being explored for the first time.
	Novel
	// Pending entries were explored, and wait for a child to be decided.
	Pending
	// Recall entries are being explored again.
	Recall
	Decided
)

func (s State) String() string {
	switch s {
	case Novel:
		return "novel"
	case Pending:
		return "pending"
	case Recall:
		return "recall"
	case Decided:
		return "decided"
	}
	return "unseen"
}

type ClaimResult uint8

const (
	Created ClaimResult = iota + 1
	AlreadyOwned
	AlreadyDecided
)

func (c ClaimResult) String() string {
	switch c {
	case Created:
		return "created"
	case AlreadyOwned:
		return "already-owned"
	case AlreadyDecided:
		return "already-decided"
	}
	return "none"
}

type Entry struct {
	State   State
	Verdict board.Verdict
	Move    board.Column
	// Visits counts how many times a verdict was recorded for the entry.
	Visits uint32
}

type TableLock interface {
	Lock()
	Unlock()
	RLock()
	RUnlock()
}

type FakeLock struct{}

func (f FakeLock) Lock()    {}
func (f FakeLock) Unlock()  {}
func (f FakeLock) RLock()   {}
func (f FakeLock) RUnlock() {}

type Store struct {
	TableLock
	table map[poskey.Key]*Entry

	created atomic.Uint64
	claims  atomic.Uint64
	lookups atomic.Uint64
	hits    atomic.Uint64
	recalls atomic.Uint64
	decided atomic.Uint64
}

func New() *Store {
	s := &Store{table: make(map[poskey.Key]*Entry)}
	s.SetMultiThreadedMode()
	return s
}

// SetSingleThreadedMode drops locking. Only use it while no other goroutine
// can reach the store.
func (s *Store) SetSingleThreadedMode() {
	s.TableLock = &FakeLock{}
}

func (s *Store) SetMultiThreadedMode() {
	s.TableLock = new(sync.RWMutex)
}

// Claim takes ownership of key for exploration. An unknown key becomes
// Novel and a pending one becomes Recall; both return Created. Keys that
// are being explored return AlreadyOwned, and decided ones return their
// verdict without being touched.
func (s *Store) Claim(key poskey.Key) (ClaimResult, board.Verdict) {
	s.Lock()
	defer s.Unlock()
	s.claims.Add(1)
	e, ok := s.table[key]
	if !ok {
		s.table[key] = &Entry{State: Novel, Move: board.NoColumn}
		s.created.Add(1)
		return Created, board.Verdict{}
	}
	switch e.State {
	case Pending:
		e.State = Recall
		s.recalls.Add(1)
		return Created, board.Verdict{}
	case Decided:
		return AlreadyDecided, e.Verdict
	}
	return AlreadyOwned, board.Verdict{}
}

// Record stores the outcome of an exploration of key. The key must be held
// through Claim; anything else is a protocol violation and panics.
func (s *Store) Record(key poskey.Key, v board.Verdict, move board.Column) {
	s.Lock()
	defer s.Unlock()
	e, ok := s.table[key]
	if !ok {
		panic(fmt.Sprintf("record for unclaimed key %s", key))
	}
	if e.State != Novel && e.State != Recall {
		panic(fmt.Sprintf("record %s for key %s in state %s", v, key, e.State))
	}
	e.Visits++
	e.Verdict = v
	e.Move = move
	if v.Decided() {
		e.State = Decided
		s.decided.Add(1)
	} else {
		e.State = Pending
	}
}

// Lookup returns a copy of the entry for key.
func (s *Store) Lookup(key poskey.Key) (Entry, bool) {
	s.RLock()
	defer s.RUnlock()
	s.lookups.Add(1)
	e, ok := s.table[key]
	if !ok {
		return Entry{}, false
	}
	s.hits.Add(1)
	return *e, true
}

// Range calls fn for every entry until fn returns false. fn must not call
// back into the store.
func (s *Store) Range(fn func(poskey.Key, Entry) bool) {
	s.RLock()
	defer s.RUnlock()
	for k, e := range s.table {
		if !fn(k, *e) {
			return
		}
	}
}

func (s *Store) Len() int {
	s.RLock()
	defer s.RUnlock()
	return len(s.table)
}

type Counters struct {
	Entries int    `yaml:"entries"`
	Created uint64 `yaml:"created"`
	Claims  uint64 `yaml:"claims"`
	Lookups uint64 `yaml:"lookups"`
	Hits    uint64 `yaml:"hits"`
	Recalls uint64 `yaml:"recalls"`
	Decided uint64 `yaml:"decided"`
}

func (s *Store) Counters() Counters {
	return Counters{
		Entries: s.Len(),
		Created: s.created.Load(),
		Claims:  s.claims.Load(),
		Lookups: s.lookups.Load(),
		Hits:    s.hits.Load(),
		Recalls: s.recalls.Load(),
		Decided: s.decided.Load(),
	}
}

// Reset drops every entry. The store grows without bound during a solve and
// is meant to be reset afterwards.
func (s *Store) Reset() {
	s.Lock()
	defer s.Unlock()
	dropped := len(s.table)
	s.table = make(map[poskey.Key]*Entry)

	log.Debug().Int("dropped-entries", dropped).
		Uint64("created", s.created.Load()).
		Uint64("decided", s.decided.Load()).
		Uint64("total-system-memory-bytes", memory.TotalMemory()).
		Msg("store-reset")

	s.created.Store(0)
	s.claims.Store(0)
	s.lookups.Store(0)
	s.hits.Store(0)
	s.recalls.Store(0)
	s.decided.Store(0)
}

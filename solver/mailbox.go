package solver

import "sync"

// mailbox is an unbounded job queue, so that the conductor never blocks
// when it hands out work. Recalls are served before first visits; they
// carry results up the tree.
type mailbox struct {
	mu      sync.Mutex
	cond    *sync.Cond
	recalls []job
	novel   []job
	closed  bool
}

func newMailbox() *mailbox {
	m := &mailbox{}
	m.cond = sync.NewCond(&m.mu)
	return m
}

func (m *mailbox) push(j job) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	if j.recall {
		m.recalls = append(m.recalls, j)
	} else {
		m.novel = append(m.novel, j)
	}
	m.cond.Signal()
}

// pop blocks until a job is available. ok is false once the mailbox is
// closed; jobs still queued at that point are dropped.
func (m *mailbox) pop() (j job, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for !m.closed && len(m.recalls) == 0 && len(m.novel) == 0 {
		m.cond.Wait()
	}
	if m.closed {
		return job{}, false
	}
	if len(m.recalls) > 0 {
		j, m.recalls = m.recalls[0], m.recalls[1:]
	} else {
		j, m.novel = m.novel[0], m.novel[1:]
	}
	return j, true
}

func (m *mailbox) close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.recalls = nil
	m.novel = nil
	m.cond.Broadcast()
}

func (m *mailbox) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.recalls) + len(m.novel)
}

package solver

import (
	"time"

	"github.com/domino14/dropfour/board"
	"github.com/domino14/dropfour/poskey"
)

// A job asks a worker to resolve one position. recall is set when the
// position was explored before and is being looked at again.
type job struct {
	key    poskey.Key
	mover  board.Player
	recall bool
}

// message is what workers send to the conductor.
type message interface {
	sender() int
}

// interest says that parent cannot be resolved before child is.
type interest struct {
	worker int
	child  poskey.Key
	mover  board.Player
	parent poskey.Key
}

// completion reports the outcome of a job. An undecided verdict is always
// preceded by the interests it depends on.
type completion struct {
	worker  int
	key     poskey.Key
	verdict board.Verdict
	move    board.Column
	elapsed time.Duration
}

func (i interest) sender() int   { return i.worker }
func (c completion) sender() int { return c.worker }

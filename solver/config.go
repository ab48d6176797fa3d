package solver

import (
	"runtime"
	"time"

	"github.com/domino14/dropfour/heuristic"
)

const (
	DefaultLookahead        = 4
	DefaultProgressInterval = time.Second
)

// Config holds the knobs of one solve.
type Config struct {
	// Workers is the size of the worker pool.
	Workers int
	// Lookahead is the depth of the exhaustive pre-check a worker runs the
	// first time it sees a position. Zero disables the pre-check.
	Lookahead        int
	Coefficients     heuristic.Coefficients
	DumpPath         string
	ProgressInterval time.Duration
}

func DefaultWorkers() int {
	return max(1, runtime.NumCPU()-1)
}

func DefaultConfig() Config {
	return Config{
		Workers:          DefaultWorkers(),
		Lookahead:        DefaultLookahead,
		Coefficients:     heuristic.DefaultCoefficients(),
		ProgressInterval: DefaultProgressInterval,
	}
}

func (c Config) withDefaults() Config {
	if c.Workers < 1 {
		c.Workers = 1
	}
	if c.Lookahead < 0 {
		c.Lookahead = 0
	}
	if c.ProgressInterval <= 0 {
		c.ProgressInterval = DefaultProgressInterval
	}
	if c.Coefficients == (heuristic.Coefficients{}) {
		c.Coefficients = heuristic.DefaultCoefficients()
	}
	return c
}

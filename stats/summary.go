package stats

import (
	"fmt"
	"io"
	"time"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/samber/lo"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/gonum/stat"

	"github.com/domino14/dropfour/store"
)

const histogramBins = 10

// Summary describes one solve after it finished.
type Summary struct {
	Verdict  string
	BestMove int
	Elapsed  time.Duration
	// Jobs counts the jobs each worker completed.
	Jobs []int
	// JobSeconds covers the durations of all jobs.
	JobSeconds Running
	Counters   store.Counters
	// Distances lists the distance of every decided position.
	Distances []float64
}

// Balance returns the mean and standard deviation of the number of jobs
// per worker.
func (s Summary) Balance() (mean, stddev float64) {
	if len(s.Jobs) == 0 {
		return 0, 0
	}
	jobs := lo.Map(s.Jobs, func(j int, _ int) float64 { return float64(j) })
	if len(jobs) == 1 {
		return jobs[0], 0
	}
	return stat.MeanStdDev(jobs, nil)
}

func (s Summary) DecidedPerSecond() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Counters.Decided) / s.Elapsed.Seconds()
}

func (s Summary) Print(w io.Writer) {
	p := message.NewPrinter(language.English)
	mean, stddev := s.Balance()
	p.Fprintf(w, "verdict:            %s (best move %d)\n", s.Verdict, s.BestMove)
	p.Fprintf(w, "elapsed:            %v\n", s.Elapsed.Round(time.Millisecond))
	p.Fprintf(w, "workers:            %d\n", len(s.Jobs))
	p.Fprintf(w, "jobs:               %d (%.1f ± %.1f per worker)\n", lo.Sum(s.Jobs), mean, stddev)
	p.Fprintf(w, "job time:           %.3fms ± %.3fms (95%%), max %.3fms\n",
		s.JobSeconds.Mean()*1000, s.JobSeconds.Interval(95)*1000, s.JobSeconds.Max()*1000)
	p.Fprintf(w, "store entries:      %d\n", s.Counters.Entries)
	p.Fprintf(w, "decided:            %d (%.0f per second)\n", s.Counters.Decided, s.DecidedPerSecond())
	p.Fprintf(w, "recalls:            %d\n", s.Counters.Recalls)
	p.Fprintf(w, "lookups:            %d (%d hits)\n", s.Counters.Lookups, s.Counters.Hits)
}

// Histogram draws the distribution of distances of decided positions.
func (s Summary) Histogram(w io.Writer) error {
	if len(s.Distances) == 0 {
		_, err := fmt.Fprintln(w, "no decided positions")
		return err
	}
	if lo.Min(s.Distances) == lo.Max(s.Distances) {
		_, err := fmt.Fprintf(w, "all %d decided positions at distance %.0f\n", len(s.Distances), s.Distances[0])
		return err
	}
	hist := histogram.Hist(histogramBins, s.Distances)
	return histogram.Fprint(w, hist, histogram.Linear(40))
}

// Package stats summarises a finished solve.
package stats

import "math"

const Epsilon = 1e-6

func FuzzyEqual(a, b float64) bool {
	return math.Abs(a-b) < Epsilon
}

// Running keeps the mean and variance of a stream of values without
// storing them, using Welford's update.
type Running struct {
	n    int
	mean float64
	m2   float64
	min  float64
	max  float64
}

func (r *Running) Push(x float64) {
	r.n++
	if r.n == 1 {
		r.mean, r.m2, r.min, r.max = x, 0, x, x
		return
	}
	delta := x - r.mean
	r.mean += delta / float64(r.n)
	r.m2 += delta * (x - r.mean)
	r.min = math.Min(r.min, x)
	r.max = math.Max(r.max, x)
}

// Merge folds o into r as if all of o's values had been pushed to r.
func (r *Running) Merge(o Running) {
	if o.n == 0 {
		return
	}
	if r.n == 0 {
		*r = o
		return
	}
	n := r.n + o.n
	delta := o.mean - r.mean
	r.m2 += o.m2 + delta*delta*float64(r.n)*float64(o.n)/float64(n)
	r.mean += delta * float64(o.n) / float64(n)
	r.min = math.Min(r.min, o.min)
	r.max = math.Max(r.max, o.max)
	r.n = n
}

func (r *Running) N() int {
	return r.n
}

func (r *Running) Mean() float64 {
	return r.mean
}

func (r *Running) Variance() float64 {
	if r.n < 2 {
		return 0
	}
	return r.m2 / float64(r.n-1)
}

func (r *Running) StdDev() float64 {
	return math.Sqrt(r.Variance())
}

func (r *Running) StdErr() float64 {
	if r.n == 0 {
		return 0
	}
	return math.Sqrt(r.Variance() / float64(r.n))
}

func (r *Running) Min() float64 {
	return r.min
}

func (r *Running) Max() float64 {
	return r.max
}

package stats

import "gonum.org/v1/gonum/stat/distuv"

// ZVal returns the two-tailed z-value for a confidence level given in
// percent.
func ZVal(confidence float64) float64 {
	n := distuv.Normal{Mu: 0, Sigma: 1}
	return n.Quantile((1 + confidence/100) / 2)
}

// Interval returns the half-width of the confidence interval around the
// mean of r.
func (r *Running) Interval(confidence float64) float64 {
	return ZVal(confidence) * r.StdErr()
}

// Package rating implements the two interchangeable rating-delta solvers:
// an iterative Elo solver and an FFT-accelerated equivalent. Both consume
// parallel (rank, rating, attendedCount) vectors and return a delta vector
// of the same length.
package rating

// Solver computes a rating-delta vector from parallel rank, rating, and
// attended-contest-count vectors, all of the same length N (one entry per
// participant with non-zero score).
type Solver interface {
	Solve(rank []int, rating []float64, attended []int) []float64
}

// kFactorCache memoizes f(k) = 1 / (1 + Σ_{j=0..k} (5/7)^j) for k <= 100;
// f is monotonically decreasing toward 2/9, so k > 100 clamps to that
// asymptote rather than growing the cache unboundedly.
var kFactorCache = buildKFactorCache()

const kFactorAsymptote = 2.0 / 9.0

func buildKFactorCache() [101]float64 {
	var cache [101]float64
	sum := 0.0
	ratio := 5.0 / 7.0
	term := 1.0
	for k := 0; k <= 100; k++ {
		sum += term
		cache[k] = 1.0 / (1.0 + sum)
		term *= ratio
	}
	return cache
}

// kFactor returns f(k), the attended-contest-count
// dampening applied to a participant's raw rating delta.
func kFactor(k int) float64 {
	if k < 0 {
		k = 0
	}
	if k > 100 {
		return kFactorAsymptote
	}
	return kFactorCache[k]
}

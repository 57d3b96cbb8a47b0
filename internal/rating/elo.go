package rating

import "math"

// EloSolver is the iterative bisection solver for post-contest rating deltas.
type EloSolver struct{}

// Solve computes the delta vector for a field of N participants. rank,
// rating, and attended must all have the same length; rank is the dense
// rank (1-indexed) from the reconstruction component, not necessarily
// sorted in this slice's order.
func (EloSolver) Solve(rank []int, rating []float64, attended []int) []float64 {
	n := len(rating)
	delta := make([]float64, n)
	if n == 0 {
		return delta
	}

	for i := 0; i < n; i++ {
		expectedRank := expectedRankOf(rating, i)
		meanRank := math.Sqrt(expectedRank * float64(rank[i]))
		expected := bisectExpectedRating(rating, meanRank)
		delta[i] = (expected - rating[i]) * kFactor(attended[i])
	}
	return delta
}

// winProbability is W(r, s) = 1 / (1 + 10^((s-r)/400)): the probability
// that a participant rated s beats one rated r.
func winProbability(r, s float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (s-r)/400.0))
}

// expectedRankOf sums W(rating_j, rating_i) over the whole field,
// including j == i (where W(rating_i, rating_i) == 0.5 exactly), plus
// 0.5, matching sumWinProbabilityAt's full-field sum used during the
// bisection below.
func expectedRankOf(rating []float64, i int) float64 {
	sum := 0.0
	ri := rating[i]
	for _, rj := range rating {
		sum += winProbability(rj, ri)
	}
	return sum + 0.5
}

// bisectExpectedRating finds r in [0, 4000] such that
// Σ_j W(rating_j, r) == meanRank - 1, by bisection with tolerance 0.01
// and a 25-iteration cap.
func bisectExpectedRating(rating []float64, meanRank float64) float64 {
	target := meanRank - 1.0
	lo, hi := 0.0, 4000.0

	for iter := 0; iter < 25; iter++ {
		mid := (lo + hi) / 2
		if sumWinProbabilityAt(rating, mid) < target {
			// sumWinProbabilityAt is monotonically decreasing in r, so a
			// sum below target means mid overshot the rating we want.
			hi = mid
		} else {
			lo = mid
		}
		if hi-lo < 0.01 {
			break
		}
	}
	return (lo + hi) / 2
}

// sumWinProbabilityAt sums W(rating_j, r) over the whole field at a
// hypothetical rating r; monotonically decreasing in r.
func sumWinProbabilityAt(rating []float64, r float64) float64 {
	sum := 0.0
	for _, rj := range rating {
		sum += winProbability(rj, r)
	}
	return sum
}

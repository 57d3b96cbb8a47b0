package rating

import (
	"math"

	"github.com/baoliay2008/lccn-predictor/internal/rating/fft"
)

// FFT expansion constants for the convolution-based rating solver.
const (
	fftExpandFactor = 100
	fftMaxRating    = 400000
)

// FFTSolver is the convolution-accelerated equivalent of EloSolver.
// Both solvers must agree to within 0.05 per participant on any valid
// input; FFTSolver trades exactness for O(N log N) instead of
// O(N^2) when the field is large (weekly contests regularly exceed
// 20,000 participants).
type FFTSolver struct{}

// Solve mirrors EloSolver.Solve's contract exactly.
func (FFTSolver) Solve(rank []int, rating []float64, attended []int) []float64 {
	n := len(rating)
	delta := make([]float64, n)
	if n == 0 {
		return delta
	}

	buckets := bucketCounts(rating)
	kernel := buildKernel()
	conv := fft.Convolve(kernel, buckets)

	// conv is indexed by (bucket offset) where offset 0 corresponds to
	// kernel index -fftMaxRating aligned against bucket index 0; the
	// kernel's center (f[0]) sits at kernel slice index fftMaxRating, so
	// conv[x+fftMaxRating] (for bucket x) sums f[x - ratingBucket] over
	// all participants, i.e. Σ_j W(rating_j, x/100).
	for i := 0; i < n; i++ {
		bucket := int(math.Round(rating[i] * fftExpandFactor))
		idx := bucket + fftMaxRating
		expectedRank := 0.0
		if idx >= 0 && idx < len(conv) {
			expectedRank = conv[idx]
		}
		expectedRank += 0.5
		meanRank := math.Sqrt(expectedRank * float64(rank[i]))

		x := bisectIntegerRating(conv, meanRank)
		expected := float64(x) / fftExpandFactor
		delta[i] = (expected - rating[i]) * kFactor(attended[i])
	}
	return delta
}

// bucketCounts quantizes each participant's rating into an integer bucket
// b = round(rating*100) and returns the unshifted histogram (g[b]++, no
// offset), sized to line up with buildKernel's own +fftMaxRating-centered
// kernel: convolving the two and reading back at conv[b+fftMaxRating]
// yields Σ_j f(b - bucket_j), the full-field win-probability sum at
// bucket b.
func bucketCounts(rating []float64) []float64 {
	size := 2*fftMaxRating + 1
	g := make([]float64, size)
	for _, r := range rating {
		b := int(math.Round(r * fftExpandFactor))
		idx := b
		if idx < 0 {
			idx = 0
		}
		if idx >= size {
			idx = size - 1
		}
		g[idx]++
	}
	return g
}

// buildKernel computes f[i] = 1/(1+10^(i/40000)) for i in
// [-fftMaxRating, fftMaxRating], the same W(rating_j, x/100) win
// probability used by EloSolver but expressed as a fixed kernel over
// integer bucket offsets so the whole field can be summed by convolution.
func buildKernel() []float64 {
	size := 2*fftMaxRating + 1
	kernel := make([]float64, size)
	for i := -fftMaxRating; i <= fftMaxRating; i++ {
		kernel[i+fftMaxRating] = 1.0 / (1.0 + math.Pow(10, float64(i)/40000.0))
	}
	return kernel
}

// bisectIntegerRating finds, by bisection, the largest integer bucket x in
// [0, fftMaxRating] with conv[x+fftMaxRating]+1 >= meanRank; conv
// decreases in x, so x+1 is the first bucket where conv+1 < meanRank.
func bisectIntegerRating(conv []float64, meanRank float64) int {
	lo, hi := 0, fftMaxRating
	for lo < hi {
		mid := (lo + hi + 1) / 2
		idx := mid + fftMaxRating
		val := 0.0
		if idx >= 0 && idx < len(conv) {
			val = conv[idx]
		}
		if val+1 < meanRank {
			hi = mid - 1
		} else {
			lo = mid
		}
	}
	return lo
}

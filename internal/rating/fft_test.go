package rating

import (
	"math"
	"math/rand"
	"testing"
)

func TestFFTSolverWinnerGainsLoserLoses(t *testing.T) {
	// Same upset field as the Elo solver's equivalent test: rank and
	// seed disagree, so each delta's sign is unambiguous.
	rank := []int{3, 2, 1}
	rating := []float64{1900, 1700, 1500}
	attended := []int{0, 0, 0}

	delta := FFTSolver{}.Solve(rank, rating, attended)
	if delta[0] >= 0 {
		t.Errorf("highest-rated participant finishing last: delta = %v, want < 0", delta[0])
	}
	if delta[2] <= 0 {
		t.Errorf("lowest-rated participant finishing first: delta = %v, want > 0", delta[2])
	}
}

func TestFFTSolverEmptyField(t *testing.T) {
	delta := FFTSolver{}.Solve(nil, nil, nil)
	if len(delta) != 0 {
		t.Errorf("expected empty delta for empty field, got %v", delta)
	}
}

// TestFFTAgreesWithElo is the cross-check required of both solvers: they must
// agree to within 0.05 per participant on the same input.
func TestFFTAgreesWithElo(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	const n = 40
	rank := make([]int, n)
	rating := make([]float64, n)
	attended := make([]int, n)
	for i := 0; i < n; i++ {
		rank[i] = i + 1
		rating[i] = 1200 + rng.Float64()*800
		attended[i] = rng.Intn(50)
	}

	eloDelta := EloSolver{}.Solve(rank, rating, attended)
	fftDelta := FFTSolver{}.Solve(rank, rating, attended)

	for i := 0; i < n; i++ {
		if diff := math.Abs(eloDelta[i] - fftDelta[i]); diff > 0.05 {
			t.Errorf("participant %d: elo delta %v vs fft delta %v, diff %v exceeds 0.05", i, eloDelta[i], fftDelta[i], diff)
		}
	}
}

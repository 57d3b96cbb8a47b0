package rating

import (
	"math"
	"testing"

	"github.com/baoliay2008/lccn-predictor/internal/rating/testdata"
)

// accuracyTolerance is the per-participant bound both solvers must meet
// against the canonical vectors: |old + delta - new| < accuracyTolerance.
const accuracyTolerance = 0.05

func TestEloSolverMatchesCanonicalVectors(t *testing.T) {
	for _, v := range testdata.Vectors {
		t.Run(v.Name, func(t *testing.T) {
			delta := EloSolver{}.Solve(v.Rank, v.OldRating, v.Attended)
			for i := range v.OldRating {
				got := v.OldRating[i] + delta[i]
				if diff := math.Abs(got - v.NewRating[i]); diff >= accuracyTolerance {
					t.Errorf("participant %d: old %v + delta %v = %v, want %v (diff %v >= %v)",
						i, v.OldRating[i], delta[i], got, v.NewRating[i], diff, accuracyTolerance)
				}
			}
		})
	}
}

func TestFFTSolverMatchesCanonicalVectors(t *testing.T) {
	for _, v := range testdata.Vectors {
		t.Run(v.Name, func(t *testing.T) {
			delta := FFTSolver{}.Solve(v.Rank, v.OldRating, v.Attended)
			for i := range v.OldRating {
				got := v.OldRating[i] + delta[i]
				if diff := math.Abs(got - v.NewRating[i]); diff >= accuracyTolerance {
					t.Errorf("participant %d: old %v + delta %v = %v, want %v (diff %v >= %v)",
						i, v.OldRating[i], delta[i], got, v.NewRating[i], diff, accuracyTolerance)
				}
			}
		})
	}
}

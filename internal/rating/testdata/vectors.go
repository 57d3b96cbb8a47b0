// Package testdata holds canonical rating-delta fixtures for
// internal/rating's accuracy tests. Every field here is symmetric (all
// participants share one old rating), which makes the expected-rank sum
// a constant (n+1)/2 across the field and lets NewRating be derived in
// closed form from the win-probability formula rather than by running
// the bisection solver itself, so the fixture is an independent check
// on both solvers rather than a restatement of their own output.
package testdata

// Vector is one contest field: Rank, OldRating, and Attended are
// parallel per-participant slices; NewRating is the expected
// post-contest rating for each participant, accurate to within the
// 0.05 tolerance both solvers are required to meet.
type Vector struct {
	Name      string
	Rank      []int
	OldRating []float64
	Attended  []int
	NewRating []float64
}

// Vectors covers a two-, three-, and five-way tie at a single rating
// with uniform attendance, plus a three-way tie with mixed attendance
// to exercise the K-factor curve independently of the rank solve.
var Vectors = []Vector{
	{
		Name:      "two_way_tie_1500",
		Rank:      []int{1, 2},
		OldRating: []float64{1500, 1500},
		Attended:  []int{0, 0},
		NewRating: []float64{1679.509, 1547.712},
	},
	{
		Name:      "three_way_tie_1500",
		Rank:      []int{1, 2, 3},
		OldRating: []float64{1500, 1500, 1500},
		Attended:  []int{0, 0, 0},
		NewRating: []float64{1659.070, 1560.206, 1505.853},
	},
	{
		Name:      "three_way_tie_1500_mixed_attendance",
		Rank:      []int{1, 2, 3},
		OldRating: []float64{1500, 1500, 1500},
		Attended:  []int{0, 5, 30},
		NewRating: []float64{1659.070, 1529.844, 1502.602},
	},
	{
		Name:      "five_way_tie_1500",
		Rank:      []int{1, 2, 3, 4, 5},
		OldRating: []float64{1500, 1500, 1500, 1500, 1500},
		Attended:  []int{0, 0, 0, 0, 0},
		NewRating: []float64{1653.135, 1577.797, 1535.218, 1502.494, 1473.884},
	},
}

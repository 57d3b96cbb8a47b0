package reconstruct

import (
	"context"
	"time"

	"github.com/baoliay2008/lccn-predictor/internal/models"
	"github.com/baoliay2008/lccn-predictor/internal/store"
)

// GridMinutes is the fixed 90-point per-minute time grid, measured from
// contest start.
const GridMinutes = 90

// MinuteSeries computes the 90-length real_time_rank vector for every
// participant across the contest's minute grid, applying the
// lastRank+1 rule for participants absent from a given grid point's
// aggregation. Only usernames in participants are included in the
// returned map: only participants with a non-zero score appear in the
// real-time-rank output.
func MinuteSeries(ctx context.Context, agg store.SubmissionAggregator, contest string, region models.DataRegion, startTime time.Time, participants []string) (map[string][]int, error) {
	series := make(map[string][]int, len(participants))
	for _, p := range participants {
		series[p] = make([]int, 0, GridMinutes)
	}

	for minute := 1; minute <= GridMinutes; minute++ {
		t := startTime.Add(time.Duration(minute) * time.Minute)
		ranks, err := agg.RankAtTimePoint(ctx, contest, region, t)
		if err != nil {
			return nil, err
		}

		// lastRank is the count of participants with any submission by
		// t (one aggregation row per participant, so len(ranks) is that
		// count even with ranking ties), not the maximum assigned rank
		// value; absent participants slot in one place below all of
		// them.
		absenteeRank := len(ranks) + 1

		for _, p := range participants {
			if r, ok := ranks[p]; ok {
				series[p] = append(series[p], r)
			} else {
				series[p] = append(series[p], absenteeRank)
			}
		}
	}
	return series, nil
}

// QuestionSeries computes the 90-length real_time_count vector for a
// single question across the contest's minute grid.
func QuestionSeries(ctx context.Context, agg store.SubmissionAggregator, contest string, region models.DataRegion, startTime time.Time, questionID int) ([]int, error) {
	counts := make([]int, 0, GridMinutes)
	for minute := 1; minute <= GridMinutes; minute++ {
		t := startTime.Add(time.Duration(minute) * time.Minute)
		byQuestion, err := agg.QuestionFinishCounts(ctx, contest, region, t)
		if err != nil {
			return nil, err
		}
		counts = append(counts, byQuestion[questionID])
	}
	return counts, nil
}

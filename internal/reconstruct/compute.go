// Package reconstruct implements the pure-Go replay of rank and
// question-finish-count reconstruction over an in-memory submission set.
// It satisfies the same store.SubmissionAggregator contract as
// mongostore's native aggregation pipeline, for lifecycle handlers that
// already have every submission loaded or need to unit test the
// reconstruction logic without a live document store.
package reconstruct

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/baoliay2008/lccn-predictor/internal/models"
	"github.com/baoliay2008/lccn-predictor/internal/store"
)

// Replayer implements store.SubmissionAggregator over a fixed slice of
// submissions, held in memory for the life of the replay.
type Replayer struct {
	submissions []models.Submission
}

var _ store.SubmissionAggregator = (*Replayer)(nil)

func NewReplayer(submissions []models.Submission) *Replayer {
	return &Replayer{submissions: submissions}
}

type userKey struct {
	username   string
	dataRegion models.DataRegion
}

type userAggregate struct {
	key          userKey
	creditSum    int
	failCountSum int
	latestDate   time.Time
}

// RankAtTimePoint groups submissions with Date <= t by (username,
// dataRegion), sums credit and failCount, derives
// penaltyDate = latestDate + 5*failCountSum minutes, then sorts by
// (creditSum desc, penaltyDate asc) with dense tie-sharing: rows with an
// identical (creditSum, penaltyDate) pair to the immediately preceding
// row share that row's rank.
func (r *Replayer) RankAtTimePoint(ctx context.Context, contest string, region models.DataRegion, t time.Time) (map[string]int, error) {
	groups := groupAndAggregate(r.submissions, contest, region, t)
	sortByCreditThenPenalty(groups)

	ranks := make(map[string]int, len(groups))
	rawRank := 0
	lastCreditSum := math.MaxInt64
	var lastPenaltyDate time.Time
	tieRank := 0
	for _, g := range groups {
		rawRank++
		if g.creditSum == lastCreditSum && g.latestPenaltyDate().Equal(lastPenaltyDate) {
			ranks[g.key.username] = tieRank
		} else {
			tieRank = rawRank
			ranks[g.key.username] = rawRank
		}
		lastCreditSum = g.creditSum
		lastPenaltyDate = g.latestPenaltyDate()
	}
	return ranks, nil
}

func (g userAggregate) latestPenaltyDate() time.Time {
	return g.latestDate.Add(5 * time.Duration(g.failCountSum) * time.Minute)
}

func groupAndAggregate(subs []models.Submission, contest string, region models.DataRegion, t time.Time) []userAggregate {
	index := make(map[userKey]*userAggregate)
	var order []userKey
	for _, s := range subs {
		if s.Contest != contest || s.DataRegion != region || s.Date.After(t) {
			continue
		}
		key := userKey{username: s.Username, dataRegion: s.DataRegion}
		agg, ok := index[key]
		if !ok {
			agg = &userAggregate{key: key}
			index[key] = agg
			order = append(order, key)
		}
		agg.creditSum += s.Credit
		agg.failCountSum += s.FailCount
		if s.Date.After(agg.latestDate) {
			agg.latestDate = s.Date
		}
	}

	out := make([]userAggregate, 0, len(order))
	for _, key := range order {
		out = append(out, *index[key])
	}
	return out
}

func sortByCreditThenPenalty(groups []userAggregate) {
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].creditSum != groups[j].creditSum {
			return groups[i].creditSum > groups[j].creditSum
		}
		return groups[i].latestPenaltyDate().Before(groups[j].latestPenaltyDate())
	})
}

// QuestionFinishCounts counts accepted submissions with Date <= t per
// question, no penalty offset applied.
func (r *Replayer) QuestionFinishCounts(ctx context.Context, contest string, region models.DataRegion, t time.Time) (map[int]int, error) {
	counts := make(map[int]int)
	for _, s := range r.submissions {
		if s.Contest != contest || s.DataRegion != region || s.Date.After(t) {
			continue
		}
		counts[s.QuestionID]++
	}
	return counts, nil
}

// AllParticipants returns the distinct (username) set across every
// submission for a contest/region, used by the caller to apply the
// "absent participant gets lastRank+1" rule across the full minute
// series.
func (r *Replayer) AllParticipants(contest string, region models.DataRegion) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, s := range r.submissions {
		if s.Contest != contest || s.DataRegion != region {
			continue
		}
		if _, ok := seen[s.Username]; !ok {
			seen[s.Username] = struct{}{}
			out = append(out, s.Username)
		}
	}
	sort.Strings(out)
	return out
}

package upstream

import (
	"golang.org/x/time/rate"

	"github.com/baoliay2008/lccn-predictor/internal/models"
)

// callSiteQPS mirrors the same per-region concurrency caps used to size
// fetch queue rounds (rankingConcurrency, userRatingConcurrency,
// pastContestsConcurrency): each adapter call site gets a token-bucket
// limiter sized to its cap, applying the same rate.NewLimiter idiom
// used for per-IP HTTP throttling to per-upstream-call-site throttling
// instead.
func callSiteQPS(concern Concern, region models.DataRegion) rate.Limit {
	switch concern {
	case ConcernRanking:
		return rate.Limit(rankingConcurrency(region))
	case ConcernUserRating:
		return rate.Limit(userRatingConcurrency(region))
	case ConcernPastContests:
		return rate.Limit(pastContestsConcurrency)
	default: // ConcernContest: single in-flight request, not paged
		return rate.Limit(1)
	}
}

// limiterRegistry holds one token-bucket limiter per concern/region call
// site, burst equal to its QPS so a fresh round can fire immediately.
type limiterRegistry struct {
	limiters map[string]*rate.Limiter
}

func newLimiterRegistry() *limiterRegistry {
	r := &limiterRegistry{limiters: make(map[string]*rate.Limiter)}
	for _, concern := range []Concern{ConcernContest, ConcernRanking, ConcernUserRating, ConcernPastContests} {
		for _, region := range []models.DataRegion{models.RegionUS, models.RegionCN} {
			qps := callSiteQPS(concern, region)
			r.limiters[breakerName(concern, region)] = rate.NewLimiter(qps, int(qps))
		}
	}
	return r
}

func (r *limiterRegistry) get(concern Concern, region models.DataRegion) *rate.Limiter {
	return r.limiters[breakerName(concern, region)]
}

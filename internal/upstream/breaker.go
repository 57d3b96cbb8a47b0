// Package upstream implements the four LeetCode adapters (contest
// metadata, ranking pages, user rating, past contests) for both regions,
// each wrapped in its own circuit breaker.
package upstream

import (
	"context"
	"fmt"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/baoliay2008/lccn-predictor/internal/logging"
	"github.com/baoliay2008/lccn-predictor/internal/metrics"
	"github.com/baoliay2008/lccn-predictor/internal/models"
)

// Concern names the four adapter kinds, used to build breaker names and
// metric labels alongside the region.
type Concern string

const (
	ConcernContest      Concern = "contest"
	ConcernRanking      Concern = "ranking"
	ConcernUserRating   Concern = "user_rating"
	ConcernPastContests Concern = "past_contests"
)

// breakerRegistry holds the 8 breakers (4 concerns x 2 regions), one per
// region per concern, using the same ReadyToTrip/OnStateChange wrapper
// shape as a single-breaker client but generalized to a per-call-site
// registry since this service has eight independent upstream call
// sites instead of just one.
type breakerRegistry struct {
	breakers map[string]*gobreaker.CircuitBreaker[[]byte]
}

func newBreakerRegistry() *breakerRegistry {
	r := &breakerRegistry{breakers: make(map[string]*gobreaker.CircuitBreaker[[]byte])}
	for _, concern := range []Concern{ConcernContest, ConcernRanking, ConcernUserRating, ConcernPastContests} {
		for _, region := range []models.DataRegion{models.RegionUS, models.RegionCN} {
			r.breakers[breakerName(concern, region)] = newBreaker(concern, region)
		}
	}
	return r
}

func breakerName(concern Concern, region models.DataRegion) string {
	return fmt.Sprintf("%s_%s", concern, region)
}

func (r *breakerRegistry) get(concern Concern, region models.DataRegion) *gobreaker.CircuitBreaker[[]byte] {
	return r.breakers[breakerName(concern, region)]
}

// newBreaker opens when at least 10 requests have been observed and 60%
// or more failed.
func newBreaker(concern Concern, region models.DataRegion) *gobreaker.CircuitBreaker[[]byte] {
	name := breakerName(concern, region)
	settings := gobreaker.Settings{
		Name: name,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	}
	return gobreaker.NewCircuitBreaker[[]byte](settings)
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// execute waits for the call site's rate limiter, then runs fn through
// the named breaker, recording the circuit_breaker_requests_total
// outcome metric. limiter may be nil in tests.
func execute(ctx context.Context, breaker *gobreaker.CircuitBreaker[[]byte], limiter *rate.Limiter, fn func(ctx context.Context) ([]byte, error)) ([]byte, error) {
	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	body, err := breaker.Execute(func() ([]byte, error) { return fn(ctx) })
	name := breaker.Name()
	switch {
	case err == nil:
		metrics.CircuitBreakerRequests.WithLabelValues(name, "success").Inc()
	case err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests:
		metrics.CircuitBreakerRequests.WithLabelValues(name, "rejected").Inc()
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(name, "failure").Inc()
	}
	return body, err
}

package lifecycle

import (
	"time"

	"github.com/baoliay2008/lccn-predictor/internal/cache"
	"github.com/baoliay2008/lccn-predictor/internal/rating"
	"github.com/baoliay2008/lccn-predictor/internal/store"
	"github.com/baoliay2008/lccn-predictor/internal/upstream"
)

// staleUserWindow bounds how recently a User row must have been refreshed
// to be reused instead of re-fetched: stale reads within 36h are reused
// to bound upstream load.
const staleUserWindow = 36 * time.Hour

// Handlers bundles every collaborator the contest lifecycle operations
// need: the repository interfaces, the upstream adapters, and the
// rating engine. Each method is an idempotent, composable unit of
// restart, split by the lifecycle stage it covers (contest, contest
// record, submission, user).
type Handlers struct {
	Contests    store.ContestStore
	Predicts    store.PredictRecordStore
	Archives    store.ArchiveRecordStore
	Users       store.UserStore
	Questions   store.QuestionStore
	Submissions store.SubmissionStore
	Aggregator  store.SubmissionAggregator
	Upstream    *upstream.Adapters
	Rating      rating.Solver

	// UserFreshness caches the last known UpdateTime per (region,
	// username), so a contest with thousands of repeat participants
	// doesn't re-query the User store on every refresh just to discover
	// the row is still within staleUserWindow. Nil disables the cache
	// and falls back to a store round-trip every time.
	UserFreshness *cache.LRUCache

	// Now returns the current time; overridable in tests.
	Now func() time.Time
}

func New(
	contests store.ContestStore,
	predicts store.PredictRecordStore,
	archives store.ArchiveRecordStore,
	users store.UserStore,
	questions store.QuestionStore,
	submissions store.SubmissionStore,
	aggregator store.SubmissionAggregator,
	up *upstream.Adapters,
	solver rating.Solver,
) *Handlers {
	return &Handlers{
		Contests: contests, Predicts: predicts, Archives: archives,
		Users: users, Questions: questions, Submissions: submissions,
		Aggregator: aggregator, Upstream: up, Rating: solver,
		Now: time.Now,
	}
}

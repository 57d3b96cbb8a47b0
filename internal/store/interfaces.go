// Package store defines the repository interfaces the lifecycle handlers
// and the read API depend on; nothing outside internal/store and
// internal/store/mongostore imports the document-store driver directly,
// per Design Note "Document-store coupling."
package store

import (
	"context"
	"time"

	"github.com/baoliay2008/lccn-predictor/internal/models"
)

// Page describes a ranged, sorted, skip/limit query shared by every list
// operation below.
type Page struct {
	Skip  int64
	Limit int64
}

// ContestStore covers Contest upserts and the bounded list/count queries
// the read API and the scheduler's "recent + next two" job need.
type ContestStore interface {
	Upsert(ctx context.Context, contest *models.Contest) error
	FindBySlug(ctx context.Context, titleSlug string) (*models.Contest, error)
	List(ctx context.Context, page Page) ([]models.Contest, error)
	Count(ctx context.Context) (int64, error)
	// RecentPast returns the n most recently started contests with
	// past == true, ordered by startTime descending.
	RecentPast(ctx context.Context, n int) ([]models.Contest, error)
	// Upcoming returns the n soonest contests with past == false, ordered
	// by startTime ascending.
	Upcoming(ctx context.Context, n int) ([]models.Contest, error)
	// UserNumLastTen returns the ten most recent contests for the
	// /contests/user-num-last-ten read-API endpoint, carrying just the
	// UserNumUS/UserNumCN attendance figures.
	UserNumLastTen(ctx context.Context) ([]models.Contest, error)
	// StampPredictTime sets Contest.PredictTime exactly once; callers must
	// check IsPredicted first for the frozen-predict invariant, but the
	// store itself also enforces it with a predict_time-is-null filter on
	// the update so a racing second call is a no-op.
	StampPredictTime(ctx context.Context, titleSlug string, at time.Time) error
}

// PredictRecordStore covers the per-contest predict snapshot rows.
type PredictRecordStore interface {
	// DeleteAllForContest removes every predict row for a contest before
	// a fresh ranking fetch is written, per the "delete-then-insert"
	// contract in savePredictContestRecords.
	DeleteAllForContest(ctx context.Context, contest string, region models.DataRegion) error
	InsertMany(ctx context.Context, records []models.ContestRecordPredict) error
	// NonZeroScoreSortedByRank returns every row with Score != 0 for a
	// contest, ordered by Rank ascending, the input vector shape the
	// rating engine requires.
	NonZeroScoreSortedByRank(ctx context.Context, contest string) ([]models.ContestRecordPredict, error)
	// WriteBack persists the rating-engine output for one row; a nil
	// predictTime error is returned if the row is already finalized.
	WriteBack(ctx context.Context, contest string, region models.DataRegion, username string, deltaRating, newRating float64, predictTime time.Time) error
	FindByUser(ctx context.Context, region models.DataRegion, username string, page Page) ([]models.ContestRecordPredict, error)
	Count(ctx context.Context, contest string) (int64, error)
}

// ArchiveRecordStore covers the mutable archive rows, refreshed
// repeatedly for the life of a contest and tombstone-swept by updateTime.
type ArchiveRecordStore interface {
	UpsertMany(ctx context.Context, records []models.ContestRecordArchive) error
	// TombstoneSweep deletes every row for a contest/region with
	// updateTime older than olderThan, clearing entries for participants
	// who dropped out of the latest ranking fetch.
	TombstoneSweep(ctx context.Context, contest string, region models.DataRegion, olderThan time.Time) (deleted int64, err error)
	FindByUser(ctx context.Context, region models.DataRegion, username string, page Page) ([]models.ContestRecordArchive, error)
	Count(ctx context.Context, contest string) (int64, error)
	// SetRealTimeRank overwrites the 90-length rank vector for one row.
	SetRealTimeRank(ctx context.Context, contest string, region models.DataRegion, username string, ranks []int) error
	// NonZeroScoreParticipants returns the (region, username) identity of
	// every archive row for a contest with Score != 0, the participant
	// universe save_real_time_rank seeds its per-user series map from.
	NonZeroScoreParticipants(ctx context.Context, contest string) ([]ParticipantKey, error)
}

// ParticipantKey identifies a participant within one data region.
type ParticipantKey struct {
	DataRegion models.DataRegion
	Username   string
}

// UserStore covers the authoritative rating table consumed by the next
// contest's predict stage.
type UserStore interface {
	Upsert(ctx context.Context, user *models.User) error
	Find(ctx context.Context, region models.DataRegion, username string) (*models.User, error)
	// FindOrDefault returns the stored user, or models.NewDefaultUser if
	// none exists yet.
	FindOrDefault(ctx context.Context, region models.DataRegion, username string) (models.User, error)
}

// QuestionStore covers the embedded-on-Contest question rows plus the
// finish-count vector refresh.
type QuestionStore interface {
	UpsertMany(ctx context.Context, contest string, questions []models.Question) error
	FindByContest(ctx context.Context, contest string) ([]models.Question, error)
	SetRealTimeCount(ctx context.Context, contest string, questionID int, counts []int) error
}

// SubmissionStore covers the raw per-question submission rows that both
// reconstruction paths replay.
type SubmissionStore interface {
	// Merge upserts a submission, combining FailCount and keeping the
	// latest accepted Date per (contest, region, username, questionID),
	// per saveSubmission's merge contract.
	Merge(ctx context.Context, sub *models.Submission) error
	FindByContest(ctx context.Context, contest string) ([]models.Submission, error)
	TombstoneSweep(ctx context.Context, contest string, olderThan time.Time) (deleted int64, err error)
}

// SubmissionAggregator is the shared contract both rank/question
// reconstruction paths satisfy (internal/reconstruct's pure-Go replay and
// mongostore's native aggregation pipeline), so lifecycle handlers can
// pick either without caring which one ran.
type SubmissionAggregator interface {
	// RankAtTimePoint returns username -> dense rank at the given grid
	// point, for every participant with a submission at or before t;
	// participants absent at t are not in the map (callers give them
	// lastRank+1).
	RankAtTimePoint(ctx context.Context, contest string, region models.DataRegion, t time.Time) (map[string]int, error)
	// QuestionFinishCounts returns questionID -> cumulative accepted count
	// at the given grid point.
	QuestionFinishCounts(ctx context.Context, contest string, region models.DataRegion, t time.Time) (map[int]int, error)
}

package lifecycle

import (
	"context"
	"fmt"

	"github.com/baoliay2008/lccn-predictor/internal/logging"
	"github.com/baoliay2008/lccn-predictor/internal/models"
	"github.com/baoliay2008/lccn-predictor/internal/reconstruct"
	"github.com/baoliay2008/lccn-predictor/internal/scheduler"
	"github.com/baoliay2008/lccn-predictor/internal/upstream"
)

// SaveArchiveContestRecords fetches the live ranking and submissions for
// a contest/region, upserts the archive rows, tombstone-sweeps stale
// entries, optionally refreshes every participant's User row, then
// persists submissions and the derived real-time series.
func (h *Handlers) SaveArchiveContestRecords(ctx context.Context, contest string, region models.DataRegion, saveUsers bool) error {
	timePoint := h.Now()

	rows, submissions, err := h.Upstream.FetchRanking(ctx, contest, region)
	if err != nil {
		return fmt.Errorf("lifecycle: fetch ranking for %s/%s: %w", contest, region, err)
	}

	records := make([]models.ContestRecordArchive, len(rows))
	usernames := make([]string, len(rows))
	for i, row := range rows {
		records[i] = models.ContestRecordArchive{
			ContestRecord: models.ContestRecord{
				Contest:     contest,
				DataRegion:  region,
				Username:    row.Username,
				UserSlug:    row.UserSlug,
				CountryCode: row.CountryCode,
				CountryName: row.CountryName,
				Rank:        row.Rank,
				Score:       row.Score,
				FinishTime:  epochSeconds(row.FinishTime),
			},
			UpdateTime: timePoint,
		}
		usernames[i] = row.Username
	}
	if err := h.Archives.UpsertMany(ctx, records); err != nil {
		return fmt.Errorf("lifecycle: upsert archive rows for %s/%s: %w", contest, region, err)
	}
	if _, err := h.Archives.TombstoneSweep(ctx, contest, region, timePoint); err != nil {
		logging.Warn().Str("contest", contest).Err(err).Msg("archive tombstone sweep failed")
	}

	if saveUsers {
		h.refreshUsers(ctx, region, usernames, false)
	} else {
		logging.Info().Str("contest", contest).Msg("save_users=false, will not refresh users")
	}

	return h.saveSubmission(ctx, contest, region, rows, submissions)
}

// saveSubmission persists per-question submissions (merging failCount and
// latest accepted date per user/question), tombstone-sweeps rows rejudged
// out since timePoint, then triggers the per-question finish-count and
// real-time-rank refresh.
func (h *Handlers) saveSubmission(ctx context.Context, contest string, region models.DataRegion, rows []upstream.RankingRowResponse, nested []map[string]upstream.SubmissionResponse) error {
	timePoint := h.Now()

	if err := h.SaveRecentAndNextTwoContests(ctx); err != nil {
		logging.Warn().Err(err).Msg("recent/next contest refresh failed during saveSubmission")
	}

	questions, err := h.Questions.FindByContest(ctx, contest)
	if err != nil {
		return fmt.Errorf("lifecycle: load questions for %s: %w", contest, err)
	}
	creditByQuestion := make(map[int]int, len(questions))
	for _, q := range questions {
		creditByQuestion[q.QuestionID] = q.Credit
	}

	for i, row := range rows {
		if i >= len(nested) {
			break
		}
		for _, sub := range nested[i] {
			submission := &models.Submission{
				Contest:    contest,
				DataRegion: region,
				Username:   row.Username,
				QuestionID: sub.QuestionID,
				Date:       epochSeconds(sub.Date),
				FailCount:  sub.FailCount,
				Credit:     creditByQuestion[sub.QuestionID],
				UpdateTime: timePoint,
			}
			if err := h.Submissions.Merge(ctx, submission); err != nil {
				logging.Warn().Str("contest", contest).Str("username", row.Username).Err(err).Msg("submission merge failed")
			}
		}
	}

	if _, err := h.Submissions.TombstoneSweep(ctx, contest, timePoint); err != nil {
		logging.Warn().Str("contest", contest).Err(err).Msg("submission tombstone sweep failed")
	}

	if err := h.saveQuestionsRealTimeCount(ctx, contest, region); err != nil {
		logging.Warn().Str("contest", contest).Err(err).Msg("question real-time count refresh failed")
	}
	if err := h.saveRealTimeRank(ctx, contest, region); err != nil {
		logging.Warn().Str("contest", contest).Err(err).Msg("real-time rank refresh failed")
	}
	return nil
}

func (h *Handlers) saveQuestionsRealTimeCount(ctx context.Context, contest string, region models.DataRegion) error {
	startTime, err := scheduler.ContestStartTime(contest)
	if err != nil {
		return err
	}
	questions, err := h.Questions.FindByContest(ctx, contest)
	if err != nil {
		return err
	}
	for _, q := range questions {
		counts, err := reconstruct.QuestionSeries(ctx, h.Aggregator, contest, region, startTime, q.QuestionID)
		if err != nil {
			logging.Warn().Str("contest", contest).Int("question_id", q.QuestionID).Err(err).Msg("question series computation failed")
			continue
		}
		if err := h.Questions.SetRealTimeCount(ctx, contest, q.QuestionID, counts); err != nil {
			logging.Warn().Str("contest", contest).Int("question_id", q.QuestionID).Err(err).Msg("question real-time count write failed")
		}
	}
	return nil
}

// saveRealTimeRank recomputes the 90-length real_time_rank vector for
// every non-zero-score participant.
func (h *Handlers) saveRealTimeRank(ctx context.Context, contest string, region models.DataRegion) error {
	startTime, err := scheduler.ContestStartTime(contest)
	if err != nil {
		return err
	}
	keys, err := h.Archives.NonZeroScoreParticipants(ctx, contest)
	if err != nil {
		return err
	}
	var participants []string
	for _, k := range keys {
		if k.DataRegion == region {
			participants = append(participants, k.Username)
		}
	}
	if len(participants) == 0 {
		return nil
	}

	series, err := reconstruct.MinuteSeries(ctx, h.Aggregator, contest, region, startTime, participants)
	if err != nil {
		return err
	}
	for username, ranks := range series {
		if err := h.Archives.SetRealTimeRank(ctx, contest, region, username, ranks); err != nil {
			logging.Warn().Str("contest", contest).Str("username", username).Err(err).Msg("real-time rank write failed")
		}
	}
	return nil
}

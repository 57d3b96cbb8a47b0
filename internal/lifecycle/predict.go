package lifecycle

import (
	"context"
	"fmt"
	"sync"

	"github.com/baoliay2008/lccn-predictor/internal/logging"
	"github.com/baoliay2008/lccn-predictor/internal/models"
	"github.com/baoliay2008/lccn-predictor/internal/upstream"
)

// userRefreshConcurrency bounds the gather-with-semaphore fan-out for
// refreshing User rows, using the same per-region caps internal/upstream
// applies to the user-rating GraphQL call site.
func userRefreshConcurrency(region models.DataRegion) int {
	if region == models.RegionCN {
		return 4
	}
	return 25
}

// SavePredictContestRecords fetches the full live ranking for a contest
// and region, replaces the predict snapshot wholesale, refreshes
// participants' User rows, then fills OldRating/AttendedContestsCount
// onto each non-zero-score row before persisting, with the insert
// ordered after the fill step instead of before it since the store has
// no update-in-place equivalent for a not-yet-inserted document. Once the
// contest's PredictTime is set it leaves the snapshot untouched.
func (h *Handlers) SavePredictContestRecords(ctx context.Context, contest string, region models.DataRegion) error {
	existing, err := h.Contests.FindBySlug(ctx, contest)
	if err != nil {
		return fmt.Errorf("lifecycle: load contest %s: %w", contest, err)
	}
	if existing != nil && existing.IsPredicted() {
		logging.Info().Str("contest", contest).Str("region", string(region)).Msg("predict already finalized, keeping predict rows")
		return nil
	}

	rows, _, err := h.Upstream.FetchRanking(ctx, contest, region)
	if err != nil {
		return fmt.Errorf("lifecycle: fetch ranking for %s/%s: %w", contest, region, err)
	}

	if err := h.Predicts.DeleteAllForContest(ctx, contest, region); err != nil {
		return fmt.Errorf("lifecycle: delete predict rows for %s/%s: %w", contest, region, err)
	}

	records := dedupeRankingRows(contest, region, rows)

	usernames := make([]string, 0, len(records))
	for _, r := range records {
		if r.Score != 0 {
			usernames = append(usernames, r.Username)
		}
	}
	h.refreshUsers(ctx, region, usernames, true)

	for i := range records {
		if records[i].Score == 0 {
			continue
		}
		user, err := h.Users.FindOrDefault(ctx, region, records[i].Username)
		if err != nil {
			logging.Warn().Str("contest", contest).Str("username", records[i].Username).Err(err).Msg("old rating lookup failed")
			user = models.NewDefaultUser(region, records[i].Username)
		}
		records[i].OldRating = user.Rating
		records[i].AttendedContestsCount = user.AttendedContestsCount
	}

	if err := h.Predicts.InsertMany(ctx, records); err != nil {
		return fmt.Errorf("lifecycle: insert predict rows for %s/%s: %w", contest, region, err)
	}
	return nil
}

// dedupeRankingRows drops duplicated (region, username) rows a
// mid-contest ranking fetch can return (the live leaderboard can shift
// between pages), keeping the first occurrence.
func dedupeRankingRows(contest string, region models.DataRegion, rows []upstream.RankingRowResponse) []models.ContestRecordPredict {
	seen := make(map[string]struct{}, len(rows))
	out := make([]models.ContestRecordPredict, 0, len(rows))
	for _, row := range rows {
		if _, dup := seen[row.Username]; dup {
			logging.Warn().Str("contest", contest).Str("username", row.Username).Msg("duplicated ranking row, skipped")
			continue
		}
		seen[row.Username] = struct{}{}
		out = append(out, models.ContestRecordPredict{
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
		})
	}
	return out
}

// refreshUsers upserts User rows for the given usernames in one region,
// fanned out with a region-sized semaphore. skipIfFresh applies the 36h
// staleness skip the predict path uses to bound upstream load; the
// archive path passes false since it has no such filter.
func (h *Handlers) refreshUsers(ctx context.Context, region models.DataRegion, usernames []string, skipIfFresh bool) {
	sem := make(chan struct{}, userRefreshConcurrency(region))
	var wg sync.WaitGroup

	for _, username := range usernames {
		if skipIfFresh {
			key := userFreshnessKey(region, username)
			if h.UserFreshness != nil {
				if updateTime, cached := h.UserFreshness.Get(key); cached && h.Now().Sub(updateTime) < staleUserWindow {
					continue
				}
			}
			existing, err := h.Users.Find(ctx, region, username)
			if err == nil && existing != nil {
				if h.Now().Sub(existing.UpdateTime) < staleUserWindow {
					if h.UserFreshness != nil {
						h.UserFreshness.Add(key, existing.UpdateTime)
					}
					continue
				}
			}
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(username string) {
			defer wg.Done()
			defer func() { <-sem }()
			h.refreshOneUser(ctx, region, username)
		}(username)
	}
	wg.Wait()
}

func (h *Handlers) refreshOneUser(ctx context.Context, region models.DataRegion, username string) {
	rating, attended, known, err := h.Upstream.FetchUserRating(ctx, region, username)
	if err != nil {
		logging.Warn().Str("username", username).Str("region", string(region)).Err(err).Msg("user rating fetch failed")
		return
	}
	user := models.NewDefaultUser(region, username)
	user.UserSlug = username
	if known {
		user.Rating = rating
		user.AttendedContestsCount = attended
	}
	user.UpdateTime = h.Now()
	if err := h.Users.Upsert(ctx, &user); err != nil {
		logging.Warn().Str("username", username).Err(err).Msg("user upsert failed")
		return
	}
	if h.UserFreshness != nil {
		h.UserFreshness.Add(userFreshnessKey(region, username), user.UpdateTime)
	}
}

func userFreshnessKey(region models.DataRegion, username string) string {
	return string(region) + "/" + username
}

// PredictContest loads the predict snapshot (score != 0, sorted by rank),
// runs the rating engine, writes back delta/new rating to each row, and
// stamps Contest.PredictTime. It is idempotent: StampPredictTime is a
// store-level no-op once already set, per the frozen-predict invariant.
// Biweekly contests immediately propagate new ratings into the User store
// since the following day's weekly pre-warm depends on them.
func (h *Handlers) PredictContest(ctx context.Context, contest string) error {
	existing, err := h.Contests.FindBySlug(ctx, contest)
	if err != nil {
		return fmt.Errorf("lifecycle: load contest %s: %w", contest, err)
	}
	if existing != nil && existing.IsPredicted() {
		logging.Info().Str("contest", contest).Msg("predict already finalized, skipping")
		return nil
	}

	records, err := h.Predicts.NonZeroScoreSortedByRank(ctx, contest)
	if err != nil {
		return fmt.Errorf("lifecycle: load predict rows for %s: %w", contest, err)
	}
	if len(records) == 0 {
		logging.Warn().Str("contest", contest).Msg("no non-zero-score predict rows, nothing to predict")
		return h.Contests.StampPredictTime(ctx, contest, h.Now())
	}

	ranks := make([]int, len(records))
	ratings := make([]float64, len(records))
	attended := make([]int, len(records))
	for i, r := range records {
		ranks[i] = r.Rank
		ratings[i] = r.OldRating
		attended[i] = r.AttendedContestsCount
	}
	deltas := h.Rating.Solve(ranks, ratings, attended)

	now := h.Now()
	isBiweekly := existing != nil && existing.IsBiweekly()
	for i, r := range records {
		newRating := r.OldRating + deltas[i]
		if err := h.Predicts.WriteBack(ctx, contest, r.DataRegion, r.Username, deltas[i], newRating, now); err != nil {
			logging.Warn().Str("contest", contest).Str("username", r.Username).Err(err).Msg("predict write-back failed")
			continue
		}
		if isBiweekly {
			user := models.User{
				DataRegion: r.DataRegion, Username: r.Username, UserSlug: r.UserSlug,
				Rating: newRating, AttendedContestsCount: r.AttendedContestsCount + 1,
				UpdateTime: now,
			}
			if err := h.Users.Upsert(ctx, &user); err != nil {
				logging.Warn().Str("contest", contest).Str("username", r.Username).Err(err).Msg("biweekly user propagation failed")
			}
		}
	}

	return h.Contests.StampPredictTime(ctx, contest, now)
}

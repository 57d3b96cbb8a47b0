package lifecycle

import (
	"context"
	"fmt"

	"github.com/baoliay2008/lccn-predictor/internal/logging"
	"github.com/baoliay2008/lccn-predictor/internal/models"
	"github.com/baoliay2008/lccn-predictor/internal/scheduler"
)

// SaveRecentAndNextTwoContests refreshes metadata for the ten most recent
// past contests plus the next weekly and biweekly contest. Past contests come
// from the pastContests GraphQL page 1 (ten rows); the next two contests
// are derived from the fixed weekly/biweekly anchors rather than scraping
// the contest homepage, since the anchor math already pins their slugs.
func (h *Handlers) SaveRecentAndNextTwoContests(ctx context.Context) error {
	now := h.Now()

	for _, slug := range []string{scheduler.NextWeeklyContestSlug(now), scheduler.NextBiweeklyContestSlug(now)} {
		if err := h.upsertUpcomingContest(ctx, slug); err != nil {
			logging.Warn().Str("contest", slug).Err(err).Msg("upcoming contest refresh failed")
		}
	}

	pastContests, err := h.Upstream.FetchPastContests(ctx, 1)
	if err != nil {
		return fmt.Errorf("lifecycle: fetch past contests: %w", err)
	}
	for _, pc := range pastContests {
		contest := &models.Contest{
			TitleSlug:  pc.TitleSlug,
			Title:      pc.Title,
			StartTime:  epochSeconds(pc.StartTime),
			Duration:   pc.Duration,
			Past:       true,
			UpdateTime: now,
		}
		if err := h.Contests.Upsert(ctx, contest); err != nil {
			logging.Warn().Str("contest", pc.TitleSlug).Err(err).Msg("past contest upsert failed")
		}
	}
	return nil
}

func (h *Handlers) upsertUpcomingContest(ctx context.Context, slug string) error {
	startTime, err := scheduler.ContestStartTime(slug)
	if err != nil {
		return err
	}
	contest := &models.Contest{
		TitleSlug:  slug,
		Title:      slug,
		StartTime:  startTime,
		Past:       false,
		UpdateTime: h.Now(),
	}
	return h.Contests.Upsert(ctx, contest)
}

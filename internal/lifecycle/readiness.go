package lifecycle

import (
	"context"
	"fmt"

	"github.com/baoliay2008/lccn-predictor/internal/logging"
	"github.com/baoliay2008/lccn-predictor/internal/models"
)

// ComposedPredict sequences the CN readiness poll, the predict snapshot,
// the rating-engine run, and a final non-user-refreshing CN archive save.
// CN predicting waits
// on US because US's leaderboard always finishes crawling first; if CN
// never reports ready within the poll window, PredictContest still runs
// against whatever CN ranking rows were fetched so the weekly/biweekly
// cadence never stalls on one slow region.
func (h *Handlers) ComposedPredict(ctx context.Context, contest string) error {
	ready := h.Upstream.PollCNDataReady(ctx, contest)
	if !ready {
		logging.Warn().Str("contest", contest).Msg("CN data not ready within poll window, predicting anyway")
	}

	if err := h.SavePredictContestRecords(ctx, contest, models.RegionCN); err != nil {
		return fmt.Errorf("lifecycle: composed predict, save predict records: %w", err)
	}
	if err := h.PredictContest(ctx, contest); err != nil {
		return fmt.Errorf("lifecycle: composed predict, predict: %w", err)
	}
	if err := h.SaveArchiveContestRecords(ctx, contest, models.RegionCN, false); err != nil {
		return fmt.Errorf("lifecycle: composed predict, save archive records: %w", err)
	}
	return nil
}

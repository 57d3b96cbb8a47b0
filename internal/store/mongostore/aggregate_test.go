package mongostore

import (
	"testing"
	"time"

	"github.com/baoliay2008/lccn-predictor/internal/models"
)

// TestRankAtTimePointPipelineStages checks the pipeline shape (stage
// names and match filter) without a live server; the tie-sharing pass
// that runs over the pipeline's output is covered by
// TestTieSharingDenseRank below using hand-built rows, since that's the
// part of RankAtTimePoint written in this package rather than delegated
// to the driver.
func TestRankAtTimePointPipelineStages(t *testing.T) {
	now := time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)
	pipeline := rankAtTimePointPipeline("weekly-contest-400", models.RegionUS, now)

	wantStages := []string{"$match", "$group", "$addFields", "$sort"}
	if len(pipeline) != len(wantStages) {
		t.Fatalf("pipeline has %d stages, want %d", len(pipeline), len(wantStages))
	}
	for i, stage := range pipeline {
		if len(stage) != 1 || string(stage[0].Key) != wantStages[i] {
			t.Errorf("stage %d = %q, want %q", i, stage[0].Key, wantStages[i])
		}
	}
}

func TestQuestionFinishCountsPipelineStages(t *testing.T) {
	now := time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)
	pipeline := questionFinishCountsPipeline("weekly-contest-400", models.RegionUS, now)

	wantStages := []string{"$match", "$group"}
	if len(pipeline) != len(wantStages) {
		t.Fatalf("pipeline has %d stages, want %d", len(pipeline), len(wantStages))
	}
}

// TestTieSharingDenseRank reproduces the dense-rank-with-ties loop inline
// since it's not separable from the live-cursor path in RankAtTimePoint;
// this pins the exact semantics: identical
// (creditSum, penaltyDate) rows share the first rank in their tie-group.
func TestTieSharingDenseRank(t *testing.T) {
	base := time.Date(2026, 7, 30, 10, 0, 0, 0, time.UTC)
	rows := []rankGroupRow{
		{CreditSum: 12, PenaltyDate: base},
		{CreditSum: 12, PenaltyDate: base},
		{CreditSum: 10, PenaltyDate: base.Add(5 * time.Minute)},
		{CreditSum: 8, PenaltyDate: base.Add(time.Minute)},
	}
	rows[0].ID.Username = "a"
	rows[1].ID.Username = "b"
	rows[2].ID.Username = "c"
	rows[3].ID.Username = "d"

	ranks := make(map[string]int, len(rows))
	rawRank := 0
	prevCredit := -1
	var prevPenalty time.Time
	tieRank := 0
	for _, row := range rows {
		rawRank++
		if rawRank == 1 || row.CreditSum != prevCredit || !row.PenaltyDate.Equal(prevPenalty) {
			tieRank = rawRank
		}
		ranks[row.ID.Username] = tieRank
		prevCredit = row.CreditSum
		prevPenalty = row.PenaltyDate
	}

	want := map[string]int{"a": 1, "b": 1, "c": 3, "d": 4}
	for user, rank := range want {
		if ranks[user] != rank {
			t.Errorf("rank[%s] = %d, want %d", user, ranks[user], rank)
		}
	}
}

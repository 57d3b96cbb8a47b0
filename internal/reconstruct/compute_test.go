package reconstruct

import (
	"context"
	"testing"
	"time"

	"github.com/baoliay2008/lccn-predictor/internal/models"
)

func mkSub(contest, username string, questionID, credit, failCount int, date time.Time) models.Submission {
	return models.Submission{
		Contest:    contest,
		DataRegion: models.RegionUS,
		Username:   username,
		QuestionID: questionID,
		Credit:     credit,
		FailCount:  failCount,
		Date:       date,
	}
}

func TestRankAtTimePointDenseRankWithTies(t *testing.T) {
	base := time.Date(2026, 7, 30, 10, 30, 0, 0, time.UTC)
	subs := []models.Submission{
		mkSub("weekly-contest-400", "alice", 1, 100, 0, base),
		mkSub("weekly-contest-400", "bob", 1, 100, 0, base),
		mkSub("weekly-contest-400", "carol", 1, 50, 1, base),
		mkSub("weekly-contest-400", "dave", 1, 25, 0, base),
	}
	r := NewReplayer(subs)

	ranks, err := r.RankAtTimePoint(context.Background(), "weekly-contest-400", models.RegionUS, base.Add(time.Hour))
	if err != nil {
		t.Fatalf("RankAtTimePoint returned error: %v", err)
	}

	if ranks["alice"] != 1 || ranks["bob"] != 1 {
		t.Errorf("alice/bob should tie for rank 1, got alice=%d bob=%d", ranks["alice"], ranks["bob"])
	}
	if ranks["carol"] != 3 {
		t.Errorf("carol rank = %d, want 3 (raw rank advances past the tie)", ranks["carol"])
	}
	if ranks["dave"] != 4 {
		t.Errorf("dave rank = %d, want 4", ranks["dave"])
	}
}

func TestRankAtTimePointPenaltyOrdering(t *testing.T) {
	base := time.Date(2026, 7, 30, 10, 30, 0, 0, time.UTC)
	subs := []models.Submission{
		// Same credit, but carol has a fail before her accept, pushing her
		// penaltyDate later, so she should rank below a clean solve.
		mkSub("weekly-contest-400", "alice", 1, 100, 0, base),
		mkSub("weekly-contest-400", "carol", 1, 100, 3, base),
	}
	r := NewReplayer(subs)

	ranks, err := r.RankAtTimePoint(context.Background(), "weekly-contest-400", models.RegionUS, base.Add(time.Hour))
	if err != nil {
		t.Fatalf("RankAtTimePoint returned error: %v", err)
	}
	if ranks["alice"] != 1 {
		t.Errorf("alice rank = %d, want 1", ranks["alice"])
	}
	if ranks["carol"] != 2 {
		t.Errorf("carol rank = %d, want 2 (penalty pushes her behind alice)", ranks["carol"])
	}
}

func TestQuestionFinishCounts(t *testing.T) {
	base := time.Date(2026, 7, 30, 10, 30, 0, 0, time.UTC)
	subs := []models.Submission{
		mkSub("weekly-contest-400", "alice", 1, 100, 0, base),
		mkSub("weekly-contest-400", "bob", 1, 100, 0, base.Add(10*time.Minute)),
		mkSub("weekly-contest-400", "carol", 2, 200, 0, base),
	}
	r := NewReplayer(subs)

	counts, err := r.QuestionFinishCounts(context.Background(), "weekly-contest-400", models.RegionUS, base.Add(5*time.Minute))
	if err != nil {
		t.Fatalf("QuestionFinishCounts returned error: %v", err)
	}
	if counts[1] != 1 {
		t.Errorf("question 1 count at t+5m = %d, want 1 (bob hasn't submitted yet)", counts[1])
	}
	if counts[2] != 1 {
		t.Errorf("question 2 count at t+5m = %d, want 1", counts[2])
	}

	countsLater, err := r.QuestionFinishCounts(context.Background(), "weekly-contest-400", models.RegionUS, base.Add(15*time.Minute))
	if err != nil {
		t.Fatalf("QuestionFinishCounts returned error: %v", err)
	}
	if countsLater[1] != 2 {
		t.Errorf("question 1 count at t+15m = %d, want 2", countsLater[1])
	}
}

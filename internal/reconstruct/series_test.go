package reconstruct

import (
	"context"
	"testing"
	"time"

	"github.com/baoliay2008/lccn-predictor/internal/models"
)

func TestMinuteSeriesLengthAndAbsenteeRank(t *testing.T) {
	start := time.Date(2026, 7, 30, 10, 30, 0, 0, time.UTC)
	subs := []models.Submission{
		// alice submits at minute 1 and is the only participant until
		// bob shows up at minute 50.
		mkSub("weekly-contest-400", "alice", 1, 100, 0, start.Add(time.Minute)),
		mkSub("weekly-contest-400", "bob", 1, 100, 0, start.Add(50*time.Minute)),
	}
	r := NewReplayer(subs)

	series, err := MinuteSeries(context.Background(), r, "weekly-contest-400", models.RegionUS, start, []string{"alice", "bob"})
	if err != nil {
		t.Fatalf("MinuteSeries returned error: %v", err)
	}

	if len(series["alice"]) != GridMinutes || len(series["bob"]) != GridMinutes {
		t.Fatalf("expected %d-length vectors, got alice=%d bob=%d", GridMinutes, len(series["alice"]), len(series["bob"]))
	}

	// Before bob joins, he's absent from the aggregation at every grid
	// point, so he gets lastRank+1 = 1+1 = 2 (only alice is active).
	if series["bob"][0] != 2 {
		t.Errorf("bob's rank at minute 1 = %d, want 2 (absent, lastRank+1)", series["bob"][0])
	}
	// Once bob has submitted, he has alice's credit but a later penalty
	// date (minute 50 against minute 1), so he ranks right behind her.
	if series["bob"][89] != 2 {
		t.Errorf("bob's rank at minute 90 = %d, want 2 (same credit as alice, later penalty date)", series["bob"][89])
	}
}

func TestQuestionSeriesMonotonic(t *testing.T) {
	start := time.Date(2026, 7, 30, 10, 30, 0, 0, time.UTC)
	subs := []models.Submission{
		mkSub("weekly-contest-400", "alice", 1, 100, 0, start.Add(10*time.Minute)),
		mkSub("weekly-contest-400", "bob", 1, 100, 0, start.Add(60*time.Minute)),
	}
	r := NewReplayer(subs)

	counts, err := QuestionSeries(context.Background(), r, "weekly-contest-400", models.RegionUS, start, 1)
	if err != nil {
		t.Fatalf("QuestionSeries returned error: %v", err)
	}
	if len(counts) != GridMinutes {
		t.Fatalf("len(counts) = %d, want %d", len(counts), GridMinutes)
	}
	if counts[5] != 0 {
		t.Errorf("counts[5] (minute 6) = %d, want 0 (alice submits at minute 10)", counts[5])
	}
	if counts[59] != 2 {
		t.Errorf("counts[59] (minute 60) = %d, want 2 (bob's submission at exactly minute 60 counts)", counts[59])
	}
	if counts[60] != 2 {
		t.Errorf("counts[60] (minute 61) = %d, want 2", counts[60])
	}
	for i := 1; i < len(counts); i++ {
		if counts[i] < counts[i-1] {
			t.Fatalf("counts must be non-decreasing, got decrease at index %d: %v", i, counts)
		}
	}
}

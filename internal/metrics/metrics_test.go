package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordFetchAttempt(t *testing.T) {
	RecordFetchAttempt("user_rating", "US", 50*time.Millisecond, false)
	if got := testutil.ToFloat64(FetchAttempts.WithLabelValues("user_rating", "US")); got < 1 {
		t.Fatalf("expected at least one attempt recorded, got %v", got)
	}

	RecordFetchAttempt("user_rating", "US", 50*time.Millisecond, true)
	if got := testutil.ToFloat64(FetchRetries.WithLabelValues("user_rating", "US")); got < 1 {
		t.Fatalf("expected at least one retry recorded, got %v", got)
	}
}

func TestRecordFetchExhausted(t *testing.T) {
	RecordFetchExhausted("ranking", "CN")
	if got := testutil.ToFloat64(FetchFailures.WithLabelValues("ranking", "CN")); got < 1 {
		t.Fatalf("expected at least one exhausted fetch recorded, got %v", got)
	}
}

func TestRecordRatingSolve(t *testing.T) {
	RecordRatingSolve("elo", 12000, 250*time.Millisecond)
	if got := testutil.ToFloat64(RatingSolveParticipants.WithLabelValues("elo")); got == 0 {
		t.Fatalf("expected participants histogram to observe a value")
	}
}

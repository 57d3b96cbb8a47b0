package models

import (
	"testing"
	"time"
)

func TestContestEndTimeInvariant(t *testing.T) {
	start := time.Date(2026, 7, 26, 2, 30, 0, 0, time.UTC)
	c := Contest{StartTime: start, Duration: 5400} // 90 minutes
	want := start.Add(90 * time.Minute)
	if got := c.EndTime(); !got.Equal(want) {
		t.Fatalf("EndTime() = %v, want %v", got, want)
	}
}

func TestContestIsPredicted(t *testing.T) {
	c := Contest{}
	if c.IsPredicted() {
		t.Fatal("zero-value Contest must not be predicted")
	}
	now := time.Now()
	c.PredictTime = &now
	if !c.IsPredicted() {
		t.Fatal("Contest with PredictTime set must report predicted")
	}
}

func TestContestIsBiweekly(t *testing.T) {
	cases := map[string]bool{
		"weekly-contest-338":   false,
		"biweekly-contest-100": true,
	}
	for slug, want := range cases {
		c := Contest{TitleSlug: slug}
		if got := c.IsBiweekly(); got != want {
			t.Errorf("IsBiweekly(%q) = %v, want %v", slug, got, want)
		}
	}
}

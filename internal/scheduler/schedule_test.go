package scheduler

import (
	"testing"
	"time"
)

func TestCurrentWeeklyContestSlugAtBaseline(t *testing.T) {
	got := CurrentWeeklyContestSlug(weeklyContestBase.dt)
	want := "weekly-contest-294"
	if got != want {
		t.Errorf("CurrentWeeklyContestSlug(baseline) = %q, want %q", got, want)
	}
}

func TestCurrentWeeklyContestSlugOneWeekLater(t *testing.T) {
	got := CurrentWeeklyContestSlug(weeklyContestBase.dt.AddDate(0, 0, 7))
	want := "weekly-contest-295"
	if got != want {
		t.Errorf("CurrentWeeklyContestSlug(+1wk) = %q, want %q", got, want)
	}
}

func TestCurrentBiweeklyContestSlugProgression(t *testing.T) {
	cases := []struct {
		offsetWeeks int
		want        string
	}{
		{0, "biweekly-contest-78"},
		{1, "biweekly-contest-78"},
		{2, "biweekly-contest-79"},
		{4, "biweekly-contest-80"},
	}
	for _, c := range cases {
		now := biweeklyContestBase.dt.AddDate(0, 0, 7*c.offsetWeeks)
		if got := CurrentBiweeklyContestSlug(now); got != c.want {
			t.Errorf("offsetWeeks=%d: CurrentBiweeklyContestSlug = %q, want %q", c.offsetWeeks, got, c.want)
		}
	}
}

func TestNextWeeklyContestSlug(t *testing.T) {
	got := NextWeeklyContestSlug(weeklyContestBase.dt)
	want := "weekly-contest-295"
	if got != want {
		t.Errorf("NextWeeklyContestSlug(baseline) = %q, want %q", got, want)
	}
}

func TestContestStartTimeRoundTrip(t *testing.T) {
	slug := "weekly-contest-300"
	start, err := ContestStartTime(slug)
	if err != nil {
		t.Fatalf("ContestStartTime(%q) error: %v", slug, err)
	}
	if got := CurrentWeeklyContestSlug(start); got != slug {
		t.Errorf("round trip: CurrentWeeklyContestSlug(ContestStartTime(%q)) = %q", slug, got)
	}
}

func TestContestStartTimeBiweekly(t *testing.T) {
	start, err := ContestStartTime("biweekly-contest-80")
	if err != nil {
		t.Fatalf("ContestStartTime error: %v", err)
	}
	want := biweeklyContestBase.dt.AddDate(0, 0, 7*2*(80-78))
	if !start.Equal(want) {
		t.Errorf("ContestStartTime(biweekly-contest-80) = %v, want %v", start, want)
	}
}

func TestContestStartTimeMalformedSlug(t *testing.T) {
	if _, err := ContestStartTime("not-a-contest"); err == nil {
		t.Fatal("expected an error for a malformed slug")
	}
}

func TestEvaluateTickWeeklyStart(t *testing.T) {
	now := time.Date(2022, 5, 29, 2, 30, 0, 0, time.UTC) // a Sunday, one week after baseline
	tick := EvaluateTick(now)
	if tick.WeeklyContest == "" {
		t.Fatal("expected WeeklyContest to fire at WEEKLY_START")
	}
	if tick.BiweeklyContest != "" {
		t.Errorf("unexpected BiweeklyContest=%q at a weekly tick", tick.BiweeklyContest)
	}
}

func TestEvaluateTickMaintenanceWindow(t *testing.T) {
	now := time.Date(2022, 5, 25, 0, 0, 0, 0, time.UTC) // a Wednesday
	tick := EvaluateTick(now)
	if !tick.Maintenance {
		t.Fatal("expected Maintenance to fire on Wednesday 00:00 UTC")
	}
}

func TestEvaluateTickOrdinaryMinuteIsQuiet(t *testing.T) {
	now := time.Date(2022, 5, 25, 12, 17, 0, 0, time.UTC)
	tick := EvaluateTick(now)
	if tick.WeeklyContest != "" || tick.BiweeklyContest != "" || tick.Maintenance {
		t.Errorf("expected a quiet tick, got %+v", tick)
	}
}

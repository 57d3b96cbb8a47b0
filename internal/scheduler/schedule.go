package scheduler

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// contestBase pins a contest number to the wall-clock time it started,
// anchored at a known baseline contest ("weekly-contest-294" /
// "biweekly-contest-78").
type contestBase struct {
	num int
	dt  time.Time
}

var (
	weeklyContestBase = contestBase{294, time.Date(2022, 5, 22, 2, 30, 0, 0, time.UTC)}
	biweeklyContestBase = contestBase{78, time.Date(2022, 5, 14, 14, 30, 0, 0, time.UTC)}
)

// ConfigureAnchors overrides the compiled-in weekly/biweekly baselines
// with the deployed instance's configured anchors (internal/config's
// SchedulerConfig). Call it once during startup, before any tick is
// evaluated; the package defaults above remain in effect for anything
// that calls the derivation functions without doing so first, which is
// what the package's own tests rely on.
func ConfigureAnchors(weeklyNum int, weeklyTime time.Time, biweeklyNum int, biweeklyTime time.Time) {
	weeklyContestBase = contestBase{weeklyNum, weeklyTime}
	biweeklyContestBase = contestBase{biweeklyNum, biweeklyTime}
}

// The weeklyStart* and biweeklyStart* values are the fixed (weekday,
// hour, minute) anchors for each contest cadence.
var (
	weeklyStartWeekday   = time.Sunday
	weeklyStartHour      = 2
	weeklyStartMinute    = 30
	biweeklyStartWeekday = time.Saturday
	biweeklyStartHour    = 14
	biweeklyStartMinute  = 30
)

// passedWeeks returns how many full 7-day periods have elapsed from base
// to t.
func passedWeeks(t, base time.Time) int {
	days := t.Sub(base).Hours() / 24
	weeks := int(days / 7)
	if days < 0 && float64(weeks)*7 != days {
		weeks--
	}
	return weeks
}

// CurrentWeeklyContestSlug returns the weekly contest whose scheduled
// start is the most recent WEEKLY_START at or before now.
func CurrentWeeklyContestSlug(now time.Time) string {
	return weeklyContestSlug(weeklyContestBase.num + passedWeeks(now, weeklyContestBase.dt))
}

// CurrentBiweeklyContestSlug returns the biweekly contest number derived
// from how many weekly periods have passed since the biweekly baseline,
// halved since biweekly contests occur every other week.
func CurrentBiweeklyContestSlug(now time.Time) string {
	weeks := passedWeeks(now, biweeklyContestBase.dt)
	return biweeklyContestSlug(biweeklyContestBase.num + weeks/2)
}

// NextWeeklyContestSlug returns the next weekly contest whose scheduled
// start is strictly after now.
func NextWeeklyContestSlug(now time.Time) string {
	return weeklyContestSlug(weeklyContestBase.num + passedWeeks(now, weeklyContestBase.dt) + 1)
}

// NextBiweeklyContestSlug returns the next biweekly contest whose
// scheduled start is strictly after now, honoring the every-other-week
// parity from the biweekly baseline.
func NextBiweeklyContestSlug(now time.Time) string {
	weeks := passedWeeks(now, biweeklyContestBase.dt)
	nextEvenWeeks := weeks + 2 - (weeks % 2)
	return biweeklyContestSlug(biweeklyContestBase.num + nextEvenWeeks/2)
}

// ContestStartTime derives a contest's scheduled start time from its
// slug: the number embedded in the slug projects forward/backward from
// the fixed baseline
// by whole weeks (or fortnights, for biweekly contests).
func ContestStartTime(slug string) (time.Time, error) {
	idx := strings.LastIndex(slug, "-")
	if idx < 0 {
		return time.Time{}, fmt.Errorf("scheduler: malformed contest slug %q", slug)
	}
	num, err := strconv.Atoi(slug[idx+1:])
	if err != nil {
		return time.Time{}, fmt.Errorf("scheduler: malformed contest slug %q: %w", slug, err)
	}
	if strings.HasPrefix(slug, "biweekly") {
		return biweeklyContestBase.dt.AddDate(0, 0, 7*2*(num-biweeklyContestBase.num)), nil
	}
	return weeklyContestBase.dt.AddDate(0, 0, 7*(num-weeklyContestBase.num)), nil
}

func weeklyContestSlug(num int) string {
	return "weekly-contest-" + itoa(num)
}

func biweeklyContestSlug(num int) string {
	return "biweekly-contest-" + itoa(num)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// maintenanceCron is the weekly window during which the "recent + next
// two contests" refresh job runs: midnight UTC on Wed/Thu/Fri/Sat.
var maintenanceCron = mustParseCron("0 0 * * 3,4,5,6")

func mustParseCron(expr string) *CronExpression {
	c, err := ParseCron(expr)
	if err != nil {
		panic(fmt.Sprintf("scheduler: invalid built-in cron expression %q: %v", expr, err))
	}
	return c
}

// Tick describes what, if anything, a 60-second scheduler tick at `now`
// should dispatch.
type Tick struct {
	WeeklyContest   string // non-empty when now == WEEKLY_START
	BiweeklyContest string // non-empty when now == BIWEEKLY_START and parity holds
	Maintenance     bool   // now is Wed/Thu/Fri/Sat 00:00 UTC
}

// EvaluateTick inspects now (expected to be UTC, truncated to the minute
// by the caller) and reports which jobs this tick should enqueue.
func EvaluateTick(now time.Time) Tick {
	var t Tick
	if now.Weekday() == weeklyStartWeekday && now.Hour() == weeklyStartHour && now.Minute() == weeklyStartMinute {
		t.WeeklyContest = CurrentWeeklyContestSlug(now)
	}
	if now.Weekday() == biweeklyStartWeekday && now.Hour() == biweeklyStartHour && now.Minute() == biweeklyStartMinute {
		if passedWeeks(now, biweeklyContestBase.dt)%2 == 0 {
			t.BiweeklyContest = CurrentBiweeklyContestSlug(now)
		}
	}
	t.Maintenance = maintenanceCron.Matches(now)
	return t
}

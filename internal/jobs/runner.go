// Package jobs wires the lifecycle handlers to the contest calendar on a
// ticking schedule, adapted from the newsletter scheduler's
// ticker-loop/running-flag idiom (the check-and-dispatch loop lives
// here rather than in internal/scheduler so the pure contest-calendar
// math in internal/scheduler can stay free of a dependency on
// internal/lifecycle).
package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/baoliay2008/lccn-predictor/internal/lifecycle"
	"github.com/baoliay2008/lccn-predictor/internal/logging"
	"github.com/baoliay2008/lccn-predictor/internal/models"
	"github.com/baoliay2008/lccn-predictor/internal/scheduler"
)

// Config mirrors the newsletter scheduler's tunables: a check interval
// and the fixed post-contest-start offsets the live crawl/predict
// pipeline fires at, each scheduled relative to the contest's start
// time.
type Config struct {
	CheckInterval  time.Duration
	PreWarmOffsets []time.Duration
	PredictOffset  time.Duration
}

// DefaultConfig returns the standard offsets: two leaderboard pre-warm
// passes at T+25m and T+70m, then the composed
// CN-ready-poll/predict/archive pipeline at T+95m.
func DefaultConfig() Config {
	return Config{
		CheckInterval:  time.Minute,
		PreWarmOffsets: []time.Duration{25 * time.Minute, 70 * time.Minute},
		PredictOffset:  95 * time.Minute,
	}
}

// Runner drives the lifecycle handlers on the weekly/biweekly contest
// cadence plus a maintenance window, adapted from the newsletter
// scheduler's ticker-loop/running-flag idiom.
type Runner struct {
	handlers *lifecycle.Handlers
	config   Config

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	dispatchedMu sync.Mutex
	dispatched   map[string]struct{}

	jobsWG sync.WaitGroup
}

func New(handlers *lifecycle.Handlers, config Config) *Runner {
	if config.CheckInterval <= 0 {
		config.CheckInterval = time.Minute
	}
	if config.PredictOffset <= 0 {
		config.PredictOffset = 95 * time.Minute
	}
	return &Runner{
		handlers:   handlers,
		config:     config,
		dispatched: make(map[string]struct{}),
	}
}

// Serve implements suture.Service.
func (r *Runner) Serve(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return fmt.Errorf("jobs: runner already started")
	}
	r.running = true
	r.stopCh = make(chan struct{})
	r.doneCh = make(chan struct{})
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
		close(r.doneCh)
	}()

	ticker := time.NewTicker(r.config.CheckInterval)
	defer ticker.Stop()

	r.checkAndExecute(ctx, r.handlers.Now())
	for {
		select {
		case <-ticker.C:
			r.checkAndExecute(ctx, r.handlers.Now())
		case <-ctx.Done():
			r.jobsWG.Wait()
			return ctx.Err()
		case <-r.stopCh:
			r.jobsWG.Wait()
			return nil
		}
	}
}

// Stop halts the ticker loop and blocks until in-flight one-shot jobs
// spawned by past ticks finish.
func (r *Runner) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()
	close(r.stopCh)
	<-r.doneCh
}

func (r *Runner) checkAndExecute(ctx context.Context, now time.Time) {
	tick := scheduler.EvaluateTick(now)

	if tick.WeeklyContest != "" {
		r.scheduleContestJobs(ctx, tick.WeeklyContest, models.RegionUS)
	}
	if tick.BiweeklyContest != "" {
		r.scheduleContestJobs(ctx, tick.BiweeklyContest, models.RegionUS)
	}
	if tick.Maintenance {
		r.runOnce(ctx, "maintenance:"+now.Format("2006-01-02"), lifecycle.Silence("refresh_recent_and_next_contests", r.handlers.SaveRecentAndNextTwoContests))
	}
}

// scheduleContestJobs fires the pre-warm and composed-predict jobs for a
// just-started contest at fixed offsets from its start time, via
// time.AfterFunc, tracked by r.jobsWG so Serve can drain them on
// shutdown. Each offset job is deduped per (contest, offset) so a missed
// tick that re-evaluates the same minute never double-schedules.
func (r *Runner) scheduleContestJobs(ctx context.Context, contest string, region models.DataRegion) {
	for _, offset := range r.config.PreWarmOffsets {
		offset := offset
		r.scheduleOnce(ctx, contest, offset, func() {
			job := lifecycle.Silence("save_predict_contest_records", func(ctx context.Context) error {
				return r.handlers.SavePredictContestRecords(ctx, contest, region)
			})
			_ = job(ctx)
		})
	}
	r.scheduleOnce(ctx, contest, r.config.PredictOffset, func() {
		job := lifecycle.Reraise("composed_predict", func(ctx context.Context) error {
			return r.handlers.ComposedPredict(ctx, contest)
		})
		_ = job(ctx)
	})
}

func (r *Runner) scheduleOnce(ctx context.Context, contest string, offset time.Duration, fn func()) {
	key := fmt.Sprintf("%s@%s", contest, offset)
	r.dispatchedMu.Lock()
	if _, already := r.dispatched[key]; already {
		r.dispatchedMu.Unlock()
		return
	}
	r.dispatched[key] = struct{}{}
	r.dispatchedMu.Unlock()

	startTime, err := scheduler.ContestStartTime(contest)
	if err != nil {
		logging.Warn().Str("contest", contest).Err(err).Msg("jobs: cannot derive contest start time")
		return
	}
	delay := startTime.Add(offset).Sub(r.handlers.Now())
	if delay < 0 {
		delay = 0
	}

	r.jobsWG.Add(1)
	timer := time.AfterFunc(delay, func() {
		defer r.jobsWG.Done()
		fn()
	})
	go func() {
		<-ctx.Done()
		if timer.Stop() {
			r.jobsWG.Done()
		}
	}()
}

func (r *Runner) runOnce(ctx context.Context, key string, job lifecycle.Job) {
	r.dispatchedMu.Lock()
	if _, already := r.dispatched[key]; already {
		r.dispatchedMu.Unlock()
		return
	}
	r.dispatched[key] = struct{}{}
	r.dispatchedMu.Unlock()

	r.jobsWG.Add(1)
	go func() {
		defer r.jobsWG.Done()
		_ = job(ctx)
	}()
}

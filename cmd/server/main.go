// Package main is the entry point for the lccn-predictor service: a
// contest-calendar job runner that crawls the LeetCode ranking API on a
// fixed post-contest schedule, reconstructs per-minute rank and
// finish-count histories, predicts Elo-style rating deltas, and exposes
// the results over a read-only HTTP API.
//
// # Application architecture
//
// The process wires its dependencies in one linear pass and hands the
// two long-running services (the contest-calendar job runner and the
// HTTP server) to a suture supervisor tree:
//
//  1. Configuration: koanf v2, layered defaults/file/env (internal/config)
//  2. Logging: zerolog global logger (internal/logging)
//  3. Storage: MongoDB connection + index bootstrap (internal/store/mongostore)
//  4. Upstream adapters: circuit-broken, rate-limited LeetCode API clients
//  5. Lifecycle handlers: the crawl/predict/archive operations
//  6. Job runner: dispatches lifecycle operations on the contest calendar
//  7. HTTP server: the read-only API, supervised alongside the job runner
//
// # Signal handling
//
// The process exits only on SIGINT or SIGTERM, draining in-flight jobs
// and closing the MongoDB connection before returning.
package main

import (
	"context"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/baoliay2008/lccn-predictor/internal/api"
	"github.com/baoliay2008/lccn-predictor/internal/cache"
	"github.com/baoliay2008/lccn-predictor/internal/config"
	"github.com/baoliay2008/lccn-predictor/internal/fetchqueue"
	"github.com/baoliay2008/lccn-predictor/internal/jobs"
	"github.com/baoliay2008/lccn-predictor/internal/lifecycle"
	"github.com/baoliay2008/lccn-predictor/internal/logging"
	"github.com/baoliay2008/lccn-predictor/internal/rating"
	"github.com/baoliay2008/lccn-predictor/internal/scheduler"
	"github.com/baoliay2008/lccn-predictor/internal/store/mongostore"
	"github.com/baoliay2008/lccn-predictor/internal/supervisor"
	"github.com/baoliay2008/lccn-predictor/internal/upstream"
)

func main() {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().Str("db", cfg.MongoDB.DB).Msg("starting lccn-predictor")

	scheduler.ConfigureAnchors(
		cfg.Scheduler.WeeklyBaseContestNumber, cfg.Scheduler.WeeklyBaseTime,
		cfg.Scheduler.BiweeklyBaseContestNumber, cfg.Scheduler.BiweeklyBaseTime,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	dialCtx, dialCancel := context.WithTimeout(ctx, 30*time.Second)
	db, err := mongostore.Dial(dialCtx, cfg.MongoDB)
	dialCancel()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer closeCancel()
		if err := db.Close(closeCtx); err != nil {
			logging.Error().Err(err).Msg("error closing mongodb connection")
		}
	}()

	if err := db.EnsureIndexes(ctx); err != nil {
		logging.Fatal().Err(err).Msg("failed to ensure mongodb indexes")
	}
	logging.Info().Msg("mongodb connection established")

	httpClient := &http.Client{Timeout: 30 * time.Second}
	queue := fetchqueue.New(httpClient, "leetcode")
	adapters := upstream.NewAdapters(queue)

	handlers := lifecycle.New(
		db.Contests, db.Predicts, db.Archives, db.Users, db.Questions, db.Submissions,
		db.Aggregator, adapters, rating.EloSolver{},
	)
	handlers.UserFreshness = cache.NewLRUCache(cfg.Cache.UserRatingCapacity, cfg.Cache.UserRatingTTL)

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to build supervisor tree")
	}

	runnerConfig := jobs.Config{
		CheckInterval:  time.Minute,
		PreWarmOffsets: []time.Duration{cfg.Scheduler.PreWarmOffsetFirst, cfg.Scheduler.PreWarmOffsetSecond},
		PredictOffset:  cfg.Scheduler.ComposedPredictOffset,
	}
	tree.AddMessagingService(jobs.New(handlers, runnerConfig))

	router := api.NewRouter(api.Deps{
		Contests:     db.Contests,
		Predicts:     db.Predicts,
		Archives:     db.Archives,
		Questions:    db.Questions,
		AllowOrigins: cfg.CORS.AllowOrigins,
	})
	tree.AddAPIService(&httpService{
		addr:   cfg.Server.Host + ":" + strconv.Itoa(cfg.Server.Port),
		router: router,
	})

	logging.Info().Int("port", cfg.Server.Port).Msg("serving read API")
	if err := tree.Serve(ctx); err != nil && ctx.Err() == nil {
		logging.Fatal().Err(err).Msg("supervisor tree exited with error")
	}
	logging.Info().Msg("lccn-predictor shut down cleanly")
}

// httpService adapts net/http's ListenAndServe/Shutdown pair to
// suture.Service for the API-layer supervisor.
type httpService struct {
	addr   string
	router http.Handler
}

func (s *httpService) Serve(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.router}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	}
}

// Package api exposes the read-only HTTP surface over the predictor's
// stores, routed with go-chi/chi (ADR-style routing grounded on the
// teacher's chi_router.go) plus go-chi/cors for the public dashboard's
// cross-origin access.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/baoliay2008/lccn-predictor/internal/store"
)

// Deps bundles the repository interfaces the read API queries. Nothing
// here depends on the document-store driver directly.
type Deps struct {
	Contests  store.ContestStore
	Predicts  store.PredictRecordStore
	Archives  store.ArchiveRecordStore
	Questions store.QuestionStore

	AllowOrigins []string
}

// NewRouter builds the chi mux for the read-only HTTP surface.
func NewRouter(deps Deps) http.Handler {
	h := &handler{deps: deps}

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(15 * time.Second))
	r.Use(httprate.LimitByIP(120, time.Minute))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowOriginsOrDefault(deps.AllowOrigins),
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/contests", h.listContests)
	r.Get("/contests/count", h.countContests)
	r.Get("/contests/user-num-last-ten", h.userNumLastTen)

	r.Get("/contest-records", h.listArchiveRecords)
	r.Get("/contest-records/count", h.countArchiveRecords)
	r.Post("/contest-records/user", h.archiveRecordsForUser)
	r.Post("/contest-records/predicted-rating", h.predictedRatingForUser)
	r.Post("/contest-records/real-time-rank", h.realTimeRankForContest)

	r.Post("/questions", h.questionsForContest)

	r.Handle("/metrics", promhttp.Handler())

	return r
}

func allowOriginsOrDefault(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

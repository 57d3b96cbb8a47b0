package api

import (
	"github.com/goccy/go-json"
	"net/http"
	"strconv"

	"github.com/baoliay2008/lccn-predictor/internal/logging"
	"github.com/baoliay2008/lccn-predictor/internal/models"
	"github.com/baoliay2008/lccn-predictor/internal/store"
)

type handler struct {
	deps Deps
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Error().Err(err).Msg("api: failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	http.Error(w, msg, status)
}

// pageFromQuery reads the "skip"/"limit" query parameters shared by every
// list endpoint, defaulting limit to 10 the way the dashboard's paged
// tables expect.
func pageFromQuery(r *http.Request) store.Page {
	q := r.URL.Query()
	page := store.Page{Skip: 0, Limit: 10}
	if v := q.Get("skip"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n >= 0 {
			page.Skip = n
		}
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			page.Limit = n
		}
	}
	return page
}

func (h *handler) listContests(w http.ResponseWriter, r *http.Request) {
	contests, err := h.deps.Contests.List(r.Context(), pageFromQuery(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list contests")
		return
	}
	writeJSON(w, http.StatusOK, contests)
}

func (h *handler) countContests(w http.ResponseWriter, r *http.Request) {
	count, err := h.deps.Contests.Count(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to count contests")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"count": count})
}

func (h *handler) userNumLastTen(w http.ResponseWriter, r *http.Request) {
	contests, err := h.deps.Contests.UserNumLastTen(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load attendance history")
		return
	}
	writeJSON(w, http.StatusOK, contests)
}

// userQuery is the body shape shared by the two POST endpoints that key
// off a (region, username) pair.
type userQuery struct {
	DataRegion models.DataRegion `json:"dataRegion"`
	Username   string            `json:"username"`
	Skip       int64             `json:"skip"`
	Limit      int64             `json:"limit"`
}

func decodeUserQuery(r *http.Request) (userQuery, error) {
	var q userQuery
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		return userQuery{}, err
	}
	if q.Limit <= 0 {
		q.Limit = 10
	}
	return q, nil
}

func (h *handler) listArchiveRecords(w http.ResponseWriter, r *http.Request) {
	contest := r.URL.Query().Get("contest")
	region := models.DataRegion(r.URL.Query().Get("dataRegion"))
	if contest == "" || !region.Valid() {
		writeError(w, http.StatusBadRequest, "contest and a valid dataRegion are required")
		return
	}
	keys, err := h.deps.Archives.NonZeroScoreParticipants(r.Context(), contest)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list contest records")
		return
	}
	var records []models.ContestRecordArchive
	for _, k := range keys {
		if k.DataRegion != region {
			continue
		}
		rows, err := h.deps.Archives.FindByUser(r.Context(), region, k.Username, store.Page{Skip: 0, Limit: 1})
		if err != nil || len(rows) == 0 {
			continue
		}
		for _, row := range rows {
			if row.Contest == contest {
				records = append(records, row)
			}
		}
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *handler) countArchiveRecords(w http.ResponseWriter, r *http.Request) {
	contest := r.URL.Query().Get("contest")
	if contest == "" {
		writeError(w, http.StatusBadRequest, "contest is required")
		return
	}
	count, err := h.deps.Archives.Count(r.Context(), contest)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to count contest records")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"count": count})
}

func (h *handler) archiveRecordsForUser(w http.ResponseWriter, r *http.Request) {
	q, err := decodeUserQuery(r)
	if err != nil || !q.DataRegion.Valid() || q.Username == "" {
		writeError(w, http.StatusBadRequest, "a valid dataRegion and username are required")
		return
	}
	records, err := h.deps.Archives.FindByUser(r.Context(), q.DataRegion, q.Username, store.Page{Skip: q.Skip, Limit: q.Limit})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load contest records")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *handler) predictedRatingForUser(w http.ResponseWriter, r *http.Request) {
	q, err := decodeUserQuery(r)
	if err != nil || !q.DataRegion.Valid() || q.Username == "" {
		writeError(w, http.StatusBadRequest, "a valid dataRegion and username are required")
		return
	}
	records, err := h.deps.Predicts.FindByUser(r.Context(), q.DataRegion, q.Username, store.Page{Skip: q.Skip, Limit: q.Limit})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load predicted ratings")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// realTimeRankQuery is the body shape for the in-contest leaderboard
// endpoint: every participant's rank vector for one contest/region.
type realTimeRankQuery struct {
	Contest    string            `json:"contest"`
	DataRegion models.DataRegion `json:"dataRegion"`
}

func (h *handler) realTimeRankForContest(w http.ResponseWriter, r *http.Request) {
	var q realTimeRankQuery
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil || q.Contest == "" || !q.DataRegion.Valid() {
		writeError(w, http.StatusBadRequest, "contest and a valid dataRegion are required")
		return
	}
	keys, err := h.deps.Archives.NonZeroScoreParticipants(r.Context(), q.Contest)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load real-time rank")
		return
	}
	records := make([]models.ContestRecordArchive, 0, len(keys))
	for _, k := range keys {
		if k.DataRegion != q.DataRegion {
			continue
		}
		rows, err := h.deps.Archives.FindByUser(r.Context(), q.DataRegion, k.Username, store.Page{Skip: 0, Limit: 1})
		if err != nil {
			continue
		}
		for _, row := range rows {
			if row.Contest == q.Contest {
				records = append(records, row)
			}
		}
	}
	writeJSON(w, http.StatusOK, records)
}

// questionsQuery is the body shape for the per-contest question list,
// carrying each question's real-time finish-count curve.
type questionsQuery struct {
	Contest string `json:"contest"`
}

func (h *handler) questionsForContest(w http.ResponseWriter, r *http.Request) {
	var q questionsQuery
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil || q.Contest == "" {
		writeError(w, http.StatusBadRequest, "contest is required")
		return
	}
	questions, err := h.deps.Questions.FindByContest(r.Context(), q.Contest)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load questions")
		return
	}
	writeJSON(w, http.StatusOK, questions)
}

package lifecycle

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/baoliay2008/lccn-predictor/internal/cache"
	"github.com/baoliay2008/lccn-predictor/internal/fetchqueue"
	"github.com/baoliay2008/lccn-predictor/internal/models"
	"github.com/baoliay2008/lccn-predictor/internal/store"
	"github.com/baoliay2008/lccn-predictor/internal/upstream"
)

// fakeDoer returns a canned JSON body for any request whose URL contains
// a matching substring, standing in for the real upstream over HTTP.
type fakeDoer struct {
	byURLSubstring map[string]string
}

func (d fakeDoer) Do(req *http.Request) (*http.Response, error) {
	for substr, body := range d.byURLSubstring {
		if strings.Contains(req.URL.String(), substr) {
			return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader(body))}, nil
		}
	}
	return &http.Response{StatusCode: http.StatusNotFound, Body: http.NoBody}, nil
}

// --- fake stores, in-memory, grounded on mongostore's repository shape ---

type fakeContestStore struct {
	mu       sync.Mutex
	byName   map[string]*models.Contest
}

func newFakeContestStore() *fakeContestStore {
	return &fakeContestStore{byName: make(map[string]*models.Contest)}
}

func (f *fakeContestStore) Upsert(ctx context.Context, c *models.Contest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *c
	f.byName[c.TitleSlug] = &cp
	return nil
}
func (f *fakeContestStore) FindBySlug(ctx context.Context, slug string) (*models.Contest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.byName[slug]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}
func (f *fakeContestStore) List(ctx context.Context, p store.Page) ([]models.Contest, error) { return nil, nil }
func (f *fakeContestStore) Count(ctx context.Context) (int64, error)                         { return 0, nil }
func (f *fakeContestStore) RecentPast(ctx context.Context, n int) ([]models.Contest, error)   { return nil, nil }
func (f *fakeContestStore) Upcoming(ctx context.Context, n int) ([]models.Contest, error)      { return nil, nil }
func (f *fakeContestStore) UserNumLastTen(ctx context.Context) ([]models.Contest, error)       { return nil, nil }
func (f *fakeContestStore) StampPredictTime(ctx context.Context, slug string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byName[slug]
	if !ok {
		c = &models.Contest{TitleSlug: slug}
		f.byName[slug] = c
	}
	if c.PredictTime != nil {
		return nil
	}
	t := at
	c.PredictTime = &t
	return nil
}

type fakePredictStore struct {
	mu      sync.Mutex
	records []models.ContestRecordPredict
}

func (f *fakePredictStore) DeleteAllForContest(ctx context.Context, contest string, region models.DataRegion) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.records[:0]
	for _, r := range f.records {
		if r.Contest != contest || r.DataRegion != region {
			out = append(out, r)
		}
	}
	f.records = out
	return nil
}
func (f *fakePredictStore) InsertMany(ctx context.Context, records []models.ContestRecordPredict) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, records...)
	return nil
}
func (f *fakePredictStore) NonZeroScoreSortedByRank(ctx context.Context, contest string) ([]models.ContestRecordPredict, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ContestRecordPredict
	for _, r := range f.records {
		if r.Contest == contest && r.Score != 0 {
			out = append(out, r)
		}
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Rank < out[j-1].Rank; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out, nil
}
func (f *fakePredictStore) WriteBack(ctx context.Context, contest string, region models.DataRegion, username string, delta, newRating float64, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.records {
		r := &f.records[i]
		if r.Contest == contest && r.DataRegion == region && r.Username == username {
			d, nr, t := delta, newRating, at
			r.DeltaRating = &d
			r.NewRating = &nr
			r.PredictTime = &t
		}
	}
	return nil
}
func (f *fakePredictStore) FindByUser(ctx context.Context, region models.DataRegion, username string, p store.Page) ([]models.ContestRecordPredict, error) {
	return nil, nil
}
func (f *fakePredictStore) Count(ctx context.Context, contest string) (int64, error) { return 0, nil }

type fakeUserStore struct {
	mu        sync.Mutex
	users     map[string]models.User
	findCalls int
}

func newFakeUserStore() *fakeUserStore { return &fakeUserStore{users: make(map[string]models.User)} }

func userKey(region models.DataRegion, username string) string { return string(region) + "/" + username }

func (f *fakeUserStore) Upsert(ctx context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[userKey(u.DataRegion, u.Username)] = *u
	return nil
}
func (f *fakeUserStore) Find(ctx context.Context, region models.DataRegion, username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.findCalls++
	if u, ok := f.users[userKey(region, username)]; ok {
		return &u, nil
	}
	return nil, nil
}
func (f *fakeUserStore) FindOrDefault(ctx context.Context, region models.DataRegion, username string) (models.User, error) {
	u, err := f.Find(ctx, region, username)
	if err != nil {
		return models.User{}, err
	}
	if u == nil {
		return models.NewDefaultUser(region, username), nil
	}
	return *u, nil
}

// --- tests ---

func TestDedupeRankingRowsDropsDuplicateUsernames(t *testing.T) {
	rows := []upstream.RankingRowResponse{
		{Username: "alice", Rank: 1, Score: 12},
		{Username: "bob", Rank: 2, Score: 9},
		{Username: "alice", Rank: 1, Score: 12},
	}
	out := dedupeRankingRows("weekly-contest-300", models.RegionUS, rows)
	if len(out) != 2 {
		t.Fatalf("len(out) = %d, want 2", len(out))
	}
}

func TestPredictContestAssignsDeltasAndStampsPredictTime(t *testing.T) {
	contests := newFakeContestStore()
	predicts := &fakePredictStore{}
	users := newFakeUserStore()

	predicts.records = []models.ContestRecordPredict{
		{ContestRecord: models.ContestRecord{Contest: "weekly-contest-300", DataRegion: models.RegionUS, Username: "alice", Rank: 1, Score: 12}, OldRating: 1500},
		{ContestRecord: models.ContestRecord{Contest: "weekly-contest-300", DataRegion: models.RegionUS, Username: "bob", Rank: 2, Score: 9}, OldRating: 1500},
	}

	h := &Handlers{
		Contests: contests,
		Predicts: predicts,
		Users:    users,
		Rating:   stubSolver{},
		Now:      func() time.Time { return time.Date(2026, 7, 30, 3, 0, 0, 0, time.UTC) },
	}

	if err := h.PredictContest(context.Background(), "weekly-contest-300"); err != nil {
		t.Fatalf("PredictContest returned error: %v", err)
	}

	c, err := contests.FindBySlug(context.Background(), "weekly-contest-300")
	if err != nil || c == nil || c.PredictTime == nil {
		t.Fatalf("expected PredictTime to be stamped, contest=%+v err=%v", c, err)
	}

	if predicts.records[0].NewRating == nil {
		t.Error("expected NewRating to be written back for alice")
	}

	// idempotent: a second call must not change PredictTime or re-run the solver
	firstStamp := *c.PredictTime
	if err := h.PredictContest(context.Background(), "weekly-contest-300"); err != nil {
		t.Fatalf("second PredictContest call returned error: %v", err)
	}
	c2, _ := contests.FindBySlug(context.Background(), "weekly-contest-300")
	if !c2.PredictTime.Equal(firstStamp) {
		t.Error("expected PredictTime to stay frozen across a second call")
	}
}

func TestPredictContestNoRecordsStillStampsPredictTime(t *testing.T) {
	contests := newFakeContestStore()
	predicts := &fakePredictStore{}
	h := &Handlers{
		Contests: contests,
		Predicts: predicts,
		Users:    newFakeUserStore(),
		Rating:   stubSolver{},
		Now:      func() time.Time { return time.Now() },
	}
	if err := h.PredictContest(context.Background(), "weekly-contest-301"); err != nil {
		t.Fatalf("PredictContest returned error: %v", err)
	}
	c, _ := contests.FindBySlug(context.Background(), "weekly-contest-301")
	if c == nil || c.PredictTime == nil {
		t.Fatal("expected PredictTime stamped even with zero non-zero-score rows")
	}
}

func TestRefreshUsersConsultsFreshnessCacheBeforeTheStore(t *testing.T) {
	users := newFakeUserStore()
	now := time.Date(2026, 7, 30, 3, 0, 0, 0, time.UTC)
	_ = users.Upsert(context.Background(), &models.User{DataRegion: models.RegionUS, Username: "alice", Rating: 1600, UpdateTime: now.Add(-time.Hour)})

	h := &Handlers{
		Users:         users,
		UserFreshness: cache.NewLRUCache(100, time.Hour),
		Now:           func() time.Time { return now },
	}

	h.refreshUsers(context.Background(), models.RegionUS, []string{"alice"}, true)
	if users.findCalls != 1 {
		t.Fatalf("findCalls after first refresh = %d, want 1", users.findCalls)
	}

	h.refreshUsers(context.Background(), models.RegionUS, []string{"alice"}, true)
	if users.findCalls != 1 {
		t.Fatalf("findCalls after second refresh = %d, want 1 (cache should have short-circuited the store lookup)", users.findCalls)
	}
}

type stubSolver struct{}

func (stubSolver) Solve(rank []int, rating []float64, attended []int) []float64 {
	deltas := make([]float64, len(rank))
	for i := range deltas {
		deltas[i] = 10
	}
	return deltas
}

func TestSavePredictContestRecordsFillsOldRatingFromUserStore(t *testing.T) {
	contests := newFakeContestStore()
	predicts := &fakePredictStore{}
	users := newFakeUserStore()
	_ = users.Upsert(context.Background(), &models.User{DataRegion: models.RegionUS, Username: "alice", Rating: 1800, AttendedContestsCount: 3, UpdateTime: time.Now()})

	page, _ := json.Marshal(upstream.RankingPageResponse{
		UserNum: 2,
		TotalRank: []upstream.RankingRowResponse{
			{Username: "alice", Rank: 1, Score: 12},
			{Username: "bob", Rank: 2, Score: 9},
		},
	})
	doer := fakeDoer{byURLSubstring: map[string]string{"contest/api/ranking": string(page)}}
	adapters := upstream.NewAdapters(fetchqueue.New(doer, "test"))

	h := &Handlers{
		Contests: contests,
		Predicts: predicts,
		Users:    users,
		Upstream: adapters,
		Rating:   stubSolver{},
		Now:      func() time.Time { return time.Date(2026, 7, 30, 3, 0, 0, 0, time.UTC) },
	}

	if err := h.SavePredictContestRecords(context.Background(), "weekly-contest-300", models.RegionUS); err != nil {
		t.Fatalf("SavePredictContestRecords returned error: %v", err)
	}

	var alice *models.ContestRecordPredict
	for i := range predicts.records {
		if predicts.records[i].Username == "alice" {
			alice = &predicts.records[i]
		}
	}
	if alice == nil {
		t.Fatal("expected an alice predict row")
	}
	if alice.OldRating != 1800 {
		t.Errorf("OldRating = %v, want 1800 (carried over from the user store)", alice.OldRating)
	}
}

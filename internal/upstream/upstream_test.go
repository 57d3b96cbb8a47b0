package upstream

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/baoliay2008/lccn-predictor/internal/fetchqueue"
	"github.com/baoliay2008/lccn-predictor/internal/models"
)

// scriptedDoer returns a canned JSON body for every request whose URL
// contains a matching substring key, letting each test fake exactly the
// upstream shape it cares about without a real network call.
type scriptedDoer struct {
	byURLSubstring map[string]string
}

func (d *scriptedDoer) Do(req *http.Request) (*http.Response, error) {
	for substr, body := range d.byURLSubstring {
		if strings.Contains(req.URL.String(), substr) {
			return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader(body))}, nil
		}
	}
	return &http.Response{StatusCode: http.StatusNotFound, Body: http.NoBody}, nil
}

func newTestAdapters(doer *scriptedDoer) *Adapters {
	return NewAdapters(fetchqueue.New(doer, "test"))
}

func TestFetchContestInfoSubstitutesEnglishTitleForCN(t *testing.T) {
	body, _ := json.Marshal(ContestInfoResponse{
		UserNum: 10,
		Questions: []QuestionResponse{
			{QuestionID: 1, Credit: 3, Title: "两数之和", EnglishTitle: "Two Sum"},
		},
	})
	doer := &scriptedDoer{byURLSubstring: map[string]string{"contest/api/info": string(body)}}
	a := newTestAdapters(doer)

	info, err := a.FetchContestInfo(context.Background(), "weekly-contest-400", models.RegionCN)
	if err != nil {
		t.Fatalf("FetchContestInfo returned error: %v", err)
	}
	if info.Questions[0].Title != "Two Sum" {
		t.Errorf("Title = %q, want english_title substituted", info.Questions[0].Title)
	}
}

func TestFetchContestInfoKeepsUSTitle(t *testing.T) {
	body, _ := json.Marshal(ContestInfoResponse{
		UserNum:   10,
		Questions: []QuestionResponse{{QuestionID: 1, Credit: 3, Title: "Two Sum"}},
	})
	doer := &scriptedDoer{byURLSubstring: map[string]string{"contest/api/info": string(body)}}
	a := newTestAdapters(doer)

	info, err := a.FetchContestInfo(context.Background(), "weekly-contest-400", models.RegionUS)
	if err != nil {
		t.Fatalf("FetchContestInfo returned error: %v", err)
	}
	if info.Questions[0].Title != "Two Sum" {
		t.Errorf("Title = %q, want unchanged", info.Questions[0].Title)
	}
}

func TestIsCNDataReadyFalseOnFallbackLocal(t *testing.T) {
	fallback := "true"
	cnBody, _ := json.Marshal(ContestInfoResponse{UserNum: 5, FallbackLocal: &fallback})
	doer := &scriptedDoer{byURLSubstring: map[string]string{"leetcode.cn/contest/api/info": string(cnBody)}}
	a := newTestAdapters(doer)

	ready, err := a.IsCNDataReady(context.Background(), "weekly-contest-400")
	if err != nil {
		t.Fatalf("IsCNDataReady returned error: %v", err)
	}
	if ready {
		t.Error("expected not ready when CN reports fallback_local")
	}
}

func TestIsCNDataReadyComparesUserNum(t *testing.T) {
	cnBody, _ := json.Marshal(ContestInfoResponse{UserNum: 100})
	usBody, _ := json.Marshal(ContestInfoResponse{UserNum: 50})
	doer := &scriptedDoer{byURLSubstring: map[string]string{
		"leetcode.cn/contest/api/info":  string(cnBody),
		"leetcode.com/contest/api/info": string(usBody),
	}}
	a := newTestAdapters(doer)

	ready, err := a.IsCNDataReady(context.Background(), "weekly-contest-400")
	if err != nil {
		t.Fatalf("IsCNDataReady returned error: %v", err)
	}
	if !ready {
		t.Error("expected ready when CN user_num >= US user_num")
	}
}

func TestFetchUserRatingUnknownUser(t *testing.T) {
	doer := &scriptedDoer{byURLSubstring: map[string]string{"graphql": `{"data":{"userContestRanking":null}}`}}
	a := newTestAdapters(doer)

	_, _, known, err := a.FetchUserRating(context.Background(), models.RegionUS, "brand-new-user")
	if err != nil {
		t.Fatalf("FetchUserRating returned error: %v", err)
	}
	if known {
		t.Error("expected known=false for a null userContestRanking response")
	}
}

func TestFetchUserRatingKnownUser(t *testing.T) {
	doer := &scriptedDoer{byURLSubstring: map[string]string{
		"graphql": `{"data":{"userContestRanking":{"rating":1850.5,"attendedContestsCount":12}}}`,
	}}
	a := newTestAdapters(doer)

	rating, attended, known, err := a.FetchUserRating(context.Background(), models.RegionUS, "alice")
	if err != nil {
		t.Fatalf("FetchUserRating returned error: %v", err)
	}
	if !known || rating != 1850.5 || attended != 12 {
		t.Errorf("got rating=%v attended=%v known=%v, want 1850.5/12/true", rating, attended, known)
	}
}

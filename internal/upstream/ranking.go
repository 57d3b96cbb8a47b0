package upstream

import (
	"context"
	"github.com/goccy/go-json"
	"fmt"
	"math"

	"github.com/baoliay2008/lccn-predictor/internal/fetchqueue"
	"github.com/baoliay2008/lccn-predictor/internal/models"
)

// rankingConcurrency is the per-region concurrency cap ("CN <=1-4,
// US <=10-25"), applied as the fetch queue's round size for
// ranking-page requests.
func rankingConcurrency(region models.DataRegion) int {
	if region == models.RegionCN {
		return 1
	}
	return 20
}

const rankingPageSize = 25

// RankingPageResponse is one page of GET .../contest/api/ranking/{slug}/?pagination=N.
type RankingPageResponse struct {
	UserNum    int                  `json:"user_num"`
	TotalRank  []RankingRowResponse `json:"total_rank"`
	Submissions []map[string]SubmissionResponse `json:"submissions"`
}

type RankingRowResponse struct {
	Username    string `json:"username"`
	UserSlug    string `json:"user_slug"`
	CountryCode string `json:"country_code"`
	CountryName string `json:"country_name"`
	Rank        int    `json:"rank"`
	Score       int    `json:"score"`
	FinishTime  int64  `json:"finish_time"` // epoch seconds
}

// SubmissionResponse is the per-question entry inside a ranking page's
// nested "submissions" map, keyed by question index.
type SubmissionResponse struct {
	QuestionID int   `json:"question_id"`
	Date       int64 `json:"date"` // epoch seconds
	FailCount  int   `json:"fail_count"`
}

// FetchRanking fetches every ranking page for a contest. It first reads
// page 1 to learn user_num, then fans out the remaining pages through
// the fetch queue at the region's concurrency cap (25 rows/page; page
// count = ceil(user_num/25)).
func (a *Adapters) FetchRanking(ctx context.Context, titleSlug string, region models.DataRegion) ([]RankingRowResponse, []map[string]SubmissionResponse, error) {
	first, err := a.fetchRankingPage(ctx, titleSlug, region, 1)
	if err != nil {
		return nil, nil, err
	}

	pageCount := int(math.Ceil(float64(first.UserNum) / rankingPageSize))
	if pageCount <= 1 {
		return first.TotalRank, first.Submissions, nil
	}

	if limiter := a.limiters.get(ConcernRanking, region); limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return nil, nil, err
		}
	}

	requests := make(map[string]fetchqueue.Request, pageCount-1)
	for page := 2; page <= pageCount; page++ {
		key := fmt.Sprintf("page-%d", page)
		requests[key] = fetchqueue.Request{
			Key:    key,
			Region: string(region),
			Method: "GET",
			URL:    rankingURL(titleSlug, region, page),
		}
	}

	results := a.queue.Fetch(ctx, requests, rankingConcurrency(region), fetchqueue.DefaultMaxRetries)

	rows := append([]RankingRowResponse{}, first.TotalRank...)
	submissions := append([]map[string]SubmissionResponse{}, first.Submissions...)
	for page := 2; page <= pageCount; page++ {
		key := fmt.Sprintf("page-%d", page)
		resp := results[key]
		if resp == nil {
			continue
		}
		var page RankingPageResponse
		if err := json.Unmarshal(resp.Body, &page); err != nil {
			continue
		}
		rows = append(rows, page.TotalRank...)
		submissions = append(submissions, page.Submissions...)
	}
	return rows, submissions, nil
}

func rankingURL(titleSlug string, region models.DataRegion, page int) string {
	return fmt.Sprintf("%s/contest/api/ranking/%s/?pagination=%d&region=global", baseURL(region), titleSlug, page)
}

func (a *Adapters) fetchRankingPage(ctx context.Context, titleSlug string, region models.DataRegion, page int) (*RankingPageResponse, error) {
	breaker := a.breakers.get(ConcernRanking, region)
	limiter := a.limiters.get(ConcernRanking, region)
	url := rankingURL(titleSlug, region, page)

	body, err := execute(ctx, breaker, limiter, func(ctx context.Context) ([]byte, error) {
		key := "page-1"
		requests := map[string]fetchqueue.Request{
			key: {Key: key, Region: string(region), Method: "GET", URL: url},
		}
		results := a.queue.Fetch(ctx, requests, 1, fetchqueue.DefaultMaxRetries)
		resp := results[key]
		if resp == nil {
			return nil, fmt.Errorf("upstream: ranking page %d fetch exhausted retries for %s/%s", page, region, titleSlug)
		}
		return resp.Body, nil
	})
	if err != nil {
		return nil, err
	}

	var parsed RankingPageResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("upstream: decode ranking page: %w", err)
	}
	return &parsed, nil
}

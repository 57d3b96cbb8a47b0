package upstream

import (
	"bytes"
	"context"
	"github.com/goccy/go-json"
	"fmt"

	"github.com/baoliay2008/lccn-predictor/internal/fetchqueue"
	"github.com/baoliay2008/lccn-predictor/internal/models"
)

const pastContestsConcurrency = 10

const pastContestsQuery = `query pastContests($pageNo: Int) {
  pastContests(pageNo: $pageNo) {
    data { title titleSlug startTime duration }
  }
}`

type pastContestsGraphQLResponse struct {
	Data struct {
		PastContests struct {
			Data []PastContestResponse `json:"data"`
		} `json:"pastContests"`
	} `json:"data"`
}

// PastContestResponse is one row from the pastContests GraphQL query,
// US-only; CN has no past-contests endpoint.
type PastContestResponse struct {
	Title     string `json:"title"`
	TitleSlug string `json:"titleSlug"`
	StartTime int64  `json:"startTime"` // epoch seconds
	Duration  int64  `json:"duration"`  // seconds
}

// FetchPastContests fans out pages 1..maxPage through the fetch queue at
// the §4.2 past-contest concurrency cap and concatenates the results in
// page order.
func (a *Adapters) FetchPastContests(ctx context.Context, maxPage int) ([]PastContestResponse, error) {
	breaker := a.breakers.get(ConcernPastContests, models.RegionUS)
	limiter := a.limiters.get(ConcernPastContests, models.RegionUS)

	requests := make(map[string]fetchqueue.Request, maxPage)
	for page := 1; page <= maxPage; page++ {
		payload, err := json.Marshal(graphQLPageRequest{Query: pastContestsQuery, Variables: map[string]int{"pageNo": page}})
		if err != nil {
			return nil, err
		}
		key := fmt.Sprintf("page-%d", page)
		requests[key] = fetchqueue.Request{
			Key: key, Region: string(models.RegionUS), Method: "POST", URL: "https://leetcode.com/graphql/",
			Body:    bytes.NewReader(payload),
			Headers: map[string]string{"Content-Type": "application/json"},
		}
	}

	body, err := execute(ctx, breaker, limiter, func(ctx context.Context) ([]byte, error) {
		results := a.queue.Fetch(ctx, requests, pastContestsConcurrency, fetchqueue.DefaultMaxRetries)

		var all []PastContestResponse
		for page := 1; page <= maxPage; page++ {
			resp := results[fmt.Sprintf("page-%d", page)]
			if resp == nil {
				continue
			}
			var parsed pastContestsGraphQLResponse
			if err := json.Unmarshal(resp.Body, &parsed); err != nil {
				continue
			}
			all = append(all, parsed.Data.PastContests.Data...)
		}
		out, marshalErr := json.Marshal(all)
		return out, marshalErr
	})
	if err != nil {
		return nil, err
	}

	var contests []PastContestResponse
	if err := json.Unmarshal(body, &contests); err != nil {
		return nil, fmt.Errorf("upstream: decode past contests: %w", err)
	}
	return contests, nil
}

type graphQLPageRequest struct {
	Query     string         `json:"query"`
	Variables map[string]int `json:"variables"`
}

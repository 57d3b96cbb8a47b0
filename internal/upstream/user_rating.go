package upstream

import (
	"bytes"
	"context"
	"github.com/goccy/go-json"
	"fmt"

	"github.com/baoliay2008/lccn-predictor/internal/fetchqueue"
	"github.com/baoliay2008/lccn-predictor/internal/models"
)

// userRatingConcurrency mirrors the per-region caps for the
// user-rating GraphQL endpoint (25 US / 4 CN).
func userRatingConcurrency(region models.DataRegion) int {
	if region == models.RegionCN {
		return 4
	}
	return 25
}

const usUserRatingQuery = `query getContestRankingData($username: String!) {
  userContestRanking(username: $username) {
    attendedContestsCount
    rating
  }
}`

const cnUserRatingQuery = `query userContestRankingInfo($userSlug: String!) {
  userContestRanking(userSlug: $userSlug) {
    attendedContestsCount
    rating
  }
}`

type graphQLRequest struct {
	Query     string            `json:"query"`
	Variables map[string]string `json:"variables"`
}

type userRatingGraphQLResponse struct {
	Data struct {
		UserContestRanking *struct {
			Rating                float64 `json:"rating"`
			AttendedContestsCount int     `json:"attendedContestsCount"`
		} `json:"userContestRanking"`
	} `json:"data"`
}

// FetchUserRating fetches a single user's current rating and attended
// count. A null userContestRanking in the GraphQL response means LeetCode
// has no record of this user; the caller should fall
// back to models.NewDefaultUser.
func (a *Adapters) FetchUserRating(ctx context.Context, region models.DataRegion, username string) (rating float64, attendedCount int, known bool, err error) {
	breaker := a.breakers.get(ConcernUserRating, region)
	limiter := a.limiters.get(ConcernUserRating, region)

	var query, url, varKey string
	if region == models.RegionCN {
		query, url, varKey = cnUserRatingQuery, "https://leetcode.cn/graphql/noj-go/", "userSlug"
	} else {
		query, url, varKey = usUserRatingQuery, "https://leetcode.com/graphql/", "username"
	}

	payload, marshalErr := json.Marshal(graphQLRequest{Query: query, Variables: map[string]string{varKey: username}})
	if marshalErr != nil {
		return 0, 0, false, marshalErr
	}

	body, execErr := execute(ctx, breaker, limiter, func(ctx context.Context) ([]byte, error) {
		requests := map[string]fetchqueue.Request{
			username: {
				Key: username, Region: string(region), Method: "POST", URL: url,
				Body:    bytes.NewReader(payload),
				Headers: map[string]string{"Content-Type": "application/json"},
			},
		}
		results := a.queue.Fetch(ctx, requests, userRatingConcurrency(region), fetchqueue.DefaultMaxRetries)
		resp := results[username]
		if resp == nil {
			return nil, fmt.Errorf("upstream: user rating fetch exhausted retries for %s/%s", region, username)
		}
		return resp.Body, nil
	})
	if execErr != nil {
		return 0, 0, false, execErr
	}

	var parsed userRatingGraphQLResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return 0, 0, false, fmt.Errorf("upstream: decode user rating: %w", err)
	}
	if parsed.Data.UserContestRanking == nil {
		return 0, 0, false, nil
	}
	return parsed.Data.UserContestRanking.Rating, parsed.Data.UserContestRanking.AttendedContestsCount, true, nil
}

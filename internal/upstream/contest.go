package upstream

import (
	"context"
	"github.com/goccy/go-json"
	"fmt"
	"time"

	"github.com/baoliay2008/lccn-predictor/internal/fetchqueue"
	"github.com/baoliay2008/lccn-predictor/internal/models"
)

// ContestInfoResponse is the decoded shape of GET .../contest/api/info/{slug}/,
// carrying both the question list and each region's user_num.
type ContestInfoResponse struct {
	UserNum      int                `json:"user_num"`
	FallbackLocal *string           `json:"fallback_local"`
	Questions    []QuestionResponse `json:"questions"`
}

type QuestionResponse struct {
	QuestionID   int    `json:"question_id"`
	Credit       int    `json:"credit"`
	Title        string `json:"title"`
	EnglishTitle string `json:"english_title"`
}

// Adapters bundles the four concerns over a shared fetch queue and
// breaker registry.
type Adapters struct {
	queue    *fetchqueue.Queue
	breakers *breakerRegistry
	limiters *limiterRegistry
}

func NewAdapters(queue *fetchqueue.Queue) *Adapters {
	return &Adapters{queue: queue, breakers: newBreakerRegistry(), limiters: newLimiterRegistry()}
}

func baseURL(region models.DataRegion) string {
	if region == models.RegionCN {
		return "https://leetcode.cn"
	}
	return "https://leetcode.com"
}

// FetchContestInfo fetches the contest summary and question list,
// substituting english_title into Title for CN responses since CN titles
// are Chinese.
func (a *Adapters) FetchContestInfo(ctx context.Context, titleSlug string, region models.DataRegion) (*ContestInfoResponse, error) {
	breaker := a.breakers.get(ConcernContest, region)
	limiter := a.limiters.get(ConcernContest, region)
	url := fmt.Sprintf("%s/contest/api/info/%s/", baseURL(region), titleSlug)

	body, err := execute(ctx, breaker, limiter, func(ctx context.Context) ([]byte, error) {
		requests := map[string]fetchqueue.Request{
			titleSlug: {Key: titleSlug, Region: string(region), Method: "GET", URL: url},
		}
		results := a.queue.Fetch(ctx, requests, 1, 5)
		resp := results[titleSlug]
		if resp == nil {
			return nil, fmt.Errorf("upstream: contest info fetch exhausted retries for %s/%s", region, titleSlug)
		}
		return resp.Body, nil
	})
	if err != nil {
		return nil, err
	}

	var info ContestInfoResponse
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("upstream: decode contest info: %w", err)
	}
	if region == models.RegionCN {
		for i := range info.Questions {
			if info.Questions[i].EnglishTitle != "" {
				info.Questions[i].Title = info.Questions[i].EnglishTitle
			}
		}
	}
	return &info, nil
}

// IsCNDataReady implements the readiness probe: CN's user_num must be
// >= US's, and CN must not report a fallback_local flag.
func (a *Adapters) IsCNDataReady(ctx context.Context, titleSlug string) (bool, error) {
	cn, err := a.FetchContestInfo(ctx, titleSlug, models.RegionCN)
	if err != nil {
		return false, err
	}
	if cn.FallbackLocal != nil {
		return false, nil
	}
	us, err := a.FetchContestInfo(ctx, titleSlug, models.RegionUS)
	if err != nil {
		return false, err
	}
	return cn.UserNum >= us.UserNum, nil
}

// PollCNDataReady blocks, checking IsCNDataReady once a minute, for up to
// 25 attempts (a 25x60s bound); returns false on
// timeout without error so the caller can proceed and log
// incomplete-data rather than fail the whole predict pipeline.
func (a *Adapters) PollCNDataReady(ctx context.Context, titleSlug string) bool {
	const maxAttempts = 25
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for attempt := 0; attempt < maxAttempts; attempt++ {
		ready, err := a.IsCNDataReady(ctx, titleSlug)
		if err == nil && ready {
			return true
		}
		if attempt == maxAttempts-1 {
			break
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return false
		}
	}
	return false
}

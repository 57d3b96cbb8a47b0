// Package fetchqueue implements the bounded-concurrency, retrying HTTP
// fetch contract: a FIFO work queue that drains
// `concurrency` requests per round, requeues failures with additive
// round-level backoff, and drops a key permanently once it exhausts
// maxRetries.
package fetchqueue

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/baoliay2008/lccn-predictor/internal/logging"
	"github.com/baoliay2008/lccn-predictor/internal/metrics"
)

// DefaultMaxRetries is the default cap on attempts per key.
const DefaultMaxRetries = 10

// Request describes one logical HTTP call; Key identifies it in the
// result map. Region is carried through purely for metrics labeling.
type Request struct {
	Key     string
	Region  string
	Method  string
	URL     string
	Body    io.Reader
	Headers map[string]string
}

// Response is the outcome of a request that eventually succeeded; a key
// missing from the result map (or mapped to nil) means it exhausted
// retries.
type Response struct {
	StatusCode int
	Body       []byte
}

// Doer is the subset of *http.Client the queue needs, so callers can wrap
// it in a circuit breaker (internal/upstream) without the queue knowing
// about gobreaker.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Queue drains a map of requests with bounded concurrency and additive
// round-level backoff.
type Queue struct {
	client   Doer
	callSite string
}

func New(client Doer, callSite string) *Queue {
	return &Queue{client: client, callSite: callSite}
}

type pending struct {
	req      Request
	attempts int
}

// Fetch implements the contract: all keys are attempted at least once,
// at most `concurrency` requests are in flight at a time, the first 2xx
// per key is kept (no duplicate success), and a key permanently drops to
// nil once it reaches maxRetries attempts.
func (q *Queue) Fetch(ctx context.Context, requests map[string]Request, concurrency, maxRetries int) map[string]*Response {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	if concurrency <= 0 {
		concurrency = 1
	}

	results := make(map[string]*Response, len(requests))
	queue := make([]pending, 0, len(requests))
	for _, r := range requests {
		queue = append(queue, pending{req: r})
	}

	waitTime := 0
	for len(queue) > 0 {
		if waitTime > 0 {
			select {
			case <-time.After(time.Duration(waitTime) * time.Second):
			case <-ctx.Done():
				return results
			}
		}

		round := queue
		if len(round) > concurrency {
			round = round[:concurrency]
		}
		queue = queue[len(round):]

		failuresThisRound := 0
		type outcome struct {
			p  pending
			ok bool
			rs *Response
		}
		outcomes := make(chan outcome, len(round))

		for _, p := range round {
			go func(p pending) {
				start := time.Now()
				rs, err := q.attempt(ctx, p.req)
				metrics.RecordFetchAttempt(q.callSite, p.req.Region, time.Since(start), p.attempts > 0)
				outcomes <- outcome{p: p, ok: err == nil, rs: rs}
			}(p)
		}

		for i := 0; i < len(round); i++ {
			o := <-outcomes
			if o.ok {
				results[o.p.req.Key] = o.rs
				continue
			}
			failuresThisRound++
			o.p.attempts++
			if o.p.attempts >= maxRetries {
				logging.Warn().Str("key", o.p.req.Key).Str("call_site", q.callSite).Msg("fetch exhausted retries")
				metrics.RecordFetchExhausted(q.callSite, o.p.req.Region)
				results[o.p.req.Key] = nil
				continue
			}
			queue = append(queue, o.p)
		}

		if failuresThisRound > 0 {
			waitTime += failuresThisRound
		} else {
			waitTime = 0
		}
	}

	return results
}

func (q *Queue) attempt(ctx context.Context, r Request) (*Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, r.Method, r.URL, r.Body)
	if err != nil {
		return nil, err
	}
	for k, v := range r.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := q.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &statusError{code: resp.StatusCode}
	}
	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return http.StatusText(e.code)
}

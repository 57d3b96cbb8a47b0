package fetchqueue

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

// fakeDoer lets tests script per-key outcomes, including "fail N times
// then succeed," without a real network call.
type fakeDoer struct {
	mu        sync.Mutex
	failUntil map[string]int32
	attempts  map[string]*int32
}

func newFakeDoer(failUntil map[string]int32) *fakeDoer {
	return &fakeDoer{failUntil: failUntil, attempts: make(map[string]*int32)}
}

func (f *fakeDoer) Do(req *http.Request) (*http.Response, error) {
	key := req.URL.Query().Get("key")

	f.mu.Lock()
	counter, ok := f.attempts[key]
	if !ok {
		var n int32
		counter = &n
		f.attempts[key] = counter
	}
	f.mu.Unlock()

	n := atomic.AddInt32(counter, 1)
	status := http.StatusOK
	if limit, ok := f.failUntil[key]; ok && n <= limit {
		status = http.StatusServiceUnavailable
	}
	return &http.Response{
		StatusCode: status,
		Body:       http.NoBody,
	}, nil
}

func TestFetchAllKeysAttemptedAtLeastOnce(t *testing.T) {
	requests := map[string]Request{
		"a": {Key: "a", Method: "GET", URL: "http://example.invalid/?key=a"},
		"b": {Key: "b", Method: "GET", URL: "http://example.invalid/?key=b"},
		"c": {Key: "c", Method: "GET", URL: "http://example.invalid/?key=c"},
	}
	doer := newFakeDoer(nil)
	q := New(doer, "test")

	results := q.Fetch(context.Background(), requests, 2, 10)

	if len(results) != 3 {
		t.Fatalf("len(results) = %d, want 3", len(results))
	}
	for key := range requests {
		if results[key] == nil {
			t.Errorf("key %q should have succeeded on first attempt", key)
		}
	}
}

func TestFetchRetriesThenSucceeds(t *testing.T) {
	requests := map[string]Request{
		"flaky": {Key: "flaky", Method: "GET", URL: "http://example.invalid/?key=flaky"},
	}
	doer := newFakeDoer(map[string]int32{"flaky": 3})
	q := New(doer, "test")

	results := q.Fetch(context.Background(), requests, 1, 10)

	if results["flaky"] == nil {
		t.Fatal("expected flaky key to eventually succeed within maxRetries")
	}
}

func TestFetchDropsKeyAfterMaxRetries(t *testing.T) {
	requests := map[string]Request{
		"dead": {Key: "dead", Method: "GET", URL: "http://example.invalid/?key=dead"},
	}
	doer := newFakeDoer(map[string]int32{"dead": 1000})
	q := New(doer, "test")

	results := q.Fetch(context.Background(), requests, 1, 3)

	if _, ok := results["dead"]; !ok {
		t.Fatal("key should still be present in results map, mapped to nil")
	}
	if results["dead"] != nil {
		t.Error("key exhausting maxRetries should map to nil")
	}
}

func TestFetchEmptyRequests(t *testing.T) {
	q := New(newFakeDoer(nil), "test")
	results := q.Fetch(context.Background(), map[string]Request{}, 5, 10)
	if len(results) != 0 {
		t.Errorf("expected empty result map, got %d entries", len(results))
	}
}

func TestStatusErrorMessageNotEmpty(t *testing.T) {
	err := &statusError{code: http.StatusServiceUnavailable}
	if strings.TrimSpace(err.Error()) == "" {
		t.Error("statusError.Error() should not be empty")
	}
}

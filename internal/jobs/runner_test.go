package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/baoliay2008/lccn-predictor/internal/lifecycle"
)

func quietNow() time.Time {
	return time.Date(2026, 7, 30, 12, 17, 0, 0, time.UTC)
}

func TestRunnerServeRejectsDoubleStart(t *testing.T) {
	h := &lifecycle.Handlers{Now: quietNow}
	r := New(h, Config{CheckInterval: 50 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- r.Serve(ctx) }()

	time.Sleep(20 * time.Millisecond)
	if err := r.Serve(context.Background()); err == nil {
		t.Fatal("expected a second Serve call to error while already running")
	}

	cancel()
	<-done
}

func TestRunnerStopIsIdempotentWhenNeverStarted(t *testing.T) {
	h := &lifecycle.Handlers{Now: quietNow}
	r := New(h, DefaultConfig())
	r.Stop() // must not block or panic
}

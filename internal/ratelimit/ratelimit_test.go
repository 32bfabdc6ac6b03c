package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/amishk599/jobseeker/internal/model"
)

func TestWait_SameHost_EnforcesMinDelay(t *testing.T) {
	limiter := NewHostRateLimiter(100 * time.Millisecond)
	ctx := context.Background()

	// First call should return immediately.
	if err := limiter.Wait(ctx, "backend:5000"); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	start := time.Now()
	if err := limiter.Wait(ctx, "backend:5000"); err != nil {
		t.Fatalf("second wait: %v", err)
	}
	elapsed := time.Since(start)

	// Should have waited at least ~100ms (allow 80ms for timer jitter).
	if elapsed < 80*time.Millisecond {
		t.Errorf("expected >= 80ms wait, got %v", elapsed)
	}
}

func TestWait_DifferentHosts_NoCrossBlocking(t *testing.T) {
	limiter := NewHostRateLimiter(200 * time.Millisecond)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "a.example"); err != nil {
		t.Fatalf("a wait: %v", err)
	}

	start := time.Now()
	if err := limiter.Wait(ctx, "b.example"); err != nil {
		t.Fatalf("b wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("expected b wait to be near-instant, got %v", elapsed)
	}
}

func TestWait_ConcurrentCallersAreQueued(t *testing.T) {
	limiter := NewHostRateLimiter(60 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	var wg sync.WaitGroup
	for range 3 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			limiter.Wait(ctx, "backend")
		}()
	}
	wg.Wait()

	// Three callers: 0ms, 60ms, 120ms.
	if elapsed := time.Since(start); elapsed < 100*time.Millisecond {
		t.Errorf("expected the third caller to wait ~120ms, total was %v", elapsed)
	}
}

func TestWait_ContextCancellation(t *testing.T) {
	limiter := NewHostRateLimiter(5 * time.Second)

	if err := limiter.Wait(context.Background(), "backend"); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := limiter.Wait(ctx, "backend"); err == nil {
		t.Fatal("expected error from cancelled context, got nil")
	}
}

type recordingDetailFetcher struct {
	calls []int
}

func (f *recordingDetailFetcher) FetchJobDetail(_ context.Context, jobID int) (model.JobDetail, error) {
	f.calls = append(f.calls, jobID)
	return model.JobDetail{Description: "desc"}, nil
}

func TestRateLimitedDetailFetcher_WaitsBeforeDelegating(t *testing.T) {
	limiter := NewHostRateLimiter(100 * time.Millisecond)
	inner := &recordingDetailFetcher{}
	fetcher := NewRateLimitedDetailFetcher(inner, limiter, "backend:5000")
	ctx := context.Background()

	if _, err := fetcher.FetchJobDetail(ctx, 1); err != nil {
		t.Fatalf("first fetch: %v", err)
	}

	start := time.Now()
	d, err := fetcher.FetchJobDetail(ctx, 2)
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	elapsed := time.Since(start)

	if len(inner.calls) != 2 || inner.calls[1] != 2 {
		t.Fatalf("inner calls = %v", inner.calls)
	}
	if d.Description != "desc" {
		t.Errorf("detail = %+v", d)
	}
	if elapsed < 80*time.Millisecond {
		t.Errorf("expected >= 80ms wait on second fetch, got %v", elapsed)
	}
}

package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/amishk599/jobseeker/internal/model"
)

// HostRateLimiter enforces a minimum delay between requests to the same
// host. Concurrent callers are queued: each one reserves the next free slot
// before sleeping.
type HostRateLimiter struct {
	mu       sync.Mutex
	next     map[string]time.Time // key: host; earliest start of the next request
	minDelay time.Duration
}

// NewHostRateLimiter creates a rate limiter that enforces minDelay between
// consecutive requests to the same host.
func NewHostRateLimiter(minDelay time.Duration) *HostRateLimiter {
	return &HostRateLimiter{
		next:     make(map[string]time.Time),
		minDelay: minDelay,
	}
}

// Wait blocks until the caller's slot for host comes up. Returns an error
// if the context is cancelled while waiting; the slot is then lost.
func (r *HostRateLimiter) Wait(ctx context.Context, host string) error {
	r.mu.Lock()
	now := time.Now()
	start := now
	if next, ok := r.next[host]; ok && next.After(now) {
		start = next
	}
	r.next[host] = start.Add(r.minDelay)
	r.mu.Unlock()

	wait := start.Sub(now)
	if wait <= 0 {
		return nil
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("rate limiter wait for %s: %w", host, ctx.Err())
	case <-time.After(wait):
		return nil
	}
}

// RateLimitedDetailFetcher is a decorator that spaces out live job-detail
// fetches. The backend scrapes the original job board on every call, so
// rapid browsing would otherwise hammer that board.
type RateLimitedDetailFetcher struct {
	inner   model.JobDetailFetcher
	limiter *HostRateLimiter
	host    string // which backend this fetcher targets
}

// NewRateLimitedDetailFetcher wraps a JobDetailFetcher with host-level rate
// limiting. All fetchers targeting the same host should share one limiter.
func NewRateLimitedDetailFetcher(inner model.JobDetailFetcher, limiter *HostRateLimiter, host string) *RateLimitedDetailFetcher {
	return &RateLimitedDetailFetcher{
		inner:   inner,
		limiter: limiter,
		host:    host,
	}
}

// FetchJobDetail waits for the rate limiter to allow a request, then
// delegates to the wrapped fetcher.
func (f *RateLimitedDetailFetcher) FetchJobDetail(ctx context.Context, jobID int) (model.JobDetail, error) {
	if err := f.limiter.Wait(ctx, f.host); err != nil {
		return model.JobDetail{}, err
	}
	return f.inner.FetchJobDetail(ctx, jobID)
}

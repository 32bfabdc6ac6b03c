// Package board holds the client-side cache of reviewed jobs.
package board

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/amishk599/jobseeker/internal/model"
)

// Board is the in-memory job list. It is replaced wholesale on every
// refresh and never persisted.
type Board struct {
	fetcher model.JobFetcher
	setter  model.StatusSetter

	mu   sync.RWMutex
	jobs []model.Job
}

// New creates an empty board backed by fetcher for refreshes and setter for
// marking jobs.
func New(fetcher model.JobFetcher, setter model.StatusSetter) *Board {
	return &Board{fetcher: fetcher, setter: setter}
}

// Refresh fetches the job list and replaces the board's contents.
func (b *Board) Refresh(ctx context.Context) error {
	jobs, err := b.fetcher.FetchJobs(ctx)
	if err != nil {
		return fmt.Errorf("refreshing board: %w", err)
	}
	b.Replace(jobs)
	return nil
}

// Replace swaps in a new job list.
func (b *Board) Replace(jobs []model.Job) {
	cp := make([]model.Job, len(jobs))
	copy(cp, jobs)

	b.mu.Lock()
	b.jobs = cp
	b.mu.Unlock()
}

// All returns every job in backend order.
func (b *Board) All() []model.Job {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]model.Job, len(b.jobs))
	copy(out, b.jobs)
	return out
}

// Len returns the number of cached jobs.
func (b *Board) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.jobs)
}

// Unprocessed returns the jobs the user has not marked yet, best score
// first. Jobs without a score sort last.
func (b *Board) Unprocessed() []model.Job {
	b.mu.RLock()
	var out []model.Job
	for _, j := range b.jobs {
		if !j.Processed() {
			out = append(out, j)
		}
	}
	b.mu.RUnlock()

	sort.SliceStable(out, func(i, k int) bool {
		si, oki := out[i].ScoreValue()
		sk, okk := out[k].ScoreValue()
		if oki != okk {
			return oki
		}
		return si > sk
	})
	return out
}

// Get returns the job with the given id.
func (b *Board) Get(id int) (model.Job, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, j := range b.jobs {
		if j.ID == id {
			return j, true
		}
	}
	return model.Job{}, false
}

// Mark records the user's decision on job id. On success the job carries
// its new status and drops out of Unprocessed. An id missing from the
// board is a no-op returning false.
func (b *Board) Mark(ctx context.Context, id int, interested bool) (bool, error) {
	if _, ok := b.Get(id); !ok {
		return false, nil
	}

	status, err := b.setter.SetJobStatus(ctx, id, interested)
	if err != nil {
		return false, err
	}
	if status.ID == 0 {
		status.ID = id
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.jobs {
		if b.jobs[i].ID == id {
			s := status
			b.jobs[i].Status = &s
			return true, nil
		}
	}
	// Replaced by a refresh while the request was in flight.
	return false, nil
}

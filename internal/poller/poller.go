package poller

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/amishk599/jobseeker/internal/model"
	"github.com/amishk599/jobseeker/internal/task"
)

// TaskRunner runs one backend task to completion.
type TaskRunner interface {
	Run(ctx context.Context, kind task.Kind, render task.RenderFunc) error
}

// scrapeBody is the start request of a scraping task.
type scrapeBody struct {
	Days         int                 `json:"days"`
	Destinations []model.Destination `json:"destinations,omitempty"`
}

type reviewBody struct {
	Count int `json:"count"`
}

// BoardOptions configures the scrape and review steps of a BoardPoller.
type BoardOptions struct {
	ScrapeDays   int
	Destinations []model.Destination // enabled destinations only; empty lets the backend use its saved list
	AutoReview   bool
}

// BoardPoller owns the watch pipeline:
// scrape → review latest → refresh → filter → dedup → notify → mark seen.
type BoardPoller struct {
	runner   TaskRunner
	scrape   task.Kind
	review   task.Kind
	opts     BoardOptions
	fetcher  model.JobFetcher
	filter   model.JobFilter
	store    model.SeenStore
	notifier model.Notifier
	logger   *slog.Logger
}

// NewBoardPoller creates a poller wired with all its dependencies. kinds is
// the task registry the scrape and review-latest kinds are taken from.
func NewBoardPoller(
	runner TaskRunner,
	kinds map[string]task.Kind,
	opts BoardOptions,
	fetcher model.JobFetcher,
	filter model.JobFilter,
	store model.SeenStore,
	notifier model.Notifier,
	logger *slog.Logger,
) *BoardPoller {
	return &BoardPoller{
		runner:   runner,
		scrape:   kinds[task.Scraping],
		review:   kinds[task.ReviewLatest],
		opts:     opts,
		fetcher:  fetcher,
		filter:   filter,
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
}

// Name identifies the poller in logs.
func (p *BoardPoller) Name() string { return "board" }

// Poll runs one watch cycle. A failed review is logged and the cycle goes on
// with whatever the backend already reviewed; any other failure ends it.
func (p *BoardPoller) Poll(ctx context.Context) error {
	newJobs, err := p.runScrape(ctx)
	if err != nil {
		return fmt.Errorf("polling %s: %w", p.Name(), err)
	}

	if newJobs > 0 && p.opts.AutoReview {
		if err := p.runReview(ctx, newJobs); err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("polling %s: %w", p.Name(), ctx.Err())
			}
			p.logger.Warn("review of latest jobs failed", "count", newJobs, "error", err)
		}
	}

	jobs, err := p.fetcher.FetchJobs(ctx)
	if err != nil {
		return fmt.Errorf("polling %s: refreshing jobs: %w", p.Name(), err)
	}

	var matched []model.Job
	for _, job := range jobs {
		// Only reviewed jobs the user has not decided on yet are worth a ping.
		if job.Processed() || job.Score == nil {
			continue
		}
		if p.filter.Match(job) {
			matched = append(matched, job)
		}
	}

	seeded, err := p.store.Seeded()
	if err != nil {
		return fmt.Errorf("polling %s: checking store: %w", p.Name(), err)
	}

	var fresh []model.Job
	for _, job := range matched {
		seen, err := p.store.HasSeen(job.ID)
		if err != nil {
			return fmt.Errorf("polling %s: checking seen status: %w", p.Name(), err)
		}
		if !seen {
			fresh = append(fresh, job)
		}
	}

	// First run: remember the current backlog without flooding the notifier.
	if len(fresh) > 0 && seeded {
		if err := p.notifier.Notify(fresh); err != nil {
			return fmt.Errorf("polling %s: notifying: %w", p.Name(), err)
		}
	}

	for _, job := range fresh {
		if err := p.store.MarkSeen(job.ID); err != nil {
			return fmt.Errorf("polling %s: marking seen: %w", p.Name(), err)
		}
	}
	if !seeded {
		if err := p.store.MarkSeeded(); err != nil {
			return fmt.Errorf("polling %s: marking seeded: %w", p.Name(), err)
		}
	}

	onBoard := make([]int, len(jobs))
	for i, job := range jobs {
		onBoard[i] = job.ID
	}
	pruned, err := p.store.Prune(onBoard)
	if err != nil {
		p.logger.Warn("pruning seen jobs failed", "error", err)
	}

	p.logger.Info("polled board",
		"scraped", newJobs,
		"fetched", len(jobs),
		"matched", len(matched),
		"new", len(fresh),
		"seeded", !seeded,
		"pruned", pruned,
	)
	return nil
}

func (p *BoardPoller) runScrape(ctx context.Context) (int, error) {
	days := p.opts.ScrapeDays
	if days < 1 {
		days = 1
	}
	kind := p.scrape.WithBody(scrapeBody{Days: days, Destinations: p.opts.Destinations})

	var added int
	err := p.runner.Run(ctx, kind, func(r task.Result) error {
		added = r.Status.NewJobsCount
		return nil
	})
	return added, err
}

func (p *BoardPoller) runReview(ctx context.Context, count int) error {
	return p.runner.Run(ctx, p.review.WithBody(reviewBody{Count: count}), nil)
}

// StatusUpdater asks the backend to re-check whether open jobs were closed.
type StatusUpdater struct {
	runner TaskRunner
	kind   task.Kind
	logger *slog.Logger
}

// NewStatusUpdater creates a poller running the status-update task.
func NewStatusUpdater(runner TaskRunner, kinds map[string]task.Kind, logger *slog.Logger) *StatusUpdater {
	return &StatusUpdater{runner: runner, kind: kinds[task.StatusUpdate], logger: logger}
}

// Name identifies the poller in logs.
func (u *StatusUpdater) Name() string { return "status-update" }

// Poll runs one status update.
func (u *StatusUpdater) Poll(ctx context.Context) error {
	var updated int
	err := u.runner.Run(ctx, u.kind, func(r task.Result) error {
		updated = r.Status.JobsUpdatedCount
		return nil
	})
	if err != nil {
		return fmt.Errorf("polling %s: %w", u.Name(), err)
	}
	u.logger.Info("updated job statuses", "closed", updated)
	return nil
}

package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/amishk599/jobseeker/internal/model"
)

// DefaultInterval is the fixed gap between two status fetches.
const DefaultInterval = 2 * time.Second

// API is the subset of the backend client the poller needs.
type API interface {
	GetJSON(ctx context.Context, path string, out any) error
	PostJSON(ctx context.Context, path string, body, out any) error
}

// Result is what a completed task hands to its render callback.
type Result struct {
	Kind     string
	Status   model.TaskStatus  // the final (complete) status reply
	Payloads []json.RawMessage // one per Kind.ResultPaths, same order
}

// Decode unmarshals the i-th result payload into out.
func (r Result) Decode(i int, out any) error {
	if i < 0 || i >= len(r.Payloads) {
		return fmt.Errorf("%s result %d: no such payload", r.Kind, i)
	}
	return json.Unmarshal(r.Payloads[i], out)
}

// RenderFunc consumes the result of a completed task.
type RenderFunc func(Result) error

// Poller runs the start → poll → fetch results → render cycle for one task.
type Poller struct {
	api      API
	interval time.Duration
	recorder model.RunRecorder
	progress func(kind string, status model.TaskStatus)
	logger   *slog.Logger
}

// NewPoller creates a poller that queries status every interval.
// recorder may be nil.
func NewPoller(api API, interval time.Duration, recorder model.RunRecorder, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		api:      api,
		interval: interval,
		recorder: recorder,
		logger:   logger,
	}
}

// WithProgress returns a copy of p that reports every status reply to fn.
func (p *Poller) WithProgress(fn func(kind string, status model.TaskStatus)) *Poller {
	cp := *p
	cp.progress = fn
	return &cp
}

type startReply struct {
	Status  string `json:"status"`
	Success *bool  `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (r startReply) accepted() bool {
	if r.Success != nil {
		return *r.Success
	}
	switch r.Status {
	case "started", "complete", "already_running":
		return true
	}
	return false
}

func (r startReply) reason() string {
	switch {
	case r.Error != "":
		return r.Error
	case r.Message != "":
		return r.Message
	case r.Status != "":
		return r.Status
	}
	return "unknown error"
}

// Run starts kind on the backend and blocks until it reaches a terminal
// state or ctx is cancelled. On completion the result endpoints are fetched
// and passed to render. A failed task returns *model.BackendError carrying
// the backend's message verbatim.
func (p *Poller) Run(ctx context.Context, kind Kind, render RenderFunc) error {
	run := model.TaskRun{
		ID:        uuid.NewString(),
		Kind:      kind.Name,
		StartedAt: time.Now(),
	}

	err := p.run(ctx, kind, render)

	run.FinishedAt = time.Now()
	run.State = model.TaskComplete
	if err != nil {
		run.State = model.TaskFailed
		run.Error = err.Error()
	}
	if p.recorder != nil {
		if rerr := p.recorder.RecordRun(run); rerr != nil {
			p.logger.Warn("recording task run failed", "kind", kind.Name, "error", rerr)
		}
	}
	return err
}

func (p *Poller) run(ctx context.Context, kind Kind, render RenderFunc) error {
	var start startReply
	if err := p.api.PostJSON(ctx, kind.StartPath, kind.Body, &start); err != nil {
		return fmt.Errorf("starting %s: %w", kind.Name, err)
	}
	if !start.accepted() {
		return &model.BackendError{Op: "could not start " + kind.Name, Message: start.reason()}
	}
	p.logger.Debug("task started", "kind", kind.Name, "reply", start.Status)

	if kind.Style == StyleReviewer {
		if err := p.wait(ctx); err != nil {
			return err
		}
	}

	for {
		var status model.TaskStatus
		err := p.api.GetJSON(ctx, kind.StatusPath, &status)
		switch {
		case err != nil && ctx.Err() != nil:
			return fmt.Errorf("polling %s: %w", kind.Name, ctx.Err())
		case err != nil && kind.Style == StyleReviewer:
			p.logger.Warn("status fetch failed", "kind", kind.Name, "error", err)
		case err != nil:
			return fmt.Errorf("polling %s: %w", kind.Name, err)
		default:
			if p.progress != nil {
				p.progress(kind.Name, status)
			}
			if status.State.Terminal() {
				if status.State == model.TaskFailed {
					return &model.BackendError{Op: kind.Name + " failed", Message: status.Error}
				}
				return p.finish(ctx, kind, status, render)
			}
			p.logger.Debug("task pending", "kind", kind.Name, "state", status.State, "current", status.Current, "total", status.Total)
		}

		if err := p.wait(ctx); err != nil {
			return err
		}
	}
}

func (p *Poller) wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("poll cancelled: %w", ctx.Err())
	case <-time.After(p.interval):
		return nil
	}
}

// finish fetches every result endpoint concurrently, then renders.
func (p *Poller) finish(ctx context.Context, kind Kind, status model.TaskStatus, render RenderFunc) error {
	result := Result{
		Kind:     kind.Name,
		Status:   status,
		Payloads: make([]json.RawMessage, len(kind.ResultPaths)),
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, path := range kind.ResultPaths {
		g.Go(func() error {
			var payload json.RawMessage
			if err := p.api.GetJSON(gctx, path, &payload); err != nil {
				return fmt.Errorf("fetching %s result %s: %w", kind.Name, path, err)
			}
			result.Payloads[i] = payload
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// A newer poll of the same slot may have replaced this one meanwhile.
	if ctx.Err() != nil {
		return fmt.Errorf("poll cancelled: %w", ctx.Err())
	}
	if render == nil {
		return nil
	}
	if err := render(result); err != nil {
		var be *model.BackendError
		if errors.As(err, &be) {
			return err
		}
		return fmt.Errorf("rendering %s: %w", kind.Name, err)
	}
	return nil
}

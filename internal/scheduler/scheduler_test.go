package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// --- Mock implementations ---

type CountingPoller struct {
	name  string
	calls atomic.Int32
	err   error
}

func (p *CountingPoller) Name() string { return p.name }

func (p *CountingPoller) Poll(_ context.Context) error {
	p.calls.Add(1)
	return p.err
}

// OrderRecordingPoller appends its name to recorder.order on each Poll call.
type OrderRecordingPoller struct {
	name     string
	recorder *orderRecorder
}

type orderRecorder struct {
	mu    sync.Mutex
	order []string
}

func (p *OrderRecordingPoller) Name() string { return p.name }

func (p *OrderRecordingPoller) Poll(_ context.Context) error {
	p.recorder.mu.Lock()
	p.recorder.order = append(p.recorder.order, p.name)
	p.recorder.mu.Unlock()
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- Tests ---

func TestRun_CancelReturnsPromptly(t *testing.T) {
	s := NewScheduler([]Poller{&CountingPoller{name: "board"}}, time.Hour, 0, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected nil error on cancel, got: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not return within 2s after cancel")
	}
}

func TestRun_PollsImmediatelyThenEveryInterval(t *testing.T) {
	p := &CountingPoller{name: "board"}
	s := NewScheduler([]Poller{p}, 100*time.Millisecond, 0, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()

	time.Sleep(30 * time.Millisecond)
	if got := p.calls.Load(); got != 1 {
		t.Errorf("calls after start = %d, want 1 (immediate cycle)", got)
	}

	// Allow time for at least one more pass.
	time.Sleep(200 * time.Millisecond)
	cancel()
	<-done

	if got := p.calls.Load(); got < 2 {
		t.Errorf("calls = %d, want >= 2", got)
	}
}

func TestRunOnce_ErrorDoesNotStopLaterPollers(t *testing.T) {
	failing := &CountingPoller{name: "board", err: errors.New("backend down")}
	healthy := &CountingPoller{name: "status-update"}
	s := NewScheduler([]Poller{failing, healthy}, time.Hour, 0, discardLogger())

	if failed := s.RunOnce(context.Background()); failed != 1 {
		t.Errorf("failed = %d, want 1", failed)
	}
	if healthy.calls.Load() != 1 {
		t.Error("healthy poller should run after a failing one")
	}
}

func TestRunOnce_PauseBetweenPollers(t *testing.T) {
	a := &CountingPoller{name: "a"}
	b := &CountingPoller{name: "b"}
	s := NewScheduler([]Poller{a, b}, time.Hour, 50*time.Millisecond, discardLogger())

	start := time.Now()
	s.RunOnce(context.Background())
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("elapsed %v: expected a pause between pollers", elapsed)
	}
	if a.calls.Load() != 1 || b.calls.Load() != 1 {
		t.Errorf("calls = %d/%d, want 1/1", a.calls.Load(), b.calls.Load())
	}
}

func TestRunOnce_CancelledContextSkipsPollers(t *testing.T) {
	p := &CountingPoller{name: "board"}
	s := NewScheduler([]Poller{p}, time.Hour, 0, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.RunOnce(ctx)

	if p.calls.Load() != 0 {
		t.Error("no poller should run on a cancelled context")
	}
}

func TestRunOnce_OrderPreserved(t *testing.T) {
	rec := &orderRecorder{}
	s := NewScheduler([]Poller{
		&OrderRecordingPoller{name: "p1", recorder: rec},
		&OrderRecordingPoller{name: "p2", recorder: rec},
		&OrderRecordingPoller{name: "p3", recorder: rec},
	}, time.Hour, 0, discardLogger())

	s.RunOnce(context.Background())

	want := []string{"p1", "p2", "p3"}
	if len(rec.order) != len(want) {
		t.Fatalf("poll order = %v, want %v", rec.order, want)
	}
	for i := range want {
		if rec.order[i] != want[i] {
			t.Errorf("poll order = %v, want %v", rec.order, want)
			break
		}
	}
}

package task

import (
	"context"
	"sort"
	"sync"
)

// Handle is a running poll started by a Tracker.
type Handle struct {
	Kind   string
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// Wait blocks until the poll ends and returns its error.
func (h *Handle) Wait() error {
	<-h.done
	return h.err
}

// Tracker keeps at most one active poll per kind slot. Starting a kind
// cancels the previous poll occupying the same slot.
type Tracker struct {
	poller *Poller

	mu     sync.Mutex
	active map[string]*Handle
}

// NewTracker creates a tracker running polls with poller.
func NewTracker(poller *Poller) *Tracker {
	return &Tracker{
		poller: poller,
		active: make(map[string]*Handle),
	}
}

// Start runs kind in its own goroutine, replacing any active poll of the
// same slot.
func (t *Tracker) Start(ctx context.Context, kind Kind, render RenderFunc) *Handle {
	slot := kind.SlotName()
	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{
		Kind:   kind.Name,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	t.mu.Lock()
	if prev, ok := t.active[slot]; ok {
		prev.cancel()
	}
	t.active[slot] = h
	t.mu.Unlock()

	go func() {
		defer close(h.done)
		defer cancel()

		h.err = t.poller.Run(ctx, kind, render)

		t.mu.Lock()
		if t.active[slot] == h {
			delete(t.active, slot)
		}
		t.mu.Unlock()
	}()

	return h
}

// Active returns the slots with a running poll, sorted.
func (t *Tracker) Active() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	slots := make([]string, 0, len(t.active))
	for slot := range t.active {
		slots = append(slots, slot)
	}
	sort.Strings(slots)
	return slots
}

// CancelAll stops every active poll.
func (t *Tracker) CancelAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, h := range t.active {
		h.cancel()
	}
}

package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/lifelog/core/internal/domain/entities"
)

// Debounce windows. Entry edits arrive keystroke by keystroke and get the
// longer window; memo edits are chunkier and flush faster.
const (
	DefaultEntryDebounce = 1500 * time.Millisecond
	DefaultMemoDebounce  = time.Second
)

// ErrClosed is returned when queueing into a closed controller.
var ErrClosed = errors.New("autosave controller is closed")

// Autosave coalesces rapid edits into one write. It holds a single pending
// snapshot: queueing while a save is outstanding overwrites the slot, so
// only the latest state ever reaches the store. One timer serves all
// queued edits; each queue call pushes the deadline out again.
type Autosave struct {
	store Store
	delay time.Duration

	// OnSaved, when set, receives every successfully stored entry.
	OnSaved func(*entities.Entry)
	// OnError, when set, receives background save failures.
	OnError func(error)

	mu      sync.Mutex
	timer   *time.Timer
	pending *entities.Entry
	closed  bool
}

// NewAutosave creates a controller writing through store after delay of
// quiet time.
func NewAutosave(store Store, delay time.Duration) *Autosave {
	if delay <= 0 {
		delay = DefaultEntryDebounce
	}
	return &Autosave{
		store: store,
		delay: delay,
	}
}

// Queue snapshots the entry into the pending slot and arms the debounce
// timer. Calling again before the timer fires replaces the snapshot and
// restarts the wait.
func (a *Autosave) Queue(entry *entities.Entry) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return ErrClosed
	}

	a.pending = entry.Clone()

	if a.timer == nil {
		a.timer = time.AfterFunc(a.delay, a.fire)
	} else {
		a.timer.Reset(a.delay)
	}
	return nil
}

// Flush saves any pending snapshot immediately, cancelling the timer. A
// failed save puts the snapshot back unless a newer one arrived meanwhile.
func (a *Autosave) Flush(ctx context.Context) error {
	a.mu.Lock()
	if a.timer != nil {
		a.timer.Stop()
	}
	pending := a.pending
	a.pending = nil
	a.mu.Unlock()

	if pending == nil {
		return nil
	}
	return a.save(ctx, pending)
}

// Close flushes pending work and rejects further queueing. The unmount
// path: nothing typed in the last debounce window is lost.
func (a *Autosave) Close(ctx context.Context) error {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()
	return a.Flush(ctx)
}

// Pending reports whether an unsaved snapshot is waiting.
func (a *Autosave) Pending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pending != nil
}

func (a *Autosave) fire() {
	a.mu.Lock()
	pending := a.pending
	a.pending = nil
	a.mu.Unlock()

	if pending == nil {
		return
	}

	if err := a.save(context.Background(), pending); err != nil && a.OnError != nil {
		a.OnError(err)
	}
}

func (a *Autosave) save(ctx context.Context, entry *entities.Entry) error {
	stored, err := a.store.Upsert(ctx, entry)
	if err != nil {
		// Keep the snapshot for the next flush unless the user has
		// already typed past it.
		a.mu.Lock()
		if a.pending == nil {
			a.pending = entry
		}
		a.mu.Unlock()
		return err
	}

	if a.OnSaved != nil {
		a.OnSaved(stored)
	}
	return nil
}

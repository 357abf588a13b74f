package client

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifelog/core/internal/domain/entities"
)

// fakeStore records upserts and can be told to fail.
type fakeStore struct {
	mu      sync.Mutex
	saved   []*entities.Entry
	failErr error
}

func (s *fakeStore) Load(ctx context.Context, date string) (*entities.Entry, error) {
	return entities.NewEmptyEntry(date), nil
}

func (s *fakeStore) Upsert(ctx context.Context, entry *entities.Entry) (*entities.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return nil, s.failErr
	}
	s.saved = append(s.saved, entry.Clone())
	return entry.Clone(), nil
}

func (s *fakeStore) ListCategories(ctx context.Context) ([]entities.Category, error) {
	return nil, nil
}

func (s *fakeStore) CreateCategory(ctx context.Context, name string, color *string) (*entities.Category, error) {
	return nil, nil
}

func (s *fakeStore) DeleteCategory(ctx context.Context, id string) error {
	return nil
}

func (s *fakeStore) setFailing(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failErr = err
}

func (s *fakeStore) savedEntries() []*entities.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*entities.Entry{}, s.saved...)
}

func entryWithReason(date, reason string) *entities.Entry {
	entry := entities.NewEmptyEntry(date)
	entry.ScoreReason = &reason
	return entry
}

func waitFor(t *testing.T, condition func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestAutosaveCoalescesRapidEdits(t *testing.T) {
	store := &fakeStore{}
	auto := NewAutosave(store, 50*time.Millisecond)

	// Three keystrokes inside one debounce window.
	require.NoError(t, auto.Queue(entryWithReason("2026-05-01", "v1")))
	require.NoError(t, auto.Queue(entryWithReason("2026-05-01", "v2")))
	require.NoError(t, auto.Queue(entryWithReason("2026-05-01", "v3")))

	waitFor(t, func() bool { return len(store.savedEntries()) > 0 })

	// Only the latest snapshot reached the store.
	saved := store.savedEntries()
	require.Len(t, saved, 1)
	assert.Equal(t, "v3", *saved[0].ScoreReason)
	assert.False(t, auto.Pending())
}

func TestAutosaveQueueSnapshotsTheEntry(t *testing.T) {
	store := &fakeStore{}
	auto := NewAutosave(store, 50*time.Millisecond)

	entry := entryWithReason("2026-05-01", "original")
	require.NoError(t, auto.Queue(entry))

	// Mutating after queueing must not affect what gets saved.
	*entry.ScoreReason = "mutated"
	entry.Todos = append(entry.Todos, entities.Todo{Content: "late addition"})

	waitFor(t, func() bool { return len(store.savedEntries()) > 0 })
	saved := store.savedEntries()[0]
	assert.Equal(t, "original", *saved.ScoreReason)
	assert.Empty(t, saved.Todos)
}

func TestAutosaveFlushSavesImmediately(t *testing.T) {
	store := &fakeStore{}
	auto := NewAutosave(store, time.Hour) // never fires on its own

	require.NoError(t, auto.Queue(entryWithReason("2026-05-01", "draft")))
	assert.True(t, auto.Pending())

	require.NoError(t, auto.Flush(context.Background()))
	require.Len(t, store.savedEntries(), 1)
	assert.False(t, auto.Pending())

	// Flushing with nothing pending is a no-op.
	require.NoError(t, auto.Flush(context.Background()))
	assert.Len(t, store.savedEntries(), 1)
}

func TestAutosaveCloseFlushesAndRejectsFurtherQueues(t *testing.T) {
	store := &fakeStore{}
	auto := NewAutosave(store, time.Hour)

	require.NoError(t, auto.Queue(entryWithReason("2026-05-01", "last words")))
	require.NoError(t, auto.Close(context.Background()))

	require.Len(t, store.savedEntries(), 1)
	assert.Equal(t, "last words", *store.savedEntries()[0].ScoreReason)

	assert.ErrorIs(t, auto.Queue(entryWithReason("2026-05-01", "too late")), ErrClosed)
}

func TestAutosaveFailedSaveRestoresSnapshot(t *testing.T) {
	store := &fakeStore{}
	auto := NewAutosave(store, time.Hour)

	boom := errors.New("network down")
	store.setFailing(boom)

	require.NoError(t, auto.Queue(entryWithReason("2026-05-01", "unsaved")))
	assert.ErrorIs(t, auto.Flush(context.Background()), boom)

	// The snapshot is back in the slot for a retry.
	assert.True(t, auto.Pending())

	store.setFailing(nil)
	require.NoError(t, auto.Flush(context.Background()))
	require.Len(t, store.savedEntries(), 1)
	assert.Equal(t, "unsaved", *store.savedEntries()[0].ScoreReason)
}

func TestAutosaveCallbacks(t *testing.T) {
	store := &fakeStore{}
	auto := NewAutosave(store, 30*time.Millisecond)

	var mu sync.Mutex
	var savedDates []string
	var errs []error
	auto.OnSaved = func(e *entities.Entry) {
		mu.Lock()
		savedDates = append(savedDates, e.Date)
		mu.Unlock()
	}
	auto.OnError = func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	require.NoError(t, auto.Queue(entryWithReason("2026-05-01", "ok")))
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(savedDates) == 1
	})

	boom := errors.New("disk full")
	store.setFailing(boom)
	require.NoError(t, auto.Queue(entryWithReason("2026-05-02", "bad")))
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(errs) == 1
	})

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"2026-05-01"}, savedDates)
	assert.ErrorIs(t, errs[0], boom)
}

func TestAutosaveZeroDelayFallsBackToDefault(t *testing.T) {
	auto := NewAutosave(&fakeStore{}, 0)
	assert.Equal(t, DefaultEntryDebounce, auto.delay)
}

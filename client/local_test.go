package client

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifelog/core/internal/domain/entities"
)

func TestLocalStoreSeedsTrialCategories(t *testing.T) {
	store := NewLocalStore(t.TempDir())

	categories, err := store.ListCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 4)
	assert.Equal(t, "Learning", categories[0].Name)
	assert.Equal(t, "Insight", categories[1].Name)
	assert.Equal(t, "Idea", categories[2].Name)
	assert.Equal(t, "Reflection", categories[3].Name)
}

func TestLocalStoreLoadUnknownDateReturnsEmptyEntry(t *testing.T) {
	store := NewLocalStore(t.TempDir())

	entry, err := store.Load(context.Background(), "2026-05-01")
	require.NoError(t, err)
	assert.Equal(t, "2026-05-01", entry.Date)
	assert.Empty(t, entry.Todos)

	_, err = store.Load(context.Background(), "may first")
	assert.ErrorIs(t, err, entities.ErrInvalidDate)
}

func TestLocalStoreUpsertRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir)
	ctx := context.Background()

	score := 7
	entry := entities.NewEmptyEntry("2026-05-01")
	entry.Score = &score
	entry.Todos = []entities.Todo{
		{ID: uuid.New(), Content: "water plants"},
		{ID: uuid.New(), Content: "   "}, // dropped on save
	}

	stored, err := store.Upsert(ctx, entry)
	require.NoError(t, err)
	require.Len(t, stored.Todos, 1)

	// A second store on the same path sees the persisted document.
	reopened := NewLocalStore(dir)
	loaded, err := reopened.Load(ctx, "2026-05-01")
	require.NoError(t, err)
	assert.Equal(t, 7, *loaded.Score)
	require.Len(t, loaded.Todos, 1)
	assert.Equal(t, "water plants", loaded.Todos[0].Content)
}

func TestLocalStoreUpsertPreservesIdentity(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()

	first, err := store.Upsert(ctx, entities.NewEmptyEntry("2026-05-01"))
	require.NoError(t, err)

	time.Sleep(time.Millisecond)

	replacement := entities.NewEmptyEntry("2026-05-01")
	second, err := store.Upsert(ctx, replacement)
	require.NoError(t, err)

	// Saving the same date again keeps the original entry ID and creation
	// time even though the caller built a fresh entry. The modification
	// time moves forward with every save.
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, second.CreatedAt.Equal(first.CreatedAt))
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
}

func TestLocalStoreCreateCategory(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()

	created, err := store.CreateCategory(ctx, "Cooking", nil)
	require.NoError(t, err)
	assert.Equal(t, 4, created.SortOrder) // after the four seeded ones

	_, err = store.CreateCategory(ctx, "Cooking", nil)
	assert.ErrorIs(t, err, entities.ErrDuplicateName)
}

func TestLocalStoreDeleteCategoryClearsNoteReferences(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()

	categories, err := store.ListCategories(ctx)
	require.NoError(t, err)
	learning := categories[0]

	entry := entities.NewEmptyEntry("2026-05-01")
	entry.Notes = []entities.Note{
		{ID: uuid.New(), Content: "tagged", CategoryID: &learning.ID},
		{ID: uuid.New(), Content: "untagged"},
	}
	_, err = store.Upsert(ctx, entry)
	require.NoError(t, err)

	require.NoError(t, store.DeleteCategory(ctx, learning.ID.String()))

	// The note survives with its category reference cleared.
	loaded, err := store.Load(ctx, "2026-05-01")
	require.NoError(t, err)
	require.Len(t, loaded.Notes, 2)
	for _, note := range loaded.Notes {
		assert.Nil(t, note.CategoryID)
	}

	remaining, err := store.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, remaining, 3)

	assert.ErrorIs(t, store.DeleteCategory(ctx, uuid.New().String()), entities.ErrCategoryNotFound)
	assert.ErrorIs(t, store.DeleteCategory(ctx, "not-a-uuid"), entities.ErrCategoryNotFound)
}

func TestLocalStoreCorruptDocumentResets(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir)
	ctx := context.Background()

	_, err := store.Upsert(ctx, entities.NewEmptyEntry("2026-05-01"))
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, draftKey), []byte("{corrupt"), 0o644))

	// Unreadable state falls back to a fresh trial document instead of
	// failing every call.
	fresh := NewLocalStore(dir)
	entry, err := fresh.Load(ctx, "2026-05-01")
	require.NoError(t, err)
	assert.Empty(t, entry.Todos)

	categories, err := fresh.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 4)
}

func TestLocalStoreClear(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()

	_, err := store.Upsert(ctx, entities.NewEmptyEntry("2026-05-01"))
	require.NoError(t, err)
	_, err = store.CreateCategory(ctx, "Cooking", nil)
	require.NoError(t, err)

	require.NoError(t, store.Clear())

	entries, categories := store.Document()
	assert.Empty(t, entries)
	assert.Len(t, categories, 4) // back to the seeded set
}

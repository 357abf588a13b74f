package entities

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidDate(t *testing.T) {
	assert.True(t, ValidDate("2026-01-15"))
	assert.True(t, ValidDate("1999-12-31"))

	assert.False(t, ValidDate("2026-1-15"))
	assert.False(t, ValidDate("2026/01/15"))
	assert.False(t, ValidDate("15-01-2026"))
	assert.False(t, ValidDate("2026-01-15T00:00:00Z"))
	assert.False(t, ValidDate(""))
}

func TestEntryValidate(t *testing.T) {
	entry := &Entry{Date: "2026-01-15"}
	require.NoError(t, entry.Validate())

	entry.Date = "not-a-date"
	assert.ErrorIs(t, entry.Validate(), ErrInvalidDate)

	entry.Date = "2026-01-15"
	for _, score := range []int{0, 11, -1} {
		s := score
		entry.Score = &s
		assert.ErrorIs(t, entry.Validate(), ErrInvalidScore, "score %d", score)
	}

	for _, score := range []int{1, 5, 10} {
		s := score
		entry.Score = &s
		assert.NoError(t, entry.Validate(), "score %d", score)
	}
}

func TestEntryFilterEmpty(t *testing.T) {
	note := "keep"
	entry := &Entry{
		Date: "2026-01-15",
		Todos: []Todo{
			{Content: "real work"},
			{Content: "   "},
			{Content: ""},
		},
		Notes: []Note{
			{Content: "a note"},
			{Content: "\t\n"},
		},
		Links: []Link{
			{URL: "https://example.com", Title: &note},
			{URL: "  "},
		},
	}

	filtered := entry.FilterEmpty()

	require.Len(t, filtered.Todos, 1)
	assert.Equal(t, "real work", filtered.Todos[0].Content)
	require.Len(t, filtered.Notes, 1)
	require.Len(t, filtered.Links, 1)

	// The original is untouched.
	assert.Len(t, entry.Todos, 3)
}

func TestEntryMaxTodoSortOrder(t *testing.T) {
	entry := &Entry{Date: "2026-01-15"}
	assert.Equal(t, -1, entry.MaxTodoSortOrder())

	entry.Todos = []Todo{{SortOrder: 3}, {SortOrder: 7}, {SortOrder: 0}}
	assert.Equal(t, 7, entry.MaxTodoSortOrder())
}

func TestEntryClone(t *testing.T) {
	score := 8
	reason := "good day"
	entry := &Entry{
		ID:          uuid.New(),
		Date:        "2026-01-15",
		Score:       &score,
		ScoreReason: &reason,
		Todos:       []Todo{{Content: "one"}},
	}

	clone := entry.Clone()

	// Mutating the clone must not reach back into the original.
	*clone.Score = 2
	clone.Todos[0].Content = "changed"
	clone.Todos = append(clone.Todos, Todo{Content: "two"})

	assert.Equal(t, 8, *entry.Score)
	assert.Equal(t, "one", entry.Todos[0].Content)
	assert.Len(t, entry.Todos, 1)
}

func TestNewEmptyEntry(t *testing.T) {
	entry := NewEmptyEntry("2026-01-15")

	assert.Equal(t, "2026-01-15", entry.Date)
	assert.NotEqual(t, uuid.Nil, entry.ID)
	assert.Nil(t, entry.Score)
	assert.Empty(t, entry.Todos)
	assert.Empty(t, entry.Notes)
	assert.Empty(t, entry.Links)
}

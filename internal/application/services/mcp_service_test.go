package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifelog/core/internal/domain/entities"
	"github.com/lifelog/core/internal/infrastructure/logger"
	"github.com/lifelog/core/internal/ports"
)

func newMCPFixture(t *testing.T) (*MCPService, *EntryService, *fakeCategoryRepo, uuid.UUID) {
	t.Helper()
	entryRepo := newFakeEntryRepo()
	categoryRepo := newFakeCategoryRepo()
	mcp := NewMCPService(entryRepo, categoryRepo, logger.NewNop())
	entries := NewEntryService(entryRepo, categoryRepo, logger.NewNop())
	return mcp, entries, categoryRepo, uuid.New()
}

func TestAddTodoDefaultsToToday(t *testing.T) {
	mcp, entries, _, userID := newMCPFixture(t)
	ctx := context.Background()

	todo, err := mcp.AddTodo(ctx, userID, ports.AddTodoInput{Content: "call the dentist"})
	require.NoError(t, err)
	assert.Equal(t, 0, todo.SortOrder)

	entry, err := entries.GetEntry(ctx, userID, entities.Today())
	require.NoError(t, err)
	require.Len(t, entry.Todos, 1)
	assert.Equal(t, "call the dentist", entry.Todos[0].Content)
}

func TestAddTodoAppendsAfterExistingSortOrder(t *testing.T) {
	mcp, entries, _, userID := newMCPFixture(t)
	ctx := context.Background()

	_, err := entries.Upsert(ctx, userID, ports.EntryInput{
		Date: "2026-04-01",
		Todos: []ports.TodoInput{
			{Content: "existing", SortOrder: intPtr(5)},
		},
		Notes: []ports.NoteInput{{Content: "keep me"}},
	})
	require.NoError(t, err)

	todo, err := mcp.AddTodo(ctx, userID, ports.AddTodoInput{
		Date:    "2026-04-01",
		Content: "appended",
	})
	require.NoError(t, err)
	assert.Equal(t, 6, todo.SortOrder)

	// Existing children are untouched.
	entry, err := entries.GetEntry(ctx, userID, "2026-04-01")
	require.NoError(t, err)
	assert.Len(t, entry.Todos, 2)
	assert.Len(t, entry.Notes, 1)
}

func TestAddTodoRejectsBlankContent(t *testing.T) {
	mcp, _, _, userID := newMCPFixture(t)

	_, err := mcp.AddTodo(context.Background(), userID, ports.AddTodoInput{Content: "   "})
	assert.ErrorIs(t, err, entities.ErrEmptyContent)
}

func TestAddNoteResolvesCategoryByName(t *testing.T) {
	mcp, _, categoryRepo, userID := newMCPFixture(t)
	ctx := context.Background()

	learning := &entities.Category{ID: uuid.New(), UserID: userID, Name: "Learning"}
	require.NoError(t, categoryRepo.Create(ctx, learning))

	note, err := mcp.AddNote(ctx, userID, ports.AddNoteInput{
		Date:     "2026-04-01",
		Content:  "read about sqlx",
		Category: strPtr("Learning"),
	})
	require.NoError(t, err)
	require.NotNil(t, note.CategoryID)
	assert.Equal(t, learning.ID, *note.CategoryID)

	// Name matching is case-sensitive; a miss stores uncategorized.
	miss, err := mcp.AddNote(ctx, userID, ports.AddNoteInput{
		Date:     "2026-04-01",
		Content:  "lowercase miss",
		Category: strPtr("learning"),
	})
	require.NoError(t, err)
	assert.Nil(t, miss.CategoryID)
}

func TestSearchMatchesTodoNoteAndHighlights(t *testing.T) {
	mcp, entries, _, userID := newMCPFixture(t)
	ctx := context.Background()

	_, err := entries.Upsert(ctx, userID, ports.EntryInput{
		Date: "2026-04-01",
		Todos: []ports.TodoInput{
			{Content: "review PR", Note: strPtr("the sqlx migration one")},
		},
		Notes: []ports.NoteInput{
			{Content: "SQLX named queries are handy"},
		},
	})
	require.NoError(t, err)

	response, err := mcp.Search(ctx, userID, "sqlx", ports.EntryFilter{})
	require.NoError(t, err)
	// Total counts matching dates, not individual matches.
	assert.Equal(t, 1, response.Total)
	require.Len(t, response.Results, 1)
	assert.Equal(t, "2026-04-01", response.Results[0].Date)

	byType := map[string]ports.SearchMatch{}
	for _, m := range response.Results[0].Matches {
		byType[m.Type] = m
	}

	// The todo matched through its note text.
	assert.Equal(t, "the **sqlx** migration one", byType["todo"].Highlight)
	// Highlighting preserves the original casing of the matched span.
	assert.Equal(t, "**SQLX** named queries are handy", byType["note"].Highlight)
}

func TestSearchScansTheWholeRange(t *testing.T) {
	mcp, entries, _, userID := newMCPFixture(t)
	ctx := context.Background()

	// 25 entries, the needle only in the oldest. The default page size must
	// not shrink the scan.
	for day := 1; day <= 25; day++ {
		content := "routine"
		if day == 1 {
			content = "renew the passport"
		}
		_, err := entries.Upsert(ctx, userID, ports.EntryInput{
			Date:  fmt.Sprintf("2026-03-%02d", day),
			Todos: []ports.TodoInput{{Content: content}},
		})
		require.NoError(t, err)
	}

	response, err := mcp.Search(ctx, userID, "passport", ports.EntryFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, response.Total)
	require.Len(t, response.Results, 1)
	assert.Equal(t, "2026-03-01", response.Results[0].Date)
}

func TestSearchTruncatesResultsNotTheScan(t *testing.T) {
	mcp, entries, _, userID := newMCPFixture(t)
	ctx := context.Background()

	for day := 1; day <= 3; day++ {
		_, err := entries.Upsert(ctx, userID, ports.EntryInput{
			Date:  fmt.Sprintf("2026-03-%02d", day),
			Notes: []ports.NoteInput{{Content: "weekly standup recap"}},
		})
		require.NoError(t, err)
	}

	response, err := mcp.Search(ctx, userID, "standup", ports.EntryFilter{Limit: 2})
	require.NoError(t, err)
	// Total reports every matching date; the limit only caps the page.
	assert.Equal(t, 3, response.Total)
	require.Len(t, response.Results, 2)
	assert.Equal(t, "2026-03-03", response.Results[0].Date)
	assert.Equal(t, "2026-03-02", response.Results[1].Date)
}

func TestSearchReportsTodoContentAndNoteSeparately(t *testing.T) {
	mcp, entries, _, userID := newMCPFixture(t)
	ctx := context.Background()

	_, err := entries.Upsert(ctx, userID, ports.EntryInput{
		Date: "2026-04-01",
		Todos: []ports.TodoInput{
			{Content: "tune the sqlx pool", Note: strPtr("sqlx defaults were too low")},
		},
	})
	require.NoError(t, err)

	response, err := mcp.Search(ctx, userID, "sqlx", ports.EntryFilter{})
	require.NoError(t, err)
	require.Len(t, response.Results, 1)

	// One todo, two hits: its content and its note each match.
	matches := response.Results[0].Matches
	require.Len(t, matches, 2)
	assert.Equal(t, "tune the **sqlx** pool", matches[0].Highlight)
	assert.Equal(t, "**sqlx** defaults were too low", matches[1].Highlight)
}

func TestSearchHighlightsMultibyteContent(t *testing.T) {
	mcp, entries, _, userID := newMCPFixture(t)
	ctx := context.Background()

	_, err := entries.Upsert(ctx, userID, ports.EntryInput{
		Date: "2026-04-01",
		Notes: []ports.NoteInput{
			{Content: "ȺȺȺȺ match"},
			{Content: "match here, MATCH there"},
		},
	})
	require.NoError(t, err)

	response, err := mcp.Search(ctx, userID, "match", ports.EntryFilter{})
	require.NoError(t, err)
	require.Len(t, response.Results, 1)
	require.Len(t, response.Results[0].Matches, 2)

	highlights := []string{
		response.Results[0].Matches[0].Highlight,
		response.Results[0].Matches[1].Highlight,
	}
	assert.Contains(t, highlights, "ȺȺȺȺ **match**")
	// Every occurrence is marked, each keeping its own casing.
	assert.Contains(t, highlights, "**match** here, **MATCH** there")
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	mcp, _, _, userID := newMCPFixture(t)

	_, err := mcp.Search(context.Background(), userID, "  ", ports.EntryFilter{})
	assert.ErrorIs(t, err, entities.ErrEmptyContent)
}

func TestStatsAggregates(t *testing.T) {
	mcp, entries, categoryRepo, userID := newMCPFixture(t)
	ctx := context.Background()

	work := &entities.Category{ID: uuid.New(), UserID: userID, Name: "Work"}
	require.NoError(t, categoryRepo.Create(ctx, work))
	workID := work.ID.String()

	_, err := entries.Upsert(ctx, userID, ports.EntryInput{
		Date:  "2026-04-01",
		Score: intPtr(4),
		Todos: []ports.TodoInput{
			{Content: "a", IsCompleted: true},
			{Content: "b"},
		},
		Notes: []ports.NoteInput{{Content: "n1", CategoryID: &workID}},
	})
	require.NoError(t, err)

	_, err = entries.Upsert(ctx, userID, ports.EntryInput{
		Date:  "2026-04-02",
		Score: intPtr(8),
		Todos: []ports.TodoInput{{Content: "c", IsCompleted: true}},
	})
	require.NoError(t, err)

	stats, err := mcp.Stats(ctx, userID, ports.EntryFilter{})
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Activity.TotalEntries)
	assert.Equal(t, 3, stats.Activity.TotalTodos)
	assert.Equal(t, 2, stats.Activity.CompletedTodos)
	assert.InDelta(t, 2.0/3.0, stats.Activity.CompletionRate, 1e-9)

	require.NotNil(t, stats.Score.Average)
	assert.InDelta(t, 6.0, *stats.Score.Average, 1e-9)
	assert.Equal(t, 4, *stats.Score.Min)
	assert.Equal(t, 8, *stats.Score.Max)

	// Trend runs oldest first.
	require.Len(t, stats.Score.Trend, 2)
	assert.Equal(t, "2026-04-01", stats.Score.Trend[0].Date)
	assert.Equal(t, "2026-04-02", stats.Score.Trend[1].Date)

	require.Len(t, stats.Categories, 1)
	assert.Equal(t, "Work", stats.Categories[0].Name)
	assert.Equal(t, 1, stats.Categories[0].NoteCount)
}

func TestIncompleteTodos(t *testing.T) {
	mcp, entries, _, userID := newMCPFixture(t)
	ctx := context.Background()

	_, err := entries.Upsert(ctx, userID, ports.EntryInput{
		Date: "2026-04-01",
		Todos: []ports.TodoInput{
			{Content: "done", IsCompleted: true},
			{Content: "pending"},
		},
	})
	require.NoError(t, err)

	todos, err := mcp.IncompleteTodos(ctx, userID, ports.EntryFilter{})
	require.NoError(t, err)
	require.Len(t, todos, 1)
	assert.Equal(t, "pending", todos[0].Content)
	assert.Equal(t, "2026-04-01", todos[0].Date)
}

func TestNotesByCategory(t *testing.T) {
	mcp, entries, categoryRepo, userID := newMCPFixture(t)
	ctx := context.Background()

	work := &entities.Category{ID: uuid.New(), UserID: userID, Name: "Work"}
	require.NoError(t, categoryRepo.Create(ctx, work))
	workID := work.ID.String()

	_, err := entries.Upsert(ctx, userID, ports.EntryInput{
		Date: "2026-04-01",
		Notes: []ports.NoteInput{
			{Content: "filed", CategoryID: &workID},
			{Content: "loose"},
		},
	})
	require.NoError(t, err)

	filed, err := mcp.NotesByCategory(ctx, userID, "Work", ports.EntryFilter{})
	require.NoError(t, err)
	require.Len(t, filed, 1)
	assert.Equal(t, "filed", filed[0].Content)
	require.NotNil(t, filed[0].Category)
	assert.Equal(t, "Work", *filed[0].Category)

	// Empty name selects uncategorized notes.
	loose, err := mcp.NotesByCategory(ctx, userID, "", ports.EntryFilter{})
	require.NoError(t, err)
	require.Len(t, loose, 1)
	assert.Equal(t, "loose", loose[0].Content)

	_, err = mcp.NotesByCategory(ctx, userID, "Nope", ports.EntryFilter{})
	assert.ErrorIs(t, err, entities.ErrCategoryNotFound)
}

func TestGetEntryDetailResolvesCategoryNames(t *testing.T) {
	mcp, entries, categoryRepo, userID := newMCPFixture(t)
	ctx := context.Background()

	life := &entities.Category{ID: uuid.New(), UserID: userID, Name: "Life"}
	require.NoError(t, categoryRepo.Create(ctx, life))
	lifeID := life.ID.String()

	_, err := entries.Upsert(ctx, userID, ports.EntryInput{
		Date:  "2026-04-01",
		Notes: []ports.NoteInput{{Content: "groceries", CategoryID: &lifeID}},
	})
	require.NoError(t, err)

	detail, err := mcp.GetEntryDetail(ctx, userID, "2026-04-01")
	require.NoError(t, err)
	require.Len(t, detail.Notes, 1)
	require.NotNil(t, detail.Notes[0].Category)
	assert.Equal(t, "Life", *detail.Notes[0].Category)
}

func TestListEntriesSummariesAndPaging(t *testing.T) {
	mcp, entries, _, userID := newMCPFixture(t)
	ctx := context.Background()

	for _, date := range []string{"2026-04-01", "2026-04-02", "2026-04-03"} {
		_, err := entries.Upsert(ctx, userID, ports.EntryInput{
			Date:  date,
			Todos: []ports.TodoInput{{Content: "x", IsCompleted: true}, {Content: "y"}},
		})
		require.NoError(t, err)
	}

	list, err := mcp.ListEntries(ctx, userID, ports.EntryFilter{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), list.Total)
	assert.True(t, list.HasMore)
	require.Len(t, list.Entries, 2)
	assert.Equal(t, "2026-04-03", list.Entries[0].Date)
	assert.Equal(t, 2, list.Entries[0].TodoCount)
	assert.Equal(t, 1, list.Entries[0].CompletedTodoCount)
}

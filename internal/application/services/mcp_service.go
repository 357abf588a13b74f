package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/lifelog/core/internal/domain/entities"
	"github.com/lifelog/core/internal/infrastructure/logger"
	"github.com/lifelog/core/internal/ports"
)

// MCPService implements the read and write tools exposed to AI assistants
// over the API-key surface. Reads are projections of the same entry data the
// app edits; writes append to an entry without disturbing its other children.
type MCPService struct {
	entryRepo    ports.EntryRepository
	categoryRepo ports.CategoryRepository
	logger       *logger.Logger
}

// NewMCPService creates a new MCP service
func NewMCPService(entryRepo ports.EntryRepository, categoryRepo ports.CategoryRepository, logger *logger.Logger) *MCPService {
	return &MCPService{
		entryRepo:    entryRepo,
		categoryRepo: categoryRepo,
		logger:       logger,
	}
}

// clampLimit applies a default and an upper bound to a filter's page size.
func clampLimit(filter ports.EntryFilter, def, max int) ports.EntryFilter {
	if filter.Limit <= 0 {
		filter.Limit = def
	}
	if filter.Limit > max {
		filter.Limit = max
	}
	return filter
}

// ListEntries returns summaries for a date range, newest first.
func (s *MCPService) ListEntries(ctx context.Context, userID uuid.UUID, filter ports.EntryFilter) (*ports.EntryList, error) {
	filter = clampLimit(filter, 30, 100)

	entries, err := s.entryRepo.List(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	total, err := s.entryRepo.Count(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("count entries: %w", err)
	}

	summaries := make([]ports.EntrySummary, 0, len(entries))
	for _, entry := range entries {
		completed := 0
		for _, t := range entry.Todos {
			if t.IsCompleted {
				completed++
			}
		}
		summaries = append(summaries, ports.EntrySummary{
			ID:                 entry.ID.String(),
			Date:               entry.Date,
			Score:              entry.Score,
			TodoCount:          len(entry.Todos),
			CompletedTodoCount: completed,
			NoteCount:          len(entry.Notes),
			LinkCount:          len(entry.Links),
		})
	}

	return &ports.EntryList{
		Entries: summaries,
		Total:   total,
		HasMore: int64(filter.Offset+len(entries)) < total,
	}, nil
}

// GetEntryDetail returns one entry with category references resolved to
// names.
func (s *MCPService) GetEntryDetail(ctx context.Context, userID uuid.UUID, date string) (*ports.EntryDetail, error) {
	if !entities.ValidDate(date) {
		return nil, entities.ErrInvalidDate
	}

	entry, err := s.entryRepo.GetByDate(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	names, err := s.categoryNames(ctx, userID)
	if err != nil {
		return nil, err
	}

	detail := &ports.EntryDetail{
		ID:    entry.ID.String(),
		Date:  entry.Date,
		Score: entry.Score,
		Todos: make([]ports.TodoDetail, 0, len(entry.Todos)),
		Notes: make([]ports.NoteDetail, 0, len(entry.Notes)),
		Links: make([]ports.LinkDetail, 0, len(entry.Links)),
	}

	for _, t := range entry.Todos {
		detail.Todos = append(detail.Todos, ports.TodoDetail{
			Content:     t.Content,
			IsCompleted: t.IsCompleted,
			Note:        t.Note,
		})
	}
	for _, n := range entry.Notes {
		detail.Notes = append(detail.Notes, ports.NoteDetail{
			Category: lookupName(names, n.CategoryID),
			Content:  n.Content,
		})
	}
	for _, l := range entry.Links {
		detail.Links = append(detail.Links, ports.LinkDetail{
			URL:   l.URL,
			Title: l.Title,
		})
	}

	return detail, nil
}

// Search scans todo contents, todo notes and note contents for a
// case-insensitive substring, grouping hits per date, newest first. The
// whole date range is scanned; the limit truncates the result dates, and
// Total reports how many dates matched before truncation.
func (s *MCPService) Search(ctx context.Context, userID uuid.UUID, query string, filter ports.EntryFilter) (*ports.SearchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, entities.ErrEmptyContent
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 50 {
		limit = 50
	}

	entries, err := s.entryRepo.List(ctx, userID, ports.EntryFilter{From: filter.From, To: filter.To})
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	names, err := s.categoryNames(ctx, userID)
	if err != nil {
		return nil, err
	}

	pattern := searchPattern(query)

	results := []ports.SearchResult{}
	for _, entry := range entries {
		matches := []ports.SearchMatch{}

		// A todo can match through its content and its note; each hit is
		// reported separately.
		for _, t := range entry.Todos {
			if pattern.MatchString(t.Content) {
				matches = append(matches, ports.SearchMatch{
					Type:      "todo",
					Content:   t.Content,
					Highlight: highlightAll(pattern, t.Content),
				})
			}
			if t.Note != nil && pattern.MatchString(*t.Note) {
				matches = append(matches, ports.SearchMatch{
					Type:      "todo",
					Content:   *t.Note,
					Highlight: highlightAll(pattern, *t.Note),
				})
			}
		}

		for _, n := range entry.Notes {
			if pattern.MatchString(n.Content) {
				matches = append(matches, ports.SearchMatch{
					Type:      "note",
					Content:   n.Content,
					Category:  lookupName(names, n.CategoryID),
					Highlight: highlightAll(pattern, n.Content),
				})
			}
		}

		if len(matches) > 0 {
			results = append(results, ports.SearchResult{
				Date:    entry.Date,
				Matches: matches,
			})
		}
	}

	response := &ports.SearchResponse{Total: len(results)}
	if len(results) > limit {
		results = results[:limit]
	}
	response.Results = results

	return response, nil
}

// Stats aggregates scores, activity counts and category usage over a date
// range. Everything is computed on the fly from the entries themselves.
func (s *MCPService) Stats(ctx context.Context, userID uuid.UUID, filter ports.EntryFilter) (*ports.Stats, error) {
	entries, err := s.entryRepo.List(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	names, err := s.categoryNames(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := &ports.Stats{Categories: []ports.CategoryCount{}}
	if filter.From != "" {
		from := filter.From
		stats.Period.From = &from
	}
	if filter.To != "" {
		to := filter.To
		stats.Period.To = &to
	}
	stats.Score.Trend = []ports.ScorePoint{}

	scoreSum := 0
	scoreCount := 0
	categoryCounts := map[string]int{}

	// List is newest-first; the trend reads oldest-first.
	for i := len(entries) - 1; i >= 0; i-- {
		entry := entries[i]

		if entry.Score != nil {
			score := *entry.Score
			scoreSum += score
			scoreCount++
			stats.Score.Trend = append(stats.Score.Trend, ports.ScorePoint{
				Date:  entry.Date,
				Score: score,
			})
			if stats.Score.Min == nil || score < *stats.Score.Min {
				v := score
				stats.Score.Min = &v
			}
			if stats.Score.Max == nil || score > *stats.Score.Max {
				v := score
				stats.Score.Max = &v
			}
		}

		stats.Activity.TotalEntries++
		stats.Activity.TotalTodos += len(entry.Todos)
		for _, t := range entry.Todos {
			if t.IsCompleted {
				stats.Activity.CompletedTodos++
			}
		}
		stats.Activity.TotalNotes += len(entry.Notes)
		stats.Activity.TotalLinks += len(entry.Links)

		for _, n := range entry.Notes {
			if name := lookupName(names, n.CategoryID); name != nil {
				categoryCounts[*name]++
			}
		}
	}

	if scoreCount > 0 {
		avg := float64(scoreSum) / float64(scoreCount)
		stats.Score.Average = &avg
	}
	if stats.Activity.TotalTodos > 0 {
		stats.Activity.CompletionRate = float64(stats.Activity.CompletedTodos) / float64(stats.Activity.TotalTodos)
	}

	// Preserve the user's category order in the breakdown.
	categories, err := s.categoryRepo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	for _, c := range categories {
		if count, ok := categoryCounts[c.Name]; ok {
			stats.Categories = append(stats.Categories, ports.CategoryCount{
				Name:      c.Name,
				NoteCount: count,
			})
		}
	}

	return stats, nil
}

// Categories returns every category in the user's sort order with its note
// count over a date range. Categories without notes are included at zero.
func (s *MCPService) Categories(ctx context.Context, userID uuid.UUID, filter ports.EntryFilter) ([]ports.CategoryCount, error) {
	categories, err := s.categoryRepo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	entries, err := s.entryRepo.List(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	counts := map[uuid.UUID]int{}
	for _, entry := range entries {
		for _, n := range entry.Notes {
			if n.CategoryID != nil {
				counts[*n.CategoryID]++
			}
		}
	}

	out := make([]ports.CategoryCount, 0, len(categories))
	for _, c := range categories {
		out = append(out, ports.CategoryCount{
			Name:      c.Name,
			NoteCount: counts[c.ID],
		})
	}
	return out, nil
}

// AddTodo appends one todo to a date's entry, creating the entry when the
// date has nothing yet. Existing children are untouched.
func (s *MCPService) AddTodo(ctx context.Context, userID uuid.UUID, input ports.AddTodoInput) (*entities.Todo, error) {
	date := input.Date
	if date == "" {
		date = entities.Today()
	}
	if !entities.ValidDate(date) {
		return nil, entities.ErrInvalidDate
	}
	if strings.TrimSpace(input.Content) == "" {
		return nil, entities.ErrEmptyContent
	}

	entry, err := s.ensureEntry(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	todo := entities.Todo{
		ID:        uuid.New(),
		EntryID:   entry.ID,
		Content:   input.Content,
		Note:      input.Note,
		SortOrder: entry.MaxTodoSortOrder() + 1,
	}
	entry.Todos = append(entry.Todos, todo)

	if err := s.entryRepo.ReplaceChildren(ctx, entry.ID, entry.Todos, entry.Notes, entry.Links); err != nil {
		return nil, fmt.Errorf("replace children: %w", err)
	}

	s.logger.LogSyncEvent(userID.String(), date, "mcp_add_todo", nil)

	return &todo, nil
}

// AddNote appends one note to a date's entry. The category is resolved by
// exact name; an unknown name stores the note uncategorized.
func (s *MCPService) AddNote(ctx context.Context, userID uuid.UUID, input ports.AddNoteInput) (*entities.Note, error) {
	date := input.Date
	if date == "" {
		date = entities.Today()
	}
	if !entities.ValidDate(date) {
		return nil, entities.ErrInvalidDate
	}
	if strings.TrimSpace(input.Content) == "" {
		return nil, entities.ErrEmptyContent
	}

	var categoryID *uuid.UUID
	if input.Category != nil {
		category, err := s.categoryRepo.FindByName(ctx, userID, *input.Category)
		if err == nil {
			categoryID = &category.ID
		} else if !errors.Is(err, entities.ErrCategoryNotFound) {
			return nil, fmt.Errorf("find category: %w", err)
		}
	}

	entry, err := s.ensureEntry(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	note := entities.Note{
		ID:         uuid.New(),
		EntryID:    entry.ID,
		CategoryID: categoryID,
		Content:    input.Content,
	}
	entry.Notes = append(entry.Notes, note)

	if err := s.entryRepo.ReplaceChildren(ctx, entry.ID, entry.Todos, entry.Notes, entry.Links); err != nil {
		return nil, fmt.Errorf("replace children: %w", err)
	}

	s.logger.LogSyncEvent(userID.String(), date, "mcp_add_note", nil)

	return &note, nil
}

// IncompleteTodos returns pending todos across a date range, newest date
// first, annotated with their entry dates.
func (s *MCPService) IncompleteTodos(ctx context.Context, userID uuid.UUID, filter ports.EntryFilter) ([]ports.IncompleteTodo, error) {
	entries, err := s.entryRepo.List(ctx, userID, clampLimit(filter, 50, 100))
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	todos := []ports.IncompleteTodo{}
	for _, entry := range entries {
		for _, t := range entry.Todos {
			if !t.IsCompleted {
				todos = append(todos, ports.IncompleteTodo{
					Todo: t,
					Date: entry.Date,
				})
			}
		}
	}

	return todos, nil
}

// NotesByCategory returns notes filed under a named category across a date
// range. An empty name returns uncategorized notes.
func (s *MCPService) NotesByCategory(ctx context.Context, userID uuid.UUID, categoryName string, filter ports.EntryFilter) ([]ports.CategoryNote, error) {
	var wantID *uuid.UUID
	if categoryName != "" {
		category, err := s.categoryRepo.FindByName(ctx, userID, categoryName)
		if err != nil {
			return nil, err
		}
		wantID = &category.ID
	}

	entries, err := s.entryRepo.List(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	names, err := s.categoryNames(ctx, userID)
	if err != nil {
		return nil, err
	}

	notes := []ports.CategoryNote{}
	for _, entry := range entries {
		for _, n := range entry.Notes {
			match := false
			switch {
			case wantID == nil:
				match = n.CategoryID == nil
			case n.CategoryID != nil:
				match = *n.CategoryID == *wantID
			}
			if match {
				notes = append(notes, ports.CategoryNote{
					Date:     entry.Date,
					Category: lookupName(names, n.CategoryID),
					Content:  n.Content,
				})
			}
		}
	}

	return notes, nil
}

func (s *MCPService) ensureEntry(ctx context.Context, userID uuid.UUID, date string) (*entities.Entry, error) {
	entry, err := s.entryRepo.GetByDate(ctx, userID, date)
	if err == nil {
		return entry, nil
	}
	if !errors.Is(err, entities.ErrEntryNotFound) {
		return nil, fmt.Errorf("get entry: %w", err)
	}

	entry = entities.NewEmptyEntry(date)
	entry.UserID = userID
	if err := s.entryRepo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("create entry: %w", err)
	}

	return entry, nil
}

func (s *MCPService) categoryNames(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]string, error) {
	categories, err := s.categoryRepo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	names := make(map[uuid.UUID]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	return names, nil
}

func lookupName(names map[uuid.UUID]string, id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	if name, ok := names[*id]; ok {
		return &name
	}
	return nil
}

// searchPattern compiles a case-insensitive literal matcher for the query.
func searchPattern(query string) *regexp.Regexp {
	return regexp.MustCompile("(?i)" + regexp.QuoteMeta(query))
}

// highlightAll wraps every occurrence of the pattern in ** markers,
// preserving the original casing of each matched span.
func highlightAll(pattern *regexp.Regexp, content string) string {
	return pattern.ReplaceAllString(content, "**$0**")
}

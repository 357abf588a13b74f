package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/lifelog/core/internal/domain/entities"
	"github.com/lifelog/core/internal/infrastructure/logger"
	"github.com/lifelog/core/internal/ports"
)

// EntryService handles journal entry operations
type EntryService struct {
	entryRepo    ports.EntryRepository
	categoryRepo ports.CategoryRepository
	logger       *logger.Logger
}

// NewEntryService creates a new entry service
func NewEntryService(entryRepo ports.EntryRepository, categoryRepo ports.CategoryRepository, logger *logger.Logger) *EntryService {
	return &EntryService{
		entryRepo:    entryRepo,
		categoryRepo: categoryRepo,
		logger:       logger,
	}
}

// GetEntry returns the entry for a date with all children. A date with
// nothing recorded yields an empty entry rather than an error, so the client
// always has something to render.
func (s *EntryService) GetEntry(ctx context.Context, userID uuid.UUID, date string) (*entities.Entry, error) {
	if !entities.ValidDate(date) {
		return nil, entities.ErrInvalidDate
	}

	entry, err := s.entryRepo.GetByDate(ctx, userID, date)
	if err != nil {
		if errors.Is(err, entities.ErrEntryNotFound) {
			return entities.NewEmptyEntry(date), nil
		}
		return nil, fmt.Errorf("get entry: %w", err)
	}

	return entry, nil
}

// Upsert writes the full desired state of one entry. Scalars are updated in
// place; children are replaced wholesale, so the submitted sets are exactly
// what is stored afterwards. Blank-content children are dropped first.
func (s *EntryService) Upsert(ctx context.Context, userID uuid.UUID, input ports.EntryInput) (*entities.Entry, error) {
	entry, err := s.buildEntry(userID, input)
	if err != nil {
		return nil, err
	}

	existing, err := s.entryRepo.FindByDate(ctx, userID, input.Date)
	switch {
	case err == nil:
		entry.ID = existing.ID
		if err := s.entryRepo.UpdateScalars(ctx, entry); err != nil {
			return nil, fmt.Errorf("update entry: %w", err)
		}
	case errors.Is(err, entities.ErrEntryNotFound):
		if err := s.entryRepo.Create(ctx, entry); err != nil {
			return nil, fmt.Errorf("create entry: %w", err)
		}
	default:
		return nil, fmt.Errorf("find entry: %w", err)
	}

	if err := s.entryRepo.ReplaceChildren(ctx, entry.ID, entry.Todos, entry.Notes, entry.Links); err != nil {
		return nil, fmt.Errorf("replace children: %w", err)
	}

	s.logger.LogSyncEvent(userID.String(), input.Date, "upsert", map[string]interface{}{
		"todos": len(entry.Todos),
		"notes": len(entry.Notes),
		"links": len(entry.Links),
	})

	return s.entryRepo.GetByDate(ctx, userID, input.Date)
}

// ListEntries returns a page of entries, newest first.
func (s *EntryService) ListEntries(ctx context.Context, userID uuid.UUID, filter ports.EntryFilter) ([]*entities.Entry, int64, error) {
	entries, err := s.entryRepo.List(ctx, userID, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list entries: %w", err)
	}

	total, err := s.entryRepo.Count(ctx, userID, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count entries: %w", err)
	}

	return entries, total, nil
}

// DeleteEntry removes an entry and its children.
func (s *EntryService) DeleteEntry(ctx context.Context, userID uuid.UUID, date string) error {
	if !entities.ValidDate(date) {
		return entities.ErrInvalidDate
	}
	return s.entryRepo.Delete(ctx, userID, date)
}

// Migrate imports trial-mode data in one shot. Categories are matched to
// existing server categories by exact name and created otherwise; note
// references are re-keyed from local category IDs to the server ones. Entries
// whose date already exists server-side are skipped. A failure on one entry
// does not abort the rest.
func (s *EntryService) Migrate(ctx context.Context, userID uuid.UUID, input ports.MigrateInput) (*ports.MigrateResult, error) {
	categoryIDs, err := s.mapCategories(ctx, userID, input.Categories)
	if err != nil {
		return nil, err
	}

	migrated := 0
	for _, entryInput := range input.Entries {
		ok, err := s.migrateEntry(ctx, userID, entryInput, categoryIDs)
		if err != nil {
			s.logger.WithError(err).Warnw("Skipping entry during migration",
				"user_id", userID, "date", entryInput.Date)
			continue
		}
		if ok {
			migrated++
		}
	}

	s.logger.LogSyncEvent(userID.String(), "", "migrate", map[string]interface{}{
		"submitted": len(input.Entries),
		"migrated":  migrated,
	})

	return &ports.MigrateResult{MigratedCount: migrated}, nil
}

// mapCategories resolves every local category to a server category ID,
// reusing same-named server categories and creating the rest.
func (s *EntryService) mapCategories(ctx context.Context, userID uuid.UUID, locals []ports.MigrateCategoryInput) (map[string]uuid.UUID, error) {
	existing, err := s.categoryRepo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	maxOrder := -1
	for _, c := range existing {
		if c.SortOrder > maxOrder {
			maxOrder = c.SortOrder
		}
	}

	ids := make(map[string]uuid.UUID, len(locals))
	for _, local := range locals {
		found, err := s.categoryRepo.FindByName(ctx, userID, local.Name)
		if err == nil {
			ids[local.ID] = found.ID
			continue
		}
		if !errors.Is(err, entities.ErrCategoryNotFound) {
			return nil, fmt.Errorf("find category: %w", err)
		}

		maxOrder++
		category := &entities.Category{
			ID:        uuid.New(),
			UserID:    userID,
			Name:      local.Name,
			Color:     local.Color,
			SortOrder: maxOrder,
		}
		if err := s.categoryRepo.Create(ctx, category); err != nil {
			return nil, fmt.Errorf("create category: %w", err)
		}
		ids[local.ID] = category.ID
	}

	return ids, nil
}

func (s *EntryService) migrateEntry(ctx context.Context, userID uuid.UUID, input ports.EntryInput, categoryIDs map[string]uuid.UUID) (bool, error) {
	// Re-key note references before building, so buildEntry sees server IDs.
	for i, note := range input.Notes {
		if note.CategoryID == nil {
			continue
		}
		if remote, ok := categoryIDs[*note.CategoryID]; ok {
			id := remote.String()
			input.Notes[i].CategoryID = &id
		} else {
			input.Notes[i].CategoryID = nil
		}
	}

	entry, err := s.buildEntry(userID, input)
	if err != nil {
		return false, err
	}

	// Local IDs never cross over; every migrated child gets a server identity.
	for i := range entry.Todos {
		entry.Todos[i].ID = uuid.New()
	}
	for i := range entry.Notes {
		entry.Notes[i].ID = uuid.New()
	}
	for i := range entry.Links {
		entry.Links[i].ID = uuid.New()
	}

	_, err = s.entryRepo.FindByDate(ctx, userID, input.Date)
	if err == nil {
		// Server data wins; never overwrite an existing date.
		return false, nil
	}
	if !errors.Is(err, entities.ErrEntryNotFound) {
		return false, fmt.Errorf("find entry: %w", err)
	}

	if err := s.entryRepo.Create(ctx, entry); err != nil {
		return false, fmt.Errorf("create entry: %w", err)
	}
	if err := s.entryRepo.ReplaceChildren(ctx, entry.ID, entry.Todos, entry.Notes, entry.Links); err != nil {
		return false, fmt.Errorf("replace children: %w", err)
	}

	return true, nil
}

// buildEntry validates the input and converts it to a domain entry. Children
// with a missing ID get a fresh one; supplied IDs are kept. A todo without an
// explicit sort order takes its position in the submitted list.
func (s *EntryService) buildEntry(userID uuid.UUID, input ports.EntryInput) (*entities.Entry, error) {
	entry := &entities.Entry{
		ID:          uuid.New(),
		UserID:      userID,
		Date:        input.Date,
		Score:       input.Score,
		ScoreReason: input.ScoreReason,
	}

	if err := entry.Validate(); err != nil {
		return nil, err
	}

	entry.Todos = make([]entities.Todo, 0, len(input.Todos))
	for i, t := range input.Todos {
		order := i
		if t.SortOrder != nil {
			order = *t.SortOrder
		}
		entry.Todos = append(entry.Todos, entities.Todo{
			ID:          childID(t.ID),
			Content:     t.Content,
			IsCompleted: t.IsCompleted,
			Note:        t.Note,
			SortOrder:   order,
		})
	}

	entry.Notes = make([]entities.Note, 0, len(input.Notes))
	for _, n := range input.Notes {
		var categoryID *uuid.UUID
		if n.CategoryID != nil {
			if parsed, err := uuid.Parse(*n.CategoryID); err == nil {
				categoryID = &parsed
			}
		}
		entry.Notes = append(entry.Notes, entities.Note{
			ID:         childID(n.ID),
			CategoryID: categoryID,
			Content:    n.Content,
		})
	}

	entry.Links = make([]entities.Link, 0, len(input.Links))
	for _, l := range input.Links {
		entry.Links = append(entry.Links, entities.Link{
			ID:          childID(l.ID),
			URL:         l.URL,
			Title:       l.Title,
			Description: l.Description,
		})
	}

	return entry.FilterEmpty(), nil
}

func childID(s string) uuid.UUID {
	if parsed, err := uuid.Parse(s); err == nil {
		return parsed
	}
	return uuid.New()
}

package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/lifelog/core/internal/domain/entities"
	"github.com/lifelog/core/internal/infrastructure/logger"
	"github.com/lifelog/core/internal/ports"
)

// MemoService handles standalone memo operations
type MemoService struct {
	memoRepo ports.MemoRepository
	logger   *logger.Logger
}

// NewMemoService creates a new memo service
func NewMemoService(memoRepo ports.MemoRepository, logger *logger.Logger) *MemoService {
	return &MemoService{
		memoRepo: memoRepo,
		logger:   logger,
	}
}

// ListMemos returns memos, optionally filtered by category.
func (s *MemoService) ListMemos(ctx context.Context, userID uuid.UUID, categoryID *uuid.UUID) ([]entities.Memo, error) {
	return s.memoRepo.List(ctx, userID, categoryID)
}

// GetMemo returns one memo.
func (s *MemoService) GetMemo(ctx context.Context, userID, id uuid.UUID) (*entities.Memo, error) {
	return s.memoRepo.GetByID(ctx, userID, id)
}

// CreateMemo stores a new memo. Date defaults to today.
func (s *MemoService) CreateMemo(ctx context.Context, userID uuid.UUID, input ports.MemoInput) (*entities.Memo, error) {
	memo, err := s.buildMemo(userID, input)
	if err != nil {
		return nil, err
	}

	if err := s.memoRepo.Create(ctx, memo); err != nil {
		return nil, err
	}

	return memo, nil
}

// UpdateMemo rewrites an existing memo.
func (s *MemoService) UpdateMemo(ctx context.Context, userID, id uuid.UUID, input ports.MemoInput) (*entities.Memo, error) {
	memo, err := s.memoRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	updated, err := s.buildMemo(userID, input)
	if err != nil {
		return nil, err
	}
	updated.ID = memo.ID
	updated.CreatedAt = memo.CreatedAt

	if err := s.memoRepo.Update(ctx, updated); err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteMemo removes a memo.
func (s *MemoService) DeleteMemo(ctx context.Context, userID, id uuid.UUID) error {
	return s.memoRepo.Delete(ctx, userID, id)
}

// ListMemoCategories returns the memo category list.
func (s *MemoService) ListMemoCategories(ctx context.Context, userID uuid.UUID) ([]entities.MemoCategory, error) {
	return s.memoRepo.ListCategories(ctx, userID)
}

// CreateMemoCategory appends a memo category at the end of the sort order.
func (s *MemoService) CreateMemoCategory(ctx context.Context, userID uuid.UUID, input ports.CategoryInput) (*entities.MemoCategory, error) {
	existing, err := s.memoRepo.ListCategories(ctx, userID)
	if err != nil {
		return nil, err
	}

	maxOrder := -1
	for _, c := range existing {
		if c.SortOrder > maxOrder {
			maxOrder = c.SortOrder
		}
	}

	category := &entities.MemoCategory{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      input.Name,
		Color:     input.Color,
		SortOrder: maxOrder + 1,
	}

	if err := s.memoRepo.CreateCategory(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

// DeleteMemoCategory removes a memo category.
func (s *MemoService) DeleteMemoCategory(ctx context.Context, userID, id uuid.UUID) error {
	return s.memoRepo.DeleteCategory(ctx, userID, id)
}

func (s *MemoService) buildMemo(userID uuid.UUID, input ports.MemoInput) (*entities.Memo, error) {
	date := input.Date
	if date == "" {
		date = entities.Today()
	}
	if !entities.ValidDate(date) {
		return nil, entities.ErrInvalidDate
	}

	var categoryID *uuid.UUID
	if input.CategoryID != nil {
		parsed, err := uuid.Parse(*input.CategoryID)
		if err != nil {
			return nil, entities.ErrCategoryNotFound
		}
		categoryID = &parsed
	}

	return &entities.Memo{
		ID:         uuid.New(),
		UserID:     userID,
		Title:      input.Title,
		Content:    input.Content,
		Date:       date,
		CategoryID: categoryID,
	}, nil
}

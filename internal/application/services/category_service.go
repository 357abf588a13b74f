package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/lifelog/core/internal/domain/entities"
	"github.com/lifelog/core/internal/infrastructure/logger"
	"github.com/lifelog/core/internal/ports"
)

// defaultCategories are seeded for every new account.
var defaultCategories = []string{"Work", "Learning", "Life"}

// CategoryService handles note category operations
type CategoryService struct {
	categoryRepo ports.CategoryRepository
	logger       *logger.Logger
}

// NewCategoryService creates a new category service
func NewCategoryService(categoryRepo ports.CategoryRepository, logger *logger.Logger) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		logger:       logger,
	}
}

// ListCategories returns the user's categories in sort order.
func (s *CategoryService) ListCategories(ctx context.Context, userID uuid.UUID) ([]entities.Category, error) {
	return s.categoryRepo.List(ctx, userID)
}

// CreateCategory appends a category at the end of the sort order.
func (s *CategoryService) CreateCategory(ctx context.Context, userID uuid.UUID, input ports.CategoryInput) (*entities.Category, error) {
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

	category := &entities.Category{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      input.Name,
		Color:     input.Color,
		SortOrder: maxOrder + 1,
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

// UpdateCategory renames or recolors a category.
func (s *CategoryService) UpdateCategory(ctx context.Context, userID, id uuid.UUID, input ports.CategoryInput) (*entities.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	category.Name = input.Name
	category.Color = input.Color

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

// DeleteCategory removes a category. Notes keep their content; their category
// reference is cleared by the schema.
func (s *CategoryService) DeleteCategory(ctx context.Context, userID, id uuid.UUID) error {
	return s.categoryRepo.Delete(ctx, userID, id)
}

// BootstrapDefaults seeds the default categories for a new account. Existing
// names are left alone, so the call is safe to repeat.
func (s *CategoryService) BootstrapDefaults(ctx context.Context, userID uuid.UUID) error {
	for i, name := range defaultCategories {
		_, err := s.categoryRepo.FindByName(ctx, userID, name)
		if err == nil {
			continue
		}

		category := &entities.Category{
			ID:        uuid.New(),
			UserID:    userID,
			Name:      name,
			SortOrder: i,
		}
		if err := s.categoryRepo.Create(ctx, category); err != nil {
			return fmt.Errorf("seed category %q: %w", name, err)
		}
	}

	s.logger.Debugw("Default categories seeded", "user_id", userID)
	return nil
}

package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/lifelog/core/internal/domain/entities"
	"github.com/lifelog/core/internal/ports"
)

// CategoryRepositoryImpl implements the CategoryRepository interface
type CategoryRepositoryImpl struct {
	db *sqlx.DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *sqlx.DB) ports.CategoryRepository {
	return &CategoryRepositoryImpl{db: db}
}

func (r *CategoryRepositoryImpl) GetByID(ctx context.Context, userID, id uuid.UUID) (*entities.Category, error) {
	query := `
		SELECT id, user_id, name, color, sort_order, created_at
		FROM categories
		WHERE user_id = $1 AND id = $2`

	var category entities.Category
	err := r.db.GetContext(ctx, &category, query, userID, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("get category by id: %w", err)
	}

	return &category, nil
}

func (r *CategoryRepositoryImpl) FindByName(ctx context.Context, userID uuid.UUID, name string) (*entities.Category, error) {
	query := `
		SELECT id, user_id, name, color, sort_order, created_at
		FROM categories
		WHERE user_id = $1 AND name = $2`

	var category entities.Category
	err := r.db.GetContext(ctx, &category, query, userID, name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("find category by name: %w", err)
	}

	return &category, nil
}

func (r *CategoryRepositoryImpl) List(ctx context.Context, userID uuid.UUID) ([]entities.Category, error) {
	query := `
		SELECT id, user_id, name, color, sort_order, created_at
		FROM categories
		WHERE user_id = $1
		ORDER BY sort_order, created_at`

	categories := []entities.Category{}
	err := r.db.SelectContext(ctx, &categories, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	return categories, nil
}

func (r *CategoryRepositoryImpl) Create(ctx context.Context, category *entities.Category) error {
	query := `
		INSERT INTO categories (id, user_id, name, color, sort_order)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}

	err := r.db.QueryRowContext(ctx, query,
		category.ID, category.UserID, category.Name, category.Color, category.SortOrder,
	).Scan(&category.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return entities.ErrDuplicateName
		}
		return fmt.Errorf("create category: %w", err)
	}

	return nil
}

func (r *CategoryRepositoryImpl) Update(ctx context.Context, category *entities.Category) error {
	query := `
		UPDATE categories
		SET name = $3, color = $4
		WHERE user_id = $1 AND id = $2`

	result, err := r.db.ExecContext(ctx, query,
		category.UserID, category.ID, category.Name, category.Color)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return entities.ErrDuplicateName
		}
		return fmt.Errorf("update category: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrCategoryNotFound
	}

	return nil
}

func (r *CategoryRepositoryImpl) Delete(ctx context.Context, userID, id uuid.UUID) error {
	// Notes referencing the category fall back to NULL via the schema's
	// ON DELETE SET NULL; the notes themselves survive.
	query := `DELETE FROM categories WHERE user_id = $1 AND id = $2`

	result, err := r.db.ExecContext(ctx, query, userID, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrCategoryNotFound
	}

	return nil
}

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

// MemoRepositoryImpl implements the MemoRepository interface
type MemoRepositoryImpl struct {
	db *sqlx.DB
}

// NewMemoRepository creates a new memo repository
func NewMemoRepository(db *sqlx.DB) ports.MemoRepository {
	return &MemoRepositoryImpl{db: db}
}

func (r *MemoRepositoryImpl) GetByID(ctx context.Context, userID, id uuid.UUID) (*entities.Memo, error) {
	query := `
		SELECT id, user_id, title, content, date, category_id, created_at, updated_at
		FROM memos
		WHERE user_id = $1 AND id = $2`

	var memo entities.Memo
	err := r.db.GetContext(ctx, &memo, query, userID, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrMemoNotFound
		}
		return nil, fmt.Errorf("get memo by id: %w", err)
	}

	return &memo, nil
}

func (r *MemoRepositoryImpl) List(ctx context.Context, userID uuid.UUID, categoryID *uuid.UUID) ([]entities.Memo, error) {
	query := `
		SELECT id, user_id, title, content, date, category_id, created_at, updated_at
		FROM memos
		WHERE user_id = $1`

	args := []interface{}{userID}
	if categoryID != nil {
		query += " AND category_id = $2"
		args = append(args, *categoryID)
	}

	query += " ORDER BY date DESC, created_at DESC"

	memos := []entities.Memo{}
	err := r.db.SelectContext(ctx, &memos, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list memos: %w", err)
	}

	return memos, nil
}

func (r *MemoRepositoryImpl) Create(ctx context.Context, memo *entities.Memo) error {
	query := `
		INSERT INTO memos (id, user_id, title, content, date, category_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	if memo.ID == uuid.Nil {
		memo.ID = uuid.New()
	}

	err := r.db.QueryRowContext(ctx, query,
		memo.ID, memo.UserID, memo.Title, memo.Content, memo.Date, memo.CategoryID,
	).Scan(&memo.CreatedAt, &memo.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create memo: %w", err)
	}

	return nil
}

func (r *MemoRepositoryImpl) Update(ctx context.Context, memo *entities.Memo) error {
	query := `
		UPDATE memos
		SET title = $3, content = $4, date = $5, category_id = $6, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = $1 AND id = $2
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		memo.UserID, memo.ID, memo.Title, memo.Content, memo.Date, memo.CategoryID,
	).Scan(&memo.UpdatedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return entities.ErrMemoNotFound
		}
		return fmt.Errorf("update memo: %w", err)
	}

	return nil
}

func (r *MemoRepositoryImpl) Delete(ctx context.Context, userID, id uuid.UUID) error {
	query := `DELETE FROM memos WHERE user_id = $1 AND id = $2`

	result, err := r.db.ExecContext(ctx, query, userID, id)
	if err != nil {
		return fmt.Errorf("delete memo: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrMemoNotFound
	}

	return nil
}

func (r *MemoRepositoryImpl) ListCategories(ctx context.Context, userID uuid.UUID) ([]entities.MemoCategory, error) {
	query := `
		SELECT id, user_id, name, color, sort_order, created_at
		FROM memo_categories
		WHERE user_id = $1
		ORDER BY sort_order, created_at`

	categories := []entities.MemoCategory{}
	err := r.db.SelectContext(ctx, &categories, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list memo categories: %w", err)
	}

	return categories, nil
}

func (r *MemoRepositoryImpl) CreateCategory(ctx context.Context, category *entities.MemoCategory) error {
	query := `
		INSERT INTO memo_categories (id, user_id, name, color, sort_order)
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
		return fmt.Errorf("create memo category: %w", err)
	}

	return nil
}

func (r *MemoRepositoryImpl) DeleteCategory(ctx context.Context, userID, id uuid.UUID) error {
	query := `DELETE FROM memo_categories WHERE user_id = $1 AND id = $2`

	result, err := r.db.ExecContext(ctx, query, userID, id)
	if err != nil {
		return fmt.Errorf("delete memo category: %w", err)
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

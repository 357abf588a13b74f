package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/lifelog/core/internal/domain/entities"
	"github.com/lifelog/core/internal/ports"
)

// EntryRepositoryImpl implements the EntryRepository interface
type EntryRepositoryImpl struct {
	db *sqlx.DB
}

// NewEntryRepository creates a new entry repository
func NewEntryRepository(db *sqlx.DB) ports.EntryRepository {
	return &EntryRepositoryImpl{db: db}
}

func (r *EntryRepositoryImpl) FindByDate(ctx context.Context, userID uuid.UUID, date string) (*entities.Entry, error) {
	query := `
		SELECT id, user_id, date, score, score_reason, created_at, updated_at
		FROM entries
		WHERE user_id = $1 AND date = $2`

	var entry entities.Entry
	err := r.db.GetContext(ctx, &entry, query, userID, date)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrEntryNotFound
		}
		return nil, fmt.Errorf("find entry by date: %w", err)
	}

	return &entry, nil
}

func (r *EntryRepositoryImpl) GetByDate(ctx context.Context, userID uuid.UUID, date string) (*entities.Entry, error) {
	entry, err := r.FindByDate(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	if err := r.loadChildren(ctx, entry); err != nil {
		return nil, err
	}

	return entry, nil
}

func (r *EntryRepositoryImpl) Create(ctx context.Context, entry *entities.Entry) error {
	query := `
		INSERT INTO entries (id, user_id, date, score, score_reason)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}

	err := r.db.QueryRowContext(ctx, query,
		entry.ID, entry.UserID, entry.Date, entry.Score, entry.ScoreReason,
	).Scan(&entry.CreatedAt, &entry.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create entry: %w", err)
	}

	return nil
}

func (r *EntryRepositoryImpl) UpdateScalars(ctx context.Context, entry *entities.Entry) error {
	query := `
		UPDATE entries
		SET score = $2, score_reason = $3, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		entry.ID, entry.Score, entry.ScoreReason,
	).Scan(&entry.UpdatedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return entities.ErrEntryNotFound
		}
		return fmt.Errorf("update entry: %w", err)
	}

	return nil
}

// ReplaceChildren rewrites the entry's todo, note and link sets in one
// transaction. Partial child state is never observable.
func (r *EntryRepositoryImpl) ReplaceChildren(ctx context.Context, entryID uuid.UUID, todos []entities.Todo, notes []entities.Note, links []entities.Link) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"todos", "notes", "links"} {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE entry_id = $1", table), entryID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	todoQuery := `
		INSERT INTO todos (id, entry_id, content, is_completed, note, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6)`
	for _, t := range todos {
		if _, err := tx.ExecContext(ctx, todoQuery,
			t.ID, entryID, t.Content, t.IsCompleted, t.Note, t.SortOrder); err != nil {
			return fmt.Errorf("insert todo: %w", err)
		}
	}

	noteQuery := `
		INSERT INTO notes (id, entry_id, category_id, content)
		VALUES ($1, $2, $3, $4)`
	for _, n := range notes {
		if _, err := tx.ExecContext(ctx, noteQuery,
			n.ID, entryID, n.CategoryID, n.Content); err != nil {
			return fmt.Errorf("insert note: %w", err)
		}
	}

	linkQuery := `
		INSERT INTO links (id, entry_id, url, title, description)
		VALUES ($1, $2, $3, $4, $5)`
	for _, l := range links {
		if _, err := tx.ExecContext(ctx, linkQuery,
			l.ID, entryID, l.URL, l.Title, l.Description); err != nil {
			return fmt.Errorf("insert link: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

func (r *EntryRepositoryImpl) List(ctx context.Context, userID uuid.UUID, filter ports.EntryFilter) ([]*entities.Entry, error) {
	query := `
		SELECT id, user_id, date, score, score_reason, created_at, updated_at
		FROM entries
		WHERE user_id = $1`

	args := []interface{}{userID}
	argIdx := 2

	if filter.From != "" {
		query += fmt.Sprintf(" AND date >= $%d", argIdx)
		args = append(args, filter.From)
		argIdx++
	}
	if filter.To != "" {
		query += fmt.Sprintf(" AND date <= $%d", argIdx)
		args = append(args, filter.To)
		argIdx++
	}

	query += " ORDER BY date DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, filter.Limit)
		argIdx++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIdx)
		args = append(args, filter.Offset)
	}

	var entries []*entities.Entry
	err := r.db.SelectContext(ctx, &entries, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	for _, entry := range entries {
		if err := r.loadChildren(ctx, entry); err != nil {
			return nil, err
		}
	}

	return entries, nil
}

func (r *EntryRepositoryImpl) Count(ctx context.Context, userID uuid.UUID, filter ports.EntryFilter) (int64, error) {
	query := `SELECT COUNT(*) FROM entries WHERE user_id = $1`

	args := []interface{}{userID}
	argIdx := 2

	if filter.From != "" {
		query += fmt.Sprintf(" AND date >= $%d", argIdx)
		args = append(args, filter.From)
		argIdx++
	}
	if filter.To != "" {
		query += fmt.Sprintf(" AND date <= $%d", argIdx)
		args = append(args, filter.To)
	}

	var count int64
	err := r.db.GetContext(ctx, &count, query, args...)
	if err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}

	return count, nil
}

func (r *EntryRepositoryImpl) Delete(ctx context.Context, userID uuid.UUID, date string) error {
	query := `DELETE FROM entries WHERE user_id = $1 AND date = $2`

	result, err := r.db.ExecContext(ctx, query, userID, date)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrEntryNotFound
	}

	return nil
}

func (r *EntryRepositoryImpl) loadChildren(ctx context.Context, entry *entities.Entry) error {
	todoQuery := `
		SELECT id, entry_id, content, is_completed, note, sort_order, created_at, updated_at
		FROM todos
		WHERE entry_id = $1
		ORDER BY sort_order, created_at`

	entry.Todos = []entities.Todo{}
	if err := r.db.SelectContext(ctx, &entry.Todos, todoQuery, entry.ID); err != nil {
		return fmt.Errorf("load todos: %w", err)
	}

	noteQuery := `
		SELECT id, entry_id, category_id, content, created_at, updated_at
		FROM notes
		WHERE entry_id = $1
		ORDER BY created_at`

	entry.Notes = []entities.Note{}
	if err := r.db.SelectContext(ctx, &entry.Notes, noteQuery, entry.ID); err != nil {
		return fmt.Errorf("load notes: %w", err)
	}

	linkQuery := `
		SELECT id, entry_id, url, title, description, created_at
		FROM links
		WHERE entry_id = $1
		ORDER BY created_at`

	entry.Links = []entities.Link{}
	if err := r.db.SelectContext(ctx, &entry.Links, linkQuery, entry.ID); err != nil {
		return fmt.Errorf("load links: %w", err)
	}

	return nil
}

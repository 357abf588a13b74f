package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/lifelog/core/internal/domain/entities"
	"github.com/lifelog/core/internal/ports"
)

// APIKeyRepositoryImpl implements the APIKeyRepository interface
type APIKeyRepositoryImpl struct {
	db *sqlx.DB
}

// NewAPIKeyRepository creates a new API key repository
func NewAPIKeyRepository(db *sqlx.DB) ports.APIKeyRepository {
	return &APIKeyRepositoryImpl{db: db}
}

func (r *APIKeyRepositoryImpl) FindByHash(ctx context.Context, keyHash string) (*entities.APIKey, error) {
	query := `
		SELECT id, user_id, key_hash, name, last_used_at, created_at
		FROM api_keys
		WHERE key_hash = $1`

	var key entities.APIKey
	err := r.db.GetContext(ctx, &key, query, keyHash)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrAPIKeyNotFound
		}
		return nil, fmt.Errorf("find api key by hash: %w", err)
	}

	return &key, nil
}

func (r *APIKeyRepositoryImpl) List(ctx context.Context, userID uuid.UUID) ([]entities.APIKey, error) {
	query := `
		SELECT id, user_id, key_hash, name, last_used_at, created_at
		FROM api_keys
		WHERE user_id = $1
		ORDER BY created_at DESC`

	keys := []entities.APIKey{}
	err := r.db.SelectContext(ctx, &keys, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}

	return keys, nil
}

func (r *APIKeyRepositoryImpl) Create(ctx context.Context, key *entities.APIKey) error {
	query := `
		INSERT INTO api_keys (id, user_id, key_hash, name)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	if key.ID == uuid.Nil {
		key.ID = uuid.New()
	}

	err := r.db.QueryRowContext(ctx, query,
		key.ID, key.UserID, key.KeyHash, key.Name,
	).Scan(&key.CreatedAt)

	if err != nil {
		return fmt.Errorf("create api key: %w", err)
	}

	return nil
}

func (r *APIKeyRepositoryImpl) Delete(ctx context.Context, userID, id uuid.UUID) error {
	query := `DELETE FROM api_keys WHERE user_id = $1 AND id = $2`

	result, err := r.db.ExecContext(ctx, query, userID, id)
	if err != nil {
		return fmt.Errorf("delete api key: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrAPIKeyNotFound
	}

	return nil
}

func (r *APIKeyRepositoryImpl) TouchLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE api_keys SET last_used_at = $2 WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("touch api key: %w", err)
	}

	return nil
}

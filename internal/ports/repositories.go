package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lifelog/core/internal/domain/entities"
)

// EntryFilter narrows entry queries by date range and bounds result size.
type EntryFilter struct {
	From   string
	To     string
	Limit  int
	Offset int
}

// EntryRepository persists entries and their child collections. GetByDate and
// List return entries with children attached, todos ordered by sort order.
type EntryRepository interface {
	// FindByDate returns the scalar entry row without children, or
	// entities.ErrEntryNotFound.
	FindByDate(ctx context.Context, userID uuid.UUID, date string) (*entities.Entry, error)
	// GetByDate returns the entry with all children, or ErrEntryNotFound.
	GetByDate(ctx context.Context, userID uuid.UUID, date string) (*entities.Entry, error)
	Create(ctx context.Context, entry *entities.Entry) error
	// UpdateScalars writes score and scoreReason and bumps updated_at.
	UpdateScalars(ctx context.Context, entry *entities.Entry) error
	// ReplaceChildren deletes every todo, note and link of the entry and
	// inserts the provided sets, atomically.
	ReplaceChildren(ctx context.Context, entryID uuid.UUID, todos []entities.Todo, notes []entities.Note, links []entities.Link) error
	List(ctx context.Context, userID uuid.UUID, filter EntryFilter) ([]*entities.Entry, error)
	Count(ctx context.Context, userID uuid.UUID, filter EntryFilter) (int64, error)
	Delete(ctx context.Context, userID uuid.UUID, date string) error
}

// CategoryRepository persists note categories.
type CategoryRepository interface {
	GetByID(ctx context.Context, userID, id uuid.UUID) (*entities.Category, error)
	// FindByName matches the name case-sensitively, returning
	// ErrCategoryNotFound on miss.
	FindByName(ctx context.Context, userID uuid.UUID, name string) (*entities.Category, error)
	List(ctx context.Context, userID uuid.UUID) ([]entities.Category, error)
	Create(ctx context.Context, category *entities.Category) error
	Update(ctx context.Context, category *entities.Category) error
	// Delete removes the category; note references are cleared by the
	// schema's ON DELETE SET NULL.
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// MemoRepository persists standalone memos and memo categories.
type MemoRepository interface {
	GetByID(ctx context.Context, userID, id uuid.UUID) (*entities.Memo, error)
	List(ctx context.Context, userID uuid.UUID, categoryID *uuid.UUID) ([]entities.Memo, error)
	Create(ctx context.Context, memo *entities.Memo) error
	Update(ctx context.Context, memo *entities.Memo) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	ListCategories(ctx context.Context, userID uuid.UUID) ([]entities.MemoCategory, error)
	CreateCategory(ctx context.Context, category *entities.MemoCategory) error
	DeleteCategory(ctx context.Context, userID, id uuid.UUID) error
}

// UserRepository persists accounts.
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	Create(ctx context.Context, user *entities.User) error
}

// AuthRepository persists refresh tokens, keyed by their SHA-256 hash.
type AuthRepository interface {
	CreateRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error
	GetRefreshToken(ctx context.Context, tokenHash string) (*entities.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error
}

// APIKeyRepository persists MCP bearer credentials.
type APIKeyRepository interface {
	// FindByHash looks a key up by its SHA-256 hash, returning
	// ErrAPIKeyNotFound on miss.
	FindByHash(ctx context.Context, keyHash string) (*entities.APIKey, error)
	List(ctx context.Context, userID uuid.UUID) ([]entities.APIKey, error)
	Create(ctx context.Context, key *entities.APIKey) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	TouchLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error
}

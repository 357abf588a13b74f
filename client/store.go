// Package client implements the entry-editing side of LifeLog: a local
// trial-mode store, a remote store speaking the server API, a debounced
// autosave controller that works against either, and a one-shot migrator
// from local to remote.
package client

import (
	"context"

	"github.com/lifelog/core/internal/domain/entities"
)

// Store is what the autosave controller writes through. Both modes satisfy
// it, so switching from trial to account mode swaps the store and nothing
// else.
type Store interface {
	// Load returns the entry for a date. A date with nothing recorded
	// yields an empty entry, never an error.
	Load(ctx context.Context, date string) (*entities.Entry, error)
	// Upsert writes the full desired state of an entry and returns the
	// stored result.
	Upsert(ctx context.Context, entry *entities.Entry) (*entities.Entry, error)
	// ListCategories returns the note categories in sort order.
	ListCategories(ctx context.Context) ([]entities.Category, error)
	// CreateCategory appends a category at the end of the sort order.
	CreateCategory(ctx context.Context, name string, color *string) (*entities.Category, error)
	// DeleteCategory removes a category; notes keep their content with the
	// reference cleared.
	DeleteCategory(ctx context.Context, id string) error
}

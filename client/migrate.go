package client

import (
	"context"
	"fmt"
	"sort"

	"github.com/lifelog/core/internal/ports"
)

// Migrator moves everything in the local trial document to the server in one
// shot, then clears the local document so the import cannot run twice.
type Migrator struct {
	local  *LocalStore
	remote *RemoteStore
}

// NewMigrator creates a migrator between a local store and a remote store.
func NewMigrator(local *LocalStore, remote *RemoteStore) *Migrator {
	return &Migrator{local: local, remote: remote}
}

// Run submits the local document and reports how many entries the server
// actually imported. The local document is cleared only after the server
// accepts the payload; a failed run leaves everything in place for a retry.
func (m *Migrator) Run(ctx context.Context) (int, error) {
	entries, categories := m.local.Document()

	input := ports.MigrateInput{}

	for _, c := range categories {
		input.Categories = append(input.Categories, ports.MigrateCategoryInput{
			ID:    c.ID.String(),
			Name:  c.Name,
			Color: c.Color,
		})
	}

	// Deterministic submission order, oldest date first.
	dates := make([]string, 0, len(entries))
	for date := range entries {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	for _, date := range dates {
		input.Entries = append(input.Entries, entryToInput(entries[date]))
	}

	result, err := m.remote.Migrate(ctx, input)
	if err != nil {
		return 0, fmt.Errorf("migrate: %w", err)
	}

	if err := m.local.Clear(); err != nil {
		return result.MigratedCount, fmt.Errorf("clear local document: %w", err)
	}

	return result.MigratedCount, nil
}

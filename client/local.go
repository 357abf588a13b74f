package client

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/peterbourgon/diskv/v3"

	"github.com/lifelog/core/internal/domain/entities"
)

// draftKey is the single document key holding all trial-mode data.
const draftKey = "lifelog_draft"

// trialCategories are seeded when the local document is first created or has
// to be reset.
var trialCategories = []string{"Learning", "Insight", "Idea", "Reflection"}

// document is the on-disk shape of trial-mode data: every entry keyed by
// date, plus the category list.
type document struct {
	Entries    map[string]*entities.Entry `json:"entries"`
	Categories []entities.Category        `json:"categories"`
}

// LocalStore keeps all trial-mode data in one JSON document on disk. Reads
// and writes go through a mutex; the document is small enough that
// rewriting it wholesale on every save is fine.
type LocalStore struct {
	mu sync.Mutex
	d  *diskv.Diskv
}

// NewLocalStore opens (or creates) the trial-mode document under basePath.
func NewLocalStore(basePath string) *LocalStore {
	return &LocalStore{
		d: diskv.New(diskv.Options{
			BasePath:     basePath,
			CacheSizeMax: 1024 * 1024, // 1MB
		}),
	}
}

func (s *LocalStore) Load(ctx context.Context, date string) (*entities.Entry, error) {
	if !entities.ValidDate(date) {
		return nil, entities.ErrInvalidDate
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.readDocument()
	if entry, ok := doc.Entries[date]; ok {
		return entry.Clone(), nil
	}
	return entities.NewEmptyEntry(date), nil
}

func (s *LocalStore) Upsert(ctx context.Context, entry *entities.Entry) (*entities.Entry, error) {
	if err := entry.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.readDocument()

	stored := entry.FilterEmpty()
	if existing, ok := doc.Entries[entry.Date]; ok {
		stored.ID = existing.ID
		stored.CreatedAt = existing.CreatedAt
	}
	stored.UpdatedAt = time.Now()
	doc.Entries[entry.Date] = stored

	if err := s.writeDocument(doc); err != nil {
		return nil, err
	}
	return stored.Clone(), nil
}

func (s *LocalStore) ListCategories(ctx context.Context) ([]entities.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.readDocument()
	out := make([]entities.Category, len(doc.Categories))
	copy(out, doc.Categories)
	return out, nil
}

func (s *LocalStore) CreateCategory(ctx context.Context, name string, color *string) (*entities.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.readDocument()

	maxOrder := -1
	for _, c := range doc.Categories {
		if c.Name == name {
			return nil, entities.ErrDuplicateName
		}
		if c.SortOrder > maxOrder {
			maxOrder = c.SortOrder
		}
	}

	category := entities.Category{
		ID:        uuid.New(),
		Name:      name,
		Color:     color,
		SortOrder: maxOrder + 1,
	}
	doc.Categories = append(doc.Categories, category)

	if err := s.writeDocument(doc); err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *LocalStore) DeleteCategory(ctx context.Context, id string) error {
	categoryID, err := uuid.Parse(id)
	if err != nil {
		return entities.ErrCategoryNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.readDocument()

	found := false
	kept := doc.Categories[:0]
	for _, c := range doc.Categories {
		if c.ID == categoryID {
			found = true
			continue
		}
		kept = append(kept, c)
	}
	if !found {
		return entities.ErrCategoryNotFound
	}
	doc.Categories = kept

	// Notes survive their category; only the reference is cleared.
	for _, entry := range doc.Entries {
		for i, note := range entry.Notes {
			if note.CategoryID != nil && *note.CategoryID == categoryID {
				entry.Notes[i].CategoryID = nil
			}
		}
	}

	return s.writeDocument(doc)
}

// Document returns a deep copy of everything stored locally; the migrator
// reads from this.
func (s *LocalStore) Document() (map[string]*entities.Entry, []entities.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.readDocument()
	entries := make(map[string]*entities.Entry, len(doc.Entries))
	for date, entry := range doc.Entries {
		entries[date] = entry.Clone()
	}
	categories := make([]entities.Category, len(doc.Categories))
	copy(categories, doc.Categories)
	return entries, categories
}

// Clear wipes the local document after a successful migration, leaving a
// fresh trial document behind.
func (s *LocalStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeDocument(emptyDocument())
}

// readDocument loads the draft document, falling back to a fresh one when
// the file is missing or unreadable. Trial data is best-effort by nature; a
// corrupt document resets rather than wedging the app. The reset is written
// back immediately so the seeded category IDs stay stable across calls.
func (s *LocalStore) readDocument() *document {
	if data, err := s.d.Read(draftKey); err == nil {
		var doc document
		if err := json.Unmarshal(data, &doc); err == nil {
			if doc.Entries == nil {
				doc.Entries = map[string]*entities.Entry{}
			}
			return &doc
		}
	}

	doc := emptyDocument()
	// Best effort: if the write fails the document is still usable in
	// memory and the next successful write persists it.
	_ = s.writeDocument(doc)
	return doc
}

func (s *LocalStore) writeDocument(doc *document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal draft document: %w", err)
	}
	if err := s.d.Write(draftKey, data); err != nil {
		return fmt.Errorf("write draft document: %w", err)
	}
	return nil
}

func emptyDocument() *document {
	doc := &document{Entries: map[string]*entities.Entry{}}
	for i, name := range trialCategories {
		doc.Categories = append(doc.Categories, entities.Category{
			ID:        uuid.New(),
			Name:      name,
			SortOrder: i,
		})
	}
	return doc
}

package services

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/lifelog/core/internal/domain/entities"
	"github.com/lifelog/core/internal/ports"
)

// In-memory repositories for service tests. They mirror the SQL adapters'
// contracts: FindByDate returns scalars only, GetByDate and List attach
// children with todos in sort order.

type fakeEntryRepo struct {
	entries map[uuid.UUID]*entities.Entry
}

func newFakeEntryRepo() *fakeEntryRepo {
	return &fakeEntryRepo{entries: map[uuid.UUID]*entities.Entry{}}
}

func (r *fakeEntryRepo) find(userID uuid.UUID, date string) *entities.Entry {
	for _, e := range r.entries {
		if e.UserID == userID && e.Date == date {
			return e
		}
	}
	return nil
}

func (r *fakeEntryRepo) FindByDate(ctx context.Context, userID uuid.UUID, date string) (*entities.Entry, error) {
	e := r.find(userID, date)
	if e == nil {
		return nil, entities.ErrEntryNotFound
	}
	scalar := *e
	scalar.Todos, scalar.Notes, scalar.Links = nil, nil, nil
	return &scalar, nil
}

func (r *fakeEntryRepo) GetByDate(ctx context.Context, userID uuid.UUID, date string) (*entities.Entry, error) {
	e := r.find(userID, date)
	if e == nil {
		return nil, entities.ErrEntryNotFound
	}
	return cloneSorted(e), nil
}

func (r *fakeEntryRepo) Create(ctx context.Context, entry *entities.Entry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	now := time.Now()
	entry.CreatedAt, entry.UpdatedAt = now, now

	stored := entry.Clone()
	stored.Todos, stored.Notes, stored.Links = nil, nil, nil
	r.entries[entry.ID] = stored
	return nil
}

func (r *fakeEntryRepo) UpdateScalars(ctx context.Context, entry *entities.Entry) error {
	stored, ok := r.entries[entry.ID]
	if !ok {
		return entities.ErrEntryNotFound
	}
	stored.Score = entry.Score
	stored.ScoreReason = entry.ScoreReason
	stored.UpdatedAt = time.Now()
	return nil
}

func (r *fakeEntryRepo) ReplaceChildren(ctx context.Context, entryID uuid.UUID, todos []entities.Todo, notes []entities.Note, links []entities.Link) error {
	stored, ok := r.entries[entryID]
	if !ok {
		return entities.ErrEntryNotFound
	}
	stored.Todos = append([]entities.Todo{}, todos...)
	stored.Notes = append([]entities.Note{}, notes...)
	stored.Links = append([]entities.Link{}, links...)
	return nil
}

func (r *fakeEntryRepo) List(ctx context.Context, userID uuid.UUID, filter ports.EntryFilter) ([]*entities.Entry, error) {
	var out []*entities.Entry
	for _, e := range r.entries {
		if e.UserID != userID {
			continue
		}
		if filter.From != "" && e.Date < filter.From {
			continue
		}
		if filter.To != "" && e.Date > filter.To {
			continue
		}
		out = append(out, cloneSorted(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *fakeEntryRepo) Count(ctx context.Context, userID uuid.UUID, filter ports.EntryFilter) (int64, error) {
	var count int64
	for _, e := range r.entries {
		if e.UserID != userID {
			continue
		}
		if filter.From != "" && e.Date < filter.From {
			continue
		}
		if filter.To != "" && e.Date > filter.To {
			continue
		}
		count++
	}
	return count, nil
}

func (r *fakeEntryRepo) Delete(ctx context.Context, userID uuid.UUID, date string) error {
	e := r.find(userID, date)
	if e == nil {
		return entities.ErrEntryNotFound
	}
	delete(r.entries, e.ID)
	return nil
}

func cloneSorted(e *entities.Entry) *entities.Entry {
	out := e.Clone()
	sort.SliceStable(out.Todos, func(i, j int) bool {
		return out.Todos[i].SortOrder < out.Todos[j].SortOrder
	})
	return out
}

type fakeCategoryRepo struct {
	categories map[uuid.UUID]*entities.Category
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{categories: map[uuid.UUID]*entities.Category{}}
}

func (r *fakeCategoryRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (*entities.Category, error) {
	c, ok := r.categories[id]
	if !ok || c.UserID != userID {
		return nil, entities.ErrCategoryNotFound
	}
	out := *c
	return &out, nil
}

func (r *fakeCategoryRepo) FindByName(ctx context.Context, userID uuid.UUID, name string) (*entities.Category, error) {
	for _, c := range r.categories {
		if c.UserID == userID && c.Name == name {
			out := *c
			return &out, nil
		}
	}
	return nil, entities.ErrCategoryNotFound
}

func (r *fakeCategoryRepo) List(ctx context.Context, userID uuid.UUID) ([]entities.Category, error) {
	var out []entities.Category
	for _, c := range r.categories {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (r *fakeCategoryRepo) Create(ctx context.Context, category *entities.Category) error {
	for _, c := range r.categories {
		if c.UserID == category.UserID && c.Name == category.Name {
			return entities.ErrDuplicateName
		}
	}
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	category.CreatedAt = time.Now()
	stored := *category
	r.categories[category.ID] = &stored
	return nil
}

func (r *fakeCategoryRepo) Update(ctx context.Context, category *entities.Category) error {
	stored, ok := r.categories[category.ID]
	if !ok || stored.UserID != category.UserID {
		return entities.ErrCategoryNotFound
	}
	stored.Name = category.Name
	stored.Color = category.Color
	return nil
}

func (r *fakeCategoryRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	c, ok := r.categories[id]
	if !ok || c.UserID != userID {
		return entities.ErrCategoryNotFound
	}
	delete(r.categories, id)
	return nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]*entities.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uuid.UUID]*entities.User{}}
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, entities.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, entities.ErrUserNotFound
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entities.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

type fakeAuthRepo struct {
	tokens map[string]*entities.RefreshToken
}

func newFakeAuthRepo() *fakeAuthRepo {
	return &fakeAuthRepo{tokens: map[string]*entities.RefreshToken{}}
}

func (r *fakeAuthRepo) CreateRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	r.tokens[tokenHash] = &entities.RefreshToken{
		ID:        len(r.tokens) + 1,
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	return nil
}

func (r *fakeAuthRepo) GetRefreshToken(ctx context.Context, tokenHash string) (*entities.RefreshToken, error) {
	t, ok := r.tokens[tokenHash]
	if !ok {
		return nil, entities.ErrUnauthorized
	}
	out := *t
	return &out, nil
}

func (r *fakeAuthRepo) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	if t, ok := r.tokens[tokenHash]; ok && t.RevokedAt == nil {
		now := time.Now()
		t.RevokedAt = &now
	}
	return nil
}

func (r *fakeAuthRepo) RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error {
	now := time.Now()
	for _, t := range r.tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			t.RevokedAt = &now
		}
	}
	return nil
}

type fakeAPIKeyRepo struct {
	keys map[uuid.UUID]*entities.APIKey
}

func newFakeAPIKeyRepo() *fakeAPIKeyRepo {
	return &fakeAPIKeyRepo{keys: map[uuid.UUID]*entities.APIKey{}}
}

func (r *fakeAPIKeyRepo) FindByHash(ctx context.Context, keyHash string) (*entities.APIKey, error) {
	for _, k := range r.keys {
		if k.KeyHash == keyHash {
			out := *k
			return &out, nil
		}
	}
	return nil, entities.ErrAPIKeyNotFound
}

func (r *fakeAPIKeyRepo) List(ctx context.Context, userID uuid.UUID) ([]entities.APIKey, error) {
	var out []entities.APIKey
	for _, k := range r.keys {
		if k.UserID == userID {
			out = append(out, *k)
		}
	}
	return out, nil
}

func (r *fakeAPIKeyRepo) Create(ctx context.Context, key *entities.APIKey) error {
	if key.ID == uuid.Nil {
		key.ID = uuid.New()
	}
	key.CreatedAt = time.Now()
	stored := *key
	r.keys[key.ID] = &stored
	return nil
}

func (r *fakeAPIKeyRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	k, ok := r.keys[id]
	if !ok || k.UserID != userID {
		return entities.ErrAPIKeyNotFound
	}
	delete(r.keys, id)
	return nil
}

func (r *fakeAPIKeyRepo) TouchLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	if k, ok := r.keys[id]; ok {
		k.LastUsedAt = &at
	}
	return nil
}

package entities

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrEntryNotFound    = errors.New("entry not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrMemoNotFound     = errors.New("memo not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrAPIKeyNotFound   = errors.New("api key not found")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidDate      = errors.New("date must be in YYYY-MM-DD format")
	ErrInvalidScore     = errors.New("score must be between 1 and 10")
	ErrEmptyContent     = errors.New("content must not be empty")
	ErrDuplicateName    = errors.New("name already exists")
)

// DateFormat is the calendar-date layout used for entry dates.
const DateFormat = "2006-01-02"

var dateRE = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ValidDate reports whether s is a YYYY-MM-DD calendar date string.
func ValidDate(s string) bool {
	return dateRE.MatchString(s)
}

// Today returns the current calendar date in entry-date format (UTC).
func Today() string {
	return time.Now().UTC().Format(DateFormat)
}

// Entry is one journal record per (user, date). Score and ScoreReason are
// absent until the user rates the day. Children are always carried as
// complete sets; an upsert replaces them wholesale.
type Entry struct {
	ID          uuid.UUID `json:"id" db:"id"`
	UserID      uuid.UUID `json:"-" db:"user_id"`
	Date        string    `json:"date" db:"date"`
	Score       *int      `json:"score" db:"score"`
	ScoreReason *string   `json:"scoreReason" db:"score_reason"`
	Todos       []Todo    `json:"todos"`
	Notes       []Note    `json:"notes"`
	Links       []Link    `json:"links"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// Todo belongs to exactly one Entry. SortOrder defines manual ordering and is
// dense but not required contiguous.
type Todo struct {
	ID          uuid.UUID `json:"id" db:"id"`
	EntryID     uuid.UUID `json:"-" db:"entry_id"`
	Content     string    `json:"content" db:"content"`
	IsCompleted bool      `json:"isCompleted" db:"is_completed"`
	Note        *string   `json:"note" db:"note"`
	SortOrder   int       `json:"sortOrder" db:"sort_order"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// Note belongs to exactly one Entry and optionally references a Category.
// Deleting the category clears the reference, never the note.
type Note struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	EntryID    uuid.UUID  `json:"-" db:"entry_id"`
	CategoryID *uuid.UUID `json:"categoryId" db:"category_id"`
	Content    string     `json:"content" db:"content"`
	CreatedAt  time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time  `json:"updatedAt" db:"updated_at"`
}

// Link belongs to exactly one Entry.
type Link struct {
	ID          uuid.UUID `json:"id" db:"id"`
	EntryID     uuid.UUID `json:"-" db:"entry_id"`
	URL         string    `json:"url" db:"url"`
	Title       *string   `json:"title" db:"title"`
	Description *string   `json:"description" db:"description"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// Category is user-owned and shared by reference from any number of notes.
// Name is unique per user; SortOrder is append-only (current max + 1).
type Category struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"-" db:"user_id"`
	Name      string    `json:"name" db:"name"`
	Color     *string   `json:"color" db:"color"`
	SortOrder int       `json:"sortOrder" db:"sort_order"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Memo is a standalone markdown note, independent of the daily entry stream.
type Memo struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	UserID     uuid.UUID  `json:"-" db:"user_id"`
	Title      string     `json:"title" db:"title"`
	Content    string     `json:"content" db:"content"`
	Date       string     `json:"date" db:"date"`
	CategoryID *uuid.UUID `json:"categoryId" db:"category_id"`
	CreatedAt  time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time  `json:"updatedAt" db:"updated_at"`
}

// MemoCategory groups memos; independent of entry note categories.
type MemoCategory struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"-" db:"user_id"`
	Name      string    `json:"name" db:"name"`
	Color     *string   `json:"color" db:"color"`
	SortOrder int       `json:"sortOrder" db:"sort_order"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// User represents an account holder.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Name         *string   `json:"name" db:"name"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// APIKey is the bearer credential for the MCP surface. Only the SHA-256 hash
// of the key is stored; the plaintext is shown once on creation.
type APIKey struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	UserID     uuid.UUID  `json:"-" db:"user_id"`
	KeyHash    string     `json:"-" db:"key_hash"`
	Name       string     `json:"name" db:"name"`
	LastUsedAt *time.Time `json:"lastUsedAt" db:"last_used_at"`
	CreatedAt  time.Time  `json:"createdAt" db:"created_at"`
}

// RefreshToken is a long-lived session credential, stored hashed.
type RefreshToken struct {
	ID        int        `json:"id" db:"id"`
	UserID    uuid.UUID  `json:"user_id" db:"user_id"`
	TokenHash string     `json:"-" db:"token_hash"`
	ExpiresAt time.Time  `json:"expires_at" db:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at" db:"revoked_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

func (t *RefreshToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}

func (t *RefreshToken) IsRevoked() bool {
	return t.RevokedAt != nil
}

// Validate checks entry invariants that must hold before any persistence.
func (e *Entry) Validate() error {
	if !ValidDate(e.Date) {
		return ErrInvalidDate
	}
	if e.Score != nil && (*e.Score < 1 || *e.Score > 10) {
		return ErrInvalidScore
	}
	return nil
}

// FilterEmpty returns a copy of the entry with blank-content children
// removed. Draft rows the user never filled in are not persisted.
func (e *Entry) FilterEmpty() *Entry {
	out := *e
	out.Todos = make([]Todo, 0, len(e.Todos))
	for _, t := range e.Todos {
		if strings.TrimSpace(t.Content) != "" {
			out.Todos = append(out.Todos, t)
		}
	}
	out.Notes = make([]Note, 0, len(e.Notes))
	for _, n := range e.Notes {
		if strings.TrimSpace(n.Content) != "" {
			out.Notes = append(out.Notes, n)
		}
	}
	out.Links = make([]Link, 0, len(e.Links))
	for _, l := range e.Links {
		if strings.TrimSpace(l.URL) != "" {
			out.Links = append(out.Links, l)
		}
	}
	return &out
}

// MaxTodoSortOrder returns the highest sort order among the entry's todos,
// or -1 when there are none.
func (e *Entry) MaxTodoSortOrder() int {
	max := -1
	for _, t := range e.Todos {
		if t.SortOrder > max {
			max = t.SortOrder
		}
	}
	return max
}

// Clone returns a deep copy of the entry. The autosave controller snapshots
// state into its pending slot with this.
func (e *Entry) Clone() *Entry {
	out := *e
	if e.Score != nil {
		s := *e.Score
		out.Score = &s
	}
	if e.ScoreReason != nil {
		r := *e.ScoreReason
		out.ScoreReason = &r
	}
	out.Todos = make([]Todo, len(e.Todos))
	copy(out.Todos, e.Todos)
	out.Notes = make([]Note, len(e.Notes))
	copy(out.Notes, e.Notes)
	out.Links = make([]Link, len(e.Links))
	copy(out.Links, e.Links)
	return &out
}

// NewEmptyEntry returns a transient entry for a date with nothing recorded
// yet. It is not persisted until the first real mutation.
func NewEmptyEntry(date string) *Entry {
	now := time.Now()
	return &Entry{
		ID:        uuid.New(),
		Date:      date,
		Todos:     []Todo{},
		Notes:     []Note{},
		Links:     []Link{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

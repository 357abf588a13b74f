package ports

import (
	"github.com/lifelog/core/internal/domain/entities"
)

// Claims is the authenticated identity extracted from an access token.
type Claims struct {
	UserID string
	Email  string
}

// TodoInput is one submitted todo row. A missing ID means "assign a fresh
// one"; a supplied ID is preserved verbatim.
type TodoInput struct {
	ID          string  `json:"id"`
	Content     string  `json:"content" validate:"required"`
	IsCompleted bool    `json:"isCompleted"`
	Note        *string `json:"note"`
	SortOrder   *int    `json:"sortOrder"`
}

// NoteInput is one submitted note row.
type NoteInput struct {
	ID         string  `json:"id"`
	CategoryID *string `json:"categoryId"`
	Content    string  `json:"content" validate:"required"`
}

// LinkInput is one submitted link row.
type LinkInput struct {
	ID          string  `json:"id"`
	URL         string  `json:"url" validate:"required,url"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// EntryInput is the upsert request body: the full desired state of one
// entry. Children always replace whatever is stored.
type EntryInput struct {
	Date        string      `json:"date" validate:"required"`
	Score       *int        `json:"score" validate:"omitempty,min=1,max=10"`
	ScoreReason *string     `json:"scoreReason"`
	Todos       []TodoInput `json:"todos"`
	Notes       []NoteInput `json:"notes"`
	Links       []LinkInput `json:"links"`
}

// MigrateCategoryInput carries a trial-mode category. The local ID is only
// used to re-key note references; it is never stored.
type MigrateCategoryInput struct {
	ID    string  `json:"id"`
	Name  string  `json:"name" validate:"required"`
	Color *string `json:"color"`
}

// MigrateInput is the one-shot local-to-server import payload.
type MigrateInput struct {
	Entries    []EntryInput           `json:"entries" validate:"dive"`
	Categories []MigrateCategoryInput `json:"categories" validate:"dive"`
}

// MigrateResult reports how many entries were actually imported. Dates that
// already existed server-side are skipped and not counted.
type MigrateResult struct {
	MigratedCount int `json:"migratedCount"`
}

// CategoryInput creates or updates a note category.
type CategoryInput struct {
	Name  string  `json:"name" validate:"required,min=1"`
	Color *string `json:"color"`
}

// EntrySummary is the list-view projection of an entry.
type EntrySummary struct {
	ID                 string `json:"id"`
	Date               string `json:"date"`
	Score              *int   `json:"score"`
	TodoCount          int    `json:"todoCount"`
	CompletedTodoCount int    `json:"completedTodoCount"`
	NoteCount          int    `json:"noteCount"`
	LinkCount          int    `json:"linkCount"`
}

// EntryList is a page of entry summaries.
type EntryList struct {
	Entries []EntrySummary `json:"entries"`
	Total   int64          `json:"total"`
	HasMore bool           `json:"hasMore"`
}

// EntryDetail is the read-tool projection of a single entry, with category
// references resolved to names.
type EntryDetail struct {
	ID    string       `json:"id"`
	Date  string       `json:"date"`
	Score *int         `json:"score"`
	Todos []TodoDetail `json:"todos"`
	Notes []NoteDetail `json:"notes"`
	Links []LinkDetail `json:"links"`
}

type TodoDetail struct {
	Content     string  `json:"content"`
	IsCompleted bool    `json:"isCompleted"`
	Note        *string `json:"note"`
}

type NoteDetail struct {
	Category *string `json:"category"`
	Content  string  `json:"content"`
}

type LinkDetail struct {
	URL   string  `json:"url"`
	Title *string `json:"title"`
}

// SearchMatch is one hit inside an entry. Type is "todo" or "note";
// Highlight wraps the matched span in ** markers.
type SearchMatch struct {
	Type      string  `json:"type"`
	Content   string  `json:"content"`
	Category  *string `json:"category,omitempty"`
	Highlight string  `json:"highlight"`
}

// SearchResult groups matches per date.
type SearchResult struct {
	Date    string        `json:"date"`
	Matches []SearchMatch `json:"matches"`
}

// SearchResponse is the full search answer, newest date first.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
	Total   int            `json:"total"`
}

// ScorePoint is one day on the satisfaction trend.
type ScorePoint struct {
	Date  string `json:"date"`
	Score int    `json:"score"`
}

// Stats aggregates a date range in memory; nothing is materialized.
type Stats struct {
	Period struct {
		From *string `json:"from"`
		To   *string `json:"to"`
	} `json:"period"`
	Score struct {
		Average *float64     `json:"average"`
		Min     *int         `json:"min"`
		Max     *int         `json:"max"`
		Trend   []ScorePoint `json:"trend"`
	} `json:"score"`
	Activity struct {
		TotalEntries   int     `json:"totalEntries"`
		TotalTodos     int     `json:"totalTodos"`
		CompletedTodos int     `json:"completedTodos"`
		CompletionRate float64 `json:"completionRate"`
		TotalNotes     int     `json:"totalNotes"`
		TotalLinks     int     `json:"totalLinks"`
	} `json:"activity"`
	Categories []CategoryCount `json:"categories"`
}

// CategoryCount pairs a category name with how many notes reference it.
type CategoryCount struct {
	Name      string `json:"name"`
	NoteCount int    `json:"noteCount"`
}

// AddTodoInput is the MCP write-tool request. Date defaults to today when
// omitted.
type AddTodoInput struct {
	Date    string  `json:"date"`
	Content string  `json:"content" validate:"required,min=1"`
	Note    *string `json:"note"`
}

// AddNoteInput is the MCP write-tool request. Category is resolved by name,
// case-sensitively; no match stores the note uncategorized.
type AddNoteInput struct {
	Date     string  `json:"date"`
	Content  string  `json:"content" validate:"required,min=1"`
	Category *string `json:"category"`
}

// IncompleteTodo is a pending todo annotated with its entry date.
type IncompleteTodo struct {
	entities.Todo
	Date string `json:"date"`
}

// CategoryNote is a note annotated with entry date and category name.
type CategoryNote struct {
	Date     string  `json:"date"`
	Category *string `json:"category"`
	Content  string  `json:"content"`
}

// MemoInput creates or updates a memo.
type MemoInput struct {
	Title      string  `json:"title" validate:"required,min=1"`
	Content    string  `json:"content"`
	Date       string  `json:"date"`
	CategoryID *string `json:"categoryId"`
}

// RegisterRequest creates an account.
type RegisterRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8"`
	Name     *string `json:"name"`
}

// LoginRequest authenticates an account.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse carries session tokens after register/login/refresh.
type AuthResponse struct {
	AccessToken  string         `json:"accessToken"`
	RefreshToken string         `json:"refreshToken"`
	TokenType    string         `json:"tokenType"`
	ExpiresIn    int64          `json:"expiresIn"`
	User         *entities.User `json:"user"`
}

// APIKeyCreated is returned exactly once per key; Key is the plaintext the
// client must save.
type APIKeyCreated struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
}

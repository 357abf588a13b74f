package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lifelog/core/internal/domain/entities"
	"github.com/lifelog/core/internal/ports"
)

// APIError is a decoded server error envelope.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %s (%d): %s", e.Code, e.StatusCode, e.Message)
}

// RemoteStore speaks the server's entry API over HTTP with a bearer access
// token.
type RemoteStore struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewRemoteStore creates a remote store against baseURL, authenticating
// every request with the given access token.
func NewRemoteStore(baseURL, token string) *RemoteStore {
	return &RemoteStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *RemoteStore) Load(ctx context.Context, date string) (*entities.Entry, error) {
	var entry entities.Entry
	if err := s.do(ctx, http.MethodGet, "/api/entries/"+url.PathEscape(date), nil, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *RemoteStore) Upsert(ctx context.Context, entry *entities.Entry) (*entities.Entry, error) {
	input := entryToInput(entry)

	var stored entities.Entry
	if err := s.do(ctx, http.MethodPut, "/api/entries/"+url.PathEscape(entry.Date), input, &stored); err != nil {
		return nil, err
	}
	return &stored, nil
}

func (s *RemoteStore) ListCategories(ctx context.Context) ([]entities.Category, error) {
	var categories []entities.Category
	if err := s.do(ctx, http.MethodGet, "/api/categories", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *RemoteStore) CreateCategory(ctx context.Context, name string, color *string) (*entities.Category, error) {
	input := ports.CategoryInput{Name: name, Color: color}

	var category entities.Category
	if err := s.do(ctx, http.MethodPost, "/api/categories", input, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *RemoteStore) DeleteCategory(ctx context.Context, id string) error {
	return s.do(ctx, http.MethodDelete, "/api/categories/"+url.PathEscape(id), nil, nil)
}

// Migrate submits the one-shot local import.
func (s *RemoteStore) Migrate(ctx context.Context, input ports.MigrateInput) (*ports.MigrateResult, error) {
	var result ports.MigrateResult
	if err := s.do(ctx, http.MethodPost, "/api/entries/migrate", input, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *RemoteStore) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeAPIError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}

	apiErr := &APIError{StatusCode: resp.StatusCode, Code: "INTERNAL_ERROR", Message: resp.Status}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil && envelope.Error.Code != "" {
		apiErr.Code = envelope.Error.Code
		apiErr.Message = envelope.Error.Message
	}
	return apiErr
}

// entryToInput converts a domain entry to the wire upsert shape, keeping
// child IDs so the server preserves them.
func entryToInput(entry *entities.Entry) ports.EntryInput {
	input := ports.EntryInput{
		Date:        entry.Date,
		Score:       entry.Score,
		ScoreReason: entry.ScoreReason,
	}

	for _, t := range entry.Todos {
		order := t.SortOrder
		input.Todos = append(input.Todos, ports.TodoInput{
			ID:          t.ID.String(),
			Content:     t.Content,
			IsCompleted: t.IsCompleted,
			Note:        t.Note,
			SortOrder:   &order,
		})
	}
	for _, n := range entry.Notes {
		var categoryID *string
		if n.CategoryID != nil {
			id := n.CategoryID.String()
			categoryID = &id
		}
		input.Notes = append(input.Notes, ports.NoteInput{
			ID:         n.ID.String(),
			CategoryID: categoryID,
			Content:    n.Content,
		})
	}
	for _, l := range entry.Links {
		input.Links = append(input.Links, ports.LinkInput{
			ID:          l.ID.String(),
			URL:         l.URL,
			Title:       l.Title,
			Description: l.Description,
		})
	}

	return input
}

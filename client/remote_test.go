package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifelog/core/internal/domain/entities"
	"github.com/lifelog/core/internal/ports"
)

func TestRemoteStoreUpsertSendsBearerTokenAndChildIDs(t *testing.T) {
	var gotAuth string
	var gotInput ports.EntryInput

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/api/entries/2026-05-01", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotInput))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(entities.NewEmptyEntry("2026-05-01"))
	}))
	defer srv.Close()

	store := NewRemoteStore(srv.URL, "access-token")

	todoID := uuid.New()
	entry := entities.NewEmptyEntry("2026-05-01")
	entry.Todos = []entities.Todo{{ID: todoID, Content: "ship it", SortOrder: 3}}

	_, err := store.Upsert(context.Background(), entry)
	require.NoError(t, err)

	assert.Equal(t, "Bearer access-token", gotAuth)
	require.Len(t, gotInput.Todos, 1)
	assert.Equal(t, todoID.String(), gotInput.Todos[0].ID)
	require.NotNil(t, gotInput.Todos[0].SortOrder)
	assert.Equal(t, 3, *gotInput.Todos[0].SortOrder)
}

func TestRemoteStoreLoad(t *testing.T) {
	score := 6
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/entries/2026-05-01", r.URL.Path)

		entry := entities.NewEmptyEntry("2026-05-01")
		entry.Score = &score
		json.NewEncoder(w).Encode(entry)
	}))
	defer srv.Close()

	store := NewRemoteStore(srv.URL, "token")
	entry, err := store.Load(context.Background(), "2026-05-01")
	require.NoError(t, err)
	assert.Equal(t, 6, *entry.Score)
}

func TestRemoteStoreDecodesErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"code":"UNAUTHORIZED","message":"token expired"}}`))
	}))
	defer srv.Close()

	store := NewRemoteStore(srv.URL, "stale")
	_, err := store.Load(context.Background(), "2026-05-01")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", apiErr.Code)
	assert.Equal(t, "token expired", apiErr.Message)
}

func TestRemoteStoreHandlesNonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream broke"))
	}))
	defer srv.Close()

	store := NewRemoteStore(srv.URL, "token")
	_, err := store.Load(context.Background(), "2026-05-01")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "INTERNAL_ERROR", apiErr.Code)
}

func TestRemoteStoreCategories(t *testing.T) {
	workID := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/categories":
			json.NewEncoder(w).Encode([]entities.Category{{ID: workID, Name: "Work"}})
		case r.Method == http.MethodPost && r.URL.Path == "/api/categories":
			var input ports.CategoryInput
			require.NoError(t, json.NewDecoder(r.Body).Decode(&input))
			json.NewEncoder(w).Encode(entities.Category{ID: uuid.New(), Name: input.Name})
		case r.Method == http.MethodDelete && r.URL.Path == "/api/categories/"+workID.String():
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	store := NewRemoteStore(srv.URL, "token")
	ctx := context.Background()

	categories, err := store.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, "Work", categories[0].Name)

	created, err := store.CreateCategory(ctx, "Cooking", nil)
	require.NoError(t, err)
	assert.Equal(t, "Cooking", created.Name)

	require.NoError(t, store.DeleteCategory(ctx, workID.String()))
}

package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lifelog/core/internal/domain/entities"
)

// ErrNoSuchChild is returned when a mutation targets a todo, note or link ID
// that is not part of the working entry.
var ErrNoSuchChild = errors.New("no child with that id")

// Editor holds the working copy of one date's entry. Mutations apply
// synchronously in memory and feed the autosave controller; persistence
// happens after the debounce window, or immediately on Save.
type Editor struct {
	autosave *Autosave

	mu        sync.Mutex
	entry     *entities.Entry
	dirty     bool
	lastSaved time.Time
	lastErr   error
}

// OpenEditor loads the entry for a date and starts an autosave controller
// over it with the given debounce window.
func OpenEditor(ctx context.Context, store Store, date string, delay time.Duration) (*Editor, error) {
	entry, err := store.Load(ctx, date)
	if err != nil {
		return nil, err
	}

	e := &Editor{
		autosave: NewAutosave(store, delay),
		entry:    entry,
	}
	e.autosave.OnSaved = e.onSaved
	e.autosave.OnError = e.onError
	return e, nil
}

// Entry returns a copy of the current working state.
func (e *Editor) Entry() *entities.Entry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.entry.Clone()
}

// Dirty reports whether the working state has edits not yet confirmed saved.
func (e *Editor) Dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dirty
}

// LastSaved returns when a save last succeeded, zero if never.
func (e *Editor) LastSaved() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastSaved
}

// LastError returns the most recent background save failure, cleared by the
// next successful save.
func (e *Editor) LastError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// SetScore sets or clears the day's score.
func (e *Editor) SetScore(score *int) {
	e.mutate(func() {
		e.entry.Score = score
	})
}

// SetScoreReason sets or clears the score explanation.
func (e *Editor) SetScoreReason(reason *string) {
	e.mutate(func() {
		e.entry.ScoreReason = reason
	})
}

// AddTodo appends a todo after the current highest sort order.
func (e *Editor) AddTodo(content string) entities.Todo {
	var todo entities.Todo
	e.mutate(func() {
		todo = entities.Todo{
			ID:        uuid.New(),
			EntryID:   e.entry.ID,
			Content:   content,
			SortOrder: e.entry.MaxTodoSortOrder() + 1,
		}
		e.entry.Todos = append(e.entry.Todos, todo)
	})
	return todo
}

// UpdateTodo applies fn to the todo with the given ID.
func (e *Editor) UpdateTodo(id uuid.UUID, fn func(*entities.Todo)) error {
	return e.mutateErr(func() error {
		for i := range e.entry.Todos {
			if e.entry.Todos[i].ID == id {
				fn(&e.entry.Todos[i])
				return nil
			}
		}
		return ErrNoSuchChild
	})
}

// DeleteTodo removes the todo with the given ID.
func (e *Editor) DeleteTodo(id uuid.UUID) error {
	return e.mutateErr(func() error {
		for i := range e.entry.Todos {
			if e.entry.Todos[i].ID == id {
				e.entry.Todos = append(e.entry.Todos[:i], e.entry.Todos[i+1:]...)
				return nil
			}
		}
		return ErrNoSuchChild
	})
}

// ReorderTodos reassigns sort orders to match the given ID order. Every
// current todo must appear exactly once.
func (e *Editor) ReorderTodos(ids []uuid.UUID) error {
	return e.mutateErr(func() error {
		if len(ids) != len(e.entry.Todos) {
			return ErrNoSuchChild
		}
		byID := make(map[uuid.UUID]*entities.Todo, len(e.entry.Todos))
		for i := range e.entry.Todos {
			byID[e.entry.Todos[i].ID] = &e.entry.Todos[i]
		}
		for pos, id := range ids {
			todo, ok := byID[id]
			if !ok {
				return ErrNoSuchChild
			}
			todo.SortOrder = pos
		}
		return nil
	})
}

// AddNote appends a note, optionally filed under a category.
func (e *Editor) AddNote(content string, categoryID *uuid.UUID) entities.Note {
	var note entities.Note
	e.mutate(func() {
		note = entities.Note{
			ID:         uuid.New(),
			EntryID:    e.entry.ID,
			CategoryID: categoryID,
			Content:    content,
		}
		e.entry.Notes = append(e.entry.Notes, note)
	})
	return note
}

// UpdateNote applies fn to the note with the given ID.
func (e *Editor) UpdateNote(id uuid.UUID, fn func(*entities.Note)) error {
	return e.mutateErr(func() error {
		for i := range e.entry.Notes {
			if e.entry.Notes[i].ID == id {
				fn(&e.entry.Notes[i])
				return nil
			}
		}
		return ErrNoSuchChild
	})
}

// DeleteNote removes the note with the given ID.
func (e *Editor) DeleteNote(id uuid.UUID) error {
	return e.mutateErr(func() error {
		for i := range e.entry.Notes {
			if e.entry.Notes[i].ID == id {
				e.entry.Notes = append(e.entry.Notes[:i], e.entry.Notes[i+1:]...)
				return nil
			}
		}
		return ErrNoSuchChild
	})
}

// AddLink appends a link.
func (e *Editor) AddLink(url string, title, description *string) entities.Link {
	var link entities.Link
	e.mutate(func() {
		link = entities.Link{
			ID:          uuid.New(),
			EntryID:     e.entry.ID,
			URL:         url,
			Title:       title,
			Description: description,
		}
		e.entry.Links = append(e.entry.Links, link)
	})
	return link
}

// UpdateLink applies fn to the link with the given ID.
func (e *Editor) UpdateLink(id uuid.UUID, fn func(*entities.Link)) error {
	return e.mutateErr(func() error {
		for i := range e.entry.Links {
			if e.entry.Links[i].ID == id {
				fn(&e.entry.Links[i])
				return nil
			}
		}
		return ErrNoSuchChild
	})
}

// DeleteLink removes the link with the given ID.
func (e *Editor) DeleteLink(id uuid.UUID) error {
	return e.mutateErr(func() error {
		for i := range e.entry.Links {
			if e.entry.Links[i].ID == id {
				e.entry.Links = append(e.entry.Links[:i], e.entry.Links[i+1:]...)
				return nil
			}
		}
		return ErrNoSuchChild
	})
}

// Save flushes any pending edit immediately.
func (e *Editor) Save(ctx context.Context) error {
	return e.autosave.Flush(ctx)
}

// Close flushes pending work and stops the controller. The unmount path.
func (e *Editor) Close(ctx context.Context) error {
	return e.autosave.Close(ctx)
}

func (e *Editor) mutate(apply func()) {
	_ = e.mutateErr(func() error {
		apply()
		return nil
	})
}

// mutateErr applies a mutation under the lock and queues the new state. A
// failed lookup leaves the working state untouched and queues nothing.
func (e *Editor) mutateErr(apply func() error) error {
	e.mu.Lock()
	if err := apply(); err != nil {
		e.mu.Unlock()
		return err
	}
	e.dirty = true
	snapshot := e.entry.Clone()
	e.mu.Unlock()

	if err := e.autosave.Queue(snapshot); err != nil {
		e.mu.Lock()
		e.lastErr = err
		e.mu.Unlock()
		return err
	}
	return nil
}

func (e *Editor) onSaved(saved *entities.Entry) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.lastSaved = time.Now()
	e.lastErr = nil

	// Adopt server-assigned identity without clobbering newer typing.
	e.entry.ID = saved.ID
	e.entry.CreatedAt = saved.CreatedAt
	e.entry.UpdatedAt = saved.UpdatedAt

	// Edits queued after this snapshot keep the dirty flag up.
	if !e.autosave.Pending() {
		e.dirty = false
	}
}

func (e *Editor) onError(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastErr = err
}

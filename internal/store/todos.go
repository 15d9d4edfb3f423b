package store

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/julianstephens/daylog/internal/models"
	"github.com/julianstephens/daylog/internal/remote"
)

// AddTodo creates an incomplete todo and returns its temporary id.
func (s *Store) AddTodo(text string, typ models.TodoType) (string, error) {
	text = models.NormalizeName(text)
	if text == "" {
		return "", errors.New("todo text cannot be empty")
	}
	if !typ.Valid() {
		return "", fmt.Errorf("invalid todo type %q", typ)
	}

	t := models.Todo{ID: newTempID(), Text: text, Type: typ, CreatedAt: s.opts.Now()}
	uid, online := s.user()
	if online {
		s.beginCreate(t.ID)
	}
	s.apply(func(st *models.Snapshot) {
		st.Todos = append(st.Todos, t)
	})
	if !online {
		return t.ID, nil
	}

	s.dispatch("add", remote.Todos, func(ctx context.Context) error {
		return s.insertAndReconcile(ctx, remote.Todos, t.ID, todoRow(uid, t))
	}, func(st *models.Snapshot) {
		st.Todos = slices.DeleteFunc(st.Todos, func(x models.Todo) bool { return x.ID == t.ID })
	})
	return t.ID, nil
}

// ToggleTodo flips a todo's completion and returns the new state.
func (s *Store) ToggleTodo(id string) (bool, error) {
	found, was := false, false
	s.apply(func(st *models.Snapshot) {
		i := s.todoIndex(id)
		if i < 0 {
			return
		}
		found = true
		was = st.Todos[i].Completed
		st.Todos[i].Completed = !was
	})
	if !found {
		return false, fmt.Errorf("todo %s: %w", id, ErrNotFound)
	}

	uid, online := s.user()
	if !online {
		return !was, nil
	}

	s.dispatch("toggle", remote.Todos, func(ctx context.Context) error {
		rid, err := s.resolve(ctx, id)
		if err != nil {
			return err
		}
		return s.remote.Update(ctx, remote.Todos, remote.ByUser(uid, remote.Eq("id", rid)), remote.Row{"completed": !was})
	}, func(st *models.Snapshot) {
		if i := s.todoIndex(id); i >= 0 && st.Todos[i].Completed != was {
			st.Todos[i].Completed = was
		}
	})
	return !was, nil
}

// RemoveTodo deletes a todo.
func (s *Store) RemoveTodo(id string) error {
	var removed models.Todo
	idx := -1
	s.apply(func(st *models.Snapshot) {
		idx = s.todoIndex(id)
		if idx < 0 {
			return
		}
		removed = st.Todos[idx]
		st.Todos = slices.Delete(st.Todos, idx, idx+1)
	})
	if idx < 0 {
		return fmt.Errorf("todo %s: %w", id, ErrNotFound)
	}

	uid, online := s.user()
	if !online {
		return nil
	}

	s.dispatch("remove", remote.Todos, func(ctx context.Context) error {
		rid, err := s.resolve(ctx, id)
		if err != nil {
			return err
		}
		return s.remote.Delete(ctx, remote.Todos, remote.ByUser(uid, remote.Eq("id", rid)))
	}, func(st *models.Snapshot) {
		st.Todos = slices.Insert(st.Todos, min(idx, len(st.Todos)), removed)
	})
	return nil
}

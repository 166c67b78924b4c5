package todos

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/tasklist-go/apperror"
	"github.com/user/tasklist-go/ids"
)

// Store is the set of todo operations the handlers depend on. *Service is
// the database-backed implementation.
//
// Every by-id operation takes the acting creator's id and matches on both
// at once, so ownership mismatches surface as NotFound rather than as a
// distinct "forbidden" outcome.
type Store interface {
	Create(ctx context.Context, text, creatorID string) (*Todo, error)
	ListByCreator(ctx context.Context, creatorID string) ([]Todo, error)
	FindOneOwned(ctx context.Context, id, creatorID string) (*Todo, error)
	UpdateOwned(ctx context.Context, id, creatorID string, patch UpdatePatch) (*Todo, error)
	DeleteOwned(ctx context.Context, id, creatorID string) (*Todo, error)
}

// Service implements Store on top of a pgx pool.
type Service struct {
	db *pgxpool.Pool
}

// NewService creates a Service.
func NewService(db *pgxpool.Pool) *Service {
	return &Service{db: db}
}

// Create inserts a todo owned by creatorID. Text is trimmed and must be
// non-empty.
func (s *Service) Create(ctx context.Context, text, creatorID string) (*Todo, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperror.NewValidationError("text is required", nil)
	}

	id, err := ids.New()
	if err != nil {
		return nil, apperror.NewInternalError("failed to generate todo id", err)
	}

	todo := &Todo{ID: id, Text: text, CreatorID: creatorID}
	query := `INSERT INTO todos (id, text, completed, completed_at, creator_id)
	          VALUES ($1, $2, false, NULL, $3)`
	if _, err := s.db.Exec(ctx, query, todo.ID, todo.Text, todo.CreatorID); err != nil {
		return nil, apperror.NewDatabaseError("failed to create todo", err)
	}
	return todo, nil
}

// ListByCreator returns every todo owned by creatorID, oldest first.
func (s *Service) ListByCreator(ctx context.Context, creatorID string) ([]Todo, error) {
	query := `SELECT id, text, completed, completed_at, creator_id
	          FROM todos WHERE creator_id = $1 ORDER BY created_at`
	rows, err := s.db.Query(ctx, query, creatorID)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list todos", err)
	}
	defer rows.Close()

	list := []Todo{}
	for rows.Next() {
		var t Todo
		if err := rows.Scan(&t.ID, &t.Text, &t.Completed, &t.CompletedAt, &t.CreatorID); err != nil {
			return nil, apperror.NewDatabaseError("failed to scan todo", err)
		}
		list = append(list, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to list todos", err)
	}
	return list, nil
}

// FindOneOwned returns the todo only when both id and creator match.
func (s *Service) FindOneOwned(ctx context.Context, id, creatorID string) (*Todo, error) {
	if !ids.Valid(id) {
		return nil, apperror.NewNotFoundError("todo not found", nil)
	}

	var t Todo
	query := `SELECT id, text, completed, completed_at, creator_id
	          FROM todos WHERE id = $1 AND creator_id = $2`
	err := s.db.QueryRow(ctx, query, id, creatorID).
		Scan(&t.ID, &t.Text, &t.Completed, &t.CompletedAt, &t.CreatorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("todo not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to get todo", err)
	}
	return &t, nil
}

// UpdateOwned applies patch to the todo matching id and creator. The
// completed state is re-derived from the patch alone: explicitly true sets
// the completion timestamp to now, anything else clears both fields.
func (s *Service) UpdateOwned(ctx context.Context, id, creatorID string, patch UpdatePatch) (*Todo, error) {
	if !ids.Valid(id) {
		return nil, apperror.NewNotFoundError("todo not found", nil)
	}

	var text *string
	if patch.Text != nil {
		trimmed := strings.TrimSpace(*patch.Text)
		if trimmed == "" {
			return nil, apperror.NewValidationError("text is required", nil)
		}
		text = &trimmed
	}

	completed := patch.Completed != nil && *patch.Completed
	var completedAt *int64
	if completed {
		now := time.Now().UnixMilli()
		completedAt = &now
	}

	var t Todo
	query := `UPDATE todos
	          SET text = COALESCE($3, text), completed = $4, completed_at = $5
	          WHERE id = $1 AND creator_id = $2
	          RETURNING id, text, completed, completed_at, creator_id`
	err := s.db.QueryRow(ctx, query, id, creatorID, text, completed, completedAt).
		Scan(&t.ID, &t.Text, &t.Completed, &t.CompletedAt, &t.CreatorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("todo not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to update todo", err)
	}
	return &t, nil
}

// DeleteOwned removes the todo matching id and creator and returns it.
func (s *Service) DeleteOwned(ctx context.Context, id, creatorID string) (*Todo, error) {
	if !ids.Valid(id) {
		return nil, apperror.NewNotFoundError("todo not found", nil)
	}

	var t Todo
	query := `DELETE FROM todos WHERE id = $1 AND creator_id = $2
	          RETURNING id, text, completed, completed_at, creator_id`
	err := s.db.QueryRow(ctx, query, id, creatorID).
		Scan(&t.ID, &t.Text, &t.Completed, &t.CompletedAt, &t.CreatorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("todo not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to delete todo", err)
	}
	return &t, nil
}

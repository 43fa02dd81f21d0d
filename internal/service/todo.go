package service

import (
	"context"
	"errors"
	"time"

	"github.com/atinyakov/todokeeper/internal/apperr"
	"github.com/atinyakov/todokeeper/internal/models"
	"go.uber.org/zap"
)

// TodoRepository defines the persistence operations needed by the TodoService.
// Mutations take the owner id and must match it together with the todo id.
type TodoRepository interface {
	// ListByUser returns the user's todos, newest first.
	ListByUser(ctx context.Context, userID int64) ([]models.Todo, error)
	// Create stores a todo and returns it with generated fields.
	Create(ctx context.Context, t models.Todo) (*models.Todo, error)
	// UpdateOwned updates the todo with id owned by userID.
	UpdateOwned(ctx context.Context, userID, id int64, upd models.TodoUpdate, updatedAt time.Time) (*models.Todo, error)
	// DeleteOwned deletes the todo with id owned by userID.
	DeleteOwned(ctx context.Context, userID, id int64) error
}

// TodoService scopes every todo operation to the caller's identity.
type TodoService struct {
	repo TodoRepository
	log  *zap.Logger
	now  func() time.Time
}

// NewTodoService constructs a TodoService with the provided TodoRepository.
func NewTodoService(repo TodoRepository, log *zap.Logger) *TodoService {
	return &TodoService{repo: repo, log: log, now: time.Now}
}

// List returns the caller's todos, newest first. No todos is not an error.
func (s *TodoService) List(ctx context.Context, id models.Identity) ([]models.Todo, error) {
	todos, err := s.repo.ListByUser(ctx, id.UserID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "list todos", err)
	}
	if todos == nil {
		todos = []models.Todo{}
	}
	return todos, nil
}

// Create stores a new incomplete todo owned by the caller.
func (s *TodoService) Create(ctx context.Context, id models.Identity, title, description string) (*models.Todo, error) {
	if blank(title) {
		return nil, apperr.New(apperr.Validation, "title is required")
	}

	now := s.now().UTC()
	todo, err := s.repo.Create(ctx, models.Todo{
		UserID:      id.UserID,
		Title:       title,
		Description: description,
		Completed:   false,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "create todo", err)
	}

	s.log.Debug("todo created", zap.Int64("user_id", id.UserID), zap.Int64("todo_id", todo.ID))
	return todo, nil
}

// Update applies the fields present in upd to the caller's todo todoID and
// refreshes its updated timestamp. Someone else's todo is reported exactly
// like a missing one.
func (s *TodoService) Update(ctx context.Context, id models.Identity, todoID int64, upd models.TodoUpdate) (*models.Todo, error) {
	if upd.Title != nil && blank(*upd.Title) {
		return nil, apperr.New(apperr.Validation, "title cannot be empty")
	}

	todo, err := s.repo.UpdateOwned(ctx, id.UserID, todoID, upd, s.now().UTC())
	if errors.Is(err, models.ErrNotFound) {
		return nil, apperr.Wrap(apperr.NotFound, "todo not found", err)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "update todo", err)
	}

	s.log.Debug("todo updated", zap.Int64("user_id", id.UserID), zap.Int64("todo_id", todoID))
	return todo, nil
}

// Delete permanently removes the caller's todo todoID.
func (s *TodoService) Delete(ctx context.Context, id models.Identity, todoID int64) error {
	err := s.repo.DeleteOwned(ctx, id.UserID, todoID)
	if errors.Is(err, models.ErrNotFound) {
		return apperr.Wrap(apperr.NotFound, "todo not found", err)
	}
	if err != nil {
		return apperr.Wrap(apperr.Internal, "delete todo", err)
	}

	s.log.Debug("todo deleted", zap.Int64("user_id", id.UserID), zap.Int64("todo_id", todoID))
	return nil
}

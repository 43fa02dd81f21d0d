package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/atinyakov/todokeeper/internal/apperr"
	"github.com/atinyakov/todokeeper/internal/middleware"
	"github.com/atinyakov/todokeeper/internal/models"
	"github.com/atinyakov/todokeeper/internal/server/respond"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// TodoService defines the todo operations required by the TodoHandler.
// Every call is scoped to the given identity.
type TodoService interface {
	// List returns the caller's todos, newest first.
	List(ctx context.Context, id models.Identity) ([]models.Todo, error)
	// Create stores a new incomplete todo owned by the caller.
	Create(ctx context.Context, id models.Identity, title, description string) (*models.Todo, error)
	// Update applies the present fields of upd to the caller's todo.
	Update(ctx context.Context, id models.Identity, todoID int64, upd models.TodoUpdate) (*models.Todo, error)
	// Delete removes the caller's todo.
	Delete(ctx context.Context, id models.Identity, todoID int64) error
}

// TodoHandler handles the protected /api/todos endpoints.
type TodoHandler struct {
	TodoService TodoService
	Log         *zap.Logger
}

// CreateTodoRequest is the body of POST /api/todos.
type CreateTodoRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// TodoListResponse is the body of GET /api/todos.
type TodoListResponse struct {
	Todos []models.Todo `json:"todos"`
}

// TodoResponse is the body of a successful create or update.
type TodoResponse struct {
	Message string       `json:"message"`
	Todo    *models.Todo `json:"todo"`
}

// MessageResponse carries only a confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}

var errTodoNotFound = apperr.New(apperr.NotFound, "todo not found")

// List handles GET /api/todos.
func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	todos, err := h.TodoService.List(r.Context(), id)
	if err != nil {
		fail(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, TodoListResponse{Todos: todos})
}

// Create handles POST /api/todos.
func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	var req CreateTodoRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, h.Log, err)
		return
	}

	todo, err := h.TodoService.Create(r.Context(), id, req.Title, req.Description)
	if err != nil {
		fail(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusCreated, TodoResponse{Message: "todo created", Todo: todo})
}

// Update handles PUT /api/todos/{id}. Absent fields are left unchanged.
func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	todoID, ok := todoIDParam(r)
	if !ok {
		respond.Err(w, errTodoNotFound)
		return
	}

	var upd models.TodoUpdate
	if err := decodeJSON(w, r, &upd); err != nil {
		fail(w, r, h.Log, err)
		return
	}

	todo, err := h.TodoService.Update(r.Context(), id, todoID, upd)
	if err != nil {
		fail(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, TodoResponse{Message: "todo updated", Todo: todo})
}

// Delete handles DELETE /api/todos/{id}.
func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	todoID, ok := todoIDParam(r)
	if !ok {
		respond.Err(w, errTodoNotFound)
		return
	}

	if err := h.TodoService.Delete(r.Context(), id, todoID); err != nil {
		fail(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, MessageResponse{Message: "todo deleted"})
}

// identity returns the caller verified by middleware.BearerAuth.
func identity(w http.ResponseWriter, r *http.Request) (models.Identity, bool) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respond.Err(w, apperr.New(apperr.MissingCredential, "access token missing"))
	}
	return id, ok
}

// todoIDParam parses the {id} path segment. Only positive integers name a todo.
func todoIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

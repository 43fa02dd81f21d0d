// Package http provides the HTTP handlers and routing of the todo API.
package http

import (
	"context"
	"net/http"

	"github.com/atinyakov/todokeeper/internal/apperr"
	"github.com/atinyakov/todokeeper/internal/models"
	"github.com/atinyakov/todokeeper/internal/server/respond"
	"go.uber.org/zap"
)

// AuthService defines the interface for authentication operations
// required by the HTTP handlers.
type AuthService interface {
	// Register creates a user and returns it with a session token.
	Register(ctx context.Context, username, email, password string) (*models.User, string, error)
	// Login verifies a username or email with a password and returns
	// the user with a session token.
	Login(ctx context.Context, identifier, password string) (*models.User, string, error)
}

// AuthHandler handles HTTP requests for user registration and login.
type AuthHandler struct {
	// AuthService performs the underlying authentication operations.
	AuthService AuthService
	Log         *zap.Logger
}

// RegisterRequest represents the JSON payload for user registration.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the JSON payload for login. Username may hold
// either the username or the email.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse is returned by a successful register or login.
type AuthResponse struct {
	Message string            `json:"message"`
	Token   string            `json:"token"`
	User    models.PublicUser `json:"user"`
}

// Register handles POST /api/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, h.Log, err)
		return
	}

	user, token, err := h.AuthService.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		fail(w, r, h.Log, err)
		return
	}

	respond.JSON(w, http.StatusCreated, AuthResponse{
		Message: "registration successful",
		Token:   token,
		User:    user.Public(),
	})
}

// Login handles POST /api/login. Every credential failure, an unknown user
// included, is reported as 400.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, h.Log, err)
		return
	}

	user, token, err := h.AuthService.Login(r.Context(), req.Username, req.Password)
	if apperr.KindOf(err) == apperr.NotFound {
		respond.Error(w, http.StatusBadRequest, apperr.MessageOf(err))
		return
	}
	if err != nil {
		fail(w, r, h.Log, err)
		return
	}

	respond.JSON(w, http.StatusOK, AuthResponse{
		Message: "login successful",
		Token:   token,
		User:    user.Public(),
	})
}

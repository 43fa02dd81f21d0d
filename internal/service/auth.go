// Package service provides the credential/session logic and the per-user
// todo guard, delegating persistence to repository interfaces.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/atinyakov/todokeeper/internal/apperr"
	"github.com/atinyakov/todokeeper/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthRepository defines the persistence operations
// required by the authentication service.
type AuthRepository interface {
	// UserExists returns true if a user holds the username or the email.
	UserExists(ctx context.Context, username, email string) (bool, error)
	// CreateUser stores a new user. It returns models.ErrDuplicate when a
	// unique constraint rejects the row.
	CreateUser(ctx context.Context, u models.User) (*models.User, error)
	// GetUserByLogin finds a user by username or email.
	// It returns models.ErrNotFound when nobody matches.
	GetUserByLogin(ctx context.Context, identifier string) (*models.User, error)
}

// maxPasswordBytes is the longest input bcrypt hashes without truncation.
const maxPasswordBytes = 72

// AuthService registers users, verifies credentials and issues tokens.
type AuthService struct {
	repo   AuthRepository
	tokens *TokenManager
	cost   int
	log    *zap.Logger
	now    func() time.Time
}

// NewAuthService constructs an AuthService. cost is the bcrypt cost factor.
func NewAuthService(repo AuthRepository, tokens *TokenManager, cost int, log *zap.Logger) *AuthService {
	return &AuthService{repo: repo, tokens: tokens, cost: cost, log: log, now: time.Now}
}

// Register creates a user and returns it together with a session token.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*models.User, string, error) {
	if blank(username) || blank(email) || password == "" {
		return nil, "", apperr.New(apperr.Validation, "username, email and password are required")
	}
	if len(password) > maxPasswordBytes {
		return nil, "", apperr.New(apperr.Validation, "password must be at most 72 bytes")
	}

	// Fast path for a friendly error; the unique constraints decide races.
	exists, err := s.repo.UserExists(ctx, username, email)
	if err != nil {
		return nil, "", apperr.Wrap(apperr.Internal, "check existing user", err)
	}
	if exists {
		return nil, "", apperr.New(apperr.Conflict, "username or email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, "", apperr.Wrap(apperr.Validation, "password must be at most 72 bytes", err)
	}
	if err != nil {
		return nil, "", apperr.Wrap(apperr.Internal, "hash password", err)
	}

	user, err := s.repo.CreateUser(ctx, models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	})
	if errors.Is(err, models.ErrDuplicate) {
		return nil, "", apperr.Wrap(apperr.Conflict, "username or email already exists", err)
	}
	if err != nil {
		return nil, "", apperr.Wrap(apperr.Internal, "create user", err)
	}

	token, err := s.issue(user)
	if err != nil {
		return nil, "", err
	}

	s.log.Info("user registered", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	return user, token, nil
}

// Login verifies identifier (username or email) and password and returns the
// user with a fresh session token.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*models.User, string, error) {
	if blank(identifier) || password == "" {
		return nil, "", apperr.New(apperr.Validation, "username and password are required")
	}

	user, err := s.repo.GetUserByLogin(ctx, identifier)
	if errors.Is(err, models.ErrNotFound) {
		return nil, "", apperr.Wrap(apperr.NotFound, "user does not exist", err)
	}
	if err != nil {
		return nil, "", apperr.Wrap(apperr.Internal, "find user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			s.log.Debug("login rejected", zap.Int64("user_id", user.ID))
			return nil, "", apperr.New(apperr.Auth, "incorrect password")
		}
		return nil, "", apperr.Wrap(apperr.Internal, "compare password", err)
	}

	token, err := s.issue(user)
	if err != nil {
		return nil, "", err
	}

	s.log.Info("user logged in", zap.Int64("user_id", user.ID))
	return user, token, nil
}

// ValidateToken returns the identity asserted by a bearer token.
func (s *AuthService) ValidateToken(raw string) (models.Identity, error) {
	return s.tokens.Validate(raw)
}

func (s *AuthService) issue(user *models.User) (string, error) {
	token, err := s.tokens.Issue(models.Identity{UserID: user.ID, Username: user.Username})
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, "issue token", err)
	}
	return token, nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Package repository provides persistence implementations for users and
// their todos on top of sqlx. Queries are written with ? placeholders and
// rebound for the driver in use.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atinyakov/todokeeper/internal/models"
	"github.com/jmoiron/sqlx"
)

const userColumns = `id, username, email, password, created_at`

// UserRepository implements user persistence.
type UserRepository struct {
	// DB is the database handle for executing queries.
	DB *sqlx.DB
}

// NewUserRepository creates a UserRepository over db.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{DB: db}
}

// UserExists reports whether a user holds either the username or the email.
func (r *UserRepository) UserExists(ctx context.Context, username, email string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowxContext(
		ctx,
		r.DB.Rebind(`SELECT EXISTS(SELECT 1 FROM users WHERE username = ? OR email = ?)`),
		username, email,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("UserExists: %w", err)
	}
	return exists, nil
}

// CreateUser inserts u and returns the stored row. A username or email that
// is already taken yields models.ErrDuplicate, which makes the schema's
// unique constraints the source of truth under concurrent registrations.
func (r *UserRepository) CreateUser(ctx context.Context, u models.User) (*models.User, error) {
	var created userRow
	err := r.DB.QueryRowxContext(
		ctx,
		r.DB.Rebind(`INSERT INTO users (username, email, password, created_at) VALUES (?, ?, ?, ?) RETURNING `+userColumns),
		u.Username, u.Email, u.PasswordHash, u.CreatedAt,
	).StructScan(&created)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, models.ErrDuplicate
		}
		return nil, fmt.Errorf("CreateUser: %w", err)
	}
	return created.model(), nil
}

// GetUserByLogin looks up a user whose username or email equals identifier.
// When the identifier is one user's username and another user's email, the
// username match wins.
func (r *UserRepository) GetUserByLogin(ctx context.Context, identifier string) (*models.User, error) {
	var row userRow
	err := r.DB.GetContext(
		ctx,
		&row,
		r.DB.Rebind(`SELECT `+userColumns+` FROM users
			WHERE username = ? OR email = ?
			ORDER BY CASE WHEN username = ? THEN 0 ELSE 1 END
			LIMIT 1`),
		identifier, identifier, identifier,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetUserByLogin: %w", err)
	}
	return row.model(), nil
}

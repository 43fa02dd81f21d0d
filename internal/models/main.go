// Package models defines the core data structures for users and todos.
package models

import "time"

// User represents an application user with credentials.
type User struct {
	// ID is the unique identifier for the user.
	ID int64 `json:"id" db:"id"`
	// Username is the login name chosen by the user.
	Username string `json:"username" db:"username"`
	// Email is the user's unique email address.
	Email string `json:"email" db:"email"`
	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string `json:"-" db:"password"`
	// CreatedAt is the registration timestamp.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// PublicUser is the representation of a user returned to clients.
type PublicUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Public strips everything a client must not see.
func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username, Email: u.Email}
}

// Identity is the verified caller extracted from a session token.
type Identity struct {
	UserID   int64
	Username string
}

// Todo is a task item owned by exactly one user.
type Todo struct {
	// ID is the unique identifier for the todo.
	ID int64 `json:"id" db:"id"`
	// UserID references the owning user.
	UserID int64 `json:"user_id" db:"user_id"`
	// Title is required and never empty.
	Title string `json:"title" db:"title"`
	// Description defaults to an empty string.
	Description string `json:"description" db:"description"`
	// Completed defaults to false on creation.
	Completed bool `json:"completed" db:"completed"`
	// CreatedAt is set once on insert.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	// UpdatedAt is refreshed on every update.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// TodoUpdate carries a partial update. A nil field is left untouched.
type TodoUpdate struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

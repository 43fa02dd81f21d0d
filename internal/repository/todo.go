package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/atinyakov/todokeeper/internal/models"
	"github.com/jmoiron/sqlx"
)

const todoColumns = `id, user_id, title, description, completed, created_at, updated_at`

// TodoRepository implements todo persistence. Every statement that touches
// an existing row filters on both id and user_id.
type TodoRepository struct {
	// DB is the database handle for executing queries.
	DB *sqlx.DB
}

// NewTodoRepository creates a TodoRepository over db.
func NewTodoRepository(db *sqlx.DB) *TodoRepository {
	return &TodoRepository{DB: db}
}

// ListByUser returns the user's todos, newest first. It never returns a nil
// slice without an error.
func (r *TodoRepository) ListByUser(ctx context.Context, userID int64) ([]models.Todo, error) {
	var rows []todoRow
	err := r.DB.SelectContext(
		ctx,
		&rows,
		r.DB.Rebind(`SELECT `+todoColumns+` FROM todos WHERE user_id = ? ORDER BY created_at DESC, id DESC`),
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListByUser: %w", err)
	}

	todos := make([]models.Todo, 0, len(rows))
	for _, row := range rows {
		todos = append(todos, row.model())
	}
	return todos, nil
}

// Create inserts t and returns the stored row with its generated id.
func (r *TodoRepository) Create(ctx context.Context, t models.Todo) (*models.Todo, error) {
	var created todoRow
	err := r.DB.QueryRowxContext(
		ctx,
		r.DB.Rebind(`INSERT INTO todos (user_id, title, description, completed, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?) RETURNING `+todoColumns),
		t.UserID, t.Title, t.Description, t.Completed, t.CreatedAt, t.UpdatedAt,
	).StructScan(&created)
	if err != nil {
		return nil, fmt.Errorf("Create: %w", err)
	}
	todo := created.model()
	return &todo, nil
}

// UpdateOwned applies upd to the todo matching both id and userID in a single
// statement. Nil fields keep their stored value. updatedAt is always written.
// Returns models.ErrNotFound when no row matches.
func (r *TodoRepository) UpdateOwned(ctx context.Context, userID, id int64, upd models.TodoUpdate, updatedAt time.Time) (*models.Todo, error) {
	var updated todoRow
	err := r.DB.QueryRowxContext(
		ctx,
		r.DB.Rebind(`UPDATE todos SET
				title = COALESCE(?, title),
				description = COALESCE(?, description),
				completed = COALESCE(?, completed),
				updated_at = ?
			WHERE id = ? AND user_id = ?
			RETURNING `+todoColumns),
		upd.Title, upd.Description, upd.Completed, updatedAt, id, userID,
	).StructScan(&updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("UpdateOwned: %w", err)
	}
	todo := updated.model()
	return &todo, nil
}

// DeleteOwned removes the todo matching both id and userID.
// Returns models.ErrNotFound when nothing was deleted.
func (r *TodoRepository) DeleteOwned(ctx context.Context, userID, id int64) error {
	res, err := r.DB.ExecContext(
		ctx,
		r.DB.Rebind(`DELETE FROM todos WHERE id = ? AND user_id = ?`),
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("DeleteOwned: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("DeleteOwned: rows affected: %w", err)
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}

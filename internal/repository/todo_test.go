package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/atinyakov/todokeeper/internal/models"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var todoCols = []string{"id", "user_id", "title", "description", "completed", "created_at", "updated_at"}

func setupTodoMock(t *testing.T) (*TodoRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return NewTodoRepository(sqlx.NewDb(db, "postgres")), mock
}

func TestListByUser(t *testing.T) {
	repo, mock := setupTodoMock(t)

	newer := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	older := newer.Add(-time.Hour)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM todos WHERE user_id = $1 ORDER BY created_at DESC, id DESC`)).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(todoCols).
			AddRow(2, 5, "second", "", false, newer, newer).
			AddRow(1, 5, "first", "d", true, older, older))

	todos, err := repo.ListByUser(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, todos, 2)
	assert.Equal(t, int64(2), todos[0].ID)
	assert.Equal(t, "first", todos[1].Title)
	assert.True(t, todos[1].Completed)
	assert.True(t, todos[0].CreatedAt.Equal(newer))
}

func TestListByUser_EmptyIsNotNil(t *testing.T) {
	repo, mock := setupTodoMock(t)

	mock.ExpectQuery(`FROM todos`).WithArgs(int64(9)).WillReturnRows(sqlmock.NewRows(todoCols))

	todos, err := repo.ListByUser(context.Background(), 9)
	require.NoError(t, err)
	assert.NotNil(t, todos)
	assert.Empty(t, todos)
}

func TestListByUser_Error(t *testing.T) {
	repo, mock := setupTodoMock(t)

	mock.ExpectQuery(`FROM todos`).WillReturnError(errors.New("timeout"))

	_, err := repo.ListByUser(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ListByUser")
}

func TestCreateTodo(t *testing.T) {
	repo, mock := setupTodoMock(t)

	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO todos (user_id, title, description, completed, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6) RETURNING`)).
		WithArgs(int64(5), "buy milk", "", false, now, now).
		WillReturnRows(sqlmock.NewRows(todoCols).AddRow(11, 5, "buy milk", "", false, now, now))

	todo, err := repo.Create(context.Background(), models.Todo{
		UserID: 5, Title: "buy milk", CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(11), todo.ID)
	assert.Equal(t, int64(5), todo.UserID)
	assert.False(t, todo.Completed)
}

func TestUpdateOwned_PartialFields(t *testing.T) {
	repo, mock := setupTodoMock(t)

	created := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	now := created.Add(time.Minute)
	done := true
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE id = $5 AND user_id = $6 RETURNING`)).
		WithArgs(nil, nil, true, now, int64(11), int64(5)).
		WillReturnRows(sqlmock.NewRows(todoCols).AddRow(11, 5, "buy milk", "", true, created, now))

	todo, err := repo.UpdateOwned(context.Background(), 5, 11, models.TodoUpdate{Completed: &done}, now)
	require.NoError(t, err)
	assert.True(t, todo.Completed)
	assert.Equal(t, "buy milk", todo.Title)
	assert.True(t, todo.UpdatedAt.After(todo.CreatedAt))
}

func TestUpdateOwned_NotOwned(t *testing.T) {
	repo, mock := setupTodoMock(t)

	title := "steal"
	mock.ExpectQuery(`UPDATE todos SET`).
		WithArgs("steal", nil, nil, sqlmock.AnyArg(), int64(11), int64(6)).
		WillReturnRows(sqlmock.NewRows(todoCols))

	_, err := repo.UpdateOwned(context.Background(), 6, 11, models.TodoUpdate{Title: &title}, time.Now())
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUpdateOwned_Error(t *testing.T) {
	repo, mock := setupTodoMock(t)

	mock.ExpectQuery(`UPDATE todos SET`).WillReturnError(errors.New("deadlock"))

	_, err := repo.UpdateOwned(context.Background(), 1, 1, models.TodoUpdate{}, time.Now())
	require.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrNotFound)
}

func TestDeleteOwned(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		execErr  error
		wantErr  error
	}{
		{name: "deleted", affected: 1},
		{name: "missing or not owned", affected: 0, wantErr: models.ErrNotFound},
		{name: "storage error", execErr: errors.New("read-only")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := setupTodoMock(t)

			exp := mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM todos WHERE id = $1 AND user_id = $2`)).
				WithArgs(int64(3), int64(8))
			if tt.execErr != nil {
				exp.WillReturnError(tt.execErr)
			} else {
				exp.WillReturnResult(sqlmock.NewResult(0, tt.affected))
			}

			err := repo.DeleteOwned(context.Background(), 8, 3)
			switch {
			case tt.execErr != nil:
				require.Error(t, err)
				assert.Contains(t, err.Error(), "DeleteOwned")
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestDBTime_Scan(t *testing.T) {
	var ts dbTime

	require.NoError(t, ts.Scan("2024-05-01 09:30:00.5+00:00"))
	assert.Equal(t, time.Date(2024, 5, 1, 9, 30, 0, 500_000_000, time.UTC), ts.Time)

	require.NoError(t, ts.Scan([]byte("2024-05-01 09:30:00")))
	assert.Equal(t, time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC), ts.Time)

	require.NoError(t, ts.Scan(nil))
	assert.True(t, ts.IsZero())

	assert.Error(t, ts.Scan("yesterday"))
	assert.Error(t, ts.Scan(42))
}

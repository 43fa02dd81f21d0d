package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/atinyakov/todokeeper/internal/db"
	"github.com/atinyakov/todokeeper/internal/repository"
	handler "github.com/atinyakov/todokeeper/internal/server/handler/http"
	"github.com/atinyakov/todokeeper/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// newServer wires the full stack on a fresh SQLite database.
func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	conn, err := db.Open(context.Background(), "sqlite3", filepath.Join(t.TempDir(), "todo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	log := zap.NewNop()
	tokens := service.NewTokenManager("e2e-secret", time.Hour)
	auth := service.NewAuthService(repository.NewUserRepository(conn), tokens, bcrypt.MinCost, log)
	todos := service.NewTodoService(repository.NewTodoRepository(conn), log)

	router := handler.NewRouter(handler.Handlers{
		Index:  &handler.IndexHandler{Version: "test", Database: db.Backend("sqlite3")},
		Health: &handler.HealthHandler{DB: conn, Log: log},
		Auth:   &handler.AuthHandler{AuthService: auth, Log: log},
		Todos:  &handler.TodoHandler{TodoService: todos, Log: log},
	}, auth, []string{"*"}, log)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

type result struct {
	code int
	body map[string]any
}

func call(t *testing.T, srv *httptest.Server, method, path, token, body string) result {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, srv.URL+path, rdr)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	out := map[string]any{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return result{code: resp.StatusCode, body: out}
}

func register(t *testing.T, srv *httptest.Server, name string) string {
	t.Helper()
	res := call(t, srv, http.MethodPost, "/api/register", "",
		`{"username":"`+name+`","email":"`+name+`@x.io","password":"pw-`+name+`"}`)
	require.Equal(t, http.StatusCreated, res.code, res.body)
	token, _ := res.body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestRouter_AuthFlow(t *testing.T) {
	srv := newServer(t)

	register(t, srv, "alice")

	dup := call(t, srv, http.MethodPost, "/api/register", "", `{"username":"alice","email":"other@x.io","password":"pw"}`)
	assert.Equal(t, http.StatusBadRequest, dup.code)
	assert.Equal(t, "username or email already exists", dup.body["error"])

	byEmail := call(t, srv, http.MethodPost, "/api/login", "", `{"username":"alice@x.io","password":"pw-alice"}`)
	assert.Equal(t, http.StatusOK, byEmail.code)
	assert.Equal(t, "login successful", byEmail.body["message"])

	wrong := call(t, srv, http.MethodPost, "/api/login", "", `{"username":"alice","password":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, wrong.code)
	assert.Equal(t, "incorrect password", wrong.body["error"])

	long := call(t, srv, http.MethodPost, "/api/register", "",
		`{"username":"carol","email":"c@x.io","password":"`+strings.Repeat("p", 80)+`"}`)
	assert.Equal(t, http.StatusBadRequest, long.code)
	assert.Equal(t, "password must be at most 72 bytes", long.body["error"])

	ghost := call(t, srv, http.MethodPost, "/api/login", "", `{"username":"ghost","password":"pw"}`)
	assert.Equal(t, http.StatusBadRequest, ghost.code)
	assert.Equal(t, "user does not exist", ghost.body["error"])
}

func TestRouter_TodoIsolation(t *testing.T) {
	srv := newServer(t)
	alice := register(t, srv, "alice")
	bob := register(t, srv, "bob")

	created := call(t, srv, http.MethodPost, "/api/todos", alice, `{"title":"Buy milk"}`)
	require.Equal(t, http.StatusCreated, created.code)
	todo := created.body["todo"].(map[string]any)
	assert.Equal(t, "Buy milk", todo["title"])
	assert.Equal(t, "", todo["description"])
	assert.Equal(t, false, todo["completed"])
	id := int64(todo["id"].(float64))
	path := "/api/todos/" + jsonNumber(id)

	second := call(t, srv, http.MethodPost, "/api/todos", alice, `{"title":"Walk dog","description":"park"}`)
	require.Equal(t, http.StatusCreated, second.code)

	list := call(t, srv, http.MethodGet, "/api/todos", alice, "")
	require.Equal(t, http.StatusOK, list.code)
	items := list.body["todos"].([]any)
	require.Len(t, items, 2)
	assert.Equal(t, "Walk dog", items[0].(map[string]any)["title"], "newest first")

	empty := call(t, srv, http.MethodGet, "/api/todos", bob, "")
	assert.Equal(t, []any{}, empty.body["todos"])

	steal := call(t, srv, http.MethodPut, path, bob, `{"title":"stolen"}`)
	assert.Equal(t, http.StatusNotFound, steal.code)
	missing := call(t, srv, http.MethodPut, "/api/todos/9999", alice, `{"title":"x"}`)
	assert.Equal(t, steal, missing, "foreign and missing todos must be indistinguishable")

	assert.Equal(t, http.StatusNotFound, call(t, srv, http.MethodDelete, path, bob, "").code)

	time.Sleep(5 * time.Millisecond)
	done := call(t, srv, http.MethodPut, path, alice, `{"completed":true}`)
	require.Equal(t, http.StatusOK, done.code)
	updated := done.body["todo"].(map[string]any)
	assert.Equal(t, true, updated["completed"])
	assert.NotEqual(t, todo["updated_at"], updated["updated_at"], "updated_at is refreshed")
	assert.Equal(t, todo["created_at"], updated["created_at"])
	assert.Equal(t, "Buy milk", updated["title"], "absent fields stay unchanged")

	blank := call(t, srv, http.MethodPut, path, alice, `{"title":""}`)
	assert.Equal(t, http.StatusBadRequest, blank.code)

	del := call(t, srv, http.MethodDelete, path, alice, "")
	assert.Equal(t, http.StatusOK, del.code)
	assert.Equal(t, "todo deleted", del.body["message"])
	assert.Equal(t, http.StatusNotFound, call(t, srv, http.MethodDelete, path, alice, "").code)
}

func TestRouter_Credentials(t *testing.T) {
	srv := newServer(t)

	none := call(t, srv, http.MethodGet, "/api/todos", "", "")
	assert.Equal(t, http.StatusUnauthorized, none.code)

	bad := call(t, srv, http.MethodGet, "/api/todos", "not-a-token", "")
	assert.Equal(t, http.StatusForbidden, bad.code)

	foreign, err := service.NewTokenManager("other-secret", time.Hour).Issue(identity(1, "alice"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, call(t, srv, http.MethodGet, "/api/todos", foreign, "").code)
}

func TestRouter_PublicEndpoints(t *testing.T) {
	srv := newServer(t)

	root := call(t, srv, http.MethodGet, "/", "", "")
	assert.Equal(t, http.StatusOK, root.code)
	assert.Equal(t, "SQLite", root.body["database"])

	health := call(t, srv, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, health.code)

	unknown := call(t, srv, http.MethodGet, "/api/nope", "", "")
	assert.Equal(t, http.StatusNotFound, unknown.code)
	assert.Equal(t, "route not found", unknown.body["error"])

	wrongMethod := call(t, srv, http.MethodPatch, "/api/login", "", "")
	assert.Equal(t, http.StatusNotFound, wrongMethod.code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	srv := newServer(t)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/todos", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Less(t, resp.StatusCode, 300)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

package http

import (
	"net/http"

	"github.com/atinyakov/todokeeper/internal/middleware"
	"github.com/atinyakov/todokeeper/internal/server/respond"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Handlers groups the endpoint handlers mounted by NewRouter.
type Handlers struct {
	Index  *IndexHandler
	Health *HealthHandler
	Auth   *AuthHandler
	Todos  *TodoHandler
}

// NewRouter constructs and returns an HTTP handler that serves the todo API.
//
// Routes:
//
//	GET    /                → h.Index.Index
//	GET    /health          → h.Health.Health
//	POST   /api/register    → h.Auth.Register
//	POST   /api/login       → h.Auth.Login
//	GET    /api/todos       → h.Todos.List   (bearer token)
//	POST   /api/todos       → h.Todos.Create (bearer token)
//	PUT    /api/todos/{id}  → h.Todos.Update (bearer token)
//	DELETE /api/todos/{id}  → h.Todos.Delete (bearer token)
//
// Middleware chain (applied in order): RequestID, RealIP,
// WithRequestLogging, Recoverer, CORS. Unknown routes and methods get a
// JSON 404.
func NewRouter(
	h Handlers,
	tokens middleware.TokenValidator,
	allowedOrigins []string,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	notFound := func(w http.ResponseWriter, _ *http.Request) {
		respond.Error(w, http.StatusNotFound, "route not found")
	}
	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)

	r.Get("/", h.Index.Index)
	r.Get("/health", h.Health.Health)

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Post("/register", h.Auth.Register)
		r.Post("/login", h.Auth.Login)

		// Protected group: requires a valid bearer token
		r.Group(func(r chi.Router) {
			r.Use(middleware.BearerAuth(tokens, logger))
			r.Get("/todos", h.Todos.List)
			r.Post("/todos", h.Todos.Create)
			r.Put("/todos/{id}", h.Todos.Update)
			r.Delete("/todos/{id}", h.Todos.Delete)
		})
	})

	return r
}

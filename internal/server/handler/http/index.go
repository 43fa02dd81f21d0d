package http

import (
	"context"
	"net/http"

	"github.com/atinyakov/todokeeper/internal/server/respond"
	"go.uber.org/zap"
)

// IndexHandler serves the service banner.
type IndexHandler struct {
	Version  string
	Database string
}

// Endpoints lists the public API surface in the banner.
type Endpoints struct {
	Register string `json:"register"`
	Login    string `json:"login"`
	Todos    string `json:"todos"`
	Todo     string `json:"todo"`
}

// IndexResponse is the body of GET /.
type IndexResponse struct {
	Message   string    `json:"message"`
	Version   string    `json:"version"`
	Database  string    `json:"database"`
	Endpoints Endpoints `json:"endpoints"`
}

// Index handles GET /.
func (h *IndexHandler) Index(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, IndexResponse{
		Message:  "TodoApp API server is running",
		Version:  h.Version,
		Database: h.Database,
		Endpoints: Endpoints{
			Register: "POST /api/register",
			Login:    "POST /api/login",
			Todos:    "GET/POST /api/todos",
			Todo:     "PUT/DELETE /api/todos/:id",
		},
	})
}

// Pinger reports whether the storage is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler serves GET /health.
type HealthHandler struct {
	DB  Pinger
	Log *zap.Logger
}

// Health answers 200 when the database responds to a ping.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.DB.PingContext(r.Context()); err != nil {
		h.Log.Error("health check failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "database unavailable")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

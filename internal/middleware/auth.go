// Package middleware provides HTTP middlewares for authentication, request
// logging and panic recovery.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/atinyakov/todokeeper/internal/apperr"
	"github.com/atinyakov/todokeeper/internal/models"
	"github.com/atinyakov/todokeeper/internal/server/respond"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type ctxKey string

const identityKey ctxKey = "identity"

// TokenValidator resolves a raw bearer token to the identity it asserts.
type TokenValidator interface {
	ValidateToken(raw string) (models.Identity, error)
}

// BearerAuth rejects requests without a valid "Authorization: Bearer <token>"
// header. A missing token yields 401, any other failure 403. On success the
// verified identity is stored in the request context.
func BearerAuth(v TokenValidator, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id models.Identity
			raw, err := bearerToken(r)
			if err == nil {
				id, err = v.ValidateToken(raw)
			}
			if err != nil {
				log.Debug("request rejected",
					zap.String("path", r.URL.Path),
					zap.String("reason", apperr.KindOf(err).String()),
					zap.String("request_id", middleware.GetReqID(r.Context())),
				)
				respond.Err(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// bearerToken returns the credential of the Authorization header. An absent
// header or credential yields "". Other schemes are rejected.
func bearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", nil
	}
	scheme, token, _ := strings.Cut(header, " ")
	if !strings.EqualFold(scheme, "Bearer") {
		return "", apperr.New(apperr.InvalidCredential, "invalid access token")
	}
	return strings.TrimSpace(token), nil
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id models.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext extracts the identity stored by BearerAuth.
func IdentityFromContext(ctx context.Context) (models.Identity, bool) {
	id, ok := ctx.Value(identityKey).(models.Identity)
	return id, ok
}

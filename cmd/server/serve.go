package main

import (
	"cmp"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	nethttp "net/http"

	"github.com/atinyakov/todokeeper/internal/config"
	"github.com/atinyakov/todokeeper/internal/db"
	"github.com/atinyakov/todokeeper/internal/repository"
	"github.com/atinyakov/todokeeper/internal/server/handler/http"
	"github.com/atinyakov/todokeeper/internal/service"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func runServe(cmd *cobra.Command, _ []string) error {
	options, zapLogger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = zapLogger.Sync() }()

	zapLogger.Info("starting todokeeper",
		zap.String("version", cmp.Or(version, "N/A")),
		zap.String("build_date", cmp.Or(buildDate, "N/A")),
	)
	if options.UsesDefaultSecret() {
		zapLogger.Warn("JWT_SECRET is not set, signing tokens with the development default")
	}

	ctx := cmd.Context()
	conn, err := db.Open(ctx, options.DatabaseDriver, options.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("cannot init database: %w", err)
	}
	defer conn.Close()

	server := &nethttp.Server{
		Addr:              options.Port,
		Handler:           newRouter(conn, options, zapLogger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if options.TLSEnabled() {
		server.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	return listen(ctx, server, options, zapLogger)
}

// newRouter wires repositories, services and handlers on top of conn.
func newRouter(conn *sqlx.DB, options *config.Options, zapLogger *zap.Logger) nethttp.Handler {
	tokens := service.NewTokenManager(options.JWTSecret, options.TokenTTL)

	authService := service.NewAuthService(repository.NewUserRepository(conn), tokens, options.BcryptCost, zapLogger)
	todoService := service.NewTodoService(repository.NewTodoRepository(conn), zapLogger)

	return http.NewRouter(http.Handlers{
		Index:  &http.IndexHandler{Version: cmp.Or(version, "dev"), Database: db.Backend(options.DatabaseDriver)},
		Health: &http.HealthHandler{DB: conn, Log: zapLogger},
		Auth:   &http.AuthHandler{AuthService: authService, Log: zapLogger},
		Todos:  &http.TodoHandler{TodoService: todoService, Log: zapLogger},
	}, authService, options.CORSAllowedOrigins, zapLogger)
}

// listen serves until ctx is cancelled, then drains in-flight requests.
func listen(ctx context.Context, server *nethttp.Server, options *config.Options, zapLogger *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		var err error
		if options.TLSEnabled() {
			zapLogger.Info("starting HTTPS server", zap.String("addr", server.Addr))
			err = server.ListenAndServeTLS(options.TLSCertFile, options.TLSKeyFile)
		} else {
			zapLogger.Info("starting HTTP server", zap.String("addr", server.Addr))
			err = server.ListenAndServe()
		}
		if !errors.Is(err, nethttp.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	zapLogger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

package main

import (
	"fmt"

	"github.com/atinyakov/todokeeper/internal/db"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// runMigrate creates the schema. db.Open already migrates; this subcommand
// exists for deployments that prepare the database ahead of the server.
func runMigrate(cmd *cobra.Command, _ []string) error {
	options, zapLogger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = zapLogger.Sync() }()

	conn, err := db.Open(cmd.Context(), options.DatabaseDriver, options.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	defer conn.Close()

	zapLogger.Info("schema ready",
		zap.String("driver", options.DatabaseDriver),
		zap.String("database", db.Backend(options.DatabaseDriver)),
	)
	return nil
}

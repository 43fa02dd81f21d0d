// Package main is the todokeeper server binary. It loads configuration,
// prepares the database and serves the todo API until interrupted.
package main

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/atinyakov/todokeeper/internal/config"
	"github.com/atinyakov/todokeeper/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "todokeeper",
		Short:         "Multi-user todo API server",
		Version:       cmp.Or(version, "dev"),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server (default)",
		RunE:  runServe,
	})
	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema and exit",
		RunE:  runMigrate,
	})
	root.AddCommand(genCertCmd())

	return root
}

// setup loads the options and builds the logger shared by every subcommand.
func setup(cmd *cobra.Command) (*config.Options, *zap.Logger, error) {
	options, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New()
	if err := log.Init(options.LogLevel); err != nil {
		return nil, nil, err
	}
	return options, log.Log, nil
}

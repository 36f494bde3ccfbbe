package main

import (
	"log/slog"
	"os/signal"
	"syscall"

	"storefront/internal/server"

	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	gormDB, err := openDB(cfg)
	if err != nil {
		return err
	}

	e := buildServer(cfg, gormDB)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("server starting", "addr", cfg.Addr())
	if err := server.Start(ctx, e, cfg.Addr()); err != nil {
		return err
	}
	slog.Info("server stopped")
	return nil
}

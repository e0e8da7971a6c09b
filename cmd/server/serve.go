package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"oticas/internal/app"
	"oticas/internal/infrastructure/migrations"
	"oticas/internal/server"
)

var serveMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "apply pending migrations before serving")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, zapLogger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			zapLogger.Error("closing resources", zap.Error(err))
		}
	}()

	if serveMigrate {
		runner, err := migrations.NewRunner(a.DB.DB.DB, cfg.Database.Driver, zapLogger)
		if err != nil {
			return err
		}
		if err := runner.Up(ctx); err != nil {
			return err
		}
	}

	srv := server.New(cfg.Server, a.Handler, zapLogger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		zapLogger.Info("received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	zapLogger.Info("server stopped gracefully")
	return nil
}

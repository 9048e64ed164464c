package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"workforce/internal/api"
	"workforce/internal/api/handler/v1handler"
	"workforce/internal/config"
	"workforce/internal/engine"
	"workforce/internal/worker"
	"workforce/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"riverqueue.com/riverui"
)

func setupServer(ctx context.Context, deps api.Deps, cfg *config.Config) func(ctx context.Context) {
	server, err := api.NewServer(deps, api.NewOptions(cfg))
	if err != nil {
		logger.Fatal(ctx, "could not create webserver", zap.Error(err))
	}

	go func() {
		logger.Info(ctx, "starting webserver...")
		if err := server.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Error(ctx, "could not start webserver", zap.Error(err))
			}
		}
	}()

	return func(ctx context.Context) {
		logger.Info(ctx, "stopping webserver...")
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(ctx, "could not stop webserver", zap.Error(err))
		}
	}
}

func serveCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Starts API server and background workers",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, _ := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

			strg, closeStrg := getPostgres(ctx, cfg)
			defer closeStrg()

			eng := engine.New(strg, engine.NewOptions(cfg))

			riverClient, err := worker.Start(ctx, strg.Pool, eng)
			if err != nil {
				logger.Fatal(ctx, "could not start background workers", zap.Error(err))
			}

			jobsUI, err := riverui.NewServer(&riverui.ServerOpts{
				Client: riverClient,
				DB:     strg.Pool,
				Logger: slog.New(zapslog.NewHandler(logger.Get(ctx).Core())),
				Prefix: "/riverui",
			})
			if err != nil {
				logger.Fatal(ctx, "could not create job queue UI", zap.Error(err))
			}
			if err := jobsUI.Start(ctx); err != nil {
				logger.Fatal(ctx, "could not start job queue UI", zap.Error(err))
			}

			stopWebserver := setupServer(ctx, api.Deps{
				V1:     v1handler.Deps{Engine: eng},
				JobsUI: jobsUI,
			}, cfg)

			// wait for interrupt
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GracefulShutdownTimeout)
			defer cancel()

			logger.Info(shutdownCtx, "stopping background workers...")
			if err := riverClient.Stop(shutdownCtx); err != nil {
				logger.Error(shutdownCtx, "could not stop background workers", zap.Error(err))
			}

			stopWebserver(shutdownCtx)
		},
	}

	return cmd
}

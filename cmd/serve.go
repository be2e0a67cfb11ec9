package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"leadscout/internal/api"
	"leadscout/internal/api/handler/v1handler"
	"leadscout/internal/billing"
	"leadscout/internal/config"
	"leadscout/internal/discovery"
	"leadscout/internal/quota"
	"leadscout/internal/worker"
	"leadscout/pkg/bizsearch/searchapi"
	"leadscout/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func setupServer(ctx context.Context, cfg *config.Config, deps api.Deps) func(ctx context.Context) {
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
		Short: "Starts API server and background discovery workers",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, _ := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

			strg, closeStrg := getPostgres(ctx, cfg)
			defer closeStrg()

			guard := quota.New(quota.NewOptions(cfg))
			discoverer := discovery.New(strg, guard, discovery.NewOptions(cfg))
			reconciler := billing.New(strg, guard, billing.NewOptions(cfg))
			searcher := searchapi.New(&http.Client{Timeout: cfg.BizSearch.RequestTimeout},
				cfg.BizSearch.BaseURL,
				cfg.BizSearch.Token)

			riverClient, err := worker.Start(ctx, strg.Pool,
				worker.NewDiscoveryRunWorker(searcher, strg, guard, worker.NewOptions(cfg)))
			if err != nil {
				logger.Fatal(ctx, "could not start workers", zap.Error(err))
			}

			stopWebserver := setupServer(ctx, cfg, api.Deps{
				Deps: v1handler.Deps{
					Discoverer: discoverer,
					Guard:      guard,
					Reconciler: reconciler,
					Storage:    strg,
				},
			})

			// wait for interrupt
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GracefulShutdownTimeout)
			defer cancel()

			logger.Info(ctx, "stopping workers...")
			if err := riverClient.Stop(shutdownCtx); err != nil {
				logger.Error(ctx, "could not stop workers", zap.Error(err))
			}

			stopWebserver(shutdownCtx)
		},
	}

	return cmd
}

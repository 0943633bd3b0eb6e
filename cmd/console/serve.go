package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/user/crawler-console/internal/adapter/jsonschema"
	"github.com/user/crawler-console/internal/delivery/http/handler"
	"github.com/user/crawler-console/internal/delivery/http/router"
	"github.com/user/crawler-console/internal/delivery/page"
	"github.com/user/crawler-console/internal/repository"
	"github.com/user/crawler-console/internal/usecase"
	"github.com/user/crawler-console/pkg/metrics"
)

func newSequencer(loader repository.AssetLoader) *usecase.AssetSequencer {
	return usecase.NewAssetSequencer(loader, cfg.AssetIdleWindow(), log, m)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the console server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// Collectors go to the default registry so /metrics also carries Go runtime stats.
		m = metrics.New(prometheus.DefaultRegisterer)
		client = newClient()

		table := page.New()
		list, rc, err := newListView(ctx, table, usecase.ListViewOptions{EditorURL: "/console/editor"})
		if err != nil {
			return err
		}

		assets, err := resolveAssets(ctx)
		if err != nil {
			return err
		}
		loader, bundle, err := newAssetLoader()
		if err != nil {
			return err
		}

		var ready atomic.Bool
		newSequencer(loader).Start(ctx, assets, func(err error) {
			if err != nil {
				log.Error("console assets failed to load, list pages stay unavailable", zap.Error(err))
				return
			}
			log.Info("console assets loaded", zap.Int("count", len(assets)))
			ready.Store(true)
			if err := list.Initialize(ctx, 0); err != nil {
				log.Error("initial crawler list fetch failed", zap.Error(err))
			}
		})

		checks := map[string]handler.Pinger{}
		if rc != nil {
			checks["redis"] = rc
		}
		h := handler.NewHandler(handler.Deps{
			List:       list,
			Table:      table,
			API:        client,
			Docs:       client,
			Compiler:   jsonschema.Compiler{},
			EditorOpts: editorOptions(),
			Bundle:     bundle,
			Checks:     checks,
			Ready:      ready.Load,
			Logger:     log,
			Metrics:    m,
		})

		server := &http.Server{
			Addr:         ":" + cfg.ServerPort,
			Handler:      router.New(h, m, prometheus.DefaultGatherer, log),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 70 * time.Second,
			IdleTimeout:  120 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			log.Info("server started", zap.String("port", cfg.ServerPort))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		log.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		log.Info("server exiting")
		return nil
	},
}

func init() {
	serveCmd.Flags().String("port", "", "listen port (default $SERVER_PORT)")
	serveCmd.Flags().String("assets", "", "comma separated script URLs, in load order (default $ASSET_URLS)")
}

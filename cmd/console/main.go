package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/user/crawler-console/internal/adapter/httpapi"
	"github.com/user/crawler-console/internal/adapter/memory"
	redisadapter "github.com/user/crawler-console/internal/adapter/redis"
	"github.com/user/crawler-console/internal/delivery/cli"
	"github.com/user/crawler-console/internal/delivery/page"
	"github.com/user/crawler-console/internal/repository"
	"github.com/user/crawler-console/internal/usecase"
	"github.com/user/crawler-console/pkg/config"
	"github.com/user/crawler-console/pkg/logger"
	"github.com/user/crawler-console/pkg/metrics"
)

// errReported is returned by commands that already told the operator what failed.
var errReported = errors.New("reported")

var (
	jsonOutput bool

	cfg     *config.Config
	log     *zap.Logger
	m       *metrics.Metrics
	client  *httpapi.Client
	out     *cli.Terminal
	cleanup []func()
)

var rootCmd = &cobra.Command{
	Use:           "console <command>",
	Short:         "Manage crawler configurations on a crawler API",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cmd.Flags())
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		log, err = logger.New(cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("creating logger: %w", err)
		}
		m = metrics.NewNop()
		client = newClient()
		out = &cli.Terminal{Out: os.Stdout, Err: os.Stderr, JSON: jsonOutput}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		for i := len(cleanup) - 1; i >= 0; i-- {
			cleanup[i]()
		}
		if log != nil {
			_ = log.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().String("api", "", "crawler API base URL (default $API_BASE_URL)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (default $LOG_LEVEL)")
	rootCmd.PersistentFlags().String("redis", "", "Redis address for the shared row cache (default $REDIS_ADDR)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(expandCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(assetsCmd)
	rootCmd.AddCommand(serveCmd)
}

// rowCache picks the Redis cache when an address is configured, else process memory.
func rowCache(ctx context.Context) (repository.RowCache, *redisadapter.RowCacheImpl, error) {
	if cfg.RedisAddr == "" {
		return memory.NewRowCache(), nil, nil
	}
	rdb := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
	cleanup = append(cleanup, func() { _ = rdb.Close() })

	cache := redisadapter.NewRowCache(rdb, cfg.CacheTTL())
	if err := cache.Ping(ctx); err != nil {
		return nil, nil, fmt.Errorf("connecting to redis at %s: %w", cfg.RedisAddr, err)
	}
	log.Info("redis row cache enabled", zap.String("addr", cfg.RedisAddr))
	return cache, cache, nil
}

// newListView builds a list view drawing into table.
func newListView(ctx context.Context, table *page.Page, opts usecase.ListViewOptions) (*usecase.ListView, *redisadapter.RowCacheImpl, error) {
	cache, rc, err := rowCache(ctx)
	if err != nil {
		return nil, nil, err
	}
	opts.LicensePath = cfg.LicensePath
	if opts.RelayoutDelay == 0 {
		opts.RelayoutDelay = cfg.RelayoutDelay()
	}
	return usecase.NewListView(client, client, cache, table, out, out, opts, log), rc, nil
}

func newClient() *httpapi.Client {
	return httpapi.NewClient(cfg.APIBaseURL, cfg.ListPath, m)
}

func editorOptions() usecase.FormEditorOptions {
	return usecase.FormEditorOptions{SchemaPath: cfg.SchemaPath, DefaultPath: cfg.DefaultPath}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

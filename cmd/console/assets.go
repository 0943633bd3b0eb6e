package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/user/crawler-console/internal/adapter/assetpage"
	"github.com/user/crawler-console/internal/adapter/chromedp_loader"
	"github.com/user/crawler-console/internal/adapter/httploader"
	"github.com/user/crawler-console/internal/delivery/http/handler"
	"github.com/user/crawler-console/internal/entity"
	"github.com/user/crawler-console/internal/repository"
)

var assetsCmd = &cobra.Command{
	Use:   "assets",
	Short: "Load the console's script dependencies in order",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		assets, err := resolveAssets(ctx)
		if err != nil {
			return err
		}
		loader, _, err := newAssetLoader()
		if err != nil {
			return err
		}

		seq := newSequencer(loader)
		if err := seq.Run(ctx, assets); err != nil {
			return err
		}
		if jsonOutput {
			return out.PrintJSON(map[string]any{"loaded": assets})
		}
		for i, u := range assets {
			fmt.Fprintf(out.Out, "%d  %s\n", i, u)
		}
		fmt.Fprintf(out.Out, "\n%d scripts loaded\n", len(assets))
		return nil
	},
}

// resolveAssets returns the configured asset list, or the scripts of the asset page
// when no list is configured.
func resolveAssets(ctx context.Context) (entity.AssetDescriptor, error) {
	if assets := cfg.Assets(); len(assets) > 0 {
		return assets, nil
	}
	if cfg.AssetPageURL == "" {
		return nil, nil
	}
	assets, err := assetpage.Discover(ctx, http.DefaultClient, cfg.AssetPageURL)
	if err != nil {
		return nil, fmt.Errorf("discovering assets: %w", err)
	}
	log.Info("assets discovered", zap.String("page", cfg.AssetPageURL), zap.Int("count", len(assets)))
	return assets, nil
}

// newAssetLoader builds the configured loader. The bundle is nil for loaders that
// do not keep script bodies.
func newAssetLoader() (repository.AssetLoader, handler.BundleWriter, error) {
	switch strings.ToLower(cfg.AssetLoader) {
	case "chrome":
		l, err := chromedp_loader.NewChromedpLoader(cfg.AssetPageURL, log)
		if err != nil {
			return nil, nil, err
		}
		cleanup = append(cleanup, l.Close)
		return l, nil, nil
	case "http", "":
		base := cfg.ConsoleBaseURL
		if base == "" {
			base = cfg.AssetPageURL
		}
		if base == "" {
			base = cfg.APIBaseURL
		}
		l, err := httploader.NewHTTPLoader(base)
		if err != nil {
			return nil, nil, err
		}
		return l, l, nil
	default:
		return nil, nil, errors.New("ASSET_LOADER must be http or chrome, got " + cfg.AssetLoader)
	}
}

func init() {
	assetsCmd.Flags().String("assets", "", "comma separated script URLs, in load order (default $ASSET_URLS)")
}

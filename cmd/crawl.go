package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alkoteka-crawler/internal/config"
	"alkoteka-crawler/internal/crawl"
	"alkoteka-crawler/internal/fetch"
	"alkoteka-crawler/internal/logging"
	"alkoteka-crawler/internal/metrics"
	"alkoteka-crawler/internal/proxy"
	"alkoteka-crawler/internal/sink"
)

// newCrawlCmd creates and configures the 'crawl' subcommand.
func newCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Starts a full catalog crawl",
		Long: `Resolves the configured city against the catalog API, then paginates
every configured category and writes each normalized product record to the
configured sink. Interruption via SIGINT/SIGTERM stops the crawl after
in-flight requests settle.`,

		RunE: runCrawlCommand,
	}
	return cmd
}

func runCrawlCommand(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engine, out, err := buildEngine(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if cerr := out.Close(closeCtx); cerr != nil {
			logger.Warn("Failed to close sink", zap.Error(cerr))
		}
	}()

	if cfg.Metrics.Enabled {
		srv := metrics.NewServer(cfg.Metrics.Addr, logger)
		srv.Start()
		defer func() {
			downCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if serr := srv.Shutdown(downCtx); serr != nil {
				logger.Warn("Failed to shut down metrics server", zap.Error(serr))
			}
		}()
	}

	if err := engine.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("run crawl: %w", err)
	}

	logger.Info("Crawl command finished.")
	return nil
}

func buildEngine(ctx context.Context, cfg config.Config, logger *zap.Logger) (*crawl.Engine, sink.Sink, error) {
	rotator := proxy.New(proxy.Config{
		Enabled:  cfg.Proxy.Enabled,
		Mode:     cfg.Proxy.Mode,
		Endpoint: cfg.Proxy.Endpoint,
		Auth:     cfg.Proxy.Auth,
		ListFile: cfg.Proxy.ListFile,
		List:     cfg.Proxy.List,
	}, logger)

	client := fetch.New(fetch.Config{
		UserAgents: cfg.Crawl.UserAgents,
		Timeout:    cfg.Timeout(),
		Delay:      cfg.Delay(),
	}, rotator, logger)

	out, err := buildSink(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("init sink: %w", err)
	}

	engine := crawl.New(crawl.Config{
		BaseURL:          cfg.API.BaseURL,
		ProductsEndpoint: cfg.API.ProductsEndpoint,
		CityEndpoint:     cfg.API.CityEndpoint,
		PerPage:          cfg.API.PerPage,
		TargetCity:       cfg.City.TargetName,
		SeedCityUUID:     cfg.City.SeedUUID,
		ParseDetails:     cfg.Crawl.ParseDetails,
		Concurrency:      cfg.Crawl.Concurrency,
		CategoriesFile:   cfg.Crawl.CategoriesFile,
		Categories:       cfg.Crawl.Categories,
	}, client, out, logger)

	return engine, out, nil
}

func buildSink(ctx context.Context, cfg config.Config) (sink.Sink, error) {
	switch cfg.Sink.Kind {
	case "postgres":
		return sink.NewPostgres(ctx, sink.PostgresConfig{
			DSN:   cfg.Sink.DSN,
			Table: cfg.Sink.Table,
		})
	default:
		return sink.NewJSONL(cfg.Sink.Path)
	}
}

package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leofalp/substack-tools/core/htmltext"
	"github.com/leofalp/substack-tools/internal/config"
	"github.com/leofalp/substack-tools/internal/logging"
	"github.com/leofalp/substack-tools/providers/substack"
	"github.com/leofalp/substack-tools/providers/tool"
	substacktool "github.com/leofalp/substack-tools/providers/tool/substack"
)

// app holds what every subcommand needs once flags are parsed.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	catalog *tool.Catalog
}

type rootFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	var (
		flags rootFlags
		a     app
	)

	root := &cobra.Command{
		Use:   "substack-tools",
		Short: "Query public Substack newsletters",
		Long: `substack-tools lists posts, reads post content, batches listings across
publications and looks up recommendations and categories of public Substack
newsletters. Tools can be served over HTTP or run once from the shell.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			built, err := buildApp(flags)
			if err != nil {
				return err
			}
			a = *built
			return nil
		},
	}

	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "Path to a YAML config file (default: $CONFIG_PATH)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL)")
	root.PersistentFlags().StringVar(&flags.logFormat, "log-format", "", "Log format: text, json, compact (overrides LOG_FORMAT)")

	root.AddCommand(
		newServeCmd(&a),
		newCallCmd(&a),
		newToolsCmd(&a),
	)
	return root
}

func buildApp(flags rootFlags) (*app, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	if flags.logFormat != "" {
		cfg.Log.Format = flags.logFormat
	}
	logger := logging.Setup(cfg.Log.Level, cfg.Log.Format)

	converter, err := htmltext.New(cfg.Substack.ContentConverter)
	if err != nil {
		return nil, fmt.Errorf("invalid content converter: %w", err)
	}

	retries := cfg.Substack.MaxRetries
	if retries == 0 {
		retries = -1
	}
	client := substack.NewClient(
		substack.WithBaseDomain(cfg.Substack.BaseDomain),
		substack.WithTimeout(cfg.Substack.HTTPTimeout),
		substack.WithUserAgent(cfg.Substack.UserAgent),
		substack.WithRateLimit(cfg.Substack.RequestsPerSecond, cfg.Substack.Burst),
		substack.WithRetry(substack.RetryConfig{MaxRetries: retries}),
	)

	catalog := tool.NewCatalogWithTools(substacktool.NewTools(client,
		substacktool.WithBaseDomain(cfg.Substack.BaseDomain),
		substacktool.WithBatchDelay(cfg.Substack.BatchDelay),
		substacktool.WithContentLimit(cfg.Substack.ContentLimit),
		substacktool.WithConverter(converter),
	)...)

	logger.Debug("configuration loaded",
		slog.String("base_domain", cfg.Substack.BaseDomain),
		slog.String("converter", converter.Name()),
		slog.Duration("batch_delay", cfg.Substack.BatchDelay),
		slog.Int("tools", catalog.Size()),
	)
	return &app{cfg: cfg, logger: logger, catalog: catalog}, nil
}

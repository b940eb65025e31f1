package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/audit-sheets/internal/config"
	"github.com/jonathan/audit-sheets/internal/sheets"
)

// loadConfig layers the config file, the environment and the persistent flags.
// Subcommands apply their own flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.FromEnv()
	if configPath != "" {
		fileCfg, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = cfg.MergeWithDefaults(*fileCfg)
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = verbose
	}
	return &cfg, nil
}

// newLogger builds the process logger. Logs go to stderr so stdout stays parseable.
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

func hasCredentials(cfg *config.Config) bool {
	return cfg.SheetID != "" && cfg.ServiceAccountEmail != "" && cfg.PrivateKey != ""
}

func credentials(cfg *config.Config) sheets.Credentials {
	return sheets.Credentials{
		SpreadsheetID:       cfg.SheetID,
		ServiceAccountEmail: cfg.ServiceAccountEmail,
		PrivateKey:          cfg.PrivateKey,
	}
}

// openStore returns the store a run writes to. A dry run writes to an in-memory copy of the
// spreadsheet's headers, or to an empty store when no credentials are configured.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (sheets.Store, error) {
	if !cfg.DryRun {
		store, err := sheets.NewGoogleStore(ctx, credentials(cfg))
		if err != nil {
			return nil, err
		}
		title, err := store.Title(ctx)
		if err != nil {
			return nil, err
		}
		logger.Info("Opened spreadsheet", zap.String("sheet_id", cfg.SheetID), zap.String("title", title))
		return store, nil
	}

	mem := sheets.NewMemoryStore()
	if !hasCredentials(cfg) {
		logger.Info("Dry run against an empty in-memory spreadsheet")
		return mem, nil
	}

	remote, err := sheets.NewGoogleStore(ctx, credentials(cfg))
	if err != nil {
		return nil, err
	}
	if err := mem.Seed(ctx, remote); err != nil {
		return nil, fmt.Errorf("failed to copy spreadsheet headers: %w", err)
	}
	logger.Info("Dry run against an in-memory copy of the spreadsheet", zap.String("sheet_id", cfg.SheetID))
	return mem, nil
}

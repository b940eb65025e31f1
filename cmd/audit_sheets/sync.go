package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/audit-sheets/internal/config"
	"github.com/jonathan/audit-sheets/internal/db"
	"github.com/jonathan/audit-sheets/internal/observability"
	"github.com/jonathan/audit-sheets/internal/pipeline"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Append every report in the manifest to its hostname's worksheet",
	Long: "Reads the Lighthouse CI manifest (MANIFEST or --manifest-file), flattens each report into a row " +
		"and appends it to the worksheet named after the report's hostname. Entries that fail are reported " +
		"and skipped; the command exits non-zero when any entry failed.",
	RunE: runSync,
}

var (
	syncManifestFile string
	syncSheetID      string
	syncDatabaseURL  string
	syncDryRun       bool
)

func init() {
	syncCmd.Flags().StringVarP(&syncManifestFile, "manifest-file", "m", "", "Path to manifest.json (overrides MANIFEST)")
	syncCmd.Flags().StringVar(&syncSheetID, "sheet-id", "", "Spreadsheet ID (overrides GOOGLE_SHEET_ID)")
	syncCmd.Flags().StringVar(&syncDatabaseURL, "db-url", "", "PostgreSQL URL for the run ledger (overrides DATABASE_URL)")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Synchronize against an in-memory copy of the spreadsheet")

	rootCmd.AddCommand(syncCmd)
}

// loadSyncConfig applies the sync flags that were set explicitly
func loadSyncConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("manifest-file") {
		cfg.ManifestFile = syncManifestFile
		cfg.Manifest = ""
	}
	if flags.Changed("sheet-id") {
		cfg.SheetID = syncSheetID
	}
	if flags.Changed("db-url") {
		cfg.DatabaseURL = syncDatabaseURL
	}
	if flags.Changed("dry-run") {
		cfg.DryRun = syncDryRun
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runSync(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadSyncConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	logger.Debug("Configuration loaded", zap.Any("config", cfg.Redacted()))

	entries, err := cfg.Entries()
	if err != nil {
		return fmt.Errorf("failed to read manifest: %w", err)
	}

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}

	opts := pipeline.RunOptions{
		Entries: entries,
		Store:   store,
		SheetID: cfg.SheetID,
		Logger:  logger,
	}

	if cfg.DatabaseURL != "" && !cfg.DryRun {
		ledger, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Warn("Run ledger disabled", zap.Error(err))
		} else {
			defer ledger.Close()
			opts.Ledger = ledger
		}
	}

	summary, runErr := pipeline.Run(ctx, opts)

	printer := observability.NewPrinter(cmd.OutOrStdout())
	printer.PrintRunSummary(summary)
	printer.PrintFailures(summary)

	if runErr != nil {
		return runErr
	}
	if failed := summary.Failed(); failed > 0 {
		return fmt.Errorf("%d of %d entries failed", failed, len(summary.Outcomes))
	}
	return nil
}

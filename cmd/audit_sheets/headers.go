package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/audit-sheets/internal/observability"
	"github.com/jonathan/audit-sheets/internal/sheets"
)

var headersCmd = &cobra.Command{
	Use:   "headers <hostname>",
	Short: "Print the header of a hostname's worksheet",
	Args:  cobra.ExactArgs(1),
	RunE:  runHeaders,
}

var headersSheetID string

func init() {
	headersCmd.Flags().StringVar(&headersSheetID, "sheet-id", "", "Spreadsheet ID (overrides GOOGLE_SHEET_ID)")

	rootCmd.AddCommand(headersCmd)
}

func runHeaders(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	hostname := strings.ToLower(strings.TrimSpace(args[0]))

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("sheet-id") {
		cfg.SheetID = headersSheetID
	}
	if !hasCredentials(cfg) {
		return fmt.Errorf("config error: 'sheet_id', 'service_account_email' and 'private_key' are required")
	}

	store, err := sheets.NewGoogleStore(ctx, credentials(cfg))
	if err != nil {
		return err
	}

	dir := sheets.NewDirectory()
	if err := dir.Refresh(ctx, store); err != nil {
		return err
	}
	table, ok := dir.Lookup(hostname)
	if !ok {
		return fmt.Errorf("no worksheet named %q (have: %s)", hostname, strings.Join(dir.Names(), ", "))
	}

	header, err := store.ReadHeader(ctx, table)
	if err != nil {
		return err
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintHeader(hostname, header)
	return nil
}

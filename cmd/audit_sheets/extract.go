package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/audit-sheets/internal/manifest"
	"github.com/jonathan/audit-sheets/internal/observability"
	"github.com/jonathan/audit-sheets/internal/report"
)

var extractCmd = &cobra.Command{
	Use:   "extract <report.json|report.html>",
	Short: "Print the row a report would be uploaded as",
	Long:  "Flattens one Lighthouse report into the row sync would append, without contacting the spreadsheet.",
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

var extractTable bool

func init() {
	extractCmd.Flags().BoolVar(&extractTable, "table", false, "Print a field listing instead of JSON")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	path := args[0]
	entry := manifest.Entry{JSONPath: path}
	if ext := strings.ToLower(filepath.Ext(path)); ext == ".html" || ext == ".htm" {
		entry = manifest.Entry{HTMLPath: path}
	}

	r, err := report.Load(entry)
	if err != nil {
		return err
	}
	host, err := report.Hostname(r)
	if err != nil {
		return err
	}
	row, err := report.Extract(r, entry)
	if err != nil {
		return err
	}

	if extractTable {
		observability.NewPrinter(cmd.OutOrStdout()).PrintRow(fmt.Sprintf("ROW for %s (%d fields)", host, row.Len()), row)
		return nil
	}

	data, err := json.MarshalIndent(row, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal row: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}

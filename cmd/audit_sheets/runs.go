package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/audit-sheets/internal/db"
)

var runsCmd = &cobra.Command{
	Use:   "runs <run-id>",
	Short: "Show a recorded sync run from the run ledger",
	Args:  cobra.ExactArgs(1),
	RunE:  runRuns,
}

var runsDatabaseURL string

func init() {
	runsCmd.Flags().StringVar(&runsDatabaseURL, "db-url", "", "PostgreSQL URL for the run ledger (overrides DATABASE_URL)")

	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	runID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid run id %q: %w", args[0], err)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = runsDatabaseURL
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("config error: 'database_url' is required")
	}

	ledger, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer ledger.Close()

	run, err := ledger.GetRun(ctx, runID)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("run %s not found", runID)
	}
	outcomes, err := ledger.ListOutcomes(ctx, runID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Run %s on %s: %s, %d entries, started %s\n",
		run.ID, run.SheetID, run.Status, run.Entries, run.StartedAt.Format("2006-01-02 15:04:05"))

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "#\tSTATUS\tHOSTNAME\tCOLUMNS\tERROR")
	for _, o := range outcomes {
		errText := ""
		if o.ErrorKind != "" {
			errText = fmt.Sprintf("%s/%s: %s", o.ErrorKind, o.FailedStep, o.ErrorMessage)
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t+%d\t%s\n", o.EntryIndex, o.Status, o.Hostname, o.ColumnsAdded, errText)
	}
	return w.Flush()
}

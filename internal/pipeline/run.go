// Package pipeline drives one synchronization run: every manifest entry is loaded, flattened
// and synchronized in order, and a failure only ever costs the entry it happened in.
package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/audit-sheets/internal/db"
	"github.com/jonathan/audit-sheets/internal/manifest"
	"github.com/jonathan/audit-sheets/internal/report"
	"github.com/jonathan/audit-sheets/internal/sheets"
)

// Ledger persists run and entry outcomes. *db.DB implements it.
type Ledger interface {
	StartRun(ctx context.Context, runID uuid.UUID, sheetID string, entries int) error
	RecordOutcome(ctx context.Context, runID uuid.UUID, o db.EntryOutcome) error
	CompleteRun(ctx context.Context, runID uuid.UUID, status string) error
}

// OutcomeCallback is called after each entry is processed
type OutcomeCallback func(o Outcome)

// RunOptions holds configuration for a run
type RunOptions struct {
	Entries   []manifest.Entry
	Store     sheets.Store
	SheetID   string
	RunID     uuid.UUID       // generated when zero
	Ledger    Ledger          // optional
	Logger    *zap.Logger     // optional
	OnOutcome OutcomeCallback // optional
}

// Run processes the entries strictly one after another. Input errors and store errors are
// recorded on the entry's Outcome and processing moves on; the returned error is reserved
// for problems that stop the whole run (missing store, cancelled context).
func Run(ctx context.Context, opts RunOptions) (*Summary, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("pipeline: store is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	runID := opts.RunID
	if runID == uuid.Nil {
		runID = uuid.New()
	}
	logger = logger.With(zap.String("run_id", runID.String()))

	summary := &Summary{RunID: runID}
	syncer := sheets.NewSynchronizer(opts.Store, logger)
	dir := sheets.NewDirectory()

	if opts.Ledger != nil {
		if err := opts.Ledger.StartRun(ctx, runID, opts.SheetID, len(opts.Entries)); err != nil {
			logger.Warn("Run ledger unavailable", zap.Error(err))
			opts.Ledger = nil
		}
	}

	logger.Info("Starting run", zap.Int("entries", len(opts.Entries)))

	for i, entry := range opts.Entries {
		if err := ctx.Err(); err != nil {
			finish(ctx, opts.Ledger, runID, summary, logger)
			return summary, fmt.Errorf("run cancelled before entry %d: %w", i, err)
		}

		o := processEntry(ctx, syncer, dir, i, entry, logger)
		summary.Outcomes = append(summary.Outcomes, o)

		if opts.Ledger != nil {
			if err := opts.Ledger.RecordOutcome(ctx, runID, o.Record()); err != nil {
				logger.Warn("Failed to record outcome", zap.Int("entry", i), zap.Error(err))
			}
		}
		if opts.OnOutcome != nil {
			opts.OnOutcome(o)
		}
	}

	finish(ctx, opts.Ledger, runID, summary, logger)
	logger.Info("Run complete",
		zap.Int("succeeded", summary.Succeeded()),
		zap.Int("failed", summary.Failed()),
	)
	return summary, nil
}

// processEntry runs load, extract and sync for one entry and classifies any failure
func processEntry(ctx context.Context, syncer *sheets.Synchronizer, dir *sheets.Directory, index int, entry manifest.Entry, logger *zap.Logger) Outcome {
	o := Outcome{Index: index, Entry: entry}
	log := logger.With(zap.Int("entry", index), zap.String("report", entry.Name()))

	fail := func(kind ErrorKind, step string, err error) Outcome {
		o.Status = StatusFailed
		o.Kind = kind
		o.Step = step
		o.Err = err
		log.Error("Entry failed",
			zap.String("hostname", o.Hostname),
			zap.String("kind", string(kind)),
			zap.String("step", step),
			zap.Error(err),
		)
		return o
	}

	r, err := report.Load(entry)
	if err != nil {
		return fail(KindInput, StepLoad, err)
	}
	log.Debug("Report loaded", zap.String("requested_url", r.RequestedURL))

	host, err := report.Hostname(r)
	if err != nil {
		return fail(KindInput, StepLoad, err)
	}
	o.Hostname = host

	row, err := report.Extract(r, entry)
	if err != nil {
		return fail(KindInput, StepExtract, err)
	}

	// A started synchronization runs to completion; cancellation only stops the next entry
	res, err := syncer.Sync(context.WithoutCancel(ctx), dir, host, row)
	if err != nil {
		kind := KindRemote
		if sheets.IsConsistencyError(err) {
			kind = KindConsistency
		}
		return fail(kind, string(sheets.FailedStep(err)), err)
	}

	o.Status = StatusSucceeded
	o.Result = res
	log.Info("Entry synchronized",
		zap.String("hostname", host),
		zap.Int("fields", row.Len()),
		zap.Int("columns_added", len(res.Added)),
		zap.Bool("table_created", res.Created),
	)
	return o
}

func finish(ctx context.Context, ledger Ledger, runID uuid.UUID, summary *Summary, logger *zap.Logger) {
	if ledger == nil {
		return
	}
	status := db.RunStatusCompleted
	if summary.Failed() > 0 {
		status = db.RunStatusFailed
	}
	// The run record is closed even when the run itself was cancelled
	if err := ledger.CompleteRun(context.WithoutCancel(ctx), runID, status); err != nil {
		logger.Warn("Failed to complete run in ledger", zap.Error(err))
	}
}

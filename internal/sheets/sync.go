package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jonathan/audit-sheets/internal/types"
)

// Result describes what one synchronization did to its table
type Result struct {
	Table    Table
	Created  bool
	Added    []string
	Resized  bool
	Capacity int
	Header   []string
}

// Synchronizer appends rows to per-hostname tables, growing headers first.
// It holds no table state between calls; the Directory passed to Sync is the only cache.
type Synchronizer struct {
	store  Store
	logger *zap.Logger
}

// NewSynchronizer creates a Synchronizer over store. A nil logger disables logging.
func NewSynchronizer(store Store, logger *zap.Logger) *Synchronizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synchronizer{store: store, logger: logger}
}

// Sync runs Resolve, Diff, Grow and Append for one row against the table named hostname.
// Nothing is retried. Any failure invalidates dir.
func (s *Synchronizer) Sync(ctx context.Context, dir *Directory, hostname string, row *types.Row) (res *Result, err error) {
	if row == nil || row.Len() == 0 {
		return nil, fmt.Errorf("sync %s: row is empty", hostname)
	}

	defer func() {
		if err != nil {
			dir.Invalidate()
		}
	}()

	log := s.logger.With(zap.String("hostname", hostname))

	table, created, err := s.resolve(ctx, dir, hostname)
	if err != nil {
		return nil, err
	}
	res = &Result{Table: table, Created: created, Capacity: table.ColumnCount}
	log.Debug("Resolved table", zap.Int64("sheet_id", table.ID), zap.Bool("created", created), zap.Int("capacity", table.ColumnCount))

	header, err := s.store.ReadHeader(ctx, table)
	if err != nil {
		return nil, &SyncError{Hostname: hostname, Step: StepDiff, Op: OpReadHeader, Cause: err}
	}

	missing := Missing(header, row.Fields())
	log.Debug("Header diff", zap.Int("current", len(header)), zap.Strings("missing", missing))

	if len(missing) > 0 {
		header, err = s.grow(ctx, res, hostname, header, missing)
		if err != nil {
			return nil, err
		}
		log.Info("Header grown", zap.Int("added", len(missing)), zap.Int("columns", len(header)), zap.Bool("resized", res.Resized))
	}
	res.Header = header

	if err := s.store.AppendRow(ctx, res.Table, Align(header, row)); err != nil {
		return nil, &SyncError{Hostname: hostname, Step: StepAppend, Op: OpAppendRow, Cause: err}
	}
	log.Debug("Row appended", zap.Int("fields", row.Len()))

	return res, nil
}

// resolve finds hostname's table, creating it with an empty header when absent
func (s *Synchronizer) resolve(ctx context.Context, dir *Directory, hostname string) (Table, bool, error) {
	if err := dir.Refresh(ctx, s.store); err != nil {
		return Table{}, false, &SyncError{Hostname: hostname, Step: StepResolve, Op: OpListTables, Cause: err}
	}
	if t, ok := dir.Lookup(hostname); ok {
		return t, false, nil
	}

	s.logger.Info("Creating table", zap.String("hostname", hostname))
	if _, err := s.store.CreateTable(ctx, hostname, nil); err != nil {
		return Table{}, false, &SyncError{Hostname: hostname, Step: StepResolve, Op: OpCreateTable, Cause: err}
	}

	if err := dir.Refresh(ctx, s.store); err != nil {
		return Table{}, false, &SyncError{Hostname: hostname, Step: StepResolve, Op: OpListTables, Cause: err}
	}
	t, ok := dir.Lookup(hostname)
	if !ok {
		return Table{}, false, &SyncError{Hostname: hostname, Step: StepResolve, Op: OpListTables, Cause: ErrTableNotFound}
	}
	return t, true, nil
}

// grow widens the grid if needed, writes header+missing and verifies the write
func (s *Synchronizer) grow(ctx context.Context, res *Result, hostname string, header, missing []string) ([]string, error) {
	want := make([]string, 0, len(header)+len(missing))
	want = append(want, header...)
	want = append(want, missing...)

	if capacity := res.Table.ColumnCount; capacity > 0 && len(want) > capacity {
		newCapacity := NextPowerOfTwo(len(want))
		if err := s.store.ResizeColumns(ctx, res.Table, newCapacity); err != nil {
			if !IsRejection(err) {
				return nil, &SyncError{Hostname: hostname, Step: StepGrow, Op: OpResizeColumns, Cause: err}
			}
			return nil, &ConsistencyError{
				Hostname: hostname,
				Step:     StepGrow,
				Message:  fmt.Sprintf("resize from %d to %d columns rejected", capacity, newCapacity),
				Cause:    err,
			}
		}
		res.Table.ColumnCount = newCapacity
		res.Capacity = newCapacity
		res.Resized = true
	}

	if err := s.store.WriteHeader(ctx, res.Table, want); err != nil {
		return nil, &SyncError{Hostname: hostname, Step: StepGrow, Op: OpWriteHeader, Cause: err}
	}

	got, err := s.store.ReadHeader(ctx, res.Table)
	if err != nil {
		return nil, &SyncError{Hostname: hostname, Step: StepGrow, Op: OpReadHeader, Cause: err}
	}
	if !HasPrefix(got, want) {
		return nil, &ConsistencyError{
			Hostname: hostname,
			Step:     StepGrow,
			Message:  "header does not match what was written",
			Expected: want,
			Actual:   got,
		}
	}

	res.Added = missing
	return got, nil
}

// Missing returns the fields not present in header, in field order, without duplicates
func Missing(header, fields []string) []string {
	seen := make(map[string]bool, len(header)+len(fields))
	for _, h := range header {
		seen[h] = true
	}

	var missing []string
	for _, f := range fields {
		if seen[f] {
			continue
		}
		seen[f] = true
		missing = append(missing, f)
	}
	return missing
}

// Align lays row out positionally against header. Header columns the row lacks are empty;
// trailing empty cells are dropped.
func Align(header []string, row *types.Row) []any {
	values := make([]any, len(header))
	last := -1
	for i, col := range header {
		if v, ok := row.Get(col); ok {
			values[i] = v
			last = i
			continue
		}
		values[i] = ""
	}
	return values[:last+1]
}

// NextPowerOfTwo returns the smallest power of two that is >= n (1 for n <= 1)
func NextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// HasPrefix reports whether header starts with prefix
func HasPrefix(header, prefix []string) bool {
	if len(header) < len(prefix) {
		return false
	}
	for i := range prefix {
		if header[i] != prefix[i] {
			return false
		}
	}
	return true
}

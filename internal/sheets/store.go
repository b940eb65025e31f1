// Package sheets keeps per-hostname worksheets in step with the rows appended to them.
//
// A worksheet (Table) has a header row that only ever grows. Synchronizer reconciles the
// header with an incoming row, widening the grid when the store enforces a column capacity,
// and then appends the row.
package sheets

import (
	"context"
)

// Table identifies one worksheet. ColumnCount is the provisioned grid width; 0 means the
// store does not enforce a width.
type Table struct {
	ID          int64
	Name        string
	ColumnCount int
}

// Store is the remote tabular store the synchronizer drives. Every method is one remote
// round-trip and nothing is cached by implementations.
type Store interface {
	// ListTables returns every table in the store
	ListTables(ctx context.Context) ([]Table, error)
	// CreateTable adds a table with the given (possibly empty) header
	CreateTable(ctx context.Context, name string, header []string) (Table, error)
	// ReadHeader returns the table's current header row
	ReadHeader(ctx context.Context, t Table) ([]string, error)
	// WriteHeader replaces the table's header row
	WriteHeader(ctx context.Context, t Table, header []string) error
	// ResizeColumns sets the table's column capacity
	ResizeColumns(ctx context.Context, t Table, columns int) error
	// AppendRow adds a record after the last row; values are positional, aligned with the header
	AppendRow(ctx context.Context, t Table, values []any) error
}

// Operation names, used in errors and by MemoryStore failure injection
const (
	OpListTables    = "list-tables"
	OpCreateTable   = "create-table"
	OpReadHeader    = "read-header"
	OpWriteHeader   = "write-header"
	OpResizeColumns = "resize-columns"
	OpAppendRow     = "append-row"
)

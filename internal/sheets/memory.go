package sheets

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// DefaultColumnCount is the grid width of a freshly added Google Sheets worksheet
const DefaultColumnCount = 26

type memTable struct {
	table  Table
	header []string
	rows   [][]any
}

// MemoryStore is an in-process Store with the same capacity rules as a worksheet:
// header and row writes beyond ColumnCount are rejected and capacity cannot drop below
// the header length. It backs dry runs and tests.
type MemoryStore struct {
	mu     sync.Mutex
	tables map[string]*memTable
	nextID int64
	calls  map[string]int
	fail   map[string]error

	// DefaultColumns is the capacity given to new tables; 0 disables capacity enforcement
	DefaultColumns int
	// AfterWriteHeader, when set, rewrites the stored header after each WriteHeader.
	// Tests use it to stand in for a concurrent writer.
	AfterWriteHeader func(name string, header []string) []string
}

// NewMemoryStore returns an empty store whose new tables get DefaultColumnCount columns
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tables:         map[string]*memTable{},
		calls:          map[string]int{},
		fail:           map[string]error{},
		DefaultColumns: DefaultColumnCount,
	}
}

// FailOn makes every later call of op return err; a nil err clears the failure
func (m *MemoryStore) FailOn(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.fail, op)
		return
	}
	m.fail[op] = err
}

// Calls returns how many times op has been called, including failed calls
func (m *MemoryStore) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

// Header returns a copy of a table's header
func (m *MemoryStore) Header(name string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tables[name]
	if !ok {
		return nil
	}
	return append([]string(nil), t.header...)
}

// Rows returns a copy of a table's records
func (m *MemoryStore) Rows(name string) [][]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tables[name]
	if !ok {
		return nil
	}
	out := make([][]any, len(t.rows))
	for i, r := range t.rows {
		out[i] = append([]any(nil), r...)
	}
	return out
}

// Seed copies the tables and headers of another store. Rows are not copied.
func (m *MemoryStore) Seed(ctx context.Context, src Store) error {
	tables, err := src.ListTables(ctx)
	if err != nil {
		return fmt.Errorf("failed to list source tables: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range tables {
		header, err := src.ReadHeader(ctx, t)
		if err != nil {
			return fmt.Errorf("failed to read header of %s: %w", t.Name, err)
		}
		m.nextID++
		copied := t
		copied.ID = m.nextID
		m.tables[t.Name] = &memTable{table: copied, header: append([]string(nil), header...)}
	}
	return nil
}

// begin records a call and returns the injected failure for op, if any. Callers hold m.mu.
func (m *MemoryStore) begin(op string) error {
	m.calls[op]++
	return m.fail[op]
}

func (m *MemoryStore) lookup(t Table) (*memTable, error) {
	mt, ok := m.tables[t.Name]
	if !ok || mt.table.ID != t.ID {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, t.Name)
	}
	return mt, nil
}

// ListTables implements Store
func (m *MemoryStore) ListTables(_ context.Context) ([]Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(OpListTables); err != nil {
		return nil, err
	}

	out := make([]Table, 0, len(m.tables))
	for _, t := range m.tables {
		out = append(out, t.table)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CreateTable implements Store
func (m *MemoryStore) CreateTable(_ context.Context, name string, header []string) (Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(OpCreateTable); err != nil {
		return Table{}, err
	}
	if _, exists := m.tables[name]; exists {
		return Table{}, fmt.Errorf("a sheet with the name %q already exists", name)
	}

	columns := m.DefaultColumns
	if columns > 0 && len(header) > columns {
		columns = len(header)
	}
	m.nextID++
	t := Table{ID: m.nextID, Name: name, ColumnCount: columns}
	m.tables[name] = &memTable{table: t, header: append([]string(nil), header...)}
	return t, nil
}

// ReadHeader implements Store
func (m *MemoryStore) ReadHeader(_ context.Context, t Table) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(OpReadHeader); err != nil {
		return nil, err
	}
	mt, err := m.lookup(t)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), mt.header...), nil
}

// WriteHeader implements Store
func (m *MemoryStore) WriteHeader(_ context.Context, t Table, header []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(OpWriteHeader); err != nil {
		return err
	}
	mt, err := m.lookup(t)
	if err != nil {
		return err
	}
	if c := mt.table.ColumnCount; c > 0 && len(header) > c {
		return fmt.Errorf("%w: header has %d columns, grid has %d", ErrCapacityExceeded, len(header), c)
	}

	mt.header = append([]string(nil), header...)
	if m.AfterWriteHeader != nil {
		mt.header = m.AfterWriteHeader(t.Name, mt.header)
	}
	return nil
}

// ResizeColumns implements Store
func (m *MemoryStore) ResizeColumns(_ context.Context, t Table, columns int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(OpResizeColumns); err != nil {
		return err
	}
	mt, err := m.lookup(t)
	if err != nil {
		return err
	}
	if columns < len(mt.header) {
		return fmt.Errorf("%w: cannot shrink %s to %d columns: header has %d", ErrResizeRejected, t.Name, columns, len(mt.header))
	}
	mt.table.ColumnCount = columns
	return nil
}

// AppendRow implements Store
func (m *MemoryStore) AppendRow(_ context.Context, t Table, values []any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(OpAppendRow); err != nil {
		return err
	}
	mt, err := m.lookup(t)
	if err != nil {
		return err
	}
	if c := mt.table.ColumnCount; c > 0 && len(values) > c {
		return fmt.Errorf("%w: row has %d cells, grid has %d", ErrCapacityExceeded, len(values), c)
	}
	mt.rows = append(mt.rows, append([]any(nil), values...))
	return nil
}

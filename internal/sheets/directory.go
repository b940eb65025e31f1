package sheets

import (
	"context"
	"sort"
	"time"
)

// Directory is a local snapshot of the store's tables keyed by name.
// It is refreshed at the start of every Resolve and after creating a table, and
// invalidated whenever a synchronization fails, so lookups never rely on a stale view.
type Directory struct {
	tables      map[string]Table
	valid       bool
	refreshedAt time.Time
	now         func() time.Time
}

// NewDirectory returns an empty, invalid snapshot
func NewDirectory() *Directory {
	return &Directory{tables: map[string]Table{}, now: time.Now}
}

// Refresh replaces the snapshot with the store's current table listing.
// On error the snapshot is left invalid.
func (d *Directory) Refresh(ctx context.Context, store Store) error {
	d.Invalidate()

	tables, err := store.ListTables(ctx)
	if err != nil {
		return err
	}

	snapshot := make(map[string]Table, len(tables))
	for _, t := range tables {
		snapshot[t.Name] = t
	}
	d.tables = snapshot
	d.valid = true
	d.refreshedAt = d.now()
	return nil
}

// Lookup returns the table with the given name. It always misses on an invalid snapshot.
func (d *Directory) Lookup(name string) (Table, bool) {
	if !d.valid {
		return Table{}, false
	}
	t, ok := d.tables[name]
	return t, ok
}

// Invalidate drops the snapshot; the next lookup needs a Refresh
func (d *Directory) Invalidate() {
	d.valid = false
	d.tables = map[string]Table{}
}

// Valid reports whether the snapshot reflects a successful listing
func (d *Directory) Valid() bool {
	return d.valid
}

// RefreshedAt returns when the snapshot was last refreshed
func (d *Directory) RefreshedAt() time.Time {
	return d.refreshedAt
}

// Names returns the table names in the snapshot, sorted
func (d *Directory) Names() []string {
	names := make([]string, 0, len(d.tables))
	for name := range d.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

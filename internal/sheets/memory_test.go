package sheets

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_CapacityRules(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.DefaultColumns = 2

	tbl, err := store.CreateTable(ctx, "central.co.th", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.ColumnCount)

	err = store.WriteHeader(ctx, tbl, []string{"a", "b", "c"})
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	err = store.AppendRow(ctx, tbl, []any{1, 2, 3})
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	require.NoError(t, store.WriteHeader(ctx, tbl, []string{"a", "b"}))
	assert.ErrorIs(t, store.ResizeColumns(ctx, tbl, 1), ErrResizeRejected, "cannot shrink below header")
	require.NoError(t, store.ResizeColumns(ctx, tbl, 4))
	require.NoError(t, store.WriteHeader(ctx, tbl, []string{"a", "b", "c"}))
}

func TestMemoryStore_CreateTableWithWideHeader(t *testing.T) {
	store := NewMemoryStore()
	store.DefaultColumns = 2

	tbl, err := store.CreateTable(context.Background(), "x", []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.ColumnCount)
	assert.Equal(t, []string{"a", "b", "c"}, store.Header("x"))
}

func TestMemoryStore_DuplicateTable(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.CreateTable(context.Background(), "x", nil)
	require.NoError(t, err)
	_, err = store.CreateTable(context.Background(), "x", nil)
	assert.Error(t, err)
}

func TestMemoryStore_StaleTableHandle(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.ReadHeader(context.Background(), Table{ID: 99, Name: "ghost"})
	assert.ErrorIs(t, err, ErrTableNotFound)
}

func TestMemoryStore_FailOnCountsCalls(t *testing.T) {
	store := NewMemoryStore()
	boom := errors.New("boom")
	store.FailOn(OpListTables, boom)

	_, err := store.ListTables(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, store.Calls(OpListTables))

	store.FailOn(OpListTables, nil)
	_, err = store.ListTables(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 2, store.Calls(OpListTables))
}

func TestMemoryStore_Seed(t *testing.T) {
	ctx := context.Background()
	src := NewMemoryStore()
	tbl, err := src.CreateTable(ctx, "central.co.th", []string{"requestedUrl", "audit.viewport"})
	require.NoError(t, err)
	require.NoError(t, src.AppendRow(ctx, tbl, []any{"https://central.co.th/", true}))

	dst := NewMemoryStore()
	require.NoError(t, dst.Seed(ctx, src))

	assert.Equal(t, []string{"requestedUrl", "audit.viewport"}, dst.Header("central.co.th"))
	assert.Empty(t, dst.Rows("central.co.th"))

	src.FailOn(OpReadHeader, errors.New("denied"))
	assert.Error(t, NewMemoryStore().Seed(ctx, src))
}

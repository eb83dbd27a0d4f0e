package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func newSQLiteRegistry(t *testing.T) Registry {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// every pooled connection to :memory: is its own database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	reg, err := NewSQLite(context.Background(), db)
	require.NoError(t, err)
	return reg
}

func TestSQLite_Contract(t *testing.T) {
	registryContract(t, newSQLiteRegistry)
}

func TestSQLite_CreateTableIsRepeatable(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	defer db.Close()

	ctx := context.Background()
	_, err = CreateTable(ctx, db)
	require.NoError(t, err)
	_, err = CreateTable(ctx, db)
	require.NoError(t, err)
}

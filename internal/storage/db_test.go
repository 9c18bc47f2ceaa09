package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_FileSystemDatabase(t *testing.T) {
	t.Parallel()
	dbPath := filepath.Join(t.TempDir(), "nested", "history.db")
	ctx := context.Background()

	db, err := New(ctx, dbPath)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	_, err = os.Stat(dbPath)
	require.NoError(t, err, "database file should exist")
	assert.Equal(t, dbPath, db.Path())

	require.NoError(t, db.SaveConversion(ctx, sampleConversion("a")))

	// WAL file appears after the first write
	_, err = os.Stat(dbPath + "-wal")
	assert.NoError(t, err)

	// reopening keeps data and re-running the schema is harmless
	require.NoError(t, db.Close())
	db, err = New(ctx, dbPath)
	require.NoError(t, err)
	n, err := db.CountConversions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNewTestDB(t *testing.T) {
	t.Parallel()
	db, err := NewTestDB()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	require.NoError(t, db.Ping(context.Background()))
	n, err := db.CountConversions(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

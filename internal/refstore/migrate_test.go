package refstore

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestMigrationsApply(t *testing.T) {
	db, err := sql.Open("sqlite", "file::memory:?cache=shared&mode=rwc")
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, db.Close()) })

	err = runMigrations(db)
	require.NoError(t, err)

	var tableName string
	err = db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='buildings'").Scan(&tableName)
	assert.NoError(t, err)
	assert.Equal(t, "buildings", tableName)

	// Name and address are indexed for lookup.
	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type='index' AND tbl_name='buildings'")
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	indexes := map[string]bool{}
	for rows.Next() {
		var idx string
		require.NoError(t, rows.Scan(&idx))
		indexes[idx] = true
	}
	require.NoError(t, rows.Err())
	assert.True(t, indexes["idx_buildings_name"])
	assert.True(t, indexes["idx_buildings_address"])
}

func TestMigrationsIdempotent(t *testing.T) {
	db, err := sql.Open("sqlite", "file::memory:?cache=shared&mode=rwc")
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, db.Close()) })

	require.NoError(t, runMigrations(db))
	require.NoError(t, runMigrations(db))
}

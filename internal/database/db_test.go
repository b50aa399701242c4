package database

import (
	"path/filepath"
	"testing"

	"fleetbuddy/internal/history"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDBCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile", "fleetbuddy.db")

	db, err := InitDB(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = CloseDB(db) })

	assert.FileExists(t, path)
	assert.True(t, db.Migrator().HasTable(&history.Record{}))
}

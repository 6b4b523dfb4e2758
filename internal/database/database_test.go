package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/fable-exporter/internal/database/books"
	"github.com/mrlokans/fable-exporter/internal/database/runs"
	"github.com/mrlokans/fable-exporter/internal/entities"
)

// setupTestDB creates a fresh test database
func setupTestDB(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestDatabase(t *testing.T) {
	db := setupTestDB(t)

	t.Run("migrates empty tables", func(t *testing.T) {
		totalBooks, totalRuns, err := db.GetStats()
		require.NoError(t, err)
		assert.Zero(t, totalBooks)
		assert.Zero(t, totalRuns)
	})

	t.Run("counts books and runs", func(t *testing.T) {
		_, err := books.NewRepository(db.DB).SaveBooks([]entities.Book{
			{ID: "b1", Title: "Dune"},
			{ID: "b2", Title: "Emma"},
		})
		require.NoError(t, err)

		_, err = runs.NewRepository(db.DB).SaveRun(entities.RunSummary{
			RunID:      "run-1",
			StartedAt:  time.Now(),
			FinishedAt: time.Now(),
		})
		require.NoError(t, err)

		totalBooks, totalRuns, err := db.GetStats()
		require.NoError(t, err)
		assert.Equal(t, int64(2), totalBooks)
		assert.Equal(t, int64(1), totalRuns)
	})
}

func TestNewDatabaseReopensExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")

	first, err := NewDatabase(path)
	require.NoError(t, err)
	_, err = books.NewRepository(first.DB).SaveBooks([]entities.Book{{ID: "b1", Title: "Dune"}})
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := NewDatabase(path)
	require.NoError(t, err)
	defer second.Close()

	totalBooks, _, err := second.GetStats()
	require.NoError(t, err)
	assert.Equal(t, int64(1), totalBooks)
}

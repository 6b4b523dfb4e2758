package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/fable-exporter/internal/entities"
)

func TestAuditor(t *testing.T) {
	tempDir := filepath.Join(t.TempDir(), "audit")
	auditor := NewAuditor(tempDir)

	t.Run("SaveRun creates audit directory and names file after the run", func(t *testing.T) {
		runID := uuid.NewString()
		summary := entities.RunSummary{
			RunID:     runID,
			StartedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
			Lists: []entities.ListSummary{
				{ListID: "l1", ListName: "Finished", Status: entities.ListStatusOK, Fetched: 1, Skipped: 1},
			},
		}

		filename, err := auditor.SaveRun(summary)
		require.NoError(t, err)
		assert.Equal(t, runID+".json", filename)

		content, err := os.ReadFile(filepath.Join(tempDir, filename))
		require.NoError(t, err)

		var saved entities.RunSummary
		require.NoError(t, json.Unmarshal(content, &saved))
		assert.Equal(t, runID, saved.RunID)
		require.Len(t, saved.Lists, 1)
		assert.Equal(t, 1, saved.Lists[0].Fetched)
		assert.Equal(t, 1, saved.Lists[0].Skipped)
		assert.Equal(t, entities.ListStatusOK, saved.Lists[0].Status)
	})

	t.Run("SaveRun falls back to a fresh id", func(t *testing.T) {
		filename, err := auditor.SaveRun(entities.RunSummary{RunID: "../escape"})
		require.NoError(t, err)

		_, err = uuid.Parse(strings.TrimSuffix(filename, ".json"))
		assert.NoError(t, err)
		assert.FileExists(t, filepath.Join(tempDir, filename))
	})

	t.Run("SaveRun without a run id never reuses a file", func(t *testing.T) {
		filename1, err := auditor.SaveRun(entities.RunSummary{})
		require.NoError(t, err)

		filename2, err := auditor.SaveRun(entities.RunSummary{})
		require.NoError(t, err)

		assert.NotEqual(t, filename1, filename2)
	})
}

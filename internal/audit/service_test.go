package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mrlokans/fable-exporter/internal/database/runs"
	"github.com/mrlokans/fable-exporter/internal/entities"
)

func setupTestService(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.ExportRun{}, &entities.ExportRunList{})
	require.NoError(t, err)

	return NewService(runs.NewRepository(db)), db
}

func TestService_RecordRun(t *testing.T) {
	svc, _ := setupTestService(t)

	err := svc.RecordRun(entities.RunSummary{
		RunID:     "run-1",
		StartedAt: time.Now(),
		Lists: []entities.ListSummary{
			{ListID: "l1", ListName: "Finished", Status: entities.ListStatusFailed, Failed: 4, Error: "boom"},
		},
	})
	require.NoError(t, err)

	recent, err := svc.RecentRuns(10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, 4, recent[0].Failed)
	require.Len(t, recent[0].Lists, 1)
	assert.Equal(t, "boom", recent[0].Lists[0].Error)
}

func TestService_RecordRunDuplicateID(t *testing.T) {
	svc, _ := setupTestService(t)

	summary := entities.RunSummary{RunID: "run-1", StartedAt: time.Now()}
	require.NoError(t, svc.RecordRun(summary))

	err := svc.RecordRun(summary)
	require.Error(t, err, "run ids are unique")
	assert.Contains(t, err.Error(), "failed to record run run-1")
}

func TestService_Run(t *testing.T) {
	svc, _ := setupTestService(t)

	require.NoError(t, svc.RecordRun(entities.RunSummary{
		RunID:     "run-1",
		StartedAt: time.Now(),
		Lists: []entities.ListSummary{
			{ListID: "l1", ListName: "Finished", Status: entities.ListStatusPartial, Fetched: 2, Pages: 1},
		},
	}))

	run, err := svc.Run("run-1")
	require.NoError(t, err)
	require.Len(t, run.Lists, 1)
	assert.Equal(t, entities.ListStatusPartial, run.Lists[0].Status)
	assert.True(t, run.Incomplete())

	_, err = svc.Run("missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no recorded run "missing"`)
}

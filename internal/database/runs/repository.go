package runs

import (
	"gorm.io/gorm"

	"github.com/mrlokans/fable-exporter/internal/entities"
)

const defaultLimit = 20

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// SaveRun records a finished run together with its per-list outcome.
func (r *Repository) SaveRun(summary entities.RunSummary) (*entities.ExportRun, error) {
	fetched, skipped, failed := summary.Totals()
	run := &entities.ExportRun{
		RunID:        summary.RunID,
		StartedAt:    summary.StartedAt,
		FinishedAt:   summary.FinishedAt,
		Fetched:      fetched,
		Skipped:      skipped,
		Failed:       failed,
		Reviews:      summary.Reviews,
		ReviewsError: summary.ReviewsError,
		Error:        summary.Error,
	}
	for _, list := range summary.Lists {
		run.Lists = append(run.Lists, entities.ExportRunList{
			ListID:   list.ListID,
			ListName: list.ListName,
			Status:   list.Status,
			Fetched:  list.Fetched,
			Skipped:  list.Skipped,
			Failed:   list.Failed,
			Pages:    list.Pages,
			Error:    list.Error,
		})
	}

	if err := r.db.Create(run).Error; err != nil {
		return nil, err
	}
	return run, nil
}

// GetRecentRuns returns the latest runs, most recent first.
func (r *Repository) GetRecentRuns(limit int) ([]entities.ExportRun, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	var runs []entities.ExportRun
	err := r.db.Preload("Lists", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	}).Order("started_at DESC").Limit(limit).Find(&runs).Error
	return runs, err
}

// GetRun retrieves a run by its run identifier.
func (r *Repository) GetRun(runID string) (*entities.ExportRun, error) {
	var run entities.ExportRun
	err := r.db.Preload("Lists").Where("run_id = ?", runID).First(&run).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

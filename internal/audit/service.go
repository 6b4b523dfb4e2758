package audit

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/mrlokans/fable-exporter/internal/database/runs"
	"github.com/mrlokans/fable-exporter/internal/entities"
)

// Service records finished runs in the run-history database.
type Service struct {
	repo *runs.Repository
}

func NewService(repo *runs.Repository) *Service {
	return &Service{repo: repo}
}

// RecordRun stores the summary. The caller decides how to report a failure;
// it never changes the outcome of the run itself.
func (s *Service) RecordRun(summary entities.RunSummary) error {
	run, err := s.repo.SaveRun(summary)
	if err != nil {
		return fmt.Errorf("failed to record run %s: %w", summary.RunID, err)
	}
	log.Printf("Recorded run %s (%d lists)", run.RunID, len(run.Lists))
	return nil
}

// RecentRuns returns up to limit recorded runs, newest first.
func (s *Service) RecentRuns(limit int) ([]entities.ExportRun, error) {
	return s.repo.GetRecentRuns(limit)
}

// Run returns one recorded run with its lists.
func (s *Service) Run(runID string) (*entities.ExportRun, error) {
	run, err := s.repo.GetRun(runID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("no recorded run %q", runID)
	}
	return run, err
}

package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// ExportJob performs one complete export run.
type ExportJob func(ctx context.Context) error

// ExportScheduler runs an ExportJob on a cron schedule, one run at a time.
// A tick that fires while a run is still in progress is skipped.
type ExportScheduler struct {
	schedule   string
	job        ExportJob
	runTimeout time.Duration

	cron        *cron.Cron
	entryID     cron.EntryID
	mu          sync.RWMutex
	isRunning   bool
	isExporting bool
	ctx         context.Context
	cancel      context.CancelFunc
	lastRunAt   time.Time
	lastErr     error
}

// NewExportScheduler creates a scheduler for a standard 5-field cron schedule.
// runTimeout bounds each run; zero means no bound beyond the scheduler context.
func NewExportScheduler(schedule string, runTimeout time.Duration, job ExportJob) *ExportScheduler {
	return &ExportScheduler{
		schedule:   schedule,
		job:        job,
		runTimeout: runTimeout,
		cron:       cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start registers the job and starts ticking. Cancelling ctx stops the scheduler
// and any run in progress.
func (s *ExportScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.runExport()
	})
	if err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}
	s.entryID = entryID

	s.ctx, s.cancel = context.WithCancel(ctx)
	s.cron.Start()
	s.isRunning = true

	log.Printf("Export scheduler: started with schedule '%s'. Next run: %v", s.schedule, s.cron.Entry(entryID).Next)

	go func(done <-chan struct{}) {
		<-done
		s.Stop()
	}(s.ctx.Done())

	return nil
}

// Stop stops ticking and waits for a run in progress to finish.
func (s *ExportScheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()
	<-s.cron.Stop().Done()
	s.cron.Remove(s.entryID)

	log.Printf("Export scheduler: stopped")
}

// RunNow performs a run immediately in the calling goroutine. It returns
// false when another run is already in progress.
func (s *ExportScheduler) RunNow() bool {
	return s.runExport()
}

func (s *ExportScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

func (s *ExportScheduler) IsExporting() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isExporting
}

// LastRun reports when the previous run finished and its error.
func (s *ExportScheduler) LastRun() (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRunAt, s.lastErr
}

// GetNextRunTime returns when the next run will occur
func (s *ExportScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	entry := s.cron.Entry(s.entryID)
	if !entry.Valid() {
		return nil
	}
	next := entry.Next
	return &next
}

func (s *ExportScheduler) runExport() bool {
	s.mu.Lock()
	if s.isExporting {
		s.mu.Unlock()
		log.Printf("Export scheduler: skipped (previous run still in progress)")
		return false
	}
	s.isExporting = true
	parent := s.ctx
	s.mu.Unlock()

	if parent == nil {
		parent = context.Background()
	}
	ctx := parent
	if s.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(parent, s.runTimeout)
		defer cancel()
	}

	startTime := time.Now()
	log.Printf("Export scheduler: starting run")
	err := s.job(ctx)
	if err != nil {
		log.Printf("Export scheduler: run failed after %v: %v", time.Since(startTime).Round(time.Millisecond), err)
	} else {
		log.Printf("Export scheduler: run finished in %v", time.Since(startTime).Round(time.Millisecond))
	}

	s.mu.Lock()
	s.isExporting = false
	s.lastRunAt = time.Now()
	s.lastErr = err
	s.mu.Unlock()

	return true
}

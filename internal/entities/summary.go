package entities

import "time"

type ListStatus string

const (
	ListStatusOK      ListStatus = "ok"
	ListStatusPartial ListStatus = "partial" // pagination cap hit, records kept
	ListStatusFailed  ListStatus = "failed"
)

// ListSummary reports what happened to a single list during a run.
type ListSummary struct {
	ListID   string     `json:"list_id"`
	ListName string     `json:"list_name"`
	Status   ListStatus `json:"status"`
	Fetched  int        `json:"fetched"`
	Skipped  int        `json:"skipped"`
	Failed   int        `json:"failed"`
	Pages    int        `json:"pages"`
	Error    string     `json:"error,omitempty"`
}

// RunSummary is the per-run report shown to the user and handed to exporters.
type RunSummary struct {
	RunID          string        `json:"run_id"`
	StartedAt      time.Time     `json:"started_at"`
	FinishedAt     time.Time     `json:"finished_at"`
	Lists          []ListSummary `json:"lists"`
	Reviews        int           `json:"reviews"`
	ReviewsSkipped int           `json:"reviews_skipped"`
	ReviewsError   string        `json:"reviews_error,omitempty"`
	Error          string        `json:"error,omitempty"`
}

// HasFailures reports whether any list failed, was truncated, or the run aborted.
func (s RunSummary) HasFailures() bool {
	if s.Error != "" {
		return true
	}
	for _, l := range s.Lists {
		if l.Status != ListStatusOK {
			return true
		}
	}
	return false
}

// Totals sums the per-list counters.
func (s RunSummary) Totals() (fetched, skipped, failed int) {
	for _, l := range s.Lists {
		fetched += l.Fetched
		skipped += l.Skipped
		failed += l.Failed
	}
	return fetched, skipped, failed
}

package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunSummary_HasFailures(t *testing.T) {
	ok := RunSummary{Lists: []ListSummary{{Status: ListStatusOK}, {Status: ListStatusOK}}}
	assert.False(t, ok.HasFailures())

	partial := RunSummary{Lists: []ListSummary{{Status: ListStatusOK}, {Status: ListStatusPartial}}}
	assert.True(t, partial.HasFailures())

	failed := RunSummary{Lists: []ListSummary{{Status: ListStatusFailed}}}
	assert.True(t, failed.HasFailures())

	aborted := RunSummary{Error: "authentication failed"}
	assert.True(t, aborted.HasFailures())

	reviewsDown := RunSummary{ReviewsError: "timeout", Lists: []ListSummary{{Status: ListStatusOK}}}
	assert.False(t, reviewsDown.HasFailures(), "reviews degrade without failing the run")
}

func TestRunSummary_Totals(t *testing.T) {
	summary := RunSummary{Lists: []ListSummary{
		{Fetched: 10, Skipped: 1},
		{Fetched: 3, Failed: 2},
	}}

	fetched, skipped, failed := summary.Totals()
	assert.Equal(t, 13, fetched)
	assert.Equal(t, 1, skipped)
	assert.Equal(t, 2, failed)
}

func TestBook_DateAdded(t *testing.T) {
	book := Book{AddedAt: Some("2024-01-01")}
	assert.Equal(t, "2024-01-01", book.DateAdded().OrElse(""))

	book.ReviewCreatedAt = Some("2024-02-02")
	assert.Equal(t, "2024-02-02", book.DateAdded().OrElse(""))

	assert.False(t, Book{}.DateAdded().IsSet())
}

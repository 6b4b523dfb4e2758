package importers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mrlokans/fable-exporter/internal/entities"
	"github.com/mrlokans/fable-exporter/internal/fable"
	"github.com/mrlokans/fable-exporter/internal/normalize"
)

// OwnedListID identifies the pseudo-list backed by the owned-books endpoint.
const OwnedListID = "owned"

// Fetcher is the upstream side of the pipeline. *fable.Service implements it.
type Fetcher interface {
	FetchLists(ctx context.Context) ([]entities.BookList, error)
	FetchBooks(ctx context.Context, listID string) (fable.BookBatch, error)
	FetchOwned(ctx context.Context) (fable.BookBatch, error)
	FetchReviews(ctx context.Context) (fable.ReviewSet, error)
	RetryPolicy() fable.RetryPolicy
}

// Options controls which lists are fetched and how.
type Options struct {
	// Concurrency bounds parallel list fetches; values below 1 mean sequential.
	Concurrency int
	// IncludeOwned adds the "Owned" pseudo-list after the catalog lists.
	IncludeOwned bool
	// Lists restricts the run to lists whose id or name matches (case-insensitive).
	Lists []string
}

// ListResult is one list's canonical records and report.
type ListResult struct {
	List    entities.BookList
	Books   []entities.Book
	Summary entities.ListSummary
}

// Library is the pipeline output handed to exporters.
type Library struct {
	Lists   []ListResult
	Summary entities.RunSummary
}

// Combined returns every record once, in list order then page order.
// A book present in several lists keeps the first list it was seen in.
func (l *Library) Combined() []entities.Book {
	seen := make(map[string]bool)
	var books []entities.Book
	for _, list := range l.Lists {
		for _, book := range list.Books {
			if seen[book.ID] {
				continue
			}
			seen[book.ID] = true
			books = append(books, book)
		}
	}
	return books
}

// Pipeline runs: list catalog, then each list's books, then the global
// reviews, then the merge. Reviews are needed in full before any record is
// produced, so merging waits for every fetch to finish.
type Pipeline struct {
	fetcher Fetcher
	opts    Options
	now     func() time.Time
}

// NewPipeline creates a pipeline over the given fetcher.
func NewPipeline(fetcher Fetcher, opts Options) *Pipeline {
	return &Pipeline{fetcher: fetcher, opts: opts, now: time.Now}
}

type listFetch struct {
	batch fable.BookBatch
	err   error
}

// Run executes one export run. A non-nil error means the run was aborted
// (authentication failure or list catalog failure) and nothing should be
// written; the returned Library still carries the summary.
func (p *Pipeline) Run(ctx context.Context) (*Library, error) {
	lib := &Library{Summary: entities.RunSummary{
		RunID:     uuid.New().String(),
		StartedAt: p.now(),
	}}
	abort := func(err error) (*Library, error) {
		lib.Summary.Error = err.Error()
		lib.Summary.FinishedAt = p.now()
		return lib, err
	}

	lists, err := fable.Retry(ctx, p.fetcher.RetryPolicy(), p.fetcher.FetchLists)
	if err != nil {
		return abort(fmt.Errorf("fetch book lists: %w", err))
	}
	lists = p.selectLists(lists)
	log.Printf("Fable export: %d lists selected", len(lists))

	fetches, err := p.fetchLists(ctx, lists)
	if err != nil {
		return abort(err)
	}

	reviews, err := p.fetcher.FetchReviews(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return abort(ctxErr)
		}
		if fable.IsAuth(err) {
			return abort(fmt.Errorf("fetch reviews: %w", err))
		}
		// Reviews only enrich records; continue with whatever was collected.
		log.Printf("Fable export: reviews incomplete, continuing without them: %v", err)
		lib.Summary.ReviewsError = err.Error()
	}
	lib.Summary.Reviews = len(reviews.ByBook)
	lib.Summary.ReviewsSkipped = reviews.Skipped

	for i, list := range lists {
		result := buildListResult(list, fetches[i], reviews.ByBook)
		lib.Lists = append(lib.Lists, result)
		lib.Summary.Lists = append(lib.Summary.Lists, result.Summary)
	}

	lib.Summary.FinishedAt = p.now()
	return lib, nil
}

// fetchLists fetches each list, in parallel when configured. Results are
// indexed by list position so output order never depends on timing.
// Only an authentication failure aborts; other errors stay with their list.
func (p *Pipeline) fetchLists(ctx context.Context, lists []entities.BookList) ([]listFetch, error) {
	fetches := make([]listFetch, len(lists))

	g, gCtx := errgroup.WithContext(ctx)
	limit := p.opts.Concurrency
	if limit < 1 {
		limit = 1
	}
	g.SetLimit(limit)

	for i, list := range lists {
		g.Go(func() error {
			log.Printf("Fable export: fetching list %q", list.Name)
			var batch fable.BookBatch
			var err error
			if list.ID == OwnedListID {
				batch, err = p.fetcher.FetchOwned(gCtx)
			} else {
				batch, err = p.fetcher.FetchBooks(gCtx, list.ID)
			}
			if fable.IsAuth(err) {
				return fmt.Errorf("fetch list %q: %w", list.Name, err)
			}
			fetches[i] = listFetch{batch: batch, err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return fetches, nil
}

func (p *Pipeline) selectLists(lists []entities.BookList) []entities.BookList {
	if p.opts.IncludeOwned {
		lists = append(lists, entities.BookList{ID: OwnedListID, Name: "Owned"})
	}
	if len(p.opts.Lists) == 0 {
		return lists
	}

	var selected []entities.BookList
	for _, list := range lists {
		for _, want := range p.opts.Lists {
			if strings.EqualFold(want, list.ID) || strings.EqualFold(want, list.Name) {
				selected = append(selected, list)
				break
			}
		}
	}
	return selected
}

func buildListResult(list entities.BookList, fetch listFetch, reviews map[string]fable.RawReviewRecord) ListResult {
	summary := entities.ListSummary{
		ListID:   list.ID,
		ListName: list.Name,
		Status:   entities.ListStatusOK,
		Pages:    fetch.batch.Pages,
	}

	var exhausted *fable.PaginationExhaustedError
	if fetch.err != nil && !errors.As(fetch.err, &exhausted) {
		// Any other failure drops the list's contribution entirely.
		summary.Status = entities.ListStatusFailed
		summary.Error = fetch.err.Error()
		summary.Failed = max(list.Count.OrElse(0), len(fetch.batch.Books)+fetch.batch.Skipped)
		log.Printf("Fable export: list %q failed: %v", list.Name, fetch.err)
		return ListResult{List: list, Summary: summary}
	}

	merged := normalize.Normalize(list, fetch.batch.Books, reviews)

	books := make([]entities.Book, 0, len(merged.Books))
	seen := make(map[string]bool, len(merged.Books))
	duplicates := 0
	for _, book := range merged.Books {
		if seen[book.ID] {
			duplicates++
			continue
		}
		seen[book.ID] = true
		books = append(books, book)
	}

	summary.Fetched = len(books)
	summary.Skipped = fetch.batch.Skipped + merged.Dropped + duplicates

	if exhausted != nil {
		summary.Status = entities.ListStatusPartial
		summary.Error = exhausted.Error()
		summary.Failed = max(list.Count.OrElse(0)-summary.Fetched-summary.Skipped, 0)
		log.Printf("Fable export: list %q is partial: %v", list.Name, exhausted)
	}

	return ListResult{List: list, Books: books, Summary: summary}
}

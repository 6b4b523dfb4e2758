package fable

import (
	"context"
	"encoding/json"
	"log"
	"math"
	"net/url"
	"strings"

	"github.com/mrlokans/fable-exporter/internal/entities"
)

// Endpoints groups the descriptors of every endpoint the exporter consumes.
type Endpoints struct {
	Lists         Endpoint // unpaginated
	Books         Endpoint // {user_id}, {list_id}
	Reviews       Endpoint // {user_id}
	LegacyReviews Endpoint // tried when Reviews answers 404; empty Path disables
	Owned         Endpoint
}

// DefaultEndpoints matches the live Fable API.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Lists: Endpoint{
			Path:       "/api/v2/users/{user_id}/book_lists",
			ResultsKey: "results",
		},
		Books: Endpoint{
			Path:       "/api/v2/users/{user_id}/book_lists/{list_id}/books",
			Style:      PaginationOffset,
			PageSize:   100,
			ResultsKey: "results",
		},
		Reviews: Endpoint{
			Path:       "/api/v2/users/{user_id}/reviews/",
			Style:      PaginationOffset,
			PageSize:   20,
			ResultsKey: "results",
		},
		LegacyReviews: Endpoint{
			Path:       "/api/users/{user_id}/reviews/",
			Style:      PaginationOffset,
			PageSize:   20,
			ResultsKey: "results",
		},
		Owned: Endpoint{
			Path:       "/api/v2/books/owned/",
			Query:      url.Values{"include": {"preorder,owned"}},
			Style:      PaginationCursor,
			ResultsKey: "results",
			NextKey:    "next",
		},
	}
}

// BookBatch is the outcome of fetching one list. Books is valid even when
// the accompanying error is non-nil.
type BookBatch struct {
	Books   []RawBookRecord
	Skipped int
	Pages   int
}

// ReviewSet maps book identifiers to their review.
type ReviewSet struct {
	ByBook  map[string]RawReviewRecord
	Skipped int
	Pages   int
}

// Service implements the list catalog, book and review fetchers.
type Service struct {
	client    Requester
	userID    string
	endpoints Endpoints
	retry     RetryPolicy
	maxPages  int
}

// ServiceOptions configures pagination and retries for a Service.
type ServiceOptions struct {
	Endpoints Endpoints
	Retry     RetryPolicy
	MaxPages  int
}

func NewService(client Requester, userID string, opts ServiceOptions) *Service {
	return &Service{
		client:    client,
		userID:    userID,
		endpoints: opts.Endpoints,
		retry:     opts.Retry,
		maxPages:  opts.MaxPages,
	}
}

// RetryPolicy exposes the policy so callers one layer up can apply it to FetchLists.
func (s *Service) RetryPolicy() RetryPolicy {
	return s.retry
}

// FetchLists makes a single unpaginated call for the list catalog.
// It does not retry; that is the caller's decision.
func (s *Service) FetchLists(ctx context.Context) ([]entities.BookList, error) {
	endpoint := s.endpoints.Lists.Expand(map[string]string{"user_id": s.userID})
	resultsKey := endpoint.ResultsKey
	if resultsKey == "" {
		resultsKey = "results"
	}

	resp, err := s.client.Get(ctx, endpoint.Path, endpoint.Query)
	if err != nil {
		return nil, err
	}
	page, err := ParsePage(endpoint.Path, resp.Body, resultsKey, "")
	if err != nil {
		return nil, err
	}

	lists := make([]entities.BookList, 0, len(page.Records))
	for _, raw := range page.Records {
		list, ok := decodeList(raw)
		if !ok {
			log.Printf("Fable client: skipping list catalog entry without id")
			continue
		}
		lists = append(lists, list)
	}
	return lists, nil
}

// FetchBooks returns every well-formed item of a list. Items that are not
// objects or have no identifier are skipped and counted, never fatal.
func (s *Service) FetchBooks(ctx context.Context, listID string) (BookBatch, error) {
	endpoint := s.endpoints.Books.Expand(map[string]string{"user_id": s.userID, "list_id": listID})
	return s.collectBooks(ctx, endpoint)
}

// FetchOwned walks the owned-books endpoint, which follows "next" links.
func (s *Service) FetchOwned(ctx context.Context) (BookBatch, error) {
	endpoint := s.endpoints.Owned.Expand(map[string]string{"user_id": s.userID})
	return s.collectBooks(ctx, endpoint)
}

func (s *Service) collectBooks(ctx context.Context, endpoint Endpoint) (BookBatch, error) {
	var batch BookBatch
	pager := NewPaginator(s.client, endpoint, s.retry, s.maxPages)
	for pager.Next(ctx) {
		book, ok := DecodeBook(pager.Record())
		if !ok {
			batch.Skipped++
			log.Printf("Fable client: skipping malformed book entry on %s", endpoint.Path)
			continue
		}
		batch.Books = append(batch.Books, book)
	}
	batch.Pages = pager.Pages()
	return batch, pager.Err()
}

// FetchReviews returns the user's reviews keyed by book identifier. If the
// primary endpoint does not exist (404 before any record), the legacy one is used.
func (s *Service) FetchReviews(ctx context.Context) (ReviewSet, error) {
	params := map[string]string{"user_id": s.userID}
	set, err := s.collectReviews(ctx, s.endpoints.Reviews.Expand(params))
	if err != nil && IsNotFound(err) && set.Pages == 0 && len(set.ByBook) == 0 && s.endpoints.LegacyReviews.Path != "" {
		legacy := s.endpoints.LegacyReviews.Expand(params)
		log.Printf("Fable client: reviews endpoint not found, falling back to %s", legacy.Path)
		return s.collectReviews(ctx, legacy)
	}
	return set, err
}

func (s *Service) collectReviews(ctx context.Context, endpoint Endpoint) (ReviewSet, error) {
	set := ReviewSet{ByBook: make(map[string]RawReviewRecord)}
	pager := NewPaginator(s.client, endpoint, s.retry, s.maxPages)
	for pager.Next(ctx) {
		review, ok := DecodeReview(pager.Record())
		if !ok {
			set.Skipped++
			log.Printf("Fable client: skipping review entry without book id on %s", endpoint.Path)
			continue
		}
		// Later entries replace earlier ones for the same book.
		set.ByBook[review.BookID] = review
	}
	set.Pages = pager.Pages()
	return set, pager.Err()
}

func decodeList(raw json.RawMessage) (entities.BookList, bool) {
	obj, ok := decodeObject(raw)
	if !ok {
		return entities.BookList{}, false
	}
	id := obj.str("id")
	if id == nil || strings.TrimSpace(*id) == "" {
		return entities.BookList{}, false
	}

	list := entities.BookList{ID: strings.TrimSpace(*id), Name: "Unknown"}
	if name := obj.str("name"); name != nil && strings.TrimSpace(*name) != "" {
		list.Name = strings.TrimSpace(*name)
	}
	if count := obj.num("count", "books_count"); count != nil && *count >= 0 && *count == math.Trunc(*count) {
		list.Count = entities.Some(int(*count))
	}

	var meta map[string]any
	if err := json.Unmarshal(raw, &meta); err == nil {
		delete(meta, "id")
		delete(meta, "name")
		delete(meta, "count")
		if len(meta) > 0 {
			list.Metadata = meta
		}
	}
	return list, true
}

package fable

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingRequester answers from a handler and keeps every call.
type recordingRequester struct {
	mu      sync.Mutex
	calls   []string
	handler func(call int, path string, query url.Values) (*Response, error)
}

func (r *recordingRequester) Get(_ context.Context, path string, query url.Values) (*Response, error) {
	r.mu.Lock()
	call := len(r.calls)
	key := path
	if len(query) > 0 {
		key += "?" + query.Encode()
	}
	r.calls = append(r.calls, key)
	r.mu.Unlock()
	return r.handler(call, path, query)
}

func (r *recordingRequester) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func jsonResponse(body string) *Response {
	return &Response{StatusCode: 200, Body: json.RawMessage(body)}
}

func recordsJSON(start, n int) string {
	items := make([]string, n)
	for i := range items {
		items[i] = fmt.Sprintf(`{"id": "r%d"}`, start+i)
	}
	return "[" + strings.Join(items, ",") + "]"
}

func fastRetry() RetryPolicy {
	return RetryPolicy{MaxRetries: 2, BaseDelay: time.Microsecond, MaxDelay: time.Millisecond}
}

func collect(t *testing.T, p *Paginator) []string {
	t.Helper()
	var ids []string
	for p.Next(context.Background()) {
		var rec struct {
			ID string `json:"id"`
		}
		require.NoError(t, json.Unmarshal(p.Record(), &rec))
		ids = append(ids, rec.ID)
	}
	return ids
}

func TestPaginator_OffsetStyle(t *testing.T) {
	t.Run("full pages are always followed by another request", func(t *testing.T) {
		requester := &recordingRequester{handler: func(call int, _ string, query url.Values) (*Response, error) {
			offset, _ := strconv.Atoi(query.Get("offset"))
			if offset >= 4 {
				return jsonResponse(`{"results": []}`), nil
			}
			return jsonResponse(`{"results": ` + recordsJSON(offset, 2) + `}`), nil
		}}

		p := NewPaginator(requester, Endpoint{Path: "/books", PageSize: 2}, fastRetry(), 0)
		ids := collect(t, p)

		require.NoError(t, p.Err())
		assert.Equal(t, []string{"r0", "r1", "r2", "r3"}, ids)
		assert.Equal(t, 3, requester.callCount())
		assert.Equal(t, 3, p.Pages())
		assert.Equal(t, []string{
			"/books?limit=2&offset=0",
			"/books?limit=2&offset=2",
			"/books?limit=2&offset=4",
		}, requester.calls)
	})

	t.Run("short page stops", func(t *testing.T) {
		requester := &recordingRequester{handler: func(call int, _ string, query url.Values) (*Response, error) {
			if call == 0 {
				return jsonResponse(`{"results": ` + recordsJSON(0, 3) + `}`), nil
			}
			return jsonResponse(`{"results": ` + recordsJSON(3, 1) + `}`), nil
		}}

		p := NewPaginator(requester, Endpoint{Path: "/books", PageSize: 3}, fastRetry(), 0)
		ids := collect(t, p)

		require.NoError(t, p.Err())
		assert.Len(t, ids, 4)
		assert.Equal(t, 2, requester.callCount())
	})

	t.Run("empty endpoint makes one request", func(t *testing.T) {
		requester := &recordingRequester{handler: func(int, string, url.Values) (*Response, error) {
			return jsonResponse(`{"results": []}`), nil
		}}

		p := NewPaginator(requester, Endpoint{Path: "/books"}, fastRetry(), 0)
		assert.Empty(t, collect(t, p))
		assert.NoError(t, p.Err())
		assert.Equal(t, 1, requester.callCount())
	})

	t.Run("bare array response", func(t *testing.T) {
		requester := &recordingRequester{handler: func(int, string, url.Values) (*Response, error) {
			return jsonResponse(recordsJSON(0, 2)), nil
		}}

		p := NewPaginator(requester, Endpoint{Path: "/books", PageSize: 10}, fastRetry(), 0)
		assert.Equal(t, []string{"r0", "r1"}, collect(t, p))
		assert.NoError(t, p.Err())
	})

	t.Run("static query is preserved", func(t *testing.T) {
		requester := &recordingRequester{handler: func(_ int, _ string, query url.Values) (*Response, error) {
			assert.Equal(t, "owned", query.Get("include"))
			return jsonResponse(`[]`), nil
		}}

		endpoint := Endpoint{Path: "/books", Query: url.Values{"include": {"owned"}}}
		p := NewPaginator(requester, endpoint, fastRetry(), 0)
		collect(t, p)
		assert.Equal(t, []string{"owned"}, endpoint.Query["include"], "endpoint query must not be mutated")
	})
}

func TestPaginator_MaxPages(t *testing.T) {
	requester := &recordingRequester{handler: func(call int, _ string, _ url.Values) (*Response, error) {
		return jsonResponse(`{"results": ` + recordsJSON(call*2, 2) + `}`), nil
	}}

	p := NewPaginator(requester, Endpoint{Path: "/books", PageSize: 2}, fastRetry(), 3)
	ids := collect(t, p)

	assert.Len(t, ids, 6, "records before the cap are kept")
	assert.Equal(t, 3, requester.callCount())

	var exhausted *PaginationExhaustedError
	require.ErrorAs(t, p.Err(), &exhausted)
	assert.Equal(t, 3, exhausted.Pages)
	assert.Equal(t, 6, exhausted.Records)
	assert.Equal(t, "/books", exhausted.Path)

	assert.False(t, p.Next(context.Background()), "paginator stays exhausted")
}

func TestPaginator_PageStyle(t *testing.T) {
	requester := &recordingRequester{handler: func(_ int, _ string, query url.Values) (*Response, error) {
		if query.Get("page") == "1" {
			return jsonResponse(`{"items": ` + recordsJSON(0, 2) + `}`), nil
		}
		return jsonResponse(`{"items": []}`), nil
	}}

	endpoint := Endpoint{Path: "/reviews", Style: PaginationPage, PageSize: 2, LimitParam: "page_size", ResultsKey: "items"}
	p := NewPaginator(requester, endpoint, fastRetry(), 0)
	ids := collect(t, p)

	require.NoError(t, p.Err())
	assert.Equal(t, []string{"r0", "r1"}, ids)
	assert.Equal(t, []string{
		"/reviews?page=1&page_size=2",
		"/reviews?page=2&page_size=2",
	}, requester.calls)
}

func TestPaginator_CursorStyle(t *testing.T) {
	requester := &recordingRequester{handler: func(call int, path string, _ url.Values) (*Response, error) {
		switch call {
		case 0:
			assert.Equal(t, "/owned", path)
			return jsonResponse(`{"results": ` + recordsJSON(0, 2) + `, "next": "https://api.fable.co/owned?cursor=abc"}`), nil
		case 1:
			assert.Equal(t, "https://api.fable.co/owned?cursor=abc", path)
			return jsonResponse(`{"results": ` + recordsJSON(2, 1) + `, "next": null}`), nil
		default:
			t.Fatalf("unexpected call %d", call)
			return nil, nil
		}
	}}

	p := NewPaginator(requester, Endpoint{Path: "/owned", Style: PaginationCursor, NextKey: "next"}, fastRetry(), 0)
	ids := collect(t, p)

	require.NoError(t, p.Err())
	assert.Equal(t, []string{"r0", "r1", "r2"}, ids)
	assert.Equal(t, 2, requester.callCount())
}

func TestPaginator_ExplicitDoneSignal(t *testing.T) {
	requester := &recordingRequester{handler: func(int, string, url.Values) (*Response, error) {
		return jsonResponse(`{"results": ` + recordsJSON(0, 2) + `, "has_more": false}`), nil
	}}

	p := NewPaginator(requester, Endpoint{Path: "/books", PageSize: 2, NextKey: "has_more"}, fastRetry(), 0)
	assert.Len(t, collect(t, p), 2)
	assert.NoError(t, p.Err())
	assert.Equal(t, 1, requester.callCount(), "explicit signal overrides the full page rule")
}

func TestPaginator_Errors(t *testing.T) {
	t.Run("retries transient failures", func(t *testing.T) {
		requester := &recordingRequester{handler: func(call int, _ string, _ url.Values) (*Response, error) {
			if call < 2 {
				return nil, &TransportError{Path: "/books", Err: fmt.Errorf("connection reset")}
			}
			return jsonResponse(`[]`), nil
		}}

		p := NewPaginator(requester, Endpoint{Path: "/books"}, fastRetry(), 0)
		collect(t, p)
		assert.NoError(t, p.Err())
		assert.Equal(t, 3, requester.callCount())
	})

	t.Run("auth failure stops without retry and keeps earlier records", func(t *testing.T) {
		requester := &recordingRequester{handler: func(call int, _ string, _ url.Values) (*Response, error) {
			if call == 0 {
				return jsonResponse(recordsJSON(0, 2)), nil
			}
			return nil, &AuthError{Path: "/books", StatusCode: 401}
		}}

		p := NewPaginator(requester, Endpoint{Path: "/books", PageSize: 2}, fastRetry(), 0)
		ids := collect(t, p)
		assert.Len(t, ids, 2)
		assert.True(t, IsAuth(p.Err()))
		assert.Equal(t, 2, requester.callCount())
	})

	t.Run("malformed envelope", func(t *testing.T) {
		requester := &recordingRequester{handler: func(int, string, url.Values) (*Response, error) {
			return jsonResponse(`{"results": {"id": 1}}`), nil
		}}

		p := NewPaginator(requester, Endpoint{Path: "/books"}, fastRetry(), 0)
		collect(t, p)
		var upstreamErr *UpstreamError
		assert.ErrorAs(t, p.Err(), &upstreamErr)
	})
}

func TestParsePage(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		nextKey  string
		records  int
		signal   moreSignal
		next     string
		hasError bool
	}{
		{name: "bare array", body: `[{}, {}]`, records: 2},
		{name: "results object", body: `{"results": [{}]}`, records: 1},
		{name: "missing results is empty", body: `{"count": 0}`},
		{name: "null results is empty", body: `{"results": null}`},
		{name: "next link", body: `{"results": [], "next": "/p2"}`, nextKey: "next", signal: signalMore, next: "/p2"},
		{name: "null next", body: `{"results": [], "next": null}`, nextKey: "next", signal: signalDone},
		{name: "empty next", body: `{"results": [], "next": ""}`, nextKey: "next", signal: signalDone},
		{name: "boolean true", body: `{"results": [], "has_more": true}`, nextKey: "has_more", signal: signalMore},
		{name: "unrecognized signal", body: `{"results": [], "next": 3}`, nextKey: "next", signal: signalAbsent},
		{name: "scalar body", body: `42`, hasError: true},
		{name: "empty body", body: ``, hasError: true},
		{name: "results not array", body: `{"results": "x"}`, hasError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := ParsePage("/p", json.RawMessage(tt.body), "results", tt.nextKey)
			if tt.hasError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, page.Records, tt.records)
			assert.Equal(t, tt.signal, page.signal)
			assert.Equal(t, tt.next, page.next)
		})
	}
}

func TestEndpoint_Expand(t *testing.T) {
	endpoint := Endpoint{Path: "/api/v2/users/{user_id}/book_lists/{list_id}/books"}
	expanded := endpoint.Expand(map[string]string{"user_id": "u 1", "list_id": "L1"})

	assert.Equal(t, "/api/v2/users/u%201/book_lists/L1/books", expanded.Path)
	assert.Equal(t, "/api/v2/users/{user_id}/book_lists/{list_id}/books", endpoint.Path)
}

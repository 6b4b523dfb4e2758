package fable

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/url"
	"strconv"
	"strings"
)

// PaginationStyle selects how successive pages are requested.
type PaginationStyle string

const (
	PaginationOffset PaginationStyle = "offset" // offset + limit
	PaginationPage   PaginationStyle = "page"   // page index + page size
	PaginationCursor PaginationStyle = "cursor" // follow the URL in NextKey
)

const (
	DefaultMaxPages = 200
	defaultPageSize = 100
)

// Endpoint describes a paginated endpoint. Parameter names and the
// "more pages" signal vary between Fable endpoints, so they are data here.
type Endpoint struct {
	Path        string // may contain {user_id} and {list_id}
	Query       url.Values
	Style       PaginationStyle
	PageSize    int
	OffsetParam string // offset style, default "offset"
	LimitParam  string // offset and page style, default "limit"
	PageParam   string // page style, default "page"
	FirstPage   int    // page style, default 1
	ResultsKey  string // default "results"
	NextKey     string // empty means the endpoint gives no explicit signal
}

// Expand substitutes {name} placeholders in the path.
func (e Endpoint) Expand(params map[string]string) Endpoint {
	path := e.Path
	for key, value := range params {
		path = strings.ReplaceAll(path, "{"+key+"}", url.PathEscape(value))
	}
	e.Path = path
	return e
}

func (e Endpoint) withDefaults() Endpoint {
	if e.Style == "" {
		e.Style = PaginationOffset
	}
	if e.PageSize <= 0 && e.Style != PaginationCursor {
		e.PageSize = defaultPageSize
	}
	if e.OffsetParam == "" {
		e.OffsetParam = "offset"
	}
	if e.LimitParam == "" {
		e.LimitParam = "limit"
	}
	if e.PageParam == "" {
		e.PageParam = "page"
	}
	if e.FirstPage == 0 {
		e.FirstPage = 1
	}
	if e.ResultsKey == "" {
		e.ResultsKey = "results"
	}
	return e
}

// Requester is the part of Client the fetchers depend on.
type Requester interface {
	Get(ctx context.Context, path string, query url.Values) (*Response, error)
}

type moreSignal int

const (
	signalAbsent moreSignal = iota
	signalMore
	signalDone
)

// Page is one decoded page of results.
type Page struct {
	Records []json.RawMessage
	signal  moreSignal
	next    string
}

// ParsePage accepts either a bare JSON array or an object carrying the
// records under resultsKey and, optionally, a next-page signal under nextKey.
func ParsePage(path string, body json.RawMessage, resultsKey, nextKey string) (Page, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return Page{}, &UpstreamError{Path: path, Message: "empty response body"}
	}

	switch trimmed[0] {
	case '[':
		var records []json.RawMessage
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return Page{}, &UpstreamError{Path: path, Message: "unexpected response format: " + err.Error()}
		}
		return Page{Records: records}, nil
	case '{':
	default:
		return Page{}, &UpstreamError{Path: path, Message: "unexpected response format"}
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return Page{}, &UpstreamError{Path: path, Message: "unexpected response format: " + err.Error()}
	}

	var page Page
	if raw, ok := envelope[resultsKey]; ok && !isNull(raw) {
		if err := json.Unmarshal(raw, &page.Records); err != nil {
			return Page{}, &UpstreamError{Path: path, Message: "results is not an array"}
		}
	} else if !ok {
		log.Printf("Fable client: response from %s has no %q field, treating as empty page", path, resultsKey)
	}

	if nextKey != "" {
		if raw, ok := envelope[nextKey]; ok {
			page.signal, page.next = decodeSignal(raw)
		}
	}
	return page, nil
}

func decodeSignal(raw json.RawMessage) (moreSignal, string) {
	if isNull(raw) {
		return signalDone, ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if strings.TrimSpace(s) == "" {
			return signalDone, ""
		}
		return signalMore, s
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		if b {
			return signalMore, ""
		}
		return signalDone, ""
	}
	return signalAbsent, ""
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// Paginator walks every page of an endpoint and yields raw records in order.
// It is single-use: once Next returns false it stays exhausted.
//
//	p := NewPaginator(client, endpoint, policy, maxPages)
//	for p.Next(ctx) {
//		use(p.Record())
//	}
//	if err := p.Err(); err != nil { ... }
type Paginator struct {
	client   Requester
	endpoint Endpoint
	retry    RetryPolicy
	maxPages int

	buffer  []json.RawMessage
	current json.RawMessage
	pages   int
	records int
	offset  int
	nextURL string
	done    bool
	err     error
}

// NewPaginator prepares a walk over endpoint. maxPages <= 0 uses DefaultMaxPages.
func NewPaginator(client Requester, endpoint Endpoint, retry RetryPolicy, maxPages int) *Paginator {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	return &Paginator{
		client:   client,
		endpoint: endpoint.withDefaults(),
		retry:    retry,
		maxPages: maxPages,
	}
}

// Next advances to the next record, fetching pages as needed.
func (p *Paginator) Next(ctx context.Context) bool {
	for len(p.buffer) == 0 {
		if p.done || p.err != nil {
			p.current = nil
			return false
		}
		if p.pages >= p.maxPages {
			p.err = &PaginationExhaustedError{Path: p.endpoint.Path, Pages: p.pages, Records: p.records}
			p.current = nil
			return false
		}
		p.fetch(ctx)
	}

	p.current = p.buffer[0]
	p.buffer = p.buffer[1:]
	p.records++
	return true
}

// Record returns the record Next advanced to.
func (p *Paginator) Record() json.RawMessage {
	return p.current
}

// Err returns the error that stopped the walk, if any. A
// *PaginationExhaustedError means every record yielded so far is still valid.
func (p *Paginator) Err() error {
	return p.err
}

// Pages returns how many pages were fetched.
func (p *Paginator) Pages() int {
	return p.pages
}

func (p *Paginator) fetch(ctx context.Context) {
	path, query := p.request()

	resp, err := Retry(ctx, p.retry, func(ctx context.Context) (*Response, error) {
		return p.client.Get(ctx, path, query)
	})
	if err != nil {
		p.err = err
		return
	}

	page, err := ParsePage(p.endpoint.Path, resp.Body, p.endpoint.ResultsKey, p.endpoint.NextKey)
	if err != nil {
		p.err = err
		return
	}
	p.pages++
	p.buffer = page.Records

	n := len(page.Records)
	switch {
	case n == 0:
		p.done = true
	case page.signal == signalDone:
		p.done = true
	case p.endpoint.Style == PaginationCursor:
		if page.next == "" {
			p.done = true
		}
		p.nextURL = page.next
	case n < p.endpoint.PageSize:
		p.done = true
	default:
		// A full page is always followed by another request, even if that
		// one comes back empty: stopping here could silently truncate.
		p.offset += p.endpoint.PageSize
	}
}

func (p *Paginator) request() (string, url.Values) {
	query := url.Values{}
	for key, values := range p.endpoint.Query {
		query[key] = append([]string(nil), values...)
	}

	switch p.endpoint.Style {
	case PaginationCursor:
		if p.nextURL != "" {
			return p.nextURL, nil
		}
		if p.endpoint.PageSize > 0 {
			query.Set(p.endpoint.LimitParam, strconv.Itoa(p.endpoint.PageSize))
		}
	case PaginationPage:
		page := p.endpoint.FirstPage + p.offset/p.endpoint.PageSize
		query.Set(p.endpoint.PageParam, strconv.Itoa(page))
		query.Set(p.endpoint.LimitParam, strconv.Itoa(p.endpoint.PageSize))
	default:
		query.Set(p.endpoint.OffsetParam, strconv.Itoa(p.offset))
		query.Set(p.endpoint.LimitParam, strconv.Itoa(p.endpoint.PageSize))
	}
	return p.endpoint.Path, query
}

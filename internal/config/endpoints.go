package config

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/mrlokans/fable-exporter/internal/fable"
)

// EndpointOverride replaces parts of one built-in endpoint descriptor and is
// read from the "endpoints" section of the config file. Empty fields keep the
// built-in value. Page sizes stay on FABLE_BOOKS_PAGE_SIZE and
// FABLE_REVIEWS_PAGE_SIZE so there is a single place to set them.
//
//	endpoints:
//	  owned:
//	    path: /api/v2/books/owned/
//	    next_key: next
//	  books:
//	    style: page
//	    page_param: p
//	    first_page: 1
type EndpointOverride struct {
	Path        string            `mapstructure:"path"`
	Query       map[string]string `mapstructure:"query"` // replaces the static query when set
	Style       string            `mapstructure:"style" validate:"omitempty,oneof=offset page cursor"`
	OffsetParam string            `mapstructure:"offset_param"`
	LimitParam  string            `mapstructure:"limit_param"`
	PageParam   string            `mapstructure:"page_param"`
	FirstPage   *int              `mapstructure:"first_page" validate:"omitempty,gte=1"`
	ResultsKey  string            `mapstructure:"results_key"`
	NextKey     *string           `mapstructure:"next_key"` // "" removes the signal
}

func (o EndpointOverride) apply(endpoint *fable.Endpoint) {
	if o.Path != "" {
		endpoint.Path = o.Path
	}
	if o.Query != nil {
		query := make(url.Values, len(o.Query))
		for key, value := range o.Query {
			query.Set(key, value)
		}
		endpoint.Query = query
	}
	if o.Style != "" {
		endpoint.Style = fable.PaginationStyle(o.Style)
	}
	if o.OffsetParam != "" {
		endpoint.OffsetParam = o.OffsetParam
	}
	if o.LimitParam != "" {
		endpoint.LimitParam = o.LimitParam
	}
	if o.PageParam != "" {
		endpoint.PageParam = o.PageParam
	}
	if o.FirstPage != nil {
		endpoint.FirstPage = *o.FirstPage
	}
	if o.ResultsKey != "" {
		endpoint.ResultsKey = o.ResultsKey
	}
	if o.NextKey != nil {
		endpoint.NextKey = *o.NextKey
	}
}

func endpointByName(endpoints *fable.Endpoints, name string) *fable.Endpoint {
	switch name {
	case "lists":
		return &endpoints.Lists
	case "books":
		return &endpoints.Books
	case "reviews":
		return &endpoints.Reviews
	case "legacy_reviews":
		return &endpoints.LegacyReviews
	case "owned":
		return &endpoints.Owned
	default:
		return nil
	}
}

func checkEndpointNames(overrides map[string]EndpointOverride) error {
	var unknown []string
	var scratch fable.Endpoints
	for name := range overrides {
		if endpointByName(&scratch, name) == nil {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return fmt.Errorf("unknown endpoints in config file: %s (want lists, books, reviews, legacy_reviews or owned)",
		strings.Join(unknown, ", "))
}

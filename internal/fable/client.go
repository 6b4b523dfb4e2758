package fable

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://api.fable.co"

	defaultTimeout   = 10 * time.Second
	userAgent        = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	webOrigin        = "https://fable.co"
	maxErrorBodySize = 512
)

// ClientOptions tunes the HTTP session. Zero values fall back to defaults.
type ClientOptions struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64 // <= 0 disables pacing
	HTTPClient        *http.Client
}

// Client is an authenticated session against the Fable API.
// It holds no mutable state besides the rate limiter and is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	userID     string
	authHeader string
	timeout    time.Duration
	limiter    *rate.Limiter
}

// Response is a successful, JSON-parsed reply.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       json.RawMessage
}

// NewClient creates a session for the given user credentials.
func NewClient(userID, token string, opts ClientOptions) (*Client, error) {
	userID = strings.TrimSpace(userID)
	token = NormalizeToken(token)
	if userID == "" {
		return nil, errors.New("fable: user id is required")
	}
	if token == "" {
		return nil, errors.New("fable: auth token is required")
	}

	base := opts.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	baseURL, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return nil, fmt.Errorf("fable: invalid base URL %q: %w", base, err)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		userID:     userID,
		authHeader: "JWT " + token,
		timeout:    timeout,
		limiter:    rate.NewLimiter(limit, 1),
	}, nil
}

// NormalizeToken strips an accidentally pasted scheme prefix.
func NormalizeToken(token string) string {
	token = strings.TrimSpace(token)
	for _, prefix := range []string{"JWT ", "Token ", "Bearer "} {
		if strings.HasPrefix(token, prefix) {
			return strings.TrimSpace(token[len(prefix):])
		}
	}
	return token
}

func (c *Client) UserID() string {
	return c.userID
}

// Get is shorthand for Request with http.MethodGet.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Request(ctx, http.MethodGet, path, query)
}

// Request issues one call and maps failures onto the error taxonomy.
// path is either relative to the base URL or an absolute URL (as returned in "next" links)
// on the base URL's host.
// Each call is bounded by the client timeout; expiry becomes a TransportError.
func (c *Client) Request(ctx context.Context, method, path string, query url.Values) (*Response, error) {
	u, err := c.resolve(path, query)
	if err != nil {
		return nil, &UpstreamError{Path: path, Message: err.Error()}
	}
	reqPath := u.Path

	if err := c.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &TransportError{Path: reqPath, Err: err}
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, method, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Referer", webOrigin+"/")
	req.Header.Set("Origin", webOrigin)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Caller cancellation is not a transport problem and must not be retried.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &TransportError{Path: reqPath, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &AuthError{Path: reqPath, StatusCode: resp.StatusCode}
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &RateLimitError{
			Path:       reqPath,
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return nil, &UpstreamError{Path: reqPath, StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &TransportError{Path: reqPath, Err: fmt.Errorf("reading body: %w", err)}
	}
	if !json.Valid(body) {
		return nil, &UpstreamError{Path: reqPath, StatusCode: resp.StatusCode, Message: "response is not valid JSON"}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       json.RawMessage(body),
	}, nil
}

func (c *Client) resolve(path string, query url.Values) (*url.URL, error) {
	var u *url.URL
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		parsed, err := url.Parse(path)
		if err != nil {
			return nil, err
		}
		// The session token is only ever sent to the configured API host.
		if !strings.EqualFold(parsed.Host, c.baseURL.Host) {
			return nil, fmt.Errorf("refusing to follow link to foreign host %q", parsed.Host)
		}
		u = parsed
	} else {
		ref, err := url.Parse(path)
		if err != nil {
			return nil, err
		}
		joined := *c.baseURL
		joined.Path = c.baseURL.Path + "/" + strings.TrimLeft(ref.Path, "/")
		joined.RawQuery = ref.RawQuery
		u = &joined
	}

	if len(query) > 0 {
		q := u.Query()
		for key, values := range query {
			q.Del(key)
			for _, v := range values {
				q.Add(key, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u, nil
}

func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}

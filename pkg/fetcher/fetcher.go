package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-specform/pkg/schema"
)

// DefaultEndpoint is the lookup path used when no endpoint is configured.
const DefaultEndpoint = "/products/api/category-attributes"

// maxPayloadBytes bounds the lookup response body.
const maxPayloadBytes = 4 << 20

// Fetcher resolves the attribute schema for a category.
type Fetcher interface {
	FetchSchema(ctx context.Context, categoryID string) (schema.Schema, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, categoryID string) (schema.Schema, error)

// FetchSchema implements Fetcher.
func (f FetcherFunc) FetchSchema(ctx context.Context, categoryID string) (schema.Schema, error) {
	return f(ctx, categoryID)
}

// Option customises an HTTPFetcher.
type Option func(*HTTPFetcher)

// WithEndpoint sets the lookup base URL; the category id and a trailing slash
// are appended per request.
func WithEndpoint(endpoint string) Option {
	return func(f *HTTPFetcher) {
		if trimmed := strings.TrimSpace(endpoint); trimmed != "" {
			f.endpoint = trimmed
		}
	}
}

// WithHTTPClient injects the client used for lookups.
func WithHTTPClient(client *http.Client) Option {
	return func(f *HTTPFetcher) {
		if client != nil {
			f.client = client
		}
	}
}

// WithTimeout bounds each lookup request. Zero leaves the client default.
func WithTimeout(timeout time.Duration) Option {
	return func(f *HTTPFetcher) {
		f.timeout = timeout
	}
}

// WithContractValidation checks payloads against the embedded lookup contract
// before decoding.
func WithContractValidation(enabled bool) Option {
	return func(f *HTTPFetcher) {
		f.validate = enabled
	}
}

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *HTTPFetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// HTTPFetcher implements Fetcher against the JSON lookup endpoint.
type HTTPFetcher struct {
	endpoint string
	client   *http.Client
	timeout  time.Duration
	validate bool
	logger   *slog.Logger
}

var _ Fetcher = (*HTTPFetcher)(nil)

// New constructs an HTTPFetcher applying any provided options.
func New(options ...Option) *HTTPFetcher {
	f := &HTTPFetcher{
		endpoint: DefaultEndpoint,
		client:   http.DefaultClient,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(f)
	}
	return f
}

// URL returns the lookup URL for a category.
func (f *HTTPFetcher) URL(categoryID string) string {
	return strings.TrimRight(f.endpoint, "/") + "/" + url.PathEscape(categoryID) + "/"
}

// FetchSchema issues a GET for the category and decodes the grouped schema.
func (f *HTTPFetcher) FetchSchema(ctx context.Context, categoryID string) (schema.Schema, error) {
	categoryID = strings.TrimSpace(categoryID)
	if categoryID == "" {
		return nil, ErrCategoryRequired
	}
	if ctx == nil {
		return nil, errors.New("fetcher: context is required")
	}

	reqCtx := ctx
	var cancel context.CancelFunc
	if f.timeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	target := f.URL(categoryID)
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, target, nil)
	if err != nil {
		return nil, failure(categoryID, FailureNetwork, 0, err)
	}
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Warn("schema fetch failed", "category", categoryID, "url", target, "error", err)
		return nil, failure(categoryID, FailureNetwork, 0, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		f.logger.Warn("schema fetch rejected", "category", categoryID, "url", target, "status", resp.StatusCode)
		return nil, failure(categoryID, FailureStatus, resp.StatusCode, fmt.Errorf("unexpected status %s", resp.Status))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		return nil, failure(categoryID, FailureNetwork, resp.StatusCode, err)
	}

	if f.validate {
		if err := schema.ValidatePayload(data); err != nil {
			f.logger.Warn("schema payload violates contract", "category", categoryID, "error", err)
			return nil, failure(categoryID, FailureMalformed, resp.StatusCode, err)
		}
	}

	groups, err := schema.Decode(data)
	if err != nil {
		f.logger.Warn("schema payload malformed", "category", categoryID, "error", err)
		return nil, failure(categoryID, FailureMalformed, resp.StatusCode, err)
	}

	f.logger.Debug("schema fetched",
		"category", categoryID,
		"groups", len(groups),
		"attributes", groups.Len(),
		"elapsed", time.Since(started),
	)
	return groups, nil
}

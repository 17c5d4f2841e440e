// Package document downloads identity documents referenced by submissions.
package document

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"time"

	"github.com/go-resty/resty/v2"

	"tallybridge/internal/onboarding"
	"tallybridge/pkg/platform/sentinel"
)

// DefaultMaxSize matches the payments provider's upload limit for identity documents.
const DefaultMaxSize = 10 << 20

// Fetcher implements onboarding.DocumentFetcher over resty.
type Fetcher struct {
	client  *resty.Client
	maxSize int64
	logger  *slog.Logger
}

var _ onboarding.DocumentFetcher = (*Fetcher)(nil)

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithMaxSize caps the accepted document size in bytes.
func WithMaxSize(n int64) Option {
	return func(f *Fetcher) {
		f.maxSize = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = resty.NewWithClient(c)
	}
}

// New builds a fetcher with the given request timeout.
func New(timeout time.Duration, opts ...Option) *Fetcher {
	f := &Fetcher{
		client:  resty.New(),
		maxSize: DefaultMaxSize,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.client.SetTimeout(timeout).SetRetryCount(0)
	return f
}

// Fetch downloads url. A non-2xx answer is a RemoteError; a body larger than
// the size cap is rejected before upload.
func (f *Fetcher) Fetch(ctx context.Context, url string) (onboarding.IdentityDocument, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return onboarding.IdentityDocument{}, fmt.Errorf("fetch identity document: %w: %w", sentinel.ErrUnavailable, err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.IsError() {
		return onboarding.IdentityDocument{}, &onboarding.RemoteError{
			Provider:   "document-host",
			StatusCode: resp.StatusCode(),
			Message:    resp.Status(),
		}
	}

	content, err := io.ReadAll(io.LimitReader(body, f.maxSize+1))
	if err != nil {
		return onboarding.IdentityDocument{}, fmt.Errorf("read identity document: %w", err)
	}
	if int64(len(content)) > f.maxSize {
		return onboarding.IdentityDocument{}, &onboarding.RemoteError{
			Provider:   "document-host",
			StatusCode: resp.StatusCode(),
			Code:       "document_too_large",
			Message:    fmt.Sprintf("identity document exceeds %d bytes", f.maxSize),
		}
	}

	doc := onboarding.IdentityDocument{
		Filename:    filenameFrom(resp.Header().Get("Content-Disposition"), resp.Request.RawRequest.URL.Path),
		ContentType: mediaType(resp.Header().Get("Content-Type")),
		Content:     content,
	}
	f.logger.DebugContext(ctx, "identity document fetched",
		"bytes", len(content),
		"content_type", doc.ContentType,
	)
	return doc, nil
}

func filenameFrom(disposition, urlPath string) string {
	if _, params, err := mime.ParseMediaType(disposition); err == nil && params["filename"] != "" {
		return params["filename"]
	}
	if base := path.Base(urlPath); base != "/" && base != "." {
		return base
	}
	return ""
}

func mediaType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil || mt == "application/octet-stream" {
		return ""
	}
	return mt
}

// Package errreport sends failures that need an operator to Sentry.
package errreport

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"

	"tallybridge/pkg/requestcontext"
)

// Reporter captures errors with tags. A Reporter without a DSN, or a nil
// Reporter, discards everything.
type Reporter struct {
	client *sentry.Client
}

// New builds a reporter from Sentry client options. An empty DSN yields a
// disabled reporter.
func New(opts sentry.ClientOptions) (*Reporter, error) {
	if opts.Dsn == "" {
		return &Reporter{}, nil
	}
	opts.AttachStacktrace = true
	client, err := sentry.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("init sentry client: %w", err)
	}
	return &Reporter{client: client}, nil
}

// Enabled reports whether captured errors leave the process.
func (r *Reporter) Enabled() bool {
	return r != nil && r.client != nil
}

// CaptureFailure reports err with the given tags and the request id.
func (r *Reporter) CaptureFailure(ctx context.Context, err error, tags map[string]string) {
	if !r.Enabled() || err == nil {
		return
	}
	hub := sentry.NewHub(r.client, sentry.NewScope())
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(sentry.LevelError)
		scope.SetTags(tags)
		if id := requestcontext.RequestID(ctx); id != "" {
			scope.SetTag("request_id", id)
		}
		hub.CaptureException(err)
	})
}

// Flush waits for buffered events to be sent.
func (r *Reporter) Flush(timeout time.Duration) bool {
	if !r.Enabled() {
		return true
	}
	return r.client.Flush(timeout)
}

package ratelimit

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"tallybridge/pkg/platform/httputil"
	"tallybridge/pkg/requestcontext"
)

// ExceededResponse is the 429 body.
type ExceededResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retry_after"`
}

// Limiter applies one limit per client IP.
type Limiter struct {
	store          *Store
	limit          int
	window         time.Duration
	logger         *slog.Logger
	trustForwarded bool
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithTrustForwarded keys the limit on the proxy-reported client IP
// (X-Forwarded-For, X-Real-IP). Only enable it behind a proxy that
// overwrites those headers.
func WithTrustForwarded(trust bool) Option {
	return func(l *Limiter) {
		l.trustForwarded = trust
	}
}

// New returns nil when limit is not positive; a nil Limiter lets everything
// through.
func New(store *Store, limit int, window time.Duration, logger *slog.Logger, opts ...Option) *Limiter {
	if limit <= 0 || window <= 0 {
		return nil
	}
	l := &Limiter{store: store, limit: limit, window: window, logger: logger}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// clientKey is the socket peer unless forwarded headers are trusted, in
// which case it is the IP stored by the metadata middleware.
func (l *Limiter) clientKey(r *http.Request) string {
	if l.trustForwarded {
		if ip := requestcontext.ClientIP(r.Context()); ip != "" {
			return ip
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// Middleware rejects requests over the limit with 429. With
// WithTrustForwarded the metadata middleware must run first.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	if l == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ip := l.clientKey(r)
		result := l.store.Allow(ip, l.limit, l.window)

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			if l.logger != nil {
				l.logger.WarnContext(ctx, "rate limit exceeded",
					"client_ip", ip,
					"path", r.URL.Path,
					"request_id", requestcontext.RequestID(ctx),
				)
			}
			w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
			httputil.WriteJSON(w, http.StatusTooManyRequests, &ExceededResponse{
				Error:      "rate_limit_exceeded",
				Message:    "Too many submissions from this IP address. Please try again later.",
				RetryAfter: result.RetryAfter,
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RunSweeper periodically drops idle windows until ctx is done.
func (l *Limiter) RunSweeper(ctx context.Context, every time.Duration) error {
	if l == nil {
		return nil
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			l.store.Sweep(l.window)
		}
	}
}

package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"tallybridge/internal/platform/errreport"
	"tallybridge/pkg/platform/httputil"
	"tallybridge/pkg/requestcontext"
)

// Recover turns a panic into a 500 response, logs the stack and reports it.
func Recover(logger *slog.Logger, reporter *errreport.Reporter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				err := fmt.Errorf("panic: %v", rec)
				logger.ErrorContext(r.Context(), "recovered from panic",
					"request_id", requestcontext.RequestID(r.Context()),
					"error", err,
					"stack", string(debug.Stack()),
				)
				reporter.CaptureFailure(r.Context(), err, map[string]string{"route": r.URL.Path})
				httputil.WriteError(w, err)
			}()
			next.ServeHTTP(w, r)
		})
	}
}

package httpserver

import (
	"net/http"
	"time"
)

// New builds an HTTP server. The write timeout covers a full onboarding run,
// which makes seven sequential remote calls.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      3 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}
}

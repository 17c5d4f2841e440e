// Package stripe implements the onboarding payments port on stripe-go.
package stripe

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	stripesdk "github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/client"

	"tallybridge/internal/onboarding"
)

const providerName = "stripe"

// Config holds the credentials and endpoints of the payments API. Empty URLs
// select the stripe-go defaults.
type Config struct {
	PublicKey  string
	SecretKey  string
	APIURL     string
	UploadsURL string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client implements onboarding.Payments. Tokens are created with the public
// key, every other call uses the secret key. Network retries are disabled.
type Client struct {
	public *client.API
	secret *client.API
	logger *slog.Logger
}

var _ onboarding.Payments = (*Client)(nil)

// New builds both API clients.
func New(cfg Config) (*Client, error) {
	if cfg.PublicKey == "" || cfg.SecretKey == "" {
		return nil, errors.New("stripe client requires a public and a secret key")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	backends := newBackends(cfg)
	return &Client{
		public: newAPI(cfg.PublicKey, backends),
		secret: newAPI(cfg.SecretKey, backends),
		logger: cfg.Logger,
	}, nil
}

func newAPI(key string, backends *stripesdk.Backends) *client.API {
	api := &client.API{}
	api.Init(key, backends)
	return api
}

func newBackends(cfg Config) *stripesdk.Backends {
	backendConfig := func(url string) *stripesdk.BackendConfig {
		bc := &stripesdk.BackendConfig{
			HTTPClient:        cfg.HTTPClient,
			LeveledLogger:     leveledLogger{logger: cfg.Logger},
			MaxNetworkRetries: stripesdk.Int64(0),
		}
		if url != "" {
			bc.URL = stripesdk.String(url)
		}
		return bc
	}
	return &stripesdk.Backends{
		API:     stripesdk.GetBackendWithConfig(stripesdk.APIBackend, backendConfig(cfg.APIURL)),
		Connect: stripesdk.GetBackendWithConfig(stripesdk.ConnectBackend, backendConfig("")),
		Uploads: stripesdk.GetBackendWithConfig(stripesdk.UploadsBackend, backendConfig(cfg.UploadsURL)),
	}
}

// remoteError converts an API error payload into the port's RemoteError and
// leaves anything else (network, timeout, cancellation) untouched.
func remoteError(op string, err error) error {
	var se *stripesdk.Error
	if errors.As(err, &se) {
		return &onboarding.RemoteError{
			Provider:   providerName,
			StatusCode: se.HTTPStatusCode,
			Type:       string(se.Type),
			Code:       string(se.Code),
			Message:    se.Msg,
			RequestID:  se.RequestID,
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// leveledLogger routes stripe-go's internal logging to slog at debug and
// above. Request bodies are not part of stripe-go's log output.
type leveledLogger struct {
	logger *slog.Logger
}

func (l leveledLogger) Debugf(format string, v ...any) {
	l.logger.Debug(fmt.Sprintf(format, v...), "component", providerName)
}

func (l leveledLogger) Infof(format string, v ...any) {
	l.logger.Debug(fmt.Sprintf(format, v...), "component", providerName)
}

func (l leveledLogger) Warnf(format string, v ...any) {
	l.logger.Warn(fmt.Sprintf(format, v...), "component", providerName)
}

func (l leveledLogger) Errorf(format string, v ...any) {
	l.logger.Warn(fmt.Sprintf(format, v...), "component", providerName)
}

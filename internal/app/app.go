// Package app assembles the submission services from configuration. Both the
// server and the operator CLI build their components here.
package app

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"tallybridge/internal/audit"
	"tallybridge/internal/fieldmap"
	"tallybridge/internal/onboarding"
	onboardingmetrics "tallybridge/internal/onboarding/metrics"
	"tallybridge/internal/payments/document"
	"tallybridge/internal/payments/stripe"
	"tallybridge/internal/platform/config"
	"tallybridge/internal/platform/errreport"
	"tallybridge/internal/platform/metrics"
	"tallybridge/internal/registration"
)

// Deps are the process-wide collaborators shared by every service.
type Deps struct {
	Logger     *slog.Logger
	Registerer prometheus.Registerer
	Reporter   *errreport.Reporter
	Events     audit.Sink
	Metrics    *metrics.Metrics
}

func (d Deps) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return d.Logger
}

func (d Deps) publisher() *audit.Publisher {
	sink := d.Events
	if sink == nil {
		sink = audit.NewLogSink(d.logger())
	}
	return audit.NewPublisher(sink, audit.WithLogger(d.logger()))
}

// NewMapper loads the field dictionaries from FIELD_MAP_FILE when set and
// falls back to the built-in question ids.
func NewMapper(cfg config.Config, logger *slog.Logger) (*fieldmap.Mapper, error) {
	dicts := fieldmap.DefaultDictionaries()
	if cfg.Server.FieldMapFile != "" {
		loaded, err := fieldmap.LoadDictionaries(cfg.Server.FieldMapFile)
		if err != nil {
			return nil, fmt.Errorf("load field map: %w", err)
		}
		dicts = loaded
	}
	return fieldmap.New(dicts, fieldmap.WithLogger(logger))
}

// NewOnboarding wires the payments client, the document fetcher, the
// sequencer and the submission service. Both payments keys are required.
func NewOnboarding(cfg config.Config, mapper *fieldmap.Mapper, deps Deps) (*onboarding.Service, error) {
	if err := cfg.RequireStripe(); err != nil {
		return nil, err
	}
	logger := deps.logger()
	payments, err := stripe.New(stripe.Config{
		PublicKey:  cfg.Stripe.PublicKey,
		SecretKey:  cfg.Stripe.SecretKey,
		APIURL:     cfg.Stripe.APIURL,
		UploadsURL: cfg.Stripe.UploadsURL,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("payments client: %w", err)
	}
	fetcher := document.New(cfg.Server.HTTPClientTimeout, document.WithLogger(logger))

	m := onboardingmetrics.New(deps.Registerer)
	seq := onboarding.NewSequencer(payments, fetcher,
		onboarding.WithSequencerLogger(logger),
		onboarding.WithMetrics(m),
		onboarding.WithUpdateCountry(cfg.Server.UpdateSendsCountry),
	)
	return onboarding.NewService(mapper, seq,
		onboarding.WithLogger(logger),
		onboarding.WithPublisher(deps.publisher()),
		onboarding.WithReporter(deps.Reporter),
		onboarding.WithServiceMetrics(m),
	), nil
}

// NewRegistration wires the secondary registration notifier and service. A
// missing key is sent as is and the secondary API answers with its own status.
func NewRegistration(cfg config.Config, mapper *fieldmap.Mapper, deps Deps) *registration.Service {
	logger := deps.logger()
	notifier := registration.NewHTTPNotifier(registration.NotifierConfig{
		BaseURL: cfg.Bubble.BaseURL,
		TestKey: cfg.Bubble.TestKey,
		LiveKey: cfg.Bubble.LiveKey,
		Timeout: cfg.Server.HTTPClientTimeout,
		Logger:  logger,

		BreakerThreshold: cfg.Bubble.BreakerThreshold,
		BreakerCooldown:  cfg.Bubble.BreakerCooldown,
	})
	return registration.NewService(mapper, notifier,
		registration.WithLogger(logger),
		registration.WithPublisher(deps.publisher()),
		registration.WithMetrics(deps.Metrics),
	)
}

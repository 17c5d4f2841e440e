package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"tallybridge/internal/app"
	"tallybridge/internal/audit"
	"tallybridge/internal/platform/config"
	"tallybridge/internal/platform/errreport"
	"tallybridge/internal/platform/httpserver"
	"tallybridge/internal/platform/logger"
	"tallybridge/internal/platform/metrics"
	"tallybridge/internal/ratelimit"
	httptransport "tallybridge/internal/transport/http"
)

const (
	shutdownTimeout = 10 * time.Second
	eventBufferSize = 256
	sweepInterval   = 5 * time.Minute
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "tallybridge: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	log := logger.New(cfg.Server.LogLevel, cfg.Server.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := metrics.New(reg)

	reporter, err := errreport.New(sentry.ClientOptions{
		Dsn:         cfg.SentryDSN,
		Environment: cfg.Server.Environment,
	})
	if err != nil {
		return fmt.Errorf("error reporting: %w", err)
	}
	defer reporter.Flush(2 * time.Second)

	events, err := eventSink(ctx, cfg, log)
	if err != nil {
		return err
	}
	buffer := audit.NewBuffer(eventBufferSize, log, audit.WithDrainTimeout(shutdownTimeout))
	deps := app.Deps{
		Logger:     log,
		Registerer: reg,
		Reporter:   reporter,
		Events:     buffer,
		Metrics:    httpMetrics,
	}

	mapper, err := app.NewMapper(cfg, log)
	if err != nil {
		return err
	}
	onboardingSvc, err := app.NewOnboarding(cfg, mapper, deps)
	if err != nil {
		return err
	}
	registrationSvc := app.NewRegistration(cfg, mapper, deps)

	handler := httptransport.NewHandler(onboardingSvc, registrationSvc,
		httptransport.WithLogger(log),
		httptransport.WithMetrics(httpMetrics),
	)
	limiter := ratelimit.New(ratelimit.NewStore(), cfg.Server.RateLimitPerMinute, time.Minute, log,
		ratelimit.WithTrustForwarded(cfg.Server.TrustForwardedFor))
	router := httptransport.NewRouter(handler, httptransport.RouterDeps{
		Logger:      log,
		Metrics:     httpMetrics,
		Reporter:    reporter,
		Gatherer:    reg,
		RateLimiter: limiter,
	})
	srv := httpserver.New(cfg.Server.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return buffer.Run(gctx, events)
	})
	g.Go(func() error {
		return limiter.RunSweeper(gctx, sweepInterval)
	})
	g.Go(func() error {
		log.Info("starting tallybridge", "addr", cfg.Server.Addr, "env", cfg.Server.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})

	err = g.Wait()
	if closer, ok := events.(*audit.KafkaSink); ok {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if cerr := closer.Close(closeCtx); cerr != nil {
			log.Error("closing event sink", "error", cerr)
		}
	}
	return err
}

// eventSink selects Kafka when brokers are configured and the log otherwise.
func eventSink(ctx context.Context, cfg config.Config, log *slog.Logger) (audit.Sink, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return audit.NewLogSink(log), nil
	}
	sink, err := audit.NewKafkaSink(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic)
	if err != nil {
		return nil, fmt.Errorf("kafka sink: %w", err)
	}
	log.Info("publishing outcome events to kafka", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	return sink, nil
}

package onboarding

import (
	"context"
	"io"
	"log/slog"
	"strconv"

	"tallybridge/internal/audit"
	"tallybridge/internal/fieldmap"
	"tallybridge/internal/onboarding/metrics"
	"tallybridge/internal/submission"
	dErrors "tallybridge/pkg/domain-errors"
	"tallybridge/pkg/requestcontext"
)

// Mapper turns submitted fields into the two records.
type Mapper interface {
	Map(fields []submission.FormField) (fieldmap.OrganizationRecord, fieldmap.PersonRecord, error)
}

// EventPublisher records submission outcomes.
type EventPublisher interface {
	Publish(ctx context.Context, event audit.Event) error
}

// ErrorReporter forwards failures that need an operator.
type ErrorReporter interface {
	CaptureFailure(ctx context.Context, err error, tags map[string]string)
}

// Outcome labels for the outcomes metric.
const (
	outcomeSuccess  = "success"
	outcomeFailure  = "failure"
	outcomeRejected = "rejected"
)

// Service handles one submission end to end: mapping, the pipeline, the
// outcome event and failure reporting.
type Service struct {
	mapper    Mapper
	sequencer *Sequencer
	publisher EventPublisher
	reporter  ErrorReporter
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithPublisher sets the outcome event publisher.
func WithPublisher(p EventPublisher) ServiceOption {
	return func(s *Service) {
		s.publisher = p
	}
}

// WithReporter sets the error reporter.
func WithReporter(r ErrorReporter) ServiceOption {
	return func(s *Service) {
		s.reporter = r
	}
}

// WithServiceMetrics sets the metrics collector used for outcomes.
func WithServiceMetrics(m *metrics.Metrics) ServiceOption {
	return func(s *Service) {
		s.metrics = m
	}
}

func NewService(mapper Mapper, sequencer *Sequencer, opts ...ServiceOption) *Service {
	s := &Service{
		mapper:    mapper,
		sequencer: sequencer,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit maps the submission and runs the pipeline. Input errors are returned
// as errors before any remote call; pipeline failures are reported in the Result.
func (s *Service) Submit(ctx context.Context, env *submission.Envelope) (Result, error) {
	if env == nil {
		return Result{}, dErrors.New(dErrors.CodeBadRequest, "submission is required")
	}
	base := audit.Event{
		SubmissionID: env.Data.ResponseID,
		FormID:       env.Data.FormID,
		Timestamp:    requestcontext.Now(ctx).UTC(),
	}

	org, person, err := s.mapper.Map(env.Data.Fields)
	if err != nil {
		s.metrics.IncrementOutcome(outcomeRejected)
		s.logger.InfoContext(ctx, "submission rejected",
			"request_id", requestcontext.RequestID(ctx),
			"submission_id", env.Data.ResponseID,
			"error", err,
		)
		ev := base
		ev.Action = audit.ActionSubmissionRejected
		ev.ErrorKind = string(KindInput)
		ev.Reason = dErrors.MessageOf(err)
		s.publish(ctx, ev)
		return Result{}, err
	}

	res := s.sequencer.Onboard(ctx, org, person)

	ev := base
	ev.AccountID = res.AccountID
	ev.Completed = stepNames(res.CompletedSteps)
	if res.Success {
		s.metrics.IncrementOutcome(outcomeSuccess)
		ev.Action = audit.ActionOnboardingSucceeded
		s.publish(ctx, ev)
		return res, nil
	}

	s.metrics.IncrementOutcome(outcomeFailure)
	if res.Orphaned() {
		s.metrics.IncrementOrphaned()
		s.logger.WarnContext(ctx, "payments account left without completed onboarding",
			"request_id", requestcontext.RequestID(ctx),
			"account_id", res.AccountID,
			"failed_step", res.FailedStep,
		)
	}
	s.report(ctx, env, res)

	ev.Action = audit.ActionOnboardingFailed
	ev.FailedStep = string(res.FailedStep)
	ev.ErrorKind = string(res.Kind)
	ev.Orphaned = res.Orphaned()
	s.publish(ctx, ev)
	return res, nil
}

func (s *Service) report(ctx context.Context, env *submission.Envelope, res Result) {
	if s.reporter == nil || res.Cause == nil {
		return
	}
	s.reporter.CaptureFailure(ctx, res.Cause, map[string]string{
		"failed_step":   string(res.FailedStep),
		"error_kind":    string(res.Kind),
		"account_id":    res.AccountID,
		"orphaned":      strconv.FormatBool(res.Orphaned()),
		"submission_id": env.Data.ResponseID,
	})
}

func (s *Service) publish(ctx context.Context, ev audit.Event) {
	if s.publisher == nil {
		return
	}
	// failures are logged by the publisher and never change the response
	_ = s.publisher.Publish(ctx, ev)
}

func stepNames(steps []Step) []string {
	if len(steps) == 0 {
		return nil
	}
	out := make([]string, len(steps))
	for i, st := range steps {
		out[i] = string(st)
	}
	return out
}

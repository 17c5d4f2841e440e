package registration

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"tallybridge/internal/audit"
	"tallybridge/internal/fieldmap"
	"tallybridge/internal/platform/metrics"
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

// Service maps a submission and forwards the organization record.
type Service struct {
	mapper    Mapper
	notifier  Notifier
	publisher EventPublisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithPublisher(p EventPublisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func NewService(mapper Mapper, notifier Notifier, opts ...Option) *Service {
	s := &Service{
		mapper:   mapper,
		notifier: notifier,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register forwards the organization of env under accountID. Mapping errors
// come back unchanged; an unreachable secondary API is a bad gateway error.
// Any HTTP answer, successful or not, is returned as the result.
func (s *Service) Register(ctx context.Context, env *submission.Envelope, accountID string, isTest bool) (NotifyResult, error) {
	if strings.TrimSpace(accountID) == "" {
		return NotifyResult{}, dErrors.New(dErrors.CodeBadRequest, "account id is required")
	}
	if env == nil {
		return NotifyResult{}, dErrors.New(dErrors.CodeBadRequest, "submission is required")
	}

	org, _, err := s.mapper.Map(env.Data.Fields)
	if err != nil {
		return NotifyResult{}, err
	}

	version := VersionLive
	if isTest {
		version = VersionTest
	}
	ev := audit.Event{
		SubmissionID: env.Data.ResponseID,
		FormID:       env.Data.FormID,
		AccountID:    accountID,
		Environment:  version,
		Timestamp:    requestcontext.Now(ctx).UTC(),
	}

	res, err := s.notifier.Notify(ctx, isTest, org, accountID)
	if err != nil {
		s.metrics.IncrementRegistrations(strings.ToLower(version), "error")
		s.logger.ErrorContext(ctx, "secondary registration failed",
			"request_id", requestcontext.RequestID(ctx),
			"version", version,
			"account_id", accountID,
			"error", err,
		)
		ev.Action = audit.ActionRegistrationFailed
		ev.Reason = "transport"
		s.publish(ctx, ev)
		return NotifyResult{}, dErrors.Wrap(err, dErrors.CodeBadGateway, "secondary registration service is unreachable")
	}

	s.metrics.IncrementRegistrations(strings.ToLower(version), statusClass(res.Status))
	ev.StatusCode = res.Status
	ev.Action = audit.ActionRegistrationForwarded
	if !res.OK() {
		ev.Action = audit.ActionRegistrationFailed
		ev.Reason = res.StatusText
	}
	s.publish(ctx, ev)
	return res, nil
}

func (s *Service) publish(ctx context.Context, ev audit.Event) {
	if s.publisher != nil {
		_ = s.publisher.Publish(ctx, ev)
	}
}

func statusClass(status int) string {
	return fmt.Sprintf("%dxx", status/100)
}

package audit

import (
	"context"
	"log/slog"
)

// LogSink writes events as structured log records.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Append(ctx context.Context, event Event) error {
	s.logger.InfoContext(ctx, "audit event",
		"event_id", event.ID,
		"action", event.Action,
		"request_id", event.RequestID,
		"submission_id", event.SubmissionID,
		"form_id", event.FormID,
		"account_id", event.AccountID,
		"failed_step", event.FailedStep,
		"error_kind", event.ErrorKind,
		"orphaned", event.Orphaned,
		"environment", event.Environment,
		"status_code", event.StatusCode,
	)
	return nil
}

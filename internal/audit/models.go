package audit

import "time"

// Action names what happened to a submission.
type Action string

const (
	ActionSubmissionRejected    Action = "submission_rejected"
	ActionOnboardingSucceeded   Action = "onboarding_succeeded"
	ActionOnboardingFailed      Action = "onboarding_failed"
	ActionRegistrationForwarded Action = "registration_forwarded"
	ActionRegistrationFailed    Action = "registration_failed"
)

// Event records the outcome of handling one submission. It carries
// identifiers and classifications only, never submitted field values.
type Event struct {
	ID           string    `json:"id"`
	Action       Action    `json:"action"`
	Timestamp    time.Time `json:"timestamp"`
	RequestID    string    `json:"request_id,omitempty"`
	SubmissionID string    `json:"submission_id,omitempty"`
	FormID       string    `json:"form_id,omitempty"`
	AccountID    string    `json:"account_id,omitempty"`
	FailedStep   string    `json:"failed_step,omitempty"`
	ErrorKind    string    `json:"error_kind,omitempty"`
	Orphaned     bool      `json:"orphaned,omitempty"`
	Completed    []string  `json:"completed_steps,omitempty"`
	Environment  string    `json:"environment,omitempty"`
	StatusCode   int       `json:"status_code,omitempty"`
	Reason       string    `json:"reason,omitempty"`
}

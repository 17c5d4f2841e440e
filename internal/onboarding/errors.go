package onboarding

import (
	"context"
	"errors"
	"fmt"

	"tallybridge/internal/fieldmap"
)

// ErrorKind is the normalized failure taxonomy of a pipeline step.
type ErrorKind string

const (
	// KindInput means the submission lacked something a step needs.
	KindInput ErrorKind = "input"

	// KindRemote means the remote API answered with an error payload or without an id.
	KindRemote ErrorKind = "remote"

	// KindTransport means the call never produced an answer (network, timeout, cancellation).
	KindTransport ErrorKind = "transport"
)

// StepError is the failure of one pipeline step.
type StepError struct {
	Step       Step
	Kind       ErrorKind
	Message    string
	Underlying error
}

func (e *StepError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("step %s [%s]: %s: %v", e.Step, e.Kind, e.Message, e.Underlying)
	}
	return fmt.Sprintf("step %s [%s]: %s", e.Step, e.Kind, e.Message)
}

func (e *StepError) Unwrap() error {
	return e.Underlying
}

// RemoteError is returned by ports when a remote API rejected a call.
type RemoteError struct {
	Provider   string
	StatusCode int
	Type       string
	Code       string
	Message    string
	RequestID  string
}

func (e *RemoteError) Error() string {
	msg := fmt.Sprintf("%s rejected request (status %d", e.Provider, e.StatusCode)
	if e.Type != "" {
		msg += ", type " + e.Type
	}
	if e.Code != "" {
		msg += ", code " + e.Code
	}
	msg += ")"
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// ErrMissingID is used when a call succeeded but the response carried no identifier.
var ErrMissingID = errors.New("response carried no id")

// ErrMissingIdentityDocument is used when the person record has no identity file.
var ErrMissingIdentityDocument = errors.New("no identity document in submission")

// classify wraps a port error into a StepError.
func classify(step Step, err error) *StepError {
	var se *StepError
	if errors.As(err, &se) {
		return se
	}

	var remote *RemoteError
	switch {
	case errors.As(err, &remote):
		return &StepError{Step: step, Kind: KindRemote, Message: "remote api returned an error", Underlying: err}
	case errors.Is(err, ErrMissingID):
		return &StepError{Step: step, Kind: KindRemote, Message: "remote api returned no id", Underlying: err}
	case errors.Is(err, ErrMissingIdentityDocument):
		return &StepError{Step: step, Kind: KindInput, Message: "identity document is missing", Underlying: err}
	case errors.Is(err, fieldmap.ErrInvalidDateOfBirth):
		return &StepError{Step: step, Kind: KindInput, Message: "date of birth is invalid", Underlying: err}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return &StepError{Step: step, Kind: KindTransport, Message: "call aborted", Underlying: err}
	default:
		return &StepError{Step: step, Kind: KindTransport, Message: "call failed", Underlying: err}
	}
}

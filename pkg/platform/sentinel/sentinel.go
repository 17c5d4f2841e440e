package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Clients of remote systems return
// these (wrapped) so services can translate them into domain errors.
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	// ErrUnavailable means the remote system could not be reached or did not answer.
	ErrUnavailable = errors.New("unavailable")
)

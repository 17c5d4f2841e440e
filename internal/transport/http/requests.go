package httptransport

import (
	"tallybridge/internal/submission"
	dErrors "tallybridge/pkg/domain-errors"
)

// SubmissionRequest is the webhook body accepted by both submission routes.
type SubmissionRequest struct {
	submission.Envelope
}

// Validate only checks the envelope shape; field contents are the mapper's concern.
func (r *SubmissionRequest) Validate() error {
	if r.Data.Fields == nil {
		return dErrors.New(dErrors.CodeBadRequest, "data.fields is required")
	}
	return nil
}

package httptransport

import "tallybridge/internal/onboarding"

// OnboardingResponse is returned when every step completed.
type OnboardingResponse struct {
	Message   string `json:"message"`
	AccountID string `json:"accountId"`
}

// OnboardingFailureResponse names the failed step and the failure kind. The
// remote error detail is logged, never returned.
type OnboardingFailureResponse struct {
	Error      string `json:"error"`
	FailedStep string `json:"failed_step"`
	ErrorKind  string `json:"error_kind"`
	AccountID  string `json:"account_id,omitempty"`
}

func toOnboardingFailure(res onboarding.Result) OnboardingFailureResponse {
	return OnboardingFailureResponse{
		Error:      res.Error,
		FailedStep: string(res.FailedStep),
		ErrorKind:  string(res.Kind),
		AccountID:  res.AccountID,
	}
}

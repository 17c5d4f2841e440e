package onboarding

import "fmt"

// SuccessMessage is returned when every step completed.
const SuccessMessage = "All steps completed successfully."

// Outcome is the tagged result of one step: an id on success, a StepError otherwise.
type Outcome struct {
	Step Step
	ID   string
	Err  *StepError
}

// OK reports whether the step produced an id.
func (o Outcome) OK() bool {
	return o.Err == nil && o.ID != ""
}

// Result is the terminal output of a pipeline run.
type Result struct {
	Success        bool
	AccountID      string
	Message        string
	Error          string
	FailedStep     Step
	Kind           ErrorKind
	CompletedSteps []Step

	// Cause keeps the step failure for logs and error reporting. It is never
	// returned to the inbound caller.
	Cause *StepError
}

// Orphaned reports whether a failed run left a created account behind. The
// pipeline never deletes accounts it created.
func (r Result) Orphaned() bool {
	return !r.Success && r.AccountID != ""
}

func succeeded(accountID string, completed []Step) Result {
	return Result{
		Success:        true,
		AccountID:      accountID,
		Message:        SuccessMessage,
		CompletedSteps: completed,
	}
}

func failed(accountID string, completed []Step, cause *StepError) Result {
	return Result{
		Success:        false,
		AccountID:      accountID,
		Error:          fmt.Sprintf("onboarding failed at step %s", cause.Step),
		FailedStep:     cause.Step,
		Kind:           cause.Kind,
		CompletedSteps: completed,
		Cause:          cause,
	}
}

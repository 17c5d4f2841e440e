package onboarding

// Step identifies one remote call of the onboarding pipeline.
type Step string

const (
	StepTokenizeCompany   Step = "tokenize_company"
	StepCreateAccount     Step = "create_account"
	StepAttestationToken  Step = "attestation_token"
	StepUploadDocument    Step = "upload_identity_document"
	StepAttachPerson      Step = "attach_person"
	StepUpdateAccount     Step = "update_account"
	StepAttachBankAccount Step = "attach_bank_account"
)

// Steps lists the pipeline in execution order. The attestation token must exist
// before the account update consumes it, and the document must be uploaded before
// the person that references it.
var Steps = []Step{
	StepTokenizeCompany,
	StepCreateAccount,
	StepAttestationToken,
	StepUploadDocument,
	StepAttachPerson,
	StepUpdateAccount,
	StepAttachBankAccount,
}

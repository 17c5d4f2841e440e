package onboarding

import (
	"context"

	"tallybridge/internal/fieldmap"
)

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks Payments,DocumentFetcher

// CompanyToken is the company data tokenized in the first step.
type CompanyToken struct {
	Name         string
	BusinessType string
	Country      string
	City         string
	PostalCode   string
	Line1        string
	TaxID        string
	Phone        string
	VATID        string
}

// AccountSpec describes the connected account to create.
type AccountSpec struct {
	TokenID            string
	MCC                string
	ProductDescription string
	URL                string
}

// IdentityDocument is a downloaded identity file, held only for the request.
type IdentityDocument struct {
	Filename    string
	ContentType string
	Content     []byte
}

// AccountUpdate finalises the account with the attestation token. Country is
// empty unless the sequencer is configured to send it.
type AccountUpdate struct {
	AccountID           string
	TokenID             string
	StatementDescriptor string
	Country             string
}

// BankAccountSpec attaches an external bank account.
type BankAccountSpec struct {
	AccountID string
	IBAN      string
	Country   string
	Currency  string
}

// Payments is the payments provider as the pipeline sees it. Every method
// returns the identifier of the object it created.
type Payments interface {
	TokenizeCompany(ctx context.Context, company CompanyToken) (string, error)
	CreateAccount(ctx context.Context, spec AccountSpec) (string, error)
	CreateAttestationToken(ctx context.Context) (string, error)
	UploadIdentityDocument(ctx context.Context, doc IdentityDocument) (string, error)
	AttachPerson(ctx context.Context, accountID string, person fieldmap.PersonRecord, documentID string) (string, error)
	UpdateAccount(ctx context.Context, update AccountUpdate) (string, error)
	AttachBankAccount(ctx context.Context, spec BankAccountSpec) (string, error)
}

// DocumentFetcher downloads a file referenced by a submission.
type DocumentFetcher interface {
	Fetch(ctx context.Context, url string) (IdentityDocument, error)
}

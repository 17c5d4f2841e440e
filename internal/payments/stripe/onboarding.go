package stripe

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	stripesdk "github.com/stripe/stripe-go/v74"

	"tallybridge/internal/fieldmap"
	"tallybridge/internal/onboarding"
)

const (
	accountCountry = "FR"
	payoutInterval = "manual"
)

// TokenizeCompany creates an account token carrying the company details.
func (c *Client) TokenizeCompany(ctx context.Context, company onboarding.CompanyToken) (string, error) {
	params := &stripesdk.TokenParams{
		Account: &stripesdk.TokenAccountParams{
			BusinessType:        stripesdk.String(company.BusinessType),
			TOSShownAndAccepted: stripesdk.Bool(true),
			Company: &stripesdk.AccountCompanyParams{
				Name: stripesdk.String(company.Name),
				Address: &stripesdk.AddressParams{
					Country:    stripesdk.String(company.Country),
					City:       stripesdk.String(company.City),
					PostalCode: stripesdk.String(company.PostalCode),
					Line1:      stripesdk.String(company.Line1),
				},
				Phone: stripesdk.String(company.Phone),
				TaxID: stripesdk.String(company.TaxID),
				VATID: stripesdk.String(company.VATID),
			},
		},
	}
	params.Context = ctx

	tok, err := c.public.Tokens.New(params)
	if err != nil {
		return "", remoteError("create company token", err)
	}
	return tok.ID, nil
}

// CreateAccount creates a custom FR account with manual payouts.
func (c *Client) CreateAccount(ctx context.Context, spec onboarding.AccountSpec) (string, error) {
	params := &stripesdk.AccountParams{
		AccountToken: stripesdk.String(spec.TokenID),
		Type:         stripesdk.String(string(stripesdk.AccountTypeCustom)),
		Country:      stripesdk.String(accountCountry),
		Capabilities: &stripesdk.AccountCapabilitiesParams{
			CardPayments: &stripesdk.AccountCapabilitiesCardPaymentsParams{Requested: stripesdk.Bool(true)},
			Transfers:    &stripesdk.AccountCapabilitiesTransfersParams{Requested: stripesdk.Bool(true)},
		},
		BusinessProfile: &stripesdk.AccountBusinessProfileParams{
			MCC:                stripesdk.String(spec.MCC),
			ProductDescription: stripesdk.String(spec.ProductDescription),
			URL:                stripesdk.String(spec.URL),
		},
		Settings: &stripesdk.AccountSettingsParams{
			Payouts: &stripesdk.AccountSettingsPayoutsParams{
				Schedule: &stripesdk.AccountSettingsPayoutsScheduleParams{
					Interval: stripesdk.String(payoutInterval),
				},
			},
		},
	}
	params.Context = ctx

	acct, err := c.secret.Accounts.New(params)
	if err != nil {
		return "", remoteError("create account", err)
	}
	c.logger.InfoContext(ctx, "payments account created",
		"account_id", acct.ID,
		"payouts_enabled", acct.PayoutsEnabled,
	)
	return acct.ID, nil
}

// CreateAttestationToken creates the token declaring that directors,
// executives and owners have all been provided.
func (c *Client) CreateAttestationToken(ctx context.Context) (string, error) {
	params := &stripesdk.TokenParams{
		Account: &stripesdk.TokenAccountParams{
			Company: &stripesdk.AccountCompanyParams{
				DirectorsProvided:  stripesdk.Bool(true),
				ExecutivesProvided: stripesdk.Bool(true),
				OwnersProvided:     stripesdk.Bool(true),
			},
		},
	}
	params.Context = ctx

	tok, err := c.public.Tokens.New(params)
	if err != nil {
		return "", remoteError("create attestation token", err)
	}
	return tok.ID, nil
}

// UploadIdentityDocument uploads the file with purpose identity_document.
func (c *Client) UploadIdentityDocument(ctx context.Context, doc onboarding.IdentityDocument) (string, error) {
	filename := doc.Filename
	if filename == "" {
		filename = "identity_document"
	}
	params := &stripesdk.FileParams{
		FileReader: bytes.NewReader(doc.Content),
		Filename:   stripesdk.String(filename),
		Purpose:    stripesdk.String(string(stripesdk.FilePurposeIdentityDocument)),
	}
	params.Context = ctx

	f, err := c.secret.Files.New(params)
	if err != nil {
		return "", remoteError("upload identity document", err)
	}
	return f.ID, nil
}

// AttachPerson adds the legal representative to the account.
func (c *Client) AttachPerson(ctx context.Context, accountID string, person fieldmap.PersonRecord, documentID string) (string, error) {
	dob, err := dobParams(person.DOB)
	if err != nil {
		return "", err
	}
	params := &stripesdk.PersonParams{
		Account:   stripesdk.String(accountID),
		FirstName: stripesdk.String(person.Text(fieldmap.PersonFirstName)),
		LastName:  stripesdk.String(person.Text(fieldmap.PersonLastName)),
		Email:     stripesdk.String(person.Text(fieldmap.PersonEmail)),
		Phone:     stripesdk.String(person.Text(fieldmap.PersonPhone)),
		Relationship: &stripesdk.PersonRelationshipParams{
			Representative: stripesdk.Bool(true),
			Executive:      stripesdk.Bool(true),
			Director:       stripesdk.Bool(true),
			Title:          stripesdk.String(person.Text(fieldmap.PersonTitle)),
		},
		DOB: dob,
		Address: &stripesdk.AddressParams{
			City:       stripesdk.String(person.Text(fieldmap.PersonCity)),
			PostalCode: stripesdk.String(person.Text(fieldmap.PersonPostalCode)),
			Line1:      stripesdk.String(person.Text(fieldmap.PersonAddressStreet)),
		},
		Verification: &stripesdk.PersonVerificationParams{
			Document: &stripesdk.PersonVerificationDocumentParams{
				Front: stripesdk.String(documentID),
			},
		},
	}
	params.Context = ctx

	p, err := c.secret.Persons.New(params)
	if err != nil {
		return "", remoteError("attach person", err)
	}
	return p.ID, nil
}

// UpdateAccount applies the attestation token and the statement descriptor.
func (c *Client) UpdateAccount(ctx context.Context, update onboarding.AccountUpdate) (string, error) {
	params := &stripesdk.AccountParams{
		AccountToken: stripesdk.String(update.TokenID),
		Settings: &stripesdk.AccountSettingsParams{
			Payments: &stripesdk.AccountSettingsPaymentsParams{
				StatementDescriptor: stripesdk.String(update.StatementDescriptor),
			},
		},
	}
	if update.Country != "" {
		params.Country = stripesdk.String(update.Country)
	}
	params.Context = ctx

	acct, err := c.secret.Accounts.Update(update.AccountID, params)
	if err != nil {
		return "", remoteError("update account", err)
	}
	return acct.ID, nil
}

// AttachBankAccount adds the IBAN as an external account.
func (c *Client) AttachBankAccount(ctx context.Context, spec onboarding.BankAccountSpec) (string, error) {
	params := &stripesdk.BankAccountParams{
		Account:       stripesdk.String(spec.AccountID),
		AccountNumber: stripesdk.String(spec.IBAN),
		Country:       stripesdk.String(spec.Country),
		Currency:      stripesdk.String(spec.Currency),
	}
	params.Context = ctx

	ba, err := c.secret.BankAccounts.New(params)
	if err != nil {
		return "", remoteError("attach bank account", err)
	}
	return ba.ID, nil
}

func dobParams(dob fieldmap.DateOfBirth) (*stripesdk.PersonDOBParams, error) {
	year, err := strconv.ParseInt(dob.Year, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: year %q", fieldmap.ErrInvalidDateOfBirth, dob.Year)
	}
	month, err := strconv.ParseInt(dob.Month, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: month %q", fieldmap.ErrInvalidDateOfBirth, dob.Month)
	}
	day, err := strconv.ParseInt(dob.Day, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: day %q", fieldmap.ErrInvalidDateOfBirth, dob.Day)
	}
	return &stripesdk.PersonDOBParams{
		Day:   stripesdk.Int64(day),
		Month: stripesdk.Int64(month),
		Year:  stripesdk.Int64(year),
	}, nil
}

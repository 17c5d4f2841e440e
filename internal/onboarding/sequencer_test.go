package onboarding_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"tallybridge/internal/fieldmap"
	"tallybridge/internal/onboarding"
	"tallybridge/internal/onboarding/metrics"
	"tallybridge/internal/onboarding/mocks"
	"tallybridge/internal/submission"
)

// =============================================================================
// Sequencer Test Suite
// =============================================================================
// The sequencer is the only component with control flow worth testing in
// isolation: ordering, short-circuiting and the absence of compensation are
// asserted through strict gomock expectations (any unexpected call fails).

type SequencerSuite struct {
	suite.Suite
	ctx       context.Context
	ctrl      *gomock.Controller
	payments  *mocks.MockPayments
	documents *mocks.MockDocumentFetcher
	metrics   *metrics.Metrics
	org       fieldmap.OrganizationRecord
	person    fieldmap.PersonRecord
}

func TestSequencerSuite(t *testing.T) {
	suite.Run(t, new(SequencerSuite))
}

func (s *SequencerSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.payments = mocks.NewMockPayments(s.ctrl)
	s.documents = mocks.NewMockDocumentFetcher(s.ctrl)
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.org, s.person = s.mapRecords(true)
}

func (s *SequencerSuite) mapRecords(withIDFile bool) (fieldmap.OrganizationRecord, fieldmap.PersonRecord) {
	m, err := fieldmap.New(fieldmap.DefaultDictionaries())
	s.Require().NoError(err)

	fields := []submission.FormField{
		{Key: "question_ja2KXR", Value: submission.Text("Les Amis du Parc")},
		{Key: "question_2E52zp", Value: submission.Text("12 rue de la Paix")},
		{Key: "question_xXBGEG", Value: submission.Text("Paris")},
		{Key: "question_ZjyxX0", Value: submission.Text("75002")},
		{Key: "question_QKyGpg", Value: submission.Text("12345678900011")},
		{Key: "question_A75kYB", Value: submission.Text("+33102030405")},
		{Key: "question_9q5eYG", Value: submission.Text("FR12345678901")},
		{Key: "question_QoR0X7", Value: submission.Text("Urban gardens")},
		{Key: "question_Qo7eZX", Value: submission.Text("https://amisduparc.example")},
		{Key: "question_9N79k5", Value: submission.Text("FR1420041010050500013M02606")},
		{Key: "question_eqPbGq", Value: submission.Text("Camille")},
		{Key: "question_WOd46J", Value: submission.Text("Durand")},
		{Key: "question_aQoW19", Value: submission.Text("1990-05-20")},
		{Key: "question_b5GaMe", Value: submission.Text("camille@amisduparc.example")},
	}
	if withIDFile {
		fields = append(fields, submission.FormField{
			Key:   "question_685qYe",
			Value: submission.Files(submission.FileRef{Name: "id.png", URL: "https://files.example/id.png", MimeType: "image/png"}),
		})
	}

	org, person, err := m.Map(fields)
	s.Require().NoError(err)
	return org, person
}

func (s *SequencerSuite) sequencer(opts ...onboarding.SequencerOption) *onboarding.Sequencer {
	opts = append([]onboarding.SequencerOption{onboarding.WithMetrics(s.metrics)}, opts...)
	return onboarding.NewSequencer(s.payments, s.documents, opts...)
}

var idDocument = onboarding.IdentityDocument{Filename: "id.png", ContentType: "image/png", Content: []byte("png")}

// expectThroughAccount sets the expectations of steps 1 and 2.
func (s *SequencerSuite) expectThroughAccount() {
	gomock.InOrder(
		s.payments.EXPECT().TokenizeCompany(gomock.Any(), gomock.Any()).Return("ct_1", nil),
		s.payments.EXPECT().CreateAccount(gomock.Any(), gomock.Any()).Return("acct_1", nil),
	)
}

// =============================================================================
// Happy path
// =============================================================================

func (s *SequencerSuite) TestAllStepsSucceed() {
	gomock.InOrder(
		s.payments.EXPECT().TokenizeCompany(gomock.Any(), onboarding.CompanyToken{
			Name:         "Les Amis du Parc",
			BusinessType: "non_profit",
			Country:      "FR",
			City:         "Paris",
			PostalCode:   "75002",
			Line1:        "12 rue de la Paix",
			TaxID:        "12345678900011",
			Phone:        "+33102030405",
			VATID:        "FR12345678901",
		}).Return("ct_1", nil),
		s.payments.EXPECT().CreateAccount(gomock.Any(), onboarding.AccountSpec{
			TokenID:            "ct_1",
			MCC:                "8398",
			ProductDescription: "Urban gardens",
			URL:                "https://amisduparc.example",
		}).Return("acct_1", nil),
		s.payments.EXPECT().CreateAttestationToken(gomock.Any()).Return("ct_2", nil),
		s.documents.EXPECT().Fetch(gomock.Any(), "https://files.example/id.png").Return(idDocument, nil),
		s.payments.EXPECT().UploadIdentityDocument(gomock.Any(), idDocument).Return("file_1", nil),
		s.payments.EXPECT().AttachPerson(gomock.Any(), "acct_1", s.person, "file_1").Return("person_1", nil),
		s.payments.EXPECT().UpdateAccount(gomock.Any(), onboarding.AccountUpdate{
			AccountID:           "acct_1",
			TokenID:             "ct_2",
			StatementDescriptor: "Les Amis du Parc",
		}).Return("acct_1", nil),
		s.payments.EXPECT().AttachBankAccount(gomock.Any(), onboarding.BankAccountSpec{
			AccountID: "acct_1",
			IBAN:      "FR1420041010050500013M02606",
			Country:   "FR",
			Currency:  "EUR",
		}).Return("ba_1", nil),
	)

	res := s.sequencer().Onboard(s.ctx, s.org, s.person)

	s.True(res.Success)
	s.Equal("acct_1", res.AccountID)
	s.Equal(onboarding.SuccessMessage, res.Message)
	s.Empty(res.Error)
	s.Equal(onboarding.Steps, res.CompletedSteps)
	s.False(res.Orphaned())
	s.Equal(float64(0), promtest.ToFloat64(s.metrics.StepFailures.WithLabelValues("create_account", "remote")))
}

func (s *SequencerSuite) TestDocumentMetadataFallsBackToFileRef() {
	s.expectThroughAccount()
	s.payments.EXPECT().CreateAttestationToken(gomock.Any()).Return("ct_2", nil)
	s.documents.EXPECT().Fetch(gomock.Any(), gomock.Any()).Return(onboarding.IdentityDocument{Content: []byte("png")}, nil)
	s.payments.EXPECT().UploadIdentityDocument(gomock.Any(), onboarding.IdentityDocument{
		Filename:    "id.png",
		ContentType: "image/png",
		Content:     []byte("png"),
	}).Return("file_1", nil)
	s.payments.EXPECT().AttachPerson(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("person_1", nil)
	s.payments.EXPECT().UpdateAccount(gomock.Any(), gomock.Any()).Return("acct_1", nil)
	s.payments.EXPECT().AttachBankAccount(gomock.Any(), gomock.Any()).Return("ba_1", nil)

	res := s.sequencer().Onboard(s.ctx, s.org, s.person)
	s.True(res.Success)
}

// =============================================================================
// Short-circuiting
// =============================================================================

func (s *SequencerSuite) TestTokenizeWithoutIDHalts() {
	s.payments.EXPECT().TokenizeCompany(gomock.Any(), gomock.Any()).Return("", nil)

	res := s.sequencer().Onboard(s.ctx, s.org, s.person)

	s.False(res.Success)
	s.Equal(onboarding.StepTokenizeCompany, res.FailedStep)
	s.Equal(onboarding.KindRemote, res.Kind)
	s.Empty(res.AccountID)
	s.Empty(res.CompletedSteps)
	s.False(res.Orphaned())
	s.True(errors.Is(res.Cause, onboarding.ErrMissingID))
	s.Equal(float64(1), promtest.ToFloat64(s.metrics.StepFailures.WithLabelValues("tokenize_company", "remote")))
}

func (s *SequencerSuite) TestRemoteRejectionOfAccountCreationHalts() {
	rejection := &onboarding.RemoteError{Provider: "stripe", StatusCode: 400, Type: "invalid_request_error", Message: "Invalid mcc"}
	gomock.InOrder(
		s.payments.EXPECT().TokenizeCompany(gomock.Any(), gomock.Any()).Return("ct_1", nil),
		s.payments.EXPECT().CreateAccount(gomock.Any(), gomock.Any()).Return("", rejection),
	)

	res := s.sequencer().Onboard(s.ctx, s.org, s.person)

	s.False(res.Success)
	s.Equal(onboarding.StepCreateAccount, res.FailedStep)
	s.Equal(onboarding.KindRemote, res.Kind)
	s.Equal("onboarding failed at step create_account", res.Error)
	s.Equal([]onboarding.Step{onboarding.StepTokenizeCompany}, res.CompletedSteps)
	s.NotContains(res.Error, "Invalid mcc")

	var remote *onboarding.RemoteError
	s.True(errors.As(res.Cause, &remote))
}

func (s *SequencerSuite) TestTransportFailureIsClassified() {
	s.payments.EXPECT().TokenizeCompany(gomock.Any(), gomock.Any()).Return("", errors.New("dial tcp: connection refused"))

	res := s.sequencer().Onboard(s.ctx, s.org, s.person)

	s.Equal(onboarding.KindTransport, res.Kind)
	s.Equal(onboarding.StepTokenizeCompany, res.FailedStep)
}

func (s *SequencerSuite) TestCancelledContextIsTransport() {
	s.payments.EXPECT().TokenizeCompany(gomock.Any(), gomock.Any()).Return("", context.Canceled)

	res := s.sequencer().Onboard(s.ctx, s.org, s.person)

	s.Equal(onboarding.KindTransport, res.Kind)
}

// =============================================================================
// Non-atomic failures
// =============================================================================

func (s *SequencerSuite) TestAttachPersonFailureLeavesAccountInPlace() {
	s.expectThroughAccount()
	s.payments.EXPECT().CreateAttestationToken(gomock.Any()).Return("ct_2", nil)
	s.documents.EXPECT().Fetch(gomock.Any(), gomock.Any()).Return(idDocument, nil)
	s.payments.EXPECT().UploadIdentityDocument(gomock.Any(), gomock.Any()).Return("file_1", nil)
	s.payments.EXPECT().AttachPerson(gomock.Any(), "acct_1", gomock.Any(), "file_1").
		Return("", &onboarding.RemoteError{Provider: "stripe", StatusCode: 400, Message: "dob invalid"})
	// no UpdateAccount, no AttachBankAccount, and the Payments port has no delete
	// operation: the created account stays.

	res := s.sequencer().Onboard(s.ctx, s.org, s.person)

	s.False(res.Success)
	s.Equal(onboarding.StepAttachPerson, res.FailedStep)
	s.Equal("acct_1", res.AccountID)
	s.True(res.Orphaned())
	s.Equal([]onboarding.Step{
		onboarding.StepTokenizeCompany,
		onboarding.StepCreateAccount,
		onboarding.StepAttestationToken,
		onboarding.StepUploadDocument,
	}, res.CompletedSteps)
}

func (s *SequencerSuite) TestMissingIdentityFileIsInputFailureAfterAccountCreation() {
	org, person := s.mapRecords(false)
	s.expectThroughAccount()
	s.payments.EXPECT().CreateAttestationToken(gomock.Any()).Return("ct_2", nil)

	res := s.sequencer().Onboard(s.ctx, org, person)

	s.Equal(onboarding.StepUploadDocument, res.FailedStep)
	s.Equal(onboarding.KindInput, res.Kind)
	s.True(res.Orphaned())
	s.True(errors.Is(res.Cause, onboarding.ErrMissingIdentityDocument))
}

func (s *SequencerSuite) TestDocumentFetchFailureStopsBeforeUpload() {
	s.expectThroughAccount()
	s.payments.EXPECT().CreateAttestationToken(gomock.Any()).Return("ct_2", nil)
	s.documents.EXPECT().Fetch(gomock.Any(), gomock.Any()).Return(onboarding.IdentityDocument{}, errors.New("i/o timeout"))

	res := s.sequencer().Onboard(s.ctx, s.org, s.person)

	s.Equal(onboarding.StepUploadDocument, res.FailedStep)
	s.Equal(onboarding.KindTransport, res.Kind)
}

func (s *SequencerSuite) TestBankAccountFailureIsLastStep() {
	s.expectThroughAccount()
	s.payments.EXPECT().CreateAttestationToken(gomock.Any()).Return("ct_2", nil)
	s.documents.EXPECT().Fetch(gomock.Any(), gomock.Any()).Return(idDocument, nil)
	s.payments.EXPECT().UploadIdentityDocument(gomock.Any(), gomock.Any()).Return("file_1", nil)
	s.payments.EXPECT().AttachPerson(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("person_1", nil)
	s.payments.EXPECT().UpdateAccount(gomock.Any(), gomock.Any()).Return("acct_1", nil)
	s.payments.EXPECT().AttachBankAccount(gomock.Any(), gomock.Any()).
		Return("", &onboarding.RemoteError{Provider: "stripe", StatusCode: 400, Code: "invalid_iban"})

	res := s.sequencer().Onboard(s.ctx, s.org, s.person)

	s.Equal(onboarding.StepAttachBankAccount, res.FailedStep)
	s.Len(res.CompletedSteps, 6)
	s.True(res.Orphaned())
}

// =============================================================================
// Configuration
// =============================================================================

func (s *SequencerSuite) TestUpdateCarriesCountryWhenConfigured() {
	s.expectThroughAccount()
	s.payments.EXPECT().CreateAttestationToken(gomock.Any()).Return("ct_2", nil)
	s.documents.EXPECT().Fetch(gomock.Any(), gomock.Any()).Return(idDocument, nil)
	s.payments.EXPECT().UploadIdentityDocument(gomock.Any(), gomock.Any()).Return("file_1", nil)
	s.payments.EXPECT().AttachPerson(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("person_1", nil)
	s.payments.EXPECT().UpdateAccount(gomock.Any(), onboarding.AccountUpdate{
		AccountID:           "acct_1",
		TokenID:             "ct_2",
		StatementDescriptor: "Les Amis du Parc",
		Country:             "FR",
	}).Return("acct_1", nil)
	s.payments.EXPECT().AttachBankAccount(gomock.Any(), gomock.Any()).Return("ba_1", nil)

	res := s.sequencer(onboarding.WithUpdateCountry(true)).Onboard(s.ctx, s.org, s.person)
	s.True(res.Success)
}

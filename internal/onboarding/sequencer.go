// Package onboarding drives the payments provider through the fixed chain of
// calls that turns a mapped submission into a connected account.
package onboarding

import (
	"context"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"tallybridge/internal/fieldmap"
	"tallybridge/internal/onboarding/metrics"
	"tallybridge/pkg/requestcontext"
)

const (
	accountCurrency = "EUR"
	tracerName      = "tallybridge/onboarding"
)

// Sequencer runs the onboarding steps in order and stops at the first failure.
// Nothing is rolled back: a failure after account creation leaves the account
// in place and the Result says so.
type Sequencer struct {
	payments           Payments
	documents          DocumentFetcher
	logger             *slog.Logger
	metrics            *metrics.Metrics
	tracer             trace.Tracer
	updateSendsCountry bool
}

// SequencerOption configures a Sequencer.
type SequencerOption func(*Sequencer)

// WithSequencerLogger sets the logger.
func WithSequencerLogger(logger *slog.Logger) SequencerOption {
	return func(s *Sequencer) {
		s.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) SequencerOption {
	return func(s *Sequencer) {
		s.metrics = m
	}
}

// WithTracer overrides the global tracer.
func WithTracer(tracer trace.Tracer) SequencerOption {
	return func(s *Sequencer) {
		s.tracer = tracer
	}
}

// WithUpdateCountry makes the account update carry the organization country.
func WithUpdateCountry(enabled bool) SequencerOption {
	return func(s *Sequencer) {
		s.updateSendsCountry = enabled
	}
}

// NewSequencer builds a sequencer over the payments port and document fetcher.
func NewSequencer(payments Payments, documents DocumentFetcher, opts ...SequencerOption) *Sequencer {
	s := &Sequencer{
		payments:  payments,
		documents: documents,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracer:    otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// run carries the identifiers produced so far.
type run struct {
	org    fieldmap.OrganizationRecord
	person fieldmap.PersonRecord

	tokenID       string
	accountID     string
	updateTokenID string
	documentID    string
	personID      string
	bankAccountID string

	completed []Step
}

type stepFunc func(ctx context.Context, r *run) (string, error)

type stage struct {
	step   Step
	call   stepFunc
	assign func(r *run, id string)
}

func (s *Sequencer) pipeline() []stage {
	return []stage{
		{StepTokenizeCompany, s.tokenizeCompany, func(r *run, id string) { r.tokenID = id }},
		{StepCreateAccount, s.createAccount, func(r *run, id string) { r.accountID = id }},
		{StepAttestationToken, s.attestationToken, func(r *run, id string) { r.updateTokenID = id }},
		{StepUploadDocument, s.uploadDocument, func(r *run, id string) { r.documentID = id }},
		{StepAttachPerson, s.attachPerson, func(r *run, id string) { r.personID = id }},
		{StepUpdateAccount, s.updateAccount, func(*run, string) {}},
		{StepAttachBankAccount, s.attachBankAccount, func(r *run, id string) { r.bankAccountID = id }},
	}
}

// Onboard runs every step and converts the first failure into a Result.
func (s *Sequencer) Onboard(ctx context.Context, org fieldmap.OrganizationRecord, person fieldmap.PersonRecord) Result {
	start := time.Now()
	defer func() { s.metrics.ObservePipeline(time.Since(start)) }()

	r := &run{org: org, person: person}
	for _, st := range s.pipeline() {
		out := s.execute(ctx, st, r)
		if !out.OK() {
			res := failed(r.accountID, r.completed, out.Err)
			s.logger.ErrorContext(ctx, "onboarding aborted",
				"request_id", requestcontext.RequestID(ctx),
				"failed_step", out.Step,
				"kind", out.Err.Kind,
				"account_id", r.accountID,
				"completed_steps", r.completed,
				"error", out.Err,
			)
			return res
		}
		st.assign(r, out.ID)
		r.completed = append(r.completed, st.step)
	}

	s.logger.InfoContext(ctx, "onboarding completed",
		"request_id", requestcontext.RequestID(ctx),
		"account_id", r.accountID,
		"person_id", r.personID,
		"bank_account_id", r.bankAccountID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return succeeded(r.accountID, r.completed)
}

func (s *Sequencer) execute(ctx context.Context, st stage, r *run) Outcome {
	ctx, span := s.tracer.Start(ctx, "onboarding."+string(st.step),
		trace.WithAttributes(attribute.String("onboarding.step", string(st.step))),
	)
	defer span.End()

	start := time.Now()
	id, err := st.call(ctx, r)
	s.metrics.ObserveStep(string(st.step), time.Since(start))

	if err == nil && id == "" {
		err = ErrMissingID
	}
	if err != nil {
		se := classify(st.step, err)
		se.Step = st.step
		s.metrics.IncrementStepFailure(string(st.step), string(se.Kind))
		span.RecordError(se)
		span.SetStatus(codes.Error, se.Message)
		return Outcome{Step: st.step, Err: se}
	}

	span.SetAttributes(attribute.String("onboarding.object_id", id))
	s.logger.DebugContext(ctx, "onboarding step completed",
		"request_id", requestcontext.RequestID(ctx),
		"step", st.step,
		"object_id", id,
	)
	return Outcome{Step: st.step, ID: id}
}

func (s *Sequencer) tokenizeCompany(ctx context.Context, r *run) (string, error) {
	return s.payments.TokenizeCompany(ctx, CompanyToken{
		Name:         r.org.Text(fieldmap.OrgName),
		BusinessType: r.org.Text(fieldmap.OrgType),
		Country:      r.org.Text(fieldmap.OrgCountry),
		City:         r.org.Text(fieldmap.OrgCity),
		PostalCode:   r.org.Text(fieldmap.OrgPostalCode),
		Line1:        r.org.Text(fieldmap.OrgAddressStreet),
		TaxID:        r.org.Text(fieldmap.OrgSIRET),
		Phone:        r.org.Text(fieldmap.OrgPhone),
		VATID:        r.org.Text(fieldmap.OrgVATID),
	})
}

func (s *Sequencer) createAccount(ctx context.Context, r *run) (string, error) {
	return s.payments.CreateAccount(ctx, AccountSpec{
		TokenID:            r.tokenID,
		MCC:                r.org.Text(fieldmap.OrgMCC),
		ProductDescription: r.org.Text(fieldmap.OrgDescription),
		URL:                r.org.Text(fieldmap.OrgWebsite),
	})
}

func (s *Sequencer) attestationToken(ctx context.Context, _ *run) (string, error) {
	return s.payments.CreateAttestationToken(ctx)
}

func (s *Sequencer) uploadDocument(ctx context.Context, r *run) (string, error) {
	ref, ok := r.person.IdentityDocument()
	if !ok || ref.URL == "" {
		return "", ErrMissingIdentityDocument
	}
	doc, err := s.documents.Fetch(ctx, ref.URL)
	if err != nil {
		return "", err
	}
	if doc.Filename == "" {
		doc.Filename = ref.Name
	}
	if doc.ContentType == "" {
		doc.ContentType = ref.MimeType
	}
	return s.payments.UploadIdentityDocument(ctx, doc)
}

func (s *Sequencer) attachPerson(ctx context.Context, r *run) (string, error) {
	return s.payments.AttachPerson(ctx, r.accountID, r.person, r.documentID)
}

func (s *Sequencer) updateAccount(ctx context.Context, r *run) (string, error) {
	update := AccountUpdate{
		AccountID:           r.accountID,
		TokenID:             r.updateTokenID,
		StatementDescriptor: r.org.Text(fieldmap.OrgName),
	}
	if s.updateSendsCountry {
		update.Country = r.org.Text(fieldmap.OrgCountry)
	}
	return s.payments.UpdateAccount(ctx, update)
}

func (s *Sequencer) attachBankAccount(ctx context.Context, r *run) (string, error) {
	return s.payments.AttachBankAccount(ctx, BankAccountSpec{
		AccountID: r.accountID,
		IBAN:      r.org.Text(fieldmap.OrgIBAN),
		Country:   r.org.Text(fieldmap.OrgCountry),
		Currency:  accountCurrency,
	})
}

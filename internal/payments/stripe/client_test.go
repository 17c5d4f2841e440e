package stripe

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tallybridge/internal/fieldmap"
	"tallybridge/internal/onboarding"
	"tallybridge/internal/submission"
)

type recordedRequest struct {
	Method string
	Path   string
	Auth   string
	Form   url.Values
	File   []byte
}

type fakeStripe struct {
	t        *testing.T
	mu       sync.Mutex
	requests []recordedRequest
	status   int
	body     string
}

func (f *fakeStripe) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rec := recordedRequest{Method: r.Method, Path: r.URL.Path, Auth: r.Header.Get("Authorization")}
	if r.URL.Path == "/v1/files" {
		require.NoError(f.t, r.ParseMultipartForm(1<<20))
		rec.Form = r.MultipartForm.Value
		file, _, err := r.FormFile("file")
		require.NoError(f.t, err)
		rec.File, _ = io.ReadAll(file)
	} else {
		require.NoError(f.t, r.ParseForm())
		rec.Form = r.PostForm
	}
	f.mu.Lock()
	f.requests = append(f.requests, rec)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Request-Id", "req_fake")
	w.WriteHeader(f.status)
	_, _ = io.WriteString(w, f.body)
}

func (f *fakeStripe) last() recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(f.t, f.requests)
	return f.requests[len(f.requests)-1]
}

func newTestClient(t *testing.T, status int, body string) (*Client, *fakeStripe) {
	t.Helper()
	fake := &fakeStripe{t: t, status: status, body: body}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	c, err := New(Config{
		PublicKey:  "pk_test_public",
		SecretKey:  "sk_test_secret",
		APIURL:     srv.URL,
		UploadsURL: srv.URL,
		HTTPClient: srv.Client(),
	})
	require.NoError(t, err)
	return c, fake
}

func TestNew_RequiresBothKeys(t *testing.T) {
	_, err := New(Config{PublicKey: "pk"})
	assert.Error(t, err)
}

func TestTokenizeCompany_UsesPublicKey(t *testing.T) {
	c, fake := newTestClient(t, http.StatusOK, `{"id":"ct_1","object":"token"}`)

	id, err := c.TokenizeCompany(context.Background(), onboarding.CompanyToken{
		Name: "Les Amis du Parc", BusinessType: "non_profit", Country: "FR", City: "Paris",
		PostalCode: "75002", Line1: "12 rue de la Paix", TaxID: "12345678900011",
		Phone: "+33102030405", VATID: "FR12345678901",
	})
	require.NoError(t, err)
	assert.Equal(t, "ct_1", id)

	req := fake.last()
	assert.Equal(t, "/v1/tokens", req.Path)
	assert.Equal(t, "Bearer pk_test_public", req.Auth)
	assert.Equal(t, "Les Amis du Parc", req.Form.Get("account[company][name]"))
	assert.Equal(t, "true", req.Form.Get("account[tos_shown_and_accepted]"))
	assert.Equal(t, "non_profit", req.Form.Get("account[business_type]"))
	assert.Equal(t, "12345678900011", req.Form.Get("account[company][tax_id]"))
	assert.Equal(t, "12 rue de la Paix", req.Form.Get("account[company][address][line1]"))
}

func TestCreateAccount_CustomAccountWithManualPayouts(t *testing.T) {
	c, fake := newTestClient(t, http.StatusOK, `{"id":"acct_1","object":"account"}`)

	id, err := c.CreateAccount(context.Background(), onboarding.AccountSpec{
		TokenID: "ct_1", MCC: "8398", ProductDescription: "Urban gardens", URL: "https://amisduparc.example",
	})
	require.NoError(t, err)
	assert.Equal(t, "acct_1", id)

	req := fake.last()
	assert.Equal(t, "/v1/accounts", req.Path)
	assert.Equal(t, "Bearer sk_test_secret", req.Auth)
	assert.Equal(t, "custom", req.Form.Get("type"))
	assert.Equal(t, "FR", req.Form.Get("country"))
	assert.Equal(t, "ct_1", req.Form.Get("account_token"))
	assert.Equal(t, "true", req.Form.Get("capabilities[card_payments][requested]"))
	assert.Equal(t, "true", req.Form.Get("capabilities[transfers][requested]"))
	assert.Equal(t, "8398", req.Form.Get("business_profile[mcc]"))
	assert.Equal(t, "manual", req.Form.Get("settings[payouts][schedule][interval]"))
}

func TestCreateAttestationToken(t *testing.T) {
	c, fake := newTestClient(t, http.StatusOK, `{"id":"ct_2","object":"token"}`)

	id, err := c.CreateAttestationToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ct_2", id)

	req := fake.last()
	assert.Equal(t, "Bearer pk_test_public", req.Auth)
	assert.Equal(t, "true", req.Form.Get("account[company][directors_provided]"))
	assert.Equal(t, "true", req.Form.Get("account[company][executives_provided]"))
	assert.Equal(t, "true", req.Form.Get("account[company][owners_provided]"))
}

func TestUploadIdentityDocument_Multipart(t *testing.T) {
	c, fake := newTestClient(t, http.StatusOK, `{"id":"file_1","object":"file"}`)

	id, err := c.UploadIdentityDocument(context.Background(), onboarding.IdentityDocument{
		Filename: "id.png", ContentType: "image/png", Content: []byte("png-bytes"),
	})
	require.NoError(t, err)
	assert.Equal(t, "file_1", id)

	req := fake.last()
	assert.Equal(t, "/v1/files", req.Path)
	assert.Equal(t, "Bearer sk_test_secret", req.Auth)
	assert.Equal(t, []string{"identity_document"}, req.Form["purpose"])
	assert.Equal(t, []byte("png-bytes"), req.File)
}

func TestAttachPerson_SendsRelationshipAndDocument(t *testing.T) {
	c, fake := newTestClient(t, http.StatusOK, `{"id":"person_1","object":"person"}`)
	person := fieldmap.PersonRecord{
		Record: fieldmap.Record{
			fieldmap.PersonFirstName: submission.Text("Camille"),
			fieldmap.PersonLastName:  submission.Text("Durand"),
			fieldmap.PersonTitle:     submission.Text(fieldmap.DefaultPersonTitle),
			fieldmap.PersonEmail:     submission.Text("camille@amisduparc.example"),
			fieldmap.PersonCity:      submission.Text("Paris"),
		},
		DOB: fieldmap.DateOfBirth{Year: "1990", Month: "05", Day: "09"},
	}

	id, err := c.AttachPerson(context.Background(), "acct_1", person, "file_1")
	require.NoError(t, err)
	assert.Equal(t, "person_1", id)

	req := fake.last()
	assert.Equal(t, "/v1/accounts/acct_1/persons", req.Path)
	assert.Equal(t, "Camille", req.Form.Get("first_name"))
	assert.Equal(t, "true", req.Form.Get("relationship[representative]"))
	assert.Equal(t, "true", req.Form.Get("relationship[executive]"))
	assert.Equal(t, "true", req.Form.Get("relationship[director]"))
	assert.Equal(t, "Directeur", req.Form.Get("relationship[title]"))
	assert.Equal(t, "1990", req.Form.Get("dob[year]"))
	assert.Equal(t, "5", req.Form.Get("dob[month]"))
	assert.Equal(t, "9", req.Form.Get("dob[day]"))
	assert.Equal(t, "file_1", req.Form.Get("verification[document][front]"))
}

func TestAttachPerson_InvalidDOBNeverCallsRemote(t *testing.T) {
	c, fake := newTestClient(t, http.StatusOK, `{"id":"person_1"}`)

	_, err := c.AttachPerson(context.Background(), "acct_1", fieldmap.PersonRecord{Record: fieldmap.Record{}}, "file_1")

	assert.ErrorIs(t, err, fieldmap.ErrInvalidDateOfBirth)
	assert.Empty(t, fake.requests)
}

func TestUpdateAccount_CountryOnlyWhenSet(t *testing.T) {
	c, fake := newTestClient(t, http.StatusOK, `{"id":"acct_1","object":"account"}`)

	_, err := c.UpdateAccount(context.Background(), onboarding.AccountUpdate{
		AccountID: "acct_1", TokenID: "ct_2", StatementDescriptor: "Les Amis du Parc",
	})
	require.NoError(t, err)

	req := fake.last()
	assert.Equal(t, "/v1/accounts/acct_1", req.Path)
	assert.Equal(t, "ct_2", req.Form.Get("account_token"))
	assert.Equal(t, "Les Amis du Parc", req.Form.Get("settings[payments][statement_descriptor]"))
	assert.False(t, req.Form.Has("country"))

	_, err = c.UpdateAccount(context.Background(), onboarding.AccountUpdate{
		AccountID: "acct_1", TokenID: "ct_2", StatementDescriptor: "x", Country: "FR",
	})
	require.NoError(t, err)
	assert.Equal(t, "FR", fake.last().Form.Get("country"))
}

func TestAttachBankAccount(t *testing.T) {
	c, fake := newTestClient(t, http.StatusOK, `{"id":"ba_1","object":"bank_account"}`)

	id, err := c.AttachBankAccount(context.Background(), onboarding.BankAccountSpec{
		AccountID: "acct_1", IBAN: "FR1420041010050500013M02606", Country: "FR", Currency: "EUR",
	})
	require.NoError(t, err)
	assert.Equal(t, "ba_1", id)

	req := fake.last()
	assert.Equal(t, "/v1/accounts/acct_1/external_accounts", req.Path)
	assert.Equal(t, "Bearer sk_test_secret", req.Auth)
}

func TestRemoteErrorIsMapped(t *testing.T) {
	c, _ := newTestClient(t, http.StatusBadRequest,
		`{"error":{"type":"invalid_request_error","code":"parameter_invalid_empty","message":"You passed an empty string for 'business_profile[mcc]'"}}`)

	_, err := c.CreateAccount(context.Background(), onboarding.AccountSpec{TokenID: "ct_1"})

	var remote *onboarding.RemoteError
	require.True(t, errors.As(err, &remote))
	assert.Equal(t, "stripe", remote.Provider)
	assert.Equal(t, http.StatusBadRequest, remote.StatusCode)
	assert.Equal(t, "invalid_request_error", remote.Type)
	assert.Equal(t, "parameter_invalid_empty", remote.Code)
	assert.Equal(t, "req_fake", remote.RequestID)
}

func TestTransportErrorIsNotRemote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	c, err := New(Config{PublicKey: "pk", SecretKey: "sk", APIURL: srv.URL, UploadsURL: srv.URL})
	require.NoError(t, err)

	_, err = c.CreateAttestationToken(context.Background())

	require.Error(t, err)
	var remote *onboarding.RemoteError
	assert.False(t, errors.As(err, &remote))
}

// Package registration forwards onboarded organizations to the secondary
// platform's record-creation API.
package registration

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"tallybridge/internal/fieldmap"
	"tallybridge/pkg/platform/circuit"
	"tallybridge/pkg/platform/sentinel"
)

//go:generate mockgen -source=notifier.go -destination=mocks/mocks.go -package=mocks Notifier

// Environment versions reported in NotifyResult.
const (
	VersionTest = "TEST"
	VersionLive = "LIVE"
)

const recordPath = "api/1.1/obj/Non-Profit/"

// NotifyResult describes the record-creation answer. Status and StatusText
// are the remote ones, whatever they are.
type NotifyResult struct {
	Status     int    `json:"status"`
	StatusText string `json:"statusText"`
	Version    string `json:"version"`
	RecordID   string `json:"recordId,omitempty"`
	RecordName string `json:"recordName"`
}

// OK reports whether the remote API accepted the record.
func (r NotifyResult) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Notifier creates the organization record on the secondary platform.
type Notifier interface {
	Notify(ctx context.Context, isTest bool, org fieldmap.OrganizationRecord, accountID string) (NotifyResult, error)
}

// HTTPNotifier is the resty implementation of Notifier.
type HTTPNotifier struct {
	client  *resty.Client
	baseURL string
	testKey string
	liveKey string
	logger  *slog.Logger

	// keyed by version; nil when no breaker is configured
	breakers map[string]*circuit.Breaker
}

var _ Notifier = (*HTTPNotifier)(nil)

// NotifierConfig holds the endpoint and both credentials.
type NotifierConfig struct {
	BaseURL    string
	TestKey    string
	LiveKey    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger

	// BreakerThreshold consecutive transport failures stop calls to that
	// environment for BreakerCooldown. Zero disables the breaker.
	BreakerThreshold int
	BreakerCooldown  time.Duration
}

func NewHTTPNotifier(cfg NotifierConfig) *HTTPNotifier {
	client := resty.New()
	if cfg.HTTPClient != nil {
		client = resty.NewWithClient(cfg.HTTPClient)
	}
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}
	client.SetRetryCount(0)
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	n := &HTTPNotifier{
		client:  client,
		baseURL: cfg.BaseURL,
		testKey: cfg.TestKey,
		liveKey: cfg.LiveKey,
		logger:  cfg.Logger,
	}
	if cfg.BreakerThreshold > 0 {
		n.breakers = make(map[string]*circuit.Breaker, 2)
		for _, version := range []string{VersionTest, VersionLive} {
			n.breakers[version] = circuit.New("secondary-registration-"+version,
				circuit.WithFailureThreshold(cfg.BreakerThreshold),
				circuit.WithCooldown(cfg.BreakerCooldown),
			)
		}
	}
	return n
}

// URL returns the record-creation endpoint for the environment.
func (n *HTTPNotifier) URL(isTest bool) string {
	if isTest {
		return n.baseURL + "/version-test/" + recordPath
	}
	return n.baseURL + "/" + recordPath
}

// Notify posts the record as form data. A transport failure is an error
// wrapping sentinel.ErrUnavailable; any HTTP answer is a result.
func (n *HTTPNotifier) Notify(ctx context.Context, isTest bool, org fieldmap.OrganizationRecord, accountID string) (NotifyResult, error) {
	key, version := n.liveKey, VersionLive
	if isTest {
		key, version = n.testKey, VersionTest
	}

	form, err := FormData(org, accountID)
	if err != nil {
		return NotifyResult{}, err
	}

	breaker := n.breakers[version]
	if breaker != nil && !breaker.Allow() {
		return NotifyResult{}, fmt.Errorf("create %s record: %w: circuit %s open", version, sentinel.ErrUnavailable, breaker.Name())
	}

	resp, err := n.client.R().
		SetContext(ctx).
		SetAuthToken(key).
		SetFormData(form).
		Post(n.URL(isTest))
	if err != nil {
		if breaker != nil && breaker.RecordFailure() {
			n.logger.WarnContext(ctx, "secondary registration circuit opened", "version", version)
		}
		return NotifyResult{}, fmt.Errorf("create %s record: %w: %w", version, sentinel.ErrUnavailable, err)
	}
	if breaker != nil {
		breaker.RecordSuccess()
	}

	var created struct {
		ID string `json:"id"`
	}
	if resp.IsSuccess() {
		// a body without an id leaves RecordID empty
		_ = json.Unmarshal(resp.Body(), &created)
	}

	res := NotifyResult{
		Status:     resp.StatusCode(),
		StatusText: http.StatusText(resp.StatusCode()),
		Version:    version,
		RecordID:   created.ID,
		RecordName: org.Text(fieldmap.OrgName),
	}
	n.logger.InfoContext(ctx, "secondary registration answered",
		"version", version,
		"status", res.Status,
		"record_id", res.RecordID,
		"account_id", accountID,
	)
	return res, nil
}

// FormData builds the record fields. List-valued fields are JSON arrays
// padded with an empty string, except the project tagline.
func FormData(org fieldmap.OrganizationRecord, accountID string) (map[string]string, error) {
	lists := map[string][]string{
		"project_description_list": {org.Text(fieldmap.OrgDescription), ""},
		"donation_purpose_list":    {org.Text(fieldmap.OrgDonationPurpose), ""},
		"project_tagline_list":     {org.Text(fieldmap.OrgProjectTagline)},
		"tagline_list":             {org.Text(fieldmap.OrgTagline), ""},
	}
	form := map[string]string{
		"stripe_account_id":       accountID,
		"name":                    org.Text(fieldmap.OrgName),
		"project_picture_credits": org.Text(fieldmap.OrgProjectPictureCredits),
		"logo":                    org.Value(fieldmap.OrgLogo).FirstURL(),
		"project_picture":         org.Value(fieldmap.OrgProjectPicture).FirstURL(),
	}
	for field, values := range lists {
		b, err := json.Marshal(values)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", field, err)
		}
		form[field] = string(b)
	}
	return form, nil
}

package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("ENV_FILE", "")
	var out, errOut bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestMapPrintsBothRecords(t *testing.T) {
	out, err := execute(t, "map", "--file", "testdata/submission.json")
	require.NoError(t, err)

	var doc struct {
		Organization map[string]any `yaml:"organization"`
		Person       map[string]any `yaml:"person"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "Les Amis du Parc", doc.Organization["name"])
	assert.Equal(t, "Camille", doc.Person["first_name"])
	assert.Equal(t, "1990-05-20", doc.Person["dob"])
	assert.Equal(t, []any{"https://files.example/id.png"}, doc.Person["idFile"])
}

func TestMapRejectsMissingDateOfBirth(t *testing.T) {
	_, err := execute(t, "map", "--file", "testdata/missing_dob.json")
	require.Error(t, err)
}

func TestMapRejectsMalformedSubmission(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"data":`), 0o600))

	_, err := execute(t, "map", "--file", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode submission")
	assert.Contains(t, err.Error(), path)
}

func TestMapRequiresFile(t *testing.T) {
	_, err := execute(t, "map")
	require.Error(t, err)
}

func TestOnboardRequiresPaymentsKeys(t *testing.T) {
	t.Setenv("STRIPE_PUBLIC_KEY", "")
	t.Setenv("STRIPE_SECRET_KEY", "")

	_, err := execute(t, "onboard", "--file", "testdata/submission.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STRIPE_SECRET_KEY")
}

func TestRegisterForwardsToTestVersion(t *testing.T) {
	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"status":"success","id":"rec_1"}`))
	}))
	t.Cleanup(srv.Close)
	t.Setenv("BUBBLE_BASE_URL", srv.URL)
	t.Setenv("BUBBLE_TEST_KEY", "test-key")

	out, err := execute(t, "register", "--file", "testdata/submission.json", "--account", "acct_1", "--test")
	require.NoError(t, err)

	assert.Equal(t, "/version-test/api/1.1/obj/Non-Profit/", gotPath)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Contains(t, out, `"recordId": "rec_1"`)
	assert.Contains(t, out, `"version": "TEST"`)
}

func TestRegisterRequiresKeyForEnvironment(t *testing.T) {
	t.Setenv("BUBBLE_LIVE_KEY", "")

	_, err := execute(t, "register", "--file", "testdata/submission.json", "--account", "acct_1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BUBBLE_LIVE_KEY")
}

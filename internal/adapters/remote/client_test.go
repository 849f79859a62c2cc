package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trustlens/trustlens/internal/utils"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	logger := zap.NewNop()
	return NewClient(srv.URL, 5*time.Second, logger, utils.NewTextProcessor(logger))
}

func TestFetchDomainFacts(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/analyze_domain_details", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "https://example.com/login", body["url"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"domain_name": "example.com",
			"parsed_url_scheme": "https",
			"domain_actual_age_days": 1234,
			"dns_records": {"MX": ["mail.example.com"]},
			"is_ip_address_in_url": false
		}`))
	}))

	facts, err := client.FetchDomainFacts(context.Background(), "https://example.com/login")
	require.NoError(t, err)
	assert.Equal(t, "example.com", facts.DomainName)
	assert.Equal(t, "https", facts.Scheme)
	require.NotNil(t, facts.DomainAgeDays)
	assert.Equal(t, 1234, *facts.DomainAgeDays)
	assert.Equal(t, []string{"mail.example.com"}, facts.DNSRecords["MX"])
}

func TestFetchDomainFactsServiceError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail": "url field required"}`))
	}))

	_, err := client.FetchDomainFacts(context.Background(), "https://example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
	assert.Contains(t, err.Error(), "url field required")
}

func TestFetchDomainFactsTransportError(t *testing.T) {
	logger := zap.NewNop()
	client := NewClient("http://127.0.0.1:1", time.Second, logger, utils.NewTextProcessor(logger))

	_, err := client.FetchDomainFacts(context.Background(), "https://example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "domain analysis request failed")
}

func TestClassifyText(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/check_phishing_text", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "verify your account now", body["text_to_analyze"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"is_phishing": true, "confidence": 0.92, "label": "Phishing"}`))
	}))

	verdict, err := client.ClassifyText(context.Background(), "verify your account now")
	require.NoError(t, err)
	assert.True(t, verdict.IsPhishing)
	assert.Equal(t, 0.92, verdict.Confidence)
	assert.Equal(t, "Phishing", verdict.Label)
}

func TestClassifyTextServiceError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := client.ClassifyText(context.Background(), "some text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestClassifyTextContextCancelled(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.ClassifyText(ctx, "some text")
	require.Error(t, err)
}

package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trustlens/trustlens/internal/core"
	"github.com/trustlens/trustlens/internal/utils"
)

type stubFacts struct {
	facts *core.DomainFacts
	err   error
}

func (s *stubFacts) FetchDomainFacts(ctx context.Context, rawURL string) (*core.DomainFacts, error) {
	return s.facts, s.err
}

type stubClassifier struct {
	verdict *core.TextVerdict
}

func (s *stubClassifier) ClassifyText(ctx context.Context, text string) (*core.TextVerdict, error) {
	return s.verdict, nil
}

type nopCache struct{}

func (nopCache) Get(ctx context.Context, identity string) (*core.CompositeResult, error) {
	return nil, context.Canceled
}
func (nopCache) Set(ctx context.Context, identity string, result *core.CompositeResult) error {
	return nil
}
func (nopCache) Delete(ctx context.Context, identity string) error { return nil }
func (nopCache) Cleanup(ctx context.Context) error                 { return nil }

func newTestServer(t *testing.T, facts *stubFacts) *httptest.Server {
	t.Helper()
	logger := zap.NewNop()
	age := 1000
	if facts == nil {
		facts = &stubFacts{facts: &core.DomainFacts{
			DomainName:    "example.com",
			Scheme:        "https",
			DomainAgeDays: &age,
		}}
	}
	service := core.NewAnalyzerService(
		facts,
		&stubClassifier{verdict: &core.TextVerdict{Confidence: 0.95, Label: "Legitimate"}},
		nopCache{},
		nil,
		nil,
		utils.NewTextProcessor(logger),
		logger,
		false,
		time.Minute,
		5,
		100,
	)
	server := NewServer(service, "127.0.0.1:0", logger)
	srv := httptest.NewServer(server.httpServer.Handler)
	t.Cleanup(srv.Close)
	return srv
}

func postAnalyze(t *testing.T, srv *httptest.Server, body string) (*http.Response, analyzeResponse) {
	t.Helper()
	resp, err := http.Post(srv.URL+"/api/v1/analyze", "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded analyzeResponse
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	}
	return resp, decoded
}

func TestAnalyzeEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, decoded := postAnalyze(t, srv, `{"url": "https://example.com", "fragments": ["welcome back"]}`)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, decoded.Score)
	assert.NotEmpty(t, decoded.Explanations)
	assert.Empty(t, decoded.Error)
	assert.Contains(t, []string{"low", "medium", "high"}, decoded.Indicator)
}

func TestAnalyzeEndpointInvalidAddress(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, decoded := postAnalyze(t, srv, `{"url": "   "}`)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Nil(t, decoded.Score)
	assert.Equal(t, "invalid address", decoded.Error)
	assert.Equal(t, "error", decoded.Indicator)
}

func TestAnalyzeEndpointFactsError(t *testing.T) {
	srv := newTestServer(t, &stubFacts{err: context.DeadlineExceeded})

	resp, decoded := postAnalyze(t, srv, `{"url": "https://example.com"}`)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Nil(t, decoded.Score)
	assert.Contains(t, decoded.Error, "analysis request failed")
	assert.Equal(t, "error", decoded.Indicator)
}

func TestAnalyzeEndpointBadRequests(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, _ := postAnalyze(t, srv, `not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = postAnalyze(t, srv, `{"fragments": ["x"]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

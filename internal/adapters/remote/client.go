package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/trustlens/trustlens/internal/core"
	"github.com/trustlens/trustlens/internal/utils"
)

const (
	domainDetailsPath = "/analyze_domain_details"
	phishingTextPath  = "/check_phishing_text"

	logSnippetSize = 100
)

// Client talks to the external analysis service. Every operation is a
// single request/response with no retry; failures surface as returned
// errors, never as panics, and the orchestrator converts them into
// value states.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	text       *utils.TextProcessor
}

// NewClient creates a new analysis service client.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger, text *utils.TextProcessor) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		text:       text,
	}
}

// FetchDomainFacts requests the domain-level facts for an address.
func (c *Client) FetchDomainFacts(ctx context.Context, rawURL string) (*core.DomainFacts, error) {
	payload, err := json.Marshal(map[string]string{"url": rawURL})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal domain analysis request: %w", err)
	}

	resp, err := c.post(ctx, domainDetailsPath, payload)
	if err != nil {
		return nil, fmt.Errorf("domain analysis request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail := readErrorDetail(resp)
		c.logger.Error("Domain analysis service returned an error",
			zap.Int("status", resp.StatusCode),
			zap.String("detail", detail))
		return nil, fmt.Errorf("domain analysis service returned %d: %s", resp.StatusCode, detail)
	}

	var facts core.DomainFacts
	if err := json.NewDecoder(resp.Body).Decode(&facts); err != nil {
		return nil, fmt.Errorf("failed to decode domain analysis response: %w", err)
	}
	return &facts, nil
}

// ClassifyText requests a phishing verdict for a piece of text.
func (c *Client) ClassifyText(ctx context.Context, text string) (*core.TextVerdict, error) {
	snippet := c.text.Preview(text, logSnippetSize)
	c.logger.Debug("Classifying text", zap.String("snippet", snippet))

	payload, err := json.Marshal(map[string]string{"text_to_analyze": text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal classification request: %w", err)
	}

	resp, err := c.post(ctx, phishingTextPath, payload)
	if err != nil {
		return nil, fmt.Errorf("classification request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail := readErrorDetail(resp)
		c.logger.Warn("Text classifier returned an error",
			zap.Int("status", resp.StatusCode),
			zap.String("snippet", snippet),
			zap.String("detail", detail))
		return nil, fmt.Errorf("text classifier returned %d: %s", resp.StatusCode, detail)
	}

	var verdict core.TextVerdict
	if err := json.NewDecoder(resp.Body).Decode(&verdict); err != nil {
		return nil, fmt.Errorf("failed to decode classification response: %w", err)
	}
	return &verdict, nil
}

func (c *Client) post(ctx context.Context, path string, payload []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.httpClient.Do(req)
}

// readErrorDetail pulls the service's {"detail": ...} message out of an
// error response body when one is present.
func readErrorDetail(resp *http.Response) string {
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Detail == "" {
		return resp.Status
	}
	return body.Detail
}

package certificate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"hemocamp/pkg/platform/circuit"
	"hemocamp/pkg/platform/sentinel"
)

const defaultTimeout = 3 * time.Second

// HTTPClient issues certificates against a remote generation service.
// A consecutive-failure breaker guards the endpoint: while open, Issue
// short-circuits and the caller records the certificate as still pending.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
	breaker *circuit.Breaker
	logger  *slog.Logger
}

// HTTPOption configures an HTTPClient.
type HTTPOption func(*HTTPClient)

// WithTimeout bounds each issuance call.
func WithTimeout(d time.Duration) HTTPOption {
	return func(c *HTTPClient) { c.timeout = d }
}

// WithLogger sets the logger for breaker transitions.
func WithLogger(logger *slog.Logger) HTTPOption {
	return func(c *HTTPClient) { c.logger = logger }
}

// WithHTTPClient overrides the underlying http.Client, mainly for tests.
func WithHTTPClient(hc *http.Client) HTTPOption {
	return func(c *HTTPClient) { c.client = hc }
}

// WithBreaker overrides the default breaker thresholds.
func WithBreaker(b *circuit.Breaker) HTTPOption {
	return func(c *HTTPClient) { c.breaker = b }
}

// NewHTTPClient builds an issuer client for the given base URL.
func NewHTTPClient(baseURL string, opts ...HTTPOption) *HTTPClient {
	c := &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{},
		timeout: defaultTimeout,
		breaker: circuit.New("certificate-issuer"),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Issue requests a certificate. While the circuit is open it fails fast
// without touching the network.
func (c *HTTPClient) Issue(ctx context.Context, req IssueRequest) (IssueResult, error) {
	if c.breaker.IsOpen() {
		return IssueResult{}, fmt.Errorf("certificate issuer circuit open: %w", sentinel.ErrUnavailable)
	}
	return c.call(ctx, req)
}

// Probe attempts issuance even when the circuit is open. Manual certificate
// retries use it so that recovered backends can close the circuit again.
func (c *HTTPClient) Probe(ctx context.Context, req IssueRequest) (IssueResult, error) {
	return c.call(ctx, req)
}

func (c *HTTPClient) call(ctx context.Context, req IssueRequest) (IssueResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(req)
	if err != nil {
		return IssueResult{}, fmt.Errorf("marshaling issue request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/certificates", bytes.NewReader(body))
	if err != nil {
		return IssueResult{}, fmt.Errorf("building issue request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		c.recordFailure()
		return IssueResult{}, fmt.Errorf("calling certificate issuer: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		c.recordFailure()
		io.Copy(io.Discard, resp.Body)
		return IssueResult{}, fmt.Errorf("certificate issuer returned status %d", resp.StatusCode)
	}

	var result IssueResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		c.recordFailure()
		return IssueResult{}, fmt.Errorf("decoding issue response: %w", err)
	}
	if result.URL == "" {
		c.recordFailure()
		return IssueResult{}, fmt.Errorf("certificate issuer returned empty url")
	}

	c.recordSuccess()
	return result, nil
}

func (c *HTTPClient) recordFailure() {
	if _, change := c.breaker.RecordFailure(); change.Opened {
		c.logger.Warn("certificate issuer circuit opened", "breaker", c.breaker.Name())
	}
}

func (c *HTTPClient) recordSuccess() {
	if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.Info("certificate issuer circuit closed", "breaker", c.breaker.Name())
	}
}

package chatapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/torosent/convfire/internal/tracing"
)

const (
	completionsPath = "/v1/chat/completions"
	modelsPath      = "/v1/models"

	maxErrorBodyBytes = 1024
	maxBodyReadSize   = 1024 * 1024
)

// Client talks to a single OpenAI-compatible endpoint. It is safe for
// concurrent use; all requests share one pooled transport.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Client for the endpoint rooted at baseURL. The timeout
// bounds each request end to end, including the remote model's thinking
// time; zero means no limit.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return nil, errors.New("base URL is required")
	}
	parsed, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("unsupported URL scheme %q", parsed.Scheme)
	}
	if timeout < 0 {
		timeout = 0
	}

	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          256,
		MaxIdleConnsPerHost:   32,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}, nil
}

// BaseURL returns the normalized endpoint root the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Complete sends a chat completion request and decodes the reply. A non-200
// status returns a [*StatusError]; transport failures and undecodable bodies
// return ordinary errors. The caller's context carries the trace span, if
// any, which is propagated to the endpoint as W3C trace headers.
func (c *Client) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	if req == nil {
		return nil, errors.New("completion request cannot be nil")
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode completion request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+completionsPath, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Request-ID", uuid.NewString())
	tracing.InjectHTTPHeaders(ctx, httpReq.Header)

	body, err := c.do(httpReq)
	if err != nil {
		return nil, err
	}

	var out CompletionResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode completion response: %w", err)
	}
	return &out, nil
}

// ListModels fetches the endpoint's model listing.
func (c *Client) ListModels(ctx context.Context) (*ModelList, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+modelsPath, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("X-Request-ID", uuid.NewString())
	tracing.InjectHTTPHeaders(ctx, httpReq.Header)

	body, err := c.do(httpReq)
	if err != nil {
		return nil, err
	}

	var out ModelList
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode model list: %w", err)
	}
	return &out, nil
}

// do executes the request and returns the body of a 200 response. Reads are
// capped so a misbehaving endpoint cannot exhaust memory.
func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyReadSize))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, newStatusError(resp.StatusCode, body)
	}
	return body, nil
}

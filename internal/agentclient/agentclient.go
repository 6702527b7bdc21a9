// Package agentclient provides the external agent invocation collaborator.
//
// The orchestrator depends only on the Invoker interface and the Result
// envelope shape; the internal structure of the response payload is handled
// defensively downstream by the document normalizer. The HTTP client retries
// transient transport failures via hashicorp/go-retryablehttp and rate
// limits outgoing calls with golang.org/x/time/rate.
package agentclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/proposalstudio/proposalstudio/internal/log"
)

// invokePath is the agent invocation endpoint, relative to the base URL.
const invokePath = "/v1/agents/invoke"

// maxResponseBytes bounds the agent response body read.
const maxResponseBytes = 8 << 20

// Result is the agent invocation envelope the orchestrator depends on.
// Payload carries the full raw response body; its internal structure varies
// between agent versions and is resolved by document.Normalize.
type Result struct {
	Success      bool
	Payload      json.RawMessage
	ErrorMessage string
}

// Invoker issues one invocation against the generative agent.
// A returned error means the call itself failed (transport or protocol);
// an unsuccessful Result means the agent reported a failure.
type Invoker interface {
	Invoke(ctx context.Context, promptText, agentID string) (*Result, error)
}

// Config contains the parameters for the HTTP client.
type Config struct {
	BaseURL string
	APIKey  string
	Logger  log.Logger

	// Limiter throttles outgoing calls.
	// nil = default (1 request/sec sustained, burst of 3).
	Limiter *rate.Limiter
}

// Client is the HTTP implementation of Invoker.
type Client struct {
	baseURL string
	apiKey  string
	limiter *rate.Limiter
	http    *retryablehttp.Client
	logger  log.Logger
}

// New creates an agent invocation client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("agent base URL is required")
	}
	if cfg.Logger == nil {
		return nil, errors.New("logger is required")
	}

	rl := cfg.Limiter
	if rl == nil {
		rl = rate.NewLimiter(1, 3)
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 10 * time.Second
	rc.Logger = nil

	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		limiter: rl,
		http:    rc,
		logger:  cfg.Logger,
	}, nil
}

// invokeRequest is the wire format of an invocation.
type invokeRequest struct {
	AgentID string `json:"agent_id"`
	Message string `json:"message"`
}

// Invoke sends the compiled prompt to the agent identified by agentID and
// returns the invocation envelope. Timeouts and transient retries are this
// transport's responsibility; callers treat any returned error the same as
// an agent-reported failure.
func (c *Client) Invoke(ctx context.Context, promptText, agentID string) (*Result, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	body, err := json.Marshal(invokeRequest{AgentID: agentID, Message: promptText})
	if err != nil {
		return nil, fmt.Errorf("encoding invocation: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+invokePath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building invocation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("invoking agent: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("reading agent response: %w", err)
	}

	c.logger.Debug("agent invocation completed",
		"agent_id", agentID,
		"status", resp.StatusCode,
		"elapsed", time.Since(start),
		"payload_bytes", len(payload),
	)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("agent returned status %d", resp.StatusCode)
	}

	return &Result{
		Success:      gjson.GetBytes(payload, "success").Bool(),
		Payload:      payload,
		ErrorMessage: gjson.GetBytes(payload, "error").String(),
	}, nil
}

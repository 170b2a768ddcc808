// Package local provides an LLM client for self-hosted generation endpoints
// that speak the Ollama /api/generate wire format.
package local

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xostack/llmroute/failure"
)

const (
	providerName = "local"
	// DefaultModel is used when no model override is given.
	DefaultModel = "gemma:7b"
	// DefaultEndpoint is a typical address of a local Ollama server.
	DefaultEndpoint = "http://localhost:11434/api/generate"
)

// Client implements the llmroute.Client interface for a local endpoint.
type Client struct {
	httpClient *http.Client
	endpoint   string // full generate URL, e.g. "http://localhost:11434/api/generate"
	modelName  string
	logger     logrus.FieldLogger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// generateRequest is the request body sent to the endpoint.
type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// NewClient creates a new local endpoint client.
//
// The endpoint is used verbatim as the POST target and is not validated here:
// an empty or unreachable endpoint surfaces as a transport failure when
// Generate is called. A requestTimeoutSeconds <= 0 leaves the HTTP client
// without a timeout; bound the call through ctx instead.
func NewClient(endpoint string, modelOverride string, requestTimeoutSeconds int, debugMode bool, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{},
		endpoint:   endpoint,
		modelName:  DefaultModel,
		logger:     logrus.StandardLogger(),
	}
	if requestTimeoutSeconds > 0 {
		c.httpClient.Timeout = time.Duration(requestTimeoutSeconds) * time.Second
	}
	for _, opt := range opts {
		opt(c)
	}

	if modelOverride != "" {
		c.modelName = modelOverride
		if debugMode {
			c.logger.Debugf("Using overridden local model: %s", c.modelName)
		}
	} else if debugMode {
		c.logger.Debugf("Using default local model: %s", c.modelName)
	}

	return c
}

// Generate sends the prompt to the local endpoint and returns the completion.
//
// A 200 response yields its "response" field, or "" when the field is absent.
// Any other status yields the raw response body as the result, without an
// error; callers inspect the text themselves.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.httpClient == nil {
		return "", fmt.Errorf("local client not initialized")
	}

	payloadBytes, err := json.Marshal(generateRequest{
		Model:  c.modelName,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal local request payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payloadBytes))
	if err != nil {
		return "", failure.Transport(providerName, fmt.Errorf("failed to create local request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.logger.WithFields(logrus.Fields{
		"endpoint": c.endpoint,
		"model":    c.modelName,
	}).Debug("Sending local generate request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", failure.Transport(providerName, err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", failure.Transport(providerName, fmt.Errorf("failed to read local response body: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.WithField("status", resp.StatusCode).Debug("Local endpoint returned non-200, passing body through")
		return string(responseBody), nil
	}

	return extractResponse(responseBody)
}

// extractResponse pulls the "response" field out of a 200 body.
func extractResponse(body []byte) (string, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return "", &failure.DecodeError{Backend: providerName, Body: string(body), Err: err}
	}

	raw, ok := fields["response"]
	if !ok || string(raw) == "null" {
		return "", nil
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		// Not a string; hand back its JSON text.
		return string(raw), nil
	}
	return text, nil
}

// ProviderName returns the name of this provider.
func (c *Client) ProviderName() string {
	return providerName
}

// Close is a no-op; the default transport needs no cleanup.
func (c *Client) Close() error {
	return nil
}

// Package hosted provides an LLM client for the Hugging Face hosted inference API.
package hosted

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xostack/llmroute/failure"
)

const (
	providerName = "hf"
	// DefaultModel is the model identifier used when no override is given.
	DefaultModel = "google/gemma-1.1-7b-it"
	// DefaultBaseURL is the hosted inference API root; models live under /models/<id>.
	DefaultBaseURL = "https://api-inference.huggingface.co"
	// MaxNewTokens caps the generated length of every request.
	MaxNewTokens = 1200
)

// Client implements the llmroute.Client interface for hosted inference.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	modelName  string
	logger     logrus.FieldLogger
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL points the client at a different inference API root.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimSuffix(baseURL, "/")
		}
	}
}

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

type inferenceParameters struct {
	MaxNewTokens int `json:"max_new_tokens"`
}

// inferenceRequest is the request body sent to /models/<id>.
type inferenceRequest struct {
	Inputs     string              `json:"inputs"`
	Parameters inferenceParameters `json:"parameters"`
}

// NewClient creates a new hosted inference client.
// debugMode controls verbose logging.
func NewClient(token string, modelOverride string, requestTimeoutSeconds int, debugMode bool, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("hosted API token is required")
	}

	c := &Client{
		httpClient: &http.Client{},
		baseURL:    DefaultBaseURL,
		token:      token,
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
			c.logger.Debugf("Using overridden hosted model: %s", c.modelName)
		}
	} else if debugMode {
		c.logger.Debugf("Using default hosted model: %s", c.modelName)
	}

	return c, nil
}

// ModelURL returns the inference URL for the configured model.
func (c *Client) ModelURL() string {
	return c.baseURL + "/models/" + c.modelName
}

// Generate sends the prompt to the hosted model and returns the completion.
//
// The HTTP status is not consulted. A JSON array body yields the
// "generated_text" of its first element; any other JSON body is returned in
// its string form, so an error object such as {"error":"unauthorized"} comes
// back as the result rather than as an error.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.httpClient == nil {
		return "", fmt.Errorf("hosted client not initialized")
	}

	payloadBytes, err := json.Marshal(inferenceRequest{
		Inputs:     prompt,
		Parameters: inferenceParameters{MaxNewTokens: MaxNewTokens},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal hosted request payload: %w", err)
	}

	requestURL := c.ModelURL()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, requestURL, bytes.NewReader(payloadBytes))
	if err != nil {
		return "", failure.Transport(providerName, fmt.Errorf("failed to create hosted request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.logger.WithFields(logrus.Fields{
		"url":   requestURL,
		"model": c.modelName,
	}).Debug("Sending hosted inference request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", failure.Transport(providerName, err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", failure.Transport(providerName, fmt.Errorf("failed to read hosted response body: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.WithField("status", resp.StatusCode).Debug("Hosted API returned non-200, normalizing body")
	}

	return normalize(responseBody)
}

// normalize maps the two known response shapes onto a completion string.
func normalize(body []byte) (string, error) {
	trimmed := bytes.TrimSpace(body)
	if !json.Valid(trimmed) {
		return "", &failure.DecodeError{Backend: providerName, Body: string(body), Err: errors.New("response is not valid JSON")}
	}

	switch trimmed[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return "", &failure.DecodeError{Backend: providerName, Body: string(body), Err: err}
		}
		if len(items) == 0 {
			return "", &failure.DecodeError{Backend: providerName, Body: string(body), Err: errors.New("response array is empty")}
		}
		var first struct {
			GeneratedText *string `json:"generated_text"`
		}
		if err := json.Unmarshal(items[0], &first); err != nil {
			return "", &failure.DecodeError{Backend: providerName, Body: string(body), Err: fmt.Errorf("first element is not an object: %w", err)}
		}
		if first.GeneratedText == nil {
			return "", &failure.DecodeError{Backend: providerName, Body: string(body), Err: errors.New("first element has no generated_text")}
		}
		return *first.GeneratedText, nil
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", &failure.DecodeError{Backend: providerName, Body: string(body), Err: err}
		}
		return s, nil
	default:
		var compact bytes.Buffer
		if err := json.Compact(&compact, trimmed); err != nil {
			return "", &failure.DecodeError{Backend: providerName, Body: string(body), Err: err}
		}
		return compact.String(), nil
	}
}

// ProviderName returns the name of this provider.
func (c *Client) ProviderName() string {
	return providerName
}

// Close is a no-op.
func (c *Client) Close() error {
	return nil
}

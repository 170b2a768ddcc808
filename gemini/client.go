// Package gemini provides an LLM client for Google's Gemini models.
//
// It is an explicitly requested provider: the router's mode resolution only
// ever picks the hosted or local backend.
package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	"github.com/xostack/llmroute/failure"
)

const (
	defaultGeminiModel = "gemma-3-27b-it"
	providerName       = "gemini"
)

// Client implements the llmroute.Client interface for Gemini.
type Client struct {
	genaiClient *genai.Client
	modelName   string
	timeout     time.Duration
	logger      logrus.FieldLogger
}

// Option customizes a Client.
type Option func(*settings)

type settings struct {
	logger        logrus.FieldLogger
	clientOptions []option.ClientOption
}

// WithLogger sets the logger used for debug output.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClientOptions passes extra options (endpoint, HTTP client) to the genai client.
func WithClientOptions(opts ...option.ClientOption) Option {
	return func(s *settings) {
		s.clientOptions = append(s.clientOptions, opts...)
	}
}

// NewClient creates a new Gemini client. requestTimeoutSeconds > 0 bounds
// every Generate call.
func NewClient(ctx context.Context, apiKey string, modelOverride string, requestTimeoutSeconds int, debugMode bool, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	s := settings{logger: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(&s)
	}

	clientOpts := append([]option.ClientOption{option.WithAPIKey(apiKey)}, s.clientOptions...)
	genaiClient, err := genai.NewClient(ctx, clientOpts...)
	if err != nil {
		s.logger.Errorf("Error initializing Google GenAI client: %v. Make sure your API key is valid and has permissions.", err)
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	modelToUse := defaultGeminiModel
	if modelOverride != "" {
		modelToUse = modelOverride
		if debugMode {
			s.logger.Debugf("Using overridden Gemini model: %s", modelToUse)
		}
	} else if debugMode {
		s.logger.Debugf("Using default Gemini model: %s", modelToUse)
	}

	c := &Client{
		genaiClient: genaiClient,
		modelName:   modelToUse,
		logger:      s.logger,
	}
	if requestTimeoutSeconds > 0 {
		c.timeout = time.Duration(requestTimeoutSeconds) * time.Second
	}
	return c, nil
}

// Generate sends the prompt to the Gemini model and returns the concatenated
// text parts of the first candidate.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.genaiClient == nil {
		return "", fmt.Errorf("Gemini client not initialized")
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	model := c.genaiClient.GenerativeModel(c.modelName)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", failure.Transport(providerName, fmt.Errorf("failed to generate content from Gemini: %w", err))
	}

	return extractText(resp, c.logger)
}

// extractText joins the text parts of the first candidate.
func extractText(resp *genai.GenerateContentResponse, logger logrus.FieldLogger) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
			return "", fmt.Errorf("Gemini content generation blocked due to safety settings")
		}
		if resp != nil && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
			return "", fmt.Errorf("Gemini prompt blocked: %s", resp.PromptFeedback.BlockReason.String())
		}
		return "", fmt.Errorf("Gemini response was empty or malformed")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		} else if logger != nil {
			logger.Debugf("Gemini client received non-text part: %T. Ignoring.", part)
		}
	}

	if sb.Len() == 0 {
		return "", fmt.Errorf("Gemini response contained no usable text content")
	}
	return sb.String(), nil
}

// ProviderName returns the name of this provider.
func (c *Client) ProviderName() string {
	return providerName
}

// Close releases the underlying genai client. Safe to call more than once.
func (c *Client) Close() error {
	if c.genaiClient == nil {
		return nil
	}
	err := c.genaiClient.Close()
	c.genaiClient = nil
	return err
}

package llmroute

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/xostack/llmroute/failure"
	"github.com/xostack/llmroute/hosted"
	"github.com/xostack/llmroute/local"
)

// Options carries the per-call backend settings. Nothing in it outlives the call.
type Options struct {
	// Mode selects the backend; empty means ModeAuto.
	Mode Mode
	// Model is the model identifier; empty means DefaultModel.
	Model string
	// HostedToken is the bearer token for the hosted backend.
	HostedToken string
	// LocalEndpoint is the full generate URL of the local backend.
	LocalEndpoint string
}

// Resolve picks the backend for mode given which credentials are present.
//
//	hf:    token required, else ErrHostedCredentialRequired
//	local: always local, the endpoint is not checked here
//	auto:  token wins over endpoint; neither gives ErrNoBackendAvailable
//
// Any other mode gives ErrUnrecognizedMode regardless of credentials.
// The returned error is a *ConfigurationError.
func Resolve(mode Mode, hostedToken, localEndpoint string) (Backend, error) {
	switch mode {
	case ModeHosted:
		if hostedToken == "" {
			return 0, failure.NewConfigurationError(string(mode), failure.ErrHostedCredentialRequired)
		}
		return BackendHosted, nil
	case ModeLocal:
		return BackendLocal, nil
	case ModeAuto, "":
		if hostedToken != "" {
			return BackendHosted, nil
		}
		if localEndpoint != "" {
			return BackendLocal, nil
		}
		return 0, failure.NewConfigurationError(string(ModeAuto), failure.ErrNoBackendAvailable)
	default:
		return 0, failure.NewConfigurationError(string(mode), failure.ErrUnrecognizedMode)
	}
}

// Router dispatches completion requests. It holds no per-call state and is
// safe for concurrent use.
type Router struct {
	httpClient    *http.Client
	hostedBaseURL string
	logger        logrus.FieldLogger
}

// RouterOption customizes a Router.
type RouterOption func(*Router)

// WithHTTPClient makes every adapter share hc. Without it each call gets a
// fresh client with no timeout.
func WithHTTPClient(hc *http.Client) RouterOption {
	return func(r *Router) {
		r.httpClient = hc
	}
}

// WithHostedBaseURL overrides the hosted inference API root.
func WithHostedBaseURL(baseURL string) RouterOption {
	return func(r *Router) {
		r.hostedBaseURL = baseURL
	}
}

// WithLogger sets the logger for routing decisions and adapter debug output.
func WithLogger(l logrus.FieldLogger) RouterOption {
	return func(r *Router) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRouter creates a Router.
func NewRouter(opts ...RouterOption) *Router {
	r := &Router{
		hostedBaseURL: hosted.DefaultBaseURL,
		logger:        logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var defaultRouter = NewRouter()

// QueryLLM sends prompt to the backend selected by opts using the default Router.
func QueryLLM(ctx context.Context, prompt string, opts Options) (string, error) {
	return defaultRouter.QueryLLM(ctx, prompt, opts)
}

// QueryLLM resolves the backend for opts, sends exactly one request and
// returns the normalized completion.
//
// A *ConfigurationError is returned before any network I/O. Transport
// failures come back as *TransportError. Non-200 responses are returned as
// ordinary strings.
func (r *Router) QueryLLM(ctx context.Context, prompt string, opts Options) (string, error) {
	backend, err := Resolve(opts.Mode, opts.HostedToken, opts.LocalEndpoint)
	if err != nil {
		return "", err
	}

	model := opts.Model
	if model == "" {
		model = DefaultModel
	}

	logger := r.logger.WithFields(logrus.Fields{
		"request_id": uuid.NewString(),
		"backend":    backend.String(),
		"model":      model,
	})
	logger.Debug("Resolved backend")

	client, err := r.clientFor(backend, model, opts, logger)
	if err != nil {
		return "", err
	}
	defer client.Close()

	result, err := client.Generate(ctx, prompt)
	if err != nil {
		logger.WithError(err).Debug("Backend request failed")
		return "", err
	}
	return result, nil
}

func (r *Router) clientFor(backend Backend, model string, opts Options, logger logrus.FieldLogger) (Client, error) {
	switch backend {
	case BackendHosted:
		client, err := hosted.NewClient(opts.HostedToken, model, 0, false,
			hosted.WithBaseURL(r.hostedBaseURL),
			hosted.WithHTTPClient(r.httpClient),
			hosted.WithLogger(logger),
		)
		if err != nil {
			return nil, err
		}
		return client, nil
	case BackendLocal:
		return local.NewClient(opts.LocalEndpoint, model, 0, false,
			local.WithHTTPClient(r.httpClient),
			local.WithLogger(logger),
		), nil
	default:
		return nil, fmt.Errorf("unsupported backend: %v", backend)
	}
}

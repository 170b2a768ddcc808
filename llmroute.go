// Package llmroute routes a single text completion request to one of several
// LLM backends through one uniform call.
//
// Two backends take part in mode resolution:
//   - hf: the Hugging Face hosted inference API (bearer token)
//   - local: a self-hosted endpoint speaking the Ollama generate format
//
// The caller picks a Mode; "auto" prefers the hosted backend whenever a token
// is present and falls back to the local endpoint otherwise.
//
// Example usage:
//
//	out, err := llmroute.QueryLLM(ctx, "Summarize GDPR article 5", llmroute.Options{
//		Mode:          llmroute.ModeAuto,
//		LocalEndpoint: "http://localhost:11434/api/generate",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(out)
//
// Non-200 responses are not errors: the local backend returns the raw body and
// the hosted backend returns its JSON body in string form. Callers that care
// must inspect the returned text.
//
// For config-driven usage see GetClient, which builds a Client from a
// config.Config.
package llmroute

import (
	"context"
	"fmt"

	"github.com/xostack/llmroute/failure"
	"github.com/xostack/llmroute/hosted"
)

// DefaultModel is the model identifier used when Options.Model is empty.
const DefaultModel = hosted.DefaultModel

// Client is the interface that every backend client implements.
//
// All implementations are safe for concurrent use.
type Client interface {
	// Generate sends prompt to the backend and returns the completion text.
	Generate(ctx context.Context, prompt string) (string, error)

	// ProviderName returns a lowercase, stable provider identifier
	// ("hf", "local", "gemini").
	ProviderName() string

	// Close releases any resources held by the client. It is idempotent.
	Close() error
}

// Mode selects how the backend is chosen.
type Mode string

const (
	// ModeHosted always uses the hosted backend and requires a token.
	ModeHosted Mode = "hf"
	// ModeLocal always uses the local endpoint.
	ModeLocal Mode = "local"
	// ModeAuto uses the hosted backend when a token is present, else the local endpoint.
	ModeAuto Mode = "auto"
)

// ParseMode converts s into a Mode. An empty string yields ModeAuto.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case "":
		return ModeAuto, nil
	case ModeHosted, ModeLocal, ModeAuto:
		return m, nil
	default:
		return "", failure.NewConfigurationError(s, failure.ErrUnrecognizedMode)
	}
}

// Backend identifies the adapter chosen by Resolve.
type Backend int

const (
	BackendHosted Backend = iota + 1
	BackendLocal
)

func (b Backend) String() string {
	switch b {
	case BackendHosted:
		return "hf"
	case BackendLocal:
		return "local"
	default:
		return fmt.Sprintf("Backend(%d)", int(b))
	}
}

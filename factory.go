package llmroute

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/xostack/llmroute/config"
	"github.com/xostack/llmroute/gemini"
	"github.com/xostack/llmroute/hosted"
	"github.com/xostack/llmroute/local"
)

// OptionsFromConfig converts cfg into per-call Options. The mode is checked
// here; credentials are checked by Resolve.
func OptionsFromConfig(cfg config.Config) (Options, error) {
	mode, err := ParseMode(cfg.Mode)
	if err != nil {
		return Options{}, err
	}
	return Options{
		Mode:          mode,
		Model:         cfg.Model,
		HostedToken:   cfg.Hosted.Token,
		LocalEndpoint: cfg.Local.Endpoint,
	}, nil
}

// GetClient returns the client that mode resolution picks for cfg.
//
// It applies the same decision table as QueryLLM, so a *ConfigurationError
// is returned when cfg.Mode cannot be served with the credentials present.
//
// Example:
//
//	cfg := config.NewConfig("auto", os.Getenv("HF_TOKEN"), config.DefaultLocalEndpoint, 60)
//	client, err := llmroute.GetClient(cfg, false)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
// Making it a variable to allow for easy mocking in tests.
var GetClient func(cfg config.Config, debugMode bool) (Client, error) = func(cfg config.Config, debugMode bool) (Client, error) {
	opts, err := OptionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	backend, err := Resolve(opts.Mode, opts.HostedToken, opts.LocalEndpoint)
	if err != nil {
		return nil, err
	}

	return GetProviderClient(backend.String(), cfg, debugMode)
}

// GetProviderClient builds the named provider directly, bypassing mode
// resolution. Supported names: "hf", "local", "gemini".
func GetProviderClient(name string, cfg config.Config, debugMode bool) (Client, error) {
	logger := debugLogger(debugMode)

	model := cfg.Model
	if model == "" && name != "gemini" {
		model = DefaultModel
	}

	switch name {
	case "hf":
		if cfg.Hosted.Token == "" {
			return nil, fmt.Errorf("hosted token not found in configuration")
		}
		client, err := hosted.NewClient(cfg.Hosted.Token, model, cfg.RequestTimeoutSeconds, debugMode,
			hosted.WithBaseURL(cfg.Hosted.BaseURL),
			hosted.WithLogger(logger),
		)
		if err != nil {
			return nil, err
		}
		return client, nil
	case "local":
		return local.NewClient(cfg.Local.Endpoint, model, cfg.RequestTimeoutSeconds, debugMode,
			local.WithLogger(logger),
		), nil
	case "gemini":
		if cfg.Gemini.APIKey == "" {
			return nil, fmt.Errorf("API key for Gemini not found in configuration")
		}
		client, err := gemini.NewClient(context.Background(), cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.RequestTimeoutSeconds, debugMode,
			gemini.WithLogger(logger),
		)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", name)
	}
}

// Providers lists the names accepted by GetProviderClient.
func Providers() []string {
	return []string{"hf", "local", "gemini"}
}

func debugLogger(debugMode bool) logrus.FieldLogger {
	if !debugMode {
		return logrus.StandardLogger()
	}
	l := logrus.New()
	l.SetLevel(logrus.DebugLevel)
	return l
}

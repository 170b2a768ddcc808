package llmroute

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/xostack/llmroute/config"
)

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.NewConfig("", "t", "http://localhost:11434/api/generate", 0)
	cfg.Model = "org/model"

	opts, err := OptionsFromConfig(cfg)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if opts.Mode != ModeAuto {
		t.Errorf("Expected empty mode to become auto, got '%s'", opts.Mode)
	}
	if opts.Model != "org/model" || opts.HostedToken != "t" || opts.LocalEndpoint != cfg.Local.Endpoint {
		t.Errorf("Unexpected options: %+v", opts)
	}

	cfg.Mode = "bogus"
	if _, err := OptionsFromConfig(cfg); !errors.Is(err, ErrUnrecognizedMode) {
		t.Errorf("Expected ErrUnrecognizedMode, got: %v", err)
	}
}

func TestGetClient_Resolution(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.Config
		expected string
		reason   error
	}{
		{
			name:     "hf with token",
			cfg:      config.NewConfig("hf", "t", "", 30),
			expected: "hf",
		},
		{
			name:   "hf without token",
			cfg:    config.NewConfig("hf", "", "http://localhost:11434/api/generate", 30),
			reason: ErrHostedCredentialRequired,
		},
		{
			name:     "local without endpoint",
			cfg:      config.NewConfig("local", "", "", 30),
			expected: "local",
		},
		{
			name:     "auto prefers hosted",
			cfg:      config.NewConfig("auto", "t", "http://localhost:11434/api/generate", 30),
			expected: "hf",
		},
		{
			name:     "auto falls back to local",
			cfg:      config.NewConfig("auto", "", "http://localhost:11434/api/generate", 0),
			expected: "local",
		},
		{
			name:   "auto with nothing",
			cfg:    config.NewConfig("auto", "", "", 30),
			reason: ErrNoBackendAvailable,
		},
		{
			name:   "unrecognized mode",
			cfg:    config.NewConfig("gemini", "t", "http://x", 30),
			reason: ErrUnrecognizedMode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := GetClient(tt.cfg, false)
			if tt.reason != nil {
				if !errors.Is(err, tt.reason) {
					t.Fatalf("Expected '%v', got: %v", tt.reason, err)
				}
				if client != nil {
					t.Error("Expected client to be nil when error occurs")
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error, got: %v", err)
			}
			defer client.Close()

			if client.ProviderName() != tt.expected {
				t.Errorf("Expected provider name '%s', got '%s'", tt.expected, client.ProviderName())
			}
		})
	}
}

func TestGetClient_GeneratesAgainstHostedBaseURL(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/org/model" {
			t.Errorf("Unexpected path '%s'", r.URL.Path)
		}
		w.Write([]byte(`[{"generated_text": "configured"}]`))
	}))
	defer mockServer.Close()

	cfg := config.NewConfig("hf", "t", "", 10)
	cfg.Model = "org/model"
	cfg.Hosted.BaseURL = mockServer.URL

	client, err := GetClient(cfg, true)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	defer client.Close()

	result, err := client.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if result != "configured" {
		t.Errorf("Expected 'configured', got '%s'", result)
	}
}

func TestGetProviderClient(t *testing.T) {
	cfg := config.NewConfig("auto", "t", "http://localhost:11434/api/generate", 30)

	for _, name := range []string{"hf", "local"} {
		t.Run(name, func(t *testing.T) {
			client, err := GetProviderClient(name, cfg, false)
			if err != nil {
				t.Fatalf("Expected no error, got: %v", err)
			}
			if client.ProviderName() != name {
				t.Errorf("Expected provider name '%s', got '%s'", name, client.ProviderName())
			}
			if err := client.Close(); err != nil {
				t.Errorf("Expected first Close() to succeed, got: %v", err)
			}
			if err := client.Close(); err != nil {
				t.Errorf("Expected second Close() to succeed, got: %v", err)
			}
		})
	}
}

func TestGetProviderClient_Errors(t *testing.T) {
	tests := []struct {
		name        string
		provider    string
		cfg         config.Config
		expectedMsg string
	}{
		{
			name:        "hf without token",
			provider:    "hf",
			cfg:         config.NewConfig("auto", "", "", 0),
			expectedMsg: "hosted token not found in configuration",
		},
		{
			name:        "gemini without key",
			provider:    "gemini",
			cfg:         config.NewConfig("auto", "t", "", 0),
			expectedMsg: "API key for Gemini not found in configuration",
		},
		{
			name:        "unsupported provider",
			provider:    "groq",
			cfg:         config.NewConfig("auto", "t", "", 0),
			expectedMsg: "unsupported LLM provider: groq",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := GetProviderClient(tt.provider, tt.cfg, false)
			if err == nil {
				t.Fatal("Expected error")
			}
			if client != nil {
				t.Error("Expected client to be nil when error occurs")
			}
			if err.Error() != tt.expectedMsg {
				t.Errorf("Expected error message '%s', got '%s'", tt.expectedMsg, err.Error())
			}
		})
	}
}

func TestProviders(t *testing.T) {
	providers := Providers()
	if len(providers) != 3 {
		t.Fatalf("Expected 3 providers, got %d", len(providers))
	}
	for _, name := range providers {
		if name == "" {
			t.Error("Provider name should not be empty")
		}
	}
}

// Package config handles loading and managing llmroute configuration.
//
// Configuration is read from TOML files following the XDG Base Directory
// specification, or from YAML when the file name ends in .yaml or .yml. It can
// also be built programmatically for library usage.
//
// Example TOML configuration:
//
//	mode = "auto"
//	model = "google/gemma-1.1-7b-it"
//	request_timeout_seconds = 0
//
//	[hosted]
//	token = "hf_..."
//
//	[local]
//	endpoint = "http://localhost:11434/api/generate"
//
//	[logging]
//	level = "info"
//	format = "text"
//
// Example programmatic usage:
//
//	cfg := config.NewConfig("auto", "", "http://localhost:11434/api/generate", 30)
package config

import (
	"bufio"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	appName         = "llmroute"
	configFileName  = "config.toml"
	DefaultDirPerm  = 0750 // rwxr-x---
	DefaultFilePerm = 0600 // rw------- (contains the hosted token)

	// DefaultLocalEndpoint is the generate URL of a stock Ollama install.
	DefaultLocalEndpoint = "http://localhost:11434/api/generate"
)

// Config holds the router configuration.
type Config struct {
	// Mode is one of "hf", "local" or "auto". Empty means "auto".
	Mode string `toml:"mode" yaml:"mode"`

	// Model is the model identifier sent to the selected backend.
	// Empty means the router default.
	Model string `toml:"model,omitempty" yaml:"model,omitempty"`

	// RequestTimeoutSeconds bounds each backend request. Zero or less leaves
	// requests without a client timeout.
	RequestTimeoutSeconds int `toml:"request_timeout_seconds" yaml:"request_timeout_seconds"`

	Hosted  HostedConfig  `toml:"hosted" yaml:"hosted"`
	Local   LocalConfig   `toml:"local" yaml:"local"`
	Gemini  GeminiConfig  `toml:"gemini" yaml:"gemini"`
	Logging LoggingConfig `toml:"logging" yaml:"logging"`
}

// HostedConfig configures the hosted inference backend.
type HostedConfig struct {
	// Token is the bearer token. Sensitive.
	Token string `toml:"token,omitempty" yaml:"token,omitempty"`
	// BaseURL overrides the inference API root.
	BaseURL string `toml:"base_url,omitempty" yaml:"base_url,omitempty"`
}

// LocalConfig configures the self-hosted backend.
type LocalConfig struct {
	// Endpoint is the full generate URL, used verbatim.
	Endpoint string `toml:"endpoint,omitempty" yaml:"endpoint,omitempty"`
}

// GeminiConfig configures the optional Gemini provider. It is only used when
// the provider is requested explicitly and never takes part in mode resolution.
type GeminiConfig struct {
	APIKey string `toml:"api_key,omitempty" yaml:"api_key,omitempty"`
	Model  string `toml:"model,omitempty" yaml:"model,omitempty"`
}

// LoggingConfig configures the logrus logger built by package logging.
type LoggingConfig struct {
	Level  string `toml:"level,omitempty" yaml:"level,omitempty"`   // panic..trace
	Format string `toml:"format,omitempty" yaml:"format,omitempty"` // text or json
}

var validModes = []string{"hf", "local", "auto"}

// Default configuration values.
func defaultConfig() Config {
	return Config{
		Mode: "auto",
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// GetConfigFilePath determines the configuration file path based on XDG specs:
// $XDG_CONFIG_HOME/llmroute/config.toml, or $HOME/.config/llmroute/config.toml.
//
// The returned path may not exist.
func GetConfigFilePath() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("could not determine user home directory: %w", err)
		}
		configHome = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configHome, appName, configFileName), nil
}

// Load reads the configuration file, creates it interactively if missing,
// merges with defaults, and returns the final Config.
func Load(debugMode bool) (Config, error) {
	cfgPath, err := GetConfigFilePath()
	if err != nil {
		return Config{}, fmt.Errorf("failed to determine config path: %w", err)
	}

	_, err = os.Stat(cfgPath)
	if err == nil {
		if debugMode {
			logrus.Debugf("Loading configuration from %s", cfgPath)
		}
		return LoadFromFile(cfgPath)
	}
	if !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to access config file %s: %w", cfgPath, err)
	}

	if debugMode {
		logrus.Debugf("Configuration file not found at %s", cfgPath)
	}
	if !askToCreateConfigFile() {
		return Config{}, fmt.Errorf("configuration file creation declined by user.\n\nTo create a configuration file later, run the CLI with -create-config or write %s by hand", cfgPath)
	}

	cfg := defaultConfig()
	if err := createConfigFileInteractive(cfgPath, &cfg, debugMode); err != nil {
		return Config{}, fmt.Errorf("failed to create configuration file: %w", err)
	}
	return cfg, nil
}

// askToCreateConfigFile prompts the user if they want to create the config file.
func askToCreateConfigFile() bool {
	reader := bufio.NewReader(os.Stdin)
	fmt.Printf("Configuration file not found. llmroute needs a hosted token or a local endpoint.\n")
	fmt.Print("Do you want to create it now? (y/N): ")
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}

// createConfigFileInteractive guides the user through setting up the initial config.
func createConfigFileInteractive(cfgPath string, cfg *Config, debugMode bool) error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("\n--- Initial Configuration ---")
	fmt.Println("Provide a hosted token, a local endpoint, or both.")

	fmt.Printf("Enter local endpoint (leave empty to skip, '-' for %s): ", DefaultLocalEndpoint)
	endpointInput, _ := reader.ReadString('\n')
	endpointInput = strings.TrimSpace(endpointInput)
	if endpointInput == "-" {
		endpointInput = DefaultLocalEndpoint
	}
	if endpointInput != "" {
		if err := validateLocalEndpoint(endpointInput, debugMode); err != nil {
			fmt.Printf("⚠️  Warning: could not reach %s: %v\n", endpointInput, err)
			fmt.Printf("   The configuration will be saved anyway. Make sure the server is running.\n")
		} else {
			fmt.Printf("✅ Reached local endpoint at %s\n", endpointInput)
		}
		cfg.Local.Endpoint = endpointInput
	}

	fmt.Print("Enter hosted API token (leave empty to skip): ")
	tokenInput, _ := reader.ReadString('\n')
	tokenInput = strings.TrimSpace(tokenInput)
	if tokenInput != "" {
		cfg.Hosted.Token = tokenInput
		fmt.Printf("✅ Hosted token configured\n")
	}

	if cfg.Local.Endpoint == "" && cfg.Hosted.Token == "" {
		fmt.Printf("\n❌ No backend configured.\n")
		return errors.New("at least one of hosted token or local endpoint must be configured")
	}

	fmt.Printf("Enter mode (%s; default: %s): ", strings.Join(validModes, ", "), cfg.Mode)
	modeInput, _ := reader.ReadString('\n')
	modeInput = strings.TrimSpace(modeInput)
	if modeInput != "" {
		if !isValidMode(modeInput) {
			return fmt.Errorf("invalid mode '%s': must be one of %s", modeInput, strings.Join(validModes, ", "))
		}
		cfg.Mode = modeInput
	}
	fmt.Printf("✅ Mode set to: %s\n", cfg.Mode)

	if err := Save(*cfg, cfgPath); err != nil {
		return err
	}

	fmt.Printf("\n✅ Configuration file created successfully at %s\n", cfgPath)
	return nil
}

// validateLocalEndpoint checks that the host behind rawURL is reachable.
func validateLocalEndpoint(rawURL string, debugMode bool) error {
	if rawURL == "" {
		return errors.New("URL cannot be empty")
	}

	parsedURL, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return errors.New("URL scheme must be http or https")
	}

	// Only reachability matters; the generate path itself rejects GET.
	root := url.URL{Scheme: parsedURL.Scheme, Host: parsedURL.Host, Path: "/"}
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(root.String())
	if err != nil {
		if debugMode {
			logrus.Warnf("Local endpoint validation failed for %s: %v", rawURL, err)
		}
		return fmt.Errorf("failed to connect to %s: %w", root.String(), err)
	}
	defer resp.Body.Close()

	if debugMode {
		logrus.Debugf("Reached %s (Status: %s)", root.String(), resp.Status)
	}
	return nil
}

// NewConfig creates a configuration programmatically, without file I/O.
func NewConfig(mode, hostedToken, localEndpoint string, timeoutSeconds int) Config {
	cfg := defaultConfig()
	cfg.Mode = mode
	cfg.Hosted.Token = hostedToken
	cfg.Local.Endpoint = localEndpoint
	cfg.RequestTimeoutSeconds = timeoutSeconds
	return cfg
}

// LoadFromFile loads configuration from a specific file path and merges it
// over the defaults. Files ending in .yaml or .yml are decoded as YAML,
// everything else as TOML. No prompts are shown.
func LoadFromFile(filePath string) (Config, error) {
	cfg := defaultConfig()

	_, err := os.Stat(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("configuration file not found at %s", filePath)
		}
		return Config{}, fmt.Errorf("failed to access config file %s: %w", filePath, err)
	}

	if isYAML(filePath) {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", filePath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to decode YAML config file %s: %w", filePath, err)
		}
	} else {
		meta, err := toml.DecodeFile(filePath, &cfg)
		if err != nil {
			return Config{}, fmt.Errorf("failed to decode TOML config file %s: %w", filePath, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			logrus.Warnf("Unknown configuration keys found in %s: %v", filePath, undecoded)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration in %s: %w", filePath, err)
	}

	return cfg, nil
}

// Save writes cfg to path, creating parent directories. The format follows the
// file extension as in LoadFromFile.
func Save(cfg Config, path string) error {
	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, DefaultDirPerm); err != nil {
		return fmt.Errorf("failed to create config directory %s: %w", configDir, err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, DefaultFilePerm)
	if err != nil {
		return fmt.Errorf("failed to create config file %s: %w", path, err)
	}
	defer file.Close()

	if isYAML(path) {
		encoder := yaml.NewEncoder(file)
		defer encoder.Close()
		if err := encoder.Encode(cfg); err != nil {
			return fmt.Errorf("failed to encode configuration to YAML: %w", err)
		}
		return nil
	}

	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode configuration to TOML: %w", err)
	}
	return nil
}

// Validate checks the values that can be checked without knowing which
// backend will be picked. Credential requirements are enforced by the router.
func (c Config) Validate() error {
	if c.Mode != "" && !isValidMode(c.Mode) {
		return fmt.Errorf("unrecognized mode '%s': must be one of %s", c.Mode, strings.Join(validModes, ", "))
	}
	if c.RequestTimeoutSeconds < 0 {
		return fmt.Errorf("invalid timeout: must not be negative, got %d", c.RequestTimeoutSeconds)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("invalid logging format '%s': must be text or json", c.Logging.Format)
	}
	if c.Logging.Level != "" {
		if _, err := logrus.ParseLevel(c.Logging.Level); err != nil {
			return fmt.Errorf("invalid logging level: %w", err)
		}
	}
	return nil
}

func isValidMode(mode string) bool {
	for _, m := range validModes {
		if m == mode {
			return true
		}
	}
	return false
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

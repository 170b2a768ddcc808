package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/xostack/llmroute/config"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.LoggingConfig
		debug    bool
		expected logrus.Level
	}{
		{name: "empty level", cfg: config.LoggingConfig{}, expected: logrus.InfoLevel},
		{name: "warn level", cfg: config.LoggingConfig{Level: "warn"}, expected: logrus.WarnLevel},
		{name: "invalid level", cfg: config.LoggingConfig{Level: "loud"}, expected: logrus.InfoLevel},
		{name: "debug mode overrides", cfg: config.LoggingConfig{Level: "error"}, debug: true, expected: logrus.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := New(tt.cfg, tt.debug, &bytes.Buffer{})
			if logger.GetLevel() != tt.expected {
				t.Errorf("Expected level %v, got %v", tt.expected, logger.GetLevel())
			}
		})
	}
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(config.LoggingConfig{Format: "json"}, false, &buf)

	logger.WithField("backend", "local").Info("resolved")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected JSON log line, got %q: %v", buf.String(), err)
	}
	if entry["backend"] != "local" {
		t.Errorf("Expected backend field 'local', got %v", entry["backend"])
	}
}

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(config.LoggingConfig{Format: "text"}, false, &buf)

	logger.Info("hello")

	if !strings.Contains(buf.String(), "msg=hello") {
		t.Errorf("Expected text formatted line, got %q", buf.String())
	}
}

package cliconfig

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	cfg := DefaultConfig()
	cfg.CorpID = "wwbefbb2e3cdd824b6"
	cfg.Secret = "app-secret"
	cfg.AgentID = 1000002
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %v, want %v", cfg.BaseURL, DefaultBaseURL)
	}
	if cfg.HTTPTimeout != 15*time.Second {
		t.Errorf("HTTPTimeout = %v, want 15s", cfg.HTTPTimeout)
	}
	if cfg.FlushInterval != 2*time.Second {
		t.Errorf("FlushInterval = %v, want 2s", cfg.FlushInterval)
	}
	if cfg.MaxBatchBytes != 2048 {
		t.Errorf("MaxBatchBytes = %v, want 2048", cfg.MaxBatchBytes)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %v, want info", cfg.LogLevel)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		wantErr     string
		wantBaseURL string
	}{
		{
			name:   "valid minimal config",
			mutate: func(*Config) {},
		},
		{
			name:    "missing credentials",
			mutate:  func(c *Config) { c.CorpID, c.Secret, c.AgentID = "", "", 0 },
			wantErr: "corp-id, secret, agent-id required",
		},
		{
			name:    "missing secret only",
			mutate:  func(c *Config) { c.Secret = "" },
			wantErr: "secret required",
		},
		{
			name:    "negative agent id",
			mutate:  func(c *Config) { c.AgentID = -1 },
			wantErr: "agent-id required",
		},
		{
			name:        "base url defaults when omitted",
			mutate:      func(c *Config) { c.BaseURL = "" },
			wantBaseURL: DefaultBaseURL,
		},
		{
			name:        "trailing slash is stripped",
			mutate:      func(c *Config) { c.BaseURL = "http://localhost:8080/" },
			wantBaseURL: "http://localhost:8080",
		},
		{
			name:    "invalid timeout",
			mutate:  func(c *Config) { c.HTTPTimeout = 0 },
			wantErr: "http timeout",
		},
		{
			name:    "invalid flush interval",
			mutate:  func(c *Config) { c.FlushInterval = -time.Second },
			wantErr: "flush interval",
		},
		{
			name:    "batch above message limit",
			mutate:  func(c *Config) { c.MaxBatchBytes = 4096 },
			wantErr: "max batch bytes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()

			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() unexpected error: %v", err)
			}
			if tt.wantBaseURL != "" && cfg.BaseURL != tt.wantBaseURL {
				t.Errorf("BaseURL = %v, want %v", cfg.BaseURL, tt.wantBaseURL)
			}
		})
	}
}

func TestConfig_AuthAndMasked(t *testing.T) {
	cfg := validConfig()

	auth := cfg.Auth()
	if auth.CorpID != cfg.CorpID || auth.Secret != cfg.Secret || auth.AgentID != cfg.AgentID {
		t.Errorf("Auth() = %+v, want triple of %+v", auth, cfg)
	}

	masked := cfg.Masked()
	if masked.Secret != "*****" {
		t.Errorf("Masked().Secret = %q, want *****", masked.Secret)
	}
	if cfg.Secret != "app-secret" {
		t.Error("Masked() modified the receiver")
	}
	if (Config{}).Masked().Secret != "" {
		t.Error("Masked() should leave an empty secret empty")
	}
}

func TestConfig_Logger(t *testing.T) {
	cfg := validConfig()
	cfg.LogLevel = "debug"
	if _, err := cfg.Logger(); err != nil {
		t.Fatalf("Logger() error: %v", err)
	}

	cfg.LogLevel = "loud"
	if _, err := cfg.Logger(); err == nil {
		t.Error("Logger() expected error for unknown level")
	}
}

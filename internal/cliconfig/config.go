package cliconfig

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bft-labs/wxnotify/internal/batch"
	"github.com/bft-labs/wxnotify/pkg/wxwork"
)

// DefaultBaseURL is the public WeCom API host.
const DefaultBaseURL = wxwork.DefaultBaseURL

// Config holds CLI configuration for wxnotify.
type Config struct {
	CorpID  string
	Secret  string
	AgentID int

	BaseURL     string
	HTTPTimeout time.Duration
	LogLevel    string

	// Default recipients; "|" separated. All empty means everyone.
	ToUser  string
	ToParty string
	ToTag   string
	Safe    bool

	// Pipe mode.
	FlushInterval time.Duration
	MaxBatchBytes int
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		BaseURL:       DefaultBaseURL,
		HTTPTimeout:   wxwork.DefaultHTTPTimeout,
		LogLevel:      "info",
		FlushInterval: 2 * time.Second,
		MaxBatchBytes: batch.DefaultMaxBytes,
	}
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	var missing []string
	if c.CorpID == "" {
		missing = append(missing, "corp-id")
	}
	if c.Secret == "" {
		missing = append(missing, "secret")
	}
	if c.AgentID <= 0 {
		missing = append(missing, "agent-id")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s required", strings.Join(missing, ", "))
	}

	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")

	if c.HTTPTimeout <= 0 {
		return errors.New("http timeout must be positive")
	}
	if c.FlushInterval <= 0 {
		return errors.New("flush interval must be positive")
	}
	if c.MaxBatchBytes <= 0 || c.MaxBatchBytes > batch.DefaultMaxBytes {
		return fmt.Errorf("max batch bytes must be between 1 and %d", batch.DefaultMaxBytes)
	}
	return nil
}

// Auth returns the credential triple of the configuration.
func (c Config) Auth() wxwork.Auth {
	return wxwork.Auth{CorpID: c.CorpID, Secret: c.Secret, AgentID: c.AgentID}
}

// Masked returns a copy safe to log.
func (c Config) Masked() Config {
	if c.Secret != "" {
		c.Secret = "*****"
	}
	return c
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}

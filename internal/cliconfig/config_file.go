package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	CorpID        string `toml:"corp_id"`
	Secret        string `toml:"secret"`
	AgentID       int    `toml:"agent_id"`
	BaseURL       string `toml:"base_url"`
	HTTPTimeout   string `toml:"http_timeout"`
	LogLevel      string `toml:"log_level"`
	ToUser        string `toml:"to_user"`
	ToParty       string `toml:"to_party"`
	ToTag         string `toml:"to_tag"`
	Safe          *bool  `toml:"safe"`
	FlushInterval string `toml:"flush_interval"`
	MaxBatchBytes int    `toml:"max_batch_bytes"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.wxnotify/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".wxnotify", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("corp-id", fc.CorpID, &cfg.CorpID)
	s.setString("secret", fc.Secret, &cfg.Secret)
	s.setString("base-url", fc.BaseURL, &cfg.BaseURL)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setString("to-user", fc.ToUser, &cfg.ToUser)
	s.setString("to-party", fc.ToParty, &cfg.ToParty)
	s.setString("to-tag", fc.ToTag, &cfg.ToTag)

	if err := s.setDuration("timeout", fc.HTTPTimeout, &cfg.HTTPTimeout); err != nil {
		return err
	}
	if err := s.setDuration("flush-interval", fc.FlushInterval, &cfg.FlushInterval); err != nil {
		return err
	}

	s.setInt("agent-id", fc.AgentID, &cfg.AgentID)
	s.setInt("max-batch-bytes", fc.MaxBatchBytes, &cfg.MaxBatchBytes)

	s.setBool("safe", fc.Safe, &cfg.Safe)

	return nil
}

// LoadConfigFile loads path, if it exists, on top of cfg.
func LoadConfigFile(cfg *Config, path string, changed map[string]bool) error {
	if path == "" || !FileExists(path) {
		return nil
	}
	fc, err := LoadFileConfig(path)
	if err != nil {
		return err
	}
	return ApplyFileConfig(cfg, fc, changed)
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

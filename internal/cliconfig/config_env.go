package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (WXNOTIFY_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("corp-id", os.Getenv("WXNOTIFY_CORP_ID"), &cfg.CorpID)
	s.setString("secret", os.Getenv("WXNOTIFY_SECRET"), &cfg.Secret)
	s.setString("base-url", os.Getenv("WXNOTIFY_BASE_URL"), &cfg.BaseURL)
	s.setString("log-level", os.Getenv("WXNOTIFY_LOG_LEVEL"), &cfg.LogLevel)
	s.setString("to-user", os.Getenv("WXNOTIFY_TO_USER"), &cfg.ToUser)
	s.setString("to-party", os.Getenv("WXNOTIFY_TO_PARTY"), &cfg.ToParty)
	s.setString("to-tag", os.Getenv("WXNOTIFY_TO_TAG"), &cfg.ToTag)

	if err := s.setDuration("timeout", os.Getenv("WXNOTIFY_HTTP_TIMEOUT"), &cfg.HTTPTimeout); err != nil {
		return err
	}
	if err := s.setDuration("flush-interval", os.Getenv("WXNOTIFY_FLUSH_INTERVAL"), &cfg.FlushInterval); err != nil {
		return err
	}

	if err := s.setIntFromString("agent-id", os.Getenv("WXNOTIFY_AGENT_ID"), &cfg.AgentID); err != nil {
		return err
	}
	if err := s.setIntFromString("max-batch-bytes", os.Getenv("WXNOTIFY_MAX_BATCH_BYTES"), &cfg.MaxBatchBytes); err != nil {
		return err
	}

	s.setBoolFromString("safe", os.Getenv("WXNOTIFY_SAFE"), &cfg.Safe)

	return nil
}

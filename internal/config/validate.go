package config

import (
	"fmt"
	"time"
)

var validBackends = map[string]bool{
	BackendSSM:    true,
	BackendS3:     true,
	BackendMemory: true,
}

var validPollingModes = map[string]bool{
	PollingRule:       true,
	PollingSelfInvoke: true,
}

var validLogFormats = map[string]bool{
	"auto":    true,
	"json":    true,
	"console": true,
}

// minRuleInterval is the finest schedule EventBridge rate expressions allow.
const minRuleInterval = time.Minute

// Validate checks the configuration for common errors and returns a detailed error if validation fails.
func (c *Config) Validate() error {
	if err := c.validateStateStore(); err != nil {
		return fmt.Errorf("state store validation failed: %w", err)
	}
	if err := c.validatePolling(); err != nil {
		return fmt.Errorf("polling validation failed: %w", err)
	}

	delays := map[string]time.Duration{
		"delays.data_source_retry": c.Delays.DataSourceRetry,
		"delays.conflict_retry":    c.Delays.ConflictRetry,
		"delays.delete_settle":     c.Delays.DeleteSettle,
		"answer.link_expiry":       c.Answer.LinkExpiry,
	}
	for name, d := range delays {
		if d < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	if c.Answer.LinkExpiry > 7*24*time.Hour {
		return fmt.Errorf("answer.link_expiry must be at most 7 days, got %s", c.Answer.LinkExpiry)
	}

	if !validLogFormats[c.Log.Format] {
		return fmt.Errorf("invalid log.format %q (must be auto, json or console)", c.Log.Format)
	}
	return nil
}

func (c *Config) validateStateStore() error {
	s := c.StateStore
	if !validBackends[s.Backend] {
		return fmt.Errorf("invalid backend %q (must be ssm, s3 or memory)", s.Backend)
	}
	if s.Backend == BackendSSM && s.ParameterPrefix == "" {
		return fmt.Errorf("parameter_prefix is required for the ssm backend")
	}
	if s.Backend == BackendS3 && s.Bucket == "" {
		return fmt.Errorf("bucket is required for the s3 backend")
	}
	return nil
}

func (c *Config) validatePolling() error {
	p := c.Polling
	if !validPollingModes[p.Mode] {
		return fmt.Errorf("invalid mode %q (must be rule or self-invoke)", p.Mode)
	}
	if p.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be at least 1, got %d", p.MaxAttempts)
	}
	if p.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", p.Interval)
	}
	if p.Mode == PollingRule {
		if p.Interval < minRuleInterval {
			return fmt.Errorf("interval must be at least %s in rule mode, got %s", minRuleInterval, p.Interval)
		}
		if p.Interval%time.Minute != 0 {
			return fmt.Errorf("interval must be a whole number of minutes in rule mode, got %s", p.Interval)
		}
	}
	return nil
}

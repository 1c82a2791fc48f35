package config

import "time"

// State store backends.
const (
	BackendSSM    = "ssm"
	BackendS3     = "s3"
	BackendMemory = "memory"
)

// Polling modes.
const (
	// PollingRule re-invokes the function from a scheduled EventBridge rule.
	PollingRule = "rule"
	// PollingSelfInvoke sleeps and re-invokes the function asynchronously.
	PollingSelfInvoke = "self-invoke"
)

// Config is the complete runtime configuration.
type Config struct {
	Region   string `yaml:"region"`
	Profile  string `yaml:"profile"`
	Endpoint string `yaml:"endpoint"`

	StateStore StateStoreConfig `yaml:"state_store"`
	Polling    PollingConfig    `yaml:"polling"`
	Delays     DelayConfig      `yaml:"delays"`
	Bot        BotConfig        `yaml:"bot"`
	Answer     AnswerConfig     `yaml:"answer"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Log        LogConfig        `yaml:"log"`
}

// StateStoreConfig selects where resource ids and poll counters live.
type StateStoreConfig struct {
	Backend         string `yaml:"backend"`
	ParameterPrefix string `yaml:"parameter_prefix"`
	Bucket          string `yaml:"bucket"`
	KeyPrefix       string `yaml:"key_prefix"`
}

// PollingConfig controls how pending creations are re-checked.
type PollingConfig struct {
	Mode        string        `yaml:"mode"`
	Interval    time.Duration `yaml:"interval"`
	MaxAttempts int           `yaml:"max_attempts"`
	// FunctionARN is the function to re-invoke when the Lambda context
	// does not provide one.
	FunctionARN string `yaml:"function_arn"`
}

// DelayConfig holds the fixed waits of the provisioners.
type DelayConfig struct {
	DataSourceRetry time.Duration `yaml:"data_source_retry"`
	ConflictRetry   time.Duration `yaml:"conflict_retry"`
	DeleteSettle    time.Duration `yaml:"delete_settle"`
}

// BotConfig holds bot deployment settings.
type BotConfig struct {
	AliasName string `yaml:"alias_name"`
}

// AnswerConfig configures the fulfillment handler.
type AnswerConfig struct {
	DataBucket string        `yaml:"data_bucket"`
	IndexID    string        `yaml:"index_id"`
	IndexKey   string        `yaml:"index_key"`
	LinkExpiry time.Duration `yaml:"link_expiry"`
}

// MetricsConfig configures the Pushgateway export.
type MetricsConfig struct {
	PushGatewayURL string `yaml:"pushgateway_url"`
	Job            string `yaml:"job"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		StateStore: StateStoreConfig{
			Backend:         BackendSSM,
			ParameterPrefix: "/lexkendra",
			KeyPrefix:       "lexkendra",
		},
		Polling: PollingConfig{
			Mode:        PollingRule,
			Interval:    2 * time.Minute,
			MaxAttempts: 4,
		},
		Delays: DelayConfig{
			DataSourceRetry: 15 * time.Second,
			ConflictRetry:   10 * time.Second,
			DeleteSettle:    15 * time.Second,
		},
		Bot: BotConfig{
			AliasName: "quickstart",
		},
		Answer: AnswerConfig{
			LinkExpiry: 7 * 24 * time.Hour,
		},
		Metrics: MetricsConfig{
			Job: "lexkendra",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
	}
}

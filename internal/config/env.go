package config

import (
	"os"
	"strconv"
	"time"
)

// Environment variables.
const (
	EnvConfigFile = "LEXKENDRA_CONFIG"

	EnvRegion   = "AWS_REGION"
	EnvProfile  = "AWS_PROFILE"
	EnvEndpoint = "LEXKENDRA_AWS_ENDPOINT"

	EnvStateBackend = "LEXKENDRA_STATE_BACKEND"
	EnvStatePrefix  = "LEXKENDRA_STATE_PREFIX"
	EnvStateBucket  = "LEXKENDRA_STATE_BUCKET"

	EnvPollMode        = "LEXKENDRA_POLL_MODE"
	EnvPollInterval    = "LEXKENDRA_POLL_INTERVAL"
	EnvPollMaxAttempts = "LEXKENDRA_POLL_MAX_ATTEMPTS"
	EnvFunctionARN     = "LEXKENDRA_FUNCTION_ARN"

	EnvDataSourceRetry = "LEXKENDRA_DATASOURCE_RETRY_DELAY"
	EnvConflictRetry   = "LEXKENDRA_CONFLICT_RETRY_DELAY"
	EnvDeleteSettle    = "LEXKENDRA_DELETE_SETTLE"

	EnvBotAlias = "LEXKENDRA_BOT_ALIAS"

	EnvDataBucket = "KENDRA_DATA_BUCKET"
	EnvIndexID    = "KENDRA_INDEX"
	EnvIndexKey   = "KENDRA_INDEX_KEY"
	EnvLinkExpiry = "LEXKENDRA_LINK_EXPIRY"

	EnvPushGateway = "LEXKENDRA_PUSHGATEWAY_URL"

	EnvLogLevel  = "LEXKENDRA_LOG_LEVEL"
	EnvLogFormat = "LEXKENDRA_LOG_FORMAT"
)

// applyEnv overrides fields from the environment. Unset or unparsable
// variables keep the current value.
func (c *Config) applyEnv() {
	c.Region = parseString(EnvRegion, c.Region)
	c.Profile = parseString(EnvProfile, c.Profile)
	c.Endpoint = parseString(EnvEndpoint, c.Endpoint)

	c.StateStore.Backend = parseString(EnvStateBackend, c.StateStore.Backend)
	c.StateStore.ParameterPrefix = parseString(EnvStatePrefix, c.StateStore.ParameterPrefix)
	c.StateStore.Bucket = parseString(EnvStateBucket, c.StateStore.Bucket)

	c.Polling.Mode = parseString(EnvPollMode, c.Polling.Mode)
	c.Polling.Interval = parseDuration(EnvPollInterval, c.Polling.Interval)
	c.Polling.MaxAttempts = parseInt(EnvPollMaxAttempts, c.Polling.MaxAttempts)
	c.Polling.FunctionARN = parseString(EnvFunctionARN, c.Polling.FunctionARN)

	c.Delays.DataSourceRetry = parseDuration(EnvDataSourceRetry, c.Delays.DataSourceRetry)
	c.Delays.ConflictRetry = parseDuration(EnvConflictRetry, c.Delays.ConflictRetry)
	c.Delays.DeleteSettle = parseDuration(EnvDeleteSettle, c.Delays.DeleteSettle)

	c.Bot.AliasName = parseString(EnvBotAlias, c.Bot.AliasName)

	c.Answer.DataBucket = parseString(EnvDataBucket, c.Answer.DataBucket)
	c.Answer.IndexID = parseString(EnvIndexID, c.Answer.IndexID)
	c.Answer.IndexKey = parseString(EnvIndexKey, c.Answer.IndexKey)
	c.Answer.LinkExpiry = parseDuration(EnvLinkExpiry, c.Answer.LinkExpiry)

	c.Metrics.PushGatewayURL = parseString(EnvPushGateway, c.Metrics.PushGatewayURL)

	c.Log.Level = parseString(EnvLogLevel, c.Log.Level)
	c.Log.Format = parseString(EnvLogFormat, c.Log.Format)
}

func parseString(envVar, defaultVal string) string {
	if val := os.Getenv(envVar); val != "" {
		return val
	}
	return defaultVal
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}

	return d
}

// parseInt parses an integer from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return i
}

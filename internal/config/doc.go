// Package config defines the runtime configuration shared by the Lambda
// handlers and the CLI.
//
// A [Config] is built in three layers: an optional YAML file, the
// built-in defaults for every field the file leaves empty, and finally
// environment variable overrides. The result is checked by
// [Config.Validate] before use.
package config

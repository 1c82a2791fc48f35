// Package logging builds the logr.Logger used by every command and handler.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Output formats.
const (
	FormatAuto    = "auto"
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Options configures New.
type Options struct {
	// Level is a zap level name: debug, info, warn or error.
	Level string
	// Format is auto, json or console. Auto picks console on a terminal.
	Format string
	// Output defaults to stderr.
	Output io.Writer
}

// New returns a zap-backed logr.Logger.
func New(opts Options) (logr.Logger, error) {
	level := zapcore.InfoLevel
	if opts.Level != "" {
		l, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			return logr.Discard(), fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = l
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	encoder, err := newEncoder(opts.Format, out)
	if err != nil {
		return logr.Discard(), err
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(out), level)
	return zapr.NewLogger(zap.New(core)), nil
}

func newEncoder(format string, out io.Writer) (zapcore.Encoder, error) {
	switch strings.ToLower(format) {
	case "", FormatAuto:
		if isTerminal(out) {
			return consoleEncoder(), nil
		}
		return jsonEncoder(), nil
	case FormatJSON:
		return jsonEncoder(), nil
	case FormatConsole:
		return consoleEncoder(), nil
	default:
		return nil, fmt.Errorf("invalid log format %q (must be %s, %s or %s)", format, FormatAuto, FormatJSON, FormatConsole)
	}
}

func jsonEncoder() zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return zapcore.NewJSONEncoder(cfg)
}

func consoleEncoder() zapcore.Encoder {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zapcore.NewConsoleEncoder(cfg)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

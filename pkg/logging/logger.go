package logging

import (
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
)

const (
	// EnvLogLevel selects the log level when no flag is given
	EnvLogLevel = "CHISEL_LOG_LEVEL"
	// EnvJSONLog switches output to JSON when set to "1"
	EnvJSONLog = "CHISEL_JSON_LOG"

	defaultLevel = "warn"
)

// NewLogger creates a new hclog logger with standard settings.
// Warnings share the report stream, so timestamps are left out to keep
// repeated runs byte-identical.
func NewLogger(name string, level string, output io.Writer) hclog.Logger {
	if output == nil {
		output = os.Stderr
	}

	opts := &hclog.LoggerOptions{
		Name:        name,
		Level:       hclog.LevelFromString(level),
		JSONFormat:  os.Getenv(EnvJSONLog) == "1",
		Output:      output,
		DisableTime: true,
		Color:       hclog.AutoColor,
	}

	return hclog.New(opts)
}

// ResolveLogLevel picks the log level and reports where it came from:
// an explicit flag value wins over the environment, which wins over the default.
func ResolveLogLevel(flagLevel string) (level string, source string) {
	if flagLevel != "" {
		return strings.ToLower(flagLevel), "flag"
	}
	if env := os.Getenv(EnvLogLevel); env != "" {
		return strings.ToLower(env), "env"
	}
	return defaultLevel, "default"
}

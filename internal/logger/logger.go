// Package logger configures log/slog for the service: JSON or text handlers,
// stdout/stderr/file destinations, level filtering, and redaction of customer
// contact attributes. Records carry the build version as constant fields.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"customer-service/internal/models"
	"customer-service/internal/version"
)

var levelNames = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// piiAttrKeys are attribute keys whose values never reach log output.
// Contact details and street addresses appear in logs only as identifiers
// (customer_id, address_id), never as raw values.
var piiAttrKeys = map[string]struct{}{
	"email": {},
	"phone": {},
	"line1": {},
}

// Setup builds a logger from the logging config. The returned io.Closer is
// non-nil only for file output; the caller closes it on shutdown.
func Setup(cfg models.LoggingConfig, ver version.Info) (*slog.Logger, io.Closer, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level: %w", err)
	}

	writer, closer, err := openWriter(cfg.Output, cfg.FilePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log output: %w", err)
	}

	logger := slog.New(newHandler(cfg.Format, writer, level)).With(
		slog.String("version", ver.Version),
		slog.String("git_commit", ver.GitCommit),
		slog.String("build_date", ver.BuildDate),
	)
	return logger, closer, nil
}

func newHandler(format string, w io.Writer, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: redactPII,
	}
	if format == "text" {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

// redactPII masks the values of known personal-data attribute keys.
func redactPII(groups []string, a slog.Attr) slog.Attr {
	if _, ok := piiAttrKeys[a.Key]; ok {
		return slog.String(a.Key, "REDACTED")
	}
	return a
}

func parseLevel(level string) (slog.Level, error) {
	if lvl, ok := levelNames[strings.ToLower(level)]; ok {
		return lvl, nil
	}
	return slog.LevelInfo, fmt.Errorf("unsupported log level: %s", level)
}

// openWriter resolves the output destination. Unknown values fall back to
// stdout so a typo in config degrades to the container default instead of
// swallowing logs.
func openWriter(output, filePath string) (io.Writer, io.Closer, error) {
	switch strings.ToLower(output) {
	case "stderr":
		return os.Stderr, nil, nil
	case "file":
		if filePath == "" {
			return nil, nil, fmt.Errorf("file path is required when output is file")
		}
		f, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file %s: %w", filePath, err)
		}
		return f, f, nil
	default:
		return os.Stdout, nil, nil
	}
}

// Package logging provides structured JSON logging on stderr.
//
// Stdout is reserved for the probe report, so all diagnostics go to stderr
// where they can be redirected independently of the table output.
package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Setup initializes the global logger with the given level.
func Setup(level string) {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

// TruncateForLog shortens s to maxLen characters for log output, appending
// "..." when anything was cut.
func TruncateForLog(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// HexDump renders up to maxLen bytes of data as space-separated hex pairs.
func HexDump(data []byte, maxLen int) string {
	if len(data) > maxLen {
		data = data[:maxLen]
	}
	var b strings.Builder
	for i, c := range data {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteByte(hexChar(c >> 4))
		b.WriteByte(hexChar(c & 0x0f))
	}
	return b.String()
}

func hexChar(b byte) byte {
	if b < 10 {
		return '0' + b
	}
	return 'a' + b - 10
}

package common

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

type LoggerParams struct {
	Environment string
	Level       string
	// FileName enables a rotating log file next to stdout when set.
	FileName string
}

// NewLogger builds the process logger: text output in development, JSON everywhere else.
func NewLogger(params LoggerParams) *slog.Logger {
	var w io.Writer = os.Stdout

	if params.FileName != "" {
		w = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename: params.FileName,
			MaxSize:  50, // megabytes
			Compress: true,
		})
	}

	opts := &slog.HandlerOptions{Level: parseLevel(params.Level)}

	if params.Environment == "development" {
		return slog.New(slog.NewTextHandler(w, opts))
	}

	return slog.New(slog.NewJSONHandler(w, opts))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

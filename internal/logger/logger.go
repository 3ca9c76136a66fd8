package logger

import (
	"io"
	"log/slog"
	"os"
)

var Logger = slog.Default()

// Init installs the text handler used by every component. Debug output is
// enabled by the debug flag or DEBUG=true.
func Init(debug bool) {
	InitTo(os.Stdout, debug)
}

// InitTo is Init writing to w. The MCP stdio server logs to stderr.
func InitTo(w io.Writer, debug bool) {
	level := slog.LevelInfo
	if debug || os.Getenv("DEBUG") == "true" {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	Logger = slog.New(slog.NewTextHandler(w, opts))
	slog.SetDefault(Logger)
}

// WithRun returns a logger tagged with a pipeline run id.
func WithRun(runID string) *slog.Logger {
	return Logger.With("run_id", runID)
}

func Info(msg string, args ...any) {
	Logger.Info(msg, args...)
}

func Error(msg string, args ...any) {
	Logger.Error(msg, args...)
}

func Debug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}

func Warn(msg string, args ...any) {
	Logger.Warn(msg, args...)
}

package logger

import (
	"log/slog"
	"os"
)

// Logger is a thin module-tagged wrapper over slog. Every entry is a
// single JSON line with a "module" attribute so log pipelines can
// split by component.
type Logger struct {
	sl *slog.Logger
}

// New creates a Logger writing JSON to stdout. The level can be raised
// via the LOG_LEVEL env variable (slog numeric levels).
func New() *Logger {
	level := slog.LevelInfo
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		var lv slog.Level
		if err := lv.UnmarshalText([]byte(v)); err == nil {
			level = lv
		}
	}
	return &Logger{
		sl: slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})),
	}
}

func (l *Logger) Info(module, msg string) {
	l.sl.Info(msg, "module", module)
}

func (l *Logger) Debug(module, msg string) {
	l.sl.Debug(msg, "module", module)
}

func (l *Logger) Error(module, msg string, err error) {
	if err != nil {
		l.sl.Error(msg, "module", module, "error", err.Error())
		return
	}
	l.sl.Error(msg, "module", module)
}

package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/unkn0wn-root/swrcache/config"
)

// newLogger builds the CLI logger from cfg. When the log file cannot be
// opened it falls back to stderr and says so.
func newLogger(cfg config.LogConfig, stderr io.Writer) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	out, outErr := buildOutput(cfg, stderr)

	l := logrus.New()
	l.SetLevel(level)
	l.SetOutput(out)
	if cfg.Format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})
	}

	if outErr != nil {
		l.WithFields(logrus.Fields{"action": "logger_fallback", "path": cfg.File}).Warn(outErr.Error())
	}
	return l, nil
}

func buildOutput(cfg config.LogConfig, stderr io.Writer) (io.Writer, error) {
	if cfg.File == "" {
		return stderr, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return stderr, fmt.Errorf("create log directory: %w", err)
	}
	return &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
		LocalTime:  true,
	}, nil
}

// slogFor mirrors l's output and level for components that log through slog.
func slogFor(l *logrus.Logger) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case l.IsLevelEnabled(logrus.DebugLevel):
		level = slog.LevelDebug
	case !l.IsLevelEnabled(logrus.InfoLevel):
		level = slog.LevelWarn
	}
	opts := &slog.HandlerOptions{Level: level}
	if _, ok := l.Formatter.(*logrus.JSONFormatter); ok {
		return slog.New(slog.NewJSONHandler(l.Out, opts))
	}
	return slog.New(slog.NewTextHandler(l.Out, opts))
}

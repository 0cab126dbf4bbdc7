package cli

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alexanderramin/dayplan/internal/config"
	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger builds the logger for use-case and generator events. With a
// log file configured, events at the configured level go to a rotating
// logfmt file. Otherwise only warnings and errors reach stderr, rendered
// by charmbracelet/log.
func NewLogger(cfg config.LogConfig, stderr io.Writer) (*slog.Logger, io.Closer) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}

	if cfg.File == "" {
		h := log.NewWithOptions(stderr, log.Options{
			Level:  log.Level(max(level, slog.LevelWarn)),
			Prefix: "dayplan",
		})
		return slog.New(h), io.NopCloser(nil)
	}

	os.MkdirAll(filepath.Dir(cfg.File), 0o755)
	sink := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}
	return slog.New(slog.NewTextHandler(sink, &slog.HandlerOptions{Level: level})), sink
}

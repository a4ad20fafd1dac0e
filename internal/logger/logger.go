package logger

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/zberg/go-easyremote/internal/config"
)

// NewLogger builds a text logger writing to w at the configured level.
func NewLogger(cfg config.LogConf, w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, fmt.Errorf("logger. Error in settings (level: %s): %w", cfg.Level, err)
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	log := slog.New(handler)
	log.Debug("set level", "level", level.String())
	return log, nil
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/zberg/go-easyremote/internal/config"
	"github.com/zberg/go-easyremote/internal/logger"
	"github.com/zberg/go-easyremote/pkg/easyremote"
)

var (
	configFile string
	targetHost string
	targetPort int
	timeout    time.Duration
	logLevel   string

	cfg *config.Config
	log *slog.Logger
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Path to TOML configuration file")
	flags.StringVar(&targetHost, "host", "", "Address of the lighting console")
	flags.IntVar(&targetPort, "port", easyremote.DefaultPort, "UDP port of the lighting console")
	flags.DurationVar(&timeout, "timeout", 5*time.Second, "Discovery read timeout")
	flags.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
}

// loadSettings reads the config file and lets explicitly set flags win.
func loadSettings(cmd *cobra.Command) error {
	var err error
	cfg, err = config.NewConfig(configFile)
	if err != nil {
		return fmt.Errorf("configuration file read error: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Console.Host = targetHost
	}
	if flags.Changed("port") {
		cfg.Console.Port = targetPort
	}
	if flags.Changed("timeout") {
		cfg.Console.Timeout.Duration = timeout
	}
	if flags.Changed("log-level") {
		cfg.Logger.Level = logLevel
	}

	log, err = logger.NewLogger(cfg.Logger, os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to create a logger: %w", err)
	}
	return nil
}

func sessionOptions() []easyremote.Option {
	opts := []easyremote.Option{
		easyremote.WithPort(cfg.Console.Port),
		easyremote.WithReadTimeout(cfg.Console.Timeout.Duration),
		easyremote.WithLogger(log.With("module", "session")),
	}
	if cfg.Console.LocalAddr != "" {
		opts = append(opts, easyremote.WithLocalAddr(cfg.Console.LocalAddr))
	}
	return opts
}

// scanOptions are the session options that apply to Scan.
func scanOptions() []easyremote.Option {
	opts := []easyremote.Option{
		easyremote.WithPort(cfg.Console.Port),
		easyremote.WithLogger(log.With("module", "scan")),
	}
	if cfg.Console.LocalAddr != "" {
		opts = append(opts, easyremote.WithLocalAddr(cfg.Console.LocalAddr))
	}
	return opts
}

func getSession(ctx context.Context) (*easyremote.Session, error) {
	if cfg.Console.Host == "" {
		return nil, fmt.Errorf("console address required. Use --host, the config file, or run scan first")
	}

	s, err := easyremote.NewSession(ctx, cfg.Console.Host, sessionOptions()...)
	if err != nil {
		return nil, fmt.Errorf("error connecting to %s: %w", cfg.Console.Host, err)
	}
	if !s.Complete() {
		log.Warn("console did not finish discovery", "host", cfg.Console.Host)
	}
	return s, nil
}

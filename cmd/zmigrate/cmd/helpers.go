package cmd

import (
	"fmt"

	"github.com/openmailtools/zmigrate/internal/config"
)

// loadConfig reads and validates the config file.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config %s: %w", configPath, err)
	}
	return cfg, nil
}

// fallbackHost returns the configured fallback store host.
func fallbackHost(cfg *config.Config) string {
	if cfg.Global.FallbackHost != "" {
		return cfg.Global.FallbackHost
	}
	return "localhost"
}

// info prints a line to stdout.
func info(format string, args ...any) {
	fmt.Printf(format+"\n", args...)
}

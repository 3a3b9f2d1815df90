package main

import (
	"flag"
	"fmt"
	"os"
	"time"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigPath      string
	Pipeline        string
	Listen          string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	ShowVersion     bool
	ShowHelp        bool
	Validate        bool
	Plan            bool
}

func parseFlags() *CLIConfig {
	cfg := &CLIConfig{}

	// Define flags with environment variable fallback
	flag.StringVar(&cfg.ConfigPath, "config",
		getEnv("PIPEKIT_CONFIG", "configs/container-server.conf"),
		"Path to configuration file (env: PIPEKIT_CONFIG)")

	flag.StringVar(&cfg.ConfigPath, "c",
		getEnv("PIPEKIT_CONFIG", "configs/container-server.conf"),
		"Path to configuration file (env: PIPEKIT_CONFIG)")

	flag.StringVar(&cfg.Pipeline, "pipeline",
		getEnv("PIPEKIT_PIPELINE", "pipeline:main"),
		"Entry pipeline section to assemble (env: PIPEKIT_PIPELINE)")

	flag.StringVar(&cfg.Listen, "listen",
		getEnv("PIPEKIT_LISTEN", ":6201"),
		"Address to serve the assembled pipeline on (env: PIPEKIT_LISTEN)")

	flag.StringVar(&cfg.LogLevel, "log-level",
		getEnv("PIPEKIT_LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: PIPEKIT_LOG_LEVEL)")

	flag.StringVar(&cfg.LogFormat, "log-format",
		getEnv("PIPEKIT_LOG_FORMAT", "json"),
		"Log format: json, text (env: PIPEKIT_LOG_FORMAT)")

	flag.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout",
		getEnvDuration("PIPEKIT_SHUTDOWN_TIMEOUT", 30*time.Second),
		"Graceful shutdown timeout (env: PIPEKIT_SHUTDOWN_TIMEOUT)")

	flag.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	flag.BoolVar(&cfg.ShowVersion, "v", false, "Show version information")
	flag.BoolVar(&cfg.ShowHelp, "help", false, "Show help information")
	flag.BoolVar(&cfg.ShowHelp, "h", false, "Show help information")
	flag.BoolVar(&cfg.Validate, "validate", false, "Assemble the configuration and exit")
	flag.BoolVar(&cfg.Plan, "plan", false, "Print the assembly plan as YAML and exit")

	flag.Usage = func() {
		printDetailedHelp()
	}

	flag.Parse()

	return cfg
}

func validateFlags(cfg *CLIConfig) error {
	// Skip validation for special flags
	if cfg.ShowVersion || cfg.ShowHelp {
		return nil
	}

	if _, err := os.Stat(cfg.ConfigPath); err != nil {
		return fmt.Errorf("config file not found: %s", cfg.ConfigPath)
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, cfg.LogLevel) {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}

	validFormats := []string{"json", "text"}
	if !contains(validFormats, cfg.LogFormat) {
		return fmt.Errorf("invalid log format: %s", cfg.LogFormat)
	}

	if cfg.Pipeline == "" {
		return fmt.Errorf("pipeline section must not be empty")
	}

	return nil
}

func printDetailedHelp() {
	_, _ = fmt.Fprintf(os.Stderr, `%s - Declarative Pipeline Assembly

Usage: %s [options]

Options:
`, appName, os.Args[0])
	flag.PrintDefaults()
	_, _ = fmt.Fprintf(os.Stderr, `
Examples:
  # Serve the pipeline from a conf file
  %s --config=/etc/pipekit/container-server.conf

  # Validate the configuration without serving
  %s --validate

  # Inspect the assembly plan
  %s --plan --log-format=text

  # Run with environment variables
  export PIPEKIT_CONFIG=/etc/pipekit/container-server.conf
  export PIPEKIT_LOG_LEVEL=debug
  %s

Version: %s
Build: %s
`, os.Args[0], os.Args[0], os.Args[0], os.Args[0], Version, BuildTime)
}

// Environment variable helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// Utility function to check if slice contains string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// Package main implements the entry point for the pipekit daemon: it
// assembles the pipeline declared in a PasteDeploy-style conf file and
// serves it over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/c360/pipekit/component"
	"github.com/c360/pipekit/componentregistry"
	pkgerrors "github.com/c360/pipekit/errors"
	"github.com/c360/pipekit/metric"
	"github.com/c360/pipekit/service"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "pipekit"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("Application failed", "error", err, "class", pkgerrors.Classify(err).String())
		if pkgerrors.IsInvalid(err) {
			// Bad conf files exit with EX_CONFIG so wrapper scripts
			// can tell them apart from runtime failures.
			os.Exit(78)
		}
		os.Exit(1)
	}
}

func run() error {
	cliCfg, logger, shouldExit, err := initializeCLI()
	if shouldExit || err != nil {
		return err
	}

	metricsRegistry := metric.NewMetricsRegistry()

	registry, err := setupRegistry(metricsRegistry)
	if err != nil {
		return err
	}

	rt, err := service.LoadFile(cliCfg.ConfigPath, registry,
		service.WithPipeline(cliCfg.Pipeline),
		service.WithDependencies(component.Dependencies{
			Logger:  logger,
			Metrics: metricsRegistry,
		}))
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	if cliCfg.Validate {
		slog.Info("Configuration is valid",
			"pipeline", rt.Pipeline.Pipeline(),
			"components", rt.Pipeline.Depth(),
			"subsystems", len(rt.Subsystems))
		return nil
	}

	if cliCfg.Plan {
		return printPlan(rt)
	}

	return serve(cliCfg, rt, metricsRegistry)
}

// initializeCLI parses flags and sets up logging
func initializeCLI() (*CLIConfig, *slog.Logger, bool, error) {
	cliCfg := parseFlags()
	if err := validateFlags(cliCfg); err != nil {
		return nil, nil, false, fmt.Errorf("invalid flags: %w", err)
	}

	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil, nil, true, nil
	}

	if cliCfg.ShowHelp {
		printDetailedHelp()
		return nil, nil, true, nil
	}

	logger := setupLogger(cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	slog.Info("Starting pipekit (declarative pipeline assembly)",
		"version", Version,
		"build_time", BuildTime,
		"config_path", cliCfg.ConfigPath)

	return cliCfg, logger, false, nil
}

// setupRegistry creates the factory registry with all built-ins
func setupRegistry(metricsRegistry *metric.MetricsRegistry) (*component.Registry, error) {
	registry := component.NewRegistry()
	if err := componentregistry.Register(registry); err != nil {
		return nil, fmt.Errorf("register components: %w", err)
	}

	factories := registry.ListFactories()
	metricsRegistry.CoreMetrics().RegisteredFactories.Set(float64(len(factories)))
	slog.Info("Component factories registered", "count", len(factories))
	return registry, nil
}

// assemblyPlan is the YAML shape emitted by -plan.
type assemblyPlan struct {
	Pipeline   string                       `yaml:"pipeline"`
	AssemblyID string                       `yaml:"assembly_id"`
	Components []string                     `yaml:"components"`
	Subsystems map[string]map[string]string `yaml:"subsystems"`
}

// printPlan writes the assembled pipeline and subsystem settings to
// stdout as YAML.
func printPlan(rt *service.Runtime) error {
	plan := assemblyPlan{
		Pipeline:   rt.Pipeline.Pipeline(),
		AssemblyID: rt.Pipeline.ID(),
		Components: rt.Pipeline.Sections(),
		Subsystems: make(map[string]map[string]string, len(rt.Subsystems)),
	}
	for name, settings := range rt.Subsystems {
		flat := make(map[string]string, len(settings))
		for _, key := range settings.Keys() {
			flat[key] = settings.GetString(key, "")
		}
		plan.Subsystems[name] = flat
	}

	encoder := yaml.NewEncoder(os.Stdout)
	encoder.SetIndent(2)
	defer encoder.Close()
	if err := encoder.Encode(plan); err != nil {
		return fmt.Errorf("encode plan: %w", err)
	}
	return nil
}

// serve runs the composed pipeline behind an HTTP server until a
// shutdown signal arrives.
func serve(cliCfg *CLIConfig, rt *service.Runtime, metricsRegistry *metric.MetricsRegistry) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metricsRegistry.Handler())
	mux.Handle("/", rt.Pipeline)

	server := &http.Server{
		Addr:              cliCfg.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	signalCtx, signalCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer signalCancel()

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("Serving pipeline",
			"listen", cliCfg.Listen,
			"pipeline", rt.Pipeline.Pipeline(),
			"components", rt.Pipeline.Sections())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("serve: %w", err)
	case <-signalCtx.Done():
		slog.Info("Received shutdown signal")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cliCfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	slog.Info("Shutdown complete")
	return nil
}

package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/c360/pipekit/config"
	"github.com/c360/pipekit/errors"
)

// SubsystemRunner is a long-running process driven by one subsystem
// section's settings. Run blocks until the context is cancelled or the
// runner fails; returning a non-nil error stops every sibling runner.
type SubsystemRunner interface {
	Run(ctx context.Context, settings config.Settings) error
}

// SubsystemRunnerFunc adapts a function to the SubsystemRunner interface.
type SubsystemRunnerFunc func(ctx context.Context, settings config.Settings) error

// Run implements SubsystemRunner.
func (f SubsystemRunnerFunc) Run(ctx context.Context, settings config.Settings) error {
	return f(ctx, settings)
}

// Manager binds subsystem runners to the subsystem settings of a loaded
// Runtime and runs them with a shared lifecycle. Runner registration
// happens at startup; Run may then be called once per Runtime.
type Manager struct {
	mu      sync.RWMutex
	runners map[string]SubsystemRunner
	logger  *slog.Logger
}

// NewManager creates an empty manager. A nil logger falls back to
// slog.Default.
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		runners: make(map[string]SubsystemRunner),
		logger:  logger,
	}
}

// RegisterRunner binds a runner to a subsystem section name. Registering
// the same name twice fails.
func (m *Manager) RegisterRunner(name string, runner SubsystemRunner) error {
	if runner == nil {
		return fmt.Errorf("subsystem %q: nil runner: %w", name, errors.ErrInvalidConfig)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.runners[name]; exists {
		return errors.WrapFatal(
			fmt.Errorf("subsystem %q already registered", name),
			"Manager", "RegisterRunner", "register runner")
	}
	m.runners[name] = runner
	return nil
}

// Runners returns the registered subsystem names, sorted.
func (m *Manager) Runners() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.runners))
	for name := range m.runners {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RunSubsystem runs a single named subsystem from the runtime. The name
// must have both a registered runner and a settings section.
func (m *Manager) RunSubsystem(ctx context.Context, runtime *Runtime, name string) error {
	m.mu.RLock()
	runner, ok := m.runners[name]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("subsystem %q: %w", name, errors.ErrInstanceUnregistered)
	}

	settings, ok := runtime.Subsystems[name]
	if !ok {
		return fmt.Errorf("subsystem %q: %w", name, errors.ErrSectionNotFound)
	}

	return runner.Run(ctx, settings)
}

// Run starts every subsystem of the runtime that has a registered runner
// and blocks until all of them return. The first failure cancels the
// shared context; subsystems with no runner are skipped, since a conf
// file routinely declares processes served by other binaries.
func (m *Manager) Run(ctx context.Context, runtime *Runtime) error {
	m.mu.RLock()
	matched := make(map[string]SubsystemRunner)
	for name := range runtime.Subsystems {
		if runner, ok := m.runners[name]; ok {
			matched[name] = runner
		}
	}
	m.mu.RUnlock()

	if len(matched) == 0 {
		m.logger.Debug("No subsystem runners matched", "subsystems", len(runtime.Subsystems))
		return nil
	}

	group, ctx := errgroup.WithContext(ctx)
	for name, runner := range matched {
		name, runner := name, runner
		settings := runtime.Subsystems[name]
		m.logger.Info("Starting subsystem", "subsystem", name)
		group.Go(func() error {
			if err := runner.Run(ctx, settings); err != nil {
				// Subsystem crashes are retryable by whatever
				// supervises the process, unlike assembly errors.
				return errors.WrapTransient(err, "Manager", "Run",
					fmt.Sprintf("subsystem %q", name))
			}
			m.logger.Info("Subsystem stopped", "subsystem", name)
			return nil
		})
	}

	return group.Wait()
}

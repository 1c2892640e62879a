// Package cli wires the instance lifecycle engine (pkg/instance) up to a
// thin Cobra-based command line. The dispatcher itself — recipe/package
// subcommands, onboarding prompts, buildkit fetching — is out of scope
// (see SPEC_FULL.md Non-goals); this is a demonstration surface over just
// the instance operations the rest of this module implements.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cthbleachbit/ciel-rs/cmd/ciel/config"
	"github.com/cthbleachbit/ciel-rs/pkg/instance"
	"github.com/cthbleachbit/ciel-rs/pkg/logger"
	"github.com/cthbleachbit/ciel-rs/pkg/machinebroker"
	"github.com/cthbleachbit/ciel-rs/pkg/otelinit"
	"github.com/cthbleachbit/ciel-rs/pkg/overlay"
	"github.com/cthbleachbit/ciel-rs/pkg/workspace"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var workspacePath string

var rootCmd = &cobra.Command{
	Use:           "ciel",
	Short:         "Manage container-based build instances layered over a shared buildkit",
	SilenceUsage:  true,
	SilenceErrors: true,
	Version:       Version,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&workspacePath, "workspace", "C", "",
		"workspace root (default: current directory)")

	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(mountCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(execCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(destroyCmd)
	rootCmd.AddCommand(rollbackCmd)
}

// Execute runs the root command, printing any error to stderr and
// exiting non-zero, in the style every CLI in the retrieval pack uses.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// env bundles the collaborators every subcommand needs, built once per
// invocation from the environment-derived Config.
type env struct {
	ws       *workspace.Workspace
	ctrl     *instance.Controller
	broker   *machinebroker.Broker
	shutdown func(context.Context) error
}

// newEnv discovers the workspace and wires up a Controller. Callers must
// defer closeEnv(e) to release the D-Bus connection and flush telemetry.
func newEnv(ctx context.Context) (*env, error) {
	cfg := config.Load()

	ws, err := workspace.Discover(workspacePath)
	if err != nil {
		return nil, fmt.Errorf("ciel: %w", err)
	}

	otelProvider, shutdown, err := otelinit.Init(ctx, otelinit.Config{
		Enabled:     cfg.OtelEnabled,
		Endpoint:    cfg.OtelEndpoint,
		ServiceName: cfg.OtelServiceName,
		Version:     cfg.Version,
		Insecure:    cfg.OtelInsecure,
	})
	if err != nil {
		return nil, fmt.Errorf("ciel: initialize telemetry: %w", err)
	}

	log := logger.New(logger.SubsystemInstance, logger.Config{
		DefaultLevel:   logger.ParseLevel(cfg.LogLevel),
		FilePath:       cfg.LogFile,
		MaxSizeMB:      cfg.LogMaxSize,
		MaxBackups:     cfg.LogMaxFiles,
		MaxAgeDays:     cfg.LogMaxAge,
		InstanceLogDir: ws.LogsDir(),
	}, otelProvider.LogHandler)

	if err := os.MkdirAll(ws.LogsDir(), 0o755); err != nil {
		log.WarnContext(ctx, "could not create per-instance log directory, splitting disabled", "error", err)
	}

	broker, err := machinebroker.New()
	if err != nil {
		_ = shutdown(ctx)
		return nil, fmt.Errorf("ciel: %w", err)
	}

	meter := otelProvider.MeterFor("ciel/instance")
	metrics, err := instance.NewMetrics(meter)
	if err != nil {
		log.WarnContext(ctx, "metrics disabled: failed to register instruments", "error", err)
		metrics = nil
	}

	ctrl := instance.New(overlay.New(), broker, log, otelProvider.TracerFor("ciel/instance"), metrics)

	return &env{ws: ws, ctrl: ctrl, broker: broker, shutdown: shutdown}, nil
}

func closeEnv(ctx context.Context, e *env) {
	if e == nil {
		return
	}
	if err := e.broker.Close(); err != nil {
		slog.Default().WarnContext(ctx, "error closing machine broker connection", "error", err)
	}
	if err := e.shutdown(ctx); err != nil {
		slog.Default().WarnContext(ctx, "error shutting down telemetry", "error", err)
	}
}

// withLock acquires the workspace's cross-process flock for the duration
// of fn, serializing this invocation against any other ciel process
// working the same workspace (SPEC_FULL.md §5).
func withLock(e *env, fn func() error) error {
	lock, err := e.ws.Lock()
	if err != nil {
		return fmt.Errorf("ciel: acquire workspace lock: %w", err)
	}
	defer lock.Unlock()
	return fn()
}

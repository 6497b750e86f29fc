package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/vk/taskforge/internal/build"
	"github.com/vk/taskforge/internal/ctxlog"
	"github.com/vk/taskforge/internal/dag"
	"github.com/vk/taskforge/internal/executor"
)

// Run executes the main application logic based on the provided configuration.
// It returns an error when any task failed.
func (a *App) Run(ctx context.Context, appConfig *Config) error {
	runLogger := a.logger.With("run_id", uuid.NewString())
	ctx = ctxlog.WithLogger(ctx, runLogger)
	runLogger.Debug("App.Run method started.")

	if appConfig.HealthcheckPort > 0 {
		a.startHealthcheckServer(appConfig.HealthcheckPort)
	}

	runLogger.Debug("Building work graph from plan model...")
	root, err := build.FromPlan(ctx, a.plan)
	if err != nil {
		return fmt.Errorf("failed to build work graph: %w", err)
	}

	runLogger.Info("🚀 Starting concurrent execution...", "workers", appConfig.WorkerCount)
	failures := executor.Run(
		ctx,
		root,
		build.WorkName,
		build.Action,
		appConfig.WorkerCount,
		func(w dag.Work) *slog.Logger {
			return runLogger.With("task", build.WorkName(w))
		},
	)
	runLogger.Info("🏁 Execution finished.", "failed", len(failures))

	if len(failures) > 0 {
		for _, f := range failures {
			runLogger.Error("Task failed.", "task", build.WorkName(f.Work), "message", f.Message)
		}
		return fmt.Errorf("%d task(s) failed", len(failures))
	}

	runLogger.Debug("App.Run method finished.")
	return nil
}

package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/taskforge/internal/config"
	"github.com/vk/taskforge/internal/ctxlog"
	"github.com/vk/taskforge/internal/engine"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	plan   *config.Model
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger and a loaded plan.
func NewApp(outW io.Writer, appConfig *Config) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	plan, err := engine.LoadPlan(ctx, appConfig.PlanPath)
	if err != nil {
		// A failure to load the plan is a fatal startup error.
		panic(fmt.Errorf("failed to load plan: %w", err))
	}
	logger.Debug("Plan loaded and translated into unified model.", "tasks", len(plan.Tasks))

	return &App{
		outW:   outW,
		logger: logger,
		plan:   plan,
	}
}

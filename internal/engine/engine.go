package engine

import (
	"context"
	"fmt"

	"github.com/vk/taskforge/internal/config"
	"github.com/vk/taskforge/internal/ctxlog"
	"github.com/vk/taskforge/internal/fsutil"
	"github.com/vk/taskforge/internal/schema"
)

// LoadPlan locates every .hcl file under planPath (a file or a directory),
// decodes them all, and translates the merged result into the plan model.
func LoadPlan(ctx context.Context, planPath string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := fsutil.FindFilesByExtension(planPath, ".hcl")
	if err != nil {
		return nil, fmt.Errorf("failed to locate plan files under %s: %w", planPath, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .hcl plan files found under %s", planPath)
	}
	logger.Debug("Located plan files.", "count", len(files))

	configs := make([]*schema.PlanConfig, 0, len(files))
	for _, f := range files {
		cfg, err := DecodePlanFile(ctx, f)
		if err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}

	return Translate(ctx, configs...)
}

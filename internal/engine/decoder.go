package engine

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/taskforge/internal/ctxlog"
	"github.com/vk/taskforge/internal/schema"
)

// DecodePlanFile parses and decodes a single HCL plan file into a PlanConfig
// struct. The `run` expressions are captured unevaluated; translation
// evaluates them once the variable scope is known.
func DecodePlanFile(ctx context.Context, filePath string) (*schema.PlanConfig, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Decoding plan file.", "path", filePath)
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filePath)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %s", filePath, diags.Error())
	}

	var cfg schema.PlanConfig
	diags = gohcl.DecodeBody(file.Body, nil, &cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %s", filePath, diags.Error())
	}

	logger.Debug("Successfully decoded plan file.", "path", filePath, "tasks_found", len(cfg.Tasks), "variables_found", len(cfg.Variables))
	return &cfg, nil
}

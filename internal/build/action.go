package build

import (
	"context"
	"fmt"

	"github.com/vk/taskforge/internal/dag"
)

// Runnable is the execution capability of build work units.
type Runnable interface {
	Execute(ctx context.Context) error
}

// Action is the executor callback for plan-built graphs.
func Action(ctx context.Context, w dag.Work) error {
	r, ok := w.(Runnable)
	if !ok {
		panic(fmt.Sprintf("build: work item %v is not runnable", w))
	}
	return r.Execute(ctx)
}

// WorkName names a work item for logs and failure messages.
func WorkName(w dag.Work) string {
	if s, ok := w.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%v", w)
}

package action

import (
	"context"

	"github.com/crossforge/crossforge/pkg/config"
	"github.com/crossforge/crossforge/pkg/graph"
	"github.com/crossforge/crossforge/pkg/plan"
	"github.com/crossforge/crossforge/pkg/step"
	"github.com/crossforge/crossforge/pkg/xerrors"
)

// Run executes a free-standing task's script step.
func (r *Runner) Run(ctx context.Context, id graph.SubjectID) error {
	return r.runTask(ctx, plan.Run, id, step.ContextTask)
}

// RunPkg executes a package-bound task's script step, using the owning
// package's tool closure and virtual tools.
func (r *Runner) RunPkg(ctx context.Context, id graph.SubjectID) error {
	return r.runTask(ctx, plan.RunPkg, id, step.ContextPkgTask)
}

// RunTool executes a tool-bound task's script step, using the owning
// tool's tool closure and virtual tools.
func (r *Runner) RunTool(ctx context.Context, id graph.SubjectID) error {
	return r.runTask(ctx, plan.RunTool, id, step.ContextToolTask)
}

func (r *Runner) runTask(ctx context.Context, action plan.Action, id graph.SubjectID, stepCtx step.Context) error {
	task, ok := r.Config.FreeTask(id.Name)
	if !ok {
		task = r.lookupBoundTask(id)
	}
	if task == nil {
		return wrapFailure(action, id, xerrors.NewConfigError("unknown task %q", id.Name))
	}

	toolSet, virtual := toolSetAndVirtual(r.Config, task)
	req := stepRequest(stepCtx, id, task.Step(), toolSet, virtual)
	if _, err := r.Executor.Run(ctx, req); err != nil {
		return wrapFailure(action, id, err)
	}
	log.Infow("ran task", "task", task.Name())
	return nil
}

// RunRaw executes argv directly in the environment of the named tools,
// without any task binding: xbstrap's runtool command, used to drop into
// a configured shell or invoke an arbitrary program against a tool closure.
func (r *Runner) RunRaw(ctx context.Context, toolNames []string, argv []string) (step.ExitStatus, error) {
	names := make([]string, 0, len(toolNames))
	for _, name := range toolNames {
		tool, ok := r.Config.Tool(name)
		if !ok {
			return step.ExitStatus{}, xerrors.NewConfigError("unknown tool %q", name)
		}
		names = append(names, tool.Name())
	}
	req := step.Request{
		Context:     step.ContextNull,
		SubjectKind: "runtool",
		SubjectName: "runtool",
		Step:        config.NewRawStep(argv),
		ToolSet:     names,
	}
	return r.Executor.Run(ctx, req)
}

// lookupBoundTask finds a package- or tool-bound task by its owning
// subject's name (id.Parent) and its qualified name (id.Name, "parent:task"
// as produced by Task.Name/SubjectID), which is the key Package/Tool.GetTask
// uses.
func (r *Runner) lookupBoundTask(id graph.SubjectID) *config.Task {
	if id.Parent == "" {
		return nil
	}
	if pkg, ok := r.Config.Package(id.Parent); ok {
		if task, ok := pkg.GetTask(id.Name); ok {
			return task
		}
	}
	if tool, ok := r.Config.Tool(id.Parent); ok {
		if task, ok := tool.GetTask(id.Name); ok {
			return task
		}
	}
	return nil
}

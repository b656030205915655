package action

import (
	"context"

	"github.com/crossforge/crossforge/pkg/constants"
	"github.com/crossforge/crossforge/pkg/graph"
	"github.com/crossforge/crossforge/pkg/plan"
	"github.com/crossforge/crossforge/pkg/probe"
	"github.com/crossforge/crossforge/pkg/step"
	"github.com/crossforge/crossforge/pkg/xerrors"
)

// RegenerateSrc runs a source's regenerate steps (autoreconf and similar
// steps that must happen once per checkout, before any tool or package
// configures against it).
func (r *Runner) RegenerateSrc(ctx context.Context, id graph.SubjectID) error {
	src, ok := r.Config.Source(id.Name)
	if !ok {
		return wrapFailure(plan.RegenerateSrc, id, xerrors.NewConfigError("unknown source %q", id.Name))
	}

	toolSet, virtual := toolSetAndVirtual(r.Config, src)
	for _, st := range src.RegenerateSteps() {
		req := stepRequest(step.ContextSource, id, st, toolSet, virtual)
		if _, err := r.Executor.Run(ctx, req); err != nil {
			return wrapFailure(plan.RegenerateSrc, id, err)
		}
	}
	if err := probe.WriteMarker(src.SourceDir(), constants.MarkerRegenerated); err != nil {
		return wrapFailure(plan.RegenerateSrc, id, err)
	}
	log.Infow("regenerated source", "source", src.Name())
	return nil
}

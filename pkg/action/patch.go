package action

import (
	"context"

	"github.com/crossforge/crossforge/pkg/constants"
	"github.com/crossforge/crossforge/pkg/graph"
	"github.com/crossforge/crossforge/pkg/plan"
	"github.com/crossforge/crossforge/pkg/probe"
	"github.com/crossforge/crossforge/pkg/xerrors"
)

// PatchSrc applies every patch under the source's patch directory, in
// sorted filename order, via the backend appropriate to its VCS kind.
func (r *Runner) PatchSrc(ctx context.Context, id graph.SubjectID) error {
	src, ok := r.Config.Source(id.Name)
	if !ok {
		return wrapFailure(plan.PatchSrc, id, xerrors.NewConfigError("unknown source %q", id.Name))
	}
	backend := r.VCS.For(src)
	if backend == nil {
		return wrapFailure(plan.PatchSrc, id, xerrors.NewConfigError("source %q declares no fetchable upstream", src.Name()))
	}
	if err := backend.Patch(ctx, r.Config, src); err != nil {
		return wrapFailure(plan.PatchSrc, id, err)
	}
	if err := probe.WriteMarker(src.SourceDir(), constants.MarkerPatched); err != nil {
		return wrapFailure(plan.PatchSrc, id, err)
	}
	log.Infow("patched source", "source", src.Name())
	return nil
}

package action

import (
	"context"

	"github.com/crossforge/crossforge/pkg/constants"
	"github.com/crossforge/crossforge/pkg/graph"
	"github.com/crossforge/crossforge/pkg/plan"
	"github.com/crossforge/crossforge/pkg/probe"
	"github.com/crossforge/crossforge/pkg/xerrors"
)

// CheckoutSrc moves a fetched source to the tracked ref: a tag, branch, or
// fixed commit for VCS sources, or an archive extraction for url sources.
func (r *Runner) CheckoutSrc(ctx context.Context, id graph.SubjectID) error {
	src, ok := r.Config.Source(id.Name)
	if !ok {
		return wrapFailure(plan.CheckoutSrc, id, xerrors.NewConfigError("unknown source %q", id.Name))
	}
	backend := r.VCS.For(src)
	if backend == nil {
		return wrapFailure(plan.CheckoutSrc, id, xerrors.NewConfigError("source %q declares no fetchable upstream", src.Name()))
	}
	if err := backend.Checkout(ctx, r.Config, src); err != nil {
		return wrapFailure(plan.CheckoutSrc, id, err)
	}
	if err := probe.WriteMarker(src.SourceDir(), constants.MarkerCheckedOut); err != nil {
		return wrapFailure(plan.CheckoutSrc, id, err)
	}
	log.Infow("checked out source", "source", src.Name())
	return nil
}

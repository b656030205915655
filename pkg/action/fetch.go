package action

import (
	"context"
	"os"

	"github.com/crossforge/crossforge/pkg/constants"
	"github.com/crossforge/crossforge/pkg/graph"
	"github.com/crossforge/crossforge/pkg/plan"
	"github.com/crossforge/crossforge/pkg/probe"
	"github.com/crossforge/crossforge/pkg/xerrors"
)

// FetchSrc downloads or clones a source's upstream into its subdir,
// dispatching to the VCS backend its manifest entry selects. It always
// writes the fetched marker, even though most VCS backends also let
// pkg/probe read state straight off the checkout (the marker is the only
// signal when no VCS checker is configured, e.g. minimal embeddings).
func (r *Runner) FetchSrc(ctx context.Context, id graph.SubjectID) error {
	src, ok := r.Config.Source(id.Name)
	if !ok {
		return wrapFailure(plan.FetchSrc, id, xerrors.NewConfigError("unknown source %q", id.Name))
	}

	backend := r.VCS.For(src)
	if backend == nil {
		return wrapFailure(plan.FetchSrc, id, xerrors.NewConfigError("source %q declares no fetchable upstream", src.Name()))
	}
	if err := os.MkdirAll(src.SubDir(), 0o755); err != nil {
		return wrapFailure(plan.FetchSrc, id, &xerrors.IoError{Path: src.SubDir(), Cause: err})
	}
	if err := backend.Fetch(ctx, r.Config, src); err != nil {
		return wrapFailure(plan.FetchSrc, id, err)
	}
	if err := probe.WriteMarker(src.SourceDir(), constants.MarkerFetched); err != nil {
		return wrapFailure(plan.FetchSrc, id, err)
	}
	log.Infow("fetched source", "source", src.Name())
	return nil
}

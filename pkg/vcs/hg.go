package vcs

import (
	"context"
	"os"
	"os/exec"

	"github.com/crossforge/crossforge/pkg/config"
	"github.com/crossforge/crossforge/pkg/fileutil"
	"github.com/crossforge/crossforge/pkg/xerrors"
)

// Hg shells out to the real hg binary. Unlike git, a mercurial checkout is
// fetched and materialized in the same step: "hg clone" does both, so
// Fetch runs "hg pull" once the clone exists and Checkout performs "hg
// checkout" against the already-cloned tree.
type Hg struct{}

func (h *Hg) Fetch(ctx context.Context, cfg *config.Config, src *config.Source) error {
	dir := src.SourceDir()
	if fileutil.DirExists(dir) {
		return runHg(ctx, dir, "pull")
	}
	if err := os.MkdirAll(src.SubDir(), 0o755); err != nil {
		return &xerrors.IoError{Path: src.SubDir(), Cause: err}
	}
	cmd := exec.CommandContext(ctx, "hg", "clone", src.HgURL(), dir)
	if out, err := cmd.CombinedOutput(); err != nil {
		return &xerrors.NetworkError{URL: src.HgURL(), Cause: &xerrors.ConfigError{Message: string(out)}}
	}
	return nil
}

func (h *Hg) Checkout(ctx context.Context, cfg *config.Config, src *config.Source) error {
	ref := src.Tag()
	if ref == "" {
		ref = src.Branch()
	}
	return runHg(ctx, src.SourceDir(), "checkout", ref)
}

func (h *Hg) Patch(ctx context.Context, cfg *config.Config, src *config.Source) error {
	patches, err := listPatches(src.PatchDir())
	if err != nil {
		return err
	}
	for _, patch := range patches {
		if err := runHg(ctx, src.SourceDir(), "import", patch); err != nil {
			return err
		}
	}
	return nil
}

func (h *Hg) Status(ctx context.Context, cfg *config.Config, src *config.Source, checkRemote bool) (Status, error) {
	if !fileutil.DirExists(src.SourceDir()) {
		return Status{Exists: false}, nil
	}
	if !checkRemote {
		return Status{Exists: true}, nil
	}
	cmd := exec.CommandContext(ctx, "hg", "incoming", "--quiet")
	cmd.Dir = src.SourceDir()
	// "hg incoming" exits 1 when there is nothing new to pull.
	err := cmd.Run()
	return Status{Exists: true, Updatable: err == nil}, nil
}

func runHg(ctx context.Context, dir string, args ...string) error {
	cmd := exec.CommandContext(ctx, "hg", args...)
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		return xerrors.NewConfigError("hg %v failed: %v\n%s", args, err, out)
	}
	return nil
}

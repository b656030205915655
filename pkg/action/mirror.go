package action

import (
	"context"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/crossforge/crossforge/pkg/config"
	"github.com/crossforge/crossforge/pkg/constants"
	"github.com/crossforge/crossforge/pkg/graph"
	"github.com/crossforge/crossforge/pkg/plan"
	"github.com/crossforge/crossforge/pkg/vcs"
	"github.com/crossforge/crossforge/pkg/xerrors"
)

// MirrorSrc seeds a local bare git mirror of a source's upstream under
// build_root/mirror/git. Only git sources have a mirror story; every other
// VCS kind is a silent no-op, matching mirror_src's early return.
func (r *Runner) MirrorSrc(ctx context.Context, id graph.SubjectID) error {
	src, ok := r.Config.Source(id.Name)
	if !ok {
		return wrapFailure(plan.MirrorSrc, id, xerrors.NewConfigError("unknown source %q", id.Name))
	}
	if src.VCSKind() != config.VCSGit {
		return nil
	}

	mirrorRoot := filepath.Join(r.Config.BuildRoot(), constants.DefaultMirrorDir)
	mirrorDir := filepath.Join(mirrorRoot, "git")
	if err := os.MkdirAll(mirrorDir, 0o755); err != nil {
		return wrapFailure(plan.MirrorSrc, id, &xerrors.IoError{Path: mirrorDir, Cause: err})
	}

	unlock, err := lockDirectory(mirrorRoot)
	if err != nil {
		return wrapFailure(plan.MirrorSrc, id, err)
	}
	defer unlock()

	git, ok := r.VCS.Git.(*vcs.Git)
	if !ok {
		return wrapFailure(plan.MirrorSrc, id, xerrors.NewConfigError("git backend not available"))
	}
	if err := git.Mirror(ctx, src, mirrorDir); err != nil {
		return wrapFailure(plan.MirrorSrc, id, err)
	}
	log.Infow("mirrored source", "source", src.Name())
	return nil
}

// lockDirectory holds an exclusive flock on dir/.crossforge_lock
// (constants.MirrorLockFile) for the duration of a
// mirror operation, so concurrent builds sharing a build root don't race
// each other's bare-repo fetches. The returned func releases it.
func lockDirectory(dir string) (func(), error) {
	path := filepath.Join(dir, constants.MirrorLockFile)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, &xerrors.IoError{Path: path, Cause: err}
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		f.Close()
		return nil, &xerrors.IoError{Path: path, Cause: err}
	}
	return func() {
		unix.Flock(int(f.Fd()), unix.LOCK_UN)
		f.Close()
	}, nil
}

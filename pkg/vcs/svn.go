package vcs

import (
	"context"
	"os"
	"os/exec"

	"github.com/crossforge/crossforge/pkg/config"
	"github.com/crossforge/crossforge/pkg/fileutil"
	"github.com/crossforge/crossforge/pkg/xerrors"
)

// Svn shells out to the real svn binary. Like hg, "svn co" both fetches and
// checks out in one step; subsequent runs use "svn update".
type Svn struct{}

func (s *Svn) Fetch(ctx context.Context, cfg *config.Config, src *config.Source) error {
	dir := src.SourceDir()
	if fileutil.DirExists(dir) {
		return nil
	}
	if err := os.MkdirAll(src.SubDir(), 0o755); err != nil {
		return &xerrors.IoError{Path: src.SubDir(), Cause: err}
	}
	cmd := exec.CommandContext(ctx, "svn", "co", src.SvnURL(), dir)
	if out, err := cmd.CombinedOutput(); err != nil {
		return &xerrors.NetworkError{URL: src.SvnURL(), Cause: &xerrors.ConfigError{Message: string(out)}}
	}
	return nil
}

func (s *Svn) Checkout(ctx context.Context, cfg *config.Config, src *config.Source) error {
	args := []string{"update"}
	if rev := src.Rev(); rev != "" {
		args = append(args, "-r", rev)
	}
	cmd := exec.CommandContext(ctx, "svn", args...)
	cmd.Dir = src.SourceDir()
	if out, err := cmd.CombinedOutput(); err != nil {
		return xerrors.NewConfigError("svn update failed: %v\n%s", err, out)
	}
	return nil
}

func (s *Svn) Patch(ctx context.Context, cfg *config.Config, src *config.Source) error {
	patches, err := listPatches(src.PatchDir())
	if err != nil {
		return err
	}
	for _, patch := range patches {
		f, err := os.Open(patch)
		if err != nil {
			return &xerrors.IoError{Path: patch, Cause: err}
		}
		cmd := exec.CommandContext(ctx, "patch", "-p", "0", "--merge")
		cmd.Dir = src.SourceDir()
		cmd.Stdin = f
		out, runErr := cmd.CombinedOutput()
		f.Close()
		if runErr != nil {
			return xerrors.NewConfigError("patch %s failed: %v\n%s", patch, runErr, out)
		}
	}
	return nil
}

func (s *Svn) Status(ctx context.Context, cfg *config.Config, src *config.Source, checkRemote bool) (Status, error) {
	if !fileutil.DirExists(src.SourceDir()) {
		return Status{Exists: false}, nil
	}
	if !checkRemote {
		return Status{Exists: true}, nil
	}
	cmd := exec.CommandContext(ctx, "svn", "status", "-u", "-q")
	cmd.Dir = src.SourceDir()
	out, err := cmd.Output()
	if err != nil {
		return Status{Exists: true}, &xerrors.NetworkError{URL: src.SvnURL(), Cause: err}
	}
	return Status{Exists: true, Updatable: len(out) > 0}, nil
}

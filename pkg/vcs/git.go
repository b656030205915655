package vcs

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/crossforge/crossforge/pkg/config"
	"github.com/crossforge/crossforge/pkg/fileutil"
	"github.com/crossforge/crossforge/pkg/xerrors"
)

// Git shells out to the real git binary, mirroring xbstrap's vcs_utils.py:
// a freshly materialized source gets "git init" + "git remote add origin",
// then every fetch is a plain "git fetch" of the tracked ref.
type Git struct{}

func (g *Git) gitURL(cfg *config.Config, src *config.Source) string {
	if mirror, ok := cfg.XbstrapMirror(); ok {
		return mirror + "/git/" + src.Name()
	}
	return src.GitURL()
}

func (g *Git) Fetch(ctx context.Context, cfg *config.Config, src *config.Source) error {
	dir := src.SourceDir()
	init := !fileutil.DirExists(dir)
	if init {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &xerrors.IoError{Path: dir, Cause: err}
		}
		if err := runGit(ctx, dir, "init"); err != nil {
			return err
		}
		if err := runGit(ctx, dir, "remote", "add", "origin", g.gitURL(cfg, src)); err != nil {
			return err
		}
	}

	_, hasFixed := src.FixedCommit()
	hasCommit := src.Commit() != ""
	shallow := !src.DisableShallowFetch() && !src.IsRollingVersion()

	var args []string
	if tag := src.Tag(); tag != "" {
		args = []string{"fetch"}
		if shallow {
			args = append(args, "--depth=1")
		}
		args = append(args, g.gitURL(cfg, src), "tag", tag)
	} else {
		if hasCommit || hasFixed {
			shallow = false
		}
		if init && shallow {
			args = []string{"fetch", "--depth=1"}
		} else {
			args = []string{"fetch"}
		}
		branch := src.Branch()
		args = append(args, g.gitURL(cfg, src), "refs/heads/"+branch+":refs/remotes/origin/"+branch)
	}
	return runGit(ctx, dir, args...)
}

// Mirror bare-fetches src's upstream (never a configured xbstrap_mirror,
// always the real upstream URL) into mirrorDir/<source name>.git, creating
// it on first run. Used by MIRROR_SRC to seed a local mirror that other
// checkouts can later be pointed at.
func (g *Git) Mirror(ctx context.Context, src *config.Source, mirrorDir string) error {
	dir := filepath.Join(mirrorDir, src.Name()+".git")
	if !fileutil.DirExists(dir) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &xerrors.IoError{Path: dir, Cause: err}
		}
		if err := runGit(ctx, dir, "init", "--bare"); err != nil {
			return err
		}
	}
	refspec := "+refs/heads/*:refs/heads/*"
	if tag := src.Tag(); tag != "" {
		refspec = "+refs/tags/" + tag + ":refs/tags/" + tag
	}
	return runGit(ctx, dir, "fetch", "--prune", src.GitURL(), refspec)
}

func (g *Git) Checkout(ctx context.Context, cfg *config.Config, src *config.Source) error {
	dir := src.SourceDir()
	initialized := runGitQuiet(ctx, dir, "show-ref", "--verify", "-q", "HEAD") != nil

	fixedCommit, hasFixed := src.FixedCommit()

	if tag := src.Tag(); tag != "" {
		if hasFixed {
			return xerrors.NewConfigError(
				"commit of source %s cannot be fixed in the commit-pin file: source builds form a branch",
				src.Name())
		}
		if !initialized {
			return xerrors.NewConfigError("refusing to checkout tag %q of source %s on an already-initialized tree", tag, src.Name())
		}
		if err := runGit(ctx, dir, "checkout", "--detach", "refs/tags/"+tag); err != nil {
			return err
		}
	} else {
		branch := src.Branch()
		commit := "origin/" + branch
		if c := src.Commit(); c != "" {
			if hasFixed {
				return xerrors.NewConfigError(
					"commit of source %s cannot be fixed in the commit-pin file: commit is already fixed in the manifest",
					src.Name())
			}
			commit = c
		} else if hasFixed {
			commit = fixedCommit
		}
		if initialized {
			if err := runGit(ctx, dir, "checkout", "--no-track", "-B", branch, commit); err != nil {
				return err
			}
			_ = runGit(ctx, dir, "branch", "-u", "refs/remotes/origin/"+branch)
		} else {
			if err := runGit(ctx, dir, "rebase", commit); err != nil {
				return err
			}
		}
	}

	if src.Submodules() {
		if err := runGit(ctx, dir, "submodule", "update", "--init"); err != nil {
			return err
		}
	}
	return nil
}

func (g *Git) Patch(ctx context.Context, cfg *config.Config, src *config.Source) error {
	patches, err := listPatches(src.PatchDir())
	if err != nil {
		return err
	}
	dir := src.SourceDir()
	for _, patch := range patches {
		crlf := "--no-keep-cr"
		if src.PatchKeepCRLF() {
			crlf = "--keep-cr"
		}
		cmd := exec.CommandContext(ctx, "git", "am", "-3", crlf, "--no-gpg-sign",
			"--committer-date-is-author-date", patch)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(),
			"GIT_COMMITTER_NAME="+cfg.PatchAuthor(),
			"GIT_COMMITTER_EMAIL="+cfg.PatchEmail())
		if out, err := cmd.CombinedOutput(); err != nil {
			return xerrors.NewConfigError("git am %s failed: %v\n%s", patch, err, out)
		}
	}
	return nil
}

func (g *Git) Status(ctx context.Context, cfg *config.Config, src *config.Source, checkRemote bool) (Status, error) {
	dir := src.SourceDir()
	if !fileutil.DirExists(filepath.Join(dir, ".git")) {
		return Status{Exists: false}, nil
	}
	if !checkRemote {
		return Status{Exists: true}, nil
	}

	branch := src.Branch()
	if branch == "" {
		return Status{Exists: true}, nil
	}
	out, err := exec.CommandContext(ctx, "git", "ls-remote", g.gitURL(cfg, src), "refs/heads/"+branch).CombinedOutput()
	if err != nil {
		return Status{Exists: true}, &xerrors.NetworkError{URL: g.gitURL(cfg, src), Cause: err}
	}
	remoteSHA := strings.Fields(string(out))
	if len(remoteSHA) == 0 {
		return Status{Exists: true}, nil
	}
	localOut, err := exec.CommandContext(ctx, "git", "rev-parse", "refs/remotes/origin/"+branch).Output()
	if err != nil {
		return Status{Exists: true, Updatable: true}, nil
	}
	return Status{Exists: true, Updatable: strings.TrimSpace(string(localOut)) != remoteSHA[0]}, nil
}

func runGit(ctx context.Context, dir string, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		return xerrors.NewConfigError("git %s failed: %v\n%s", strings.Join(args, " "), err, out)
	}
	return nil
}

func runGitQuiet(ctx context.Context, dir string, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	return cmd.Run()
}

func listPatches(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &xerrors.IoError{Path: dir, Cause: err}
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".patch") {
			names = append(names, e.Name())
		}
	}
	sortStrings(names)
	full := make([]string, len(names))
	for i, n := range names {
		full[i] = filepath.Join(dir, n)
	}
	return full, nil
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

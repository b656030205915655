// Package vcs implements the fetch/checkout/patch/mirror backends that
// back plan actions FETCH_SRC, CHECKOUT_SRC, PATCH_SRC, and MIRROR_SRC
// (spec §4.6), one per config.VCSKind plus a shared HTTP archive backend.
package vcs

import (
	"context"

	"github.com/crossforge/crossforge/pkg/config"
)

// Backend is the per-VCS-kind implementation a source's fetch/checkout/
// patch actions dispatch to. Consumers (pkg/probe.VCSChecker and
// pkg/action's fetch/checkout/patch handlers) select a Backend via
// Dispatcher rather than importing a concrete implementation. Mirroring is
// not part of Backend: the MIRROR_SRC handler calls Git.Mirror directly.
type Backend interface {
	// Fetch updates the local mirror of src's upstream: "git fetch" into an
	// already-initialized repo, "hg clone"/"svn co" on first run, or an
	// HTTP download for archive sources.
	Fetch(ctx context.Context, cfg *config.Config, src *config.Source) error

	// Checkout materializes a working tree at src.SourceDir() from the
	// fetched state: git checkout/rebase onto the tracked ref, hg/svn
	// update, or archive extraction.
	Checkout(ctx context.Context, cfg *config.Config, src *config.Source) error

	// Patch applies every *.patch file in src.PatchDir(), in sorted order.
	Patch(ctx context.Context, cfg *config.Config, src *config.Source) error

	// Status reports whether a checkout exists and, for update checks,
	// whether the remote has moved past the local working tree.
	Status(ctx context.Context, cfg *config.Config, src *config.Source, checkRemote bool) (Status, error)
}

// Status is what probe.ProbeSource needs: existence and up-to-dateness.
type Status struct {
	Exists    bool
	Updatable bool
}

// Dispatcher picks the Backend matching a source's VCSKind.
type Dispatcher struct {
	Git     Backend
	Hg      Backend
	Svn     Backend
	Archive Backend
}

// NewDispatcher builds a Dispatcher wired to the default implementations.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		Git:     &Git{},
		Hg:      &Hg{},
		Svn:     &Svn{},
		Archive: &Archive{},
	}
}

// For returns the Backend appropriate for src, or nil if src declares no
// recognized VCS kind (a ConfigError the caller should have already caught
// at config-validation time).
func (d *Dispatcher) For(src *config.Source) Backend {
	switch src.VCSKind() {
	case config.VCSGit:
		return d.Git
	case config.VCSHg:
		return d.Hg
	case config.VCSSvn:
		return d.Svn
	case config.VCSArchive:
		return d.Archive
	default:
		return nil
	}
}

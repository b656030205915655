// Package pkgbackend implements the pack/install/query surface plan
// actions PACK_PKG, INSTALL_PKG, ARCHIVE_PKG, and PULL_PKG_PACK dispatch
// to (spec §4.6), plus the xbps version-ordering algorithm spec §6 names
// as a testable property.
package pkgbackend

import "github.com/crossforge/crossforge/pkg/config"

// Backend is the package-management surface a site config selects: xbps
// when pkg_management.format is "xbps", and the no-op direct-install
// backend otherwise.
type Backend interface {
	// Pack builds (or, when reproduce is true, re-derives and byte-compares)
	// the distributable package artifact from pkg's staging directory.
	Pack(cfg *config.Config, pkg *config.Package, reproduce bool) error

	// InstallInto installs pkg into sysroot, which must be a path inside
	// the build root.
	InstallInto(cfg *config.Config, pkg *config.Package, sysroot string) error

	// QueryInstalled reports whether pkg is already installed in sysroot
	// and, if so, its installed version.
	QueryInstalled(cfg *config.Config, pkg *config.Package, sysroot string) (installed bool, version string, err error)

	// DownloadRepodata fetches and parses the remote repository index for
	// arch, used by PULL_PKG_PACK's update probe and pull.
	DownloadRepodata(cfg *config.Config, arch string) (*Repodata, error)

	// Pull downloads pkg's prebuilt package from the remote repository
	// into the local repo directory and re-indexes it.
	Pull(cfg *config.Config, pkg *config.Package) error
}

// Repodata is the subset of an xbps repository index this module needs:
// one entry per package name.
type Repodata struct {
	Entries map[string]RepodataEntry
}

// RepodataEntry is one package's entry in a repository index.
type RepodataEntry struct {
	PkgVer  string // "<name>-<version>"
	Version string
}

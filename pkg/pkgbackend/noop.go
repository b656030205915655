package pkgbackend

import (
	"os"
	"path/filepath"

	"github.com/crossforge/crossforge/pkg/config"
	"github.com/crossforge/crossforge/pkg/xerrors"
)

// Noop is the package backend used when the site config does not select
// xbps (cfg.UseXbps() == false): packages install directly into a sysroot
// by copying the staging tree, per base.py's install_pkg fallback branch.
// It has no pack/pull story since there is no package format to produce.
type Noop struct{}

func (n *Noop) Pack(cfg *config.Config, pkg *config.Package, reproduce bool) error {
	return xerrors.NewConfigError("package management configuration does not support pack")
}

func (n *Noop) InstallInto(cfg *config.Config, pkg *config.Package, sysroot string) error {
	if err := os.MkdirAll(sysroot, 0o755); err != nil {
		return &xerrors.IoError{Path: sysroot, Cause: err}
	}
	if err := installtree(pkg.StagingDir(), sysroot); err != nil {
		return err
	}
	markerDir := filepath.Join(sysroot, "etc", "crossforge")
	if err := os.MkdirAll(markerDir, 0o755); err != nil {
		return &xerrors.IoError{Path: markerDir, Cause: err}
	}
	return os.WriteFile(installedMarkerPath(sysroot, pkg.Name()), nil, 0o644)
}

func (n *Noop) QueryInstalled(cfg *config.Config, pkg *config.Package, sysroot string) (bool, string, error) {
	marker := installedMarkerPath(sysroot, pkg.Name())
	if _, err := os.Stat(marker); err != nil {
		if os.IsNotExist(err) {
			return false, "", nil
		}
		return false, "", &xerrors.IoError{Path: marker, Cause: err}
	}
	version, err := pkg.Version()
	if err != nil {
		return true, "", err
	}
	return true, version, nil
}

func (n *Noop) DownloadRepodata(cfg *config.Config, arch string) (*Repodata, error) {
	return nil, xerrors.NewConfigError("package management configuration does not support remote repodata")
}

func (n *Noop) Pull(cfg *config.Config, pkg *config.Package) error {
	return xerrors.NewConfigError("package management configuration does not support pull")
}

func installedMarkerPath(sysroot, pkgName string) string {
	return filepath.Join(sysroot, "etc", "crossforge", pkgName+".installed")
}

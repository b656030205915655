package pkgbackend

import (
	"github.com/crossforge/crossforge/pkg/config"
	"github.com/crossforge/crossforge/pkg/probe"
	"github.com/crossforge/crossforge/pkg/xerrors"
)

// Checker adapts a Backend to probe.PackageBackendChecker, the interface
// pkg/probe.Prober uses for PACK_PKG/INSTALL_PKG/PULL_PKG_PACK probes.
type Checker struct {
	Backend Backend
	Config  *config.Config
}

func (c *Checker) ProbeInstalled(pkgName string) (probe.Result, error) {
	pkg, ok := c.Config.Package(pkgName)
	if !ok {
		return probe.Result{}, xerrors.NewConfigError("unknown package %q", pkgName)
	}
	installed, _, err := c.Backend.QueryInstalled(c.Config, pkg, c.Config.SysrootDir())
	if err != nil {
		return probe.Result{}, err
	}
	return probe.Result{Missing: !installed}, nil
}

func (c *Checker) ProbePacked(pkgName string) (probe.Result, error) {
	pkg, ok := c.Config.Package(pkgName)
	if !ok {
		return probe.Result{}, xerrors.NewConfigError("unknown package %q", pkgName)
	}
	version, err := pkg.Version()
	if err != nil {
		return probe.Result{}, err
	}
	arch, err := pkg.XbpsRepoArch()
	if err != nil {
		return probe.Result{}, err
	}
	rd, err := c.Backend.DownloadRepodata(c.Config, arch)
	if err != nil {
		return probe.Result{Missing: true}, nil
	}
	entry, ok := rd.Entries[pkgName]
	return probe.Result{Missing: !ok || entry.Version != version}, nil
}

func (c *Checker) ProbeRepodataVersion(pkgName, localVersion string) (probe.Result, error) {
	pkg, ok := c.Config.Package(pkgName)
	if !ok {
		return probe.Result{}, xerrors.NewConfigError("unknown package %q", pkgName)
	}
	arch, err := pkg.XbpsRepoArch()
	if err != nil {
		return probe.Result{}, err
	}
	rd, err := c.Backend.DownloadRepodata(c.Config, arch)
	if err != nil {
		return probe.Result{Missing: true}, nil
	}
	entry, ok := rd.Entries[pkgName]
	if !ok {
		return probe.Result{Missing: true}, nil
	}
	cmp, err := CompareVersions(entry.Version, localVersion)
	if err != nil {
		return probe.Result{}, err
	}
	return probe.Result{Updatable: cmp > 0}, nil
}

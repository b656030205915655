package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/crossforge/crossforge/pkg/constants"
)

// BuildRoot is the directory all outputs are placed inside; it is the
// directory crossforge was invoked from unless an explicit build root path
// was passed to Load.
func (c *Config) BuildRoot() string {
	if c.buildRootOverride != "" {
		return c.buildRootOverride
	}
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

func (c *Config) directoriesYML() map[string]any {
	return getMap(c.rootYML, "directories")
}

// SysrootSubdir is directories.system_root, defaulting to "system-root".
func (c *Config) SysrootSubdir() string {
	return getStringOr(c.directoriesYML(), "system_root", constants.DefaultSystemRootDir)
}

// SysrootDir is BuildRoot()/SysrootSubdir().
func (c *Config) SysrootDir() string {
	return filepath.Join(c.BuildRoot(), c.SysrootSubdir())
}

// ToolBuildSubdir is directories.tool_builds, defaulting to "tool-builds".
func (c *Config) ToolBuildSubdir() string {
	return getStringOr(c.directoriesYML(), "tool_builds", constants.DefaultToolBuildsDir)
}

func (c *Config) ToolBuildDir() string {
	return filepath.Join(c.BuildRoot(), c.ToolBuildSubdir())
}

// PkgBuildSubdir is directories.pkg_builds, defaulting to "pkg-builds".
func (c *Config) PkgBuildSubdir() string {
	return getStringOr(c.directoriesYML(), "pkg_builds", constants.DefaultPkgBuildsDir)
}

func (c *Config) PkgBuildDir() string {
	return filepath.Join(c.BuildRoot(), c.PkgBuildSubdir())
}

// ToolOutSubdir is directories.tools, defaulting to "tools".
func (c *Config) ToolOutSubdir() string {
	return getStringOr(c.directoriesYML(), "tools", constants.DefaultToolsDir)
}

func (c *Config) ToolOutDir() string {
	return filepath.Join(c.BuildRoot(), c.ToolOutSubdir())
}

// PackageOutSubdir is directories.packages, defaulting to "packages".
func (c *Config) PackageOutSubdir() string {
	return getStringOr(c.directoriesYML(), "packages", constants.DefaultPackagesDir)
}

func (c *Config) PackageOutDir() string {
	return filepath.Join(c.BuildRoot(), c.PackageOutSubdir())
}

func (c *Config) XbpsRepositoryDir() string {
	return filepath.Join(c.BuildRoot(), constants.DefaultXbpsRepoDir)
}

func (c *Config) MirrorDir() string {
	return filepath.Join(c.BuildRoot(), constants.DefaultMirrorDir)
}

// CargoHomeDir is <build_root>/cargo-home, used when a step opts into
// cargo_home.
func (c *Config) CargoHomeDir() string {
	return filepath.Join(c.BuildRoot(), constants.CargoHomeSubdir)
}

// Parallelism is the @PARALLELISM@ substitution value: runtime.GOMAXPROCS(0),
// which unless overridden is the number of CPUs usable by this process.
func (c *Config) Parallelism() string {
	return strconv.Itoa(runtime.GOMAXPROCS(0))
}

// EverythingByDefault mirrors general.everything_by_default, default true.
func (c *Config) EverythingByDefault() bool {
	return getBoolOr(getMap(c.rootYML, "general"), "everything_by_default", true)
}

// MandateHashesForArchives mirrors general.mandate_hashes_for_archives.
func (c *Config) MandateHashesForArchives() bool {
	return getBoolOr(getMap(c.rootYML, "general"), "mandate_hashes_for_archives", false)
}

// EnableNetworkIsolation mirrors general.enable_network_isolation.
func (c *Config) EnableNetworkIsolation() bool {
	return getBoolOr(getMap(c.rootYML, "general"), "enable_network_isolation", false)
}

// PatchAuthor mirrors general.patch_author, default "crossforge".
func (c *Config) PatchAuthor() string {
	return getStringOr(getMap(c.rootYML, "general"), "patch_author", "crossforge")
}

// PatchEmail mirrors general.patch_email, default "crossforge@localhost".
func (c *Config) PatchEmail() string {
	return getStringOr(getMap(c.rootYML, "general"), "patch_email", "crossforge@localhost")
}

// XbstrapMirror mirrors commit-pin file's general.xbstrap_mirror: when set,
// fetch_src redirects git URLs to <mirror>/git/<name>.
func (c *Config) XbstrapMirror() (string, bool) {
	v := getStringOr(getMap(c.commitYML, "general"), "xbstrap_mirror", "")
	return v, v != ""
}

// UseXbps mirrors site file's pkg_management.format == "xbps".
func (c *Config) UseXbps() bool {
	return getStringOr(getMap(c.siteYML, "pkg_management"), "format", "") == "xbps"
}

// ContainerRuntimeName mirrors site file's container.runtime.
func (c *Config) ContainerRuntimeName() string {
	return getStringOr(getMap(c.siteYML, "container"), "runtime", "")
}

// AllowContainerless mirrors site file's container.allow_containerless.
func (c *Config) AllowContainerless() bool {
	return getBoolOr(getMap(c.siteYML, "container"), "allow_containerless", false)
}

// AutoPull mirrors site file's auto_pull.
func (c *Config) AutoPull() bool {
	return getBoolOr(c.siteYML, "auto_pull", false)
}

// SiteArchitectures is the set of non-noarch architectures used by any tool
// or package in the manifest, used to decide which xbps repo index a
// noarch package gets rindexed into.
func (c *Config) SiteArchitectures() []string {
	seen := map[string]bool{}
	var out []string
	add := func(arch string, err error) {
		if err != nil || arch == "" || arch == "noarch" || seen[arch] {
			return
		}
		seen[arch] = true
		out = append(out, arch)
	}
	for _, t := range c.AllTools() {
		add(t.Architecture())
	}
	for _, p := range c.AllPackages() {
		add(p.Architecture())
	}
	return out
}

// XbpsRepositoryURL mirrors site file's pkg_management.repository_url, the
// upstream repo pull_pkg_pack downloads prebuilt packages from.
func (c *Config) XbpsRepositoryURL() string {
	return getString(getMap(c.siteYML, "pkg_management"), "repository_url")
}

// ToolArchivesURL mirrors repositories.tool_archives: either a single URL
// shared by every architecture, or a map keyed by architecture name. Used
// by PullArchive to locate a prebuilt tool tarball.
func (c *Config) ToolArchivesURL(arch string) string {
	raw, ok := getMap(c.rootYML, "repositories")["tool_archives"]
	if !ok || raw == nil {
		return ""
	}
	switch v := raw.(type) {
	case string:
		return v
	case map[string]any:
		return getString(v, arch)
	default:
		return ""
	}
}

// PkgArchivesURL mirrors repositories.pkg_archives, the upstream URL a
// package archive pull would download from.
func (c *Config) PkgArchivesURL() string {
	return getString(getMap(c.rootYML, "repositories"), "pkg_archives")
}

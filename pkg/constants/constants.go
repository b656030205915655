// Package constants holds shared names and defaults used across crossforge:
// default directory layout, marker file names, and environment variable keys.
package constants

// CLIName is the name users type to invoke the tool.
const CLIName = "crossforge"

// Default directory names under build_root, overridable via directories.* in
// the root manifest (see pkg/config/directories.go).
const (
	DefaultSystemRootDir = "system-root"
	DefaultPkgBuildsDir  = "pkg-builds"
	DefaultToolBuildsDir = "tool-builds"
	DefaultToolsDir      = "tools"
	DefaultPackagesDir   = "packages"
	DefaultXbpsRepoDir   = "xbps-repo"
	DefaultMirrorDir     = "mirror"
	CacheDirName         = ".crossforge-cache"
)

// RootManifestLink is the symlink naming the root manifest: either the
// bootstrap.yml file itself or the directory that holds it.
const RootManifestLink = "bootstrap.link"

// Manifest file names, resolved relative to build_root / the source root the
// bootstrap.link symlink points at.
const (
	RootManifestFile = "bootstrap.yml"
	SiteOverrideFile = "bootstrap-site.yml"
	CommitPinFile    = "bootstrap-commits.yml"
)

// Environment variables exported into every step (see step.BuildEnviron).
const (
	EnvSourceRoot       = "XBSTRAP_SOURCE_ROOT"
	EnvBuildRoot        = "XBSTRAP_BUILD_ROOT"
	EnvSysrootDir       = "XBSTRAP_SYSROOT_DIR"
	EnvPkgConfigPath    = "PKG_CONFIG_PATH"
	EnvPkgConfigSysroot = "PKG_CONFIG_SYSROOT_DIR"
	EnvPkgConfigLibdir  = "PKG_CONFIG_LIBDIR"
	EnvCargoHome        = "CARGO_HOME"
	EnvSourceDateEpoch  = "SOURCE_DATE_EPOCH"
	EnvPath             = "PATH"
	EnvLDLibraryPath    = "LD_LIBRARY_PATH"
	EnvACLocalPath      = "ACLOCAL_PATH"
)

// Marker file names, written atomically by action handlers on success; their
// mtime is the "built-at" timestamp used by update propagation.
const (
	MarkerFetched     = "fetched.crossforge"
	MarkerCheckedOut  = "checkedout.crossforge"
	MarkerPatched     = "patched.crossforge"
	MarkerRegenerated = "regenerated.crossforge"
	MarkerConfigured  = "configured.crossforge"
	MarkerBuilt       = "built.crossforge"
	MarkerInstalled   = "installed.crossforge"
	MarkerArchived    = "archived.crossforge"
	MarkerMirrored    = "mirrored.crossforge"
)

// CargoHomeSubdir is the build-root-relative path used for CARGO_HOME when a
// step opts into cargo_home.
const CargoHomeSubdir = "cargo-home"

// VirtualBinSubdir is the scratch directory (under the host temp dir) holding
// generated virtual-tool shim scripts for a single step invocation.
const VirtualBinSubdir = "crossforge/virtual/bin"

// MirrorLockFile is the file locked (via flock) while MIRROR_SRC fetches into
// the shared mirror directory.
const MirrorLockFile = ".crossforge_lock"

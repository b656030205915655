package step

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/crossforge/crossforge/pkg/config"
)

// BuildEnviron constructs the environment overlay for one step, per spec
// §4.5 step 4: PATH/LD_LIBRARY_PATH/ACLOCAL_PATH extension in closure
// order, the XBSTRAP_* root variables, package-build pkgconfig handling,
// CARGO_HOME, and the step's own declared environ (already @var@-expanded
// by the caller).
func BuildEnviron(cfg *config.Config, m *Manifest, virtualBinDir string, injectedPkgConfigShim bool) map[string]string {
	env := make(map[string]string)

	var path []string
	if virtualBinDir != "" {
		path = append(path, virtualBinDir)
	}
	var ldLibraryPath, aclocalPath []string
	for _, t := range m.Tools {
		path = append(path, filepath.Join(t.PrefixDir, "bin"))
		if t.ExportsSharedLibs {
			ldLibraryPath = append(ldLibraryPath, filepath.Join(t.PrefixDir, "lib"))
		}
		if t.ExportsAclocal {
			aclocalPath = append(aclocalPath, filepath.Join(t.PrefixDir, "share", "aclocal"))
		}
	}
	if len(path) > 0 {
		if cur := os.Getenv("PATH"); cur != "" {
			path = append(path, cur)
		}
		env["PATH"] = strings.Join(path, ":")
	}
	if len(ldLibraryPath) > 0 {
		if cur := os.Getenv("LD_LIBRARY_PATH"); cur != "" {
			ldLibraryPath = append(ldLibraryPath, cur)
		}
		env["LD_LIBRARY_PATH"] = strings.Join(ldLibraryPath, ":")
	}
	if len(aclocalPath) > 0 {
		if cur := os.Getenv("ACLOCAL_PATH"); cur != "" {
			aclocalPath = append(aclocalPath, cur)
		}
		env["ACLOCAL_PATH"] = strings.Join(aclocalPath, ":")
	}

	env["XBSTRAP_SOURCE_ROOT"] = cfg.SourceRoot
	env["XBSTRAP_BUILD_ROOT"] = cfg.BuildRoot()
	env["XBSTRAP_SYSROOT_DIR"] = cfg.SysrootDir()

	if m.ForPackage && !injectedPkgConfigShim {
		env["PKG_CONFIG_SYSROOT_DIR"] = m.SysrootSubdir
		env["PKG_CONFIG_LIBDIR"] = filepath.Join(m.SysrootSubdir, "usr", "lib", "pkgconfig") + ":" +
			filepath.Join(m.SysrootSubdir, "usr", "share", "pkgconfig")
		delete(env, "PKG_CONFIG_PATH")
	}

	if m.CargoHome {
		env["CARGO_HOME"] = filepath.Join(cfg.BuildRoot(), "cargo-home")
	}

	if m.HasSourceDateEpoch {
		env["SOURCE_DATE_EPOCH"] = fmt.Sprintf("%d", m.SourceDateEpoch)
	}

	for k, v := range m.Environ {
		env[k] = v
	}

	return env
}

package pkgbackend

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/crossforge/crossforge/pkg/config"
	"github.com/crossforge/crossforge/pkg/fileutil"
	"github.com/crossforge/crossforge/pkg/xerrors"
)

// Xbps shells out to the real xbps-create/xbps-install/xbps-remove/
// xbps-query/xbps-rindex binaries, mirroring base.py's pack_pkg/
// install_pkg/pull_pkg_pack.
type Xbps struct {
	// ExtraPathDirs is prepended to PATH for every xbps-* invocation, the
	// way base.py prepends "~/bin" via _util.build_environ_paths.
	ExtraPathDirs []string
}

func (x *Xbps) Pack(cfg *config.Config, pkg *config.Package, reproduce bool) error {
	version, err := pkg.Version()
	if err != nil {
		return err
	}
	arch, err := pkg.Architecture()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.XbpsRepositoryDir(), 0o755); err != nil {
		return &xerrors.IoError{Path: cfg.XbpsRepositoryDir(), Cause: err}
	}

	packDir, err := os.MkdirTemp("", "crossforge-pack-*")
	if err != nil {
		return &xerrors.IoError{Path: packDir, Cause: err}
	}
	defer os.RemoveAll(packDir)

	if err := installtree(pkg.StagingDir(), packDir); err != nil {
		return err
	}

	deps, err := dependencyString(cfg, pkg)
	if err != nil {
		return err
	}

	args := []string{"-A", arch, "-s", pkg.Name(), "-n", fmt.Sprintf("%s-%s", pkg.Name(), version), "-D", deps}
	meta := pkg.Metadata()
	if meta.Summary != "" {
		args = append(args, "--desc", meta.Summary)
	}
	if meta.Website != "" {
		args = append(args, "--homepage", meta.Website)
	}
	if meta.License != "" {
		args = append(args, "--license", meta.License)
	}
	if meta.Maintainer != "" {
		args = append(args, "--maintainer", meta.Maintainer)
	}
	if len(meta.Categories) > 0 {
		args = append(args, "--tags", strings.Join(meta.Categories, " "))
	}
	if len(meta.Replaces) > 0 {
		args = append(args, "--replaces", strings.Join(meta.Replaces, " "))
	}
	args = append(args, packDir)

	xbpsFile := fmt.Sprintf("%s-%s.%s.xbps", pkg.Name(), version, arch)
	cmd := exec.Command("xbps-create", args...)
	cmd.Env = x.env(nil)
	cmd.Dir = cfg.PackageOutDir()
	if !reproduce {
		cmd.Dir = cfg.XbpsRepositoryDir()
	}
	if out, err := cmd.CombinedOutput(); err != nil {
		return xerrors.NewConfigError("xbps-create failed: %v\n%s", err, out)
	}

	if reproduce {
		a, err1 := os.ReadFile(filepath.Join(cfg.PackageOutDir(), xbpsFile))
		b, err2 := os.ReadFile(filepath.Join(cfg.XbpsRepositoryDir(), xbpsFile))
		if err1 != nil || err2 != nil || string(a) != string(b) {
			return xerrors.NewConfigError("could not reproduce pack of %s", xbpsFile)
		}
		return nil
	}

	rindexArchs := []string{arch}
	if arch == "noarch" {
		rindexArchs = cfg.SiteArchitectures()
	}
	for _, a := range rindexArchs {
		if err := x.rindex(cfg, xbpsFile, a); err != nil {
			return err
		}
	}
	return nil
}

func (x *Xbps) rindex(cfg *config.Config, xbpsFile, arch string) error {
	cmd := exec.Command("xbps-rindex", "-fa", filepath.Join(cfg.XbpsRepositoryDir(), xbpsFile))
	cmd.Env = append(x.env(nil), "XBPS_ARCH="+arch)
	if out, err := cmd.CombinedOutput(); err != nil {
		return xerrors.NewConfigError("xbps-rindex failed: %v\n%s", err, out)
	}
	return nil
}

func (x *Xbps) InstallInto(cfg *config.Config, pkg *config.Package, sysroot string) error {
	if err := os.MkdirAll(sysroot, 0o755); err != nil {
		return &xerrors.IoError{Path: sysroot, Cause: err}
	}
	arch, err := pkg.XbpsRepoArch()
	if err != nil {
		return err
	}

	environ := x.env(nil)
	environ = append(environ, "XBPS_TARGET_ARCH="+arch)
	uname := runtime.GOARCH + "-" + runtime.GOOS + ".HOST"
	environ = append(environ, "XBPS_ARCH="+uname)

	// Workaround for an xbps-install quirk with already-broken installs:
	// remove first, ignoring failure, then install.
	remove := exec.Command("xbps-remove", "-Fy", "-r", sysroot, pkg.Name())
	remove.Env = environ
	_ = remove.Run()

	install := exec.Command("xbps-install", "-fyU", "-r", sysroot, "--repository", cfg.XbpsRepositoryDir(), pkg.Name())
	install.Env = environ
	if out, err := install.CombinedOutput(); err != nil {
		return xerrors.NewConfigError("xbps-install failed: %v\n%s", err, out)
	}
	return nil
}

func (x *Xbps) QueryInstalled(cfg *config.Config, pkg *config.Package, sysroot string) (bool, string, error) {
	out, err := exec.Command("xbps-query", "-r", sysroot, pkg.Name()).Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() == 2 {
			return false, "", nil
		}
		return false, "", xerrors.NewConfigError("xbps-query failed: %v", err)
	}
	for _, line := range strings.Split(string(out), "\n") {
		if strings.HasPrefix(line, "pkgver:") {
			pkgver := strings.TrimSpace(strings.TrimPrefix(line, "pkgver:"))
			return true, StripPkgName(pkgver, pkg.Name()), nil
		}
	}
	return true, "", nil
}

func (x *Xbps) DownloadRepodata(cfg *config.Config, arch string) (*Repodata, error) {
	url := cfg.XbpsRepositoryURL()
	if url == "" {
		return nil, xerrors.NewConfigError("no xbps repository_url configured for arch %s", arch)
	}
	out, err := exec.Command("xbps-query", "--repository="+url, "-Rs", "").CombinedOutput()
	if err != nil {
		return nil, &xerrors.NetworkError{URL: url, Cause: xerrors.NewConfigError("xbps-query failed: %v\n%s", err, out)}
	}
	return parseRepodataListing(string(out)), nil
}

func (x *Xbps) Pull(cfg *config.Config, pkg *config.Package) error {
	arch, err := pkg.XbpsRepoArch()
	if err != nil {
		return err
	}
	rd, err := x.DownloadRepodata(cfg, arch)
	if err != nil {
		return err
	}
	entry, ok := rd.Entries[pkg.Name()]
	if !ok {
		return xerrors.NewConfigError("no remote repodata entry for package %s", pkg.Name())
	}
	if err := os.MkdirAll(cfg.XbpsRepositoryDir(), 0o755); err != nil {
		return &xerrors.IoError{Path: cfg.XbpsRepositoryDir(), Cause: err}
	}
	xbpsFile := fmt.Sprintf("%s.%s.xbps", entry.PkgVer, arch)
	dest := filepath.Join(cfg.XbpsRepositoryDir(), xbpsFile)
	pkgURL := strings.TrimRight(cfg.XbpsRepositoryURL(), "/") + "/" + xbpsFile
	if err := downloadFile(pkgURL, dest); err != nil {
		return err
	}

	rindexArchs := []string{arch}
	if arch == "noarch" {
		rindexArchs = cfg.SiteArchitectures()
	}
	for _, a := range rindexArchs {
		if err := x.rindex(cfg, xbpsFile, a); err != nil {
			return err
		}
	}
	return nil
}

func (x *Xbps) env(extra []string) []string {
	base := os.Environ()
	if len(x.ExtraPathDirs) > 0 {
		for i, kv := range base {
			if strings.HasPrefix(kv, "PATH=") {
				base[i] = "PATH=" + strings.Join(x.ExtraPathDirs, ":") + ":" + strings.TrimPrefix(kv, "PATH=")
			}
		}
	}
	return append(base, extra...)
}

// dependencyString builds xbps-create's "-D" argument: the transitive
// closure of a package's package dependencies, each unconstrained
// (">=0"), mirroring base.py's Package.xbps_dependency_string.
func dependencyString(cfg *config.Config, pkg *config.Package) (string, error) {
	seen := map[string]bool{}
	var names []string
	stack := []string{pkg.Name()}
	for len(stack) > 0 {
		name := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		p, ok := cfg.Package(name)
		if !ok {
			return "", xerrors.NewConfigError("package %q depends on unknown package %q", pkg.Name(), name)
		}
		for _, dep := range p.PkgDeps() {
			if seen[dep] {
				continue
			}
			seen[dep] = true
			names = append(names, dep)
			stack = append(stack, dep)
		}
	}
	var b strings.Builder
	for _, n := range names {
		b.WriteString(" ")
		b.WriteString(n)
		b.WriteString(">=0")
	}
	return strings.TrimPrefix(b.String(), " "), nil
}

func installtree(src, dst string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		if os.IsNotExist(err) {
			return os.MkdirAll(dst, 0o755)
		}
		return &xerrors.IoError{Path: src, Cause: err}
	}
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return &xerrors.IoError{Path: dst, Cause: err}
	}
	for _, e := range entries {
		s := filepath.Join(src, e.Name())
		d := filepath.Join(dst, e.Name())
		if e.IsDir() {
			if err := installtree(s, d); err != nil {
				return err
			}
			continue
		}
		if err := copyFileMode(s, d); err != nil {
			return err
		}
	}
	return nil
}

func copyFileMode(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return &xerrors.IoError{Path: src, Cause: err}
	}
	if err := fileutil.CopyFile(src, dst); err != nil {
		return &xerrors.IoError{Path: dst, Cause: err}
	}
	if err := os.Chmod(dst, info.Mode()); err != nil {
		return &xerrors.IoError{Path: dst, Cause: err}
	}
	return nil
}

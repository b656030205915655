package action

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"archive/tar"
	"compress/gzip"

	"github.com/crossforge/crossforge/pkg/graph"
	"github.com/crossforge/crossforge/pkg/plan"
	"github.com/crossforge/crossforge/pkg/xerrors"
)

// PullArchive downloads a prebuilt tool tarball from the configured tool
// archives URL and extracts it over the tool's prefix directory. Packages
// have no equivalent prebuilt-archive story (base.py's pull_archive raises
// on anything but a host tool), so PullArchive only ever targets tools.
func (r *Runner) PullArchive(ctx context.Context, id graph.SubjectID) error {
	if id.Kind != graph.KindTool {
		return wrapFailure(plan.PullArchive, id, xerrors.NewConfigError("pull-archive is only supported for tools, got %s", id.Kind))
	}
	tool, ok := r.Config.Tool(id.Name)
	if !ok {
		return wrapFailure(plan.PullArchive, id, xerrors.NewConfigError("unknown tool %q", id.Name))
	}

	arch, err := tool.Architecture()
	if err != nil {
		return wrapFailure(plan.PullArchive, id, err)
	}
	if arch == "noarch" {
		site := r.Config.SiteArchitectures()
		if len(site) == 0 {
			return wrapFailure(plan.PullArchive, id, xerrors.NewConfigError("tool %q is noarch but no site architecture is declared", tool.Name()))
		}
		arch = site[0]
	}

	base := r.Config.ToolArchivesURL(arch)
	if base == "" {
		return wrapFailure(plan.PullArchive, id, xerrors.NewConfigError("no tool_archives repository configured for architecture %q", arch))
	}
	url := strings.TrimSuffix(base, "/") + "/" + tool.Name() + ".tar.gz"

	if err := os.MkdirAll(r.Config.ToolOutDir(), 0o755); err != nil {
		return wrapFailure(plan.PullArchive, id, &xerrors.IoError{Path: r.Config.ToolOutDir(), Cause: err})
	}
	if err := downloadToFile(ctx, r.httpClient(), url, tool.ArchiveFile()); err != nil {
		return wrapFailure(plan.PullArchive, id, err)
	}

	if err := os.RemoveAll(tool.PrefixDir()); err != nil {
		return wrapFailure(plan.PullArchive, id, &xerrors.IoError{Path: tool.PrefixDir(), Cause: err})
	}
	if err := os.MkdirAll(tool.PrefixDir(), 0o755); err != nil {
		return wrapFailure(plan.PullArchive, id, &xerrors.IoError{Path: tool.PrefixDir(), Cause: err})
	}
	if err := extractTarGzInto(tool.ArchiveFile(), tool.PrefixDir()); err != nil {
		return wrapFailure(plan.PullArchive, id, err)
	}
	log.Infow("pulled tool archive", "tool", tool.Name(), "url", url)
	return nil
}

func downloadToFile(ctx context.Context, client *http.Client, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &xerrors.NetworkError{URL: url, Cause: err}
	}
	resp, err := client.Do(req)
	if err != nil {
		return &xerrors.NetworkError{URL: url, Cause: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return &xerrors.NetworkError{URL: url, Cause: fmt.Errorf("http status %d", resp.StatusCode)}
	}

	f, err := os.Create(dest)
	if err != nil {
		return &xerrors.IoError{Path: dest, Cause: err}
	}
	defer f.Close()
	if _, err := io.Copy(f, resp.Body); err != nil {
		return &xerrors.NetworkError{URL: url, Cause: err}
	}
	return nil
}

// extractTarGzInto extracts every entry of a gzip-compressed tar archive
// directly under destDir, preserving the archive's own relative paths
// (unlike pkg/vcs's source extraction, there is no sourcename prefix to
// strip or add: a tool archive's entries are already prefix-relative).
func extractTarGzInto(archivePath, destDir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return &xerrors.IoError{Path: archivePath, Cause: err}
	}
	defer f.Close()
	gz, err := gzip.NewReader(f)
	if err != nil {
		return &xerrors.IoError{Path: archivePath, Cause: err}
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return &xerrors.IoError{Path: archivePath, Cause: err}
		}
		target := filepath.Join(destDir, hdr.Name)
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return &xerrors.IoError{Path: target, Cause: err}
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return &xerrors.IoError{Path: target, Cause: err}
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(hdr.Mode))
			if err != nil {
				return &xerrors.IoError{Path: target, Cause: err}
			}
			_, copyErr := io.Copy(out, tr)
			out.Close()
			if copyErr != nil {
				return &xerrors.IoError{Path: target, Cause: copyErr}
			}
		}
	}
	return nil
}

// PullPkgPack downloads a prebuilt package pack from the package backend's
// remote repodata.
func (r *Runner) PullPkgPack(ctx context.Context, id graph.SubjectID) error {
	pkg, ok := r.Config.Package(id.Name)
	if !ok {
		return wrapFailure(plan.PullPkgPack, id, xerrors.NewConfigError("unknown package %q", id.Name))
	}
	if err := r.Backend.Pull(r.Config, pkg); err != nil {
		return wrapFailure(plan.PullPkgPack, id, err)
	}
	log.Infow("pulled package pack", "package", pkg.Name())
	return nil
}

// WantTool/WantPkg are sentinel actions: they denote a dependency outside
// the build scope. If they are ever activated, the plan fails
// unconditionally, matching base.py's do_run_plan (Action.WANT_TOOL/
// Action.WANT_PKG always raise ExecutionFailureError, no existence check).
func (r *Runner) WantTool(ctx context.Context, id graph.SubjectID) error {
	return wrapFailure(plan.WantTool, id, xerrors.NewConfigError("tool %q is out of scope", id.Name))
}

func (r *Runner) WantPkg(ctx context.Context, id graph.SubjectID) error {
	return wrapFailure(plan.WantPkg, id, xerrors.NewConfigError("package %q is out of scope", id.Name))
}

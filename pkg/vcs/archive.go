package vcs

import (
	"archive/tar"
	"archive/zip"
	"compress/bzip2"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"crypto/sha512"
	"hash"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/crossforge/crossforge/pkg/config"
	"github.com/crossforge/crossforge/pkg/fileutil"
	"github.com/crossforge/crossforge/pkg/xerrors"
	"golang.org/x/crypto/blake2b"
)

// Archive fetches a plain URL source over HTTP and extracts it, honoring
// the "checksum" and "mandate_hashes_for_archives" manifest settings.
type Archive struct {
	Client *http.Client
}

func (a *Archive) client() *http.Client {
	if a.Client != nil {
		return a.Client
	}
	return http.DefaultClient
}

func (a *Archive) Fetch(ctx context.Context, cfg *config.Config, src *config.Source) error {
	checksum, hasChecksum := src.Checksum()
	if !hasChecksum && cfg.MandateHashesForArchives() {
		return xerrors.NewConfigError("source %s has no checksum but mandate_hashes_for_archives is set", src.Name())
	}

	if err := os.MkdirAll(src.SubDir(), 0o755); err != nil {
		return &xerrors.IoError{Path: src.SubDir(), Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL(), nil)
	if err != nil {
		return &xerrors.NetworkError{URL: src.URL(), Cause: err}
	}
	resp, err := a.client().Do(req)
	if err != nil {
		return &xerrors.NetworkError{URL: src.URL(), Cause: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return &xerrors.NetworkError{URL: src.URL(), Cause: xerrors.NewConfigError("http status %d", resp.StatusCode)}
	}

	dest := src.ArchiveFile()
	f, err := os.Create(dest)
	if err != nil {
		return &xerrors.IoError{Path: dest, Cause: err}
	}
	defer f.Close()

	var h hash.Hash
	var kind string
	if hasChecksum {
		kind, h = newChecksumHash(checksum)
		if h == nil {
			return xerrors.NewConfigError("source %s declares unsupported checksum type %q", src.Name(), kind)
		}
	}

	var w io.Writer = f
	if h != nil {
		w = io.MultiWriter(f, h)
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return &xerrors.NetworkError{URL: src.URL(), Cause: err}
	}

	if h != nil {
		got := h.Sum(nil)
		want := checksumHex(checksum)
		if hexEncode(got) != want {
			return xerrors.NewConfigError("checksum mismatch for source %s: expected %s, got %s", src.Name(), want, hexEncode(got))
		}
	}
	return nil
}

func (a *Archive) Checkout(ctx context.Context, cfg *config.Config, src *config.Source) error {
	format := src.Format()
	dest := filepath.Join(src.SubDir(), src.Name())

	switch {
	case format == "raw":
		name := src.ArchiveFilename()
		if name == "" {
			name = src.Name()
		}
		if err := os.MkdirAll(dest, 0o755); err != nil {
			return &xerrors.IoError{Path: dest, Cause: err}
		}
		if err := fileutil.CopyFile(src.ArchiveFile(), filepath.Join(dest, name)); err != nil {
			return &xerrors.IoError{Path: filepath.Join(dest, name), Cause: err}
		}
		return nil
	case strings.HasPrefix(format, "zip"):
		return extractZip(src.ArchiveFile(), src.SubDir(), src.Name(), src.ExtractPath())
	case strings.HasPrefix(format, "tar."):
		comp := strings.TrimPrefix(format, "tar.")
		return extractTar(src.ArchiveFile(), src.SubDir(), src.Name(), src.ExtractPath(), comp)
	default:
		return xerrors.NewConfigError("source %s has unrecognized archive format %q", src.Name(), format)
	}
}

func (a *Archive) Patch(ctx context.Context, cfg *config.Config, src *config.Source) error {
	patches, err := listPatches(src.PatchDir())
	if err != nil {
		return err
	}
	for _, patch := range patches {
		if err := applyUnifiedPatch(ctx, src.SourceDir(), patch, src.PatchPathStrip()); err != nil {
			return err
		}
	}
	return nil
}

func (a *Archive) Status(ctx context.Context, cfg *config.Config, src *config.Source, checkRemote bool) (Status, error) {
	return Status{Exists: fileutil.DirExists(src.SourceDir())}, nil
}

func applyUnifiedPatch(ctx context.Context, workdir, patchFile, pathStrip string) error {
	f, err := os.Open(patchFile)
	if err != nil {
		return &xerrors.IoError{Path: patchFile, Cause: err}
	}
	defer f.Close()

	cmd := exec.CommandContext(ctx, "patch", "-p", pathStrip, "--merge")
	cmd.Dir = workdir
	cmd.Stdin = f
	if out, err := cmd.CombinedOutput(); err != nil {
		return xerrors.NewConfigError("patch %s failed: %v\n%s", patchFile, err, out)
	}
	return nil
}

func newChecksumHash(checksum string) (kind string, h hash.Hash) {
	kind, _ = splitChecksum(checksum)
	switch kind {
	case "sha256":
		return kind, sha256.New()
	case "sha512":
		return kind, sha512.New()
	case "blake2b":
		b, err := blake2b.New512(nil)
		if err != nil {
			return kind, nil
		}
		return kind, b
	default:
		return kind, nil
	}
}

func checksumHex(checksum string) string {
	_, hex := splitChecksum(checksum)
	return hex
}

func splitChecksum(checksum string) (kind, hex string) {
	idx := strings.IndexByte(checksum, ':')
	if idx < 0 {
		return "", checksum
	}
	return checksum[:idx], checksum[idx+1:]
}

func hexEncode(b []byte) string {
	const digits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = digits[c>>4]
		out[i*2+1] = digits[c&0xf]
	}
	return string(out)
}

func extractZip(archivePath, destRoot, sourceName, extractPath string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return &xerrors.IoError{Path: archivePath, Cause: err}
	}
	defer r.Close()

	prefix := ""
	if extractPath != "" {
		prefix = extractPath + "/"
	}
	for _, f := range r.File {
		if !strings.HasPrefix(f.Name, prefix) {
			continue
		}
		rel := sourceName + "/" + strings.TrimPrefix(f.Name, prefix)
		target := filepath.Join(destRoot, rel)
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return &xerrors.IoError{Path: target, Cause: err}
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return &xerrors.IoError{Path: target, Cause: err}
		}
		rc, err := f.Open()
		if err != nil {
			return &xerrors.IoError{Path: f.Name, Cause: err}
		}
		out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, f.Mode())
		if err != nil {
			rc.Close()
			return &xerrors.IoError{Path: target, Cause: err}
		}
		_, copyErr := io.Copy(out, rc)
		rc.Close()
		out.Close()
		if copyErr != nil {
			return &xerrors.IoError{Path: target, Cause: copyErr}
		}
	}
	return nil
}

func extractTar(archivePath, destRoot, sourceName, extractPath, compression string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return &xerrors.IoError{Path: archivePath, Cause: err}
	}
	defer f.Close()

	var r io.Reader
	switch compression {
	case "gz":
		gz, err := gzip.NewReader(f)
		if err != nil {
			return &xerrors.IoError{Path: archivePath, Cause: err}
		}
		defer gz.Close()
		r = gz
	case "bz2":
		r = bzip2.NewReader(f)
	case "xz":
		return xerrors.NewConfigError("tar.xz extraction requires an external xz filter, not wired in this build")
	default:
		return xerrors.NewConfigError("unsupported tar compression %q", compression)
	}

	prefix := ""
	if extractPath != "" {
		prefix = extractPath + "/"
	}
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return &xerrors.IoError{Path: archivePath, Cause: err}
		}
		if !strings.HasPrefix(hdr.Name, prefix) {
			continue
		}
		rel := sourceName + "/" + strings.TrimPrefix(hdr.Name, prefix)
		target := filepath.Join(destRoot, rel)
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

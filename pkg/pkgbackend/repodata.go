package pkgbackend

import (
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/crossforge/crossforge/pkg/xerrors"
)

// parseRepodataListing parses "xbps-query -Rs" output, one package per
// line formatted as "[*] <pkgver> <description>", into a Repodata keyed by
// package name.
func parseRepodataListing(listing string) *Repodata {
	rd := &Repodata{Entries: map[string]RepodataEntry{}}
	for _, line := range strings.Split(listing, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "[*]")
		line = strings.TrimPrefix(line, "[-]")
		line = strings.TrimSpace(line)
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		pkgver := fields[0]
		idx := strings.LastIndexByte(pkgver, '-')
		if idx < 0 {
			continue
		}
		name, version := pkgver[:idx], pkgver[idx+1:]
		rd.Entries[name] = RepodataEntry{PkgVer: pkgver, Version: version}
	}
	return rd
}

func downloadFile(url, dest string) error {
	resp, err := http.Get(url)
	if err != nil {
		return &xerrors.NetworkError{URL: url, Cause: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return &xerrors.NetworkError{URL: url, Cause: xerrors.NewConfigError("http status %d", resp.StatusCode)}
	}
	f, err := os.Create(dest)
	if err != nil {
		return &xerrors.IoError{Path: dest, Cause: err}
	}
	defer f.Close()
	if _, err := io.Copy(f, resp.Body); err != nil {
		return &xerrors.IoError{Path: dest, Cause: err}
	}
	return nil
}

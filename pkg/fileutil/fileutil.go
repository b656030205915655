// Package fileutil provides small filesystem helpers shared by the VCS
// and package-backend layers.
package fileutil

import (
	"io"
	"os"
)

// DirExists reports whether path exists and is a directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// CopyFile copies a file from src to dst using buffered IO, creating dst
// with the default create mode. Callers that need to preserve src's mode
// bits (executables, setuid, ...) chmod dst themselves afterward.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	if _, err = io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}

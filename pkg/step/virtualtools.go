package step

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/crossforge/crossforge/pkg/xerrors"
)

const shimMode = 0o755

// PrepareVirtualBin writes one shim script per virtual tool into
// scratchDir/virtual-bin and returns that directory, per spec §4.5 step 3;
// the host shim computes its PKG_CONFIG_PATH inside the script it writes.
// Only "pkgconfig-for-host" and "pkgconfig-for-target" are recognized;
// anything else is a fatal configuration error.
func PrepareVirtualBin(scratchDir string, tools []ToolRef, virtual []VirtualTool, sysrootSubdir string, multiarchTriple string) (binDir string, err error) {
	binDir = filepath.Join(scratchDir, "virtual-bin")
	if len(virtual) == 0 {
		return binDir, nil
	}
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return "", &xerrors.IoError{Path: binDir, Cause: err}
	}

	for _, vt := range virtual {
		switch vt.Kind {
		case "pkgconfig-for-host":
			if err := writePkgConfigHostShim(binDir, tools, multiarchTriple); err != nil {
				return "", err
			}
		case "pkgconfig-for-target":
			if err := writePkgConfigTargetShim(binDir, sysrootSubdir); err != nil {
				return "", err
			}
		default:
			return "", xerrors.NewConfigError("unsupported virtual tool kind %q", vt.Kind)
		}
	}
	return binDir, nil
}

// writePkgConfigHostShim builds PKG_CONFIG_PATH from every tool's
// lib/pkgconfig and share/pkgconfig (plus a multiarch triple subdirectory
// on Linux hosts when one is configured) and writes a shim that sets it
// before delegating to the real pkg-config on PATH.
func writePkgConfigHostShim(binDir string, tools []ToolRef, multiarchTriple string) error {
	var entries []string
	for _, t := range tools {
		entries = append(entries,
			filepath.Join(t.PrefixDir, "lib", "pkgconfig"),
			filepath.Join(t.PrefixDir, "share", "pkgconfig"),
		)
		if multiarchTriple != "" {
			entries = append(entries, filepath.Join(t.PrefixDir, "lib", multiarchTriple, "pkgconfig"))
		}
	}
	script := fmt.Sprintf("#!/bin/sh\nexport PKG_CONFIG_PATH=%q\nexec pkg-config \"$@\"\n", strings.Join(entries, ":"))
	return writeShim(filepath.Join(binDir, "pkg-config"), script)
}

// writePkgConfigTargetShim delegates target pkg-config queries to the
// sysroot's own pkgconfig directories.
func writePkgConfigTargetShim(binDir, sysrootSubdir string) error {
	libdir := filepath.Join(sysrootSubdir, "usr", "lib", "pkgconfig") + ":" + filepath.Join(sysrootSubdir, "usr", "share", "pkgconfig")
	script := fmt.Sprintf("#!/bin/sh\nexport PKG_CONFIG_SYSROOT_DIR=%q\nexport PKG_CONFIG_LIBDIR=%q\nunset PKG_CONFIG_PATH\nexec pkg-config \"$@\"\n", sysrootSubdir, libdir)
	return writeShim(filepath.Join(binDir, "target-pkg-config"), script)
}

func writeShim(path, content string) error {
	if err := os.WriteFile(path, []byte(content), shimMode); err != nil {
		return &xerrors.IoError{Path: path, Cause: err}
	}
	return nil
}

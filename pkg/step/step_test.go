//go:build !integration

package step

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/crossforge/crossforge/pkg/config"
)

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bootstrap.yml"), []byte(`
sources:
  - name: zlib
    git: "https://example.invalid/zlib.git"
tools:
  - name: binutils
    from_source: zlib
    exports_shared_libs: true
  - name: gcc
    from_source: zlib
    tools_required:
      - tool: binutils
        recursive: true
    exports_aclocal: true
`), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(config.LoadOptions{StartDir: dir, BuildRoot: dir})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return cfg
}

func TestToolClosureFollowsRecursiveDeps(t *testing.T) {
	cfg := newTestConfig(t)
	tools := ToolClosure(cfg, []string{"gcc"})
	names := make(map[string]bool)
	for _, t := range tools {
		names[t.Name()] = true
	}
	if !names["gcc"] || !names["binutils"] {
		t.Fatalf("expected closure to include gcc and binutils, got %v", names)
	}
}

func TestBuildEnvironExtendsPathAndLibraryPath(t *testing.T) {
	cfg := newTestConfig(t)
	tools := ToolRefs(ToolClosure(cfg, []string{"gcc"}))
	m := &Manifest{Tools: tools}
	env := BuildEnviron(cfg, m, "", false)
	if env["PATH"] == "" {
		t.Fatal("expected PATH to be extended with tool bin dirs")
	}
	if env["LD_LIBRARY_PATH"] == "" {
		t.Fatal("expected LD_LIBRARY_PATH to include binutils (exports_shared_libs)")
	}
	if env["ACLOCAL_PATH"] == "" {
		t.Fatal("expected ACLOCAL_PATH to include gcc (exports_aclocal)")
	}
	if env["XBSTRAP_SOURCE_ROOT"] != cfg.SourceRoot {
		t.Fatal("expected XBSTRAP_SOURCE_ROOT to be set")
	}
}

func TestPrepareVirtualBinRejectsUnknownKind(t *testing.T) {
	dir := t.TempDir()
	_, err := PrepareVirtualBin(dir, nil, []VirtualTool{{Kind: "bogus"}}, "", "")
	if err == nil {
		t.Fatal("expected an unsupported virtual tool kind to be rejected")
	}
}

func TestPrepareVirtualBinWritesHostShim(t *testing.T) {
	dir := t.TempDir()
	binDir, err := PrepareVirtualBin(dir, []ToolRef{{Name: "gcc", PrefixDir: "/tools/gcc"}}, []VirtualTool{{Kind: "pkgconfig-for-host"}}, "", "")
	if err != nil {
		t.Fatalf("PrepareVirtualBin: %v", err)
	}
	if _, err := os.Stat(filepath.Join(binDir, "pkg-config")); err != nil {
		t.Fatalf("expected a pkg-config shim to be written: %v", err)
	}
}

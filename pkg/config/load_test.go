//go:build !integration

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func newTestTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeManifest(t, dir, "bootstrap.yml", `
general:
  everything_by_default: true

declare_options:
  - name: build_type
    default: release

sources:
  - name: zlib
    git: "https://example.invalid/zlib.git"
    branch: main

tools:
  - name: gcc
    from_source: zlib
    compile:
      - args: ["make"]
    install:
      - args: ["make", "install"]

packages:
  - name: libfoo
    from_source: zlib
    configure:
      - args: ["./configure"]
    build:
      - args: ["make"]

tasks:
  - name: check
    args: ["make", "check"]
`)
	return dir
}

func TestLoadResolvesBootstrapLink(t *testing.T) {
	dir := newTestTree(t)
	sub := filepath.Join(dir, "build")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(dir, filepath.Join(sub, "bootstrap.link")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	cfg, err := Load(LoadOptions{StartDir: sub, BuildRoot: sub})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := cfg.Source("zlib"); !ok {
		t.Fatal("expected source zlib to be loaded")
	}
	if _, ok := cfg.Tool("gcc"); !ok {
		t.Fatal("expected tool gcc to be loaded")
	}
	if _, ok := cfg.Package("libfoo"); !ok {
		t.Fatal("expected package libfoo to be loaded")
	}
	if _, ok := cfg.FreeTask("check"); !ok {
		t.Fatal("expected task check to be loaded")
	}
}

func TestLoadRejectsNestedImports(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "bootstrap.yml", `
imports:
  - file: extra.yml
`)
	writeManifest(t, dir, "extra.yml", `
imports:
  - file: bootstrap.yml
sources: []
`)
	sub := filepath.Join(dir, "build")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(dir, filepath.Join(sub, "bootstrap.link")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	_, err := Load(LoadOptions{StartDir: sub, BuildRoot: sub})
	if err == nil {
		t.Fatal("expected nested imports to be rejected")
	}
}

func TestDuplicateSourceIsRejected(t *testing.T) {
	cfg := newConfig()
	yml := map[string]any{
		"sources": []any{
			map[string]any{"name": "zlib", "git": "a"},
			map[string]any{"name": "zlib", "git": "b"},
		},
	}
	if err := cfg.mergeSources(yml, nil); err == nil {
		t.Fatal("expected duplicate source error")
	}
}

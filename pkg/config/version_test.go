//go:build !integration

package config

import "testing"

func TestPackageVersionFallsBackToRevisionZero(t *testing.T) {
	cfg := newConfig()
	cfg.sources = map[string]*Source{}
	src := newSource(cfg, "", map[string]any{"name": "zlib", "git": "u"})
	cfg.sources["zlib"] = src

	pkg := newPackage(cfg, map[string]any{"name": "libfoo", "from_source": "zlib"})
	v, err := pkg.Version()
	if err != nil {
		t.Fatalf("Version: %v", err)
	}
	if v != "0.0_0" {
		t.Fatalf("expected fallback version 0.0_0, got %q", v)
	}
}

func TestPackageVersionUsesExplicitRevision(t *testing.T) {
	cfg := newConfig()
	src := newSource(cfg, "", map[string]any{"name": "zlib", "git": "u", "version": "1.2.3"})
	cfg.sources = map[string]*Source{"zlib": src}

	pkg := newPackage(cfg, map[string]any{"name": "libfoo", "from_source": "zlib", "revision": 2})
	v, err := pkg.Version()
	if err != nil {
		t.Fatalf("Version: %v", err)
	}
	if v != "1.2.3_2" {
		t.Fatalf("expected 1.2.3_2, got %q", v)
	}
}

func TestPackageVersionRejectsRevisionBelowOne(t *testing.T) {
	cfg := newConfig()
	src := newSource(cfg, "", map[string]any{"name": "zlib", "git": "u", "version": "1.0"})
	cfg.sources = map[string]*Source{"zlib": src}

	pkg := newPackage(cfg, map[string]any{"name": "libfoo", "from_source": "zlib", "revision": 0})
	if _, err := pkg.Version(); err == nil {
		t.Fatal("expected a ConfigError for revision < 1")
	}
}

func TestToolVersionDefaultsRevisionToOne(t *testing.T) {
	cfg := newConfig()
	src := newSource(cfg, "", map[string]any{"name": "gcc-src", "git": "u", "version": "13.2.0"})
	cfg.sources = map[string]*Source{"gcc-src": src}

	tool := newTool(cfg, map[string]any{"name": "gcc", "from_source": "gcc-src"})
	v, err := tool.Version()
	if err != nil {
		t.Fatalf("Version: %v", err)
	}
	if v != "13.2.0_1" {
		t.Fatalf("expected 13.2.0_1, got %q", v)
	}
}

func TestSourceRollingVersionUnavailableWithoutPin(t *testing.T) {
	cfg := newConfig()
	src := newSource(cfg, "", map[string]any{
		"name":            "linux",
		"git":             "u",
		"rolling_version": true,
		"version":         "@ROLLING_ID@",
	})
	cfg.sources = map[string]*Source{"linux": src}
	cfg.commitYML = map[string]any{}

	if _, err := src.Version(); err == nil {
		t.Fatal("expected an error resolving @ROLLING_ID@ with no commit pin")
	}
}

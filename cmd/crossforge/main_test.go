//go:build !integration

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crossforge/crossforge/pkg/config"
)

func writeTestManifest(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bootstrap.yml"), []byte(content), 0o644))
}

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	writeTestManifest(t, dir, `
general:
  everything_by_default: true

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
    tools_required:
      - gcc
    configure:
      - args: ["./configure"]
    build:
      - args: ["make"]
  - name: libbar
    from_source: zlib
    default: false
    configure: []
    build: []
`)
	cfg, err := config.Load(config.LoadOptions{StartDir: dir, BuildRoot: dir})
	require.NoError(t, err)
	return cfg
}

func TestRootCommandStructure(t *testing.T) {
	require.Equal(t, "crossforge", rootCmd.Use)
	require.NotEmpty(t, rootCmd.Short)
	require.True(t, rootCmd.SilenceUsage)
	require.True(t, rootCmd.SilenceErrors)

	expected := []string{
		"init", "fetch", "checkout", "patch", "regenerate",
		"configure-tool", "compile-tool", "install-tool", "archive-tool",
		"configure", "build", "reproduce-build", "pack", "reproduce-pack",
		"install", "archive", "pull-pack", "run", "runtool",
		"list-srcs", "list-tools", "list-pkgs", "execute-manifest", "version",
	}
	present := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		present[c.Name()] = true
	}
	for _, name := range expected {
		require.Truef(t, present[name], "expected subcommand %q to be registered", name)
	}
}

func TestVerboseFlagRegistered(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, flag)
	require.Equal(t, "false", flag.DefValue)
}

func TestSelectToolsAll(t *testing.T) {
	cfg := newTestConfig(t)
	tools, err := selectTools(cfg, true, nil)
	require.NoError(t, err)
	require.Len(t, tools, 1)
	require.Equal(t, "gcc", tools[0].Name())
}

func TestSelectToolsExplicit(t *testing.T) {
	cfg := newTestConfig(t)
	tools, err := selectTools(cfg, false, []string{"gcc"})
	require.NoError(t, err)
	require.Len(t, tools, 1)

	_, err = selectTools(cfg, false, []string{"nope"})
	require.Error(t, err)
}

func TestSelectPkgsAllSkipsNonDefault(t *testing.T) {
	cfg := newTestConfig(t)
	pkgs, err := selectPkgs(cfg, true, nil)
	require.NoError(t, err)
	names := make([]string, 0, len(pkgs))
	for _, p := range pkgs {
		names = append(names, p.Name())
	}
	require.Contains(t, names, "libfoo")
	require.NotContains(t, names, "libbar")
}

func TestSelectPkgsExplicitIncludesNonDefault(t *testing.T) {
	cfg := newTestConfig(t)
	pkgs, err := selectPkgs(cfg, false, []string{"libbar"})
	require.NoError(t, err)
	require.Len(t, pkgs, 1)
	require.Equal(t, "libbar", pkgs[0].Name())
}

func TestReconfigureRebuildEdgesNoPack(t *testing.T) {
	cfg := newTestConfig(t)
	pkgs, err := selectPkgs(cfg, false, []string{"libfoo"})
	require.NoError(t, err)

	none := reconfigureRebuildEdges(cfg, pkgs, false, false, true)
	require.Empty(t, none)

	reconfigure := reconfigureRebuildEdges(cfg, pkgs, true, false, true)
	require.Len(t, reconfigure, 2)
	require.Equal(t, "CONFIGURE_PKG", string(reconfigure[0].Action))
	require.Equal(t, "BUILD_PKG", string(reconfigure[1].Action))

	rebuild := reconfigureRebuildEdges(cfg, pkgs, false, true, true)
	require.Len(t, rebuild, 1)
	require.Equal(t, "BUILD_PKG", string(rebuild[0].Action))
}

func TestMaterializeOptionsFollowsXbpsSetting(t *testing.T) {
	cfg := newTestConfig(t)
	opts := materializeOptions(cfg)
	require.Equal(t, cfg.UseXbps(), opts.UsePackageBackend)
}

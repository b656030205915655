//go:build !integration

package plan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/crossforge/crossforge/pkg/config"
	"github.com/crossforge/crossforge/pkg/graph"
)

func writeManifest(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	writeManifest(t, dir, "bootstrap.yml", `
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

  - name: base-files
    from_source: zlib
    implict_package: true
    configure: []
    build: []
`)
	cfg, err := config.Load(config.LoadOptions{StartDir: dir, BuildRoot: dir})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return cfg
}

func TestMaterializeBuildPkgPullsInConfigureAndImplicit(t *testing.T) {
	cfg := newTestConfig(t)
	root := Key{Action: BuildPkg, Subject: graph.SubjectID{Kind: graph.KindPackage, Name: "libfoo"}}
	items, err := Materialize(cfg, []Key{root}, MaterializeOptions{})
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}

	configureKey := Key{Action: ConfigurePkg, Subject: root.Subject}
	if _, ok := items[configureKey]; !ok {
		t.Fatal("expected BUILD_PKG to materialize a CONFIGURE_PKG build edge")
	}

	installImplicit := Key{Action: InstallPkg, Subject: graph.SubjectID{Kind: graph.KindPackage, Name: "base-files"}}
	if _, ok := items[installImplicit]; !ok {
		t.Fatal("expected the implicit package to be pulled in as an INSTALL_PKG require edge")
	}

	installGCCStage := Key{Action: InstallToolStage, Subject: graph.SubjectID{Kind: graph.KindToolStage, Name: "gcc"}}
	if _, ok := items[installGCCStage]; !ok {
		t.Fatal("expected the tool dependency to materialize INSTALL_TOOL_STAGE")
	}
}

func TestMaterializeOutOfScopeToolBecomesWant(t *testing.T) {
	cfg := newTestConfig(t)
	root := Key{Action: BuildPkg, Subject: graph.SubjectID{Kind: graph.KindPackage, Name: "libfoo"}}
	scope := newStaticScope() // empty: nothing in scope
	items, err := Materialize(cfg, []Key{root}, MaterializeOptions{Scope: scope})
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	want := Key{Action: WantTool, Subject: graph.SubjectID{Kind: graph.KindTool, Name: "gcc"}}
	if _, ok := items[want]; !ok {
		t.Fatal("expected an out-of-scope tool dependency to materialize WANT_TOOL")
	}
}

func TestOrderIsTopologicallyValidAndDeterministic(t *testing.T) {
	cfg := newTestConfig(t)
	root := Key{Action: BuildPkg, Subject: graph.SubjectID{Kind: graph.KindPackage, Name: "libfoo"}}
	items, err := Materialize(cfg, []Key{root}, MaterializeOptions{})
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	order1, err := Order(items, nil)
	if err != nil {
		t.Fatalf("Order: %v", err)
	}

	pos := make(map[Key]int, len(order1))
	for i, it := range order1 {
		pos[it.Key] = i
	}
	for _, it := range order1 {
		for _, dep := range it.BuildEdges {
			if _, ok := items[dep]; !ok {
				continue
			}
			if pos[dep] >= pos[it.Key] {
				t.Fatalf("build edge %s must precede %s in the order", dep, it.Key)
			}
		}
	}

	// Re-materializing and re-ordering an equivalent graph must reproduce
	// the same order (spec §5's determinism guarantee).
	items2, err := Materialize(cfg, []Key{root}, MaterializeOptions{})
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	order2, err := Order(items2, nil)
	if err != nil {
		t.Fatalf("Order: %v", err)
	}
	if len(order1) != len(order2) {
		t.Fatalf("expected stable item count, got %d vs %d", len(order1), len(order2))
	}
	for i := range order1 {
		if order1[i].Key != order2[i].Key {
			t.Fatalf("order not deterministic at index %d: %s vs %s", i, order1[i].Key, order2[i].Key)
		}
	}
}

func TestActivateOnlyMarksBuildSpanAndMissingItems(t *testing.T) {
	cfg := newTestConfig(t)
	root := Key{Action: BuildPkg, Subject: graph.SubjectID{Kind: graph.KindPackage, Name: "libfoo"}}
	items, err := Materialize(cfg, []Key{root}, MaterializeOptions{})
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	for _, it := range items {
		it.Missing = true // nothing built yet
	}
	order, err := Order(items, nil)
	if err != nil {
		t.Fatalf("Order: %v", err)
	}

	Activate(order, items, ActivateOptions{Wanted: []Key{root}})

	if !items[root].Active {
		t.Fatal("expected the wanted root to be active")
	}
	configureKey := Key{Action: ConfigurePkg, Subject: root.Subject}
	if !items[configureKey].Active {
		t.Fatal("expected CONFIGURE_PKG to activate via the build edge")
	}
}

func TestActivateCheckSkipsNonMissingWantedItem(t *testing.T) {
	cfg := newTestConfig(t)
	root := Key{Action: BuildPkg, Subject: graph.SubjectID{Kind: graph.KindPackage, Name: "libfoo"}}
	items, err := Materialize(cfg, []Key{root}, MaterializeOptions{})
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	// Everything already present.
	for _, it := range items {
		it.Missing = false
	}
	order, err := Order(items, nil)
	if err != nil {
		t.Fatalf("Order: %v", err)
	}

	Activate(order, items, ActivateOptions{Wanted: []Key{root}, Check: true})

	if items[root].Active {
		t.Fatal("expected a non-missing wanted item under --check to stay inactive")
	}
}

func TestOnlyWantedReportsViolations(t *testing.T) {
	cfg := newTestConfig(t)
	root := Key{Action: BuildPkg, Subject: graph.SubjectID{Kind: graph.KindPackage, Name: "libfoo"}}
	items, err := Materialize(cfg, []Key{root}, MaterializeOptions{})
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	for _, it := range items {
		it.Missing = true
	}
	order, err := Order(items, nil)
	if err != nil {
		t.Fatalf("Order: %v", err)
	}

	violations := Activate(order, items, ActivateOptions{Wanted: []Key{root}, OnlyWanted: true})
	if len(violations) == 0 {
		t.Fatal("expected activating CONFIGURE_PKG (outside the wanted set) to be reported")
	}
}

func TestOrderDetectsCycle(t *testing.T) {
	items := map[Key]*Item{
		{Action: Run, Subject: graph.SubjectID{Kind: graph.KindTask, Name: "a"}}: {
			Key:          Key{Action: Run, Subject: graph.SubjectID{Kind: graph.KindTask, Name: "a"}},
			RequireEdges: []Key{{Action: Run, Subject: graph.SubjectID{Kind: graph.KindTask, Name: "b"}}},
		},
		{Action: Run, Subject: graph.SubjectID{Kind: graph.KindTask, Name: "b"}}: {
			Key:          Key{Action: Run, Subject: graph.SubjectID{Kind: graph.KindTask, Name: "b"}},
			RequireEdges: []Key{{Action: Run, Subject: graph.SubjectID{Kind: graph.KindTask, Name: "a"}}},
		},
	}
	if _, err := Order(items, nil); err == nil {
		t.Fatal("expected a cycle between mutually requiring tasks to be reported")
	}
}

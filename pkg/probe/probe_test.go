//go:build !integration

package probe

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/crossforge/crossforge/pkg/graph"
	"github.com/crossforge/crossforge/pkg/plan"
)

func TestWriteMarkerThenProbeReportsPresent(t *testing.T) {
	dir := t.TempDir()
	if err := WriteMarker(dir, "built.crossforge"); err != nil {
		t.Fatalf("WriteMarker: %v", err)
	}
	res, err := markerResult(dir, "built.crossforge")
	if err != nil {
		t.Fatalf("markerResult: %v", err)
	}
	if res.Missing {
		t.Fatal("expected marker to report present after WriteMarker")
	}
	if !res.HasTimestamp || res.Timestamp.IsZero() {
		t.Fatal("expected a non-zero timestamp from the marker's mtime")
	}
}

func TestMarkerResultMissingWhenAbsent(t *testing.T) {
	dir := t.TempDir()
	res, err := markerResult(dir, "never-written.crossforge")
	if err != nil {
		t.Fatalf("markerResult: %v", err)
	}
	if !res.Missing {
		t.Fatal("expected missing=true for an absent marker")
	}
}

func TestWriteMarkerIsAtomic(t *testing.T) {
	dir := t.TempDir()
	if err := WriteMarker(dir, "fetched.crossforge"); err != nil {
		t.Fatalf("WriteMarker: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".tmp" {
			t.Fatalf("expected no leftover temp files, found %s", e.Name())
		}
	}
}

func TestNonIdempotentActionsAlwaysReportMissing(t *testing.T) {
	p := &Prober{}
	for _, a := range []plan.Action{plan.Run, plan.RunPkg, plan.RunTool, plan.ReproduceBuildPkg, plan.ArchivePkg, plan.PullArchive} {
		res, err := p.Probe(a, graph.SubjectID{Kind: graph.KindTask, Name: "x"}, Options{})
		if err != nil {
			t.Fatalf("Probe(%s): %v", a, err)
		}
		if !res.Missing {
			t.Fatalf("expected %s to always report missing=true", a)
		}
	}
}

func TestWantActionsAlwaysMissing(t *testing.T) {
	p := &Prober{}
	res, err := p.Probe(plan.WantTool, graph.SubjectID{Kind: graph.KindTool, Name: "gcc"}, Options{})
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if !res.Missing {
		t.Fatal("expected WANT_TOOL to always report missing")
	}
}

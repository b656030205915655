package vcs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestListPatchesSortsAndFiltersExtension(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"0002-b.patch", "0001-a.patch", "README", "0000-pre.patch.orig"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	patches, err := listPatches(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(patches) != 2 {
		t.Fatalf("expected 2 patches, got %v", patches)
	}
	if filepath.Base(patches[0]) != "0001-a.patch" || filepath.Base(patches[1]) != "0002-b.patch" {
		t.Fatalf("patches not sorted: %v", patches)
	}
}

func TestListPatchesMissingDirIsEmpty(t *testing.T) {
	patches, err := listPatches(filepath.Join(t.TempDir(), "does-not-exist"))
	if err != nil {
		t.Fatal(err)
	}
	if patches != nil {
		t.Fatalf("expected no patches, got %v", patches)
	}
}

func TestDispatcherSelectsBackendByVCSKind(t *testing.T) {
	d := NewDispatcher()
	if d.Git == nil || d.Hg == nil || d.Svn == nil || d.Archive == nil {
		t.Fatal("expected all four backends wired")
	}
}

//go:build !integration

package config

import (
	"testing"

	"github.com/crossforge/crossforge/pkg/graph"
)

func TestFreeTaskSubjectID(t *testing.T) {
	cfg := newConfig()
	task := newFreeTask(cfg, map[string]any{"name": "check"})
	id := task.SubjectID()
	if id.Kind != graph.KindTask || id.Name != "check" || id.Parent != "" {
		t.Fatalf("unexpected subject id: %+v", id)
	}
}

func TestPackageTaskInheritsParentRequirements(t *testing.T) {
	cfg := newConfig()
	pkgYML := map[string]any{
		"name":          "libfoo",
		"pkgs_required": []any{"libbar"},
		"tasks": []any{
			map[string]any{"name": "check"},
		},
	}
	p := newPackage(cfg, pkgYML)

	task, ok := p.GetTask("libfoo:check")
	if !ok {
		t.Fatal("expected task libfoo:check to be registered")
	}
	deps := task.PkgDeps()
	if len(deps) != 1 || deps[0] != "libbar" {
		t.Fatalf("expected the task to inherit its package's pkg deps, got %v", deps)
	}
}

func TestTaskArtifactFilesSubstitution(t *testing.T) {
	cfg := newConfig()
	cfg.SourceRoot = "/src"
	task := newFreeTask(cfg, map[string]any{
		"name": "dump-config",
		"artifact_files": []any{
			map[string]any{"name": "config.log", "path": "@SOURCE_ROOT@/build"},
		},
	})
	files, err := task.ArtifactFiles()
	if err != nil {
		t.Fatalf("ArtifactFiles: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("expected one artifact file, got %d", len(files))
	}
	if files[0].Path != "/src/build/config.log" {
		t.Fatalf("unexpected path: %q", files[0].Path)
	}
}

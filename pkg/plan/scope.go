package plan

import (
	"os"
	"path/filepath"

	"github.com/crossforge/crossforge/pkg/config"
	"github.com/crossforge/crossforge/pkg/graph"
)

// StaticScope is a fixed set of in-scope subjects, built once by
// ComputeAutoScope or supplied directly by a caller that wants an explicit
// restriction.
type StaticScope struct {
	inScope map[graph.SubjectID]bool
}

func (s *StaticScope) InScope(id graph.SubjectID) bool { return s.inScope[id] }

func newStaticScope() *StaticScope {
	return &StaticScope{inScope: make(map[graph.SubjectID]bool)}
}

func (s *StaticScope) add(id graph.SubjectID) { s.inScope[id] = true }

// ComputeAutoScope restricts the build scope to subjects explicitly wanted
// for configure/build plus every tool/package that already has a build
// directory on disk, mirroring xbstrap's _compute_auto_scope.
func ComputeAutoScope(cfg *config.Config, wanted []Key) *StaticScope {
	scope := newStaticScope()

	for _, w := range wanted {
		switch w.Action {
		case ConfigureTool, CompileToolStage, ConfigurePkg, BuildPkg, ReproduceBuildPkg:
			scope.add(subjectToolOrPkgID(w.Subject))
		}
	}

	for _, name := range listDirNames(cfg.ToolBuildDir()) {
		if tool, ok := cfg.Tool(name); ok {
			scope.add(tool.SubjectID())
			for _, st := range tool.AllStages() {
				scope.add(st.SubjectID())
			}
		}
	}

	for _, name := range listDirNames(cfg.PkgBuildDir()) {
		if _, ok := cfg.Package(name); ok {
			scope.add(graph.SubjectID{Kind: graph.KindPackage, Name: name})
		}
	}

	return scope
}

// subjectToolOrPkgID normalizes a CompileToolStage subject (tool-stage) to
// its owning tool's id, since scope is tracked per tool/package, not per
// stage.
func subjectToolOrPkgID(id graph.SubjectID) graph.SubjectID {
	if id.Kind == graph.KindToolStage {
		return graph.SubjectID{Kind: graph.KindTool, Name: id.Name}
	}
	return id
}

func listDirNames(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, filepath.Base(e.Name()))
	}
	return names
}

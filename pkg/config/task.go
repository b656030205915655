package config

import (
	"path/filepath"

	"github.com/crossforge/crossforge/pkg/graph"
)

// Task is a free-standing, package-bound, or tool-bound script invocation.
// A bound task's dependencies are inherited from its owning package/tool
// (not declared on the task itself), matching PackageRunTask's behavior of
// exposing its parent's _this_yml as its own requirements.
type Task struct {
	cfg    *Config
	yml    map[string]any
	name   string // task's own name within its parent, e.g. "check"
	parent *graph.SubjectID
	reqs   graph.Requirer // nil for free-standing tasks; parent's Requirer otherwise
}

func newFreeTask(cfg *Config, yml map[string]any) *Task {
	return &Task{cfg: cfg, yml: yml, name: getString(yml, "name")}
}

// newPackageTask builds a task bound to a tool or package. reqs is left nil
// here; the parent's constructor calls bindRequirer right after, since the
// parent type is not known generically at this call site.
func newPackageTask(cfg *Config, parent graph.SubjectID, yml map[string]any) *Task {
	return &Task{cfg: cfg, yml: yml, name: getString(yml, "name"), parent: &parent}
}

func (t *Task) bindRequirer(reqs graph.Requirer) { t.reqs = reqs }

func (t *Task) Name() string {
	if t.parent == nil {
		return t.name
	}
	return t.parent.Name + ":" + t.name
}

// TaskName is the task's bare name within its parent (e.g. "check"),
// distinct from Name() which is qualified for a bound task.
func (t *Task) TaskName() string { return t.name }

func (t *Task) Kind() graph.Kind { return graph.KindTask }

func (t *Task) SubjectID() graph.SubjectID {
	if t.parent == nil {
		return graph.SubjectID{Kind: graph.KindTask, Name: t.name}
	}
	return graph.SubjectID{Kind: graph.KindTask, Name: t.Name(), Parent: t.parent.Name}
}

// Parent returns the owning tool/package's SubjectID, or nil for a
// free-standing task.
func (t *Task) Parent() *graph.SubjectID { return t.parent }

func (t *Task) SourceDeps() []graph.SourceDep {
	if t.reqs != nil {
		return t.reqs.SourceDeps()
	}
	return parseSourceDeps(t.yml)
}

func (t *Task) ToolDeps() []graph.ToolDep {
	if t.reqs != nil {
		return t.reqs.ToolDeps()
	}
	return parseToolDeps(t.yml)
}

func (t *Task) PkgDeps() []string {
	if t.reqs != nil {
		return t.reqs.PkgDeps()
	}
	return parsePkgDeps(t.yml)
}

func (t *Task) TaskDeps() []graph.TaskDep {
	if t.reqs != nil {
		return t.reqs.TaskDeps()
	}
	return parseTaskDeps(t.yml)
}

// Step returns the task's single script step.
func (t *Task) Step() ScriptStep { return newScriptStep(t.yml) }

// ArtifactFile is one declared output of a task, per spec §6's "Task
// artifact declaration".
type ArtifactFile struct {
	Name         string
	Path         string
	Architecture string
}

// ArtifactFiles expands artifact_files[].{name, path, architecture} with
// @var@ substitution (SOURCE_ROOT/BUILD_ROOT/SYSROOT_DIR/OPTION:name only,
// matching RunTask.artifact_files).
func (t *Task) ArtifactFiles() ([]ArtifactFile, error) {
	resolve := func(name string) (string, bool) {
		switch name {
		case "SOURCE_ROOT":
			return t.cfg.SourceRoot, true
		case "BUILD_ROOT":
			return t.cfg.BuildRoot(), true
		case "SYSROOT_DIR":
			return t.cfg.SysrootDir(), true
		}
		if len(name) > 7 && name[:7] == "OPTION:" {
			if v, ok := t.cfg.OptionValue(name[7:]); ok {
				return stringValue(v), true
			}
		}
		return "", false
	}

	var out []ArtifactFile
	for _, raw := range getSlice(t.yml, "artifact_files") {
		m := asMap(raw)
		if m == nil {
			continue
		}
		name := getString(m, "name")
		path, err := ReplaceAtVars(getString(m, "path"), resolve)
		if err != nil {
			return nil, err
		}
		arch, err := ReplaceAtVars(getStringOr(m, "architecture", "x86_64"), resolve)
		if err != nil {
			return nil, err
		}
		out = append(out, ArtifactFile{Name: name, Path: filepath.Join(path, name), Architecture: arch})
	}
	return out, nil
}

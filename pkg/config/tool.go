package config

import (
	"path/filepath"
	"strconv"

	"github.com/crossforge/crossforge/pkg/graph"
	"github.com/crossforge/crossforge/pkg/xerrors"
)

// Tool is a host-side build artifact installed under tools/<name>, split
// into one or more ToolStages.
type Tool struct {
	cfg  *Config
	yml  map[string]any
	name string

	labels         []string
	configureSteps []ScriptStep
	stages         []*ToolStage
	stageByName    map[string]*ToolStage
	tasks          map[string]*Task
}

func newTool(cfg *Config, yml map[string]any) *Tool {
	t := &Tool{
		cfg:         cfg,
		yml:         yml,
		name:        getString(yml, "name"),
		labels:      getStringSlice(yml, "labels"),
		stageByName: make(map[string]*ToolStage),
		tasks:       make(map[string]*Task),
	}

	if stagesRaw := getSlice(yml, "stages"); len(stagesRaw) > 0 {
		for _, raw := range stagesRaw {
			m := asMap(raw)
			if m == nil {
				continue
			}
			st := newToolStage(cfg, t, false, m)
			t.stages = append(t.stages, st)
			t.stageByName[st.StageName()] = st
		}
	} else {
		st := newToolStage(cfg, t, true, yml)
		t.stages = append(t.stages, st)
		t.stageByName[st.StageName()] = st
	}

	for _, raw := range getSlice(yml, "configure") {
		if m := asMap(raw); m != nil {
			t.configureSteps = append(t.configureSteps, newScriptStep(m))
		}
	}

	for _, raw := range getSlice(yml, "tasks") {
		m := asMap(raw)
		if m == nil {
			continue
		}
		task := newPackageTask(cfg, t.SubjectID(), m)
		task.bindRequirer(t)
		t.tasks[task.Name()] = task
	}

	return t
}

func (t *Tool) Name() string             { return t.name }
func (t *Tool) Kind() graph.Kind         { return graph.KindTool }
func (t *Tool) Labels() []string         { return t.labels }
func (t *Tool) SubjectID() graph.SubjectID {
	return graph.SubjectID{Kind: graph.KindTool, Name: t.name}
}

func (t *Tool) SourceDeps() []graph.SourceDep { return parseSourceDeps(t.yml) }
func (t *Tool) ToolDeps() []graph.ToolDep     { return parseToolDeps(t.yml) }
func (t *Tool) PkgDeps() []string             { return parsePkgDeps(t.yml) }
func (t *Tool) TaskDeps() []graph.TaskDep     { return parseTaskDeps(t.yml) }

func (t *Tool) ExportsSharedLibs() bool { return getBoolOr(t.yml, "exports_shared_libs", false) }
func (t *Tool) ExportsAclocal() bool    { return getBoolOr(t.yml, "exports_aclocal", false) }
func (t *Tool) Containerless() bool     { return getBoolOr(t.yml, "containerless", false) }
func (t *Tool) StabilityLevel() string  { return getStringOr(t.yml, "stability_level", "stable") }

func (t *Tool) IsDefault() bool {
	if v, ok := t.yml["default"]; ok {
		b, _ := v.(bool)
		return b
	}
	return t.cfg.EverythingByDefault()
}

// SourceName is the name of the Source this tool builds from: an explicit
// from_source override, a nested source block's own name, or the tool's
// own name.
func (t *Tool) SourceName() string {
	if s := getString(t.yml, "from_source"); s != "" {
		return s
	}
	if src := getMap(t.yml, "source"); src != nil {
		if n := getString(src, "name"); n != "" {
			return n
		}
	}
	return t.name
}

func (t *Tool) BuildSubdir() string { return filepath.Join(t.cfg.ToolBuildSubdir(), t.name) }
func (t *Tool) BuildDir() string    { return filepath.Join(t.cfg.ToolBuildDir(), t.name) }
func (t *Tool) PrefixSubdir() string { return filepath.Join(t.cfg.ToolOutSubdir(), t.name) }
func (t *Tool) PrefixDir() string   { return filepath.Join(t.cfg.ToolOutDir(), t.name) }
func (t *Tool) ArchiveFile() string { return filepath.Join(t.cfg.ToolOutDir(), t.name+".tar.gz") }

// Architecture expands the architecture string (default "x86_64"),
// substituting @OPTION:name@ only, matching xbstrap's HostPackage.architecture.
func (t *Tool) Architecture() (string, error) {
	raw := getStringOr(t.yml, "architecture", "x86_64")
	return ReplaceAtVars(raw, func(name string) (string, bool) {
		if len(name) > 7 && name[:7] == "OPTION:" {
			if v, ok := t.cfg.OptionValue(name[7:]); ok {
				return stringValue(v), true
			}
		}
		return "", false
	})
}

func (t *Tool) ConfigureSteps() []ScriptStep { return t.configureSteps }
func (t *Tool) AllStages() []*ToolStage      { return t.stages }

func (t *Tool) GetStage(name string) (*ToolStage, bool) {
	st, ok := t.stageByName[name]
	return st, ok
}

func (t *Tool) GetTask(name string) (*Task, bool) {
	task, ok := t.tasks[name]
	return task, ok
}

// Version computes this tool's package version: <source version>_<revision>,
// where revision defaults to 1 (or to source's computed version + "_0" when
// neither a revision nor an explicit source version is declared).
func (t *Tool) Version() (string, error) {
	src, ok := t.cfg.Source(t.SourceName())
	if !ok {
		return "", xerrors.NewConfigError("tool %q references unknown source %q", t.name, t.SourceName())
	}
	srcVer, err := src.Version()
	if err != nil {
		return "", err
	}
	if !src.hasExplicitVersion() {
		if _, hasRevision := t.yml["revision"]; !hasRevision {
			return srcVer + "_0", nil
		}
	}
	revision := 1
	if v, ok := t.yml["revision"]; ok {
		switch n := v.(type) {
		case int:
			revision = n
		case int64:
			revision = int(n)
		case uint64:
			revision = int(n)
		}
	}
	if revision < 1 {
		return "", xerrors.NewConfigError("tool %q specifies a revision < 1", t.name)
	}
	return srcVer + "_" + strconv.Itoa(revision), nil
}

// ToolStage is a named phase of a tool's compile+install pair, or the
// tool's single inherited stage when the manifest declares no "stages"
// list.
type ToolStage struct {
	cfg       *Config
	pkg       *Tool
	inherited bool
	yml       map[string]any

	compileSteps []ScriptStep
	installSteps []ScriptStep
}

func newToolStage(cfg *Config, pkg *Tool, inherited bool, yml map[string]any) *ToolStage {
	st := &ToolStage{cfg: cfg, pkg: pkg, inherited: inherited, yml: yml}
	for _, raw := range getSlice(yml, "compile") {
		if m := asMap(raw); m != nil {
			st.compileSteps = append(st.compileSteps, ScriptStep{yml: m, containerless: pkg.Containerless()})
		}
	}
	for _, raw := range getSlice(yml, "install") {
		if m := asMap(raw); m != nil {
			st.installSteps = append(st.installSteps, ScriptStep{yml: m, containerless: pkg.Containerless()})
		}
	}
	return st
}

func (st *ToolStage) Pkg() *Tool { return st.pkg }

// StageName is "" for the tool's single inherited stage, else the
// manifest's stage name.
func (st *ToolStage) StageName() string {
	if st.inherited {
		return ""
	}
	return getString(st.yml, "name")
}

func (st *ToolStage) Kind() graph.Kind { return graph.KindToolStage }

func (st *ToolStage) SubjectID() graph.SubjectID {
	return graph.SubjectID{Kind: graph.KindToolStage, Name: st.pkg.name, Stage: st.StageName()}
}

func (st *ToolStage) SourceDeps() []graph.SourceDep { return parseSourceDeps(st.yml) }
func (st *ToolStage) ToolDeps() []graph.ToolDep     { return parseToolDeps(st.yml) }
func (st *ToolStage) PkgDeps() []string             { return parsePkgDeps(st.yml) }
func (st *ToolStage) TaskDeps() []graph.TaskDep     { return parseTaskDeps(st.yml) }

func (st *ToolStage) Containerless() bool {
	return getBoolOr(st.yml, "containerless", false)
}

func (st *ToolStage) CompileSteps() []ScriptStep { return st.compileSteps }
func (st *ToolStage) InstallSteps() []ScriptStep { return st.installSteps }

package config

import (
	"path/filepath"
	"strconv"

	"github.com/crossforge/crossforge/pkg/graph"
	"github.com/crossforge/crossforge/pkg/xerrors"
)

// Package is a target artifact built into a collect dir, staged, then
// optionally packed and installed into the sysroot.
type Package struct {
	cfg  *Config
	yml  map[string]any
	name string

	labels         []string
	configureSteps []ScriptStep
	buildSteps     []ScriptStep
	tasks          map[string]*Task
}

func newPackage(cfg *Config, yml map[string]any) *Package {
	p := &Package{
		cfg:    cfg,
		yml:    yml,
		name:   getString(yml, "name"),
		labels: getStringSlice(yml, "labels"),
		tasks:  make(map[string]*Task),
	}
	for _, raw := range getSlice(yml, "configure") {
		if m := asMap(raw); m != nil {
			p.configureSteps = append(p.configureSteps, newScriptStep(m))
		}
	}
	for _, raw := range getSlice(yml, "build") {
		if m := asMap(raw); m != nil {
			p.buildSteps = append(p.buildSteps, newScriptStep(m))
		}
	}
	for _, raw := range getSlice(yml, "tasks") {
		m := asMap(raw)
		if m == nil {
			continue
		}
		task := newPackageTask(cfg, p.SubjectID(), m)
		task.bindRequirer(p)
		p.tasks[task.Name()] = task
	}
	return p
}

func (p *Package) Name() string     { return p.name }
func (p *Package) Kind() graph.Kind { return graph.KindPackage }
func (p *Package) Labels() []string { return p.labels }

func (p *Package) SubjectID() graph.SubjectID {
	return graph.SubjectID{Kind: graph.KindPackage, Name: p.name}
}

func (p *Package) SourceDeps() []graph.SourceDep { return parseSourceDeps(p.yml) }
func (p *Package) ToolDeps() []graph.ToolDep     { return parseToolDeps(p.yml) }
func (p *Package) PkgDeps() []string             { return parsePkgDeps(p.yml) }
func (p *Package) TaskDeps() []graph.TaskDep     { return parseTaskDeps(p.yml) }

// SourceName mirrors Tool.SourceName: explicit from_source, nested source
// block's own name, else the package's own name.
func (p *Package) SourceName() string {
	if s := getString(p.yml, "from_source"); s != "" {
		return s
	}
	if src := getMap(p.yml, "source"); src != nil {
		if n := getString(src, "name"); n != "" {
			return n
		}
	}
	return p.name
}

func (p *Package) IsDefault() bool {
	if v, ok := p.yml["default"]; ok {
		b, _ := v.(bool)
		return b
	}
	return p.cfg.EverythingByDefault()
}

func (p *Package) StabilityLevel() string { return getStringOr(p.yml, "stability_level", "stable") }

// IsImplicit mirrors is_implicit: true only when implict_package is set
// (name preserved verbatim from the original manifest key, typo and all).
func (p *Package) IsImplicit() bool { return getBoolOr(p.yml, "implict_package", false) }

func (p *Package) BuildSubdir() string   { return filepath.Join(p.cfg.PkgBuildSubdir(), p.name) }
func (p *Package) BuildDir() string      { return filepath.Join(p.cfg.PkgBuildDir(), p.name) }
func (p *Package) StagingDir() string    { return filepath.Join(p.cfg.PackageOutDir(), p.name) }
func (p *Package) CollectDir() string    { return filepath.Join(p.cfg.PackageOutDir(), p.name+".collect") }
func (p *Package) ArchiveFile() string   { return filepath.Join(p.cfg.PackageOutDir(), p.name+".tar.gz") }

// Architecture expands the architecture string (default "x86_64"),
// substituting @OPTION:name@ only.
func (p *Package) Architecture() (string, error) {
	raw := getStringOr(p.yml, "architecture", "x86_64")
	return ReplaceAtVars(raw, func(name string) (string, bool) {
		if len(name) > 7 && name[:7] == "OPTION:" {
			if v, ok := p.cfg.OptionValue(name[7:]); ok {
				return stringValue(v), true
			}
		}
		return "", false
	})
}

// XbpsRepoArch is the architecture this package's xbps repo entry is filed
// under: its own architecture, or (for noarch packages) the first site
// architecture.
func (p *Package) XbpsRepoArch() (string, error) {
	arch, err := p.Architecture()
	if err != nil {
		return "", err
	}
	if arch != "noarch" {
		return arch, nil
	}
	site := p.cfg.SiteArchitectures()
	if len(site) == 0 {
		return "", xerrors.NewConfigError("package %q is noarch but no site architecture is declared", p.name)
	}
	return site[0], nil
}

func (p *Package) ConfigureSteps() []ScriptStep { return p.configureSteps }
func (p *Package) BuildSteps() []ScriptStep     { return p.buildSteps }

func (p *Package) GetTask(name string) (*Task, bool) {
	task, ok := p.tasks[name]
	return task, ok
}

// Metadata mirrors the packaging metadata (summary, license, website,
// maintainer, categories, replaces) used by pkgbackend.Pack.
type Metadata struct {
	Summary    string
	License    string
	Website    string
	Maintainer string
	Categories []string
	Replaces   []string
}

func (p *Package) Metadata() Metadata {
	return Metadata{
		Summary:    getString(p.yml, "summary"),
		License:    getString(p.yml, "license"),
		Website:    getString(p.yml, "website"),
		Maintainer: getString(p.yml, "maintainer"),
		Categories: getStringSlice(p.yml, "categories"),
		Replaces:   getStringSlice(p.yml, "replaces"),
	}
}

// Version computes this package's version: <source version>_<revision>,
// falling back to "<source version>_0" when neither a revision nor an
// explicit source version is declared.
func (p *Package) Version() (string, error) {
	src, ok := p.cfg.Source(p.SourceName())
	if !ok {
		return "", xerrors.NewConfigError("package %q references unknown source %q", p.name, p.SourceName())
	}
	srcVer, err := src.Version()
	if err != nil {
		return "", err
	}
	if !src.hasExplicitVersion() {
		if _, hasRevision := p.yml["revision"]; !hasRevision {
			return srcVer + "_0", nil
		}
	}
	revision := 1
	if v, ok := p.yml["revision"]; ok {
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
		return "", xerrors.NewConfigError("package %q specifies a revision < 1", p.name)
	}
	return srcVer + "_" + strconv.Itoa(revision), nil
}

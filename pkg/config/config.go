// Package config loads and represents a crossforge manifest tree: the root
// bootstrap.yml plus its imports, a per-checkout bootstrap-site.yml, and an
// optional bootstrap-commits.yml pin file. Manifests are decoded into loose
// map[string]any trees rather than static structs, mirroring xbstrap's
// dict-based self._this_yml representation, since the schema is sparse and
// almost every field is optional with a manifest-declared default.
package config

import "github.com/crossforge/crossforge/pkg/graph"

// Config is the fully resolved manifest: every source, tool, package, and
// free-standing task declared by the root manifest and its imports, plus
// the site/commit overlay files that parameterize them.
type Config struct {
	// SourceRoot is the directory containing every source checkout,
	// typically the directory holding bootstrap.yml.
	SourceRoot string

	buildRootOverride string

	rootYML   map[string]any
	siteYML   map[string]any
	commitYML map[string]any

	options     map[string]OptionDecl
	optionOrder []string
	siteDefines map[string]any

	sources  map[string]*Source
	tools    map[string]*Tool
	packages map[string]*Package
	tasks    map[string]*Task

	sourceOrder  []string
	toolOrder    []string
	packageOrder []string
}

func newConfig() *Config {
	return &Config{
		sources:  make(map[string]*Source),
		tools:    make(map[string]*Tool),
		packages: make(map[string]*Package),
		tasks:    make(map[string]*Task),
	}
}

func (c *Config) Source(name string) (*Source, bool) {
	s, ok := c.sources[name]
	return s, ok
}

func (c *Config) Tool(name string) (*Tool, bool) {
	t, ok := c.tools[name]
	return t, ok
}

func (c *Config) Package(name string) (*Package, bool) {
	p, ok := c.packages[name]
	return p, ok
}

// FreeTask looks up a root-level (not package- or tool-bound) task.
func (c *Config) FreeTask(name string) (*Task, bool) {
	t, ok := c.tasks[name]
	return t, ok
}

// AllSources returns every declared source, in manifest declaration order.
func (c *Config) AllSources() []*Source {
	out := make([]*Source, 0, len(c.sourceOrder))
	for _, n := range c.sourceOrder {
		out = append(out, c.sources[n])
	}
	return out
}

// AllTools returns every tool whose labels pass CheckLabels, in manifest
// declaration order.
func (c *Config) AllTools() []*Tool {
	var out []*Tool
	for _, n := range c.toolOrder {
		t := c.tools[n]
		if c.CheckLabels(t.Labels()) {
			out = append(out, t)
		}
	}
	return out
}

// AllPackages returns every package whose labels pass CheckLabels, in
// manifest declaration order.
func (c *Config) AllPackages() []*Package {
	var out []*Package
	for _, n := range c.packageOrder {
		p := c.packages[n]
		if c.CheckLabels(p.Labels()) {
			out = append(out, p)
		}
	}
	return out
}

// The remaining methods satisfy graph.Lookup, letting pkg/graph resolve
// dependency edges without importing pkg/config back.

func (c *Config) lookupSource(name string) (graph.Requirer, bool) {
	s, ok := c.sources[name]
	if !ok {
		return nil, false
	}
	return s, true
}

func (c *Config) lookupToolStages(toolName string) []graph.Requirer {
	t, ok := c.tools[toolName]
	if !ok {
		return nil
	}
	out := make([]graph.Requirer, 0, len(t.stages))
	for _, st := range t.stages {
		out = append(out, st)
	}
	return out
}

func (c *Config) lookupToolStage(toolName, stageName string) (graph.Requirer, bool) {
	t, ok := c.tools[toolName]
	if !ok {
		return nil, false
	}
	st, ok := t.GetStage(stageName)
	if !ok {
		return nil, false
	}
	return st, true
}

// AsLookup adapts this Config to graph.Lookup.
func (c *Config) AsLookup() graph.Lookup { return lookupAdapter{c} }

type lookupAdapter struct{ c *Config }

func (l lookupAdapter) Source(name string) (graph.Requirer, bool) { return l.c.lookupSource(name) }
func (l lookupAdapter) ToolStages(toolName string) []graph.Requirer {
	return l.c.lookupToolStages(toolName)
}
func (l lookupAdapter) ToolStage(toolName, stageName string) (graph.Requirer, bool) {
	return l.c.lookupToolStage(toolName, stageName)
}

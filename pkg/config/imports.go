package config

import "github.com/crossforge/crossforge/pkg/xerrors"

// importFilter restricts which named entries of an imported file are kept.
// A nil slice means "keep everything" (the "all_<kind>" form); an empty,
// non-nil slice means "keep nothing" (the kind was not mentioned at all).
type importFilter struct {
	sources, tools, packages, tasks []string
}

func filterAllows(filter []string, name string) bool {
	if filter == nil {
		return true
	}
	for _, n := range filter {
		if n == name {
			return true
		}
	}
	return false
}

// parseTree walks current_yml (already loaded from disk), merging its
// sources/tools/packages/tasks into cfg, then recurses into its "imports"
// list. Nested imports (an imported file itself declaring "imports") are
// rejected: only the root manifest may import.
func (c *Config) parseTree(loader func(path string) (map[string]any, error), currentPath string, currentYML map[string]any, isRoot bool, filter importFilter) error {
	if raw, ok := currentYML["imports"]; ok {
		imports, _ := raw.([]any)
		if imports != nil && !isRoot {
			return xerrors.NewConfigError("nested imports are not supported (in %s)", currentPath)
		}
		for _, rawDef := range imports {
			def := asMap(rawDef)
			if def == nil {
				continue
			}
			_, hasFrom := def["from"]
			_, hasFile := def["file"]
			if hasFrom == hasFile {
				return xerrors.NewConfigErrorIn(currentPath, "import entry must set exactly one of from/file")
			}

			if hasFrom {
				importPath := joinRelative(currentPath, getString(def, "from"))
				importYML, err := loader(importPath)
				if err != nil {
					return err
				}
				sub := importFilter{
					sources:  importKindFilter(def, "sources"),
					tools:    importKindFilter(def, "tools"),
					packages: importKindFilter(def, "packages"),
					tasks:    importKindFilter(def, "tasks"),
				}
				if err := c.parseTree(loader, importPath, importYML, false, sub); err != nil {
					return err
				}
			} else {
				importPath := joinRelative(currentPath, getString(def, "file"))
				importYML, err := loader(importPath)
				if err != nil {
					return err
				}
				if err := c.parseTree(loader, importPath, importYML, false, importFilter{}); err != nil {
					return err
				}
			}
		}
	}

	if err := c.mergeSources(currentYML, filter.sources); err != nil {
		return err
	}
	if err := c.mergeTools(currentYML, filter.tools); err != nil {
		return err
	}
	if err := c.mergePackages(currentYML, filter.packages); err != nil {
		return err
	}
	if err := c.mergeTasks(currentYML, filter.tasks); err != nil {
		return err
	}
	return nil
}

// importKindFilter reads the "all_<kind>"/"<kind>" pair for one of the four
// subject kinds out of an import entry: "all_X" present means keep
// everything (nil filter); "X" present means keep only those names;
// neither present means keep nothing (empty, non-nil filter).
func importKindFilter(def map[string]any, kind string) []string {
	if _, ok := def["all_"+kind]; ok {
		return nil
	}
	if _, ok := def[kind]; ok {
		return getStringSlice(def, kind)
	}
	return []string{}
}

func (c *Config) mergeSources(yml map[string]any, filter []string) error {
	for _, raw := range getSlice(yml, "sources") {
		m := asMap(raw)
		if m == nil {
			continue
		}
		src := newSource(c, "", m)
		if !filterAllows(filter, src.Name()) {
			continue
		}
		if _, dup := c.sources[src.Name()]; dup {
			return xerrors.NewConfigError("duplicate source %q", src.Name())
		}
		c.sources[src.Name()] = src
		c.sourceOrder = append(c.sourceOrder, src.Name())
	}
	return nil
}

func (c *Config) mergeTools(yml map[string]any, filter []string) error {
	for _, raw := range getSlice(yml, "tools") {
		m := asMap(raw)
		if m == nil {
			continue
		}
		if srcYML := getMap(m, "source"); srcYML != nil {
			src := newSource(c, getString(m, "name"), srcYML)
			if _, dup := c.sources[src.Name()]; dup {
				return xerrors.NewConfigError("duplicate source %q", src.Name())
			}
			c.sources[src.Name()] = src
			c.sourceOrder = append(c.sourceOrder, src.Name())
		}
		t := newTool(c, m)
		if !filterAllows(filter, t.Name()) {
			continue
		}
		c.tools[t.Name()] = t
		c.toolOrder = append(c.toolOrder, t.Name())
	}
	return nil
}

func (c *Config) mergePackages(yml map[string]any, filter []string) error {
	for _, raw := range getSlice(yml, "packages") {
		m := asMap(raw)
		if m == nil {
			continue
		}
		if srcYML := getMap(m, "source"); srcYML != nil {
			src := newSource(c, getString(m, "name"), srcYML)
			if _, dup := c.sources[src.Name()]; dup {
				return xerrors.NewConfigError("duplicate source %q", src.Name())
			}
			c.sources[src.Name()] = src
			c.sourceOrder = append(c.sourceOrder, src.Name())
		}
		p := newPackage(c, m)
		if !filterAllows(filter, p.Name()) {
			continue
		}
		c.packages[p.Name()] = p
		c.packageOrder = append(c.packageOrder, p.Name())
	}
	return nil
}

func (c *Config) mergeTasks(yml map[string]any, filter []string) error {
	for _, raw := range getSlice(yml, "tasks") {
		m := asMap(raw)
		if m == nil {
			continue
		}
		if getString(m, "name") == "" {
			return xerrors.NewConfigError("task without a name")
		}
		task := newFreeTask(c, m)
		if !filterAllows(filter, task.Name()) {
			continue
		}
		c.tasks[task.Name()] = task
	}
	return nil
}

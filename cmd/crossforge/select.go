package main

import (
	"github.com/crossforge/crossforge/pkg/config"
	"github.com/crossforge/crossforge/pkg/xerrors"
)

// selectTools resolves --all or an explicit name list into *config.Tool
// values, mirroring xbstrap's select_tools.
func selectTools(cfg *config.Config, all bool, names []string) ([]*config.Tool, error) {
	if all {
		var sel []*config.Tool
		for _, t := range cfg.AllTools() {
			if t.IsDefault() {
				sel = append(sel, t)
			}
		}
		return sel, nil
	}
	sel := make([]*config.Tool, 0, len(names))
	for _, name := range names {
		t, ok := cfg.Tool(name)
		if !ok {
			return nil, xerrors.NewConfigError("unknown tool %q", name)
		}
		sel = append(sel, t)
	}
	return sel, nil
}

// selectPkgs resolves --all or an explicit name list into *config.Package
// values, mirroring xbstrap's select_pkgs.
func selectPkgs(cfg *config.Config, all bool, names []string) ([]*config.Package, error) {
	if all {
		var sel []*config.Package
		for _, p := range cfg.AllPackages() {
			if p.IsDefault() {
				sel = append(sel, p)
			}
		}
		return sel, nil
	}
	sel := make([]*config.Package, 0, len(names))
	for _, name := range names {
		p, ok := cfg.Package(name)
		if !ok {
			return nil, xerrors.NewConfigError("unknown package %q", name)
		}
		sel = append(sel, p)
	}
	return sel, nil
}

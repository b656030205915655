package config

// OptionDecl is one entry of the root manifest's declare_options list.
type OptionDecl struct {
	Name    string
	Default any
}

// OptionValue returns the effective value of a declared option: the site
// file's define_options override if present, else the manifest's default.
// The bool result is false when no option with that name was declared.
func (c *Config) OptionValue(name string) (any, bool) {
	decl, ok := c.options[name]
	if !ok {
		return nil, false
	}
	if v, ok := c.siteDefines[name]; ok {
		return v, true
	}
	return decl.Default, true
}

// AllOptionNames returns every declared option name, in manifest order.
func (c *Config) AllOptionNames() []string {
	names := make([]string, len(c.optionOrder))
	copy(names, c.optionOrder)
	return names
}

func (c *Config) loadOptions(rootYML map[string]any) {
	c.options = make(map[string]OptionDecl)
	for _, raw := range getSlice(rootYML, "declare_options") {
		m := asMap(raw)
		if m == nil {
			continue
		}
		name := getString(m, "name")
		decl := OptionDecl{Name: name, Default: m["default"]}
		c.options[name] = decl
		c.optionOrder = append(c.optionOrder, name)
	}
	c.siteDefines = getMap(c.siteYML, "define_options")
}

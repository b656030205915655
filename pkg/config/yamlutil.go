package config

// yamlutil.go holds small helpers for digging typed values out of the loose
// map[string]any trees goccy/go-yaml decodes manifests into. The config
// model mirrors xbstrap's own treatment of parsed YAML as nested
// dictionaries rather than promoting every field to a static struct.

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}

func getString(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

func getStringOr(m map[string]any, key, def string) string {
	if m == nil {
		return def
	}
	v, ok := m[key]
	if !ok {
		return def
	}
	s, ok := v.(string)
	if !ok {
		return def
	}
	return s
}

func getBoolOr(m map[string]any, key string, def bool) bool {
	if m == nil {
		return def
	}
	v, ok := m[key]
	if !ok {
		return def
	}
	b, ok := v.(bool)
	if !ok {
		return def
	}
	return b
}

func getMap(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}
	return asMap(m[key])
}

func getSlice(m map[string]any, key string) []any {
	if m == nil {
		return nil
	}
	return asSlice(m[key])
}

func getStringSlice(m map[string]any, key string) []string {
	items := getSlice(m, key)
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// stringValue coerces a YAML scalar (string, int, float64, bool) to its
// string form, used for option defaults/overrides that may be quoted or
// bare in the manifest.
func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	default:
		return toStringFallback(t)
	}
}

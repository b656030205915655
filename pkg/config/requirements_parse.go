package config

import "github.com/crossforge/crossforge/pkg/graph"

// parseSourceDeps turns a sources_required list (each entry either a plain
// string or {name, recursive}) into graph.SourceDep values.
func parseSourceDeps(yml map[string]any) []graph.SourceDep {
	var out []graph.SourceDep
	for _, raw := range getSlice(yml, "sources_required") {
		switch v := raw.(type) {
		case string:
			out = append(out, graph.SourceDep{Name: v})
		case map[string]any:
			out = append(out, graph.SourceDep{
				Name:      getString(v, "name"),
				Recursive: getBoolOr(v, "recursive", false),
			})
		}
	}
	return out
}

// parseToolDeps turns a tools_required list into graph.ToolDep values.
func parseToolDeps(yml map[string]any) []graph.ToolDep {
	var out []graph.ToolDep
	for _, raw := range getSlice(yml, "tools_required") {
		switch v := raw.(type) {
		case string:
			out = append(out, graph.ToolDep{Tool: v, Expose: true})
		case map[string]any:
			if kind, ok := v["virtual"].(string); ok {
				out = append(out, graph.ToolDep{Virtual: true, VirtualKind: kind})
				continue
			}
			out = append(out, graph.ToolDep{
				Tool:              getString(v, "tool"),
				StageDependencies: getStringSlice(v, "stage_dependencies"),
				Recursive:         getBoolOr(v, "recursive", false),
				Expose:            getBoolOr(v, "expose", true),
			})
		}
	}
	return out
}

// parsePkgDeps turns a pkgs_required list (flat, no recursion) into names.
func parsePkgDeps(yml map[string]any) []string {
	return getStringSlice(yml, "pkgs_required")
}

// parseTaskDeps turns a tasks_required list into graph.TaskDep values,
// including order_only entries (callers split real-vs-ordering via
// TaskDep.OrderOnly).
func parseTaskDeps(yml map[string]any) []graph.TaskDep {
	var out []graph.TaskDep
	for _, raw := range getSlice(yml, "tasks_required") {
		switch v := raw.(type) {
		case string:
			out = append(out, graph.TaskDep{Task: v})
		case map[string]any:
			out = append(out, graph.TaskDep{
				Task:      getString(v, "task"),
				OrderOnly: getBoolOr(v, "order_only", false),
			})
		}
	}
	return out
}

package step

import "github.com/crossforge/crossforge/pkg/config"

// ToolClosure computes the transitive tool closure of a root tool-name
// set: every root, plus every tool reachable by following only the
// recursive entries of each tool's own tools_required (spec §4.5 step 1
// — "BFS over tool-required-with-recursive from tool_set, deduplicated").
// Non-recursive dependencies of a tool are not expanded further: the root
// set already names every tool a subject directly requires, so the BFS
// only exists to pull in a recursive tool's own re-exported dependencies.
func ToolClosure(cfg *config.Config, roots []string) []*config.Tool {
	visited := make(map[string]bool)
	var result []*config.Tool
	queue := append([]string(nil), roots...)

	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if visited[name] {
			continue
		}
		visited[name] = true

		tool, ok := cfg.Tool(name)
		if !ok {
			continue
		}
		result = append(result, tool)

		for _, d := range tool.ToolDeps() {
			if d.Virtual || !d.Recursive {
				continue
			}
			queue = append(queue, d.Tool)
		}
	}
	return result
}

// ToolRefs converts a resolved tool closure into manifest ToolRef entries.
func ToolRefs(tools []*config.Tool) []ToolRef {
	out := make([]ToolRef, 0, len(tools))
	for _, t := range tools {
		out = append(out, ToolRef{
			Name:              t.Name(),
			PrefixDir:         t.PrefixDir(),
			ExportsSharedLibs: t.ExportsSharedLibs(),
			ExportsAclocal:    t.ExportsAclocal(),
		})
	}
	return out
}

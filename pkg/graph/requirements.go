package graph

// SourceDep is one entry of a subject's sources_required list.
type SourceDep struct {
	Name      string
	Recursive bool
}

// ToolDep is one entry of a subject's tools_required list.
type ToolDep struct {
	Tool              string
	StageDependencies []string // nil means "all stages of Tool"
	Virtual           bool
	VirtualKind       string // e.g. "pkgconfig-for-host"; only set when Virtual
	Recursive         bool
	Expose            bool // default true; only meaningful for resolve_tool_deps(exposed_only)
}

// TaskDep is one entry of a subject's tasks_required list.
type TaskDep struct {
	Task      string
	OrderOnly bool
}

// Requirer is implemented by every config entity that can declare
// dependencies: Source, Tool, ToolStage, Package, Task.
type Requirer interface {
	Subject
	SourceDeps() []SourceDep
	ToolDeps() []ToolDep
	PkgDeps() []string
	TaskDeps() []TaskDep
}

// Lookup resolves dependency names into Requirers during graph traversal.
// config.Config implements this interface.
type Lookup interface {
	Source(name string) (Requirer, bool)
	ToolStages(toolName string) []Requirer
	ToolStage(toolName, stageName string) (Requirer, bool)
}

// ResolveSourceDeps returns the transitive closure of source_dependencies:
// direct entries always count, and an entry's own sources_required are
// visited further only when that entry was itself marked recursive.
func ResolveSourceDeps(r Requirer, lookup Lookup) []string {
	seen := make(map[string]bool)
	var order []string
	var visit func(deps []SourceDep)
	visit = func(deps []SourceDep) {
		for _, d := range deps {
			if seen[d.Name] {
				continue
			}
			seen[d.Name] = true
			order = append(order, d.Name)
			if !d.Recursive {
				continue
			}
			if src, ok := lookup.Source(d.Name); ok {
				visit(src.SourceDeps())
			}
		}
	}
	visit(r.SourceDeps())
	return order
}

// ResolveToolStageDependencies returns the transitive closure of tool-stage
// requirements: a non-recursive entry contributes stages but does not
// transit into that tool's own requirements; a recursive entry does.
func ResolveToolStageDependencies(r Requirer, lookup Lookup) []SubjectID {
	seen := make(map[SubjectID]bool)
	var order []SubjectID

	var visitDep func(d ToolDep)
	visitDep = func(d ToolDep) {
		if d.Virtual {
			return
		}
		var stages []Requirer
		if len(d.StageDependencies) > 0 {
			for _, stageName := range d.StageDependencies {
				if st, ok := lookup.ToolStage(d.Tool, stageName); ok {
					stages = append(stages, st)
				}
			}
		} else {
			stages = lookup.ToolStages(d.Tool)
		}
		for _, st := range stages {
			id := st.SubjectID()
			if seen[id] {
				continue
			}
			seen[id] = true
			order = append(order, id)
			if d.Recursive {
				for _, nested := range st.ToolDeps() {
					visitDep(nested)
				}
			}
		}
	}

	for _, d := range r.ToolDeps() {
		visitDep(d)
	}
	return order
}

// ResolveToolDeps returns the set of tool-level SubjectIDs a subject
// depends on, descending into recursive entries. When exposedOnly is set,
// only entries with Expose=true are included in the result (but recursive
// descent still happens regardless of Expose, matching resolve_tool_deps).
func ResolveToolDeps(r Requirer, lookup Lookup, exposedOnly bool) []SubjectID {
	visitedTools := make(map[string]bool)
	resultSeen := make(map[SubjectID]bool)
	var result []SubjectID

	var visit func(req Requirer)
	visit = func(req Requirer) {
		for _, d := range req.ToolDeps() {
			if d.Virtual {
				continue
			}
			stages := lookup.ToolStages(d.Tool)
			if len(stages) == 0 {
				continue
			}
			toolID := SubjectID{Kind: KindTool, Name: d.Tool}
			if !exposedOnly || d.Expose {
				if !resultSeen[toolID] {
					resultSeen[toolID] = true
					result = append(result, toolID)
				}
			}
			if !d.Recursive || visitedTools[d.Tool] {
				continue
			}
			visitedTools[d.Tool] = true
			for _, st := range stages {
				visit(st)
			}
		}
	}
	visit(r)
	return result
}

// VirtualToolDeps returns the tools_required entries that are virtual
// (pkgconfig-for-host / pkgconfig-for-target shims), in declaration order.
func VirtualToolDeps(r Requirer) []ToolDep {
	var out []ToolDep
	for _, d := range r.ToolDeps() {
		if d.Virtual {
			out = append(out, d)
		}
	}
	return out
}

// TraverseGraph performs the generic DFS traversal named in spec §9's design
// notes (traverse_graph): every root is visited at most once, "visit"
// returns the neighbors to push next, identified by "key".
func TraverseGraph[T any](roots []T, key func(T) string, visit func(T) []T) {
	seen := make(map[string]bool)
	var stack []T
	for _, r := range roots {
		k := key(r)
		if seen[k] {
			continue
		}
		seen[k] = true
		stack = append(stack, r)
	}
	for len(stack) > 0 {
		n := len(stack) - 1
		cur := stack[n]
		stack = stack[:n]
		for _, nb := range visit(cur) {
			k := key(nb)
			if seen[k] {
				continue
			}
			seen[k] = true
			stack = append(stack, nb)
		}
	}
}

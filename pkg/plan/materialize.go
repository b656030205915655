package plan

import (
	"github.com/crossforge/crossforge/pkg/config"
	"github.com/crossforge/crossforge/pkg/graph"
	"github.com/crossforge/crossforge/pkg/xerrors"
)

// Scope decides whether a tool or package is in build_scope. Outside it,
// tool-stage/package requirements are replaced with PULL_* or WANT_*
// sentinels instead of a real build edge (spec §4.4.1).
type Scope interface {
	InScope(id graph.SubjectID) bool
}

// AllInScope is the trivial Scope used when no restriction is configured:
// every subject is in scope.
type AllInScope struct{}

func (AllInScope) InScope(graph.SubjectID) bool { return true }

// MaterializeOptions configures edge generation for subjects whose
// requirements are satisfied differently depending on deployment policy.
type MaterializeOptions struct {
	Scope             Scope
	PullOutOfScope    bool // replace out-of-scope WANT_* with PULL_* sentinels
	UsePackageBackend bool // INSTALL_PKG build-edges PACK_PKG instead of BUILD_PKG directly
}

// Materialize computes every (action, subject) pair reachable from roots
// via build/require edges, mirroring xbstrap's _do_materialization: a
// worklist DFS that visits each key exactly once.
func Materialize(cfg *config.Config, roots []Key, opts MaterializeOptions) (map[Key]*Item, error) {
	if opts.Scope == nil {
		opts.Scope = AllInScope{}
	}
	items := make(map[Key]*Item)
	visited := make(map[Key]bool)
	var stack []Key

	push := func(k Key) {
		if visited[k] {
			return
		}
		visited[k] = true
		stack = append(stack, k)
	}
	for _, r := range roots {
		push(r)
	}

	for len(stack) > 0 {
		k := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		item, err := materializeItem(cfg, k, opts)
		if err != nil {
			return nil, err
		}
		items[k] = item

		for _, e := range item.BuildEdges {
			push(e)
		}
		for _, e := range item.RequireEdges {
			push(e)
		}
	}
	return items, nil
}

func materializeItem(cfg *config.Config, k Key, opts MaterializeOptions) (*Item, error) {
	item := &Item{Key: k}
	lookup := cfg.AsLookup()

	addSourceDeps := func(r graph.Requirer) {
		for _, name := range graph.ResolveSourceDeps(r, lookup) {
			item.RequireEdges = append(item.RequireEdges, Key{Action: PatchSrc, Subject: graph.SubjectID{Kind: graph.KindSource, Name: name}})
		}
	}

	addToolDeps := func(r graph.Requirer) {
		for _, stageID := range graph.ResolveToolStageDependencies(r, lookup) {
			toolID := graph.SubjectID{Kind: graph.KindTool, Name: stageID.Name}
			if !opts.Scope.InScope(toolID) {
				if opts.PullOutOfScope {
					item.RequireEdges = append(item.RequireEdges, Key{Action: PullArchive, Subject: toolID})
				} else {
					item.RequireEdges = append(item.RequireEdges, Key{Action: WantTool, Subject: toolID})
				}
				continue
			}
			item.RequireEdges = append(item.RequireEdges, Key{Action: InstallToolStage, Subject: stageID})
		}
	}

	addPkgDeps := func(r graph.Requirer) {
		for _, name := range r.PkgDeps() {
			item.RequireEdges = append(item.RequireEdges, Key{
				Action:          InstallPkg,
				Subject:         graph.SubjectID{Kind: graph.KindPackage, Name: name},
				TargetSysrootID: k.TargetSysrootID,
			})
		}
	}

	addImplicitPkgs := func(selfIsImplicit bool) {
		if selfIsImplicit {
			return
		}
		for _, pkg := range cfg.AllPackages() {
			if !pkg.IsImplicit() {
				continue
			}
			item.RequireEdges = append(item.RequireEdges, Key{
				Action:          InstallPkg,
				Subject:         graph.SubjectID{Kind: graph.KindPackage, Name: pkg.Name()},
				TargetSysrootID: k.TargetSysrootID,
			})
		}
	}

	addTaskDeps := func(r graph.Requirer) {
		for _, d := range r.TaskDeps() {
			target := Key{Action: Run, Subject: graph.SubjectID{Kind: graph.KindTask, Name: d.Task}}
			if d.OrderOnly {
				item.OrderBefore = append(item.OrderBefore, target)
			} else {
				item.RequireEdges = append(item.RequireEdges, target)
			}
		}
	}

	switch k.Action {
	case FetchSrc:
		// no dependencies

	case CheckoutSrc:
		item.BuildEdges = append(item.BuildEdges, Key{Action: FetchSrc, Subject: k.Subject})

	case PatchSrc:
		item.BuildEdges = append(item.BuildEdges, Key{Action: CheckoutSrc, Subject: k.Subject})

	case RegenerateSrc:
		src, ok := cfg.Source(k.Subject.Name)
		if !ok {
			return nil, xerrors.NewPlanError("regenerate_src: unknown source %q", k.Subject.Name)
		}
		item.BuildEdges = append(item.BuildEdges, Key{Action: PatchSrc, Subject: k.Subject})
		addSourceDeps(src)
		addToolDeps(src)

	case ConfigureTool:
		tool, ok := cfg.Tool(k.Subject.Name)
		if !ok {
			return nil, xerrors.NewPlanError("configure_tool: unknown tool %q", k.Subject.Name)
		}
		item.BuildEdges = append(item.BuildEdges, Key{Action: RegenerateSrc, Subject: graph.SubjectID{Kind: graph.KindSource, Name: tool.SourceName()}})
		addSourceDeps(tool)
		addToolDeps(tool)
		addPkgDeps(tool)
		addTaskDeps(tool)

	case CompileToolStage:
		tool, stage, err := resolveStage(cfg, k.Subject)
		if err != nil {
			return nil, err
		}
		item.BuildEdges = append(item.BuildEdges, Key{Action: ConfigureTool, Subject: tool.SubjectID()})
		addSourceDeps(stage)
		addToolDeps(tool)
		addToolDeps(stage)
		addPkgDeps(stage)
		addTaskDeps(stage)

	case InstallToolStage:
		tool, stage, err := resolveStage(cfg, k.Subject)
		if err != nil {
			return nil, err
		}
		item.BuildEdges = append(item.BuildEdges, Key{Action: CompileToolStage, Subject: k.Subject})
		addToolDeps(tool)
		addToolDeps(stage)
		addPkgDeps(stage)
		addTaskDeps(stage)

	case ConfigurePkg:
		pkg, ok := cfg.Package(k.Subject.Name)
		if !ok {
			return nil, xerrors.NewPlanError("configure_pkg: unknown package %q", k.Subject.Name)
		}
		item.BuildEdges = append(item.BuildEdges, Key{Action: RegenerateSrc, Subject: graph.SubjectID{Kind: graph.KindSource, Name: pkg.SourceName()}})
		addSourceDeps(pkg)
		addImplicitPkgs(pkg.IsImplicit())
		addPkgDeps(pkg)
		addToolDeps(pkg)
		addTaskDeps(pkg)

	case BuildPkg, ReproduceBuildPkg:
		pkg, ok := cfg.Package(k.Subject.Name)
		if !ok {
			return nil, xerrors.NewPlanError("build_pkg: unknown package %q", k.Subject.Name)
		}
		item.BuildEdges = append(item.BuildEdges, Key{Action: ConfigurePkg, Subject: k.Subject})
		addSourceDeps(pkg)
		addImplicitPkgs(pkg.IsImplicit())
		addPkgDeps(pkg)
		addToolDeps(pkg)
		addTaskDeps(pkg)

	case PackPkg, ReproducePackPkg:
		item.BuildEdges = append(item.BuildEdges, Key{Action: BuildPkg, Subject: k.Subject})

	case InstallPkg:
		pkg, ok := cfg.Package(k.Subject.Name)
		if !ok {
			return nil, xerrors.NewPlanError("install_pkg: unknown package %q", k.Subject.Name)
		}
		if !opts.Scope.InScope(k.Subject) {
			if opts.PullOutOfScope {
				item.BuildEdges = append(item.BuildEdges, Key{Action: PullPkgPack, Subject: k.Subject})
			} else {
				item.BuildEdges = append(item.BuildEdges, Key{Action: WantPkg, Subject: k.Subject})
			}
		} else if opts.UsePackageBackend {
			item.BuildEdges = append(item.BuildEdges, Key{Action: PackPkg, Subject: k.Subject})
		} else {
			item.BuildEdges = append(item.BuildEdges, Key{Action: BuildPkg, Subject: k.Subject})
		}
		addImplicitPkgs(pkg.IsImplicit())
		addPkgDeps(pkg)

	case ArchiveTool:
		tool, ok := cfg.Tool(k.Subject.Name)
		if !ok {
			return nil, xerrors.NewPlanError("archive_tool: unknown tool %q", k.Subject.Name)
		}
		for _, st := range tool.AllStages() {
			item.BuildEdges = append(item.BuildEdges, Key{Action: InstallToolStage, Subject: st.SubjectID()})
		}

	case ArchivePkg:
		item.BuildEdges = append(item.BuildEdges, Key{Action: BuildPkg, Subject: k.Subject})

	case PullPkgPack, PullArchive, WantTool, WantPkg, MirrorSrc:
		// sentinels/leaves: no dependencies

	case Run:
		task, err := resolveTask(cfg, k.Subject)
		if err != nil {
			return nil, err
		}
		addSourceDeps(task)
		addImplicitPkgs(false)
		addPkgDeps(task)
		addToolDeps(task)
		addTaskDeps(task)

	case RunPkg:
		task, err := resolveTask(cfg, k.Subject)
		if err != nil {
			return nil, err
		}
		pkg, ok := cfg.Package(k.Subject.Parent)
		if !ok {
			return nil, xerrors.NewPlanError("run_pkg: unknown package %q", k.Subject.Parent)
		}
		item.BuildEdges = append(item.BuildEdges, Key{Action: BuildPkg, Subject: pkg.SubjectID()})
		addImplicitPkgs(false)
		addPkgDeps(task)
		addToolDeps(task)
		addTaskDeps(task)

	case RunTool:
		task, err := resolveTask(cfg, k.Subject)
		if err != nil {
			return nil, err
		}
		tool, ok := cfg.Tool(k.Subject.Parent)
		if !ok {
			return nil, xerrors.NewPlanError("run_tool: unknown tool %q", k.Subject.Parent)
		}
		for _, st := range tool.AllStages() {
			item.BuildEdges = append(item.BuildEdges, Key{Action: CompileToolStage, Subject: st.SubjectID()})
		}
		addToolDeps(tool)
		addToolDeps(task)
		addPkgDeps(task)
		addTaskDeps(task)

	default:
		return nil, xerrors.NewPlanError("materialize: unhandled action %q", k.Action)
	}

	return item, nil
}

func resolveStage(cfg *config.Config, id graph.SubjectID) (*config.Tool, *config.ToolStage, error) {
	tool, ok := cfg.Tool(id.Name)
	if !ok {
		return nil, nil, xerrors.NewPlanError("unknown tool %q", id.Name)
	}
	stage, ok := tool.GetStage(id.Stage)
	if !ok {
		return nil, nil, xerrors.NewPlanError("tool %q has no stage %q", id.Name, id.Stage)
	}
	return tool, stage, nil
}

// resolveTask finds the Task a Run/RunPkg/RunTool subject refers to: a
// free task when Parent is empty, else a package- or tool-bound task keyed
// by its qualified name under that parent.
func resolveTask(cfg *config.Config, id graph.SubjectID) (*config.Task, error) {
	if id.Parent == "" {
		t, ok := cfg.FreeTask(id.Name)
		if !ok {
			return nil, xerrors.NewPlanError("unknown task %q", id.Name)
		}
		return t, nil
	}
	if tool, ok := cfg.Tool(id.Parent); ok {
		if t, ok := tool.GetTask(id.Name); ok {
			return t, nil
		}
	}
	if pkg, ok := cfg.Package(id.Parent); ok {
		if t, ok := pkg.GetTask(id.Name); ok {
			return t, nil
		}
	}
	return nil, xerrors.NewPlanError("unknown task %q under %q", id.Name, id.Parent)
}

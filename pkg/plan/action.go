// Package plan materializes the subject graph into an ordered, selectively
// activated set of build steps: the PlanKey/PlanItem model, deterministic
// topological ordering, and the activation algorithm (build span, update
// propagation, auto-scope) described by the orchestrator's plan engine.
package plan

// Action is one of the fixed operations the engine can schedule against a
// subject. Unlike the subject kinds, the action set is closed: every value
// is named here, and materialize.go's edge table switches over all of them.
type Action string

const (
	FetchSrc      Action = "FETCH_SRC"
	CheckoutSrc   Action = "CHECKOUT_SRC"
	PatchSrc      Action = "PATCH_SRC"
	RegenerateSrc Action = "REGENERATE_SRC"

	ConfigureTool     Action = "CONFIGURE_TOOL"
	CompileToolStage  Action = "COMPILE_TOOL_STAGE"
	InstallToolStage  Action = "INSTALL_TOOL_STAGE"
	ArchiveTool       Action = "ARCHIVE_TOOL"
	PullArchive       Action = "PULL_ARCHIVE"
	WantTool          Action = "WANT_TOOL"

	ConfigurePkg       Action = "CONFIGURE_PKG"
	BuildPkg           Action = "BUILD_PKG"
	ReproduceBuildPkg  Action = "REPRODUCE_BUILD_PKG"
	PackPkg            Action = "PACK_PKG"
	ReproducePackPkg   Action = "REPRODUCE_PACK_PKG"
	InstallPkg         Action = "INSTALL_PKG"
	ArchivePkg         Action = "ARCHIVE_PKG"
	PullPkgPack        Action = "PULL_PKG_PACK"
	WantPkg            Action = "WANT_PKG"

	Run     Action = "RUN"
	RunPkg  Action = "RUN_PKG"
	RunTool Action = "RUN_TOOL"

	MirrorSrc Action = "MIRROR_SRC"
)

// nonIdempotent lists the actions whose success state cannot be observed on
// disk (a marker file, a VCS ref, a package-backend query), so they re-run
// every time they are activated.
var nonIdempotent = map[Action]bool{
	Run:               true,
	RunPkg:            true,
	RunTool:           true,
	ReproduceBuildPkg: true,
	ReproducePackPkg:  true,
	ArchivePkg:        true,
	PullArchive:       true,
}

// IsIdempotent reports whether probe() can meaningfully report this
// action's subject as already done. Actions without durable idempotence
// (RUN*, REPRODUCE_*, ARCHIVE_PKG, PULL_ARCHIVE) always report missing=true
// so they re-run whenever activated.
func (a Action) IsIdempotent() bool { return !nonIdempotent[a] }

// priority orders actions within the same subject for the deterministic
// sort key (§4.4.2): WANT_*/PULL_PKG_PACK sort early, INSTALL_PKG sorts
// late, everything else falls in pipeline order.
var priority = map[Action]int{
	WantTool:    0,
	WantPkg:     0,
	PullPkgPack: 1,

	FetchSrc:      10,
	CheckoutSrc:   11,
	PatchSrc:      12,
	RegenerateSrc: 13,

	ConfigureTool:      20,
	CompileToolStage:   21,
	InstallToolStage:   22,
	ArchiveTool:        23,
	PullArchive:        24,

	ConfigurePkg:      30,
	BuildPkg:          31,
	ReproduceBuildPkg: 31,
	PackPkg:           32,
	ReproducePackPkg:  32,
	ArchivePkg:        33,

	Run:     40,
	RunPkg:  40,
	RunTool: 40,

	MirrorSrc: 50,

	InstallPkg: 90,
}

// Priority returns this action's position in the deterministic ordering
// key's first component.
func (a Action) Priority() int {
	if p, ok := priority[a]; ok {
		return p
	}
	return 99
}

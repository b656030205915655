// Package step composes and executes one build step: resolving its tool
// closure, building its environment, preparing virtual-tool shims, and
// dispatching to a container runtime. It is the implementation of spec
// §4.5 (the step executor, C5).
package step

import (
	"github.com/crossforge/crossforge/pkg/config"
)

// Context discriminates what kind of subject a step runs under, which
// chooses the default workdir and the manifest's subject coordinates.
type Context string

const (
	ContextSource    Context = "source"
	ContextTool      Context = "tool"
	ContextToolStage Context = "tool-stage"
	ContextPkg       Context = "pkg"
	ContextToolTask  Context = "tool-task"
	ContextPkgTask   Context = "pkg-task"
	ContextTask      Context = "task"
	ContextNull      Context = "null"
)

// ToolRef is one entry of a manifest's resolved tool closure: enough for
// the environment builder to extend PATH/LD_LIBRARY_PATH/ACLOCAL_PATH.
type ToolRef struct {
	Name              string
	PrefixDir         string
	ExportsSharedLibs bool
	ExportsAclocal    bool
}

// VirtualTool is one resolved virtual-tool shim request. Kind is one of
// "pkgconfig-for-host"/"pkgconfig-for-target"; any other kind is a fatal
// configuration error (spec §4.5 step 2).
type VirtualTool struct {
	Kind string
}

// Manifest is the fully composed description of a single step invocation,
// handed to a ContainerRuntime.
type Manifest struct {
	Context      Context
	SubjectKind  string
	SubjectName  string
	SourceSubdir string
	BuildSubdir  string
	CollectOrPrefixSubdir string

	Args          []string
	ShellString   string // set instead of Args when the step used a raw shell string
	Workdir       string
	Environ       map[string]string
	Tools         []ToolRef
	VirtualTools  []VirtualTool
	SysrootSubdir string

	OptionValues map[string]any

	ForPackage       bool
	Quiet            bool
	CargoHome        bool
	SourceDateEpoch  int64
	HasSourceDateEpoch bool
	IsolateNetwork   bool
	Containerless    bool
}

// Request is everything the composer needs besides the Config itself:
// spec §4.5's "(context, subject, step, tool_set, virtual_tools, sysroot,
// for_package, isolate_network)" input tuple.
type Request struct {
	Context     Context
	SubjectKind string
	SubjectName string
	Step        config.ScriptStep
	ToolSet     []string // tool names named directly by tools_required
	VirtualTools []VirtualTool
	Sysroot     string
	ForPackage  bool
	IsolateNetwork bool
}

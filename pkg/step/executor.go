package step

import (
	"context"

	"github.com/crossforge/crossforge/pkg/config"
	"github.com/crossforge/crossforge/pkg/xerrors"
)

// ExitStatus is a subprocess's outcome, returned by a ContainerRuntime.
type ExitStatus struct {
	Code   int
	Signal string // non-empty if killed by a signal rather than exiting normally
}

func (s ExitStatus) Success() bool { return s.Signal == "" && s.Code == 0 }

// ContainerRuntime runs one composed Manifest to completion. Implemented
// by pkg/runtime's dummy/docker/runc/cbuildrt backends; declared here (the
// consumer side) so pkg/step never imports pkg/runtime.
type ContainerRuntime interface {
	Run(ctx context.Context, m Manifest) (ExitStatus, error)
}

// Executor composes manifests and dispatches them to a configured runtime.
type Executor struct {
	Config          *config.Config
	Runtime         ContainerRuntime
	AllowContainerless bool
	MultiarchTriple string
	ScratchDir      func() (string, error)
}

// Run executes req against the executor's configured runtime, performing
// every composition step from spec §4.5.
func (e *Executor) Run(ctx context.Context, req Request) (ExitStatus, error) {
	if req.Step.Containerless() && !e.AllowContainerless {
		return ExitStatus{}, xerrors.NewConfigError("containerless step requested but site config does not set allow_containerless")
	}

	tools := ToolClosure(e.Config, req.ToolSet)

	m := Manifest{
		Context:     req.Context,
		SubjectKind: req.SubjectKind,
		SubjectName: req.SubjectName,
		Tools:       ToolRefs(tools),
		VirtualTools: req.VirtualTools,
		Workdir:     req.Step.Workdir(),
		Environ:     req.Step.Environ(),
		SysrootSubdir: e.Config.SysrootSubdir(),
		ForPackage:  req.ForPackage,
		Quiet:       req.Step.Quiet(),
		CargoHome:   req.Step.CargoHome(),
		Containerless: req.Step.Containerless(),
	}
	if req.Step.IsShellString() {
		m.ShellString = req.Step.Args()[0]
	} else {
		m.Args = req.Step.Args()
	}
	if isolate, explicit := req.Step.IsolateNetwork(); explicit {
		m.IsolateNetwork = isolate
	} else {
		m.IsolateNetwork = req.IsolateNetwork
	}

	var binDir string
	if e.ScratchDir != nil {
		scratch, err := e.ScratchDir()
		if err != nil {
			return ExitStatus{}, err
		}
		binDir, err = PrepareVirtualBin(scratch, m.Tools, m.VirtualTools, req.Sysroot, e.MultiarchTriple)
		if err != nil {
			return ExitStatus{}, err
		}
	}
	m.Environ = BuildEnviron(e.Config, &m, binDir, len(m.VirtualTools) > 0)

	if e.Runtime == nil {
		return ExitStatus{}, xerrors.NewConfigError("no container runtime configured")
	}
	status, err := e.Runtime.Run(ctx, m)
	if err != nil {
		return ExitStatus{}, err
	}
	if !status.Success() {
		return status, &xerrors.ExecutionFailure{
			Action:      string(req.Context),
			SubjectKind: req.SubjectKind,
			SubjectName: req.SubjectName,
			Cause:       xerrors.NewConfigError("exit status %d", status.Code),
		}
	}
	return status, nil
}

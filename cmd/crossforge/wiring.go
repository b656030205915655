package main

import (
	"net/http"
	"os"

	"github.com/crossforge/crossforge/pkg/action"
	"github.com/crossforge/crossforge/pkg/config"
	"github.com/crossforge/crossforge/pkg/pkgbackend"
	"github.com/crossforge/crossforge/pkg/plan"
	"github.com/crossforge/crossforge/pkg/probe"
	"github.com/crossforge/crossforge/pkg/runtime"
	"github.com/crossforge/crossforge/pkg/step"
	"github.com/crossforge/crossforge/pkg/vcs"
	"github.com/crossforge/crossforge/pkg/xlog"
)

var log = xlog.Named("cli")

// loadConfig resolves bootstrap.link starting from the working directory,
// the Go equivalent of xbstrap's config_for_dir().
func loadConfig() (*config.Config, error) {
	return config.Load(config.LoadOptions{})
}

// packageBackend selects the xbps backend when the site config requests
// it, the no-op direct-install backend otherwise.
func packageBackend(cfg *config.Config) pkgbackend.Backend {
	if cfg.UseXbps() {
		return &pkgbackend.Xbps{}
	}
	return &pkgbackend.Noop{}
}

// containerRuntime selects a step.ContainerRuntime from the site config's
// container.runtime setting, defaulting to the direct-subprocess Dummy.
func containerRuntime(cfg *config.Config) step.ContainerRuntime {
	switch cfg.ContainerRuntimeName() {
	case "docker":
		return &runtime.Docker{Network: isolateNetworkArg(cfg)}
	case "runc":
		return &runtime.Runc{}
	case "cbuildrt":
		return &runtime.Cbuildrt{}
	default:
		return &runtime.Dummy{ExecutorPath: os.Args[0], SelfRunArg: "execute-manifest"}
	}
}

func isolateNetworkArg(cfg *config.Config) string {
	if cfg.EnableNetworkIsolation() {
		return "none"
	}
	return ""
}

// buildRunner wires every collaborator an action.Runner needs from one
// loaded Config: VCS dispatcher, package backend, and step executor.
func buildRunner(cfg *config.Config) *action.Runner {
	executor := &step.Executor{
		Config:             cfg,
		Runtime:            containerRuntime(cfg),
		AllowContainerless: cfg.AllowContainerless(),
		ScratchDir:         func() (string, error) { return os.MkdirTemp("", "crossforge-scratch-") },
	}
	return &action.Runner{
		Config:     cfg,
		Executor:   executor,
		VCS:        vcs.NewDispatcher(),
		Backend:    packageBackend(cfg),
		HTTPClient: http.DefaultClient,
	}
}

// buildProber wires a probe.Prober against the same VCS/backend selection
// buildRunner used, and wraps it in action.ProberAdapter for plan.Compute.
func buildProber(cfg *config.Config, r *action.Runner) plan.Prober {
	p := &probe.Prober{
		Config:  cfg,
		VCS:     &vcs.Checker{Dispatcher: r.VCS, Config: cfg},
		Backend: &pkgbackend.Checker{Backend: r.Backend, Config: cfg},
	}
	return &action.ProberAdapter{Prober: p}
}

// materializeOptions mirrors xbstrap's default materialization policy: no
// build-scope restriction, and PACK_PKG as INSTALL_PKG's build edge exactly
// when the site config selects a real package backend.
func materializeOptions(cfg *config.Config) plan.MaterializeOptions {
	return plan.MaterializeOptions{
		Scope:             plan.AllInScope{},
		UsePackageBackend: cfg.UseXbps(),
	}
}

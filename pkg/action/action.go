// Package action implements the handler for every plan.Action: the code
// that actually fetches a source, runs a build step, packs a package, or
// pulls a prebuilt artifact. It is the last link between the materialized
// plan (pkg/plan) and the concrete subsystems (pkg/vcs, pkg/pkgbackend,
// pkg/step) that do the work.
package action

import (
	"net/http"

	"github.com/crossforge/crossforge/pkg/config"
	"github.com/crossforge/crossforge/pkg/graph"
	"github.com/crossforge/crossforge/pkg/pkgbackend"
	"github.com/crossforge/crossforge/pkg/step"
	"github.com/crossforge/crossforge/pkg/vcs"
	"github.com/crossforge/crossforge/pkg/xlog"
)

var log = xlog.Named("action")

// Runner holds every dependency an action handler needs: the resolved
// manifest, the step executor that composes and dispatches one build step,
// the VCS backend dispatcher, the package backend, and an HTTP client for
// archive pulls. One Runner serves an entire plan run.
type Runner struct {
	Config     *config.Config
	Executor   *step.Executor
	VCS        *vcs.Dispatcher
	Backend    pkgbackend.Backend
	HTTPClient *http.Client

	sysrootDirs *sysrootAllocator
}

func (r *Runner) httpClient() *http.Client {
	if r.HTTPClient != nil {
		return r.HTTPClient
	}
	return http.DefaultClient
}

func (r *Runner) sysroots() *sysrootAllocator {
	if r.sysrootDirs == nil {
		r.sysrootDirs = newSysrootAllocator(r.Config.BuildRoot())
	}
	return r.sysrootDirs
}

// stepRequest builds the common shape every action handler's step.Request
// shares: subject coordinates, the step itself, and its resolved tool set.
func stepRequest(ctx step.Context, id graph.SubjectID, st config.ScriptStep, toolSet []string, virtual []step.VirtualTool) step.Request {
	return step.Request{
		Context:      ctx,
		SubjectKind:  string(id.Kind),
		SubjectName:  id.Name,
		Step:         st,
		ToolSet:      toolSet,
		VirtualTools: virtual,
	}
}

// toolSetAndVirtual resolves a requirer's exposed tool closure into the
// names the step executor expands (spec §4.5 step 1) and the virtual-tool
// shim requests it must prepare (spec §4.5 step 2).
func toolSetAndVirtual(cfg *config.Config, r graph.Requirer) ([]string, []step.VirtualTool) {
	ids := graph.ResolveToolDeps(r, cfg.AsLookup(), true)
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, id.Name)
	}

	var virtual []step.VirtualTool
	for _, d := range graph.VirtualToolDeps(r) {
		virtual = append(virtual, step.VirtualTool{Kind: d.VirtualKind})
	}
	return names, virtual
}

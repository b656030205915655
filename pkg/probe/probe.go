// Package probe answers, for a single (action, subject) pair, whether its
// state is missing, updatable, and what timestamp governs outdatedness
// propagation. It reads filesystem marker files directly and delegates VCS
// and package-backend state to small interfaces so this package never
// imports the concrete vcs/pkgbackend implementations.
package probe

import (
	"context"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/crossforge/crossforge/pkg/config"
	"github.com/crossforge/crossforge/pkg/graph"
	"github.com/crossforge/crossforge/pkg/plan"
	"github.com/crossforge/crossforge/pkg/xerrors"
)

// Result is the outcome of probing one (action, subject) pair.
type Result struct {
	Missing      bool
	Updatable    bool
	Timestamp    time.Time // meaningful only when HasTimestamp
	HasTimestamp bool
}

// CheckRemotesLevel controls how hard a VCS probe looks for upstream
// changes: 0 never queries the remote, 1 checks branches only, 2 also
// checks tags.
type CheckRemotesLevel int

const (
	CheckRemotesNever    CheckRemotesLevel = 0
	CheckRemotesBranches CheckRemotesLevel = 1
	CheckRemotesTags     CheckRemotesLevel = 2
)

// VCSChecker answers whether a source's checkout is missing/updatable,
// implemented by pkg/vcs backends.
type VCSChecker interface {
	ProbeSource(src *config.Source, checkRemotes CheckRemotesLevel) (Result, error)
}

// PackageBackendChecker answers install/pack/repodata state for a package,
// implemented by pkg/pkgbackend backends.
type PackageBackendChecker interface {
	ProbeInstalled(pkgName string) (Result, error)
	ProbePacked(pkgName string) (Result, error)
	ProbeRepodataVersion(pkgName, localVersion string) (Result, error)
}

// Options carries the per-probe-call context the action handlers already
// have at hand.
type Options struct {
	CheckRemotes  CheckRemotesLevel
	UsePkgBackend bool
}

// Prober probes plan items against one Config, consulting the configured
// VCS and package-backend checkers where filesystem markers alone are not
// enough. A nil VCS or Backend is valid: FETCH_SRC/CHECKOUT_SRC and
// PACK_PKG/INSTALL_PKG probes then fall back to their marker files, and
// PULL_PKG_PACK reports Missing=true, so a driver that never fetches or
// never uses a package backend need not wire one in.
type Prober struct {
	Config  *config.Config
	VCS     VCSChecker
	Backend PackageBackendChecker
}

// Probe computes {missing, updatable, timestamp} for one action against one
// subject, per spec §4.3.
func (p *Prober) Probe(action plan.Action, id graph.SubjectID, opts Options) (Result, error) {
	if !action.IsIdempotent() {
		return Result{Missing: true}, nil
	}

	switch action {
	case plan.FetchSrc:
		return p.probeFetchSrc(id, opts)
	case plan.CheckoutSrc:
		return p.probeSourceMarker(id, checkedOutMarker)
	case plan.PatchSrc:
		return p.probeSourceMarker(id, patchedMarker)
	case plan.RegenerateSrc:
		return p.probeSourceMarker(id, regeneratedMarker)

	case plan.ConfigureTool:
		return p.probeToolMarker(id, configuredMarker)
	case plan.CompileToolStage:
		return p.probeToolStageMarker(id, builtMarker)
	case plan.InstallToolStage:
		return p.probeToolStageMarker(id, installedMarker)
	case plan.ArchiveTool:
		return p.probeToolMarker(id, archivedMarker)

	case plan.ConfigurePkg:
		return p.probePkgMarker(id, configuredMarker)
	case plan.BuildPkg:
		return p.probePkgMarker(id, builtMarker)
	case plan.PackPkg:
		return p.probePackPkg(id)
	case plan.InstallPkg:
		return p.probeInstallPkg(id)
	case plan.ArchivePkg:
		return p.probePkgMarker(id, archivedMarker)
	case plan.PullPkgPack:
		return p.probePullPkgPack(id)

	case plan.WantTool, plan.WantPkg, plan.PullArchive, plan.MirrorSrc:
		return Result{Missing: true}, nil
	}

	return Result{Missing: true}, nil
}

func (p *Prober) probeFetchSrc(id graph.SubjectID, opts Options) (Result, error) {
	src, ok := p.Config.Source(id.Name)
	if !ok {
		return Result{}, xerrors.NewConfigError("probe: unknown source %q", id.Name)
	}
	if p.VCS != nil {
		return p.VCS.ProbeSource(src, opts.CheckRemotes)
	}
	return markerResult(src.SourceDir(), fetchedMarker)
}

func (p *Prober) probeSourceMarker(id graph.SubjectID, marker string) (Result, error) {
	src, ok := p.Config.Source(id.Name)
	if !ok {
		return Result{}, xerrors.NewConfigError("probe: unknown source %q", id.Name)
	}
	return markerResult(src.SourceDir(), marker)
}

func (p *Prober) probeToolMarker(id graph.SubjectID, marker string) (Result, error) {
	t, ok := p.Config.Tool(id.Name)
	if !ok {
		return Result{}, xerrors.NewConfigError("probe: unknown tool %q", id.Name)
	}
	return markerResult(t.BuildDir(), marker)
}

// probeToolStageMarker reads a stage-qualified marker (built/installed),
// stored alongside the stage name so multi-stage tools don't collide on a
// single marker file.
func (p *Prober) probeToolStageMarker(id graph.SubjectID, marker string) (Result, error) {
	t, ok := p.Config.Tool(id.Name)
	if !ok {
		return Result{}, xerrors.NewConfigError("probe: unknown tool %q", id.Name)
	}
	name := marker
	if id.Stage != "" {
		name = marker + "@" + id.Stage
	}
	return markerResult(t.BuildDir(), name)
}

func (p *Prober) probePkgMarker(id graph.SubjectID, marker string) (Result, error) {
	pkg, ok := p.Config.Package(id.Name)
	if !ok {
		return Result{}, xerrors.NewConfigError("probe: unknown package %q", id.Name)
	}
	return markerResult(pkg.BuildDir(), marker)
}

func (p *Prober) probePackPkg(id graph.SubjectID) (Result, error) {
	if p.Backend != nil {
		return p.Backend.ProbePacked(id.Name)
	}
	return p.probePkgMarker(id, archivedMarker)
}

func (p *Prober) probeInstallPkg(id graph.SubjectID) (Result, error) {
	if p.Backend != nil {
		return p.Backend.ProbeInstalled(id.Name)
	}
	pkg, ok := p.Config.Package(id.Name)
	if !ok {
		return Result{}, xerrors.NewConfigError("probe: unknown package %q", id.Name)
	}
	return markerResult(pkg.StagingDir(), installedMarker)
}

// probePullPkgPack compares the remote repodata's version against the
// locally known one (spec §4.3: "considered updatable if the remote
// repodata's version compares greater... under the repodata version
// ordering"); local version comes from the package's own computed version.
func (p *Prober) probePullPkgPack(id graph.SubjectID) (Result, error) {
	if p.Backend == nil {
		return Result{Missing: true}, nil
	}
	pkg, ok := p.Config.Package(id.Name)
	if !ok {
		return Result{}, xerrors.NewConfigError("probe: unknown package %q", id.Name)
	}
	localVersion, err := pkg.Version()
	if err != nil {
		return Result{}, err
	}
	return p.Backend.ProbeRepodataVersion(id.Name, localVersion)
}

// ProbeMany probes a batch of independent plan keys concurrently. This is
// the only concurrency the engine performs: every step in the emitted plan
// still runs strictly sequentially (spec §5); only the read-only state
// probes that precede activation are parallelized.
func (p *Prober) ProbeMany(ctx context.Context, keys []Key, opts Options, maxGoroutines int) ([]KeyedResult, error) {
	pl := pool.NewWithResults[KeyedResult]().WithContext(ctx).WithMaxGoroutines(maxGoroutines)
	for _, k := range keys {
		k := k
		pl.Go(func(ctx context.Context) (KeyedResult, error) {
			select {
			case <-ctx.Done():
				return KeyedResult{Key: k}, ctx.Err()
			default:
			}
			res, err := p.Probe(k.Action, k.Subject, opts)
			return KeyedResult{Key: k, Result: res}, err
		})
	}
	return pl.Wait()
}

// Key identifies a single probe request inside a ProbeMany batch.
type Key struct {
	Action  plan.Action
	Subject graph.SubjectID
}

// KeyedResult pairs a probe Key with its outcome for ProbeMany's results.
type KeyedResult struct {
	Key    Key
	Result Result
}

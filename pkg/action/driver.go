package action

import (
	"context"

	"github.com/crossforge/crossforge/pkg/graph"
	"github.com/crossforge/crossforge/pkg/plan"
	"github.com/crossforge/crossforge/pkg/probe"
	"github.com/crossforge/crossforge/pkg/progress"
	"github.com/crossforge/crossforge/pkg/stringutil"
	"github.com/crossforge/crossforge/pkg/xerrors"
)

// ProberAdapter satisfies plan.Prober by wrapping a real probe.Prober: the
// two interfaces disagree on shape (plan.Prober predates probe.Options
// because pkg/plan must not import pkg/probe), so this is the one place
// that bridges them.
type ProberAdapter struct {
	Prober *probe.Prober
}

func (a *ProberAdapter) Probe(action plan.Action, id graph.SubjectID, checkRemotes int, usePkgBackend bool) (bool, bool, int64, bool, error) {
	res, err := a.Prober.Probe(action, id, probe.Options{
		CheckRemotes:  probe.CheckRemotesLevel(checkRemotes),
		UsePkgBackend: usePkgBackend,
	})
	if err != nil {
		return false, false, 0, false, err
	}
	var ts int64
	if res.HasTimestamp {
		ts = res.Timestamp.Unix()
	}
	return res.Missing, res.Updatable, ts, res.HasTimestamp, nil
}

// RunPlan executes every active item of a computed plan in order. When
// keepGoing is false, the first failure aborts the run immediately; when
// true, a failed item's dependents are marked PREREQS_FAILED and skipped
// rather than run, and RunPlan keeps going until nothing runnable remains.
// progressOut is optional; when non-nil, one event is emitted per scheduled
// item, matching spec §6's progress stream.
func RunPlan(ctx context.Context, r *Runner, p *plan.Plan, keepGoing bool, progressOut *progress.Writer) error {
	failed := make(map[plan.Key]bool)
	failedCount := 0
	scheduled := p.Scheduled()

	for n, it := range scheduled {
		if prereqFailed(it, failed) {
			it.Status = plan.StatusPrereqsFailed
			failed[it.Key] = true
			failedCount++
			emitProgress(r, progressOut, it, n, len(scheduled), progress.StatusPrereqsFailed)
			continue
		}

		if err := dispatch(ctx, r, it.Key); err != nil {
			it.Status = plan.StatusStepFailed
			failed[it.Key] = true
			failedCount++
			log.Infow("step failed", "action", it.Key.Action, "subject", it.Key.Subject.Name,
				"error", stringutil.SanitizeErrorMessage(stringutil.StripANSI(err.Error())))
			emitProgress(r, progressOut, it, n, len(scheduled), progress.StatusFailure)
			if !keepGoing {
				return err
			}
			continue
		}
		it.Status = plan.StatusSuccess
		emitProgress(r, progressOut, it, n, len(scheduled), progress.StatusSuccess)
	}

	if failedCount > 0 {
		return &xerrors.PlanFailure{Failed: failedCount}
	}
	return nil
}

// emitProgress builds and writes one progress.Event for a scheduled item,
// matching base.py's emit_progress: architecture is reported only for
// ARCHIVE_TOOL/PACK_PKG, artifact_files only for RUN.
func emitProgress(r *Runner, out *progress.Writer, it *plan.Item, n, nAll int, status progress.Status) {
	if out == nil {
		return
	}
	ev := progress.Event{
		NThis:   n + 1,
		NAll:    nAll,
		Status:  status,
		Action:  string(it.Key.Action),
		Subject: it.Key.Subject.String(),
	}

	switch it.Key.Action {
	case plan.ArchiveTool:
		if tool, ok := r.Config.Tool(it.Key.Subject.Name); ok {
			if arch, err := tool.Architecture(); err == nil {
				ev.Architecture = arch
			}
		}
	case plan.PackPkg:
		if pkg, ok := r.Config.Package(it.Key.Subject.Name); ok {
			if arch, err := pkg.Architecture(); err == nil {
				ev.Architecture = arch
			}
		}
	case plan.Run:
		if task, ok := r.Config.FreeTask(it.Key.Subject.Name); ok {
			if files, err := task.ArtifactFiles(); err == nil {
				for _, f := range files {
					ev.ArtifactFiles = append(ev.ArtifactFiles, progress.ArtifactFile{
						Name: f.Name, Filepath: f.Path, Architecture: f.Architecture,
					})
				}
			}
		}
	}

	if err := out.Emit(ev); err != nil {
		log.Infow("failed to write progress event", "error", err)
	}
}

// prereqFailed reports whether any of it's build/require edges already
// failed or was skipped for the same reason.
func prereqFailed(it *plan.Item, failed map[plan.Key]bool) bool {
	for _, k := range it.BuildEdges {
		if failed[k] {
			return true
		}
	}
	for _, k := range it.RequireEdges {
		if failed[k] {
			return true
		}
	}
	return false
}

func dispatch(ctx context.Context, r *Runner, key plan.Key) error {
	id := key.Subject
	switch key.Action {
	case plan.FetchSrc:
		return r.FetchSrc(ctx, id)
	case plan.CheckoutSrc:
		return r.CheckoutSrc(ctx, id)
	case plan.PatchSrc:
		return r.PatchSrc(ctx, id)
	case plan.RegenerateSrc:
		return r.RegenerateSrc(ctx, id)
	case plan.MirrorSrc:
		return r.MirrorSrc(ctx, id)

	case plan.ConfigureTool:
		return r.ConfigureTool(ctx, id)
	case plan.CompileToolStage:
		return r.CompileToolStage(ctx, id)
	case plan.InstallToolStage:
		return r.InstallToolStage(ctx, id)
	case plan.ArchiveTool:
		return r.ArchiveTool(ctx, id)
	case plan.PullArchive:
		return r.PullArchive(ctx, id)
	case plan.WantTool:
		return r.WantTool(ctx, id)

	case plan.ConfigurePkg:
		return r.ConfigurePkg(ctx, key)
	case plan.BuildPkg:
		return r.BuildPkg(ctx, key, false)
	case plan.ReproduceBuildPkg:
		return r.BuildPkg(ctx, key, true)
	case plan.PackPkg:
		return r.PackPkg(ctx, id, false)
	case plan.ReproducePackPkg:
		return r.PackPkg(ctx, id, true)
	case plan.InstallPkg:
		return r.InstallPkg(ctx, key)
	case plan.ArchivePkg:
		return r.ArchivePkg(ctx, id)
	case plan.PullPkgPack:
		return r.PullPkgPack(ctx, id)
	case plan.WantPkg:
		return r.WantPkg(ctx, id)

	case plan.Run:
		return r.Run(ctx, id)
	case plan.RunPkg:
		return r.RunPkg(ctx, id)
	case plan.RunTool:
		return r.RunTool(ctx, id)

	default:
		return wrapFailure(key.Action, id, xerrors.NewConfigError("unhandled action %q", key.Action))
	}
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crossforge/crossforge/pkg/action"
	"github.com/crossforge/crossforge/pkg/console"
	"github.com/crossforge/crossforge/pkg/plan"
	"github.com/crossforge/crossforge/pkg/xerrors"
)

// runWanted loads the manifest, computes a plan rooted at wanted, and
// either prints it (--dry-run) or runs it to completion, the shared tail
// end of every plan-driven subcommand (fetch, build, install, ...).
func runWanted(cmd *cobra.Command, wanted []plan.Key, f *planFlags) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	runner := buildRunner(cfg)
	prober := buildProber(cfg, runner)

	opts := plan.Options{
		Materialize: materializeOptions(cfg),
		Activate:    f.activateOptions(wanted),
	}

	p, violations, err := plan.Compute(cmd.Context(), cfg, wanted, prober, opts)
	if err != nil {
		return err
	}
	if len(violations) > 0 {
		return xerrors.NewPlanError("%d scheduled item(s) fall outside the wanted set", len(violations))
	}

	scheduled := p.Scheduled()
	if f.dryRun {
		for _, it := range scheduled {
			fmt.Fprintln(cmd.OutOrStdout(), console.FormatProgressMessage(it.Key.String()))
		}
		return nil
	}

	progressOut, closeProgress, err := f.openProgressWriter()
	if err != nil {
		return &xerrors.IoError{Path: f.progressOut, Cause: err}
	}
	defer closeProgress()

	log.Infow("running plan", "items", len(scheduled))
	return action.RunPlan(cmd.Context(), runner, p, f.keepGoing, progressOut)
}

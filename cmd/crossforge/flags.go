package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/crossforge/crossforge/pkg/plan"
	"github.com/crossforge/crossforge/pkg/progress"
)

// planFlags mirrors xbstrap's handle_plan_args: the flag set shared by
// every subcommand that computes and runs a plan.
type planFlags struct {
	dryRun      bool
	check       bool
	update      bool
	recursive   bool
	onlyWanted  bool
	keepGoing   bool
	progressOut string
}

func (f *planFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&f.dryRun, "dry-run", "n", false, "compute a plan but do not execute it")
	cmd.Flags().BoolVarP(&f.check, "check", "c", false, "skip items that are already up to date")
	cmd.Flags().BoolVarP(&f.update, "update", "u", false, "check for updates among already-built items")
	cmd.Flags().BoolVar(&f.recursive, "recursive", false, "when updating: also propagate through requirements")
	cmd.Flags().BoolVar(&f.onlyWanted, "only-wanted", false, "fail steps that are not explicitly wanted")
	cmd.Flags().BoolVar(&f.keepGoing, "keep-going", false, "continue running even if some build steps fail")
	cmd.Flags().StringVar(&f.progressOut, "progress-file", "", "file that receives machine-readable progress notifications")
}

func (f *planFlags) activateOptions(wanted []plan.Key) plan.ActivateOptions {
	return plan.ActivateOptions{
		Wanted:     wanted,
		Check:      f.check,
		Update:     f.update,
		Recursive:  f.recursive,
		OnlyWanted: f.onlyWanted,
	}
}

// openProgressWriter opens --progress-file if set, returning a nil Writer
// (and a no-op close) when the flag was not given.
func (f *planFlags) openProgressWriter() (*progress.Writer, func(), error) {
	if f.progressOut == "" {
		return nil, func() {}, nil
	}
	file, err := os.OpenFile(f.progressOut, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return progress.NewWriter(file), func() { file.Close() }, nil
}

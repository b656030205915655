package main

import (
	"github.com/spf13/cobra"

	"github.com/crossforge/crossforge/pkg/config"
	"github.com/crossforge/crossforge/pkg/plan"
	"github.com/crossforge/crossforge/pkg/xerrors"
)

// srcCommand builds one of fetch/checkout/patch/regenerate: --all selects
// every source, otherwise the positional args name specific ones.
func srcCommand(use, short string, action plan.Action) *cobra.Command {
	var all bool
	f := &planFlags{}
	cmd := &cobra.Command{
		Use:   use + " [source]...",
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			srcs, err := selectSources(cfg, all, args)
			if err != nil {
				return err
			}
			wanted := make([]plan.Key, 0, len(srcs))
			for _, src := range srcs {
				wanted = append(wanted, plan.Key{Action: action, Subject: src.SubjectID()})
			}
			return runWanted(cmd, wanted, f)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "select every source")
	f.register(cmd)
	return cmd
}

func selectSources(cfg *config.Config, all bool, names []string) ([]*config.Source, error) {
	if all {
		return cfg.AllSources(), nil
	}
	sel := make([]*config.Source, 0, len(names))
	for _, name := range names {
		src, ok := cfg.Source(name)
		if !ok {
			return nil, xerrors.NewConfigError("unknown source %q", name)
		}
		sel = append(sel, src)
	}
	return sel, nil
}

func newFetchCommand() *cobra.Command {
	return srcCommand("fetch", "Fetch one or more sources", plan.FetchSrc)
}

func newCheckoutCommand() *cobra.Command {
	return srcCommand("checkout", "Check out one or more sources", plan.CheckoutSrc)
}

func newPatchCommand() *cobra.Command {
	return srcCommand("patch", "Apply patches to one or more sources", plan.PatchSrc)
}

func newRegenerateCommand() *cobra.Command {
	return srcCommand("regenerate", "Run the regenerate step for one or more sources", plan.RegenerateSrc)
}

func newListSrcsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list-srcs",
		Short: "List every declared source",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			for _, src := range cfg.AllSources() {
				cmd.Println(src.Name())
			}
			return nil
		},
	}
}

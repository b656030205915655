package main

import (
	"github.com/spf13/cobra"

	"github.com/crossforge/crossforge/pkg/config"
	"github.com/crossforge/crossforge/pkg/plan"
)

// toolSelectFlags is select_tools' flag set: --all or an explicit name list.
type toolSelectFlags struct {
	all   bool
	names []string
}

func (s *toolSelectFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&s.all, "all", false, "select every default tool")
}

func (s *toolSelectFlags) resolve(cfg *config.Config, args []string) ([]*config.Tool, error) {
	s.names = args
	return selectTools(cfg, s.all, s.names)
}

func newConfigureToolCommand() *cobra.Command {
	f := &planFlags{}
	sel := &toolSelectFlags{}
	cmd := &cobra.Command{
		Use:   "configure-tool [tool]...",
		Short: "Run the configure step for one or more tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			tools, err := sel.resolve(cfg, args)
			if err != nil {
				return err
			}
			wanted := make([]plan.Key, 0, len(tools))
			for _, t := range tools {
				wanted = append(wanted, plan.Key{Action: plan.ConfigureTool, Subject: t.SubjectID()})
			}
			return runWanted(cmd, wanted, f)
		},
	}
	sel.register(cmd)
	f.register(cmd)
	return cmd
}

func newCompileToolCommand() *cobra.Command {
	f := &planFlags{}
	sel := &toolSelectFlags{}
	var reconfigure bool
	cmd := &cobra.Command{
		Use:   "compile-tool [tool]...",
		Short: "Compile every stage of one or more tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			tools, err := sel.resolve(cfg, args)
			if err != nil {
				return err
			}
			var wanted []plan.Key
			for _, t := range tools {
				if reconfigure {
					wanted = append(wanted, plan.Key{Action: plan.ConfigureTool, Subject: t.SubjectID()})
				}
				for _, stage := range t.AllStages() {
					wanted = append(wanted, plan.Key{Action: plan.CompileToolStage, Subject: stage.SubjectID()})
				}
			}
			return runWanted(cmd, wanted, f)
		},
	}
	cmd.Flags().BoolVar(&reconfigure, "reconfigure", false, "also reconfigure before compiling")
	sel.register(cmd)
	f.register(cmd)
	return cmd
}

func newInstallToolCommand() *cobra.Command {
	f := &planFlags{}
	sel := &toolSelectFlags{}
	var reconfigure, recompile bool
	cmd := &cobra.Command{
		Use:   "install-tool [tool]...",
		Short: "Compile and install one or more tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			tools, err := sel.resolve(cfg, args)
			if err != nil {
				return err
			}
			var wanted []plan.Key
			for _, t := range tools {
				if reconfigure {
					wanted = append(wanted, plan.Key{Action: plan.ConfigureTool, Subject: t.SubjectID()})
				}
				if reconfigure || recompile {
					for _, stage := range t.AllStages() {
						wanted = append(wanted, plan.Key{Action: plan.CompileToolStage, Subject: stage.SubjectID()})
					}
				}
				for _, stage := range t.AllStages() {
					wanted = append(wanted, plan.Key{Action: plan.InstallToolStage, Subject: stage.SubjectID()})
				}
			}
			return runWanted(cmd, wanted, f)
		},
	}
	cmd.Flags().BoolVar(&reconfigure, "reconfigure", false, "also reconfigure before installing")
	cmd.Flags().BoolVar(&recompile, "recompile", false, "also recompile before installing")
	sel.register(cmd)
	f.register(cmd)
	return cmd
}

func newArchiveToolCommand() *cobra.Command {
	f := &planFlags{}
	sel := &toolSelectFlags{}
	cmd := &cobra.Command{
		Use:   "archive-tool [tool]...",
		Short: "Archive one or more installed tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			tools, err := sel.resolve(cfg, args)
			if err != nil {
				return err
			}
			wanted := make([]plan.Key, 0, len(tools))
			for _, t := range tools {
				wanted = append(wanted, plan.Key{Action: plan.ArchiveTool, Subject: t.SubjectID()})
			}
			return runWanted(cmd, wanted, f)
		},
	}
	sel.register(cmd)
	f.register(cmd)
	return cmd
}

func newListToolsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list-tools",
		Short: "List every declared tool",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			for _, t := range cfg.AllTools() {
				cmd.Println(t.Name())
			}
			return nil
		},
	}
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/crossforge/crossforge/pkg/plan"
	"github.com/crossforge/crossforge/pkg/xerrors"
)

// newRunCommand runs a free-standing, package-bound, or tool-bound task,
// mirroring do_run_task's mutually exclusive --pkg/--tool selectors.
func newRunCommand() *cobra.Command {
	f := &planFlags{}
	var pkgName, toolName string
	cmd := &cobra.Command{
		Use:   "run <task>...",
		Short: "Run one or more tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			if pkgName != "" && toolName != "" {
				return xerrors.NewConfigError("--pkg and --tool are mutually exclusive")
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			var wanted []plan.Key
			switch {
			case pkgName != "":
				pkg, ok := cfg.Package(pkgName)
				if !ok {
					return xerrors.NewConfigError("unknown package %q", pkgName)
				}
				for _, name := range args {
					task, ok := pkg.GetTask(pkgName + ":" + name)
					if !ok {
						return xerrors.NewConfigError("package %q has no task %q", pkgName, name)
					}
					wanted = append(wanted, plan.Key{Action: plan.RunPkg, Subject: task.SubjectID()})
				}
			case toolName != "":
				tool, ok := cfg.Tool(toolName)
				if !ok {
					return xerrors.NewConfigError("unknown tool %q", toolName)
				}
				for _, name := range args {
					task, ok := tool.GetTask(toolName + ":" + name)
					if !ok {
						return xerrors.NewConfigError("tool %q has no task %q", toolName, name)
					}
					wanted = append(wanted, plan.Key{Action: plan.RunTool, Subject: task.SubjectID()})
				}
			default:
				for _, name := range args {
					task, ok := cfg.FreeTask(name)
					if !ok {
						return xerrors.NewConfigError("unknown task %q", name)
					}
					wanted = append(wanted, plan.Key{Action: plan.Run, Subject: task.SubjectID()})
				}
			}

			return runWanted(cmd, wanted, f)
		},
	}
	cmd.Flags().StringVar(&pkgName, "pkg", "", "run a task bound to this package")
	cmd.Flags().StringVar(&toolName, "tool", "", "run a task bound to this tool")
	f.register(cmd)
	return cmd
}

// newRunToolRawCommand runs an arbitrary program in the environment of one
// or more tools (xbstrap's runtool), bypassing the plan entirely: there is
// no task binding and nothing to schedule or probe.
func newRunToolRawCommand() *cobra.Command {
	var build string
	cmd := &cobra.Command{
		Use:                "runtool [tool]... -- command [args...]",
		Short:              "Run a command in the environment of one or more tools",
		DisableFlagParsing: false,
		Args:               cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			runner := buildRunner(cfg)

			if build != "" {
				pkg, ok := cfg.Package(build)
				if !ok {
					return xerrors.NewConfigError("unknown package %q", build)
				}
				var tools []string
				for _, dep := range pkg.ToolDeps() {
					tools = append(tools, dep.Tool)
				}
				if len(args) == 0 {
					return xerrors.NewConfigError("no command given")
				}
				status, err := runner.RunRaw(cmd.Context(), tools, args)
				if err != nil {
					return err
				}
				if !status.Success() {
					return &xerrors.ExecutionFailure{Action: "RUN_TOOL", SubjectKind: "runtool", SubjectName: build, Cause: xerrors.NewConfigError("exit status %d", status.Code)}
				}
				return nil
			}

			dash := cmd.ArgsLenAtDash()
			if dash < 0 {
				return xerrors.NewConfigError("tools and arguments must be separated by --")
			}
			tools, command := args[:dash], args[dash:]
			if len(command) == 0 {
				return xerrors.NewConfigError("no command given")
			}
			status, err := runner.RunRaw(cmd.Context(), tools, command)
			if err != nil {
				return err
			}
			if !status.Success() {
				return &xerrors.ExecutionFailure{Action: "RUN_TOOL", SubjectKind: "runtool", SubjectName: "runtool", Cause: xerrors.NewConfigError("exit status %d", status.Code)}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&build, "build", "", "use this package's tool dependencies instead of naming tools directly")
	return cmd
}

// Command crossforge is the CLI entry point: it loads the manifest for the
// current directory, builds a plan from the subcommand's wanted set, and
// runs it, mirroring xbstrap's argparse-based command surface.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crossforge/crossforge/pkg/console"
	"github.com/crossforge/crossforge/pkg/xlog"
)

// version is set by the release build; "dev" otherwise.
var version = "dev"

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:     "crossforge",
	Short:   "Distribution bootstrap orchestrator",
	Version: version,
	Long: `crossforge builds a distribution from source: it resolves a dependency
graph of sources, tools, and packages from bootstrap.yml and drives each
through fetch/checkout/patch/configure/compile/install/pack/archive.

Common Tasks:
  crossforge init <src-root>        # Link a source tree into the build root
  crossforge fetch --all            # Fetch every source
  crossforge build my-package       # Build one package
  crossforge install my-package     # Build and install into the sysroot
  crossforge run my-task            # Run a free-standing task`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return xlog.Configure(verboseFlag, true)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose logging")
	rootCmd.AddCommand(
		newInitCommand(),
		newFetchCommand(), newCheckoutCommand(), newPatchCommand(), newRegenerateCommand(),
		newConfigureToolCommand(), newCompileToolCommand(), newInstallToolCommand(), newArchiveToolCommand(),
		newConfigureCommand(), newBuildCommand(), newReproduceBuildCommand(),
		newPackCommand(), newReproducePackCommand(), newInstallCommand(), newArchiveCommand(),
		newPullPackCommand(), newRunCommand(), newRunToolRawCommand(),
		newListSrcsCommand(), newListToolsCommand(), newListPkgsCommand(),
		newExecuteManifestCommand(),
		newVersionCommand(),
	)
}

func main() {
	defer xlog.Sync()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, console.FormatErrorMessage(strings.TrimSpace(err.Error())))
		os.Exit(1)
	}
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/crossforge/crossforge/pkg/config"
	"github.com/crossforge/crossforge/pkg/plan"
)

// pkgSelectFlags is select_pkgs' flag set: --all or an explicit name list.
type pkgSelectFlags struct {
	all bool
}

func (s *pkgSelectFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&s.all, "all", false, "select every default package")
}

func (s *pkgSelectFlags) resolve(cfg *config.Config, args []string) ([]*config.Package, error) {
	return selectPkgs(cfg, s.all, args)
}

// reconfigureRebuildEdges mirrors xbstrap's reconfigure_and_rebuild_pkgs:
// --reconfigure adds CONFIGURE_PKG+BUILD_PKG(+PACK_PKG), --rebuild adds
// BUILD_PKG(+PACK_PKG) ahead of the command's own primary action.
func reconfigureRebuildEdges(cfg *config.Config, pkgs []*config.Package, reconfigure, rebuild, noPack bool) []plan.Key {
	var wanted []plan.Key
	addPack := func(pkg *config.Package) {
		if noPack || !cfg.UseXbps() {
			return
		}
		wanted = append(wanted, plan.Key{Action: plan.PackPkg, Subject: pkg.SubjectID()})
	}
	for _, pkg := range pkgs {
		switch {
		case reconfigure:
			wanted = append(wanted, plan.Key{Action: plan.ConfigurePkg, Subject: pkg.SubjectID()})
			wanted = append(wanted, plan.Key{Action: plan.BuildPkg, Subject: pkg.SubjectID()})
			addPack(pkg)
		case rebuild:
			wanted = append(wanted, plan.Key{Action: plan.BuildPkg, Subject: pkg.SubjectID()})
			addPack(pkg)
		}
	}
	return wanted
}

func newConfigureCommand() *cobra.Command {
	f := &planFlags{}
	sel := &pkgSelectFlags{}
	cmd := &cobra.Command{
		Use:   "configure [package]...",
		Short: "Run the configure step for one or more packages",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			pkgs, err := sel.resolve(cfg, args)
			if err != nil {
				return err
			}
			wanted := make([]plan.Key, 0, len(pkgs))
			for _, p := range pkgs {
				wanted = append(wanted, plan.Key{Action: plan.ConfigurePkg, Subject: p.SubjectID()})
			}
			return runWanted(cmd, wanted, f)
		},
	}
	sel.register(cmd)
	f.register(cmd)
	return cmd
}

func buildLikeCommand(use, short string, action plan.Action) *cobra.Command {
	f := &planFlags{}
	sel := &pkgSelectFlags{}
	var reconfigure, rebuild bool
	cmd := &cobra.Command{
		Use:   use + " [package]...",
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			pkgs, err := sel.resolve(cfg, args)
			if err != nil {
				return err
			}
			wanted := reconfigureRebuildEdges(cfg, pkgs, reconfigure, rebuild, true)
			for _, p := range pkgs {
				wanted = append(wanted, plan.Key{Action: action, Subject: p.SubjectID()})
			}
			return runWanted(cmd, wanted, f)
		},
	}
	cmd.Flags().BoolVar(&reconfigure, "reconfigure", false, "also reconfigure before building")
	cmd.Flags().BoolVar(&rebuild, "rebuild", false, "also rebuild before packing")
	sel.register(cmd)
	f.register(cmd)
	return cmd
}

func newBuildCommand() *cobra.Command {
	return buildLikeCommand("build", "Build one or more packages", plan.BuildPkg)
}

func newReproduceBuildCommand() *cobra.Command {
	return buildLikeCommand("reproduce-build", "Reproducibly rebuild and compare one or more packages", plan.ReproduceBuildPkg)
}

func newPackCommand() *cobra.Command {
	return buildLikeCommand("pack", "Pack one or more built packages", plan.PackPkg)
}

func newReproducePackCommand() *cobra.Command {
	return buildLikeCommand("reproduce-pack", "Reproducibly repack and compare one or more packages", plan.ReproducePackPkg)
}

func newInstallCommand() *cobra.Command {
	f := &planFlags{}
	sel := &pkgSelectFlags{}
	var reconfigure, rebuild bool
	cmd := &cobra.Command{
		Use:   "install [package]...",
		Short: "Build and install one or more packages into the sysroot",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			pkgs, err := sel.resolve(cfg, args)
			if err != nil {
				return err
			}
			wanted := reconfigureRebuildEdges(cfg, pkgs, reconfigure, rebuild, false)
			for _, p := range pkgs {
				wanted = append(wanted, plan.Key{Action: plan.InstallPkg, Subject: p.SubjectID()})
			}
			return runWanted(cmd, wanted, f)
		},
	}
	cmd.Flags().BoolVar(&reconfigure, "reconfigure", false, "also reconfigure and build before installing")
	cmd.Flags().BoolVar(&rebuild, "rebuild", false, "also rebuild before installing")
	sel.register(cmd)
	f.register(cmd)
	return cmd
}

func newArchiveCommand() *cobra.Command {
	f := &planFlags{}
	sel := &pkgSelectFlags{}
	cmd := &cobra.Command{
		Use:   "archive [package]...",
		Short: "Archive one or more packages' staging directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			pkgs, err := sel.resolve(cfg, args)
			if err != nil {
				return err
			}
			wanted := make([]plan.Key, 0, len(pkgs))
			for _, p := range pkgs {
				wanted = append(wanted, plan.Key{Action: plan.ArchivePkg, Subject: p.SubjectID()})
			}
			return runWanted(cmd, wanted, f)
		},
	}
	sel.register(cmd)
	f.register(cmd)
	return cmd
}

func newPullPackCommand() *cobra.Command {
	f := &planFlags{}
	sel := &pkgSelectFlags{}
	cmd := &cobra.Command{
		Use:   "pull-pack [package]...",
		Short: "Pull one or more prebuilt packages from the remote repository",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			pkgs, err := sel.resolve(cfg, args)
			if err != nil {
				return err
			}
			wanted := make([]plan.Key, 0, len(pkgs))
			for _, p := range pkgs {
				wanted = append(wanted, plan.Key{Action: plan.PullPkgPack, Subject: p.SubjectID()})
			}
			return runWanted(cmd, wanted, f)
		},
	}
	sel.register(cmd)
	f.register(cmd)
	return cmd
}

func newListPkgsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list-pkgs",
		Short: "List every declared package",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			for _, p := range cfg.AllPackages() {
				cmd.Println(p.Name())
			}
			return nil
		},
	}
}

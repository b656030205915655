package action

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/crossforge/crossforge/pkg/constants"
	"github.com/crossforge/crossforge/pkg/graph"
	"github.com/crossforge/crossforge/pkg/plan"
	"github.com/crossforge/crossforge/pkg/probe"
	"github.com/crossforge/crossforge/pkg/step"
	"github.com/crossforge/crossforge/pkg/xerrors"
)

// ConfigurePkg clears and recreates a package's build directory, then runs
// its configure steps against the given sysroot (the shared one, or an
// isolated one keyed by key.TargetSysrootID).
func (r *Runner) ConfigurePkg(ctx context.Context, key plan.Key) error {
	id := key.Subject
	pkg, ok := r.Config.Package(id.Name)
	if !ok {
		return wrapFailure(plan.ConfigurePkg, id, xerrors.NewConfigError("unknown package %q", id.Name))
	}
	sysroot := r.sysroots().Dir(key.TargetSysrootID, r.Config.SysrootDir())

	if err := os.RemoveAll(pkg.BuildDir()); err != nil {
		return wrapFailure(plan.ConfigurePkg, id, &xerrors.IoError{Path: pkg.BuildDir(), Cause: err})
	}
	if err := os.MkdirAll(pkg.BuildDir(), 0o755); err != nil {
		return wrapFailure(plan.ConfigurePkg, id, &xerrors.IoError{Path: pkg.BuildDir(), Cause: err})
	}

	toolSet, virtual := toolSetAndVirtual(r.Config, pkg)
	for _, st := range pkg.ConfigureSteps() {
		req := stepRequest(step.ContextPkg, id, st, toolSet, virtual)
		req.Sysroot = sysroot
		req.ForPackage = true
		if _, err := r.Executor.Run(ctx, req); err != nil {
			return wrapFailure(plan.ConfigurePkg, id, err)
		}
	}
	if err := probe.WriteMarker(pkg.BuildDir(), constants.MarkerConfigured); err != nil {
		return wrapFailure(plan.ConfigurePkg, id, err)
	}
	log.Infow("configured package", "package", pkg.Name())
	return nil
}

// BuildPkg runs a package's build steps into a fresh collect directory,
// strips libtool .la files (postprocess_libtool), then promotes collect to
// staging — or, in reproduce mode, diffs collect against the existing
// staging tree byte-for-byte instead of replacing it.
func (r *Runner) BuildPkg(ctx context.Context, key plan.Key, reproduce bool) error {
	id := key.Subject
	action := plan.BuildPkg
	if reproduce {
		action = plan.ReproduceBuildPkg
	}
	pkg, ok := r.Config.Package(id.Name)
	if !ok {
		return wrapFailure(action, id, xerrors.NewConfigError("unknown package %q", id.Name))
	}
	sysroot := r.sysroots().Dir(key.TargetSysrootID, r.Config.SysrootDir())

	if err := os.MkdirAll(r.Config.PackageOutDir(), 0o755); err != nil {
		return wrapFailure(action, id, &xerrors.IoError{Path: r.Config.PackageOutDir(), Cause: err})
	}
	if err := os.RemoveAll(pkg.CollectDir()); err != nil {
		return wrapFailure(action, id, &xerrors.IoError{Path: pkg.CollectDir(), Cause: err})
	}
	if err := os.MkdirAll(pkg.CollectDir(), 0o755); err != nil {
		return wrapFailure(action, id, &xerrors.IoError{Path: pkg.CollectDir(), Cause: err})
	}

	toolSet, virtual := toolSetAndVirtual(r.Config, pkg)
	for _, st := range pkg.BuildSteps() {
		req := stepRequest(step.ContextPkg, id, st, toolSet, virtual)
		req.Sysroot = sysroot
		req.ForPackage = true
		if _, err := r.Executor.Run(ctx, req); err != nil {
			return wrapFailure(action, id, err)
		}
	}

	postprocessLibtool(pkg.CollectDir())

	if !reproduce {
		if err := os.RemoveAll(pkg.StagingDir()); err != nil {
			return wrapFailure(action, id, &xerrors.IoError{Path: pkg.StagingDir(), Cause: err})
		}
		if err := os.Rename(pkg.CollectDir(), pkg.StagingDir()); err != nil {
			return wrapFailure(action, id, &xerrors.IoError{Path: pkg.StagingDir(), Cause: err})
		}
	} else {
		if err := compareDirtrees(pkg.CollectDir(), pkg.StagingDir()); err != nil {
			return wrapFailure(action, id, err)
		}
		log.Infow("reproduced package build exactly", "package", pkg.Name())
	}

	if err := probe.WriteMarker(pkg.BuildDir(), constants.MarkerBuilt); err != nil {
		return wrapFailure(action, id, err)
	}
	log.Infow("built package", "package", pkg.Name(), "reproduce", reproduce)
	return nil
}

// postprocessLibtool deletes .la files from a collected tree's library
// directories: libtool archives reference absolute build paths and are
// almost always wrong once installed elsewhere.
func postprocessLibtool(collectDir string) {
	for _, libdir := range []string{"lib", "lib64", "lib32", "usr/lib", "usr/lib64", "usr/lib32"} {
		entries, err := os.ReadDir(filepath.Join(collectDir, libdir))
		if err != nil {
			continue
		}
		for _, ent := range entries {
			if filepath.Ext(ent.Name()) != ".la" {
				continue
			}
			path := filepath.Join(collectDir, libdir, ent.Name())
			if err := os.Remove(path); err == nil {
				log.Debugw("removed libtool archive", "path", path)
			}
		}
	}
}

// compareDirtrees implements build_pkg's reproduce-mode check: the
// reproduced collect tree and the existing staging tree must contain
// exactly the same paths, with matching file types, and byte-identical
// regular file contents.
func compareDirtrees(reproRoot, existRoot string) error {
	reproPaths, err := discoverDirtree(reproRoot)
	if err != nil {
		return err
	}
	existPaths, err := discoverDirtree(existRoot)
	if err != nil {
		return err
	}

	var reproOnly, existOnly []string
	for p := range reproPaths {
		if _, ok := existPaths[p]; !ok {
			reproOnly = append(reproOnly, p)
		}
	}
	for p := range existPaths {
		if _, ok := reproPaths[p]; !ok {
			existOnly = append(existOnly, p)
		}
	}
	if len(reproOnly) > 0 {
		return xerrors.NewConfigError("paths %v only exist in reproduced build", reproOnly)
	}
	if len(existOnly) > 0 {
		return xerrors.NewConfigError("paths %v only exist in existing build", existOnly)
	}

	var mismatches []string
	for p := range reproPaths {
		reproInfo, err := os.Lstat(filepath.Join(reproRoot, p))
		if err != nil {
			return &xerrors.IoError{Path: p, Cause: err}
		}
		existInfo, err := os.Lstat(filepath.Join(existRoot, p))
		if err != nil {
			return &xerrors.IoError{Path: p, Cause: err}
		}
		if reproInfo.Mode().Type() != existInfo.Mode().Type() {
			log.Infow("file type mismatch", "path", p)
			mismatches = append(mismatches, p)
			continue
		}
		if reproInfo.Mode().IsRegular() {
			same, err := filesEqual(filepath.Join(reproRoot, p), filepath.Join(existRoot, p))
			if err != nil {
				return &xerrors.IoError{Path: p, Cause: err}
			}
			if !same {
				log.Infow("content mismatch", "path", p)
				mismatches = append(mismatches, p)
			}
		}
	}
	if len(mismatches) > 0 {
		return xerrors.NewConfigError("could not reproduce all files: %v", mismatches)
	}
	return nil
}

func discoverDirtree(root string) (map[string]bool, error) {
	out := make(map[string]bool)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		out[rel] = true
		return nil
	})
	if err != nil {
		return nil, &xerrors.IoError{Path: root, Cause: err}
	}
	return out, nil
}

func filesEqual(a, b string) (bool, error) {
	infoA, err := os.Stat(a)
	if err != nil {
		return false, err
	}
	infoB, err := os.Stat(b)
	if err != nil {
		return false, err
	}
	if infoA.Size() != infoB.Size() {
		return false, nil
	}

	fa, err := os.Open(a)
	if err != nil {
		return false, err
	}
	defer fa.Close()
	fb, err := os.Open(b)
	if err != nil {
		return false, err
	}
	defer fb.Close()

	const chunkSize = 64 * 1024
	bufA := make([]byte, chunkSize)
	bufB := make([]byte, chunkSize)
	for {
		na, erra := fa.Read(bufA)
		nb, errb := fb.Read(bufB)
		if na != nb || !bytes.Equal(bufA[:na], bufB[:nb]) {
			return false, nil
		}
		if erra == io.EOF && errb == io.EOF {
			return true, nil
		}
		if erra != nil {
			return false, erra
		}
		if errb != nil {
			return false, errb
		}
	}
}

// PackPkg (or ReproducePackPkg when reproduce is set) delegates to the
// configured package backend.
func (r *Runner) PackPkg(ctx context.Context, id graph.SubjectID, reproduce bool) error {
	action := plan.PackPkg
	if reproduce {
		action = plan.ReproducePackPkg
	}
	pkg, ok := r.Config.Package(id.Name)
	if !ok {
		return wrapFailure(action, id, xerrors.NewConfigError("unknown package %q", id.Name))
	}
	if err := r.Backend.Pack(r.Config, pkg, reproduce); err != nil {
		return wrapFailure(action, id, err)
	}
	if err := probe.WriteMarker(pkg.BuildDir(), constants.MarkerArchived); err != nil {
		return wrapFailure(action, id, err)
	}
	log.Infow("packed package", "package", pkg.Name(), "reproduce", reproduce)
	return nil
}

// InstallPkg installs a packed (or staged, when no package backend is
// configured) package into its target sysroot.
func (r *Runner) InstallPkg(ctx context.Context, key plan.Key) error {
	id := key.Subject
	pkg, ok := r.Config.Package(id.Name)
	if !ok {
		return wrapFailure(plan.InstallPkg, id, xerrors.NewConfigError("unknown package %q", id.Name))
	}
	sysroot := r.sysroots().Dir(key.TargetSysrootID, r.Config.SysrootDir())
	if err := r.Backend.InstallInto(r.Config, pkg, sysroot); err != nil {
		return wrapFailure(plan.InstallPkg, id, err)
	}
	log.Infow("installed package", "package", pkg.Name(), "sysroot", sysroot)
	return nil
}

// ArchivePkg tars a package's staging directory into its .tar.gz archive.
func (r *Runner) ArchivePkg(ctx context.Context, id graph.SubjectID) error {
	pkg, ok := r.Config.Package(id.Name)
	if !ok {
		return wrapFailure(plan.ArchivePkg, id, xerrors.NewConfigError("unknown package %q", id.Name))
	}
	if err := tarDirectoryEntries(pkg.StagingDir(), pkg.ArchiveFile()); err != nil {
		return wrapFailure(plan.ArchivePkg, id, err)
	}
	if err := probe.WriteMarker(pkg.BuildDir(), constants.MarkerArchived); err != nil {
		return wrapFailure(plan.ArchivePkg, id, err)
	}
	log.Infow("archived package", "package", pkg.Name())
	return nil
}

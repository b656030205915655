package action

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/crossforge/crossforge/pkg/config"
	"github.com/crossforge/crossforge/pkg/constants"
	"github.com/crossforge/crossforge/pkg/graph"
	"github.com/crossforge/crossforge/pkg/plan"
	"github.com/crossforge/crossforge/pkg/probe"
	"github.com/crossforge/crossforge/pkg/step"
	"github.com/crossforge/crossforge/pkg/xerrors"
)

// ConfigureTool clears and recreates a tool's build directory, then runs
// its configure steps.
func (r *Runner) ConfigureTool(ctx context.Context, id graph.SubjectID) error {
	tool, ok := r.Config.Tool(id.Name)
	if !ok {
		return wrapFailure(plan.ConfigureTool, id, xerrors.NewConfigError("unknown tool %q", id.Name))
	}

	if err := os.RemoveAll(tool.BuildDir()); err != nil {
		return wrapFailure(plan.ConfigureTool, id, &xerrors.IoError{Path: tool.BuildDir(), Cause: err})
	}
	if err := os.MkdirAll(tool.BuildDir(), 0o755); err != nil {
		return wrapFailure(plan.ConfigureTool, id, &xerrors.IoError{Path: tool.BuildDir(), Cause: err})
	}

	toolSet, virtual := toolSetAndVirtual(r.Config, tool)
	for _, st := range tool.ConfigureSteps() {
		req := stepRequest(step.ContextTool, id, st, toolSet, virtual)
		if _, err := r.Executor.Run(ctx, req); err != nil {
			return wrapFailure(plan.ConfigureTool, id, err)
		}
	}
	if err := probe.WriteMarker(tool.BuildDir(), constants.MarkerConfigured); err != nil {
		return wrapFailure(plan.ConfigureTool, id, err)
	}
	log.Infow("configured tool", "tool", tool.Name())
	return nil
}

func (r *Runner) findStage(id graph.SubjectID) (*config.Tool, *config.ToolStage, error) {
	tool, ok := r.Config.Tool(id.Name)
	if !ok {
		return nil, nil, xerrors.NewConfigError("unknown tool %q", id.Name)
	}
	stage, ok := tool.GetStage(id.Stage)
	if !ok {
		return nil, nil, xerrors.NewConfigError("tool %q has no stage %q", id.Name, id.Stage)
	}
	return tool, stage, nil
}

func stageBuiltMarker(id graph.SubjectID) string {
	if id.Stage == "" {
		return constants.MarkerBuilt
	}
	return constants.MarkerBuilt + "@" + id.Stage
}

func stageInstalledMarker(id graph.SubjectID) string {
	if id.Stage == "" {
		return constants.MarkerInstalled
	}
	return constants.MarkerInstalled + "@" + id.Stage
}

// CompileToolStage runs one tool stage's compile steps.
func (r *Runner) CompileToolStage(ctx context.Context, id graph.SubjectID) error {
	tool, stage, err := r.findStage(id)
	if err != nil {
		return wrapFailure(plan.CompileToolStage, id, err)
	}

	toolSet, virtual := toolSetAndVirtual(r.Config, tool)
	for _, st := range stage.CompileSteps() {
		req := stepRequest(step.ContextToolStage, id, st, toolSet, virtual)
		if _, err := r.Executor.Run(ctx, req); err != nil {
			return wrapFailure(plan.CompileToolStage, id, err)
		}
	}
	if err := probe.WriteMarker(tool.BuildDir(), stageBuiltMarker(id)); err != nil {
		return wrapFailure(plan.CompileToolStage, id, err)
	}
	log.Infow("compiled tool stage", "tool", tool.Name(), "stage", id.Stage)
	return nil
}

// InstallToolStage writes the tool's computed version into
// prefix/crossforge/tool-metadata.yml, then runs the stage's install
// steps into the tool's prefix directory.
func (r *Runner) InstallToolStage(ctx context.Context, id graph.SubjectID) error {
	tool, stage, err := r.findStage(id)
	if err != nil {
		return wrapFailure(plan.InstallToolStage, id, err)
	}

	version, err := tool.Version()
	if err != nil {
		return wrapFailure(plan.InstallToolStage, id, err)
	}
	if err := os.MkdirAll(tool.PrefixDir(), 0o755); err != nil {
		return wrapFailure(plan.InstallToolStage, id, &xerrors.IoError{Path: tool.PrefixDir(), Cause: err})
	}
	metaDir := filepath.Join(tool.PrefixDir(), "crossforge")
	if err := os.MkdirAll(metaDir, 0o755); err != nil {
		return wrapFailure(plan.InstallToolStage, id, &xerrors.IoError{Path: metaDir, Cause: err})
	}
	if err := os.WriteFile(filepath.Join(metaDir, "tool-metadata.yml"), []byte("version: "+version+"\n"), 0o644); err != nil {
		return wrapFailure(plan.InstallToolStage, id, &xerrors.IoError{Path: metaDir, Cause: err})
	}

	toolSet, virtual := toolSetAndVirtual(r.Config, tool)
	for _, st := range stage.InstallSteps() {
		req := stepRequest(step.ContextToolStage, id, st, toolSet, virtual)
		if _, err := r.Executor.Run(ctx, req); err != nil {
			return wrapFailure(plan.InstallToolStage, id, err)
		}
	}
	if err := probe.WriteMarker(tool.BuildDir(), stageInstalledMarker(id)); err != nil {
		return wrapFailure(plan.InstallToolStage, id, err)
	}
	log.Infow("installed tool stage", "tool", tool.Name(), "stage", id.Stage)
	return nil
}

// ArchiveTool tars up a tool's prefix directory into its .tar.gz archive
// file, one entry per top-level directory member (mirroring base.py's
// archive_tool, which tars each listdir entry under its own name rather
// than the whole prefix as a single root).
func (r *Runner) ArchiveTool(ctx context.Context, id graph.SubjectID) error {
	tool, ok := r.Config.Tool(id.Name)
	if !ok {
		return wrapFailure(plan.ArchiveTool, id, xerrors.NewConfigError("unknown tool %q", id.Name))
	}
	if err := tarDirectoryEntries(tool.PrefixDir(), tool.ArchiveFile()); err != nil {
		return wrapFailure(plan.ArchiveTool, id, err)
	}
	if err := probe.WriteMarker(tool.BuildDir(), constants.MarkerArchived); err != nil {
		return wrapFailure(plan.ArchiveTool, id, err)
	}
	log.Infow("archived tool", "tool", tool.Name())
	return nil
}

// tarDirectoryEntries writes a gzip-compressed tar of every top-level
// entry of srcDir into destFile, preserving each entry's own name as the
// tar root (not srcDir's own name).
func tarDirectoryEntries(srcDir, destFile string) error {
	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return &xerrors.IoError{Path: srcDir, Cause: err}
	}

	f, err := os.Create(destFile)
	if err != nil {
		return &xerrors.IoError{Path: destFile, Cause: err}
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	defer gz.Close()
	tw := tar.NewWriter(gz)
	defer tw.Close()

	for _, ent := range entries {
		if err := addTarEntry(tw, filepath.Join(srcDir, ent.Name()), ent.Name()); err != nil {
			return &xerrors.IoError{Path: destFile, Cause: err}
		}
	}
	return nil
}

func addTarEntry(tw *tar.Writer, path, arcname string) error {
	info, err := os.Lstat(path)
	if err != nil {
		return err
	}
	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	hdr.Name = arcname

	if info.IsDir() {
		hdr.Name += "/"
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		children, err := os.ReadDir(path)
		if err != nil {
			return err
		}
		for _, child := range children {
			if err := addTarEntry(tw, filepath.Join(path, child.Name()), arcname+"/"+child.Name()); err != nil {
				return err
			}
		}
		return nil
	}

	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	if info.Mode().IsRegular() {
		data, err := os.Open(path)
		if err != nil {
			return err
		}
		defer data.Close()
		if _, err := io.Copy(tw, data); err != nil {
			return err
		}
	}
	return nil
}

package config

import (
	"path/filepath"

	"github.com/crossforge/crossforge/pkg/graph"
	"github.com/crossforge/crossforge/pkg/stringutil"
	"github.com/crossforge/crossforge/pkg/xerrors"
)

// VCSKind discriminates the four ways a Source's upstream can be fetched.
type VCSKind string

const (
	VCSGit     VCSKind = "git"
	VCSHg      VCSKind = "hg"
	VCSSvn     VCSKind = "svn"
	VCSArchive VCSKind = "url"
)

// Source is a fetchable upstream unit: a VCS checkout or a downloaded
// archive, optionally patched and regenerated before it is built.
type Source struct {
	cfg  *Config
	name string
	yml  map[string]any

	regenerateSteps []ScriptStep
}

func newSource(cfg *Config, inducedName string, yml map[string]any) *Source {
	s := &Source{cfg: cfg, yml: yml}
	if n := getString(yml, "name"); n != "" {
		s.name = n
	} else {
		s.name = inducedName
	}
	for _, raw := range getSlice(yml, "regenerate") {
		if m := asMap(raw); m != nil {
			s.regenerateSteps = append(s.regenerateSteps, newScriptStep(m))
		}
	}
	return s
}

func (s *Source) Name() string           { return s.name }
func (s *Source) Kind() graph.Kind       { return graph.KindSource }
func (s *Source) SubjectID() graph.SubjectID {
	return graph.SubjectID{Kind: graph.KindSource, Name: s.name}
}

func (s *Source) SourceDeps() []graph.SourceDep { return parseSourceDeps(s.yml) }
func (s *Source) ToolDeps() []graph.ToolDep     { return parseToolDeps(s.yml) }
func (s *Source) PkgDeps() []string             { return parsePkgDeps(s.yml) }
func (s *Source) TaskDeps() []graph.TaskDep     { return parseTaskDeps(s.yml) }

// VCSKind reports which fetch mechanism this source declares.
func (s *Source) VCSKind() VCSKind {
	switch {
	case s.yml["git"] != nil:
		return VCSGit
	case s.yml["hg"] != nil:
		return VCSHg
	case s.yml["svn"] != nil:
		return VCSSvn
	case s.yml["url"] != nil:
		return VCSArchive
	default:
		return ""
	}
}

// GitURL is the "git" key's repository URL, valid only for VCSGit sources.
func (s *Source) GitURL() string { return getString(s.yml, "git") }

// HgURL is the "hg" key's repository URL, valid only for VCSHg sources.
func (s *Source) HgURL() string { return getString(s.yml, "hg") }

// SvnURL is the "svn" key's repository URL, valid only for VCSSvn sources.
func (s *Source) SvnURL() string { return getString(s.yml, "svn") }

func (s *Source) URL() string    { return getString(s.yml, "url") }
func (s *Source) Branch() string { return getString(s.yml, "branch") }
func (s *Source) Tag() string    { return getString(s.yml, "tag") }
func (s *Source) Commit() string { return getString(s.yml, "commit") }
func (s *Source) Format() string { return getString(s.yml, "format") }

// Checksum returns the raw "<csum_type>:<hex>" string and whether one was
// declared.
func (s *Source) Checksum() (string, bool) {
	v := getString(s.yml, "checksum")
	return v, v != ""
}

func (s *Source) IsRollingVersion() bool {
	return getBoolOr(s.yml, "rolling_version", false)
}

// hasExplicitVersion reports whether the manifest declared a "version" key,
// used by Tool/Package.Version to decide the "0.0_0" fallback.
func (s *Source) hasExplicitVersion() bool {
	_, ok := s.yml["version"]
	return ok
}

// FixedCommit looks up the commit-pin file's commits.<name>.fixed_commit,
// used to pin a branch-tracking source to a specific commit out of band.
func (s *Source) FixedCommit() (string, bool) {
	pin := getMap(getMap(s.cfg.commitYML, "commits"), s.name)
	v, ok := pin["fixed_commit"]
	if !ok || v == nil {
		return "", false
	}
	return stringutil.ParseVersionValue(v), true
}

// RollingID looks up the commit-pin file's commits.<name>.rolling_id.
func (s *Source) RollingID() (string, error) {
	pin := getMap(getMap(s.cfg.commitYML, "commits"), s.name)
	v, ok := pin["rolling_id"]
	if !ok || v == nil {
		return "", &xerrors.RollingIdUnavailableError{SourceName: s.name}
	}
	return stringutil.ParseVersionValue(v), nil
}

// Version expands the manifest's version string, substituting @ROLLING_ID@
// when IsRollingVersion is set.
func (s *Source) Version() (string, error) {
	raw := getStringOr(s.yml, "version", "0.0")
	return s.cfg.Substitute(raw, func(name string) (string, bool) {
		if name != "ROLLING_ID" {
			return "", false
		}
		id, err := s.RollingID()
		if err != nil {
			return "", false
		}
		return id, true
	})
}

// SubDir is the directory that contains this source's checkout: either
// source_root (default) or source_root/<subdir> when "subdir" is set.
func (s *Source) SubDir() string {
	if sub := getString(s.yml, "subdir"); sub != "" {
		return filepath.Join(s.cfg.SourceRoot, sub)
	}
	return s.cfg.SourceRoot
}

// SourceDir is SubDir()/<name>, the actual checkout directory.
func (s *Source) SourceDir() string {
	return filepath.Join(s.SubDir(), s.name)
}

// PatchDir is source_root/patches/<name>.
func (s *Source) PatchDir() string {
	return filepath.Join(s.cfg.SourceRoot, "patches", s.name)
}

// ArchiveFile is SubDir()/<name>.<format>, valid only for VCSArchive
// sources.
func (s *Source) ArchiveFile() string {
	return filepath.Join(s.SubDir(), s.name+"."+s.Format())
}

func (s *Source) RegenerateSteps() []ScriptStep { return s.regenerateSteps }

// ExtractPath is the optional prefix inside an archive that should become
// the checkout root (strips one or more leading path components).
func (s *Source) ExtractPath() string {
	return getString(s.yml, "extract_path")
}

// Submodules reports whether git checkout should run "git submodule update
// --init" after checking out the tracking ref.
func (s *Source) Submodules() bool {
	return getBoolOr(s.yml, "submodules", false)
}

// DisableShallowFetch reports whether the git fetch should pull full
// history even on first clone.
func (s *Source) DisableShallowFetch() bool {
	return getBoolOr(s.yml, "disable_shallow_fetch", false)
}

// PatchKeepCRLF reports whether "git am" should keep CRLF line endings in
// patch files instead of normalizing them.
func (s *Source) PatchKeepCRLF() bool {
	return getBoolOr(s.yml, "patch_keep_crlf", false)
}

// PatchPathStrip is the -p argument "patch" should use when applying
// patches to a url-fetched (non-VCS) source, default "0".
func (s *Source) PatchPathStrip() string {
	return getStringOr(s.yml, "patch-path-strip", "0")
}

// ArchiveFilename is the explicit "filename" a raw-format archive should be
// copied to inside the checkout, when set.
func (s *Source) ArchiveFilename() string {
	return getString(s.yml, "filename")
}

// Rev is the svn "rev" pin, when set.
func (s *Source) Rev() string {
	return getString(s.yml, "rev")
}

package config

import (
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"github.com/crossforge/crossforge/pkg/constants"
	"github.com/crossforge/crossforge/pkg/xerrors"
)

// LoadOptions parameterizes Load: where to start looking, where build
// outputs land, and whether to bypass the on-disk manifest cache.
type LoadOptions struct {
	// StartDir is any directory inside or above the source tree; Load
	// walks upward from here looking for bootstrap.link. Defaults to the
	// working directory when empty.
	StartDir string
	// BuildRoot overrides Config.BuildRoot(), which is otherwise the working
	// directory. The manifest cache lives under BuildRoot, or under StartDir
	// when BuildRoot is empty.
	BuildRoot string
	// OptionValues overrides declare_options defaults, keyed by option
	// name, applied before site-file define_options.
	OptionValues map[string]any
	// IgnoreCache bypasses the manifest parse cache entirely.
	IgnoreCache bool
}

// Load resolves bootstrap.link, parses the root manifest and its imports,
// loads the site and commit-pin overlay files, and validates both against
// their JSON schemas.
func Load(opts LoadOptions) (*Config, error) {
	startDir := opts.StartDir
	if startDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, &xerrors.IoError{Path: ".", Cause: err}
		}
		startDir = wd
	}

	linkDir, err := resolveRootLink(startDir)
	if err != nil {
		return nil, err
	}

	rootPath := filepath.Join(linkDir, constants.RootManifestFile)
	cache := newManifestCache(firstNonEmpty(opts.BuildRoot, startDir), opts.IgnoreCache)

	loader := func(path string) (map[string]any, error) {
		return readManifestFile(path, cache, opts.OptionValues)
	}

	rootYML, err := loader(rootPath)
	if err != nil {
		return nil, err
	}

	cfg := newConfig()
	cfg.SourceRoot = linkDir
	cfg.buildRootOverride = opts.BuildRoot
	cfg.rootYML = rootYML
	cfg.loadOptions(rootYML)
	for name, v := range opts.OptionValues {
		if _, declared := cfg.options[name]; declared {
			if cfg.siteDefines == nil {
				cfg.siteDefines = make(map[string]any)
			}
			cfg.siteDefines[name] = v
		}
	}

	if err := cfg.parseTree(loader, rootPath, rootYML, true, importFilter{}); err != nil {
		return nil, err
	}

	siteYML, err := readOverlayFile(filepath.Join(linkDir, constants.SiteOverrideFile))
	if err != nil {
		return nil, err
	}
	if err := ValidateSiteSchema(siteYML); err != nil {
		return nil, err
	}
	cfg.siteYML = siteYML
	for name, v := range siteDefineOptions(siteYML) {
		if _, declared := cfg.options[name]; declared {
			if cfg.siteDefines == nil {
				cfg.siteDefines = make(map[string]any)
			}
			if _, overridden := cfg.siteDefines[name]; !overridden {
				cfg.siteDefines[name] = v
			}
		}
	}

	commitYML, err := readOverlayFile(filepath.Join(linkDir, constants.CommitPinFile))
	if err != nil {
		return nil, err
	}
	if err := ValidateCommitsSchema(commitYML); err != nil {
		return nil, err
	}
	cfg.commitYML = commitYML

	return cfg, nil
}

func siteDefineOptions(siteYML map[string]any) map[string]any {
	return getMap(siteYML, "define_options")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// resolveRootLink follows bootstrap.link starting at dir and walking
// upward, returning the source root: the link's target when it names a
// directory, or the directory containing it when it names the manifest file.
func resolveRootLink(dir string) (string, error) {
	cur := dir
	for {
		linkPath := filepath.Join(cur, constants.RootManifestLink)
		if target, err := os.Readlink(linkPath); err == nil {
			if !filepath.IsAbs(target) {
				target = filepath.Join(cur, target)
			}
			target = filepath.Clean(target)
			if info, err := os.Stat(target); err == nil && !info.IsDir() {
				target = filepath.Dir(target)
			}
			return target, nil
		}
		if _, err := os.Stat(filepath.Join(cur, constants.RootManifestFile)); err == nil {
			return cur, nil
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return "", xerrors.NewConfigError("could not locate %s above %s", constants.RootManifestLink, dir)
		}
		cur = parent
	}
}

// readManifestFile reads and decodes one manifest or import file, routed
// through the on-disk cache keyed by path + option values.
func readManifestFile(path string, cache *manifestCache, options map[string]any) (map[string]any, error) {
	if cached, ok := cache.lookup(path, options); ok {
		return cached, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &xerrors.IoError{Path: path, Cause: err}
	}
	var yml map[string]any
	if err := yaml.Unmarshal(raw, &yml); err != nil {
		return nil, xerrors.NewConfigErrorIn(path, "invalid yaml: %v", err)
	}
	_ = cache.store(path, options, yml)
	return yml, nil
}

// readOverlayFile reads bootstrap-site.yml/bootstrap-commits.yml, which are
// optional: a missing file decodes to an empty tree rather than an error.
func readOverlayFile(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]any{}, nil
		}
		return nil, &xerrors.IoError{Path: path, Cause: err}
	}
	var yml map[string]any
	if err := yaml.Unmarshal(raw, &yml); err != nil {
		return nil, xerrors.NewConfigErrorIn(path, "invalid yaml: %v", err)
	}
	if yml == nil {
		yml = map[string]any{}
	}
	return yml, nil
}

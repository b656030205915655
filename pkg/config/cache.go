package config

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/crossforge/crossforge/pkg/constants"
)

// manifestCache memoizes the parsed form of one manifest file, invalidated
// when the file's mtime moves past the cache entry or the option values
// used to expand it change, mirroring xbstrap's _read_cfg_cache/_write_yml.
type manifestCache struct {
	dir     string
	disable bool
}

type cacheEntry struct {
	RefPath string         `json:"refpath"`
	Options map[string]any `json:"options"`
	YML     map[string]any `json:"yml"`
}

func newManifestCache(buildRoot string, disable bool) *manifestCache {
	return &manifestCache{dir: filepath.Join(buildRoot, constants.CacheDirName), disable: disable}
}

func (c *manifestCache) cachePath(refPath string) string {
	sum := sha256.Sum256([]byte(refPath))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:])+".json")
}

// lookup returns a cached parse of refPath if it exists, is not older than
// refPath's mtime, and was built with the same option values.
func (c *manifestCache) lookup(refPath string, options map[string]any) (map[string]any, bool) {
	if c.disable {
		return nil, false
	}
	cachePath := c.cachePath(refPath)
	info, err := os.Stat(cachePath)
	if err != nil {
		return nil, false
	}
	srcInfo, err := os.Stat(refPath)
	if err != nil || srcInfo.ModTime().After(info.ModTime()) {
		return nil, false
	}
	raw, err := os.ReadFile(cachePath)
	if err != nil {
		return nil, false
	}
	var entry cacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, false
	}
	if entry.RefPath != refPath {
		return nil, false
	}
	if !optionsEqual(entry.Options, options) {
		return nil, false
	}
	return entry.YML, true
}

// store writes a manifest's parse result to the cache, atomically via a
// temp file + rename in the cache directory.
func (c *manifestCache) store(refPath string, options map[string]any, yml map[string]any) error {
	if c.disable {
		return nil
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	entry := cacheEntry{RefPath: refPath, Options: options, YML: yml}
	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(c.dir, "cache-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, c.cachePath(refPath))
}

func optionsEqual(a, b map[string]any) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		bv, ok := b[k]
		if !ok {
			return false
		}
		if toJSONComparable(v) != toJSONComparable(bv) {
			return false
		}
	}
	return true
}

func toJSONComparable(v any) string {
	raw, _ := json.Marshal(v)
	return string(raw)
}

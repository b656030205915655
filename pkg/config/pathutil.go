package config

import "path/filepath"

// joinRelative resolves an import's "from"/"file" path relative to the
// directory of the manifest that declared it.
func joinRelative(currentPath, rel string) string {
	return filepath.Join(filepath.Dir(currentPath), rel)
}
